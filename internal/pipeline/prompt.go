package pipeline

// extractionPrompt is the fixed instruction block for the extraction stage.
// It describes the Chilean purchase-invoice layout convention and forbids
// fabricating values the document does not make legible.
const extractionPrompt = `You are an assistant that reads Chilean purchase invoices (facturas de compra). Extract every product or service row from the attached invoice image.

Layout convention:
- The product detail section is a table bounded above by the recipient (buyer) data and below by the tax and total summary rows (Neto, IVA, Total).
- Monetary amounts use a comma as the decimal separator and a dot as the thousands separator (e.g. 1.234,56).
- Typical columns are: description, quantity, unit of measure, unit price, line total.

For each row report:
- name: the product description exactly as printed.
- quantity: the stated quantity. If the row does not state one, use 1. Never invent a quantity you cannot read.
- unit_price: the price per unit, converted to a plain number (strip thousands separators, use a dot as decimal separator).
- measure_unit: one of kg, g, l, ml, u. Omit this field entirely when the invoice does not state the unit unambiguously. Never guess.

Set status to "success" when you could read the product table, even if it is empty. Set status to "failure" when the image is not a purchase invoice or the product table is unreadable; in that case leave items empty.

Do not invent, merge, or skip rows. Extract only what is legible on the document.`

// exemplarPreface introduces a few-shot exemplar document.
const exemplarPreface = `Worked example. For the attached invoice, the correct extraction is:`

// targetPreface introduces the document to be processed.
const targetPreface = `Extract the items from the attached invoice.`

// comparisonPrompt is the fixed instruction block for the comparison stage.
const comparisonPrompt = `You are an assistant that compares items extracted from a purchase invoice with items in a reference catalog.

Judge semantic equivalence, not exact string equality: "Agua Purificada 20 Lts" and "Agua 20L" refer to the same product. Different sizes, brands, or units are not equivalent.

Return, for each extracted item that has a semantically equivalent catalog entry, a suggestion mapping the extracted item's name to that catalog item (copied verbatim from the catalog). Extracted items with no equivalent must be absent from the mapping. If no extracted item has an equivalent, set found to false and return an empty mapping. Never invent catalog entries.`
