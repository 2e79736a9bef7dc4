package domain

// MeasureUnit is the unit of measure stated on an invoice row or catalog
// entry. Empty means the unit was absent or illegible on the source.
type MeasureUnit string

const (
	UnitKilogram   MeasureUnit = "kg"
	UnitGram       MeasureUnit = "g"
	UnitLiter      MeasureUnit = "l"
	UnitMilliliter MeasureUnit = "ml"
	UnitUnitary    MeasureUnit = "u"
)

// ValidMeasureUnits is the closed set of recognized measure units.
var ValidMeasureUnits = map[MeasureUnit]bool{
	UnitKilogram:   true,
	UnitGram:       true,
	UnitLiter:      true,
	UnitMilliliter: true,
	UnitUnitary:    true,
}

// ExtractionStatus reports whether the model judged its own extraction
// reliable.
type ExtractionStatus string

const (
	ExtractionSuccess ExtractionStatus = "success"
	ExtractionFailure ExtractionStatus = "failure"
)
