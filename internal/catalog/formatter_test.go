package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturio/internal/domain"
)

func TestDecodeRaw_PreservesOrder(t *testing.T) {
	raw := []byte(`{
		"z-item": {"name": "Arroz", "unit": "kg", "stock": 5, "unitPrice": 1500},
		"a-item": {"name": "Fideos", "unit": "u", "stock": 3, "unitPrice": 1200},
		"m-item": {"name": "Agua 20L", "unit": "l", "stock": 10, "unitPrice": 2500}
	}`)

	records, err := DecodeRaw(raw)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "z-item", records[0].Key)
	assert.Equal(t, "a-item", records[1].Key)
	assert.Equal(t, "m-item", records[2].Key)
}

func TestDecodeRaw_NotAnObject(t *testing.T) {
	_, err := DecodeRaw([]byte(`[1, 2, 3]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedCatalog)
}

func TestDecodeRaw_InvalidJSON(t *testing.T) {
	_, err := DecodeRaw([]byte(`{"a": `))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedCatalog)
}

func TestFormat_SkipsRecordMissingUnitPrice(t *testing.T) {
	raw := []byte(`{
		"ok-1": {"name": "Arroz", "unit": "kg", "stock": 5, "unitPrice": 1500},
		"bad":  {"name": "Fideos", "unit": "u", "stock": 3},
		"ok-2": {"name": "Agua 20L", "unit": "l", "stock": 10, "unitPrice": 2500}
	}`)

	records, err := DecodeRaw(raw)
	require.NoError(t, err)

	items := Format(records)
	require.Len(t, items, 2)
	assert.Equal(t, "Arroz", items[0].Name)
	assert.Equal(t, "Agua 20L", items[1].Name)
}

func TestFormat_SkipsRecordMissingName(t *testing.T) {
	raw := []byte(`{
		"bad": {"unit": "kg", "unitPrice": 1000},
		"ok":  {"name": "Carne", "unit": "kg", "unitPrice": 8000}
	}`)

	records, err := DecodeRaw(raw)
	require.NoError(t, err)

	items := Format(records)
	require.Len(t, items, 1)
	assert.Equal(t, "Carne", items[0].Name)
}

func TestFormat_SkipsUnknownUnit(t *testing.T) {
	raw := []byte(`{
		"bad": {"name": "Harina", "unit": "sacks", "unitPrice": 900},
		"ok":  {"name": "Harina", "unit": "kg", "unitPrice": 900}
	}`)

	records, err := DecodeRaw(raw)
	require.NoError(t, err)

	items := Format(records)
	require.Len(t, items, 1)
	assert.Equal(t, domain.UnitKilogram, items[0].MeasureUnit)
}

func TestFormat_NestedStock(t *testing.T) {
	raw := []byte(`{
		"nested": {"name": "Arroz", "unit": "kg", "stock": {"current": 7, "max": 20}, "unitPrice": 1500},
		"scalar": {"name": "Fideos", "unit": "u", "stock": 3, "unitPrice": 1200},
		"absent": {"name": "Carne", "unit": "kg", "unitPrice": 8000}
	}`)

	records, err := DecodeRaw(raw)
	require.NoError(t, err)

	items := Format(records)
	require.Len(t, items, 3)
	assert.Equal(t, 7, items[0].Stock)
	assert.Equal(t, 3, items[1].Stock)
	assert.Equal(t, 0, items[2].Stock)
}

func TestFormat_DuplicatesPreserved(t *testing.T) {
	raw := []byte(`{
		"a": {"name": "Agua 20L", "unit": "l", "stock": 10, "unitPrice": 2500},
		"b": {"name": "Agua 20L", "unit": "l", "stock": 10, "unitPrice": 2500}
	}`)

	records, err := DecodeRaw(raw)
	require.NoError(t, err)

	items := Format(records)
	assert.Len(t, items, 2)
	assert.Equal(t, items[0], items[1])
}

func TestFormat_EmptyCatalog(t *testing.T) {
	records, err := DecodeRaw([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, Format(records))
}

func TestFormat_NonObjectRecordSkipped(t *testing.T) {
	raw := []byte(`{
		"bad": "just a string",
		"ok":  {"name": "Arroz", "unit": "kg", "unitPrice": 1500}
	}`)

	records, err := DecodeRaw(raw)
	require.NoError(t, err)

	items := Format(records)
	require.Len(t, items, 1)
	assert.Equal(t, "Arroz", items[0].Name)
}
