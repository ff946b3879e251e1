package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapRowTranslatesColumns(t *testing.T) {
	row := map[string]any{
		"product_name":      "Ethanol, absolute",
		"sku_number":        "E7023-BULK",
		"cas_number":        "64-17-5",
		"brand":             "SIGALD",
		"storage_temp_code": "+20",
		"list_price":        float64(125.5),
		"currency":          "USD",
		"package_unit":      "L",
	}

	fields, warnings := MapRow(row)

	assert.Empty(t, warnings)
	assert.Equal(t, "Ethanol, absolute", fields["productName"])
	assert.Equal(t, "E7023-BULK", fields["skuBaseNumber"])
	assert.Equal(t, "64-17-5", fields["chemicalProperties.casNumber"])
	assert.Equal(t, "Sigma-Aldrich", fields["corpBaseData.productLine"])
	assert.Equal(t, "AMBIENT", fields["corpBaseData.storageCondition"])
	assert.Equal(t, 125.5, fields["listPrice"])
}

func TestMapRowSkipsAbsentAndBlank(t *testing.T) {
	fields, warnings := MapRow(map[string]any{
		"product_name": "  ",
		"cas_number":   nil,
		"sku_number":   "X100-BULK",
	})

	assert.Empty(t, warnings)
	assert.Equal(t, map[string]any{"skuBaseNumber": "X100-BULK"}, fields)
}

func TestMapRowWarnsOnUnknownEnumButWrites(t *testing.T) {
	fields, warnings := MapRow(map[string]any{
		"currency":     "CHF",
		"package_unit": "barrel",
	})

	assert.Len(t, warnings, 2)
	// the upstream value is kept so an operator can correct it later
	assert.Equal(t, "CHF", fields["currency"])
	assert.Equal(t, "barrel", fields["packageUnit"])
}

func TestNormalizeBrand(t *testing.T) {
	mapped, warnings := normalizeBrand("sial")
	assert.Empty(t, warnings)
	assert.Equal(t, "Sigma-Aldrich", mapped)

	mapped, warnings = normalizeBrand("SUPELCO-ANALYTICAL")
	assert.Empty(t, warnings)
	assert.Equal(t, "Supelco", mapped)

	mapped, warnings = normalizeBrand("ACME")
	assert.Len(t, warnings, 1)
	assert.Equal(t, "ACME", mapped)
}

func TestNormalizeBrandCompositeCodeIsDeterministic(t *testing.T) {
	// matches both ALDRICH and SIGMA; the fixed order must win every time
	for i := 0; i < 50; i++ {
		mapped, warnings := normalizeBrand("SIGMA ALDRICH")
		assert.Empty(t, warnings)
		assert.Equal(t, "Aldrich", mapped)
	}
}

func TestTranslateStorageTemp(t *testing.T) {
	cases := map[string]string{
		"+20": "AMBIENT",
		"+4":  "REFRIGERATED",
		"-20": "FROZEN",
		"-80": "DEEP_FROZEN",
		"2-8": "REFRIGERATED", // numeric fallback takes the first reading
		"18C": "AMBIENT",
	}
	for code, want := range cases {
		mapped, warnings := translateStorageTemp(code)
		assert.Empty(t, warnings, code)
		assert.Equal(t, want, mapped, code)
	}

	mapped, warnings := translateStorageTemp("cool dry place")
	assert.Len(t, warnings, 1)
	assert.Equal(t, "cool dry place", mapped)
}

func TestAsFloat(t *testing.T) {
	mapped, warnings := asFloat(" 19.5 ")
	assert.Empty(t, warnings)
	assert.Equal(t, 19.5, mapped)

	mapped, warnings = asFloat("n/a")
	assert.Len(t, warnings, 1)
	assert.Equal(t, "n/a", mapped)
}
