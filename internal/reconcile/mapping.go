package reconcile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The bridge returns enterprise column names; tickets use their own field
// namespace. The dictionary below is the single translation point. Enum
// mismatches are written anyway with a warning so operators can correct the
// record manually instead of losing the upstream value.

type transformFunc func(value any) (mapped any, warnings []string)

type fieldMapping struct {
	column    string
	fieldPath string
	transform transformFunc
}

var fieldMappings = []fieldMapping{
	{"product_name", "productName", nil},
	{"sku_number", "skuBaseNumber", nil},
	{"cas_number", "chemicalProperties.casNumber", nil},
	{"molecular_formula", "chemicalProperties.molecularFormula", nil},
	{"molecular_weight", "chemicalProperties.molecularWeight", asString},
	{"un_number", "chemicalProperties.additionalProperties.unNumber", nil},
	{"hazard_class", "regulatoryInfo.transportClass", nil},
	{"brand", "corpBaseData.productLine", normalizeBrand},
	{"sbu", "sbu", nil},
	{"material_group", "corpBaseData.materialGroup", nil},
	{"plant", "corpBaseData.plant", nil},
	{"storage_temp_code", "corpBaseData.storageCondition", translateStorageTemp},
	{"list_price", "listPrice", asFloat},
	{"currency", "currency", checkEnum("currency", "USD", "EUR", "GBP", "JPY")},
	{"package_size", "packageSize", asFloat},
	{"package_unit", "packageUnit", checkEnum("package_unit", "g", "kg", "mg", "mL", "L", "EA")},
	{"vendor_name", "vendorInformation.vendorName", nil},
}

// selectColumns lists every column the mapping dictionary consumes, in query
// order.
func selectColumns() []string {
	cols := make([]string, 0, len(fieldMappings))
	for _, m := range fieldMappings {
		cols = append(cols, m.column)
	}
	return cols
}

// MapRow translates one result row into ticket field paths, returning the
// mapped fields and any enum warnings encountered.
func MapRow(row map[string]any) (map[string]any, []string) {
	fields := make(map[string]any, len(row))
	warnings := []string{}
	for _, mapping := range fieldMappings {
		value, ok := row[mapping.column]
		if !ok || value == nil {
			continue
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		if mapping.transform != nil {
			mapped, warns := mapping.transform(value)
			warnings = append(warnings, warns...)
			value = mapped
		}
		fields[mapping.fieldPath] = value
	}
	return fields, warnings
}

func asString(value any) (any, []string) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func asFloat(value any) (any, []string) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return v, []string{fmt.Sprintf("non-numeric value %q", v)}
		}
		return parsed, nil
	default:
		return value, nil
	}
}

func checkEnum(column string, members ...string) transformFunc {
	memberSet := make(map[string]struct{}, len(members))
	for _, member := range members {
		memberSet[member] = struct{}{}
	}
	return func(value any) (any, []string) {
		s, ok := value.(string)
		if !ok {
			return value, nil
		}
		if _, valid := memberSet[s]; !valid {
			return s, []string{fmt.Sprintf("%s value %q is not a known member", column, s)}
		}
		return s, nil
	}
}

// brandNames normalizes enterprise brand codes to display names; exact match
// first, then substring.
var brandNames = map[string]string{
	"SIAL":      "Sigma-Aldrich",
	"SIGALD":    "Sigma-Aldrich",
	"ALDRICH":   "Aldrich",
	"SIGMA":     "Sigma",
	"SUPELCO":   "Supelco",
	"MILLIPORE": "Millipore",
	"VETEC":     "Vetec",
}

// substring matches resolve in this fixed order so composite codes map the
// same way on every call
var brandOrder = []string{"SIAL", "SIGALD", "ALDRICH", "SIGMA", "SUPELCO", "MILLIPORE", "VETEC"}

func normalizeBrand(value any) (any, []string) {
	code, ok := value.(string)
	if !ok {
		return value, nil
	}
	upper := strings.ToUpper(strings.TrimSpace(code))
	if name, found := brandNames[upper]; found {
		return name, nil
	}
	for _, known := range brandOrder {
		if strings.Contains(upper, known) {
			return brandNames[known], nil
		}
	}
	return code, []string{fmt.Sprintf("unrecognized brand code %q", code)}
}

// storageTempCodes translates enterprise temperature codes into storage
// condition enums.
var storageTempCodes = map[string]string{
	"+20": "AMBIENT",
	"+15": "AMBIENT",
	"+5":  "REFRIGERATED",
	"+4":  "REFRIGERATED",
	"-20": "FROZEN",
	"-80": "DEEP_FROZEN",
}

var tempNumberPattern = regexp.MustCompile(`[-+]?\d+`)

func translateStorageTemp(value any) (any, []string) {
	code, ok := value.(string)
	if !ok {
		code = fmt.Sprintf("%v", value)
	}
	code = strings.TrimSpace(code)
	if condition, found := storageTempCodes[code]; found {
		return condition, nil
	}
	// fall back to the numeric reading when only a raw code is present
	if match := tempNumberPattern.FindString(code); match != "" {
		if degrees, err := strconv.Atoi(match); err == nil {
			switch {
			case degrees >= 15:
				return "AMBIENT", nil
			case degrees >= 0:
				return "REFRIGERATED", nil
			case degrees >= -40:
				return "FROZEN", nil
			default:
				return "DEEP_FROZEN", nil
			}
		}
	}
	return code, []string{fmt.Sprintf("untranslatable storage temperature code %q", code)}
}
