package domain

// SKUType enumerates packaging configurations.
type SKUType string

const (
	SKUTypeBulk      SKUType = "BULK"
	SKUTypePrepack   SKUType = "PREPACK"
	SKUTypeSpecialty SKUType = "SPECIALTY"
)

// Valid reports whether t is a known SKU type.
func (t SKUType) Valid() bool {
	switch t {
	case SKUTypeBulk, SKUTypePrepack, SKUTypeSpecialty:
		return true
	}
	return false
}

// SKUVariant is one packaging/pricing configuration of the product.
// A ticket may carry at most one variant of type BULK.
type SKUVariant struct {
	Type        SKUType `bson:"type" json:"type"`
	PackageSize float64 `bson:"packageSize" json:"packageSize"`
	PackageUnit string  `bson:"packageUnit" json:"packageUnit"`
	ListPrice   float64 `bson:"listPrice" json:"listPrice"`
	Currency    string  `bson:"currency" json:"currency"`
	SKUNumber   string  `bson:"skuNumber,omitempty" json:"skuNumber,omitempty"`
}

// CountBulk returns the number of BULK entries in variants.
func CountBulk(variants []SKUVariant) int {
	n := 0
	for _, v := range variants {
		if v.Type == SKUTypeBulk {
			n++
		}
	}
	return n
}
