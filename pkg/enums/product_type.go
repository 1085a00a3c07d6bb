package enums

import "fmt"

// ProductType categorizes a catalog product for payment-method eligibility.
type ProductType string

const (
	ProductTypePhysical ProductType = "PHYSICAL"
	ProductTypeAudio    ProductType = "AUDIO"
	ProductTypeOnline   ProductType = "ONLINE"
)

var validProductTypes = []ProductType{
	ProductTypePhysical,
	ProductTypeAudio,
	ProductTypeOnline,
}

// String implements fmt.Stringer.
func (p ProductType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductType.
func (p ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsDigital reports whether the product is delivered without shipping.
// Digital goods cannot be paid for on delivery.
func (p ProductType) IsDigital() bool {
	return p == ProductTypeAudio || p == ProductTypeOnline
}

// ParseProductType converts raw input into a ProductType.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}
