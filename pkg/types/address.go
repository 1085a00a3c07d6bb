package types

// ShippingAddress mirrors the address records served by the account service.
type ShippingAddress struct {
	ID          string `json:"id"`
	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}
