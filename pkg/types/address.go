package types

import (
	"fmt"
	"strings"
)

// ShippingAddress is display data owned by the backend. The only
// client-side invariant is non-emptiness at submission time.
type ShippingAddress struct {
	Name       string `json:"name" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone,omitempty"`
}

// Validate enforces the submission-time non-empty checks.
func (a ShippingAddress) Validate() error {
	required := map[string]string{
		"name":        a.Name,
		"line1":       a.Line1,
		"city":        a.City,
		"state":       a.State,
		"postal_code": a.PostalCode,
		"country":     a.Country,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("shipping address: missing %s", field)
		}
	}
	return nil
}
