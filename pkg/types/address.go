package types

import "strings"

// ShippingAddress is where an order is delivered. City selects the shipping fee.
type ShippingAddress struct {
	FullName string `json:"fullName" validate:"required"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
}

// Normalize trims surrounding whitespace from every field.
func (a ShippingAddress) Normalize() ShippingAddress {
	return ShippingAddress{
		FullName: strings.TrimSpace(a.FullName),
		Address:  strings.TrimSpace(a.Address),
		City:     strings.TrimSpace(a.City),
		Phone:    strings.TrimSpace(a.Phone),
	}
}
