package enums

import "fmt"

// PaymentMethod is how the shopper settles an order.
type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "creditCard"
	PaymentMethodEWallet        PaymentMethod = "eWallet"
	PaymentMethodCashOnDelivery PaymentMethod = "cashOnDelivery"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCreditCard,
	PaymentMethodEWallet,
	PaymentMethodCashOnDelivery,
}

var paymentMethodPaths = map[PaymentMethod]string{
	PaymentMethodCreditCard:     "credit-card",
	PaymentMethodEWallet:        "e-wallet",
	PaymentMethodCashOnDelivery: "cash-on-delivery",
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// PathSegment is the API route suffix under /payment/ for this method.
func (p PaymentMethod) PathSegment() string {
	return paymentMethodPaths[p]
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
