package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-client/api/responses"
	"github.com/angelmondragon/storefront-client/api/validators"
	"github.com/angelmondragon/storefront-client/internal/checkout"
	"github.com/angelmondragon/storefront-client/pkg/logger"
)

// CheckoutQuote prices the cart for the delivery city chosen on the shipping screen.
func CheckoutQuote(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quote, err := svc.Quote(r.Context(), validators.QueryString(r, "city", 128))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeLeased(w, r, logg, quote)
	}
}

// CheckoutPlaceOrder creates the order and its payment. The cart is cleared only on success.
func CheckoutPlaceOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkout.PlaceOrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receipt, err := svc.PlaceOrder(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
