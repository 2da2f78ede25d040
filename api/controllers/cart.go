package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-client/api/responses"
	"github.com/angelmondragon/storefront-client/api/validators"
	"github.com/angelmondragon/storefront-client/internal/cart"
	"github.com/angelmondragon/storefront-client/pkg/logger"
)

type cartView struct {
	Items []cart.Entry    `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func newCartView(items []cart.Entry) cartView {
	if items == nil {
		items = []cart.Entry{}
	}
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return cartView{Items: items, Count: count, Total: cart.Total(items)}
}

type addToCartRequest struct {
	productRef
	Quantity int `json:"quantity" validate:"min=1,max=999"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0,max=999"`
}

// CartFetch serves the signed-in user's cart. Signed-out users see an empty cart.
func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeLeased(w, r, logg, newCartView(svc.Items(r.Context())))
	}
}

// CartCount serves the badge count shown on the tab bar.
func CartCount(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeLeased(w, r, logg, map[string]int{"count": svc.Count(r.Context())})
	}
}

// CartAdd merges a product into the cart, summing quantities for products already present.
func CartAdd(svc cart.Service, lookup productLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := addToCartRequest{Quantity: 1}
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := payload.resolve(r, lookup)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Add(r.Context(), product, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(items))
	}
}

func CartIncrease(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Increase(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(items))
	}
}

// CartDecrease lowers the quantity by one; the line disappears at zero.
func CartDecrease(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Decrease(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(items))
	}
}

func CartSetQuantity(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.SetQuantity(r.Context(), id, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(items))
	}
}

func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Remove(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(items))
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(nil))
	}
}
