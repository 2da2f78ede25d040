package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-client/api/middleware"
	"github.com/angelmondragon/storefront-client/api/responses"
	"github.com/angelmondragon/storefront-client/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/logger"
)

// writeLeased answers with data unless the calling screen lost focus while the request ran.
// The body is encoded before the focus check so only the write follows it.
func writeLeased(w http.ResponseWriter, r *http.Request, logg *logger.Logger, data any) {
	body, err := responses.EncodeSuccess(data)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	err = middleware.Deliver(r.Context(), func() {
		responses.WriteEncoded(w, http.StatusOK, body)
	})
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
	}
}

type productLookup interface {
	ProductDetails(ctx context.Context, productID string) (*products.Product, error)
}

// productRef names a product either by id or by the full catalog object a screen already holds.
type productRef struct {
	ProductID string          `json:"productId"`
	Product   json.RawMessage `json:"product"`
}

func (p productRef) resolve(r *http.Request, lookup productLookup) (products.Product, error) {
	id := strings.TrimSpace(p.ProductID)
	if len(p.Product) > 0 && string(p.Product) != "null" {
		var product products.Product
		if err := json.Unmarshal(p.Product, &product); err != nil {
			return products.Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product").WithDetails(map[string]string{"product": "must be a catalog product"})
		}
		if id != "" && product.ID != id {
			return products.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id mismatch").WithDetails(map[string]string{"productId": "must match product._id"})
		}
		return product, nil
	}
	if id == "" {
		return products.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"productId": "is required"})
	}
	if lookup == nil {
		return products.Product{}, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable")
	}
	product, err := lookup.ProductDetails(r.Context(), id)
	if err != nil {
		return products.Product{}, err
	}
	return *product, nil
}
