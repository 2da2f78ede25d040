package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-client/api/responses"
	"github.com/angelmondragon/storefront-client/api/validators"
	"github.com/angelmondragon/storefront-client/internal/catalog"
	"github.com/angelmondragon/storefront-client/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/logger"
	"github.com/angelmondragon/storefront-client/pkg/pagination"
)

// CatalogReader is the read side of the storefront API used by the browse screens.
type CatalogReader interface {
	productLookup
	ListProducts(ctx context.Context, params catalog.ListParams) ([]products.Product, error)
	Newest(ctx context.Context) ([]products.Product, error)
	TopPurchased(ctx context.Context) ([]products.Product, error)
	Reviews(ctx context.Context, productID string) ([]catalog.Review, error)
	Categories(ctx context.Context) ([]catalog.Category, error)
}

// ProductsList serves one page of the catalog, optionally filtered by category or brand.
func ProductsList(api CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", pagination.DefaultPage, 1, pagination.MaxPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := api.ListProducts(r.Context(), catalog.ListParams{
			Page:     page,
			Limit:    limit,
			Category: validators.QueryString(r, "category", 128),
			Brand:    validators.QueryString(r, "brand", 128),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeLeased(w, r, logg, list)
	}
}

func ProductsNewest(api CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := api.Newest(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeLeased(w, r, logg, list)
	}
}

func ProductsTopPurchased(api CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := api.TopPurchased(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeLeased(w, r, logg, list)
	}
}

// ProductDetail serves the detail screen: the product and its reviews.
func ProductDetail(api CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := api.ProductDetails(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeLeased(w, r, logg, product)
	}
}

func ProductReviews(api CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reviews, err := api.Reviews(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeLeased(w, r, logg, reviews)
	}
}

func CategoriesList(api CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := api.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeLeased(w, r, logg, list)
	}
}

func pathProductID(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "productId"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"productId": "is required"})
	}
	return id, nil
}
