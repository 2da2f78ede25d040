package controllers

import (
	"net/http"
	"sort"

	"github.com/angelmondragon/storefront-client/api/responses"
	"github.com/angelmondragon/storefront-client/api/validators"
	"github.com/angelmondragon/storefront-client/internal/favorites"
	"github.com/angelmondragon/storefront-client/pkg/logger"
)

func FavoritesList(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := svc.List(r.Context())
		if list == nil {
			list = []favorites.Entry{}
		}
		writeLeased(w, r, logg, list)
	}
}

// FavoritesIDs lets list screens mark hearts without loading full entries.
func FavoritesIDs(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set := svc.ProductIDs(r.Context())
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		writeLeased(w, r, logg, ids)
	}
}

// FavoritesToggle adds the product when absent and removes it when present.
func FavoritesToggle(svc favorites.Service, lookup productLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRef
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := payload.resolve(r, lookup)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		added, err := svc.Toggle(r.Context(), product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"productId": product.ID, "favorite": added})
	}
}

func FavoritesRemove(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Remove(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if list == nil {
			list = []favorites.Entry{}
		}
		responses.WriteSuccess(w, list)
	}
}

func FavoritesClear(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, []favorites.Entry{})
	}
}
