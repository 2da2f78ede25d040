// Package favorites implements the signed-in user's on-device favorites list.
package favorites

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-client/internal/collection"
	"github.com/angelmondragon/storefront-client/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/kvstore"
)

// CollectionName prefixes the storage key, e.g. favorites_<userID>.
const CollectionName = "favorites"

// Entry is a favorited product snapshot.
type Entry = products.Snapshot

type userResolver interface {
	CurrentUserID(ctx context.Context) (string, bool)
	RequireUser(ctx context.Context) (string, error)
}

// Service exposes favorites operations for the current user.
type Service interface {
	Toggle(ctx context.Context, product products.Product) (bool, error)
	Add(ctx context.Context, product products.Product) ([]Entry, error)
	Remove(ctx context.Context, productID string) ([]Entry, error)
	Clear(ctx context.Context) error
	List(ctx context.Context) []Entry
	IsFavorite(ctx context.Context, productID string) bool
	ProductIDs(ctx context.Context) map[string]struct{}
}

type service struct {
	items   *collection.Collection[Entry]
	session userResolver
	now     func() time.Time
}

// NewCollection builds the favorites collection over store. Re-adding a product replaces its
// snapshot in place.
func NewCollection(store kvstore.Store, opts collection.Options[Entry]) (*collection.Collection[Entry], error) {
	opts.Name = CollectionName
	opts.Key = func(e Entry) string { return e.ID }
	opts.Merge = nil
	return collection.New(store, opts)
}

// NewService builds a favorites service over items, resolving the user through session.
func NewService(items *collection.Collection[Entry], session userResolver) (Service, error) {
	if items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "favorites collection is required")
	}
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session is required")
	}
	return &service{items: items, session: session, now: time.Now}, nil
}

// Toggle flips membership and returns whether product is now a favorite.
func (s *service) Toggle(ctx context.Context, product products.Product) (bool, error) {
	userID, snap, err := s.prepare(ctx, product)
	if err != nil {
		return false, err
	}
	return s.items.Toggle(ctx, userID, snap)
}

// Add favorites product, refreshing the stored snapshot if it is already present.
func (s *service) Add(ctx context.Context, product products.Product) ([]Entry, error) {
	userID, snap, err := s.prepare(ctx, product)
	if err != nil {
		return nil, err
	}
	return s.items.Upsert(ctx, userID, snap)
}

func (s *service) Remove(ctx context.Context, productID string) ([]Entry, error) {
	userID, err := s.session.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.items.Remove(ctx, userID, productID)
}

func (s *service) Clear(ctx context.Context) error {
	userID, err := s.session.RequireUser(ctx)
	if err != nil {
		return err
	}
	return s.items.Clear(ctx, userID)
}

func (s *service) List(ctx context.Context) []Entry {
	userID, ok := s.session.CurrentUserID(ctx)
	if !ok {
		return []Entry{}
	}
	return s.items.Load(ctx, userID)
}

// IsFavorite is false whenever nobody is signed in.
func (s *service) IsFavorite(ctx context.Context, productID string) bool {
	userID, ok := s.session.CurrentUserID(ctx)
	if !ok {
		return false
	}
	_, found := s.items.Find(ctx, userID, productID)
	return found
}

// ProductIDs returns the favorited ids, for marking list screens.
func (s *service) ProductIDs(ctx context.Context) map[string]struct{} {
	list := s.List(ctx)
	ids := make(map[string]struct{}, len(list))
	for _, e := range list {
		ids[e.ID] = struct{}{}
	}
	return ids
}

func (s *service) prepare(ctx context.Context, product products.Product) (string, Entry, error) {
	userID, err := s.session.RequireUser(ctx)
	if err != nil {
		return "", Entry{}, err
	}
	if strings.TrimSpace(product.ID) == "" {
		return "", Entry{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return userID, product.Snapshot(s.now()), nil
}
