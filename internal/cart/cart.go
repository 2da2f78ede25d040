// Package cart implements the signed-in user's on-device shopping cart.
package cart

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-client/internal/collection"
	"github.com/angelmondragon/storefront-client/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/kvstore"
	"github.com/shopspring/decimal"
)

// CollectionName prefixes the storage key, e.g. cart_<userID>.
const CollectionName = "cart"

// MaxQuantity caps the units of one product a cart line can hold.
const MaxQuantity = 999

// Entry is one cart line: a product snapshot plus a positive quantity.
type Entry struct {
	products.Snapshot
	Quantity int `json:"quantity"`
}

// LineTotal is LinePrice x Quantity.
func (e Entry) LineTotal() decimal.Decimal {
	return priceDecimal(e.LinePrice()).Mul(decimal.NewFromInt(int64(e.Quantity)))
}

type userResolver interface {
	CurrentUserID(ctx context.Context) (string, bool)
	RequireUser(ctx context.Context) (string, error)
}

// Service exposes cart operations for the current user.
type Service interface {
	Add(ctx context.Context, product products.Product, quantity int) ([]Entry, error)
	Increase(ctx context.Context, productID string) ([]Entry, error)
	Decrease(ctx context.Context, productID string) ([]Entry, error)
	SetQuantity(ctx context.Context, productID string, quantity int) ([]Entry, error)
	Remove(ctx context.Context, productID string) ([]Entry, error)
	Clear(ctx context.Context) error
	ClearFor(ctx context.Context, userID string) error
	Items(ctx context.Context) []Entry
	ItemsFor(ctx context.Context, userID string) []Entry
	Count(ctx context.Context) int
}

type service struct {
	items   *collection.Collection[Entry]
	session userResolver
	now     func() time.Time
}

// NewCollection builds the cart collection over store. Adding a product already in the cart
// sums the quantities.
func NewCollection(store kvstore.Store, opts collection.Options[Entry]) (*collection.Collection[Entry], error) {
	opts.Name = CollectionName
	opts.Key = func(e Entry) string { return e.ID }
	opts.Merge = func(existing, incoming Entry) Entry {
		existing.Quantity = addQuantity(existing.Quantity, incoming.Quantity)
		return existing
	}
	return collection.New(store, opts)
}

// NewService builds a cart service over items, resolving the user through session.
func NewService(items *collection.Collection[Entry], session userResolver) (Service, error) {
	if items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart collection is required")
	}
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session is required")
	}
	return &service{items: items, session: session, now: time.Now}, nil
}

// Add puts quantity units of product in the cart, summing with an existing line.
func (s *service) Add(ctx context.Context, product products.Product, quantity int) ([]Entry, error) {
	userID, err := s.session.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(product.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 || quantity > MaxQuantity {
		return nil, quantityError()
	}
	return s.items.Upsert(ctx, userID, Entry{Snapshot: product.Snapshot(s.now()), Quantity: quantity})
}

// Increase adds one unit; a line already at MaxQuantity stays there.
func (s *service) Increase(ctx context.Context, productID string) ([]Entry, error) {
	return s.adjust(ctx, productID, func(q int) int { return addQuantity(q, 1) })
}

// Decrease drops the line once its quantity reaches zero.
func (s *service) Decrease(ctx context.Context, productID string) ([]Entry, error) {
	return s.adjust(ctx, productID, func(q int) int { return q - 1 })
}

// SetQuantity overwrites a line's quantity; zero or less removes it.
func (s *service) SetQuantity(ctx context.Context, productID string, quantity int) ([]Entry, error) {
	if quantity > MaxQuantity {
		return nil, quantityError()
	}
	return s.adjust(ctx, productID, func(int) int { return quantity })
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

// ClearFor empties userID's cart regardless of who is signed in now. Checkout uses it so a
// sign-out racing an order cannot redirect the clear to another user.
func (s *service) ClearFor(ctx context.Context, userID string) error {
	return s.items.Clear(ctx, userID)
}

// Items returns the current user's cart; signed out reads as empty.
func (s *service) Items(ctx context.Context) []Entry {
	userID, ok := s.session.CurrentUserID(ctx)
	if !ok {
		return []Entry{}
	}
	return s.items.Load(ctx, userID)
}

// ItemsFor returns userID's cart regardless of who is signed in now.
func (s *service) ItemsFor(ctx context.Context, userID string) []Entry {
	return s.items.Load(ctx, userID)
}

// Count is the number of units across all lines.
func (s *service) Count(ctx context.Context) int {
	total := 0
	for _, e := range s.Items(ctx) {
		total += e.Quantity
	}
	return total
}

func (s *service) adjust(ctx context.Context, productID string, next func(int) int) ([]Entry, error) {
	userID, err := s.session.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.items.Update(ctx, userID, func(entries []Entry) ([]Entry, error) {
		out := entries[:0]
		for _, e := range entries {
			if e.ID == productID {
				e.Quantity = next(e.Quantity)
				if e.Quantity <= 0 {
					continue
				}
			}
			out = append(out, e)
		}
		return out, nil
	})
}

// addQuantity sums two line quantities, saturating at MaxQuantity.
func addQuantity(a, b int) int {
	if b > MaxQuantity-a {
		return MaxQuantity
	}
	return a + b
}

func quantityError() error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", MaxQuantity))
}

// Total sums LinePrice x Quantity over entries. Lines with a non-finite price contribute nothing.
func Total(entries []Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.LineTotal())
	}
	return sum
}

func priceDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
