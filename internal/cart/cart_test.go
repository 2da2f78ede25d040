package cart

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/angelmondragon/storefront-client/internal/collection"
	"github.com/angelmondragon/storefront-client/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu     sync.Mutex
	userID string
}

func (f *fakeSession) set(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userID = id
}

func (f *fakeSession) CurrentUserID(context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userID, f.userID != ""
}

func (f *fakeSession) RequireUser(ctx context.Context) (string, error) {
	id, ok := f.CurrentUserID(ctx)
	if !ok {
		return "", pkgerrors.NotAuthenticated("sign in")
	}
	return id, nil
}

func newTestService(t *testing.T, userID string) (Service, *fakeSession, *kvstore.Memory) {
	t.Helper()
	store := kvstore.NewMemory()
	items, err := NewCollection(store, collection.Options[Entry]{})
	require.NoError(t, err)
	sess := &fakeSession{userID: userID}
	svc, err := NewService(items, sess)
	require.NoError(t, err)
	return svc, sess, store
}

func ptr(v float64) *float64 { return &v }

func TestAddSumsQuantityAndKeepsPosition(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, "u1")

	_, err := svc.Add(ctx, products.Product{ID: "p1", Price: 100}, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, products.Product{ID: "p2", Price: 50}, 1)
	require.NoError(t, err)
	got, err := svc.Add(ctx, products.Product{ID: "p1", Price: 100}, 3)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, 5, got[0].Quantity)
	assert.Equal(t, "p2", got[1].ID)
	assert.Equal(t, 6, svc.Count(ctx))
}

func TestAddValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService(t, "u1")

	_, err := svc.Add(ctx, products.Product{ID: "p1"}, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Add(ctx, products.Product{}, 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, store.Snapshot())
}

func TestSignedOutMutationsFailWithoutWriting(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService(t, "")

	_, err := svc.Add(ctx, products.Product{ID: "p1", Price: 1}, 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotAuthenticated))
	_, err = svc.Increase(ctx, "p1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotAuthenticated))
	assert.True(t, pkgerrors.IsCode(svc.Clear(ctx), pkgerrors.CodeNotAuthenticated))
	assert.Empty(t, svc.Items(ctx))
	assert.Empty(t, store.Snapshot())
}

func TestDecreaseToZeroRemovesEntry(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, "u1")

	_, err := svc.Add(ctx, products.Product{ID: "p1", Price: 10}, 1)
	require.NoError(t, err)
	got, err := svc.Decrease(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, svc.Items(ctx))
}

func TestIncreaseUnknownProductIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService(t, "u1")

	_, err := svc.Add(ctx, products.Product{ID: "p1", Price: 10}, 1)
	require.NoError(t, err)
	before, err := store.Get(ctx, "cart_u1")
	require.NoError(t, err)

	got, err := svc.Increase(ctx, "missing")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Quantity)

	after, err := store.Get(ctx, "cart_u1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNoopAdjustDoesNotRewriteCorruptCart(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService(t, "u1")

	require.NoError(t, store.Set(ctx, "cart_u1", `{"_id":"p1"}`))
	got, err := svc.Decrease(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, got)

	raw, err := store.Get(ctx, "cart_u1")
	require.NoError(t, err)
	assert.Equal(t, `{"_id":"p1"}`, raw)
}

func TestQuantityNeverExceedsMax(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, "u1")

	_, err := svc.Add(ctx, products.Product{ID: "p1", Price: 10}, 1)
	require.NoError(t, err)

	_, err = svc.Add(ctx, products.Product{ID: "p1", Price: 10}, math.MaxInt)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Add(ctx, products.Product{ID: "p2", Price: 10}, MaxQuantity+1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.SetQuantity(ctx, "p1", MaxQuantity+1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	got, err := svc.Add(ctx, products.Product{ID: "p1", Price: 10}, MaxQuantity)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, MaxQuantity, got[0].Quantity)

	got, err = svc.Increase(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, got[0].Quantity)
	assert.Equal(t, MaxQuantity, svc.Count(ctx))
	assert.True(t, Total(got).IsPositive())
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, "u1")

	_, err := svc.Add(ctx, products.Product{ID: "p1", Price: 10}, 1)
	require.NoError(t, err)
	got, err := svc.SetQuantity(ctx, "p1", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got[0].Quantity)

	got, err = svc.SetQuantity(ctx, "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConcurrentIncreasesAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, "u1")
	_, err := svc.Add(ctx, products.Product{ID: "p1", Price: 10}, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Increase(ctx, "p1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items := svc.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestCartSurvivesSignOutAndIsScopedPerUser(t *testing.T) {
	ctx := context.Background()
	svc, sess, store := newTestService(t, "u1")

	_, err := svc.Add(ctx, products.Product{ID: "p1", Price: 10}, 2)
	require.NoError(t, err)

	sess.set("")
	assert.Empty(t, svc.Items(ctx))

	sess.set("u2")
	assert.Empty(t, svc.Items(ctx))
	_, err = svc.Add(ctx, products.Product{ID: "p9", Price: 1}, 1)
	require.NoError(t, err)

	sess.set("u1")
	items := svc.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ID)
	assert.Contains(t, store.Snapshot(), "cart_u1")
	assert.Contains(t, store.Snapshot(), "cart_u2")
}

func TestClearForTargetsNamedUser(t *testing.T) {
	ctx := context.Background()
	svc, sess, store := newTestService(t, "u1")
	_, err := svc.Add(ctx, products.Product{ID: "p1", Price: 10}, 1)
	require.NoError(t, err)

	sess.set("u2")
	require.NoError(t, svc.ClearFor(ctx, "u1"))
	assert.NotContains(t, store.Snapshot(), "cart_u1")
}

func TestTotalPrefersUsableDiscountPrice(t *testing.T) {
	entries := []Entry{
		{Snapshot: products.Snapshot{ID: "a", Price: 100000, DiscountedPrice: ptr(90000)}, Quantity: 2},
		{Snapshot: products.Snapshot{ID: "b", Price: 50000, DiscountedPrice: ptr(math.NaN())}, Quantity: 1},
	}
	assert.Equal(t, "230000", Total(entries).String())
}

func TestTotalIgnoresZeroDiscountAndNonFinitePrice(t *testing.T) {
	entries := []Entry{
		{Snapshot: products.Snapshot{ID: "a", Price: 19.99, DiscountedPrice: ptr(0)}, Quantity: 3},
		{Snapshot: products.Snapshot{ID: "b", Price: math.Inf(1)}, Quantity: 1},
	}
	assert.Equal(t, "59.97", Total(entries).String())
	assert.True(t, Total(nil).IsZero())
}
