package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/angelmondragon/storefront-client/internal/cart"
	"github.com/angelmondragon/storefront-client/internal/catalog"
	"github.com/angelmondragon/storefront-client/internal/collection"
	"github.com/angelmondragon/storefront-client/internal/products"
	"github.com/angelmondragon/storefront-client/internal/session"
	"github.com/angelmondragon/storefront-client/pkg/config"
	"github.com/angelmondragon/storefront-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/kvstore"
	"github.com/angelmondragon/storefront-client/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderAPI struct {
	mu         sync.Mutex
	orders     []catalog.CreateOrderRequest
	payments   []enums.PaymentMethod
	keys       []string
	orderErr   error
	paymentErr error
}

func (f *fakeOrderAPI) CreateOrder(ctx context.Context, token, key string, req catalog.CreateOrderRequest) (*catalog.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	f.orders = append(f.orders, req)
	f.keys = append(f.keys, key)
	return &catalog.Order{ID: "o1", TotalPrice: req.TotalPrice}, nil
}

func (f *fakeOrderAPI) CreatePayment(ctx context.Context, token string, method enums.PaymentMethod, req catalog.PaymentRequest) (*catalog.PaymentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	f.payments = append(f.payments, method)
	return &catalog.PaymentResult{Message: "paid"}, nil
}

type fixture struct {
	svc   Service
	cart  cart.Service
	sess  *session.Manager
	store *kvstore.Memory
	api   *fakeOrderAPI
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := kvstore.NewMemory()
	sess, err := session.NewManager(store, nil)
	require.NoError(t, err)
	require.NoError(t, sess.SetCurrentUser(ctx, session.Credentials{UserID: "u1", AccessToken: "tok"}))

	items, err := cart.NewCollection(store, collection.Options[cart.Entry]{})
	require.NoError(t, err)
	cartSvc, err := cart.NewService(items, sess)
	require.NoError(t, err)

	api := &fakeOrderAPI{}
	svc, err := NewService(ServiceParams{
		Cart:     cartSvc,
		Session:  sess,
		API:      api,
		Shipping: NewShippingTable(config.CheckoutConfig{Rates: config.DefaultShippingRates(), DefaultFee: 50000}),
	})
	require.NoError(t, err)
	return &fixture{svc: svc, cart: cartSvc, sess: sess, store: store, api: api}
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	discounted := 90000.0
	_, err := f.cart.Add(context.Background(), products.Product{ID: "p1", Name: "Serum", Price: 100000, DiscountedPrice: &discounted}, 2)
	require.NoError(t, err)
	_, err = f.cart.Add(context.Background(), products.Product{ID: "p2", Name: "Toner", Price: 50000}, 1)
	require.NoError(t, err)
}

func validInput(method string) PlaceOrderInput {
	return PlaceOrderInput{
		PaymentMethod: method,
		ShippingAddress: types.ShippingAddress{
			FullName: "An",
			Address:  "1 Tràng Tiền",
			City:     "Hà Nội",
			Phone:    "0901234567",
		},
	}
}

func TestShippingTable(t *testing.T) {
	table := NewShippingTable(config.CheckoutConfig{Rates: config.DefaultShippingRates(), DefaultFee: 50000})
	assert.Equal(t, "20000", table.Fee("Hà Nội").String())
	assert.Equal(t, "30000", table.Fee(" tp.hcm ").String())
	assert.Equal(t, "50000", table.Fee("Đà Nẵng").String())
}

func TestQuoteAddsShippingFee(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	quote, err := f.svc.Quote(context.Background(), "TP.HCM")
	require.NoError(t, err)
	assert.Equal(t, "230000", quote.Subtotal.String())
	assert.Equal(t, "30000", quote.ShippingFee.String())
	assert.Equal(t, "260000", quote.Total.String())
}

func TestQuoteEmptyCartIsValidationError(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Quote(context.Background(), "Hà Nội")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPlaceOrderClearsUserCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t)

	receipt, err := f.svc.PlaceOrder(ctx, validInput("cashOnDelivery"))
	require.NoError(t, err)
	assert.True(t, receipt.CartCleared)
	assert.Equal(t, "o1", receipt.Order.ID)
	assert.Equal(t, "250000", receipt.Quote.Total.String())

	assert.NotContains(t, f.store.Snapshot(), "cart_u1")
	assert.Empty(t, f.cart.Items(ctx))

	require.Len(t, f.api.orders, 1)
	assert.Equal(t, 250000.0, f.api.orders[0].TotalPrice)
	assert.Equal(t, 2, f.api.orders[0].OrderItems[0].Amount)
	assert.Equal(t, 90000.0, f.api.orders[0].OrderItems[0].Price)
	assert.NotEmpty(t, f.api.keys[0])
	assert.Equal(t, []enums.PaymentMethod{enums.PaymentMethodCashOnDelivery}, f.api.payments)
}

func TestPlaceOrderFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t)
	before := f.store.Snapshot()["cart_u1"]

	f.api.paymentErr = pkgerrors.Wrap(pkgerrors.CodeNetwork, errors.New("timeout"), "could not reach the store")
	_, err := f.svc.PlaceOrder(ctx, validInput("eWallet"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNetwork))
	assert.Equal(t, before, f.store.Snapshot()["cart_u1"])

	f.api.paymentErr = nil
	f.api.orderErr = pkgerrors.New(pkgerrors.CodeNetwork, "down")
	_, err = f.svc.PlaceOrder(ctx, validInput("eWallet"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNetwork))
	assert.Equal(t, before, f.store.Snapshot()["cart_u1"])
}

func TestPlaceOrderRejectsUnknownMethod(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	_, err := f.svc.PlaceOrder(context.Background(), validInput("bitcoin"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Empty(t, f.api.orders)
}

func TestPlaceOrderRequiresSignIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t)
	require.NoError(t, f.sess.ClearCurrentUser(ctx))

	_, err := f.svc.PlaceOrder(ctx, validInput("creditCard"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotAuthenticated))
	assert.Contains(t, f.store.Snapshot(), "cart_u1")
}
