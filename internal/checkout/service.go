// Package checkout prices the cart, places the order and payment, and empties the cart afterwards.
package checkout

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-client/internal/cart"
	"github.com/angelmondragon/storefront-client/internal/catalog"
	"github.com/angelmondragon/storefront-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/logger"
	"github.com/angelmondragon/storefront-client/pkg/types"
	"github.com/angelmondragon/storefront-client/pkg/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type cartStore interface {
	ItemsFor(ctx context.Context, userID string) []cart.Entry
	ClearFor(ctx context.Context, userID string) error
}

type sessionReader interface {
	RequireUser(ctx context.Context) (string, error)
	RequireAccessToken(ctx context.Context) (string, error)
}

type orderAPI interface {
	CreateOrder(ctx context.Context, token, idempotencyKey string, req catalog.CreateOrderRequest) (*catalog.Order, error)
	CreatePayment(ctx context.Context, token string, method enums.PaymentMethod, req catalog.PaymentRequest) (*catalog.PaymentResult, error)
}

// Quote is the priced cart for a delivery city.
type Quote struct {
	Items       []cart.Entry    `json:"items"`
	City        string          `json:"city"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Total       decimal.Decimal `json:"total"`
}

// PlaceOrderInput is what the payment screen submits.
type PlaceOrderInput struct {
	PaymentMethod   string                `json:"paymentMethod" validate:"required,oneof=creditCard eWallet cashOnDelivery"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
}

// Receipt describes a placed order.
type Receipt struct {
	Order       *catalog.Order         `json:"order"`
	Payment     *catalog.PaymentResult `json:"payment"`
	Quote       Quote                  `json:"quote"`
	CartCleared bool                   `json:"cartCleared"`
}

// Service exposes checkout operations.
type Service interface {
	Quote(ctx context.Context, city string) (*Quote, error)
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Receipt, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Cart     cartStore
	Session  sessionReader
	API      orderAPI
	Shipping *ShippingTable
	Logger   *logger.Logger
}

type service struct {
	cart     cartStore
	session  sessionReader
	api      orderAPI
	shipping *ShippingTable
	logg     *logger.Logger
	newKey   func() string
}

// NewService validates params and returns the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart is required")
	}
	if params.Session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session is required")
	}
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order api is required")
	}
	if params.Shipping == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shipping table is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		cart:     params.Cart,
		session:  params.Session,
		api:      params.API,
		shipping: params.Shipping,
		logg:     logg,
		newKey:   uuid.NewString,
	}, nil
}

// Quote prices the signed-in user's cart for delivery to city.
func (s *service) Quote(ctx context.Context, city string) (*Quote, error) {
	userID, err := s.session.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.quote(ctx, userID, city)
}

// PlaceOrder creates the order and its payment. The cart is emptied only after both succeed;
// any failure leaves it as it was.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Receipt, error) {
	input.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	input.ShippingAddress = input.ShippingAddress.Normalize()
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	userID, err := s.session.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	token, err := s.session.RequireAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	quote, err := s.quote(ctx, userID, input.ShippingAddress.City)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithUserID(ctx, userID)
	lines := orderItems(quote.Items)
	order, err := s.api.CreateOrder(ctx, token, s.newKey(), catalog.CreateOrderRequest{
		User:            userID,
		OrderItems:      lines,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   method,
		ItemsPrice:      quote.Subtotal.InexactFloat64(),
		ShippingPrice:   quote.ShippingFee.InexactFloat64(),
		TotalPrice:      quote.Total.InexactFloat64(),
	})
	if err != nil {
		s.logg.Warn(ctx, "checkout.order_failed")
		return nil, err
	}
	payment, err := s.api.CreatePayment(ctx, token, method, catalog.PaymentRequest{
		OrderID: order.ID,
		Cart:    lines,
		Total:   quote.Total.InexactFloat64(),
	})
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", order.ID), "checkout.payment_failed")
		return nil, err
	}

	receipt := &Receipt{Order: order, Payment: payment, Quote: *quote, CartCleared: true}
	if err := s.cart.ClearFor(ctx, userID); err != nil {
		receipt.CartCleared = false
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.ID), "checkout.cart_clear_failed", err)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID,
		"method":   method.String(),
		"total":    quote.Total.String(),
	}), "checkout.order_placed")
	return receipt, nil
}

func (s *service) quote(ctx context.Context, userID, city string) (*Quote, error) {
	items := s.cart.ItemsFor(ctx, userID)
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty")
	}
	city = strings.TrimSpace(city)
	subtotal := cart.Total(items)
	fee := s.shipping.Fee(city)
	return &Quote{
		Items:       items,
		City:        city,
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       subtotal.Add(fee),
	}, nil
}

func orderItems(entries []cart.Entry) []catalog.OrderItem {
	out := make([]catalog.OrderItem, 0, len(entries))
	for _, e := range entries {
		item := catalog.OrderItem{
			Product: e.ID,
			Name:    e.Name,
			Amount:  e.Quantity,
			Price:   e.LinePrice(),
		}
		if len(e.Images) > 0 {
			item.Image = e.Images[0]
		}
		out = append(out, item)
	}
	return out
}
