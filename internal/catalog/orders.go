package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/types"
)

// OrderItem is one product line of an order.
type OrderItem struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Amount  int     `json:"amount"`
	Price   float64 `json:"price"`
	Image   string  `json:"image,omitempty"`
}

// Order is an order as listed by GET /order/get-order-by-user.
type Order struct {
	ID              string                `json:"_id"`
	OrderItems      []OrderItem           `json:"orderItems"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	ItemsPrice      float64               `json:"itemsPrice"`
	ShippingPrice   float64               `json:"shippingPrice"`
	TotalPrice      float64               `json:"totalPrice"`
	IsPaid          bool                  `json:"isPaid"`
	IsDelivered     bool                  `json:"isDelivered"`
	CreatedAt       *time.Time            `json:"createdAt,omitempty"`
}

// CreateOrderRequest is the body of POST /order/create.
type CreateOrderRequest struct {
	User            string                `json:"user"`
	OrderItems      []OrderItem           `json:"orderItems"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   enums.PaymentMethod   `json:"paymentMethod"`
	ItemsPrice      float64               `json:"itemsPrice"`
	ShippingPrice   float64               `json:"shippingPrice"`
	TotalPrice      float64               `json:"totalPrice"`
}

// PaymentRequest is the body of POST /payment/<method>.
type PaymentRequest struct {
	OrderID string      `json:"orderId,omitempty"`
	Cart    []OrderItem `json:"cart"`
	Total   float64     `json:"total"`
}

// PaymentResult is what the payment endpoints answer.
type PaymentResult struct {
	Message    string `json:"message"`
	PaymentURL string `json:"paymentUrl,omitempty"`
}

// OrdersByUser lists the token owner's orders. A body whose data is not an array reads as none.
func (c *Client) OrdersByUser(ctx context.Context, token string) ([]Order, error) {
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/order/get-order-by-user", token: token}, &body); err != nil {
		return nil, err
	}
	return decodeArray[Order](body.Data)
}

// ConfirmDelivery marks an order as received.
func (c *Client) ConfirmDelivery(ctx context.Context, token, orderID string) (string, error) {
	id := strings.TrimSpace(orderID)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var out messageBody
	if err := c.do(ctx, request{method: http.MethodPut, path: "/order/delivery-confirm/" + url.PathEscape(id), token: token}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// CreateOrder submits an order and returns it as stored by the API.
func (c *Client) CreateOrder(ctx context.Context, token, idempotencyKey string, req CreateOrderRequest) (*Order, error) {
	var body struct {
		Data *Order `json:"data"`
	}
	r := request{method: http.MethodPost, path: "/order/create", token: token, body: req}
	if idempotencyKey != "" {
		r.header = http.Header{"Idempotency-Key": []string{idempotencyKey}}
	}
	if err := c.do(ctx, r, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		return &Order{}, nil
	}
	return body.Data, nil
}

// CreatePayment posts to the endpoint matching method.
func (c *Client) CreatePayment(ctx context.Context, token string, method enums.PaymentMethod, req PaymentRequest) (*PaymentResult, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]any{"method": method.String()})
	}
	var out PaymentResult
	if err := c.do(ctx, request{method: http.MethodPost, path: "/payment/" + method.PathSegment(), token: token, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
