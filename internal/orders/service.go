// Package orders lists the shopper's past orders and confirms deliveries.
package orders

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-client/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
)

type orderAPI interface {
	OrdersByUser(ctx context.Context, token string) ([]catalog.Order, error)
	ConfirmDelivery(ctx context.Context, token, orderID string) (string, error)
}

type tokenSource interface {
	RequireAccessToken(ctx context.Context) (string, error)
}

// Service exposes order history operations.
type Service interface {
	History(ctx context.Context) ([]catalog.Order, error)
	ConfirmDelivery(ctx context.Context, orderID string) (string, error)
}

type service struct {
	api     orderAPI
	session tokenSource
}

// NewService returns an order history service that authenticates with the session token.
func NewService(api orderAPI, session tokenSource) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order api is required")
	}
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session is required")
	}
	return &service{api: api, session: session}, nil
}

// History returns the signed-in shopper's orders as the API lists them.
func (s *service) History(ctx context.Context) ([]catalog.Order, error) {
	token, err := s.session.RequireAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.api.OrdersByUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []catalog.Order{}
	}
	return list, nil
}

// ConfirmDelivery marks orderID as received.
func (s *service) ConfirmDelivery(ctx context.Context, orderID string) (string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	token, err := s.session.RequireAccessToken(ctx)
	if err != nil {
		return "", err
	}
	return s.api.ConfirmDelivery(ctx, token, orderID)
}
