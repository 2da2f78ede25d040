package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
)

type addToCartBody struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest("POST", "/cart/items", strings.NewReader(`{"productId":"","quantity":0}`))
	var body addToCartBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["productId"] != "is required" || details["quantity"] != "must be at least 1" {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/cart/items", strings.NewReader(`{"productId":"p1","quantity":1,"extra":true}`))
	var body addToCartBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/products?page=3&limit=500", nil)
	page, err := ParseQueryInt(req, "page", 1, 1, 1000)
	if err != nil || page != 3 {
		t.Fatalf("unexpected page %d err %v", page, err)
	}
	if _, err := ParseQueryInt(req, "limit", 10, 1, 100); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected out of range error, got %v", err)
	}
	if got := QueryString(req, "missing", 10); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
