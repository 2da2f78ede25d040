package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-client/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
)

// ListParams filters GET /product/get-all. Zero values are omitted.
type ListParams struct {
	Page     int
	Limit    int
	Category string
	Brand    string
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if c := strings.TrimSpace(p.Category); c != "" {
		q.Add("filter", "category")
		q.Add("value", c)
	}
	if b := strings.TrimSpace(p.Brand); b != "" {
		q.Add("filter", "brand")
		q.Add("value", b)
	}
	return q
}

// Category is a product category.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Review is a shopper's rating of a product.
type Review struct {
	User    string  `json:"user,omitempty"`
	Comment string  `json:"comment"`
	Rating  float64 `json:"rating"`
}

// ListProducts returns one page of products, newest first.
func (c *Client) ListProducts(ctx context.Context, params ListParams) ([]products.Product, error) {
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/product/get-all", query: params.query()}, &body); err != nil {
		return nil, err
	}
	list, err := decodeArray[products.Product](body.Data)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].CreatedAt, list[j].CreatedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return list, nil
}

// Newest returns the most recently added products.
func (c *Client) Newest(ctx context.Context) ([]products.Product, error) {
	return c.bareList(ctx, "/product/get-all/newest")
}

// TopPurchased returns the best sellers.
func (c *Client) TopPurchased(ctx context.Context) ([]products.Product, error) {
	return c.bareList(ctx, "/product/get-all/top-purchased")
}

// ProductDetails returns a single product. A body without data is NOT_FOUND.
func (c *Client) ProductDetails(ctx context.Context, productID string) (*products.Product, error) {
	id := strings.TrimSpace(productID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var body struct {
		Data *products.Product `json:"data"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/product/details/" + url.PathEscape(id)}, &body); err != nil {
		return nil, err
	}
	if body.Data == nil || body.Data.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return body.Data, nil
}

// Reviews returns a product's reviews. An unsuccessful answer reads as no reviews.
func (c *Client) Reviews(ctx context.Context, productID string) ([]Review, error) {
	id := strings.TrimSpace(productID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var body struct {
		Success bool            `json:"success"`
		Reviews json.RawMessage `json:"reviews"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/review/get-all/" + url.PathEscape(id)}, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return []Review{}, nil
	}
	return decodeArray[Review](body.Reviews)
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/category"}, &body); err != nil {
		return nil, err
	}
	return decodeArray[Category](body.Data)
}

func (c *Client) bareList(ctx context.Context, path string) ([]products.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &raw); err != nil {
		return nil, err
	}
	return decodeArray[products.Product](raw)
}
