// Package products holds the storefront product model shared by the catalog client and
// the on-device collections.
package products

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Product is a catalog item as returned by the storefront API.
type Product struct {
	ID              string     `json:"_id"`
	Name            string     `json:"name"`
	Brand           string     `json:"brand,omitempty"`
	Category        string     `json:"category,omitempty"`
	Description     string     `json:"description,omitempty"`
	Unit            string     `json:"unit,omitempty"`
	Price           float64    `json:"price"`
	Discount        Discount   `json:"discount"`
	DiscountedPrice *float64   `json:"discount_price,omitempty"`
	Images          []string   `json:"images,omitempty"`
	Ingredients     []string   `json:"ingredients,omitempty"`
	SkinTypes       []string   `json:"skin_types,omitempty"`
	CountInStock    int        `json:"countInStock"`
	Sold            int        `json:"selled,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
}

// Discount is a percentage (0-100). The API sends either a bare number or {"value":n,"end_date":...}.
type Discount struct {
	Percent float64
	EndsAt  *time.Time
}

func (d *Discount) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*d = Discount{}
		return nil
	}
	if raw[0] == '{' {
		var obj struct {
			Value   *float64   `json:"value"`
			EndDate *time.Time `json:"end_date"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return fmt.Errorf("decode discount object: %w", err)
		}
		*d = Discount{EndsAt: obj.EndDate}
		if obj.Value != nil {
			d.Percent = *obj.Value
		}
		return d.clamp()
	}
	var percent float64
	if err := json.Unmarshal(raw, &percent); err != nil {
		return fmt.Errorf("decode discount: %w", err)
	}
	*d = Discount{Percent: percent}
	return d.clamp()
}

// MarshalJSON always emits the bare percentage; snapshots never carry the end date.
func (d Discount) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Percent)
}

func (d *Discount) clamp() error {
	if math.IsNaN(d.Percent) || math.IsInf(d.Percent, 0) {
		d.Percent = 0
	}
	if d.Percent < 0 {
		d.Percent = 0
	}
	if d.Percent > 100 {
		d.Percent = 100
	}
	return nil
}

// Active reports whether the discount applies at now.
func (d Discount) Active(now time.Time) bool {
	if d.Percent <= 0 {
		return false
	}
	return d.EndsAt == nil || now.Before(*d.EndsAt)
}

// FinalPrice is price * (1 - discount/100) while a discount is active, otherwise price.
func (p Product) FinalPrice(now time.Time) float64 {
	if !p.Discount.Active(now) {
		return p.Price
	}
	return p.Price * (1 - p.Discount.Percent/100)
}

// Snapshot copies the display fields stored inside cart and favorites entries.
func (p Product) Snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		ID:       p.ID,
		Name:     p.Name,
		Brand:    p.Brand,
		Category: p.Category,
		Price:    p.Price,
		Images:   append([]string(nil), p.Images...),
	}
	if p.Discount.Active(now) {
		snap.Discount = p.Discount.Percent
	}
	switch {
	case ValidPrice(p.DiscountedPrice):
		v := *p.DiscountedPrice
		snap.DiscountedPrice = &v
	case snap.Discount > 0:
		v := p.FinalPrice(now)
		snap.DiscountedPrice = &v
	}
	return snap
}

// Snapshot is the denormalized product copy kept in on-device collections.
type Snapshot struct {
	ID              string   `json:"_id"`
	Name            string   `json:"name"`
	Brand           string   `json:"brand,omitempty"`
	Category        string   `json:"category,omitempty"`
	Price           float64  `json:"price"`
	Discount        float64  `json:"discount,omitempty"`
	DiscountedPrice *float64 `json:"discount_price,omitempty"`
	Images          []string `json:"images,omitempty"`
}

// LinePrice is the unit price used for totals: the discounted price when it is a usable
// number, otherwise the list price.
func (s Snapshot) LinePrice() float64 {
	if ValidPrice(s.DiscountedPrice) {
		return *s.DiscountedPrice
	}
	return s.Price
}

// ValidPrice reports whether v is set, finite and non-zero.
func ValidPrice(v *float64) bool {
	if v == nil {
		return false
	}
	f := *v
	return f != 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}
