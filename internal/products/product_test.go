package products

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestDiscountDecodesNumberAndObject(t *testing.T) {
	var bare Product
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p1","price":299000,"discount":10}`), &bare))
	assert.Equal(t, 10.0, bare.Discount.Percent)
	assert.Nil(t, bare.Discount.EndsAt)

	var obj Product
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p2","price":100,"discount":{"value":25,"end_date":"2025-04-01T00:00:00Z"}}`), &obj))
	assert.Equal(t, 25.0, obj.Discount.Percent)
	require.NotNil(t, obj.Discount.EndsAt)

	var none Product
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p3","price":100,"discount":null}`), &none))
	assert.Equal(t, 0.0, none.Discount.Percent)

	var clamped Product
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p4","price":100,"discount":150}`), &clamped))
	assert.Equal(t, 100.0, clamped.Discount.Percent)
}

func TestFinalPrice(t *testing.T) {
	p := Product{Price: 299000, Discount: Discount{Percent: 10}}
	assert.InDelta(t, 269100, p.FinalPrice(now), 0.001)

	expired := now.Add(-time.Hour)
	p.Discount.EndsAt = &expired
	assert.Equal(t, 299000.0, p.FinalPrice(now))

	assert.Equal(t, 50.0, Product{Price: 50}.FinalPrice(now))
}

func TestSnapshotPrefersServerDiscountedPrice(t *testing.T) {
	server := 85000.0
	p := Product{ID: "p1", Name: "Serum", Price: 100000, Discount: Discount{Percent: 10}, DiscountedPrice: &server, Images: []string{"a.png"}}
	snap := p.Snapshot(now)
	require.NotNil(t, snap.DiscountedPrice)
	assert.Equal(t, 85000.0, *snap.DiscountedPrice)
	assert.Equal(t, 10.0, snap.Discount)

	p.Images[0] = "mutated.png"
	assert.Equal(t, "a.png", snap.Images[0])
}

func TestSnapshotDerivesDiscountedPrice(t *testing.T) {
	nan := math.NaN()
	p := Product{ID: "p1", Price: 100000, Discount: Discount{Percent: 20}, DiscountedPrice: &nan}
	snap := p.Snapshot(now)
	require.NotNil(t, snap.DiscountedPrice)
	assert.InDelta(t, 80000, *snap.DiscountedPrice, 0.001)

	plain := Product{ID: "p2", Price: 5000}.Snapshot(now)
	assert.Nil(t, plain.DiscountedPrice)

	_, err := json.Marshal(snap)
	require.NoError(t, err)
}

func TestLinePrice(t *testing.T) {
	nan := math.NaN()
	zero := 0.0
	good := 90000.0
	assert.Equal(t, 90000.0, Snapshot{Price: 100000, DiscountedPrice: &good}.LinePrice())
	assert.Equal(t, 50000.0, Snapshot{Price: 50000, DiscountedPrice: &nan}.LinePrice())
	assert.Equal(t, 50000.0, Snapshot{Price: 50000, DiscountedPrice: &zero}.LinePrice())
	assert.Equal(t, 50000.0, Snapshot{Price: 50000}.LinePrice())
}
