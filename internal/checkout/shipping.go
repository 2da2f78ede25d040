package checkout

import (
	"strings"

	"github.com/angelmondragon/storefront-client/pkg/config"
	"github.com/shopspring/decimal"
)

// ShippingTable maps a delivery city to its flat fee.
type ShippingTable struct {
	rates      map[string]decimal.Decimal
	defaultFee decimal.Decimal
}

// NewShippingTable builds the table from configuration. Cities without a rate pay the default fee.
func NewShippingTable(cfg config.CheckoutConfig) *ShippingTable {
	rates := cfg.Rates
	if rates == nil {
		rates = config.DefaultShippingRates()
	}
	table := &ShippingTable{
		rates:      make(map[string]decimal.Decimal, len(rates)),
		defaultFee: decimal.NewFromInt(cfg.DefaultFee),
	}
	for city, fee := range rates {
		table.rates[strings.TrimSpace(city)] = decimal.NewFromInt(fee)
	}
	return table
}

// Fee returns the shipping fee for city. Matching ignores surrounding space and letter case.
func (t *ShippingTable) Fee(city string) decimal.Decimal {
	city = strings.TrimSpace(city)
	if fee, ok := t.rates[city]; ok {
		return fee
	}
	for name, fee := range t.rates {
		if strings.EqualFold(name, city) {
			return fee
		}
	}
	return t.defaultFee
}
