package stock_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/internal/domain/stock"
)

func TestWeightedAverageCost(t *testing.T) {
	d := decimal.RequireFromString
	cases := []struct {
		name     string
		onHand   int
		current  string
		incoming int
		cost     string
		want     string
	}{
		{"promedio simple", 100, "10", 100, "20", "15"},
		{"ponderado", 30, "45.50", 10, "50", "46.625"},
		{"sin existencias previas", 0, "99", 5, "12.3456789", "12.3457"},
		{"redondeo a 4 decimales", 3, "1", 0, "0", "1"},
		{"todo en cero", 0, "10", 0, "10", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := stock.WeightedAverageCost(tc.onHand, d(tc.current), tc.incoming, d(tc.cost))
			assert.True(t, d(tc.want).Equal(got), "got %s want %s", got, tc.want)
		})
	}
}
