package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWeightedAverageCost(t *testing.T) {
	cases := []struct {
		name     string
		onHand   int
		avg      string
		received int
		cost     string
		wantQty  int
		wantAvg  string
	}{
		{"first receipt", 0, "0", 10, "5", 10, "5"},
		{"second receipt", 10, "5", 10, "7", 20, "6"},
		{"uneven batch", 3, "10", 1, "20", 4, "12.5"},
		{"repeating fraction keeps four places", 2, "1", 1, "2", 3, "1.3333"},
		{"free units lower the average", 10, "6", 10, "0", 20, "3"},
		{"zero received leaves average alone", 7, "4.25", 0, "100", 7, "4.25"},
		{"zero received on empty product", 0, "3", 0, "9", 0, "3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qty, avg := WeightedAverageCost(tc.onHand, d(tc.avg), tc.received, d(tc.cost))
			assert.Equal(t, tc.wantQty, qty)
			assert.True(t, avg.Equal(d(tc.wantAvg)), "got %s want %s", avg, tc.wantAvg)
		})
	}
}

func TestWeightedAverageCost_PreservesCents(t *testing.T) {
	// 1 @ 0.01 + 2 @ 0.02 = 0.05 / 3
	_, avg := WeightedAverageCost(1, d("0.01"), 2, d("0.02"))
	assert.True(t, avg.Equal(d("0.0167")))
	assert.True(t, avg.Mul(decimal.NewFromInt(3)).Round(2).Equal(d("0.05")))
}

func TestDecrementStock(t *testing.T) {
	left, err := DecrementStock(20, 5, OversellClamp)
	require.NoError(t, err)
	assert.Equal(t, 15, left)

	left, err = DecrementStock(3, 5, OversellClamp)
	require.NoError(t, err)
	assert.Equal(t, 0, left)

	left, err = DecrementStock(3, 5, OversellReject)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 3, left)

	left, err = DecrementStock(5, 5, OversellReject)
	require.NoError(t, err)
	assert.Equal(t, 0, left)
}

func TestSaleProfit(t *testing.T) {
	assert.True(t, SaleProfit(d("9"), d("6"), 5).Equal(d("15")))
	assert.True(t, SaleProfit(d("5"), d("6.3333"), 3).Equal(d("-4")))
	assert.True(t, SaleProfit(d("10"), d("1.3333"), 1).Equal(d("8.67")))
}

func TestParseOversellPolicy(t *testing.T) {
	p, err := ParseOversellPolicy("")
	require.NoError(t, err)
	assert.Equal(t, OversellClamp, p)

	p, err = ParseOversellPolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, OversellReject, p)

	_, err = ParseOversellPolicy("backorder")
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatMoney(d("1234.5"), "USD"))
	assert.Equal(t, "$0.00", FormatMoney(decimal.Zero, ""))
	assert.Equal(t, "$6.00", FormatMoney(d("5.999"), "nope"))
}
