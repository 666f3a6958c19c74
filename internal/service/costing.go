package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// averageCostPlaces matches the decimal(12,4) column on products.
const averageCostPlaces = 4

// WeightedAverageCost folds a receipt of received units at unitCost into a
// holding of onHand units at avg. It returns the new quantity and average.
//
// Receiving zero units leaves the average untouched. A resulting quantity of
// zero yields an average of zero.
func WeightedAverageCost(onHand int, avg decimal.Decimal, received int, unitCost decimal.Decimal) (int, decimal.Decimal) {
	newQty := onHand + received
	if received == 0 {
		return newQty, avg
	}
	if newQty <= 0 {
		return newQty, decimal.Zero
	}
	held := avg.Mul(decimal.NewFromInt(int64(onHand)))
	incoming := unitCost.Mul(decimal.NewFromInt(int64(received)))
	newAvg := held.Add(incoming).Div(decimal.NewFromInt(int64(newQty))).Round(averageCostPlaces)
	return newQty, newAvg
}

// SaleProfit is (price − cost) × qty, rounded to the cent.
func SaleProfit(price, cost decimal.Decimal, qty int) decimal.Decimal {
	return price.Sub(cost).Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// LineTotal is price × qty.
func LineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// OversellPolicy decides what a sale does when it asks for more units than
// are on hand.
type OversellPolicy string

const (
	// OversellClamp records the sale and floors quantity at zero.
	OversellClamp OversellPolicy = "clamp"
	// OversellReject refuses the sale with ErrInsufficientStock.
	OversellReject OversellPolicy = "reject"
)

// ParseOversellPolicy accepts "clamp", "reject" or "" (clamp).
func ParseOversellPolicy(s string) (OversellPolicy, error) {
	switch OversellPolicy(s) {
	case "", OversellClamp:
		return OversellClamp, nil
	case OversellReject:
		return OversellReject, nil
	}
	return "", fmt.Errorf("unknown oversell policy %q (want clamp or reject)", s)
}

// DecrementStock applies a sale of qty units to onHand under policy.
func DecrementStock(onHand, qty int, policy OversellPolicy) (int, error) {
	if qty > onHand {
		if policy == OversellReject {
			return onHand, ErrInsufficientStock
		}
		return 0, nil
	}
	return onHand - qty, nil
}
