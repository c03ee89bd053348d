package finance

import (
	"errors"
	"fmt"
)

// VATRate applies to consignment commission, reported informationally and
// recomputed at read time, never stored.
const VATRate = 0.07

// ErrBelowSellerFloor is returned when a consignment sale would price a
// unit below the seller's guaranteed payout.
var ErrBelowSellerFloor = errors.New("sale price below guaranteed seller payout")

// ResolveCut reconciles the two cut-principal input forms (absolute new
// principal or a delta) into a single cut value and the resulting
// principal. The cut is clamped into [0, current]; a missing or
// non-positive cut is an error.
func ResolveCut(current float64, newPrincipal, cutAmount *float64) (cutValue, target float64, err error) {
	switch {
	case newPrincipal != nil:
		target = *newPrincipal
	case cutAmount != nil:
		target = current - *cutAmount
	default:
		return 0, 0, fmt.Errorf("newPrincipal or cutAmount is required")
	}
	if target < 0 {
		target = 0
	}
	if target > current {
		target = current
	}
	cutValue = current - target
	if cutValue <= 0 {
		return 0, 0, fmt.Errorf("cut amount must be positive")
	}
	return cutValue, target, nil
}

// ProportionalProfit recognizes the share of the full-term fee matching the
// share of principal being cut: cutting X% of the principal books X% of
// the fee as profit immediately.
func ProportionalProfit(feeTotal, cutValue, principalBefore float64) float64 {
	if principalBefore <= 0 {
		return 0
	}
	return feeTotal * (cutValue / principalBefore)
}

// ConsignmentSale computes the money split of selling qty consignment units
// at price each. Commission is whatever gross exceeds the guaranteed seller
// payout; pricing below that floor is rejected with ErrBelowSellerFloor.
func ConsignmentSale(netToSeller, price float64, qty int) (payout, gross, commission, vat float64, err error) {
	payout = netToSeller * float64(qty)
	gross = price * float64(qty)
	commission = gross - payout
	if commission < 0 {
		return 0, 0, 0, 0, ErrBelowSellerFloor
	}
	vat = commission * VATRate
	return payout, gross, commission, vat, nil
}

// UnitCost spreads an intake cost across a multi-unit lot. Items intaked as
// a single unit keep their full cost.
func UnitCost(cost float64, quantity int) float64 {
	if quantity > 1 {
		return cost / float64(quantity)
	}
	return cost
}

// SaleProfit is the realized profit of selling qty units at sellingPrice
// against unitCost.
func SaleProfit(sellingPrice, unitCost float64, qty int) float64 {
	return (sellingPrice - unitCost) * float64(qty)
}
