// Package finance holds the pure bookkeeping arithmetic of the shop: the
// deposit fee schedule, input normalization for historical field names, and
// the sale/cut profit formulas. Everything here is deterministic and free of
// I/O so the handlers stay thin.
package finance

import "math"

// Breakdown is a fee split for one contract term. DocFee + StorageFee +
// CareFee always equals Total by construction.
type Breakdown struct {
	DocFee     float64 `json:"docFee"`
	StorageFee float64 `json:"storageFee"`
	CareFee    float64 `json:"careFee"`
	Total      float64 `json:"total"`
}

// RoundUpTo10 rounds an amount up to the nearest 10 currency units.
func RoundUpTo10(v float64) float64 {
	return math.Ceil(v/10) * 10
}

// docFeeFor returns the tiered flat document fee by principal bracket.
func docFeeFor(principal float64) float64 {
	switch {
	case principal <= 1000:
		return 50
	case principal <= 5000:
		return 100
	default:
		return 200
	}
}

// splitFee divides a total into doc/storage/care. The document fee is the
// bracket amount capped at total; the remainder splits 60/40 with the floor
// going to storage and the rounding remainder absorbed by care, so the three
// parts sum exactly to total.
func splitFee(principal, total float64) Breakdown {
	doc := docFeeFor(principal)
	if doc > total {
		doc = total
	}
	remainder := total - doc
	storage := math.Floor(remainder * 0.6)
	care := remainder - storage
	return Breakdown{DocFee: doc, StorageFee: storage, CareFee: care, Total: total}
}

// CalculateFee computes the fee breakdown for a principal over termDays at
// 0.5% per day, total rounded up to the nearest 10 with a floor of 50.
//
// The 7-day term is a special-cased shortcut carried over from the shop's
// renewal schedule: it charges half the 15-day total (rounded up to 10) and
// rescales the 15-day split proportionally, remainder assigned to CareFee.
// It is intentionally not derived from the day-rate formula.
func CalculateFee(principal float64, termDays int) Breakdown {
	if principal <= 0 || termDays <= 0 {
		return Breakdown{}
	}
	if termDays == 7 {
		full := CalculateFee(principal, 15)
		total := RoundUpTo10(full.Total / 2)
		if full.Total == 0 {
			return Breakdown{}
		}
		scale := total / full.Total
		doc := math.Floor(full.DocFee * scale)
		storage := math.Floor(full.StorageFee * scale)
		care := total - doc - storage
		return Breakdown{DocFee: doc, StorageFee: storage, CareFee: care, Total: total}
	}
	total := RoundUpTo10(principal * 0.005 * float64(termDays))
	if total > 0 && total < 50 {
		total = 50
	}
	return splitFee(principal, total)
}
