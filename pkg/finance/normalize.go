package finance

// The old system stored the same figures under different names depending on
// age of the row: principal vs securityDeposit, feeConfig vs feeBreakdown.
// The helpers here reconcile both shapes into one canonical value so the
// handlers never branch on field names.

// ResolvePrincipal picks the canonical principal from the two historical
// field names. The canonical name wins when both are present.
func ResolvePrincipal(principal, securityDeposit *float64) (float64, bool) {
	if principal != nil {
		return *principal, true
	}
	if securityDeposit != nil {
		return *securityDeposit, true
	}
	return 0, false
}

// ResolveFee picks a fee breakdown from the two historical field names,
// falling back to fallback() when neither is supplied. The returned
// breakdown always has Total recomputed from its parts.
func ResolveFee(feeBreakdown, feeConfig *Breakdown, fallback func() Breakdown) Breakdown {
	var b Breakdown
	switch {
	case feeBreakdown != nil:
		b = *feeBreakdown
	case feeConfig != nil:
		b = *feeConfig
	default:
		b = fallback()
	}
	b.Total = b.DocFee + b.StorageFee + b.CareFee
	return b
}
