package finance

import "testing"

func f(v float64) *float64 { return &v }

func TestResolvePrincipalPrefersCanonicalName(t *testing.T) {
	got, ok := ResolvePrincipal(f(6000), f(4000))
	if !ok || got != 6000 {
		t.Fatalf("expected canonical principal 6000 got %v ok=%v", got, ok)
	}
	got, ok = ResolvePrincipal(nil, f(4000))
	if !ok || got != 4000 {
		t.Fatalf("expected legacy securityDeposit 4000 got %v ok=%v", got, ok)
	}
	if _, ok = ResolvePrincipal(nil, nil); ok {
		t.Fatal("expected failure when both fields missing")
	}
}

func TestResolveFeeRecomputesTotal(t *testing.T) {
	in := &Breakdown{DocFee: 200, StorageFee: 150, CareFee: 100, Total: 999}
	b := ResolveFee(in, nil, func() Breakdown { return Breakdown{} })
	if b.Total != 450 {
		t.Fatalf("total must be recomputed from parts, got %v", b.Total)
	}
}

func TestResolveFeeFallback(t *testing.T) {
	called := false
	b := ResolveFee(nil, nil, func() Breakdown {
		called = true
		return CalculateFee(6000, 15)
	})
	if !called || b.Total != 450 {
		t.Fatalf("expected fallback breakdown, got %+v called=%v", b, called)
	}
}

func TestResolveFeeLegacyName(t *testing.T) {
	legacy := &Breakdown{DocFee: 100, StorageFee: 60, CareFee: 40}
	b := ResolveFee(nil, legacy, func() Breakdown { return Breakdown{} })
	if b.Total != 200 {
		t.Fatalf("expected legacy feeConfig honored, got %+v", b)
	}
}
