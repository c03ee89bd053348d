package finance

import (
	"errors"
	"math"
	"testing"
)

func TestResolveCutDelta(t *testing.T) {
	cut, target, err := ResolveCut(6000, nil, f(2000))
	if err != nil || cut != 2000 || target != 4000 {
		t.Fatalf("expected cut=2000 target=4000 got cut=%v target=%v err=%v", cut, target, err)
	}
}

func TestResolveCutAbsolute(t *testing.T) {
	cut, target, err := ResolveCut(6000, f(1500), nil)
	if err != nil || cut != 4500 || target != 1500 {
		t.Fatalf("expected cut=4500 target=1500 got cut=%v target=%v err=%v", cut, target, err)
	}
}

func TestResolveCutClampsAndRejects(t *testing.T) {
	// Over-cut clamps to the full principal.
	cut, target, err := ResolveCut(6000, nil, f(9000))
	if err != nil || cut != 6000 || target != 0 {
		t.Fatalf("expected clamp to full principal, got cut=%v target=%v err=%v", cut, target, err)
	}
	// Nothing to cut.
	if _, _, err := ResolveCut(6000, f(6000), nil); err == nil {
		t.Fatal("expected error for zero cut")
	}
	if _, _, err := ResolveCut(6000, nil, nil); err == nil {
		t.Fatal("expected error when neither input present")
	}
}

func TestProportionalProfit(t *testing.T) {
	if got := ProportionalProfit(450, 2000, 6000); got != 150 {
		t.Fatalf("expected 150 got %v", got)
	}
	if got := ProportionalProfit(450, 100, 0); got != 0 {
		t.Fatalf("zero principal must yield zero profit, got %v", got)
	}
}

func TestConsignmentSaleSplit(t *testing.T) {
	payout, gross, commission, vat, err := ConsignmentSale(1000, 1200, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payout != 1000 || gross != 1200 || commission != 200 {
		t.Fatalf("split wrong: payout=%v gross=%v commission=%v", payout, gross, commission)
	}
	if math.Abs(vat-14) > 1e-9 {
		t.Fatalf("vat: expected 14 got %v", vat)
	}
}

func TestConsignmentSaleBelowFloor(t *testing.T) {
	_, _, _, _, err := ConsignmentSale(1000, 900, 1)
	if !errors.Is(err, ErrBelowSellerFloor) {
		t.Fatalf("expected ErrBelowSellerFloor got %v", err)
	}
}

func TestUnitCostAndProfit(t *testing.T) {
	if got := UnitCost(900, 3); got != 300 {
		t.Fatalf("expected 300 got %v", got)
	}
	if got := UnitCost(900, 1); got != 900 {
		t.Fatalf("single unit keeps full cost, got %v", got)
	}
	if got := SaleProfit(500, 300, 2); got != 400 {
		t.Fatalf("expected 400 got %v", got)
	}
}
