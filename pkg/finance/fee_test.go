package finance

import "testing"

func TestFeePartsAlwaysSumToTotal(t *testing.T) {
	principals := []float64{0, 1, 49, 500, 999, 1000, 1001, 3000, 5000, 5001, 6000, 12345, 99999}
	for _, p := range principals {
		for _, days := range []int{7, 15, 30} {
			b := CalculateFee(p, days)
			if got := b.DocFee + b.StorageFee + b.CareFee; got != b.Total {
				t.Fatalf("principal=%v days=%d: parts sum %v != total %v", p, days, got, b.Total)
			}
		}
	}
}

func TestFeeScenario6000x15(t *testing.T) {
	b := CalculateFee(6000, 15)
	if b.Total != 450 {
		t.Fatalf("total: expected 450 got %v", b.Total)
	}
	if b.DocFee != 200 || b.StorageFee != 150 || b.CareFee != 100 {
		t.Fatalf("split: expected 200/150/100 got %v/%v/%v", b.DocFee, b.StorageFee, b.CareFee)
	}
}

func TestFeeMinimumFloor(t *testing.T) {
	// 500 x 0.005 x 15 = 37.5 -> rounds to 40, floored to 50.
	b := CalculateFee(500, 15)
	if b.Total != 50 {
		t.Fatalf("expected floor of 50 got %v", b.Total)
	}
	if b.DocFee != 50 || b.StorageFee != 0 || b.CareFee != 0 {
		t.Fatalf("doc fee should absorb the whole floored total, got %+v", b)
	}
}

func TestSevenDayIsHalfOfFifteen(t *testing.T) {
	for _, p := range []float64{300, 1000, 2500, 6000, 15000, 80000} {
		seven := CalculateFee(p, 7)
		fifteen := CalculateFee(p, 15)
		if want := RoundUpTo10(fifteen.Total / 2); seven.Total != want {
			t.Fatalf("principal=%v: 7-day total %v, want %v", p, seven.Total, want)
		}
		if got := seven.DocFee + seven.StorageFee + seven.CareFee; got != seven.Total {
			t.Fatalf("principal=%v: 7-day parts sum %v != total %v", p, got, seven.Total)
		}
	}
}

func TestDocFeeBrackets(t *testing.T) {
	cases := []struct {
		principal float64
		doc       float64
	}{
		{1000, 50},
		{1001, 100},
		{5000, 100},
		{5001, 200},
	}
	for _, tc := range cases {
		b := CalculateFee(tc.principal, 30)
		if b.DocFee != tc.doc {
			t.Fatalf("principal=%v: doc fee %v, want %v", tc.principal, b.DocFee, tc.doc)
		}
	}
}

func TestZeroPrincipalHasNoFee(t *testing.T) {
	if b := CalculateFee(0, 15); b.Total != 0 {
		t.Fatalf("expected zero fee got %+v", b)
	}
}
