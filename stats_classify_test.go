package main

import "testing"

func TestClassifyEntryByCategory(t *testing.T) {
	cases := []struct {
		category string
		want     statBucket
	}{
		{"RENEW_FEE", bucketDepositServiceFee},
		{"REDEEM", bucketDepositServiceFee},
		{"CUT_PRINCIPAL", bucketDepositServiceFee},
		{"INVENTORY_SALE", bucketInventorySale},
		{"CONSIGNMENT_SALE_IN", bucketInventorySale},
		{"INVENTORY_PURCHASE", bucketInventoryBuyIn},
		{"CONSIGNMENT_ADVANCE_OUT", bucketInventoryBuyIn},
		{"DEPOSIT_PRINCIPAL_OUT", bucketNone},
		{"CONSIGNMENT_PAYOUT_OUT", bucketNone},
		{"GENERAL_IN", bucketNone},
	}
	for _, tc := range cases {
		if got := classifyEntry(tc.category, ""); got != tc.want {
			t.Fatalf("category %s: got bucket %d want %d", tc.category, got, tc.want)
		}
	}
}

func TestClassifyEntryByDescriptionKeyword(t *testing.T) {
	// Historical rows may carry arbitrary categories; the description
	// keywords still route them.
	if got := classifyEntry("misc", "ค่าธรรมเนียมต่อสัญญาเดือนนี้"); got != bucketDepositServiceFee {
		t.Fatalf("expected deposit bucket, got %d", got)
	}
	if got := classifyEntry("misc", "ขายสินค้า iPhone มือสอง"); got != bucketInventorySale {
		t.Fatalf("expected sale bucket, got %d", got)
	}
	if got := classifyEntry("misc", "รับซื้อทองเก่า"); got != bucketInventoryBuyIn {
		t.Fatalf("expected buy-in bucket, got %d", got)
	}
	if got := classifyEntry("misc", "ค่าน้ำค่าไฟ"); got != bucketNone {
		t.Fatalf("expected no bucket, got %d", got)
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	if got := classifyEntry("renew_fee", ""); got != bucketDepositServiceFee {
		t.Fatalf("expected case-insensitive category match, got %d", got)
	}
}

func TestQtyFromDescription(t *testing.T) {
	cases := []struct {
		desc string
		want int
	}{
		{"ขายสินค้าฝากขาย กระเป๋า จำนวน 2 ชิ้น", 2},
		{"ขายสินค้า นาฬิกา จำนวน: 3 ชิ้น", 3},
		{"ขายสินค้า แหวนทอง", 1},
		{"", 1},
	}
	for _, tc := range cases {
		if got := qtyFromDescription(tc.desc); got != tc.want {
			t.Fatalf("%q: got %d want %d", tc.desc, got, tc.want)
		}
	}
}

func TestConsignmentCommissionRecovery(t *testing.T) {
	// Recorded profit wins.
	if got := consignmentCommission(1200, 200, 1000, "ขายฝาก จำนวน 1 ชิ้น"); got != 200 {
		t.Fatalf("expected recorded profit 200, got %v", got)
	}
	// Zero profit: derive from amount - netToSeller x qty.
	if got := consignmentCommission(2400, 0, 1000, "ขายฝาก จำนวน 2 ชิ้น"); got != 400 {
		t.Fatalf("expected derived commission 400, got %v", got)
	}
	// Missing quantity defaults to 1.
	if got := consignmentCommission(1200, 0, 1000, "ขายฝาก"); got != 200 {
		t.Fatalf("expected default qty 1 commission 200, got %v", got)
	}
	// Never negative.
	if got := consignmentCommission(800, 0, 1000, "ขายฝาก"); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}
