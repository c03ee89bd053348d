package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(b)
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

func setupTestServer(t *testing.T) (*gin.Engine, string) {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	if os.Getenv("ADMIN_PIN") == "" {
		_ = os.Setenv("ADMIN_PIN", "000000")
	}
	jwtSecret = []byte("test-secret")
	initDB()
	r := gin.Default()
	setupRoutes(r)

	resp := performRequest(r, http.MethodPost, "/auth/login",
		jsonBody(t, map[string]string{"pin": os.Getenv("ADMIN_PIN")}), "")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	token, _ := decodeMap(t, resp)["token"].(string)
	if token == "" {
		t.Fatal("empty token in login response")
	}
	return r, token
}

func createTestContract(t *testing.T, r *gin.Engine, token string, principal float64, termDays int, idCard string) map[string]any {
	t.Helper()
	resp := performRequest(r, http.MethodPost, "/contracts", jsonBody(t, map[string]any{
		"customer": map[string]string{
			"name":   "ทดสอบ ระบบ",
			"idCard": idCard,
			"phone":  "0812345678",
		},
		"principal": principal,
		"termDays":  termDays,
		"itemName":  "iPhone 13",
	}), token)
	if resp.Code != 200 {
		t.Fatalf("create contract failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	return decodeMap(t, resp)
}

func TestContractLifecycleFlow(t *testing.T) {
	r, token := setupTestServer(t)

	// Scenario A: principal 6000, 15 days -> fee 450 split 200/150/100,
	// cash out 5550.
	ct := createTestContract(t, r, token, 6000, 15, "1100000000001")
	fee, _ := ct["feeConfig"].(map[string]any)
	if fee["total"] != 450.0 || fee["docFee"] != 200.0 || fee["storageFee"] != 150.0 || fee["careFee"] != 100.0 {
		t.Fatalf("unexpected fee breakdown: %+v", fee)
	}
	id := uint(ct["id"].(float64))

	resp := performRequest(r, http.MethodGet, fmt.Sprintf("/contracts/%d", id), nil, token)
	if resp.Code != 200 {
		t.Fatalf("get contract failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	detail := decodeMap(t, resp)
	entries, _ := detail["cashbookEntries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected one ledger entry after create, got %d", len(entries))
	}
	first := entries[0].(map[string]any)
	if first["type"] != "OUT" || first["amount"] != 5550.0 {
		t.Fatalf("expected OUT 5550 got %+v", first)
	}

	// A malformed override is rejected, not silently treated as absent.
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/contracts/%d/redeem", id),
		jsonBody(t, map[string]any{"paidTotal": "abc"}), token)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on malformed paidTotal got %d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/contracts/%d", id), nil, token)
	if decodeMap(t, resp)["status"] != "ACTIVE" {
		t.Fatal("malformed redeem must not change contract status")
	}

	// Scenario B: redeem without override -> IN 6000, profit 450, REDEEMED.
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/contracts/%d/redeem", id), jsonBody(t, map[string]any{}), token)
	if resp.Code != 200 {
		t.Fatalf("redeem failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/contracts/%d", id), nil, token)
	detail = decodeMap(t, resp)
	if detail["status"] != "REDEEMED" {
		t.Fatalf("expected REDEEMED got %v", detail["status"])
	}
	entries, _ = detail["cashbookEntries"].([]any)
	var redeemRow map[string]any
	for _, e := range entries {
		row := e.(map[string]any)
		if row["category"] == "REDEEM" {
			redeemRow = row
		}
	}
	if redeemRow == nil || redeemRow["amount"] != 6000.0 || redeemRow["profit"] != 450.0 {
		t.Fatalf("expected redeem IN 6000 profit 450, got %+v", redeemRow)
	}

	// Redeeming a terminal contract is rejected.
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/contracts/%d/redeem", id), jsonBody(t, map[string]any{}), token)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on double redeem got %d", resp.Code)
	}

	// Scenario C: cut 2000 off a 6000 contract -> profit 150, principal 4000.
	ct2 := createTestContract(t, r, token, 6000, 15, "1100000000002")
	id2 := uint(ct2["id"].(float64))
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/contracts/%d/cut-principal", id2),
		jsonBody(t, map[string]any{"cutAmount": 2000}), token)
	if resp.Code != 200 {
		t.Fatalf("cut-principal failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	cut := decodeMap(t, resp)
	if cut["cutValue"] != 2000.0 || cut["profit"] != 150.0 {
		t.Fatalf("expected cutValue 2000 profit 150 got %+v", cut)
	}
	inner := cut["contract"].(map[string]any)
	if inner["principal"] != 4000.0 {
		t.Fatalf("expected principal 4000 got %v", inner["principal"])
	}

	// Renewal starts at the old due date and books the fee as profit.
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/contracts/%d", id2), nil, token)
	oldDue := decodeMap(t, resp)["dueDate"]
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/contracts/%d/renew", id2), nil, token)
	if resp.Code != 200 {
		t.Fatalf("renew failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	renewed := decodeMap(t, resp)
	if renewed["previousContractId"] != float64(id2) {
		t.Fatalf("expected renewal chain to %d got %v", id2, renewed["previousContractId"])
	}
	if renewed["startDate"] != oldDue {
		t.Fatalf("renewal must start at old due date: start=%v oldDue=%v", renewed["startDate"], oldDue)
	}

	// The stats aggregation reflects the period's contract activity.
	resp = performRequest(r, http.MethodGet, "/admin/stats?mode=month", nil, token)
	if resp.Code != 200 {
		t.Fatalf("stats failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	stats := decodeMap(t, resp)
	contracts, _ := stats["contracts"].(map[string]any)
	if contracts == nil {
		t.Fatalf("missing contracts block in stats: %s", resp.Body.String())
	}
	byStatus, _ := contracts["byStatus"].(map[string]any)
	if byStatus["REDEEMED"].(float64) < 1 || byStatus["RENEWED"].(float64) < 1 {
		t.Fatalf("expected redeemed and renewed counts in period, got %+v", byStatus)
	}
}

func TestForfeitIsIdempotent(t *testing.T) {
	r, token := setupTestServer(t)
	ct := createTestContract(t, r, token, 3000, 30, "1100000000003")
	id := uint(ct["id"].(float64))

	resp := performRequest(r, http.MethodPost, fmt.Sprintf("/contracts/%d/forfeit", id), nil, token)
	if resp.Code != 200 {
		t.Fatalf("forfeit failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	out := decodeMap(t, resp)
	item := out["inventoryItem"].(map[string]any)
	if item["sourceType"] != "FORFEIT" || item["cost"] != 3000.0 {
		t.Fatalf("unexpected forfeit item %+v", item)
	}

	// Second forfeit is rejected and creates no second stock row.
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/contracts/%d/forfeit", id), nil, token)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on double forfeit got %d", resp.Code)
	}
}

func TestConsignmentSellScenario(t *testing.T) {
	r, token := setupTestServer(t)

	// Scenario D: netToSeller 1000, sell at 1200 -> commission 200, vat 14;
	// sell at 900 -> rejected.
	resp := performRequest(r, http.MethodPost, "/consignments", jsonBody(t, map[string]any{
		"sellerName":    "ผู้ฝากขาย หนึ่ง",
		"sellerIdCard":  "1100000000004",
		"itemName":      "กระเป๋าแบรนด์",
		"advanceAmount": 500,
		"netToSeller":   1000,
		"targetPrice":   1200,
	}), token)
	if resp.Code != 200 {
		t.Fatalf("create consignment failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	csg := decodeMap(t, resp)
	cid := uint(csg["id"].(float64))

	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/consignments/%d/sell", cid),
		jsonBody(t, map[string]any{"price": 900, "quantity": 1}), token)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 below floor got %d body=%s", resp.Code, resp.Body.String())
	}
	rej := decodeMap(t, resp)
	if rej["minSalePrice"] != 1000.0 {
		t.Fatalf("expected minSalePrice hint 1000 got %+v", rej)
	}

	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/consignments/%d/sell", cid),
		jsonBody(t, map[string]any{"price": 1200, "quantity": 1}), token)
	if resp.Code != 200 {
		t.Fatalf("sell failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	sale := decodeMap(t, resp)
	if sale["commissionFee"] != 200.0 || sale["sellerPayout"] != 1000.0 {
		t.Fatalf("unexpected sale split %+v", sale)
	}
	if sale["status"] != "SOLD" {
		t.Fatalf("expected SOLD after exhausting stock, got %v", sale["status"])
	}
}

func TestPhoneOnlyBuyersAreIndependent(t *testing.T) {
	r, token := setupTestServer(t)

	mk := func(name string) uint {
		resp := performRequest(r, http.MethodPost, "/inventory", jsonBody(t, map[string]any{
			"name": name, "cost": 100, "targetPrice": 200, "quantity": 1,
		}), token)
		if resp.Code != 200 {
			t.Fatalf("intake failed status=%d body=%s", resp.Code, resp.Body.String())
		}
		return uint(decodeMap(t, resp)["id"].(float64))
	}
	a := mk("สายชาร์จมือสอง")
	b := mk("เคสโทรศัพท์มือสอง")

	// Two buyers known only by (distinct) phone numbers; neither has an
	// idCard, and the second create must not collide with the first.
	sell := func(item uint, phone string) *httptest.ResponseRecorder {
		return performRequest(r, http.MethodPost, fmt.Sprintf("/inventory/%d/sell", item),
			jsonBody(t, map[string]any{"quantity": 1, "sellingPrice": 200, "buyerPhone": phone}), token)
	}
	if resp := sell(a, "0801112222"); resp.Code != 200 {
		t.Fatalf("first phone-only sell failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	if resp := sell(b, "0803334444"); resp.Code != 200 {
		t.Fatalf("second phone-only sell failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// Selling to a repeated phone reuses the existing customer row.
	c := mk("ที่ชาร์จไร้สายมือสอง")
	if resp := sell(c, "0801112222"); resp.Code != 200 {
		t.Fatalf("repeat phone-only sell failed status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestBulkSellRollsBackWholeBatch(t *testing.T) {
	r, token := setupTestServer(t)

	// Scenario E: second line exceeds availability; nothing sells.
	mk := func(name string, qty int) uint {
		resp := performRequest(r, http.MethodPost, "/inventory", jsonBody(t, map[string]any{
			"name": name, "cost": 300, "targetPrice": 500, "quantity": qty,
		}), token)
		if resp.Code != 200 {
			t.Fatalf("intake failed status=%d body=%s", resp.Code, resp.Body.String())
		}
		return uint(decodeMap(t, resp)["id"].(float64))
	}
	a := mk("หูฟังมือสอง", 3)
	b := mk("ลำโพงมือสอง", 1)

	resp := performRequest(r, http.MethodPost, "/inventory/bulk-sell", jsonBody(t, map[string]any{
		"buyerPhone": "0890000001",
		"items": []map[string]any{
			{"itemId": a, "quantity": 1, "sellingPrice": 500},
			{"itemId": b, "quantity": 5, "sellingPrice": 500},
		},
	}), token)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", resp.Code, resp.Body.String())
	}
	rej := decodeMap(t, resp)
	if rej["message"] != "QTY_EXCEED" || uint(rej["itemId"].(float64)) != b {
		t.Fatalf("expected QTY_EXCEED on item %d got %+v", b, rej)
	}

	// First item's stock is untouched by the rolled-back batch.
	resp = performRequest(r, http.MethodGet, "/inventory?status=IN_STOCK", nil, token)
	var items []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode inventory list: %v", err)
	}
	for _, it := range items {
		if uint(it["id"].(float64)) == a && it["quantityAvailable"] != 3.0 {
			t.Fatalf("expected item %d untouched with 3 available, got %v", a, it["quantityAvailable"])
		}
	}

	// A valid single sell then decrements and accumulates profit.
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/inventory/%d/sell", a),
		jsonBody(t, map[string]any{"quantity": 2, "sellingPrice": 500, "buyerPhone": "0890000001"}), token)
	if resp.Code != 200 {
		t.Fatalf("single sell failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	res := decodeMap(t, resp)
	// unit cost 100 (300 across 3 units), profit (500-100)x2 = 800
	if res["profit"] != 800.0 {
		t.Fatalf("expected profit 800 got %v", res["profit"])
	}
	item := res["item"].(map[string]any)
	if item["quantityAvailable"] != 1.0 || item["status"] != "IN_STOCK" {
		t.Fatalf("expected 1 left IN_STOCK got %+v", item)
	}
}
