package main

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pawnbook/models"
	"pawnbook/pkg/finance"

	"github.com/gin-gonic/gin"
)

// periodFromQuery resolves ?mode=month|year&year=&month= into a half-open
// UTC interval [start, end). Defaults to the current calendar month.
func periodFromQuery(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	mode := c.DefaultQuery("mode", "month")
	year := now.Year()
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("year must be a number")
		}
		year = n
	}
	switch mode {
	case "month":
		month := int(now.Month())
		if v := c.Query("month"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 12 {
				return time.Time{}, time.Time{}, fmt.Errorf("month must be 1-12")
			}
			month = n
		}
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), nil
	case "year":
		start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("mode must be month or year")
	}
}

// Report buckets. Historical rows imported from the old system carry
// inconsistent free-form categories, so classification matches loosely:
// a row lands in a bucket when either its category contains one of the
// bucket's category tags or its description contains one of the bucket's
// keywords, case-insensitively. New rows always match on category.
type statBucket int

const (
	bucketNone statBucket = iota
	bucketDepositServiceFee
	bucketInventorySale
	bucketInventoryBuyIn
)

var (
	depositFeeCategories = []string{"RENEW_FEE", "REDEEM", "CUT_PRINCIPAL"}
	depositFeeKeywords   = []string{"ค่าธรรมเนียม", "ต่อสัญญา", "ไถ่ถอน", "ลดเงินต้น", "ต่อดอก"}

	saleCategories = []string{"INVENTORY_SALE", "CONSIGNMENT_SALE"}
	saleKeywords   = []string{"ขายสินค้า", "ขายฝากขาย"}

	buyInCategories = []string{"INVENTORY_PURCHASE", "CONSIGNMENT_ADVANCE"}
	buyInKeywords   = []string{"ซื้อเข้า", "รับซื้อ", "เงินล่วงหน้า"}
)

func matchesAny(s string, needles []string) bool {
	ls := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(ls, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// classifyEntry routes a ledger row into a report bucket.
func classifyEntry(category, description string) statBucket {
	switch {
	case matchesAny(category, depositFeeCategories) || matchesAny(description, depositFeeKeywords):
		return bucketDepositServiceFee
	case matchesAny(category, saleCategories) || matchesAny(description, saleKeywords):
		return bucketInventorySale
	case matchesAny(category, buyInCategories) || matchesAny(description, buyInKeywords):
		return bucketInventoryBuyIn
	default:
		return bucketNone
	}
}

var qtyRE = regexp.MustCompile(`จำนวน\s*:?\s*(\d+)`)

// qtyFromDescription parses the sold quantity out of a free-text ledger
// description ("... จำนวน 2 ชิ้น"), defaulting to 1 when absent.
func qtyFromDescription(desc string) int {
	m := qtyRE.FindStringSubmatch(desc)
	if len(m) != 2 {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// consignmentCommission recovers the shop's commission from a consignment
// sale row: the recorded profit when present, otherwise derived as
// amount - netToSeller x qty with the quantity parsed from the description.
func consignmentCommission(amount, profit, netToSeller float64, description string) float64 {
	if profit != 0 {
		return profit
	}
	qty := qtyFromDescription(description)
	commission := amount - netToSeller*float64(qty)
	if commission < 0 {
		return 0
	}
	return commission
}

// adminStatsHandler aggregates the ledger and contracts over a period.
// VAT on consignment commission is recomputed at read time, never stored.
func adminStatsHandler(c *gin.Context) {
	start, end, err := periodFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	var entries []models.CashbookEntry
	if err := db.Where("created_at >= ? AND created_at < ?", start, end).
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		return
	}

	var totalIn, totalOut, totalProfit float64
	var depositServiceFee, inventorySale, consignmentSale, inventoryBuyIn float64
	var commission float64

	// Cache item -> consignment lookups; a period usually touches a handful.
	itemConsignment := map[uint]*models.ConsignmentContract{}
	lookupConsignment := func(itemID uint) *models.ConsignmentContract {
		if csg, seen := itemConsignment[itemID]; seen {
			return csg
		}
		var item models.InventoryItem
		if err := db.First(&item, itemID).Error; err != nil || item.ConsignmentContractID == nil {
			itemConsignment[itemID] = nil
			return nil
		}
		var csg models.ConsignmentContract
		if err := db.First(&csg, *item.ConsignmentContractID).Error; err != nil {
			itemConsignment[itemID] = nil
			return nil
		}
		itemConsignment[itemID] = &csg
		return &csg
	}

	for _, e := range entries {
		switch e.Type {
		case models.EntryIn:
			totalIn += e.Amount
		case models.EntryOut:
			totalOut += e.Amount
		}
		totalProfit += e.Profit

		switch classifyEntry(e.Category, e.Description) {
		case bucketDepositServiceFee:
			// Redemption rows carry the returned principal in Amount; the
			// fee actually recognized lives in Profit for every deposit
			// service category, so the bucket sums that column.
			if e.Type == models.EntryIn {
				depositServiceFee += e.Profit
			}
		case bucketInventorySale:
			if e.Type != models.EntryIn {
				break
			}
			var csg *models.ConsignmentContract
			if e.InventoryItemID != nil {
				csg = lookupConsignment(*e.InventoryItemID)
			}
			if csg != nil {
				consignmentSale += e.Amount
				commission += consignmentCommission(e.Amount, e.Profit, csg.NetToSeller, e.Description)
			} else {
				inventorySale += e.Amount
			}
		case bucketInventoryBuyIn:
			if e.Type == models.EntryOut {
				inventoryBuyIn += e.Amount
			}
		}
	}

	var activeContracts, openedInPeriod int64
	if err := db.Model(&models.Contract{}).Where("status = ?", models.ContractActive).
		Count(&activeContracts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		return
	}
	if err := db.Model(&models.Contract{}).Where("created_at >= ? AND created_at < ?", start, end).
		Count(&openedInPeriod).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		return
	}
	statusCounts := map[string]int64{}
	for _, s := range []models.ContractStatus{models.ContractActive, models.ContractRenewed, models.ContractRedeemed, models.ContractForfeited} {
		var n int64
		if err := db.Model(&models.Contract{}).
			Where("status = ? AND created_at >= ? AND created_at < ?", s, start, end).
			Count(&n).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
			return
		}
		statusCounts[string(s)] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"periodStart": start,
		"periodEnd":   end,
		"totalIn":     totalIn,
		"totalOut":    totalOut,
		"balance":     totalIn - totalOut,
		"totalProfit": totalProfit,
		"buckets": gin.H{
			"depositServiceFee": depositServiceFee,
			"inventorySale":     inventorySale,
			"consignmentSale":   consignmentSale,
			"inventoryBuyIn":    inventoryBuyIn,
		},
		"consignmentCommission": commission,
		"consignmentVAT":        commission * finance.VATRate,
		"contracts": gin.H{
			"active":         activeContracts,
			"openedInPeriod": openedInPeriod,
			"byStatus":       statusCounts,
		},
	})
}

// adminStatsSeriesHandler returns twelve monthly rows for a year, for the
// console's charts.
func adminStatsSeriesHandler(c *gin.Context) {
	year := time.Now().UTC().Year()
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "year must be a number"})
			return
		}
		year = n
	}
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	type monthRow struct {
		Month         int     `json:"month"`
		TotalIn       float64 `json:"totalIn"`
		TotalOut      float64 `json:"totalOut"`
		Profit        float64 `json:"profit"`
		ContractCount int64   `json:"contractCount"`
	}
	rows := make([]monthRow, 12)
	for i := range rows {
		rows[i].Month = i + 1
	}

	ledgerRows, err := db.Raw(`
		SELECT EXTRACT(MONTH FROM created_at AT TIME ZONE 'UTC')::int AS month,
		       COALESCE(SUM(CASE WHEN type = 'IN' THEN amount ELSE 0 END), 0) AS total_in,
		       COALESCE(SUM(CASE WHEN type = 'OUT' THEN amount ELSE 0 END), 0) AS total_out,
		       COALESCE(SUM(profit), 0) AS profit
		FROM cashbook_entries
		WHERE created_at >= ? AND created_at < ?
		GROUP BY month`, start, end).Rows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		return
	}
	defer ledgerRows.Close()
	for ledgerRows.Next() {
		var m int
		var in, out, profit float64
		if err := ledgerRows.Scan(&m, &in, &out, &profit); err != nil {
			continue
		}
		if m >= 1 && m <= 12 {
			rows[m-1].TotalIn = in
			rows[m-1].TotalOut = out
			rows[m-1].Profit = profit
		}
	}

	contractRows, err := db.Raw(`
		SELECT EXTRACT(MONTH FROM created_at AT TIME ZONE 'UTC')::int AS month,
		       COUNT(*) AS n
		FROM contracts
		WHERE created_at >= ? AND created_at < ?
		GROUP BY month`, start, end).Rows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		return
	}
	defer contractRows.Close()
	for contractRows.Next() {
		var m int
		var n int64
		if err := contractRows.Scan(&m, &n); err != nil {
			continue
		}
		if m >= 1 && m <= 12 {
			rows[m-1].ContractCount = n
		}
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "series": rows})
}
