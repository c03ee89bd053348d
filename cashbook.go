package main

import (
	"net/http"
	"strings"

	"pawnbook/models"

	"github.com/gin-gonic/gin"
)

// listCashbookHandler returns ledger entries for a period, newest first,
// with the period totals. Balance is sum(IN) - sum(OUT); profit is its own
// column, summed independently.
func listCashbookHandler(c *gin.Context) {
	start, end, err := periodFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	q := db.Model(&models.CashbookEntry{}).
		Where("created_at >= ? AND created_at < ?", start, end)
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", strings.ToUpper(t))
	}
	if cat := c.Query("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}
	var entries []models.CashbookEntry
	if err := q.Order("created_at desc, id desc").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		return
	}
	var totalIn, totalOut, totalProfit float64
	for _, e := range entries {
		switch e.Type {
		case models.EntryIn:
			totalIn += e.Amount
		case models.EntryOut:
			totalOut += e.Amount
		}
		totalProfit += e.Profit
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":     entries,
		"totalIn":     totalIn,
		"totalOut":    totalOut,
		"balance":     totalIn - totalOut,
		"totalProfit": totalProfit,
	})
}

// createCashbookEntryHandler records a manual money movement not tied to a
// contract or item (rent, utilities, owner drawings and the like).
func createCashbookEntryHandler(c *gin.Context) {
	var req struct {
		Type        string   `json:"type" binding:"required"`
		Amount      *float64 `json:"amount" binding:"required"`
		Profit      float64  `json:"profit"`
		Description string   `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "type and amount are required", "error": err.Error()})
		return
	}
	entryType := models.EntryType(strings.ToUpper(req.Type))
	if entryType != models.EntryIn && entryType != models.EntryOut {
		c.JSON(http.StatusBadRequest, gin.H{"message": "type must be IN or OUT"})
		return
	}
	if *req.Amount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "amount must be a non-negative number"})
		return
	}
	category := models.CatGeneralIn
	if entryType == models.EntryOut {
		category = models.CatGeneralOut
	}
	entry := models.CashbookEntry{
		Type:        entryType,
		Category:    category,
		Amount:      *req.Amount,
		Profit:      req.Profit,
		Description: req.Description,
	}
	if err := db.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entry)
}
