package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"pawnbook/models"
	"pawnbook/pkg/finance"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// createConsignmentHandler opens a consignment agreement. The stock item,
// the agreement, and the optional advance payout are one transaction.
func createConsignmentHandler(c *gin.Context) {
	var req struct {
		SellerName    string  `json:"sellerName" binding:"required"`
		SellerIDCard  string  `json:"sellerIdCard"`
		SellerPhone   string  `json:"sellerPhone"`
		SellerAddress string  `json:"sellerAddress"`
		ItemName      string  `json:"itemName" binding:"required"`
		Serial        string  `json:"serial"`
		Quantity      int     `json:"quantity"`
		AdvanceAmount float64 `json:"advanceAmount"`
		NetToSeller   float64 `json:"netToSeller" binding:"required"`
		TargetPrice   float64 `json:"targetPrice"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}
	if req.AdvanceAmount < 0 || req.NetToSeller < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "amounts must be non-negative"})
		return
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}

	var csg models.ConsignmentContract
	err := db.Transaction(func(tx *gorm.DB) error {
		itemCode, cerr := nextCode(tx, models.CodeKindInventory)
		if cerr != nil {
			return cerr
		}
		item := models.InventoryItem{
			Code:              itemCode,
			Name:              req.ItemName,
			Serial:            req.Serial,
			Source:            models.SourceConsignment,
			Cost:              req.AdvanceAmount,
			TargetPrice:       req.TargetPrice,
			Quantity:          qty,
			QuantityAvailable: qty,
			Status:            models.ItemInStock,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		code, cerr := nextCode(tx, models.CodeKindConsignment)
		if cerr != nil {
			return cerr
		}
		csg = models.ConsignmentContract{
			Code:            code,
			SellerName:      req.SellerName,
			SellerIDCard:    req.SellerIDCard,
			SellerPhone:     req.SellerPhone,
			SellerAddress:   req.SellerAddress,
			ItemName:        req.ItemName,
			AdvanceAmount:   req.AdvanceAmount,
			NetToSeller:     req.NetToSeller,
			TargetPrice:     req.TargetPrice,
			Status:          models.ConsignmentActive,
			InventoryItemID: item.ID,
		}
		if err := tx.Create(&csg).Error; err != nil {
			return err
		}
		// Back-link so sales can tell consignment stock from shop stock.
		ccid := csg.ID
		if err := tx.Model(&item).Update("consignment_contract_id", ccid).Error; err != nil {
			return err
		}
		if req.AdvanceAmount > 0 {
			iid := item.ID
			entry := models.CashbookEntry{
				Type:            models.EntryOut,
				Category:        models.CatConsignmentAdvanceOut,
				Amount:          req.AdvanceAmount,
				Description:     fmt.Sprintf("จ่ายเงินล่วงหน้ารับขายฝาก %s", code),
				InventoryItemID: &iid,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "consignment create failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, csg)
}

// sellConsignmentHandler sells consignment units. Everything — stock
// decrement, status flips, and the three ledger entries (gross in, seller
// payout out, commission in) — commits atomically. Pricing below the
// seller's guaranteed payout is rejected; that floor is the one hard
// invariant of consignment.
func sellConsignmentHandler(c *gin.Context) {
	var csg models.ConsignmentContract
	if err := db.First(&csg, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "consignment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		}
		return
	}
	var req struct {
		Quantity int      `json:"quantity"`
		Price    *float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}
	if req.Price == nil || *req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "price must be a non-negative number"})
		return
	}
	price := *req.Price

	type result struct {
		payout, gross, commission, vat float64
		item                           models.InventoryItem
	}
	var res result
	txErr := db.Transaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		if err := tx.First(&item, csg.InventoryItemID).Error; err != nil {
			return err
		}
		if qty > item.QuantityAvailable {
			return &saleError{status: http.StatusBadRequest, body: gin.H{
				"message":   "quantity exceeds available stock",
				"available": item.QuantityAvailable,
			}}
		}
		payout, gross, commission, vat, err := finance.ConsignmentSale(csg.NetToSeller, price, qty)
		if err != nil {
			return &saleError{status: http.StatusBadRequest, body: gin.H{
				"message":      "sale price is below the guaranteed seller payout",
				"minSalePrice": csg.NetToSeller,
			}}
		}
		now := time.Now().UTC()
		item.QuantitySold += qty
		item.QuantityAvailable = item.Quantity - item.QuantitySold
		item.SellingPrice = price
		item.GrossProfit += commission
		item.NetProfit += commission
		item.SoldAt = &now
		if item.QuantityAvailable == 0 {
			item.Status = models.ItemSold
		}
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		if item.QuantityAvailable == 0 {
			if err := tx.Model(&models.ConsignmentContract{}).Where("id = ?", csg.ID).
				Update("status", models.ConsignmentSold).Error; err != nil {
				return err
			}
		}
		iid := item.ID
		entries := []models.CashbookEntry{
			{
				Type: models.EntryIn, Category: models.CatConsignmentSaleIn,
				Amount:          gross,
				Description:     fmt.Sprintf("ขายสินค้าฝากขาย %s จำนวน %d ชิ้น", item.Name, qty),
				InventoryItemID: &iid,
			},
			{
				Type: models.EntryOut, Category: models.CatConsignmentPayoutOut,
				Amount:          payout,
				Description:     fmt.Sprintf("จ่ายเงินผู้ฝากขาย %s", csg.Code),
				InventoryItemID: &iid,
			},
			{
				Type: models.EntryIn, Category: models.CatConsignmentCommissionFee,
				Amount: commission, Profit: commission,
				Description:     fmt.Sprintf("ค่าคอมมิชชั่นขายฝาก %s (VAT %.2f)", csg.Code, vat),
				InventoryItemID: &iid,
			},
		}
		for i := range entries {
			if err := tx.Create(&entries[i]).Error; err != nil {
				return err
			}
		}
		res = result{payout: payout, gross: gross, commission: commission, vat: vat, item: item}
		return nil
	})
	if txErr != nil {
		var se *saleError
		if errors.As(txErr, &se) {
			c.JSON(se.status, se.body)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "sell failed", "error": txErr.Error()})
		return
	}
	status := models.ConsignmentActive
	if res.item.QuantityAvailable == 0 {
		status = models.ConsignmentSold
	}
	c.JSON(http.StatusOK, gin.H{
		"consignmentId": csg.ID,
		"status":        status,
		"grossSale":     res.gross,
		"sellerPayout":  res.payout,
		"commissionFee": res.commission,
		"vat":           res.vat,
		"item":          res.item,
	})
}

// saleError carries a handler-ready status and body through a transaction
// rollback.
type saleError struct {
	status int
	body   gin.H
}

func (e *saleError) Error() string {
	if m, ok := e.body["message"].(string); ok {
		return m
	}
	return "sale rejected"
}

func listConsignmentsHandler(c *gin.Context) {
	q := db.Model(&models.ConsignmentContract{}).Preload("InventoryItem")
	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", s)
	}
	var items []models.ConsignmentContract
	if err := q.Order("id desc").Limit(200).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func getConsignmentHandler(c *gin.Context) {
	var csg models.ConsignmentContract
	if err := db.Preload("InventoryItem").First(&csg, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "consignment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, csg)
}
