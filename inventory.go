package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pawnbook/models"
	"pawnbook/pkg/finance"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// createInventoryHandler intakes purchased stock. The item row and the
// buy-in cash-out entry commit together.
func createInventoryHandler(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Serial      string  `json:"serial"`
		Cost        float64 `json:"cost"`
		TargetPrice float64 `json:"targetPrice"`
		Quantity    int     `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}
	if req.Cost < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "cost must be a non-negative number"})
		return
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}
	var item models.InventoryItem
	err := db.Transaction(func(tx *gorm.DB) error {
		code, cerr := nextCode(tx, models.CodeKindInventory)
		if cerr != nil {
			return cerr
		}
		item = models.InventoryItem{
			Code:              code,
			Name:              req.Name,
			Serial:            req.Serial,
			Source:            models.SourcePurchase,
			Cost:              req.Cost,
			TargetPrice:       req.TargetPrice,
			Quantity:          qty,
			QuantityAvailable: qty,
			Status:            models.ItemInStock,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		if req.Cost > 0 {
			iid := item.ID
			entry := models.CashbookEntry{
				Type:            models.EntryOut,
				Category:        models.CatInventoryPurchase,
				Amount:          req.Cost,
				Description:     fmt.Sprintf("ซื้อเข้าสินค้า %s จำนวน %d ชิ้น", req.Name, qty),
				InventoryItemID: &iid,
			}
			return tx.Create(&entry).Error
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "inventory create failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// resolveBuyer upserts the buyer identity: by idCard when supplied, else
// find-or-create by phone, else no customer link. Governs whether the
// buyer later shows up in the BUYER customer segment.
func resolveBuyer(name, phone, idCard string) (*models.Customer, error) {
	if strings.TrimSpace(idCard) != "" {
		return upsertCustomerByIDCard(customerInput{Name: name, IDCard: idCard, Phone: phone})
	}
	if strings.TrimSpace(phone) != "" {
		var cust models.Customer
		err := db.Where("phone = ?", phone).First(&cust).Error
		if err == nil {
			return &cust, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		cust = models.Customer{Name: name, Phone: phone}
		if err := db.Create(&cust).Error; err != nil {
			return nil, err
		}
		return &cust, nil
	}
	return nil, nil
}

// sellItemLine applies the per-line sale algorithm to one item inside tx:
// stock checks, unit-cost profit, buyer snapshot, stock decrement, and the
// sale ledger entry. Rejections come back as *saleError so the surrounding
// transaction rolls back and the handler answers 400.
func sellItemLine(tx *gorm.DB, itemID uint, qty int, price float64, buyer *models.Customer) (*models.InventoryItem, float64, error) {
	var item models.InventoryItem
	if err := tx.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, &saleError{status: http.StatusNotFound, body: gin.H{
				"message": "inventory item not found", "itemId": itemID,
			}}
		}
		return nil, 0, err
	}
	if item.QuantityAvailable <= 0 || item.Status == models.ItemSold {
		return nil, 0, &saleError{status: http.StatusBadRequest, body: gin.H{
			"message": "OUT_OF_STOCK", "itemId": itemID,
		}}
	}
	if qty > item.QuantityAvailable {
		return nil, 0, &saleError{status: http.StatusBadRequest, body: gin.H{
			"message": "QTY_EXCEED", "itemId": itemID, "available": item.QuantityAvailable,
		}}
	}
	unitCost := finance.UnitCost(item.Cost, item.Quantity)
	profit := finance.SaleProfit(price, unitCost, qty)
	now := time.Now().UTC()
	item.QuantitySold += qty
	item.QuantityAvailable = item.Quantity - item.QuantitySold
	item.SellingPrice = price
	item.GrossProfit += profit
	item.NetProfit += profit
	item.SoldAt = &now
	if item.QuantityAvailable == 0 {
		item.Status = models.ItemSold
	}
	if buyer != nil {
		item.BuyerName = buyer.Name
		item.BuyerPhone = buyer.Phone
		item.BuyerIDCard = buyer.IDCard
	}
	if err := tx.Save(&item).Error; err != nil {
		return nil, 0, err
	}
	iid := item.ID
	entry := models.CashbookEntry{
		Type:            models.EntryIn,
		Category:        models.CatInventorySale,
		Amount:          price * float64(qty),
		Profit:          profit,
		Description:     fmt.Sprintf("ขายสินค้า %s จำนวน %d ชิ้น", item.Name, qty),
		InventoryItemID: &iid,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, 0, err
	}
	return &item, profit, nil
}

func sellInventoryHandler(c *gin.Context) {
	var probe models.InventoryItem
	if err := db.First(&probe, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "inventory item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		}
		return
	}
	var req struct {
		Quantity     int      `json:"quantity"`
		SellingPrice *float64 `json:"sellingPrice"`
		BuyerName    string   `json:"buyerName"`
		BuyerPhone   string   `json:"buyerPhone"`
		BuyerIDCard  string   `json:"buyerIdCard"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}
	if req.SellingPrice == nil || *req.SellingPrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "sellingPrice must be a non-negative number"})
		return
	}
	buyer, err := resolveBuyer(req.BuyerName, req.BuyerPhone, req.BuyerIDCard)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "buyer resolution failed", "error": err.Error()})
		return
	}
	var sold *models.InventoryItem
	var profit float64
	txErr := db.Transaction(func(tx *gorm.DB) error {
		var lerr error
		sold, profit, lerr = sellItemLine(tx, probe.ID, qty, *req.SellingPrice, buyer)
		return lerr
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
	c.JSON(http.StatusOK, gin.H{"item": sold, "profit": profit})
}

// bulkSellInventoryHandler sells several items to one buyer. The buyer is
// resolved once; every line runs inside one transaction, so a single
// failing line aborts the whole batch and reports which itemId failed.
func bulkSellInventoryHandler(c *gin.Context) {
	var req struct {
		BuyerName   string `json:"buyerName"`
		BuyerPhone  string `json:"buyerPhone"`
		BuyerIDCard string `json:"buyerIdCard"`
		Items       []struct {
			ItemID       uint     `json:"itemId"`
			Quantity     int      `json:"quantity"`
			SellingPrice *float64 `json:"sellingPrice"`
		} `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "items must not be empty"})
		return
	}
	for _, line := range req.Items {
		if line.SellingPrice == nil || *line.SellingPrice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "sellingPrice must be a non-negative number", "itemId": line.ItemID})
			return
		}
	}
	buyer, err := resolveBuyer(req.BuyerName, req.BuyerPhone, req.BuyerIDCard)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "buyer resolution failed", "error": err.Error()})
		return
	}
	type lineResult struct {
		ItemID uint    `json:"itemId"`
		Profit float64 `json:"profit"`
	}
	var results []lineResult
	var totalProfit float64
	txErr := db.Transaction(func(tx *gorm.DB) error {
		for _, line := range req.Items {
			qty := line.Quantity
			if qty <= 0 {
				qty = 1
			}
			_, profit, lerr := sellItemLine(tx, line.ItemID, qty, *line.SellingPrice, buyer)
			if lerr != nil {
				return lerr
			}
			results = append(results, lineResult{ItemID: line.ItemID, Profit: profit})
			totalProfit += profit
		}
		return nil
	})
	if txErr != nil {
		var se *saleError
		if errors.As(txErr, &se) {
			c.JSON(se.status, se.body)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "bulk sell failed", "error": txErr.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sold": results, "totalProfit": totalProfit})
}

func listInventoryHandler(c *gin.Context) {
	q := db.Model(&models.InventoryItem{})
	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", strings.ToUpper(s))
	}
	if src := c.Query("sourceType"); src != "" {
		q = q.Where("source = ?", strings.ToUpper(src))
	}
	var items []models.InventoryItem
	if err := q.Order("id desc").Limit(200).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}
