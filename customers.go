package main

import (
	"errors"
	"net/http"

	"pawnbook/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Customer segments, computed at read time by joining against the roles a
// person has actually played. idCard/phone stay candidate keys in the
// store; nothing is classified by stored strings at write time.
const (
	segmentDepositor = "DEPOSITOR"
	segmentBuyer     = "BUYER"
	segmentConsignor = "CONSIGNOR"
)

// segmentsFor derives the customer's segments from contracts, inventory
// buyer snapshots and consignment seller identities.
func segmentsFor(cust *models.Customer) ([]string, error) {
	var segments []string

	var contractCount int64
	if err := db.Model(&models.Contract{}).Where("customer_id = ?", cust.ID).
		Count(&contractCount).Error; err != nil {
		return nil, err
	}
	if contractCount > 0 {
		segments = append(segments, segmentDepositor)
	}

	buyerQ := db.Model(&models.InventoryItem{})
	switch {
	case cust.IDCard != "" && cust.Phone != "":
		buyerQ = buyerQ.Where("buyer_id_card = ? OR buyer_phone = ?", cust.IDCard, cust.Phone)
	case cust.IDCard != "":
		buyerQ = buyerQ.Where("buyer_id_card = ?", cust.IDCard)
	case cust.Phone != "":
		buyerQ = buyerQ.Where("buyer_phone = ?", cust.Phone)
	default:
		buyerQ = nil
	}
	if buyerQ != nil {
		var boughtCount int64
		if err := buyerQ.Count(&boughtCount).Error; err != nil {
			return nil, err
		}
		if boughtCount > 0 {
			segments = append(segments, segmentBuyer)
		}
	}

	consignorQ := db.Model(&models.ConsignmentContract{})
	switch {
	case cust.IDCard != "" && cust.Phone != "":
		consignorQ = consignorQ.Where("seller_id_card = ? OR seller_phone = ?", cust.IDCard, cust.Phone)
	case cust.IDCard != "":
		consignorQ = consignorQ.Where("seller_id_card = ?", cust.IDCard)
	case cust.Phone != "":
		consignorQ = consignorQ.Where("seller_phone = ?", cust.Phone)
	default:
		consignorQ = nil
	}
	if consignorQ != nil {
		var consignCount int64
		if err := consignorQ.Count(&consignCount).Error; err != nil {
			return nil, err
		}
		if consignCount > 0 {
			segments = append(segments, segmentConsignor)
		}
	}
	return segments, nil
}

// listCustomersHandler returns customers with their computed segments,
// optionally filtered to one segment.
func listCustomersHandler(c *gin.Context) {
	var customers []models.Customer
	if err := db.Order("id desc").Limit(500).Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		return
	}
	filter := c.Query("segment")
	type customerView struct {
		models.Customer
		Segments []string `json:"segments"`
	}
	views := make([]customerView, 0, len(customers))
	for i := range customers {
		segs, err := segmentsFor(&customers[i])
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "segment query failed", "error": err.Error()})
			return
		}
		if filter != "" && !containsString(segs, filter) {
			continue
		}
		views = append(views, customerView{Customer: customers[i], Segments: segs})
	}
	c.JSON(http.StatusOK, views)
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func getCustomerHandler(c *gin.Context) {
	var cust models.Customer
	if err := db.Preload("Contracts").First(&cust, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "customer not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		}
		return
	}
	segs, err := segmentsFor(&cust)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "segment query failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": cust, "segments": segs})
}
