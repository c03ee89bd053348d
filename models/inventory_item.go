package models

import "time"

// ItemSource records how an inventory item entered stock.
type ItemSource string

const (
	SourcePurchase    ItemSource = "PURCHASE"
	SourceConsignment ItemSource = "CONSIGNMENT"
	SourceForfeit     ItemSource = "FORFEIT"
)

// ItemStatus tracks sellability. SOLD exactly when QuantityAvailable == 0.
type ItemStatus string

const (
	ItemInStock ItemStatus = "IN_STOCK"
	ItemSold    ItemStatus = "SOLD"
)

// InventoryItem is a sellable stock unit. Created by buy-in intake, by
// consignment creation, or by contract forfeiture; mutated by each sale
// (partial sales allowed until exhausted); never deleted.
type InventoryItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Code   string     `gorm:"size:32;not null;uniqueIndex" json:"code"` // INV-YYYY-NNN
	Name   string     `gorm:"size:255;not null" json:"name"`
	Serial string     `gorm:"size:128" json:"serial"`
	Source ItemSource `gorm:"size:16;not null;index" json:"sourceType"`

	Cost         float64 `gorm:"not null" json:"cost"`
	TargetPrice  float64 `json:"targetPrice"`
	SellingPrice float64 `json:"sellingPrice"` // last achieved sale price per unit

	// Invariant: QuantityAvailable = Quantity - QuantitySold, never negative.
	Quantity          int `gorm:"not null;default:1" json:"quantity"`
	QuantityAvailable int `gorm:"not null;default:1" json:"quantityAvailable"`
	QuantitySold      int `gorm:"not null;default:0" json:"quantitySold"`

	// Running realized profit accumulators. Identical in this system; no
	// separate deduction is modeled between gross and net.
	GrossProfit float64 `gorm:"not null;default:0" json:"grossProfit"`
	NetProfit   float64 `gorm:"not null;default:0" json:"netProfit"`

	Status ItemStatus `gorm:"size:16;not null;default:'IN_STOCK';index" json:"status"`

	ConsignmentContractID *uint `gorm:"index" json:"consignmentContractId,omitempty"`
	// SourceContractID guards forfeit idempotency: one item per forfeited contract.
	SourceContractID *uint `gorm:"uniqueIndex" json:"sourceContractId,omitempty"`

	// Buyer snapshot from the most recent sale.
	BuyerName   string     `gorm:"size:255" json:"buyerName,omitempty"`
	BuyerPhone  string     `gorm:"size:64" json:"buyerPhone,omitempty"`
	BuyerIDCard string     `gorm:"size:32" json:"buyerIdCard,omitempty"`
	SoldAt      *time.Time `json:"soldAt,omitempty"`
}
