package models

import "time"

// ConsignmentStatus tracks a consignment agreement. SOLD only when the
// linked item's availability reaches zero; partial sells keep it ACTIVE.
type ConsignmentStatus string

const (
	ConsignmentActive ConsignmentStatus = "ACTIVE"
	ConsignmentSold   ConsignmentStatus = "SOLD"
)

// ConsignmentContract is an agreement to sell on behalf of a seller for a
// guaranteed per-unit payout, keeping the margin as commission. Linked 1:1
// to the InventoryItem that carries its stock.
type ConsignmentContract struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Code string `gorm:"size:32;not null;uniqueIndex" json:"code"` // CSG-YYYY-NNN

	SellerName    string `gorm:"size:255;not null" json:"sellerName"`
	SellerIDCard  string `gorm:"size:32" json:"sellerIdCard"`
	SellerPhone   string `gorm:"size:64" json:"sellerPhone"`
	SellerAddress string `gorm:"size:512" json:"sellerAddress"`

	ItemName string `gorm:"size:255;not null" json:"itemName"`

	// AdvanceAmount is cash paid to the seller up front; it becomes the
	// linked item's cost. NetToSeller is the guaranteed per-unit payout and
	// the hard price floor at sale time.
	AdvanceAmount float64 `gorm:"not null;default:0" json:"advanceAmount"`
	NetToSeller   float64 `gorm:"not null" json:"netToSeller"`
	TargetPrice   float64 `json:"targetPrice"`

	Status ConsignmentStatus `gorm:"size:16;not null;default:'ACTIVE';index" json:"status"`

	InventoryItemID uint          `gorm:"uniqueIndex;not null" json:"inventoryItemId"`
	InventoryItem   InventoryItem `gorm:"foreignKey:InventoryItemID" json:"inventoryItem,omitempty"`
}
