package models

import "time"

// EntryType is the direction of a money movement.
type EntryType string

const (
	EntryIn  EntryType = "IN"
	EntryOut EntryType = "OUT"
)

// Ledger categories. New rows always carry one of these; historical rows
// imported from the old system may carry free-form tags, which is why the
// stats classifier matches loosely (see stats.go).
const (
	CatDepositPrincipalOut      = "DEPOSIT_PRINCIPAL_OUT"
	CatRenewFee                 = "RENEW_FEE"
	CatRedeem                   = "REDEEM"
	CatCutPrincipal             = "CUT_PRINCIPAL"
	CatInventoryPurchase        = "INVENTORY_PURCHASE"
	CatInventorySale            = "INVENTORY_SALE"
	CatConsignmentAdvanceOut    = "CONSIGNMENT_ADVANCE_OUT"
	CatConsignmentSaleIn        = "CONSIGNMENT_SALE_IN"
	CatConsignmentPayoutOut     = "CONSIGNMENT_PAYOUT_OUT"
	CatConsignmentCommissionFee = "CONSIGNMENT_COMMISSION_FEE"
	CatGeneralIn                = "GENERAL_IN"
	CatGeneralOut               = "GENERAL_OUT"
)

// CashbookEntry is one append-only money-movement record. The ledger
// balance over any period is sum(IN amounts) - sum(OUT amounts); Profit is
// an independently summed column, not derived from Amount. An entry links
// to at most one business object (contract or inventory item).
type CashbookEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Type        EntryType `gorm:"size:8;not null;index" json:"type"`
	Category    string    `gorm:"size:64;not null;index" json:"category"`
	Amount      float64   `gorm:"not null" json:"amount"` // always >= 0
	Profit      float64   `gorm:"not null;default:0" json:"profit"`
	Description string    `gorm:"size:512" json:"description"`

	ContractID      *uint `gorm:"index" json:"contractId,omitempty"`
	InventoryItemID *uint `gorm:"index" json:"inventoryItemId,omitempty"`
}
