package models

import "time"

// ContractStatus is the lifecycle state of a deposit contract.
// ACTIVE is the only non-terminal state; RENEWED closes the row but
// spawns a successor linked via PreviousContractID.
type ContractStatus string

const (
	ContractActive    ContractStatus = "ACTIVE"
	ContractRenewed   ContractStatus = "RENEWED"
	ContractRedeemed  ContractStatus = "REDEEMED"
	ContractForfeited ContractStatus = "FORFEITED"
)

// FeeBreakdown is the fee snapshot charged for one contract term.
// Fixed at creation/renewal, never retroactively recalculated.
type FeeBreakdown struct {
	DocFee     float64 `json:"docFee"`
	StorageFee float64 `json:"storageFee"`
	CareFee    float64 `json:"careFee"`
	Total      float64 `json:"total"`
}

// Contract represents a deposit (pawn) agreement. Rows are never deleted;
// history is preserved through the renewal chain and the action logs.
type Contract struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Code string `gorm:"size:32;not null;uniqueIndex" json:"code"` // DEP-YYYY-NNN

	// Principal is the current outstanding amount. It only decreases
	// (cut-principal) and must stay >= 0.
	Principal float64        `gorm:"not null" json:"principal"`
	Fee       FeeBreakdown   `gorm:"embedded;embeddedPrefix:fee_" json:"feeConfig"`
	TermDays  int            `gorm:"not null" json:"termDays"`
	StartDate time.Time      `gorm:"not null" json:"startDate"`
	DueDate   time.Time      `gorm:"not null" json:"dueDate"`
	Status    ContractStatus `gorm:"size:16;not null;default:'ACTIVE';index" json:"status"`

	CustomerID uint     `gorm:"index;not null" json:"customerId"`
	Customer   Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	// PreviousContractID links a renewal back to the contract it replaced.
	PreviousContractID *uint `gorm:"index" json:"previousContractId,omitempty"`

	// Pledged asset descriptor.
	ItemName    string `gorm:"size:255;not null" json:"itemName"`
	ItemModel   string `gorm:"size:255" json:"itemModel"`
	Serial      string `gorm:"size:128" json:"serial"`
	Condition   string `gorm:"size:255" json:"condition"`
	Accessories string `gorm:"size:512" json:"accessories"`
	StorageSlot string `gorm:"size:32" json:"storageSlot"`

	ActionLogs      []ContractActionLog `gorm:"foreignKey:ContractID" json:"actionLogs,omitempty"`
	CashbookEntries []CashbookEntry     `gorm:"foreignKey:ContractID" json:"cashbookEntries,omitempty"`
}

// Terminal reports whether the contract can accept no further transitions.
func (c *Contract) Terminal() bool {
	return c.Status != ContractActive
}
