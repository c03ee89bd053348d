package models

import "time"

// Code kinds for human-readable document numbers.
const (
	CodeKindDeposit     = "DEPOSIT"
	CodeKindInventory   = "INVENTORY"
	CodeKindConsignment = "CONSIGNMENT"
)

// CodeSequence is the per-year counter backing document codes such as
// DEP-2026-014. The allocating transaction locks the row FOR UPDATE, so two
// concurrent creates can never be handed the same number.
type CodeSequence struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
	Kind      string    `gorm:"size:16;not null;uniqueIndex:idx_code_kind_year" json:"kind"`
	Year      int       `gorm:"not null;uniqueIndex:idx_code_kind_year" json:"year"`
	LastValue int       `gorm:"not null;default:0" json:"lastValue"`
}
