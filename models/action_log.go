package models

import "time"

// ContractAction identifies a lifecycle event recorded in the audit trail.
type ContractAction string

const (
	ActionNewContract   ContractAction = "NEW_CONTRACT"
	ActionRenewContract ContractAction = "RENEW_CONTRACT"
	ActionRedeem        ContractAction = "REDEEM"
	ActionCutPrincipal  ContractAction = "CUT_PRINCIPAL"
	ActionForfeit       ContractAction = "FORFEIT"
	ActionNotifyLine    ContractAction = "NOTIFY_CUSTOMER_LINE"
)

// ContractActionLog is an immutable audit row written alongside each
// lifecycle transition. Never updated or deleted.
type ContractActionLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"createdAt"`
	ContractID uint           `gorm:"index;not null" json:"contractId"`
	Action     ContractAction `gorm:"size:32;not null" json:"action"`
	Amount     float64        `json:"amount"`
	Note       string         `gorm:"size:512" json:"note"`
}
