package models

import "time"

// Customer is a person the shop has dealt with in any role. IDCard is the
// candidate key: contract creation and buyer resolution upsert by it, so a
// duplicate idCard is an update path, not an error. Phone-only buyers are
// stored without an idCard, hence the partial index: empty values must not
// collide with each other.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name    string `gorm:"size:255;not null" json:"name"`
	IDCard  string `gorm:"size:32;uniqueIndex:idx_customers_id_card,where:id_card <> ''" json:"idCard"`
	Phone   string `gorm:"size:64;index" json:"phone"`
	Address string `gorm:"size:512" json:"address"`
	LineID  string `gorm:"size:128" json:"lineId"`

	Contracts []Contract `gorm:"foreignKey:CustomerID" json:"contracts,omitempty"`
}
