package models

import "time"

// ShopAccount holds the single back-office credential: a bcrypt hash of the
// shop PIN. Seeded at startup from ADMIN_PIN; rotated with cmd/reset_pin.
type ShopAccount struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string `gorm:"size:64;not null;uniqueIndex"`
	PINHash   []byte `gorm:"not null"`
}
