package main

import (
	"fmt"
	"time"

	"pawnbook/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var codePrefixes = map[string]string{
	models.CodeKindDeposit:     "DEP",
	models.CodeKindInventory:   "INV",
	models.CodeKindConsignment: "CSG",
}

// nextCode allocates the next human-readable document code for the given
// kind, e.g. DEP-2026-014. The per-year counter row is locked FOR UPDATE,
// so the number is unique even under concurrent creates; callers must pass
// the transaction the document itself is created in.
func nextCode(tx *gorm.DB, kind string) (string, error) {
	prefix, ok := codePrefixes[kind]
	if !ok {
		return "", fmt.Errorf("unknown code kind %q", kind)
	}
	year := time.Now().UTC().Year()
	// Ensure the counter row exists without risking a unique violation that
	// would abort the surrounding transaction.
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CodeSequence{Kind: kind, Year: year, LastValue: 0}).Error; err != nil {
		return "", err
	}
	var seq models.CodeSequence
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ? AND year = ?", kind, year).
		First(&seq).Error; err != nil {
		return "", err
	}
	seq.LastValue++
	if err := tx.Model(&models.CodeSequence{}).Where("id = ?", seq.ID).
		Update("last_value", seq.LastValue).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq.LastValue), nil
}
