package main

import (
	"log"
	"os"
	"strings"

	"pawnbook/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.Customer{}); err != nil {
			log.Printf("migration warning (customers): %v", err)
		}
		if err := db.AutoMigrate(&models.Contract{}); err != nil {
			log.Printf("migration warning (contracts): %v", err)
		}
		if err := db.AutoMigrate(&models.ContractActionLog{}); err != nil {
			log.Printf("migration warning (contract_action_logs): %v", err)
		}
		if err := db.AutoMigrate(&models.InventoryItem{}); err != nil {
			log.Printf("migration warning (inventory_items): %v", err)
		}
		if err := db.AutoMigrate(&models.ConsignmentContract{}); err != nil {
			log.Printf("migration warning (consignment_contracts): %v", err)
		}
		if err := db.AutoMigrate(&models.CashbookEntry{}); err != nil {
			log.Printf("migration warning (cashbook_entries): %v", err)
		}
		if err := db.AutoMigrate(&models.CodeSequence{}); err != nil {
			log.Printf("migration warning (code_sequences): %v", err)
		}
		if err := db.AutoMigrate(&models.ShopAccount{}); err != nil {
			log.Printf("migration warning (shop_accounts): %v", err)
		}
	}
	seedDB()
}

// seedDB ensures the shop PIN credential exists. The PIN comes from
// ADMIN_PIN; the development fallback is logged loudly.
func seedDB() {
	var count int64
	db.Model(&models.ShopAccount{}).Where("name = ?", "shop").Count(&count)
	if count > 0 {
		return
	}
	pin := os.Getenv("ADMIN_PIN")
	if pin == "" {
		pin = "000000"
		log.Println("ADMIN_PIN not set; seeding development PIN 000000")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("failed to hash shop PIN: %v", err)
		return
	}
	acct := models.ShopAccount{Name: "shop", PINHash: hash}
	if err := db.Create(&acct).Error; err != nil {
		log.Printf("failed to seed shop account: %v", err)
	}
}
