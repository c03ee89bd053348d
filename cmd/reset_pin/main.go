package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"pawnbook/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: go run ./cmd/reset_pin <new-pin>")
		os.Exit(2)
	}
	pin := os.Args[1]
	if len(pin) < 4 {
		log.Fatal("PIN must be at least 4 digits")
	}

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}

	var acct models.ShopAccount
	if err := db.Where("name = ?", "shop").First(&acct).Error; err != nil {
		acct = models.ShopAccount{Name: "shop", PINHash: hash}
		if err := db.Create(&acct).Error; err != nil {
			log.Fatalf("failed to create shop account: %v", err)
		}
		fmt.Printf("created shop account id=%d with new PIN\n", acct.ID)
		return
	}
	if err := db.Model(&acct).Update("pin_hash", hash).Error; err != nil {
		log.Fatalf("failed to update PIN: %v", err)
	}
	fmt.Printf("updated PIN for shop account id=%d\n", acct.ID)
}
