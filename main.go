package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)

func main() {
	// Load ./.env if present before reading vars; existing env wins.
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	jwtSecret = []byte(secret)
	notifier = newNotifierFromEnv()

	// Lightweight migrate command: `./pawnbook migrate` runs AutoMigrate and
	// seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()

	r := gin.Default()
	r.Use(corsMiddleware())

	setupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}

// corsMiddleware allows the admin console origin(s) from CORS_ORIGINS
// (comma-separated), or any origin in development when unset.
func corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.AllowOrigins = strings.Split(v, ",")
	} else {
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}

func setupRoutes(r *gin.Engine) {
	r.POST("/auth/login", loginHandler)

	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())

	authGroup.POST("/contracts", createContractHandler)
	authGroup.GET("/contracts", listContractsHandler)
	authGroup.GET("/contracts/:id", getContractHandler)
	authGroup.POST("/contracts/:id/renew", renewContractHandler)
	authGroup.POST("/contracts/:id/redeem", redeemContractHandler)
	authGroup.POST("/contracts/:id/cut-principal", cutPrincipalHandler)
	authGroup.POST("/contracts/:id/forfeit", forfeitContractHandler)
	authGroup.POST("/contracts/:id/notify", notifyCustomerHandler)

	authGroup.POST("/consignments", createConsignmentHandler)
	authGroup.GET("/consignments", listConsignmentsHandler)
	authGroup.GET("/consignments/:id", getConsignmentHandler)
	authGroup.POST("/consignments/:id/sell", sellConsignmentHandler)

	authGroup.GET("/inventory", listInventoryHandler)
	authGroup.POST("/inventory", createInventoryHandler)
	authGroup.POST("/inventory/:id/sell", sellInventoryHandler)
	authGroup.POST("/inventory/bulk-sell", bulkSellInventoryHandler)

	authGroup.GET("/cashbook", listCashbookHandler)
	authGroup.POST("/cashbook", createCashbookEntryHandler)

	authGroup.GET("/customers", listCustomersHandler)
	authGroup.GET("/customers/:id", getCustomerHandler)

	authGroup.GET("/admin/stats", adminStatsHandler)
	authGroup.GET("/admin/stats/series", adminStatsSeriesHandler)
}
