// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/propshare/propshare-backend/internal/config"
	"github.com/propshare/propshare-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
			// Surface duplicate-key errors as gorm.ErrDuplicatedKey so
			// the ledger can translate them.
			TranslateError: true,
		}
	} else {
		gormConfig = &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Info),
			TranslateError: true,
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Holding{},
		&models.Distribution{},
		&models.RevenueClaim{},
		&models.LedgerEvent{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_type_status ON users(user_type, status)",

		// Property indexes
		"CREATE INDEX IF NOT EXISTS idx_properties_owner ON properties(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_properties_deadline ON properties(funding_deadline)",
		"CREATE INDEX IF NOT EXISTS idx_properties_type ON properties(investment_type)",
		"CREATE INDEX IF NOT EXISTS idx_properties_supply ON properties(tokens_sold, total_tokens)",

		// Holding indexes
		"CREATE INDEX IF NOT EXISTS idx_holdings_investor ON holdings(investor_id)",

		// Distribution and claim indexes
		"CREATE INDEX IF NOT EXISTS idx_distributions_property ON distributions(property_id)",
		"CREATE INDEX IF NOT EXISTS idx_claims_investor ON revenue_claims(investor_id)",
		"CREATE INDEX IF NOT EXISTS idx_claims_distribution ON revenue_claims(property_id, distribution_seq)",

		// Event indexes
		"CREATE INDEX IF NOT EXISTS idx_ledger_events_property ON ledger_events(property_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_ledger_events_type ON ledger_events(type)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",

		// Full-text search over listings
		"CREATE INDEX IF NOT EXISTS idx_properties_search ON properties USING GIN(to_tsvector('english', name || ' ' || location))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// SeedInitialData creates the platform owner account when none exists.
// Only this account may list properties.
func SeedInitialData(db *gorm.DB, cfg *config.Config) error {
	var ownerCount int64
	db.Model(&models.User{}).Where("user_type = ?", models.UserTypeAdmin).Count(&ownerCount)
	if ownerCount > 0 {
		return nil
	}

	password := cfg.Platform.OwnerPassword
	if password == "" {
		// Development fallback; Validate() rejects this in production.
		password = "propshare-dev-owner"
	}

	owner := &models.User{
		Username: cfg.Platform.OwnerUsername,
		Email:    cfg.Platform.OwnerEmail,
		UserType: models.UserTypeAdmin,
		Status:   models.UserStatusActive,
		ProfileData: models.JSONB{
			"display_name": "Platform Owner",
		},
	}

	if err := owner.SetPassword(password); err != nil {
		return fmt.Errorf("failed to set platform owner password: %w", err)
	}

	if err := db.Create(owner).Error; err != nil {
		return fmt.Errorf("failed to create platform owner: %w", err)
	}

	log.Println("Platform owner account created")
	return nil
}
