// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mvanhalen/scaffold-lens-auction/internal/config"
	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
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
		&models.Account{},
		&models.Profile{},
		&models.Follow{},
		&models.Currency{},
		&models.LedgerBalance{},
		&models.GovernanceSetting{},
		&models.Auction{},
		&models.AuctionRecipient{},
		&models.Referral{},
		&models.Collectable{},
		&models.CollectableToken{},
		&models.AuctionEvent{},
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
		// Auction indexes
		"CREATE INDEX IF NOT EXISTS idx_auctions_currency ON auctions(currency_address)",
		"CREATE INDEX IF NOT EXISTS idx_auctions_end_timestamp ON auctions(end_timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_auctions_winner ON auctions(winner_id)",
		"CREATE INDEX IF NOT EXISTS idx_auctions_flags ON auctions(collected, fee_processed)",

		// Recipient indexes
		"CREATE INDEX IF NOT EXISTS idx_auction_recipients_order ON auction_recipients(auction_id, position)",

		// Event indexes
		"CREATE INDEX IF NOT EXISTS idx_auction_events_created ON auction_events(auction_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_auction_events_type ON auction_events(event_type, created_at DESC)",

		// Ledger indexes
		"CREATE INDEX IF NOT EXISTS idx_ledger_balances_holder ON ledger_balances(holder_address)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_account_action ON audit_logs(account_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
