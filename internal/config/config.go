// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Auction     AuctionConfig
	Bootstrap   BootstrapConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

// AuctionConfig carries the immutable runtime parameters of the auction
// facade: the ledger address that holds escrowed funds and bounds enforced
// at initialization time.
type AuctionConfig struct {
	EscrowAddress    string
	MaxRecipients    int
	TotalSplitBps    int
	MaxTokenMetaSize int
}

// BootstrapConfig seeds the governance settings and the first accounts on an
// empty database. Values are only written when the corresponding rows are
// missing.
type BootstrapConfig struct {
	TreasuryAddress string
	TreasuryFeeBps  int
	AdminUsername   string
	AdminPassword   string
	HubUsername     string
	HubPassword     string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "collect_auctions"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),   // 24 hours
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168), // 7 days
		},
		Auction: AuctionConfig{
			EscrowAddress:    getEnv("AUCTION_ESCROW_ADDRESS", "escrow:collect-module"),
			MaxRecipients:    getEnvAsInt("AUCTION_MAX_RECIPIENTS", 5),
			TotalSplitBps:    getEnvAsInt("AUCTION_TOTAL_SPLIT_BPS", 10000),
			MaxTokenMetaSize: getEnvAsInt("AUCTION_MAX_TOKEN_META_SIZE", 32),
		},
		Bootstrap: BootstrapConfig{
			TreasuryAddress: getEnv("TREASURY_ADDRESS", "treasury:protocol"),
			TreasuryFeeBps:  getEnvAsInt("TREASURY_FEE_BPS", 0),
			AdminUsername:   getEnv("BOOTSTRAP_ADMIN_USERNAME", "admin"),
			AdminPassword:   getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),
			HubUsername:     getEnv("BOOTSTRAP_HUB_USERNAME", "hub"),
			HubPassword:     getEnv("BOOTSTRAP_HUB_PASSWORD", ""),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Auction.EscrowAddress == "" {
		return fmt.Errorf("escrow address cannot be empty")
	}

	if c.Bootstrap.TreasuryFeeBps < 0 || c.Bootstrap.TreasuryFeeBps > c.Auction.TotalSplitBps {
		return fmt.Errorf("treasury fee must be between 0 and %d bps", c.Auction.TotalSplitBps)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
