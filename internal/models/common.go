// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type AccountRole string

const (
	AccountRoleHub      AccountRole = "hub"
	AccountRoleAdmin    AccountRole = "admin"
	AccountRoleOperator AccountRole = "operator"
)

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
)

type AuctionEventType string

const (
	AuctionEventCreated             AuctionEventType = "auction_created"
	AuctionEventBidPlaced           AuctionEventType = "bid_placed"
	AuctionEventFeeProcessed        AuctionEventType = "fee_processed"
	AuctionEventCollectableDeployed AuctionEventType = "collectable_deployed"
	AuctionEventCollected           AuctionEventType = "collected"
)
