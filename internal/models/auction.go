// internal/models/auction.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Auction is the per-publication auction record, keyed by the
// (creator_id, content_id) pair. Created once by initialize, mutated by
// bid/claim/processFee, never deleted.
type Auction struct {
	BaseModel
	CreatorID uuid.UUID `json:"creator_id" gorm:"type:uuid;not null;uniqueIndex:idx_auctions_publication"`
	ContentID uuid.UUID `json:"content_id" gorm:"type:uuid;not null;uniqueIndex:idx_auctions_publication"`

	AvailableSinceTimestamp time.Time  `json:"available_since_timestamp" gorm:"not null"`
	StartTimestamp          *time.Time `json:"start_timestamp"` // nil until the first accepted bid
	EndTimestamp            *time.Time `json:"end_timestamp"`   // non-decreasing once set
	Duration                int64      `json:"duration" gorm:"not null"`               // seconds
	MinTimeAfterBid         int64      `json:"min_time_after_bid" gorm:"not null"` // seconds

	ReservePrice    decimal.Decimal `json:"reserve_price" gorm:"type:numeric(78,18);not null;default:0"`
	MinBidIncrement decimal.Decimal `json:"min_bid_increment" gorm:"type:numeric(78,18);not null;default:0"`
	WinningBid      decimal.Decimal `json:"winning_bid" gorm:"type:numeric(78,18);not null;default:0"`
	WinnerID        *uuid.UUID      `json:"winner_id" gorm:"type:uuid"`

	ReferralFeeBps  int    `json:"referral_fee_bps" gorm:"not null;default:0"`
	CurrencyAddress string `json:"currency_address" gorm:"size:255;not null"`
	OnlyFollowers   bool   `json:"only_followers" gorm:"not null;default:false"`

	Collected    bool `json:"collected" gorm:"not null;default:false"`
	FeeProcessed bool `json:"fee_processed" gorm:"not null;default:false"`

	TokenName       string `json:"token_name" gorm:"size:32;not null"`
	TokenSymbol     string `json:"token_symbol" gorm:"size:32;not null"`
	TokenRoyaltyBps int    `json:"token_royalty_bps" gorm:"not null;default:0"`

	// Relationships
	Recipients []AuctionRecipient `json:"recipients,omitempty" gorm:"foreignKey:AuctionID"`
}

// Started reports whether the first bid has been accepted.
func (a *Auction) Started() bool {
	return a.StartTimestamp != nil
}

// Ended reports whether the auction has started and its end has passed.
func (a *Auction) Ended(now time.Time) bool {
	return a.Started() && a.EndTimestamp != nil && now.After(*a.EndTimestamp)
}

// AuctionRecipient is one payout recipient of the winning funds, stored once
// at initialize and immutable thereafter. Position preserves the submitted
// order; distribution walks recipients in that order.
type AuctionRecipient struct {
	BaseModel
	AuctionID        uuid.UUID `json:"auction_id" gorm:"type:uuid;not null;index"`
	Position         int       `json:"position" gorm:"not null"`
	RecipientAddress string    `json:"recipient_address" gorm:"size:255;not null"`
	SplitBps         int       `json:"split_bps" gorm:"not null"`
}

// Referral is the sticky referrer attribution of one bidder in one auction,
// written by that bidder's first bid only. An empty referrer list is stored
// as a row with no entries so later bids cannot rewrite it.
type Referral struct {
	BaseModel
	AuctionID   uuid.UUID `json:"auction_id" gorm:"type:uuid;not null;uniqueIndex:idx_referrals_bidder"`
	BidderID    uuid.UUID `json:"bidder_id" gorm:"type:uuid;not null;uniqueIndex:idx_referrals_bidder"`
	ReferrerIDs JSONB     `json:"referrer_ids" gorm:"type:jsonb"`
}

// Collectable is the lazily deployed collectible-token instance of one
// publication, created on the first claim.
type Collectable struct {
	BaseModel
	AuctionID   uuid.UUID `json:"auction_id" gorm:"type:uuid;uniqueIndex;not null"`
	Handle      string    `json:"handle" gorm:"size:255;uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"size:32;not null"`
	Symbol      string    `json:"symbol" gorm:"size:32;not null"`
	RoyaltyBps  int       `json:"royalty_bps" gorm:"not null"`
	NextTokenID int64     `json:"next_token_id" gorm:"not null;default:1"`

	// Relationships
	Tokens []CollectableToken `json:"tokens,omitempty" gorm:"foreignKey:CollectableID"`
}

// CollectableToken is one minted unit of a collectable.
type CollectableToken struct {
	BaseModel
	CollectableID uuid.UUID `json:"collectable_id" gorm:"type:uuid;not null;uniqueIndex:idx_collectable_tokens_id"`
	TokenID       int64     `json:"token_id" gorm:"not null;uniqueIndex:idx_collectable_tokens_id"`
	OwnerAddress  string    `json:"owner_address" gorm:"size:255;not null;index"`
}

// AuctionEvent is one persisted observation emitted by the auction facade.
type AuctionEvent struct {
	BaseModel
	AuctionID uuid.UUID        `json:"auction_id" gorm:"type:uuid;not null;index"`
	EventType AuctionEventType `json:"event_type" gorm:"type:varchar(32);not null;index"`
	Payload   JSONB            `json:"payload" gorm:"type:jsonb"`
}

// AuditLog records state-changing API requests.
type AuditLog struct {
	BaseModel
	AccountID    *uuid.UUID `json:"account_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:255;not null"`
	ResourceType string     `json:"resource_type" gorm:"size:50;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"size:500"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
}
