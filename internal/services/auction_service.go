// internal/services/auction_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mvanhalen/scaffold-lens-auction/internal/config"
	"github.com/mvanhalen/scaffold-lens-auction/internal/database"
	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
)

// AuctionService is the facade's create/read side: it validates init
// parameters and the recipient split table, owns the auction registry rows,
// and serves the read accessors.
type AuctionService struct {
	db       *gorm.DB
	config   *config.Config
	ledger   *LedgerService
	referral *ReferralService
	events   *EventService
}

func NewAuctionService(db *gorm.DB, config *config.Config, ledger *LedgerService, referral *ReferralService, events *EventService) *AuctionService {
	return &AuctionService{
		db:       db,
		config:   config,
		ledger:   ledger,
		referral: referral,
		events:   events,
	}
}

type RecipientInput struct {
	RecipientAddress string `json:"recipient_address" validate:"required,max=255"`
	SplitBps         int    `json:"split_bps"`
}

type InitializeAuctionRequest struct {
	CreatorID               uuid.UUID        `json:"creator_id" validate:"required"`
	ContentID               uuid.UUID        `json:"content_id" validate:"required"`
	AvailableSinceTimestamp int64            `json:"available_since_timestamp"`
	Duration                int64            `json:"duration" validate:"required"`
	MinTimeAfterBid         int64            `json:"min_time_after_bid"`
	ReservePrice            decimal.Decimal  `json:"reserve_price"`
	MinBidIncrement         decimal.Decimal  `json:"min_bid_increment"`
	ReferralFeeBps          int              `json:"referral_fee_bps" validate:"bps"`
	CurrencyAddress         string           `json:"currency_address" validate:"required,max=255"`
	Recipients              []RecipientInput `json:"recipients" validate:"required"`
	OnlyFollowers           bool             `json:"only_followers"`
	TokenName               string           `json:"token_name" validate:"required,max=32"`
	TokenSymbol             string           `json:"token_symbol" validate:"required,max=32"`
	TokenRoyaltyBps         int              `json:"token_royalty_bps" validate:"bps"`
}

// Initialize creates the auction record and its recipient split table for
// one (creator, content) publication.
func (s *AuctionService) Initialize(req *InitializeAuctionRequest) (*models.Auction, error) {
	if err := s.validateInitParams(req); err != nil {
		return nil, err
	}

	if err := s.validateRecipients(req.Recipients); err != nil {
		return nil, err
	}

	allowed, err := s.ledger.IsAllowed(req.CurrencyAddress)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: currency %s is not allow-listed", ErrInitParamsInvalid, req.CurrencyAddress)
	}

	auction := &models.Auction{
		CreatorID:               req.CreatorID,
		ContentID:               req.ContentID,
		AvailableSinceTimestamp: time.Unix(req.AvailableSinceTimestamp, 0).UTC(),
		Duration:                req.Duration,
		MinTimeAfterBid:         req.MinTimeAfterBid,
		ReservePrice:            req.ReservePrice,
		MinBidIncrement:         req.MinBidIncrement,
		WinningBid:              decimal.Zero,
		ReferralFeeBps:          req.ReferralFeeBps,
		CurrencyAddress:         req.CurrencyAddress,
		OnlyFollowers:           req.OnlyFollowers,
		TokenName:               req.TokenName,
		TokenSymbol:             req.TokenSymbol,
		TokenRoyaltyBps:         req.TokenRoyaltyBps,
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Auction{}).
			Where("creator_id = ? AND content_id = ?", req.CreatorID, req.ContentID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check publication: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("%w: auction already initialized for this publication", ErrInitParamsInvalid)
		}

		if err := tx.Create(auction).Error; err != nil {
			return fmt.Errorf("failed to create auction: %w", err)
		}

		for i, recipient := range req.Recipients {
			row := models.AuctionRecipient{
				AuctionID:        auction.ID,
				Position:         i,
				RecipientAddress: recipient.RecipientAddress,
				SplitBps:         recipient.SplitBps,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create recipient: %w", err)
			}
		}

		return s.events.Record(tx, auction.ID, models.AuctionEventCreated, models.JSONB{
			"creator_id":                auction.CreatorID.String(),
			"content_id":                auction.ContentID.String(),
			"available_since_timestamp": auction.AvailableSinceTimestamp.Unix(),
			"duration":                  auction.Duration,
			"min_time_after_bid":        auction.MinTimeAfterBid,
			"reserve_price":             auction.ReservePrice.String(),
			"min_bid_increment":         auction.MinBidIncrement.String(),
			"referral_fee_bps":          auction.ReferralFeeBps,
			"currency":                  auction.CurrencyAddress,
			"only_followers":            auction.OnlyFollowers,
			"token_name":                auction.TokenName,
			"token_symbol":              auction.TokenSymbol,
			"token_royalty_bps":         auction.TokenRoyaltyBps,
		})
	})
	if err != nil {
		return nil, err
	}

	return auction, nil
}

func (s *AuctionService) validateInitParams(req *InitializeAuctionRequest) error {
	if req.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInitParamsInvalid)
	}
	if req.MinTimeAfterBid < 0 || req.Duration < req.MinTimeAfterBid {
		return fmt.Errorf("%w: duration must cover min time after bid", ErrInitParamsInvalid)
	}
	if req.ReservePrice.IsNegative() || req.MinBidIncrement.IsNegative() {
		return fmt.Errorf("%w: amounts cannot be negative", ErrInitParamsInvalid)
	}
	if req.ReferralFeeBps < 0 || req.ReferralFeeBps > s.config.Auction.TotalSplitBps {
		return fmt.Errorf("%w: referral fee out of range", ErrInitParamsInvalid)
	}
	if req.TokenRoyaltyBps < 0 || req.TokenRoyaltyBps > s.config.Auction.TotalSplitBps {
		return fmt.Errorf("%w: token royalty out of range", ErrInitParamsInvalid)
	}
	if len(req.TokenName) > s.config.Auction.MaxTokenMetaSize ||
		len(req.TokenSymbol) > s.config.Auction.MaxTokenMetaSize {
		return fmt.Errorf("%w: token metadata exceeds %d bytes", ErrInitParamsInvalid, s.config.Auction.MaxTokenMetaSize)
	}
	return nil
}

// validateRecipients enforces the split table rules: at most five entries,
// no zero split, all splits summing to exactly the total basis points.
func (s *AuctionService) validateRecipients(recipients []RecipientInput) error {
	if len(recipients) > s.config.Auction.MaxRecipients {
		return ErrTooManyRecipients
	}

	sum := 0
	for _, recipient := range recipients {
		if recipient.SplitBps <= 0 {
			return ErrRecipientSplitCannotBeZero
		}
		sum += recipient.SplitBps
	}

	if sum != s.config.Auction.TotalSplitBps {
		return ErrInvalidRecipientSplits
	}

	return nil
}

// GetAuction loads the full auction record of one publication.
func (s *AuctionService) GetAuction(creatorID, contentID uuid.UUID) (*models.Auction, error) {
	return loadAuction(s.db, creatorID, contentID)
}

func (s *AuctionService) GetRecipients(creatorID, contentID uuid.UUID) ([]models.AuctionRecipient, error) {
	auction, err := loadAuction(s.db, creatorID, contentID)
	if err != nil {
		return nil, err
	}
	return loadRecipients(s.db, auction.ID)
}

func (s *AuctionService) GetCollectable(creatorID, contentID uuid.UUID) (*models.Collectable, error) {
	auction, err := loadAuction(s.db, creatorID, contentID)
	if err != nil {
		return nil, err
	}

	var collectable models.Collectable
	err = s.db.Where("auction_id = ?", auction.ID).First(&collectable).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load collectable: %w", err)
	}

	return &collectable, nil
}

func (s *AuctionService) GetReferrers(creatorID, contentID, bidderID uuid.UUID) ([]uuid.UUID, error) {
	auction, err := loadAuction(s.db, creatorID, contentID)
	if err != nil {
		return nil, err
	}
	return s.referral.Referrers(s.db, auction.ID, bidderID)
}

// EscrowBalance reports the funds currently held in escrow in the auction's
// currency, derived from the ledger rather than stored.
func (s *AuctionService) EscrowBalance(auction *models.Auction) (decimal.Decimal, error) {
	return s.ledger.BalanceOf(auction.CurrencyAddress, s.config.Auction.EscrowAddress)
}

func loadAuction(tx *gorm.DB, creatorID, contentID uuid.UUID) (*models.Auction, error) {
	var auction models.Auction
	err := tx.Where("creator_id = ? AND content_id = ?", creatorID, contentID).
		First(&auction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load auction: %w", err)
	}
	return &auction, nil
}

func loadRecipients(tx *gorm.DB, auctionID uuid.UUID) ([]models.AuctionRecipient, error) {
	var recipients []models.AuctionRecipient
	err := tx.Where("auction_id = ?", auctionID).
		Order("position asc").
		Find(&recipients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recipients: %w", err)
	}
	return recipients, nil
}
