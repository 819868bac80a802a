// internal/services/referral_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
)

// ReferralService keeps the sticky, per-bidder, per-auction referrer
// attribution. The list submitted with a bidder's FIRST bid is the one that
// counts; later submissions from the same bidder are ignored.
type ReferralService struct {
	db *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{
		db: db,
	}
}

// RegisterFirstBid stores referrerIDs for (auction, bidder) unless an
// attribution already exists, and returns the effective list. Self-referrals
// are dropped; an empty list is still stored so later bids cannot rewrite it.
func (s *ReferralService) RegisterFirstBid(tx *gorm.DB, auctionID, bidderID uuid.UUID, referrerIDs []uuid.UUID) ([]uuid.UUID, error) {
	var existing models.Referral
	err := tx.Where("auction_id = ? AND bidder_id = ?", auctionID, bidderID).
		First(&existing).Error
	if err == nil {
		return decodeReferrerIDs(existing.ReferrerIDs)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load referral attribution: %w", err)
	}

	effective := make([]uuid.UUID, 0, len(referrerIDs))
	ids := make([]interface{}, 0, len(referrerIDs))
	for _, referrerID := range referrerIDs {
		if referrerID == bidderID || referrerID == uuid.Nil {
			continue
		}
		effective = append(effective, referrerID)
		ids = append(ids, referrerID.String())
	}

	referral := &models.Referral{
		AuctionID:   auctionID,
		BidderID:    bidderID,
		ReferrerIDs: models.JSONB{"ids": ids},
	}

	if err := tx.Create(referral).Error; err != nil {
		return nil, fmt.Errorf("failed to store referral attribution: %w", err)
	}

	return effective, nil
}

// Referrers returns the attributed referrer list of one bidder, empty when
// the bidder never bid or bid without referrers.
func (s *ReferralService) Referrers(tx *gorm.DB, auctionID, bidderID uuid.UUID) ([]uuid.UUID, error) {
	var referral models.Referral
	err := tx.Where("auction_id = ? AND bidder_id = ?", auctionID, bidderID).
		First(&referral).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load referral attribution: %w", err)
	}

	return decodeReferrerIDs(referral.ReferrerIDs)
}

func decodeReferrerIDs(payload models.JSONB) ([]uuid.UUID, error) {
	raw, ok := payload["ids"].([]interface{})
	if !ok {
		return nil, nil
	}

	referrers := make([]uuid.UUID, 0, len(raw))
	for _, entry := range raw {
		str, ok := entry.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("corrupt referrer id %q: %w", str, err)
		}
		referrers = append(referrers, id)
	}

	return referrers, nil
}
