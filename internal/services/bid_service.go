// internal/services/bid_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mvanhalen/scaffold-lens-auction/internal/config"
	"github.com/mvanhalen/scaffold-lens-auction/internal/database"
	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
)

// BidService runs the auction state machine: NotStarted on creation, Open
// from the first accepted bid, Ended once the end timestamp passes. Every
// bid is one serialized, all-or-nothing transaction.
type BidService struct {
	db        *gorm.DB
	config    *config.Config
	ledger    *LedgerService
	profiles  *ProfileService
	referrals *ReferralService
	events    *EventService
	locks     *AuctionLocks
}

func NewBidService(db *gorm.DB, config *config.Config, ledger *LedgerService, profiles *ProfileService, referrals *ReferralService, events *EventService, locks *AuctionLocks) *BidService {
	return &BidService{
		db:        db,
		config:    config,
		ledger:    ledger,
		profiles:  profiles,
		referrals: referrals,
		events:    events,
		locks:     locks,
	}
}

type PlaceBidRequest struct {
	Amount             decimal.Decimal `json:"amount" validate:"required"`
	BidderID           uuid.UUID       `json:"bidder_id" validate:"required"`
	ReferrerIDs        []uuid.UUID     `json:"referrer_ids"`
	BidderOwnerAddress string          `json:"bidder_owner_address" validate:"required,max=255"`
}

// PlaceBid validates and applies one bid against the publication's auction.
func (s *BidService) PlaceBid(creatorID, contentID uuid.UUID, req *PlaceBidRequest) (*models.Auction, error) {
	unlock := s.locks.Lock(creatorID, contentID)
	defer unlock()

	var auction *models.Auction
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var err error
		auction, err = loadAuction(tx, creatorID, contentID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := validateBidWindow(auction, now); err != nil {
			return err
		}
		if err := validateBidAmount(auction, req.Amount); err != nil {
			return err
		}

		if auction.OnlyFollowers {
			following, err := s.profiles.IsFollowing(tx, req.BidderID, auction.CreatorID)
			if err != nil {
				return err
			}
			if !following {
				return ErrNotFollowing
			}
		}

		referrers, err := s.referrals.RegisterFirstBid(tx, auction.ID, req.BidderID, req.ReferrerIDs)
		if err != nil {
			return err
		}

		previousWinnerID := auction.WinnerID
		previousWinningBid := auction.WinningBid

		end := nextEndTimestamp(auction, now)
		if !auction.Started() {
			auction.StartTimestamp = &now
		}
		auction.EndTimestamp = &end
		auction.WinningBid = req.Amount
		auction.WinnerID = &req.BidderID

		// Refund the previous leader before pulling the new bid: the escrow
		// balance alone must fund the refund, so the contract never holds
		// two bids at once. A failing refund blocks further bidding on this
		// auction rather than being bypassed.
		if previousWinnerID != nil {
			previousOwner, err := s.profiles.OwnerOf(tx, *previousWinnerID)
			if err != nil {
				return err
			}
			if err := s.ledger.Transfer(tx, auction.CurrencyAddress,
				s.config.Auction.EscrowAddress, previousOwner, previousWinningBid); err != nil {
				return err
			}
		}

		if err := s.ledger.Transfer(tx, auction.CurrencyAddress,
			req.BidderOwnerAddress, s.config.Auction.EscrowAddress, req.Amount); err != nil {
			return err
		}

		if err := tx.Save(auction).Error; err != nil {
			return fmt.Errorf("failed to update auction: %w", err)
		}

		referrerIDs := make([]string, 0, len(referrers))
		for _, id := range referrers {
			referrerIDs = append(referrerIDs, id.String())
		}

		return s.events.Record(tx, auction.ID, models.AuctionEventBidPlaced, models.JSONB{
			"bidder_id":     req.BidderID.String(),
			"amount":        req.Amount.String(),
			"referrer_ids":  referrerIDs,
			"end_timestamp": end.Unix(),
		})
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"creator_id": creatorID,
		"content_id": contentID,
		"bidder_id":  req.BidderID,
		"amount":     req.Amount.String(),
	}).Info("Bid accepted")

	return auction, nil
}

// validateBidWindow rejects bids outside the auction's availability window.
// A zero-duration auction can never accept a bid.
func validateBidWindow(auction *models.Auction, now time.Time) error {
	if auction.Duration <= 0 {
		return ErrUnavailableAuction
	}
	if now.Before(auction.AvailableSinceTimestamp) {
		return ErrUnavailableAuction
	}
	if auction.Started() && now.After(*auction.EndTimestamp) {
		return ErrUnavailableAuction
	}
	return nil
}

// validateBidAmount enforces the reserve on the first bid and the strict
// increase plus minimum increment on every later one.
func validateBidAmount(auction *models.Auction, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInsufficientBidAmount
	}

	if auction.WinnerID == nil {
		if amount.LessThan(auction.ReservePrice) {
			return ErrInsufficientBidAmount
		}
		return nil
	}

	if !amount.GreaterThan(auction.WinningBid) {
		return ErrInsufficientBidAmount
	}
	if auction.MinBidIncrement.IsPositive() &&
		amount.Sub(auction.WinningBid).LessThan(auction.MinBidIncrement) {
		return ErrInsufficientBidAmount
	}

	return nil
}

// nextEndTimestamp computes the (non-decreasing) end after accepting a bid
// at now: the first bid opens a full duration window, later bids inside the
// anti-sniping margin push the end to now + minTimeAfterBid.
func nextEndTimestamp(auction *models.Auction, now time.Time) time.Time {
	if !auction.Started() {
		return now.Add(time.Duration(auction.Duration) * time.Second)
	}

	end := *auction.EndTimestamp
	margin := time.Duration(auction.MinTimeAfterBid) * time.Second
	if end.Sub(now) < margin {
		return now.Add(margin)
	}
	return end
}
