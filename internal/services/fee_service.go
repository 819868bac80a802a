// internal/services/fee_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mvanhalen/scaffold-lens-auction/internal/config"
	"github.com/mvanhalen/scaffold-lens-auction/internal/database"
	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
)

// FeeService splits the winning bid among the protocol treasury, the
// winner's referrers and the configured recipients. It runs exactly once per
// auction, either standalone through ProcessFees or inline from a claim.
type FeeService struct {
	db         *gorm.DB
	config     *config.Config
	ledger     *LedgerService
	profiles   *ProfileService
	referrals  *ReferralService
	governance *GovernanceService
	events     *EventService
	locks      *AuctionLocks
}

func NewFeeService(db *gorm.DB, config *config.Config, ledger *LedgerService, profiles *ProfileService, referrals *ReferralService, governance *GovernanceService, events *EventService, locks *AuctionLocks) *FeeService {
	return &FeeService{
		db:         db,
		config:     config,
		ledger:     ledger,
		profiles:   profiles,
		referrals:  referrals,
		governance: governance,
		events:     events,
		locks:      locks,
	}
}

// FeeBreakdown is the computed distribution of one winning bid. Scale-level
// truncation can leave a remainder; it stays on the escrow account.
type FeeBreakdown struct {
	TreasuryAmount      decimal.Decimal
	TotalReferralAmount decimal.Decimal
	PerReferralAmount   decimal.Decimal
	RecipientAmounts    []decimal.Decimal
	Remainder           decimal.Decimal
}

// ComputeFeeBreakdown applies the distribution order: treasury fee off the
// winning bid, then the referral pool off the adjusted amount (split evenly,
// with the FULL pool deducted even when per-referrer truncation strands a
// part of it), then each recipient's share of what is left, in stored order.
// All products are truncated at scale decimal places.
func ComputeFeeBreakdown(winningBid decimal.Decimal, treasuryFeeBps, referralFeeBps, referrerCount int, splits []int, scale int32) FeeBreakdown {
	breakdown := FeeBreakdown{}

	breakdown.TreasuryAmount = applyBps(winningBid, treasuryFeeBps, scale)
	adjusted := winningBid.Sub(breakdown.TreasuryAmount)

	if referralFeeBps > 0 && referrerCount > 0 {
		breakdown.TotalReferralAmount = applyBps(adjusted, referralFeeBps, scale)
		breakdown.PerReferralAmount = divFloor(breakdown.TotalReferralAmount, int64(referrerCount), scale)
		adjusted = adjusted.Sub(breakdown.TotalReferralAmount)
	}

	distributed := decimal.Zero
	breakdown.RecipientAmounts = make([]decimal.Decimal, len(splits))
	for i, splitBps := range splits {
		breakdown.RecipientAmounts[i] = applyBps(adjusted, splitBps, scale)
		distributed = distributed.Add(breakdown.RecipientAmounts[i])
	}

	undistributedReferral := breakdown.TotalReferralAmount.
		Sub(breakdown.PerReferralAmount.Mul(decimal.NewFromInt(int64(referrerCount))))
	breakdown.Remainder = adjusted.Sub(distributed).Add(undistributedReferral)

	return breakdown
}

// applyBps computes floor(amount * bps / 10000) at scale decimal places.
func applyBps(amount decimal.Decimal, bps int, scale int32) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(bps))).Shift(-4).Truncate(scale)
}

// divFloor divides amount by n with flooring at scale decimal places.
func divFloor(amount decimal.Decimal, n int64, scale int32) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	quotient, _ := amount.Shift(scale).QuoRem(decimal.NewFromInt(n), 0)
	return quotient.Floor().Shift(-scale)
}

// ProcessFees is the standalone fee entry point, callable by anyone once the
// auction ended.
func (s *FeeService) ProcessFees(creatorID, contentID uuid.UUID) (*models.Auction, error) {
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
		if !auction.Started() {
			return ErrUnavailableAuction
		}
		if !auction.Ended(now) {
			return ErrOngoingAuction
		}
		if auction.FeeProcessed {
			return ErrFeeAlreadyProcessed
		}

		return s.distribute(tx, auction)
	})
	if err != nil {
		return nil, err
	}

	return auction, nil
}

// distribute executes the fee split inside tx and flips feeProcessed. The
// caller has already verified the auction ended and fees are pending, and
// holds the auction key's lock.
func (s *FeeService) distribute(tx *gorm.DB, auction *models.Auction) error {
	if auction.WinnerID == nil {
		return ErrUnavailableAuction
	}

	treasuryAddress, treasuryFeeBps, err := s.governance.TreasuryParams(tx)
	if err != nil {
		return err
	}

	currency, err := s.ledger.GetCurrency(tx, auction.CurrencyAddress)
	if err != nil {
		return err
	}

	referrers, err := s.referrals.Referrers(tx, auction.ID, *auction.WinnerID)
	if err != nil {
		return err
	}

	recipients, err := loadRecipients(tx, auction.ID)
	if err != nil {
		return err
	}

	splits := make([]int, len(recipients))
	for i, recipient := range recipients {
		splits[i] = recipient.SplitBps
	}

	breakdown := ComputeFeeBreakdown(auction.WinningBid, treasuryFeeBps,
		auction.ReferralFeeBps, len(referrers), splits, currency.Decimals)

	escrow := s.config.Auction.EscrowAddress

	if breakdown.TreasuryAmount.IsPositive() {
		if err := s.ledger.Transfer(tx, auction.CurrencyAddress, escrow, treasuryAddress, breakdown.TreasuryAmount); err != nil {
			return err
		}
	}

	if breakdown.PerReferralAmount.IsPositive() {
		for _, referrerID := range referrers {
			referrerOwner, err := s.profiles.OwnerOf(tx, referrerID)
			if err != nil {
				return err
			}
			if err := s.ledger.Transfer(tx, auction.CurrencyAddress, escrow, referrerOwner, breakdown.PerReferralAmount); err != nil {
				return err
			}
		}
	}

	for i, recipient := range recipients {
		if breakdown.RecipientAmounts[i].IsPositive() {
			if err := s.ledger.Transfer(tx, auction.CurrencyAddress, escrow, recipient.RecipientAddress, breakdown.RecipientAmounts[i]); err != nil {
				return err
			}
		}
	}

	auction.FeeProcessed = true
	if err := tx.Save(auction).Error; err != nil {
		return fmt.Errorf("failed to mark fees processed: %w", err)
	}

	return s.events.Record(tx, auction.ID, models.AuctionEventFeeProcessed, models.JSONB{
		"winning_bid":      auction.WinningBid.String(),
		"treasury_amount":  breakdown.TreasuryAmount.String(),
		"treasury_fee_bps": treasuryFeeBps,
		"referral_amount":  breakdown.TotalReferralAmount.String(),
		"referrer_count":   len(referrers),
		"remainder":        breakdown.Remainder.String(),
	})
}
