// internal/services/bid_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
)

func openAuction(t0 time.Time, duration, minTimeAfterBid int64) *models.Auction {
	return &models.Auction{
		AvailableSinceTimestamp: t0,
		Duration:                duration,
		MinTimeAfterBid:         minTimeAfterBid,
		WinningBid:              decimal.Zero,
	}
}

func startedAt(auction *models.Auction, start time.Time) *models.Auction {
	end := start.Add(time.Duration(auction.Duration) * time.Second)
	auction.StartTimestamp = &start
	auction.EndTimestamp = &end
	winner := uuid.New()
	auction.WinnerID = &winner
	return auction
}

func TestValidateBidWindow(t *testing.T) {
	t0 := time.Now().UTC()

	t.Run("accepts a bid inside the window", func(t *testing.T) {
		auction := openAuction(t0, 60, 30)
		assert.NoError(t, validateBidWindow(auction, t0.Add(time.Second)))
	})

	t.Run("rejects a bid before the auction is available", func(t *testing.T) {
		auction := openAuction(t0.Add(time.Hour), 60, 30)
		assert.ErrorIs(t, validateBidWindow(auction, t0), ErrUnavailableAuction)
	})

	t.Run("rejects a zero duration auction", func(t *testing.T) {
		auction := openAuction(t0, 0, 0)
		assert.ErrorIs(t, validateBidWindow(auction, t0.Add(time.Second)), ErrUnavailableAuction)
	})

	t.Run("rejects a bid after the end", func(t *testing.T) {
		auction := startedAt(openAuction(t0, 60, 30), t0)
		assert.ErrorIs(t, validateBidWindow(auction, t0.Add(61*time.Second)), ErrUnavailableAuction)
	})

	t.Run("accepts a bid exactly at the end", func(t *testing.T) {
		auction := startedAt(openAuction(t0, 60, 30), t0)
		assert.NoError(t, validateBidWindow(auction, t0.Add(60*time.Second)))
	})
}

func TestValidateBidAmount(t *testing.T) {
	t.Run("first bid must meet the reserve", func(t *testing.T) {
		auction := &models.Auction{ReservePrice: dec("0.5"), WinningBid: decimal.Zero}
		assert.ErrorIs(t, validateBidAmount(auction, dec("0.49")), ErrInsufficientBidAmount)
		assert.NoError(t, validateBidAmount(auction, dec("0.5")))
		assert.NoError(t, validateBidAmount(auction, dec("1")))
	})

	t.Run("negative amounts are rejected", func(t *testing.T) {
		auction := &models.Auction{WinningBid: decimal.Zero}
		assert.ErrorIs(t, validateBidAmount(auction, dec("-1")), ErrInsufficientBidAmount)
	})

	t.Run("later bids must strictly exceed the leader", func(t *testing.T) {
		winner := uuid.New()
		auction := &models.Auction{WinnerID: &winner, WinningBid: dec("0.001")}
		assert.ErrorIs(t, validateBidAmount(auction, dec("0.001")), ErrInsufficientBidAmount)
		assert.NoError(t, validateBidAmount(auction, dec("0.002")))
	})

	t.Run("later bids must cover the minimum increment", func(t *testing.T) {
		winner := uuid.New()
		auction := &models.Auction{
			WinnerID:        &winner,
			WinningBid:      dec("0.001"),
			MinBidIncrement: dec("0.001"),
		}
		// 0.0005 above the leader is not enough
		assert.ErrorIs(t, validateBidAmount(auction, dec("0.0015")), ErrInsufficientBidAmount)
		assert.NoError(t, validateBidAmount(auction, dec("0.002")))
	})
}

func TestNextEndTimestamp(t *testing.T) {
	t0 := time.Now().UTC()

	t.Run("first bid opens a full duration window", func(t *testing.T) {
		auction := openAuction(t0, 60, 30)
		assert.Equal(t, t0.Add(60*time.Second), nextEndTimestamp(auction, t0))
	})

	t.Run("late bid extends the end to now plus the margin", func(t *testing.T) {
		auction := startedAt(openAuction(t0, 60, 30), t0)
		// bid at t0+59: 1s left, below the 30s margin
		assert.Equal(t, t0.Add(89*time.Second), nextEndTimestamp(auction, t0.Add(59*time.Second)))
	})

	t.Run("early bid leaves the end unchanged", func(t *testing.T) {
		auction := startedAt(openAuction(t0, 60, 30), t0)
		assert.Equal(t, t0.Add(60*time.Second), nextEndTimestamp(auction, t0.Add(10*time.Second)))
	})

	t.Run("end never decreases", func(t *testing.T) {
		auction := startedAt(openAuction(t0, 60, 30), t0)
		for offset := int64(0); offset <= 60; offset += 5 {
			next := nextEndTimestamp(auction, t0.Add(time.Duration(offset)*time.Second))
			assert.False(t, next.Before(*auction.EndTimestamp),
				"end decreased for a bid at +%ds", offset)
		}
	})
}
