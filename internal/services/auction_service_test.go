// internal/services/auction_service_test.go
package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mvanhalen/scaffold-lens-auction/internal/config"
)

func testAuctionService() *AuctionService {
	cfg := &config.Config{
		Auction: config.AuctionConfig{
			EscrowAddress:    "escrow:test",
			MaxRecipients:    5,
			TotalSplitBps:    10000,
			MaxTokenMetaSize: 32,
		},
	}
	return NewAuctionService(nil, cfg, nil, nil, nil)
}

func TestValidateRecipients(t *testing.T) {
	s := testAuctionService()

	tests := []struct {
		name       string
		recipients []RecipientInput
		wantErr    error
	}{
		{
			name:       "single recipient with full split",
			recipients: []RecipientInput{{RecipientAddress: "r1", SplitBps: 10000}},
		},
		{
			name: "five recipients summing to the total",
			recipients: []RecipientInput{
				{RecipientAddress: "r1", SplitBps: 2000},
				{RecipientAddress: "r2", SplitBps: 2000},
				{RecipientAddress: "r3", SplitBps: 2000},
				{RecipientAddress: "r4", SplitBps: 2000},
				{RecipientAddress: "r5", SplitBps: 2000},
			},
		},
		{
			name: "six recipients",
			recipients: []RecipientInput{
				{SplitBps: 2000}, {SplitBps: 2000}, {SplitBps: 2000},
				{SplitBps: 2000}, {SplitBps: 1000}, {SplitBps: 1000},
			},
			wantErr: ErrTooManyRecipients,
		},
		{
			name: "zero split entry",
			recipients: []RecipientInput{
				{RecipientAddress: "r1", SplitBps: 10000},
				{RecipientAddress: "r2", SplitBps: 0},
			},
			wantErr: ErrRecipientSplitCannotBeZero,
		},
		{
			name: "splits below the total",
			recipients: []RecipientInput{
				{RecipientAddress: "r1", SplitBps: 5000},
				{RecipientAddress: "r2", SplitBps: 4999},
			},
			wantErr: ErrInvalidRecipientSplits,
		},
		{
			name: "splits above the total",
			recipients: []RecipientInput{
				{RecipientAddress: "r1", SplitBps: 5000},
				{RecipientAddress: "r2", SplitBps: 5001},
			},
			wantErr: ErrInvalidRecipientSplits,
		},
		{
			name:       "empty recipient list",
			recipients: []RecipientInput{},
			wantErr:    ErrInvalidRecipientSplits,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.validateRecipients(tt.recipients)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateInitParams(t *testing.T) {
	s := testAuctionService()

	base := func() *InitializeAuctionRequest {
		return &InitializeAuctionRequest{
			Duration:        60,
			MinTimeAfterBid: 30,
			ReservePrice:    decimal.Zero,
			MinBidIncrement: decimal.Zero,
			TokenName:       "Collect",
			TokenSymbol:     "CLT",
		}
	}

	t.Run("valid params pass", func(t *testing.T) {
		assert.NoError(t, s.validateInitParams(base()))
	})

	t.Run("zero duration is rejected", func(t *testing.T) {
		req := base()
		req.Duration = 0
		assert.ErrorIs(t, s.validateInitParams(req), ErrInitParamsInvalid)
	})

	t.Run("duration below the anti-sniping margin is rejected", func(t *testing.T) {
		req := base()
		req.Duration = 10
		req.MinTimeAfterBid = 30
		assert.ErrorIs(t, s.validateInitParams(req), ErrInitParamsInvalid)
	})

	t.Run("negative reserve is rejected", func(t *testing.T) {
		req := base()
		req.ReservePrice = dec("-1")
		assert.ErrorIs(t, s.validateInitParams(req), ErrInitParamsInvalid)
	})

	t.Run("referral fee above 10000 bps is rejected", func(t *testing.T) {
		req := base()
		req.ReferralFeeBps = 10001
		assert.ErrorIs(t, s.validateInitParams(req), ErrInitParamsInvalid)
	})

	t.Run("token name above 32 bytes is rejected", func(t *testing.T) {
		req := base()
		req.TokenName = "an-extremely-long-collectable-name"
		assert.ErrorIs(t, s.validateInitParams(req), ErrInitParamsInvalid)
	})
}
