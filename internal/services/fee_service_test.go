// internal/services/fee_service_test.go
package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeFeeBreakdown(t *testing.T) {
	tests := []struct {
		name           string
		winningBid     string
		treasuryFeeBps int
		referralFeeBps int
		referrerCount  int
		splits         []int
		scale          int32

		wantTreasury   string
		wantTotalRef   string
		wantPerRef     string
		wantRecipients []string
		wantRemainder  string
	}{
		{
			name:           "treasury and single referrer, single recipient",
			winningBid:     "1",
			treasuryFeeBps: 1000,
			referralFeeBps: 1000,
			referrerCount:  1,
			splits:         []int{10000},
			scale:          18,
			wantTreasury:   "0.1",
			wantTotalRef:   "0.09",
			wantPerRef:     "0.09",
			wantRecipients: []string{"0.81"},
			wantRemainder:  "0",
		},
		{
			name:           "two equal recipients, no referral",
			winningBid:     "1",
			treasuryFeeBps: 1000,
			referralFeeBps: 1000,
			referrerCount:  0,
			splits:         []int{5000, 5000},
			scale:          18,
			wantTreasury:   "0.1",
			wantTotalRef:   "0",
			wantPerRef:     "0",
			wantRecipients: []string{"0.45", "0.45"},
			wantRemainder:  "0",
		},
		{
			name:           "no treasury fee",
			winningBid:     "2",
			treasuryFeeBps: 0,
			referralFeeBps: 2500,
			referrerCount:  2,
			splits:         []int{10000},
			scale:          18,
			wantTreasury:   "0",
			wantTotalRef:   "0.5",
			wantPerRef:     "0.25",
			wantRecipients: []string{"1.5"},
			wantRemainder:  "0",
		},
		{
			name:           "truncation leaves a remainder on escrow",
			winningBid:     "1",
			treasuryFeeBps: 0,
			referralFeeBps: 1000,
			referrerCount:  3,
			splits:         []int{3333, 6667},
			scale:          2,
			wantTreasury:   "0",
			wantTotalRef:   "0.1",
			wantPerRef:     "0.03",
			wantRecipients: []string{"0.29", "0.6"},
			wantRemainder:  "0.02",
		},
		{
			name:           "referral pool fully deducted despite per-referrer truncation",
			winningBid:     "0.05",
			treasuryFeeBps: 0,
			referralFeeBps: 100,
			referrerCount:  3,
			splits:         []int{10000},
			scale:          4,
			wantTreasury:   "0",
			wantTotalRef:   "0.0005",
			wantPerRef:     "0.0001",
			wantRecipients: []string{"0.0495"},
			wantRemainder:  "0.0002",
		},
		{
			name:           "zero winning bid distributes nothing",
			winningBid:     "0",
			treasuryFeeBps: 1000,
			referralFeeBps: 1000,
			referrerCount:  1,
			splits:         []int{10000},
			scale:          18,
			wantTreasury:   "0",
			wantTotalRef:   "0",
			wantPerRef:     "0",
			wantRecipients: []string{"0"},
			wantRemainder:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breakdown := ComputeFeeBreakdown(dec(tt.winningBid), tt.treasuryFeeBps,
				tt.referralFeeBps, tt.referrerCount, tt.splits, tt.scale)

			assert.True(t, dec(tt.wantTreasury).Equal(breakdown.TreasuryAmount),
				"treasury: want %s, got %s", tt.wantTreasury, breakdown.TreasuryAmount)
			assert.True(t, dec(tt.wantTotalRef).Equal(breakdown.TotalReferralAmount),
				"total referral: want %s, got %s", tt.wantTotalRef, breakdown.TotalReferralAmount)
			assert.True(t, dec(tt.wantPerRef).Equal(breakdown.PerReferralAmount),
				"per referral: want %s, got %s", tt.wantPerRef, breakdown.PerReferralAmount)

			require.Len(t, breakdown.RecipientAmounts, len(tt.wantRecipients))
			for i, want := range tt.wantRecipients {
				assert.True(t, dec(want).Equal(breakdown.RecipientAmounts[i]),
					"recipient %d: want %s, got %s", i, want, breakdown.RecipientAmounts[i])
			}

			assert.True(t, dec(tt.wantRemainder).Equal(breakdown.Remainder),
				"remainder: want %s, got %s", tt.wantRemainder, breakdown.Remainder)
		})
	}
}

// Distribution must never move more than the winning bid.
func TestComputeFeeBreakdownNeverExceedsWinningBid(t *testing.T) {
	cases := []struct {
		winningBid     string
		treasuryFeeBps int
		referralFeeBps int
		referrerCount  int
		splits         []int
	}{
		{"1", 1000, 1000, 1, []int{10000}},
		{"0.123456789", 9999, 9999, 5, []int{1, 1, 1, 1, 9996}},
		{"1000000", 1, 10000, 3, []int{2500, 2500, 5000}},
		{"0.000000000000000001", 5000, 5000, 2, []int{10000}},
	}

	for _, tc := range cases {
		breakdown := ComputeFeeBreakdown(dec(tc.winningBid), tc.treasuryFeeBps,
			tc.referralFeeBps, tc.referrerCount, tc.splits, 18)

		moved := breakdown.TreasuryAmount.
			Add(breakdown.PerReferralAmount.Mul(decimal.NewFromInt(int64(tc.referrerCount))))
		for _, amount := range breakdown.RecipientAmounts {
			moved = moved.Add(amount)
			assert.False(t, amount.IsNegative())
		}

		assert.True(t, moved.LessThanOrEqual(dec(tc.winningBid)),
			"bid %s: moved %s", tc.winningBid, moved)
		assert.False(t, breakdown.Remainder.IsNegative(),
			"bid %s: negative remainder %s", tc.winningBid, breakdown.Remainder)
		assert.True(t, moved.Add(breakdown.Remainder).LessThanOrEqual(dec(tc.winningBid)))
	}
}
