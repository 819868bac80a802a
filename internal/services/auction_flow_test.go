// internal/services/auction_flow_test.go
package services

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mvanhalen/scaffold-lens-auction/internal/config"
	"github.com/mvanhalen/scaffold-lens-auction/internal/database"
	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
)

// AuctionFlowTestSuite runs the full lifecycle against a real database.
// Set TEST_DATABASE_URL to run it.
type AuctionFlowTestSuite struct {
	suite.Suite
	db  *gorm.DB
	cfg *config.Config

	auctions   *AuctionService
	bids       *BidService
	fees       *FeeService
	collects   *CollectService
	referrals  *ReferralService
	ledger     *LedgerService
	profiles   *ProfileService
	governance *GovernanceService
}

func (suite *AuctionFlowTestSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(database.RunMigrations(db))

	suite.db = db
	suite.cfg = &config.Config{
		Auction: config.AuctionConfig{
			EscrowAddress:    "escrow:test",
			MaxRecipients:    5,
			TotalSplitBps:    10000,
			MaxTokenMetaSize: 32,
		},
	}

	locks := NewAuctionLocks()
	events := NewEventService(db)
	suite.ledger = NewLedgerService(db, suite.cfg)
	suite.profiles = NewProfileService(db)
	suite.referrals = NewReferralService(db)
	suite.governance = NewGovernanceService(db, suite.cfg)
	suite.auctions = NewAuctionService(db, suite.cfg, suite.ledger, suite.referrals, events)
	suite.bids = NewBidService(db, suite.cfg, suite.ledger, suite.profiles, suite.referrals, events, locks)
	suite.fees = NewFeeService(db, suite.cfg, suite.ledger, suite.profiles, suite.referrals, suite.governance, events, locks)
	suite.collects = NewCollectService(db, suite.cfg, suite.profiles, suite.fees, events, locks)

	suite.Require().NoError(suite.governance.UpdateTreasuryParams(&UpdateGovernanceRequest{
		TreasuryAddress: "treasury:test",
		TreasuryFeeBps:  1000,
	}))
}

func (suite *AuctionFlowTestSuite) newCurrency() string {
	address := "erc20:" + uuid.NewString()
	_, err := suite.ledger.CreateCurrency(&CreateCurrencyRequest{
		Address:  address,
		Symbol:   "WETH",
		Decimals: 18,
		Allowed:  true,
	})
	suite.Require().NoError(err)
	return address
}

func (suite *AuctionFlowTestSuite) newProfile() (uuid.UUID, string) {
	owner := "wallet:" + uuid.NewString()
	profile, err := suite.profiles.CreateProfile(&CreateProfileRequest{
		Handle:       "user-" + uuid.NewString(),
		OwnerAddress: owner,
	})
	suite.Require().NoError(err)
	return profile.ProfileID, owner
}

func (suite *AuctionFlowTestSuite) mint(currency, holder, amount string) {
	suite.Require().NoError(suite.ledger.Mint(currency, holder, dec(amount)))
}

func (suite *AuctionFlowTestSuite) balance(currency, holder string) decimal.Decimal {
	balance, err := suite.ledger.BalanceOf(currency, holder)
	suite.Require().NoError(err)
	return balance
}

func (suite *AuctionFlowTestSuite) assertBalance(currency, holder, want string) {
	got := suite.balance(currency, holder)
	suite.True(dec(want).Equal(got), "holder %s: want %s, got %s", holder, want, got)
}

func (suite *AuctionFlowTestSuite) initAuction(req *InitializeAuctionRequest) *models.Auction {
	auction, err := suite.auctions.Initialize(req)
	suite.Require().NoError(err)
	return auction
}

func (suite *AuctionFlowTestSuite) TestLifecycleWithReferralAndFees() {
	currency := suite.newCurrency()
	creatorID, _ := suite.newProfile()
	bidderAID, ownerA := suite.newProfile()
	bidderBID, ownerB := suite.newProfile()
	referrerID, referrerOwner := suite.newProfile()
	recipient := "wallet:" + uuid.NewString()
	contentID := uuid.New()

	suite.initAuction(&InitializeAuctionRequest{
		CreatorID:       creatorID,
		ContentID:       contentID,
		Duration:        2,
		MinTimeAfterBid: 2,
		ReservePrice:    decimal.Zero,
		MinBidIncrement: dec("0.001"),
		ReferralFeeBps:  1000,
		CurrencyAddress: currency,
		Recipients:      []RecipientInput{{RecipientAddress: recipient, SplitBps: 10000}},
		TokenName:       "Collect",
		TokenSymbol:     "CLT",
		TokenRoyaltyBps: 500,
	})

	suite.mint(currency, ownerA, "1")
	suite.mint(currency, ownerB, "2")

	// First bid opens the auction
	auction, err := suite.bids.PlaceBid(creatorID, contentID, &PlaceBidRequest{
		Amount:             dec("0.001"),
		BidderID:           bidderAID,
		BidderOwnerAddress: ownerA,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(auction.StartTimestamp)
	suite.Require().NotNil(auction.EndTimestamp)
	suite.assertBalance(currency, ownerA, "0.999")
	suite.assertBalance(currency, suite.cfg.Auction.EscrowAddress, "0.001")

	// Claiming an ongoing auction fails
	_, err = suite.collects.Claim(creatorID, contentID)
	suite.ErrorIs(err, ErrOngoingAuction)

	// Outbidding refunds the previous leader and may extend the end
	previousEnd := *auction.EndTimestamp
	auction, err = suite.bids.PlaceBid(creatorID, contentID, &PlaceBidRequest{
		Amount:             dec("1"),
		BidderID:           bidderBID,
		ReferrerIDs:        []uuid.UUID{referrerID},
		BidderOwnerAddress: ownerB,
	})
	suite.Require().NoError(err)
	suite.False(auction.EndTimestamp.Before(previousEnd), "end timestamp decreased")
	suite.Equal(bidderBID, *auction.WinnerID)
	suite.assertBalance(currency, ownerA, "1")
	suite.assertBalance(currency, ownerB, "1")
	suite.assertBalance(currency, suite.cfg.Auction.EscrowAddress, "1")

	// An increment violation leaves everything untouched
	_, err = suite.bids.PlaceBid(creatorID, contentID, &PlaceBidRequest{
		Amount:             dec("1.0005"),
		BidderID:           bidderAID,
		BidderOwnerAddress: ownerA,
	})
	suite.ErrorIs(err, ErrInsufficientBidAmount)

	time.Sleep(2500 * time.Millisecond)

	// Bidding after the end fails
	_, err = suite.bids.PlaceBid(creatorID, contentID, &PlaceBidRequest{
		Amount:             dec("1.5"),
		BidderID:           bidderAID,
		BidderOwnerAddress: ownerA,
	})
	suite.ErrorIs(err, ErrUnavailableAuction)

	// Claim mints to the winner and runs the fee split inline:
	// treasury 10% of 1, referral 10% of 0.9, recipient the rest
	result, err := suite.collects.Claim(creatorID, contentID)
	suite.Require().NoError(err)
	suite.Equal(bidderBID, result.WinnerID)
	suite.Equal(ownerB, result.MintedTo)
	suite.Equal(int64(1), result.TokenID)
	suite.assertBalance(currency, "treasury:test", "0.1")
	suite.assertBalance(currency, referrerOwner, "0.09")
	suite.assertBalance(currency, recipient, "0.81")
	suite.assertBalance(currency, suite.cfg.Auction.EscrowAddress, "0")

	collectable, err := suite.auctions.GetCollectable(creatorID, contentID)
	suite.Require().NoError(err)
	suite.Require().NotNil(collectable)
	suite.Equal("Collect", collectable.Name)

	// Both one-way flags reject a second pass
	_, err = suite.collects.Claim(creatorID, contentID)
	suite.ErrorIs(err, ErrCollectAlreadyProcessed)
	_, err = suite.fees.ProcessFees(creatorID, contentID)
	suite.ErrorIs(err, ErrFeeAlreadyProcessed)
}

func (suite *AuctionFlowTestSuite) TestStandaloneFeeProcessing() {
	currency := suite.newCurrency()
	creatorID, _ := suite.newProfile()
	bidderID, owner := suite.newProfile()
	recipient1 := "wallet:" + uuid.NewString()
	recipient2 := "wallet:" + uuid.NewString()
	contentID := uuid.New()

	suite.initAuction(&InitializeAuctionRequest{
		CreatorID:       creatorID,
		ContentID:       contentID,
		Duration:        1,
		CurrencyAddress: currency,
		Recipients: []RecipientInput{
			{RecipientAddress: recipient1, SplitBps: 5000},
			{RecipientAddress: recipient2, SplitBps: 5000},
		},
		TokenName:   "Collect",
		TokenSymbol: "CLT",
	})

	suite.mint(currency, owner, "1")

	// Fees cannot run before the auction starts
	_, err := suite.fees.ProcessFees(creatorID, contentID)
	suite.ErrorIs(err, ErrUnavailableAuction)

	_, err = suite.bids.PlaceBid(creatorID, contentID, &PlaceBidRequest{
		Amount:             dec("1"),
		BidderID:           bidderID,
		BidderOwnerAddress: owner,
	})
	suite.Require().NoError(err)

	// ... nor before it ends
	_, err = suite.fees.ProcessFees(creatorID, contentID)
	suite.ErrorIs(err, ErrOngoingAuction)

	time.Sleep(1500 * time.Millisecond)

	auction, err := suite.fees.ProcessFees(creatorID, contentID)
	suite.Require().NoError(err)
	suite.True(auction.FeeProcessed)
	suite.assertBalance(currency, "treasury:test", "0.1")
	suite.assertBalance(currency, recipient1, "0.45")
	suite.assertBalance(currency, recipient2, "0.45")

	// Claim after a standalone fee run still mints but moves no funds
	result, err := suite.collects.Claim(creatorID, contentID)
	suite.Require().NoError(err)
	suite.Equal(owner, result.MintedTo)
	suite.assertBalance(currency, suite.cfg.Auction.EscrowAddress, "0")
}

func (suite *AuctionFlowTestSuite) TestReferralAttributionIsSticky() {
	currency := suite.newCurrency()
	creatorID, _ := suite.newProfile()
	bidderID, owner := suite.newProfile()
	referrer1ID, _ := suite.newProfile()
	referrer2ID, _ := suite.newProfile()
	contentID := uuid.New()

	suite.initAuction(&InitializeAuctionRequest{
		CreatorID:       creatorID,
		ContentID:       contentID,
		Duration:        60,
		CurrencyAddress: currency,
		Recipients:      []RecipientInput{{RecipientAddress: "wallet:" + uuid.NewString(), SplitBps: 10000}},
		TokenName:       "Collect",
		TokenSymbol:     "CLT",
	})

	suite.mint(currency, owner, "10")

	_, err := suite.bids.PlaceBid(creatorID, contentID, &PlaceBidRequest{
		Amount:             dec("1"),
		BidderID:           bidderID,
		ReferrerIDs:        []uuid.UUID{referrer1ID},
		BidderOwnerAddress: owner,
	})
	suite.Require().NoError(err)

	// A later bid from the same bidder cannot rewrite the attribution
	_, err = suite.bids.PlaceBid(creatorID, contentID, &PlaceBidRequest{
		Amount:             dec("2"),
		BidderID:           bidderID,
		ReferrerIDs:        []uuid.UUID{referrer2ID},
		BidderOwnerAddress: owner,
	})
	suite.Require().NoError(err)

	referrers, err := suite.auctions.GetReferrers(creatorID, contentID, bidderID)
	suite.Require().NoError(err)
	suite.Require().Len(referrers, 1)
	suite.Equal(referrer1ID, referrers[0])
}

func (suite *AuctionFlowTestSuite) TestFollowerGate() {
	currency := suite.newCurrency()
	creatorID, creatorOwner := suite.newProfile()
	strangerID, strangerOwner := suite.newProfile()
	followerID, followerOwner := suite.newProfile()
	contentID := uuid.New()

	_, err := suite.profiles.CreateFollow(&CreateFollowRequest{
		FollowerProfileID: followerID,
		CreatorProfileID:  creatorID,
	})
	suite.Require().NoError(err)

	suite.initAuction(&InitializeAuctionRequest{
		CreatorID:       creatorID,
		ContentID:       contentID,
		Duration:        60,
		CurrencyAddress: currency,
		Recipients:      []RecipientInput{{RecipientAddress: "wallet:" + uuid.NewString(), SplitBps: 10000}},
		OnlyFollowers:   true,
		TokenName:       "Collect",
		TokenSymbol:     "CLT",
	})

	suite.mint(currency, creatorOwner, "10")
	suite.mint(currency, strangerOwner, "10")
	suite.mint(currency, followerOwner, "10")

	_, err = suite.bids.PlaceBid(creatorID, contentID, &PlaceBidRequest{
		Amount:             dec("1"),
		BidderID:           strangerID,
		BidderOwnerAddress: strangerOwner,
	})
	suite.ErrorIs(err, ErrNotFollowing)

	// The creator passes its own gate
	_, err = suite.bids.PlaceBid(creatorID, contentID, &PlaceBidRequest{
		Amount:             dec("1"),
		BidderID:           creatorID,
		BidderOwnerAddress: creatorOwner,
	})
	suite.NoError(err)

	_, err = suite.bids.PlaceBid(creatorID, contentID, &PlaceBidRequest{
		Amount:             dec("2"),
		BidderID:           followerID,
		BidderOwnerAddress: followerOwner,
	})
	suite.NoError(err)
}

func (suite *AuctionFlowTestSuite) TestBidBeforeAvailability() {
	currency := suite.newCurrency()
	creatorID, _ := suite.newProfile()
	bidderID, owner := suite.newProfile()
	contentID := uuid.New()

	suite.initAuction(&InitializeAuctionRequest{
		CreatorID:               creatorID,
		ContentID:               contentID,
		AvailableSinceTimestamp: time.Now().Add(time.Hour).Unix(),
		Duration:                60,
		CurrencyAddress:         currency,
		Recipients:              []RecipientInput{{RecipientAddress: "wallet:" + uuid.NewString(), SplitBps: 10000}},
		TokenName:               "Collect",
		TokenSymbol:             "CLT",
	})

	suite.mint(currency, owner, "10")

	_, err := suite.bids.PlaceBid(creatorID, contentID, &PlaceBidRequest{
		Amount:             dec("1"),
		BidderID:           bidderID,
		BidderOwnerAddress: owner,
	})
	suite.ErrorIs(err, ErrUnavailableAuction)
}

func (suite *AuctionFlowTestSuite) TestDuplicateInitializationRejected() {
	currency := suite.newCurrency()
	creatorID, _ := suite.newProfile()
	contentID := uuid.New()

	req := &InitializeAuctionRequest{
		CreatorID:       creatorID,
		ContentID:       contentID,
		Duration:        60,
		CurrencyAddress: currency,
		Recipients:      []RecipientInput{{RecipientAddress: "wallet:" + uuid.NewString(), SplitBps: 10000}},
		TokenName:       "Collect",
		TokenSymbol:     "CLT",
	}

	suite.initAuction(req)

	_, err := suite.auctions.Initialize(req)
	suite.ErrorIs(err, ErrInitParamsInvalid)
}

func (suite *AuctionFlowTestSuite) TestInsufficientFundsAbortsBid() {
	currency := suite.newCurrency()
	creatorID, _ := suite.newProfile()
	bidderID, owner := suite.newProfile()
	contentID := uuid.New()

	suite.initAuction(&InitializeAuctionRequest{
		CreatorID:       creatorID,
		ContentID:       contentID,
		Duration:        60,
		CurrencyAddress: currency,
		Recipients:      []RecipientInput{{RecipientAddress: "wallet:" + uuid.NewString(), SplitBps: 10000}},
		TokenName:       "Collect",
		TokenSymbol:     "CLT",
	})

	suite.mint(currency, owner, "0.5")

	_, err := suite.bids.PlaceBid(creatorID, contentID, &PlaceBidRequest{
		Amount:             dec("1"),
		BidderID:           bidderID,
		BidderOwnerAddress: owner,
	})
	suite.ErrorIs(err, ErrTransferFailed)

	// Nothing committed: the auction is still unstarted and funds untouched
	auction, err := suite.auctions.GetAuction(creatorID, contentID)
	suite.Require().NoError(err)
	suite.Nil(auction.StartTimestamp)
	suite.Nil(auction.WinnerID)
	suite.assertBalance(currency, owner, "0.5")
}

func TestAuctionFlowSuite(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database-backed suite")
	}
	suite.Run(t, new(AuctionFlowTestSuite))
}
