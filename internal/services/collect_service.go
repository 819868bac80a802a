// internal/services/collect_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mvanhalen/scaffold-lens-auction/internal/config"
	"github.com/mvanhalen/scaffold-lens-auction/internal/database"
	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
	"github.com/mvanhalen/scaffold-lens-auction/internal/utils"
)

// CollectService issues the collectible: on the first claim of a publication
// it instantiates the token contract from the stored metadata, then mints
// one unit to the winner's currently resolved owner. Fees are distributed
// inline when still pending.
type CollectService struct {
	db       *gorm.DB
	config   *config.Config
	profiles *ProfileService
	fees     *FeeService
	events   *EventService
	locks    *AuctionLocks
}

func NewCollectService(db *gorm.DB, config *config.Config, profiles *ProfileService, fees *FeeService, events *EventService, locks *AuctionLocks) *CollectService {
	return &CollectService{
		db:       db,
		config:   config,
		profiles: profiles,
		fees:     fees,
		events:   events,
		locks:    locks,
	}
}

type ClaimResult struct {
	Collectable *models.Collectable `json:"collectable"`
	TokenID     int64               `json:"token_id"`
	WinnerID    uuid.UUID           `json:"winner_id"`
	MintedTo    string              `json:"minted_to"`
}

// Claim finalizes an ended auction for its winner.
func (s *CollectService) Claim(creatorID, contentID uuid.UUID) (*ClaimResult, error) {
	unlock := s.locks.Lock(creatorID, contentID)
	defer unlock()

	var result *ClaimResult
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		auction, err := loadAuction(tx, creatorID, contentID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if !auction.Started() || auction.WinnerID == nil {
			return ErrUnavailableAuction
		}
		if !auction.Ended(now) {
			return ErrOngoingAuction
		}
		if auction.Collected {
			return ErrCollectAlreadyProcessed
		}

		winnerOwner, err := s.profiles.OwnerOf(tx, *auction.WinnerID)
		if err != nil {
			return err
		}

		collectable, err := s.findOrDeployCollectable(tx, auction)
		if err != nil {
			return err
		}

		tokenID, err := s.mint(tx, collectable, winnerOwner)
		if err != nil {
			return err
		}

		auction.Collected = true
		if err := tx.Save(auction).Error; err != nil {
			return fmt.Errorf("failed to mark auction collected: %w", err)
		}

		if !auction.FeeProcessed {
			if err := s.fees.distribute(tx, auction); err != nil {
				return err
			}
		}

		result = &ClaimResult{
			Collectable: collectable,
			TokenID:     tokenID,
			WinnerID:    *auction.WinnerID,
			MintedTo:    winnerOwner,
		}

		return s.events.Record(tx, auction.ID, models.AuctionEventCollected, models.JSONB{
			"winner_id":          auction.WinnerID.String(),
			"minted_to":          winnerOwner,
			"collectable_handle": collectable.Handle,
			"token_id":           tokenID,
		})
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"creator_id": creatorID,
		"content_id": contentID,
		"winner_id":  result.WinnerID,
		"token_id":   result.TokenID,
	}).Info("Auction collected")

	return result, nil
}

// findOrDeployCollectable instantiates the publication's collectable on the
// first claim only; afterwards the stored handle is reused.
func (s *CollectService) findOrDeployCollectable(tx *gorm.DB, auction *models.Auction) (*models.Collectable, error) {
	var collectable models.Collectable
	err := tx.Where("auction_id = ?", auction.ID).First(&collectable).Error
	if err == nil {
		return &collectable, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load collectable: %w", err)
	}

	handle, err := utils.GenerateCollectableHandle()
	if err != nil {
		return nil, fmt.Errorf("failed to generate collectable handle: %w", err)
	}

	collectable = models.Collectable{
		AuctionID:   auction.ID,
		Handle:      handle,
		Name:        auction.TokenName,
		Symbol:      auction.TokenSymbol,
		RoyaltyBps:  auction.TokenRoyaltyBps,
		NextTokenID: 1,
	}

	if err := tx.Create(&collectable).Error; err != nil {
		return nil, fmt.Errorf("failed to deploy collectable: %w", err)
	}

	if err := s.events.Record(tx, auction.ID, models.AuctionEventCollectableDeployed, models.JSONB{
		"handle":      handle,
		"name":        collectable.Name,
		"symbol":      collectable.Symbol,
		"royalty_bps": collectable.RoyaltyBps,
	}); err != nil {
		return nil, err
	}

	return &collectable, nil
}

func (s *CollectService) mint(tx *gorm.DB, collectable *models.Collectable, toAddress string) (int64, error) {
	tokenID := collectable.NextTokenID

	token := models.CollectableToken{
		CollectableID: collectable.ID,
		TokenID:       tokenID,
		OwnerAddress:  toAddress,
	}
	if err := tx.Create(&token).Error; err != nil {
		return 0, fmt.Errorf("failed to mint token: %w", err)
	}

	collectable.NextTokenID = tokenID + 1
	if err := tx.Save(collectable).Error; err != nil {
		return 0, fmt.Errorf("failed to advance token counter: %w", err)
	}

	return tokenID, nil
}
