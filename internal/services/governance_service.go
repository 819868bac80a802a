// internal/services/governance_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mvanhalen/scaffold-lens-auction/internal/config"
	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
)

// GovernanceService is the governance collaborator providing the protocol
// treasury address and fee rate. Values are read fresh at fee-distribution
// time; they are never cached on the auction record.
type GovernanceService struct {
	db     *gorm.DB
	config *config.Config
}

func NewGovernanceService(db *gorm.DB, config *config.Config) *GovernanceService {
	return &GovernanceService{
		db:     db,
		config: config,
	}
}

// TreasuryParams returns the current treasury address and fee in basis
// points.
func (s *GovernanceService) TreasuryParams(tx *gorm.DB) (string, int, error) {
	address, err := s.stringSetting(tx, models.GovernanceKeyTreasuryAddress)
	if err != nil {
		return "", 0, err
	}

	feeBps, err := s.intSetting(tx, models.GovernanceKeyTreasuryFeeBps)
	if err != nil {
		return "", 0, err
	}

	if feeBps < 0 || feeBps > s.config.Auction.TotalSplitBps {
		return "", 0, fmt.Errorf("treasury fee %d bps out of range", feeBps)
	}

	return address, feeBps, nil
}

type UpdateGovernanceRequest struct {
	TreasuryAddress string `json:"treasury_address" validate:"required,max=255"`
	TreasuryFeeBps  int    `json:"treasury_fee_bps" validate:"bps"`
}

func (s *GovernanceService) UpdateTreasuryParams(req *UpdateGovernanceRequest) error {
	if err := s.setSetting(models.GovernanceKeyTreasuryAddress,
		models.JSONB{"value": req.TreasuryAddress},
		"Protocol treasury address"); err != nil {
		return err
	}

	return s.setSetting(models.GovernanceKeyTreasuryFeeBps,
		models.JSONB{"value": req.TreasuryFeeBps},
		"Protocol treasury fee in basis points")
}

// Bootstrap writes the configured treasury parameters when no governance
// rows exist yet.
func (s *GovernanceService) Bootstrap() error {
	var count int64
	if err := s.db.Model(&models.GovernanceSetting{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count governance settings: %w", err)
	}
	if count > 0 {
		return nil
	}

	return s.UpdateTreasuryParams(&UpdateGovernanceRequest{
		TreasuryAddress: s.config.Bootstrap.TreasuryAddress,
		TreasuryFeeBps:  s.config.Bootstrap.TreasuryFeeBps,
	})
}

func (s *GovernanceService) setSetting(key string, value models.JSONB, description string) error {
	var setting models.GovernanceSetting
	err := s.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.GovernanceSetting{
			Key:         key,
			Value:       value,
			Description: description,
		}
		if err := s.db.Create(&setting).Error; err != nil {
			return fmt.Errorf("failed to create setting %s: %w", key, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load setting %s: %w", key, err)
	}

	setting.Value = value
	if err := s.db.Save(&setting).Error; err != nil {
		return fmt.Errorf("failed to update setting %s: %w", key, err)
	}
	return nil
}

func (s *GovernanceService) stringSetting(tx *gorm.DB, key string) (string, error) {
	setting, err := s.loadSetting(tx, key)
	if err != nil {
		return "", err
	}
	if value, ok := setting.Value["value"].(string); ok {
		return value, nil
	}
	return "", fmt.Errorf("setting %s is not a string", key)
}

func (s *GovernanceService) intSetting(tx *gorm.DB, key string) (int, error) {
	setting, err := s.loadSetting(tx, key)
	if err != nil {
		return 0, err
	}
	// JSONB numbers decode as float64
	if value, ok := setting.Value["value"].(float64); ok {
		return int(value), nil
	}
	return 0, fmt.Errorf("setting %s is not a number", key)
}

func (s *GovernanceService) loadSetting(tx *gorm.DB, key string) (*models.GovernanceSetting, error) {
	var setting models.GovernanceSetting
	if err := tx.Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, fmt.Errorf("failed to load setting %s: %w", key, err)
	}
	return &setting, nil
}
