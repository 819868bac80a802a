// internal/services/ledger_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mvanhalen/scaffold-lens-auction/internal/config"
	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
)

// LedgerService is the pluggable-currency collaborator: the allow-list and
// the balance ledger every escrow movement goes through. Transfers run inside
// the caller's transaction so a failing transfer aborts the whole operation.
type LedgerService struct {
	db     *gorm.DB
	config *config.Config
}

func NewLedgerService(db *gorm.DB, config *config.Config) *LedgerService {
	return &LedgerService{
		db:     db,
		config: config,
	}
}

type CreateCurrencyRequest struct {
	Address  string `json:"address" validate:"required,max=255"`
	Symbol   string `json:"symbol" validate:"required,max=32"`
	Decimals int32  `json:"decimals" validate:"min=0,max=18"`
	Allowed  bool   `json:"allowed"`
}

func (s *LedgerService) CreateCurrency(req *CreateCurrencyRequest) (*models.Currency, error) {
	currency := &models.Currency{
		Address:  req.Address,
		Symbol:   req.Symbol,
		Decimals: req.Decimals,
		Allowed:  req.Allowed,
	}

	if err := s.db.Create(currency).Error; err != nil {
		return nil, fmt.Errorf("failed to create currency: %w", err)
	}

	return currency, nil
}

func (s *LedgerService) GetCurrency(tx *gorm.DB, address string) (*models.Currency, error) {
	var currency models.Currency
	if err := tx.Where("address = ?", address).First(&currency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown currency %s", ErrInitParamsInvalid, address)
		}
		return nil, fmt.Errorf("failed to load currency: %w", err)
	}
	return &currency, nil
}

// IsAllowed answers the currency allow-list check used at initialize time.
func (s *LedgerService) IsAllowed(address string) (bool, error) {
	currency, err := s.GetCurrency(s.db, address)
	if err != nil {
		if errors.Is(err, ErrInitParamsInvalid) {
			return false, nil
		}
		return false, err
	}
	return currency.Allowed, nil
}

// Transfer moves amount between two holders of one currency within tx.
// Zero and negative amounts are no-ops; callers only move positive values.
func (s *LedgerService) Transfer(tx *gorm.DB, currencyAddress, from, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}

	var source models.LedgerBalance
	err := tx.Where("currency_address = ? AND holder_address = ?", currencyAddress, from).
		First(&source).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s holds no %s", ErrTransferFailed, from, currencyAddress)
		}
		return fmt.Errorf("failed to load source balance: %w", err)
	}

	if source.Balance.LessThan(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrTransferFailed,
			from, source.Balance.String(), amount.String())
	}

	source.Balance = source.Balance.Sub(amount)
	if err := tx.Save(&source).Error; err != nil {
		return fmt.Errorf("failed to debit %s: %w", from, err)
	}

	if err := s.credit(tx, currencyAddress, to, amount); err != nil {
		return err
	}

	return nil
}

// Mint credits freshly issued funds to a holder. Admin faucet, used to seed
// bidder balances.
func (s *LedgerService) Mint(currencyAddress, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: mint amount must be positive", ErrTransferFailed)
	}

	if _, err := s.GetCurrency(s.db, currencyAddress); err != nil {
		return err
	}

	return s.credit(s.db, currencyAddress, to, amount)
}

func (s *LedgerService) credit(tx *gorm.DB, currencyAddress, to string, amount decimal.Decimal) error {
	var dest models.LedgerBalance
	err := tx.Where("currency_address = ? AND holder_address = ?", currencyAddress, to).
		First(&dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		dest = models.LedgerBalance{
			CurrencyAddress: currencyAddress,
			HolderAddress:   to,
			Balance:         amount,
		}
		if err := tx.Create(&dest).Error; err != nil {
			return fmt.Errorf("failed to credit %s: %w", to, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load destination balance: %w", err)
	}

	dest.Balance = dest.Balance.Add(amount)
	if err := tx.Save(&dest).Error; err != nil {
		return fmt.Errorf("failed to credit %s: %w", to, err)
	}

	return nil
}

func (s *LedgerService) BalanceOf(currencyAddress, holder string) (decimal.Decimal, error) {
	var balance models.LedgerBalance
	err := s.db.Where("currency_address = ? AND holder_address = ?", currencyAddress, holder).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load balance: %w", err)
	}
	return balance.Balance, nil
}
