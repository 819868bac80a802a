// internal/models/currency.go
package models

import (
	"github.com/shopspring/decimal"
)

// Currency is one entry of the currency allow-list. Decimals bounds the
// granularity of every amount denominated in it; basis-point products are
// truncated at that granularity.
type Currency struct {
	BaseModel
	Address  string `json:"address" gorm:"size:255;uniqueIndex;not null"`
	Symbol   string `json:"symbol" gorm:"size:32;not null"`
	Decimals int32  `json:"decimals" gorm:"not null;default:18"`
	Allowed  bool   `json:"allowed" gorm:"not null;default:true"`
}

// LedgerBalance holds the funds of one address in one currency. The escrow
// address is just another holder here.
type LedgerBalance struct {
	BaseModel
	CurrencyAddress string          `json:"currency_address" gorm:"size:255;not null;uniqueIndex:idx_ledger_holder"`
	HolderAddress   string          `json:"holder_address" gorm:"size:255;not null;uniqueIndex:idx_ledger_holder"`
	Balance         decimal.Decimal `json:"balance" gorm:"type:numeric(78,18);not null;default:0"`
}

// GovernanceSetting is one key of the governance collaborator. Treasury
// parameters are read from here at fee-distribution time, never cached on
// the auction row.
type GovernanceSetting struct {
	BaseModel
	Key         string `json:"key" gorm:"size:100;uniqueIndex;not null"`
	Value       JSONB  `json:"value" gorm:"type:jsonb;not null"`
	Description string `json:"description" gorm:"type:text"`
}

const (
	GovernanceKeyTreasuryAddress = "treasury_address"
	GovernanceKeyTreasuryFeeBps  = "treasury_fee_bps"
)
