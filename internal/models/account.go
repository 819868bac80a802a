// internal/models/account.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Account is a caller of the auction API. The hub account initializes
// auctions on behalf of publications; operators execute bids, claims and fee
// runs; admins seed the collaborator registries.
type Account struct {
	BaseModel
	Username     string        `json:"username" gorm:"uniqueIndex;size:50;not null"`
	PasswordHash string        `json:"-" gorm:"size:255;not null"`
	Role         AccountRole   `json:"role" gorm:"type:varchar(20);not null;index"`
	Status       AccountStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	LastLoginAt  *time.Time    `json:"last_login_at"`
}

func (a *Account) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
