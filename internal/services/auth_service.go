// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mvanhalen/scaffold-lens-auction/internal/config"
	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
	"github.com/mvanhalen/scaffold-lens-auction/internal/utils"
)

type AuthService struct {
	db     *gorm.DB
	config *config.Config
}

func NewAuthService(db *gorm.DB, config *config.Config) *AuthService {
	return &AuthService{
		db:     db,
		config: config,
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Account      *models.Account `json:"account"`
}

func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	var account models.Account
	if err := s.db.Where("username = ?", req.Username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid credentials")
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if account.Status != models.AccountStatusActive {
		return nil, errors.New("account is suspended")
	}

	if !account.CheckPassword(req.Password) {
		return nil, errors.New("invalid credentials")
	}

	accessToken, err := utils.GenerateJWT(account.ID, account.Username,
		string(account.Role), s.config.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(account.ID, s.config.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	account.LastLoginAt = &now
	if err := s.db.Save(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      &account,
	}, nil
}

type CreateAccountRequest struct {
	Username string             `json:"username" validate:"required,min=3,max=50"`
	Password string             `json:"password" validate:"required,min=8"`
	Role     models.AccountRole `json:"role" validate:"required,oneof=hub admin operator"`
}

func (s *AuthService) CreateAccount(req *CreateAccountRequest) (*models.Account, error) {
	account := &models.Account{
		Username: req.Username,
		Role:     req.Role,
		Status:   models.AccountStatusActive,
	}

	if err := account.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Bootstrap creates the configured admin and hub accounts on an empty
// accounts table. Passwords left blank get a random value logged nowhere;
// set them through the environment for real deployments.
func (s *AuthService) Bootstrap() error {
	var count int64
	if err := s.db.Model(&models.Account{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	seeds := []struct {
		username string
		password string
		role     models.AccountRole
	}{
		{s.config.Bootstrap.AdminUsername, s.config.Bootstrap.AdminPassword, models.AccountRoleAdmin},
		{s.config.Bootstrap.HubUsername, s.config.Bootstrap.HubPassword, models.AccountRoleHub},
	}

	for _, seed := range seeds {
		password := seed.password
		if password == "" {
			random, err := utils.GenerateRandomString(32)
			if err != nil {
				return fmt.Errorf("failed to generate bootstrap password: %w", err)
			}
			password = random
		}

		account := &models.Account{
			Username: seed.username,
			Role:     seed.role,
			Status:   models.AccountStatusActive,
		}
		if err := account.SetPassword(password); err != nil {
			return fmt.Errorf("failed to hash bootstrap password: %w", err)
		}
		if err := s.db.Create(account).Error; err != nil {
			return fmt.Errorf("failed to create bootstrap account %s: %w", seed.username, err)
		}
	}

	return nil
}
