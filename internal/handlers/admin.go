// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mvanhalen/scaffold-lens-auction/internal/services"
	"github.com/mvanhalen/scaffold-lens-auction/internal/utils"
)

// AdminHandler exposes the seeding surface for the collaborator registries:
// accounts, profiles, follow edges, currencies, ledger balances and
// governance parameters.
type AdminHandler struct {
	authService       *services.AuthService
	profileService    *services.ProfileService
	ledgerService     *services.LedgerService
	governanceService *services.GovernanceService
}

func NewAdminHandler(authService *services.AuthService, profileService *services.ProfileService, ledgerService *services.LedgerService, governanceService *services.GovernanceService) *AdminHandler {
	return &AdminHandler{
		authService:       authService,
		profileService:    profileService,
		ledgerService:     ledgerService,
		governanceService: governanceService,
	}
}

// POST /admin/accounts
func (h *AdminHandler) CreateAccount(c *gin.Context) {
	var req services.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	account, err := h.authService.CreateAccount(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"account": account,
	})
}

// POST /admin/profiles
func (h *AdminHandler) CreateProfile(c *gin.Context) {
	var req services.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	profile, err := h.profileService.CreateProfile(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"profile": profile,
	})
}

// POST /admin/follows
func (h *AdminHandler) CreateFollow(c *gin.Context) {
	var req services.CreateFollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	follow, err := h.profileService.CreateFollow(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"follow": follow,
	})
}

// POST /admin/currencies
func (h *AdminHandler) CreateCurrency(c *gin.Context) {
	var req services.CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	currency, err := h.ledgerService.CreateCurrency(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"currency": currency,
	})
}

type MintBalanceRequest struct {
	CurrencyAddress string          `json:"currency_address" validate:"required,max=255"`
	HolderAddress   string          `json:"holder_address" validate:"required,max=255"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
}

// POST /admin/balances/mint
func (h *AdminHandler) MintBalance(c *gin.Context) {
	var req MintBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledgerService.Mint(req.CurrencyAddress, req.HolderAddress, req.Amount); err != nil {
		respondAuctionError(c, err)
		return
	}

	balance, err := h.ledgerService.BalanceOf(req.CurrencyAddress, req.HolderAddress)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"holder_address": req.HolderAddress,
		"balance":        balance,
	})
}

// PUT /admin/governance
func (h *AdminHandler) UpdateGovernance(c *gin.Context) {
	var req services.UpdateGovernanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.governanceService.UpdateTreasuryParams(&req); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"treasury_address": req.TreasuryAddress,
		"treasury_fee_bps": req.TreasuryFeeBps,
	})
}
