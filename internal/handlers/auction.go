// internal/handlers/auction.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mvanhalen/scaffold-lens-auction/internal/services"
	"github.com/mvanhalen/scaffold-lens-auction/internal/utils"
)

type AuctionHandler struct {
	auctionService *services.AuctionService
	bidService     *services.BidService
	collectService *services.CollectService
	feeService     *services.FeeService
	eventService   *services.EventService
}

func NewAuctionHandler(auctionService *services.AuctionService, bidService *services.BidService, collectService *services.CollectService, feeService *services.FeeService, eventService *services.EventService) *AuctionHandler {
	return &AuctionHandler{
		auctionService: auctionService,
		bidService:     bidService,
		collectService: collectService,
		feeService:     feeService,
		eventService:   eventService,
	}
}

// POST /auctions
func (h *AuctionHandler) Initialize(c *gin.Context) {
	var req services.InitializeAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	auction, err := h.auctionService.Initialize(&req)
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"auction": auction,
	})
}

// POST /auctions/:creatorId/:contentId/bids
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	creatorID, contentID, ok := publicationKey(c)
	if !ok {
		return
	}

	var req services.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	auction, err := h.bidService.PlaceBid(creatorID, contentID, &req)
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"auction": auction,
	})
}

// POST /auctions/:creatorId/:contentId/claim
func (h *AuctionHandler) Claim(c *gin.Context) {
	creatorID, contentID, ok := publicationKey(c)
	if !ok {
		return
	}

	result, err := h.collectService.Claim(creatorID, contentID)
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /auctions/:creatorId/:contentId/process-fee
func (h *AuctionHandler) ProcessFee(c *gin.Context) {
	creatorID, contentID, ok := publicationKey(c)
	if !ok {
		return
	}

	auction, err := h.feeService.ProcessFees(creatorID, contentID)
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"auction": auction,
	})
}

// GET /auctions/:creatorId/:contentId
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	creatorID, contentID, ok := publicationKey(c)
	if !ok {
		return
	}

	auction, err := h.auctionService.GetAuction(creatorID, contentID)
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	escrow, err := h.auctionService.EscrowBalance(auction)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"auction":        auction,
		"escrow_balance": escrow,
	})
}

// GET /auctions/:creatorId/:contentId/recipients
func (h *AuctionHandler) GetRecipients(c *gin.Context) {
	creatorID, contentID, ok := publicationKey(c)
	if !ok {
		return
	}

	recipients, err := h.auctionService.GetRecipients(creatorID, contentID)
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"recipients": recipients,
	})
}

// GET /auctions/:creatorId/:contentId/collectable
func (h *AuctionHandler) GetCollectable(c *gin.Context) {
	creatorID, contentID, ok := publicationKey(c)
	if !ok {
		return
	}

	collectable, err := h.auctionService.GetCollectable(creatorID, contentID)
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"collectable": collectable,
	})
}

// GET /auctions/:creatorId/:contentId/referrers/:bidderId
func (h *AuctionHandler) GetReferrers(c *gin.Context) {
	creatorID, contentID, ok := publicationKey(c)
	if !ok {
		return
	}

	bidderID, err := uuid.Parse(c.Param("bidderId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid bidder ID", nil)
		return
	}

	referrers, err := h.auctionService.GetReferrers(creatorID, contentID, bidderID)
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"referrer_ids": referrers,
	})
}

// GET /auctions/:creatorId/:contentId/events
func (h *AuctionHandler) GetEvents(c *gin.Context) {
	creatorID, contentID, ok := publicationKey(c)
	if !ok {
		return
	}

	auction, err := h.auctionService.GetAuction(creatorID, contentID)
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)
	events, total, err := h.eventService.ListEvents(auction.ID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(events, total, params)
	utils.PaginatedResponse(c, result)
}

func publicationKey(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	creatorID, err := uuid.Parse(c.Param("creatorId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid creator ID", nil)
		return uuid.Nil, uuid.Nil, false
	}

	contentID, err := uuid.Parse(c.Param("contentId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid content ID", nil)
		return uuid.Nil, uuid.Nil, false
	}

	return creatorID, contentID, true
}

// respondAuctionError maps the service error taxonomy onto stable API codes.
func respondAuctionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAuctionNotFound):
		utils.NotFoundResponse(c, "Auction")
	case errors.Is(err, services.ErrProfileNotFound):
		utils.NotFoundResponse(c, "Profile")
	case errors.Is(err, services.ErrTooManyRecipients):
		utils.ErrorResponse(c, 400, "TOO_MANY_RECIPIENTS", err.Error(), nil)
	case errors.Is(err, services.ErrRecipientSplitCannotBeZero):
		utils.ErrorResponse(c, 400, "RECIPIENT_SPLIT_CANNOT_BE_ZERO", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidRecipientSplits):
		utils.ErrorResponse(c, 400, "INVALID_RECIPIENT_SPLITS", err.Error(), nil)
	case errors.Is(err, services.ErrInitParamsInvalid):
		utils.ErrorResponse(c, 400, "INIT_PARAMS_INVALID", err.Error(), nil)
	case errors.Is(err, services.ErrUnavailableAuction):
		utils.ConflictResponse(c, "UNAVAILABLE_AUCTION", err.Error())
	case errors.Is(err, services.ErrOngoingAuction):
		utils.ConflictResponse(c, "ONGOING_AUCTION", err.Error())
	case errors.Is(err, services.ErrInsufficientBidAmount):
		utils.ConflictResponse(c, "INSUFFICIENT_BID_AMOUNT", err.Error())
	case errors.Is(err, services.ErrCollectAlreadyProcessed):
		utils.ConflictResponse(c, "COLLECT_ALREADY_PROCESSED", err.Error())
	case errors.Is(err, services.ErrFeeAlreadyProcessed):
		utils.ConflictResponse(c, "FEE_ALREADY_PROCESSED", err.Error())
	case errors.Is(err, services.ErrNotFollowing):
		utils.ErrorResponse(c, 403, "NOT_FOLLOWING", err.Error(), nil)
	case errors.Is(err, services.ErrTransferFailed):
		utils.ConflictResponse(c, "TRANSFER_FAILED", err.Error())
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
