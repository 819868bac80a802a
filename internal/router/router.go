// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mvanhalen/scaffold-lens-auction/internal/config"
	"github.com/mvanhalen/scaffold-lens-auction/internal/handlers"
	"github.com/mvanhalen/scaffold-lens-auction/internal/middleware"
	"github.com/mvanhalen/scaffold-lens-auction/internal/services"
	"github.com/mvanhalen/scaffold-lens-auction/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	locks := services.NewAuctionLocks()
	eventService := services.NewEventService(db)
	ledgerService := services.NewLedgerService(db, cfg)
	profileService := services.NewProfileService(db)
	referralService := services.NewReferralService(db)
	governanceService := services.NewGovernanceService(db, cfg)

	authService := services.NewAuthService(db, cfg)
	auctionService := services.NewAuctionService(db, cfg, ledgerService, referralService, eventService)
	bidService := services.NewBidService(db, cfg, ledgerService, profileService, referralService, eventService, locks)
	feeService := services.NewFeeService(db, cfg, ledgerService, profileService, referralService, governanceService, eventService, locks)
	collectService := services.NewCollectService(db, cfg, profileService, feeService, eventService, locks)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	auctionHandler := handlers.NewAuctionHandler(auctionService, bidService, collectService, feeService, eventService)
	adminHandler := handlers.NewAdminHandler(authService, profileService, ledgerService, governanceService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/login", authHandler.Login)
		}

		// Auction routes
		auctions := v1.Group("/auctions")
		auctions.Use(middleware.AuthRequired())
		{
			auctions.POST("", middleware.HubRequired(), auctionHandler.Initialize)
			auctions.POST("/:creatorId/:contentId/bids", middleware.BidRateLimit(), auctionHandler.PlaceBid)
			auctions.POST("/:creatorId/:contentId/claim", auctionHandler.Claim)
			auctions.POST("/:creatorId/:contentId/process-fee", auctionHandler.ProcessFee)

			auctions.GET("/:creatorId/:contentId", auctionHandler.GetAuction)
			auctions.GET("/:creatorId/:contentId/recipients", auctionHandler.GetRecipients)
			auctions.GET("/:creatorId/:contentId/collectable", auctionHandler.GetCollectable)
			auctions.GET("/:creatorId/:contentId/referrers/:bidderId", auctionHandler.GetReferrers)
			auctions.GET("/:creatorId/:contentId/events", auctionHandler.GetEvents)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.POST("/accounts", adminHandler.CreateAccount)
			admin.POST("/profiles", adminHandler.CreateProfile)
			admin.POST("/follows", adminHandler.CreateFollow)
			admin.POST("/currencies", adminHandler.CreateCurrency)
			admin.POST("/balances/mint", adminHandler.MintBalance)
			admin.PUT("/governance", adminHandler.UpdateGovernance)
		}
	}

	return r
}
