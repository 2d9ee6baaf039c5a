// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/propshare/propshare-backend/internal/config"
	"github.com/propshare/propshare-backend/internal/handlers"
	"github.com/propshare/propshare-backend/internal/ledger"
	"github.com/propshare/propshare-backend/internal/middleware"
	"github.com/propshare/propshare-backend/internal/services"
	"github.com/propshare/propshare-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// The ledger store is the single write path for every token and
	// revenue operation.
	store := ledger.NewGormStore(db)

	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg, notificationService)
	propertyService := services.NewPropertyService(store, cfg)
	saleService := services.NewSaleService(store)
	revenueService := services.NewRevenueService(store, notificationService)
	paymentService := services.NewPaymentService(store, cfg)
	statsService := services.NewStatsService(store)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	propertyHandler := handlers.NewPropertyHandler(propertyService, storageService, statsService)
	investmentHandler := handlers.NewInvestmentHandler(saleService, revenueService)
	revenueHandler := handlers.NewRevenueHandler(revenueService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
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
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Property routes
		properties := v1.Group("/properties")
		{
			properties.GET("", middleware.OptionalAuth(), propertyHandler.SearchProperties)
			properties.GET("/counter", propertyHandler.PropertyCounter)
			properties.GET("/:id", middleware.OptionalAuth(), propertyHandler.GetProperty)
			properties.GET("/:id/events", propertyHandler.ListEvents)
			properties.GET("/:id/distributions", revenueHandler.ListDistributions)

			// Listing and asset uploads are platform-owner only.
			owner := properties.Group("")
			owner.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				owner.POST("", propertyHandler.ListProperty)
				owner.POST("/documents", middleware.UploadRateLimit(), propertyHandler.UploadDocument)
				owner.POST("/images", middleware.UploadRateLimit(), propertyHandler.UploadImage)
				owner.POST("/:id/distributions", revenueHandler.DistributeRevenue)
			}

			// Investor routes
			protected := properties.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/:id/purchase", investmentHandler.PurchaseTokens)
				protected.POST("/:id/distributions/:seq/claim", revenueHandler.ClaimRevenue)
			}
		}

		// Portfolio routes
		portfolio := v1.Group("/portfolio")
		portfolio.Use(middleware.AuthRequired())
		{
			portfolio.GET("", investmentHandler.Portfolio)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/purchase-intent", paymentHandler.CreatePurchaseIntent)
			payments.POST("/deposit-intent", middleware.AdminRequired(), paymentHandler.CreateDepositIntent)
		}

		// Statistics routes (public)
		stats := v1.Group("/stats")
		{
			stats.GET("/platform", propertyHandler.PlatformStats)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
