package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auction "auctionhouse/internal/auctionService"
	auth "auctionhouse/internal/authService"
	bidding "auctionhouse/internal/biddingService"
	"auctionhouse/internal/metrics"
	notification "auctionhouse/internal/notificationService"
	aucthandler "auctionhouse/services/auction/handler"
	authhandler "auctionhouse/services/auth/handler"
	bidhandler "auctionhouse/services/bidding/handler"
	notifhandler "auctionhouse/services/notification/handler"
	uploadhandler "auctionhouse/services/upload/handler"
)

// Deps bundles everything the router needs.
type Deps struct {
	Bidding       *bidding.BiddingService
	Auctions      *auction.AuctionService
	Auth          *auth.AuthService
	Notifications *notification.NotificationService
	Uploads       uploadhandler.UploadStore
	Metrics       *metrics.Collector
	BidLimiter    *BidRateLimiter
	CookieSecure  bool
	UploadDir     string
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(deps Deps) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(MetricsMiddleware(deps.Metrics))
	router.Use(SessionMiddleware(deps.Auth))

	biddingHandler := bidhandler.NewBiddingHandler(deps.Bidding, deps.Metrics)
	auctionHandler := aucthandler.NewAuctionHandler(deps.Auctions)
	authHandler := authhandler.NewAuthHandler(deps.Auth, deps.CookieSecure)
	notificationHandler := notifhandler.NewNotificationHandler(deps.Notifications)
	uploadHandler := uploadhandler.NewUploadHandler(deps.Uploads)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	if deps.UploadDir != "" {
		router.Static("/uploads", deps.UploadDir)
	}

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterHandler)
		authRoutes.POST("/login", authHandler.LoginHandler)
		authRoutes.POST("/logout", authHandler.LogoutHandler)
		authRoutes.GET("/me", RequireUser(), authHandler.MeHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/search", auctionHandler.SearchAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.GET("/:auction_id/detail", auctionHandler.GetAuctionDetailHandler)
		auctions.GET("/:auction_id/bidders", auctionHandler.ListBiddersHandler)

		auctions.POST("", RequireAdmin(), auctionHandler.CreateAuctionHandler)
		auctions.PUT("/:auction_id", RequireAdmin(), auctionHandler.UpdateAuctionHandler)
		auctions.DELETE("/:auction_id", RequireAdmin(), auctionHandler.DeleteAuctionHandler)
		auctions.PUT("/:auction_id/bidders", RequireAdmin(), auctionHandler.ReplaceBiddersHandler)
		auctions.POST("/:auction_id/images", RequireAdmin(), auctionHandler.AttachImagesHandler)
	}

	router.DELETE("/images/:image_id", RequireAdmin(), auctionHandler.RemoveImageHandler)
	router.POST("/uploads", RequireAdmin(), uploadHandler.UploadFilesHandler)

	bids := router.Group("/bids", RequireUser())
	{
		bids.POST("", deps.BidLimiter.Middleware(), biddingHandler.PlaceBidHandler)
		bids.GET("", biddingHandler.BidHistoryHandler)
	}

	notifications := router.Group("/notifications", RequireUser())
	{
		notifications.GET("", notificationHandler.ListNotificationsHandler)
		notifications.POST("/read", notificationHandler.MarkReadHandler)
	}

	return router
}
