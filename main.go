package main

import (
	"fmt"
	"os"

	auction "auctionhouse/internal/auctionService"
	auth "auctionhouse/internal/authService"
	bidding "auctionhouse/internal/biddingService"
	"auctionhouse/internal/config"
	"auctionhouse/internal/metrics"
	notification "auctionhouse/internal/notificationService"
	"auctionhouse/internal/repository"
	"auctionhouse/internal/server"
	"auctionhouse/internal/storage"
	"auctionhouse/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}

	files, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare upload directory: %v\n", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector()
	limiter := server.NewBidRateLimiter(cfg.BidRatePerMinute, cfg.BidBurst)
	defer limiter.Stop()

	router := server.SetupRouter(server.Deps{
		Bidding:       bidding.NewBiddingService(store),
		Auctions:      auction.NewAuctionService(store, files),
		Auth:          auth.NewAuthService(store, cfg.JWTSecret, cfg.SessionMaxAge),
		Notifications: notification.NewNotificationService(store),
		Uploads:       files,
		Metrics:       collector,
		BidLimiter:    limiter,
		CookieSecure:  cfg.CookieSecure,
		UploadDir:     files.Dir(),
	})

	addr := ":" + cfg.Port
	utils.Info("Starting auction server", map[string]any{"addr": addr})
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// openStore picks the backing store: MySQL when a DSN is configured, the
// in-memory store otherwise.
func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.DatabaseDSN == "" {
		utils.Warn("DATABASE_DSN not set, using in-memory store", nil)
		return repository.NewMemoryStore(), nil
	}
	return repository.OpenGormStore(cfg.DatabaseDSN)
}
