package repository

import (
	"context"
	"time"

	model "auctionhouse/internal/models"
)

//go:generate mockgen -destination=mock_repository.go -package=repository auctionhouse/internal/repository BidStore

// AuctionFilter carries the optional search parameters for auctions.
type AuctionFilter struct {
	Query    string
	MinPrice *float64
	MaxPrice *float64
	Status   string // "all", "active" or "ended"
	Now      time.Time
}

// BidHistoryFilter selects bids for the history listings. An empty UserID
// means all users (admin view).
type BidHistoryFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
}

// BidStore is the slice of storage the bid acceptance service depends on.
type BidStore interface {
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)

	// RecordBid atomically inserts the bid and advances the auction's
	// highest_bid/highest_bidder fields, but only while the stored highest
	// bid is still below bid.Amount. A lost compare-and-swap surfaces as
	// ErrBidTooLow and leaves no bid row behind.
	RecordBid(ctx context.Context, bid model.Bid) error

	ListBidHistory(ctx context.Context, filter BidHistoryFilter) ([]model.BidHistoryEntry, error)
}

// AuctionStore covers auction lifecycle and query reads.
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	UpdateAuction(ctx context.Context, auction model.Auction) error
	ListAuctions(ctx context.Context) ([]model.Auction, error)
	SearchAuctions(ctx context.Context, filter AuctionFilter) ([]model.Auction, error)

	// DeleteAuctionCascade removes the auction row together with its bids,
	// admin bidders, notifications and image rows, in one transaction. The
	// removed image rows are returned so the caller can clean up backing
	// files after the rows are gone.
	DeleteAuctionCascade(ctx context.Context, auctionID string) ([]model.AuctionImage, error)

	// ListBidEntries returns the real bids for an auction projected to the
	// display shape, bidder names resolved from the users table.
	ListBidEntries(ctx context.Context, auctionID string) ([]model.BidEntry, error)
}

// AdminBidderStore maintains the admin-entered shadow ledger.
type AdminBidderStore interface {
	ListAdminBidders(ctx context.Context, auctionID string) ([]model.AdminBidder, error)
	ReplaceAdminBidders(ctx context.Context, auctionID string, bidders []model.AdminBidder) error
}

// ImageStore maintains auction image rows. File bytes live elsewhere.
type ImageStore interface {
	GetAuctionImages(ctx context.Context, auctionID string) ([]model.AuctionImage, error)

	// ReplaceAuctionImages swaps the auction's image set and returns the
	// rows it displaced so their files can be removed.
	ReplaceAuctionImages(ctx context.Context, auctionID string, images []model.AuctionImage) ([]model.AuctionImage, error)

	DeleteImage(ctx context.Context, imageID string) (model.AuctionImage, error)
}

// UserStore covers account records.
type UserStore interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, userID string) (model.User, error)
}

// NotificationStore covers per-user notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n model.Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
}

// Store is the full persistence surface, implemented by GormStore and
// MemoryStore.
type Store interface {
	BidStore
	AuctionStore
	AdminBidderStore
	ImageStore
	UserStore
	NotificationStore
}
