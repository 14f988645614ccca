package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"auctionhouse/internal/auctionerrors"
	model "auctionhouse/internal/models"
)

// GormStore is the MySQL-backed implementation of Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an already-opened gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// OpenGormStore connects to MySQL with the given DSN and migrates the schema.
func OpenGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Auction{},
		&model.Bid{},
		&model.AdminBidder{},
		&model.AuctionImage{},
		&model.Notification{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return NewGormStore(db), nil
}

// GetAuction returns the auction row for auctionID.
func (s *GormStore) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var auction model.Auction
	err := s.db.WithContext(ctx).First(&auction, "id = ?", auctionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// RecordBid inserts the bid and advances the highest-bid fields in one
// transaction. The update carries a highest_bid < amount guard; losing that
// compare-and-swap rolls the insert back and surfaces ErrBidTooLow, so two
// racing bids can never leave the lower one as the winner.
func (s *GormStore) RecordBid(ctx context.Context, bid model.Bid) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var auction model.Auction
		if err := tx.First(&auction, "id = ?", bid.AuctionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return auctionerrors.ErrAuctionNotFound
			}
			return err
		}

		if err := tx.Create(&bid).Error; err != nil {
			return err
		}

		res := tx.Model(&model.Auction{}).
			Where("id = ? AND highest_bid < ?", bid.AuctionID, bid.Amount).
			Updates(map[string]any{
				"highest_bid":       bid.Amount,
				"highest_bidder_id": bid.UserID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return auctionerrors.ErrBidTooLow
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
	}
	return nil
}

// bidHistoryRow is the flat scan target for the history joins.
type bidHistoryRow struct {
	ID          string
	AuctionID   string
	UserID      string
	BidAmount   float64
	CreatedAt   time.Time
	Title       string
	EndDate     time.Time
	HighestBid  float64
	BidderName  string
	BidderEmail string
	BidderPhone string
}

// ListBidHistory returns bids joined with auction and bidder data, newest
// first.
func (s *GormStore) ListBidHistory(ctx context.Context, filter BidHistoryFilter) ([]model.BidHistoryEntry, error) {
	q := s.db.WithContext(ctx).
		Table("bids").
		Select(`bids.id, bids.auction_id, bids.user_id, bids.bid_amount, bids.created_at,
			auctions.title, auctions.end_date, auctions.highest_bid,
			users.name AS bidder_name, users.email AS bidder_email, users.phone AS bidder_phone`).
		Joins("JOIN auctions ON auctions.id = bids.auction_id").
		Joins("JOIN users ON users.id = bids.user_id").
		Order("bids.created_at DESC")

	if filter.UserID != "" {
		q = q.Where("bids.user_id = ?", filter.UserID)
	}
	if filter.From != nil {
		q = q.Where("bids.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("bids.created_at <= ?", *filter.To)
	}

	var rows []bidHistoryRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list bid history: %w", err)
	}

	now := time.Now().UTC()
	entries := make([]model.BidHistoryEntry, 0, len(rows))
	for _, r := range rows {
		entry := model.BidHistoryEntry{
			Bid: model.Bid{
				BidID:     r.ID,
				AuctionID: r.AuctionID,
				UserID:    r.UserID,
				Amount:    r.BidAmount,
				CreatedAt: r.CreatedAt,
			},
			AuctionTitle: r.Title,
			AuctionEnd:   r.EndDate,
			HighestBid:   r.HighestBid,
			BidderName:   r.BidderName,
			BidderEmail:  r.BidderEmail,
			BidderPhone:  r.BidderPhone,
		}
		if now.Before(r.EndDate) {
			entry.AuctionStatus = "active"
		} else {
			entry.AuctionStatus = "ended"
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CreateAuction stores a new auction row.
func (s *GormStore) CreateAuction(ctx context.Context, auction model.Auction) error {
	if err := s.db.WithContext(ctx).Create(&auction).Error; err != nil {
		return fmt.Errorf("create auction: %w", err)
	}
	return nil
}

// UpdateAuction overwrites all editable fields, including highest_bid (the
// admin override path writes whatever it was given).
func (s *GormStore) UpdateAuction(ctx context.Context, auction model.Auction) error {
	res := s.db.WithContext(ctx).Model(&model.Auction{}).
		Where("id = ?", auction.AuctionID).
		Updates(map[string]any{
			"title":          auction.Title,
			"description":    auction.Description,
			"start_price":    auction.StartPrice,
			"highest_bid":    auction.HighestBid,
			"seller_name":    auction.SellerName,
			"seller_info":    auction.SellerInfo,
			"organizer_name": auction.OrganizerName,
			"organizer_info": auction.OrganizerInfo,
			"start_date":     auction.StartDate,
			"end_date":       auction.EndDate,
		})
	if res.Error != nil {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	return nil
}

// ListAuctions returns all auctions, newest first.
func (s *GormStore) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	var auctions []model.Auction
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	return auctions, nil
}

// SearchAuctions filters by substring, highest_bid price band and derived
// status, newest first.
func (s *GormStore) SearchAuctions(ctx context.Context, filter AuctionFilter) ([]model.Auction, error) {
	q := s.db.WithContext(ctx).Model(&model.Auction{}).Order("created_at DESC")

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		q = q.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
	}
	if filter.MinPrice != nil {
		q = q.Where("highest_bid >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("highest_bid <= ?", *filter.MaxPrice)
	}
	switch filter.Status {
	case "active":
		q = q.Where("end_date > ?", filter.Now)
	case "ended":
		q = q.Where("end_date <= ?", filter.Now)
	}

	var auctions []model.Auction
	if err := q.Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("search auctions: %w", err)
	}
	return auctions, nil
}

// DeleteAuctionCascade removes the auction with its bids, admin bidders,
// notifications and image rows in one transaction, returning the image rows
// so backing files can be cleaned up afterwards.
func (s *GormStore) DeleteAuctionCascade(ctx context.Context, auctionID string) ([]model.AuctionImage, error) {
	var removed []model.AuctionImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Find(&removed, "auction_id = ?", auctionID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Bid{}, "auction_id = ?", auctionID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.AdminBidder{}, "auction_id = ?", auctionID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Notification{}, "auction_id = ?", auctionID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.AuctionImage{}, "auction_id = ?", auctionID).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Auction{}, "id = ?", auctionID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return auctionerrors.ErrAuctionNotFound
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete auction %s: %w", auctionID, err)
	}
	return removed, nil
}

// ListBidEntries projects the auction's real bids to the display shape with
// bidder names resolved.
func (s *GormStore) ListBidEntries(ctx context.Context, auctionID string) ([]model.BidEntry, error) {
	var entries []model.BidEntry
	err := s.db.WithContext(ctx).
		Table("bids").
		Select(`bids.id, bids.auction_id, bids.user_id,
			COALESCE(users.name, '') AS bidder_name,
			bids.bid_amount AS amount, bids.created_at`).
		Joins("LEFT JOIN users ON users.id = bids.user_id").
		Where("bids.auction_id = ?", auctionID).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list bid entries for auction %s: %w", auctionID, err)
	}
	return entries, nil
}

// ListAdminBidders returns the shadow ledger for an auction, newest first,
// names resolved from linked accounts where present.
func (s *GormStore) ListAdminBidders(ctx context.Context, auctionID string) ([]model.AdminBidder, error) {
	var bidders []model.AdminBidder
	err := s.db.WithContext(ctx).
		Table("bidders").
		Select(`bidders.id, bidders.auction_id, bidders.user_id,
			COALESCE(users.name, bidders.bidder_name) AS bidder_name,
			bidders.bid_amount, bidders.bid_count, bidders.created_at`).
		Joins("LEFT JOIN users ON users.id = bidders.user_id").
		Where("bidders.auction_id = ?", auctionID).
		Order("bidders.created_at DESC").
		Scan(&bidders).Error
	if err != nil {
		return nil, fmt.Errorf("list bidders for auction %s: %w", auctionID, err)
	}
	return bidders, nil
}

// ReplaceAdminBidders swaps the full shadow ledger for an auction.
func (s *GormStore) ReplaceAdminBidders(ctx context.Context, auctionID string, bidders []model.AdminBidder) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var auction model.Auction
		if err := tx.First(&auction, "id = ?", auctionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return auctionerrors.ErrAuctionNotFound
			}
			return err
		}
		if err := tx.Delete(&model.AdminBidder{}, "auction_id = ?", auctionID).Error; err != nil {
			return err
		}
		if len(bidders) == 0 {
			return nil
		}
		return tx.Create(&bidders).Error
	})
	if err != nil {
		return fmt.Errorf("replace bidders for auction %s: %w", auctionID, err)
	}
	return nil
}

// GetAuctionImages returns the auction's images ordered for display.
func (s *GormStore) GetAuctionImages(ctx context.Context, auctionID string) ([]model.AuctionImage, error) {
	var images []model.AuctionImage
	err := s.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("display_order ASC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("get images for auction %s: %w", auctionID, err)
	}
	return images, nil
}

// ReplaceAuctionImages swaps the auction's image set, returning the rows it
// displaced.
func (s *GormStore) ReplaceAuctionImages(ctx context.Context, auctionID string, images []model.AuctionImage) ([]model.AuctionImage, error) {
	var removed []model.AuctionImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var auction model.Auction
		if err := tx.First(&auction, "id = ?", auctionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return auctionerrors.ErrAuctionNotFound
			}
			return err
		}
		if err := tx.Find(&removed, "auction_id = ?", auctionID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.AuctionImage{}, "auction_id = ?", auctionID).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		return tx.Create(&images).Error
	})
	if err != nil {
		return nil, fmt.Errorf("replace images for auction %s: %w", auctionID, err)
	}
	return removed, nil
}

// DeleteImage removes a single image row by id.
func (s *GormStore) DeleteImage(ctx context.Context, imageID string) (model.AuctionImage, error) {
	var image model.AuctionImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&image, "id = ?", imageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return auctionerrors.ErrImageNotFound
			}
			return err
		}
		return tx.Delete(&model.AuctionImage{}, "id = ?", imageID).Error
	})
	if err != nil {
		return model.AuctionImage{}, fmt.Errorf("delete image %s: %w", imageID, err)
	}
	return image, nil
}

// CreateUser stores a new account; the unique index on email backs the
// duplicate check.
func (s *GormStore) CreateUser(ctx context.Context, user model.User) error {
	err := s.db.WithContext(ctx).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("create user %s: %w", user.Email, auctionerrors.ErrEmailTaken)
	}
	if err != nil {
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return nil
}

// GetUserByEmail looks an account up by email.
func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, fmt.Errorf("get user by email %s: %w", email, auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user by email %s: %w", email, err)
	}
	return user, nil
}

// GetUserByID looks an account up by id.
func (s *GormStore) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

// CreateNotification appends a notification for its recipient.
func (s *GormStore) CreateNotification(ctx context.Context, n model.Notification) error {
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListNotifications returns the user's notifications, newest first, capped at
// limit.
func (s *GormStore) ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var list []model.Notification
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list notifications for user %s: %w", userID, err)
	}
	return list, nil
}

// MarkNotificationRead flips the read flag, owner only.
func (s *GormStore) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("mark notification %s read: %w", notificationID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("mark notification %s read: %w", notificationID, auctionerrors.ErrNotificationNotFound)
	}
	return nil
}
