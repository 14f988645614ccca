package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"auctionhouse/internal/auctionerrors"
	model "auctionhouse/internal/models"
)

// MemoryStore is a concurrency-safe in-memory implementation of Store. It
// backs tests and the no-database dev mode; the mutex is held across the
// whole check-insert-update of RecordBid, so the compare-and-swap semantics
// match the SQL store.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]model.User
	auctions      map[string]model.Auction
	bids          map[string][]model.Bid         // key: auctionID
	adminBidders  map[string][]model.AdminBidder // key: auctionID
	images        map[string][]model.AuctionImage
	notifications map[string][]model.Notification // key: userID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]model.User),
		auctions:      make(map[string]model.Auction),
		bids:          make(map[string][]model.Bid),
		adminBidders:  make(map[string][]model.AdminBidder),
		images:        make(map[string][]model.AuctionImage),
		notifications: make(map[string][]model.Notification),
	}
}

// GetAuction returns the auction row for auctionID.
func (s *MemoryStore) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// RecordBid inserts the bid and advances the auction's highest-bid fields,
// rejecting the write when the stored highest bid has already caught up.
func (s *MemoryStore) RecordBid(_ context.Context, bid model.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[bid.AuctionID]
	if !ok {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if bid.Amount <= auction.HighestBid {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrBidTooLow)
	}

	s.bids[bid.AuctionID] = append(s.bids[bid.AuctionID], bid)

	bidderID := bid.UserID
	auction.HighestBid = bid.Amount
	auction.HighestBidderID = &bidderID
	s.auctions[bid.AuctionID] = auction

	return nil
}

// ListBidHistory returns bids joined with auction and bidder data, newest
// first.
func (s *MemoryStore) ListBidHistory(_ context.Context, filter BidHistoryFilter) ([]model.BidHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().UTC()
	entries := make([]model.BidHistoryEntry, 0)
	for auctionID, bids := range s.bids {
		auction := s.auctions[auctionID]
		for _, b := range bids {
			if filter.UserID != "" && b.UserID != filter.UserID {
				continue
			}
			if filter.From != nil && b.CreatedAt.Before(*filter.From) {
				continue
			}
			if filter.To != nil && b.CreatedAt.After(*filter.To) {
				continue
			}

			entry := model.BidHistoryEntry{
				Bid:          b,
				AuctionTitle: auction.Title,
				AuctionEnd:   auction.EndDate,
				HighestBid:   auction.HighestBid,
			}
			if auction.Ended(now) {
				entry.AuctionStatus = "ended"
			} else {
				entry.AuctionStatus = "active"
			}
			if user, ok := s.users[b.UserID]; ok {
				entry.BidderName = user.Name
				entry.BidderEmail = user.Email
				entry.BidderPhone = user.Phone
			}
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// CreateAuction stores a new auction row.
func (s *MemoryStore) CreateAuction(_ context.Context, auction model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions[auction.AuctionID] = auction
	return nil
}

// UpdateAuction overwrites the auction row, including highest_bid (the admin
// override path).
func (s *MemoryStore) UpdateAuction(_ context.Context, auction model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[auction.AuctionID]; !ok {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	s.auctions[auction.AuctionID] = auction
	return nil
}

// ListAuctions returns all auctions, newest first.
func (s *MemoryStore) ListAuctions(_ context.Context) ([]model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	auctions := make([]model.Auction, 0, len(s.auctions))
	for _, a := range s.auctions {
		auctions = append(auctions, a)
	}
	sort.Slice(auctions, func(i, j int) bool {
		return auctions[i].CreatedAt.After(auctions[j].CreatedAt)
	})
	return auctions, nil
}

// SearchAuctions filters auctions by substring, price band on highest_bid and
// derived status, newest first.
func (s *MemoryStore) SearchAuctions(_ context.Context, filter AuctionFilter) ([]model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(filter.Query)
	results := make([]model.Auction, 0)
	for _, a := range s.auctions {
		if query != "" &&
			!strings.Contains(strings.ToLower(a.Title), query) &&
			!strings.Contains(strings.ToLower(a.Description), query) {
			continue
		}
		if filter.MinPrice != nil && a.HighestBid < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && a.HighestBid > *filter.MaxPrice {
			continue
		}
		switch filter.Status {
		case "active":
			if a.Ended(filter.Now) {
				continue
			}
		case "ended":
			if !a.Ended(filter.Now) {
				continue
			}
		}
		results = append(results, a)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

// DeleteAuctionCascade removes the auction and everything that references it,
// returning the displaced image rows.
func (s *MemoryStore) DeleteAuctionCascade(_ context.Context, auctionID string) ([]model.AuctionImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("delete auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	removed := s.images[auctionID]
	delete(s.bids, auctionID)
	delete(s.adminBidders, auctionID)
	delete(s.images, auctionID)
	for userID, list := range s.notifications {
		kept := list[:0]
		for _, n := range list {
			if n.AuctionID == nil || *n.AuctionID != auctionID {
				kept = append(kept, n)
			}
		}
		s.notifications[userID] = kept
	}
	delete(s.auctions, auctionID)

	return removed, nil
}

// ListBidEntries projects the auction's real bids to the display shape.
func (s *MemoryStore) ListBidEntries(_ context.Context, auctionID string) ([]model.BidEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.BidEntry, 0, len(s.bids[auctionID]))
	for _, b := range s.bids[auctionID] {
		userID := b.UserID
		entry := model.BidEntry{
			ID:        b.BidID,
			AuctionID: b.AuctionID,
			UserID:    &userID,
			Amount:    b.Amount,
			CreatedAt: b.CreatedAt,
		}
		if user, ok := s.users[b.UserID]; ok {
			entry.BidderName = user.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ListAdminBidders returns the shadow ledger for an auction, newest first,
// with names resolved from linked user accounts where present.
func (s *MemoryStore) ListAdminBidders(_ context.Context, auctionID string) ([]model.AdminBidder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bidders := make([]model.AdminBidder, 0, len(s.adminBidders[auctionID]))
	for _, b := range s.adminBidders[auctionID] {
		if b.UserID != nil {
			if user, ok := s.users[*b.UserID]; ok {
				b.BidderName = user.Name
			}
		}
		bidders = append(bidders, b)
	}
	sort.Slice(bidders, func(i, j int) bool {
		return bidders[i].CreatedAt.After(bidders[j].CreatedAt)
	})
	return bidders, nil
}

// ReplaceAdminBidders swaps the full shadow ledger for an auction.
func (s *MemoryStore) ReplaceAdminBidders(_ context.Context, auctionID string, bidders []model.AdminBidder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[auctionID]; !ok {
		return fmt.Errorf("replace bidders for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	s.adminBidders[auctionID] = append([]model.AdminBidder(nil), bidders...)
	return nil
}

// GetAuctionImages returns the auction's images ordered by display order.
func (s *MemoryStore) GetAuctionImages(_ context.Context, auctionID string) ([]model.AuctionImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	images := append([]model.AuctionImage(nil), s.images[auctionID]...)
	sort.Slice(images, func(i, j int) bool {
		return images[i].DisplayOrder < images[j].DisplayOrder
	})
	return images, nil
}

// ReplaceAuctionImages swaps the auction's image set and returns the rows it
// displaced.
func (s *MemoryStore) ReplaceAuctionImages(_ context.Context, auctionID string, images []model.AuctionImage) ([]model.AuctionImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("replace images for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	removed := s.images[auctionID]
	s.images[auctionID] = append([]model.AuctionImage(nil), images...)
	return removed, nil
}

// DeleteImage removes a single image row by id.
func (s *MemoryStore) DeleteImage(_ context.Context, imageID string) (model.AuctionImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for auctionID, images := range s.images {
		for i, img := range images {
			if img.ImageID == imageID {
				s.images[auctionID] = append(images[:i:i], images[i+1:]...)
				return img, nil
			}
		}
	}
	return model.AuctionImage{}, fmt.Errorf("delete image %s: %w", imageID, auctionerrors.ErrImageNotFound)
}

// CreateUser stores a new account, enforcing email uniqueness.
func (s *MemoryStore) CreateUser(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return fmt.Errorf("create user %s: %w", user.Email, auctionerrors.ErrEmailTaken)
		}
	}
	s.users[user.UserID] = user
	return nil
}

// GetUserByEmail looks an account up by email.
func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, fmt.Errorf("get user by email %s: %w", email, auctionerrors.ErrUserNotFound)
}

// GetUserByID looks an account up by id.
func (s *MemoryStore) GetUserByID(_ context.Context, userID string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// CreateNotification appends a notification for its recipient.
func (s *MemoryStore) CreateNotification(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.UserID] = append(s.notifications[n.UserID], n)
	return nil
}

// ListNotifications returns the user's notifications, newest first, capped at
// limit.
func (s *MemoryStore) ListNotifications(_ context.Context, userID string, limit int) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := append([]model.Notification(nil), s.notifications[userID]...)
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// MarkNotificationRead flips the read flag, owner only.
func (s *MemoryStore) MarkNotificationRead(_ context.Context, userID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.notifications[userID]
	for i, n := range list {
		if n.NotificationID == notificationID {
			list[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("mark notification %s read: %w", notificationID, auctionerrors.ErrNotificationNotFound)
}
