package bidding

import (
	"context"
	"fmt"
	"time"

	"auctionhouse/internal/auctionerrors"
	"auctionhouse/internal/models"
	"auctionhouse/internal/repository"
	"auctionhouse/utils"
)

// BiddingService holds the bid acceptance rules: a bid is accepted only when
// it is strictly greater than the auction's current highest bid and the
// auction is still open. The actual insert-and-update is a single storage
// transaction, so an accepted bid and the highest-bid fields can never
// diverge.
type BiddingService struct {
	store repository.BidStore
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(store repository.BidStore) *BiddingService {
	return &BiddingService{
		store: store,
	}
}

// PlaceBid validates and records a user's bid for an auction. On success the
// auction's highest_bid and highest_bidder fields reflect the new bid.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, userID string, amount float64) (models.Bid, error) {
	if err := s.validateBid(ctx, auctionID, userID, amount); err != nil {
		return models.Bid{}, err
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}

	// The store re-checks the strict-greater-than rule under its
	// transaction; a concurrent higher bid between our read and this write
	// comes back as ErrBidTooLow.
	if err := s.store.RecordBid(ctx, bid); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for auction %s by user %s: %w", auctionID, userID, err)
	}

	return bid, nil
}

// validateBid checks input validity and business rules for bidding
func (s *BiddingService) validateBid(ctx context.Context, auctionID, userID string, amount float64) error {
	if auctionID == "" || userID == "" {
		return fmt.Errorf("service: %w - missing auctionID or userID", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("service: failed to load auction: %w", err)
	}

	if auction.Ended(time.Now().UTC()) {
		return fmt.Errorf("service: %w - bidding closed at %s", auctionerrors.ErrAuctionEnded, auction.EndDate.UTC().Format(time.RFC3339))
	}
	if amount <= auction.HighestBid {
		return fmt.Errorf("service: %w - current highest bid is %.2f", auctionerrors.ErrBidTooLow, auction.HighestBid)
	}

	return nil
}

// BidHistory returns the bid listing appropriate for the caller's role:
// admins see every bid with bidder contact details, users see only their own
// bids without the contact projection.
func (s *BiddingService) BidHistory(ctx context.Context, user models.User, from, to *time.Time) ([]models.BidHistoryEntry, error) {
	if user.UserID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrUnauthorized)
	}

	filter := repository.BidHistoryFilter{From: from, To: to}
	if user.Role != models.RoleAdmin {
		filter.UserID = user.UserID
	}

	entries, err := s.store.ListBidHistory(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list bid history for user %s: %w", user.UserID, err)
	}

	if user.Role != models.RoleAdmin {
		for i := range entries {
			entries[i].BidderName = ""
			entries[i].BidderEmail = ""
			entries[i].BidderPhone = ""
		}
	}

	return entries, nil
}
