package auction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"auctionhouse/internal/auctionerrors"
	"auctionhouse/internal/models"
	"auctionhouse/internal/repository"
	"auctionhouse/utils"
)

// FileRemover deletes the backing file behind a stored image URL. Removal
// failures never abort the operation that triggered them; they are logged and
// swallowed so row deletion always wins over file cleanup.
type FileRemover interface {
	Remove(imageURL string) error
}

// Store is the slice of persistence the auction service needs.
type Store interface {
	repository.AuctionStore
	repository.AdminBidderStore
	repository.ImageStore
}

// AuctionService owns the auction lifecycle (admin mutations) and the read
// paths, including the merged bid view.
type AuctionService struct {
	store Store
	files FileRemover
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(store Store, files FileRemover) *AuctionService {
	return &AuctionService{
		store: store,
		files: files,
	}
}

// CreateAuctionInput carries the admin-supplied fields for a new auction.
type CreateAuctionInput struct {
	Title         string
	Description   string
	StartPrice    float64
	StartDate     time.Time
	EndDate       time.Time
	SellerName    string
	SellerInfo    string
	OrganizerName string
	OrganizerInfo string
}

// UpdateAuctionInput is the full-field admin update. HighestBid, when set,
// directly overwrites the denormalized field (the admin escape hatch); when
// nil it falls back to StartPrice.
type UpdateAuctionInput struct {
	CreateAuctionInput
	HighestBid *float64
}

// CreateAuction validates the input and stores a new auction whose
// highest_bid starts at the start price.
func (s *AuctionService) CreateAuction(ctx context.Context, in CreateAuctionInput) (models.Auction, error) {
	if err := validateAuctionInput(in); err != nil {
		return models.Auction{}, err
	}

	auction := models.Auction{
		AuctionID:     utils.GenerateID(),
		Title:         in.Title,
		Description:   in.Description,
		StartPrice:    in.StartPrice,
		HighestBid:    in.StartPrice,
		SellerName:    in.SellerName,
		SellerInfo:    in.SellerInfo,
		OrganizerName: in.OrganizerName,
		OrganizerInfo: in.OrganizerInfo,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.CreateAuction(ctx, auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}
	return auction, nil
}

// UpdateAuction overwrites all editable fields of an existing auction,
// including the direct highest_bid override.
func (s *AuctionService) UpdateAuction(ctx context.Context, auctionID string, in UpdateAuctionInput) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}
	if err := validateAuctionInput(in.CreateAuctionInput); err != nil {
		return models.Auction{}, err
	}

	existing, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}

	highest := in.StartPrice
	if in.HighestBid != nil {
		highest = *in.HighestBid
	}

	updated := existing
	updated.Title = in.Title
	updated.Description = in.Description
	updated.StartPrice = in.StartPrice
	updated.HighestBid = highest
	updated.SellerName = in.SellerName
	updated.SellerInfo = in.SellerInfo
	updated.OrganizerName = in.OrganizerName
	updated.OrganizerInfo = in.OrganizerInfo
	updated.StartDate = in.StartDate
	updated.EndDate = in.EndDate

	if err := s.store.UpdateAuction(ctx, updated); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to update auction %s: %w", auctionID, err)
	}
	return updated, nil
}

// DeleteAuction removes the auction and everything that references it. Row
// deletion is transactional; backing-file removal happens afterwards and
// failures there are logged, never surfaced.
func (s *AuctionService) DeleteAuction(ctx context.Context, auctionID string) error {
	if auctionID == "" {
		return fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}

	removed, err := s.store.DeleteAuctionCascade(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("service: failed to delete auction %s: %w", auctionID, err)
	}

	s.removeFiles(auctionID, removed)
	return nil
}

// ListAuctions returns all auctions newest-first, each with its ordered
// images.
func (s *AuctionService) ListAuctions(ctx context.Context) ([]models.AuctionListing, error) {
	auctions, err := s.store.ListAuctions(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return s.attachImages(ctx, auctions)
}

// SearchParams are the optional filters of the search endpoint.
type SearchParams struct {
	Query    string
	MinPrice *float64
	MaxPrice *float64
	Status   string
}

// SearchAuctions filters auctions by substring, highest-bid price band and
// date-derived status, newest first.
func (s *AuctionService) SearchAuctions(ctx context.Context, params SearchParams) ([]models.AuctionListing, error) {
	status := params.Status
	switch status {
	case "", "all", "active", "ended":
	default:
		return nil, fmt.Errorf("service: %w - unknown status %q", auctionerrors.ErrInvalidAuction, status)
	}

	auctions, err := s.store.SearchAuctions(ctx, repository.AuctionFilter{
		Query:    params.Query,
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		Status:   status,
		Now:      time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to search auctions: %w", err)
	}
	return s.attachImages(ctx, auctions)
}

// GetAuction returns a single auction row.
func (s *AuctionService) GetAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}
	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// GetAuctionDetail returns the auction, its ordered images and the merged
// display list of real bids and admin-entered bidders, newest first. The
// merge is a read-time projection over two ledgers; only the bids table is
// authoritative, and the first entry's amount is not necessarily the
// auction's highest bid.
func (s *AuctionService) GetAuctionDetail(ctx context.Context, auctionID string) (models.AuctionDetail, error) {
	auction, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return models.AuctionDetail{}, err
	}

	images, err := s.store.GetAuctionImages(ctx, auctionID)
	if err != nil {
		return models.AuctionDetail{}, fmt.Errorf("service: failed to get images for auction %s: %w", auctionID, err)
	}

	bids, err := s.store.ListBidEntries(ctx, auctionID)
	if err != nil {
		return models.AuctionDetail{}, fmt.Errorf("service: failed to list bids for auction %s: %w", auctionID, err)
	}

	adminBidders, err := s.store.ListAdminBidders(ctx, auctionID)
	if err != nil {
		return models.AuctionDetail{}, fmt.Errorf("service: failed to list bidders for auction %s: %w", auctionID, err)
	}

	merged := make([]models.BidEntry, 0, len(bids)+len(adminBidders))
	merged = append(merged, bids...)
	for _, b := range adminBidders {
		merged = append(merged, models.BidEntry{
			ID:         b.BidderID,
			AuctionID:  b.AuctionID,
			UserID:     b.UserID,
			BidderName: b.BidderName,
			Amount:     b.Amount,
			CreatedAt:  b.CreatedAt,
		})
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	return models.AuctionDetail{
		Auction: auction,
		Images:  images,
		Bidders: merged,
	}, nil
}

// ListAdminBidders returns the admin-entered shadow ledger for an auction.
func (s *AuctionService) ListAdminBidders(ctx context.Context, auctionID string) ([]models.AdminBidder, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}
	bidders, err := s.store.ListAdminBidders(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list bidders for auction %s: %w", auctionID, err)
	}
	return bidders, nil
}

// AdminBidderInput is one admin-entered participant row.
type AdminBidderInput struct {
	UserID     *string
	BidderName string
	Amount     float64
	BidCount   int
}

// ReplaceAdminBidders swaps the full admin-entered bidder set for an auction.
// Nothing reconciles these rows with the auction's highest bid.
func (s *AuctionService) ReplaceAdminBidders(ctx context.Context, auctionID string, inputs []AdminBidderInput) error {
	if auctionID == "" {
		return fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}

	now := time.Now().UTC()
	bidders := make([]models.AdminBidder, 0, len(inputs))
	for _, in := range inputs {
		if in.BidderName == "" {
			return fmt.Errorf("service: %w - bidder name is required", auctionerrors.ErrInvalidAuction)
		}
		count := in.BidCount
		if count <= 0 {
			count = 1
		}
		bidders = append(bidders, models.AdminBidder{
			BidderID:   utils.GenerateID(),
			AuctionID:  auctionID,
			UserID:     in.UserID,
			BidderName: in.BidderName,
			Amount:     in.Amount,
			BidCount:   count,
			CreatedAt:  now,
		})
	}

	if err := s.store.ReplaceAdminBidders(ctx, auctionID, bidders); err != nil {
		return fmt.Errorf("service: failed to replace bidders for auction %s: %w", auctionID, err)
	}
	return nil
}

// MaxImagesPerAuction bounds the image set an admin may attach.
const MaxImagesPerAuction = 10

// AttachImages replaces the auction's image set with the given uploaded
// files, display order following slice order. Displaced backing files are
// removed best-effort.
func (s *AuctionService) AttachImages(ctx context.Context, auctionID string, imageURLs []string) ([]models.AuctionImage, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}
	if len(imageURLs) == 0 {
		return nil, fmt.Errorf("service: %w - no images provided", auctionerrors.ErrInvalidUpload)
	}
	if len(imageURLs) > MaxImagesPerAuction {
		return nil, fmt.Errorf("service: %w - at most %d images per auction", auctionerrors.ErrInvalidUpload, MaxImagesPerAuction)
	}

	now := time.Now().UTC()
	images := make([]models.AuctionImage, 0, len(imageURLs))
	for i, url := range imageURLs {
		images = append(images, models.AuctionImage{
			ImageID:      utils.GenerateID(),
			AuctionID:    auctionID,
			ImageURL:     url,
			DisplayOrder: i,
			CreatedAt:    now,
		})
	}

	removed, err := s.store.ReplaceAuctionImages(ctx, auctionID, images)
	if err != nil {
		return nil, fmt.Errorf("service: failed to replace images for auction %s: %w", auctionID, err)
	}

	s.removeFiles(auctionID, removed)
	return images, nil
}

// RemoveImage detaches a single image and removes its backing file
// best-effort.
func (s *AuctionService) RemoveImage(ctx context.Context, imageID string) error {
	if imageID == "" {
		return fmt.Errorf("service: %w - empty image ID", auctionerrors.ErrInvalidUpload)
	}

	image, err := s.store.DeleteImage(ctx, imageID)
	if err != nil {
		return fmt.Errorf("service: failed to delete image %s: %w", imageID, err)
	}

	s.removeFiles(image.AuctionID, []models.AuctionImage{image})
	return nil
}

// removeFiles deletes backing files for removed image rows, logging and
// swallowing per-file failures.
func (s *AuctionService) removeFiles(auctionID string, images []models.AuctionImage) {
	for _, img := range images {
		if err := s.files.Remove(img.ImageURL); err != nil {
			utils.Warn("failed to remove image file", map[string]any{
				"auction_id": auctionID,
				"image_url":  img.ImageURL,
				"error":      err.Error(),
			})
		}
	}
}

// attachImages decorates auction rows with their ordered images.
func (s *AuctionService) attachImages(ctx context.Context, auctions []models.Auction) ([]models.AuctionListing, error) {
	listings := make([]models.AuctionListing, 0, len(auctions))
	for _, a := range auctions {
		images, err := s.store.GetAuctionImages(ctx, a.AuctionID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to get images for auction %s: %w", a.AuctionID, err)
		}
		listings = append(listings, models.AuctionListing{Auction: a, Images: images})
	}
	return listings, nil
}

func validateAuctionInput(in CreateAuctionInput) error {
	if in.Title == "" || in.Description == "" {
		return fmt.Errorf("service: %w - title and description are required", auctionerrors.ErrInvalidAuction)
	}
	if in.StartPrice < 0 {
		return fmt.Errorf("service: %w - negative start price", auctionerrors.ErrInvalidAuction)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return fmt.Errorf("service: %w - start and end dates are required", auctionerrors.ErrInvalidAuction)
	}
	if !in.EndDate.After(in.StartDate) {
		return fmt.Errorf("service: %w - end date must be after start date", auctionerrors.ErrInvalidAuction)
	}
	return nil
}
