package handler

import "time"

// Request/Response DTOs
type AuctionRequest struct {
	Title         string    `json:"title" binding:"required"`
	Description   string    `json:"description" binding:"required"`
	StartPrice    float64   `json:"start_price" binding:"required,gte=0"`
	StartDate     time.Time `json:"start_date" binding:"required"`
	EndDate       time.Time `json:"end_date" binding:"required"`
	SellerName    string    `json:"seller_name"`
	SellerInfo    string    `json:"seller_info"`
	OrganizerName string    `json:"organizer_name"`
	OrganizerInfo string    `json:"organizer_info"`

	// Update only: direct override of the denormalized highest bid.
	HighestBid *float64 `json:"highest_bid"`
}

type AdminBidderRequest struct {
	UserID     *string `json:"user_id"`
	BidderName string  `json:"bidder_name" binding:"required"`
	Amount     float64 `json:"bid_amount"`
	BidCount   int     `json:"bid_count"`
}

type ReplaceBiddersRequest struct {
	Bidders []AdminBidderRequest `json:"bidders" binding:"required"`
}

type AttachImagesRequest struct {
	ImageURLs []string `json:"image_urls" binding:"required"`
}

type AuctionCreatedResponse struct {
	AuctionID string `json:"auction_id"`
}
