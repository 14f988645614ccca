package models

import "time"

// Role gates administrative operations
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account
type User struct {
	UserID       string    `json:"user_id" gorm:"column:id;primaryKey;size:36"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-" gorm:"column:password"`
	Role         Role      `json:"role" gorm:"size:16;default:user"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// Auction represents a biddable listing. HighestBid starts at StartPrice and
// is mutated only by accepted bids and the admin override.
type Auction struct {
	AuctionID       string    `json:"auction_id" gorm:"column:id;primaryKey;size:36"`
	Title           string    `json:"title"`
	Description     string    `json:"description" gorm:"type:text"`
	StartPrice      float64   `json:"start_price"`
	HighestBid      float64   `json:"highest_bid"`
	HighestBidderID *string   `json:"highest_bidder_id" gorm:"size:36"`
	SellerName      string    `json:"seller_name"`
	SellerInfo      string    `json:"seller_info" gorm:"type:text"`
	OrganizerName   string    `json:"organizer_name"`
	OrganizerInfo   string    `json:"organizer_info" gorm:"type:text"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Auction) TableName() string { return "auctions" }

// Ended reports whether the auction's bidding window has closed at t.
func (a Auction) Ended(t time.Time) bool {
	return !t.Before(a.EndDate)
}

// Bid is an immutable record of a user offering an amount for an auction.
// Bids are never edited or deleted except via cascading auction deletion.
type Bid struct {
	BidID     string    `json:"bid_id" gorm:"column:id;primaryKey;size:36"`
	AuctionID string    `json:"auction_id" gorm:"index;size:36"`
	UserID    string    `json:"user_id" gorm:"index;size:36"`
	Amount    float64   `json:"amount" gorm:"column:bid_amount"`
	CreatedAt time.Time `json:"created_at"`
}

func (Bid) TableName() string { return "bids" }

// AdminBidder is an admin-entered participant record. It is a shadow ledger
// merged into read views next to real bids and is never reconciled with the
// auction's highest bid.
type AdminBidder struct {
	BidderID   string    `json:"bidder_id" gorm:"column:id;primaryKey;size:36"`
	AuctionID  string    `json:"auction_id" gorm:"index;size:36"`
	UserID     *string   `json:"user_id" gorm:"size:36"`
	BidderName string    `json:"bidder_name"`
	Amount     float64   `json:"bid_amount" gorm:"column:bid_amount"`
	BidCount   int       `json:"bid_count" gorm:"default:1"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AdminBidder) TableName() string { return "bidders" }

// AuctionImage is owned by exactly one auction; the backing file is removed
// when the image row or its auction is deleted.
type AuctionImage struct {
	ImageID      string    `json:"image_id" gorm:"column:id;primaryKey;size:36"`
	AuctionID    string    `json:"auction_id" gorm:"index;size:36"`
	ImageURL     string    `json:"image_url"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AuctionImage) TableName() string { return "auction_images" }

// Notification is append-only except for the read flag, which is mutated only
// by its owner.
type Notification struct {
	NotificationID string    `json:"notification_id" gorm:"column:id;primaryKey;size:36"`
	UserID         string    `json:"user_id" gorm:"index;size:36"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message" gorm:"type:text"`
	AuctionID      *string   `json:"auction_id" gorm:"size:36"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// BidEntry is the display-only shape shared by real bids and admin-entered
// bidders in the merged auction detail view. It is a read-time projection,
// not the authoritative ledger.
type BidEntry struct {
	ID         string    `json:"id"`
	AuctionID  string    `json:"auction_id"`
	UserID     *string   `json:"user_id"`
	BidderName string    `json:"bidder_name"`
	Amount     float64   `json:"bid_amount"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuctionListing is an auction with its ordered images, the shape of the
// list and search responses.
type AuctionListing struct {
	Auction
	Images []AuctionImage `json:"images"`
}

// AuctionDetail bundles everything the detail page needs in one read.
type AuctionDetail struct {
	Auction Auction        `json:"auction"`
	Images  []AuctionImage `json:"images"`
	Bidders []BidEntry     `json:"bidders"`
}

// BidHistoryEntry is a bid joined with its auction (and, for admin listings,
// bidder contact details) for the history views.
type BidHistoryEntry struct {
	Bid
	AuctionTitle  string    `json:"auction_title"`
	AuctionEnd    time.Time `json:"end_date"`
	HighestBid    float64   `json:"highest_bid"`
	AuctionStatus string    `json:"auction_status"`
	BidderName    string    `json:"bidder_name,omitempty"`
	BidderEmail   string    `json:"bidder_email,omitempty"`
	BidderPhone   string    `json:"bidder_phone,omitempty"`
}
