package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrImageNotFound        = errors.New("image not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrEmailTaken           = errors.New("email already registered")
)

// Business logic errors
var (
	ErrInvalidBid     = errors.New("invalid bid")
	ErrBidTooLow      = errors.New("bid amount too low")
	ErrAuctionEnded   = errors.New("auction has ended")
	ErrInvalidAuction = errors.New("invalid auction")
	ErrInvalidUpload  = errors.New("invalid upload")
	ErrValidation     = errors.New("missing required fields")
)

// Auth errors
var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("insufficient role")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
