package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"auctionhouse/internal/auctionerrors"
	model "auctionhouse/internal/models"
	"auctionhouse/services/helpers"
	"auctionhouse/utils"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, auctionID, userID string, amount float64) (model.Bid, error)
	BidHistory(ctx context.Context, user model.User, from, to *time.Time) ([]model.BidHistoryEntry, error)
}

// BidMetrics counts bid outcomes.
type BidMetrics interface {
	RecordBidAccepted()
	RecordBidRejected(reason string)
}

type BiddingHandler struct {
	service BiddingServiceInterface
	metrics BidMetrics
}

func NewBiddingHandler(service BiddingServiceInterface, metrics BidMetrics) *BiddingHandler {
	return &BiddingHandler{service: service, metrics: metrics}
}

// PlaceBidHandler handles POST /bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	user, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.HandleServiceError(c, "PlaceBidHandler", auctionerrors.ErrUnauthorized, nil)
		return
	}

	var req PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), req.AuctionID, user.UserID, req.Amount)
	if err != nil {
		h.metrics.RecordBidRejected(rejectionReason(err))
		helpers.HandleServiceError(c, "PlaceBidHandler", err, map[string]any{
			"auction_id": req.AuctionID,
			"user_id":    user.UserID,
		})
		return
	}
	h.metrics.RecordBidAccepted()

	resp := BidResponse{
		BidID:     bid.BidID,
		AuctionID: bid.AuctionID,
		UserID:    bid.UserID,
		Amount:    bid.Amount,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"user_id":    user.UserID,
		"amount":     bid.Amount,
	})
}

// BidHistoryHandler handles GET /bids. Admins get all bids with bidder
// contact details, users only their own.
func (h *BiddingHandler) BidHistoryHandler(c *gin.Context) {
	user, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.HandleServiceError(c, "BidHistoryHandler", auctionerrors.ErrUnauthorized, nil)
		return
	}

	from, err := parseTimeParam(c.Query("startDate"))
	if err != nil {
		helpers.HandleBindError(c, "BidHistoryHandler", err)
		return
	}
	to, err := parseTimeParam(c.Query("endDate"))
	if err != nil {
		helpers.HandleBindError(c, "BidHistoryHandler", err)
		return
	}

	entries, err := h.service.BidHistory(c.Request.Context(), model.User{UserID: user.UserID, Role: user.Role}, from, to)
	if err != nil {
		helpers.HandleServiceError(c, "BidHistoryHandler", err, map[string]any{"user_id": user.UserID})
		return
	}

	if entries == nil {
		entries = []model.BidHistoryEntry{}
	}

	utils.JSONResponse(c, http.StatusOK, entries, "bids retrieved successfully")
	helpers.LogSuccess("BidHistoryHandler", "bids retrieved successfully", map[string]any{
		"user_id": user.UserID,
		"count":   len(entries),
	})
}

// parseTimeParam parses an optional RFC 3339 query parameter.
func parseTimeParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// rejectionReason labels a failed bid for the rejection counter.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return "too_low"
	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		return "ended"
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return "not_found"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return "invalid"
	default:
		return "error"
	}
}
