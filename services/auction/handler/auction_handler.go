package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	auction "auctionhouse/internal/auctionService"
	model "auctionhouse/internal/models"
	"auctionhouse/services/helpers"
	"auctionhouse/utils"
)

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, in auction.CreateAuctionInput) (model.Auction, error)
	UpdateAuction(ctx context.Context, auctionID string, in auction.UpdateAuctionInput) (model.Auction, error)
	DeleteAuction(ctx context.Context, auctionID string) error
	ListAuctions(ctx context.Context) ([]model.AuctionListing, error)
	SearchAuctions(ctx context.Context, params auction.SearchParams) ([]model.AuctionListing, error)
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	GetAuctionDetail(ctx context.Context, auctionID string) (model.AuctionDetail, error)
	ListAdminBidders(ctx context.Context, auctionID string) ([]model.AdminBidder, error)
	ReplaceAdminBidders(ctx context.Context, auctionID string, inputs []auction.AdminBidderInput) error
	AttachImages(ctx context.Context, auctionID string, imageURLs []string) ([]model.AuctionImage, error)
	RemoveImage(ctx context.Context, imageID string) error
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// ListAuctionsHandler handles GET /auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	listings, err := h.service.ListAuctions(c.Request.Context())
	if err != nil {
		helpers.HandleServiceError(c, "ListAuctionsHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, listings, "auctions retrieved successfully")
}

// SearchAuctionsHandler handles GET /auctions/search
func (h *AuctionHandler) SearchAuctionsHandler(c *gin.Context) {
	params := auction.SearchParams{
		Query:  c.Query("q"),
		Status: c.DefaultQuery("status", "all"),
	}

	minPrice, err := parsePriceParam(c.Query("minPrice"))
	if err != nil {
		helpers.HandleBindError(c, "SearchAuctionsHandler", err)
		return
	}
	maxPrice, err := parsePriceParam(c.Query("maxPrice"))
	if err != nil {
		helpers.HandleBindError(c, "SearchAuctionsHandler", err)
		return
	}
	params.MinPrice = minPrice
	params.MaxPrice = maxPrice

	listings, err := h.service.SearchAuctions(c.Request.Context(), params)
	if err != nil {
		helpers.HandleServiceError(c, "SearchAuctionsHandler", err, map[string]any{"query": params.Query})
		return
	}

	utils.JSONResponse(c, http.StatusOK, listings, "auctions retrieved successfully")
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	a, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, a, "auction retrieved successfully")
}

// GetAuctionDetailHandler handles GET /auctions/:auction_id/detail
func (h *AuctionHandler) GetAuctionDetailHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	detail, err := h.service.GetAuctionDetail(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionDetailHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, detail, "auction detail retrieved successfully")
	helpers.LogSuccess("GetAuctionDetailHandler", "auction detail retrieved", map[string]any{
		"auction_id": auctionID,
		"bidders":    len(detail.Bidders),
	})
}

// CreateAuctionHandler handles POST /auctions (admin)
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req AuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	a, err := h.service.CreateAuction(c.Request.Context(), createInputFromRequest(req))
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{"title": req.Title})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, AuctionCreatedResponse{AuctionID: a.AuctionID}, "auction created")
	helpers.LogSuccess("CreateAuctionHandler", "auction created", map[string]any{
		"auction_id":  a.AuctionID,
		"title":       a.Title,
		"start_price": a.StartPrice,
	})
}

// UpdateAuctionHandler handles PUT /auctions/:auction_id (admin). The
// highest_bid field, when present, overwrites the denormalized value
// directly.
func (h *AuctionHandler) UpdateAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req AuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateAuctionHandler", err)
		return
	}

	in := auction.UpdateAuctionInput{
		CreateAuctionInput: createInputFromRequest(req),
		HighestBid:         req.HighestBid,
	}

	a, err := h.service.UpdateAuction(c.Request.Context(), auctionID, in)
	if err != nil {
		helpers.HandleServiceError(c, "UpdateAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, a, "auction updated")
	helpers.LogSuccess("UpdateAuctionHandler", "auction updated", map[string]any{
		"auction_id":  auctionID,
		"highest_bid": a.HighestBid,
	})
}

// DeleteAuctionHandler handles DELETE /auctions/:auction_id (admin)
func (h *AuctionHandler) DeleteAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	if err := h.service.DeleteAuction(c.Request.Context(), auctionID); err != nil {
		helpers.HandleServiceError(c, "DeleteAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"auction_id": auctionID}, "auction deleted")
	helpers.LogSuccess("DeleteAuctionHandler", "auction deleted", map[string]any{"auction_id": auctionID})
}

// ListBiddersHandler handles GET /auctions/:auction_id/bidders. These are the
// admin-entered participants, not the real bid ledger.
func (h *AuctionHandler) ListBiddersHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bidders, err := h.service.ListAdminBidders(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "ListBiddersHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	if bidders == nil {
		bidders = []model.AdminBidder{}
	}
	utils.JSONResponse(c, http.StatusOK, bidders, "bidders retrieved successfully")
}

// ReplaceBiddersHandler handles PUT /auctions/:auction_id/bidders (admin)
func (h *AuctionHandler) ReplaceBiddersHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req ReplaceBiddersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ReplaceBiddersHandler", err)
		return
	}

	inputs := make([]auction.AdminBidderInput, 0, len(req.Bidders))
	for _, b := range req.Bidders {
		inputs = append(inputs, auction.AdminBidderInput{
			UserID:     b.UserID,
			BidderName: b.BidderName,
			Amount:     b.Amount,
			BidCount:   b.BidCount,
		})
	}

	if err := h.service.ReplaceAdminBidders(c.Request.Context(), auctionID, inputs); err != nil {
		helpers.HandleServiceError(c, "ReplaceBiddersHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"auction_id": auctionID}, "bidders updated")
	helpers.LogSuccess("ReplaceBiddersHandler", "bidders updated", map[string]any{
		"auction_id": auctionID,
		"count":      len(inputs),
	})
}

// AttachImagesHandler handles POST /auctions/:auction_id/images (admin),
// replacing the auction's image set.
func (h *AuctionHandler) AttachImagesHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req AttachImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AttachImagesHandler", err)
		return
	}

	images, err := h.service.AttachImages(c.Request.Context(), auctionID, req.ImageURLs)
	if err != nil {
		helpers.HandleServiceError(c, "AttachImagesHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, images, "images saved successfully")
	helpers.LogSuccess("AttachImagesHandler", "images saved", map[string]any{
		"auction_id": auctionID,
		"count":      len(images),
	})
}

// RemoveImageHandler handles DELETE /images/:image_id (admin)
func (h *AuctionHandler) RemoveImageHandler(c *gin.Context) {
	imageID := c.Param("image_id")
	if err := h.service.RemoveImage(c.Request.Context(), imageID); err != nil {
		helpers.HandleServiceError(c, "RemoveImageHandler", err, map[string]any{"image_id": imageID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"image_id": imageID}, "image deleted successfully")
}

func createInputFromRequest(req AuctionRequest) auction.CreateAuctionInput {
	return auction.CreateAuctionInput{
		Title:         req.Title,
		Description:   req.Description,
		StartPrice:    req.StartPrice,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		SellerName:    req.SellerName,
		SellerInfo:    req.SellerInfo,
		OrganizerName: req.OrganizerName,
		OrganizerInfo: req.OrganizerInfo,
	}
}

// parsePriceParam parses an optional numeric query parameter.
func parsePriceParam(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	price, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &price, nil
}
