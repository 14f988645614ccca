package integrationtests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Bid placement over the full stack
func TestPlaceBidAPI(t *testing.T) {
	env := SetupTestEnv(t)
	cookie := env.RegisterUser(t, "Alice", "alice@example.com")

	end := time.Now().UTC().Add(time.Hour)
	openID := env.SeedAuction(t, "Open Auction", 50, end)
	endedID := env.SeedAuction(t, "Ended Auction", 50, time.Now().UTC().Add(-time.Hour))

	t.Run("requires_session", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodPost, "/bids", map[string]any{
			"auction_id": openID,
			"bid_amount": 100,
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid_bid_accepted", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodPost, "/bids", map[string]any{
			"auction_id": openID,
			"bid_amount": 100,
		}, cookie)
		require.Equal(t, http.StatusCreated, w.Code)

		data := ParseResponse(t, w)["data"].(map[string]any)
		require.Equal(t, openID, data["auction_id"])
		require.Equal(t, 100.0, data["bid_amount"])
		require.NotEmpty(t, data["bid_id"])
		_, err := time.Parse(time.RFC3339, data["created_at"].(string))
		require.NoError(t, err)

		// The auction's denormalized fields moved with the bid
		aw := ExecuteRequest(t, env.Router, http.MethodGet, "/auctions/"+openID, nil)
		require.Equal(t, http.StatusOK, aw.Code)
		adata := ParseResponse(t, aw)["data"].(map[string]any)
		require.Equal(t, 100.0, adata["highest_bid"])
	})

	t.Run("equal_bid_rejected", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodPost, "/bids", map[string]any{
			"auction_id": openID,
			"bid_amount": 100,
		}, cookie)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, ParseResponse(t, w)["message"], "bid must be higher than current highest bid")
	})

	t.Run("ended_auction_rejected", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodPost, "/bids", map[string]any{
			"auction_id": endedID,
			"bid_amount": 500,
		}, cookie)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, ParseResponse(t, w)["message"], "auction has ended")
	})

	t.Run("unknown_auction", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodPost, "/bids", map[string]any{
			"auction_id": "no-such-auction",
			"bid_amount": 500,
		}, cookie)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid_json", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodPost, "/bids",
			"{auction_id: 'missing quotes', bid_amount: 100}", cookie)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// Bid history over the full stack: role-scoped visibility
func TestBidHistoryAPI(t *testing.T) {
	env := SetupTestEnv(t)
	aliceCookie := env.RegisterUser(t, "Alice", "alice@example.com")
	bobCookie := env.RegisterUser(t, "Bob", "bob@example.com")
	adminCookie := env.LoginAdmin(t, "admin@example.com")

	end := time.Now().UTC().Add(time.Hour)
	auctionID := env.SeedAuction(t, "Open Auction", 50, end)

	w := ExecuteRequest(t, env.Router, http.MethodPost, "/bids", map[string]any{
		"auction_id": auctionID, "bid_amount": 100,
	}, aliceCookie)
	require.Equal(t, http.StatusCreated, w.Code)
	w = ExecuteRequest(t, env.Router, http.MethodPost, "/bids", map[string]any{
		"auction_id": auctionID, "bid_amount": 150,
	}, bobCookie)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("user_sees_only_own_bids", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodGet, "/bids", nil, aliceCookie)
		require.Equal(t, http.StatusOK, w.Code)

		entries := ParseResponse(t, w)["data"].([]any)
		require.Len(t, entries, 1)
		entry := entries[0].(map[string]any)
		require.Equal(t, 100.0, entry["amount"])
		require.Equal(t, "Open Auction", entry["auction_title"])

		// contact projection is blanked for regular users
		_, hasEmail := entry["bidder_email"]
		require.False(t, hasEmail)
	})

	t.Run("admin_sees_all_bids_with_contact", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodGet, "/bids", nil, adminCookie)
		require.Equal(t, http.StatusOK, w.Code)

		entries := ParseResponse(t, w)["data"].([]any)
		require.Len(t, entries, 2)

		// newest first
		first := entries[0].(map[string]any)
		require.Equal(t, 150.0, first["amount"])
		require.Equal(t, "Bob", first["bidder_name"])
		require.Equal(t, "bob@example.com", first["bidder_email"])
	})

	t.Run("requires_session", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodGet, "/bids", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
