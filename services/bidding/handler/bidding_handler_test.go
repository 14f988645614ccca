package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"auctionhouse/internal/auctionerrors"
	auth "auctionhouse/internal/authService"
	model "auctionhouse/internal/models"
	"auctionhouse/services/helpers"
)

// stubMetrics counts recorded outcomes for assertions.
type stubMetrics struct {
	mu       sync.Mutex
	accepted int
	rejected map[string]int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{rejected: map[string]int{}}
}

func (s *stubMetrics) RecordBidAccepted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepted++
}

func (s *stubMetrics) RecordBidRejected(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected[reason]++
}

// sessionFor injects a verified session payload, standing in for the cookie
// middleware.
func sessionFor(payload auth.TokenPayload) gin.HandlerFunc {
	return func(c *gin.Context) {
		if payload.UserID != "" {
			helpers.SetCurrentUser(c, payload)
		}
		c.Next()
	}
}

// Test PlaceBidHandler
func TestPlaceBidHandler(t *testing.T) {
	now := time.Now().UTC()

	userSession := auth.TokenPayload{UserID: "user1", Email: "user1@example.com", Role: model.RoleUser}

	tests := []struct {
		name           string
		session        auth.TokenPayload
		requestBody    any
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
		expectedMsg    string
		wantedReason   string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name:        "success_valid_bid",
			session:     userSession,
			requestBody: PlaceBidRequest{AuctionID: "auction1", Amount: 100},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "auction1", "user1", 100.0).
					Return(model.Bid{
						BidID:     uuid.NewString(),
						AuctionID: "auction1",
						UserID:    "user1",
						Amount:    100.0,
						CreatedAt: now,
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "bid placed successfully",
			validateData: func(t *testing.T, data map[string]any) {
				bidID := data["bid_id"].(string)
				require.NotEmpty(t, bidID)
				_, parseErr := uuid.Parse(bidID)
				require.NoError(t, parseErr, "BidID should be a valid UUID")
				require.Equal(t, "auction1", data["auction_id"])
				require.Equal(t, "user1", data["user_id"])
				require.Equal(t, 100.0, data["bid_amount"])
			},
		},
		{
			name:           "no_session",
			session:        auth.TokenPayload{},
			requestBody:    PlaceBidRequest{AuctionID: "auction1", Amount: 100},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "authentication required",
		},
		{
			name:           "invalid_json",
			session:        userSession,
			requestBody:    `{invalid json}`,
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "missing_auction_id",
			session:        userSession,
			requestBody:    PlaceBidRequest{AuctionID: "", Amount: 50},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "zero_amount",
			session:        userSession,
			requestBody:    PlaceBidRequest{AuctionID: "auction1", Amount: 0},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "negative_amount",
			session:        userSession,
			requestBody:    PlaceBidRequest{AuctionID: "auction1", Amount: -10},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "service_bid_too_low",
			session:     userSession,
			requestBody: PlaceBidRequest{AuctionID: "auction1", Amount: 50},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "auction1", "user1", 50.0).
					Return(model.Bid{}, auctionerrors.ErrBidTooLow)
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "bid must be higher than current highest bid",
			wantedReason:   "too_low",
		},
		{
			name:        "service_auction_ended",
			session:     userSession,
			requestBody: PlaceBidRequest{AuctionID: "auction1", Amount: 50},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "auction1", "user1", 50.0).
					Return(model.Bid{}, auctionerrors.ErrAuctionEnded)
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "auction has ended",
			wantedReason:   "ended",
		},
		{
			name:        "service_auction_not_found",
			session:     userSession,
			requestBody: PlaceBidRequest{AuctionID: "auctionX", Amount: 50},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "auctionX", "user1", 50.0).
					Return(model.Bid{}, auctionerrors.ErrAuctionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "auction not found",
			wantedReason:   "not_found",
		},
		{
			name:        "service_generic_error",
			session:     userSession,
			requestBody: PlaceBidRequest{AuctionID: "auction1", Amount: 100},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "auction1", "user1", 100.0).
					Return(model.Bid{}, errors.New("database failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
			wantedReason:   "error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockBiddingServiceInterface(ctrl)
			metrics := newStubMetrics()
			handler := NewBiddingHandler(mockService, metrics)

			// Initialize Gin in test mode
			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.POST("/bids", sessionFor(tc.session), handler.PlaceBidHandler)

			tc.mockSetup(mockService)

			var reqBody []byte
			var err error
			switch v := tc.requestBody.(type) {
			case string:
				reqBody = []byte(v)
			default:
				reqBody, err = json.Marshal(v)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/bids", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			err = json.Unmarshal(w.Body.Bytes(), &resp)
			require.NoError(t, err)

			require.Contains(t, resp["message"], tc.expectedMsg)

			if tc.validateData != nil && w.Code == http.StatusCreated {
				data := resp["data"].(map[string]any)
				tc.validateData(t, data)
			}

			if w.Code == http.StatusCreated {
				require.Equal(t, 1, metrics.accepted)
			} else {
				require.Zero(t, metrics.accepted)
			}
			if tc.wantedReason != "" {
				require.Equal(t, 1, metrics.rejected[tc.wantedReason])
			}
		})
	}
}

// Test BidHistoryHandler
func TestBidHistoryHandler(t *testing.T) {
	now := time.Now().UTC()

	userSession := auth.TokenPayload{UserID: "user1", Email: "user1@example.com", Role: model.RoleUser}
	adminSession := auth.TokenPayload{UserID: "admin1", Email: "admin@example.com", Role: model.RoleAdmin}

	historyExample := []model.BidHistoryEntry{
		{
			Bid:          model.Bid{BidID: "bid1", AuctionID: "auction1", UserID: "user1", Amount: 100, CreatedAt: now},
			AuctionTitle: "title1",
			AuctionEnd:   now.Add(time.Hour),
			HighestBid:   150,
		},
	}

	tests := []struct {
		name           string
		session        auth.TokenPayload
		query          string
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
		expectedMsg    string
		expectedCount  int
	}{
		{
			name:    "user_history",
			session: userSession,
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					BidHistory(gomock.Any(), model.User{UserID: "user1", Role: model.RoleUser}, nil, nil).
					Return(historyExample, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bids retrieved successfully",
			expectedCount:  1,
		},
		{
			name:    "admin_history",
			session: adminSession,
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					BidHistory(gomock.Any(), model.User{UserID: "admin1", Role: model.RoleAdmin}, nil, nil).
					Return(historyExample, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bids retrieved successfully",
			expectedCount:  1,
		},
		{
			name:    "date_range_parsed",
			session: userSession,
			query:   "?startDate=2026-01-01T00:00:00Z&endDate=2026-02-01T00:00:00Z",
			mockSetup: func(m *MockBiddingServiceInterface) {
				from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
				to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
				m.EXPECT().
					BidHistory(gomock.Any(), gomock.Any(), &from, &to).
					Return([]model.BidHistoryEntry{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bids retrieved successfully",
			expectedCount:  0,
		},
		{
			name:           "bad_start_date",
			session:        userSession,
			query:          "?startDate=yesterday",
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "no_session",
			session:        auth.TokenPayload{},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "authentication required",
		},
		{
			name:    "service_error",
			session: userSession,
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					BidHistory(gomock.Any(), gomock.Any(), nil, nil).
					Return(nil, errors.New("db failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockBiddingServiceInterface(ctrl)
			handler := NewBiddingHandler(mockService, newStubMetrics())

			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.GET("/bids", sessionFor(tc.session), handler.BidHistoryHandler)

			tc.mockSetup(mockService)

			req := httptest.NewRequest(http.MethodGet, "/bids"+tc.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			err := json.Unmarshal(w.Body.Bytes(), &resp)
			require.NoError(t, err)

			require.Contains(t, resp["message"], tc.expectedMsg)

			if w.Code == http.StatusOK {
				data := resp["data"].([]any)
				require.Len(t, data, tc.expectedCount)
			}
		})
	}
}
