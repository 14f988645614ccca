package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auction "auctionhouse/internal/auctionService"
	auth "auctionhouse/internal/authService"
	bidding "auctionhouse/internal/biddingService"
	"auctionhouse/internal/metrics"
	model "auctionhouse/internal/models"
	notification "auctionhouse/internal/notificationService"
	"auctionhouse/internal/repository"
	"auctionhouse/internal/server"
	"auctionhouse/internal/storage"
	"auctionhouse/utils"
)

const testJWTSecret = "integration-test-secret"

// TestEnv bundles the full application wired over the in-memory store, plus
// handles for seeding state directly.
type TestEnv struct {
	Router *gin.Engine
	Store  *repository.MemoryStore
}

// SetupTestEnv wires the whole application the way main does, backed by the
// in-memory store and a temp upload dir.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	files, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	// Generous limits so rate limiting never interferes with tests
	limiter := server.NewBidRateLimiter(6000, 1000)
	t.Cleanup(limiter.Stop)

	authSvc := auth.NewAuthService(store, testJWTSecret, time.Hour)
	router := server.SetupRouter(server.Deps{
		Bidding:       bidding.NewBiddingService(store),
		Auctions:      auction.NewAuctionService(store, files),
		Auth:          authSvc,
		Notifications: notification.NewNotificationService(store),
		Uploads:       files,
		Metrics:       metrics.NewCollector(),
		BidLimiter:    limiter,
		UploadDir:     files.Dir(),
	})

	return &TestEnv{Router: router, Store: store}
}

// ExecuteRequest executes an HTTP request with optional session cookies and
// returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody []byte
	var err error
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		require.NoError(t, err, "failed to marshal body")
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ParseResponse unmarshals the standard JSON envelope.
func ParseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "failed to unmarshal response")
	return resp
}

// RegisterUser registers a user through the HTTP API and returns their
// session cookie.
func (env *TestEnv) RegisterUser(t *testing.T, name, email string) *http.Cookie {
	t.Helper()

	w := ExecuteRequest(t, env.Router, http.MethodPost, "/auth/register", map[string]any{
		"name":     name,
		"email":    email,
		"phone":    "555-0100",
		"password": "integration-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return sessionCookie(t, w)
}

// LoginAdmin seeds an admin account directly and logs in through the HTTP
// API, returning the session cookie.
func (env *TestEnv) LoginAdmin(t *testing.T, email string) *http.Cookie {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, env.Store.CreateUser(context.Background(), model.User{
		UserID:       utils.GenerateID(),
		Name:         "Admin",
		Email:        email,
		Phone:        "555-0001",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}))

	w := ExecuteRequest(t, env.Router, http.MethodPost, "/auth/login", map[string]any{
		"email":    email,
		"password": "admin-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	return sessionCookie(t, w)
}

// SeedAuction creates an auction directly in the store and returns its id.
func (env *TestEnv) SeedAuction(t *testing.T, title string, startPrice float64, end time.Time) string {
	t.Helper()

	id := utils.GenerateID()
	require.NoError(t, env.Store.CreateAuction(context.Background(), model.Auction{
		AuctionID:   id,
		Title:       title,
		Description: title + " description",
		StartPrice:  startPrice,
		HighestBid:  startPrice,
		StartDate:   end.Add(-24 * time.Hour),
		EndDate:     end,
		CreatedAt:   time.Now().UTC(),
	}))
	return id
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" && c.Value != "" {
			return c
		}
	}
	t.Fatal("response carries no auth_token cookie")
	return nil
}
