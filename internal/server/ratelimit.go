package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"auctionhouse/services/helpers"
	"auctionhouse/utils"
)

// cleanupInterval controls how often idle per-user limiters are dropped.
const cleanupInterval = 5 * time.Minute

// userLimiter pairs a token bucket with its last access time.
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// BidRateLimiter throttles bid placement per user. Entries for users who
// stopped bidding are cleaned up in the background.
type BidRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*userLimiter
	rate     rate.Limit
	burst    int
	stopCh   chan struct{}
}

// NewBidRateLimiter creates a limiter allowing perMinute bids per user with
// the given burst, and starts the cleanup loop.
func NewBidRateLimiter(perMinute, burst int) *BidRateLimiter {
	rl := &BidRateLimiter{
		limiters: make(map[string]*userLimiter),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *BidRateLimiter) Stop() {
	close(rl.stopCh)
}

// Middleware enforces the per-user limit. It must run after the session
// middleware and a RequireUser gate.
func (rl *BidRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			c.Next()
			return
		}

		if !rl.allow(user.UserID) {
			utils.Warn("bid rate limit exceeded", map[string]any{"user_id": user.UserID})
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  http.StatusTooManyRequests,
				"message": "too many bids, slow down",
			})
			return
		}

		c.Next()
	}
}

func (rl *BidRateLimiter) allow(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	ul, ok := rl.limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[userID] = ul
	}
	ul.lastAccess = time.Now()

	return ul.limiter.Allow()
}

func (rl *BidRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops limiters idle for more than twice the cleanup interval.
func (rl *BidRateLimiter) cleanup() {
	ttl := cleanupInterval * 2
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for userID, ul := range rl.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(rl.limiters, userID)
		}
	}
}
