package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"auctionhouse/internal/auctionerrors"
	auth "auctionhouse/internal/authService"
	"auctionhouse/internal/metrics"
	model "auctionhouse/internal/models"
	"auctionhouse/services/helpers"
	"auctionhouse/utils"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// MetricsMiddleware records status and latency for every request.
func MetricsMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		collector.RecordHTTPRequest(c.Writer.Status(), time.Since(start))
	}
}

// TokenVerifier validates a session token from the auth cookie.
type TokenVerifier interface {
	VerifyToken(token string) (auth.TokenPayload, error)
}

// SessionMiddleware resolves the auth cookie into the current user, when
// present and valid. It never aborts; the Require* middlewares do that.
func SessionMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.AuthCookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		payload, err := verifier.VerifyToken(token)
		if err != nil {
			utils.Warn("invalid session token", map[string]any{"error": err.Error()})
			c.Next()
			return
		}

		helpers.SetCurrentUser(c, payload)
		c.Next()
	}
}

// RequireUser aborts with 401 unless the request carries a valid session.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := helpers.CurrentUser(c); !ok {
			status, message := helpers.MapErrorToHTTP(auctionerrors.ErrUnauthorized)
			utils.JSONError(c, status, auctionerrors.ErrUnauthorized, message)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts with 401 without a session and 403 without the admin
// role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			status, message := helpers.MapErrorToHTTP(auctionerrors.ErrUnauthorized)
			utils.JSONError(c, status, auctionerrors.ErrUnauthorized, message)
			c.Abort()
			return
		}
		if user.Role != model.RoleAdmin {
			status, message := helpers.MapErrorToHTTP(auctionerrors.ErrForbidden)
			utils.JSONError(c, status, auctionerrors.ErrForbidden, message)
			c.Abort()
			return
		}
		c.Next()
	}
}
