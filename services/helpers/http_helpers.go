package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionhouse/internal/auctionerrors"
	auth "auctionhouse/internal/authService"
	"auctionhouse/utils"
)

// AuthCookieName is the cookie carrying the signed session token.
const AuthCookieName = "auth_token"

// currentUserKey is the gin context key for the verified token payload.
const currentUserKey = "current_user"

// SetCurrentUser stores the verified token payload on the request context.
func SetCurrentUser(c *gin.Context, payload auth.TokenPayload) {
	c.Set(currentUserKey, payload)
}

// CurrentUser returns the verified token payload for the request, if any.
func CurrentUser(c *gin.Context) (auth.TokenPayload, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return auth.TokenPayload{}, false
	}
	payload, ok := v.(auth.TokenPayload)
	return payload, ok
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrImageNotFound):
		return http.StatusNotFound, "image not found"
	case errors.Is(err, auctionerrors.ErrNotificationNotFound):
		return http.StatusNotFound, "notification not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusBadRequest, "bid must be higher than current highest bid"
	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		return http.StatusBadRequest, "auction has ended"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrInvalidAuction):
		return http.StatusBadRequest, "invalid auction details"
	case errors.Is(err, auctionerrors.ErrInvalidUpload):
		return http.StatusBadRequest, "invalid upload"
	case errors.Is(err, auctionerrors.ErrEmailTaken):
		return http.StatusBadRequest, "email already registered"
	case errors.Is(err, auctionerrors.ErrValidation):
		return http.StatusBadRequest, "missing required fields"
	case errors.Is(err, auctionerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return http.StatusForbidden, "admin role required"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HandleServiceError maps the error, sends the JSON error response and logs
// it in one step.
func HandleServiceError(c *gin.Context, handlerName string, err error, ctx map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if ctx == nil {
		ctx = map[string]any{}
	}
	ctx["handler"] = handlerName
	ctx["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": "+message, ctx)
	} else {
		utils.Warn(handlerName+": "+message, ctx)
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
