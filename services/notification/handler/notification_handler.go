package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionhouse/internal/auctionerrors"
	model "auctionhouse/internal/models"
	"auctionhouse/services/helpers"
	"auctionhouse/utils"
)

type NotificationServiceInterface interface {
	List(ctx context.Context, userID string) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}

type NotificationHandler struct {
	service NotificationServiceInterface
}

func NewNotificationHandler(service NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type MarkReadRequest struct {
	NotificationID string `json:"notification_id" binding:"required"`
}

// ListNotificationsHandler handles GET /notifications
func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	user, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.HandleServiceError(c, "ListNotificationsHandler", auctionerrors.ErrUnauthorized, nil)
		return
	}

	list, err := h.service.List(c.Request.Context(), user.UserID)
	if err != nil {
		helpers.HandleServiceError(c, "ListNotificationsHandler", err, map[string]any{"user_id": user.UserID})
		return
	}

	if list == nil {
		list = []model.Notification{}
	}
	utils.JSONResponse(c, http.StatusOK, list, "notifications retrieved successfully")
}

// MarkReadHandler handles POST /notifications/read
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	user, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.HandleServiceError(c, "MarkReadHandler", auctionerrors.ErrUnauthorized, nil)
		return
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "MarkReadHandler", err)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), user.UserID, req.NotificationID); err != nil {
		helpers.HandleServiceError(c, "MarkReadHandler", err, map[string]any{
			"user_id":         user.UserID,
			"notification_id": req.NotificationID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"notification_id": req.NotificationID}, "notification marked read")
}
