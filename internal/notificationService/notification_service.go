package notification

import (
	"context"
	"fmt"

	"auctionhouse/internal/auctionerrors"
	"auctionhouse/internal/models"
	"auctionhouse/internal/repository"
)

// listLimit caps the notification listing per user.
const listLimit = 50

// NotificationService reads and flags per-user notifications. Rows are
// append-only; only the read flag is ever mutated, and only by the owner.
type NotificationService struct {
	store repository.NotificationStore
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(store repository.NotificationStore) *NotificationService {
	return &NotificationService{
		store: store,
	}
}

// List returns the user's notifications, newest first, capped at 50.
func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrUnauthorized)
	}

	list, err := s.store.ListNotifications(ctx, userID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list notifications for user %s: %w", userID, err)
	}
	return list, nil
}

// MarkRead flips the read flag on one of the user's own notifications.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if userID == "" {
		return fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrUnauthorized)
	}
	if notificationID == "" {
		return fmt.Errorf("service: %w - empty notification ID", auctionerrors.ErrValidation)
	}

	if err := s.store.MarkNotificationRead(ctx, userID, notificationID); err != nil {
		return fmt.Errorf("service: failed to mark notification %s read for user %s: %w", notificationID, userID, err)
	}
	return nil
}
