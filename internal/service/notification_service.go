package service

import (
	"context"

	"chickenshop-admin/internal/models"
	"chickenshop-admin/internal/util"
)

// NotificationStore reads and writes user inboxes
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotificationsByUserID(ctx context.Context, userID string) ([]models.Notification, error)
}

// NotificationService serves the caller's notification inbox
type NotificationService struct {
	store    NotificationStore
	sessions SessionResolver
}

// NewNotificationService creates a new notification service
func NewNotificationService(store NotificationStore, sessions SessionResolver) *NotificationService {
	return &NotificationService{store: store, sessions: sessions}
}

// Deliver writes a notification into the user's inbox
func (s *NotificationService) Deliver(ctx context.Context, userID, message string) (*models.Notification, error) {
	ctx, span := util.StartSpan(ctx, "NotificationService.Deliver")
	defer span.End()

	n := &models.Notification{UserID: userID, Message: message}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, &PersistenceError{Op: "create notification", Err: err}
	}

	util.NotificationsStoredTotal.Inc()
	return n, nil
}

// ListMine returns the notifications of the session user, newest first
func (s *NotificationService) ListMine(ctx context.Context) ([]models.Notification, error) {
	ctx, span := util.StartSpan(ctx, "NotificationService.ListMine")
	defer span.End()

	sess, err := s.sessions.CurrentSession(ctx)
	if err != nil || sess == nil {
		return nil, &AuthenticationError{Reason: "user session not found"}
	}

	notifications, err := s.store.GetNotificationsByUserID(ctx, sess.UserID)
	if err != nil {
		return nil, &DataFetchError{View: "notifications", Err: err}
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}
