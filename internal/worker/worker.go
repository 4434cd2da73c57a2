package worker

import (
	"context"
	"fmt"

	"chickenshop-admin/internal/broker"
	"chickenshop-admin/internal/models"
	"chickenshop-admin/internal/util"

	"go.uber.org/zap"
)

// MessageSource feeds messages to a handler until its context ends
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// EventLog records which events were already applied
type EventLog interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// DeliverFunc stores a notification for a user
type DeliverFunc func(ctx context.Context, userID, message string) (*models.Notification, error)

// NotificationWorker moves requested notifications from the notifications topic into user inboxes
type NotificationWorker struct {
	consumer     MessageSource
	eventHandler *broker.EventHandler
	events       EventLog
	deliver      DeliverFunc
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer MessageSource, events EventLog, deliver DeliverFunc) *NotificationWorker {
	w := &NotificationWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		events:       events,
		deliver:      deliver,
		logger:       util.GetLogger(),
	}
	w.eventHandler.OnNotificationRequested(w.HandleNotificationRequested)
	return w
}

// Start blocks consuming the notifications topic
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop closes the consumer
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

// HandleNotificationRequested stores the notification once per event id.
// Redelivered events are acknowledged without a second inbox entry.
func (w *NotificationWorker) HandleNotificationRequested(ctx context.Context, event *models.NotificationRequestedEvent) error {
	ctx, span := util.StartSpan(ctx, "NotificationWorker.HandleNotificationRequested")
	defer span.End()

	processed, err := w.events.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	n, err := w.deliver(ctx, event.UserID, event.Message)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	if err := w.events.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	w.logger.Info("Notification delivered",
		zap.Int64("notification_id", n.ID),
		zap.String("user_id", event.UserID))
	return nil
}
