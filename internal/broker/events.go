package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chickenshop-admin/internal/models"
	"chickenshop-admin/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrMalformedEvent marks a message that can never be handled. The consumer skips it instead of retrying.
var ErrMalformedEvent = errors.New("malformed event")

// Publisher is implemented by Producer
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher handles publishing order domain events
type EventPublisher struct {
	producer Publisher
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer Publisher) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderStatusChanged publishes OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, orderID int64, status models.OrderStatus, changedBy string) error {
	event := &models.OrderStatusChangedEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:   orderID,
		Status:    status,
		ChangedBy: changedBy,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("order-%d", orderID), event)
}

// Notifier delivers user notifications through the notifications topic
type Notifier struct {
	producer Publisher
}

// NewNotifier creates a notifier on the notifications topic producer
func NewNotifier(producer Publisher) *Notifier {
	return &Notifier{producer: producer}
}

// SendNotification enqueues message for userID and waits for the broker acknowledgement
func (n *Notifier) SendNotification(ctx context.Context, userID, message string) error {
	ctx, span := util.StartSpan(ctx, "Notifier.SendNotification")
	defer span.End()

	event := &models.NotificationRequestedEvent{
		BaseEvent: newBaseEvent(models.EventTypeNotificationRequested),
		UserID:    userID,
		Message:   message,
	}
	if err := n.producer.PublishEvent(ctx, fmt.Sprintf("user-%s", userID), event); err != nil {
		util.NotificationsFailedTotal.Inc()
		return err
	}

	util.NotificationsSentTotal.Inc()
	return nil
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// EventHandler handles incoming events
type EventHandler struct {
	onNotificationRequested func(context.Context, *models.NotificationRequestedEvent) error
	logger                  *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnNotificationRequested registers a handler for NotificationRequested events
func (eh *EventHandler) OnNotificationRequested(handler func(context.Context, *models.NotificationRequestedEvent) error) {
	eh.onNotificationRequested = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("%w: failed to unmarshal base event: %v", ErrMalformedEvent, err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeNotificationRequested:
		if eh.onNotificationRequested != nil {
			var event models.NotificationRequestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("%w: failed to unmarshal NotificationRequested event: %v", ErrMalformedEvent, err)
			}
			return eh.onNotificationRequested(ctx, &event)
		}

	default:
		eh.logger.Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
