package models

import "time"

// Event types
const (
	EventTypeOrderStatusChanged    = "ORDER_STATUS_CHANGED"
	EventTypeNotificationRequested = "NOTIFICATION_REQUESTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderStatusChangedEvent published after an order status is persisted
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID   int64       `json:"order_id"`
	Status    OrderStatus `json:"status"`
	ChangedBy string      `json:"changed_by,omitempty"`
}

// NotificationRequestedEvent carries a message for a user's inbox
type NotificationRequestedEvent struct {
	BaseEvent
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}
