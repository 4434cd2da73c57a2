package service

import (
	"context"
	"fmt"

	"chickenshop-admin/internal/models"
	"chickenshop-admin/internal/session"
	"chickenshop-admin/internal/util"

	"go.uber.org/zap"
)

// OrdersViewPath names the admin order list view
const OrdersViewPath = "/admin/orders"

// notificationSuffix is appended to every status notification
const notificationSuffix = " 🚀"

// OrderStatusStore persists order status
type OrderStatusStore interface {
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
}

// SessionResolver returns the caller's session, or nil when there is none
type SessionResolver interface {
	CurrentSession(ctx context.Context) (*session.Session, error)
}

// Notifier delivers a message to a user
type Notifier interface {
	SendNotification(ctx context.Context, userID, message string) error
}

// ViewInvalidator marks a cached view stale
type ViewInvalidator interface {
	MarkStale(ctx context.Context, path string) error
}

// StatusEventPublisher publishes status change events
type StatusEventPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, orderID int64, status models.OrderStatus, changedBy string) error
}

// OrderStatusController changes order status and notifies the caller
type OrderStatusController struct {
	store     OrderStatusStore
	sessions  SessionResolver
	notifier  Notifier
	views     ViewInvalidator
	publisher StatusEventPublisher
	logger    *zap.Logger
}

// NewOrderStatusController creates a new order status controller
func NewOrderStatusController(
	store OrderStatusStore,
	sessions SessionResolver,
	notifier Notifier,
	views ViewInvalidator,
	publisher StatusEventPublisher,
) *OrderStatusController {
	return &OrderStatusController{
		store:     store,
		sessions:  sessions,
		notifier:  notifier,
		views:     views,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// UpdateOrderStatus persists status on the order, then notifies the session user.
//
// The write is not rolled back when the session is missing or the notification fails:
// the caller gets the error while the new status stays visible. Any persisted change
// marks the order list view stale.
func (c *OrderStatusController) UpdateOrderStatus(ctx context.Context, orderID int64, rawStatus string) (err error) {
	ctx, span := util.StartSpan(ctx, "OrderStatusController.UpdateOrderStatus")
	defer func() { util.EndSpan(span, err) }()

	status, err := models.ParseOrderStatus(rawStatus)
	if err != nil {
		util.OrderStatusUpdateFailuresTotal.WithLabelValues("invalid_status").Inc()
		return &ValidationError{Field: "status", Err: err}
	}
	label, _ := status.Label()

	if err := c.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		util.OrderStatusUpdateFailuresTotal.WithLabelValues("persistence").Inc()
		return &PersistenceError{Op: "update order status", Err: err}
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(string(status)).Inc()
	c.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("status", string(status)))

	defer c.markOrdersStale(ctx)

	sess, err := c.sessions.CurrentSession(ctx)
	if err != nil {
		c.logger.Warn("Failed to resolve session", zap.Error(err))
		sess = nil
	}

	changedBy := ""
	if sess != nil {
		changedBy = sess.UserID
	}
	if c.publisher != nil {
		if err := c.publisher.PublishOrderStatusChanged(ctx, orderID, status, changedBy); err != nil {
			c.logger.Error("Failed to publish OrderStatusChanged event",
				zap.Int64("order_id", orderID),
				zap.Error(err))
		}
	}

	if sess == nil {
		util.OrderStatusUpdateFailuresTotal.WithLabelValues("no_session").Inc()
		return &AuthenticationError{Reason: "user session not found"}
	}

	if err := c.notifier.SendNotification(ctx, sess.UserID, label+notificationSuffix); err != nil {
		util.OrderStatusUpdateFailuresTotal.WithLabelValues("notification").Inc()
		return fmt.Errorf("failed to send notification: %w", err)
	}

	return nil
}

func (c *OrderStatusController) markOrdersStale(ctx context.Context) {
	if err := c.views.MarkStale(ctx, OrdersViewPath); err != nil {
		c.logger.Error("Failed to mark view stale",
			zap.String("path", OrdersViewPath),
			zap.Error(err))
		return
	}
	util.ViewInvalidationsTotal.WithLabelValues(OrdersViewPath).Inc()
}
