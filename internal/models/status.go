package models

import (
	"errors"
	"fmt"
)

// ErrUnknownStatus is returned for a status outside the persisted set.
var ErrUnknownStatus = errors.New("unknown order status")

// OrderStatus is the persisted status of an order.
type OrderStatus string

// Order statuses
const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusInTransit OrderStatus = "In-Transit"
	OrderStatusDelivered OrderStatus = "Delivered"
)

// statusLabels is the only place a status gets its display text.
var statusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Pending",
	OrderStatusPaid:      "Paid",
	OrderStatusInTransit: "In Transit",
	OrderStatusDelivered: "Delivered",
}

// OrderStatuses lists the statuses in workflow order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusPaid,
		OrderStatusInTransit,
		OrderStatusDelivered,
	}
}

// ParseOrderStatus accepts exactly the persisted status values.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

// Label returns the display text for the status.
func (s OrderStatus) Label() (string, bool) {
	label, ok := statusLabels[s]
	return label, ok
}

// Valid reports whether s is a persisted status value.
func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}
