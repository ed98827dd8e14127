package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"eventId"`
	EventType string    `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when checkout persists a new order
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     string      `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	UserID      string      `json:"userId"`
	Total       float64     `json:"total"`
	Items       []OrderItem `json:"items"`
}

// OrderStatusChangedEvent published when an admin updates an order's status
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	UserID      string `json:"userId"`
	FromStatus  string `json:"fromStatus"`
	ToStatus    string `json:"toStatus"`
	Note        string `json:"note,omitempty"`
}
