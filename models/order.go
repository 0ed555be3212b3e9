package models

import (
	"strings"
	"time"
)

// OrderStatus represents the current progress of an order as reported by the backend.
type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "pending"
	OrderStatusPreparing    OrderStatus = "preparing"
	OrderStatusOnTheWay     OrderStatus = "on the way"
	OrderStatusReady        OrderStatus = "ready"
	OrderStatusDelivered    OrderStatus = "delivered"
	OrderStatusCollected    OrderStatus = "collected"
	OrderStatusAskForCancel OrderStatus = "ask-for-cancel"
)

// IsValid reports whether s is one of the statuses the dashboard knows about.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusOnTheWay, OrderStatusReady,
		OrderStatusDelivered, OrderStatusCollected, OrderStatusAskForCancel:
		return true
	default:
		return false
	}
}

// ParseOrderStatus normalizes a user-supplied status (case and surrounding spaces).
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.IsValid()
}

// OrderItem is nested inside an Order and has no lifecycle of its own.
type OrderItem struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Quantity    int      `json:"quantity"`
	Price       float64  `json:"price"`
	Ratings     float64  `json:"ratings,omitempty"`
	Discount    *float64 `json:"discount,omitempty"`
	Description string   `json:"description,omitempty"`
	ImageLink   string   `json:"imageLink,omitempty"`
}

// Subtotal is price times quantity.
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Order is a customer order as exposed by the backend.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId,omitempty"`
	CustomerName    string      `json:"customerName"`
	RestaurantID    string      `json:"restaurantId,omitempty"`
	RestaurantName  string      `json:"restaurantName,omitempty"`
	Status          OrderStatus `json:"status"`
	Total           float64     `json:"total"`
	Items           []OrderItem `json:"items"`
	DeliveryAddress string      `json:"deliveryAddress,omitempty"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
	OrderTime       string      `json:"orderTime,omitempty"`
	DeliveryTime    *string     `json:"deliveryTime,omitempty"`
}

// OrderTotal sums price*quantity over items.
func OrderTotal(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}

// PlacedAt parses OrderTime, which the backend sends as RFC 3339 or as a plain date.
func (o Order) PlacedAt() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, o.OrderTime); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
