package models

import (
	"time"

	"bizdesk/pkg/domain"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRefunded   OrderStatus = "REFUNDED"
)

// IsValid checks membership in the closed status set.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
		OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// Order belongs to one customer and owns its items. TotalAmount is what
// revenue aggregation sums; CANCELLED orders are excluded from revenue.
type Order struct {
	ID          domain.OrderID     `json:"id"`
	OrderNumber string             `json:"order_number"`
	CustomerID  domain.CustomerID  `json:"customer_id"`
	Status      OrderStatus        `json:"status"`
	OrderDate   time.Time          `json:"order_date"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	TotalAmount float64            `json:"total_amount"`
	Notes       string             `json:"notes,omitempty"`
	ShipmentID  *domain.ShipmentID `json:"shipment_id,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// OrderItem is a line on an order. TotalPrice is caller-supplied; a zero
// value on create is defaulted to Quantity x UnitPrice, otherwise it is
// trusted as-is.
type OrderItem struct {
	ID          domain.OrderItemID `json:"id"`
	OrderID     domain.OrderID     `json:"order_id"`
	ProductName string             `json:"product_name"`
	Description string             `json:"description,omitempty"`
	Quantity    int                `json:"quantity"`
	UnitPrice   float64            `json:"unit_price"`
	TotalPrice  float64            `json:"total_price"`
	CreatedAt   time.Time          `json:"created_at"`
}

// OrderWithItems is an order plus its owned lines.
type OrderWithItems struct {
	Order
	Items []*OrderItem `json:"items"`
}
