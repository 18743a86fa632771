package models

import (
	"time"

	"bizdesk/pkg/domain"
	"bizdesk/pkg/fieldcodec"
)

// Create payloads carry caller input for the manager "add" operations; the
// validator in internal/crm/validate checks them before anything reaches a
// store. Update payloads use pointer fields so partial updates only validate
// and merge what is present.

type CreateCustomer struct {
	Name           string   `json:"name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Phone          string   `json:"phone" validate:"-"`
	Company        string   `json:"company" validate:"-"`
	Address        string   `json:"address" validate:"-"`
	City           string   `json:"city" validate:"-"`
	State          string   `json:"state" validate:"-"`
	ZipCode        string   `json:"zip_code" validate:"-"`
	Country        string   `json:"country" validate:"required"`
	Website        string   `json:"website" validate:"omitempty,url"`
	VATNumber      string   `json:"vat_number" validate:"-"`
	Industry       string   `json:"industry" validate:"-"`
	Tags           []string `json:"tags" validate:"-"`
	Notes          string   `json:"notes" validate:"-"`
	NeedsAttention bool     `json:"needs_attention" validate:"-"`
}

type UpdateCustomer struct {
	Name           *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	Email          *string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string   `json:"phone,omitempty" validate:"-"`
	Company        *string   `json:"company,omitempty" validate:"-"`
	Address        *string   `json:"address,omitempty" validate:"-"`
	City           *string   `json:"city,omitempty" validate:"-"`
	State          *string   `json:"state,omitempty" validate:"-"`
	ZipCode        *string   `json:"zip_code,omitempty" validate:"-"`
	Country        *string   `json:"country,omitempty" validate:"omitempty,min=1"`
	Website        *string   `json:"website,omitempty" validate:"omitempty,url"`
	VATNumber      *string   `json:"vat_number,omitempty" validate:"-"`
	Industry       *string   `json:"industry,omitempty" validate:"-"`
	Tags           *[]string `json:"tags,omitempty" validate:"-"`
	Notes          *string   `json:"notes,omitempty" validate:"-"`
	NeedsAttention *bool     `json:"needs_attention,omitempty" validate:"-"`
}

type CreateContact struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"-"`
	Role      string `json:"role" validate:"-"`
	IsPrimary bool   `json:"is_primary" validate:"-"`
}

type CreateTask struct {
	Title          string             `json:"title" validate:"required"`
	Description    string             `json:"description" validate:"-"`
	Priority       Priority           `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Status         TaskStatus         `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED ON_HOLD"`
	DueDate        *time.Time         `json:"due_date,omitempty" validate:"-"`
	AssignedTo     string             `json:"assigned_to" validate:"-"`
	CustomerID     *domain.CustomerID `json:"customer_id,omitempty" validate:"-"`
	ShipmentID     *domain.ShipmentID `json:"shipment_id,omitempty" validate:"-"`
	OrderID        *domain.OrderID    `json:"order_id,omitempty" validate:"-"`
	Tags           []string           `json:"tags" validate:"-"`
	EstimatedHours *float64           `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	ActualHours    *float64           `json:"actual_hours,omitempty" validate:"omitempty,gte=0"`
}

type UpdateTask struct {
	Title          *string     `json:"title,omitempty" validate:"omitempty,min=1"`
	Description    *string     `json:"description,omitempty" validate:"-"`
	Priority       *Priority   `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Status         *TaskStatus `json:"status,omitempty" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED ON_HOLD"`
	DueDate        *time.Time  `json:"due_date,omitempty" validate:"-"`
	AssignedTo     *string     `json:"assigned_to,omitempty" validate:"-"`
	Tags           *[]string   `json:"tags,omitempty" validate:"-"`
	EstimatedHours *float64    `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	ActualHours    *float64    `json:"actual_hours,omitempty" validate:"omitempty,gte=0"`
}

type CreateShipment struct {
	TrackingNumber    string                 `json:"tracking_number" validate:"required"`
	CustomerID        domain.CustomerID      `json:"customer_id" validate:"required"`
	Origin            string                 `json:"origin" validate:"required"`
	Destination       string                 `json:"destination" validate:"required"`
	Carrier           string                 `json:"carrier" validate:"required"`
	Status            ShipmentStatus         `json:"status" validate:"omitempty,oneof=PENDING PICKED_UP IN_TRANSIT OUT_FOR_DELIVERY DELIVERED EXCEPTION RETURNED"`
	EstimatedDelivery *time.Time             `json:"estimated_delivery,omitempty" validate:"-"`
	ActualDelivery    *time.Time             `json:"actual_delivery,omitempty" validate:"-"`
	Weight            *float64               `json:"weight,omitempty" validate:"omitempty,gte=0"`
	Dimensions        *fieldcodec.Dimensions `json:"dimensions,omitempty" validate:"-"`
	Value             *float64               `json:"value,omitempty" validate:"omitempty,gte=0"`
	Insurance         *float64               `json:"insurance,omitempty" validate:"omitempty,gte=0"`
	Notes             string                 `json:"notes" validate:"-"`
}

type UpdateShipment struct {
	Origin            *string                `json:"origin,omitempty" validate:"omitempty,min=1"`
	Destination       *string                `json:"destination,omitempty" validate:"omitempty,min=1"`
	Carrier           *string                `json:"carrier,omitempty" validate:"omitempty,min=1"`
	Status            *ShipmentStatus        `json:"status,omitempty" validate:"omitempty,oneof=PENDING PICKED_UP IN_TRANSIT OUT_FOR_DELIVERY DELIVERED EXCEPTION RETURNED"`
	EstimatedDelivery *time.Time             `json:"estimated_delivery,omitempty" validate:"-"`
	ActualDelivery    *time.Time             `json:"actual_delivery,omitempty" validate:"-"`
	Weight            *float64               `json:"weight,omitempty" validate:"omitempty,gte=0"`
	Dimensions        *fieldcodec.Dimensions `json:"dimensions,omitempty" validate:"-"`
	Value             *float64               `json:"value,omitempty" validate:"omitempty,gte=0"`
	Insurance         *float64               `json:"insurance,omitempty" validate:"omitempty,gte=0"`
	Notes             *string                `json:"notes,omitempty" validate:"-"`
}

type CreateOrderItem struct {
	ProductName string  `json:"product_name" validate:"required"`
	Description string  `json:"description" validate:"-"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	TotalPrice  float64 `json:"total_price" validate:"gte=0"`
}

type CreateOrder struct {
	OrderNumber string            `json:"order_number" validate:"required"`
	CustomerID  domain.CustomerID `json:"customer_id" validate:"required"`
	Status      OrderStatus       `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED PROCESSING SHIPPED DELIVERED CANCELLED REFUNDED"`
	OrderDate   *time.Time        `json:"order_date,omitempty" validate:"-"`
	DueDate     *time.Time        `json:"due_date,omitempty" validate:"-"`
	TotalAmount float64           `json:"total_amount" validate:"gte=0"`
	Notes       string            `json:"notes" validate:"-"`
	Items       []CreateOrderItem `json:"items" validate:"omitempty,dive"`
}

type UpdateOrder struct {
	Status      *OrderStatus `json:"status,omitempty" validate:"omitempty,oneof=PENDING CONFIRMED PROCESSING SHIPPED DELIVERED CANCELLED REFUNDED"`
	OrderDate   *time.Time   `json:"order_date,omitempty" validate:"-"`
	DueDate     *time.Time   `json:"due_date,omitempty" validate:"-"`
	TotalAmount *float64     `json:"total_amount,omitempty" validate:"omitempty,gte=0"`
	Notes       *string      `json:"notes,omitempty" validate:"-"`
}
