package models

import (
	"time"

	"bizdesk/pkg/domain"
	"bizdesk/pkg/fieldcodec"
)

// ShipmentStatus is the carrier-side lifecycle state of a shipment.
type ShipmentStatus string

const (
	ShipmentPending        ShipmentStatus = "PENDING"
	ShipmentPickedUp       ShipmentStatus = "PICKED_UP"
	ShipmentInTransit      ShipmentStatus = "IN_TRANSIT"
	ShipmentOutForDelivery ShipmentStatus = "OUT_FOR_DELIVERY"
	ShipmentDelivered      ShipmentStatus = "DELIVERED"
	ShipmentException      ShipmentStatus = "EXCEPTION"
	ShipmentReturned       ShipmentStatus = "RETURNED"
)

// IsValid checks membership in the closed status set.
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentPending, ShipmentPickedUp, ShipmentInTransit, ShipmentOutForDelivery,
		ShipmentDelivered, ShipmentException, ShipmentReturned:
		return true
	}
	return false
}

// ActiveShipmentStatuses are the states in which a shipment is still moving.
var ActiveShipmentStatuses = []ShipmentStatus{ShipmentPending, ShipmentPickedUp, ShipmentInTransit}

// Shipment tracks a package for a customer. Dimensions are stored as an
// encoded scalar and round-trip through pkg/fieldcodec.
type Shipment struct {
	ID                domain.ShipmentID     `json:"id"`
	TrackingNumber    string                `json:"tracking_number"`
	CustomerID        domain.CustomerID     `json:"customer_id"`
	Origin            string                `json:"origin"`
	Destination       string                `json:"destination"`
	Carrier           string                `json:"carrier"`
	Status            ShipmentStatus        `json:"status"`
	EstimatedDelivery *time.Time            `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time            `json:"actual_delivery,omitempty"`
	Weight            *float64              `json:"weight,omitempty"`
	Dimensions        *fieldcodec.Dimensions `json:"dimensions,omitempty"`
	Value             *float64              `json:"value,omitempty"`
	Insurance         *float64              `json:"insurance,omitempty"`
	Notes             string                `json:"notes,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// ApplyStatus transitions the shipment. Reaching DELIVERED stamps the actual
// delivery time.
func (s *Shipment) ApplyStatus(status ShipmentStatus, now time.Time) {
	s.Status = status
	if status == ShipmentDelivered {
		delivered := now
		s.ActualDelivery = &delivered
	}
	s.UpdatedAt = now
}
