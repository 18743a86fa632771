package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"bizdesk/internal/crm/metrics"
	"bizdesk/internal/crm/models"
	"bizdesk/internal/crm/store"
	"bizdesk/internal/crm/validate"
	"bizdesk/pkg/domain"
	dErrors "bizdesk/pkg/domain-errors"
	"bizdesk/pkg/platform/sentinel"
	"bizdesk/pkg/requestcontext"
)

// ShipmentService manages shipments through their carrier lifecycle.
type ShipmentService struct {
	shipments ShipmentStore
	customers CustomerStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewShipmentService(shipments ShipmentStore, customers CustomerStore, opts ...Option) *ShipmentService {
	cfg := applyOptions(opts)
	return &ShipmentService{
		shipments: shipments,
		customers: customers,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}
}

func (s *ShipmentService) List(ctx context.Context) ([]*models.Shipment, error) {
	shipments, err := s.shipments.List(ctx, store.ShipmentFilter{})
	if err != nil {
		return nil, wrapStoreErr(err, "shipments")
	}
	return shipments, nil
}

func (s *ShipmentService) Get(ctx context.Context, id domain.ShipmentID) (*models.Shipment, error) {
	sh, err := s.shipments.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "shipment")
	}
	return sh, nil
}

func (s *ShipmentService) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tracking number is required")
	}
	sh, err := s.shipments.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, wrapStoreErr(err, "shipment")
	}
	return sh, nil
}

// ListByCustomer returns a customer's shipments. An unknown customer yields
// an empty list.
func (s *ShipmentService) ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]*models.Shipment, error) {
	shipments, err := s.shipments.List(ctx, store.ShipmentFilter{CustomerID: &customerID})
	if err != nil {
		return nil, wrapStoreErr(err, "shipments")
	}
	return shipments, nil
}

func (s *ShipmentService) ListByStatus(ctx context.Context, status models.ShipmentStatus) ([]*models.Shipment, error) {
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown shipment status %q", status)
	}
	shipments, err := s.shipments.List(ctx, store.ShipmentFilter{Status: &status})
	if err != nil {
		return nil, wrapStoreErr(err, "shipments")
	}
	return shipments, nil
}

// Pending returns shipments not yet picked up.
func (s *ShipmentService) Pending(ctx context.Context) ([]*models.Shipment, error) {
	return s.ListByStatus(ctx, models.ShipmentPending)
}

// Active returns shipments still moving: PENDING, PICKED_UP or IN_TRANSIT.
func (s *ShipmentService) Active(ctx context.Context) ([]*models.Shipment, error) {
	shipments, err := s.shipments.List(ctx, store.ShipmentFilter{StatusIn: models.ActiveShipmentStatuses})
	if err != nil {
		return nil, wrapStoreErr(err, "shipments")
	}
	return shipments, nil
}

// Overdue returns undelivered shipments past their estimated delivery.
func (s *ShipmentService) Overdue(ctx context.Context) ([]*models.Shipment, error) {
	now := requestcontext.Now(ctx)
	delivered := models.ShipmentDelivered
	shipments, err := s.shipments.List(ctx, store.ShipmentFilter{
		EstimatedBefore: &now,
		StatusNot:       &delivered,
	})
	if err != nil {
		return nil, wrapStoreErr(err, "shipments")
	}
	return shipments, nil
}

func (s *ShipmentService) Add(ctx context.Context, payload models.CreateShipment) (*models.Shipment, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}
	if _, err := s.customers.FindByID(ctx, payload.CustomerID); err != nil {
		return nil, wrapStoreErr(err, "customer")
	}

	now := requestcontext.Now(ctx)
	sh := &models.Shipment{
		ID:                domain.NewShipmentID(),
		TrackingNumber:    payload.TrackingNumber,
		CustomerID:        payload.CustomerID,
		Origin:            payload.Origin,
		Destination:       payload.Destination,
		Carrier:           payload.Carrier,
		Status:            payload.Status,
		EstimatedDelivery: payload.EstimatedDelivery,
		ActualDelivery:    payload.ActualDelivery,
		Weight:            payload.Weight,
		Dimensions:        payload.Dimensions,
		Value:             payload.Value,
		Insurance:         payload.Insurance,
		Notes:             payload.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if sh.Status == "" {
		sh.Status = models.ShipmentPending
	}

	if err := s.shipments.Create(ctx, sh); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "tracking number must be unique")
		}
		return nil, wrapStoreErr(err, "shipment")
	}

	s.logger.InfoContext(ctx, "shipment created", "shipment_id", sh.ID, "tracking_number", sh.TrackingNumber)
	s.metrics.IncrementShipmentCreated()
	return sh, nil
}

// Update merges the provided fields. Status changes go through UpdateStatus
// semantics so DELIVERED stamps the actual delivery time.
func (s *ShipmentService) Update(ctx context.Context, id domain.ShipmentID, payload models.UpdateShipment) (*models.Shipment, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}

	sh, err := s.shipments.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "shipment")
	}

	now := requestcontext.Now(ctx)
	if payload.Origin != nil {
		sh.Origin = *payload.Origin
	}
	if payload.Destination != nil {
		sh.Destination = *payload.Destination
	}
	if payload.Carrier != nil {
		sh.Carrier = *payload.Carrier
	}
	if payload.EstimatedDelivery != nil {
		sh.EstimatedDelivery = payload.EstimatedDelivery
	}
	if payload.ActualDelivery != nil {
		sh.ActualDelivery = payload.ActualDelivery
	}
	if payload.Weight != nil {
		sh.Weight = payload.Weight
	}
	if payload.Dimensions != nil {
		sh.Dimensions = payload.Dimensions
	}
	if payload.Value != nil {
		sh.Value = payload.Value
	}
	if payload.Insurance != nil {
		sh.Insurance = payload.Insurance
	}
	if payload.Notes != nil {
		sh.Notes = *payload.Notes
	}
	if payload.Status != nil {
		sh.ApplyStatus(*payload.Status, now)
	} else {
		sh.UpdatedAt = now
	}

	if err := s.shipments.Update(ctx, sh); err != nil {
		return nil, wrapStoreErr(err, "shipment")
	}
	return sh, nil
}

// UpdateStatus transitions the shipment, optionally appending a note.
// Reaching DELIVERED stamps the actual delivery time.
func (s *ShipmentService) UpdateStatus(ctx context.Context, id domain.ShipmentID, status models.ShipmentStatus, note string) (*models.Shipment, error) {
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown shipment status %q", status)
	}

	sh, err := s.shipments.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "shipment")
	}

	sh.ApplyStatus(status, requestcontext.Now(ctx))
	if note != "" {
		if sh.Notes != "" {
			sh.Notes += "\n"
		}
		sh.Notes += note
	}

	if err := s.shipments.Update(ctx, sh); err != nil {
		return nil, wrapStoreErr(err, "shipment")
	}

	if status == models.ShipmentDelivered {
		s.metrics.IncrementShipmentDelivered()
	}
	return sh, nil
}

func (s *ShipmentService) Delete(ctx context.Context, id domain.ShipmentID) error {
	if err := s.shipments.Delete(ctx, id); err != nil {
		return wrapStoreErr(err, "shipment")
	}
	return nil
}

// Search matches tracking number, origin, destination, carrier and notes.
// An empty query returns everything.
func (s *ShipmentService) Search(ctx context.Context, query string) ([]*models.Shipment, error) {
	start := time.Now()
	defer s.metrics.ObserveSearch(start)

	shipments, err := s.shipments.List(ctx, store.ShipmentFilter{Query: strings.TrimSpace(query)})
	if err != nil {
		return nil, wrapStoreErr(err, "shipments")
	}
	return shipments, nil
}
