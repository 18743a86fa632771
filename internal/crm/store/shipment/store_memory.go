package shipment

import (
	"context"
	"slices"
	"strings"
	"sync"

	"bizdesk/internal/crm/models"
	"bizdesk/internal/crm/store"
	"bizdesk/pkg/domain"
	"bizdesk/pkg/platform/sentinel"
)

// InMemory keeps shipments in a map.
type InMemory struct {
	mu        sync.RWMutex
	shipments map[domain.ShipmentID]*models.Shipment
}

func NewInMemory() *InMemory {
	return &InMemory{shipments: make(map[domain.ShipmentID]*models.Shipment)}
}

func (s *InMemory) List(_ context.Context, f store.ShipmentFilter) ([]*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Shipment{}
	for _, sh := range s.shipments {
		if matches(sh, f) {
			out = append(out, clone(sh))
		}
	}
	slices.SortFunc(out, func(a, b *models.Shipment) int {
		if cmp := a.CreatedAt.Compare(b.CreatedAt); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemory) Count(ctx context.Context, f store.ShipmentFilter) (int, error) {
	shipments, err := s.List(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(shipments), nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ShipmentID) (*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sh, ok := s.shipments[id]; ok {
		return clone(sh), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByTrackingNumber(_ context.Context, trackingNumber string) (*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sh := range s.shipments {
		if sh.TrackingNumber == trackingNumber {
			return clone(sh), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Create(_ context.Context, sh *models.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.shipments {
		if existing.TrackingNumber == sh.TrackingNumber {
			return sentinel.ErrConflict
		}
	}
	s.shipments[sh.ID] = clone(sh)
	return nil
}

func (s *InMemory) Update(_ context.Context, sh *models.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments[sh.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.shipments {
		if existing.ID != sh.ID && existing.TrackingNumber == sh.TrackingNumber {
			return sentinel.ErrConflict
		}
	}
	s.shipments[sh.ID] = clone(sh)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id domain.ShipmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.shipments, id)
	return nil
}

func matches(sh *models.Shipment, f store.ShipmentFilter) bool {
	if f.CustomerID != nil && sh.CustomerID != *f.CustomerID {
		return false
	}
	if f.Status != nil && sh.Status != *f.Status {
		return false
	}
	if len(f.StatusIn) > 0 && !slices.Contains(f.StatusIn, sh.Status) {
		return false
	}
	if f.StatusNot != nil && sh.Status == *f.StatusNot {
		return false
	}
	if f.EstimatedBefore != nil &&
		(sh.EstimatedDelivery == nil || !sh.EstimatedDelivery.Before(*f.EstimatedBefore)) {
		return false
	}
	if f.Query == "" {
		return true
	}
	for _, field := range []string{sh.TrackingNumber, sh.Origin, sh.Destination, sh.Carrier, sh.Notes} {
		if strings.Contains(strings.ToLower(field), strings.ToLower(f.Query)) {
			return true
		}
	}
	return false
}

func clone(sh *models.Shipment) *models.Shipment {
	out := *sh
	if sh.EstimatedDelivery != nil {
		est := *sh.EstimatedDelivery
		out.EstimatedDelivery = &est
	}
	if sh.ActualDelivery != nil {
		act := *sh.ActualDelivery
		out.ActualDelivery = &act
	}
	if sh.Weight != nil {
		w := *sh.Weight
		out.Weight = &w
	}
	if sh.Dimensions != nil {
		d := *sh.Dimensions
		out.Dimensions = &d
	}
	if sh.Value != nil {
		v := *sh.Value
		out.Value = &v
	}
	if sh.Insurance != nil {
		i := *sh.Insurance
		out.Insurance = &i
	}
	return &out
}
