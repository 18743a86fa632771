package task

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

// InMemory keeps tasks in a map.
type InMemory struct {
	mu    sync.RWMutex
	tasks map[domain.TaskID]*models.Task
}

func NewInMemory() *InMemory {
	return &InMemory{tasks: make(map[domain.TaskID]*models.Task)}
}

func (s *InMemory) List(_ context.Context, f store.TaskFilter) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Task{}
	for _, t := range s.tasks {
		if matches(t, f) {
			out = append(out, clone(t))
		}
	}
	slices.SortFunc(out, func(a, b *models.Task) int {
		if cmp := a.CreatedAt.Compare(b.CreatedAt); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemory) Count(ctx context.Context, f store.TaskFilter) (int, error) {
	tasks, err := s.List(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(tasks), nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.TaskID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tasks[id]; ok {
		return clone(t), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Create(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = clone(t)
	return nil
}

func (s *InMemory) Update(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.tasks[t.ID] = clone(t)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id domain.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// ClearCustomer drops the customer reference from every task pointing at the
// given customer. Used when a customer is removed.
func (s *InMemory) ClearCustomer(_ context.Context, customerID domain.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.CustomerID != nil && *t.CustomerID == customerID {
			t.CustomerID = nil
		}
	}
	return nil
}

func matches(t *models.Task, f store.TaskFilter) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.StatusNot != nil && t.Status == *f.StatusNot {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.DueBefore != nil && (t.DueDate == nil || !t.DueDate.Before(*f.DueBefore)) {
		return false
	}
	if f.DueFrom != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueFrom)) {
		return false
	}
	if f.CustomerID != nil && (t.CustomerID == nil || *t.CustomerID != *f.CustomerID) {
		return false
	}
	if f.ShipmentID != nil && (t.ShipmentID == nil || *t.ShipmentID != *f.ShipmentID) {
		return false
	}
	if f.OrderID != nil && (t.OrderID == nil || *t.OrderID != *f.OrderID) {
		return false
	}
	if f.HasCustomer && t.CustomerID == nil {
		return false
	}
	if f.HasShipment && t.ShipmentID == nil {
		return false
	}
	if f.Query == "" {
		return true
	}
	for _, field := range []string{t.Title, t.Description} {
		if strings.Contains(strings.ToLower(field), strings.ToLower(f.Query)) {
			return true
		}
	}
	return false
}

func clone(t *models.Task) *models.Task {
	out := *t
	out.Tags = slices.Clone(t.Tags)
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.CompletedAt != nil {
		done := *t.CompletedAt
		out.CompletedAt = &done
	}
	if t.CustomerID != nil {
		id := *t.CustomerID
		out.CustomerID = &id
	}
	if t.ShipmentID != nil {
		id := *t.ShipmentID
		out.ShipmentID = &id
	}
	if t.OrderID != nil {
		id := *t.OrderID
		out.OrderID = &id
	}
	if t.EstimatedHours != nil {
		h := *t.EstimatedHours
		out.EstimatedHours = &h
	}
	if t.ActualHours != nil {
		h := *t.ActualHours
		out.ActualHours = &h
	}
	return &out
}
