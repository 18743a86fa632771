package customer

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

// InMemory keeps customers in a map. It backs unit tests and the
// STORE=memory runtime mode; it favors clarity over performance.
type InMemory struct {
	mu        sync.RWMutex
	customers map[domain.CustomerID]*models.Customer
}

func NewInMemory() *InMemory {
	return &InMemory{customers: make(map[domain.CustomerID]*models.Customer)}
}

func (s *InMemory) List(_ context.Context, f store.CustomerFilter) ([]*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Customer{}
	for _, c := range s.customers {
		if matches(c, f) {
			out = append(out, clone(c))
		}
	}
	sortCustomers(out)
	return out, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.CustomerID) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.customers[id]; ok {
		return clone(c), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.Email == email {
			return clone(c), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Create(_ context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.customers {
		if existing.Email == c.Email {
			return sentinel.ErrConflict
		}
	}
	s.customers[c.ID] = clone(c)
	return nil
}

func (s *InMemory) Update(_ context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.customers {
		if existing.ID != c.ID && existing.Email == c.Email {
			return sentinel.ErrConflict
		}
	}
	s.customers[c.ID] = clone(c)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id domain.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.customers, id)
	return nil
}

func matches(c *models.Customer, f store.CustomerFilter) bool {
	if f.Industry != "" && c.Industry != f.Industry {
		return false
	}
	if f.Country != "" && c.Country != f.Country {
		return false
	}
	if f.NeedsAttention != nil && c.NeedsAttention != *f.NeedsAttention {
		return false
	}
	if f.Query == "" && len(f.MatchIDs) == 0 {
		return true
	}
	// OR block: any present search criterion admits the row.
	if f.Query != "" {
		for _, field := range []string{c.Name, c.Email, c.Company, c.Phone, c.Country, c.Industry} {
			if containsFold(field, f.Query) {
				return true
			}
		}
	}
	return slices.Contains(f.MatchIDs, c.ID)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func clone(c *models.Customer) *models.Customer {
	out := *c
	out.Tags = slices.Clone(c.Tags)
	return &out
}

func sortCustomers(customers []*models.Customer) {
	slices.SortFunc(customers, func(a, b *models.Customer) int {
		if cmp := a.CreatedAt.Compare(b.CreatedAt); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}
