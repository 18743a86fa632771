package contact

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

// InMemory keeps contacts in a map.
type InMemory struct {
	mu       sync.RWMutex
	contacts map[domain.ContactID]*models.Contact
}

func NewInMemory() *InMemory {
	return &InMemory{contacts: make(map[domain.ContactID]*models.Contact)}
}

func (s *InMemory) List(_ context.Context, f store.ContactFilter) ([]*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Contact{}
	for _, c := range s.contacts {
		if matches(c, f) {
			copied := *c
			out = append(out, &copied)
		}
	}
	slices.SortFunc(out, func(a, b *models.Contact) int {
		if cmp := a.CreatedAt.Compare(b.CreatedAt); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ContactID) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.contacts[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Create(_ context.Context, c *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *c
	s.contacts[c.ID] = &copied
	return nil
}

func (s *InMemory) Delete(_ context.Context, id domain.ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.contacts, id)
	return nil
}

func (s *InMemory) DeleteByCustomer(_ context.Context, customerID domain.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.contacts {
		if c.CustomerID == customerID {
			delete(s.contacts, id)
		}
	}
	return nil
}

func matches(c *models.Contact, f store.ContactFilter) bool {
	if f.CustomerID != nil && c.CustomerID != *f.CustomerID {
		return false
	}
	if f.Query == "" {
		return true
	}
	for _, field := range []string{c.Name, c.Email, c.Phone, c.Role} {
		if strings.Contains(strings.ToLower(field), strings.ToLower(f.Query)) {
			return true
		}
	}
	return false
}
