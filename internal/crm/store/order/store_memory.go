package order

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

// InMemory keeps orders and their items in maps.
type InMemory struct {
	mu     sync.RWMutex
	orders map[domain.OrderID]*models.Order
	items  map[domain.OrderID][]*models.OrderItem
}

func NewInMemory() *InMemory {
	return &InMemory{
		orders: make(map[domain.OrderID]*models.Order),
		items:  make(map[domain.OrderID][]*models.OrderItem),
	}
}

func (s *InMemory) List(_ context.Context, f store.OrderFilter) ([]*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Order{}
	for _, o := range s.orders {
		if s.matches(o, f) {
			out = append(out, clone(o))
		}
	}
	sortOrders(out)
	return out, nil
}

// ListWithItems returns matching orders with their items attached.
func (s *InMemory) ListWithItems(ctx context.Context, f store.OrderFilter) ([]*models.OrderWithItems, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.OrderWithItems{}
	for _, o := range s.orders {
		if s.matches(o, f) {
			out = append(out, &models.OrderWithItems{Order: *clone(o), Items: cloneItems(s.items[o.ID])})
		}
	}
	slices.SortFunc(out, func(a, b *models.OrderWithItems) int {
		if cmp := a.CreatedAt.Compare(b.CreatedAt); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemory) Count(ctx context.Context, f store.OrderFilter) (int, error) {
	orders, err := s.List(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}

// SumTotalAmount sums TotalAmount over matching orders.
func (s *InMemory) SumTotalAmount(ctx context.Context, f store.OrderFilter) (float64, error) {
	orders, err := s.List(ctx, f)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, o := range orders {
		sum += o.TotalAmount
	}
	return sum, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.OrderID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.orders[id]; ok {
		return clone(o), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByIDWithItems(_ context.Context, id domain.OrderID) (*models.OrderWithItems, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &models.OrderWithItems{Order: *clone(o), Items: cloneItems(s.items[id])}, nil
}

func (s *InMemory) FindByOrderNumber(_ context.Context, orderNumber string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.OrderNumber == orderNumber {
			return clone(o), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Create(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.OrderNumber == o.OrderNumber {
			return sentinel.ErrConflict
		}
	}
	s.orders[o.ID] = clone(o)
	return nil
}

func (s *InMemory) Update(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.orders {
		if existing.ID != o.ID && existing.OrderNumber == o.OrderNumber {
			return sentinel.ErrConflict
		}
	}
	s.orders[o.ID] = clone(o)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id domain.OrderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.orders, id)
	delete(s.items, id)
	return nil
}

func (s *InMemory) AddItem(_ context.Context, item *models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[item.OrderID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *item
	s.items[item.OrderID] = append(s.items[item.OrderID], &copied)
	return nil
}

func (s *InMemory) ListItems(_ context.Context, orderID domain.OrderID) ([]*models.OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items[orderID]), nil
}

// matches requires the read lock held; ItemQuery reaches into the item map.
func (s *InMemory) matches(o *models.Order, f store.OrderFilter) bool {
	if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
		return false
	}
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	if f.StatusNot != nil && o.Status == *f.StatusNot {
		return false
	}
	if f.OrderedSince != nil && o.OrderDate.Before(*f.OrderedSince) {
		return false
	}
	if f.OrderedThrough != nil && o.OrderDate.After(*f.OrderedThrough) {
		return false
	}
	if f.Query == "" && f.ItemQuery == "" {
		return true
	}
	if f.Query != "" && containsFold(o.OrderNumber, f.Query) {
		return true
	}
	if f.ItemQuery != "" {
		for _, item := range s.items[o.ID] {
			if containsFold(item.ProductName, f.ItemQuery) || containsFold(item.Description, f.ItemQuery) {
				return true
			}
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func clone(o *models.Order) *models.Order {
	out := *o
	if o.DueDate != nil {
		due := *o.DueDate
		out.DueDate = &due
	}
	if o.ShipmentID != nil {
		id := *o.ShipmentID
		out.ShipmentID = &id
	}
	return &out
}

func cloneItems(items []*models.OrderItem) []*models.OrderItem {
	out := make([]*models.OrderItem, len(items))
	for i, item := range items {
		copied := *item
		out[i] = &copied
	}
	return out
}

func sortOrders(orders []*models.Order) {
	slices.SortFunc(orders, func(a, b *models.Order) int {
		if cmp := a.CreatedAt.Compare(b.CreatedAt); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}
