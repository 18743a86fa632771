//go:build integration

package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bizdesk/internal/crm/models"
	"bizdesk/internal/crm/store"
	"bizdesk/internal/crm/store/customer"
	"bizdesk/internal/crm/store/order"
	"bizdesk/pkg/domain"
	"bizdesk/pkg/platform/sentinel"
	"bizdesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *order.PostgresStore
	customers *customer.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = order.NewPostgres(s.postgres.DB)
	s.customers = customer.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "order_items", "orders", "customers")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) createCustomer() domain.CustomerID {
	now := time.Now().UTC()
	c := &models.Customer{
		ID:        domain.NewCustomerID(),
		Name:      "Order Owner",
		Email:     uuid.NewString() + "@test",
		Country:   "NL",
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.customers.Create(context.Background(), c))
	return c.ID
}

func (s *PostgresStoreSuite) newOrder(customerID domain.CustomerID, number string, total float64) *models.Order {
	now := time.Now().UTC()
	return &models.Order{
		ID:          domain.NewOrderID(),
		OrderNumber: number,
		CustomerID:  customerID,
		Status:      models.OrderPending,
		OrderDate:   now,
		TotalAmount: total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TestItemOwnership verifies the order_items rows follow their order.
func (s *PostgresStoreSuite) TestItemOwnership() {
	ctx := context.Background()
	customerID := s.createCustomer()

	o := s.newOrder(customerID, "ORD-ITEMS", 20)
	s.Require().NoError(s.store.Create(ctx, o))

	item := &models.OrderItem{
		ID:          domain.NewOrderItemID(),
		OrderID:     o.ID,
		ProductName: "Widget",
		Quantity:    2,
		UnitPrice:   10,
		TotalPrice:  20,
		CreatedAt:   time.Now().UTC(),
	}
	s.Require().NoError(s.store.AddItem(ctx, item))

	full, err := s.store.FindByIDWithItems(ctx, o.ID)
	s.Require().NoError(err)
	s.Require().Len(full.Items, 1)
	s.Equal("Widget", full.Items[0].ProductName)

	// Deleting the order cascades to its items.
	s.Require().NoError(s.store.Delete(ctx, o.ID))
	items, err := s.store.ListItems(ctx, o.ID)
	s.Require().NoError(err)
	s.Empty(items)
}

// TestForeignKeys verifies referential errors map to domain sentinels.
func (s *PostgresStoreSuite) TestForeignKeys() {
	ctx := context.Background()

	s.Run("order for unknown customer", func() {
		o := s.newOrder(domain.NewCustomerID(), "ORD-NOCUST", 1)
		s.ErrorIs(s.store.Create(ctx, o), sentinel.ErrNotFound)
	})

	s.Run("item for unknown order", func() {
		item := &models.OrderItem{
			ID:          domain.NewOrderItemID(),
			OrderID:     domain.NewOrderID(),
			ProductName: "Ghost",
			Quantity:    1,
			CreatedAt:   time.Now().UTC(),
		}
		s.ErrorIs(s.store.AddItem(ctx, item), sentinel.ErrNotFound)
	})

	s.Run("duplicate order number", func() {
		customerID := s.createCustomer()
		s.Require().NoError(s.store.Create(ctx, s.newOrder(customerID, "ORD-DUP", 1)))
		s.ErrorIs(s.store.Create(ctx, s.newOrder(customerID, "ORD-DUP", 2)), sentinel.ErrConflict)
	})
}

// TestRevenueSum verifies the SQL aggregation used for revenue reporting.
func (s *PostgresStoreSuite) TestRevenueSum() {
	ctx := context.Background()
	customerID := s.createCustomer()

	recent := s.newOrder(customerID, "ORD-RECENT", 100)
	old := s.newOrder(customerID, "ORD-OLD", 40)
	old.OrderDate = time.Now().UTC().Add(-30 * 24 * time.Hour)
	cancelled := s.newOrder(customerID, "ORD-GONE", 999)
	cancelled.Status = models.OrderCancelled

	for _, o := range []*models.Order{recent, old, cancelled} {
		s.Require().NoError(s.store.Create(ctx, o))
	}

	cancelledStatus := models.OrderCancelled

	s.Run("sum excludes cancelled orders", func() {
		sum, err := s.store.SumTotalAmount(ctx, store.OrderFilter{StatusNot: &cancelledStatus})
		s.Require().NoError(err)
		s.InDelta(140, sum, 0.001)
	})

	s.Run("window bound narrows the sum", func() {
		lastWeek := time.Now().UTC().Add(-7 * 24 * time.Hour)
		sum, err := s.store.SumTotalAmount(ctx, store.OrderFilter{
			StatusNot:    &cancelledStatus,
			OrderedSince: &lastWeek,
		})
		s.Require().NoError(err)
		s.InDelta(100, sum, 0.001)
	})

	s.Run("empty result sums to zero", func() {
		refunded := models.OrderRefunded
		sum, err := s.store.SumTotalAmount(ctx, store.OrderFilter{Status: &refunded})
		s.Require().NoError(err)
		s.Zero(sum)
	})
}

// TestItemQuery verifies the EXISTS subquery over owned items.
func (s *PostgresStoreSuite) TestItemQuery() {
	ctx := context.Background()
	customerID := s.createCustomer()

	match := s.newOrder(customerID, "ORD-MATCH", 10)
	other := s.newOrder(customerID, "ORD-OTHER", 10)
	s.Require().NoError(s.store.Create(ctx, match))
	s.Require().NoError(s.store.Create(ctx, other))

	s.Require().NoError(s.store.AddItem(ctx, &models.OrderItem{
		ID:          domain.NewOrderItemID(),
		OrderID:     match.ID,
		ProductName: "Bolt Cutter",
		Quantity:    1,
		CreatedAt:   time.Now().UTC(),
	}))

	got, err := s.store.List(ctx, store.OrderFilter{ItemQuery: "bolt"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(match.ID, got[0].ID)

	// ORed with the order number query, both orders match once each.
	got, err = s.store.List(ctx, store.OrderFilter{Query: "ord-other", ItemQuery: "bolt"})
	s.Require().NoError(err)
	s.Len(got, 2)
}
