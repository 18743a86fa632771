package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bizdesk/internal/crm/models"
	"bizdesk/internal/crm/store/customer"
	"bizdesk/internal/crm/store/order"
	"bizdesk/internal/crm/store/shipment"
	"bizdesk/pkg/domain"
	dErrors "bizdesk/pkg/domain-errors"
	"bizdesk/pkg/requestcontext"
)

type OrderServiceSuite struct {
	suite.Suite
	orders    *order.InMemory
	customers *customer.InMemory
	shipments *shipment.InMemory
	svc       *OrderService
	ctx       context.Context
	now       time.Time
	owner     *models.Customer
}

func (s *OrderServiceSuite) SetupTest() {
	s.orders = order.NewInMemory()
	s.customers = customer.NewInMemory()
	s.shipments = shipment.NewInMemory()
	s.svc = NewOrderService(s.orders, s.customers, s.shipments)
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.owner = &models.Customer{
		ID:        domain.NewCustomerID(),
		Name:      "Order Owner",
		Email:     "owner@test",
		Country:   "NL",
		Tags:      []string{},
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.customers.Create(s.ctx, s.owner))
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

func (s *OrderServiceSuite) addOrder(number string, total float64) *models.OrderWithItems {
	o, err := s.svc.Add(s.ctx, models.CreateOrder{
		OrderNumber: number,
		CustomerID:  s.owner.ID,
		TotalAmount: total,
	})
	s.Require().NoError(err)
	return o
}

// TestAdd verifies creation with nested items and price defaulting.
func (s *OrderServiceSuite) TestAdd() {
	s.Run("creates order with items", func() {
		o, err := s.svc.Add(s.ctx, models.CreateOrder{
			OrderNumber: "ORD-001",
			CustomerID:  s.owner.ID,
			TotalAmount: 70,
			Items: []models.CreateOrderItem{
				{ProductName: "Widget", Quantity: 3, UnitPrice: 10},
				{ProductName: "Gadget", Quantity: 2, UnitPrice: 20, TotalPrice: 35},
			},
		})
		s.Require().NoError(err)
		s.Equal(models.OrderPending, o.Status)
		s.Equal(s.now, o.OrderDate)
		s.Require().Len(o.Items, 2)
		// Zero total defaults to quantity times unit price; a supplied total
		// is trusted even when inconsistent.
		s.Equal(float64(30), o.Items[0].TotalPrice)
		s.Equal(float64(35), o.Items[1].TotalPrice)
	})

	s.Run("rejects unknown customer", func() {
		_, err := s.svc.Add(s.ctx, models.CreateOrder{
			OrderNumber: "ORD-GHOST",
			CustomerID:  domain.NewCustomerID(),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects duplicate order number", func() {
		s.addOrder("ORD-DUP", 1)
		_, err := s.svc.Add(s.ctx, models.CreateOrder{
			OrderNumber: "ORD-DUP",
			CustomerID:  s.owner.ID,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects invalid item", func() {
		_, err := s.svc.Add(s.ctx, models.CreateOrder{
			OrderNumber: "ORD-BADITEM",
			CustomerID:  s.owner.ID,
			Items:       []models.CreateOrderItem{{ProductName: "", Quantity: -1}},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects zero quantity item", func() {
		_, err := s.svc.Add(s.ctx, models.CreateOrder{
			OrderNumber: "ORD-ZEROQTY",
			CustomerID:  s.owner.ID,
			Items:       []models.CreateOrderItem{{ProductName: "Widget", Quantity: 0, UnitPrice: 10}},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// TestTotalRevenue verifies the cancelled exclusion and the trailing window.
func (s *OrderServiceSuite) TestTotalRevenue() {
	s.addOrder("ORD-RECENT", 100)
	old := s.addOrder("ORD-OLD", 40)
	oldDate := s.now.Add(-30 * 24 * time.Hour)
	_, err := s.svc.Update(s.ctx, old.ID, models.UpdateOrder{OrderDate: &oldDate})
	s.Require().NoError(err)
	cancelled := s.addOrder("ORD-GONE", 999)
	_, err = s.svc.UpdateStatus(s.ctx, cancelled.ID, models.OrderCancelled)
	s.Require().NoError(err)

	s.Run("all time excludes cancelled", func() {
		sum, err := s.svc.TotalRevenue(s.ctx, 0)
		s.Require().NoError(err)
		s.InDelta(140, sum, 0.001)
	})

	s.Run("window restricts to recent orders", func() {
		sum, err := s.svc.TotalRevenue(s.ctx, 7)
		s.Require().NoError(err)
		s.InDelta(100, sum, 0.001)
	})

	s.Run("no matching orders sums to zero", func() {
		empty := NewOrderService(order.NewInMemory(), s.customers, s.shipments)
		sum, err := empty.TotalRevenue(s.ctx, 0)
		s.Require().NoError(err)
		s.Zero(sum)
	})
}

// TestLinkToShipment verifies linking and its failure on a bad shipment id.
func (s *OrderServiceSuite) TestLinkToShipment() {
	o := s.addOrder("ORD-LINK", 10)
	sh := &models.Shipment{
		ID:             domain.NewShipmentID(),
		TrackingNumber: "TRK-LINK",
		CustomerID:     s.owner.ID,
		Origin:         "A",
		Destination:    "B",
		Carrier:        "DHL",
		Status:         models.ShipmentPending,
		CreatedAt:      s.now,
		UpdatedAt:      s.now,
	}
	s.Require().NoError(s.shipments.Create(s.ctx, sh))

	linked, err := s.svc.LinkToShipment(s.ctx, o.ID, sh.ID)
	s.Require().NoError(err)
	s.Require().NotNil(linked.ShipmentID)
	s.Equal(sh.ID, *linked.ShipmentID)

	s.Run("unknown shipment fails and leaves the order unlinked", func() {
		other := s.addOrder("ORD-UNLINKED", 10)
		_, err := s.svc.LinkToShipment(s.ctx, other.ID, domain.NewShipmentID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		reloaded, err := s.svc.Get(s.ctx, other.ID)
		s.Require().NoError(err)
		s.Nil(reloaded.ShipmentID)
	})

	s.Run("unknown order fails", func() {
		_, err := s.svc.LinkToShipment(s.ctx, domain.NewOrderID(), sh.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestSearch verifies the order number and item union, deduplicated.
func (s *OrderServiceSuite) TestSearch() {
	byNumber := s.addOrder("ORD-ALPHA", 10)
	byItem := s.addOrder("ORD-BETA", 10)
	_, err := s.svc.AddItem(s.ctx, byItem.ID, models.CreateOrderItem{
		ProductName: "Alpha Emitter", Quantity: 1, UnitPrice: 5,
	})
	s.Require().NoError(err)
	s.addOrder("ORD-OTHER", 10)

	got, err := s.svc.Search(s.ctx, "alpha")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	ids := map[domain.OrderID]bool{}
	for _, o := range got {
		ids[o.ID] = true
	}
	s.True(ids[byNumber.ID])
	s.True(ids[byItem.ID])

	s.Run("empty query returns everything", func() {
		got, err := s.svc.Search(s.ctx, "")
		s.Require().NoError(err)
		s.Len(got, 3)
	})
}

// TestRecent verifies the default window.
func (s *OrderServiceSuite) TestRecent() {
	fresh := s.addOrder("ORD-FRESH", 10)
	stale := s.addOrder("ORD-STALE", 10)
	staleDate := s.now.Add(-10 * 24 * time.Hour)
	_, err := s.svc.Update(s.ctx, stale.ID, models.UpdateOrder{OrderDate: &staleDate})
	s.Require().NoError(err)

	got, err := s.svc.Recent(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(fresh.ID, got[0].ID)
}
