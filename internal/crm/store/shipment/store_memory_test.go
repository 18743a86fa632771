package shipment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bizdesk/internal/crm/models"
	"bizdesk/internal/crm/store"
	"bizdesk/pkg/domain"
	"bizdesk/pkg/fieldcodec"
	"bizdesk/pkg/platform/sentinel"
)

type ShipmentStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ShipmentStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestShipmentStoreSuite(t *testing.T) {
	suite.Run(t, new(ShipmentStoreSuite))
}

func (s *ShipmentStoreSuite) newShipment(trackingNumber string) *models.Shipment {
	now := time.Now()
	return &models.Shipment{
		ID:             domain.NewShipmentID(),
		TrackingNumber: trackingNumber,
		CustomerID:     domain.NewCustomerID(),
		Origin:         "Rotterdam",
		Destination:    "Hamburg",
		Carrier:        "DHL",
		Status:         models.ShipmentPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TestCreationAndLookups verifies create, find by ID and by tracking number.
func (s *ShipmentStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds shipment by ID", func() {
		sh := s.newShipment("TRK-001")
		s.Require().NoError(s.store.Create(s.ctx, sh))

		found, err := s.store.FindByID(s.ctx, sh.ID)
		s.Require().NoError(err)
		s.Equal(sh.TrackingNumber, found.TrackingNumber)
	})

	s.Run("finds shipment by tracking number", func() {
		sh := s.newShipment("TRK-002")
		s.Require().NoError(s.store.Create(s.ctx, sh))

		found, err := s.store.FindByTrackingNumber(s.ctx, "TRK-002")
		s.Require().NoError(err)
		s.Equal(sh.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, domain.NewShipmentID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestTrackingNumberUniqueness verifies conflicts on create and update.
func (s *ShipmentStoreSuite) TestTrackingNumberUniqueness() {
	s.Run("rejects duplicate tracking number on create", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newShipment("TRK-DUP")))

		err := s.store.Create(s.ctx, s.newShipment("TRK-DUP"))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("rejects update taking another shipment's tracking number", func() {
		a := s.newShipment("TRK-A")
		b := s.newShipment("TRK-B")
		s.Require().NoError(s.store.Create(s.ctx, a))
		s.Require().NoError(s.store.Create(s.ctx, b))

		b.TrackingNumber = "TRK-A"
		s.Require().ErrorIs(s.store.Update(s.ctx, b), sentinel.ErrConflict)
	})
}

// TestListFiltering verifies the status set and delivery window predicates
// the dashboard depends on.
func (s *ShipmentStoreSuite) TestListFiltering() {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)

	inTransit := s.newShipment("TRK-TRANSIT")
	inTransit.Status = models.ShipmentInTransit
	inTransit.EstimatedDelivery = &yesterday

	delivered := s.newShipment("TRK-DONE")
	delivered.ApplyStatus(models.ShipmentDelivered, now)

	for _, sh := range []*models.Shipment{inTransit, delivered} {
		s.Require().NoError(s.store.Create(s.ctx, sh))
	}

	s.Run("status set membership", func() {
		got, err := s.store.List(s.ctx, store.ShipmentFilter{StatusIn: models.ActiveShipmentStatuses})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(inTransit.ID, got[0].ID)
	})

	s.Run("estimated-before with active statuses finds delayed shipments", func() {
		got, err := s.store.List(s.ctx, store.ShipmentFilter{
			StatusIn:        models.ActiveShipmentStatuses,
			EstimatedBefore: &now,
		})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(inTransit.ID, got[0].ID)
	})

	s.Run("query matches tracking number and route fields", func() {
		got, err := s.store.List(s.ctx, store.ShipmentFilter{Query: "transit"})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(inTransit.ID, got[0].ID)
	})

	s.Run("count matches list", func() {
		n, err := s.store.Count(s.ctx, store.ShipmentFilter{})
		s.Require().NoError(err)
		s.Equal(2, n)
	})
}

// TestDefensiveCopies verifies dimensions do not alias stored state.
func (s *ShipmentStoreSuite) TestDefensiveCopies() {
	sh := s.newShipment("TRK-COPY")
	sh.Dimensions = &fieldcodec.Dimensions{Length: 10, Width: 20, Height: 30}
	s.Require().NoError(s.store.Create(s.ctx, sh))

	found, err := s.store.FindByID(s.ctx, sh.ID)
	s.Require().NoError(err)
	found.Dimensions.Length = 999

	again, err := s.store.FindByID(s.ctx, sh.ID)
	s.Require().NoError(err)
	s.Equal(float64(10), again.Dimensions.Length)
}
