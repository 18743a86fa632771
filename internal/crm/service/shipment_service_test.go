package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bizdesk/internal/crm/models"
	"bizdesk/internal/crm/store/customer"
	"bizdesk/internal/crm/store/shipment"
	"bizdesk/pkg/domain"
	dErrors "bizdesk/pkg/domain-errors"
	"bizdesk/pkg/fieldcodec"
	"bizdesk/pkg/requestcontext"
)

type ShipmentServiceSuite struct {
	suite.Suite
	shipments *shipment.InMemory
	customers *customer.InMemory
	svc       *ShipmentService
	ctx       context.Context
	now       time.Time
	owner     *models.Customer
}

func (s *ShipmentServiceSuite) SetupTest() {
	s.shipments = shipment.NewInMemory()
	s.customers = customer.NewInMemory()
	s.svc = NewShipmentService(s.shipments, s.customers)
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.owner = &models.Customer{
		ID:        domain.NewCustomerID(),
		Name:      "Shipment Owner",
		Email:     "owner@test",
		Country:   "NL",
		Tags:      []string{},
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.customers.Create(s.ctx, s.owner))
}

func TestShipmentServiceSuite(t *testing.T) {
	suite.Run(t, new(ShipmentServiceSuite))
}

func (s *ShipmentServiceSuite) addShipment(trackingNumber string, status models.ShipmentStatus) *models.Shipment {
	sh, err := s.svc.Add(s.ctx, models.CreateShipment{
		TrackingNumber: trackingNumber,
		CustomerID:     s.owner.ID,
		Origin:         "Rotterdam",
		Destination:    "Hamburg",
		Carrier:        "DHL",
		Status:         status,
	})
	s.Require().NoError(err)
	return sh
}

// TestAdd verifies creation, reference checking and conflicts.
func (s *ShipmentServiceSuite) TestAdd() {
	s.Run("defaults to PENDING", func() {
		sh := s.addShipment("TRK-NEW", "")
		s.Equal(models.ShipmentPending, sh.Status)
	})

	s.Run("keeps structured dimensions", func() {
		sh, err := s.svc.Add(s.ctx, models.CreateShipment{
			TrackingNumber: "TRK-DIM",
			CustomerID:     s.owner.ID,
			Origin:         "A",
			Destination:    "B",
			Carrier:        "UPS",
			Dimensions:     &fieldcodec.Dimensions{Length: 120, Width: 80, Height: 100},
		})
		s.Require().NoError(err)
		s.Require().NotNil(sh.Dimensions)
		s.Equal(float64(120), sh.Dimensions.Length)
	})

	s.Run("rejects unknown customer", func() {
		_, err := s.svc.Add(s.ctx, models.CreateShipment{
			TrackingNumber: "TRK-GHOST",
			CustomerID:     domain.NewCustomerID(),
			Origin:         "A",
			Destination:    "B",
			Carrier:        "UPS",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects duplicate tracking number", func() {
		s.addShipment("TRK-DUP", "")
		_, err := s.svc.Add(s.ctx, models.CreateShipment{
			TrackingNumber: "TRK-DUP",
			CustomerID:     s.owner.ID,
			Origin:         "A",
			Destination:    "B",
			Carrier:        "UPS",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects invalid status value", func() {
		_, err := s.svc.Add(s.ctx, models.CreateShipment{
			TrackingNumber: "TRK-BAD",
			CustomerID:     s.owner.ID,
			Origin:         "A",
			Destination:    "B",
			Carrier:        "UPS",
			Status:         "TELEPORTED",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// TestStatusTransitions verifies DELIVERED stamps the actual delivery time.
func (s *ShipmentServiceSuite) TestStatusTransitions() {
	sh := s.addShipment("TRK-LIFE", "")

	updated, err := s.svc.UpdateStatus(s.ctx, sh.ID, models.ShipmentInTransit, "left the depot")
	s.Require().NoError(err)
	s.Equal(models.ShipmentInTransit, updated.Status)
	s.Nil(updated.ActualDelivery)
	s.Contains(updated.Notes, "left the depot")

	delivered, err := s.svc.UpdateStatus(s.ctx, sh.ID, models.ShipmentDelivered, "")
	s.Require().NoError(err)
	s.Require().NotNil(delivered.ActualDelivery)
	s.Equal(s.now, *delivered.ActualDelivery)

	s.Run("invalid status is rejected", func() {
		_, err := s.svc.UpdateStatus(s.ctx, sh.ID, "LOST_FOREVER", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// TestListings verifies the active and overdue views.
func (s *ShipmentServiceSuite) TestListings() {
	yesterday := s.now.Add(-24 * time.Hour)

	pending := s.addShipment("TRK-PEND", "")
	s.addShipment("TRK-MOVE", models.ShipmentInTransit)
	late, err := s.svc.Add(s.ctx, models.CreateShipment{
		TrackingNumber:    "TRK-LATE",
		CustomerID:        s.owner.ID,
		Origin:            "A",
		Destination:       "B",
		Carrier:           "UPS",
		Status:            models.ShipmentInTransit,
		EstimatedDelivery: &yesterday,
	})
	s.Require().NoError(err)
	_, err = s.svc.Add(s.ctx, models.CreateShipment{
		TrackingNumber:    "TRK-ARRIVED",
		CustomerID:        s.owner.ID,
		Origin:            "A",
		Destination:       "B",
		Carrier:           "UPS",
		Status:            models.ShipmentDelivered,
		EstimatedDelivery: &yesterday,
	})
	s.Require().NoError(err)

	s.Run("active covers pending, picked up and in transit", func() {
		got, err := s.svc.Active(s.ctx)
		s.Require().NoError(err)
		s.Len(got, 3)
	})

	s.Run("overdue excludes delivered shipments", func() {
		got, err := s.svc.Overdue(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(late.ID, got[0].ID)
	})

	s.Run("pending only", func() {
		got, err := s.svc.Pending(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(pending.ID, got[0].ID)
	})
}

// TestLookupByTrackingNumber verifies the alternate key path.
func (s *ShipmentServiceSuite) TestLookupByTrackingNumber() {
	sh := s.addShipment("TRK-FIND", "")

	found, err := s.svc.GetByTrackingNumber(s.ctx, "TRK-FIND")
	s.Require().NoError(err)
	s.Equal(sh.ID, found.ID)

	_, err = s.svc.GetByTrackingNumber(s.ctx, "")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.svc.GetByTrackingNumber(s.ctx, "TRK-NOPE")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
