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
	"bizdesk/internal/crm/store/task"
	"bizdesk/pkg/domain"
	dErrors "bizdesk/pkg/domain-errors"
	"bizdesk/pkg/requestcontext"
)

type TaskServiceSuite struct {
	suite.Suite
	tasks     *task.InMemory
	customers *customer.InMemory
	shipments *shipment.InMemory
	orders    *order.InMemory
	svc       *TaskService
	ctx       context.Context
	now       time.Time
}

func (s *TaskServiceSuite) SetupTest() {
	s.tasks = task.NewInMemory()
	s.customers = customer.NewInMemory()
	s.shipments = shipment.NewInMemory()
	s.orders = order.NewInMemory()
	s.svc = NewTaskService(s.tasks, s.customers, s.shipments, s.orders)
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func TestTaskServiceSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceSuite))
}

func (s *TaskServiceSuite) seedCustomer() *models.Customer {
	c := &models.Customer{
		ID:        domain.NewCustomerID(),
		Name:      "Task Owner",
		Email:     "owner@test",
		Country:   "NL",
		Tags:      []string{},
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.customers.Create(s.ctx, c))
	return c
}

func (s *TaskServiceSuite) seedShipment(customerID domain.CustomerID) *models.Shipment {
	sh := &models.Shipment{
		ID:             domain.NewShipmentID(),
		TrackingNumber: "TRK-TASK",
		CustomerID:     customerID,
		Origin:         "A",
		Destination:    "B",
		Carrier:        "DHL",
		Status:         models.ShipmentInTransit,
		CreatedAt:      s.now,
		UpdatedAt:      s.now,
	}
	s.Require().NoError(s.shipments.Create(s.ctx, sh))
	return sh
}

// TestAdd verifies defaults and reference checking.
func (s *TaskServiceSuite) TestAdd() {
	s.Run("applies defaults", func() {
		t, err := s.svc.Add(s.ctx, models.CreateTask{Title: "triage inbox"})
		s.Require().NoError(err)
		s.Equal(models.PriorityMedium, t.Priority)
		s.Equal(models.TaskPending, t.Status)
		s.Nil(t.CompletedAt)
	})

	s.Run("rejects missing title", func() {
		_, err := s.svc.Add(s.ctx, models.CreateTask{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects unknown customer reference", func() {
		ghost := domain.NewCustomerID()
		_, err := s.svc.Add(s.ctx, models.CreateTask{Title: "ghost", CustomerID: &ghost})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("created as completed stamps CompletedAt", func() {
		t, err := s.svc.Add(s.ctx, models.CreateTask{Title: "done on arrival", Status: models.TaskCompleted})
		s.Require().NoError(err)
		s.Require().NotNil(t.CompletedAt)
		s.Equal(s.now, *t.CompletedAt)
	})
}

// TestCompleteSemantics verifies the CompletedAt invariant through
// transitions.
func (s *TaskServiceSuite) TestCompleteSemantics() {
	t, err := s.svc.Add(s.ctx, models.CreateTask{Title: "lifecycle"})
	s.Require().NoError(err)

	done, err := s.svc.Complete(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskCompleted, done.Status)
	s.Require().NotNil(done.CompletedAt)
	s.Equal(s.now, *done.CompletedAt)

	s.Run("leaving COMPLETED clears the stamp", func() {
		reopened := models.TaskInProgress
		updated, err := s.svc.Update(s.ctx, t.ID, models.UpdateTask{Status: &reopened})
		s.Require().NoError(err)
		s.Nil(updated.CompletedAt)
	})

	s.Run("completing an unknown task is not found", func() {
		_, err := s.svc.Complete(s.ctx, domain.NewTaskID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestUrgentAndOverdue verifies the triage listings.
func (s *TaskServiceSuite) TestUrgentAndOverdue() {
	yesterday := s.now.Add(-24 * time.Hour)
	tomorrow := s.now.Add(24 * time.Hour)

	urgent, err := s.svc.Add(s.ctx, models.CreateTask{Title: "urgent", Priority: models.PriorityUrgent})
	s.Require().NoError(err)
	_, err = s.svc.Add(s.ctx, models.CreateTask{Title: "urgent but done", Priority: models.PriorityUrgent, Status: models.TaskCompleted})
	s.Require().NoError(err)
	overdue, err := s.svc.Add(s.ctx, models.CreateTask{Title: "overdue", DueDate: &yesterday})
	s.Require().NoError(err)
	_, err = s.svc.Add(s.ctx, models.CreateTask{Title: "future", DueDate: &tomorrow})
	s.Require().NoError(err)

	s.Run("urgent excludes completed", func() {
		got, err := s.svc.Urgent(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(urgent.ID, got[0].ID)
	})

	s.Run("overdue is strictly before now and not completed", func() {
		got, err := s.svc.Overdue(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(overdue.ID, got[0].ID)
	})

	s.Run("completing removes a task from overdue", func() {
		_, err := s.svc.Complete(s.ctx, overdue.ID)
		s.Require().NoError(err)
		got, err := s.svc.Overdue(s.ctx)
		s.Require().NoError(err)
		s.Empty(got)
	})
}

// TestListByReference verifies missing parents yield empty lists.
func (s *TaskServiceSuite) TestListByReference() {
	c := s.seedCustomer()
	linked, err := s.svc.Add(s.ctx, models.CreateTask{Title: "linked", CustomerID: &c.ID})
	s.Require().NoError(err)

	got, err := s.svc.ListByCustomer(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(linked.ID, got[0].ID)

	got, err = s.svc.ListByCustomer(s.ctx, domain.NewCustomerID())
	s.Require().NoError(err)
	s.Empty(got)
}

// TestFollowUpHelpers verifies the canned task constructors.
func (s *TaskServiceSuite) TestFollowUpHelpers() {
	c := s.seedCustomer()

	s.Run("customer follow-up defaults", func() {
		t, err := s.svc.CreateCustomerFollowUp(s.ctx, c.ID, "", "call back", nil)
		s.Require().NoError(err)
		s.Equal("Follow up with Task Owner", t.Title)
		s.Equal(models.PriorityMedium, t.Priority)
		s.Contains(t.Tags, "follow-up")
		s.Require().NotNil(t.DueDate)
		s.Equal(s.now.Add(7*24*time.Hour), *t.DueDate)
		s.Require().NotNil(t.CustomerID)
		s.Equal(c.ID, *t.CustomerID)
	})

	s.Run("shipment task links both shipment and its customer", func() {
		sh := s.seedShipment(c.ID)
		t, err := s.svc.CreateShipmentTask(s.ctx, sh.ID, "", "inspect damage", models.PriorityHigh)
		s.Require().NoError(err)
		s.Equal("Check shipment TRK-TASK", t.Title)
		s.Equal(models.PriorityHigh, t.Priority)
		s.Contains(t.Tags, "shipment")
		s.Require().NotNil(t.ShipmentID)
		s.Equal(sh.ID, *t.ShipmentID)
		s.Require().NotNil(t.CustomerID)
		s.Equal(c.ID, *t.CustomerID)
	})

	s.Run("follow-up for unknown customer fails", func() {
		_, err := s.svc.CreateCustomerFollowUp(s.ctx, domain.NewCustomerID(), "", "", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestSearch verifies title/description matching and the empty query.
func (s *TaskServiceSuite) TestSearch() {
	_, err := s.svc.Add(s.ctx, models.CreateTask{Title: "Call the customs broker"})
	s.Require().NoError(err)
	_, err = s.svc.Add(s.ctx, models.CreateTask{Title: "Other", Description: "broker paperwork"})
	s.Require().NoError(err)
	_, err = s.svc.Add(s.ctx, models.CreateTask{Title: "Unrelated"})
	s.Require().NoError(err)

	got, err := s.svc.Search(s.ctx, "broker")
	s.Require().NoError(err)
	s.Len(got, 2)

	got, err = s.svc.Search(s.ctx, "")
	s.Require().NoError(err)
	s.Len(got, 3)
}
