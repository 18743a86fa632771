//go:build integration

package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bizdesk/internal/crm/models"
	"bizdesk/internal/crm/store"
	"bizdesk/internal/crm/store/customer"
	"bizdesk/internal/crm/store/task"
	"bizdesk/pkg/domain"
	"bizdesk/pkg/platform/sentinel"
	"bizdesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *task.PostgresStore
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
	s.store = task.NewPostgres(s.postgres.DB)
	s.customers = customer.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "tasks", "customers")
	s.Require().NoError(err)
}

func newTestTask(title string) *models.Task {
	now := time.Now().UTC()
	return &models.Task{
		ID:        domain.NewTaskID(),
		Title:     title,
		Priority:  models.PriorityMedium,
		Status:    models.TaskPending,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresStoreSuite) createCustomer() domain.CustomerID {
	now := time.Now().UTC()
	c := &models.Customer{
		ID:        domain.NewCustomerID(),
		Name:      "Task Owner",
		Email:     uuid.NewString() + "@test",
		Country:   "NL",
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.customers.Create(context.Background(), c))
	return c.ID
}

// TestNullableReferences verifies optional entity references round-trip
// through nullable columns.
func (s *PostgresStoreSuite) TestNullableReferences() {
	ctx := context.Background()
	customerID := s.createCustomer()

	linked := newTestTask("linked")
	linked.CustomerID = &customerID
	loose := newTestTask("loose")

	s.Require().NoError(s.store.Create(ctx, linked))
	s.Require().NoError(s.store.Create(ctx, loose))

	found, err := s.store.FindByID(ctx, linked.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.CustomerID)
	s.Equal(customerID, *found.CustomerID)

	found, err = s.store.FindByID(ctx, loose.ID)
	s.Require().NoError(err)
	s.Nil(found.CustomerID)
	s.Nil(found.ShipmentID)
	s.Nil(found.OrderID)
}

// TestReferenceIntegrity verifies unknown references map to not-found.
func (s *PostgresStoreSuite) TestReferenceIntegrity() {
	ctx := context.Background()

	ghost := domain.NewCustomerID()
	t := newTestTask("ghost ref")
	t.CustomerID = &ghost
	s.ErrorIs(s.store.Create(ctx, t), sentinel.ErrNotFound)
}

// TestTagColumnRoundTrip verifies tags survive the encoded scalar column.
func (s *PostgresStoreSuite) TestTagColumnRoundTrip() {
	ctx := context.Background()

	t := newTestTask("tagged")
	t.Tags = []string{"ops", "follow-up"}
	s.Require().NoError(s.store.Create(ctx, t))

	found, err := s.store.FindByID(ctx, t.ID)
	s.Require().NoError(err)
	s.Equal([]string{"ops", "follow-up"}, found.Tags)
}

// TestFiltersAndCount verifies the SQL predicates behind urgent and overdue
// listings.
func (s *PostgresStoreSuite) TestFiltersAndCount() {
	ctx := context.Background()
	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)

	urgentOpen := newTestTask("urgent open")
	urgentOpen.Priority = models.PriorityUrgent

	urgentDone := newTestTask("urgent done")
	urgentDone.Priority = models.PriorityUrgent
	urgentDone.ApplyStatus(models.TaskCompleted, now)

	overdue := newTestTask("overdue")
	overdue.DueDate = &yesterday

	for _, t := range []*models.Task{urgentOpen, urgentDone, overdue} {
		s.Require().NoError(s.store.Create(ctx, t))
	}

	s.Run("urgent excluding completed", func() {
		urgent := models.PriorityUrgent
		completed := models.TaskCompleted
		got, err := s.store.List(ctx, store.TaskFilter{Priority: &urgent, StatusNot: &completed})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(urgentOpen.ID, got[0].ID)
	})

	s.Run("due before excludes undated tasks", func() {
		got, err := s.store.List(ctx, store.TaskFilter{DueBefore: &now})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(overdue.ID, got[0].ID)
	})

	s.Run("count matches list", func() {
		pending := models.TaskPending
		n, err := s.store.Count(ctx, store.TaskFilter{Status: &pending})
		s.Require().NoError(err)
		s.Equal(2, n)
	})
}

// TestClearCustomer verifies the weak reference is nulled, not the row.
func (s *PostgresStoreSuite) TestClearCustomer() {
	ctx := context.Background()
	customerID := s.createCustomer()

	t := newTestTask("orphan me")
	t.CustomerID = &customerID
	s.Require().NoError(s.store.Create(ctx, t))

	s.Require().NoError(s.store.ClearCustomer(ctx, customerID))

	found, err := s.store.FindByID(ctx, t.ID)
	s.Require().NoError(err)
	s.Nil(found.CustomerID)
}
