//go:build integration

package contact_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bizdesk/internal/crm/models"
	"bizdesk/internal/crm/store"
	"bizdesk/internal/crm/store/contact"
	"bizdesk/internal/crm/store/customer"
	"bizdesk/pkg/domain"
	"bizdesk/pkg/platform/sentinel"
	"bizdesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *contact.PostgresStore
	customers *customer.PostgresStore
	owner     *models.Customer
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
	s.store = contact.NewPostgres(s.postgres.DB)
	s.customers = customer.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "customers", "contacts")
	s.Require().NoError(err)

	now := time.Now().UTC()
	s.owner = &models.Customer{
		ID:        domain.NewCustomerID(),
		Name:      "Contact Owner",
		Email:     "owner-" + uuid.NewString() + "@test",
		Country:   "NL",
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.customers.Create(ctx, s.owner))
}

func (s *PostgresStoreSuite) newContact(name string) *models.Contact {
	now := time.Now().UTC()
	return &models.Contact{
		ID:         domain.NewContactID(),
		CustomerID: s.owner.ID,
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TestCreateAndFind verifies the basic round trip and the missing-row sentinel.
func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()

	c := s.newContact("Primary Rep")
	c.Email = "rep@test"
	c.IsPrimary = true
	s.Require().NoError(s.store.Create(ctx, c))

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("Primary Rep", found.Name)
	s.Equal("rep@test", found.Email)
	s.True(found.IsPrimary)

	_, err = s.store.FindByID(ctx, domain.NewContactID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestUnknownCustomerReference verifies the FK violation maps to not found.
func (s *PostgresStoreSuite) TestUnknownCustomerReference() {
	ctx := context.Background()

	c := s.newContact("Orphan")
	c.CustomerID = domain.NewCustomerID()
	err := s.store.Create(ctx, c)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestQueryFilter verifies the multi-column ILIKE search.
func (s *PostgresStoreSuite) TestQueryFilter() {
	ctx := context.Background()

	byName := s.newContact("Alice Broker")
	s.Require().NoError(s.store.Create(ctx, byName))

	byRole := s.newContact("Bob")
	byRole.Role = "customs broker"
	s.Require().NoError(s.store.Create(ctx, byRole))

	s.Require().NoError(s.store.Create(ctx, s.newContact("Carol")))

	got, err := s.store.List(ctx, store.ContactFilter{Query: "broker"})
	s.Require().NoError(err)
	s.Len(got, 2)
}

// TestCustomerCascade verifies contacts go away with their customer row.
func (s *PostgresStoreSuite) TestCustomerCascade() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.newContact("Doomed")))
	s.Require().NoError(s.customers.Delete(ctx, s.owner.ID))

	got, err := s.store.List(ctx, store.ContactFilter{CustomerID: &s.owner.ID})
	s.Require().NoError(err)
	s.Empty(got)
}
