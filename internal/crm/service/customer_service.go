package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"bizdesk/internal/crm/metrics"
	"bizdesk/internal/crm/models"
	"bizdesk/internal/crm/store"
	"bizdesk/internal/crm/validate"
	"bizdesk/pkg/domain"
	dErrors "bizdesk/pkg/domain-errors"
	"bizdesk/pkg/platform/sentinel"
	"bizdesk/pkg/requestcontext"
)

// CustomerService manages customers and their owned contacts.
type CustomerService struct {
	customers CustomerStore
	contacts  ContactStore
	tasks     TaskStore
	shipments ShipmentStore
	orders    OrderStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewCustomerService(customers CustomerStore, contacts ContactStore, tasks TaskStore,
	shipments ShipmentStore, orders OrderStore, opts ...Option) *CustomerService {
	cfg := applyOptions(opts)
	return &CustomerService{
		customers: customers,
		contacts:  contacts,
		tasks:     tasks,
		shipments: shipments,
		orders:    orders,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}
}

func (s *CustomerService) List(ctx context.Context) ([]*models.Customer, error) {
	customers, err := s.customers.List(ctx, store.CustomerFilter{})
	if err != nil {
		return nil, wrapStoreErr(err, "customers")
	}
	return customers, nil
}

// ListWithRelations returns every customer with contacts, tasks, shipments
// and orders attached.
func (s *CustomerService) ListWithRelations(ctx context.Context) ([]*models.CustomerWithRelations, error) {
	customers, err := s.customers.List(ctx, store.CustomerFilter{})
	if err != nil {
		return nil, wrapStoreErr(err, "customers")
	}

	out := make([]*models.CustomerWithRelations, 0, len(customers))
	for _, c := range customers {
		full, err := s.attachRelations(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, full)
	}
	return out, nil
}

func (s *CustomerService) Get(ctx context.Context, id domain.CustomerID) (*models.Customer, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "customer")
	}
	return c, nil
}

// GetByEmail looks a customer up by its unique email.
func (s *CustomerService) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	c, err := s.customers.FindByEmail(ctx, email)
	if err != nil {
		return nil, wrapStoreErr(err, "customer")
	}
	return c, nil
}

func (s *CustomerService) GetWithRelations(ctx context.Context, id domain.CustomerID) (*models.CustomerWithRelations, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "customer")
	}
	return s.attachRelations(ctx, c)
}

func (s *CustomerService) Add(ctx context.Context, payload models.CreateCustomer) (*models.Customer, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	c := &models.Customer{
		ID:             domain.NewCustomerID(),
		Name:           payload.Name,
		Email:          payload.Email,
		Phone:          payload.Phone,
		Company:        payload.Company,
		Address:        payload.Address,
		City:           payload.City,
		State:          payload.State,
		ZipCode:        payload.ZipCode,
		Country:        payload.Country,
		Website:        payload.Website,
		VATNumber:      payload.VATNumber,
		Industry:       payload.Industry,
		Tags:           payload.Tags,
		Notes:          payload.Notes,
		NeedsAttention: payload.NeedsAttention,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}

	if err := s.customers.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "customer email must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create customer")
	}

	s.logger.InfoContext(ctx, "customer created", "customer_id", c.ID)
	s.metrics.IncrementCustomerCreated()
	return c, nil
}

// Update merges the provided fields into the stored customer. Absent fields
// are untouched.
func (s *CustomerService) Update(ctx context.Context, id domain.CustomerID, payload models.UpdateCustomer) (*models.Customer, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}

	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "customer")
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&c.Name, payload.Name)
	applyString(&c.Email, payload.Email)
	applyString(&c.Phone, payload.Phone)
	applyString(&c.Company, payload.Company)
	applyString(&c.Address, payload.Address)
	applyString(&c.City, payload.City)
	applyString(&c.State, payload.State)
	applyString(&c.ZipCode, payload.ZipCode)
	applyString(&c.Country, payload.Country)
	applyString(&c.Website, payload.Website)
	applyString(&c.VATNumber, payload.VATNumber)
	applyString(&c.Industry, payload.Industry)
	applyString(&c.Notes, payload.Notes)
	if payload.Tags != nil {
		c.Tags = *payload.Tags
		if c.Tags == nil {
			c.Tags = []string{}
		}
	}
	if payload.NeedsAttention != nil {
		c.NeedsAttention = *payload.NeedsAttention
	}
	c.UpdatedAt = requestcontext.Now(ctx)

	if err := s.customers.Update(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "customer email must be unique")
		}
		return nil, wrapStoreErr(err, "customer")
	}
	return c, nil
}

// Delete removes a customer and its contacts. Tasks referencing the customer
// keep existing with the reference cleared. Customers with orders or
// shipments cannot be deleted; financial and logistics history stays intact.
func (s *CustomerService) Delete(ctx context.Context, id domain.CustomerID) error {
	if _, err := s.customers.FindByID(ctx, id); err != nil {
		return wrapStoreErr(err, "customer")
	}

	orderCount, err := s.orders.Count(ctx, store.OrderFilter{CustomerID: &id})
	if err != nil {
		return wrapStoreErr(err, "orders")
	}
	shipmentCount, err := s.shipments.Count(ctx, store.ShipmentFilter{CustomerID: &id})
	if err != nil {
		return wrapStoreErr(err, "shipments")
	}
	if orderCount > 0 || shipmentCount > 0 {
		return dErrors.New(dErrors.CodeConflict, "customer has orders or shipments and cannot be deleted")
	}

	if err := s.tasks.ClearCustomer(ctx, id); err != nil {
		return wrapStoreErr(err, "tasks")
	}
	if err := s.contacts.DeleteByCustomer(ctx, id); err != nil {
		return wrapStoreErr(err, "contacts")
	}
	if err := s.customers.Delete(ctx, id); err != nil {
		return wrapStoreErr(err, "customer")
	}

	s.logger.InfoContext(ctx, "customer deleted", "customer_id", id)
	return nil
}

// Search finds customers whose own fields, contacts, or decoded tags contain
// the query. An empty query returns everything. Matches from the three
// sources are unioned and deduplicated by ID.
func (s *CustomerService) Search(ctx context.Context, query string) ([]*models.Customer, error) {
	start := time.Now()
	defer s.metrics.ObserveSearch(start)

	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}

	matchIDs, err := s.contactMatchIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	tagIDs, err := s.tagMatchIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	matchIDs = append(matchIDs, tagIDs...)

	customers, err := s.customers.List(ctx, store.CustomerFilter{Query: query, MatchIDs: matchIDs})
	if err != nil {
		return nil, wrapStoreErr(err, "customers")
	}
	return customers, nil
}

// contactMatchIDs collects the IDs of customers with a matching contact.
func (s *CustomerService) contactMatchIDs(ctx context.Context, query string) ([]domain.CustomerID, error) {
	contacts, err := s.contacts.List(ctx, store.ContactFilter{Query: query})
	if err != nil {
		return nil, wrapStoreErr(err, "contacts")
	}
	seen := make(map[domain.CustomerID]struct{}, len(contacts))
	ids := make([]domain.CustomerID, 0, len(contacts))
	for _, c := range contacts {
		if _, ok := seen[c.CustomerID]; ok {
			continue
		}
		seen[c.CustomerID] = struct{}{}
		ids = append(ids, c.CustomerID)
	}
	return ids, nil
}

// tagMatchIDs collects the IDs of customers with a tag containing the query.
// Tag matching happens here, after decode; it is never pushed into SQL.
func (s *CustomerService) tagMatchIDs(ctx context.Context, query string) ([]domain.CustomerID, error) {
	customers, err := s.customers.List(ctx, store.CustomerFilter{})
	if err != nil {
		return nil, wrapStoreErr(err, "customers")
	}
	lowered := strings.ToLower(query)
	var ids []domain.CustomerID
	for _, c := range customers {
		for _, tag := range c.Tags {
			if strings.Contains(strings.ToLower(tag), lowered) {
				ids = append(ids, c.ID)
				break
			}
		}
	}
	return ids, nil
}

// FilterByTag returns customers carrying the exact tag.
func (s *CustomerService) FilterByTag(ctx context.Context, tag string) ([]*models.Customer, error) {
	customers, err := s.customers.List(ctx, store.CustomerFilter{})
	if err != nil {
		return nil, wrapStoreErr(err, "customers")
	}
	out := make([]*models.Customer, 0)
	for _, c := range customers {
		if c.HasTag(tag) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CustomerService) FilterByIndustry(ctx context.Context, industry string) ([]*models.Customer, error) {
	customers, err := s.customers.List(ctx, store.CustomerFilter{Industry: industry})
	if err != nil {
		return nil, wrapStoreErr(err, "customers")
	}
	return customers, nil
}

func (s *CustomerService) FilterByCountry(ctx context.Context, country string) ([]*models.Customer, error) {
	customers, err := s.customers.List(ctx, store.CustomerFilter{Country: country})
	if err != nil {
		return nil, wrapStoreErr(err, "customers")
	}
	return customers, nil
}

// AddTag appends a tag unless the customer already carries it.
func (s *CustomerService) AddTag(ctx context.Context, id domain.CustomerID, tag string) (*models.Customer, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tag must not be empty")
	}

	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "customer")
	}
	if c.HasTag(tag) {
		return c, nil
	}

	c.Tags = append(c.Tags, tag)
	c.UpdatedAt = requestcontext.Now(ctx)
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, wrapStoreErr(err, "customer")
	}
	return c, nil
}

// RemoveTag drops every occurrence of the tag.
func (s *CustomerService) RemoveTag(ctx context.Context, id domain.CustomerID, tag string) (*models.Customer, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "customer")
	}

	kept := make([]string, 0, len(c.Tags))
	for _, t := range c.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(c.Tags) {
		return c, nil
	}

	c.Tags = kept
	c.UpdatedAt = requestcontext.Now(ctx)
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, wrapStoreErr(err, "customer")
	}
	return c, nil
}

// MarkAttention flags the customer for follow-up.
func (s *CustomerService) MarkAttention(ctx context.Context, id domain.CustomerID) (*models.Customer, error) {
	return s.setAttention(ctx, id, true)
}

// ClearAttention removes the follow-up flag.
func (s *CustomerService) ClearAttention(ctx context.Context, id domain.CustomerID) (*models.Customer, error) {
	return s.setAttention(ctx, id, false)
}

func (s *CustomerService) setAttention(ctx context.Context, id domain.CustomerID, attention bool) (*models.Customer, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "customer")
	}
	if c.NeedsAttention == attention {
		return c, nil
	}
	c.NeedsAttention = attention
	c.UpdatedAt = requestcontext.Now(ctx)
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, wrapStoreErr(err, "customer")
	}
	return c, nil
}

// ListNeedingAttention returns customers flagged for follow-up.
func (s *CustomerService) ListNeedingAttention(ctx context.Context) ([]*models.Customer, error) {
	attention := true
	customers, err := s.customers.List(ctx, store.CustomerFilter{NeedsAttention: &attention})
	if err != nil {
		return nil, wrapStoreErr(err, "customers")
	}
	return customers, nil
}

// AddContact creates a contact under an existing customer.
func (s *CustomerService) AddContact(ctx context.Context, customerID domain.CustomerID, payload models.CreateContact) (*models.Contact, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return nil, wrapStoreErr(err, "customer")
	}

	now := requestcontext.Now(ctx)
	c := &models.Contact{
		ID:         domain.NewContactID(),
		CustomerID: customerID,
		Name:       payload.Name,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Role:       payload.Role,
		IsPrimary:  payload.IsPrimary,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, wrapStoreErr(err, "contact")
	}

	s.metrics.IncrementContactCreated()
	return c, nil
}

// ListContacts returns the contacts of one customer.
func (s *CustomerService) ListContacts(ctx context.Context, customerID domain.CustomerID) ([]*models.Contact, error) {
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return nil, wrapStoreErr(err, "customer")
	}
	contacts, err := s.contacts.List(ctx, store.ContactFilter{CustomerID: &customerID})
	if err != nil {
		return nil, wrapStoreErr(err, "contacts")
	}
	return contacts, nil
}

// RemoveContact deletes a single contact.
func (s *CustomerService) RemoveContact(ctx context.Context, id domain.ContactID) error {
	if err := s.contacts.Delete(ctx, id); err != nil {
		return wrapStoreErr(err, "contact")
	}
	return nil
}

func (s *CustomerService) attachRelations(ctx context.Context, c *models.Customer) (*models.CustomerWithRelations, error) {
	contacts, err := s.contacts.List(ctx, store.ContactFilter{CustomerID: &c.ID})
	if err != nil {
		return nil, wrapStoreErr(err, "contacts")
	}
	tasks, err := s.tasks.List(ctx, store.TaskFilter{CustomerID: &c.ID})
	if err != nil {
		return nil, wrapStoreErr(err, "tasks")
	}
	shipments, err := s.shipments.List(ctx, store.ShipmentFilter{CustomerID: &c.ID})
	if err != nil {
		return nil, wrapStoreErr(err, "shipments")
	}
	orders, err := s.orders.List(ctx, store.OrderFilter{CustomerID: &c.ID})
	if err != nil {
		return nil, wrapStoreErr(err, "orders")
	}
	return &models.CustomerWithRelations{
		Customer:  *c,
		Contacts:  contacts,
		Tasks:     tasks,
		Shipments: shipments,
		Orders:    orders,
	}, nil
}
