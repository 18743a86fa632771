// Package service holds the entity managers. Each manager validates input,
// orchestrates its stores and translates infrastructure sentinels into coded
// domain errors; transport layers above only ever see codes.
package service

import (
	"context"
	"errors"
	"log/slog"

	"bizdesk/internal/crm/metrics"
	"bizdesk/internal/crm/models"
	"bizdesk/internal/crm/store"
	"bizdesk/pkg/domain"
	dErrors "bizdesk/pkg/domain-errors"
	"bizdesk/pkg/platform/sentinel"
)

// CustomerStore is the persistence surface the customer manager needs.
type CustomerStore interface {
	List(ctx context.Context, f store.CustomerFilter) ([]*models.Customer, error)
	FindByID(ctx context.Context, id domain.CustomerID) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	Create(ctx context.Context, c *models.Customer) error
	Update(ctx context.Context, c *models.Customer) error
	Delete(ctx context.Context, id domain.CustomerID) error
}

// ContactStore is the persistence surface for customer contacts.
type ContactStore interface {
	List(ctx context.Context, f store.ContactFilter) ([]*models.Contact, error)
	FindByID(ctx context.Context, id domain.ContactID) (*models.Contact, error)
	Create(ctx context.Context, c *models.Contact) error
	Delete(ctx context.Context, id domain.ContactID) error
	DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error
}

// TaskStore is the persistence surface the task manager needs.
type TaskStore interface {
	List(ctx context.Context, f store.TaskFilter) ([]*models.Task, error)
	Count(ctx context.Context, f store.TaskFilter) (int, error)
	FindByID(ctx context.Context, id domain.TaskID) (*models.Task, error)
	Create(ctx context.Context, t *models.Task) error
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id domain.TaskID) error
	ClearCustomer(ctx context.Context, customerID domain.CustomerID) error
}

// ShipmentStore is the persistence surface the shipment manager needs.
type ShipmentStore interface {
	List(ctx context.Context, f store.ShipmentFilter) ([]*models.Shipment, error)
	Count(ctx context.Context, f store.ShipmentFilter) (int, error)
	FindByID(ctx context.Context, id domain.ShipmentID) (*models.Shipment, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	Create(ctx context.Context, sh *models.Shipment) error
	Update(ctx context.Context, sh *models.Shipment) error
	Delete(ctx context.Context, id domain.ShipmentID) error
}

// OrderStore is the persistence surface the order manager needs. Items are
// owned by their order.
type OrderStore interface {
	List(ctx context.Context, f store.OrderFilter) ([]*models.Order, error)
	ListWithItems(ctx context.Context, f store.OrderFilter) ([]*models.OrderWithItems, error)
	Count(ctx context.Context, f store.OrderFilter) (int, error)
	SumTotalAmount(ctx context.Context, f store.OrderFilter) (float64, error)
	FindByID(ctx context.Context, id domain.OrderID) (*models.Order, error)
	FindByIDWithItems(ctx context.Context, id domain.OrderID) (*models.OrderWithItems, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	Create(ctx context.Context, o *models.Order) error
	Update(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id domain.OrderID) error
	AddItem(ctx context.Context, item *models.OrderItem) error
	ListItems(ctx context.Context, orderID domain.OrderID) ([]*models.OrderItem, error)
}

type serviceConfig struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a manager at construction.
type Option func(cfg *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serviceConfig) {
		cfg.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *serviceConfig) {
		cfg.metrics = m
	}
}

func applyOptions(opts []Option) *serviceConfig {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg
}

// wrapStoreErr translates an infrastructure sentinel into the coded error
// transport layers map to a status. entity names what was being operated on.
func wrapStoreErr(err error, entity string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Newf(dErrors.CodeConflict, "%s conflicts with existing data", entity)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to access "+entity)
	}
}
