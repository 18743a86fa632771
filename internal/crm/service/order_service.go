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

// OrderService manages orders, their owned items and the revenue view over
// them.
type OrderService struct {
	orders    OrderStore
	customers CustomerStore
	shipments ShipmentStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewOrderService(orders OrderStore, customers CustomerStore, shipments ShipmentStore, opts ...Option) *OrderService {
	cfg := applyOptions(opts)
	return &OrderService{
		orders:    orders,
		customers: customers,
		shipments: shipments,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}
}

func (s *OrderService) List(ctx context.Context) ([]*models.Order, error) {
	orders, err := s.orders.List(ctx, store.OrderFilter{})
	if err != nil {
		return nil, wrapStoreErr(err, "orders")
	}
	return orders, nil
}

// ListWithRelations returns every order with its items attached.
func (s *OrderService) ListWithRelations(ctx context.Context) ([]*models.OrderWithItems, error) {
	orders, err := s.orders.ListWithItems(ctx, store.OrderFilter{})
	if err != nil {
		return nil, wrapStoreErr(err, "orders")
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id domain.OrderID) (*models.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "order")
	}
	return o, nil
}

func (s *OrderService) GetWithRelations(ctx context.Context, id domain.OrderID) (*models.OrderWithItems, error) {
	o, err := s.orders.FindByIDWithItems(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "order")
	}
	return o, nil
}

// ListByCustomer returns a customer's orders. An unknown customer yields an
// empty list.
func (s *OrderService) ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]*models.Order, error) {
	orders, err := s.orders.List(ctx, store.OrderFilter{CustomerID: &customerID})
	if err != nil {
		return nil, wrapStoreErr(err, "orders")
	}
	return orders, nil
}

func (s *OrderService) ListByStatus(ctx context.Context, status models.OrderStatus) ([]*models.Order, error) {
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown order status %q", status)
	}
	orders, err := s.orders.List(ctx, store.OrderFilter{Status: &status})
	if err != nil {
		return nil, wrapStoreErr(err, "orders")
	}
	return orders, nil
}

// Recent returns orders placed within the trailing window. Zero or negative
// days means the default of seven.
func (s *OrderService) Recent(ctx context.Context, days int) ([]*models.Order, error) {
	if days <= 0 {
		days = 7
	}
	since := requestcontext.Now(ctx).Add(-time.Duration(days) * 24 * time.Hour)
	orders, err := s.orders.List(ctx, store.OrderFilter{OrderedSince: &since})
	if err != nil {
		return nil, wrapStoreErr(err, "orders")
	}
	return orders, nil
}

// Add creates an order and its nested items. Item rows are written after the
// order row; a failed item leaves the order in place and is reported.
func (s *OrderService) Add(ctx context.Context, payload models.CreateOrder) (*models.OrderWithItems, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}
	if _, err := s.customers.FindByID(ctx, payload.CustomerID); err != nil {
		return nil, wrapStoreErr(err, "customer")
	}

	now := requestcontext.Now(ctx)
	orderDate := now
	if payload.OrderDate != nil {
		orderDate = *payload.OrderDate
	}
	o := &models.Order{
		ID:          domain.NewOrderID(),
		OrderNumber: payload.OrderNumber,
		CustomerID:  payload.CustomerID,
		Status:      payload.Status,
		OrderDate:   orderDate,
		DueDate:     payload.DueDate,
		TotalAmount: payload.TotalAmount,
		Notes:       payload.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if o.Status == "" {
		o.Status = models.OrderPending
	}

	if err := s.orders.Create(ctx, o); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "order number must be unique")
		}
		return nil, wrapStoreErr(err, "order")
	}

	items := make([]*models.OrderItem, 0, len(payload.Items))
	for _, itemPayload := range payload.Items {
		item := buildItem(o.ID, itemPayload, now)
		if err := s.orders.AddItem(ctx, item); err != nil {
			s.logger.ErrorContext(ctx, "order item creation failed",
				"order_id", o.ID, "product_name", item.ProductName, "error", err)
			return nil, wrapStoreErr(err, "order item")
		}
		items = append(items, item)
	}

	s.logger.InfoContext(ctx, "order created", "order_id", o.ID, "order_number", o.OrderNumber)
	s.metrics.IncrementOrderCreated()
	return &models.OrderWithItems{Order: *o, Items: items}, nil
}

// AddItem appends a line to an existing order.
func (s *OrderService) AddItem(ctx context.Context, orderID domain.OrderID, payload models.CreateOrderItem) (*models.OrderItem, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, wrapStoreErr(err, "order")
	}

	item := buildItem(orderID, payload, requestcontext.Now(ctx))
	if err := s.orders.AddItem(ctx, item); err != nil {
		return nil, wrapStoreErr(err, "order item")
	}
	return item, nil
}

// buildItem constructs an item row. A zero total price is defaulted to
// quantity times unit price; a caller-supplied total is trusted as-is.
func buildItem(orderID domain.OrderID, payload models.CreateOrderItem, now time.Time) *models.OrderItem {
	total := payload.TotalPrice
	if total == 0 {
		total = float64(payload.Quantity) * payload.UnitPrice
	}
	return &models.OrderItem{
		ID:          domain.NewOrderItemID(),
		OrderID:     orderID,
		ProductName: payload.ProductName,
		Description: payload.Description,
		Quantity:    payload.Quantity,
		UnitPrice:   payload.UnitPrice,
		TotalPrice:  total,
		CreatedAt:   now,
	}
}

// Update merges the provided fields. Items are never mass-updated here; use
// AddItem for new lines.
func (s *OrderService) Update(ctx context.Context, id domain.OrderID, payload models.UpdateOrder) (*models.Order, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}

	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "order")
	}

	if payload.Status != nil {
		o.Status = *payload.Status
	}
	if payload.OrderDate != nil {
		o.OrderDate = *payload.OrderDate
	}
	if payload.DueDate != nil {
		o.DueDate = payload.DueDate
	}
	if payload.TotalAmount != nil {
		o.TotalAmount = *payload.TotalAmount
	}
	if payload.Notes != nil {
		o.Notes = *payload.Notes
	}
	o.UpdatedAt = requestcontext.Now(ctx)

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, wrapStoreErr(err, "order")
	}
	return o, nil
}

// UpdateStatus transitions the order.
func (s *OrderService) UpdateStatus(ctx context.Context, id domain.OrderID, status models.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown order status %q", status)
	}

	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "order")
	}

	o.Status = status
	o.UpdatedAt = requestcontext.Now(ctx)
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, wrapStoreErr(err, "order")
	}
	return o, nil
}

// LinkToShipment attaches an order to a shipment. The shipment must resolve.
func (s *OrderService) LinkToShipment(ctx context.Context, id domain.OrderID, shipmentID domain.ShipmentID) (*models.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "order")
	}
	if _, err := s.shipments.FindByID(ctx, shipmentID); err != nil {
		return nil, wrapStoreErr(err, "shipment")
	}

	o.ShipmentID = &shipmentID
	o.UpdatedAt = requestcontext.Now(ctx)
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, wrapStoreErr(err, "order")
	}

	s.logger.InfoContext(ctx, "order linked to shipment", "order_id", id, "shipment_id", shipmentID)
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, id domain.OrderID) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return wrapStoreErr(err, "order")
	}
	return nil
}

// Search matches the order number and the product names and descriptions of
// owned items; an order matching both appears once. An empty query returns
// everything.
func (s *OrderService) Search(ctx context.Context, query string) ([]*models.Order, error) {
	start := time.Now()
	defer s.metrics.ObserveSearch(start)

	query = strings.TrimSpace(query)
	orders, err := s.orders.List(ctx, store.OrderFilter{Query: query, ItemQuery: query})
	if err != nil {
		return nil, wrapStoreErr(err, "orders")
	}
	return orders, nil
}

// TotalRevenue sums the total amount of non-cancelled orders. A positive
// days value restricts the sum to the trailing window; zero or negative
// means all time. An empty result is zero revenue, not an error.
func (s *OrderService) TotalRevenue(ctx context.Context, days int) (float64, error) {
	cancelled := models.OrderCancelled
	f := store.OrderFilter{StatusNot: &cancelled}
	if days > 0 {
		since := requestcontext.Now(ctx).Add(-time.Duration(days) * 24 * time.Hour)
		f.OrderedSince = &since
	}

	sum, err := s.orders.SumTotalAmount(ctx, f)
	if err != nil {
		return 0, wrapStoreErr(err, "orders")
	}
	return sum, nil
}
