package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bizdesk/internal/crm/metrics"
	"bizdesk/internal/crm/models"
	"bizdesk/internal/crm/store"
	"bizdesk/internal/crm/validate"
	"bizdesk/pkg/domain"
	dErrors "bizdesk/pkg/domain-errors"
	"bizdesk/pkg/requestcontext"
)

// TaskService manages follow-up work items and their optional links to
// customers, shipments and orders.
type TaskService struct {
	tasks     TaskStore
	customers CustomerStore
	shipments ShipmentStore
	orders    OrderStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewTaskService(tasks TaskStore, customers CustomerStore, shipments ShipmentStore,
	orders OrderStore, opts ...Option) *TaskService {
	cfg := applyOptions(opts)
	return &TaskService{
		tasks:     tasks,
		customers: customers,
		shipments: shipments,
		orders:    orders,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}
}

func (s *TaskService) List(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.tasks.List(ctx, store.TaskFilter{})
	if err != nil {
		return nil, wrapStoreErr(err, "tasks")
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id domain.TaskID) (*models.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "task")
	}
	return t, nil
}

func (s *TaskService) Add(ctx context.Context, payload models.CreateTask) (*models.Task, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, payload.CustomerID, payload.ShipmentID, payload.OrderID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	t := &models.Task{
		ID:             domain.NewTaskID(),
		Title:          payload.Title,
		Description:    payload.Description,
		Priority:       payload.Priority,
		Status:         payload.Status,
		DueDate:        payload.DueDate,
		AssignedTo:     payload.AssignedTo,
		CustomerID:     payload.CustomerID,
		ShipmentID:     payload.ShipmentID,
		OrderID:        payload.OrderID,
		Tags:           payload.Tags,
		EstimatedHours: payload.EstimatedHours,
		ActualHours:    payload.ActualHours,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Status == "" {
		t.Status = models.TaskPending
	}
	if t.Status == models.TaskCompleted {
		t.CompletedAt = &now
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, wrapStoreErr(err, "task")
	}

	s.logger.InfoContext(ctx, "task created", "task_id", t.ID, "priority", t.Priority)
	s.metrics.IncrementTaskCreated()
	return t, nil
}

// Update merges the provided fields. Status changes go through ApplyStatus so
// the CompletedAt invariant holds.
func (s *TaskService) Update(ctx context.Context, id domain.TaskID, payload models.UpdateTask) (*models.Task, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}

	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "task")
	}

	now := requestcontext.Now(ctx)
	if payload.Title != nil {
		t.Title = *payload.Title
	}
	if payload.Description != nil {
		t.Description = *payload.Description
	}
	if payload.Priority != nil {
		t.Priority = *payload.Priority
	}
	if payload.DueDate != nil {
		t.DueDate = payload.DueDate
	}
	if payload.AssignedTo != nil {
		t.AssignedTo = *payload.AssignedTo
	}
	if payload.Tags != nil {
		t.Tags = *payload.Tags
		if t.Tags == nil {
			t.Tags = []string{}
		}
	}
	if payload.EstimatedHours != nil {
		t.EstimatedHours = payload.EstimatedHours
	}
	if payload.ActualHours != nil {
		t.ActualHours = payload.ActualHours
	}
	if payload.Status != nil {
		t.ApplyStatus(*payload.Status, now)
	} else {
		t.UpdatedAt = now
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, wrapStoreErr(err, "task")
	}
	return t, nil
}

// Complete transitions a task to COMPLETED and stamps CompletedAt.
func (s *TaskService) Complete(ctx context.Context, id domain.TaskID) (*models.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "task")
	}

	t.ApplyStatus(models.TaskCompleted, requestcontext.Now(ctx))
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, wrapStoreErr(err, "task")
	}

	s.metrics.IncrementTaskCompleted()
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id domain.TaskID) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return wrapStoreErr(err, "task")
	}
	return nil
}

// ListByPriority returns open tasks at the given priority. Completed tasks
// are excluded; a done task no longer competes for triage.
func (s *TaskService) ListByPriority(ctx context.Context, priority models.Priority) ([]*models.Task, error) {
	if !priority.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown priority %q", priority)
	}
	completed := models.TaskCompleted
	tasks, err := s.tasks.List(ctx, store.TaskFilter{Priority: &priority, StatusNot: &completed})
	if err != nil {
		return nil, wrapStoreErr(err, "tasks")
	}
	return tasks, nil
}

func (s *TaskService) ListByStatus(ctx context.Context, status models.TaskStatus) ([]*models.Task, error) {
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown task status %q", status)
	}
	tasks, err := s.tasks.List(ctx, store.TaskFilter{Status: &status})
	if err != nil {
		return nil, wrapStoreErr(err, "tasks")
	}
	return tasks, nil
}

// Urgent returns URGENT tasks that are not yet completed.
func (s *TaskService) Urgent(ctx context.Context) ([]*models.Task, error) {
	return s.ListByPriority(ctx, models.PriorityUrgent)
}

// Overdue returns tasks whose due date has passed and that are not completed.
func (s *TaskService) Overdue(ctx context.Context) ([]*models.Task, error) {
	now := requestcontext.Now(ctx)
	completed := models.TaskCompleted
	tasks, err := s.tasks.List(ctx, store.TaskFilter{DueBefore: &now, StatusNot: &completed})
	if err != nil {
		return nil, wrapStoreErr(err, "tasks")
	}
	return tasks, nil
}

// ListByCustomer returns the tasks referencing a customer. An unknown
// customer yields an empty list, not an error.
func (s *TaskService) ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]*models.Task, error) {
	tasks, err := s.tasks.List(ctx, store.TaskFilter{CustomerID: &customerID})
	if err != nil {
		return nil, wrapStoreErr(err, "tasks")
	}
	return tasks, nil
}

func (s *TaskService) ListByShipment(ctx context.Context, shipmentID domain.ShipmentID) ([]*models.Task, error) {
	tasks, err := s.tasks.List(ctx, store.TaskFilter{ShipmentID: &shipmentID})
	if err != nil {
		return nil, wrapStoreErr(err, "tasks")
	}
	return tasks, nil
}

func (s *TaskService) ListByOrder(ctx context.Context, orderID domain.OrderID) ([]*models.Task, error) {
	tasks, err := s.tasks.List(ctx, store.TaskFilter{OrderID: &orderID})
	if err != nil {
		return nil, wrapStoreErr(err, "tasks")
	}
	return tasks, nil
}

// Search matches title and description. An empty query returns everything.
func (s *TaskService) Search(ctx context.Context, query string) ([]*models.Task, error) {
	start := time.Now()
	defer s.metrics.ObserveSearch(start)

	tasks, err := s.tasks.List(ctx, store.TaskFilter{Query: strings.TrimSpace(query)})
	if err != nil {
		return nil, wrapStoreErr(err, "tasks")
	}
	return tasks, nil
}

// CreateCustomerFollowUp creates a standard follow-up task for a customer,
// due in seven days unless a due date is given.
func (s *TaskService) CreateCustomerFollowUp(ctx context.Context, customerID domain.CustomerID, title, description string, dueDate *time.Time) (*models.Task, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, wrapStoreErr(err, "customer")
	}

	now := requestcontext.Now(ctx)
	if dueDate == nil {
		due := now.Add(7 * 24 * time.Hour)
		dueDate = &due
	}
	if title == "" {
		title = fmt.Sprintf("Follow up with %s", c.Name)
	}

	return s.Add(ctx, models.CreateTask{
		Title:       title,
		Description: description,
		Priority:    models.PriorityMedium,
		Status:      models.TaskPending,
		DueDate:     dueDate,
		CustomerID:  &customerID,
		Tags:        []string{"follow-up"},
	})
}

// CreateShipmentTask creates a task tied to a shipment, tagged "shipment".
func (s *TaskService) CreateShipmentTask(ctx context.Context, shipmentID domain.ShipmentID, title, description string, priority models.Priority) (*models.Task, error) {
	sh, err := s.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, wrapStoreErr(err, "shipment")
	}

	if priority == "" {
		priority = models.PriorityMedium
	}
	if title == "" {
		title = fmt.Sprintf("Check shipment %s", sh.TrackingNumber)
	}

	return s.Add(ctx, models.CreateTask{
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      models.TaskPending,
		ShipmentID:  &shipmentID,
		CustomerID:  &sh.CustomerID,
		Tags:        []string{"shipment"},
	})
}

// checkReferences resolves each provided entity reference before a task is
// created against it.
func (s *TaskService) checkReferences(ctx context.Context, customerID *domain.CustomerID,
	shipmentID *domain.ShipmentID, orderID *domain.OrderID) error {
	if customerID != nil {
		if _, err := s.customers.FindByID(ctx, *customerID); err != nil {
			return wrapStoreErr(err, "customer")
		}
	}
	if shipmentID != nil {
		if _, err := s.shipments.FindByID(ctx, *shipmentID); err != nil {
			return wrapStoreErr(err, "shipment")
		}
	}
	if orderID != nil {
		if _, err := s.orders.FindByID(ctx, *orderID); err != nil {
			return wrapStoreErr(err, "order")
		}
	}
	return nil
}
