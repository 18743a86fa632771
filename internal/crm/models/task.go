package models

import (
	"time"

	"bizdesk/pkg/domain"
)

// Priority orders tasks for triage.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid checks membership in the closed priority set.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskCancelled  TaskStatus = "CANCELLED"
	TaskOnHold     TaskStatus = "ON_HOLD"
)

// IsValid checks membership in the closed status set.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCancelled, TaskOnHold:
		return true
	}
	return false
}

// Task is a unit of follow-up work, optionally tied to a customer, shipment
// or order. Any, all, or none of the references may be set.
//
// Invariant: CompletedAt is non-nil if and only if Status is COMPLETED. The
// task service maintains this on every status transition; the stores never
// touch it.
type Task struct {
	ID             domain.TaskID      `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description,omitempty"`
	Priority       Priority           `json:"priority"`
	Status         TaskStatus         `json:"status"`
	DueDate        *time.Time         `json:"due_date,omitempty"`
	AssignedTo     string             `json:"assigned_to,omitempty"`
	CustomerID     *domain.CustomerID `json:"customer_id,omitempty"`
	ShipmentID     *domain.ShipmentID `json:"shipment_id,omitempty"`
	OrderID        *domain.OrderID    `json:"order_id,omitempty"`
	Tags           []string           `json:"tags"`
	EstimatedHours *float64           `json:"estimated_hours,omitempty"`
	ActualHours    *float64           `json:"actual_hours,omitempty"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// IsComplete reports whether the task has reached COMPLETED.
func (t *Task) IsComplete() bool { return t.Status == TaskCompleted }

// ApplyStatus transitions the task, maintaining the CompletedAt invariant.
func (t *Task) ApplyStatus(status TaskStatus, now time.Time) {
	t.Status = status
	if status == TaskCompleted {
		completed := now
		t.CompletedAt = &completed
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
}
