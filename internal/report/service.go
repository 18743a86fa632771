// Package report aggregates the entity managers into dashboard views and a
// rendered daily business report.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bizdesk/internal/crm/metrics"
	"bizdesk/internal/crm/models"
	strutil "bizdesk/pkg/platform/strings"
	"bizdesk/pkg/requestcontext"
)

// reportWindowDays is the trailing window used for the revenue and order
// figures on the dashboard and daily report.
const reportWindowDays = 30

// CustomerSource is the slice of the customer manager the reports read.
type CustomerSource interface {
	List(ctx context.Context) ([]*models.Customer, error)
	ListNeedingAttention(ctx context.Context) ([]*models.Customer, error)
}

// TaskSource is the slice of the task manager the reports read.
type TaskSource interface {
	List(ctx context.Context) ([]*models.Task, error)
	Urgent(ctx context.Context) ([]*models.Task, error)
	Overdue(ctx context.Context) ([]*models.Task, error)
}

// ShipmentSource is the slice of the shipment manager the reports read.
type ShipmentSource interface {
	List(ctx context.Context) ([]*models.Shipment, error)
	Pending(ctx context.Context) ([]*models.Shipment, error)
	Overdue(ctx context.Context) ([]*models.Shipment, error)
}

// OrderSource is the slice of the order manager the reports read.
type OrderSource interface {
	Recent(ctx context.Context, days int) ([]*models.Order, error)
	TotalRevenue(ctx context.Context, days int) (float64, error)
}

// Service builds read-only aggregations over the entity managers. It holds
// no state of its own.
type Service struct {
	customers CustomerSource
	tasks     TaskSource
	shipments ShipmentSource
	orders    OrderSource
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics sink. A nil sink disables collection.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(customers CustomerSource, tasks TaskSource, shipments ShipmentSource,
	orders OrderSource, opts ...Option) *Service {
	s := &Service{
		customers: customers,
		tasks:     tasks,
		shipments: shipments,
		orders:    orders,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard assembles the landing-page snapshot.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	start := time.Now()
	defer s.metrics.ObserveReport(start)

	pending, err := s.shipments.Pending(ctx)
	if err != nil {
		return nil, err
	}
	urgent, err := s.tasks.Urgent(ctx)
	if err != nil {
		return nil, err
	}
	attention, err := s.customers.ListNeedingAttention(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.orders.Recent(ctx, reportWindowDays)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orders.TotalRevenue(ctx, reportWindowDays)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		PendingShipments:          pending,
		UrgentTasks:               urgent,
		CustomersNeedingAttention: attention,
		RecentOrderCount:          len(recent),
		TotalRevenue:              revenue,
	}, nil
}

// TasksSummary counts the task book. Due today means the calendar day of the
// request clock, in its location.
func (s *Service) TasksSummary(ctx context.Context) (*TasksSummary, error) {
	all, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	urgent, err := s.tasks.Urgent(ctx)
	if err != nil {
		return nil, err
	}
	overdue, err := s.tasks.Overdue(ctx)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	summary := &TasksSummary{
		Total:    len(all),
		Urgent:   len(urgent),
		Overdue:  len(overdue),
		DueToday: len(dueToday(all, now)),
	}
	for _, t := range all {
		if t.Status != models.TaskCompleted {
			summary.Incomplete++
		}
	}
	summary.Completed = summary.Total - summary.Incomplete
	return summary, nil
}

// ShipmentsSummary counts shipments by lifecycle state.
func (s *Service) ShipmentsSummary(ctx context.Context) (*ShipmentsSummary, error) {
	all, err := s.shipments.List(ctx)
	if err != nil {
		return nil, err
	}
	overdue, err := s.shipments.Overdue(ctx)
	if err != nil {
		return nil, err
	}

	summary := &ShipmentsSummary{
		Total:        len(all),
		Overdue:      len(overdue),
		StatusCounts: make(map[models.ShipmentStatus]int),
	}
	for _, sh := range all {
		summary.StatusCounts[sh.Status]++
		if sh.Status == models.ShipmentPending {
			summary.Pending++
		}
	}
	return summary, nil
}

// CustomersSummary describes the customer book. Industries, countries and
// tags are distinct, in first-seen order.
func (s *Service) CustomersSummary(ctx context.Context) (*CustomersSummary, error) {
	all, err := s.customers.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &CustomersSummary{Total: len(all)}
	var industries, countries, tags []string
	for _, c := range all {
		if c.NeedsAttention {
			summary.NeedingAttention++
		}
		industries = append(industries, c.Industry)
		countries = append(countries, c.Country)
		tags = append(tags, c.Tags...)
	}
	summary.Industries = strutil.DedupeAndTrim(industries)
	summary.Countries = strutil.DedupeAndTrim(countries)
	summary.Tags = strutil.DedupeAndTrim(tags)
	return summary, nil
}

// AttentionItems itemizes everything flagged for follow-up.
func (s *Service) AttentionItems(ctx context.Context) (*AttentionItems, error) {
	customers, err := s.customers.ListNeedingAttention(ctx)
	if err != nil {
		return nil, err
	}
	urgent, err := s.tasks.Urgent(ctx)
	if err != nil {
		return nil, err
	}
	overdueTasks, err := s.tasks.Overdue(ctx)
	if err != nil {
		return nil, err
	}
	overdueShipments, err := s.shipments.Overdue(ctx)
	if err != nil {
		return nil, err
	}

	return &AttentionItems{
		Customers:        customers,
		UrgentTasks:      urgent,
		OverdueTasks:     overdueTasks,
		OverdueShipments: overdueShipments,
	}, nil
}

// PersonalizedDailyTasks groups open tasks for a stand-up walk-through.
func (s *Service) PersonalizedDailyTasks(ctx context.Context) (*DailyTasks, error) {
	all, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	urgent, err := s.tasks.Urgent(ctx)
	if err != nil {
		return nil, err
	}
	overdue, err := s.tasks.Overdue(ctx)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	daily := &DailyTasks{
		Urgent:            urgent,
		Overdue:           overdue,
		DueToday:          dueToday(all, now),
		CustomerFollowUps: []*models.Task{},
		ShipmentTasks:     []*models.Task{},
	}
	for _, t := range all {
		if t.Status == models.TaskCompleted {
			continue
		}
		if t.CustomerID != nil {
			daily.CustomerFollowUps = append(daily.CustomerFollowUps, t)
		}
		if t.ShipmentID != nil {
			daily.ShipmentTasks = append(daily.ShipmentTasks, t)
		}
	}
	return daily, nil
}

// GenerateDailyReport renders the daily business report as plain text. The
// current date and every time-relative figure come from the request clock.
func (s *Service) GenerateDailyReport(ctx context.Context) (string, error) {
	start := time.Now()
	defer s.metrics.ObserveReport(start)

	now := requestcontext.Now(ctx)
	revenue, err := s.orders.TotalRevenue(ctx, reportWindowDays)
	if err != nil {
		return "", err
	}
	recent, err := s.orders.Recent(ctx, reportWindowDays)
	if err != nil {
		return "", err
	}
	tasks, err := s.TasksSummary(ctx)
	if err != nil {
		return "", err
	}
	shipments, err := s.ShipmentsSummary(ctx)
	if err != nil {
		return "", err
	}
	attention, err := s.AttentionItems(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 DAILY BUSINESS REPORT - %s\n", now.Format("2006-01-02"))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	fmt.Fprintf(&b, "💰 REVENUE: $%.2f (Last %d days)\n", revenue, reportWindowDays)
	fmt.Fprintf(&b, "📦 ORDERS: %d new orders (Last %d days)\n\n", len(recent), reportWindowDays)

	b.WriteString("📋 TASKS OVERVIEW:\n")
	fmt.Fprintf(&b, "• Total: %d | Incomplete: %d\n", tasks.Total, tasks.Incomplete)
	fmt.Fprintf(&b, "• Urgent: %d | Overdue: %d\n", tasks.Urgent, tasks.Overdue)
	fmt.Fprintf(&b, "• Due Today: %d\n\n", tasks.DueToday)

	b.WriteString("🚚 SHIPMENTS OVERVIEW:\n")
	fmt.Fprintf(&b, "• Total: %d | Pending: %d\n", shipments.Total, shipments.Pending)
	fmt.Fprintf(&b, "• Overdue: %d\n\n", shipments.Overdue)

	b.WriteString("⚠️ ITEMS NEEDING ATTENTION:\n")
	fmt.Fprintf(&b, "• Customers: %d\n", len(attention.Customers))
	fmt.Fprintf(&b, "• Urgent Tasks: %d\n", len(attention.UrgentTasks))
	fmt.Fprintf(&b, "• Overdue Tasks: %d\n", len(attention.OverdueTasks))
	fmt.Fprintf(&b, "• Overdue Shipments: %d\n", len(attention.OverdueShipments))

	if len(attention.UrgentTasks) > 0 {
		b.WriteString("\n🔥 URGENT TASKS:\n")
		for _, t := range attention.UrgentTasks {
			fmt.Fprintf(&b, "• %s\n", t.Title)
		}
	}
	if len(attention.Customers) > 0 {
		b.WriteString("\n👥 CUSTOMERS NEEDING ATTENTION:\n")
		for _, c := range attention.Customers {
			fmt.Fprintf(&b, "• %s (%s)\n", c.Name, c.Email)
		}
	}

	s.logger.InfoContext(ctx, "daily report generated",
		"revenue", revenue, "orders", len(recent), "urgent_tasks", tasks.Urgent)
	return b.String(), nil
}

// dueToday selects open tasks whose due date falls inside the calendar day
// of now, in now's location.
func dueToday(tasks []*models.Task, now time.Time) []*models.Task {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	nextStart := dayStart.AddDate(0, 0, 1)

	out := []*models.Task{}
	for _, t := range tasks {
		if t.DueDate == nil || t.Status == models.TaskCompleted {
			continue
		}
		if !t.DueDate.Before(dayStart) && t.DueDate.Before(nextStart) {
			out = append(out, t)
		}
	}
	return out
}
