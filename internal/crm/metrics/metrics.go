// Package metrics provides observability for the business data layer.
// Tracks entity creation counts and report generation durations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the entity managers and the
// reporting service. A nil *Metrics disables collection; every helper is
// nil-safe so callers never guard.
type Metrics struct {
	CustomerCreated prometheus.Counter
	ContactCreated  prometheus.Counter
	TaskCreated     prometheus.Counter
	ShipmentCreated prometheus.Counter
	OrderCreated    prometheus.Counter

	TaskCompleted     prometheus.Counter
	ShipmentDelivered prometheus.Counter

	SearchDuration prometheus.Histogram
	ReportDuration prometheus.Histogram
}

// New creates a Metrics instance with all instruments registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		CustomerCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizdesk_customers_created_total",
			Help: "Total number of customers created",
		}),
		ContactCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizdesk_contacts_created_total",
			Help: "Total number of contacts created",
		}),
		TaskCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizdesk_tasks_created_total",
			Help: "Total number of tasks created",
		}),
		ShipmentCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizdesk_shipments_created_total",
			Help: "Total number of shipments created",
		}),
		OrderCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizdesk_orders_created_total",
			Help: "Total number of orders created",
		}),
		TaskCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizdesk_tasks_completed_total",
			Help: "Total number of tasks marked completed",
		}),
		ShipmentDelivered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizdesk_shipments_delivered_total",
			Help: "Total number of shipments marked delivered",
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizdesk_search_duration_seconds",
			Help:    "Duration of entity search operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ReportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizdesk_report_duration_seconds",
			Help:    "Duration of dashboard and daily report generation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementCustomerCreated records a successful customer creation.
func (m *Metrics) IncrementCustomerCreated() {
	if m != nil {
		m.CustomerCreated.Inc()
	}
}

// IncrementContactCreated records a successful contact creation.
func (m *Metrics) IncrementContactCreated() {
	if m != nil {
		m.ContactCreated.Inc()
	}
}

// IncrementTaskCreated records a successful task creation.
func (m *Metrics) IncrementTaskCreated() {
	if m != nil {
		m.TaskCreated.Inc()
	}
}

// IncrementShipmentCreated records a successful shipment creation.
func (m *Metrics) IncrementShipmentCreated() {
	if m != nil {
		m.ShipmentCreated.Inc()
	}
}

// IncrementOrderCreated records a successful order creation.
func (m *Metrics) IncrementOrderCreated() {
	if m != nil {
		m.OrderCreated.Inc()
	}
}

// IncrementTaskCompleted records a task reaching COMPLETED.
func (m *Metrics) IncrementTaskCompleted() {
	if m != nil {
		m.TaskCompleted.Inc()
	}
}

// IncrementShipmentDelivered records a shipment reaching DELIVERED.
func (m *Metrics) IncrementShipmentDelivered() {
	if m != nil {
		m.ShipmentDelivered.Inc()
	}
}

// ObserveSearch records the duration of a search. Call with time.Now() at
// the start of the operation.
func (m *Metrics) ObserveSearch(start time.Time) {
	if m != nil {
		m.SearchDuration.Observe(time.Since(start).Seconds())
	}
}

// ObserveReport records the duration of a report build. Call with time.Now()
// at the start of the operation.
func (m *Metrics) ObserveReport(start time.Time) {
	if m != nil {
		m.ReportDuration.Observe(time.Since(start).Seconds())
	}
}
