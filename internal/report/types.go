package report

import "bizdesk/internal/crm/models"

// Dashboard is the landing-page snapshot: what is moving, what is urgent,
// and how the trailing month looks.
type Dashboard struct {
	PendingShipments          []*models.Shipment `json:"pending_shipments"`
	UrgentTasks               []*models.Task     `json:"urgent_tasks"`
	CustomersNeedingAttention []*models.Customer `json:"customers_needing_attention"`
	RecentOrderCount          int                `json:"recent_order_count"`
	TotalRevenue              float64            `json:"total_revenue"`
}

// TasksSummary counts the task book by state. Completed is derived as
// Total minus Incomplete.
type TasksSummary struct {
	Total      int `json:"total"`
	Incomplete int `json:"incomplete"`
	Completed  int `json:"completed"`
	Urgent     int `json:"urgent"`
	Overdue    int `json:"overdue"`
	DueToday   int `json:"due_today"`
}

// ShipmentsSummary counts shipments by lifecycle state. StatusCounts only
// carries statuses actually observed.
type ShipmentsSummary struct {
	Total        int                           `json:"total"`
	Pending      int                           `json:"pending"`
	Overdue      int                           `json:"overdue"`
	StatusCounts map[models.ShipmentStatus]int `json:"status_counts"`
}

// CustomersSummary describes the customer book with its distinct
// industries, countries and tags.
type CustomersSummary struct {
	Total            int      `json:"total"`
	NeedingAttention int      `json:"needing_attention"`
	Industries       []string `json:"industries"`
	Countries        []string `json:"countries"`
	Tags             []string `json:"tags"`
}

// AttentionItems lists everything a person should look at today, itemized
// rather than counted.
type AttentionItems struct {
	Customers        []*models.Customer `json:"customers"`
	UrgentTasks      []*models.Task     `json:"urgent_tasks"`
	OverdueTasks     []*models.Task     `json:"overdue_tasks"`
	OverdueShipments []*models.Shipment `json:"overdue_shipments"`
}

// DailyTasks groups open tasks into the buckets a daily stand-up walks
// through. A task can appear in more than one bucket.
type DailyTasks struct {
	Urgent            []*models.Task `json:"urgent"`
	Overdue           []*models.Task `json:"overdue"`
	DueToday          []*models.Task `json:"due_today"`
	CustomerFollowUps []*models.Task `json:"customer_follow_ups"`
	ShipmentTasks     []*models.Task `json:"shipment_tasks"`
}
