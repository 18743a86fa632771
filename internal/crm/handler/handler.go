// Package handler is the thin HTTP layer over the entity managers and the
// reporting service. It decodes, delegates and translates errors; business
// rules live in the services.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bizdesk/internal/crm/service"
	"bizdesk/internal/report"
	dErrors "bizdesk/pkg/domain-errors"
	"bizdesk/pkg/platform/httputil"
)

// Handler wires the HTTP routes to the services.
type Handler struct {
	customers *service.CustomerService
	tasks     *service.TaskService
	shipments *service.ShipmentService
	orders    *service.OrderService
	reports   *report.Service
	logger    *slog.Logger
}

func New(customers *service.CustomerService, tasks *service.TaskService,
	shipments *service.ShipmentService, orders *service.OrderService,
	reports *report.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		customers: customers,
		tasks:     tasks,
		shipments: shipments,
		orders:    orders,
		reports:   reports,
		logger:    logger,
	}
}

// Register mounts every route on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Post("/", h.createCustomer)
		r.Get("/{id}", h.getCustomer)
		r.Put("/{id}", h.updateCustomer)
		r.Delete("/{id}", h.deleteCustomer)
		r.Post("/{id}/tags", h.addCustomerTag)
		r.Delete("/{id}/tags/{tag}", h.removeCustomerTag)
		r.Put("/{id}/attention", h.setCustomerAttention)
		r.Get("/{id}/contacts", h.listContacts)
		r.Post("/{id}/contacts", h.addContact)
		r.Post("/{id}/follow-up", h.createFollowUp)
	})
	r.Delete("/contacts/{id}", h.removeContact)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.listTasks)
		r.Post("/", h.createTask)
		r.Get("/{id}", h.getTask)
		r.Put("/{id}", h.updateTask)
		r.Delete("/{id}", h.deleteTask)
		r.Post("/{id}/complete", h.completeTask)
	})

	r.Route("/shipments", func(r chi.Router) {
		r.Get("/", h.listShipments)
		r.Post("/", h.createShipment)
		r.Get("/{id}", h.getShipment)
		r.Put("/{id}", h.updateShipment)
		r.Delete("/{id}", h.deleteShipment)
		r.Post("/{id}/status", h.updateShipmentStatus)
		r.Post("/{id}/tasks", h.createShipmentTask)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/revenue", h.orderRevenue)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}", h.updateOrder)
		r.Delete("/{id}", h.deleteOrder)
		r.Post("/{id}/items", h.addOrderItem)
		r.Post("/{id}/status", h.updateOrderStatus)
		r.Post("/{id}/link-shipment", h.linkOrderToShipment)
	})

	r.Route("/report", func(r chi.Router) {
		r.Get("/daily", h.dailyReport)
		r.Get("/dashboard", h.dashboard)
		r.Get("/tasks", h.tasksSummary)
		r.Get("/shipments", h.shipmentsSummary)
		r.Get("/customers", h.customersSummary)
		r.Get("/attention", h.attentionItems)
		r.Get("/daily-tasks", h.dailyTasks)
	})
}

// badID writes the invalid_input response for an unparseable path ID.
func badID(w http.ResponseWriter, err error) {
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed id"))
}
