package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bizdesk/internal/crm/models"
	"bizdesk/pkg/domain"
	"bizdesk/pkg/platform/httputil"
)

// followUpRequest is the body for the canned follow-up endpoints. All fields
// are optional; the service fills in defaults.
type followUpRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// listTasks supports ?q= search, priority and status filters, view=urgent or
// view=overdue, and scoping by customer_id, shipment_id or order_id.
func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		tasks []*models.Task
		err   error
	)
	switch {
	case q.Get("view") == "urgent":
		tasks, err = h.tasks.Urgent(ctx)
	case q.Get("view") == "overdue":
		tasks, err = h.tasks.Overdue(ctx)
	case q.Get("q") != "":
		tasks, err = h.tasks.Search(ctx, q.Get("q"))
	case q.Get("priority") != "":
		tasks, err = h.tasks.ListByPriority(ctx, models.Priority(q.Get("priority")))
	case q.Get("status") != "":
		tasks, err = h.tasks.ListByStatus(ctx, models.TaskStatus(q.Get("status")))
	case q.Get("customer_id") != "":
		var id domain.CustomerID
		if id, err = domain.ParseCustomerID(q.Get("customer_id")); err != nil {
			badID(w, err)
			return
		}
		tasks, err = h.tasks.ListByCustomer(ctx, id)
	case q.Get("shipment_id") != "":
		var id domain.ShipmentID
		if id, err = domain.ParseShipmentID(q.Get("shipment_id")); err != nil {
			badID(w, err)
			return
		}
		tasks, err = h.tasks.ListByShipment(ctx, id)
	case q.Get("order_id") != "":
		var id domain.OrderID
		if id, err = domain.ParseOrderID(q.Get("order_id")); err != nil {
			badID(w, err)
			return
		}
		tasks, err = h.tasks.ListByOrder(ctx, id)
	default:
		tasks, err = h.tasks.List(ctx)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tasks)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	payload, ok := httputil.DecodeJSON[models.CreateTask](w, r, h.logger)
	if !ok {
		return
	}
	t, err := h.tasks.Add(r.Context(), payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseTaskID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	t, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseTaskID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[models.UpdateTask](w, r, h.logger)
	if !ok {
		return
	}
	t, err := h.tasks.Update(r.Context(), id, payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseTaskID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	if err := h.tasks.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) completeTask(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseTaskID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	t, err := h.tasks.Complete(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}
