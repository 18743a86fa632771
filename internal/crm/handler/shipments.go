package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bizdesk/internal/crm/models"
	"bizdesk/pkg/domain"
	"bizdesk/pkg/platform/httputil"
)

// listShipments supports ?q= search, a status filter, view=active, pending
// or overdue, tracking_number lookup and customer_id scoping.
func (h *Handler) listShipments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if tn := q.Get("tracking_number"); tn != "" {
		sh, err := h.shipments.GetByTrackingNumber(ctx, tn)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, []*models.Shipment{sh})
		return
	}

	var (
		shipments []*models.Shipment
		err       error
	)
	switch {
	case q.Get("view") == "active":
		shipments, err = h.shipments.Active(ctx)
	case q.Get("view") == "pending":
		shipments, err = h.shipments.Pending(ctx)
	case q.Get("view") == "overdue":
		shipments, err = h.shipments.Overdue(ctx)
	case q.Get("q") != "":
		shipments, err = h.shipments.Search(ctx, q.Get("q"))
	case q.Get("status") != "":
		shipments, err = h.shipments.ListByStatus(ctx, models.ShipmentStatus(q.Get("status")))
	case q.Get("customer_id") != "":
		var id domain.CustomerID
		if id, err = domain.ParseCustomerID(q.Get("customer_id")); err != nil {
			badID(w, err)
			return
		}
		shipments, err = h.shipments.ListByCustomer(ctx, id)
	default:
		shipments, err = h.shipments.List(ctx)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, shipments)
}

func (h *Handler) createShipment(w http.ResponseWriter, r *http.Request) {
	payload, ok := httputil.DecodeJSON[models.CreateShipment](w, r, h.logger)
	if !ok {
		return
	}
	sh, err := h.shipments.Add(r.Context(), payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sh)
}

func (h *Handler) getShipment(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	sh, err := h.shipments.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sh)
}

func (h *Handler) updateShipment(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[models.UpdateShipment](w, r, h.logger)
	if !ok {
		return
	}
	sh, err := h.shipments.Update(r.Context(), id, payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sh)
}

func (h *Handler) deleteShipment(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	if err := h.shipments.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateShipmentStatus transitions a shipment, optionally appending a note.
func (h *Handler) updateShipmentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[struct {
		Status models.ShipmentStatus `json:"status"`
		Note   string                `json:"note"`
	}](w, r, h.logger)
	if !ok {
		return
	}
	sh, err := h.shipments.UpdateStatus(r.Context(), id, payload.Status, payload.Note)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sh)
}

// createShipmentTask creates the canned check-up task for a shipment.
func (h *Handler) createShipmentTask(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Priority    models.Priority `json:"priority"`
	}](w, r, h.logger)
	if !ok {
		return
	}
	t, err := h.tasks.CreateShipmentTask(r.Context(), id, payload.Title, payload.Description, payload.Priority)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, t)
}
