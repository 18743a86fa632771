package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bizdesk/internal/crm/models"
	"bizdesk/pkg/domain"
	"bizdesk/pkg/platform/httputil"
)

// listOrders supports ?q= search over order numbers and item names, a status
// filter, view=recent with an optional days window, and customer_id scoping.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		orders []*models.Order
		err    error
	)
	switch {
	case q.Get("view") == "recent":
		days, _ := strconv.Atoi(q.Get("days"))
		orders, err = h.orders.Recent(ctx, days)
	case q.Get("q") != "":
		orders, err = h.orders.Search(ctx, q.Get("q"))
	case q.Get("status") != "":
		orders, err = h.orders.ListByStatus(ctx, models.OrderStatus(q.Get("status")))
	case q.Get("customer_id") != "":
		var id domain.CustomerID
		if id, err = domain.ParseCustomerID(q.Get("customer_id")); err != nil {
			badID(w, err)
			return
		}
		orders, err = h.orders.ListByCustomer(ctx, id)
	default:
		orders, err = h.orders.List(ctx)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	payload, ok := httputil.DecodeJSON[models.CreateOrder](w, r, h.logger)
	if !ok {
		return
	}
	o, err := h.orders.Add(r.Context(), payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, o)
}

// getOrder returns the order with its items attached.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	o, err := h.orders.GetWithRelations(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[models.UpdateOrder](w, r, h.logger)
	if !ok {
		return
	}
	o, err := h.orders.Update(r.Context(), id, payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	if err := h.orders.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addOrderItem(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[models.CreateOrderItem](w, r, h.logger)
	if !ok {
		return
	}
	item, err := h.orders.AddItem(r.Context(), id, payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[struct {
		Status models.OrderStatus `json:"status"`
	}](w, r, h.logger)
	if !ok {
		return
	}
	o, err := h.orders.UpdateStatus(r.Context(), id, payload.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) linkOrderToShipment(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[struct {
		ShipmentID domain.ShipmentID `json:"shipment_id"`
	}](w, r, h.logger)
	if !ok {
		return
	}
	o, err := h.orders.LinkToShipment(r.Context(), id, payload.ShipmentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

// orderRevenue returns the revenue sum, windowed by ?days= when positive.
func (h *Handler) orderRevenue(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	total, err := h.orders.TotalRevenue(r.Context(), days)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]float64{"total_revenue": total})
}
