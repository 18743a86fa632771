package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bizdesk/internal/crm/models"
	"bizdesk/pkg/domain"
	"bizdesk/pkg/platform/httputil"
)

// listCustomers supports ?q= full search plus tag, industry, country and
// attention=true filters. Filters are exclusive; q wins when several are set.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if email := q.Get("email"); email != "" {
		c, err := h.customers.GetByEmail(ctx, email)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, []*models.Customer{c})
		return
	}

	var (
		customers []*models.Customer
		err       error
	)
	switch {
	case q.Get("q") != "":
		customers, err = h.customers.Search(ctx, q.Get("q"))
	case q.Get("tag") != "":
		customers, err = h.customers.FilterByTag(ctx, q.Get("tag"))
	case q.Get("industry") != "":
		customers, err = h.customers.FilterByIndustry(ctx, q.Get("industry"))
	case q.Get("country") != "":
		customers, err = h.customers.FilterByCountry(ctx, q.Get("country"))
	case q.Get("attention") == "true":
		customers, err = h.customers.ListNeedingAttention(ctx)
	default:
		customers, err = h.customers.List(ctx)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, customers)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	payload, ok := httputil.DecodeJSON[models.CreateCustomer](w, r, h.logger)
	if !ok {
		return
	}
	c, err := h.customers.Add(r.Context(), payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

// getCustomer returns the customer with contacts, tasks, shipments and
// orders attached.
func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	c, err := h.customers.GetWithRelations(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[models.UpdateCustomer](w, r, h.logger)
	if !ok {
		return
	}
	c, err := h.customers.Update(r.Context(), id, payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	if err := h.customers.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addCustomerTag(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[struct {
		Tag string `json:"tag"`
	}](w, r, h.logger)
	if !ok {
		return
	}
	c, err := h.customers.AddTag(r.Context(), id, payload.Tag)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) removeCustomerTag(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	c, err := h.customers.RemoveTag(r.Context(), id, chi.URLParam(r, "tag"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) setCustomerAttention(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[struct {
		NeedsAttention bool `json:"needs_attention"`
	}](w, r, h.logger)
	if !ok {
		return
	}

	var c *models.Customer
	if payload.NeedsAttention {
		c, err = h.customers.MarkAttention(r.Context(), id)
	} else {
		c, err = h.customers.ClearAttention(r.Context(), id)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	contacts, err := h.customers.ListContacts(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contacts)
}

func (h *Handler) addContact(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[models.CreateContact](w, r, h.logger)
	if !ok {
		return
	}
	c, err := h.customers.AddContact(r.Context(), id, payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) removeContact(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseContactID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	if err := h.customers.RemoveContact(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createFollowUp creates the canned follow-up task for a customer.
func (h *Handler) createFollowUp(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		badID(w, err)
		return
	}
	payload, ok := httputil.DecodeJSON[followUpRequest](w, r, h.logger)
	if !ok {
		return
	}
	t, err := h.tasks.CreateCustomerFollowUp(r.Context(), id, payload.Title, payload.Description, payload.DueDate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, t)
}
