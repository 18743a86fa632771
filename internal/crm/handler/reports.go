package handler

import (
	"net/http"

	"bizdesk/pkg/platform/httputil"
)

// dailyReport serves the rendered daily business report as plain text.
func (h *Handler) dailyReport(w http.ResponseWriter, r *http.Request) {
	text, err := h.reports.GenerateDailyReport(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteText(w, http.StatusOK, text)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reports.Dashboard(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) tasksSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.reports.TasksSummary(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) shipmentsSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.reports.ShipmentsSummary(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) customersSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.reports.CustomersSummary(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) attentionItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.reports.AttentionItems(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) dailyTasks(w http.ResponseWriter, r *http.Request) {
	daily, err := h.reports.PersonalizedDailyTasks(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, daily)
}
