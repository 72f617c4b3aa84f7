package handler

import (
	"net/http"
)

// CompanyProfile возвращает профиль фирмы текущего пользователя.
func (h *Handler) CompanyProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	company, err := h.service.GetCompanyProfile(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, company)
}

// CompanyStats возвращает сводные показатели фирмы.
func (h *Handler) CompanyStats(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetCompanyStats(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

// CompanyReport строит отчёт фирмы о доставленных заказах за период.
func (h *Handler) CompanyReport(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	report, err := h.service.CompanyReport(r.Context(), user, q.Get("period"), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}
