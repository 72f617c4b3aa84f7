package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/carpetwash-system/internal/pricing"
	"github.com/mmeshcher/carpetwash-system/internal/validation"
)

// Root возвращает приветственное сообщение API.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Carpet Cleaning Service API"})
}

// Health возвращает статус работоспособности сервиса.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Cities возвращает список обслуживаемых городов.
func (h *Handler) Cities(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string][]string{"cities": h.service.Locations().Cities()})
}

// Districts возвращает список районов указанного города.
func (h *Handler) Districts(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	districts, ok := h.service.Locations().Districts(city)
	if !ok {
		http.Error(w, "city not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"districts": districts})
}

// AllLocations возвращает полный справочник городов и районов.
func (h *Handler) AllLocations(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"locations": h.service.Locations().All()})
}

// Prices возвращает прайс-лист по категориям ковров.
func (h *Handler) Prices(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"prices": h.service.Prices()})
}

type calculateRequest struct {
	Carpets []pricing.Item `json:"carpets"`
}

// Calculate считает предварительную стоимость заказа по списку ковров.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Carpets) == 0 {
		http.Error(w, "at least one carpet is required", http.StatusBadRequest)
		return
	}
	for _, c := range req.Carpets {
		if !validation.IsValidArea(c.Area) {
			http.Error(w, "carpet area must be positive", http.StatusBadRequest)
			return
		}
	}

	h.writeJSON(w, http.StatusOK, h.service.EstimatePrice(req.Carpets))
}
