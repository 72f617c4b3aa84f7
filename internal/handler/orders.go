package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/carpetwash-system/internal/model"
	"github.com/mmeshcher/carpetwash-system/internal/service"
	"github.com/mmeshcher/carpetwash-system/internal/validation"
)

type declaredCarpetRequest struct {
	CarpetType model.CarpetType `json:"carpet_type"`
	Width      float64          `json:"width"`
	Length     float64          `json:"length"`
}

type createOrderRequest struct {
	Carpets      []declaredCarpetRequest `json:"carpets"`
	SpecialNotes *string                 `json:"special_notes"`
	City         string                  `json:"city"`
	District     string                  `json:"district"`
	Address      string                  `json:"address"`
	Phone        string                  `json:"phone"`
}

// CreateOrder обрабатывает оформление нового заказа заказчиком.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Carpets) == 0 {
		http.Error(w, "at least one carpet is required", http.StatusBadRequest)
		return
	}
	if req.City == "" || req.District == "" || req.Address == "" || req.Phone == "" {
		http.Error(w, "city, district, address and phone are required", http.StatusBadRequest)
		return
	}

	in := service.CreateOrderInput{
		SpecialNotes: req.SpecialNotes,
		City:         req.City,
		District:     req.District,
		Address:      req.Address,
		Phone:        req.Phone,
	}
	for _, c := range req.Carpets {
		if !validation.IsValidDimensions(c.Width, c.Length) {
			http.Error(w, "carpet dimensions must be positive", http.StatusBadRequest)
			return
		}
		in.Carpets = append(in.Carpets, service.DeclaredItem{
			CarpetType: c.CarpetType,
			Width:      c.Width,
			Length:     c.Length,
		})
	}

	order, err := h.service.CreateOrder(r.Context(), user, in)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// ListOrders возвращает заказы, видимые текущему пользователю.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListOrders(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string][]model.Order{"orders": orders})
}

// OrderPool возвращает пул свободных заказов для фирмы.
func (h *Handler) OrderPool(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	orders, err := h.service.OrderPool(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string][]model.Order{"orders": orders})
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), user, chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// AcceptOrder обрабатывает взятие заказа фирмой из пула.
func (h *Handler) AcceptOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	order, err := h.service.AcceptOrder(r.Context(), user, chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// RejectOrder обрабатывает отказ фирмы от заказа в пуле.
func (h *Handler) RejectOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	if err := h.service.RejectOrder(r.Context(), user, chi.URLParam(r, "orderID")); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "order rejected"})
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder обрабатывает отмену заказа заказчиком или администратором.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	var req cancelOrderRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	order, err := h.service.CancelOrder(r.Context(), user, chi.URLParam(r, "orderID"), req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// UpdateOrderStatus переводит заказ на следующий этап выполнения.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		http.Error(w, "unknown order status", http.StatusBadRequest)
		return
	}

	order, err := h.service.AdvanceOrderStatus(r.Context(), user, chi.URLParam(r, "orderID"), req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

type assignOrderRequest struct {
	CompanyID string `json:"company_id"`
}

// AssignOrder назначает заказ фирме вручную от имени администратора.
func (h *Handler) AssignOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	var req assignOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.CompanyID == "" {
		http.Error(w, "company_id is required", http.StatusBadRequest)
		return
	}

	order, err := h.service.AssignOrder(r.Context(), user, chi.URLParam(r, "orderID"), req.CompanyID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

type actualCarpetRequest struct {
	CarpetType model.CarpetType `json:"carpet_type"`
	Area       float64          `json:"area"`
}

type updateCarpetsRequest struct {
	Carpets []actualCarpetRequest `json:"carpets"`
}

// UpdateOrderCarpets фиксирует фактический замер ковров после приёмки и
// пересчитывает стоимость заказа.
func (h *Handler) UpdateOrderCarpets(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	var req updateCarpetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Carpets) == 0 {
		http.Error(w, "at least one carpet is required", http.StatusBadRequest)
		return
	}

	items := make([]service.ActualItem, 0, len(req.Carpets))
	for _, c := range req.Carpets {
		if !validation.IsValidArea(c.Area) {
			http.Error(w, "carpet area must be positive", http.StatusBadRequest)
			return
		}
		items = append(items, service.ActualItem{CarpetType: c.CarpetType, Area: c.Area})
	}

	order, err := h.service.RecordActualCarpets(r.Context(), user, chi.URLParam(r, "orderID"), items)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}
