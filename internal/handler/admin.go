package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/carpetwash-system/internal/model"
	"github.com/mmeshcher/carpetwash-system/internal/repository"
)

// AdminStats возвращает сводные показатели платформы.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetAdminStats(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

// AdminReport строит отчёт по платформе за период, опционально по одной фирме.
func (h *Handler) AdminReport(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var companyID *string
	if v := q.Get("company_id"); v != "" {
		companyID = &v
	}

	report, err := h.service.AdminReport(r.Context(), user, q.Get("period"), companyID, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// AdminListCompanies возвращает список всех фирм платформы.
func (h *Handler) AdminListCompanies(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	companies, err := h.service.ListCompanies(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string][]model.Company{"companies": companies})
}

// AdminListUsers возвращает список всех пользователей платформы.
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	users, err := h.service.ListUsers(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string][]model.User{"users": users})
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	City     *string `json:"city"`
	District *string `json:"district"`
	Address  *string `json:"address"`
}

// AdminUpdateUser изменяет профиль пользователя от имени администратора.
func (h *Handler) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), user, chi.URLParam(r, "userID"), repository.UserUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		City:     req.City,
		District: req.District,
		Address:  req.Address,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

// AdminDeleteUser удаляет пользователя вместе с его сессиями и профилем фирмы.
func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), user, chi.URLParam(r, "userID")); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// AdminBanUser блокирует пользователя и отзывает его сессии.
func (h *Handler) AdminBanUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	if err := h.service.BanUser(r.Context(), user, chi.URLParam(r, "userID")); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "user banned"})
}

// AdminUnbanUser снимает блокировку с пользователя.
func (h *Handler) AdminUnbanUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	if err := h.service.UnbanUser(r.Context(), user, chi.URLParam(r, "userID")); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "user unbanned"})
}

type updateCompanyRequest struct {
	CompanyName *string `json:"company_name"`
	IsActive    *bool   `json:"is_active"`
}

// AdminUpdateCompany изменяет профиль фирмы от имени администратора.
func (h *Handler) AdminUpdateCompany(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}

	var req updateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	company, err := h.service.UpdateCompany(r.Context(), user, chi.URLParam(r, "companyID"), repository.CompanyUpdate{
		CompanyName: req.CompanyName,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, company)
}
