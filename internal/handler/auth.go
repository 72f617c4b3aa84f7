package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mmeshcher/carpetwash-system/internal/middleware"
	"github.com/mmeshcher/carpetwash-system/internal/model"
	"github.com/mmeshcher/carpetwash-system/internal/service"
	"github.com/mmeshcher/carpetwash-system/internal/validation"
)

type registerRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Phone       *string  `json:"phone"`
	City        *string  `json:"city"`
	District    *string  `json:"district"`
	Address     *string  `json:"address"`
	CompanyName string   `json:"company_name"`
	Districts   []string `json:"districts"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User         *model.User `json:"user"`
	SessionToken string      `json:"session_token"`
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !validation.IsValidEmail(req.Email) {
		http.Error(w, "invalid email", http.StatusBadRequest)
		return
	}
	if !validation.IsValidPassword(req.Password) {
		http.Error(w, "password must be at least 6 characters", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleCustomer
	}
	if !role.Valid() || role == model.RoleAdmin {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	in := service.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		Role:         role,
		Phone:        req.Phone,
		City:         req.City,
		District:     req.District,
		Address:      req.Address,
		ServiceAreas: req.Districts,
	}
	if req.CompanyName != "" {
		in.CompanyName = &req.CompanyName
	}

	user, session, err := h.service.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}

	middleware.SetSessionCookie(w, session.Token, session.ExpiresAt)
	h.writeJSON(w, http.StatusOK, authResponse{User: user, SessionToken: session.Token})
}

// Login обрабатывает вход пользователя по email и паролю.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user, session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	middleware.SetSessionCookie(w, session.Token, session.ExpiresAt)
	h.writeJSON(w, http.StatusOK, authResponse{User: user, SessionToken: session.Token})
}

// ExchangeSession обменивает сессию внешнего OAuth-провайдера на локальную.
func (h *Handler) ExchangeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		http.Error(w, "X-Session-ID header is required", http.StatusBadRequest)
		return
	}

	user, session, err := h.service.ExchangeExternalSession(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	middleware.SetSessionCookie(w, session.Token, session.ExpiresAt)
	h.writeJSON(w, http.StatusOK, authResponse{User: user, SessionToken: session.Token})
}

// Me возвращает профиль аутентифицированного пользователя.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromContext(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// Logout завершает текущую сессию пользователя.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userFromContext(w, r); !ok {
		return
	}

	token := middleware.TokenFromRequest(r)
	if token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			h.writeError(w, err)
			return
		}
	}

	middleware.ClearSessionCookie(w)
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
