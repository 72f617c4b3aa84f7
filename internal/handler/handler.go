// Package handler содержит HTTP-обработчики API сервиса стирки ковров.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/carpetwash-system/internal/locations"
	"github.com/mmeshcher/carpetwash-system/internal/middleware"
	"github.com/mmeshcher/carpetwash-system/internal/model"
	"github.com/mmeshcher/carpetwash-system/internal/oauth"
	"github.com/mmeshcher/carpetwash-system/internal/pricing"
	"github.com/mmeshcher/carpetwash-system/internal/repository"
	"github.com/mmeshcher/carpetwash-system/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, *model.Session, error)
	Login(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	ExchangeExternalSession(ctx context.Context, sessionID string) (*model.User, *model.Session, error)
	Logout(ctx context.Context, token string) error

	Prices() pricing.Table
	EstimatePrice(items []pricing.Item) pricing.Quote
	Locations() *locations.Directory

	CreateOrder(ctx context.Context, customer *model.User, in service.CreateOrderInput) (*model.Order, error)
	ListOrders(ctx context.Context, user *model.User) ([]model.Order, error)
	OrderPool(ctx context.Context, user *model.User) ([]model.Order, error)
	GetOrder(ctx context.Context, user *model.User, orderID string) (*model.Order, error)
	AcceptOrder(ctx context.Context, user *model.User, orderID string) (*model.Order, error)
	RejectOrder(ctx context.Context, user *model.User, orderID string) error
	CancelOrder(ctx context.Context, user *model.User, orderID, reason string) (*model.Order, error)
	AdvanceOrderStatus(ctx context.Context, user *model.User, orderID string, next model.OrderStatus) (*model.Order, error)
	AssignOrder(ctx context.Context, user *model.User, orderID, companyID string) (*model.Order, error)
	RecordActualCarpets(ctx context.Context, user *model.User, orderID string, items []service.ActualItem) (*model.Order, error)

	GetCompanyProfile(ctx context.Context, user *model.User) (*model.Company, error)
	GetCompanyStats(ctx context.Context, user *model.User) (*service.CompanyStats, error)
	CompanyReport(ctx context.Context, user *model.User, period, start, end string) (*service.Report, error)

	GetAdminStats(ctx context.Context, user *model.User) (*service.AdminStats, error)
	AdminReport(ctx context.Context, user *model.User, period string, companyID *string, start, end string) (*service.Report, error)
	ListCompanies(ctx context.Context, user *model.User) ([]model.Company, error)
	ListUsers(ctx context.Context, user *model.User) ([]model.User, error)
	UpdateUser(ctx context.Context, admin *model.User, userID string, upd repository.UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, admin *model.User, userID string) error
	BanUser(ctx context.Context, admin *model.User, userID string) error
	UnbanUser(ctx context.Context, admin *model.User, userID string) error
	UpdateCompany(ctx context.Context, admin *model.User, companyID string, upd repository.CompanyUpdate) (*model.Company, error)
}

// Handler реализует HTTP-обработчики API сервиса стирки ковров.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

// writeError переводит доменные ошибки в коды ответа HTTP.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, oauth.ErrInvalidSession),
		errors.Is(err, repository.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrAccountBanned),
		errors.Is(err, service.ErrAccessDenied),
		errors.Is(err, service.ErrAdminImmune):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrCompanyNotFound),
		errors.Is(err, repository.ErrOrderNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrOrderNotPending),
		errors.Is(err, repository.ErrOrderFinished),
		errors.Is(err, repository.ErrOrderStatusChanged),
		errors.Is(err, service.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("internal error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) userFromContext(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}
