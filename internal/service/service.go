// Package service реализует бизнес-логику сервиса стирки ковров.
package service

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/carpetwash-system/internal/locations"
	"github.com/mmeshcher/carpetwash-system/internal/model"
	"github.com/mmeshcher/carpetwash-system/internal/oauth"
	"github.com/mmeshcher/carpetwash-system/internal/pricing"
	"github.com/mmeshcher/carpetwash-system/internal/repository"
)

// sessionTTL задаёт срок жизни выданной сессии.
const sessionTTL = 7 * 24 * time.Hour

// ErrInvalidCredentials возвращается при неверной паре email/пароль.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountBanned возвращается для заблокированных учётных записей.
	ErrAccountBanned = errors.New("account is banned")
	// ErrSessionExpired возвращается, если срок действия сессии истёк.
	ErrSessionExpired = errors.New("session expired")
	// ErrAccessDenied возвращается при несоответствии роли или владельца.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidTransition возвращается при недопустимом переходе статуса заказа.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAdminImmune возвращается при попытке заблокировать или удалить администратора.
	ErrAdminImmune = errors.New("cannot modify admin users")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, userID string, upd repository.UserUpdate) error
	DeleteUser(ctx context.Context, userID string) error
	SetUserBanned(ctx context.Context, userID string, banned bool) error
	CountUsersByRole(ctx context.Context, role model.Role) (int64, error)

	CreateSession(ctx context.Context, s *model.Session) error
	GetSessionByToken(ctx context.Context, token string) (*model.Session, error)
	DeleteSessionByToken(ctx context.Context, token string) error
	DeleteSessionsByUser(ctx context.Context, userID string) error

	CreateCompany(ctx context.Context, c *model.Company) error
	GetCompanyByUserID(ctx context.Context, userID string) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]model.Company, error)
	ListActiveCompaniesByCity(ctx context.Context, city string) ([]model.Company, error)
	UpdateCompany(ctx context.Context, userID string, upd repository.CompanyUpdate) error
	CountCompanies(ctx context.Context) (int64, error)

	CreateOrder(ctx context.Context, o *model.Order) error
	GetOrderByID(ctx context.Context, orderID string) (*model.Order, error)
	SetNotifiedCompanies(ctx context.Context, orderID string, companyIDs []string) error
	ListOrdersByCustomer(ctx context.Context, customerID string) ([]model.Order, error)
	ListOrdersForCompany(ctx context.Context, companyID, city string) ([]model.Order, error)
	ListAllOrders(ctx context.Context) ([]model.Order, error)
	ListPool(ctx context.Context, city, excludeCompanyID string) ([]model.Order, error)
	ListPoolAll(ctx context.Context) ([]model.Order, error)
	AcceptOrder(ctx context.Context, orderID, companyID, companyName string, at time.Time) error
	AssignOrder(ctx context.Context, orderID, companyID, companyName string, at time.Time) error
	RejectOrder(ctx context.Context, orderID, companyID string) error
	CancelOrder(ctx context.Context, orderID, reason string, at time.Time, allowed []model.OrderStatus) error
	AdvanceOrderStatus(ctx context.Context, orderID string, from, to model.OrderStatus, at time.Time) error
	RecordSettlement(ctx context.Context, orderID string, s repository.Settlement) error
	CountOrders(ctx context.Context) (int64, error)
	CountOrdersByStatuses(ctx context.Context, statuses []model.OrderStatus) (int64, error)
	CountCompanyOrders(ctx context.Context, companyID string, statuses []model.OrderStatus) (int64, error)
	CountPool(ctx context.Context, city, excludeCompanyID string) (int64, error)
	CountDeliveredByCustomer(ctx context.Context, customerID string) (int64, error)
	ListDeliveredBetween(ctx context.Context, start, end time.Time, companyID *string) ([]model.Order, error)
}

// OAuthClient описывает контракт внешнего сервиса аутентификации.
type OAuthClient interface {
	GetSessionData(ctx context.Context, sessionID string) (*oauth.SessionData, error)
}

// Service содержит бизнес-логику сервиса стирки ковров.
type Service struct {
	repo        Repository
	oauthClient OAuthClient
	prices      pricing.Table
	locations   *locations.Directory
}

// NewService создаёт новый сервис с указанным репозиторием, клиентом внешней
// аутентификации, прайс-листом и справочником городов.
func NewService(repo Repository, oauthClient OAuthClient, prices pricing.Table, dir *locations.Directory) *Service {
	return &Service{
		repo:        repo,
		oauthClient: oauthClient,
		prices:      prices,
		locations:   dir,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Prices возвращает действующий прайс-лист.
func (s *Service) Prices() pricing.Table {
	return s.prices
}

// Locations возвращает справочник обслуживаемых городов.
func (s *Service) Locations() *locations.Directory {
	return s.locations
}

// EstimatePrice считает предварительную стоимость по заявленным коврам.
func (s *Service) EstimatePrice(items []pricing.Item) pricing.Quote {
	return s.prices.Estimate(items)
}

func newUserID() string {
	return "user_" + uuidHex()[:12]
}

func newOrderID() string {
	return "ORD-" + strings.ToUpper(uuidHex()[:8])
}

func newSessionToken() string {
	return "sess_" + uuidHex()
}

func uuidHex() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
