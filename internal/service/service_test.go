package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/carpetwash-system/internal/locations"
	"github.com/mmeshcher/carpetwash-system/internal/model"
	"github.com/mmeshcher/carpetwash-system/internal/pricing"
	"github.com/mmeshcher/carpetwash-system/internal/repository"
)

type stubRepo struct {
	createUserErr  error
	createdUser    *model.User
	createdCompany *model.Company

	userByEmail    *model.User
	userByEmailErr error
	userByID       *model.User
	userByIDErr    error

	session    *model.Session
	sessionErr error

	company         *model.Company
	companyErr      error
	activeCompanies []model.Company

	order        *model.Order
	orderErr     error
	createdOrder *model.Order
	notified     []string

	acceptErr     error
	acceptedBy    string
	rejectedBy    string
	assignedTo    string
	cancelAllowed []model.OrderStatus
	advanceFrom   model.OrderStatus
	advanceTo     model.OrderStatus
	advanceErr    error

	settlement *repository.Settlement

	deliveredCount    int64
	deliveredCountErr error
	deliveredOrders   []model.Order

	totalOrders     int64
	pendingOrders   int64
	activeOrders    int64
	completedOrders int64
	cancelledOrders int64
	poolCount       int64
	customerCount   int64
	companyCount    int64
}

func (s *stubRepo) Close() error { return nil }

func (s *stubRepo) CreateUser(ctx context.Context, u *model.User) error {
	s.createdUser = u
	return s.createUserErr
}

func (s *stubRepo) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	return s.userByID, s.userByIDErr
}

func (s *stubRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userByEmail, s.userByEmailErr
}

func (s *stubRepo) ListUsers(ctx context.Context) ([]model.User, error) { return nil, nil }

func (s *stubRepo) UpdateUser(ctx context.Context, userID string, upd repository.UserUpdate) error {
	return nil
}

func (s *stubRepo) DeleteUser(ctx context.Context, userID string) error { return nil }

func (s *stubRepo) SetUserBanned(ctx context.Context, userID string, banned bool) error { return nil }

func (s *stubRepo) CountUsersByRole(ctx context.Context, role model.Role) (int64, error) {
	return s.customerCount, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, sess *model.Session) error { return nil }

func (s *stubRepo) GetSessionByToken(ctx context.Context, token string) (*model.Session, error) {
	return s.session, s.sessionErr
}

func (s *stubRepo) DeleteSessionByToken(ctx context.Context, token string) error { return nil }

func (s *stubRepo) DeleteSessionsByUser(ctx context.Context, userID string) error { return nil }

func (s *stubRepo) CreateCompany(ctx context.Context, c *model.Company) error {
	s.createdCompany = c
	return nil
}

func (s *stubRepo) GetCompanyByUserID(ctx context.Context, userID string) (*model.Company, error) {
	return s.company, s.companyErr
}

func (s *stubRepo) ListCompanies(ctx context.Context) ([]model.Company, error) { return nil, nil }

func (s *stubRepo) ListActiveCompaniesByCity(ctx context.Context, city string) ([]model.Company, error) {
	return s.activeCompanies, nil
}

func (s *stubRepo) UpdateCompany(ctx context.Context, userID string, upd repository.CompanyUpdate) error {
	return nil
}

func (s *stubRepo) CountCompanies(ctx context.Context) (int64, error) { return s.companyCount, nil }

func (s *stubRepo) CreateOrder(ctx context.Context, o *model.Order) error {
	s.createdOrder = o
	return nil
}

func (s *stubRepo) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	return s.order, s.orderErr
}

func (s *stubRepo) SetNotifiedCompanies(ctx context.Context, orderID string, companyIDs []string) error {
	s.notified = companyIDs
	return nil
}

func (s *stubRepo) ListOrdersByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	return nil, nil
}

func (s *stubRepo) ListOrdersForCompany(ctx context.Context, companyID, city string) ([]model.Order, error) {
	return nil, nil
}

func (s *stubRepo) ListAllOrders(ctx context.Context) ([]model.Order, error) { return nil, nil }

func (s *stubRepo) ListPool(ctx context.Context, city, excludeCompanyID string) ([]model.Order, error) {
	return nil, nil
}

func (s *stubRepo) ListPoolAll(ctx context.Context) ([]model.Order, error) { return nil, nil }

func (s *stubRepo) AcceptOrder(ctx context.Context, orderID, companyID, companyName string, at time.Time) error {
	s.acceptedBy = companyID
	return s.acceptErr
}

func (s *stubRepo) AssignOrder(ctx context.Context, orderID, companyID, companyName string, at time.Time) error {
	s.assignedTo = companyID
	return nil
}

func (s *stubRepo) RejectOrder(ctx context.Context, orderID, companyID string) error {
	s.rejectedBy = companyID
	return nil
}

func (s *stubRepo) CancelOrder(ctx context.Context, orderID, reason string, at time.Time, allowed []model.OrderStatus) error {
	s.cancelAllowed = allowed
	return nil
}

func (s *stubRepo) AdvanceOrderStatus(ctx context.Context, orderID string, from, to model.OrderStatus, at time.Time) error {
	s.advanceFrom = from
	s.advanceTo = to
	return s.advanceErr
}

func (s *stubRepo) RecordSettlement(ctx context.Context, orderID string, settlement repository.Settlement) error {
	s.settlement = &settlement
	return nil
}

func (s *stubRepo) CountOrders(ctx context.Context) (int64, error) { return s.totalOrders, nil }

func (s *stubRepo) CountOrdersByStatuses(ctx context.Context, statuses []model.OrderStatus) (int64, error) {
	if len(statuses) == 1 {
		switch statuses[0] {
		case model.OrderStatusPending:
			return s.pendingOrders, nil
		case model.OrderStatusDelivered:
			return s.completedOrders, nil
		case model.OrderStatusCancelled:
			return s.cancelledOrders, nil
		}
	}
	return s.activeOrders, nil
}

func (s *stubRepo) CountCompanyOrders(ctx context.Context, companyID string, statuses []model.OrderStatus) (int64, error) {
	if statuses == nil {
		return s.totalOrders, nil
	}
	if len(statuses) == 1 && statuses[0] == model.OrderStatusDelivered {
		return s.completedOrders, nil
	}
	return s.activeOrders, nil
}

func (s *stubRepo) CountPool(ctx context.Context, city, excludeCompanyID string) (int64, error) {
	return s.poolCount, nil
}

func (s *stubRepo) CountDeliveredByCustomer(ctx context.Context, customerID string) (int64, error) {
	return s.deliveredCount, s.deliveredCountErr
}

func (s *stubRepo) ListDeliveredBetween(ctx context.Context, start, end time.Time, companyID *string) ([]model.Order, error) {
	return s.deliveredOrders, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, nil, pricing.DefaultTable(), locations.Default())
}

func TestNewIDs_Format(t *testing.T) {
	userID := newUserID()
	if !strings.HasPrefix(userID, "user_") || len(userID) != len("user_")+12 {
		t.Fatalf("unexpected user id %q", userID)
	}

	orderID := newOrderID()
	if !strings.HasPrefix(orderID, "ORD-") || len(orderID) != len("ORD-")+8 {
		t.Fatalf("unexpected order id %q", orderID)
	}
	if orderID != strings.ToUpper(orderID) {
		t.Fatalf("order id must be uppercase, got %q", orderID)
	}

	token := newSessionToken()
	if !strings.HasPrefix(token, "sess_") || len(token) != len("sess_")+32 {
		t.Fatalf("unexpected session token %q", token)
	}
}

func TestRegister_PropagatesDuplicateEmail(t *testing.T) {
	repo := &stubRepo{createUserErr: repository.ErrEmailExists}
	svc := newTestService(repo)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "dup@example.com",
		Password: "secret1",
		Name:     "Dup",
		Role:     model.RoleCustomer,
	})
	if !errors.Is(err, repository.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegister_CompanyCreatesProfile(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo)

	city := "Istanbul"
	companyName := "Halı Yıkama"
	user, session, err := svc.Register(context.Background(), RegisterInput{
		Email:        "co@example.com",
		Password:     "secret1",
		Name:         "Owner",
		Role:         model.RoleCompany,
		City:         &city,
		CompanyName:  &companyName,
		ServiceAreas: []string{"Kadikoy"},
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if repo.createdCompany == nil {
		t.Fatalf("expected company profile to be created")
	}
	if repo.createdCompany.CompanyName != companyName {
		t.Fatalf("company name = %q, want %q", repo.createdCompany.CompanyName, companyName)
	}
	if !repo.createdCompany.IsActive {
		t.Fatalf("new company must be active")
	}
	if repo.createdCompany.City != city {
		t.Fatalf("company city = %q, want %q", repo.createdCompany.City, city)
	}

	if user.Role != model.RoleCompany {
		t.Fatalf("user role = %q, want company", user.Role)
	}
	if session == nil || !strings.HasPrefix(session.Token, "sess_") {
		t.Fatalf("expected issued session, got %+v", session)
	}
	if ttl := session.ExpiresAt.Sub(session.CreatedAt); ttl != sessionTTL {
		t.Fatalf("session ttl = %v, want %v", ttl, sessionTTL)
	}
}

func TestRegister_CustomerSkipsCompanyProfile(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "cust@example.com",
		Password: "secret1",
		Name:     "Customer",
		Role:     model.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if repo.createdCompany != nil {
		t.Fatalf("customer registration must not create a company profile")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	repo := &stubRepo{
		userByEmail: &model.User{
			UserID:       "user_000000000001",
			Email:        "u@example.com",
			PasswordHash: hash,
			Role:         model.RoleCustomer,
		},
	}
	svc := newTestService(repo)

	_, _, err := svc.Login(context.Background(), "u@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := &stubRepo{userByEmailErr: repository.ErrUserNotFound}
	svc := newTestService(repo)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "secret1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_ExternalAccountHasNoPassword(t *testing.T) {
	repo := &stubRepo{
		userByEmail: &model.User{
			UserID: "user_000000000001",
			Email:  "oauth@example.com",
			Role:   model.RoleCustomer,
		},
	}
	svc := newTestService(repo)

	_, _, err := svc.Login(context.Background(), "oauth@example.com", "anything")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_Banned(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	repo := &stubRepo{
		userByEmail: &model.User{
			UserID:       "user_000000000001",
			PasswordHash: hash,
			IsBanned:     true,
		},
	}
	svc := newTestService(repo)

	_, _, err := svc.Login(context.Background(), "u@example.com", "correct")
	if !errors.Is(err, ErrAccountBanned) {
		t.Fatalf("expected ErrAccountBanned, got %v", err)
	}
}

func TestResolveSession_Expired(t *testing.T) {
	repo := &stubRepo{
		session: &model.Session{
			Token:     "sess_expired",
			UserID:    "user_000000000001",
			ExpiresAt: time.Now().UTC().Add(-time.Hour),
		},
	}
	svc := newTestService(repo)

	_, err := svc.ResolveSession(context.Background(), "sess_expired")
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestResolveSession_BannedUser(t *testing.T) {
	repo := &stubRepo{
		session: &model.Session{
			Token:     "sess_ok",
			UserID:    "user_000000000001",
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		},
		userByID: &model.User{UserID: "user_000000000001", IsBanned: true},
	}
	svc := newTestService(repo)

	_, err := svc.ResolveSession(context.Background(), "sess_ok")
	if !errors.Is(err, ErrAccountBanned) {
		t.Fatalf("expected ErrAccountBanned, got %v", err)
	}
}

func TestResolveSession_UnknownToken(t *testing.T) {
	repo := &stubRepo{sessionErr: repository.ErrSessionNotFound}
	svc := newTestService(repo)

	_, err := svc.ResolveSession(context.Background(), "sess_missing")
	if !errors.Is(err, repository.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
