package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/carpetwash-system/internal/model"
	"github.com/mmeshcher/carpetwash-system/internal/repository"
)

// RegisterInput описывает данные регистрации нового пользователя.
type RegisterInput struct {
	Email        string
	Password     string
	Name         string
	Role         model.Role
	Phone        *string
	City         *string
	District     *string
	Address      *string
	CompanyName  *string
	ServiceAreas []string
}

// Register создаёт пользователя, при необходимости профиль фирмы, и выдаёт
// первую сессию. Занятый email приводит к repository.ErrEmailExists.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, *model.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		UserID:       newUserID(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         in.Role,
		Phone:        in.Phone,
		City:         in.City,
		District:     in.District,
		Address:      in.Address,
		CreatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}

	if in.Role == model.RoleCompany && in.CompanyName != nil && *in.CompanyName != "" {
		city := ""
		if in.City != nil {
			city = *in.City
		}
		company := &model.Company{
			UserID:      user.UserID,
			CompanyName: *in.CompanyName,
			Email:       in.Email,
			Phone:       in.Phone,
			City:        city,
			Districts:   in.ServiceAreas,
			Address:     in.Address,
			IsActive:    true,
			CreatedAt:   now,
		}
		if company.Districts == nil {
			company.Districts = []string{}
		}
		if err := s.repo.CreateCompany(ctx, company); err != nil {
			return nil, nil, err
		}
	}

	session, err := s.issueSession(ctx, user.UserID, "")
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Login проверяет учётные данные и выдаёт новую сессию.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	// Учётные записи, созданные через внешний вход, не имеют пароля.
	if len(user.PasswordHash) == 0 {
		return nil, nil, ErrInvalidCredentials
	}
	if user.IsBanned {
		return nil, nil, ErrAccountBanned
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, user.UserID, "")
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// ExchangeExternalSession обменивает session id внешнего сервиса
// аутентификации на внутреннюю сессию, создавая пользователя при первом входе.
func (s *Service) ExchangeExternalSession(ctx context.Context, sessionID string) (*model.User, *model.Session, error) {
	if s.oauthClient == nil {
		return nil, nil, fmt.Errorf("oauth client not configured")
	}

	data, err := s.oauthClient.GetSessionData(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, data.Email)
	switch {
	case err == nil:
		if user.IsBanned {
			return nil, nil, ErrAccountBanned
		}
		upd := repository.UserUpdate{Picture: data.Picture}
		if data.Name != "" {
			upd.Name = &data.Name
		}
		if err := s.repo.UpdateUser(ctx, user.UserID, upd); err != nil {
			return nil, nil, err
		}
		user, err = s.repo.GetUserByID(ctx, user.UserID)
		if err != nil {
			return nil, nil, err
		}
	case errors.Is(err, repository.ErrUserNotFound):
		name := data.Name
		if name == "" {
			name = "User"
		}
		user = &model.User{
			UserID:    newUserID(),
			Email:     data.Email,
			Name:      name,
			Role:      model.RoleCustomer,
			Picture:   data.Picture,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, err
	}

	session, err := s.issueSession(ctx, user.UserID, data.SessionToken)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// ResolveSession возвращает владельца действующей сессии. Незнакомый или
// просроченный токен и заблокированная учётная запись отклоняются.
func (s *Service) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	session, err := s.repo.GetSessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now().UTC()) {
		return nil, ErrSessionExpired
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user.IsBanned {
		return nil, ErrAccountBanned
	}

	return user, nil
}

// Logout отзывает сессию с указанным токеном.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteSessionByToken(ctx, token)
}

func (s *Service) issueSession(ctx context.Context, userID, token string) (*model.Session, error) {
	if token == "" {
		token = newSessionToken()
	}

	now := time.Now().UTC()
	session := &model.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
