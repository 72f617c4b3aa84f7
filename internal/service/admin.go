package service

import (
	"context"

	"github.com/mmeshcher/carpetwash-system/internal/model"
	"github.com/mmeshcher/carpetwash-system/internal/repository"
)

// GetCompanyProfile возвращает профиль фирмы текущего пользователя.
func (s *Service) GetCompanyProfile(ctx context.Context, user *model.User) (*model.Company, error) {
	if user.Role != model.RoleCompany {
		return nil, ErrAccessDenied
	}
	return s.repo.GetCompanyByUserID(ctx, user.UserID)
}

// ListCompanies возвращает все фирмы платформы.
func (s *Service) ListCompanies(ctx context.Context, user *model.User) ([]model.Company, error) {
	if user.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}
	return s.repo.ListCompanies(ctx)
}

// ListUsers возвращает всех пользователей платформы.
func (s *Service) ListUsers(ctx context.Context, user *model.User) ([]model.User, error) {
	if user.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}
	return s.repo.ListUsers(ctx)
}

// UpdateUser применяет частичное обновление к пользователю и возвращает
// обновлённую запись.
func (s *Service) UpdateUser(ctx context.Context, admin *model.User, userID string, upd repository.UserUpdate) (*model.User, error) {
	if admin.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	if err := s.repo.UpdateUser(ctx, userID, upd); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, userID)
}

// DeleteUser удаляет пользователя вместе с сессиями и профилем фирмы.
// Администраторов удалять нельзя.
func (s *Service) DeleteUser(ctx context.Context, admin *model.User, userID string) error {
	if admin.Role != model.RoleAdmin {
		return ErrAccessDenied
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == model.RoleAdmin {
		return ErrAdminImmune
	}

	return s.repo.DeleteUser(ctx, userID)
}

// BanUser блокирует пользователя и отзывает все его сессии, так что
// последующие запросы со старым токеном отклоняются. Администраторов
// блокировать нельзя.
func (s *Service) BanUser(ctx context.Context, admin *model.User, userID string) error {
	if admin.Role != model.RoleAdmin {
		return ErrAccessDenied
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == model.RoleAdmin {
		return ErrAdminImmune
	}

	return s.repo.SetUserBanned(ctx, userID, true)
}

// UnbanUser снимает блокировку с пользователя.
func (s *Service) UnbanUser(ctx context.Context, admin *model.User, userID string) error {
	if admin.Role != model.RoleAdmin {
		return ErrAccessDenied
	}

	return s.repo.SetUserBanned(ctx, userID, false)
}

// UpdateCompany меняет название фирмы или флаг активности и возвращает
// обновлённый профиль.
func (s *Service) UpdateCompany(ctx context.Context, admin *model.User, companyID string, upd repository.CompanyUpdate) (*model.Company, error) {
	if admin.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	if err := s.repo.UpdateCompany(ctx, companyID, upd); err != nil {
		return nil, err
	}
	return s.repo.GetCompanyByUserID(ctx, companyID)
}
