package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/carpetwash-system/internal/model"
	"github.com/mmeshcher/carpetwash-system/internal/pricing"
	"github.com/mmeshcher/carpetwash-system/internal/repository"
)

// discountThreshold и discountPercentage задают правило скидки новым
// заказчикам: 10% при фактической стоимости от 1000 и выше, если у заказчика
// ещё не было доставленных заказов.
var (
	discountThreshold  = decimal.NewFromInt(1000)
	discountPercentage = 10
)

// DeclaredItem описывает ковёр, заявленный заказчиком при оформлении.
type DeclaredItem struct {
	CarpetType model.CarpetType
	Width      float64
	Length     float64
}

// CreateOrderInput описывает данные нового заказа.
type CreateOrderInput struct {
	Carpets      []DeclaredItem
	SpecialNotes *string
	City         string
	District     string
	Address      string
	Phone        string
}

// CreateOrder создаёт заказ от имени заказчика и оповещает активные фирмы
// его города. Список оповещённых носит информационный характер и не
// ограничивает, кто может взять заказ.
func (s *Service) CreateOrder(ctx context.Context, customer *model.User, in CreateOrderInput) (*model.Order, error) {
	if customer.Role != model.RoleCustomer {
		return nil, ErrAccessDenied
	}

	declared := make([]model.DeclaredCarpet, 0, len(in.Carpets))
	for _, c := range in.Carpets {
		declared = append(declared, model.DeclaredCarpet{
			CarpetType: c.CarpetType,
			Width:      c.Width,
			Length:     c.Length,
			Area:       c.Width * c.Length,
		})
	}

	order := &model.Order{
		OrderID:           newOrderID(),
		CustomerID:        customer.UserID,
		CustomerName:      customer.Name,
		CustomerPhone:     in.Phone,
		CustomerEmail:     customer.Email,
		CustomerAddress:   in.Address,
		City:              in.City,
		District:          in.District,
		Carpets:           declared,
		ActualCarpets:     []model.ActualCarpet{},
		ActualTotalPrice:  decimal.Zero,
		DiscountAmount:    decimal.Zero,
		FinalPrice:        decimal.Zero,
		CarpetCount:       len(declared),
		SpecialNotes:      in.SpecialNotes,
		Status:            model.OrderStatusPending,
		NotifiedCompanies: []string{},
		RejectedBy:        []string{},
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	companies, err := s.repo.ListActiveCompaniesByCity(ctx, in.City)
	if err != nil {
		return nil, err
	}
	if len(companies) > 0 {
		notified := make([]string, 0, len(companies))
		for _, c := range companies {
			notified = append(notified, c.UserID)
		}
		if err := s.repo.SetNotifiedCompanies(ctx, order.OrderID, notified); err != nil {
			return nil, err
		}
		order.NotifiedCompanies = notified
	}

	return order, nil
}

// ListOrders возвращает заказы в зависимости от роли: заказчику — его
// собственные, фирме — назначенные ей вместе с пулом её города,
// администратору — все.
func (s *Service) ListOrders(ctx context.Context, user *model.User) ([]model.Order, error) {
	switch user.Role {
	case model.RoleCustomer:
		return s.repo.ListOrdersByCustomer(ctx, user.UserID)
	case model.RoleCompany:
		company, err := s.repo.GetCompanyByUserID(ctx, user.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrCompanyNotFound) {
				return []model.Order{}, nil
			}
			return nil, err
		}
		return s.repo.ListOrdersForCompany(ctx, user.UserID, company.City)
	case model.RoleAdmin:
		return s.repo.ListAllOrders(ctx)
	}
	return []model.Order{}, nil
}

// OrderPool возвращает пул свободных заказов: фирме — заказы её города без
// отклонённых ею, администратору — все свободные заказы.
func (s *Service) OrderPool(ctx context.Context, user *model.User) ([]model.Order, error) {
	switch user.Role {
	case model.RoleCompany:
		company, err := s.repo.GetCompanyByUserID(ctx, user.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrCompanyNotFound) {
				return []model.Order{}, nil
			}
			return nil, err
		}
		return s.repo.ListPool(ctx, company.City, user.UserID)
	case model.RoleAdmin:
		return s.repo.ListPoolAll(ctx)
	}
	return nil, ErrAccessDenied
}

// GetOrder возвращает заказ по идентификатору. Заказчик видит только свои заказы.
func (s *Service) GetOrder(ctx context.Context, user *model.User, orderID string) (*model.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if user.Role == model.RoleCustomer && order.CustomerID != user.UserID {
		return nil, ErrAccessDenied
	}
	return order, nil
}

// AcceptOrder закрепляет свободный заказ за фирмой. При гонке двух фирм
// заказ достаётся ровно одной, вторая получает repository.ErrOrderNotPending.
func (s *Service) AcceptOrder(ctx context.Context, user *model.User, orderID string) (*model.Order, error) {
	if user.Role != model.RoleCompany {
		return nil, ErrAccessDenied
	}

	company, err := s.repo.GetCompanyByUserID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AcceptOrder(ctx, orderID, user.UserID, company.CompanyName, time.Now().UTC()); err != nil {
		return nil, err
	}

	return s.repo.GetOrderByID(ctx, orderID)
}

// RejectOrder добавляет фирму в список отклонивших: заказ остаётся в пуле
// для остальных. Повторный отказ идемпотентен.
func (s *Service) RejectOrder(ctx context.Context, user *model.User, orderID string) error {
	if user.Role != model.RoleCompany {
		return ErrAccessDenied
	}
	return s.repo.RejectOrder(ctx, orderID, user.UserID)
}

// CancelOrder отменяет заказ. Заказчик может отменить только свой заказ и
// только до забора ковров; администратор — любой незавершённый заказ.
func (s *Service) CancelOrder(ctx context.Context, user *model.User, orderID, reason string) (*model.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var allowed []model.OrderStatus
	switch user.Role {
	case model.RoleCustomer:
		if order.CustomerID != user.UserID {
			return nil, ErrAccessDenied
		}
		allowed = []model.OrderStatus{model.OrderStatusPending, model.OrderStatusAssigned}
	case model.RoleAdmin:
		allowed = []model.OrderStatus{
			model.OrderStatusPending, model.OrderStatusAssigned,
			model.OrderStatusPickedUp, model.OrderStatusWashing, model.OrderStatusReady,
		}
	default:
		return nil, ErrAccessDenied
	}

	if err := s.repo.CancelOrder(ctx, orderID, reason, time.Now().UTC(), allowed); err != nil {
		return nil, err
	}

	return s.repo.GetOrderByID(ctx, orderID)
}

// AdvanceOrderStatus переводит заказ на следующую стадию. Разрешено только
// назначенной фирме или администратору, и только вперёд по жизненному циклу.
func (s *Service) AdvanceOrderStatus(ctx context.Context, user *model.User, orderID string, next model.OrderStatus) (*model.Order, error) {
	if user.Role != model.RoleCompany && user.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if user.Role == model.RoleCompany {
		if order.CompanyID == nil || *order.CompanyID != user.UserID {
			return nil, ErrAccessDenied
		}
	}

	if !order.Status.CanAdvanceTo(next) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.AdvanceOrderStatus(ctx, orderID, order.Status, next, time.Now().UTC()); err != nil {
		return nil, err
	}

	return s.repo.GetOrderByID(ctx, orderID)
}

// AssignOrder принудительно назначает заказ фирме от имени администратора,
// минуя ограничения пула.
func (s *Service) AssignOrder(ctx context.Context, user *model.User, orderID, companyID string) (*model.Order, error) {
	if user.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	company, err := s.repo.GetCompanyByUserID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AssignOrder(ctx, orderID, companyID, company.CompanyName, time.Now().UTC()); err != nil {
		return nil, err
	}

	return s.repo.GetOrderByID(ctx, orderID)
}

// ActualItem описывает обмеренный фирмой ковёр.
type ActualItem struct {
	CarpetType model.CarpetType
	Area       float64
}

// RecordActualCarpets фиксирует фактический обмер ковров: пересчитывает
// стоимость по прайс-листу, применяет скидку первого заказа и обновляет
// суммарную вымытую площадь назначенной фирмы.
func (s *Service) RecordActualCarpets(ctx context.Context, user *model.User, orderID string, items []ActualItem) (*model.Order, error) {
	if user.Role != model.RoleCompany && user.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if user.Role == model.RoleCompany {
		if order.CompanyID == nil || *order.CompanyID != user.UserID {
			return nil, ErrAccessDenied
		}
	}

	quoteItems := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		quoteItems = append(quoteItems, pricing.Item{CarpetType: it.CarpetType, Area: it.Area})
	}
	quote := s.prices.Estimate(quoteItems)

	actual := make([]model.ActualCarpet, 0, len(quote.Details))
	for _, d := range quote.Details {
		actual = append(actual, model.ActualCarpet{
			CarpetType: d.CarpetType,
			Area:       d.Area,
			Price:      d.Price,
		})
	}

	settlement := repository.Settlement{
		Carpets:        actual,
		TotalArea:      quote.TotalArea,
		TotalPrice:     quote.TotalPrice,
		DiscountAmount: decimal.Zero,
		FinalPrice:     quote.TotalPrice,
	}

	if quote.TotalPrice.GreaterThanOrEqual(discountThreshold) {
		delivered, err := s.repo.CountDeliveredByCustomer(ctx, order.CustomerID)
		if err != nil {
			return nil, err
		}
		if delivered == 0 {
			settlement.DiscountPercentage = discountPercentage
			settlement.DiscountAmount = quote.TotalPrice.Mul(decimal.NewFromInt(int64(discountPercentage))).Div(decimal.NewFromInt(100))
			settlement.FinalPrice = quote.TotalPrice.Sub(settlement.DiscountAmount)
		}
	}

	if err := s.repo.RecordSettlement(ctx, orderID, settlement); err != nil {
		return nil, err
	}

	return s.repo.GetOrderByID(ctx, orderID)
}
