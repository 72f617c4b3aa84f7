package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/carpetwash-system/internal/model"
)

// activeStatuses перечисляет стадии заказа, находящегося в работе.
var activeStatuses = []model.OrderStatus{
	model.OrderStatusAssigned,
	model.OrderStatusPickedUp,
	model.OrderStatusWashing,
	model.OrderStatusReady,
}

// CarpetStat содержит суммарную площадь и стоимость по категории ковров.
type CarpetStat struct {
	Area  float64         `json:"area"`
	Price decimal.Decimal `json:"price"`
}

// CompanyReportEntry содержит разбивку отчёта по одной фирме.
type CompanyReportEntry struct {
	Name        string                          `json:"name"`
	TotalArea   float64                         `json:"total_area"`
	TotalPrice  decimal.Decimal                 `json:"total_price"`
	OrderCount  int                             `json:"order_count"`
	CarpetStats map[model.CarpetType]CarpetStat `json:"carpet_stats"`
}

// Report содержит агрегированную статистику доставленных заказов за период.
type Report struct {
	Period       string                          `json:"period"`
	StartDate    time.Time                       `json:"start_date"`
	EndDate      time.Time                       `json:"end_date"`
	TotalOrders  int                             `json:"total_orders"`
	TotalArea    float64                         `json:"total_area"`
	TotalPrice   decimal.Decimal                 `json:"total_price"`
	CarpetStats  map[model.CarpetType]CarpetStat `json:"carpet_stats"`
	CompanyStats []CompanyReportEntry            `json:"company_stats,omitempty"`
}

// CompanyStats содержит счётчики кабинета фирмы.
type CompanyStats struct {
	TotalOrders     int64   `json:"total_orders"`
	PendingOrders   int64   `json:"pending_orders"`
	CompletedOrders int64   `json:"completed_orders"`
	PoolOrders      int64   `json:"pool_orders"`
	TotalAreaWashed float64 `json:"total_area_washed"`
}

// AdminStats содержит счётчики панели администратора.
type AdminStats struct {
	TotalOrders     int64 `json:"total_orders"`
	PendingOrders   int64 `json:"pending_orders"`
	ActiveOrders    int64 `json:"active_orders"`
	CompletedOrders int64 `json:"completed_orders"`
	CancelledOrders int64 `json:"cancelled_orders"`
	TotalCustomers  int64 `json:"total_customers"`
	TotalCompanies  int64 `json:"total_companies"`
}

// resolveWindow вычисляет границы отчётного периода. Явные границы имеют
// приоритет; при ошибке разбора используется отрезок с начала текущих суток
// до настоящего момента. Именованные периоды привязаны к now.
func resolveWindow(now time.Time, period, startRaw, endRaw string) (time.Time, time.Time) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if startRaw != "" && endRaw != "" {
		start, errS := time.Parse(time.RFC3339, startRaw)
		end, errE := time.Parse(time.RFC3339, endRaw)
		if errS == nil && errE == nil {
			return start, end
		}
		return startOfDay, now
	}

	switch period {
	case "weekly":
		// Неделя начинается с понедельника.
		offset := (int(now.Weekday()) + 6) % 7
		start := startOfDay.AddDate(0, 0, -offset)
		return start, now
	case "monthly":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), now
	case "yearly":
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), now
	default:
		return startOfDay, now
	}
}

func newCarpetStats() map[model.CarpetType]CarpetStat {
	return map[model.CarpetType]CarpetStat{
		model.CarpetNormal:  {Price: decimal.Zero},
		model.CarpetShaggy:  {Price: decimal.Zero},
		model.CarpetSilk:    {Price: decimal.Zero},
		model.CarpetAntique: {Price: decimal.Zero},
	}
}

// foldReport сворачивает фактические ковры доставленных заказов в итоги по
// категориям и, при perCompany, в разбивку по фирмам. Чистая агрегация без
// побочных эффектов.
func foldReport(orders []model.Order, perCompany bool) Report {
	r := Report{
		TotalOrders: len(orders),
		TotalPrice:  decimal.Zero,
		CarpetStats: newCarpetStats(),
	}

	companies := make(map[string]*CompanyReportEntry)
	var companyOrder []string

	for _, o := range orders {
		var entry *CompanyReportEntry
		if perCompany && o.CompanyID != nil {
			id := *o.CompanyID
			entry = companies[id]
			if entry == nil {
				name := "unknown"
				if o.CompanyName != nil {
					name = *o.CompanyName
				}
				entry = &CompanyReportEntry{
					Name:        name,
					TotalPrice:  decimal.Zero,
					CarpetStats: newCarpetStats(),
				}
				companies[id] = entry
				companyOrder = append(companyOrder, id)
			}
			entry.OrderCount++
		}

		for _, c := range o.ActualCarpets {
			if stat, ok := r.CarpetStats[c.CarpetType]; ok {
				stat.Area += c.Area
				stat.Price = stat.Price.Add(c.Price)
				r.CarpetStats[c.CarpetType] = stat

				if entry != nil {
					es := entry.CarpetStats[c.CarpetType]
					es.Area += c.Area
					es.Price = es.Price.Add(c.Price)
					entry.CarpetStats[c.CarpetType] = es
				}
			}

			r.TotalArea += c.Area
			r.TotalPrice = r.TotalPrice.Add(c.Price)
			if entry != nil {
				entry.TotalArea += c.Area
				entry.TotalPrice = entry.TotalPrice.Add(c.Price)
			}
		}
	}

	if perCompany {
		r.CompanyStats = make([]CompanyReportEntry, 0, len(companyOrder))
		for _, id := range companyOrder {
			r.CompanyStats = append(r.CompanyStats, *companies[id])
		}
	}

	return r
}

// CompanyReport строит отчёт фирмы по её доставленным заказам за период.
func (s *Service) CompanyReport(ctx context.Context, user *model.User, period, startRaw, endRaw string) (*Report, error) {
	if user.Role != model.RoleCompany {
		return nil, ErrAccessDenied
	}

	start, end := resolveWindow(time.Now().UTC(), period, startRaw, endRaw)

	orders, err := s.repo.ListDeliveredBetween(ctx, start, end, &user.UserID)
	if err != nil {
		return nil, err
	}

	report := foldReport(orders, false)
	report.Period = period
	report.StartDate = start
	report.EndDate = end
	return &report, nil
}

// AdminReport строит отчёт по всем фирмам платформы с разбивкой по фирмам;
// companyID дополнительно сужает выборку до одной фирмы.
func (s *Service) AdminReport(ctx context.Context, user *model.User, period string, companyID *string, startRaw, endRaw string) (*Report, error) {
	if user.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	start, end := resolveWindow(time.Now().UTC(), period, startRaw, endRaw)

	orders, err := s.repo.ListDeliveredBetween(ctx, start, end, companyID)
	if err != nil {
		return nil, err
	}

	report := foldReport(orders, true)
	report.Period = period
	report.StartDate = start
	report.EndDate = end
	return &report, nil
}

// GetCompanyStats возвращает счётчики кабинета фирмы.
func (s *Service) GetCompanyStats(ctx context.Context, user *model.User) (*CompanyStats, error) {
	if user.Role != model.RoleCompany {
		return nil, ErrAccessDenied
	}

	company, err := s.repo.GetCompanyByUserID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountCompanyOrders(ctx, user.UserID, nil)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.CountCompanyOrders(ctx, user.UserID, activeStatuses)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.CountCompanyOrders(ctx, user.UserID, []model.OrderStatus{model.OrderStatusDelivered})
	if err != nil {
		return nil, err
	}
	pool, err := s.repo.CountPool(ctx, company.City, user.UserID)
	if err != nil {
		return nil, err
	}

	return &CompanyStats{
		TotalOrders:     total,
		PendingOrders:   pending,
		CompletedOrders: completed,
		PoolOrders:      pool,
		TotalAreaWashed: company.TotalAreaWashed,
	}, nil
}

// GetAdminStats возвращает счётчики панели администратора.
func (s *Service) GetAdminStats(ctx context.Context, user *model.User) (*AdminStats, error) {
	if user.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	total, err := s.repo.CountOrders(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.CountOrdersByStatuses(ctx, []model.OrderStatus{model.OrderStatusPending})
	if err != nil {
		return nil, err
	}
	active, err := s.repo.CountOrdersByStatuses(ctx, activeStatuses)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.CountOrdersByStatuses(ctx, []model.OrderStatus{model.OrderStatusDelivered})
	if err != nil {
		return nil, err
	}
	cancelled, err := s.repo.CountOrdersByStatuses(ctx, []model.OrderStatus{model.OrderStatusCancelled})
	if err != nil {
		return nil, err
	}
	customers, err := s.repo.CountUsersByRole(ctx, model.RoleCustomer)
	if err != nil {
		return nil, err
	}
	companies, err := s.repo.CountCompanies(ctx)
	if err != nil {
		return nil, err
	}

	return &AdminStats{
		TotalOrders:     total,
		PendingOrders:   pending,
		ActiveOrders:    active,
		CompletedOrders: completed,
		CancelledOrders: cancelled,
		TotalCustomers:  customers,
		TotalCompanies:  companies,
	}, nil
}
