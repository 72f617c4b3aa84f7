package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/carpetwash-system/internal/model"
)

const orderColumns = `order_id, customer_id, customer_name, customer_phone, customer_email, customer_address,
	city, district, carpets, actual_carpets, actual_total_area, actual_total_price,
	discount_percentage, discount_amount, final_price, carpet_count, special_notes,
	status, company_id, company_name, notified_companies, rejected_by,
	created_at, assigned_at, pickup_date, washing_date, delivery_date, cancelled_at, cancel_reason`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.OrderID, &o.CustomerID, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail, &o.CustomerAddress,
		&o.City, &o.District, &o.Carpets, &o.ActualCarpets, &o.ActualTotalArea, &o.ActualTotalPrice,
		&o.DiscountPercentage, &o.DiscountAmount, &o.FinalPrice, &o.CarpetCount, &o.SpecialNotes,
		&o.Status, &o.CompanyID, &o.CompanyName, &o.NotifiedCompanies, &o.RejectedBy,
		&o.CreatedAt, &o.AssignedAt, &o.PickupDate, &o.WashingDate, &o.DeliveryDate, &o.CancelledAt, &o.CancelReason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}

func (r *PostgresRepository) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// CreateOrder сохраняет новый заказ.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *model.Order) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO orders (order_id, customer_id, customer_name, customer_phone, customer_email, customer_address,
			city, district, carpets, actual_carpets, actual_total_area, actual_total_price,
			discount_percentage, discount_amount, final_price, carpet_count, special_notes,
			status, company_id, company_name, notified_companies, rejected_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		o.OrderID, o.CustomerID, o.CustomerName, o.CustomerPhone, o.CustomerEmail, o.CustomerAddress,
		o.City, o.District, o.Carpets, o.ActualCarpets, o.ActualTotalArea, o.ActualTotalPrice,
		o.DiscountPercentage, o.DiscountAmount, o.FinalPrice, o.CarpetCount, o.SpecialNotes,
		string(o.Status), o.CompanyID, o.CompanyName, o.NotifiedCompanies, o.RejectedBy, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetOrderByID возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID)
	return scanOrder(row)
}

// SetNotifiedCompanies записывает в заказ список оповещённых фирм.
func (r *PostgresRepository) SetNotifiedCompanies(ctx context.Context, orderID string, companyIDs []string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET notified_companies = $2 WHERE order_id = $1`, orderID, companyIDs)
	if err != nil {
		return fmt.Errorf("set notified companies: %w", err)
	}
	return nil
}

// ListOrdersByCustomer возвращает заказы заказчика, новые первыми.
func (r *PostgresRepository) ListOrdersByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
}

// ListOrdersForCompany возвращает заказы, назначенные фирме, вместе с пулом
// свободных заказов её города, которые она не отклоняла.
func (r *PostgresRepository) ListOrdersForCompany(ctx context.Context, companyID, city string) ([]model.Order, error) {
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE company_id = $1
		    OR (status = 'pending' AND city = $2 AND NOT $1 = ANY(rejected_by))
		 ORDER BY created_at DESC`,
		companyID, city)
}

// ListAllOrders возвращает все заказы платформы.
func (r *PostgresRepository) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

// ListPool возвращает свободные заказы города, не отклонённые фирмой.
func (r *PostgresRepository) ListPool(ctx context.Context, city, excludeCompanyID string) ([]model.Order, error) {
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE status = 'pending' AND city = $1 AND NOT $2 = ANY(rejected_by)
		 ORDER BY created_at DESC`,
		city, excludeCompanyID)
}

// ListPoolAll возвращает все свободные заказы независимо от города.
func (r *PostgresRepository) ListPoolAll(ctx context.Context) ([]model.Order, error) {
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = 'pending' ORDER BY created_at DESC`)
}

// AcceptOrder назначает заказ фирме, если он всё ещё свободен. Условное
// обновление по статусу служит точкой сериализации: из двух гонящихся фирм
// заказ достаётся ровно одной.
func (r *PostgresRepository) AcceptOrder(ctx context.Context, orderID, companyID, companyName string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders
		 SET company_id = $2, company_name = $3, status = 'assigned', assigned_at = $4
		 WHERE order_id = $1 AND status = 'pending'`,
		orderID, companyID, companyName, at,
	)
	if err != nil {
		return fmt.Errorf("accept order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetOrderByID(ctx, orderID); err != nil {
			return err
		}
		return ErrOrderNotPending
	}
	return nil
}

// AssignOrder принудительно назначает заказ фирме от имени администратора.
// Ограничения пула не применяются; запрещено только для завершённых заказов.
func (r *PostgresRepository) AssignOrder(ctx context.Context, orderID, companyID, companyName string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders
		 SET company_id = $2, company_name = $3, status = 'assigned', assigned_at = $4
		 WHERE order_id = $1 AND status NOT IN ('delivered', 'cancelled')`,
		orderID, companyID, companyName, at,
	)
	if err != nil {
		return fmt.Errorf("assign order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetOrderByID(ctx, orderID); err != nil {
			return err
		}
		return ErrOrderFinished
	}
	return nil
}

// RejectOrder добавляет фирму в список отклонивших заказ. Повторный отказ
// той же фирмы не создаёт дубликата.
func (r *PostgresRepository) RejectOrder(ctx context.Context, orderID, companyID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders
		 SET rejected_by = array_append(rejected_by, $2)
		 WHERE order_id = $1 AND NOT $2 = ANY(rejected_by)`,
		orderID, companyID,
	)
	if err != nil {
		return fmt.Errorf("reject order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Либо заказ не существует, либо отказ уже зафиксирован.
		if _, err := r.GetOrderByID(ctx, orderID); err != nil {
			return err
		}
	}
	return nil
}

// CancelOrder отменяет заказ, если его текущий статус входит в allowed.
func (r *PostgresRepository) CancelOrder(ctx context.Context, orderID, reason string, at time.Time, allowed []model.OrderStatus) error {
	statuses := make([]string, 0, len(allowed))
	for _, s := range allowed {
		statuses = append(statuses, string(s))
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE orders
		 SET status = 'cancelled', cancelled_at = $2, cancel_reason = $3
		 WHERE order_id = $1 AND status = ANY($4)`,
		orderID, at, reason, statuses,
	)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetOrderByID(ctx, orderID); err != nil {
			return err
		}
		return ErrOrderFinished
	}
	return nil
}

// AdvanceOrderStatus переводит заказ из статуса from в статус to и
// проставляет соответствующую отметку времени. Обновление условно по
// прежнему статусу: если заказ успел измениться, возвращается
// ErrOrderStatusChanged.
func (r *PostgresRepository) AdvanceOrderStatus(ctx context.Context, orderID string, from, to model.OrderStatus, at time.Time) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	switch to {
	case model.OrderStatusPickedUp:
		tag, err = r.pool.Exec(ctx,
			`UPDATE orders SET status = $2, pickup_date = $3 WHERE order_id = $1 AND status = $4`,
			orderID, string(to), at, string(from))
	case model.OrderStatusWashing:
		tag, err = r.pool.Exec(ctx,
			`UPDATE orders SET status = $2, washing_date = $3 WHERE order_id = $1 AND status = $4`,
			orderID, string(to), at, string(from))
	case model.OrderStatusDelivered:
		tag, err = r.pool.Exec(ctx,
			`UPDATE orders SET status = $2, delivery_date = $3 WHERE order_id = $1 AND status = $4`,
			orderID, string(to), at, string(from))
	default:
		tag, err = r.pool.Exec(ctx,
			`UPDATE orders SET status = $2 WHERE order_id = $1 AND status = $3`,
			orderID, string(to), string(from))
	}
	if err != nil {
		return fmt.Errorf("advance order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetOrderByID(ctx, orderID); err != nil {
			return err
		}
		return ErrOrderStatusChanged
	}
	return nil
}

// Settlement содержит результаты обмера ковров фирмой.
type Settlement struct {
	Carpets            []model.ActualCarpet
	TotalArea          float64
	TotalPrice         decimal.Decimal
	DiscountPercentage int
	DiscountAmount     decimal.Decimal
	FinalPrice         decimal.Decimal
}

// RecordSettlement записывает фактические данные обмера в заказ и
// пересчитывает суммарную вымытую площадь назначенной фирмы как сумму по её
// заказам с заполненным обмером. Пересчёт вместо инкремента делает операцию
// идемпотентной: повторная запись не удваивает счётчик.
func (r *PostgresRepository) RecordSettlement(ctx context.Context, orderID string, s Settlement) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var companyID *string
	err = tx.QueryRow(ctx,
		`UPDATE orders
		 SET actual_carpets = $2, actual_total_area = $3, actual_total_price = $4,
		     discount_percentage = $5, discount_amount = $6, final_price = $7
		 WHERE order_id = $1
		 RETURNING company_id`,
		orderID, s.Carpets, s.TotalArea, s.TotalPrice,
		s.DiscountPercentage, s.DiscountAmount, s.FinalPrice,
	).Scan(&companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("record settlement: %w", err)
	}

	if companyID != nil {
		_, err = tx.Exec(ctx,
			`UPDATE companies
			 SET total_area_washed = (
				SELECT COALESCE(SUM(actual_total_area), 0)
				FROM orders
				WHERE company_id = $1 AND jsonb_array_length(actual_carpets) > 0
			 )
			 WHERE user_id = $1`,
			*companyID,
		)
		if err != nil {
			return fmt.Errorf("recalculate washed area: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// CountOrders возвращает общее число заказов.
func (r *PostgresRepository) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// CountOrdersByStatuses возвращает число заказов в любом из статусов.
func (r *PostgresRepository) CountOrdersByStatuses(ctx context.Context, statuses []model.OrderStatus) (int64, error) {
	ss := make([]string, 0, len(statuses))
	for _, s := range statuses {
		ss = append(ss, string(s))
	}

	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE status = ANY($1)`, ss).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orders by status: %w", err)
	}
	return n, nil
}

// CountCompanyOrders возвращает число заказов фирмы; при непустом списке
// статусов учитываются только они.
func (r *PostgresRepository) CountCompanyOrders(ctx context.Context, companyID string, statuses []model.OrderStatus) (int64, error) {
	var n int64
	var err error
	if len(statuses) == 0 {
		err = r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM orders WHERE company_id = $1`, companyID).Scan(&n)
	} else {
		ss := make([]string, 0, len(statuses))
		for _, s := range statuses {
			ss = append(ss, string(s))
		}
		err = r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM orders WHERE company_id = $1 AND status = ANY($2)`, companyID, ss).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count company orders: %w", err)
	}
	return n, nil
}

// CountPool возвращает размер пула свободных заказов города для фирмы.
func (r *PostgresRepository) CountPool(ctx context.Context, city, excludeCompanyID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders
		 WHERE status = 'pending' AND city = $1 AND NOT $2 = ANY(rejected_by)`,
		city, excludeCompanyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pool: %w", err)
	}
	return n, nil
}

// CountDeliveredByCustomer возвращает число доставленных заказов заказчика.
func (r *PostgresRepository) CountDeliveredByCustomer(ctx context.Context, customerID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = $1 AND status = 'delivered'`,
		customerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count delivered orders: %w", err)
	}
	return n, nil
}

// ListDeliveredBetween возвращает доставленные заказы с датой доставки в
// отрезке [start, end] включительно; companyID дополнительно сужает выборку.
func (r *PostgresRepository) ListDeliveredBetween(ctx context.Context, start, end time.Time, companyID *string) ([]model.Order, error) {
	if companyID != nil {
		return r.listOrders(ctx,
			`SELECT `+orderColumns+` FROM orders
			 WHERE status = 'delivered' AND delivery_date >= $1 AND delivery_date <= $2 AND company_id = $3
			 ORDER BY delivery_date`,
			start, end, *companyID)
	}
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE status = 'delivered' AND delivery_date >= $1 AND delivery_date <= $2
		 ORDER BY delivery_date`,
		start, end)
}
