package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/carpetwash-system/internal/model"
)

const companyColumns = `user_id, company_name, email, phone, city, districts, address, is_active, total_area_washed, created_at`

func scanCompany(row pgx.Row) (*model.Company, error) {
	var c model.Company
	err := row.Scan(&c.UserID, &c.CompanyName, &c.Email, &c.Phone, &c.City,
		&c.Districts, &c.Address, &c.IsActive, &c.TotalAreaWashed, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("scan company: %w", err)
	}
	return &c, nil
}

// CreateCompany сохраняет профиль фирмы.
func (r *PostgresRepository) CreateCompany(ctx context.Context, c *model.Company) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO companies (user_id, company_name, email, phone, city, districts, address, is_active, total_area_washed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.UserID, c.CompanyName, c.Email, c.Phone, c.City, c.Districts,
		c.Address, c.IsActive, c.TotalAreaWashed, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// GetCompanyByUserID возвращает профиль фирмы по идентификатору владельца.
func (r *PostgresRepository) GetCompanyByUserID(ctx context.Context, userID string) (*model.Company, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE user_id = $1`, userID)
	return scanCompany(row)
}

func (r *PostgresRepository) listCompanies(ctx context.Context, query string, args ...any) ([]model.Company, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select companies: %w", err)
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return companies, nil
}

// ListCompanies возвращает все фирмы платформы.
func (r *PostgresRepository) ListCompanies(ctx context.Context) ([]model.Company, error) {
	return r.listCompanies(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY created_at DESC`)
}

// ListActiveCompaniesByCity возвращает активные фирмы, обслуживающие город.
func (r *PostgresRepository) ListActiveCompaniesByCity(ctx context.Context, city string) ([]model.Company, error) {
	return r.listCompanies(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE city = $1 AND is_active ORDER BY created_at`, city)
}

// CompanyUpdate описывает частичное обновление профиля фирмы.
type CompanyUpdate struct {
	CompanyName *string
	IsActive    *bool
}

// UpdateCompany применяет частичное обновление к профилю фирмы.
func (r *PostgresRepository) UpdateCompany(ctx context.Context, userID string, upd CompanyUpdate) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE companies SET
			company_name = COALESCE($2, company_name),
			is_active    = COALESCE($3, is_active)
		 WHERE user_id = $1`,
		userID, upd.CompanyName, upd.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// CountCompanies возвращает число зарегистрированных фирм.
func (r *PostgresRepository) CountCompanies(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM companies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return n, nil
}
