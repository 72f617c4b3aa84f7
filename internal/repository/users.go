package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mmeshcher/carpetwash-system/internal/model"
)

const userColumns = `user_id, email, name, password_hash, role, phone, city, district, address, picture, is_banned, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.UserID, &u.Email, &u.Name, &u.PasswordHash, &u.Role,
		&u.Phone, &u.City, &u.District, &u.Address, &u.Picture, &u.IsBanned, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// CreateUser сохраняет нового пользователя.
func (r *PostgresRepository) CreateUser(ctx context.Context, u *model.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (user_id, email, name, password_hash, role, phone, city, district, address, picture, is_banned, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.UserID, u.Email, u.Name, u.PasswordHash, string(u.Role),
		u.Phone, u.City, u.District, u.Address, u.Picture, u.IsBanned, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrEmailExists, u.Email)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (r *PostgresRepository) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	return scanUser(row)
}

// GetUserByEmail возвращает пользователя по адресу электронной почты.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// ListUsers возвращает всех пользователей платформы.
func (r *PostgresRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return users, nil
}

// UserUpdate описывает частичное обновление пользователя: nil-поля не меняются.
type UserUpdate struct {
	Name     *string
	Phone    *string
	City     *string
	District *string
	Address  *string
	Picture  *string
	IsBanned *bool
}

// UpdateUser применяет частичное обновление к пользователю.
func (r *PostgresRepository) UpdateUser(ctx context.Context, userID string, upd UserUpdate) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET
			name      = COALESCE($2, name),
			phone     = COALESCE($3, phone),
			city      = COALESCE($4, city),
			district  = COALESCE($5, district),
			address   = COALESCE($6, address),
			picture   = COALESCE($7, picture),
			is_banned = COALESCE($8, is_banned)
		 WHERE user_id = $1`,
		userID, upd.Name, upd.Phone, upd.City, upd.District, upd.Address, upd.Picture, upd.IsBanned,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser удаляет пользователя вместе с его сессиями и профилем фирмы.
func (r *PostgresRepository) DeleteUser(ctx context.Context, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM companies WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete company: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SetUserBanned меняет флаг блокировки. Блокировка отзывает все сессии
// пользователя в той же транзакции.
func (r *PostgresRepository) SetUserBanned(ctx context.Context, userID string, banned bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE users SET is_banned = $2 WHERE user_id = $1`, userID, banned)
	if err != nil {
		return fmt.Errorf("update ban flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	if banned {
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// CountUsersByRole возвращает число пользователей с указанной ролью.
func (r *PostgresRepository) CountUsersByRole(ctx context.Context, role model.Role) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, string(role)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
