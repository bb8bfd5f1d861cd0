package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectColumns = `SELECT id, username, email, password_hash, security_stamp,
		access_failed_count, lockout_end, lockout_enabled, created_at
	FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.Identity) error {
	query :=
		`INSERT INTO users (id, username, email, password_hash, security_stamp,
		     access_failed_count, lockout_end, lockout_enabled, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.UserName, u.Email, u.PasswordHash, u.SecurityStamp,
		u.AccessFailedCount, u.LockoutEnd, u.LockoutEnabled, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "users_username_key" {
				return ErrDuplicateUserName
			}
			return ErrDuplicateEmail
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	return r.getOne(ctx, selectColumns+` WHERE id = $1`, id)
}

// GetByEmail matches case-insensitively.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return r.getOne(ctx, selectColumns+` WHERE lower(email) = lower($1)`, email)
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*models.Identity, error) {
	return r.getOne(ctx, selectColumns+` WHERE username = $1`, userName)
}

func (r *PostgresRepository) UpdateLockout(ctx context.Context, id string, failedCount int, lockoutEnd *time.Time) error {
	query := `UPDATE users SET access_failed_count = $2, lockout_end = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, failedCount, lockoutEnd)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Identity, error) {
	u := &models.Identity{}
	var lockoutEnd sql.NullTime

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.UserName, &u.Email, &u.PasswordHash, &u.SecurityStamp,
		&u.AccessFailedCount, &lockoutEnd, &u.LockoutEnabled, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lockoutEnd.Valid {
		t := lockoutEnd.Time
		u.LockoutEnd = &t
	}
	return u, nil
}
