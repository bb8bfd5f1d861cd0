package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/client/models"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, serverURL string) (*models.Session, error) {
	var (
		s       models.Session
		roles   string
		expires string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, user_name, email, token, roles, expires_at FROM sessions WHERE server_url = ?`,
		serverURL).Scan(&s.UserID, &s.UserName, &s.Email, &s.Token, &roles, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session[%s]: %w", serverURL, err)
	}

	s.Expiration, err = time.Parse(time.RFC3339Nano, expires)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session[%s] expiration: %w", serverURL, err)
	}
	s.Roles = []string{}
	if roles != "" {
		s.Roles = strings.Split(roles, ",")
	}
	return &s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, serverURL string, s *models.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (server_url, user_id, user_name, email, token, roles, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(server_url) DO UPDATE SET
			user_id = excluded.user_id,
			user_name = excluded.user_name,
			email = excluded.email,
			token = excluded.token,
			roles = excluded.roles,
			expires_at = excluded.expires_at
	`, serverURL, s.UserID, s.UserName, s.Email, s.Token, strings.Join(s.Roles, ","),
		s.Expiration.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save session[%s]: %w", serverURL, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, serverURL string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE server_url = ?`, serverURL)
	if err != nil {
		return fmt.Errorf("failed to delete session[%s]: %w", serverURL, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions`)
	if err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}
