package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/google/uuid"
)

const selectColumns = `SELECT id, name, description, ingredients, instructions,
		prep_time_minutes, category, image_url, version, created_at, updated_at
	FROM recipes`

type PostgresRepository struct {
	uow *dbx.UnitOfWork
}

func NewPostgresRepository(uow *dbx.UnitOfWork) *PostgresRepository {
	return &PostgresRepository{uow: uow}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(s scanner) (*models.Recipe, error) {
	r := &models.Recipe{}
	err := s.Scan(&r.ID, &r.Name, &r.Description, &r.Ingredients, &r.Instructions,
		&r.PrepTimeMinutes, &r.Category, &r.ImageURL, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}

func (p *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	r, err := scanRecipe(p.uow.Reader().QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r, nil
}

func (p *PostgresRepository) GetAll(ctx context.Context) ([]*models.Recipe, error) {
	rows, err := p.uow.Reader().QueryContext(ctx, selectColumns+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (p *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	var ok bool
	err := p.uow.Reader().QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM recipes WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (p *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.uow.Reader().QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Create stages an insert of r.
func (p *PostgresRepository) Create(r *models.Recipe) error {
	snap := *r
	return p.uow.Stage(func(ctx context.Context, tx dbx.DBTX) (int64, error) {
		query :=
			`INSERT INTO recipes (id, name, description, ingredients, instructions,
			     prep_time_minutes, category, image_url, version, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

		res, err := tx.ExecContext(ctx, query,
			snap.ID, snap.Name, snap.Description, snap.Ingredients, snap.Instructions,
			snap.PrepTimeMinutes, snap.Category, snap.ImageURL, snap.Version, snap.CreatedAt, snap.UpdatedAt)
		if err != nil {
			return 0, fmt.Errorf("insert recipe %s: %w", snap.ID, err)
		}
		return res.RowsAffected()
	})
}

// Update stages an update of r guarded by its current version. If another
// writer committed first, the commit fails with common.ErrVersionConflict;
// if the row was deleted meanwhile, it fails with ErrGone.
func (p *PostgresRepository) Update(r *models.Recipe) error {
	snap := *r
	return p.uow.Stage(func(ctx context.Context, tx dbx.DBTX) (int64, error) {
		query :=
			`UPDATE recipes SET name = $3, description = $4, ingredients = $5, instructions = $6,
			     prep_time_minutes = $7, category = $8, image_url = $9, updated_at = $10,
			     version = version + 1
			 WHERE id = $1 AND version = $2`

		res, err := tx.ExecContext(ctx, query,
			snap.ID, snap.Version, snap.Name, snap.Description, snap.Ingredients, snap.Instructions,
			snap.PrepTimeMinutes, snap.Category, snap.ImageURL, snap.UpdatedAt)
		if err != nil {
			return 0, fmt.Errorf("update recipe %s: %w", snap.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			var exists bool
			err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM recipes WHERE id = $1)`, snap.ID).Scan(&exists)
			if err != nil {
				return 0, fmt.Errorf("update recipe %s: %w", snap.ID, err)
			}
			if !exists {
				return 0, fmt.Errorf("update recipe %s: %w", snap.ID, ErrGone)
			}
			return 0, fmt.Errorf("update recipe %s: %w", snap.ID, common.ErrVersionConflict)
		}
		r.Version = snap.Version + 1
		return n, nil
	})
}

// Delete stages removal of r. Deleting a row that is already gone affects
// zero records and is not an error.
func (p *PostgresRepository) Delete(r *models.Recipe) error {
	id := r.ID
	return p.uow.Stage(func(ctx context.Context, tx dbx.DBTX) (int64, error) {
		res, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
		if err != nil {
			return 0, fmt.Errorf("delete recipe %s: %w", id, err)
		}
		return res.RowsAffected()
	})
}
