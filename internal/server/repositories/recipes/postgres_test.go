package recipes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recipeColumns = []string{
	"id", "name", "description", "ingredients", "instructions",
	"prep_time_minutes", "category", "image_url", "version", "created_at", "updated_at",
}

const (
	id1 = "6f1c1f0e-4a8e-4d0e-9a51-1b1f5a0e0001"
	id2 = "6f1c1f0e-4a8e-4d0e-9a51-1b1f5a0e0002"
)

func newRepo(t *testing.T) (*PostgresRepository, *dbx.UnitOfWork, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	uow := dbx.NewUnitOfWork(db)
	return NewPostgresRepository(uow), uow, mock
}

func sampleRecipe(id string) *models.Recipe {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &models.Recipe{
		ID: id,
		RecipeDetails: models.RecipeDetails{
			Name: "Caesar salad", Description: "Fresh", Ingredients: "Lettuce", Instructions: "Toss",
			PrepTimeMinutes: 20, Category: "Salad", ImageURL: "https://img/salad.png",
		},
		Version:   1,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func addRow(rows *sqlmock.Rows, r *models.Recipe) *sqlmock.Rows {
	return rows.AddRow(r.ID, r.Name, r.Description, r.Ingredients, r.Instructions,
		r.PrepTimeMinutes, r.Category, r.ImageURL, r.Version, r.CreatedAt, r.UpdatedAt)
}

func TestGetByID(t *testing.T) {
	q := `(?s)FROM\s+recipes\s+WHERE\s+id\s*=\s*\$1$`

	t.Run("found", func(t *testing.T) {
		repo, _, mock := newRepo(t)
		want := sampleRecipe(id1)
		mock.ExpectQuery(q).WithArgs(id1).WillReturnRows(addRow(sqlmock.NewRows(recipeColumns), want))

		got, err := repo.GetByID(context.Background(), id1)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("absent", func(t *testing.T) {
		repo, _, mock := newRepo(t)
		mock.ExpectQuery(q).WithArgs(id1).WillReturnError(sql.ErrNoRows)

		got, err := repo.GetByID(context.Background(), id1)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("malformed id never reaches the database", func(t *testing.T) {
		repo, _, mock := newRepo(t)

		got, err := repo.GetByID(context.Background(), "not-a-uuid")
		require.NoError(t, err)
		assert.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		repo, _, mock := newRepo(t)
		mock.ExpectQuery(q).WillReturnError(errors.New("db down"))

		_, err := repo.GetByID(context.Background(), id1)
		require.ErrorContains(t, err, "db error: db down")
	})
}

func TestGetAll_InsertionOrder(t *testing.T) {
	repo, _, mock := newRepo(t)
	a, b := sampleRecipe(id1), sampleRecipe(id2)
	rows := addRow(addRow(sqlmock.NewRows(recipeColumns), a), b)
	mock.ExpectQuery(`(?s)FROM\s+recipes\s+ORDER\s+BY\s+seq$`).WillReturnRows(rows)

	got, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, id1, got[0].ID)
	assert.Equal(t, id2, got[1].ID)
}

func TestGetAll_Empty(t *testing.T) {
	repo, _, mock := newRepo(t)
	mock.ExpectQuery(`ORDER\s+BY\s+seq`).WillReturnRows(sqlmock.NewRows(recipeColumns))

	got, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExistsAndCount(t *testing.T) {
	repo, _, mock := newRepo(t)
	mock.ExpectQuery(`SELECT\s+EXISTS`).WithArgs(id1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT\s+COUNT\(\*\)\s+FROM\s+recipes`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	ok, err := repo.Exists(context.Background(), id1)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ok, err = repo.Exists(context.Background(), "bogus")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWrites_AreStagedUntilCommit(t *testing.T) {
	repo, uow, mock := newRepo(t)
	r := sampleRecipe(id1)

	require.NoError(t, repo.Create(r))
	require.NoError(t, repo.Delete(sampleRecipe(id2)))
	assert.Equal(t, 2, uow.Pending())
	require.NoError(t, mock.ExpectationsWereMet(), "nothing may hit the database before commit")

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+recipes`).
		WithArgs(r.ID, r.Name, r.Description, r.Ingredients, r.Instructions,
			r.PrepTimeMinutes, r.Category, r.ImageURL, r.Version, r.CreatedAt, r.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE\s+FROM\s+recipes\s+WHERE\s+id\s*=\s*\$1$`).WithArgs(id2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	n, err := uow.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_BumpsVersion(t *testing.T) {
	repo, uow, mock := newRepo(t)
	r := sampleRecipe(id1)
	r.Name = "Grilled Caesar"

	require.NoError(t, repo.Update(r))

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)^UPDATE\s+recipes\s+SET.*version\s*=\s*version\s*\+\s*1\s+WHERE\s+id\s*=\s*\$1\s+AND\s+version\s*=\s*\$2$`).
		WithArgs(id1, int64(1), "Grilled Caesar", r.Description, r.Ingredients, r.Instructions,
			r.PrepTimeMinutes, r.Category, r.ImageURL, r.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := uow.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(2), r.Version)
}

func TestUpdate_VersionConflictRollsBack(t *testing.T) {
	repo, uow, mock := newRepo(t)
	r := sampleRecipe(id1)

	require.NoError(t, repo.Update(r))

	mock.ExpectBegin()
	mock.ExpectExec(`^UPDATE\s+recipes`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT\s+EXISTS`).WithArgs(id1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := uow.Commit(context.Background())
	require.ErrorIs(t, err, common.ErrVersionConflict)
	assert.Equal(t, int64(1), r.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_DeletedMeanwhileIsGone(t *testing.T) {
	repo, uow, mock := newRepo(t)
	r := sampleRecipe(id1)

	require.NoError(t, repo.Update(r))

	mock.ExpectBegin()
	mock.ExpectExec(`^UPDATE\s+recipes`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT\s+EXISTS`).WithArgs(id1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := uow.Commit(context.Background())
	require.ErrorIs(t, err, ErrGone)
	assert.False(t, errors.Is(err, common.ErrVersionConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStage_AfterCommitFails(t *testing.T) {
	repo, uow, _ := newRepo(t)
	_, err := uow.Commit(context.Background())
	require.NoError(t, err)

	require.ErrorIs(t, repo.Create(sampleRecipe(id1)), dbx.ErrUnitOfWorkClosed)
}
