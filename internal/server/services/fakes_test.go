package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/roles"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func expectCommits(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

// --- in-memory users ---

type memUsers struct {
	mu        sync.Mutex
	byID      map[string]*models.Identity
	createErr error
	getErr    error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*models.Identity{}} }

func (f *memUsers) Create(_ context.Context, u *models.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *memUsers) find(match func(*models.Identity) bool) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *memUsers) GetByID(_ context.Context, id string) (*models.Identity, error) {
	return f.find(func(u *models.Identity) bool { return u.ID == id })
}

func (f *memUsers) GetByEmail(_ context.Context, email string) (*models.Identity, error) {
	return f.find(func(u *models.Identity) bool { return strings.EqualFold(u.Email, email) })
}

func (f *memUsers) GetByUserName(_ context.Context, name string) (*models.Identity, error) {
	return f.find(func(u *models.Identity) bool { return u.UserName == name })
}

func (f *memUsers) UpdateLockout(_ context.Context, id string, failed int, end *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.AccessFailedCount = failed
	u.LockoutEnd = end
	return nil
}

func (f *memUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type memRoles map[string][]string

func (m memRoles) ListForUser(_ context.Context, userID string) ([]string, error) {
	if r, ok := m[userID]; ok {
		return r, nil
	}
	return []string{}, nil
}

// --- in-memory recipes, staged on the unit of work ---

type recipeStore struct {
	mu      sync.Mutex
	rows    []*models.Recipe
	getErr  error
	applied int
	// afterGet runs after every GetByID; tests use it to simulate a
	// concurrent writer.
	afterGet func(id string)
}

func (s *recipeStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return
		}
	}
}

func (s *recipeStore) bumpVersion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.ID == id {
			r.Version++
		}
	}
}

type memRecipes struct {
	s   *recipeStore
	uow *dbx.UnitOfWork
}

func (m *memRecipes) GetByID(_ context.Context, id string) (*models.Recipe, error) {
	m.s.mu.Lock()
	if m.s.getErr != nil {
		m.s.mu.Unlock()
		return nil, m.s.getErr
	}
	var out *models.Recipe
	for _, r := range m.s.rows {
		if r.ID == id {
			cp := *r
			out = &cp
		}
	}
	hook := m.s.afterGet
	m.s.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	return out, nil
}

func (m *memRecipes) GetAll(context.Context) ([]*models.Recipe, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*models.Recipe{}
	for _, r := range m.s.rows {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRecipes) Exists(ctx context.Context, id string) (bool, error) {
	r, err := m.GetByID(ctx, id)
	return r != nil, err
}

func (m *memRecipes) Count(context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.rows), nil
}

func (m *memRecipes) Create(r *models.Recipe) error {
	cp := *r
	return m.uow.Stage(func(context.Context, dbx.DBTX) (int64, error) {
		m.s.mu.Lock()
		defer m.s.mu.Unlock()
		m.s.rows = append(m.s.rows, &cp)
		m.s.applied++
		return 1, nil
	})
}

func (m *memRecipes) Update(r *models.Recipe) error {
	cp := *r
	return m.uow.Stage(func(context.Context, dbx.DBTX) (int64, error) {
		m.s.mu.Lock()
		defer m.s.mu.Unlock()
		for i, row := range m.s.rows {
			if row.ID != cp.ID {
				continue
			}
			if row.Version != cp.Version {
				return 0, common.ErrVersionConflict
			}
			cp.Version++
			m.s.rows[i] = &cp
			m.s.applied++
			r.Version = cp.Version
			return 1, nil
		}
		return 0, recipes.ErrGone
	})
}

func (m *memRecipes) Delete(r *models.Recipe) error {
	id := r.ID
	return m.uow.Stage(func(context.Context, dbx.DBTX) (int64, error) {
		m.s.mu.Lock()
		defer m.s.mu.Unlock()
		for i, row := range m.s.rows {
			if row.ID == id {
				m.s.rows = append(m.s.rows[:i], m.s.rows[i+1:]...)
				m.s.applied++
				return 1, nil
			}
		}
		return 0, nil
	})
}

// --- repository manager ---

type memRepoManager struct {
	users   *memUsers
	roles   memRoles
	recipes *recipeStore
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{users: newMemUsers(), roles: memRoles{}, recipes: &recipeStore{}}
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *memRepoManager) Roles(dbx.DBTX) roles.Repository              { return m.roles }
func (m *memRepoManager) Recipes(uow *dbx.UnitOfWork) recipes.Repository {
	return &memRecipes{s: m.recipes, uow: uow}
}
