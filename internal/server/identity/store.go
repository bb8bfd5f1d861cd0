// Package identity manages user credentials: lookup, creation with password
// policy and argon2id hashing, password checks with optional lockout, and
// role listing.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipekeeper/internal/server/validation"
	"github.com/google/uuid"
)

// SignInResult is the outcome of a password check.
type SignInResult int

const (
	SignInFailed SignInResult = iota
	SignInSucceeded
	SignInLockedOut
)

func (r SignInResult) String() string {
	switch r {
	case SignInSucceeded:
		return "succeeded"
	case SignInLockedOut:
		return "locked out"
	default:
		return "failed"
	}
}

// CredentialStore looks up, creates and authenticates identities. Lookups
// return nil, nil when nothing matches.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByUserName(ctx context.Context, userName string) (*models.Identity, error)
	// Create returns a non-empty Result, and no identity, when the username
	// or password breaks policy.
	Create(ctx context.Context, userName, email, password string) (*models.Identity, validation.Result, error)
	// CheckPasswordSignIn verifies password for u. Failure counters and
	// lockout are only updated when lockoutOnFailure is set; an identity that
	// is already locked out is refused either way.
	CheckPasswordSignIn(ctx context.Context, u *models.Identity, password string, lockoutOnFailure bool) (SignInResult, error)
}

// RoleProvider lists the roles granted to a user.
type RoleProvider interface {
	Roles(ctx context.Context, userID string) ([]string, error)
}

// LockoutOptions configure lockout after repeated failures.
type LockoutOptions struct {
	MaxFailedAccessAttempts int
	Duration                time.Duration
}

var DefaultLockoutOptions = LockoutOptions{MaxFailedAccessAttempts: 5, Duration: 5 * time.Minute}

// Store implements CredentialStore and RoleProvider on the users and roles
// repositories.
type Store struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	hasher  PasswordHasher
	policy  PasswordPolicy
	lockout LockoutOptions
	log     logging.Logger
	now     func() time.Time
}

func NewStore(db *sql.DB, repos repomanager.RepositoryManager, hasher PasswordHasher, lockout LockoutOptions, log logging.Logger) *Store {
	if lockout.MaxFailedAccessAttempts <= 0 {
		lockout.MaxFailedAccessAttempts = DefaultLockoutOptions.MaxFailedAccessAttempts
	}
	if lockout.Duration <= 0 {
		lockout.Duration = DefaultLockoutOptions.Duration
	}
	return &Store{
		db:      db,
		repos:   repos,
		hasher:  hasher,
		policy:  DefaultPasswordPolicy,
		lockout: lockout,
		log:     log.With("module", "identity"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return absentAsNil(s.repos.Users(s.db).GetByEmail(ctx, email))
}

func (s *Store) FindByUserName(ctx context.Context, userName string) (*models.Identity, error) {
	return absentAsNil(s.repos.Users(s.db).GetByUserName(ctx, userName))
}

func absentAsNil(u *models.Identity, err error) (*models.Identity, error) {
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) Create(ctx context.Context, userName, email, password string) (*models.Identity, validation.Result, error) {
	res := append(CheckUserName(userName), s.policy.Check(password)...)
	if !res.Valid() {
		return nil, res, nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.Identity{
		ID:             uuid.NewString(),
		UserName:       userName,
		Email:          email,
		PasswordHash:   hash,
		SecurityStamp:  uuid.NewString(),
		LockoutEnabled: true,
		CreatedAt:      s.now(),
	}

	uow := dbx.NewUnitOfWork(s.db)
	defer uow.Discard()

	if err := uow.Stage(func(ctx context.Context, tx dbx.DBTX) (int64, error) {
		if err := s.repos.Users(tx).Create(ctx, u); err != nil {
			return 0, err
		}
		return 1, nil
	}); err != nil {
		return nil, nil, err
	}

	if _, err := uow.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("create identity: %w", err)
	}

	s.log.Info(ctx, "identity created", "user_id", u.ID, "username", u.UserName)
	return u, nil, nil
}

func (s *Store) CheckPasswordSignIn(ctx context.Context, u *models.Identity, password string, lockoutOnFailure bool) (SignInResult, error) {
	now := s.now()
	if u.IsLockedOut(now) {
		s.log.Warn(ctx, "sign-in refused: locked out", "user_id", u.ID)
		return SignInLockedOut, nil
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return SignInFailed, fmt.Errorf("verify password: %w", err)
	}

	if ok {
		if lockoutOnFailure && (u.AccessFailedCount > 0 || u.LockoutEnd != nil) {
			if err := s.saveLockout(ctx, u, 0, nil); err != nil {
				return SignInFailed, err
			}
		}
		return SignInSucceeded, nil
	}

	if !lockoutOnFailure || !u.LockoutEnabled {
		return SignInFailed, nil
	}

	failed := u.AccessFailedCount + 1
	var end *time.Time
	if failed >= s.lockout.MaxFailedAccessAttempts {
		t := now.Add(s.lockout.Duration)
		end = &t
		failed = 0
	}
	if err := s.saveLockout(ctx, u, failed, end); err != nil {
		return SignInFailed, err
	}

	if end != nil {
		s.log.Warn(ctx, "identity locked out", "user_id", u.ID, "until", end.Format(time.RFC3339))
		return SignInLockedOut, nil
	}
	return SignInFailed, nil
}

func (s *Store) saveLockout(ctx context.Context, u *models.Identity, failed int, end *time.Time) error {
	uow := dbx.NewUnitOfWork(s.db)
	defer uow.Discard()

	if err := uow.Stage(func(ctx context.Context, tx dbx.DBTX) (int64, error) {
		if err := s.repos.Users(tx).UpdateLockout(ctx, u.ID, failed, end); err != nil {
			return 0, err
		}
		return 1, nil
	}); err != nil {
		return err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("update lockout: %w", err)
	}

	u.AccessFailedCount = failed
	u.LockoutEnd = end
	return nil
}

func (s *Store) Roles(ctx context.Context, userID string) ([]string, error) {
	roles, err := s.repos.Roles(s.db).ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []string{}
	}
	return roles, nil
}
