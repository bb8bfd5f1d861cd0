package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/server/identity"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/recipekeeper/internal/server/validation"
)

type RegisterRequest struct {
	UserName        string `json:"userName" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is returned on successful login.
type Session struct {
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	Email      string    `json:"email"`
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
	Roles      []string  `json:"roles"`
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(s auth.Subject) (auth.Token, error)
}

// AuthService registers users and opens sessions.
type AuthService struct {
	credentials      identity.CredentialStore
	roles            identity.RoleProvider
	tokens           TokenIssuer
	lockoutOnFailure bool
	log              logging.Logger
}

// NewAuthService wires the service. lockoutOnFailure controls whether failed
// logins count toward lockout; locked-out identities are refused regardless.
func NewAuthService(credentials identity.CredentialStore, roles identity.RoleProvider, tokens TokenIssuer, lockoutOnFailure bool, log logging.Logger) *AuthService {
	return &AuthService{
		credentials:      credentials,
		roles:            roles,
		tokens:           tokens,
		lockoutOnFailure: lockoutOnFailure,
		log:              log.With("module", "auth"),
	}
}

// Register validates req, enforces unique email and username, and creates
// the identity. An empty Result means the user was created. Nothing is
// persisted when the Result is non-empty or an error is returned.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (validation.Result, error) {
	if res := validation.Validate(req); !res.Valid() {
		return res, nil
	}

	existing, err := s.credentials.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		s.log.Warn(ctx, "registration with existing email", "email", req.Email)
		return emailInUse(), nil
	}

	existing, err = s.credentials.FindByUserName(ctx, req.UserName)
	if err != nil {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if existing != nil {
		s.log.Warn(ctx, "registration with existing username", "username", req.UserName)
		return userNameInUse(), nil
	}

	u, res, err := s.credentials.Create(ctx, req.UserName, req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrDuplicateEmail):
		return emailInUse(), nil
	case errors.Is(err, users.ErrDuplicateUserName):
		return userNameInUse(), nil
	case err != nil:
		return nil, err
	case !res.Valid():
		s.log.Warn(ctx, "registration rejected by policy", "username", req.UserName, "errors", len(res))
		return res, nil
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID, "username", u.UserName)
	return nil, nil
}

func emailInUse() validation.Result {
	return validation.Fail("email", CodeEmailInUse, "This email is already in use.")
}

func userNameInUse() validation.Result {
	return validation.Fail("userName", CodeUserNameInUse, "This username is already in use.")
}

// Login returns nil, nil for every rejected attempt: invalid input, unknown
// email, wrong password or lockout. Callers cannot tell these apart.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if res := validation.Validate(req); !res.Valid() {
		s.log.Warn(ctx, "login validation failed", "email", req.Email, "errors", len(res))
		return nil, nil
	}

	u, err := s.credentials.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if u == nil {
		s.log.Warn(ctx, "login for unknown email", "email", req.Email)
		return nil, nil
	}

	result, err := s.credentials.CheckPasswordSignIn(ctx, u, req.Password, s.lockoutOnFailure)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if result != identity.SignInSucceeded {
		s.log.Warn(ctx, "login rejected", "email", req.Email, "reason", result.String())
		return nil, nil
	}

	roles, err := s.roles.Roles(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	if roles == nil {
		roles = []string{}
	}

	tok, err := s.tokens.Issue(auth.Subject{UserID: u.ID, UserName: u.UserName, Email: u.Email, Roles: roles})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info(ctx, "user logged in", "user_id", u.ID)

	return &Session{
		UserID:     u.ID,
		UserName:   u.UserName,
		Email:      u.Email,
		Token:      tok.Value,
		Expiration: tok.ExpiresAt,
		Roles:      roles,
	}, nil
}
