// Package services contains application services for the recipectl client.
// This file defines the authentication service: register, login and the
// housekeeping of the locally cached session.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/client/client"
	"github.com/dmitrijs2005/recipekeeper/internal/client/models"
	"github.com/dmitrijs2005/recipekeeper/internal/client/repositories/sessions"
)

// ErrNotLoggedIn is returned when no unexpired session is cached for the
// configured server.
var ErrNotLoggedIn = errors.New("not logged in")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a new user on the server.
//   - Login: authenticate against the server and cache the session.
//   - Logout: forget the cached session.
//   - Session: return the cached session or ErrNotLoggedIn.
type AuthService interface {
	Register(ctx context.Context, userName, email string, password, confirm []byte) error
	Login(ctx context.Context, email string, password []byte) (*models.Session, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*models.Session, error)
}

type authService struct {
	client    client.Client
	sessions  sessions.Repository
	serverURL string
	now       func() time.Time
}

// NewAuthService binds the API client and the session cache. Sessions are
// keyed by serverURL so several servers can be used side by side.
func NewAuthService(c client.Client, repo sessions.Repository, serverURL string) AuthService {
	return &authService{client: c, sessions: repo, serverURL: serverURL, now: time.Now}
}

func (a *authService) Register(ctx context.Context, userName, email string, password, confirm []byte) error {
	return a.client.Register(ctx, client.RegisterRequest{
		UserName:        userName,
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
	})
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.Session, error) {
	s, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if err := a.sessions.Save(ctx, a.serverURL, s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return s, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.sessions.Delete(ctx, a.serverURL)
}

// Session drops an expired session from the cache before reporting
// ErrNotLoggedIn.
func (a *authService) Session(ctx context.Context) (*models.Session, error) {
	s, err := a.sessions.Get(ctx, a.serverURL)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNotLoggedIn
	}
	if s.Expired(a.now()) {
		if err := a.sessions.Delete(ctx, a.serverURL); err != nil {
			return nil, err
		}
		return nil, ErrNotLoggedIn
	}
	return s, nil
}
