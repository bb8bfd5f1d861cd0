// Package auth issues and verifies the signed bearer tokens handed out at
// login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultLifetime is used when Options.Lifetime is zero.
const DefaultLifetime = 60 * time.Minute

var (
	ErrMissingSigningKey = errors.New("jwt signing key is not configured")
	ErrMissingIssuer     = errors.New("jwt issuer is not configured")
	ErrMissingAudience   = errors.New("jwt audience is not configured")
	ErrInvalidLifetime   = errors.New("jwt lifetime must be positive")
)

// Claims is the payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	Email      string   `json:"email"`
	NameID     string   `json:"nameid"`
	UniqueName string   `json:"unique_name"`
	Roles      []string `json:"roles"`
}

// Options configure a TokenIssuer.
type Options struct {
	SigningKey string
	Issuer     string
	Audience   string
	Lifetime   time.Duration
}

// Subject is the verified identity a token is issued for.
type Subject struct {
	UserID   string
	UserName string
	Email    string
	Roles    []string
}

// Token is a signed token together with the values stamped into it.
type Token struct {
	Value     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs HS256 tokens and verifies them. It holds no mutable
// state and is safe for concurrent use.
type TokenIssuer struct {
	key      []byte
	issuer   string
	audience string
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenIssuer validates o. Missing key, issuer or audience is a
// configuration error and should stop the server from starting.
func NewTokenIssuer(o Options) (*TokenIssuer, error) {
	switch {
	case o.SigningKey == "":
		return nil, ErrMissingSigningKey
	case o.Issuer == "":
		return nil, ErrMissingIssuer
	case o.Audience == "":
		return nil, ErrMissingAudience
	case o.Lifetime < 0:
		return nil, ErrInvalidLifetime
	}
	if o.Lifetime == 0 {
		o.Lifetime = DefaultLifetime
	}
	return &TokenIssuer{
		key:      []byte(o.SigningKey),
		issuer:   o.Issuer,
		audience: o.Audience,
		lifetime: o.Lifetime,
		now:      time.Now,
	}, nil
}

// Lifetime returns how long issued tokens stay valid.
func (i *TokenIssuer) Lifetime() time.Duration { return i.lifetime }

// Issue signs a token for s. Timestamps have second precision, so ExpiresAt
// minus IssuedAt always equals the configured lifetime.
func (i *TokenIssuer) Issue(s Subject) (Token, error) {
	iat := i.now().UTC().Truncate(time.Second)
	exp := iat.Add(i.lifetime)
	jti := uuid.NewString()

	roles := s.Roles
	if roles == nil {
		roles = []string{}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			ID:        jti,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email:      s.Email,
		NameID:     s.UserID,
		UniqueName: s.UserName,
		Roles:      roles,
	})

	signed, err := token.SignedString(i.key)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{Value: signed, ID: jti, IssuedAt: iat, ExpiresAt: exp}, nil
}

// Verify checks signature, algorithm, issuer, audience and lifetime with no
// clock skew allowance. Expired tokens yield common.ErrTokenExpired, every
// other failure wraps common.ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
