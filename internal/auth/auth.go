// Package auth issues and verifies session tokens and hashes conductor
// passwords. A session token carries the logged-in user, so no session state
// is kept in storage.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// Claims is the payload of a session token. The user id is the subject.
type Claims struct {
	Name   string      `json:"name"`
	Cedula string      `json:"cedula"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a Tokens that signs with secret and issues tokens valid for ttl.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for u and its expiry time.
func (t *Tokens) Issue(u domain.User) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := Claims{
		Name:   u.Name,
		Cedula: u.Cedula,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth.Tokens.Issue: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies token and returns the user it was issued for.
// Any invalid, expired or foreign token yields domain.ErrUnauthorized.
func (t *Tokens) Parse(token string) (domain.User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("auth.Tokens.Parse: %v: %w", err, domain.ErrUnauthorized)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return domain.User{}, fmt.Errorf("auth.Tokens.Parse: incomplete claims: %w", domain.ErrUnauthorized)
	}

	u := domain.User{
		ID:     claims.Subject,
		Name:   claims.Name,
		Cedula: claims.Cedula,
		Role:   claims.Role,
	}
	if claims.IssuedAt != nil {
		u.CreatedAt = claims.IssuedAt.Time
	}
	return u, nil
}

// HashPassword returns the bcrypt hash stored on a conductor credential.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth.HashPassword: %w", err)
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsHash reports whether s is a bcrypt hash. Credentials imported from a
// browser storage dump still hold plain-text passwords.
func IsHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

type userKey struct{}

// WithUser returns a copy of ctx carrying the session user.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the session user stored by WithUser.
func UserFrom(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey{}).(domain.User)
	return u, ok
}

// RequireUser is UserFrom for code paths that must not run anonymously.
func RequireUser(ctx context.Context) (domain.User, error) {
	u, ok := UserFrom(ctx)
	if !ok {
		return domain.User{}, errors.New("auth: no session user in context")
	}
	return u, nil
}
