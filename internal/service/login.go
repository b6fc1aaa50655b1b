package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/shuttle-control/internal/auth"
	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/repo"
)

// LoginType selects which kind of account a login attempt is for.
type LoginType string

const (
	LoginAdmin     LoginType = "admin"
	LoginConductor LoginType = "conductor"
)

// RootCredentials is the configured super administrator login.
// An empty Password disables root login.
type RootCredentials struct {
	Username string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// AuthService resolves login attempts to users and issues session tokens.
type AuthService struct {
	users      repo.UserRepo
	conductors repo.ConductorRepo
	creds      repo.CredentialRepo
	tokens     *auth.Tokens
	root       RootCredentials
	now        func() time.Time
}

func NewAuthService(users repo.UserRepo, conductors repo.ConductorRepo, creds repo.CredentialRepo, tokens *auth.Tokens, root RootCredentials) *AuthService {
	return &AuthService{
		users:      users,
		conductors: conductors,
		creds:      creds,
		tokens:     tokens,
		root:       root,
		now:        time.Now,
	}
}

// Login checks the credentials for the given account type and returns a
// session. Every rejected attempt yields domain.ErrUnauthorized.
//
// Admin logins match the configured root credentials first, then any admin
// user whose national id equals the username; the password is not checked
// for the latter. Conductor logins need an active credential whose password
// verifies and whose conductor still exists.
func (s *AuthService) Login(ctx context.Context, typ LoginType, username, password string) (Session, error) {
	var (
		u   domain.User
		err error
	)
	switch typ {
	case LoginAdmin:
		u, err = s.loginAdmin(ctx, username, password)
	case LoginConductor:
		u, err = s.loginConductor(ctx, username, password)
	default:
		return Session{}, fmt.Errorf("%w: login type must be admin or conductor", domain.ErrValidation)
	}
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}

	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return Session{User: u, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) loginAdmin(ctx context.Context, username, password string) (domain.User, error) {
	if s.root.Password != "" && equal(username, s.root.Username) && equal(password, s.root.Password) {
		return domain.RootUser(s.now()), nil
	}

	u, err := s.users.GetByCedula(ctx, domain.RoleAdmin, username)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrUnauthorized
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *AuthService) loginConductor(ctx context.Context, username, password string) (domain.User, error) {
	cred, err := s.creds.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrUnauthorized
	}
	if err != nil {
		return domain.User{}, err
	}
	if !cred.Active || !s.checkPassword(ctx, cred, password) {
		return domain.User{}, domain.ErrUnauthorized
	}

	c, err := s.conductors.GetByID(ctx, cred.ConductorID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrUnauthorized
	}
	if err != nil {
		return domain.User{}, err
	}
	return c.User(), nil
}

// checkPassword verifies password against the stored credential. A
// plain-text password left by an imported dump is compared directly and
// replaced with its hash once it has matched.
func (s *AuthService) checkPassword(ctx context.Context, cred domain.ConductorCredential, password string) bool {
	if auth.IsHash(cred.Password) {
		return auth.CheckPassword(cred.Password, password)
	}
	if !equal(cred.Password, password) {
		return false
	}

	hash, err := auth.HashPassword(password)
	if err == nil {
		cred.Password = hash
		_, err = s.creds.Update(ctx, cred)
	}
	if err != nil {
		slog.WarnContext(ctx, "credential password upgrade failed", "credential_id", cred.ID, "error", err)
	}
	return true
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
