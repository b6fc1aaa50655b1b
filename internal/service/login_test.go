package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/shuttle-control/internal/auth"
	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/service"
)

var testRoot = service.RootCredentials{Username: "Petroboscan", Password: "root-pass"}

type loginDeps struct {
	users      *mockUserRepo
	conductors *mockConductorRepo
	creds      *mockCredentialRepo
}

func newLoginDeps() loginDeps {
	return loginDeps{
		users:      &mockUserRepo{getByCedula: func(context.Context, domain.Role, string) (domain.User, error) { return domain.User{}, domain.ErrNotFound }},
		conductors: &mockConductorRepo{getByID: notFound[domain.Conductor]},
		creds:      &mockCredentialRepo{getByUsername: notFound[domain.ConductorCredential]},
	}
}

func (d loginDeps) service(root service.RootCredentials) (*service.AuthService, *auth.Tokens) {
	tokens := auth.NewTokens("test-secret", time.Hour)
	return service.NewAuthService(d.users, d.conductors, d.creds, tokens, root), tokens
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := auth.HashPassword(pw)
	require.NoError(t, err)
	return h
}

func TestAuthService_Login_Root(t *testing.T) {
	svc, tokens := newLoginDeps().service(testRoot)

	sess, err := svc.Login(context.Background(), service.LoginAdmin, "Petroboscan", "root-pass")

	require.NoError(t, err)
	assert.Equal(t, domain.RootUserID, sess.User.ID)
	assert.Equal(t, domain.RoleRoot, sess.User.Role)

	u, err := tokens.Parse(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RootUserID, u.ID)
}

func TestAuthService_Login_RootWrongPassword(t *testing.T) {
	svc, _ := newLoginDeps().service(testRoot)

	_, err := svc.Login(context.Background(), service.LoginAdmin, "Petroboscan", "guess")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_Login_RootDisabledWithoutPassword(t *testing.T) {
	svc, _ := newLoginDeps().service(service.RootCredentials{Username: "Petroboscan"})

	_, err := svc.Login(context.Background(), service.LoginAdmin, "Petroboscan", "")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_Login_AdminByCedula(t *testing.T) {
	deps := newLoginDeps()
	deps.users.getByCedula = func(_ context.Context, role domain.Role, cedula string) (domain.User, error) {
		if role == domain.RoleAdmin && cedula == "12345678" {
			return domain.User{ID: "1", Name: "Administrador", Cedula: cedula, Role: domain.RoleAdmin}, nil
		}
		return domain.User{}, domain.ErrNotFound
	}
	svc, _ := deps.service(testRoot)

	sess, err := svc.Login(context.Background(), service.LoginAdmin, "12345678", "")

	require.NoError(t, err)
	assert.Equal(t, "1", sess.User.ID)
	assert.NotEmpty(t, sess.Token)

	_, err = svc.Login(context.Background(), service.LoginAdmin, "99999999", "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_Login_UnknownType(t *testing.T) {
	svc, _ := newLoginDeps().service(testRoot)

	_, err := svc.Login(context.Background(), "driver", "x", "y")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthService_Login_Conductor(t *testing.T) {
	conductor := domain.Conductor{ID: "c1", Name: "Pedro Pérez", Cedula: "10111222", Plate: "AB123CD"}
	hash := mustHash(t, "s3creta")

	tests := []struct {
		name     string
		cred     domain.ConductorCredential
		password string
		missing  bool
		wantErr  error
	}{
		{name: "valid", cred: domain.ConductorCredential{ConductorID: "c1", Password: hash, Active: true}, password: "s3creta"},
		{name: "wrong password", cred: domain.ConductorCredential{ConductorID: "c1", Password: hash, Active: true}, password: "nope", wantErr: domain.ErrUnauthorized},
		{name: "inactive", cred: domain.ConductorCredential{ConductorID: "c1", Password: hash}, password: "s3creta", wantErr: domain.ErrUnauthorized},
		{name: "conductor deleted", cred: domain.ConductorCredential{ConductorID: "c1", Password: hash, Active: true}, password: "s3creta", missing: true, wantErr: domain.ErrUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deps := newLoginDeps()
			deps.creds.getByUsername = func(_ context.Context, _ string) (domain.ConductorCredential, error) { return tc.cred, nil }
			if !tc.missing {
				deps.conductors.getByID = func(_ context.Context, _ string) (domain.Conductor, error) { return conductor, nil }
			}
			svc, _ := deps.service(testRoot)

			sess, err := svc.Login(context.Background(), service.LoginConductor, "pedro", tc.password)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, conductor.User(), sess.User)
		})
	}
}

func TestAuthService_Login_ConductorUnknownUsername(t *testing.T) {
	svc, _ := newLoginDeps().service(testRoot)

	_, err := svc.Login(context.Background(), service.LoginConductor, "nobody", "x")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_Login_UpgradesPlainTextPassword(t *testing.T) {
	var saved domain.ConductorCredential
	deps := newLoginDeps()
	deps.creds.getByUsername = func(_ context.Context, _ string) (domain.ConductorCredential, error) {
		return domain.ConductorCredential{ID: "cr1", ConductorID: "c1", Password: "legacy", Active: true}, nil
	}
	deps.creds.update = func(_ context.Context, c domain.ConductorCredential) (domain.ConductorCredential, error) {
		saved = c
		return c, nil
	}
	deps.conductors.getByID = func(_ context.Context, id string) (domain.Conductor, error) {
		return domain.Conductor{ID: id, Name: "Pedro"}, nil
	}
	svc, _ := deps.service(testRoot)

	_, err := svc.Login(context.Background(), service.LoginConductor, "pedro", "legacy")

	require.NoError(t, err)
	assert.Equal(t, "cr1", saved.ID)
	assert.True(t, auth.IsHash(saved.Password))
	assert.True(t, auth.CheckPassword(saved.Password, "legacy"))
}
