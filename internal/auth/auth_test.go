package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/shuttle-control/internal/domain"
)

func fixedTokens(secret string, ttl time.Duration, at time.Time) *Tokens {
	tk := NewTokens(secret, ttl)
	tk.now = func() time.Time { return at }
	return tk
}

func TestTokens_IssueParse(t *testing.T) {
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	tk := fixedTokens("secret", time.Hour, now)
	in := domain.User{ID: "c-1", Name: "Pedro", Cedula: "15000111", Role: domain.RoleConductor}

	token, exp, err := tk.Issue(in)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	got, err := tk.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Cedula, got.Cedula)
	assert.Equal(t, in.Role, got.Role)
}

func TestTokens_Parse_Expired(t *testing.T) {
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	token, _, err := fixedTokens("secret", time.Hour, now).Issue(domain.RootUser(now))
	require.NoError(t, err)

	_, err = fixedTokens("secret", time.Hour, now.Add(2*time.Hour)).Parse(token)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokens_Parse_WrongSecret(t *testing.T) {
	now := time.Now()
	token, _, err := fixedTokens("one", time.Hour, now).Issue(domain.RootUser(now))
	require.NoError(t, err)

	_, err = fixedTokens("two", time.Hour, now).Parse(token)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokens_Parse_Garbage(t *testing.T) {
	_, err := NewTokens("secret", time.Hour).Parse("not.a.token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("clave123")
	require.NoError(t, err)
	assert.NotEqual(t, "clave123", hash)

	assert.True(t, CheckPassword(hash, "clave123"))
	assert.False(t, CheckPassword(hash, "clave124"))
	assert.False(t, CheckPassword("plain", "plain"), "unhashed values never match")

	assert.True(t, IsHash(hash))
	assert.False(t, IsHash("plain"))
}

func TestUserContext(t *testing.T) {
	_, ok := UserFrom(context.Background())
	assert.False(t, ok)
	_, err := RequireUser(context.Background())
	assert.Error(t, err)

	u := domain.User{ID: "1", Role: domain.RoleAdmin}
	got, ok := UserFrom(WithUser(context.Background(), u))
	require.True(t, ok)
	assert.Equal(t, u, got)
}
