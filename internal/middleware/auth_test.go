package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/shuttle-control/internal/auth"
	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/middleware"
)

type tokenFunc func(string) (domain.User, error)

func (f tokenFunc) Parse(token string) (domain.User, error) { return f(token) }

var knownTokens = tokenFunc(func(token string) (domain.User, error) {
	switch token {
	case "root-token":
		return domain.User{ID: "root", Name: "Root", Role: domain.RoleRoot}, nil
	case "driver-token":
		return domain.User{ID: "c1", Name: "Pedro", Role: domain.RoleConductor}, nil
	}
	return domain.User{}, errors.New("bad token")
})

// whoAmI echoes the authenticated user's ID.
var whoAmI = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(u.ID))
})

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer root-token", http.StatusOK, "root"},
		{"lowercase scheme", "bearer driver-token", http.StatusOK, "c1"},
		{"missing header", "", http.StatusUnauthorized, `"code":"unauthorized"`},
		{"wrong scheme", "Basic root-token", http.StatusUnauthorized, `"code":"unauthorized"`},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "invalid or expired token"},
	}
	h := middleware.Authenticate(knownTokens)(whoAmI)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := middleware.Authenticate(knownTokens)(
		middleware.RequireRole(domain.RoleRoot, domain.RoleAdmin)(whoAmI),
	)

	t.Run("allowed role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/passengers", nil)
		req.Header.Set("Authorization", "Bearer root-token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/passengers", nil)
		req.Header.Set("Authorization", "Bearer driver-token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"forbidden"`)
	})

	t.Run("without authentication", func(t *testing.T) {
		bare := middleware.RequireRole(domain.RoleRoot)(whoAmI)
		rec := httptest.NewRecorder()
		bare.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
