package handler

import (
	"net/http"

	"github.com/pkordes/shuttle-control/internal/auth"
	"github.com/pkordes/shuttle-control/internal/service"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Type     service.LoginType `json:"type"`
	Username string            `json:"username"`
	Password string            `json:"password"`
}

// Login handles POST /auth/login. An omitted type logs in as admin.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Type == "" {
		body.Type = service.LoginAdmin
	}
	sess, err := s.Auth.Login(r.Context(), body.Type, body.Username, body.Password)
	if err != nil {
		respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Me handles GET /auth/me and returns the session user.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		respondError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
