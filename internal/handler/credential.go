package handler

import (
	"net/http"
	"time"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// Credential is the API view of a conductor login. The password hash never
// leaves the server.
type Credential struct {
	ID          string    `json:"id"`
	ConductorID string    `json:"conductorId"`
	Username    string    `json:"username"`
	Active      bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateCredentialRequest is the body of POST /credentials.
type CreateCredentialRequest struct {
	ConductorID string `json:"conductorId"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

func credentialToResponse(c domain.ConductorCredential) Credential {
	return Credential{
		ID:          c.ID,
		ConductorID: c.ConductorID,
		Username:    c.Username,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
	}
}

// ListCredentials handles GET /credentials.
func (s *Server) ListCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := s.Credentials.List(r.Context())
	if err != nil {
		respondError(w, r, err, "credential")
		return
	}
	views := make([]Credential, len(creds))
	for i, c := range creds {
		views[i] = credentialToResponse(c)
	}
	page, ok := paginate(w, r, views)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateCredential handles POST /credentials.
// A credential for an unknown conductor is rejected with 422.
func (s *Server) CreateCredential(w http.ResponseWriter, r *http.Request) {
	var body CreateCredentialRequest
	if !decodeBody(w, r, &body) {
		return
	}
	c, err := s.Credentials.Create(r.Context(), body.ConductorID, body.Username, body.Password)
	if err != nil {
		respondError(w, r, err, "credential")
		return
	}
	writeJSON(w, http.StatusCreated, credentialToResponse(c))
}

// ToggleCredential handles POST /credentials/{id}/toggle.
func (s *Server) ToggleCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := s.Credentials.Toggle(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "credential")
		return
	}
	writeJSON(w, http.StatusOK, credentialToResponse(c))
}

// DeleteCredential handles DELETE /credentials/{id}.
func (s *Server) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.Credentials.Delete(r.Context(), id); err != nil {
		respondError(w, r, err, "credential")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
