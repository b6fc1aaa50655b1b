package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// Pagination describes the page of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Page is the envelope of every list response.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// pathID binds the {id} path parameter. On failure it writes the response
// and returns false.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil || id == "" {
		requestError(w, "invalid id path parameter")
		return "", false
	}
	return id, true
}

// query binds an optional form-style query parameter into dest, which must
// be a pointer to a pointer. On failure it writes the response and returns false.
func query(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		requestError(w, "invalid query parameter "+name)
		return false
	}
	return true
}

// paginate reads ?page= and ?limit= and slices items accordingly.
func paginate[T any](w http.ResponseWriter, r *http.Request, items []T) (Page[T], bool) {
	var page, limit *int
	if !query(w, r, "page", &page) || !query(w, r, "limit", &limit) {
		return Page[T]{}, false
	}
	params := domain.NewPaginationParams(page, limit)
	data, total := domain.Paginate(items, params)
	return Page[T]{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	}, true
}

// deref returns the pointed-to value, or the zero value for nil.
func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
