package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// resource serves the five CRUD endpoints of one registry.
type resource[T any] struct {
	name string // singular, used in error messages
	svc  Registry[T]
	// prepare copies the path id into a decoded body and clears the fields
	// the server owns. id is empty on create.
	prepare func(v T, id string) T
}

func (rs resource[T]) mount(r chi.Router) {
	r.Get("/", rs.list)
	r.Post("/", rs.create)
	r.Get("/{id}", rs.get)
	r.Put("/{id}", rs.update)
	r.Delete("/{id}", rs.delete)
}

// list handles GET /<resource>?search=&page=&limit=.
func (rs resource[T]) list(w http.ResponseWriter, r *http.Request) {
	var search *string
	if !query(w, r, "search", &search) {
		return
	}
	items, err := rs.svc.List(r.Context(), deref(search))
	if err != nil {
		respondError(w, r, err, rs.name)
		return
	}
	page, ok := paginate(w, r, items)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (rs resource[T]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := rs.svc.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err, rs.name)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (rs resource[T]) create(w http.ResponseWriter, r *http.Request) {
	var body T
	if !decodeBody(w, r, &body) {
		return
	}
	created, err := rs.svc.Create(r.Context(), rs.prepare(body, ""))
	if err != nil {
		respondError(w, r, err, rs.name)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rs resource[T]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body T
	if !decodeBody(w, r, &body) {
		return
	}
	updated, err := rs.svc.Update(r.Context(), rs.prepare(body, id))
	if err != nil {
		respondError(w, r, err, rs.name)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (rs resource[T]) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := rs.svc.Delete(r.Context(), id); err != nil {
		respondError(w, r, err, rs.name)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func conductorResource(svc Registry[domain.Conductor]) resource[domain.Conductor] {
	return resource[domain.Conductor]{
		name: "conductor",
		svc:  svc,
		prepare: func(c domain.Conductor, id string) domain.Conductor {
			c.ID, c.CreatedAt = id, time.Time{}
			return c
		},
	}
}

func userResource(svc Registry[domain.User]) resource[domain.User] {
	return resource[domain.User]{
		name: "user",
		svc:  svc,
		prepare: func(u domain.User, id string) domain.User {
			u.ID, u.CreatedAt = id, time.Time{}
			return u
		},
	}
}

func signatureResource(svc Registry[domain.Signature]) resource[domain.Signature] {
	return resource[domain.Signature]{
		name: "signature",
		svc:  svc,
		prepare: func(s domain.Signature, id string) domain.Signature {
			s.ID, s.CreatedAt = id, time.Time{}
			return s
		},
	}
}

// The QR code is generated on create and kept on update; clients cannot
// supply one.
func passengerResource(svc Registry[domain.Passenger]) resource[domain.Passenger] {
	return resource[domain.Passenger]{
		name: "passenger",
		svc:  svc,
		prepare: func(p domain.Passenger, id string) domain.Passenger {
			p.ID, p.CreatedAt, p.QRCode = id, time.Time{}, ""
			return p
		},
	}
}
