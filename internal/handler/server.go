// Package handler implements the HTTP API for the shuttle control server.
// All handlers are methods on Server. Methods are split into resource files
// (passenger.go, trip.go, report.go, etc.) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/middleware"
	"github.com/pkordes/shuttle-control/internal/report"
	"github.com/pkordes/shuttle-control/internal/service"
	"github.com/pkordes/shuttle-control/spec"
)

// Registry is the CRUD surface shared by the conductor, user, signature and
// passenger services. Defining the interfaces here, in the consumer package,
// lets handler tests inject mocks without touching storage.
type Registry[T any] interface {
	List(ctx context.Context, search string) ([]T, error)
	GetByID(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, v T) (T, error)
	Delete(ctx context.Context, id string) error
}

// PassengerServicer adds QR management to the passenger registry.
type PassengerServicer interface {
	Registry[domain.Passenger]
	RegenerateQR(ctx context.Context, id string) (domain.Passenger, error)
	QRImage(ctx context.Context, id string) ([]byte, string, error)
}

// CredentialServicer manages conductor logins.
type CredentialServicer interface {
	List(ctx context.Context) ([]domain.ConductorCredential, error)
	Create(ctx context.Context, conductorID, username, password string) (domain.ConductorCredential, error)
	Toggle(ctx context.Context, id string) (domain.ConductorCredential, error)
	Delete(ctx context.Context, id string) error
}

// AuthServicer turns credentials into sessions.
type AuthServicer interface {
	Login(ctx context.Context, typ service.LoginType, username, password string) (service.Session, error)
}

// TripServicer is the check-in/check-out workflow.
type TripServicer interface {
	Scan(ctx context.Context, actor domain.User, text string) (domain.ScanResult, error)
	Toggle(ctx context.Context, actor domain.User, cedula string) (domain.ScanResult, error)
	ScanImage(ctx context.Context, actor domain.User, img io.Reader) (domain.ScanResult, error)
	Finish(ctx context.Context, actor domain.User, id string) (domain.Trip, error)
	GetByID(ctx context.Context, actor domain.User, id string) (domain.Trip, error)
	List(ctx context.Context, actor domain.User, f domain.TripFilter) ([]domain.Trip, error)
	Active(ctx context.Context, actor domain.User) ([]domain.Trip, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// ReportServicer builds and renders trip reports.
type ReportServicer interface {
	Build(ctx context.Context, actor domain.User, f service.ReportFilter) (domain.Report, error)
	Render(ctx context.Context, actor domain.User, f service.ReportFilter, format report.Format) (report.File, error)
}

// Deps are the collaborators of a Server. Feed may be nil, in which case
// /ws/trips is not mounted. Location is the reporting timezone and
// defaults to UTC.
type Deps struct {
	Auth        AuthServicer
	Tokens      middleware.TokenParser
	Passengers  PassengerServicer
	Conductors  Registry[domain.Conductor]
	Users       Registry[domain.User]
	Signatures  Registry[domain.Signature]
	Credentials CredentialServicer
	Trips       TripServicer
	Reports     ReportServicer
	Feed        http.Handler
	Location    *time.Location
}

// Server serves the shuttle control API.
type Server struct {
	Deps
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	if d.Location == nil {
		d.Location = time.UTC
	}
	return &Server{Deps: d}
}

// Routes mounts every endpoint on r.
//
// Authentication runs on everything except the health check, the OpenAPI
// document, the login and the live feed, which checks its own token.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)
	r.Post("/auth/login", s.Login)
	if s.Feed != nil {
		r.Handle("/ws/trips", s.Feed)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(s.Tokens))

		r.Get("/auth/me", s.Me)

		r.Post("/scan", s.Scan)
		r.Post("/scan/image", s.ScanImage)
		r.Get("/trips", s.ListTrips)
		r.Get("/trips/active", s.ActiveTrips)
		r.Get("/trips/{id}", s.GetTrip)
		r.Post("/trips/{id}/finish", s.FinishTrip)
		r.Get("/reports", s.GetReport)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleRoot, domain.RoleAdmin))

			r.Get("/dashboard/stats", s.GetStats)
			r.Route("/passengers", func(r chi.Router) {
				passengerResource(s.Passengers).mount(r)
				r.Post("/{id}/qr", s.RegenerateQR)
				r.Get("/{id}/qr.png", s.GetQRImage)
			})
			r.Route("/conductors", conductorResource(s.Conductors).mount)
			r.Route("/signatures", signatureResource(s.Signatures).mount)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleRoot))

			r.Route("/users", userResource(s.Users).mount)
			r.Route("/credentials", func(r chi.Router) {
				r.Get("/", s.ListCredentials)
				r.Post("/", s.CreateCredential)
				r.Post("/{id}/toggle", s.ToggleCredential)
				r.Delete("/{id}", s.DeleteCredential)
			})
		})
	})
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
