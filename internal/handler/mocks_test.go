package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/handler"
	"github.com/pkordes/shuttle-control/internal/report"
	"github.com/pkordes/shuttle-control/internal/service"
)

// mockRegistry is a test double for handler.Registry.
// Set only the method fields your test needs.
type mockRegistry[T any] struct {
	list    func(ctx context.Context, search string) ([]T, error)
	getByID func(ctx context.Context, id string) (T, error)
	create  func(ctx context.Context, v T) (T, error)
	update  func(ctx context.Context, v T) (T, error)
	delete  func(ctx context.Context, id string) error
}

func (m *mockRegistry[T]) List(ctx context.Context, search string) ([]T, error) {
	return m.list(ctx, search)
}
func (m *mockRegistry[T]) GetByID(ctx context.Context, id string) (T, error) {
	return m.getByID(ctx, id)
}
func (m *mockRegistry[T]) Create(ctx context.Context, v T) (T, error) { return m.create(ctx, v) }
func (m *mockRegistry[T]) Update(ctx context.Context, v T) (T, error) { return m.update(ctx, v) }
func (m *mockRegistry[T]) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

type mockPassengerServicer struct {
	mockRegistry[domain.Passenger]
	regenerateQR func(ctx context.Context, id string) (domain.Passenger, error)
	qrImage      func(ctx context.Context, id string) ([]byte, string, error)
}

func (m *mockPassengerServicer) RegenerateQR(ctx context.Context, id string) (domain.Passenger, error) {
	return m.regenerateQR(ctx, id)
}
func (m *mockPassengerServicer) QRImage(ctx context.Context, id string) ([]byte, string, error) {
	return m.qrImage(ctx, id)
}

type mockCredentialServicer struct {
	list   func(ctx context.Context) ([]domain.ConductorCredential, error)
	create func(ctx context.Context, conductorID, username, password string) (domain.ConductorCredential, error)
	toggle func(ctx context.Context, id string) (domain.ConductorCredential, error)
	delete func(ctx context.Context, id string) error
}

func (m *mockCredentialServicer) List(ctx context.Context) ([]domain.ConductorCredential, error) {
	return m.list(ctx)
}
func (m *mockCredentialServicer) Create(ctx context.Context, conductorID, username, password string) (domain.ConductorCredential, error) {
	return m.create(ctx, conductorID, username, password)
}
func (m *mockCredentialServicer) Toggle(ctx context.Context, id string) (domain.ConductorCredential, error) {
	return m.toggle(ctx, id)
}
func (m *mockCredentialServicer) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

type mockAuthServicer struct {
	login func(ctx context.Context, typ service.LoginType, username, password string) (service.Session, error)
}

func (m *mockAuthServicer) Login(ctx context.Context, typ service.LoginType, username, password string) (service.Session, error) {
	return m.login(ctx, typ, username, password)
}

type mockTripServicer struct {
	scan      func(ctx context.Context, actor domain.User, text string) (domain.ScanResult, error)
	toggle    func(ctx context.Context, actor domain.User, cedula string) (domain.ScanResult, error)
	scanImage func(ctx context.Context, actor domain.User, img io.Reader) (domain.ScanResult, error)
	finish    func(ctx context.Context, actor domain.User, id string) (domain.Trip, error)
	getByID   func(ctx context.Context, actor domain.User, id string) (domain.Trip, error)
	list      func(ctx context.Context, actor domain.User, f domain.TripFilter) ([]domain.Trip, error)
	active    func(ctx context.Context, actor domain.User) ([]domain.Trip, error)
	stats     func(ctx context.Context) (domain.Stats, error)
}

func (m *mockTripServicer) Scan(ctx context.Context, actor domain.User, text string) (domain.ScanResult, error) {
	return m.scan(ctx, actor, text)
}
func (m *mockTripServicer) Toggle(ctx context.Context, actor domain.User, cedula string) (domain.ScanResult, error) {
	return m.toggle(ctx, actor, cedula)
}
func (m *mockTripServicer) ScanImage(ctx context.Context, actor domain.User, img io.Reader) (domain.ScanResult, error) {
	return m.scanImage(ctx, actor, img)
}
func (m *mockTripServicer) Finish(ctx context.Context, actor domain.User, id string) (domain.Trip, error) {
	return m.finish(ctx, actor, id)
}
func (m *mockTripServicer) GetByID(ctx context.Context, actor domain.User, id string) (domain.Trip, error) {
	return m.getByID(ctx, actor, id)
}
func (m *mockTripServicer) List(ctx context.Context, actor domain.User, f domain.TripFilter) ([]domain.Trip, error) {
	return m.list(ctx, actor, f)
}
func (m *mockTripServicer) Active(ctx context.Context, actor domain.User) ([]domain.Trip, error) {
	return m.active(ctx, actor)
}
func (m *mockTripServicer) Stats(ctx context.Context) (domain.Stats, error) {
	return m.stats(ctx)
}

type mockReportServicer struct {
	build  func(ctx context.Context, actor domain.User, f service.ReportFilter) (domain.Report, error)
	render func(ctx context.Context, actor domain.User, f service.ReportFilter, format report.Format) (report.File, error)
}

func (m *mockReportServicer) Build(ctx context.Context, actor domain.User, f service.ReportFilter) (domain.Report, error) {
	return m.build(ctx, actor, f)
}
func (m *mockReportServicer) Render(ctx context.Context, actor domain.User, f service.ReportFilter, format report.Format) (report.File, error) {
	return m.render(ctx, actor, f, format)
}

// compile-time checks: the mocks and the real services satisfy the handler interfaces.
var (
	_ handler.PassengerServicer          = (*mockPassengerServicer)(nil)
	_ handler.CredentialServicer         = (*mockCredentialServicer)(nil)
	_ handler.TripServicer               = (*mockTripServicer)(nil)
	_ handler.ReportServicer             = (*mockReportServicer)(nil)
	_ handler.AuthServicer               = (*mockAuthServicer)(nil)
	_ handler.PassengerServicer          = (*service.PassengerService)(nil)
	_ handler.Registry[domain.Conductor] = (*service.ConductorService)(nil)
	_ handler.Registry[domain.User]      = (*service.UserService)(nil)
	_ handler.Registry[domain.Signature] = (*service.SignatureService)(nil)
	_ handler.CredentialServicer         = (*service.CredentialService)(nil)
	_ handler.TripServicer               = (*service.TripService)(nil)
	_ handler.ReportServicer             = (*service.ReportService)(nil)
	_ handler.AuthServicer               = (*service.AuthService)(nil)
)

// ---- helpers ---------------------------------------------------------------

// Bearer tokens understood by the test token parser.
const (
	rootToken   = "root-token"
	adminToken  = "admin-token"
	driverToken = "driver-token"
)

var (
	rootUser   = domain.User{ID: domain.RootUserID, Name: "Administrador Root", Role: domain.RoleRoot}
	adminUser  = domain.User{ID: "u1", Name: "Administrador", Cedula: "12345678", Role: domain.RoleAdmin}
	driverUser = domain.User{ID: "c1", Name: "Pedro Pérez", Cedula: "11111111", Role: domain.RoleConductor}
)

type tokenFunc func(string) (domain.User, error)

func (f tokenFunc) Parse(token string) (domain.User, error) { return f(token) }

var testTokens = tokenFunc(func(token string) (domain.User, error) {
	switch token {
	case rootToken:
		return rootUser, nil
	case adminToken:
		return adminUser, nil
	case driverToken:
		return driverUser, nil
	}
	return domain.User{}, errors.New("unknown token")
})

// newHTTPHandler mounts a Server built from d on a chi router, the way the
// serve command does.
func newHTTPHandler(d handler.Deps) http.Handler {
	if d.Tokens == nil {
		d.Tokens = testTokens
	}
	r := chi.NewRouter()
	handler.NewServer(d).Routes(r)
	return r
}

// do sends a request with an optional bearer token and JSON body.
func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
