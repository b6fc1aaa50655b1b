package service_test

import (
	"context"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/repo"
)

// Hand-written test doubles for the repo interfaces.
// Each method is a function field; set only the ones a test needs.

type mockPassengerRepo struct {
	list        func(ctx context.Context) ([]domain.Passenger, error)
	getByID     func(ctx context.Context, id string) (domain.Passenger, error)
	getByCedula func(ctx context.Context, cedula string) (domain.Passenger, error)
	create      func(ctx context.Context, p domain.Passenger) (domain.Passenger, error)
	update      func(ctx context.Context, p domain.Passenger) (domain.Passenger, error)
	delete      func(ctx context.Context, id string) error
}

func (m *mockPassengerRepo) List(ctx context.Context) ([]domain.Passenger, error) {
	return m.list(ctx)
}
func (m *mockPassengerRepo) GetByID(ctx context.Context, id string) (domain.Passenger, error) {
	return m.getByID(ctx, id)
}
func (m *mockPassengerRepo) GetByCedula(ctx context.Context, cedula string) (domain.Passenger, error) {
	return m.getByCedula(ctx, cedula)
}
func (m *mockPassengerRepo) Create(ctx context.Context, p domain.Passenger) (domain.Passenger, error) {
	return m.create(ctx, p)
}
func (m *mockPassengerRepo) Update(ctx context.Context, p domain.Passenger) (domain.Passenger, error) {
	return m.update(ctx, p)
}
func (m *mockPassengerRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

var _ repo.PassengerRepo = (*mockPassengerRepo)(nil)

type mockConductorRepo struct {
	list        func(ctx context.Context) ([]domain.Conductor, error)
	getByID     func(ctx context.Context, id string) (domain.Conductor, error)
	getByCedula func(ctx context.Context, cedula string) (domain.Conductor, error)
	create      func(ctx context.Context, c domain.Conductor) (domain.Conductor, error)
	update      func(ctx context.Context, c domain.Conductor) (domain.Conductor, error)
	delete      func(ctx context.Context, id string) error
}

func (m *mockConductorRepo) List(ctx context.Context) ([]domain.Conductor, error) {
	return m.list(ctx)
}
func (m *mockConductorRepo) GetByID(ctx context.Context, id string) (domain.Conductor, error) {
	return m.getByID(ctx, id)
}
func (m *mockConductorRepo) GetByCedula(ctx context.Context, cedula string) (domain.Conductor, error) {
	return m.getByCedula(ctx, cedula)
}
func (m *mockConductorRepo) Create(ctx context.Context, c domain.Conductor) (domain.Conductor, error) {
	return m.create(ctx, c)
}
func (m *mockConductorRepo) Update(ctx context.Context, c domain.Conductor) (domain.Conductor, error) {
	return m.update(ctx, c)
}
func (m *mockConductorRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

var _ repo.ConductorRepo = (*mockConductorRepo)(nil)

type mockUserRepo struct {
	list        func(ctx context.Context) ([]domain.User, error)
	getByID     func(ctx context.Context, id string) (domain.User, error)
	getByCedula func(ctx context.Context, role domain.Role, cedula string) (domain.User, error)
	create      func(ctx context.Context, u domain.User) (domain.User, error)
	update      func(ctx context.Context, u domain.User) (domain.User, error)
	delete      func(ctx context.Context, id string) error
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return m.list(ctx)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByCedula(ctx context.Context, role domain.Role, cedula string) (domain.User, error) {
	return m.getByCedula(ctx, role, cedula)
}
func (m *mockUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserRepo) Update(ctx context.Context, u domain.User) (domain.User, error) {
	return m.update(ctx, u)
}
func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

type mockSignatureRepo struct {
	list    func(ctx context.Context) ([]domain.Signature, error)
	getByID func(ctx context.Context, id string) (domain.Signature, error)
	create  func(ctx context.Context, s domain.Signature) (domain.Signature, error)
	update  func(ctx context.Context, s domain.Signature) (domain.Signature, error)
	delete  func(ctx context.Context, id string) error
}

func (m *mockSignatureRepo) List(ctx context.Context) ([]domain.Signature, error) {
	return m.list(ctx)
}
func (m *mockSignatureRepo) GetByID(ctx context.Context, id string) (domain.Signature, error) {
	return m.getByID(ctx, id)
}
func (m *mockSignatureRepo) Create(ctx context.Context, s domain.Signature) (domain.Signature, error) {
	return m.create(ctx, s)
}
func (m *mockSignatureRepo) Update(ctx context.Context, s domain.Signature) (domain.Signature, error) {
	return m.update(ctx, s)
}
func (m *mockSignatureRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

var _ repo.SignatureRepo = (*mockSignatureRepo)(nil)

type mockCredentialRepo struct {
	list          func(ctx context.Context) ([]domain.ConductorCredential, error)
	getByID       func(ctx context.Context, id string) (domain.ConductorCredential, error)
	getByUsername func(ctx context.Context, username string) (domain.ConductorCredential, error)
	create        func(ctx context.Context, c domain.ConductorCredential) (domain.ConductorCredential, error)
	update        func(ctx context.Context, c domain.ConductorCredential) (domain.ConductorCredential, error)
	delete        func(ctx context.Context, id string) error
}

func (m *mockCredentialRepo) List(ctx context.Context) ([]domain.ConductorCredential, error) {
	return m.list(ctx)
}
func (m *mockCredentialRepo) GetByID(ctx context.Context, id string) (domain.ConductorCredential, error) {
	return m.getByID(ctx, id)
}
func (m *mockCredentialRepo) GetByUsername(ctx context.Context, username string) (domain.ConductorCredential, error) {
	return m.getByUsername(ctx, username)
}
func (m *mockCredentialRepo) Create(ctx context.Context, c domain.ConductorCredential) (domain.ConductorCredential, error) {
	return m.create(ctx, c)
}
func (m *mockCredentialRepo) Update(ctx context.Context, c domain.ConductorCredential) (domain.ConductorCredential, error) {
	return m.update(ctx, c)
}
func (m *mockCredentialRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

var _ repo.CredentialRepo = (*mockCredentialRepo)(nil)

// mockTripRepo keeps its trips in memory so Mutate behaves like a store.
type mockTripRepo struct {
	trips     []domain.Trip
	listErr   error
	mutateErr error
}

func (m *mockTripRepo) List(_ context.Context) ([]domain.Trip, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.Trip(nil), m.trips...), nil
}
func (m *mockTripRepo) GetByID(_ context.Context, id string) (domain.Trip, error) {
	for _, t := range m.trips {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Trip{}, domain.ErrNotFound
}
func (m *mockTripRepo) Mutate(_ context.Context, fn func([]domain.Trip) ([]domain.Trip, error)) error {
	if m.mutateErr != nil {
		return m.mutateErr
	}
	next, err := fn(append([]domain.Trip(nil), m.trips...))
	if err != nil {
		return err
	}
	m.trips = next
	return nil
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

// notFound is a repo lookup that never finds anything.
func notFound[T any](context.Context, string) (T, error) {
	var zero T
	return zero, domain.ErrNotFound
}
