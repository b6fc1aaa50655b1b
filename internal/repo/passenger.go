package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// PassengerRepo defines the persistence operations for Passengers.
// The service layer depends on this interface, not a concrete store, which
// allows the service to be unit-tested with a mock.
type PassengerRepo interface {
	List(ctx context.Context) ([]domain.Passenger, error)

	// GetByID returns domain.ErrNotFound if no passenger has that id.
	GetByID(ctx context.Context, id string) (domain.Passenger, error)

	// GetByCedula looks a passenger up by national id.
	// Returns domain.ErrNotFound when nobody is registered under it.
	GetByCedula(ctx context.Context, cedula string) (domain.Passenger, error)

	// Create assigns the id and creation time and appends the passenger.
	// Returns domain.ErrConflict if the national id is already registered.
	Create(ctx context.Context, p domain.Passenger) (domain.Passenger, error)

	// Update overwrites the passenger with the same id. The passenger may keep
	// its own national id but not take another passenger's.
	Update(ctx context.Context, p domain.Passenger) (domain.Passenger, error)

	Delete(ctx context.Context, id string) error
}

type passengerRepo struct {
	records[domain.Passenger]
}

// NewPassengerRepo constructs a PassengerRepo on the passengers collection of s.
func NewPassengerRepo(s Store) PassengerRepo {
	return &passengerRepo{records[domain.Passenger]{
		coll: collection[domain.Passenger]{store: s, key: KeyPassengers},
		name: "repo.PassengerRepo",
		id:   func(p domain.Passenger) string { return p.ID },
		stamp: func(p *domain.Passenger, id string, now time.Time) {
			p.ID, p.CreatedAt = id, now
		},
		check: func(others []domain.Passenger, p domain.Passenger) error {
			for _, o := range others {
				if o.Cedula == p.Cedula {
					return fmt.Errorf("passenger with national id %s already exists: %w", p.Cedula, domain.ErrConflict)
				}
			}
			return nil
		},
	}}
}

func (r *passengerRepo) List(ctx context.Context) ([]domain.Passenger, error) { return r.list(ctx) }

func (r *passengerRepo) GetByID(ctx context.Context, id string) (domain.Passenger, error) {
	return r.get(ctx, id)
}

func (r *passengerRepo) GetByCedula(ctx context.Context, cedula string) (domain.Passenger, error) {
	return r.find(ctx, "GetByCedula", func(p domain.Passenger) bool { return p.Cedula == cedula })
}

func (r *passengerRepo) Create(ctx context.Context, p domain.Passenger) (domain.Passenger, error) {
	return r.create(ctx, p)
}

func (r *passengerRepo) Update(ctx context.Context, p domain.Passenger) (domain.Passenger, error) {
	return r.update(ctx, p)
}

func (r *passengerRepo) Delete(ctx context.Context, id string) error { return r.delete(ctx, id) }
