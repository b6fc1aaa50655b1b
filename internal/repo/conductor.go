package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// ConductorRepo defines the persistence operations for Conductors.
type ConductorRepo interface {
	List(ctx context.Context) ([]domain.Conductor, error)
	GetByID(ctx context.Context, id string) (domain.Conductor, error)

	// GetByCedula returns domain.ErrNotFound when no conductor has the national id.
	GetByCedula(ctx context.Context, cedula string) (domain.Conductor, error)

	// Create returns domain.ErrConflict if the national id is already registered.
	Create(ctx context.Context, c domain.Conductor) (domain.Conductor, error)
	Update(ctx context.Context, c domain.Conductor) (domain.Conductor, error)

	// Delete leaves the conductor's trips and credentials untouched.
	Delete(ctx context.Context, id string) error
}

type conductorRepo struct {
	records[domain.Conductor]
}

// NewConductorRepo constructs a ConductorRepo on the conductors collection of s.
func NewConductorRepo(s Store) ConductorRepo {
	return &conductorRepo{records[domain.Conductor]{
		coll: collection[domain.Conductor]{store: s, key: KeyConductors},
		name: "repo.ConductorRepo",
		id:   func(c domain.Conductor) string { return c.ID },
		stamp: func(c *domain.Conductor, id string, now time.Time) {
			c.ID, c.CreatedAt = id, now
		},
		check: func(others []domain.Conductor, c domain.Conductor) error {
			for _, o := range others {
				if o.Cedula == c.Cedula {
					return fmt.Errorf("conductor with national id %s already exists: %w", c.Cedula, domain.ErrConflict)
				}
			}
			return nil
		},
	}}
}

func (r *conductorRepo) List(ctx context.Context) ([]domain.Conductor, error) { return r.list(ctx) }

func (r *conductorRepo) GetByID(ctx context.Context, id string) (domain.Conductor, error) {
	return r.get(ctx, id)
}

func (r *conductorRepo) GetByCedula(ctx context.Context, cedula string) (domain.Conductor, error) {
	return r.find(ctx, "GetByCedula", func(c domain.Conductor) bool { return c.Cedula == cedula })
}

func (r *conductorRepo) Create(ctx context.Context, c domain.Conductor) (domain.Conductor, error) {
	return r.create(ctx, c)
}

func (r *conductorRepo) Update(ctx context.Context, c domain.Conductor) (domain.Conductor, error) {
	return r.update(ctx, c)
}

func (r *conductorRepo) Delete(ctx context.Context, id string) error { return r.delete(ctx, id) }
