package repo

import (
	"context"
	"fmt"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// TripRepo defines the persistence operations for Trips.
// Trips are only ever written through Mutate so that the open-trip check of a
// scan and the write that follows it see the same snapshot.
type TripRepo interface {
	// List returns every trip in insertion order.
	List(ctx context.Context) ([]domain.Trip, error)

	// GetByID returns domain.ErrNotFound if no trip has that id.
	GetByID(ctx context.Context, id string) (domain.Trip, error)

	// Mutate hands fn the full trip list and stores what it returns.
	// No other writer can change the trips between the read and the write.
	// An error from fn aborts the write and is returned wrapped.
	Mutate(ctx context.Context, fn func(trips []domain.Trip) ([]domain.Trip, error)) error
}

type tripRepo struct {
	coll collection[domain.Trip]
}

// NewTripRepo constructs a TripRepo on the trips collection of s.
func NewTripRepo(s Store) TripRepo {
	return &tripRepo{coll: collection[domain.Trip]{store: s, key: KeyTrips}}
}

func (r *tripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := r.coll.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	return trips, nil
}

func (r *tripRepo) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	trips, err := r.coll.load(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	for _, t := range trips {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound)
}

func (r *tripRepo) Mutate(ctx context.Context, fn func([]domain.Trip) ([]domain.Trip, error)) error {
	if err := r.coll.mutate(ctx, fn); err != nil {
		return fmt.Errorf("repo.TripRepo.Mutate: %w", err)
	}
	return nil
}
