package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/qr"
	"github.com/pkordes/shuttle-control/internal/repo"
)

// TripNotifier is told about every trip that starts or finishes.
// Implementations must not block.
type TripNotifier interface {
	TripChanged(ctx context.Context, action domain.TripAction, trip domain.Trip)
}

// TripService implements the check-in/check-out workflow.
//
// A scan of a passenger with an open trip closes that trip; any other scan
// opens a new one. The open-trip lookup and the write that follows run inside
// one TripRepo.Mutate, so a passenger never has two open trips.
type TripService struct {
	trips      repo.TripRepo
	passengers repo.PassengerRepo
	conductors repo.ConductorRepo
	notify     TripNotifier
	now        func() time.Time
}

// NewTripService constructs a TripService. notify may be nil.
func NewTripService(trips repo.TripRepo, passengers repo.PassengerRepo, conductors repo.ConductorRepo, notify TripNotifier) *TripService {
	return &TripService{
		trips:      trips,
		passengers: passengers,
		conductors: conductors,
		notify:     notify,
		now:        time.Now,
	}
}

// Toggle starts or finishes the trip of the passenger with the given
// national id, on behalf of actor.
// Returns domain.ErrValidation for a blank id and domain.ErrNotFound when no
// passenger is registered under it.
func (s *TripService) Toggle(ctx context.Context, actor domain.User, cedula string) (domain.ScanResult, error) {
	cedula = strings.TrimSpace(cedula)
	if cedula == "" {
		return domain.ScanResult{}, fmt.Errorf("%w: cedula is required", domain.ErrValidation)
	}

	passenger, err := s.passengers.GetByCedula(ctx, cedula)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("service.TripService.Toggle: passenger with national id %s: %w", cedula, err)
	}

	conductorID, conductorName, route, err := s.conductorFor(ctx, actor)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("service.TripService.Toggle: %w", err)
	}

	var res domain.ScanResult
	err = s.trips.Mutate(ctx, func(trips []domain.Trip) ([]domain.Trip, error) {
		now := s.now().UTC()
		for i := range trips {
			if trips[i].PassengerID == passenger.ID && trips[i].Open() {
				trips[i].Status = domain.TripFinished
				trips[i].EndTime = &now
				res = domain.ScanResult{Action: domain.TripEnded, Trip: trips[i]}
				return trips, nil
			}
		}
		trip := domain.Trip{
			ID:              uuid.NewString(),
			PassengerID:     passenger.ID,
			PassengerName:   passenger.Name,
			PassengerCedula: passenger.Cedula,
			ConductorID:     conductorID,
			ConductorName:   conductorName,
			Route:           route,
			StartTime:       now,
			Status:          domain.TripInProgress,
			CreatedAt:       now,
		}
		res = domain.ScanResult{Action: domain.TripStarted, Trip: trip}
		return append(trips, trip), nil
	})
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("service.TripService.Toggle: %w", err)
	}
	res.Passenger = passenger

	s.publish(ctx, res.Action, res.Trip)
	return res, nil
}

// Scan toggles the trip of the passenger identified by the text of a QR code.
func (s *TripService) Scan(ctx context.Context, actor domain.User, text string) (domain.ScanResult, error) {
	return s.Toggle(ctx, actor, qr.Parse(text).Cedula)
}

// ScanImage reads a QR code from a photograph and toggles its passenger's trip.
func (s *TripService) ScanImage(ctx context.Context, actor domain.User, img io.Reader) (domain.ScanResult, error) {
	text, err := qr.DecodeImage(img)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("service.TripService.ScanImage: %w", err)
	}
	return s.Scan(ctx, actor, text)
}

// Finish closes an open trip by hand.
// Returns domain.ErrConflict if the trip has already finished.
func (s *TripService) Finish(ctx context.Context, actor domain.User, id string) (domain.Trip, error) {
	var finished domain.Trip
	err := s.trips.Mutate(ctx, func(trips []domain.Trip) ([]domain.Trip, error) {
		for i := range trips {
			if trips[i].ID != id || !visible(actor, trips[i]) {
				continue
			}
			if !trips[i].Open() {
				return nil, fmt.Errorf("trip %s already finished: %w", id, domain.ErrConflict)
			}
			now := s.now().UTC()
			trips[i].Status = domain.TripFinished
			trips[i].EndTime = &now
			finished = trips[i]
			return trips, nil
		}
		return nil, domain.ErrNotFound
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Finish: %w", err)
	}

	s.publish(ctx, domain.TripEnded, finished)
	return finished, nil
}

// GetByID returns a trip. Conductors only see their own trips; any other
// trip reads as domain.ErrNotFound.
func (s *TripService) GetByID(ctx context.Context, actor domain.User, id string) (domain.Trip, error) {
	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	if !visible(actor, t) {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", domain.ErrNotFound)
	}
	return t, nil
}

// List returns the trips actor may see that match f, most recent first.
func (s *TripService) List(ctx context.Context, actor domain.User, f domain.TripFilter) ([]domain.Trip, error) {
	all, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	out := filter(all, func(t domain.Trip) bool {
		return visible(actor, t) && f.Match(t)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

// Active returns the open trips actor may see.
func (s *TripService) Active(ctx context.Context, actor domain.User) ([]domain.Trip, error) {
	return s.List(ctx, actor, domain.TripFilter{Status: domain.TripInProgress})
}

// Stats returns the dashboard counters.
func (s *TripService) Stats(ctx context.Context) (domain.Stats, error) {
	passengers, err := s.passengers.List(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service.TripService.Stats: %w", err)
	}
	conductors, err := s.conductors.List(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service.TripService.Stats: %w", err)
	}
	trips, err := s.trips.List(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service.TripService.Stats: %w", err)
	}

	st := domain.Stats{
		TotalPassengers: len(passengers),
		TotalConductors: len(conductors),
		TotalTrips:      len(trips),
	}
	for _, t := range trips {
		if t.Open() {
			st.ActiveTrips++
		}
	}
	return st, nil
}

// conductorFor resolves who a trip opened by actor is driven by: the
// registered conductor sharing the actor's national id, else the actor.
func (s *TripService) conductorFor(ctx context.Context, actor domain.User) (id, name, route string, err error) {
	route = domain.DefaultRoute
	c, err := s.conductors.GetByCedula(ctx, actor.Cedula)
	if err != nil {
		if isNotFound(err) {
			return actor.ID, actor.Name, route, nil
		}
		return "", "", "", err
	}
	if c.Route != "" {
		route = c.Route
	}
	return c.ID, c.Name, route, nil
}

func (s *TripService) publish(ctx context.Context, action domain.TripAction, t domain.Trip) {
	if s.notify != nil {
		s.notify.TripChanged(ctx, action, t)
	}
}

// visible reports whether actor may see t. Conductors see only the trips
// recorded under their own id.
func visible(actor domain.User, t domain.Trip) bool {
	return actor.Role != domain.RoleConductor || t.ConductorID == actor.ID
}
