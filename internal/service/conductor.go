package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/repo"
)

// ConductorService implements business logic for the conductor registry.
type ConductorService struct {
	repo repo.ConductorRepo
}

// NewConductorService constructs a ConductorService backed by the provided ConductorRepo.
func NewConductorService(r repo.ConductorRepo) *ConductorService {
	return &ConductorService{repo: r}
}

// List returns the conductors whose name, national id or plate contains search.
func (s *ConductorService) List(ctx context.Context, search string) ([]domain.Conductor, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ConductorService.List: %w", err)
	}
	return filter(all, func(c domain.Conductor) bool {
		return matches(search, c.Name, c.Cedula, c.Plate)
	}), nil
}

func (s *ConductorService) GetByID(ctx context.Context, id string) (domain.Conductor, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Conductor{}, fmt.Errorf("service.ConductorService.GetByID: %w", err)
	}
	return c, nil
}

// Create returns domain.ErrConflict if the national id is already registered.
func (s *ConductorService) Create(ctx context.Context, c domain.Conductor) (domain.Conductor, error) {
	c = normalizeConductor(c)
	if err := validateConductor(c); err != nil {
		return domain.Conductor{}, err
	}
	result, err := s.repo.Create(ctx, c)
	if err != nil {
		return domain.Conductor{}, fmt.Errorf("service.ConductorService.Create: %w", err)
	}
	return result, nil
}

// Update overwrites an existing conductor, keeping its creation time.
func (s *ConductorService) Update(ctx context.Context, c domain.Conductor) (domain.Conductor, error) {
	c = normalizeConductor(c)
	if err := validateConductor(c); err != nil {
		return domain.Conductor{}, err
	}
	current, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return domain.Conductor{}, fmt.Errorf("service.ConductorService.Update: %w", err)
	}
	c.CreatedAt = current.CreatedAt

	result, err := s.repo.Update(ctx, c)
	if err != nil {
		return domain.Conductor{}, fmt.Errorf("service.ConductorService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a conductor. Trips and credentials that reference it stay.
func (s *ConductorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ConductorService.Delete: %w", err)
	}
	return nil
}

func normalizeConductor(c domain.Conductor) domain.Conductor {
	c.Name = strings.TrimSpace(c.Name)
	c.Cedula = strings.TrimSpace(c.Cedula)
	c.Plate = strings.ToUpper(strings.TrimSpace(c.Plate))
	c.Area = strings.TrimSpace(c.Area)
	c.Route = strings.TrimSpace(c.Route)
	return c
}

func validateConductor(c domain.Conductor) error {
	return required("name", c.Name, "cedula", c.Cedula, "placa", c.Plate)
}
