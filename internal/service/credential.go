package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkordes/shuttle-control/internal/auth"
	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/repo"
)

// CredentialService manages the logins conductors use on their devices.
type CredentialService struct {
	creds      repo.CredentialRepo
	conductors repo.ConductorRepo
}

func NewCredentialService(creds repo.CredentialRepo, conductors repo.ConductorRepo) *CredentialService {
	return &CredentialService{creds: creds, conductors: conductors}
}

func (s *CredentialService) List(ctx context.Context) ([]domain.ConductorCredential, error) {
	all, err := s.creds.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CredentialService.List: %w", err)
	}
	return all, nil
}

// Create issues an active credential for an existing conductor.
// The password is stored as a bcrypt hash.
// Returns domain.ErrValidation when the conductor does not exist and
// domain.ErrConflict when the username is taken.
func (s *CredentialService) Create(ctx context.Context, conductorID, username, password string) (domain.ConductorCredential, error) {
	username = strings.TrimSpace(username)
	if err := required("conductorId", conductorID, "username", username, "password", password); err != nil {
		return domain.ConductorCredential{}, err
	}

	if _, err := s.conductors.GetByID(ctx, conductorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ConductorCredential{}, fmt.Errorf("%w: conductor %s does not exist", domain.ErrValidation, conductorID)
		}
		return domain.ConductorCredential{}, fmt.Errorf("service.CredentialService.Create: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.ConductorCredential{}, fmt.Errorf("service.CredentialService.Create: %w", err)
	}

	result, err := s.creds.Create(ctx, domain.ConductorCredential{
		ConductorID: conductorID,
		Username:    username,
		Password:    hash,
		Active:      true,
	})
	if err != nil {
		return domain.ConductorCredential{}, fmt.Errorf("service.CredentialService.Create: %w", err)
	}
	return result, nil
}

// Toggle flips the active flag of a credential.
func (s *CredentialService) Toggle(ctx context.Context, id string) (domain.ConductorCredential, error) {
	c, err := s.creds.GetByID(ctx, id)
	if err != nil {
		return domain.ConductorCredential{}, fmt.Errorf("service.CredentialService.Toggle: %w", err)
	}
	c.Active = !c.Active
	result, err := s.creds.Update(ctx, c)
	if err != nil {
		return domain.ConductorCredential{}, fmt.Errorf("service.CredentialService.Toggle: %w", err)
	}
	return result, nil
}

func (s *CredentialService) Delete(ctx context.Context, id string) error {
	if err := s.creds.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.CredentialService.Delete: %w", err)
	}
	return nil
}
