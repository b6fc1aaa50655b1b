package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/repo"
)

// UserService manages operator accounts. Only root reaches it; root itself
// is configured, not stored, and cannot be created here.
type UserService struct {
	repo repo.UserRepo
}

func NewUserService(r repo.UserRepo) *UserService {
	return &UserService{repo: r}
}

// List returns the users whose name, national id or role contains search.
func (s *UserService) List(ctx context.Context, search string) ([]domain.User, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.List: %w", err)
	}
	return filter(all, func(u domain.User) bool {
		return matches(search, u.Name, u.Cedula, string(u.Role))
	}), nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.GetByID: %w", err)
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u = normalizeUser(u)
	if err := validateUser(u); err != nil {
		return domain.User{}, err
	}
	result, err := s.repo.Create(ctx, u)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Create: %w", err)
	}
	return result, nil
}

func (s *UserService) Update(ctx context.Context, u domain.User) (domain.User, error) {
	u = normalizeUser(u)
	if err := validateUser(u); err != nil {
		return domain.User{}, err
	}
	current, err := s.repo.GetByID(ctx, u.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Update: %w", err)
	}
	u.CreatedAt = current.CreatedAt

	result, err := s.repo.Update(ctx, u)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Update: %w", err)
	}
	return result, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.UserService.Delete: %w", err)
	}
	return nil
}

func normalizeUser(u domain.User) domain.User {
	u.Name = strings.TrimSpace(u.Name)
	u.Cedula = strings.TrimSpace(u.Cedula)
	return u
}

// validateUser enforces the rules shared by Create and Update.
//   - name and cedula are required.
//   - role must be admin or conductor; root is never stored.
func validateUser(u domain.User) error {
	if err := required("name", u.Name, "cedula", u.Cedula); err != nil {
		return err
	}
	if u.Role != domain.RoleAdmin && u.Role != domain.RoleConductor {
		return fmt.Errorf("%w: role must be admin or conductor", domain.ErrValidation)
	}
	return nil
}
