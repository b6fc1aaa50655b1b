package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// CredentialRepo defines the persistence operations for conductor login credentials.
type CredentialRepo interface {
	List(ctx context.Context) ([]domain.ConductorCredential, error)
	GetByID(ctx context.Context, id string) (domain.ConductorCredential, error)

	// GetByUsername returns domain.ErrNotFound when no credential has the username.
	GetByUsername(ctx context.Context, username string) (domain.ConductorCredential, error)

	// Create returns domain.ErrConflict when the username is taken.
	Create(ctx context.Context, c domain.ConductorCredential) (domain.ConductorCredential, error)
	Update(ctx context.Context, c domain.ConductorCredential) (domain.ConductorCredential, error)
	Delete(ctx context.Context, id string) error
}

type credentialRepo struct {
	records[domain.ConductorCredential]
}

func NewCredentialRepo(s Store) CredentialRepo {
	return &credentialRepo{records[domain.ConductorCredential]{
		coll: collection[domain.ConductorCredential]{store: s, key: KeyConductorCredentials},
		name: "repo.CredentialRepo",
		id:   func(c domain.ConductorCredential) string { return c.ID },
		stamp: func(c *domain.ConductorCredential, id string, now time.Time) {
			c.ID, c.CreatedAt = id, now
		},
		check: func(others []domain.ConductorCredential, c domain.ConductorCredential) error {
			for _, o := range others {
				if o.Username == c.Username {
					return fmt.Errorf("username %s is taken: %w", c.Username, domain.ErrConflict)
				}
			}
			return nil
		},
	}}
}

func (r *credentialRepo) List(ctx context.Context) ([]domain.ConductorCredential, error) {
	return r.list(ctx)
}

func (r *credentialRepo) GetByID(ctx context.Context, id string) (domain.ConductorCredential, error) {
	return r.get(ctx, id)
}

func (r *credentialRepo) GetByUsername(ctx context.Context, username string) (domain.ConductorCredential, error) {
	return r.find(ctx, "GetByUsername", func(c domain.ConductorCredential) bool {
		return c.Username == username
	})
}

func (r *credentialRepo) Create(ctx context.Context, c domain.ConductorCredential) (domain.ConductorCredential, error) {
	return r.create(ctx, c)
}

func (r *credentialRepo) Update(ctx context.Context, c domain.ConductorCredential) (domain.ConductorCredential, error) {
	return r.update(ctx, c)
}

func (r *credentialRepo) Delete(ctx context.Context, id string) error { return r.delete(ctx, id) }
