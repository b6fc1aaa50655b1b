package repo

import (
	"context"
	"time"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// UserRepo defines the persistence operations for operator accounts.
type UserRepo interface {
	List(ctx context.Context) ([]domain.User, error)

	// GetByID returns domain.ErrNotFound if no user has that id.
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByCedula returns the first user with the given role and national id.
	GetByCedula(ctx context.Context, role domain.Role, cedula string) (domain.User, error)

	// Create assigns the id and creation time and appends the user.
	Create(ctx context.Context, u domain.User) (domain.User, error)

	Update(ctx context.Context, u domain.User) (domain.User, error)
	Delete(ctx context.Context, id string) error
}

type userRepo struct {
	records[domain.User]
}

// NewUserRepo constructs a UserRepo on the users collection of s.
// National ids are not unique among users.
func NewUserRepo(s Store) UserRepo {
	return &userRepo{records[domain.User]{
		coll: collection[domain.User]{store: s, key: KeyUsers},
		name: "repo.UserRepo",
		id:   func(u domain.User) string { return u.ID },
		stamp: func(u *domain.User, id string, now time.Time) {
			u.ID, u.CreatedAt = id, now
		},
	}}
}

func (r *userRepo) List(ctx context.Context) ([]domain.User, error) { return r.list(ctx) }

func (r *userRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.get(ctx, id)
}

func (r *userRepo) GetByCedula(ctx context.Context, role domain.Role, cedula string) (domain.User, error) {
	return r.find(ctx, "GetByCedula", func(u domain.User) bool {
		return u.Role == role && u.Cedula == cedula
	})
}

func (r *userRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return r.create(ctx, u)
}

func (r *userRepo) Update(ctx context.Context, u domain.User) (domain.User, error) {
	return r.update(ctx, u)
}

func (r *userRepo) Delete(ctx context.Context, id string) error { return r.delete(ctx, id) }
