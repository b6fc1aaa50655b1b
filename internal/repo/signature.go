package repo

import (
	"context"
	"time"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// SignatureRepo defines the persistence operations for report signatures.
type SignatureRepo interface {
	List(ctx context.Context) ([]domain.Signature, error)
	GetByID(ctx context.Context, id string) (domain.Signature, error)
	Create(ctx context.Context, s domain.Signature) (domain.Signature, error)
	Update(ctx context.Context, s domain.Signature) (domain.Signature, error)
	Delete(ctx context.Context, id string) error
}

type signatureRepo struct {
	records[domain.Signature]
}

func NewSignatureRepo(s Store) SignatureRepo {
	return &signatureRepo{records[domain.Signature]{
		coll: collection[domain.Signature]{store: s, key: KeySignatures},
		name: "repo.SignatureRepo",
		id:   func(sig domain.Signature) string { return sig.ID },
		stamp: func(sig *domain.Signature, id string, now time.Time) {
			sig.ID, sig.CreatedAt = id, now
		},
	}}
}

func (r *signatureRepo) List(ctx context.Context) ([]domain.Signature, error) { return r.list(ctx) }

func (r *signatureRepo) GetByID(ctx context.Context, id string) (domain.Signature, error) {
	return r.get(ctx, id)
}

func (r *signatureRepo) Create(ctx context.Context, s domain.Signature) (domain.Signature, error) {
	return r.create(ctx, s)
}

func (r *signatureRepo) Update(ctx context.Context, s domain.Signature) (domain.Signature, error) {
	return r.update(ctx, s)
}

func (r *signatureRepo) Delete(ctx context.Context, id string) error { return r.delete(ctx, id) }
