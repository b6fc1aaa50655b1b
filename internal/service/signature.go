package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/repo"
)

// SignatureService manages the verifier identities printed on reports.
type SignatureService struct {
	repo repo.SignatureRepo
}

func NewSignatureService(r repo.SignatureRepo) *SignatureService {
	return &SignatureService{repo: r}
}

// List returns the signatures whose name, id number, title or type contains search.
func (s *SignatureService) List(ctx context.Context, search string) ([]domain.Signature, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.SignatureService.List: %w", err)
	}
	return filter(all, func(sig domain.Signature) bool {
		return matches(search, sig.Name, sig.CI, sig.Title, string(sig.Type))
	}), nil
}

func (s *SignatureService) GetByID(ctx context.Context, id string) (domain.Signature, error) {
	sig, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Signature{}, fmt.Errorf("service.SignatureService.GetByID: %w", err)
	}
	return sig, nil
}

func (s *SignatureService) Create(ctx context.Context, sig domain.Signature) (domain.Signature, error) {
	sig = normalizeSignature(sig)
	if err := validateSignature(sig); err != nil {
		return domain.Signature{}, err
	}
	result, err := s.repo.Create(ctx, sig)
	if err != nil {
		return domain.Signature{}, fmt.Errorf("service.SignatureService.Create: %w", err)
	}
	return result, nil
}

func (s *SignatureService) Update(ctx context.Context, sig domain.Signature) (domain.Signature, error) {
	sig = normalizeSignature(sig)
	if err := validateSignature(sig); err != nil {
		return domain.Signature{}, err
	}
	current, err := s.repo.GetByID(ctx, sig.ID)
	if err != nil {
		return domain.Signature{}, fmt.Errorf("service.SignatureService.Update: %w", err)
	}
	sig.CreatedAt = current.CreatedAt

	result, err := s.repo.Update(ctx, sig)
	if err != nil {
		return domain.Signature{}, fmt.Errorf("service.SignatureService.Update: %w", err)
	}
	return result, nil
}

func (s *SignatureService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.SignatureService.Delete: %w", err)
	}
	return nil
}

// FirstOfEachType returns the first registered signature of each type,
// nil where none exists. These are the signatures stamped onto reports.
func FirstOfEachType(all []domain.Signature) (contractor, corporation *domain.Signature) {
	for i := range all {
		switch all[i].Type {
		case domain.SignatureContractor:
			if contractor == nil {
				contractor = &all[i]
			}
		case domain.SignatureCorporation:
			if corporation == nil {
				corporation = &all[i]
			}
		}
	}
	return contractor, corporation
}

func normalizeSignature(s domain.Signature) domain.Signature {
	s.Name = strings.TrimSpace(s.Name)
	s.CI = strings.TrimSpace(s.CI)
	s.Title = strings.TrimSpace(s.Title)
	return s
}

func validateSignature(s domain.Signature) error {
	if !s.Type.Valid() {
		return fmt.Errorf("%w: type must be contratista or corporacion", domain.ErrValidation)
	}
	return required("name", s.Name, "ci", s.CI, "cargo", s.Title)
}
