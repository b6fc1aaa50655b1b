package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/qr"
	"github.com/pkordes/shuttle-control/internal/repo"
)

// PassengerService implements business logic for the passenger registry.
// Every passenger gets a QR code when registered; the code is kept across
// edits until it is explicitly regenerated.
type PassengerService struct {
	repo repo.PassengerRepo
	now  func() time.Time
}

// NewPassengerService constructs a PassengerService backed by the provided PassengerRepo.
func NewPassengerService(r repo.PassengerRepo) *PassengerService {
	return &PassengerService{repo: r, now: time.Now}
}

// List returns the passengers whose name, national id or department
// contains search. An empty search returns everyone.
func (s *PassengerService) List(ctx context.Context, search string) ([]domain.Passenger, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.PassengerService.List: %w", err)
	}
	return filter(all, func(p domain.Passenger) bool {
		return matches(search, p.Name, p.Cedula, p.Department)
	}), nil
}

// GetByID returns domain.ErrNotFound if no passenger has that id.
func (s *PassengerService) GetByID(ctx context.Context, id string) (domain.Passenger, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Passenger{}, fmt.Errorf("service.PassengerService.GetByID: %w", err)
	}
	return p, nil
}

// Create validates p, renders its QR code and stores it.
// Returns domain.ErrConflict if the national id is already registered.
func (s *PassengerService) Create(ctx context.Context, p domain.Passenger) (domain.Passenger, error) {
	p = normalizePassenger(p)
	if err := validatePassenger(p); err != nil {
		return domain.Passenger{}, err
	}

	code, err := qr.DataURL(qr.NewPayload(p, s.now()))
	if err != nil {
		return domain.Passenger{}, fmt.Errorf("service.PassengerService.Create: %w", err)
	}
	p.QRCode = code

	result, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Passenger{}, fmt.Errorf("service.PassengerService.Create: %w", err)
	}
	return result, nil
}

// Update overwrites the name, national id and department of an existing
// passenger. The stored QR code is not touched, so a printed card keeps
// working until RegenerateQR is called.
func (s *PassengerService) Update(ctx context.Context, p domain.Passenger) (domain.Passenger, error) {
	p = normalizePassenger(p)
	if err := validatePassenger(p); err != nil {
		return domain.Passenger{}, err
	}

	current, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return domain.Passenger{}, fmt.Errorf("service.PassengerService.Update: %w", err)
	}
	current.Name, current.Cedula, current.Department = p.Name, p.Cedula, p.Department

	result, err := s.repo.Update(ctx, current)
	if err != nil {
		return domain.Passenger{}, fmt.Errorf("service.PassengerService.Update: %w", err)
	}
	return result, nil
}

// RegenerateQR renders a fresh QR code from the passenger's current data.
func (s *PassengerService) RegenerateQR(ctx context.Context, id string) (domain.Passenger, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Passenger{}, fmt.Errorf("service.PassengerService.RegenerateQR: %w", err)
	}
	code, err := qr.DataURL(qr.NewPayload(p, s.now()))
	if err != nil {
		return domain.Passenger{}, fmt.Errorf("service.PassengerService.RegenerateQR: %w", err)
	}
	p.QRCode = code

	result, err := s.repo.Update(ctx, p)
	if err != nil {
		return domain.Passenger{}, fmt.Errorf("service.PassengerService.RegenerateQR: %w", err)
	}
	return result, nil
}

// QRImage returns the passenger's QR code as PNG bytes along with the file
// name it is downloaded under.
func (s *PassengerService) QRImage(ctx context.Context, id string) ([]byte, string, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("service.PassengerService.QRImage: %w", err)
	}
	png, err := qr.PNGFromDataURL(p.QRCode)
	if err != nil {
		return nil, "", fmt.Errorf("service.PassengerService.QRImage: %w", err)
	}
	return png, QRFileName(p), nil
}

// Delete removes a passenger. Trips keep their snapshot of the passenger.
func (s *PassengerService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PassengerService.Delete: %w", err)
	}
	return nil
}

// QRFileName is the download name of a passenger's QR image.
func QRFileName(p domain.Passenger) string {
	return fmt.Sprintf("QR_%s_%s.png", strings.ReplaceAll(p.Name, " ", "_"), p.Cedula)
}

func normalizePassenger(p domain.Passenger) domain.Passenger {
	p.Name = strings.TrimSpace(p.Name)
	p.Cedula = strings.TrimSpace(p.Cedula)
	p.Department = strings.TrimSpace(p.Department)
	return p
}

func validatePassenger(p domain.Passenger) error {
	return required("name", p.Name, "cedula", p.Cedula, "gerencia", p.Department)
}
