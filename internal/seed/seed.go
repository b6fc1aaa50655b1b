// Package seed writes the default admin user, passengers and conductors into
// storage that has never held them.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/qr"
	"github.com/pkordes/shuttle-control/internal/repo"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Data is the content of a seed file.
type Data struct {
	Users      []User      `yaml:"users"`
	Passengers []Passenger `yaml:"passengers"`
	Conductors []Conductor `yaml:"conductors"`
}

type User struct {
	ID     string      `yaml:"id"`
	Name   string      `yaml:"name"`
	Cedula string      `yaml:"cedula"`
	Role   domain.Role `yaml:"role"`
}

type Passenger struct {
	Name     string `yaml:"name"`
	Cedula   string `yaml:"cedula"`
	Gerencia string `yaml:"gerencia"`
}

type Conductor struct {
	Name   string `yaml:"name"`
	Cedula string `yaml:"cedula"`
	Placa  string `yaml:"placa"`
	Area   string `yaml:"area"`
	Ruta   string `yaml:"ruta"`
}

// Defaults returns the built-in seed data.
func Defaults() (Data, error) {
	return Parse(defaultsYAML)
}

// Parse decodes and checks a YAML seed file. National ids must be unique
// within the passengers and within the conductors.
func Parse(b []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return Data{}, fmt.Errorf("seed.Parse: %w", err)
	}

	for i, u := range d.Users {
		if u.Name == "" || u.Cedula == "" || !u.Role.Valid() {
			return Data{}, fmt.Errorf("seed.Parse: user %d is incomplete: %w", i, domain.ErrValidation)
		}
	}
	seen := map[string]bool{}
	for i, p := range d.Passengers {
		if p.Name == "" || p.Cedula == "" {
			return Data{}, fmt.Errorf("seed.Parse: passenger %d is incomplete: %w", i, domain.ErrValidation)
		}
		if seen[p.Cedula] {
			return Data{}, fmt.Errorf("seed.Parse: passenger cedula %s repeated: %w", p.Cedula, domain.ErrValidation)
		}
		seen[p.Cedula] = true
	}
	seen = map[string]bool{}
	for i, c := range d.Conductors {
		if c.Name == "" || c.Cedula == "" {
			return Data{}, fmt.Errorf("seed.Parse: conductor %d is incomplete: %w", i, domain.ErrValidation)
		}
		if seen[c.Cedula] {
			return Data{}, fmt.Errorf("seed.Parse: conductor cedula %s repeated: %w", c.Cedula, domain.ErrValidation)
		}
		seen[c.Cedula] = true
	}
	return d, nil
}

// Result reports which collections Apply wrote.
type Result struct {
	Users      bool
	Passengers bool
	Conductors bool
}

// Apply writes each collection of d whose storage key is absent. A key that
// holds anything, including an empty list, is left alone.
// Passengers get a freshly rendered QR code.
func Apply(ctx context.Context, s repo.Store, d Data, now time.Time) (Result, error) {
	now = now.UTC()
	var (
		res Result
		err error
	)

	res.Users, err = seedKey(ctx, s, repo.KeyUsers, func() ([]domain.User, error) {
		out := make([]domain.User, 0, len(d.Users))
		for _, u := range d.Users {
			id := u.ID
			if id == "" {
				id = uuid.NewString()
			}
			out = append(out, domain.User{ID: id, Name: u.Name, Cedula: u.Cedula, Role: u.Role, CreatedAt: now})
		}
		return out, nil
	})
	if err != nil {
		return res, err
	}

	res.Passengers, err = seedKey(ctx, s, repo.KeyPassengers, func() ([]domain.Passenger, error) {
		out := make([]domain.Passenger, 0, len(d.Passengers))
		for _, sp := range d.Passengers {
			p := domain.Passenger{
				ID:         uuid.NewString(),
				Name:       sp.Name,
				Cedula:     sp.Cedula,
				Department: sp.Gerencia,
				CreatedAt:  now,
			}
			code, err := qr.DataURL(qr.NewPayload(p, now))
			if err != nil {
				return nil, fmt.Errorf("passenger %s: %w", p.Cedula, err)
			}
			p.QRCode = code
			out = append(out, p)
		}
		return out, nil
	})
	if err != nil {
		return res, err
	}

	res.Conductors, err = seedKey(ctx, s, repo.KeyConductors, func() ([]domain.Conductor, error) {
		out := make([]domain.Conductor, 0, len(d.Conductors))
		for _, c := range d.Conductors {
			out = append(out, domain.Conductor{
				ID:        uuid.NewString(),
				Name:      c.Name,
				Cedula:    c.Cedula,
				Plate:     c.Placa,
				Area:      c.Area,
				Route:     c.Ruta,
				CreatedAt: now,
			})
		}
		return out, nil
	})
	return res, err
}

// seedKey builds the records only when key is absent, then writes them
// unless another writer got there first.
func seedKey[T any](ctx context.Context, s repo.Store, key string, build func() ([]T, error)) (bool, error) {
	current, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("seed.Apply %s: %w", key, err)
	}
	if current != nil {
		return false, nil
	}

	items, err := build()
	if err != nil {
		return false, fmt.Errorf("seed.Apply %s: %w", key, err)
	}
	wrote, err := repo.SeedIfAbsent(ctx, s, key, items)
	if err != nil {
		return false, fmt.Errorf("seed.Apply: %w", err)
	}
	if wrote {
		slog.InfoContext(ctx, "seeded default records", "key", key, "count", len(items))
	}
	return wrote, nil
}
