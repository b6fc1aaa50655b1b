package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// Dump is a snapshot of every present storage key.
type Dump map[string]json.RawMessage

// Export reads every known key. Absent keys are left out.
func Export(ctx context.Context, s Store) (Dump, error) {
	out := make(Dump, len(Keys))
	for _, k := range Keys {
		data, err := s.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("repo.Export: %w", err)
		}
		if data != nil {
			out[k] = json.RawMessage(data)
		}
	}
	return out, nil
}

// Import writes every key of d, overwriting what is stored.
//
// Values may be JSON documents or JSON strings holding a document, which is
// how browser storage exports them. Every value is checked against the shape
// of its key before anything is written: collections must be arrays of their
// record type and the session key an object or null. Unknown keys and
// mismatched values fail with domain.ErrValidation.
//
// Keys are written one by one. A store failure partway through leaves the
// keys written before it in place.
func Import(ctx context.Context, s Store, d Dump) error {
	values := make(map[string][]byte, len(d))
	for k, raw := range d {
		check, ok := shapes[k]
		if !ok {
			return fmt.Errorf("repo.Import: unknown key %q: %w", k, domain.ErrValidation)
		}
		v, err := unwrapValue(raw)
		if err != nil {
			return fmt.Errorf("repo.Import: key %s: %w", k, err)
		}
		if err := check(v); err != nil {
			return fmt.Errorf("repo.Import: key %s: %v: %w", k, err, domain.ErrValidation)
		}
		values[k] = v
	}

	for _, k := range Keys {
		v, ok := values[k]
		if !ok {
			continue
		}
		if err := s.Put(ctx, k, v); err != nil {
			return fmt.Errorf("repo.Import: %w", err)
		}
	}
	return nil
}

// Clear deletes every known key.
func Clear(ctx context.Context, s Store) error {
	for _, k := range Keys {
		if err := s.Delete(ctx, k); err != nil {
			return fmt.Errorf("repo.Clear: %w", err)
		}
	}
	return nil
}

// SeedIfAbsent stores items under key only when the key has never been
// written. It reports whether it wrote.
func SeedIfAbsent[T any](ctx context.Context, s Store, key string, items []T) (bool, error) {
	wrote := false
	err := s.Update(ctx, key, func(current []byte) ([]byte, error) {
		if current != nil {
			return current, nil
		}
		wrote = true
		return encodeSnapshot(items)
	})
	if err != nil {
		return false, fmt.Errorf("repo.SeedIfAbsent %s: %w", key, err)
	}
	return wrote, nil
}

// shapes validates an imported value for each storage key.
var shapes = map[string]func([]byte) error{
	KeyUsers:                snapshotOf[domain.User],
	KeyPassengers:           snapshotOf[domain.Passenger],
	KeyConductors:           snapshotOf[domain.Conductor],
	KeyTrips:                snapshotOf[domain.Trip],
	KeyCurrentUser:          sessionUser,
	KeySignatures:           snapshotOf[domain.Signature],
	KeyConductorCredentials: snapshotOf[domain.ConductorCredential],
}

func snapshotOf[T any](data []byte) error {
	_, err := decodeSnapshot[T](data)
	return err
}

// sessionUser accepts a single user object or null.
func sessionUser(data []byte) error {
	var u *domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("decode session user: %w", err)
	}
	return nil
}

func unwrapValue(raw json.RawMessage) ([]byte, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("invalid JSON: %w", domain.ErrValidation)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("invalid string value: %w", domain.ErrValidation)
		}
		if !json.Valid([]byte(s)) {
			return nil, fmt.Errorf("string value is not JSON: %w", domain.ErrValidation)
		}
		return []byte(s), nil
	}
	return []byte(raw), nil
}
