package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// collection reads and writes one JSON array snapshot of T under a key.
type collection[T any] struct {
	store Store
	key   string
}

// decodeSnapshot parses a stored snapshot. An absent key, an empty value and
// a JSON null all read as an empty collection.
func decodeSnapshot[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func encodeSnapshot[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

func (c collection[T]) load(ctx context.Context) ([]T, error) {
	data, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	items, err := decodeSnapshot[T](data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.key, err)
	}
	return items, nil
}

func (c collection[T]) save(ctx context.Context, items []T) error {
	data, err := encodeSnapshot(items)
	if err != nil {
		return err
	}
	return c.store.Put(ctx, c.key, data)
}

// mutate applies fn to the current snapshot and stores its result, atomically
// with respect to other writers of the same key.
func (c collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	return c.store.Update(ctx, c.key, func(current []byte) ([]byte, error) {
		items, err := decodeSnapshot[T](current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.key, err)
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		return encodeSnapshot(next)
	})
}

// records implements the CRUD operations shared by every registry on top of
// a collection. name prefixes error messages ("repo.PassengerRepo").
type records[T any] struct {
	coll collection[T]
	name string
	// id returns the identifier of an item.
	id func(T) string
	// stamp assigns a fresh id and creation time to a new item.
	stamp func(item *T, id string, now time.Time)
	// check, when set, rejects a write that would break a uniqueness rule.
	// others holds every stored item except the one being written.
	check func(others []T, item T) error
}

func (r records[T]) list(ctx context.Context) ([]T, error) {
	items, err := r.coll.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s.List: %w", r.name, err)
	}
	return items, nil
}

func (r records[T]) get(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := r.coll.load(ctx)
	if err != nil {
		return zero, fmt.Errorf("%s.GetByID: %w", r.name, err)
	}
	for _, it := range items {
		if r.id(it) == id {
			return it, nil
		}
	}
	return zero, fmt.Errorf("%s.GetByID: %w", r.name, domain.ErrNotFound)
}

// find returns the first item matching fn, or domain.ErrNotFound.
func (r records[T]) find(ctx context.Context, op string, fn func(T) bool) (T, error) {
	var zero T
	items, err := r.coll.load(ctx)
	if err != nil {
		return zero, fmt.Errorf("%s.%s: %w", r.name, op, err)
	}
	for _, it := range items {
		if fn(it) {
			return it, nil
		}
	}
	return zero, fmt.Errorf("%s.%s: %w", r.name, op, domain.ErrNotFound)
}

func (r records[T]) create(ctx context.Context, item T) (T, error) {
	r.stamp(&item, uuid.NewString(), time.Now().UTC())
	err := r.coll.mutate(ctx, func(items []T) ([]T, error) {
		if r.check != nil {
			if err := r.check(items, item); err != nil {
				return nil, err
			}
		}
		return append(items, item), nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s.Create: %w", r.name, err)
	}
	return item, nil
}

// update replaces the stored item that has the same id as item.
func (r records[T]) update(ctx context.Context, item T) (T, error) {
	id := r.id(item)
	err := r.coll.mutate(ctx, func(items []T) ([]T, error) {
		idx := -1
		others := make([]T, 0, len(items))
		for i, it := range items {
			if r.id(it) == id {
				idx = i
				continue
			}
			others = append(others, it)
		}
		if idx < 0 {
			return nil, domain.ErrNotFound
		}
		if r.check != nil {
			if err := r.check(others, item); err != nil {
				return nil, err
			}
		}
		items[idx] = item
		return items, nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s.Update: %w", r.name, err)
	}
	return item, nil
}

func (r records[T]) delete(ctx context.Context, id string) error {
	err := r.coll.mutate(ctx, func(items []T) ([]T, error) {
		for i, it := range items {
			if r.id(it) == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, domain.ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("%s.Delete: %w", r.name, err)
	}
	return nil
}
