// Package repo contains all persistence logic for the shuttle control API.
//
// Every collection (users, passengers, trips, ...) is stored as one JSON array
// under a fixed key of a key/value Store. Saves always overwrite the whole
// snapshot; there are no partial updates. Read-modify-write goes through
// Store.Update, which serializes writers of the same key.
//
// No business logic lives here, only storage and the uniqueness rules the
// collections are written with.
package repo

import "context"

// Storage keys. They match the keys the browser build of the application
// used, so a dump of that storage can be restored unchanged.
const (
	KeyUsers                = "transport_users"
	KeyPassengers           = "transport_passengers"
	KeyConductors           = "transport_conductors"
	KeyTrips                = "transport_trips"
	KeyCurrentUser          = "transport_current_user"
	KeySignatures           = "transport_signatures"
	KeyConductorCredentials = "transport_conductor_credentials"
)

// Keys lists every storage key, in the order dumps are written.
var Keys = []string{
	KeyUsers,
	KeyPassengers,
	KeyConductors,
	KeyTrips,
	KeyCurrentUser,
	KeySignatures,
	KeyConductorCredentials,
}

// UpdateFunc receives the current value of a key (nil when the key is absent)
// and returns the value to store. Returning an error aborts the update and
// leaves the stored value unchanged.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is a flat key/value store of JSON documents.
// Implementations exist for Postgres, SQLite, MongoDB and process memory.
type Store interface {
	// Get returns the value stored under key, or nil if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put overwrites the value stored under key.
	Put(ctx context.Context, key string, data []byte) error

	// Update atomically replaces the value under key with fn's result.
	// Concurrent updates of the same key never lose each other's writes.
	// Errors returned by fn are returned unchanged.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
