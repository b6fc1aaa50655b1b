package domain

import "time"

// Role gates which operations a user may reach.
type Role string

const (
	RoleRoot      Role = "root"
	RoleAdmin     Role = "admin"
	RoleConductor Role = "conductor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleRoot, RoleAdmin, RoleConductor:
		return true
	}
	return false
}

// RootUserID is the id of the synthetic root user. It is never stored.
const RootUserID = "root"

// User is an operator of the system.
// Conductors that log in with a credential are represented as a User built
// from their conductor record, with the conductor's id.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cedula    string    `json:"cedula"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// RootUser returns the synthetic root user that logs in with the configured
// root credentials.
func RootUser(now time.Time) User {
	return User{
		ID:        RootUserID,
		Name:      "Administrador Root",
		Cedula:    "00000000",
		Role:      RoleRoot,
		CreatedAt: now,
	}
}
