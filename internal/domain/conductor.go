package domain

import "time"

// Conductor is a shuttle driver. Route is free text.
type Conductor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cedula    string    `json:"cedula"`
	Plate     string    `json:"placa"`
	Area      string    `json:"area,omitempty"`
	Route     string    `json:"ruta,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// User returns the session user a conductor logs in as.
func (c Conductor) User() User {
	return User{
		ID:        c.ID,
		Name:      c.Name,
		Cedula:    c.Cedula,
		Role:      RoleConductor,
		CreatedAt: c.CreatedAt,
	}
}

// ConductorCredential lets a conductor log in.
// Password holds a bcrypt hash; it is never rendered in API responses.
type ConductorCredential struct {
	ID          string    `json:"id"`
	ConductorID string    `json:"conductorId"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	Active      bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}
