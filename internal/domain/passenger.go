package domain

import "time"

// Passenger is an employee who rides the shuttle.
// QRCode holds a PNG data URL encoding the passenger's identity payload.
type Passenger struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Cedula     string    `json:"cedula"`
	Department string    `json:"gerencia"`
	QRCode     string    `json:"qrCode"`
	CreatedAt  time.Time `json:"createdAt"`
}
