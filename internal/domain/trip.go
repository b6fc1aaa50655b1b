// Package domain contains the core data types for the shuttle control application.
// This package has no dependencies on other internal packages and is imported by
// every other internal package (repo, service, handler, report).
//
// JSON field names match the storage format of the collections, so a dump of
// the browser storage the system started out on can be restored verbatim.
package domain

import "time"

// TripStatus is the state of a trip. A trip only ever moves from
// TripInProgress to TripFinished.
type TripStatus string

const (
	TripInProgress TripStatus = "en_curso"
	TripFinished   TripStatus = "finalizado"
)

// DefaultRoute is recorded on a trip when the conductor has no route assigned.
const DefaultRoute = "Ruta no especificada"

// Trip is one passenger ride, opened by a check-in scan and closed by the
// next scan of the same passenger.
// Passenger and conductor names are snapshots taken when the trip was opened;
// they are not updated when the source records change or are deleted.
type Trip struct {
	ID              string     `json:"id"`
	PassengerID     string     `json:"passengerId"`
	PassengerName   string     `json:"passengerName"`
	PassengerCedula string     `json:"passengerCedula"`
	ConductorID     string     `json:"conductorId"`
	ConductorName   string     `json:"conductorName"`
	Route           string     `json:"ruta"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"` // nil while the trip is in progress
	Status          TripStatus `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Open reports whether the trip is still in progress.
func (t Trip) Open() bool {
	return t.Status == TripInProgress
}

// Duration returns the trip length, or false when the trip has not finished.
func (t Trip) Duration() (time.Duration, bool) {
	if t.EndTime == nil {
		return 0, false
	}
	return t.EndTime.Sub(t.StartTime), true
}

// TripFilter narrows a trip listing. Zero values match everything.
type TripFilter struct {
	Status      TripStatus
	ConductorID string
	PassengerID string
	// From and To bound StartTime, both inclusive. Zero times are open bounds.
	From time.Time
	To   time.Time
}

// Match reports whether t satisfies every non-zero field of f.
func (f TripFilter) Match(t Trip) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.ConductorID != "" && t.ConductorID != f.ConductorID {
		return false
	}
	if f.PassengerID != "" && t.PassengerID != f.PassengerID {
		return false
	}
	if !f.From.IsZero() && t.StartTime.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.StartTime.After(f.To) {
		return false
	}
	return true
}

// TripAction tells the caller of a scan what the scan did.
type TripAction string

const (
	TripStarted TripAction = "started"
	TripEnded   TripAction = "finished"
)

// ScanResult is the outcome of a check-in/check-out scan.
type ScanResult struct {
	Action    TripAction `json:"action"`
	Trip      Trip       `json:"trip"`
	Passenger Passenger  `json:"passenger"`
}

// Stats is the dashboard summary.
type Stats struct {
	TotalPassengers int `json:"totalPassengers"`
	TotalConductors int `json:"totalConductors"`
	TotalTrips      int `json:"totalTrips"`
	ActiveTrips     int `json:"activeTrips"`
}
