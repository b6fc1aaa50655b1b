package domain

import (
	"math"
	"time"
)

// Period selects the date range of a report.
type Period string

const (
	PeriodDaily    Period = "daily"    // today
	PeriodBiweekly Period = "biweekly" // the last two weeks, including today
	PeriodMonthly  Period = "monthly"  // the current calendar month
	PeriodCustom   Period = "custom"   // an explicit from..to day range
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodBiweekly, PeriodMonthly, PeriodCustom:
		return true
	}
	return false
}

// ReportRow is one trip as it appears on a report.
// Conductor and passenger columns come from the current registry records when
// they still exist, otherwise from the snapshot stored on the trip.
type ReportRow struct {
	TripID          string     `json:"tripId"`
	ConductorName   string     `json:"conductorName"`
	ConductorCedula string     `json:"conductorCedula"`
	Plate           string     `json:"placa"`
	Area            string     `json:"area"`
	Route           string     `json:"ruta"`
	PassengerName   string     `json:"passengerName"`
	PassengerCedula string     `json:"passengerCedula"`
	Department      string     `json:"gerencia"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	Status          TripStatus `json:"status"`
}

// ConductorStat aggregates the trips of one conductor within a report.
type ConductorStat struct {
	ConductorID string `json:"conductorId"`
	Name        string `json:"name"`
	Cedula      string `json:"cedula"`
	Plate       string `json:"placa"`
	Area        string `json:"area"`
	Total       int    `json:"totalTrips"`
	Finished    int    `json:"finishedTrips"`
}

// Efficiency is the rounded percentage of finished trips.
func (s ConductorStat) Efficiency() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Finished) / float64(s.Total) * 100))
}

// ReportSummary holds the statistics section of a report.
type ReportSummary struct {
	Total      int             `json:"totalTrips"`
	Finished   int             `json:"finishedTrips"`
	InProgress int             `json:"inProgressTrips"`
	Conductors []ConductorStat `json:"conductors"`
}

// Report is the renderer-independent content of a trip report.
// Contractor and Corporation are the first signature of each type, nil when
// none is registered; renderers print placeholder blanks for nil.
type Report struct {
	Label       string        `json:"period"`
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Rows        []ReportRow   `json:"rows"`
	Summary     ReportSummary `json:"summary"`
	Contractor  *Signature    `json:"contractor,omitempty"`
	Corporation *Signature    `json:"corporation,omitempty"`
}
