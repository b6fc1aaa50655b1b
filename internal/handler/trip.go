package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/shuttle-control/internal/auth"
	"github.com/pkordes/shuttle-control/internal/domain"
)

// maxScanImageMemory bounds the part of a multipart scan upload held in memory.
const maxScanImageMemory = 8 << 20

// ScanRequest is the body of POST /scan. QRData holds the text read from a
// QR code; Cedula is the manual-entry fallback and is only read when QRData
// is empty.
type ScanRequest struct {
	QRData string `json:"qrData"`
	Cedula string `json:"cedula"`
}

// Scan handles POST /scan. It starts the passenger's trip, or finishes it
// when one is already in progress.
func (s *Server) Scan(w http.ResponseWriter, r *http.Request) {
	actor, ok := sessionUser(w, r)
	if !ok {
		return
	}
	var body ScanRequest
	if !decodeBody(w, r, &body) {
		return
	}

	var (
		res domain.ScanResult
		err error
	)
	switch {
	case strings.TrimSpace(body.QRData) != "":
		res, err = s.Trips.Scan(r.Context(), actor, body.QRData)
	case strings.TrimSpace(body.Cedula) != "":
		res, err = s.Trips.Toggle(r.Context(), actor, body.Cedula)
	default:
		requestError(w, "qrData or cedula is required")
		return
	}
	if err != nil {
		respondError(w, r, err, "passenger")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ScanImage handles POST /scan/image with a multipart "image" field holding
// a photo of a QR code.
func (s *Server) ScanImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := sessionUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxScanImageMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return
		}
		requestError(w, "request must be multipart/form-data")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f, _, err := r.FormFile("image")
	if err != nil {
		requestError(w, "image file is required")
		return
	}
	defer f.Close()

	res, err := s.Trips.ScanImage(r.Context(), actor, f)
	if err != nil {
		respondError(w, r, err, "passenger")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListTrips handles GET /trips.
// Supports ?status=, ?conductorId=, ?passengerId=, ?from= and ?to= (dates,
// inclusive, in the reporting timezone) plus ?page= and ?limit=.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	actor, ok := sessionUser(w, r)
	if !ok {
		return
	}
	var (
		status                   *string
		conductorID, passengerID *string
		from, to                 *openapi_types.Date
	)
	if !query(w, r, "status", &status) ||
		!query(w, r, "conductorId", &conductorID) ||
		!query(w, r, "passengerId", &passengerID) ||
		!query(w, r, "from", &from) ||
		!query(w, r, "to", &to) {
		return
	}

	f := domain.TripFilter{
		Status:      domain.TripStatus(deref(status)),
		ConductorID: deref(conductorID),
		PassengerID: deref(passengerID),
	}
	if f.Status != "" && f.Status != domain.TripInProgress && f.Status != domain.TripFinished {
		requestError(w, "status must be en_curso or finalizado")
		return
	}
	if from != nil {
		f.From = s.dayStart(*from)
	}
	if to != nil {
		f.To = s.dayStart(*to).AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	trips, err := s.Trips.List(r.Context(), actor, f)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	page, ok := paginate(w, r, trips)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ActiveTrips handles GET /trips/active: the open trips the caller may see.
func (s *Server) ActiveTrips(w http.ResponseWriter, r *http.Request) {
	actor, ok := sessionUser(w, r)
	if !ok {
		return
	}
	trips, err := s.Trips.Active(r.Context(), actor)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	page, ok := paginate(w, r, trips)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := sessionUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	trip, err := s.Trips.GetByID(r.Context(), actor, id)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// FinishTrip handles POST /trips/{id}/finish. Finishing a finished trip is
// a 409.
func (s *Server) FinishTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := sessionUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	trip, err := s.Trips.Finish(r.Context(), actor, id)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// GetStats handles GET /dashboard/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Trips.Stats(r.Context())
	if err != nil {
		respondError(w, r, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// sessionUser returns the authenticated user, answering 401 when there is none.
func sessionUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return domain.User{}, false
	}
	return u, true
}

// dayStart is midnight of d's calendar day in the reporting timezone.
func (s *Server) dayStart(d openapi_types.Date) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.Location)
}
