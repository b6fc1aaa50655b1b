package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/report"
	"github.com/pkordes/shuttle-control/internal/service"
)

// GetReport handles
// GET /reports?period=&from=&to=&conductorId=&format=.
// period defaults to daily and format to json; from and to are required for
// the custom period. Non-JSON formats are sent as downloads.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := sessionUser(w, r)
	if !ok {
		return
	}
	var (
		period, format, conductorID *string
		from, to                    *openapi_types.Date
	)
	if !query(w, r, "period", &period) ||
		!query(w, r, "format", &format) ||
		!query(w, r, "conductorId", &conductorID) ||
		!query(w, r, "from", &from) ||
		!query(w, r, "to", &to) {
		return
	}

	rf := service.ReportFilter{
		Period:      domain.Period(deref(period)),
		ConductorID: deref(conductorID),
	}
	if rf.Period == "" {
		rf.Period = domain.PeriodDaily
	}
	if from != nil {
		rf.From = s.dayStart(*from)
	}
	if to != nil {
		rf.To = s.dayStart(*to)
	}
	f := report.Format(deref(format))
	if f == "" {
		f = report.FormatJSON
	}
	if !f.Valid() {
		requestError(w, "format must be one of json, csv, pdf, xlsx, xlsx-detailed")
		return
	}

	if f == report.FormatJSON {
		rep, err := s.Reports.Build(r.Context(), actor, rf)
		if err != nil {
			respondError(w, r, err, "report")
			return
		}
		writeJSON(w, http.StatusOK, rep)
		return
	}

	file, err := s.Reports.Render(r.Context(), actor, rf, f)
	if err != nil {
		respondError(w, r, err, "report")
		return
	}
	writeFile(w, file.ContentType, file.Name, file.Data)
}
