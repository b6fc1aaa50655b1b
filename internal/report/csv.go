package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "start_time", "end_time", "status",
	"conductor", "conductor_cedula", "placa", "area", "ruta",
	"passenger", "passenger_cedula", "gerencia", "duration_min",
}

// CSV encodes one line per report row, RFC3339 timestamps and an empty
// end_time and duration_min for trips still in progress.
func CSV(r domain.Report) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, row := range r.Rows {
		//nolint:errcheck
		w.Write(csvRecord(row))
	}
	w.Flush()
	return buf.Bytes()
}

func csvRecord(row domain.ReportRow) []string {
	end, minutes := "", ""
	if row.EndTime != nil {
		end = row.EndTime.Format(time.RFC3339)
		minutes = strconv.Itoa(durationMinutes(row))
	}
	return []string{
		row.TripID,
		row.StartTime.Format(time.RFC3339),
		end,
		string(row.Status),
		row.ConductorName,
		row.ConductorCedula,
		row.Plate,
		row.Area,
		row.Route,
		row.PassengerName,
		row.PassengerCedula,
		row.Department,
		minutes,
	}
}

// durationMinutes is the rounded length of a finished trip in minutes.
func durationMinutes(row domain.ReportRow) int {
	if row.EndTime == nil {
		return 0
	}
	return int(row.EndTime.Sub(row.StartTime).Round(time.Minute) / time.Minute)
}
