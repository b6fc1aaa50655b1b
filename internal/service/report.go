package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/report"
	"github.com/pkordes/shuttle-control/internal/repo"
)

// ReportFilter selects the trips of a report.
// From and To are only read for domain.PeriodCustom; only their calendar
// day in the reporting timezone matters.
type ReportFilter struct {
	Period      domain.Period
	From        time.Time
	To          time.Time
	ConductorID string
}

// Archiver keeps a copy of every rendered report file.
type Archiver interface {
	Archive(ctx context.Context, name, contentType string, data []byte) error
}

// ReportService assembles trip reports and renders them to files.
type ReportService struct {
	trips      repo.TripRepo
	passengers repo.PassengerRepo
	conductors repo.ConductorRepo
	signatures repo.SignatureRepo
	loc        *time.Location
	letterhead report.Letterhead
	archive    Archiver
	now        func() time.Time
}

// NewReportService constructs a ReportService. Periods are computed and times
// printed in loc. archive may be nil.
func NewReportService(
	trips repo.TripRepo,
	passengers repo.PassengerRepo,
	conductors repo.ConductorRepo,
	signatures repo.SignatureRepo,
	loc *time.Location,
	lh report.Letterhead,
	archive Archiver,
) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		trips:      trips,
		passengers: passengers,
		conductors: conductors,
		signatures: signatures,
		loc:        loc,
		letterhead: lh,
		archive:    archive,
		now:        time.Now,
	}
}

// PeriodRange returns the inclusive bounds and display label of a period
// relative to now, with day boundaries taken in loc.
// Returns domain.ErrValidation for an unknown period, and for a custom period
// with a missing or reversed range.
func PeriodRange(p domain.Period, from, to, now time.Time, loc *time.Location) (start, end time.Time, label string, err error) {
	now = now.In(loc)
	switch p {
	case domain.PeriodDaily:
		return startOfDay(now), endOfDay(now), "Diario (Hoy)", nil
	case domain.PeriodBiweekly:
		return startOfDay(now.AddDate(0, 0, -14)), endOfDay(now), "Quincenal (Últimas 2 semanas)", nil
	case domain.PeriodMonthly:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return first, first.AddDate(0, 1, 0).Add(-time.Nanosecond), "Mensual (Este mes)", nil
	case domain.PeriodCustom:
		if from.IsZero() || to.IsZero() {
			return time.Time{}, time.Time{}, "", fmt.Errorf("%w: from and to are required for a custom period", domain.ErrValidation)
		}
		start, end = startOfDay(from.In(loc)), endOfDay(to.In(loc))
		if end.Before(start) {
			return time.Time{}, time.Time{}, "", fmt.Errorf("%w: from is after to", domain.ErrValidation)
		}
		label = start.Format("02/01/2006") + " - " + end.Format("02/01/2006")
		return start, end, label, nil
	}
	return time.Time{}, time.Time{}, "", fmt.Errorf("%w: unknown period %q", domain.ErrValidation, p)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Build assembles the report of the trips actor may see within the filter.
// A conductor's report always covers only their own trips; the filter's
// ConductorID is ignored for them.
func (s *ReportService) Build(ctx context.Context, actor domain.User, f ReportFilter) (domain.Report, error) {
	now := s.now()
	start, end, label, err := PeriodRange(f.Period, f.From, f.To, now, s.loc)
	if err != nil {
		return domain.Report{}, fmt.Errorf("service.ReportService.Build: %w", err)
	}

	var (
		trips      []domain.Trip
		passengers []domain.Passenger
		conductors []domain.Conductor
		signatures []domain.Signature
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { trips, err = s.trips.List(gctx); return err })
	g.Go(func() (err error) { passengers, err = s.passengers.List(gctx); return err })
	g.Go(func() (err error) { conductors, err = s.conductors.List(gctx); return err })
	g.Go(func() (err error) { signatures, err = s.signatures.List(gctx); return err })
	if err := g.Wait(); err != nil {
		return domain.Report{}, fmt.Errorf("service.ReportService.Build: %w", err)
	}

	tf := domain.TripFilter{From: start, To: end, ConductorID: f.ConductorID}
	if actor.Role == domain.RoleConductor {
		tf.ConductorID = actor.ID
	}
	selected := filter(trips, func(t domain.Trip) bool { return tf.Match(t) })
	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.ConductorName < b.ConductorName
	})

	r := domain.Report{
		Label:       label,
		From:        start,
		To:          end,
		GeneratedAt: now.In(s.loc),
		Rows:        make([]domain.ReportRow, 0, len(selected)),
		Summary:     summarize(selected, conductors),
	}
	r.Contractor, r.Corporation = FirstOfEachType(signatures)

	passengerByID := make(map[string]domain.Passenger, len(passengers))
	for _, p := range passengers {
		passengerByID[p.ID] = p
	}
	conductorByID := make(map[string]domain.Conductor, len(conductors))
	for _, c := range conductors {
		conductorByID[c.ID] = c
	}
	for _, t := range selected {
		r.Rows = append(r.Rows, s.row(t, passengerByID, conductorByID))
	}
	return r, nil
}

// row enriches a trip from the current registry records, falling back to the
// snapshot stored on the trip.
func (s *ReportService) row(t domain.Trip, passengers map[string]domain.Passenger, conductors map[string]domain.Conductor) domain.ReportRow {
	row := domain.ReportRow{
		TripID:          t.ID,
		ConductorName:   t.ConductorName,
		Route:           t.Route,
		PassengerName:   t.PassengerName,
		PassengerCedula: t.PassengerCedula,
		StartTime:       t.StartTime.In(s.loc),
		Status:          t.Status,
	}
	if t.EndTime != nil {
		end := t.EndTime.In(s.loc)
		row.EndTime = &end
	}
	if c, ok := conductors[t.ConductorID]; ok {
		row.ConductorName = c.Name
		row.ConductorCedula = c.Cedula
		row.Plate = c.Plate
		row.Area = c.Area
	}
	if p, ok := passengers[t.PassengerID]; ok {
		row.PassengerName = p.Name
		row.PassengerCedula = p.Cedula
		row.Department = p.Department
	}
	return row
}

// summarize counts trips by status, with per-conductor figures for every
// registered conductor that has at least one trip, in registry order.
func summarize(trips []domain.Trip, conductors []domain.Conductor) domain.ReportSummary {
	sum := domain.ReportSummary{Total: len(trips), Conductors: []domain.ConductorStat{}}
	perConductor := make(map[string]*domain.ConductorStat)
	for _, t := range trips {
		st := perConductor[t.ConductorID]
		if st == nil {
			st = &domain.ConductorStat{}
			perConductor[t.ConductorID] = st
		}
		st.Total++
		if t.Status == domain.TripFinished {
			sum.Finished++
			st.Finished++
		} else if t.Status == domain.TripInProgress {
			sum.InProgress++
		}
	}
	for _, c := range conductors {
		st, ok := perConductor[c.ID]
		if !ok {
			continue
		}
		sum.Conductors = append(sum.Conductors, domain.ConductorStat{
			ConductorID: c.ID,
			Name:        c.Name,
			Cedula:      c.Cedula,
			Plate:       c.Plate,
			Area:        c.Area,
			Total:       st.Total,
			Finished:    st.Finished,
		})
	}
	return sum
}

// Render builds the report and renders it in format f, which must not be
// report.FormatJSON. When an archiver is configured the file is also
// archived; an archiving failure is logged and does not fail the call.
func (s *ReportService) Render(ctx context.Context, actor domain.User, rf ReportFilter, f report.Format) (report.File, error) {
	if !f.Valid() || f == report.FormatJSON {
		return report.File{}, fmt.Errorf("service.ReportService.Render: %w: unsupported format %q", domain.ErrValidation, f)
	}
	r, err := s.Build(ctx, actor, rf)
	if err != nil {
		return report.File{}, fmt.Errorf("service.ReportService.Render: %w", err)
	}
	file, err := report.Render(r, f, s.letterhead)
	if err != nil {
		return report.File{}, fmt.Errorf("service.ReportService.Render: %w", err)
	}

	if s.archive != nil {
		if err := s.archive.Archive(ctx, file.Name, file.ContentType, file.Data); err != nil {
			slog.WarnContext(ctx, "report archive failed", "file", file.Name, "error", err)
		}
	}
	return file, nil
}
