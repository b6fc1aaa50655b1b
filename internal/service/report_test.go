package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/report"
	"github.com/pkordes/shuttle-control/internal/service"
)

var caracas = time.FixedZone("VET", -4*3600)

func TestPeriodRange(t *testing.T) {
	// 02:30 UTC on the 1st is still the 28th of February in Caracas.
	now := time.Date(2025, 3, 1, 2, 30, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, caracas) }
	endOf := func(t time.Time) time.Time { return t.AddDate(0, 0, 1).Add(-time.Nanosecond) }

	tests := []struct {
		name      string
		period    domain.Period
		from, to  time.Time
		wantStart time.Time
		wantEnd   time.Time
		wantLabel string
	}{
		{"daily", domain.PeriodDaily, time.Time{}, time.Time{}, day(2025, 2, 28), endOf(day(2025, 2, 28)), "Diario (Hoy)"},
		{"biweekly", domain.PeriodBiweekly, time.Time{}, time.Time{}, day(2025, 2, 14), endOf(day(2025, 2, 28)), "Quincenal (Últimas 2 semanas)"},
		{"monthly", domain.PeriodMonthly, time.Time{}, time.Time{}, day(2025, 2, 1), endOf(day(2025, 2, 28)), "Mensual (Este mes)"},
		{"custom", domain.PeriodCustom, day(2025, 1, 5), day(2025, 1, 20), day(2025, 1, 5), endOf(day(2025, 1, 20)), "05/01/2025 - 20/01/2025"},
		{"custom single day", domain.PeriodCustom, day(2025, 1, 5).Add(15 * time.Hour), day(2025, 1, 5), day(2025, 1, 5), endOf(day(2025, 1, 5)), "05/01/2025 - 05/01/2025"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end, label, err := service.PeriodRange(tc.period, tc.from, tc.to, now, caracas)

			require.NoError(t, err)
			assert.True(t, tc.wantStart.Equal(start), "start = %v, want %v", start, tc.wantStart)
			assert.True(t, tc.wantEnd.Equal(end), "end = %v, want %v", end, tc.wantEnd)
			assert.Equal(t, tc.wantLabel, label)
		})
	}
}

func TestPeriodRange_Invalid(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	jan := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		period   domain.Period
		from, to time.Time
	}{
		{"unknown period", "weekly", time.Time{}, time.Time{}},
		{"custom without from", domain.PeriodCustom, time.Time{}, jan(2)},
		{"custom without to", domain.PeriodCustom, jan(2), time.Time{}},
		{"custom reversed", domain.PeriodCustom, jan(10), jan(2)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := service.PeriodRange(tc.period, tc.from, tc.to, now, time.UTC)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

// stubArchiver records archived files and fails when err is set.
type stubArchiver struct {
	names []string
	err   error
}

func (a *stubArchiver) Archive(_ context.Context, name, _ string, _ []byte) error {
	a.names = append(a.names, name)
	return a.err
}

var reportNow = time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC) // 18:00 in Caracas

func newReportService(trips []domain.Trip, archive service.Archiver) *service.ReportService {
	conductors := []domain.Conductor{
		{ID: "c2", Name: "Zulay Ruiz", Cedula: "11000222", Plate: "ZZ999ZZ"},
		pedro,
		{ID: "c3", Name: "Sin Viajes", Cedula: "12000333", Plate: "NN000NN"},
	}
	svc := service.NewReportService(
		&mockTripRepo{trips: trips},
		&mockPassengerRepo{list: func(context.Context) ([]domain.Passenger, error) { return passengersFixture(), nil }},
		&mockConductorRepo{list: func(context.Context) ([]domain.Conductor, error) { return conductors, nil }},
		&mockSignatureRepo{list: func(context.Context) ([]domain.Signature, error) {
			return []domain.Signature{{ID: "s1", Type: domain.SignatureContractor, Name: "Rosa"}}, nil
		}},
		caracas,
		report.Letterhead{Company: "CORPORACIÓN JF C.A.", RIF: "J-00000000-0"},
		archive,
	)
	svc.SetNow(func() time.Time { return reportNow })
	return svc
}

func reportTrips() []domain.Trip {
	today := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) // 08:00 Caracas
	deleted := openTrip("t-deleted", "p-gone", "c-gone", today)
	deleted.PassengerName, deleted.PassengerCedula, deleted.ConductorName = "Ex Empleado", "9999", "Ex Conductor"

	zulay := finishedTrip("t-zulay", "p2", "c2", today)
	zulay.ConductorName = "Zulay Ruiz"
	first := finishedTrip("t-pedro-1", "p1", "c1", today)
	first.ConductorName = "Pedro Pérez"

	return []domain.Trip{
		openTrip("t-pedro-2", "p3", "c1", today.Add(2*time.Hour)),
		zulay,
		first,
		deleted,
		finishedTrip("t-yesterday", "p1", "c1", today.AddDate(0, 0, -1)),
		openTrip("t-late", "p1", "c1", time.Date(2025, 3, 11, 3, 30, 0, 0, time.UTC)), // 23:30 on the 10th in Caracas
	}
}

func rowIDs(rows []domain.ReportRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.TripID
	}
	return ids
}

func TestReportService_Build_Daily(t *testing.T) {
	svc := newReportService(reportTrips(), nil)

	r, err := svc.Build(context.Background(), adminUser, service.ReportFilter{Period: domain.PeriodDaily})

	require.NoError(t, err)
	assert.Equal(t, "Diario (Hoy)", r.Label)
	assert.Equal(t, caracas, r.GeneratedAt.Location())
	// Ties on start time fall back to the conductor name.
	assert.Equal(t, []string{"t-deleted", "t-pedro-1", "t-zulay", "t-pedro-2", "t-late"}, rowIDs(r.Rows))

	ghost := r.Rows[0]
	assert.Equal(t, "Ex Conductor", ghost.ConductorName, "snapshot used when the conductor is gone")
	assert.Equal(t, "", ghost.ConductorCedula)
	assert.Equal(t, "Ex Empleado", ghost.PassengerName)
	assert.Equal(t, "9999", ghost.PassengerCedula)
	assert.Equal(t, "", ghost.Department)

	row := r.Rows[1]
	assert.Equal(t, "10111222", row.ConductorCedula)
	assert.Equal(t, "AB123CD", row.Plate)
	assert.Equal(t, "Finanzas", row.Department)
	assert.Equal(t, 8, row.StartTime.Hour(), "times are printed in the reporting timezone")
	require.NotNil(t, row.EndTime)
	assert.Equal(t, caracas, row.EndTime.Location())

	wantSummary := domain.ReportSummary{
		Total: 5, Finished: 2, InProgress: 3,
		Conductors: []domain.ConductorStat{
			{ConductorID: "c2", Name: "Zulay Ruiz", Cedula: "11000222", Plate: "ZZ999ZZ", Total: 1, Finished: 1},
			{ConductorID: "c1", Name: "Pedro Pérez", Cedula: "10111222", Plate: "AB123CD", Area: "", Total: 3, Finished: 1},
		},
	}
	if diff := cmp.Diff(wantSummary, r.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, r.Contractor)
	assert.Equal(t, "Rosa", r.Contractor.Name)
	assert.Nil(t, r.Corporation)
}

func TestReportService_Build_ConductorScope(t *testing.T) {
	svc := newReportService(reportTrips(), nil)

	// A conductor asking for someone else's trips still only gets their own.
	r, err := svc.Build(context.Background(), pedro.User(), service.ReportFilter{Period: domain.PeriodDaily, ConductorID: "c2"})

	require.NoError(t, err)
	assert.Equal(t, []string{"t-pedro-1", "t-pedro-2", "t-late"}, rowIDs(r.Rows))
	require.Len(t, r.Summary.Conductors, 1)
	assert.Equal(t, "c1", r.Summary.Conductors[0].ConductorID)
}

func TestReportService_Build_AdminConductorFilter(t *testing.T) {
	svc := newReportService(reportTrips(), nil)

	r, err := svc.Build(context.Background(), adminUser, service.ReportFilter{Period: domain.PeriodMonthly, ConductorID: "c2"})

	require.NoError(t, err)
	assert.Equal(t, []string{"t-zulay"}, rowIDs(r.Rows))
}

func TestReportService_Build_Empty(t *testing.T) {
	svc := newReportService(nil, nil)

	r, err := svc.Build(context.Background(), adminUser, service.ReportFilter{Period: domain.PeriodDaily})

	require.NoError(t, err)
	assert.NotNil(t, r.Rows)
	assert.Empty(t, r.Rows)
	assert.Empty(t, r.Summary.Conductors)
}

func TestReportService_Build_LoadError(t *testing.T) {
	storeErr := errors.New("store unavailable")
	svc := service.NewReportService(
		&mockTripRepo{listErr: storeErr},
		&mockPassengerRepo{list: func(context.Context) ([]domain.Passenger, error) { return nil, nil }},
		&mockConductorRepo{list: func(context.Context) ([]domain.Conductor, error) { return nil, nil }},
		&mockSignatureRepo{list: func(context.Context) ([]domain.Signature, error) { return nil, nil }},
		time.UTC, report.Letterhead{}, nil,
	)

	_, err := svc.Build(context.Background(), adminUser, service.ReportFilter{Period: domain.PeriodDaily})

	assert.ErrorIs(t, err, storeErr)
}

func TestReportService_Render_Archives(t *testing.T) {
	archive := &stubArchiver{}
	svc := newReportService(reportTrips(), archive)

	f, err := svc.Render(context.Background(), adminUser, service.ReportFilter{Period: domain.PeriodDaily}, report.FormatXLSX)

	require.NoError(t, err)
	assert.Equal(t, "Formulario_Listin_Control_Transporte_Diario_Hoy_10032025_1800.xlsx", f.Name)
	assert.Equal(t, []string{f.Name}, archive.names)
}

func TestReportService_Render_ArchiveFailureIsNotFatal(t *testing.T) {
	archive := &stubArchiver{err: errors.New("bucket gone")}
	svc := newReportService(reportTrips(), archive)

	f, err := svc.Render(context.Background(), adminUser, service.ReportFilter{Period: domain.PeriodDaily}, report.FormatCSV)

	require.NoError(t, err)
	assert.NotEmpty(t, f.Data)
}

func TestReportService_Render_RejectsJSON(t *testing.T) {
	svc := newReportService(nil, nil)

	_, err := svc.Render(context.Background(), adminUser, service.ReportFilter{Period: domain.PeriodDaily}, report.FormatJSON)

	assert.ErrorIs(t, err, domain.ErrValidation)
}
