package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/shuttle-control/internal/domain"
)

const (
	officialSheet = "Control Transporte Oficial"
	detailedSheet = "Detalle Completo"
	// officialCols is the width of the official form grid, columns A..J.
	officialCols = 10
	// officialRightCol is the zero-based column of the right-hand signature
	// block and letterhead titles.
	officialRightCol = 5
	xlsxBlank        = "________________"
)

var (
	officialWidths = []float64{12, 35, 18, 10, 40, 35, 18, 25, 12, 12}
	officialHeader = []any{
		"FECHA", "CONDUCTOR", "C.I. CONDUCTOR", "PLACA", "RUTA ASIGNADA",
		"PASAJERO", "C.I. PASAJERO", "GERENCIA/ÁREA", "HORA SALIDA", "HORA LLEGADA",
	}
	statsHeader = []any{
		"CONDUCTOR", "C.I.", "PLACA", "ÁREA", "TOTAL VIAJES", "COMPLETADOS", "EFICIENCIA (%)",
	}

	detailedWidths = []float64{5, 12, 10, 30, 15, 8, 20, 35, 30, 15, 20, 10, 12, 12}
	detailedHeader = []any{
		"No.", "Fecha", "Hora Inicio", "Conductor", "C.I. Conductor", "Placa", "Área",
		"Ruta Asignada", "Pasajero", "C.I. Pasajero", "Gerencia", "Hora Fin", "Estado",
		"Duración (min)",
	}
)

// sheetRows accumulates the rows of a worksheet before it is written.
type sheetRows [][]any

func (s *sheetRows) add(cells ...any) { *s = append(*s, cells) }

func (s *sheetRows) blank(n int) {
	for i := 0; i < n; i++ {
		s.add()
	}
}

// pair places left in column A and right in the right-hand block column.
func (s *sheetRows) pair(left, right string) {
	row := make([]any, officialRightCol+1)
	row[0], row[officialRightCol] = left, right
	s.add(row...)
}

// OfficialXLSX renders the official form as a single worksheet: letterhead,
// trip table, summary, per-conductor statistics and signature blocks.
func OfficialXLSX(r domain.Report, lh Letterhead) ([]byte, error) {
	var rows sheetRows

	rows.add(lh.Company, "", "", "", "", "CONTROL DE TRANSPORTE", "", "", "", "FORMULARIO LISTÍN")
	rows.add("RIF: "+lh.RIF, "", "", "", "", "DE PERSONAL", "", "", "", "BAJO GRANDE")
	rows.add("PERÍODO: " + strings.ToUpper(r.Label))
	rows.add("FECHA DE EMISIÓN: " + r.GeneratedAt.Format("02/01/2006"))
	rows.blank(2)

	rows.add(officialHeader...)
	for _, row := range r.Rows {
		rows.add(
			row.StartTime.Format("02/01/2006"),
			row.ConductorName,
			row.ConductorCedula,
			row.Plate,
			row.Route,
			row.PassengerName,
			row.PassengerCedula,
			row.Department,
			row.StartTime.Format("15:04"),
			endTimeText(row, "15:04", "EN CURSO"),
		)
	}

	rows.blank(2)
	rows.add("RESUMEN ESTADÍSTICO DEL PERÍODO")
	rows.add("TOTAL DE VIAJES REGISTRADOS:", strconv.Itoa(r.Summary.Total))
	rows.add("VIAJES COMPLETADOS:", strconv.Itoa(r.Summary.Finished))
	rows.add("VIAJES EN CURSO:", strconv.Itoa(r.Summary.InProgress))

	if len(r.Summary.Conductors) > 0 {
		rows.blank(1)
		rows.add("ESTADÍSTICAS POR CONDUCTOR")
		rows.add(statsHeader...)
		for _, st := range r.Summary.Conductors {
			area := st.Area
			if area == "" {
				area = "N/A"
			}
			rows.add(
				st.Name, st.Cedula, st.Plate, area,
				strconv.Itoa(st.Total), strconv.Itoa(st.Finished),
				fmt.Sprintf("%d%%", st.Efficiency()),
			)
		}
	}

	rows.blank(2)
	rows.add("VERIFICACIÓN Y FIRMAS RESPONSABLES")
	rows.blank(1)
	rows.pair("VERIFICADO POR CONTRATISTA:", "VERIFICADO POR "+corporationName(lh.Company)+":")
	left := signatureLines(r.Contractor, xlsxBlank)
	right := signatureLines(r.Corporation, xlsxBlank)
	for i := range left {
		rows.pair(left[i], right[i])
	}
	rows.pair("FIRMA: "+xlsxBlank, "FIRMA: "+xlsxBlank)

	rows.blank(1)
	footer := make([]any, officialCols)
	footer[0] = "DOCUMENTO GENERADO EL: " + r.GeneratedAt.Format("02/01/2006 15:04")
	footer[officialCols-1] = "PÁGINA 1 DE 1"
	rows.add(footer...)

	data, err := writeWorkbook(officialSheet, officialWidths, rows)
	if err != nil {
		return nil, fmt.Errorf("report.OfficialXLSX: %w", err)
	}
	return data, nil
}

// DetailedXLSX renders one numbered line per trip with status and duration.
func DetailedXLSX(r domain.Report) ([]byte, error) {
	rows := sheetRows{detailedHeader}
	for i, row := range r.Rows {
		area := row.Area
		if area == "" {
			area = "N/A"
		}
		status, duration := "EN CURSO", "N/A"
		if row.EndTime != nil {
			status = "COMPLETADO"
			duration = strconv.Itoa(durationMinutes(row))
		}
		rows.add(
			i+1,
			row.StartTime.Format("02/01/2006"),
			row.StartTime.Format("15:04"),
			row.ConductorName,
			row.ConductorCedula,
			row.Plate,
			area,
			row.Route,
			row.PassengerName,
			row.PassengerCedula,
			row.Department,
			endTimeText(row, "15:04", "EN CURSO"),
			status,
			duration,
		)
	}

	data, err := writeWorkbook(detailedSheet, detailedWidths, rows)
	if err != nil {
		return nil, fmt.Errorf("report.DetailedXLSX: %w", err)
	}
	return data, nil
}

func writeWorkbook(sheet string, widths []float64, rows sheetRows) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, err
		}
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
