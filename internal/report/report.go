// Package report renders a domain.Report as downloadable files: the official
// PDF form, the official and detailed spreadsheets and a flat CSV.
//
// Renderers print times exactly as they appear on the report rows, so the
// caller converts them to the reporting timezone first.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// Format names a report rendition.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatPDF      Format = "pdf"
	FormatXLSX     Format = "xlsx"
	FormatDetailed Format = "xlsx-detailed"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatCSV, FormatPDF, FormatXLSX, FormatDetailed:
		return true
	}
	return false
}

// Letterhead is the issuing company printed on official documents.
type Letterhead struct {
	Company string
	RIF     string
}

// File is a rendered report.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

const (
	contentTypeCSV  = "text/csv"
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Render produces the file for any format except JSON, which callers encode
// directly from the report.
func Render(r domain.Report, f Format, lh Letterhead) (File, error) {
	var (
		data []byte
		err  error
		ct   string
	)
	switch f {
	case FormatCSV:
		data = CSV(r)
		ct = contentTypeCSV
	case FormatPDF:
		data, err = PDF(r, lh)
		ct = contentTypePDF
	case FormatXLSX:
		data, err = OfficialXLSX(r, lh)
		ct = contentTypeXLSX
	case FormatDetailed:
		data, err = DetailedXLSX(r)
		ct = contentTypeXLSX
	default:
		return File{}, fmt.Errorf("report.Render: format %q: %w", f, domain.ErrValidation)
	}
	if err != nil {
		return File{}, fmt.Errorf("report.Render: %w", err)
	}
	return File{Name: FileName(f, r.Label, r.GeneratedAt), ContentType: ct, Data: data}, nil
}

// FileName returns the download name of a rendition. The official forms are
// stamped to the minute, the detailed sheet to the day.
func FileName(f Format, label string, at time.Time) string {
	switch f {
	case FormatPDF:
		return fmt.Sprintf("Formulario_Listin_Control_Transporte_%s_%s.pdf", officialLabel(label), at.Format("02012006_1504"))
	case FormatXLSX:
		return fmt.Sprintf("Formulario_Listin_Control_Transporte_%s_%s.xlsx", officialLabel(label), at.Format("02012006_1504"))
	case FormatDetailed:
		return fmt.Sprintf("Reporte_Detallado_Transporte_%s_%s.xlsx", underscored(label), at.Format("02012006"))
	case FormatCSV:
		return fmt.Sprintf("Reporte_Transporte_%s_%s.csv", officialLabel(label), at.Format("02012006_1504"))
	}
	return fmt.Sprintf("Reporte_Transporte_%s.json", officialLabel(label))
}

// underscored joins the words of label with underscores. Slashes from custom
// date ranges become dashes so the result is a valid file name.
func underscored(label string) string {
	return strings.ReplaceAll(strings.Join(strings.Fields(label), "_"), "/", "-")
}

func officialLabel(label string) string {
	return strings.NewReplacer("(", "", ")", "").Replace(underscored(label))
}

// signatureLines returns the name, id and title lines of a signature block,
// with blanks of the given width where no signature is registered.
func signatureLines(s *domain.Signature, blank string) [3]string {
	if s == nil {
		return [3]string{"NOMBRE: " + blank, "C.I.: " + blank, "CARGO: " + blank}
	}
	return [3]string{"NOMBRE: " + s.Name, "C.I.: " + s.CI, "CARGO: " + s.Title}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func endTimeText(row domain.ReportRow, layout, open string) string {
	if row.EndTime == nil {
		return open
	}
	return row.EndTime.Format(layout)
}
