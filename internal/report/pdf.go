package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// PDF page geometry in millimetres (A4 portrait).
const (
	pdfMargin    = 15.0
	pdfRowHeight = 10.0
	// A new page starts before any row whose top would sit below
	// pageHeight-pdfTableBottom.
	pdfTableBottom = 60.0
	// The signature section moves to a fresh page when it would start below
	// pageHeight-pdfSignatureRoom.
	pdfSignatureRoom = 120.0
)

type rgb struct{ r, g, b int }

var (
	colorPrimary   = rgb{0, 124, 219}
	colorSecondary = rgb{34, 139, 34}
	colorDarkBlue  = rgb{25, 42, 86}
	colorAccent    = rgb{255, 140, 0}
)

var (
	pdfColWidths = []float64{20, 35, 25, 15, 45, 35, 25, 30}
	pdfHeaders   = []string{"FECHA", "CONDUCTOR", "C.I. COND.", "PLACA", "RUTA", "PASAJERO", "C.I. PAS.", "GERENCIA"}
)

// PDF renders the official transport control form.
func PDF(r domain.Report, lh Letterhead) ([]byte, error) {
	doc := buildPDF(r, lh)
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("report.PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfWriter wraps fpdf with the cp1252 translation the core fonts need for
// accented Spanish text.
type pdfWriter struct {
	*fpdf.Fpdf
	tr func(string) string
}

func (w *pdfWriter) text(x, y float64, s string) { w.Text(x, y, w.tr(s)) }

func (w *pdfWriter) centered(y float64, s string) {
	pageW, _ := w.GetPageSize()
	s = w.tr(s)
	w.Text((pageW-w.GetStringWidth(s))/2, y, s)
}

func (w *pdfWriter) fill(c rgb) { w.SetFillColor(c.r, c.g, c.b) }
func (w *pdfWriter) draw(c rgb) { w.SetDrawColor(c.r, c.g, c.b) }
func (w *pdfWriter) textColor(c rgb) { w.SetTextColor(c.r, c.g, c.b) }

func buildPDF(r domain.Report, lh Letterhead) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle("Control de Transporte de Personal", true)
	doc.SetCreator(lh.Company, true)
	w := &pdfWriter{Fpdf: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}

	pageW, pageH := w.GetPageSize()
	contentW := pageW - 2*pdfMargin
	w.AddPage()

	// Letterhead band.
	w.fill(colorDarkBlue)
	w.Rect(0, 0, pageW, 35, "F")
	w.SetTextColor(255, 255, 255)
	w.SetFont("Helvetica", "B", 18)
	w.text(pdfMargin, 15, lh.Company)
	w.SetFont("Helvetica", "", 12)
	w.text(pdfMargin, 22, "RIF: "+lh.RIF)
	w.SetFont("Helvetica", "B", 14)
	w.text(pageW-pdfMargin-50, 15, "FORMULARIO LISTÍN")
	w.SetFontSize(10)
	w.text(pageW-pdfMargin-30, 22, "BAJO GRANDE")

	y := 45.0
	w.fill(colorSecondary)
	w.Rect(0, y-5, pageW, 8, "F")
	y += 10

	w.textColor(colorDarkBlue)
	w.SetFont("Helvetica", "B", 16)
	w.centered(y, "CONTROL DE TRANSPORTE DE PERSONAL")
	y += 12

	// Period box.
	w.SetFillColor(240, 248, 255)
	w.draw(colorPrimary)
	w.SetLineWidth(1)
	w.Rect(pdfMargin, y-5, contentW, 20, "FD")
	w.textColor(colorPrimary)
	w.SetFont("Helvetica", "B", 12)
	w.centered(y+3, "PERÍODO: "+strings.ToUpper(r.Label))
	w.SetFont("Helvetica", "", 10)
	w.SetTextColor(100, 100, 100)
	w.centered(y+10, "FECHA DE EMISIÓN: "+r.GeneratedAt.Format("02/01/2006 15:04"))
	y += 25

	y = pdfTableHeader(w, y, contentW)
	for i, row := range r.Rows {
		if y > pageH-pdfTableBottom {
			w.AddPage()
			y = pdfTableHeader(w, pdfMargin, contentW)
		}
		pdfTableRow(w, y, contentW, i, row)
		y += pdfRowHeight
	}

	y += 20
	if y > pageH-pdfSignatureRoom {
		w.AddPage()
		y = pdfMargin + 20
	}
	pdfSignatures(w, y, lh, r.Contractor, r.Corporation)

	// Footer band on the last page.
	y = pageH - 20
	w.fill(colorDarkBlue)
	w.Rect(0, y-5, pageW, 25, "F")
	w.SetFont("Helvetica", "", 8)
	w.SetTextColor(255, 255, 255)
	w.text(pdfMargin, y+5, fmt.Sprintf("Documento oficial - %s - Generado: %s", lh.Company, r.GeneratedAt.Format("02/01/2006 15:04")))
	w.SetFontSize(6)
	w.SetTextColor(200, 200, 200)
	w.text(pageW-pdfMargin-50, y+12, fmt.Sprintf("Página %d de %d", w.PageNo(), w.PageCount()))

	return doc
}

// pdfTableHeader draws the column header band with its top edge at y-5 and
// returns the y of the first row.
func pdfTableHeader(w *pdfWriter, y, contentW float64) float64 {
	w.SetFont("Helvetica", "B", 8)
	w.fill(colorPrimary)
	w.Rect(pdfMargin, y-5, contentW, 12, "F")
	w.SetDrawColor(255, 255, 255)
	w.SetLineWidth(0.5)
	w.Rect(pdfMargin, y-5, contentW, 12, "D")

	w.SetTextColor(255, 255, 255)
	x := pdfMargin
	for i, h := range pdfHeaders {
		w.text(x+2, y+3, h)
		if i < len(pdfHeaders)-1 {
			w.Line(x+pdfColWidths[i], y-5, x+pdfColWidths[i], y+7)
		}
		x += pdfColWidths[i]
	}

	w.SetFont("Helvetica", "", 7)
	w.SetTextColor(50, 50, 50)
	return y + 12
}

func pdfTableRow(w *pdfWriter, y, contentW float64, i int, row domain.ReportRow) {
	if i%2 == 0 {
		w.SetFillColor(248, 252, 255)
	} else {
		w.SetFillColor(245, 255, 245)
	}
	w.Rect(pdfMargin, y-3, contentW, pdfRowHeight, "F")
	w.SetDrawColor(220, 220, 220)
	w.SetLineWidth(0.3)
	w.Rect(pdfMargin, y-3, contentW, pdfRowHeight, "D")

	cells := []string{
		row.StartTime.Format("02/01/06"),
		truncate(row.ConductorName, 18),
		row.ConductorCedula,
		row.Plate,
		truncate(row.Route, 22),
		truncate(row.PassengerName, 18),
		row.PassengerCedula,
		truncate(row.Department, 15),
	}
	w.SetDrawColor(200, 200, 200)
	x := pdfMargin
	for j, c := range cells {
		w.text(x+1, y+2, c)
		if j < len(cells)-1 {
			w.Line(x+pdfColWidths[j], y-3, x+pdfColWidths[j], y+7)
		}
		x += pdfColWidths[j]
	}
}

func pdfSignatures(w *pdfWriter, y float64, lh Letterhead, contractor, corporation *domain.Signature) {
	pageW, _ := w.GetPageSize()

	w.fill(colorSecondary)
	w.Rect(0, y-5, pageW, 5, "F")
	y += 10

	w.SetFont("Helvetica", "B", 14)
	w.textColor(colorDarkBlue)
	w.centered(y, "VERIFICACIÓN Y FIRMAS RESPONSABLES")
	y += 20

	leftX := pdfMargin + 10
	rightX := pageW/2 + 10
	w.SetLineWidth(1)
	w.SetFillColor(255, 248, 240)
	w.draw(colorAccent)
	w.Rect(leftX-5, y-5, 85, 60, "FD")
	w.SetFillColor(240, 248, 255)
	w.draw(colorPrimary)
	w.Rect(rightX-5, y-5, 85, 60, "FD")

	pdfSignatureBlock(w, leftX, y, "VERIFICADO POR CONTRATISTA", contractor, colorAccent)
	pdfSignatureBlock(w, rightX, y, "VERIFICADO POR "+corporationName(lh.Company), corporation, colorPrimary)
}

func pdfSignatureBlock(w *pdfWriter, x, y float64, title string, s *domain.Signature, c rgb) {
	w.SetFont("Helvetica", "B", 10)
	w.textColor(c)
	w.text(x, y, title)

	w.SetFont("Helvetica", "", 9)
	w.SetTextColor(80, 80, 80)
	y += 8
	for _, line := range signatureLines(s, "________________________________") {
		w.text(x, y, line)
		y += 6
	}

	y += 9
	w.draw(c)
	w.SetLineWidth(1)
	w.Line(x, y, x+70, y)
	w.SetFontSize(8)
	w.textColor(c)
	w.text(x+30, y+5, "FIRMA")
}

// corporationName drops the legal suffix from the company name:
// "CORPORACIÓN JF C.A." signs as "CORPORACIÓN JF".
func corporationName(company string) string {
	for _, suffix := range []string{" C.A.", " S.A.", " C.A", " S.A"} {
		if strings.HasSuffix(company, suffix) {
			return strings.TrimSuffix(company, suffix)
		}
	}
	return company
}
