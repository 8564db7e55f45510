// Package document renders a monthly report as the filled-in working-time
// sheet. It writes two artifacts: the overlaid SVG (so the numbers can still
// be touched up by hand) and a fixed-layout PDF drawn at the same coordinates.
package document

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/azdkit/hhiwi/internal/model"
	"github.com/azdkit/hhiwi/internal/timecalc"
)

//go:embed template.svg
var templateSVG string

// Sheet layout in template units (matches template.svg's 744x1052 viewBox).
const (
	headSize = 15
	rowSize  = 12

	xMonth     = 600.0
	xYear      = 690.0
	xHeadValue = 390.0
	xRate      = 650.0
	yMonthYear = 142.0
	yName      = 172.0
	yNumber    = 204.0
	yInstitute = 236.0
	yContract  = 270.0

	xDescription = 72.0
	xDate        = 275.0
	xBegin       = 375.0
	xEnd         = 475.0
	xWorkingTime = 680.0
	yFirstRow    = 363.0
	rowDelta     = 19.4

	yFooter = 848.0
)

// cell is one positioned text overlay.
type cell struct {
	x, y float64
	size int
	text string
}

// cells lays the report data out on the sheet grid shared by the SVG and the
// PDF renderer.
func cells(r model.Report) []cell {
	out := []cell{
		{xMonth, yMonthYear, headSize, timecalc.MonthName(r.Month)},
		{xYear, yMonthYear, headSize, fmt.Sprintf("%d", r.Year)},
		{xHeadValue, yName, headSize, r.Name},
		{xHeadValue, yNumber, headSize, r.PersonnelNumber},
		{xHeadValue, yInstitute, headSize, r.Institute},
		{xHeadValue, yContract, headSize, fmt.Sprintf("%g", r.WorkingHours)},
		{xRate, yContract, headSize, fmt.Sprintf("%.2f", r.HourlyRate)},
	}

	y := yFirstRow
	for _, ts := range r.Spans {
		out = append(out,
			cell{xDescription, y, rowSize, ts.Description()},
			cell{xDate, y, rowSize, ts.Start.Format("02.01.2006")},
			cell{xBegin, y, rowSize, ts.Start.Format("15:04")},
			cell{xEnd, y, rowSize, ts.End.Format("15:04")},
			cell{xWorkingTime, y, rowSize, timecalc.FormatHoursMinutes(ts.Duration())},
		)
		y += rowDelta
	}

	out = append(out,
		cell{xWorkingTime, yFooter, rowSize, timecalc.FormatHoursMinutes(time.Duration(r.Leave * float64(time.Hour)))},
		cell{xWorkingTime, yFooter + rowDelta, rowSize, timecalc.FormatHoursMinutes(r.TotalDuration())},
		cell{xWorkingTime, yFooter + 2*rowDelta, rowSize, timecalc.FormatHoursMinutes(secondsToDuration(r.CarryOverIn))},
		cell{xWorkingTime, yFooter + 3*rowDelta, rowSize, timecalc.FormatHoursMinutes(secondsToDuration(r.CarryOver))},
	)
	return out
}

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// FillSVG overlays the report data onto the embedded template and returns the
// resulting SVG document.
func FillSVG(r model.Report) ([]byte, error) {
	idx := strings.LastIndex(templateSVG, "</svg>")
	if idx < 0 {
		return nil, fmt.Errorf("template has no closing svg element")
	}

	var buf bytes.Buffer
	buf.WriteString(templateSVG[:idx])
	for _, c := range cells(r) {
		fmt.Fprintf(&buf,
			"  <text x=\"%g\" y=\"%g\" font-size=\"%d\" font-family=\"Helvetica\">%s</text>\n",
			c.x, c.y, c.size, xmlEscaper.Replace(c.text))
	}
	buf.WriteString(templateSVG[idx:])
	return buf.Bytes(), nil
}

// mmPerUnit converts template coordinates to A4 millimetres.
const mmPerUnit = 210.0 / 744.0

// RenderPDF draws the filled sheet as an A4 PDF at the same layout as the
// SVG template and returns the document bytes.
func RenderPDF(r model.Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)

	text := func(x, y float64, size float64, style, s string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.Text(x*mmPerUnit, y*mmPerUnit, tr(s))
	}
	line := func(x1, y1, x2, y2, width float64) {
		pdf.SetLineWidth(width * mmPerUnit)
		pdf.Line(x1*mmPerUnit, y1*mmPerUnit, x2*mmPerUnit, y2*mmPerUnit)
	}

	// Static template skeleton.
	text(72, 100, 16, "B", "Arbeitszeitdokumentation")
	text(72, yMonthYear, 11, "", "Monat / Jahr:")
	text(72, yName, 11, "", "Name, Vorname:")
	text(72, yNumber, 11, "", "Personalnummer:")
	text(72, yInstitute, 11, "", "Institut / Einrichtung:")
	text(72, yContract, 11, "", "Monatsarbeitszeit (Std.):")
	text(580, yContract, 11, "", "Satz:")

	line(64, 310, 730, 310, 1.5)
	line(64, 838, 730, 838, 1.5)
	line(64, 310, 64, 838, 1.5)
	line(730, 310, 730, 838, 1.5)
	line(64, 340, 730, 340, 1.5)
	for _, x := range []float64{265, 365, 465, 565} {
		line(x, 310, x, 838, 1)
	}
	text(72, 331, 9, "B", "Tätigkeit (Stichworte)")
	text(xDate, 331, 9, "B", "Datum")
	text(xBegin, 331, 9, "B", "Beginn")
	text(xEnd, 331, 9, "B", "Ende")
	text(575, 331, 9, "B", "Arbeitszeit")

	text(72, yFooter, 9, "", "Urlaub (Std.)")
	text(72, yFooter+rowDelta, 9, "", "Summe")
	text(72, yFooter+2*rowDelta, 9, "", "Übertrag vom Vormonat")
	text(72, yFooter+3*rowDelta, 9, "", "Übertrag in den Folgemonat")

	line(72, 990, 320, 990, 1)
	text(72, 1006, 8, "", "Datum, Unterschrift Beschäftigte/r")
	line(440, 990, 690, 990, 1)
	text(440, 1006, 8, "", "Datum, Unterschrift Vorgesetzte/r")

	// Report data.
	for _, c := range cells(r) {
		size := 9.0
		if c.size == headSize {
			size = 11.0
		}
		text(c.x, c.y, size, "", c.text)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders both artifacts into dir as azd_<month>_<year>.svg and .pdf,
// returning the two paths.
func Write(r model.Report, dir string) (svgPath, pdfPath string, err error) {
	svg, err := FillSVG(r)
	if err != nil {
		return "", "", err
	}
	svgPath = filepath.Join(dir, fmt.Sprintf("azd_%d_%d.svg", r.Month, r.Year))
	if err := os.WriteFile(svgPath, svg, 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", svgPath, err)
	}

	pdfBytes, err := RenderPDF(r)
	if err != nil {
		return "", "", err
	}
	pdfPath = filepath.Join(dir, fmt.Sprintf("azd_%d_%d.pdf", r.Month, r.Year))
	if err := os.WriteFile(pdfPath, pdfBytes, 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", pdfPath, err)
	}
	return svgPath, pdfPath, nil
}
