package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

var pdfColumns = []struct {
	header string
	width  float64
	value  func(row Row) string
}{
	{"Timeslot", 60, func(row Row) string { return row.Timeslot }},
	{"Classroom", 45, func(row Row) string { return row.Classroom }},
	{"Code", 30, func(row Row) string { return row.CourseCode }},
	{"Course", 85, func(row Row) string { return row.Course }},
	{"Faculty", 57, func(row Row) string { return row.Faculty }},
}

// PDFRenderer renders the timetable into a landscape table, one band per timeslot
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (renderer *PDFRenderer) Render(rows []Row, title string) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, translate(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(220, 220, 220)
		for _, column := range pdfColumns {
			pdf.CellFormat(column.width, 8, column.header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	header()

	if len(rows) == 0 {
		pdf.CellFormat(0, 7, "No sessions scheduled", "1", 1, "C", false, 0, "")
	}

	// Shade alternate timeslots
	shaded, previous := false, ""
	for i, row := range rows {
		if i > 0 && row.Timeslot != previous {
			shaded = !shaded
		}
		previous = row.Timeslot

		pdf.SetFillColor(245, 245, 245)
		for _, column := range pdfColumns {
			pdf.CellFormat(column.width, 7, translate(column.value(row)), "1", 0, "", shaded, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
