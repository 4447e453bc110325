package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

type PDFRenderer struct {
	now func() time.Time
}

func NewPDFRenderer() PDFRenderer {
	return PDFRenderer{now: time.Now}
}

func (PDFRenderer) Format() string      { return "pdf" }
func (PDFRenderer) ContentType() string { return "application/pdf" }

func (r PDFRenderer) Render(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	if r.now != nil {
		pdf.SetCreationDate(r.now())
	}
	// core fonts are cp1252, translate from utf-8
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(doc.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(doc.Title), "", "L", false)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 5, tr("Generated "+doc.GeneratedAt), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Total: %d   Pinned: %d   Archived: %d   Active: %d",
		doc.Summary.Total, doc.Summary.Pinned, doc.Summary.Archived, doc.Summary.Active), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	for _, e := range doc.Entries {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 6, tr(e.Title), "", "L", false)

		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.MultiCell(0, 4, tr(fmt.Sprintf("%s | Task date: %s | Created: %s | Updated: %s",
			e.Status, e.TaskDate, e.CreatedAt, e.UpdatedAt)), "", "L", false)
		pdf.SetTextColor(0, 0, 0)

		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(e.Content), "", "L", false)
		pdf.Ln(5)
	}

	if pdf.Err() {
		return fmt.Errorf("build pdf: %w", pdf.Error())
	}

	return pdf.Output(w)
}
