package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	notesSheet   = "Notes"
	summarySheet = "Summary"
)

var xlsxHeaders = []string{"Title", "Content", "Task date", "Status", "Created", "Updated"}

type XLSXRenderer struct{}

func (XLSXRenderer) Format() string { return "xlsx" }
func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXRenderer) Render(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", notesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for i, h := range xlsxHeaders {
		if err := setCell(f, notesSheet, i+1, 1, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(notesSheet, "A1", "F1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, e := range doc.Entries {
		row := i + 2
		for col, v := range []string{e.Title, e.Content, e.TaskDate, e.Status, e.CreatedAt, e.UpdatedAt} {
			if err := setCell(f, notesSheet, col+1, row, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(notesSheet, "A", "A", 30); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(notesSheet, "B", "B", 60); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(notesSheet, "C", "F", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	summaryRows := [][2]any{
		{"Document", doc.Title},
		{"Generated", doc.GeneratedAt},
		{"Total", doc.Summary.Total},
		{"Pinned", doc.Summary.Pinned},
		{"Archived", doc.Summary.Archived},
		{"Active", doc.Summary.Active},
	}
	for i, r := range summaryRows {
		if err := setCell(f, summarySheet, 1, i+1, r[0]); err != nil {
			return err
		}
		if err := setCell(f, summarySheet, 2, i+1, r[1]); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summaryRows)), bold); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}

	return f.Write(w)
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
	}
	return nil
}
