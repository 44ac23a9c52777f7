// Package export writes complaint lists as spreadsheets for the admin panel.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"civic-backend/internal/models"
)

const (
	SheetComplaints = "Complaints"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout      = "2006-01-02 15:04:05"
)

var complaintHeaders = []string{
	"Complaint ID", "Phone Number", "Status", "Priority", "Category",
	"Description", "Recording URL", "Assigned To", "Notes", "Created At", "Updated At",
}

var complaintWidths = []float64{18, 16, 12, 10, 14, 40, 50, 26, 50, 20, 20}

// Complaints writes one row per complaint, in the given order, below a frozen
// header row.
func Complaints(w io.Writer, items []models.Complaint) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetComplaints); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := f.SetSheetRow(SheetComplaints, "A1", &complaintHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(complaintHeaders), 1)
	if err := f.SetCellStyle(SheetComplaints, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for i, width := range complaintWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetComplaints, col, col, width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	for i, c := range items {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			c.ComplaintID,
			c.PhoneNumber,
			string(c.Status),
			string(c.Priority),
			string(c.Category),
			c.Description,
			c.RecordingURL,
			c.AssignedTo,
			strings.Join(c.Notes, "\n"),
			c.CreatedAt.UTC().Format(dateLayout),
			c.UpdatedAt.UTC().Format(dateLayout),
		}
		if err := f.SetSheetRow(SheetComplaints, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetComplaints, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
