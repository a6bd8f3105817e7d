package storage

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const ticketsSheet = "Tickets"

var ticketHeaders = []string{"Code", "Studio", "Studio ID", "Seats", "Customer", "Email", "Type", "Status", "Booked at", "Source"}

// ExportTickets writes tickets to an xlsx workbook at path.
func ExportTickets(path string, tickets []Ticket) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ticketsSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	header, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for col, title := range ticketHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(ticketsSheet, cell, title)
		_ = f.SetCellStyle(ticketsSheet, cell, cell, header)
	}

	for i, t := range tickets {
		row := []any{t.Code, t.StudioName, t.StudioID, t.Seats, t.UserName, t.UserEmail, t.BookingType, t.Status, t.BookedAt, t.Source}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ticketsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(ticketsSheet, "A", "A", 14)
	_ = f.SetColWidth(ticketsSheet, "B", "J", 18)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
