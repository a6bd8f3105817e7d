package ticket

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"cinema-cli/domain"

	"github.com/jung-kurt/gofpdf"
)

// PDF renders a single-page A4 e-ticket.
func PDF(b domain.Booking) ([]byte, error) {
	qr, err := Image(b)
	if err != nil {
		return nil, fmt.Errorf("ticket qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 15, "CINEMA E-TICKET")
	pdf.Ln(18)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 62, "F")

	pdf.SetXY(20, yStart+7)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "BOOKING")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range summaryLines(b) {
		pdf.SetX(20)
		pdf.Cell(0, 8, line)
		pdf.Ln(6)
	}

	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 145, yStart+5, 45, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetY(yStart + 70)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, "Show this code at the entrance. Each ticket can be used once.")

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, 285, 195, 285)
	pdf.SetY(288)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 8, "Booking code "+strings.ToUpper(b.ID), "", 0, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summaryLines(b domain.Booking) []string {
	studio := b.StudioName
	if studio == "" {
		studio = "Studio " + b.StudioID
	}
	lines := []string{
		fmt.Sprintf("Code: %s", strings.ToUpper(b.ID)),
		fmt.Sprintf("Studio: %s", studio),
		fmt.Sprintf("Seats: %s", strings.Join(b.Seats, ", ")),
		fmt.Sprintf("Status: %s", b.Status),
	}
	if b.UserName != "" {
		lines = append(lines, fmt.Sprintf("Name: %s", b.UserName))
	}
	if !b.Timestamp.IsZero() {
		lines = append(lines, fmt.Sprintf("Booked: %s", b.Timestamp.Local().Format(time.DateTime)))
	}
	return lines
}
