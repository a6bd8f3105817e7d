package cmd

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cinema-cli/domain"
	"cinema-cli/seatmap"
	"cinema-cli/storage"
	"cinema-cli/workflow"

	"golang.org/x/term"
)

func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// requestContext bounds one command by the API timeout, with room for warm-up calls.
func requestContext() (context.Context, context.CancelFunc) {
	return commandContext(3 * cfg.API.Timeout)
}

func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// emit prints the result of a workflow call: the success/error envelope with
// --json, otherwise render(v) or the error.
func emit[T any](v T, err error, render func(T) error) error {
	if outputJSON {
		if werr := writeJSON(workflow.Wrap(v, err)); werr != nil {
			return werr
		}
		if err != nil {
			return errReported
		}
		return nil
	}
	if err != nil {
		return err
	}
	return render(v)
}

func parseDateInput(input string) (time.Time, error) {
	if input == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	now := time.Now()
	switch strings.ToLower(input) {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	case "yesterday":
		t := now.AddDate(0, 0, -1)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
	}
	parsed, err := time.Parse("2006-01-02", input)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", input)
	}
	return parsed, nil
}

func parseSeats(input string) []string {
	seats := []string{}
	for _, part := range strings.Split(input, ",") {
		seat := strings.ToUpper(strings.TrimSpace(part))
		if seat != "" {
			seats = append(seats, seat)
		}
	}
	return seats
}

func promptLine(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func promptPassword(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytes)), nil
}

func readAuthFile(path string) (string, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var email string
	var password string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "[username]", "[email]":
			if scanner.Scan() {
				email = strings.TrimSpace(scanner.Text())
			}
		case "[password]":
			if scanner.Scan() {
				password = strings.TrimSpace(scanner.Text())
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}
	return email, password, nil
}

func ticketFromBooking(b domain.Booking, source string) storage.Ticket {
	bookedAt := ""
	if !b.Timestamp.IsZero() {
		bookedAt = b.Timestamp.UTC().Format(time.RFC3339)
	} else {
		bookedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return storage.Ticket{
		Code:        strings.ToLower(b.ID),
		StudioID:    b.StudioID,
		StudioName:  b.StudioName,
		Seats:       strings.Join(b.Seats, ","),
		UserName:    b.UserName,
		UserEmail:   b.UserEmail,
		BookingType: string(b.BookingType),
		Status:      string(b.Status),
		BookedAt:    bookedAt,
		QRCode:      b.QRCode,
		Source:      source,
	}
}

const sourceValidation = "validation"

// recordTicket writes the booking into the local ledger. The ledger is a
// convenience, so a failure is logged and never fails the command.
func recordTicket(b domain.Booking, source string) {
	db, err := storage.OpenTicketsDB()
	if err != nil {
		logger.Warn().Err(err).Msg("open ticket ledger")
		return
	}
	defer db.Close()
	if err := writeTicket(db, ticketFromBooking(b, source)); err != nil {
		logger.Warn().Err(err).Str("booking", b.ID).Msg("record ticket")
	}
}

// writeTicket inserts a sale once and never overwrites it; a validation
// updates the row in place.
func writeTicket(db *sql.DB, t storage.Ticket) error {
	if t.Source == sourceValidation {
		return storage.UpsertTicket(db, t)
	}
	added, err := storage.AddTicket(db, t)
	if err != nil {
		return err
	}
	if !added {
		logger.Debug().Str("booking", t.Code).Msg("ticket already recorded")
	}
	return nil
}

func printDegraded(degraded []workflow.Degraded) {
	for _, d := range degraded {
		if d.StudioID != "" {
			fmt.Fprintf(os.Stderr, "warning: %s for studio %s unavailable: %s\n", d.Stage, d.StudioID, d.Reason)
			continue
		}
		fmt.Fprintf(os.Stderr, "warning: %s unavailable: %s\n", d.Stage, d.Reason)
	}
}

// renderGrid draws the seat map: "." free, "x" taken, blank where no seat exists.
func renderGrid(w io.Writer, seats []seatmap.Seat) {
	grid := seatmap.Layout(seats)
	if len(grid.Rows) == 0 {
		fmt.Fprintln(w, "No seats.")
		return
	}
	fmt.Fprint(w, "    ")
	for _, col := range grid.Cols {
		fmt.Fprintf(w, "%3d", col)
	}
	fmt.Fprintln(w)
	for _, row := range grid.Rows {
		fmt.Fprintf(w, "%-4s", row)
		for _, col := range grid.Cols {
			seat, ok := grid.At(row, col)
			switch {
			case !ok:
				fmt.Fprint(w, "   ")
			case seat.Available:
				fmt.Fprint(w, "  .")
			default:
				fmt.Fprint(w, "  x")
			}
		}
		fmt.Fprintln(w)
	}
}

func statusLabel(status domain.Status) string {
	if status.Terminal() {
		return strings.ToUpper(string(status))
	}
	return string(status)
}
