package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Ticket is the local ledger row for a booking this machine created or validated.
type Ticket struct {
	Code        string `json:"code"`
	StudioID    string `json:"studio_id"`
	StudioName  string `json:"studio_name"`
	Seats       string `json:"seats"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	BookingType string `json:"booking_type"`
	Status      string `json:"status"`
	BookedAt    string `json:"booked_at"`
	QRCode      string `json:"qr_code,omitempty"`
	Source      string `json:"source"`
}

type TicketFilter struct {
	Status   string
	StudioID string
	From     string
	To       string
}

func OpenTicketsDB() (*sql.DB, error) {
	path, err := TicketsPath()
	if err != nil {
		return nil, err
	}
	return OpenTicketsDBAt(path)
}

func OpenTicketsDBAt(path string) (*sql.DB, error) {
	if !strings.HasPrefix(path, ":memory:") {
		if err := ensureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := ensureTicketsSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func ensureTicketsSchema(db *sql.DB) error {
	createTable := `
CREATE TABLE IF NOT EXISTS tickets (
  code TEXT PRIMARY KEY,
  studio_id TEXT,
  studio_name TEXT,
  seats TEXT,
  user_name TEXT,
  user_email TEXT,
  booking_type TEXT,
  booked_at TEXT,
  source TEXT
);`

	if _, err := db.Exec(createTable); err != nil {
		return fmt.Errorf("create tickets table: %w", err)
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_tickets_booked_at ON tickets(booked_at);"); err != nil {
		return fmt.Errorf("create tickets index: %w", err)
	}

	if err := ensureTicketsColumns(db, []string{"status", "qr_code"}); err != nil {
		return err
	}

	return nil
}

func ensureTicketsColumns(db *sql.DB, columns []string) error {
	rows, err := db.Query("PRAGMA table_info(tickets);")
	if err != nil {
		return fmt.Errorf("inspect tickets table: %w", err)
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return fmt.Errorf("inspect tickets columns: %w", err)
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect tickets columns: %w", err)
	}

	for _, column := range columns {
		if _, ok := existing[column]; ok {
			continue
		}
		_, err := db.Exec(fmt.Sprintf("ALTER TABLE tickets ADD COLUMN %s TEXT;", column))
		if err != nil {
			return fmt.Errorf("add tickets column %s: %w", column, err)
		}
	}
	return nil
}

// AddTicket inserts a ticket unless its code is already recorded.
func AddTicket(db *sql.DB, ticket Ticket) (bool, error) {
	query := `
INSERT OR IGNORE INTO tickets (
  code, studio_id, studio_name, seats, user_name, user_email, booking_type, status, booked_at, qr_code, source
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	res, err := db.Exec(query, ticketArgs(ticket)...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpsertTicket records a ticket seen at validation. An existing row keeps its
// source, booking time and QR code; everything else takes the new values.
func UpsertTicket(db *sql.DB, ticket Ticket) error {
	query := `
INSERT INTO tickets (
  code, studio_id, studio_name, seats, user_name, user_email, booking_type, status, booked_at, qr_code, source
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(code) DO UPDATE SET
  studio_id = excluded.studio_id,
  studio_name = excluded.studio_name,
  seats = excluded.seats,
  user_name = excluded.user_name,
  user_email = excluded.user_email,
  booking_type = excluded.booking_type,
  status = excluded.status,
  qr_code = COALESCE(NULLIF(excluded.qr_code, ''), tickets.qr_code);`

	_, err := db.Exec(query, ticketArgs(ticket)...)
	return err
}

func ticketArgs(ticket Ticket) []any {
	return []any{
		ticket.Code,
		ticket.StudioID,
		ticket.StudioName,
		ticket.Seats,
		ticket.UserName,
		ticket.UserEmail,
		ticket.BookingType,
		ticket.Status,
		ticket.BookedAt,
		ticket.QRCode,
		ticket.Source,
	}
}

func RemoveTicket(db *sql.DB, code string) (bool, error) {
	res, err := db.Exec("DELETE FROM tickets WHERE code = ?", code)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func GetTicket(db *sql.DB, code string) (Ticket, bool, error) {
	tickets, err := queryTickets(db, " WHERE code = ?", []any{code})
	if err != nil {
		return Ticket{}, false, err
	}
	if len(tickets) == 0 {
		return Ticket{}, false, nil
	}
	return tickets[0], true, nil
}

// ListTickets orders by booking time. From and To compare against the date
// part of booked_at.
func ListTickets(db *sql.DB, filter TicketFilter) ([]Ticket, error) {
	conds := []string{}
	args := []any{}

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.StudioID != "" {
		conds = append(conds, "studio_id = ?")
		args = append(args, filter.StudioID)
	}
	if filter.From != "" {
		conds = append(conds, "substr(booked_at, 1, 10) >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conds = append(conds, "substr(booked_at, 1, 10) <= ?")
		args = append(args, filter.To)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	return queryTickets(db, where, args)
}

func queryTickets(db *sql.DB, where string, args []any) ([]Ticket, error) {
	query := `
SELECT code, studio_id, studio_name, seats, user_name, user_email, booking_type, status, booked_at, qr_code, source
FROM tickets` + where + " ORDER BY booked_at, code"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []Ticket{}
	for rows.Next() {
		var ticket Ticket
		var status sql.NullString
		var qr sql.NullString
		if err := rows.Scan(
			&ticket.Code,
			&ticket.StudioID,
			&ticket.StudioName,
			&ticket.Seats,
			&ticket.UserName,
			&ticket.UserEmail,
			&ticket.BookingType,
			&status,
			&ticket.BookedAt,
			&qr,
			&ticket.Source,
		); err != nil {
			return nil, err
		}
		if status.Valid {
			ticket.Status = status.String
		}
		if qr.Valid {
			ticket.QRCode = qr.String
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}
