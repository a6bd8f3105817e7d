package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestConfigDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DirEnv, dir)

	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	path, err := SessionPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "session.json"), path)

	path, err = TicketsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tickets.db"), path)
}

func TestSessionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	f := NewSessionFile(path)

	_, ok, err := f.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.Set("token", "abc"))
	require.NoError(t, f.Set("user", `{"id":"1"}`))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened := NewSessionFile(path)
	v, ok, err := reopened.Get("token")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, reopened.Delete("token", "user"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, reopened.Delete("token"))
}

func TestSessionFilePartialDelete(t *testing.T) {
	f := NewSessionFile(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, f.Set("a", "1"))
	require.NoError(t, f.Set("b", "2"))
	require.NoError(t, f.Delete("a"))

	_, ok, err := f.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
	v, ok, err := f.Get("b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestSessionFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	_, _, err := NewSessionFile(path).Get("token")
	assert.Error(t, err)
}

func openTestDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "tickets.db")
}

func TestTicketsLedger(t *testing.T) {
	db, err := OpenTicketsDBAt(openTestDB(t))
	require.NoError(t, err)
	defer db.Close()

	first := Ticket{Code: "abc123", StudioID: "1", StudioName: "Studio 1", Seats: "A1,A2", BookingType: "online", Status: "active", BookedAt: "2025-04-01T19:00:00Z", Source: "online"}
	second := Ticket{Code: "def456", StudioID: "2", StudioName: "Studio 2", Seats: "B1", BookingType: "offline", Status: "active", BookedAt: "2025-04-03T10:00:00Z", Source: "cashier", UserName: "Bob"}

	added, err := AddTicket(db, first)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = AddTicket(db, first)
	require.NoError(t, err)
	assert.False(t, added)
	_, err = AddTicket(db, second)
	require.NoError(t, err)

	all, err := ListTickets(db, TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "abc123", all[0].Code)

	byStudio, err := ListTickets(db, TicketFilter{StudioID: "2"})
	require.NoError(t, err)
	require.Len(t, byStudio, 1)
	assert.Equal(t, "Bob", byStudio[0].UserName)

	ranged, err := ListTickets(db, TicketFilter{From: "2025-04-02", To: "2025-04-30"})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "def456", ranged[0].Code)

	first.Status = "used"
	first.QRCode = ""
	require.NoError(t, UpsertTicket(db, first))
	got, ok, err := GetTicket(db, "abc123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "used", got.Status)

	used, err := ListTickets(db, TicketFilter{Status: "used"})
	require.NoError(t, err)
	assert.Len(t, used, 1)

	removed, err := RemoveTicket(db, "abc123")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = RemoveTicket(db, "abc123")
	require.NoError(t, err)
	assert.False(t, removed)

	_, ok, err = GetTicket(db, "abc123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertKeepsQRCode(t *testing.T) {
	db, err := OpenTicketsDBAt(openTestDB(t))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, UpsertTicket(db, Ticket{Code: "c1", QRCode: "cXI=", Status: "active"}))
	require.NoError(t, UpsertTicket(db, Ticket{Code: "c1", Status: "used"}))

	got, ok, err := GetTicket(db, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cXI=", got.QRCode)
	assert.Equal(t, "used", got.Status)
}

func TestUpsertKeepsOrigin(t *testing.T) {
	db, err := OpenTicketsDBAt(openTestDB(t))
	require.NoError(t, err)
	defer db.Close()

	sold := Ticket{Code: "k1", StudioID: "1", Status: "active", BookedAt: "2025-04-01T19:00:00Z", Source: "cashier"}
	added, err := AddTicket(db, sold)
	require.NoError(t, err)
	require.True(t, added)

	require.NoError(t, UpsertTicket(db, Ticket{Code: "k1", StudioID: "1", Status: "used", BookedAt: "2025-04-02T08:00:00Z", Source: "validation"}))
	got, ok, err := GetTicket(db, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "used", got.Status)
	assert.Equal(t, "cashier", got.Source)
	assert.Equal(t, "2025-04-01T19:00:00Z", got.BookedAt)

	require.NoError(t, UpsertTicket(db, Ticket{Code: "k2", Status: "used", BookedAt: "2025-04-02T08:00:00Z", Source: "validation"}))
	got, ok, err = GetTicket(db, "k2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "validation", got.Source)
}

func TestTicketsSchemaMigratesColumns(t *testing.T) {
	path := openTestDB(t)
	db, err := OpenTicketsDBAt(path)
	require.NoError(t, err)
	_, err = db.Exec("DROP TABLE tickets")
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE tickets (code TEXT PRIMARY KEY, studio_id TEXT, studio_name TEXT, seats TEXT,
		user_name TEXT, user_email TEXT, booking_type TEXT, booked_at TEXT, source TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenTicketsDBAt(path)
	require.NoError(t, err)
	defer db.Close()
	_, err = AddTicket(db, Ticket{Code: "x", Status: "active", QRCode: "q"})
	require.NoError(t, err)
}

func TestExportTickets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.xlsx")
	tickets := []Ticket{
		{Code: "abc123", StudioName: "Studio 1", Seats: "A1,A2", Status: "active"},
		{Code: "def456", StudioName: "Studio 2", Seats: "B1", Status: "used"},
	}
	require.NoError(t, ExportTickets(path, tickets))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Tickets")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Code", rows[0][0])
	assert.Equal(t, "abc123", rows[1][0])
	assert.Equal(t, "A1,A2", rows[1][3])
	assert.Equal(t, "used", rows[2][7])
}

func TestUseDirWins(t *testing.T) {
	t.Setenv(DirEnv, t.TempDir())
	override := t.TempDir()
	UseDir(override)
	t.Cleanup(func() { UseDir("") })

	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, override, got)
}
