package domain

import (
	"time"

	"cinema-cli/api"
	"cinema-cli/seatmap"
)

const defaultTotalSeats = 20

func ToUser(raw api.UserRecord) User {
	authType := AuthEmail
	if raw.Role == string(AuthGoogle) {
		authType = AuthGoogle
	}
	created := raw.CreatedAt
	if created == "" {
		created = raw.CreatedAtAlt
	}
	return User{
		ID:        raw.ID.String(),
		Email:     raw.Email,
		Name:      raw.Name,
		AuthType:  authType,
		CreatedAt: parseTime(created),
	}
}

// ToStudio converts a studio record. BookedSeats is derived from seats, the
// unavailable ones, and is empty when no seat list was fetched.
func ToStudio(raw api.StudioRecord, seats []api.SeatRecord) Studio {
	booked := []string{}
	for _, seat := range seats {
		if !seat.IsAvailable {
			booked = append(booked, seat.SeatNumber)
		}
	}
	total := raw.TotalSeats
	if total == 0 {
		total = defaultTotalSeats
	}
	return Studio{
		ID:          raw.ID.String(),
		Name:        raw.Name,
		TotalSeats:  total,
		BookedSeats: booked,
	}
}

// ToBooking converts a booking record. Seat ids are reverse-mapped through mapping;
// ids it does not know (or all of them, when mapping is nil) become placeholders.
// cachedName wins over the record's own studio_name.
func ToBooking(raw api.BookingRecord, mapping seatmap.Mapping, cachedName string) Booking {
	id := raw.BookingCode
	if id == "" {
		id = raw.ID.String()
	}
	studioName := cachedName
	if studioName == "" {
		studioName = raw.StudioName
	}
	bookingType := BookingType(raw.BookingType)
	if bookingType == "" {
		bookingType = Online
	}
	status := Status(raw.Status)
	if status == "" {
		status = StatusActive
	}
	ts := raw.CreatedAt
	if ts == "" {
		ts = raw.Timestamp
	}
	return Booking{
		ID:          id,
		UserID:      raw.UserID.String(),
		UserName:    raw.UserName,
		UserEmail:   raw.UserEmail,
		StudioID:    raw.StudioID.String(),
		StudioName:  studioName,
		Seats:       mapping.Numbers(raw.SeatIDs),
		QRCode:      raw.QRCode,
		BookingType: bookingType,
		Timestamp:   parseTime(ts),
		Status:      status,
	}
}

func ToSeats(records []api.SeatRecord) []seatmap.Seat {
	seats := make([]seatmap.Seat, 0, len(records))
	for _, r := range records {
		seats = append(seats, seatmap.Seat{Number: r.SeatNumber, ID: r.ID, Available: r.IsAvailable})
	}
	return seats
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.000Z07:00",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed
		}
	}
	return time.Time{}
}
