package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexID accepts both JSON numbers and strings and keeps the textual form.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string {
	return string(f)
}

// SeatIDs decodes a list of seat ids that may arrive as numbers or numeric strings.
type SeatIDs []int64

func (s *SeatIDs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// anything that is not an array carries no seats
		*s = SeatIDs{}
		return nil
	}
	ids := make(SeatIDs, 0, len(raw))
	for _, item := range raw {
		var id FlexID
		if err := id.UnmarshalJSON(item); err != nil {
			return fmt.Errorf("seat_ids: %w", err)
		}
		n, err := strconv.ParseFloat(string(id), 64)
		if err != nil {
			return fmt.Errorf("seat_ids: %q is not numeric", string(id))
		}
		ids = append(ids, int64(n))
	}
	*s = ids
	return nil
}

type UserRecord struct {
	ID           FlexID `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	CreatedAt    string `json:"created_at"`
	CreatedAtAlt string `json:"createdAt"`
}

type StudioRecord struct {
	ID         FlexID `json:"id"`
	Name       string `json:"name"`
	TotalSeats int    `json:"total_seats"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type SeatRecord struct {
	SeatNumber  string `json:"seat_number"`
	ID          int64  `json:"id"`
	IsAvailable bool   `json:"is_available"`
}

type BookingRecord struct {
	ID          FlexID  `json:"id"`
	BookingCode string  `json:"booking_code"`
	UserID      FlexID  `json:"user_id"`
	UserName    string  `json:"user_name"`
	UserEmail   string  `json:"user_email"`
	StudioID    FlexID  `json:"studio_id"`
	StudioName  string  `json:"studio_name"`
	SeatIDs     SeatIDs `json:"seat_ids"`
	QRCode      string  `json:"qr_code"`
	BookingType string  `json:"booking_type"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	Timestamp   string  `json:"timestamp"`
}

type AuthResponse struct {
	User  UserRecord `json:"user"`
	Token string     `json:"token"`
}

type VerifyResponse struct {
	Valid bool        `json:"valid"`
	User  *UserRecord `json:"user"`
}

type BookingResponse struct {
	Booking BookingRecord `json:"booking"`
	QRCode  string        `json:"qrCode"`
}

type ValidateResponse struct {
	Booking BookingRecord `json:"booking"`
	Message string        `json:"message"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OnlineBookingRequest struct {
	StudioID int64   `json:"studioId"`
	SeatIDs  []int64 `json:"seatIds"`
}

type OfflineBookingRequest struct {
	StudioID      int64   `json:"studioId"`
	SeatIDs       []int64 `json:"seatIds"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
}
