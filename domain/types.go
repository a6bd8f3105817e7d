package domain

import "time"

type AuthType string

const (
	AuthEmail  AuthType = "email"
	AuthGoogle AuthType = "google"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AuthType  AuthType  `json:"authType"`
	CreatedAt time.Time `json:"createdAt"`
}

type Studio struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	TotalSeats  int      `json:"totalSeats"`
	BookedSeats []string `json:"bookedSeats"`
}

type BookingType string

const (
	Online  BookingType = "online"
	Offline BookingType = "offline"
)

// Status is owned by the backend. The client copies it and never derives it.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusUsed      Status = "used"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusUsed || s == StatusCancelled
}

type Booking struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	UserName    string      `json:"userName"`
	UserEmail   string      `json:"userEmail"`
	StudioID    string      `json:"studioId"`
	StudioName  string      `json:"studioName"`
	Seats       []string    `json:"seats"`
	QRCode      string      `json:"qrCode"`
	BookingType BookingType `json:"bookingType"`
	Timestamp   time.Time   `json:"timestamp"`
	Status      Status      `json:"status"`
}
