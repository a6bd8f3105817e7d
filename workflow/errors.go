package workflow

import (
	"errors"

	"cinema-cli/api"
)

type Kind string

const (
	KindAuthRequired Kind = "auth_required"
	KindValidation   Kind = "validation"
	KindBackend      Kind = "backend"
	KindNotFound     Kind = "not_found"
	KindUnsupported  Kind = "unsupported"
	// KindStorage reports a failure of the local session medium.
	KindStorage Kind = "storage"
)

// Error is the only error type returned by Service operations.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind, so errors.Is(err, ErrAuthRequired) holds for
// any authentication error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrAuthRequired = &Error{Kind: KindAuthRequired}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrBackend      = &Error{Kind: KindBackend}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrUnsupported  = &Error{Kind: KindUnsupported}
)

const (
	msgAuthRequired   = "Authentication required"
	msgInvalidSeats   = "Some seats are invalid"
	msgInvalidStudio  = "Invalid studio id"
	msgRegister       = "Registration failed"
	msgLogin          = "Login failed"
	msgGoogleLogin    = "Google login failed"
	msgVerify         = "Token verification failed"
	msgInvalidToken   = "Invalid token"
	msgStudios        = "Failed to fetch studios"
	msgStudioNotFound = "Studio not found"
	msgSeats          = "Failed to fetch seats"
	msgCreateBooking  = "Failed to create booking"
	msgBookings       = "Failed to fetch bookings"
	msgBookingMissing = "Booking not found"
	msgValidate       = "Booking not found or already used"
	msgCancel         = "Cancel booking not yet implemented"
)

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// backendError keeps the backend's message verbatim and only falls back when
// the failure carries no text at all.
func backendError(err error, fallback string) *Error {
	message := ""
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		message = reqErr.Message
	} else if err != nil {
		message = err.Error()
	}
	if message == "" {
		message = fallback
	}
	return &Error{Kind: KindBackend, Message: message, Err: err}
}

func storageError(err error) *Error {
	return &Error{Kind: KindStorage, Message: err.Error(), Err: err}
}

// Result is the envelope printed for every operation: success with data, or
// failure with a message.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
}

func Wrap[T any](v T, err error) Result[T] {
	if err == nil {
		return Result[T]{Success: true, Data: v}
	}
	res := Result[T]{Error: err.Error(), Kind: KindBackend}
	var wfErr *Error
	if errors.As(err, &wfErr) {
		res.Kind = wfErr.Kind
	}
	return res
}
