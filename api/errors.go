package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrRequestFailed matches every error returned by the client.
var ErrRequestFailed = errors.New("request failed")

const fallbackMessage = "An error occurred"

// RequestError is the uniform failure of a backend call. Message is the backend's
// own error text when it sent one, otherwise the HTTP status text.
type RequestError struct {
	Message string
	cause   error
}

func newRequestError(message string, cause error) *RequestError {
	if strings.TrimSpace(message) == "" {
		message = fallbackMessage
	}
	return &RequestError{Message: message, cause: cause}
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrRequestFailed}
	}
	return []error{ErrRequestFailed, e.cause}
}

func errorMessage(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		if text := http.StatusText(status); text != "" {
			return text
		}
		return fallbackMessage
	}
	if payload.Error != "" {
		return payload.Error
	}
	if payload.Message != "" {
		return payload.Message
	}
	return fallbackMessage
}
