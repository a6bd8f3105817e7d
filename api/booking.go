package api

import (
	"context"
	"net/http"
	"strings"
)

func (c *Client) CreateOnlineBooking(ctx context.Context, payload OnlineBookingRequest) (BookingResponse, error) {
	var resp BookingResponse
	if err := c.Do(ctx, http.MethodPost, "/api/booking/online", payload, &resp); err != nil {
		return BookingResponse{}, err
	}
	return resp, nil
}

func (c *Client) CreateOfflineBooking(ctx context.Context, payload OfflineBookingRequest) (BookingResponse, error) {
	var resp BookingResponse
	if err := c.Do(ctx, http.MethodPost, "/api/booking/offline", payload, &resp); err != nil {
		return BookingResponse{}, err
	}
	return resp, nil
}

func (c *Client) MyBookings(ctx context.Context) ([]BookingRecord, error) {
	var bookings []BookingRecord
	if err := c.Do(ctx, http.MethodGet, "/api/booking/my-bookings", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ValidateBooking submits a booking code; codes travel lower-cased.
func (c *Client) ValidateBooking(ctx context.Context, code string) (ValidateResponse, error) {
	payload := map[string]string{"bookingCode": strings.ToLower(code)}
	var resp ValidateResponse
	if err := c.Do(ctx, http.MethodPost, "/api/booking/validate", payload, &resp); err != nil {
		return ValidateResponse{}, err
	}
	return resp, nil
}
