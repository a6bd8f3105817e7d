package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) Studios(ctx context.Context) ([]StudioRecord, error) {
	var studios []StudioRecord
	if err := c.Do(ctx, http.MethodGet, "/api/cinema/studios", nil, &studios); err != nil {
		return nil, err
	}
	return studios, nil
}

func (c *Client) Seats(ctx context.Context, studioID string) ([]SeatRecord, error) {
	path := "/api/cinema/studios/" + url.PathEscape(studioID) + "/seats"
	var seats []SeatRecord
	if err := c.Do(ctx, http.MethodGet, path, nil, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}
