package api

import (
	"context"
	"net/http"
)

func (c *Client) Register(ctx context.Context, payload RegisterRequest) (AuthResponse, error) {
	var resp AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/api/auth/register", payload, &resp); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

func (c *Client) Login(ctx context.Context, payload LoginRequest) (AuthResponse, error) {
	var resp AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/api/auth/login", payload, &resp); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

func (c *Client) Verify(ctx context.Context, token string) (VerifyResponse, error) {
	payload := map[string]string{"token": token}
	var resp VerifyResponse
	if err := c.Do(ctx, http.MethodPost, "/api/auth/verify", payload, &resp); err != nil {
		return VerifyResponse{}, err
	}
	return resp, nil
}
