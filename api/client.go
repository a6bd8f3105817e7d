package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "http://localhost:3000"
	defaultUserAgent = "cinema-cli/1.0"
)

// TokenSource supplies the bearer token attached to outgoing requests.
type TokenSource interface {
	Token() (string, bool)
}

// Observer is told about every completed call. Status is 0 when no response arrived.
type Observer func(method, route string, status int, elapsed time.Duration)

type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
	Tokens    TokenSource
	Limiter   *rate.Limiter
	Observe   Observer
	Logger    zerolog.Logger
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		HTTP:      &http.Client{Timeout: 15 * time.Second},
		BaseURL:   baseURL,
		UserAgent: defaultUserAgent,
		Logger:    zerolog.Nop(),
	}
}

// RequestOption adjusts a single request before it is sent.
type RequestOption func(*http.Request)

// WithHeader sets a header on the request. An explicit Authorization header
// suppresses the automatic bearer token.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// Do performs one JSON call against the backend. body is marshalled when non-nil and
// the response is decoded into dest when non-nil. Every failure is a *RequestError.
func (c *Client) Do(ctx context.Context, method, path string, body, dest any, opts ...RequestOption) error {
	req, err := c.newRequest(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	return c.doJSON(req, routeLabel(path), dest)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, opts ...RequestOption) (*http.Request, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, newRequestError(err.Error(), err)
	}
	path = strings.TrimPrefix(path, "/")
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, newRequestError(err.Error(), err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, base.String(), reader)
	if err != nil {
		return nil, newRequestError(err.Error(), err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	for _, opt := range opts {
		opt(req)
	}
	if req.Header.Get("Authorization") == "" && c.Tokens != nil {
		if token, ok := c.Tokens.Token(); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) doJSON(req *http.Request, route string, dest any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(req.Context()); err != nil {
			return newRequestError(err.Error(), err)
		}
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.observe(req.Method, route, 0, start)
		c.Logger.Debug().Err(err).Str("method", req.Method).Str("route", route).Msg("backend call failed")
		return newRequestError(err.Error(), err)
	}
	defer resp.Body.Close()
	c.observe(req.Method, route, resp.StatusCode, start)

	c.Logger.Debug().
		Str("method", req.Method).
		Str("route", route).
		Int("status", resp.StatusCode).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Dur("elapsed", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return newRequestError(errorMessage(resp.StatusCode, raw), nil)
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		if err == io.EOF {
			return nil
		}
		return newRequestError(err.Error(), err)
	}
	return nil
}

func (c *Client) observe(method, route string, status int, start time.Time) {
	if c.Observe != nil {
		c.Observe(method, route, status, time.Since(start))
	}
}

// routeLabel collapses path parameters so metrics keep a bounded label set.
func routeLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := range parts {
		if i > 0 && parts[i-1] == "studios" {
			parts[i] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}
