// Package workflow implements the booking operations on top of the backend
// client, the session store and the seat mapping cache.
//
// Every operation returns either its value or a *Error. Best-effort
// sub-fetches never fail an operation; what they could not load is reported
// as Degraded entries next to the data.
package workflow

import (
	"context"

	"cinema-cli/api"
	"cinema-cli/domain"
	"cinema-cli/seatmap"
	"cinema-cli/session"

	"github.com/rs/zerolog"
)

// Backend is the subset of *api.Client the workflow calls.
type Backend interface {
	Register(ctx context.Context, payload api.RegisterRequest) (api.AuthResponse, error)
	Login(ctx context.Context, payload api.LoginRequest) (api.AuthResponse, error)
	Verify(ctx context.Context, token string) (api.VerifyResponse, error)
	Studios(ctx context.Context) ([]api.StudioRecord, error)
	Seats(ctx context.Context, studioID string) ([]api.SeatRecord, error)
	CreateOnlineBooking(ctx context.Context, payload api.OnlineBookingRequest) (api.BookingResponse, error)
	CreateOfflineBooking(ctx context.Context, payload api.OfflineBookingRequest) (api.BookingResponse, error)
	MyBookings(ctx context.Context) ([]api.BookingRecord, error)
	ValidateBooking(ctx context.Context, code string) (api.ValidateResponse, error)
}

type Service struct {
	backend Backend
	session *session.Store
	cache   *seatmap.Cache
	logger  zerolog.Logger
}

// New wires a Service. Missing dependencies are programming errors and panic.
func New(backend Backend, store *session.Store, cache *seatmap.Cache, logger zerolog.Logger) *Service {
	if backend == nil {
		panic("workflow: nil backend")
	}
	if store == nil {
		panic("workflow: nil session store")
	}
	if cache == nil {
		panic("workflow: nil seat cache")
	}
	return &Service{backend: backend, session: store, cache: cache, logger: logger}
}

func (s *Service) Session() *session.Store {
	return s.session
}

func (s *Service) Cache() *seatmap.Cache {
	return s.cache
}

// Degraded names a best-effort fetch that did not succeed.
type Degraded struct {
	StudioID string `json:"studioId,omitempty"`
	Stage    string `json:"stage"`
	Reason   string `json:"reason"`
}

const (
	StageNames = "studio_names"
	StageSeats = "seat_map"
)

func (s *Service) requireToken() *Error {
	if _, ok := s.session.Token(); !ok {
		return newError(KindAuthRequired, msgAuthRequired)
	}
	return nil
}

// warmNames records every studio name. Failure is swallowed into a Degraded entry.
func (s *Service) warmNames(ctx context.Context) *Degraded {
	studios, err := s.backend.Studios(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("studio names unavailable")
		return &Degraded{Stage: StageNames, Reason: err.Error()}
	}
	s.recordNames(ctx, studios)
	return nil
}

func (s *Service) recordNames(ctx context.Context, studios []api.StudioRecord) {
	for _, studio := range studios {
		if err := s.cache.SetName(ctx, studio.ID.String(), studio.Name); err != nil {
			s.logger.Warn().Err(err).Str("studio_id", studio.ID.String()).Msg("cache studio name")
		}
	}
}

// refreshSeats fetches a studio's seat list and rebuilds its mapping.
func (s *Service) refreshSeats(ctx context.Context, studioID string) ([]api.SeatRecord, error) {
	seats, err := s.backend.Seats(ctx, studioID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Refresh(ctx, studioID, domain.ToSeats(seats)); err != nil {
		return seats, err
	}
	return seats, nil
}

// convert turns a record into a Booking using whatever the cache holds for its studio.
func (s *Service) convert(ctx context.Context, raw api.BookingRecord) (domain.Booking, *Degraded) {
	studioID := raw.StudioID.String()
	mapping, _, err := s.cache.Mapping(ctx, studioID)
	var degraded *Degraded
	if err != nil {
		s.logger.Warn().Err(err).Str("studio_id", studioID).Msg("seat map lookup failed")
		mapping = nil
		degraded = &Degraded{StudioID: studioID, Stage: StageSeats, Reason: err.Error()}
	}
	name, _ := s.cache.Name(ctx, studioID)
	return domain.ToBooking(raw, mapping, name), degraded
}
