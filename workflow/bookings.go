package workflow

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"cinema-cli/api"
	"cinema-cli/domain"
)

type CreateBookingRequest struct {
	StudioID      string
	Seats         []string
	Type          domain.BookingType
	CustomerName  string
	CustomerEmail string
}

// CreateBooking resolves seat numbers through the cache and submits the
// booking. The cache is not refreshed here; callers load the studio's seats
// first. Online bookings need a token, offline (cashier) bookings never do.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (domain.Booking, error) {
	bookingType := req.Type
	if bookingType == "" {
		bookingType = domain.Online
	}
	if bookingType == domain.Online {
		if err := s.requireToken(); err != nil {
			return domain.Booking{}, err
		}
	}

	seatIDs, err := s.cache.ResolveIDs(ctx, req.StudioID, req.Seats)
	if err != nil {
		s.logger.Warn().Err(err).Str("studio_id", req.StudioID).Msg("seat map lookup failed")
		return domain.Booking{}, newError(KindValidation, msgInvalidSeats)
	}
	if len(seatIDs) != len(req.Seats) {
		return domain.Booking{}, newError(KindValidation, msgInvalidSeats)
	}

	studioID, err := strconv.ParseInt(strings.TrimSpace(req.StudioID), 10, 64)
	if err != nil {
		return domain.Booking{}, newError(KindValidation, msgInvalidStudio)
	}

	var resp api.BookingResponse
	switch bookingType {
	case domain.Online:
		resp, err = s.backend.CreateOnlineBooking(ctx, api.OnlineBookingRequest{StudioID: studioID, SeatIDs: seatIDs})
	case domain.Offline:
		resp, err = s.backend.CreateOfflineBooking(ctx, api.OfflineBookingRequest{
			StudioID:      studioID,
			SeatIDs:       seatIDs,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
		})
	default:
		return domain.Booking{}, newError(KindValidation, "Unknown booking type "+string(bookingType))
	}
	if err != nil {
		return domain.Booking{}, backendError(err, msgCreateBooking)
	}
	if !hasBooking(resp.Booking) {
		s.logger.Warn().Str("studio_id", req.StudioID).Msg("create reply carried no booking")
		return domain.Booking{}, newError(KindBackend, msgCreateBooking)
	}

	booking, _ := s.convert(ctx, resp.Booking)
	if resp.QRCode != "" {
		booking.QRCode = resp.QRCode
	}
	s.logger.Info().Str("booking", booking.ID).Str("studio_id", booking.StudioID).Str("type", string(bookingType)).Msg("booking created")
	return booking, nil
}

type BookingList struct {
	Bookings []domain.Booking `json:"bookings"`
	Degraded []Degraded       `json:"degraded,omitempty"`
}

// ListUserBookings fetches the caller's bookings. Studio names are reloaded and
// seat maps are fetched concurrently for studios not yet cached; none of these
// extra fetches can fail the call. userID is not sent, the token selects the user.
func (s *Service) ListUserBookings(ctx context.Context, userID string) (BookingList, error) {
	if err := s.requireToken(); err != nil {
		return BookingList{}, err
	}
	records, err := s.backend.MyBookings(ctx)
	if err != nil {
		return BookingList{}, backendError(err, msgBookings)
	}

	list := BookingList{Bookings: make([]domain.Booking, 0, len(records))}
	if d := s.warmNames(ctx); d != nil {
		list.Degraded = append(list.Degraded, *d)
	}
	list.Degraded = append(list.Degraded, s.warmSeatMaps(ctx, studioIDs(records))...)

	for _, rec := range records {
		booking, d := s.convert(ctx, rec)
		if d != nil {
			list.Degraded = append(list.Degraded, *d)
		}
		list.Bookings = append(list.Bookings, booking)
	}
	s.logger.Debug().Str("user_id", userID).Int("bookings", len(list.Bookings)).Int("degraded", len(list.Degraded)).Msg("bookings listed")
	return list, nil
}

func studioIDs(records []api.BookingRecord) []string {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, rec := range records {
		id := rec.StudioID.String()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// warmSeatMaps loads the seat map of every studio in ids that is not cached yet.
// Each studio is fetched in its own goroutine; failures are returned as data.
func (s *Service) warmSeatMaps(ctx context.Context, ids []string) []Degraded {
	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !s.cache.Has(ctx, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	errs := make([]error, len(missing))
	var wg sync.WaitGroup
	for i, id := range missing {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = s.refreshSeats(ctx, id)
		}(i, id)
	}
	wg.Wait()

	var degraded []Degraded
	for i, err := range errs {
		if err == nil {
			continue
		}
		s.logger.Warn().Err(err).Str("studio_id", missing[i]).Msg("seat map warm-up failed")
		degraded = append(degraded, Degraded{StudioID: missing[i], Stage: StageSeats, Reason: err.Error()})
	}
	return degraded
}

// GetBookingByID scans the caller's bookings; the backend has no single-booking lookup.
// Codes match case-insensitively.
func (s *Service) GetBookingByID(ctx context.Context, id string) (domain.Booking, error) {
	if err := s.requireToken(); err != nil {
		return domain.Booking{}, err
	}
	list, err := s.ListUserBookings(ctx, "")
	if err != nil {
		return domain.Booking{}, err
	}
	for _, booking := range list.Bookings {
		if strings.EqualFold(booking.ID, id) {
			return booking, nil
		}
	}
	return domain.Booking{}, newError(KindNotFound, msgBookingMissing)
}

type Validation struct {
	Booking  domain.Booking `json:"booking"`
	Message  string         `json:"message,omitempty"`
	Degraded []Degraded     `json:"degraded,omitempty"`
}

// ValidateBooking redeems a booking code. The returned status is whatever the
// backend reports; nothing is changed locally.
func (s *Service) ValidateBooking(ctx context.Context, code string) (Validation, error) {
	resp, err := s.backend.ValidateBooking(ctx, code)
	if err != nil {
		return Validation{}, backendError(err, msgValidate)
	}
	if !hasBooking(resp.Booking) {
		return Validation{}, newError(KindNotFound, msgBookingMissing)
	}

	studioID := resp.Booking.StudioID.String()
	result := Validation{Message: resp.Message}
	if _, ok := s.cache.Name(ctx, studioID); !ok {
		if d := s.warmNames(ctx); d != nil {
			result.Degraded = append(result.Degraded, *d)
		}
	}
	result.Degraded = append(result.Degraded, s.warmSeatMaps(ctx, []string{studioID})...)

	booking, d := s.convert(ctx, resp.Booking)
	if d != nil {
		result.Degraded = append(result.Degraded, *d)
	}
	result.Booking = booking
	s.logger.Info().Str("booking", booking.ID).Str("status", string(booking.Status)).Msg("booking validated")
	return result, nil
}

// hasBooking reports whether a reply actually carried a booking object.
func hasBooking(rec api.BookingRecord) bool {
	return rec.ID.String() != "" || rec.BookingCode != ""
}

// CancelBooking is not offered by the backend.
func (s *Service) CancelBooking(ctx context.Context, id string) error {
	return newError(KindUnsupported, msgCancel)
}
