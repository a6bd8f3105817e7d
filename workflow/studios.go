package workflow

import (
	"context"

	"cinema-cli/api"
	"cinema-cli/domain"
	"cinema-cli/seatmap"
)

// ListStudios returns every studio and records their names in the cache.
// BookedSeats is empty because no seat lists are fetched.
func (s *Service) ListStudios(ctx context.Context) ([]domain.Studio, error) {
	records, err := s.backend.Studios(ctx)
	if err != nil {
		return nil, backendError(err, msgStudios)
	}
	s.recordNames(ctx, records)

	studios := make([]domain.Studio, 0, len(records))
	for _, rec := range records {
		studios = append(studios, domain.ToStudio(rec, nil))
	}
	return studios, nil
}

// GetStudio finds one studio in the list and loads its seats best-effort, so a
// studio whose seats cannot be fetched is still returned, without booked seats.
func (s *Service) GetStudio(ctx context.Context, studioID string) (domain.Studio, error) {
	studio, _, err := s.StudioSeats(ctx, studioID)
	return studio, err
}

// StudioSeats is GetStudio plus the seat list it fetched. The seats are nil
// when they could not be loaded.
func (s *Service) StudioSeats(ctx context.Context, studioID string) (domain.Studio, []seatmap.Seat, error) {
	records, err := s.backend.Studios(ctx)
	if err != nil {
		return domain.Studio{}, nil, backendError(err, msgStudioNotFound)
	}
	var found *api.StudioRecord
	for i := range records {
		if records[i].ID.String() == studioID {
			found = &records[i]
			break
		}
	}
	if found == nil {
		return domain.Studio{}, nil, newError(KindNotFound, msgStudioNotFound)
	}

	if err := s.cache.SetName(ctx, studioID, found.Name); err != nil {
		s.logger.Warn().Err(err).Str("studio_id", studioID).Msg("cache studio name")
	}
	seatRecords, err := s.refreshSeats(ctx, studioID)
	if err != nil {
		s.logger.Warn().Err(err).Str("studio_id", studioID).Msg("studio seats unavailable")
	}
	var seats []seatmap.Seat
	if seatRecords != nil {
		seats = domain.ToSeats(seatRecords)
	}
	return domain.ToStudio(*found, seatRecords), seats, nil
}

// AvailableSeats refreshes the studio's mapping and returns the numbers of the free seats.
func (s *Service) AvailableSeats(ctx context.Context, studioID string) ([]string, error) {
	seats, err := s.AllSeats(ctx, studioID)
	if err != nil {
		return nil, err
	}
	available := []string{}
	for _, seat := range seats {
		if seat.Available {
			available = append(available, seat.Number)
		}
	}
	return available, nil
}

// AllSeats refreshes the studio's mapping and returns every seat.
func (s *Service) AllSeats(ctx context.Context, studioID string) ([]seatmap.Seat, error) {
	records, err := s.backend.Seats(ctx, studioID)
	if err != nil {
		return nil, backendError(err, msgSeats)
	}
	seats := domain.ToSeats(records)
	if err := s.cache.Refresh(ctx, studioID, seats); err != nil {
		s.logger.Warn().Err(err).Str("studio_id", studioID).Msg("refresh seat map")
	}
	return seats, nil
}
