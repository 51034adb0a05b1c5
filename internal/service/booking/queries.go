package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
)

// ArtistBookings lists the bookings of one artist ordered by start time.
func (s *Service) ArtistBookings(
	ctx context.Context,
	artistID uuid.UUID,
	f domain.ArtistBookingsFilter,
	page domain.Page,
) (*domain.BookingPage, error) {
	const op = "service.booking.ArtistBookings"

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, invalid(err))
	}

	return s.list(ctx, op, page, domain.BookingQuery{
		ArtistID:  &artistID,
		Status:    f.Status,
		DateRange: f.DateRange,
		Sort:      domain.SortByStartAsc,
	})
}

// OrganizerBookings lists the bookings created by organizerID ordered by
// start time.
func (s *Service) OrganizerBookings(
	ctx context.Context,
	organizerID uuid.UUID,
	f domain.OrganizerBookingsFilter,
	page domain.Page,
) (*domain.BookingPage, error) {
	const op = "service.booking.OrganizerBookings"

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, invalid(err))
	}

	return s.list(ctx, op, page, domain.BookingQuery{
		BookedBy:  &organizerID,
		EventID:   f.EventID,
		Status:    f.Status,
		DateRange: f.DateRange,
		Sort:      domain.SortByStartAsc,
	})
}

// AllBookings lists every booking, newest first.
func (s *Service) AllBookings(
	ctx context.Context,
	f domain.AllBookingsFilter,
	page domain.Page,
) (*domain.BookingPage, error) {
	const op = "service.booking.AllBookings"

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, invalid(err))
	}

	return s.list(ctx, op, page, domain.BookingQuery{
		ArtistID:  f.ArtistID,
		EventID:   f.EventID,
		Status:    f.Status,
		DateRange: f.DateRange,
		Sort:      domain.SortByCreatedDesc,
	})
}

func (s *Service) list(
	ctx context.Context,
	op string,
	page domain.Page,
	q domain.BookingQuery,
) (*domain.BookingPage, error) {
	page = page.Normalize(s.cfg.DefaultLimit, s.cfg.MaxLimit)
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, invalid(err))
	}

	q.Limit = page.Limit
	q.Offset = page.Offset()

	views, err := s.reads.Bookings().List(ctx, q)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if views == nil {
		views = []domain.BookingView{}
	}

	return &domain.BookingPage{
		Results: views,
		Page:    page.Page,
		Limit:   page.Limit,
	}, nil
}
