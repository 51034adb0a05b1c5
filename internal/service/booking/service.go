package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
	"github.com/kirinyoku/gigbook/internal/repository"
	"github.com/kirinyoku/gigbook/internal/service/ports"
)

type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// Service is the booking lifecycle engine.
type Service struct {
	uow     ports.UnitOfWork
	reads   ports.Repos
	cache   ports.ViewCache
	limiter ports.RateLimiter
	log     *slog.Logger
	cfg     Config
}

// New builds the service. cache and limiter are optional.
func New(
	uow ports.UnitOfWork,
	reads ports.Repos,
	cache ports.ViewCache,
	limiter ports.RateLimiter,
	log *slog.Logger,
	cfg Config,
) *Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = domain.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = domain.MaxLimit
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		uow:     uow,
		reads:   reads,
		cache:   cache,
		limiter: limiter,
		log:     log.With(slog.String("component", "booking")),
		cfg:     cfg,
	}
}

// Create books an artist for an event on behalf of caller.
//
// The event and artist must exist, the window must lie within the event and
// must not overlap another pending or confirmed booking of the artist. The
// check and the insert run in one serializable transaction, and the store's
// exclusion constraint reports any race that slips through as ErrArtistBusy.
func (s *Service) Create(
	ctx context.Context,
	caller domain.Caller,
	in CreateInput,
) (*domain.BookingView, error) {
	const op = "service.booking.Create"

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if s.limiter != nil {
		ok, _, retry, err := s.limiter.Allow(ctx, caller.ID.String())
		if err != nil {
			// a limiter outage must not block bookings
			s.log.WarnContext(ctx, "rate limiter failed", slog.Any("err", err))
		} else if !ok {
			return nil, fmt.Errorf("%s:%w", op, &RateLimitedError{RetryAfter: retry})
		}
	}

	var view *domain.BookingView

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos ports.Repos,
		_ func(ports.AfterCommit),
	) error {
		event, err := repos.Events().FindByID(ctx, in.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return ErrEventNotFound
		}

		artist, err := repos.Artists().FindByID(ctx, in.ArtistID)
		if err != nil {
			return err
		}
		if artist == nil {
			return ErrArtistNotFound
		}

		if !event.Contains(in.StartTime, in.EndTime) {
			return ErrOutsideEventWindow
		}

		if err := ensureArtistFree(ctx, repos, artist.ID, in.StartTime, in.EndTime, uuid.Nil); err != nil {
			return err
		}

		b := in.booking(caller.ID)
		if err := repos.Bookings().Create(ctx, b); err != nil {
			if errors.Is(err, repository.ErrOverlap) {
				return ErrArtistBusy
			}
			return err
		}

		view, err = repos.Bookings().GetView(ctx, b.ID)
		return err
	})
	if err != nil {
		return nil, storeErr(op, err)
	}

	s.log.InfoContext(ctx, "booking created",
		slog.String("booking_id", view.ID.String()),
		slog.String("artist_id", view.ArtistID.String()),
		slog.String("event_id", view.EventID.String()),
		slog.String("caller_id", caller.ID.String()),
	)

	return view, nil
}

// Get returns the booking with its artist, event and creator resolved.
func (s *Service) Get(ctx context.Context, rawID string) (*domain.BookingView, error) {
	const op = "service.booking.Get"

	id, err := ParseID(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	load := func(ctx context.Context) (*domain.BookingView, error) {
		v, err := s.reads.Bookings().GetView(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return v, err
	}

	var v *domain.BookingView
	if s.cache != nil {
		v, err = s.cache.LoadBookingView(ctx, id, load)
	} else {
		v, err = load(ctx)
	}
	if err != nil {
		return nil, storeErr(op, err)
	}

	return v, nil
}

// UpdateStatus moves a booking to next. The caller must satisfy the guard of
// the target status before the terminal state rules are checked.
func (s *Service) UpdateStatus(
	ctx context.Context,
	rawID string,
	caller domain.Caller,
	next domain.BookingStatus,
) (*domain.Booking, error) {
	const op = "service.booking.UpdateStatus"

	id, err := ParseID(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !next.IsValid() {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidStatus)
	}

	var (
		updated *domain.Booking
		from    domain.BookingStatus
	)

	err = s.uow.Do(ctx, func(
		ctx context.Context,
		repos ports.Repos,
		after func(ports.AfterCommit),
	) error {
		b, err := repos.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		rel, err := relation(ctx, repos, caller, b)
		if err != nil {
			return err
		}
		if !canTransition(caller, rel, next) {
			return ErrNotAuthorizedBooking
		}

		if err := checkTransition(b.Status, next); err != nil {
			return err
		}

		// a rejected booking moved back to pending or confirmed takes its
		// window again
		if !b.Status.IsActive() && next.IsActive() {
			d := b.BookingDetails
			if err := ensureArtistFree(ctx, repos, b.ArtistID, d.StartTime, d.EndTime, b.ID); err != nil {
				return err
			}
		}

		from = b.Status
		updated, err = repos.Bookings().UpdateStatus(ctx, id, next)
		if err != nil {
			if errors.Is(err, repository.ErrOverlap) {
				return ErrArtistBusy
			}
			return err
		}

		after(s.invalidate(id))

		return nil
	})
	if err != nil {
		return nil, storeErr(op, err)
	}

	s.log.InfoContext(ctx, "booking status updated",
		slog.String("booking_id", id.String()),
		slog.String("from", from.String()),
		slog.String("to", next.String()),
		slog.String("caller_id", caller.ID.String()),
	)

	return updated, nil
}

// UpdatePayment records a payment status change. It is not restricted by the
// booking status.
func (s *Service) UpdatePayment(
	ctx context.Context,
	rawID string,
	callerID uuid.UUID,
	upd PaymentUpdate,
) (*domain.Booking, error) {
	const op = "service.booking.UpdatePayment"

	id, err := ParseID(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !upd.Status.IsValid() {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidPaymentStatus)
	}

	var updated *domain.Booking

	err = s.uow.Do(ctx, func(
		ctx context.Context,
		repos ports.Repos,
		after func(ports.AfterCommit),
	) error {
		b, err := repos.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		user, err := repos.Users().FindByID(ctx, callerID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		if !canUpdatePayment(user, b) {
			return ErrNotAuthorizedPayment
		}

		updated, err = repos.Bookings().UpdatePayment(ctx, id, upd.Status, upd.DepositPaid)
		if err != nil {
			return err
		}

		after(s.invalidate(id))

		return nil
	})
	if err != nil {
		return nil, storeErr(op, err)
	}

	s.log.InfoContext(ctx, "booking payment updated",
		slog.String("booking_id", id.String()),
		slog.String("payment_status", upd.Status.String()),
		slog.String("caller_id", callerID.String()),
	)

	return updated, nil
}

// ArtistForUser resolves the artist profile owned by userID.
func (s *Service) ArtistForUser(ctx context.Context, userID uuid.UUID) (*domain.Artist, error) {
	const op = "service.booking.ArtistForUser"

	a, err := s.reads.Artists().FindByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if a == nil {
		return nil, fmt.Errorf("%s:%w", op, ErrArtistProfileNotFound)
	}

	return a, nil
}

// relation works out how caller is tied to b. The artist path needs the
// caller to hold the artist role and own the booked profile.
func relation(
	ctx context.Context,
	repos ports.Repos,
	caller domain.Caller,
	b *domain.Booking,
) (party, error) {
	var rel party

	if caller.ID == b.BookedBy {
		rel |= partyCreator
	}

	if caller.Role == domain.RoleArtist {
		a, err := repos.Artists().FindByUser(ctx, caller.ID)
		if err != nil {
			return 0, err
		}
		if b.CanAssociateArtist(a) {
			rel |= partyArtist
		}
	}

	return rel, nil
}

// ensureArtistFree fails with ErrArtistBusy when another pending or confirmed
// booking of the artist overlaps [start, end). The booking self is ignored.
func ensureArtistFree(
	ctx context.Context,
	repos ports.Repos,
	artistID uuid.UUID,
	start, end time.Time,
	self uuid.UUID,
) error {
	active, err := repos.Bookings().ListActiveForArtist(ctx, artistID, start, end)
	if err != nil {
		return err
	}
	for i := range active {
		if active[i].ID != self && active[i].Overlaps(start, end) {
			return ErrArtistBusy
		}
	}
	return nil
}

func (s *Service) invalidate(id uuid.UUID) ports.AfterCommit {
	return func(ctx context.Context) {
		if s.cache == nil {
			return
		}
		if err := s.cache.InvalidateBooking(ctx, id); err != nil {
			s.log.WarnContext(ctx, "booking view invalidation failed",
				slog.String("booking_id", id.String()),
				slog.Any("err", err),
			)
		}
	}
}

// storeErr wraps err with op and folds retryable store failures into
// ErrUnavailable.
func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrUnavailable) {
		return fmt.Errorf("%s:%w: %v", op, ErrUnavailable, err)
	}

	return fmt.Errorf("%s:%w", op, err)
}
