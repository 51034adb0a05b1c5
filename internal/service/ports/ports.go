package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
)

// BookingRepo persists bookings. Lookups of a missing booking return
// repository.ErrNotFound.
type BookingRepo interface {
	Create(ctx context.Context, b *domain.Booking) error
	// GetForUpdate locks the row for the rest of the surrounding transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetView(ctx context.Context, id uuid.UUID) (*domain.BookingView, error)
	// ListActiveForArtist returns pending and confirmed bookings of the artist
	// whose window touches [from, to].
	ListActiveForArtist(ctx context.Context, artistID uuid.UUID, from, to time.Time) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, depositPaid *bool) (*domain.Booking, error)
	List(ctx context.Context, q domain.BookingQuery) ([]domain.BookingView, error)
}

// EventCatalog resolves events. A missing event is (nil, nil).
type EventCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
}

// ArtistDirectory resolves artist profiles. A missing profile is (nil, nil).
type ArtistDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Artist, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Artist, error)
}

// IdentityStore resolves users. A missing user is (nil, nil).
type IdentityStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Repos groups the repositories bound to one database handle.
type Repos interface {
	Bookings() BookingRepo
	Events() EventCatalog
	Artists() ArtistDirectory
	Users() IdentityStore
}

// AfterCommit runs once the surrounding transaction has committed.
type AfterCommit func(ctx context.Context)

type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repos, after func(AfterCommit)) error) error
}

// ViewCache holds resolved booking views. A cache failure must not fail the
// read: implementations fall back to load.
type ViewCache interface {
	LoadBookingView(ctx context.Context, id uuid.UUID, load func(ctx context.Context) (*domain.BookingView, error)) (*domain.BookingView, error)
	InvalidateBooking(ctx context.Context, id uuid.UUID) error
}

type RateLimiter interface {
	Allow(ctx context.Context, callerID string) (allowed bool, current int64, retryAfter time.Duration, err error)
}
