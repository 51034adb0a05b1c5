package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

type bookingRow struct {
	b                 domain.Booking
	paymentStatus     string
	status            string
	contractURL       *string
	signedByArtist    *bool
	signedByOrganizer *bool
}

func (r *bookingRow) dest() []any {
	return []any{
		&r.b.ID, &r.b.ArtistID, &r.b.EventID, &r.b.BookedBy,
		&r.b.BookingDetails.StartTime, &r.b.BookingDetails.EndTime,
		&r.b.BookingDetails.SetDuration, &r.b.BookingDetails.SpecialRequirements,
		&r.b.Payment.Amount, &r.b.Payment.Currency, &r.paymentStatus,
		&r.b.Payment.DepositAmount, &r.b.Payment.DepositPaid,
		&r.status, &r.contractURL, &r.signedByArtist, &r.signedByOrganizer,
		&r.b.Notes, &r.b.CreatedAt, &r.b.UpdatedAt,
	}
}

func (r *bookingRow) booking() *domain.Booking {
	b := r.b
	b.Status = domain.BookingStatus(r.status)
	b.Payment.Status = domain.PaymentStatus(r.paymentStatus)
	if r.contractURL != nil {
		b.Contract = &domain.Contract{
			URL:               *r.contractURL,
			SignedByArtist:    derefBool(r.signedByArtist),
			SignedByOrganizer: derefBool(r.signedByOrganizer),
		}
	}
	return &b
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var r bookingRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.booking(), nil
}

// Every joined column is nullable: LEFT JOIN keeps bookings whose
// references have been removed.
type viewRow struct {
	bookingRow

	artistID     uuid.NullUUID
	artistName   *string
	genres       []string
	rateAmount   *float64
	rateCurrency *string
	ratePer      *string

	eventID    uuid.NullUUID
	eventName  *string
	eventStart *time.Time
	eventEnd   *time.Time

	venueID   uuid.NullUUID
	venueName *string
	venueCity *string

	userID    uuid.NullUUID
	firstName *string
	lastName  *string
	email     *string
}

func (r *viewRow) dest() []any {
	return append(r.bookingRow.dest(),
		&r.artistID, &r.artistName, &r.genres, &r.rateAmount, &r.rateCurrency, &r.ratePer,
		&r.eventID, &r.eventName, &r.eventStart, &r.eventEnd,
		&r.venueID, &r.venueName, &r.venueCity,
		&r.userID, &r.firstName, &r.lastName, &r.email,
	)
}

func (r *viewRow) view() *domain.BookingView {
	v := &domain.BookingView{Booking: *r.booking()}

	if r.artistID.Valid {
		v.Artist = &domain.ArtistSummary{
			ID:         r.artistID.UUID,
			ArtistName: derefString(r.artistName),
			Genres:     r.genres,
			Rate: domain.Rate{
				Amount:   derefFloat(r.rateAmount),
				Currency: derefString(r.rateCurrency),
				Per:      derefString(r.ratePer),
			},
		}
	}

	if r.eventID.Valid {
		v.Event = &domain.EventSummary{
			ID:    r.eventID.UUID,
			Name:  derefString(r.eventName),
			Start: derefTime(r.eventStart),
			End:   derefTime(r.eventEnd),
		}
		if r.venueID.Valid {
			v.Event.Venue = &domain.VenueSummary{
				ID:   r.venueID.UUID,
				Name: derefString(r.venueName),
				City: derefString(r.venueCity),
			}
		}
	}

	if r.userID.Valid {
		v.Creator = &domain.UserSummary{
			ID:        r.userID.UUID,
			FirstName: derefString(r.firstName),
			LastName:  derefString(r.lastName),
			Email:     derefString(r.email),
		}
	}

	return v
}

func scanBookingView(row rowScanner) (*domain.BookingView, error) {
	var r viewRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.view(), nil
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefBool(p *bool) bool {
	return p != nil && *p
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefTime(p *time.Time) time.Time {
	if p == nil {
		return time.Time{}
	}
	return *p
}
