package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/gigbook/internal/domain"
)

const bookingColumns = `b.id, b.artist_id, b.event_id, b.booked_by,
	b.start_time, b.end_time, b.set_duration, b.special_requirements,
	b.payment_amount, b.payment_currency, b.payment_status, b.deposit_amount, b.deposit_paid,
	b.status, b.contract_url, b.contract_signed_by_artist, b.contract_signed_by_organizer,
	b.notes, b.created_at, b.updated_at`

const viewColumns = bookingColumns + `,
	a.id, a.artist_name, a.genres, a.rate_amount, a.rate_currency, a.rate_per,
	e.id, e.name, e.starts_at, e.ends_at,
	v.id, v.name, v.city,
	u.id, u.first_name, u.last_name, u.email`

const viewJoins = `
	LEFT JOIN artists a ON a.id = b.artist_id
	LEFT JOIN events e ON e.id = b.event_id
	LEFT JOIN venues v ON v.id = e.venue_id
	LEFT JOIN users u ON u.id = b.booked_by`

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts a booking and fills its timestamps.
//
// Returns:
//   - error: repository.ErrOverlap if an active booking of the same artist
//     intersects the window (bookings_no_overlap constraint).
//   - error: repository.ErrConflict if the id is already taken.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	const op = "postgres.BookingRepo.Create"

	db := r.handle()

	var contractURL *string
	var signedByArtist, signedByOrganizer *bool
	if b.Contract != nil {
		contractURL = &b.Contract.URL
		signedByArtist = &b.Contract.SignedByArtist
		signedByOrganizer = &b.Contract.SignedByOrganizer
	}

	err := db.QueryRow(ctx,
		`INSERT INTO bookings(
			id, artist_id, event_id, booked_by,
			start_time, end_time, set_duration, special_requirements,
			payment_amount, payment_currency, payment_status, deposit_amount, deposit_paid,
			status, contract_url, contract_signed_by_artist, contract_signed_by_organizer, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING created_at, updated_at`,
		b.ID, b.ArtistID, b.EventID, b.BookedBy,
		b.BookingDetails.StartTime, b.BookingDetails.EndTime,
		b.BookingDetails.SetDuration, b.BookingDetails.SpecialRequirements,
		b.Payment.Amount, b.Payment.Currency, string(b.Payment.Status),
		b.Payment.DepositAmount, b.Payment.DepositPaid,
		string(b.Status), contractURL, signedByArtist, signedByOrganizer, b.Notes,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// GetForUpdate retrieves a booking and locks its row until the transaction
// ends. It is only meaningful on a repo bound to a transaction.
//
// Returns:
//   - error: repository.ErrNotFound if the booking does not exist.
func (r *BookingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.GetForUpdate"

	b, err := scanBooking(r.handle().QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1 FOR UPDATE`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}

// GetView retrieves a booking with artist, event (with venue) and creator
// summaries attached.
//
// Returns:
//   - error: repository.ErrNotFound if the booking does not exist.
func (r *BookingRepo) GetView(ctx context.Context, id uuid.UUID) (*domain.BookingView, error) {
	const op = "postgres.BookingRepo.GetView"

	v, err := scanBookingView(r.handle().QueryRow(ctx,
		`SELECT `+viewColumns+` FROM bookings b`+viewJoins+` WHERE b.id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return v, nil
}

func (r *BookingRepo) ListActiveForArtist(
	ctx context.Context,
	artistID uuid.UUID,
	from, to time.Time,
) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListActiveForArtist"

	rows, err := r.handle().Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings b
		 WHERE b.artist_id = $1
		   AND b.status = ANY($2)
		   AND b.start_time <= $4
		   AND b.end_time >= $3
		 ORDER BY b.start_time`,
		artistID, statusStrings(domain.ActiveStatuses), from, to,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// UpdateStatus sets the lifecycle status and returns the updated row.
func (r *BookingRepo) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.BookingStatus,
) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.UpdateStatus"

	b, err := scanBooking(r.handle().QueryRow(ctx,
		`UPDATE bookings AS b
		 SET status = $2, updated_at = now()
		 WHERE b.id = $1
		 RETURNING `+bookingColumns,
		id, string(status),
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}

// UpdatePayment sets the payment status and, when depositPaid is non-nil,
// the deposit flag.
func (r *BookingRepo) UpdatePayment(
	ctx context.Context,
	id uuid.UUID,
	status domain.PaymentStatus,
	depositPaid *bool,
) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.UpdatePayment"

	b, err := scanBooking(r.handle().QueryRow(ctx,
		`UPDATE bookings AS b
		 SET payment_status = $2,
		     deposit_paid = COALESCE($3::boolean, b.deposit_paid),
		     updated_at = now()
		 WHERE b.id = $1
		 RETURNING `+bookingColumns,
		id, string(status), depositPaid,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}

// List runs a filtered, paginated query over booking views.
func (r *BookingRepo) List(ctx context.Context, q domain.BookingQuery) ([]domain.BookingView, error) {
	const op = "postgres.BookingRepo.List"

	sql, args := buildListQuery(q)

	rows, err := r.handle().Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := make([]domain.BookingView, 0, q.Limit)
	for rows.Next() {
		v, err := scanBookingView(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func statusStrings(ss []domain.BookingStatus) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}
