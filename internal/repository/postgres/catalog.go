package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/gigbook/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *UserRepo) With(db DB) *UserRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *UserRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// FindByID returns the user or (nil, nil) when it does not exist.
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "postgres.UserRepo.FindByID"

	var (
		u    domain.User
		role string
	)
	err := r.handle().QueryRow(ctx,
		`SELECT id, email, first_name, last_name, role, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	u.Role = domain.Role(role)

	return &u, nil
}

type ArtistRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ArtistRepo) With(db DB) *ArtistRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ArtistRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const artistColumns = `id, user_id, artist_name, genres, rate_amount, rate_currency, rate_per`

// FindByID returns the artist or (nil, nil) when it does not exist.
func (r *ArtistRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Artist, error) {
	const op = "postgres.ArtistRepo.FindByID"

	a, err := scanArtist(r.handle().QueryRow(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return a, nil
}

// FindByUser returns the artist profile owned by userID or (nil, nil).
func (r *ArtistRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Artist, error) {
	const op = "postgres.ArtistRepo.FindByUser"

	a, err := scanArtist(r.handle().QueryRow(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE user_id = $1`,
		userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return a, nil
}

func scanArtist(row rowScanner) (*domain.Artist, error) {
	var a domain.Artist
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.ArtistName,
		&a.Genres,
		&a.Rate.Amount,
		&a.Rate.Currency,
		&a.Rate.Per,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

type EventRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// FindByID returns the event or (nil, nil) when it does not exist.
func (r *EventRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgres.EventRepo.FindByID"

	var (
		e      domain.Event
		status string
	)
	err := r.handle().QueryRow(ctx,
		`SELECT id, name, venue_id, organizer_id, starts_at, ends_at, status
		 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Name, &e.VenueID, &e.OrganizerID, &e.Start, &e.End, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	e.Status = domain.EventStatus(status)

	return &e, nil
}
