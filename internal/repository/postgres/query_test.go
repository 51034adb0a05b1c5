package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildListQuery_NoFilters(t *testing.T) {
	sql, args := buildListQuery(domain.BookingQuery{Limit: 10, Offset: 0})

	assert.NotContains(t, sql, " WHERE ")
	assert.Contains(t, sql, "ORDER BY b.start_time ASC, b.id LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{10, 0}, args)
}

func TestBuildListQuery_ArtistScope(t *testing.T) {
	artistID := uuid.New()
	status := domain.BookingConfirmed
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	sql, args := buildListQuery(domain.BookingQuery{
		ArtistID:  &artistID,
		Status:    &status,
		DateRange: domain.DateRange{StartDate: &from, EndDate: &to},
		Limit:     20,
		Offset:    40,
	})

	assert.Contains(t, sql,
		"WHERE b.artist_id = $1 AND b.status = $2 AND b.start_time >= $3 AND b.end_time <= $4")
	assert.Contains(t, sql, "LIMIT $5 OFFSET $6")
	assert.Equal(t, []any{artistID, "confirmed", from, to, 20, 40}, args)
}

func TestBuildListQuery_AdminSortAndFilters(t *testing.T) {
	eventID := uuid.New()
	artistID := uuid.New()

	sql, args := buildListQuery(domain.BookingQuery{
		ArtistID: &artistID,
		EventID:  &eventID,
		Sort:     domain.SortByCreatedDesc,
		Limit:    10,
		Offset:   0,
	})

	assert.Contains(t, sql, "WHERE b.artist_id = $1 AND b.event_id = $2")
	assert.Contains(t, sql, "ORDER BY b.created_at DESC, b.id")
	assert.Len(t, args, 4)
}

func TestBuildListQuery_OrganizerScope(t *testing.T) {
	organizerID := uuid.New()

	sql, args := buildListQuery(domain.BookingQuery{BookedBy: &organizerID, Limit: 5, Offset: 5})

	assert.Contains(t, sql, "WHERE b.booked_by = $1")
	assert.Contains(t, sql, "LEFT JOIN users u ON u.id = b.booked_by")
	assert.Equal(t, []any{organizerID, 5, 5}, args)
}
