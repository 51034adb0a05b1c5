package postgres

import (
	"fmt"
	"strings"

	"github.com/kirinyoku/gigbook/internal/domain"
)

// buildListQuery renders a BookingQuery into SQL with positional arguments.
func buildListQuery(q domain.BookingQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.ArtistID != nil {
		conds = append(conds, "b.artist_id = "+arg(*q.ArtistID))
	}
	if q.BookedBy != nil {
		conds = append(conds, "b.booked_by = "+arg(*q.BookedBy))
	}
	if q.EventID != nil {
		conds = append(conds, "b.event_id = "+arg(*q.EventID))
	}
	if q.Status != nil {
		conds = append(conds, "b.status = "+arg(string(*q.Status)))
	}
	if q.StartDate != nil {
		conds = append(conds, "b.start_time >= "+arg(*q.StartDate))
	}
	if q.EndDate != nil {
		conds = append(conds, "b.end_time <= "+arg(*q.EndDate))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(viewColumns)
	sb.WriteString(" FROM bookings b")
	sb.WriteString(viewJoins)

	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	switch q.Sort {
	case domain.SortByCreatedDesc:
		sb.WriteString(" ORDER BY b.created_at DESC, b.id")
	default:
		sb.WriteString(" ORDER BY b.start_time ASC, b.id")
	}

	sb.WriteString(" LIMIT " + arg(q.Limit))
	sb.WriteString(" OFFSET " + arg(q.Offset))

	return sb.String(), args
}
