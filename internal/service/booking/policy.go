package booking

import "github.com/kirinyoku/gigbook/internal/domain"

// party is a caller's relationship to a booking.
type party uint8

const (
	partyArtist  party = 1 << iota // owns the booked artist profile
	partyCreator                   // created the booking
)

// transitionGuards lists who, besides an admin, may move a booking to a
// status. Statuses not listed fall back to fallbackGuard.
var transitionGuards = map[domain.BookingStatus]party{
	domain.BookingConfirmed: partyArtist,
	domain.BookingRejected:  partyArtist,
	domain.BookingCompleted: partyCreator,
	domain.BookingCanceled:  partyArtist | partyCreator,
}

const fallbackGuard = partyArtist | partyCreator

func guardFor(next domain.BookingStatus) party {
	if g, ok := transitionGuards[next]; ok {
		return g
	}
	return fallbackGuard
}

// canTransition reports whether caller, related to the booking as rel, may
// request the move to next.
func canTransition(caller domain.Caller, rel party, next domain.BookingStatus) bool {
	if caller.IsAdmin() {
		return true
	}
	return rel&guardFor(next) != 0
}

// checkTransition enforces the terminal states: nothing leaves CANCELED and
// COMPLETED only moves to CANCELED.
func checkTransition(from, to domain.BookingStatus) error {
	switch {
	case from == domain.BookingCanceled:
		return ErrCanceledBooking
	case from == domain.BookingCompleted && to != domain.BookingCanceled:
		return ErrCompletedBooking
	}
	return nil
}

// canUpdatePayment allows the creator and any role holding the payment
// capability.
func canUpdatePayment(u *domain.User, b *domain.Booking) bool {
	return u.ID == b.BookedBy || u.Role.Can(domain.CapUpdatePayment)
}
