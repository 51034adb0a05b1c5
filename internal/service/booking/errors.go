package booking

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Every error returned by Service matches exactly one of them
// with errors.Is, or none for unexpected store failures.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrConflict       = errors.New("conflict")
	ErrForbidden      = errors.New("forbidden")
	ErrUnavailable    = errors.New("booking store unavailable")
	ErrRateLimited    = errors.New("rate limited")
)

// Error is a rule violation carrying the message shown to the caller.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrEventNotFound         = newError(ErrNotFound, "Event not found")
	ErrArtistNotFound        = newError(ErrNotFound, "Artist not found")
	ErrBookingNotFound       = newError(ErrNotFound, "Booking not found")
	ErrUserNotFound          = newError(ErrNotFound, "User not found")
	ErrArtistProfileNotFound = newError(ErrNotFound, "Artist profile not found for this user")

	ErrInvalidID            = newError(ErrInvalidRequest, "Invalid booking ID format")
	ErrInvalidStatus        = newError(ErrInvalidRequest, "Invalid booking status")
	ErrInvalidPaymentStatus = newError(ErrInvalidRequest, "Invalid payment status")
	ErrEndBeforeStart       = newError(ErrInvalidRequest, "End time must be after start time")
	ErrInvalidSetDuration   = newError(ErrInvalidRequest, "Set duration must be greater than 0 minutes")
	ErrInvalidAmount        = newError(ErrInvalidRequest, "Payment amount must be greater than zero")
	ErrInvalidDeposit       = newError(ErrInvalidRequest, "Deposit amount must not be negative")
	ErrDepositTooLarge      = newError(ErrInvalidRequest, "Deposit amount must be less than the total amount")
	ErrOutsideEventWindow   = newError(ErrInvalidRequest, "Booking time must be within event start and end time")
	ErrCanceledBooking      = newError(ErrInvalidRequest, "Cannot update a canceled booking")
	ErrCompletedBooking     = newError(ErrInvalidRequest, "Completed booking cannot be updated")

	ErrArtistBusy = newError(ErrConflict, "Artist already has a booking during this time")

	ErrNotAuthorizedBooking = newError(ErrForbidden, "You are not authorized to update this booking")
	ErrNotAuthorizedPayment = newError(ErrForbidden, "You are not authorized to update this payment")
)

// invalid turns a filter or page validation error into an InvalidRequest.
func invalid(err error) *Error {
	return newError(ErrInvalidRequest, err.Error())
}

// RateLimitedError is returned when the caller created too many bookings in
// the current window.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many booking requests, retry in %s", e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }

// Message returns the caller-facing message of a rule violation in err's
// chain.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg, true
	}

	return "", false
}
