package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultCurrency = "USD"

type BookingDetails struct {
	StartTime           time.Time `json:"startTime"`
	EndTime             time.Time `json:"endTime"`
	SetDuration         int       `json:"setDuration"` // minutes
	SpecialRequirements string    `json:"specialRequirements,omitempty"`
}

type Payment struct {
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	DepositAmount *float64      `json:"depositAmount,omitempty"`
	DepositPaid   bool          `json:"depositPaid"`
}

// Contract is stored with the booking but never consulted by the engine.
type Contract struct {
	URL               string `json:"url"`
	SignedByArtist    bool   `json:"signedByArtist"`
	SignedByOrganizer bool   `json:"signedByOrganizer"`
}

type Booking struct {
	ID             uuid.UUID      `json:"id"`
	ArtistID       uuid.UUID      `json:"artist"`
	EventID        uuid.UUID      `json:"event"`
	BookedBy       uuid.UUID      `json:"bookedBy"`
	BookingDetails BookingDetails `json:"bookingDetails"`
	Payment        Payment        `json:"payment"`
	Status         BookingStatus  `json:"status"`
	Contract       *Contract      `json:"contract,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Overlaps reports whether the booking's window collides with [start, end).
//
// The booking collides when its start falls in [start, end), when its end
// falls in (start, end], or when it encloses the whole window. Windows that
// only touch at a boundary do not collide.
func (b *Booking) Overlaps(start, end time.Time) bool {
	s, e := b.BookingDetails.StartTime, b.BookingDetails.EndTime

	startsInside := !s.Before(start) && s.Before(end)
	endsInside := e.After(start) && !e.After(end)
	encloses := !s.After(start) && !e.Before(end)

	return startsInside || endsInside || encloses
}

// CanAssociateArtist reports whether an artist profile is the one booked.
func (b *Booking) CanAssociateArtist(a *Artist) bool {
	return a != nil && a.ID == b.ArtistID
}

type ArtistSummary struct {
	ID         uuid.UUID `json:"id"`
	ArtistName string    `json:"artistName"`
	Genres     []string  `json:"genres"`
	Rate       Rate      `json:"rate"`
}

type VenueSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	City string    `json:"city,omitempty"`
}

type EventSummary struct {
	ID    uuid.UUID     `json:"id"`
	Name  string        `json:"name"`
	Start time.Time     `json:"start"`
	End   time.Time     `json:"end"`
	Venue *VenueSummary `json:"venue,omitempty"`
}

type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
}

// BookingView is a booking with its references resolved for display.
// Any summary may be nil when the referenced record is gone.
type BookingView struct {
	Booking
	Artist  *ArtistSummary `json:"artistInfo,omitempty"`
	Event   *EventSummary  `json:"eventInfo,omitempty"`
	Creator *UserSummary   `json:"bookedByInfo,omitempty"`
}
