package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	ErrInvalidPage      = errors.New("page must be at least 1")
	ErrInvalidLimit     = errors.New("limit must be between 1 and 100")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrInvalidStatus    = errors.New("invalid booking status")
)

// Page is a 1-indexed page request. Zero values mean "use the default".
type Page struct {
	Page  int
	Limit int
}

// Normalize fills zero values with defaults and caps the limit.
func (p Page) Normalize(defaultLimit, maxLimit int) Page {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func (p Page) Validate() error {
	if p.Page < 1 {
		return ErrInvalidPage
	}
	if p.Limit < 1 {
		return ErrInvalidLimit
	}
	return nil
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// DateRange filters on the booking window: StartDate bounds startTime from
// below, EndDate bounds endTime from above.
type DateRange struct {
	StartDate *time.Time
	EndDate   *time.Time
}

func (r DateRange) Validate() error {
	if r.StartDate != nil && r.EndDate != nil && r.StartDate.After(*r.EndDate) {
		return ErrInvalidDateRange
	}
	return nil
}

type ArtistBookingsFilter struct {
	Status *BookingStatus
	DateRange
}

type OrganizerBookingsFilter struct {
	Status  *BookingStatus
	EventID *uuid.UUID
	DateRange
}

type AllBookingsFilter struct {
	Status   *BookingStatus
	EventID  *uuid.UUID
	ArtistID *uuid.UUID
	DateRange
}

type SortOrder int

const (
	SortByStartAsc SortOrder = iota
	SortByCreatedDesc
)

// BookingQuery is the store-level form every list variant is reduced to.
type BookingQuery struct {
	ArtistID *uuid.UUID
	BookedBy *uuid.UUID
	EventID  *uuid.UUID
	Status   *BookingStatus
	DateRange
	Sort   SortOrder
	Limit  int
	Offset int
}

func validateStatus(s *BookingStatus) error {
	if s != nil && !s.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

func (f ArtistBookingsFilter) Validate() error {
	if err := validateStatus(f.Status); err != nil {
		return err
	}
	return f.DateRange.Validate()
}

func (f OrganizerBookingsFilter) Validate() error {
	if err := validateStatus(f.Status); err != nil {
		return err
	}
	return f.DateRange.Validate()
}

func (f AllBookingsFilter) Validate() error {
	if err := validateStatus(f.Status); err != nil {
		return err
	}
	return f.DateRange.Validate()
}

// BookingPage is one page of a booking listing.
type BookingPage struct {
	Results []BookingView `json:"results"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
}
