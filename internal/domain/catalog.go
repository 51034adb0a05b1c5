package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Role      Role
	CreatedAt time.Time
}

type Rate struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Per      string  `json:"per"`
}

type Artist struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ArtistName string
	Genres     []string
	Rate       Rate
}

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCanceled  EventStatus = "canceled"
	EventCompleted EventStatus = "completed"
)

type Event struct {
	ID          uuid.UUID
	Name        string
	VenueID     uuid.UUID
	OrganizerID uuid.UUID
	Start       time.Time
	End         time.Time
	Status      EventStatus
}

// Contains reports whether [start, end] lies within the event's window.
func (e *Event) Contains(start, end time.Time) bool {
	return !start.Before(e.Start) && !end.After(e.End)
}

type Venue struct {
	ID   uuid.UUID
	Name string
	City string
}
