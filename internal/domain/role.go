package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleArtist    Role = "artist"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleArtist, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return r, nil
}

// Capability is a coarse permission checked before a request reaches the
// booking engine. Ownership rules are evaluated by the engine itself.
type Capability string

const (
	CapViewBooking           Capability = "view_booking"
	CapCreateBooking         Capability = "create_booking"
	CapListAllBookings       Capability = "list_all_bookings"
	CapListArtistBookings    Capability = "list_artist_bookings"
	CapListOrganizerBookings Capability = "list_organizer_bookings"
	CapUpdateBookingStatus   Capability = "update_booking_status"
	CapConfirmBooking        Capability = "confirm_booking"
	CapRejectBooking         Capability = "reject_booking"
	CapCancelBooking         Capability = "cancel_booking"
	CapCompleteBooking       Capability = "complete_booking"
	CapUpdatePayment         Capability = "update_payment"
)

var everyone = []Role{RoleUser, RoleArtist, RoleOrganizer, RoleAdmin}

// capabilityRoles is the permission table. A capability missing from the
// table is granted to nobody.
var capabilityRoles = map[Capability][]Role{
	CapViewBooking:           everyone,
	CapCreateBooking:         {RoleOrganizer, RoleAdmin},
	CapListAllBookings:       {RoleAdmin},
	CapListArtistBookings:    {RoleArtist},
	CapListOrganizerBookings: {RoleOrganizer, RoleAdmin},
	CapUpdateBookingStatus:   everyone,
	CapConfirmBooking:        {RoleArtist},
	CapRejectBooking:         {RoleArtist},
	CapCancelBooking:         everyone,
	CapCompleteBooking:       {RoleOrganizer, RoleAdmin},
	CapUpdatePayment:         {RoleOrganizer, RoleAdmin},
}

// Can reports whether the role holds the capability.
func (r Role) Can(c Capability) bool {
	for _, allowed := range capabilityRoles[c] {
		if allowed == r {
			return true
		}
	}
	return false
}

// Caller is the authenticated identity on whose behalf an operation runs.
type Caller struct {
	ID   uuid.UUID
	Role Role
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }
