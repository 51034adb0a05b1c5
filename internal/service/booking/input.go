package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
)

// CreateInput is the payload of a new booking.
type CreateInput struct {
	ArtistID            uuid.UUID
	EventID             uuid.UUID
	StartTime           time.Time
	EndTime             time.Time
	SetDuration         int
	SpecialRequirements string
	Amount              float64
	Currency            string
	DepositAmount       *float64
	Contract            *domain.Contract
	Notes               string
}

// Validate checks the payload rules that need no store lookup.
func (in CreateInput) Validate() error {
	switch {
	case !in.EndTime.After(in.StartTime):
		return ErrEndBeforeStart
	case in.SetDuration < 1:
		return ErrInvalidSetDuration
	case !(in.Amount > 0):
		return ErrInvalidAmount
	case in.DepositAmount != nil && *in.DepositAmount < 0:
		return ErrInvalidDeposit
	case in.DepositAmount != nil && *in.DepositAmount >= in.Amount:
		return ErrDepositTooLarge
	}

	return nil
}

func (in CreateInput) booking(bookedBy uuid.UUID) *domain.Booking {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	return &domain.Booking{
		ID:       uuid.New(),
		ArtistID: in.ArtistID,
		EventID:  in.EventID,
		BookedBy: bookedBy,
		BookingDetails: domain.BookingDetails{
			StartTime:           in.StartTime,
			EndTime:             in.EndTime,
			SetDuration:         in.SetDuration,
			SpecialRequirements: in.SpecialRequirements,
		},
		Payment: domain.Payment{
			Amount:        in.Amount,
			Currency:      currency,
			Status:        domain.PaymentPending,
			DepositAmount: in.DepositAmount,
		},
		Status:   domain.BookingPending,
		Contract: in.Contract,
		Notes:    in.Notes,
	}
}

// PaymentUpdate changes the payment bookkeeping of a booking. A nil
// DepositPaid leaves the flag untouched.
type PaymentUpdate struct {
	Status      domain.PaymentStatus
	DepositPaid *bool
}

// ParseID checks that s is a well-formed booking id.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}

	return id, nil
}
