package httpgin

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
	"github.com/kirinyoku/gigbook/internal/service/booking"
)

var (
	errInvalidStartDate = &booking.Error{Kind: booking.ErrInvalidRequest, Msg: "Start date must be a valid date"}
	errInvalidEndDate   = &booking.Error{Kind: booking.ErrInvalidRequest, Msg: "End date must be a valid date"}
)

type CreateBookingRequest struct {
	Artist         string                `json:"artist" binding:"required,uuid"`
	Event          string                `json:"event" binding:"required,uuid"`
	BookingDetails BookingDetailsRequest `json:"bookingDetails"`
	Payment        PaymentRequest        `json:"payment"`
	Contract       *ContractRequest      `json:"contract"`
	Notes          string                `json:"notes" binding:"max=2000"`
}

type BookingDetailsRequest struct {
	StartTime           time.Time `json:"startTime" binding:"required"`
	EndTime             time.Time `json:"endTime" binding:"required"`
	SetDuration         int       `json:"setDuration"`
	SpecialRequirements string    `json:"specialRequirements" binding:"max=2000"`
}

type PaymentRequest struct {
	Amount        float64  `json:"amount"`
	Currency      string   `json:"currency" binding:"omitempty,len=3,alpha"`
	DepositAmount *float64 `json:"depositAmount"`
}

type ContractRequest struct {
	URL               string `json:"url" binding:"omitempty,url"`
	SignedByArtist    bool   `json:"signedByArtist"`
	SignedByOrganizer bool   `json:"signedByOrganizer"`
}

func (r CreateBookingRequest) input() booking.CreateInput {
	in := booking.CreateInput{
		ArtistID:            uuid.MustParse(r.Artist),
		EventID:             uuid.MustParse(r.Event),
		StartTime:           r.BookingDetails.StartTime,
		EndTime:             r.BookingDetails.EndTime,
		SetDuration:         r.BookingDetails.SetDuration,
		SpecialRequirements: r.BookingDetails.SpecialRequirements,
		Amount:              r.Payment.Amount,
		Currency:            r.Payment.Currency,
		DepositAmount:       r.Payment.DepositAmount,
		Notes:               r.Notes,
	}
	if r.Contract != nil {
		in.Contract = &domain.Contract{
			URL:               r.Contract.URL,
			SignedByArtist:    r.Contract.SignedByArtist,
			SignedByOrganizer: r.Contract.SignedByOrganizer,
		}
	}
	return in
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdatePaymentRequest struct {
	Status      string `json:"status" binding:"required"`
	DepositPaid *bool  `json:"depositPaid"`
}

// ListBookingsQuery holds the query string of the list endpoints. Dates
// accept RFC 3339 timestamps or plain YYYY-MM-DD days.
type ListBookingsQuery struct {
	Status    string `form:"status"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	EventID   string `form:"eventId" binding:"omitempty,uuid"`
	ArtistID  string `form:"artistId" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q ListBookingsQuery) status() (*domain.BookingStatus, error) {
	if q.Status == "" {
		return nil, nil
	}
	s, err := domain.ParseBookingStatus(strings.ToLower(q.Status))
	if err != nil {
		return nil, booking.ErrInvalidStatus
	}
	return &s, nil
}

func (q ListBookingsQuery) dateRange() (domain.DateRange, error) {
	var r domain.DateRange

	if q.StartDate != "" {
		t, err := parseDate(q.StartDate)
		if err != nil {
			return r, errInvalidStartDate
		}
		r.StartDate = &t
	}

	if q.EndDate != "" {
		t, err := parseDate(q.EndDate)
		if err != nil {
			return r, errInvalidEndDate
		}
		r.EndDate = &t
	}

	return r, nil
}

func (q ListBookingsQuery) page() domain.Page {
	return domain.Page{Page: q.Page, Limit: q.Limit}
}

func optionalID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type DataResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}
