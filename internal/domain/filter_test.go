package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPage_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{"defaults", Page{}, Page{Page: 1, Limit: 10}},
		{"keeps values", Page{Page: 3, Limit: 25}, Page{Page: 3, Limit: 25}},
		{"caps limit", Page{Page: 1, Limit: 500}, Page{Page: 1, Limit: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(0, 0))
		})
	}

	assert.Equal(t, Page{Page: 1, Limit: 20}, Page{}.Normalize(20, 50))
	assert.Equal(t, Page{Page: 1, Limit: 50}, Page{Limit: 80}.Normalize(20, 50))
}

func TestPage_ValidateAndOffset(t *testing.T) {
	assert.NoError(t, Page{Page: 1, Limit: 10}.Validate())
	assert.ErrorIs(t, Page{Page: -1, Limit: 10}.Validate(), ErrInvalidPage)
	assert.ErrorIs(t, Page{Page: 1, Limit: -5}.Validate(), ErrInvalidLimit)

	assert.Equal(t, 0, Page{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, Page{Page: 3, Limit: 10}.Offset())
}

func TestFilters_Validate(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.AddDate(0, 1, 0)
	bad := BookingStatus("archived")
	ok := BookingConfirmed

	assert.NoError(t, ArtistBookingsFilter{Status: &ok, DateRange: DateRange{StartDate: &early, EndDate: &late}}.Validate())
	assert.ErrorIs(t, ArtistBookingsFilter{Status: &bad}.Validate(), ErrInvalidStatus)
	assert.ErrorIs(t, OrganizerBookingsFilter{DateRange: DateRange{StartDate: &late, EndDate: &early}}.Validate(), ErrInvalidDateRange)
	assert.ErrorIs(t, AllBookingsFilter{Status: &bad}.Validate(), ErrInvalidStatus)
	assert.NoError(t, AllBookingsFilter{DateRange: DateRange{StartDate: &early}}.Validate())
}
