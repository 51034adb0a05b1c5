package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
	"github.com/kirinyoku/gigbook/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func storedBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:       uuid.New(),
		ArtistID: uuid.New(),
		EventID:  uuid.New(),
		BookedBy: uuid.New(),
		Status:   status,
	}
}

func withStatus(b *domain.Booking, s domain.BookingStatus) *domain.Booking {
	cp := *b
	cp.Status = s
	return &cp
}

func TestService_UpdateStatus_ArtistLifecycle(t *testing.T) {
	f := newFixture(t)
	b := storedBooking(domain.BookingPending)
	artistUser := domain.Caller{ID: uuid.New(), Role: domain.RoleArtist}
	profile := &domain.Artist{ID: b.ArtistID, UserID: artistUser.ID}
	confirmed := withStatus(b, domain.BookingConfirmed)
	canceled := withStatus(b, domain.BookingCanceled)

	f.repos.ArtistRepo.On("FindByUser", mock.Anything, artistUser.ID).Return(profile, nil)
	f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil).Once()
	f.repos.BookingRepo.On("UpdateStatus", mock.Anything, b.ID, domain.BookingConfirmed).Return(confirmed, nil).Once()
	f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(confirmed, nil).Once()
	f.repos.BookingRepo.On("UpdateStatus", mock.Anything, b.ID, domain.BookingCanceled).Return(canceled, nil).Once()
	f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(canceled, nil).Once()
	f.cache.On("InvalidateBooking", mock.Anything, b.ID).Return(nil).Twice()

	got, err := f.svc.UpdateStatus(context.Background(), b.ID.String(), artistUser, domain.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)

	got, err = f.svc.UpdateStatus(context.Background(), b.ID.String(), artistUser, domain.BookingCanceled)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCanceled, got.Status)

	_, err = f.svc.UpdateStatus(context.Background(), b.ID.String(), artistUser, domain.BookingConfirmed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	msg, _ := Message(err)
	assert.Equal(t, "Cannot update a canceled booking", msg)
}

func TestService_UpdateStatus_UnrelatedOrganizerForbidden(t *testing.T) {
	f := newFixture(t)
	b := storedBooking(domain.BookingPending)

	f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)

	_, err := f.svc.UpdateStatus(context.Background(), b.ID.String(), organizer(), domain.BookingCanceled)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	msg, _ := Message(err)
	assert.Equal(t, "You are not authorized to update this booking", msg)
	f.repos.BookingRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpdateStatus_AuthorizationBeforeTerminalCheck(t *testing.T) {
	f := newFixture(t)
	b := storedBooking(domain.BookingCanceled)

	f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)

	_, err := f.svc.UpdateStatus(context.Background(), b.ID.String(), organizer(), domain.BookingConfirmed)

	assert.ErrorIs(t, err, ErrNotAuthorizedBooking)
}

func TestService_UpdateStatus_ArtistWithoutMatchingProfile(t *testing.T) {
	b := storedBooking(domain.BookingPending)
	caller := domain.Caller{ID: uuid.New(), Role: domain.RoleArtist}

	tests := []struct {
		name    string
		profile *domain.Artist
	}{
		{"no profile", nil},
		{"other profile", &domain.Artist{ID: uuid.New(), UserID: caller.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)
			f.repos.ArtistRepo.On("FindByUser", mock.Anything, caller.ID).Return(tt.profile, nil)

			_, err := f.svc.UpdateStatus(context.Background(), b.ID.String(), caller, domain.BookingConfirmed)

			assert.ErrorIs(t, err, ErrForbidden)
		})
	}
}

func TestService_UpdateStatus_CompletedLock(t *testing.T) {
	admin := domain.Caller{ID: uuid.New(), Role: domain.RoleAdmin}
	others := []domain.BookingStatus{
		domain.BookingPending,
		domain.BookingConfirmed,
		domain.BookingRejected,
		domain.BookingCompleted,
	}

	for _, next := range others {
		t.Run(string(next), func(t *testing.T) {
			f := newFixture(t)
			b := storedBooking(domain.BookingCompleted)
			f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)

			_, err := f.svc.UpdateStatus(context.Background(), b.ID.String(), admin, next)

			assert.ErrorIs(t, err, ErrCompletedBooking)
		})
	}

	t.Run("canceled", func(t *testing.T) {
		f := newFixture(t)
		b := storedBooking(domain.BookingCompleted)
		f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)
		f.repos.BookingRepo.On("UpdateStatus", mock.Anything, b.ID, domain.BookingCanceled).
			Return(withStatus(b, domain.BookingCanceled), nil)
		f.cache.On("InvalidateBooking", mock.Anything, b.ID).Return(nil)

		got, err := f.svc.UpdateStatus(context.Background(), b.ID.String(), admin, domain.BookingCanceled)

		require.NoError(t, err)
		assert.Equal(t, domain.BookingCanceled, got.Status)
	})
}

func TestService_UpdateStatus_CreatorCompletes(t *testing.T) {
	f := newFixture(t)
	b := storedBooking(domain.BookingConfirmed)
	creator := domain.Caller{ID: b.BookedBy, Role: domain.RoleOrganizer}

	f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)
	f.repos.BookingRepo.On("UpdateStatus", mock.Anything, b.ID, domain.BookingCompleted).
		Return(withStatus(b, domain.BookingCompleted), nil)
	f.cache.On("InvalidateBooking", mock.Anything, b.ID).Return(nil)

	got, err := f.svc.UpdateStatus(context.Background(), b.ID.String(), creator, domain.BookingCompleted)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, got.Status)
}

func rejectedWithWindow() *domain.Booking {
	b := storedBooking(domain.BookingRejected)
	b.BookingDetails = domain.BookingDetails{
		StartTime: eventStart.Add(time.Hour),
		EndTime:   eventStart.Add(3 * time.Hour),
	}
	return b
}

func TestService_UpdateStatus_ReopenRejected(t *testing.T) {
	f := newFixture(t)
	b := rejectedWithWindow()
	creator := domain.Caller{ID: b.BookedBy, Role: domain.RoleOrganizer}
	d := b.BookingDetails
	self := *b
	adjacent := activeBooking(b.ArtistID, d.EndTime, d.EndTime.Add(time.Hour))

	f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)
	f.repos.BookingRepo.On("ListActiveForArtist", mock.Anything, b.ArtistID, d.StartTime, d.EndTime).
		Return([]domain.Booking{self, adjacent}, nil)
	f.repos.BookingRepo.On("UpdateStatus", mock.Anything, b.ID, domain.BookingPending).
		Return(withStatus(b, domain.BookingPending), nil)
	f.cache.On("InvalidateBooking", mock.Anything, b.ID).Return(nil)

	got, err := f.svc.UpdateStatus(context.Background(), b.ID.String(), creator, domain.BookingPending)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)
}

func TestService_UpdateStatus_ReopenRejectedArtistBusy(t *testing.T) {
	f := newFixture(t)
	b := rejectedWithWindow()
	creator := domain.Caller{ID: b.BookedBy, Role: domain.RoleOrganizer}
	d := b.BookingDetails
	taken := activeBooking(b.ArtistID, d.StartTime.Add(30*time.Minute), d.EndTime.Add(-30*time.Minute))

	f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)
	f.repos.BookingRepo.On("ListActiveForArtist", mock.Anything, b.ArtistID, d.StartTime, d.EndTime).
		Return([]domain.Booking{taken}, nil)

	_, err := f.svc.UpdateStatus(context.Background(), b.ID.String(), creator, domain.BookingPending)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrArtistBusy)
	msg, ok := Message(err)
	assert.True(t, ok)
	assert.Equal(t, "Artist already has a booking during this time", msg)
	f.repos.BookingRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpdateStatus_ExclusionViolationIsConflict(t *testing.T) {
	f := newFixture(t)
	b := rejectedWithWindow()
	creator := domain.Caller{ID: b.BookedBy, Role: domain.RoleOrganizer}
	d := b.BookingDetails

	f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)
	f.repos.BookingRepo.On("ListActiveForArtist", mock.Anything, b.ArtistID, d.StartTime, d.EndTime).
		Return([]domain.Booking{}, nil)
	f.repos.BookingRepo.On("UpdateStatus", mock.Anything, b.ID, domain.BookingPending).
		Return(nil, fmt.Errorf("postgres.BookingRepo.UpdateStatus:%w", repository.ErrOverlap))

	_, err := f.svc.UpdateStatus(context.Background(), b.ID.String(), creator, domain.BookingPending)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrArtistBusy)
	assert.NotErrorIs(t, err, repository.ErrOverlap)
}

func TestService_UpdateStatus_InvalidArguments(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), "42", organizer(), domain.BookingConfirmed)
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = f.svc.UpdateStatus(context.Background(), uuid.NewString(), organizer(), domain.BookingStatus("archived"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	assert.Zero(t, f.uow.Calls)
}

func TestService_UpdateStatus_BookingNotFound(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	f.repos.BookingRepo.On("GetForUpdate", mock.Anything, id).Return(nil, repository.ErrNotFound)

	_, err := f.svc.UpdateStatus(context.Background(), id.String(), organizer(), domain.BookingCanceled)

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_UpdatePayment(t *testing.T) {
	paid := domain.PaymentPaid
	depositPaid := true

	t.Run("creator marks paid", func(t *testing.T) {
		f := newFixture(t)
		b := storedBooking(domain.BookingConfirmed)
		creator := &domain.User{ID: b.BookedBy, Role: domain.RoleOrganizer}
		updated := *b
		updated.Payment.Status = paid

		f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)
		f.repos.UserRepo.On("FindByID", mock.Anything, creator.ID).Return(creator, nil)
		f.repos.BookingRepo.On("UpdatePayment", mock.Anything, b.ID, paid, (*bool)(nil)).Return(&updated, nil)
		f.cache.On("InvalidateBooking", mock.Anything, b.ID).Return(nil)

		got, err := f.svc.UpdatePayment(context.Background(), b.ID.String(), creator.ID, PaymentUpdate{Status: paid})

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPaid, got.Payment.Status)
	})

	t.Run("any organizer with deposit flag", func(t *testing.T) {
		f := newFixture(t)
		b := storedBooking(domain.BookingCanceled)
		other := &domain.User{ID: uuid.New(), Role: domain.RoleOrganizer}

		f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)
		f.repos.UserRepo.On("FindByID", mock.Anything, other.ID).Return(other, nil)
		f.repos.BookingRepo.On("UpdatePayment", mock.Anything, b.ID, paid, &depositPaid).Return(b, nil)
		f.cache.On("InvalidateBooking", mock.Anything, b.ID).Return(nil)

		_, err := f.svc.UpdatePayment(context.Background(), b.ID.String(), other.ID, PaymentUpdate{
			Status:      paid,
			DepositPaid: &depositPaid,
		})

		require.NoError(t, err)
	})

	t.Run("unrelated artist forbidden", func(t *testing.T) {
		f := newFixture(t)
		b := storedBooking(domain.BookingPending)
		artist := &domain.User{ID: uuid.New(), Role: domain.RoleArtist}

		f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)
		f.repos.UserRepo.On("FindByID", mock.Anything, artist.ID).Return(artist, nil)

		_, err := f.svc.UpdatePayment(context.Background(), b.ID.String(), artist.ID, PaymentUpdate{Status: paid})

		assert.ErrorIs(t, err, ErrForbidden)
		msg, _ := Message(err)
		assert.Equal(t, "You are not authorized to update this payment", msg)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		b := storedBooking(domain.BookingPending)
		id := uuid.New()

		f.repos.BookingRepo.On("GetForUpdate", mock.Anything, b.ID).Return(b, nil)
		f.repos.UserRepo.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := f.svc.UpdatePayment(context.Background(), b.ID.String(), id, PaymentUpdate{Status: paid})

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("invalid payment status", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.UpdatePayment(context.Background(), uuid.NewString(), uuid.New(), PaymentUpdate{Status: "settled"})

		assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
		assert.Zero(t, f.uow.Calls)
	})
}
