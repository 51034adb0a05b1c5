package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testView(id uuid.UUID) *domain.BookingView {
	start := time.Date(2026, 7, 1, 20, 0, 0, 0, time.UTC)
	return &domain.BookingView{
		Booking: domain.Booking{
			ID:       id,
			ArtistID: uuid.New(),
			EventID:  uuid.New(),
			BookedBy: uuid.New(),
			BookingDetails: domain.BookingDetails{
				StartTime:   start,
				EndTime:     start.Add(2 * time.Hour),
				SetDuration: 90,
			},
			Payment: domain.Payment{Amount: 500, Currency: "USD", Status: domain.PaymentPending},
			Status:  domain.BookingPending,
		},
		Artist: &domain.ArtistSummary{ID: uuid.New(), ArtistName: "The Band"},
	}
}

func TestCache_LoadBookingView_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db, time.Minute)

	id := uuid.New()
	want := testView(id)
	b, err := json.Marshal(want)
	require.NoError(t, err)

	mock.ExpectGet(KeyBookingView(id)).SetVal(string(b))

	got, err := c.LoadBookingView(context.Background(), id, func(context.Context) (*domain.BookingView, error) {
		t.Fatal("loader must not run on a hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, domain.BookingPending, got.Status)
	assert.Equal(t, "The Band", got.Artist.ArtistName)
	assert.True(t, want.BookingDetails.StartTime.Equal(got.BookingDetails.StartTime))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_LoadBookingView_MissStoresView(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db, time.Minute)

	id := uuid.New()
	want := testView(id)
	b, err := json.Marshal(want)
	require.NoError(t, err)

	key := KeyBookingView(id)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectGet(key).RedisNil()
	mock.ExpectEvalSha(
		redis.NewScript(luaSetUnfenced).Hash(),
		[]string{key, KeyBookingFence(id)},
		string(b), time.Minute.Milliseconds(),
	).SetVal(int64(1))

	calls := 0
	got, err := c.LoadBookingView(context.Background(), id, func(context.Context) (*domain.BookingView, error) {
		calls++
		return want, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, 1, calls)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_LoadBookingView_FencedStoreStillServesLoad(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db, time.Minute)

	id := uuid.New()
	want := testView(id)
	b, err := json.Marshal(want)
	require.NoError(t, err)

	key := KeyBookingView(id)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectGet(key).RedisNil()
	// fence present: the script declines to store
	mock.ExpectEvalSha(
		redis.NewScript(luaSetUnfenced).Hash(),
		[]string{key, KeyBookingFence(id)},
		string(b), time.Minute.Milliseconds(),
	).SetVal(int64(0))

	got, err := c.LoadBookingView(context.Background(), id, func(context.Context) (*domain.BookingView, error) {
		return want, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_LoadBookingView_LoaderErrorNotCached(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db, time.Minute)

	id := uuid.New()
	key := KeyBookingView(id)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectGet(key).RedisNil()

	errGone := errors.New("gone")
	_, err := c.LoadBookingView(context.Background(), id, func(context.Context) (*domain.BookingView, error) {
		return nil, errGone
	})
	assert.ErrorIs(t, err, errGone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_LoadBookingView_RedisDownFallsBack(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db, time.Minute)

	id := uuid.New()
	want := testView(id)
	mock.ExpectGet(KeyBookingView(id)).SetErr(errors.New("connection refused"))

	got, err := c.LoadBookingView(context.Background(), id, func(context.Context) (*domain.BookingView, error) {
		return want, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_InvalidateBooking(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db, 0)

	id := uuid.New()
	mock.ExpectSet(KeyBookingFence(id), "1", fenceTTL).SetVal("OK")
	mock.ExpectDel(KeyBookingView(id)).SetVal(1)

	require.NoError(t, c.InvalidateBooking(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_InvalidateBooking_FenceFailure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db, 0)

	id := uuid.New()
	mock.ExpectSet(KeyBookingFence(id), "1", fenceTTL).SetErr(errors.New("read only replica"))

	assert.Error(t, c.InvalidateBooking(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_DefaultViewTTL(t *testing.T) {
	db, _ := redismock.NewClientMock()
	assert.Equal(t, 30*time.Second, New(db, 0).viewTTL)
	assert.Equal(t, 5*time.Second, New(db, 5*time.Second).viewTTL)
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("7f0b8c3e-2f4a-4d3b-9a51-0c2f1e6d9b11")

	assert.Equal(t, "gigbook:v1:booking:7f0b8c3e-2f4a-4d3b-9a51-0c2f1e6d9b11:view", KeyBookingView(id))
	assert.Equal(t, "gigbook:v1:booking:7f0b8c3e-2f4a-4d3b-9a51-0c2f1e6d9b11:fence", KeyBookingFence(id))
	assert.Equal(t, "gigbook:v1:rl:bookings:create:"+id.String(), KeyRateLimit("bookings:create", id.String()))
	assert.Equal(t, "gigbook:v1:idem:bookings:"+id.String()+":abc", KeyIdemCreateBooking(id, "abc"))
}
