package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_Claim(t *testing.T) {
	const key = "gigbook:v1:idem:bookings:u:k"

	tests := []struct {
		name        string
		setup       func(m redismock.ClientMock)
		wantState   ClaimState
		wantPayload string
		wantErr     bool
	}{
		{
			name: "fresh key is claimed",
			setup: func(m redismock.ClientMock) {
				m.ExpectGet(key).RedisNil()
				m.ExpectSetNX(key, lockValue, time.Minute).SetVal(true)
			},
			wantState: Claimed,
		},
		{
			name: "finished request is replayed",
			setup: func(m redismock.ClientMock) {
				m.ExpectGet(key).SetVal(resultPrefix + `{"status":201}`)
			},
			wantState:   Replayed,
			wantPayload: `{"status":201}`,
		},
		{
			name: "held lock is in flight",
			setup: func(m redismock.ClientMock) {
				m.ExpectGet(key).SetVal(lockValue)
				m.ExpectSetNX(key, lockValue, time.Minute).SetVal(false)
				m.ExpectGet(key).SetVal(lockValue)
			},
			wantState: InFlight,
		},
		{
			name: "lost race to a finished request",
			setup: func(m redismock.ClientMock) {
				m.ExpectGet(key).RedisNil()
				m.ExpectSetNX(key, lockValue, time.Minute).SetVal(false)
				m.ExpectGet(key).SetVal(resultPrefix + "done")
			},
			wantState:   Replayed,
			wantPayload: "done",
		},
		{
			name: "redis error",
			setup: func(m redismock.ClientMock) {
				m.ExpectGet(key).RedisNil()
				m.ExpectSetNX(key, lockValue, time.Minute).SetErr(errors.New("timeout"))
			},
			wantState: InFlight,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			s := NewIdempotencyStore(db, 0, 0)
			tt.setup(mock)

			state, payload, err := s.Claim(context.Background(), key)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantState, state)
			assert.Equal(t, tt.wantPayload, payload)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIdempotencyStore_SaveAndRelease(t *testing.T) {
	const key = "k"

	db, mock := redismock.NewClientMock()
	s := NewIdempotencyStore(db, time.Hour, time.Second)

	mock.ExpectSet(key, resultPrefix+`{"id":"1"}`, time.Hour).SetVal("OK")
	mock.ExpectDel(key).SetVal(1)

	require.NoError(t, s.SaveResult(context.Background(), key, `{"id":"1"}`))
	require.NoError(t, s.Release(context.Background(), key))
	assert.NoError(t, mock.ExpectationsWereMet())
}
