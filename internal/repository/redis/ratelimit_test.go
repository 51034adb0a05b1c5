package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anyArg is a placeholder for arguments that change on every call.
const anyArg = "*"

func matchArgs(expected, actual []interface{}) error {
	if len(expected) != len(actual) {
		return fmt.Errorf("args: want %v, got %v", expected, actual)
	}
	for i := range expected {
		if fmt.Sprint(expected[i]) == anyArg {
			continue
		}
		if fmt.Sprint(expected[i]) != fmt.Sprint(actual[i]) {
			return fmt.Errorf("arg %d: want %v, got %v", i, expected[i], actual[i])
		}
	}
	return nil
}

func TestSlidingWindowLimiter_Allow(t *testing.T) {
	sha := redis.NewScript(luaSlidingWindow).Hash()
	key := KeyRateLimit("bookings:create", "caller")

	tests := []struct {
		name        string
		result      []interface{}
		wantAllowed bool
		wantCurrent int64
		wantRetry   time.Duration
	}{
		{
			name:        "under the limit",
			result:      []interface{}{int64(1), int64(3), int64(0)},
			wantAllowed: true,
			wantCurrent: 3,
		},
		{
			name:        "over the limit",
			result:      []interface{}{int64(0), int64(6), int64(1500)},
			wantAllowed: false,
			wantCurrent: 6,
			wantRetry:   1500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			l := NewSlidingWindowLimiter(db, "bookings:create", 5, time.Minute)

			mock.CustomMatch(matchArgs).
				ExpectEvalSha(sha, []string{key}, anyArg, int64(60000), 5, anyArg).
				SetVal(tt.result)

			allowed, current, retry, err := l.Allow(context.Background(), "caller")
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, allowed)
			assert.Equal(t, tt.wantCurrent, current)
			assert.Equal(t, tt.wantRetry, retry)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSlidingWindowLimiter_AllowError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewSlidingWindowLimiter(db, "bookings:create", 5, time.Minute)

	mock.CustomMatch(matchArgs).
		ExpectEvalSha(redis.NewScript(luaSlidingWindow).Hash(), []string{KeyRateLimit("bookings:create", "c")}, anyArg, int64(60000), 5, anyArg).
		SetErr(errors.New("connection reset"))

	allowed, _, _, err := l.Allow(context.Background(), "c")
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestToInt(t *testing.T) {
	assert.Equal(t, int64(7), toInt(int64(7)))
	assert.Equal(t, int64(7), toInt(7))
	assert.Equal(t, int64(7), toInt(7.0))
	assert.Equal(t, int64(42), toInt("42"))
	assert.Equal(t, int64(0), toInt(nil))
}

func TestSlidingWindowLimiter_AllowMalformedReply(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewSlidingWindowLimiter(db, "bookings:create", 5, time.Minute)

	mock.CustomMatch(matchArgs).
		ExpectEvalSha(redis.NewScript(luaSlidingWindow).Hash(), []string{KeyRateLimit("bookings:create", "c")}, anyArg, int64(60000), 5, anyArg).
		SetVal([]interface{}{int64(1)})

	allowed, _, _, err := l.Allow(context.Background(), "c")
	assert.Error(t, err)
	assert.False(t, allowed)
}
