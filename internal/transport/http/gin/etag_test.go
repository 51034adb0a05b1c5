package httpgin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEtagMatches(t *testing.T) {
	tag := `W/"abc"`

	assert.False(t, etagMatches("", tag))
	assert.True(t, etagMatches("*", tag))
	assert.True(t, etagMatches(`W/"abc"`, tag))
	assert.True(t, etagMatches(`"abc"`, tag))
	assert.True(t, etagMatches(`"zzz", W/"abc"`, tag))
	assert.False(t, etagMatches(`"abd"`, tag))
}
