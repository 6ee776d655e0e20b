package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDispatchGuardOncePerDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	g := NewDispatchGuard(func() time.Time { return now })

	assert.True(t, g.Claim("sig-1"))
	assert.False(t, g.Claim("sig-1"), "same signal must not dispatch twice in a day")
	assert.True(t, g.Claim("sig-2"), "a different signal is unaffected")
}

func TestDispatchGuardResetsAtMidnight(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 50, 0, 0, time.UTC)
	g := NewDispatchGuard(func() time.Time { return now })

	assert.True(t, g.Claim("sig-1"))
	now = now.Add(20 * time.Minute) // crosses into 2025-03-11
	assert.True(t, g.Claim("sig-1"), "a new UTC day clears the guard")
}

func TestDispatchGuardRelease(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	g := NewDispatchGuard(func() time.Time { return now })

	assert.True(t, g.Claim("sig-1"))
	g.Release("sig-1")
	assert.True(t, g.Claim("sig-1"), "released claims may be retried")
}
