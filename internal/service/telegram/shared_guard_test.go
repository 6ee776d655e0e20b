package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	pkgcache "SignalDesk/pkg/cache"
)

func TestSharedGuardOncePerDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	g := NewSharedGuard(pkgcache.NewMemoryCache(), func() time.Time { return now }, nil)

	assert.True(t, g.Claim("sig-1"))
	assert.False(t, g.Claim("sig-1"))
	assert.True(t, g.Claim("sig-2"))
}

func TestSharedGuardDayScopedKeys(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	g := NewSharedGuard(pkgcache.NewMemoryCache(), func() time.Time { return now }, nil)

	assert.True(t, g.Claim("sig-1"))
	now = now.Add(2 * time.Hour)
	assert.True(t, g.Claim("sig-1"), "next UTC day claims under a fresh key")
}

func TestSharedGuardReleaseAllowsRetry(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	g := NewSharedGuard(pkgcache.NewMemoryCache(), func() time.Time { return now }, nil)

	assert.True(t, g.Claim("sig-1"))
	g.Release("sig-1")
	assert.True(t, g.Claim("sig-1"))
}
