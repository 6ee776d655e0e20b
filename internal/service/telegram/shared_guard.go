package telegram

import (
	"context"
	"time"

	pkgcache "SignalDesk/pkg/cache"
	applogger "SignalDesk/pkg/logger"
)

// claimTTL outlives the UTC day the key is scoped to, so stale claims expire
// on their own.
const claimTTL = 48 * time.Hour

// SharedGuard enforces one dispatch per signal per UTC day across replicas,
// using a cache-backed lock. When the cache is unreachable the guard fails
// open: a duplicate message beats a silently dropped one.
type SharedGuard struct {
	cache pkgcache.Service
	now   func() time.Time
	l     *applogger.Logger
}

func NewSharedGuard(c pkgcache.Service, now func() time.Time, l *applogger.Logger) *SharedGuard {
	if now == nil {
		now = time.Now
	}
	return &SharedGuard{cache: c, now: now, l: l}
}

func (g *SharedGuard) key(signalID string) string {
	day := g.now().UTC().Format("2006-01-02")
	return pkgcache.GenerateKeyWithParams("dispatch", day, signalID)
}

func (g *SharedGuard) Claim(signalID string) bool {
	ok, err := g.cache.TryLock(context.Background(), g.key(signalID), claimTTL)
	if err != nil {
		if g.l != nil {
			g.l.Warn("dispatch guard cache error", applogger.Error(err))
		}
		return true
	}
	return ok
}

func (g *SharedGuard) Release(signalID string) {
	_ = g.cache.Unlock(context.Background(), g.key(signalID))
}
