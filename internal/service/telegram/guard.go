package telegram

import (
	"sync"
	"time"
)

// Guard decides whether a signal may be dispatched. Claim marks the signal
// as dispatched when it answers true; Release undoes a claim after a failed
// delivery.
type Guard interface {
	Claim(signalID string) bool
	Release(signalID string)
}

// DispatchGuard enforces one dispatch per signal per UTC day. The engine
// republishes the same record on every poll; subscribers should see it once.
type DispatchGuard struct {
	now func() time.Time

	mu   sync.Mutex
	day  string
	sent map[string]struct{}
}

func NewDispatchGuard(now func() time.Time) *DispatchGuard {
	if now == nil {
		now = time.Now
	}
	return &DispatchGuard{now: now, sent: make(map[string]struct{})}
}

// Claim reports whether signalID may be dispatched today and, if so, marks
// it as dispatched.
func (g *DispatchGuard) Claim(signalID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	day := g.now().UTC().Format("2006-01-02")
	if day != g.day {
		g.day = day
		g.sent = make(map[string]struct{})
	}
	if _, dup := g.sent[signalID]; dup {
		return false
	}
	g.sent[signalID] = struct{}{}
	return true
}

// Release forgets a claim so a failed dispatch can be retried.
func (g *DispatchGuard) Release(signalID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sent, signalID)
}
