package usecase

import (
	"context"
	"sync"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
)

const defaultLedgerCapacity = 50

// MemoryLedger is a bounded in-memory signal history, newest first. Repeated
// polls of the same record (same asset and generation time) are collapsed
// into one entry that tracks the latest observed state.
type MemoryLedger struct {
	capacity int

	mu      sync.RWMutex
	entries []models.NormalizedSignal
}

var _ drepo.Ledger = (*MemoryLedger)(nil)

func NewMemoryLedger(capacity int) *MemoryLedger {
	if capacity <= 0 {
		capacity = defaultLedgerCapacity
	}
	return &MemoryLedger{capacity: capacity}
}

func (m *MemoryLedger) Record(_ context.Context, sig models.NormalizedSignal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.ID() == sig.ID() {
			m.entries[i] = sig
			return nil
		}
	}
	m.entries = append([]models.NormalizedSignal{sig}, m.entries...)
	if len(m.entries) > m.capacity {
		m.entries = m.entries[:m.capacity]
	}
	return nil
}

func (m *MemoryLedger) History(_ context.Context, asset string, limit, offset int) ([]models.NormalizedSignal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.NormalizedSignal
	skipped := 0
	for _, e := range m.entries {
		if asset != "" && e.Asset != asset {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryLedger) Health(context.Context) error { return nil }

func (m *MemoryLedger) Close() error { return nil }
