package normalize

import (
	"strings"

	"SignalDesk/internal/domain/models"
)

// statusTable maps free-form upstream status text to lifecycle states. The
// table is fixed: anything not listed resolves to UNKNOWN, never an error.
var statusTable = map[string]models.LifecycleState{
	"WAITING_FOR_ENTRY": models.StateWaitingForEntry,
	"WAITING":           models.StateWaitingForEntry,
	"PENDING":           models.StateWaitingForEntry,
	"NEW":               models.StateWaitingForEntry,
	"AWAITING_ENTRY":    models.StateWaitingForEntry,

	"ENTRY_HIT": models.StateEntryHit,
	"ACTIVE":    models.StateEntryHit,
	"EXECUTED":  models.StateEntryHit,
	"OPEN":      models.StateEntryHit,
	"FILLED":    models.StateEntryHit,
	"RUNNING":   models.StateEntryHit,

	"TP_HIT":     models.StateTPHit,
	"PROFIT":     models.StateTPHit,
	"CLOSED_TP":  models.StateTPHit,
	"WIN":        models.StateTPHit,
	"TARGET_HIT": models.StateTPHit,

	"SL_HIT":    models.StateSLHit,
	"LOSS":      models.StateSLHit,
	"CLOSED_SL": models.StateSLHit,
	"STOPPED":   models.StateSLHit,
	"STOP_HIT":  models.StateSLHit,

	"EXPIRED": models.StateExpired,

	"CANCELLED": models.StateCancelled,
	"CANCELED":  models.StateCancelled,
	"ABORTED":   models.StateCancelled,
}

// mapStatus resolves raw status text through the enum table. Total: any
// input yields a state.
func mapStatus(status string) models.LifecycleState {
	if st, ok := statusTable[strings.ToUpper(strings.TrimSpace(status))]; ok {
		return st
	}
	return models.StateUnknown
}

// classify derives the lifecycle state for one observation. Priority:
// explicit terminal status, then expiry by age, then live-price crossing for
// open states, then the raw status table. Total for any input.
func classify(status string, ageMin, validityMin float64, dir models.Direction, entryMid, tp, sl float64, livePrice *float64) models.LifecycleState {
	base := mapStatus(status)
	if base.Terminal() {
		return base
	}
	if validityMin > 0 && ageMin > validityMin {
		return models.StateExpired
	}
	if livePrice != nil && base.Open() {
		return cross(base, dir, *livePrice, entryMid, tp, sl)
	}
	return base
}

// cross applies price-crossing transitions to an open state. For BUY the
// entry fills on a dip to the zone, then tp above / sl below resolve; SELL is
// the mirror.
func cross(state models.LifecycleState, dir models.Direction, price, entryMid, tp, sl float64) models.LifecycleState {
	if dir == models.DirectionBuy {
		if state == models.StateWaitingForEntry && price <= entryMid {
			state = models.StateEntryHit
		}
		if state == models.StateEntryHit {
			if price >= tp {
				return models.StateTPHit
			}
			if price <= sl {
				return models.StateSLHit
			}
		}
		return state
	}
	if state == models.StateWaitingForEntry && price >= entryMid {
		state = models.StateEntryHit
	}
	if state == models.StateEntryHit {
		if price <= tp {
			return models.StateTPHit
		}
		if price >= sl {
			return models.StateSLHit
		}
	}
	return state
}
