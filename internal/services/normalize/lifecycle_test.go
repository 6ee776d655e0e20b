package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"SignalDesk/internal/domain/models"
)

func price(p float64) *float64 { return &p }

func TestMapStatusTable(t *testing.T) {
	cases := map[string]models.LifecycleState{
		"WAITING_FOR_ENTRY": models.StateWaitingForEntry,
		"pending":           models.StateWaitingForEntry,
		"  Executed  ":      models.StateEntryHit,
		"CLOSED_TP":         models.StateTPHit,
		"win":               models.StateTPHit,
		"LOSS":              models.StateSLHit,
		"canceled":          models.StateCancelled,
		"CANCELLED":         models.StateCancelled,
		"EXPIRED":           models.StateExpired,
		"":                  models.StateUnknown,
		"garbage✗":          models.StateUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, mapStatus(in), "status %q", in)
	}
}

func TestClassifyPriority(t *testing.T) {
	const entry, tp, sl = 1.1005, 1.1050, 1.0980

	tests := []struct {
		name     string
		status   string
		age      float64
		validity float64
		dir      models.Direction
		live     *float64
		want     models.LifecycleState
	}{
		{"explicit terminal beats expiry", "PROFIT", 500, 90, models.DirectionBuy, nil, models.StateTPHit},
		{"explicit terminal beats price cross", "LOSS", 1, 90, models.DirectionBuy, price(1.2), models.StateSLHit},
		{"age past validity expires", "ACTIVE", 91, 90, models.DirectionBuy, nil, models.StateExpired},
		{"within validity keeps status", "ACTIVE", 89, 90, models.DirectionBuy, nil, models.StateEntryHit},
		{"buy waiting arms on dip", "WAITING", 1, 90, models.DirectionBuy, price(1.1004), models.StateEntryHit},
		{"buy waiting stays above zone", "WAITING", 1, 90, models.DirectionBuy, price(1.1030), models.StateWaitingForEntry},
		{"buy active hits tp", "ACTIVE", 1, 90, models.DirectionBuy, price(1.1051), models.StateTPHit},
		{"buy active hits sl", "ACTIVE", 1, 90, models.DirectionBuy, price(1.0979), models.StateSLHit},
		{"buy dip straight through sl", "WAITING", 1, 90, models.DirectionBuy, price(1.0970), models.StateSLHit},
		{"sell waiting arms on rally", "WAITING", 1, 90, models.DirectionSell, price(1.1010), models.StateEntryHit},
		{"sell active hits tp below", "ACTIVE", 1, 90, models.DirectionSell, price(1.0975), models.StateTPHit},
		{"sell active hits sl above", "ACTIVE", 1, 90, models.DirectionSell, price(1.1055), models.StateSLHit},
		{"unknown status ignores live price", "whatever", 1, 90, models.DirectionBuy, price(1.2), models.StateUnknown},
		{"unknown status still expires", "whatever", 200, 90, models.DirectionBuy, nil, models.StateExpired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got models.LifecycleState
			if tc.dir == models.DirectionSell {
				// mirror the levels for sell: tp below entry, sl above
				got = classify(tc.status, tc.age, tc.validity, tc.dir, entry, 1.0980, 1.1050, tc.live)
			} else {
				got = classify(tc.status, tc.age, tc.validity, tc.dir, entry, tp, sl, tc.live)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	// Malformed inputs must always land on one of the seven states.
	inputs := []string{"", "???", "0", "nil", "TP", "profit ", "\n"}
	for _, s := range inputs {
		st := classify(s, -5, 0, models.DirectionSell, 0, 0, 0, nil)
		assert.NotEmpty(t, st)
	}
}
