package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"SignalDesk/internal/domain/models"
	"SignalDesk/pkg/util"
)

// Canonical field names used as keys into the synonym table.
const (
	FieldAsset      = "asset"
	FieldDirection  = "direction"
	FieldEntry      = "entry"
	FieldTP         = "tp"
	FieldSL         = "sl"
	FieldConfidence = "confidence"
	FieldTimeframe  = "timeframe"
	FieldSession    = "session"
	FieldStrategy   = "strategy"
	FieldTimestamp  = "timestamp"
	FieldStatus     = "status"
	FieldValidity   = "validity"
)

// DefaultSynonyms maps each canonical field to the ordered upstream key list
// probed during resolution. First present, non-null, non-empty value wins.
// The ordering is part of the contract: e.g. execution_price outranks
// signal_price for entry because executed records carry both.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		FieldAsset:      {"asset", "symbol", "pair", "instrument", "market"},
		FieldDirection:  {"direction", "side", "action", "position"},
		FieldEntry:      {"entry", "entry_price", "entry_zone", "execution_price", "signal_price", "price"},
		FieldTP:         {"tp", "take_profit", "target", "tp_price"},
		FieldSL:         {"sl", "stop_loss", "stop", "sl_price"},
		FieldConfidence: {"confidence", "conf", "score", "probability"},
		FieldTimeframe:  {"timeframe", "tf", "interval"},
		FieldSession:    {"session", "trading_session"},
		FieldStrategy:   {"strategy", "strategy_name", "source"},
		FieldTimestamp:  {"generated_at", "generatedAt", "executed_at", "executedAt", "signal_time", "signalTime", "timestamp"},
		FieldStatus:     {"status", "state", "result", "outcome"},
		FieldValidity:   {"validity_minutes", "validity", "validity_min"},
	}
}

// resolver probes raw records through the synonym table.
type resolver struct {
	raw      models.RawSignal
	synonyms map[string][]string
}

func newResolver(raw models.RawSignal, overrides map[string][]string) resolver {
	syn := DefaultSynonyms()
	for field, keys := range overrides {
		if len(keys) > 0 {
			syn[field] = keys
		}
	}
	return resolver{raw: raw, synonyms: syn}
}

// lookup returns the first present, non-nil value for the canonical field.
func (r resolver) lookup(field string) (any, bool) {
	for _, key := range r.synonyms[field] {
		v, ok := r.raw[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// str resolves the field as a trimmed string; def when absent.
func (r resolver) str(field, def string) string {
	v, ok := r.lookup(field)
	if !ok {
		return def
	}
	s, ok := coerceString(v)
	if !ok || s == "" {
		return def
	}
	return s
}

// num resolves the field as a float64.
func (r resolver) num(field string) (float64, any, bool) {
	v, ok := r.lookup(field)
	if !ok {
		return 0, nil, false
	}
	f, ok := coerceFloat(v)
	return f, v, ok
}

// when resolves the field as a timestamp: RFC3339 variants, unix seconds, or
// unix milliseconds for large numeric values.
func (r resolver) when(field string) (time.Time, bool) {
	v, ok := r.lookup(field)
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case string:
		return util.ParseTime(t)
	case float64:
		return unixTime(int64(t)), true
	case int64:
		return unixTime(t), true
	case int:
		return unixTime(int64(t)), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return unixTime(i), true
		}
	}
	return time.Time{}, false
}

func unixTime(ts int64) time.Time {
	if ts > 1e11 { // ms
		ts = ts / 1000
	}
	return time.Unix(ts, 0).UTC()
}

func coerceString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	default:
		return "", false
	}
}

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, isFinite(n)
	case float32:
		return float64(n), isFinite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && isFinite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && isFinite(f)
	default:
		return 0, false
	}
}
