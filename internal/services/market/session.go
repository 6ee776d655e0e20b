package market

import (
	"strings"
	"time"
)

// IsOpen reports whether the forex market is open at t: Sunday 22:00 UTC
// through Friday 22:00 UTC, closed Saturdays.
func IsOpen(t time.Time) bool {
	u := t.UTC()
	switch u.Weekday() {
	case time.Saturday:
		return false
	case time.Friday:
		return u.Hour() < 22
	case time.Sunday:
		return u.Hour() >= 22
	default:
		return true
	}
}

// SessionDisplayName normalizes upstream session tags for display.
// "London-NewYork" and friends become "London → New York"; other hyphenated
// tags just swap the hyphen for an arrow.
func SessionDisplayName(session string) string {
	if session == "" {
		return session
	}
	flat := strings.ReplaceAll(strings.ToLower(session), " ", "")
	if strings.Contains(flat, "london") && (strings.Contains(flat, "newyork") || strings.Contains(flat, "ny")) {
		return "London → New York"
	}
	return strings.ReplaceAll(session, "-", " → ")
}
