package market

import (
	"testing"
	"time"
)

func TestIsOpen(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"wednesday midday", time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC), true},
		{"friday before close", time.Date(2025, 3, 14, 21, 59, 0, 0, time.UTC), true},
		{"friday after close", time.Date(2025, 3, 14, 22, 0, 0, 0, time.UTC), false},
		{"saturday", time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC), false},
		{"sunday before open", time.Date(2025, 3, 16, 21, 0, 0, 0, time.UTC), false},
		{"sunday after open", time.Date(2025, 3, 16, 22, 0, 0, 0, time.UTC), true},
	}
	for _, tc := range cases {
		if got := IsOpen(tc.t); got != tc.want {
			t.Errorf("%s: IsOpen = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSessionDisplayName(t *testing.T) {
	cases := map[string]string{
		"London-NewYork":    "London → New York",
		"London/NY Overlap": "London → New York",
		"Tokyo-London":      "Tokyo → London",
		"Asia":              "Asia",
		"":                  "",
	}
	for in, want := range cases {
		if got := SessionDisplayName(in); got != want {
			t.Errorf("SessionDisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}
