package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapEnvelope(t *testing.T) {
	raw, err := Unwrap(map[string]any{
		"status":  "ok",
		"payload": map[string]any{"asset": "EUR/USD", "direction": "BUY"},
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR/USD", raw["asset"])
}

func TestUnwrapBareRecord(t *testing.T) {
	raw, err := Unwrap(map[string]any{"asset": "GBP/USD", "tp": 1.25})
	require.NoError(t, err)
	assert.Equal(t, "GBP/USD", raw["asset"])
}

func TestUnwrapErrorStatus(t *testing.T) {
	_, err := Unwrap(map[string]any{"status": "no_signal"})
	assert.ErrorIs(t, err, ErrNoSignal)

	_, err = Unwrap(map[string]any{"status": "error", "payload": map[string]any{}})
	assert.ErrorIs(t, err, ErrNoSignal)
}

func TestLatestFallsBackAcrossBases(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer dead.Close()

	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/signal/latest", r.URL.Path)
		w.Write([]byte(`{"status":"ok","payload":{"asset":"EUR/USD"}}`))
	}))
	defer live.Close()

	c := New([]string{dead.URL, live.URL}, "", time.Second, nil)
	raw, err := c.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EUR/USD", raw["asset"])
}

func TestLatestTypedConditionsStopFallback(t *testing.T) {
	hits := 0
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer first.Close()

	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("second base must not be hit after a definitive answer")
	}))
	defer second.Close()

	c := New([]string{first.URL, second.URL}, "", time.Second, nil)
	_, err := c.Latest(context.Background())
	assert.ErrorIs(t, err, ErrAwaitingExecution)
	assert.Equal(t, 1, hits)
}

func TestLatestMarketClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, "", time.Second, nil)
	_, err := c.Latest(context.Background())
	assert.ErrorIs(t, err, ErrMarketClosed)
}
