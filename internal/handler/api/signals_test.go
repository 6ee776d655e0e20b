package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/service/upstream"
	"SignalDesk/internal/services/normalize"
	"SignalDesk/internal/services/render"
	"SignalDesk/internal/usecase"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fixedSource struct {
	raw models.RawSignal
	err error
}

func (s *fixedSource) Latest(context.Context) (models.RawSignal, error) { return s.raw, s.err }

func signalRaw() models.RawSignal {
	return models.RawSignal{
		"asset":        "EUR/USD",
		"direction":    "BUY",
		"entry":        []any{1.1000, 1.1010},
		"tp":           1.1050,
		"sl":           1.0980,
		"confidence":   0.92,
		"status":       "WAITING_FOR_ENTRY",
		"generated_at": t0.Format(time.RFC3339),
	}
}

func fixture(t *testing.T, src *fixedSource) (*SignalsHandler, *usecase.MemoryLedger) {
	t.Helper()
	ledger := usecase.NewMemoryLedger(0)
	pipeline := usecase.NewSignalPipeline(usecase.PipelineDeps{
		Source: src,
		Ledger: ledger,
		Clock:  func() time.Time { return t0.Add(5 * time.Minute) },
	}, normalize.Config{}, render.Config{}, nil)
	pipeline.Refresh(context.Background())
	return NewSignalsHandler(nil, pipeline, ledger, nil, nil, nil), ledger
}

func doGET(t *testing.T, h echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestLatestReturnsCard(t *testing.T) {
	h, _ := fixture(t, &fixedSource{raw: signalRaw()})
	rec := doGET(t, h.Latest, "/api/v1/signal/latest")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data models.CardViewModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "EUR/USD", resp.Data.Asset)
	assert.True(t, resp.Data.Live)
}

func TestLatestAwaitingExecution(t *testing.T) {
	h, _ := fixture(t, &fixedSource{err: upstream.ErrAwaitingExecution})
	rec := doGET(t, h.Latest, "/api/v1/signal/latest")
	assert.Contains(t, rec.Body.String(), "AWAITING_EXECUTION")
}

func TestLatestMarketClosed(t *testing.T) {
	h, _ := fixture(t, &fixedSource{err: upstream.ErrMarketClosed})
	rec := doGET(t, h.Latest, "/api/v1/signal/latest")
	assert.Contains(t, rec.Body.String(), "MARKET_CLOSED")
}

func TestLatestFatalErrorServesPlaceholder(t *testing.T) {
	raw := signalRaw()
	delete(raw, "sl")
	h, _ := fixture(t, &fixedSource{raw: raw})
	rec := doGET(t, h.Latest, "/api/v1/signal/latest")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No valid signal data available")
}

func TestMessageReturnsTelegramText(t *testing.T) {
	h, _ := fixture(t, &fixedSource{raw: signalRaw()})
	rec := doGET(t, h.Message, "/api/v1/signal/message")

	var resp struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "HTML", resp.Data["parse_mode"])
	assert.Contains(t, resp.Data["text"], "EUR/USD")
}

func TestHistoryListsRecordedSignals(t *testing.T) {
	h, _ := fixture(t, &fixedSource{raw: signalRaw()})
	rec := doGET(t, h.History, "/api/v1/signal/history?limit=10")

	var resp struct {
		Data struct {
			Rows  []models.NormalizedSignal `json:"rows"`
			Total int64                     `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp.Data.Total)
	assert.Equal(t, "EUR/USD", resp.Data.Rows[0].Asset)
}

func TestHealthReportsSignalState(t *testing.T) {
	h, _ := fixture(t, &fixedSource{raw: signalRaw()})
	rec := doGET(t, h.Health, "/api/v1/health")
	assert.Contains(t, rec.Body.String(), `"signal_ok":true`)
}
