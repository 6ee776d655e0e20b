package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/service/cache"
	sigmetrics "SignalDesk/internal/service/metrics"
	"SignalDesk/internal/service/ratelimit"
	"SignalDesk/internal/service/upstream"
	"SignalDesk/internal/services/market"
	"SignalDesk/internal/usecase"
	xhttp "SignalDesk/pkg/http"
	xlogger "SignalDesk/pkg/logger"
)

const historyCacheTTL = 10 * time.Second

// SignalsHandler serves the presentation API: the current signal as a card
// view model or Telegram-ready text, plus history and health.
type SignalsHandler struct {
	logger   *xlogger.Logger
	pipeline *usecase.SignalPipeline
	ledger   drepo.Ledger
	cache    cache.BytesCache
	limiter  *ratelimit.Limiter
	stream   drepo.PriceStream
}

func NewSignalsHandler(logger *xlogger.Logger, pipeline *usecase.SignalPipeline, ledger drepo.Ledger, c cache.BytesCache, limiter *ratelimit.Limiter, stream drepo.PriceStream) *SignalsHandler {
	sigmetrics.Register()
	return &SignalsHandler{
		logger:   logger,
		pipeline: pipeline,
		ledger:   ledger,
		cache:    c,
		limiter:  limiter,
		stream:   stream,
	}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/signal/latest", h.Latest)
	g.GET("/signal/message", h.Message)
	g.GET("/signal/history", h.History)
	g.GET("/health", h.Health)
}

// Latest returns the current snapshot as a card view model. A fetch-level
// condition (engine idle, market closed) maps to its HTTP status; a fatal
// normalization error still answers 200 with the placeholder card so clients
// always have something renderable.
func (h *SignalsHandler) Latest(c echo.Context) error {
	start := time.Now()
	defer func() { sigmetrics.EndpointLatency.WithLabelValues("latest").Observe(time.Since(start).Seconds()) }()

	if !h.allow(c, "latest") {
		return xhttp.AppErrorResponse(c, tooManyRequests())
	}

	snap := h.pipeline.Latest()
	if err := h.upstreamCondition(snap.Err); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, snap.Card)
}

// Message returns the current snapshot rendered as Telegram HTML text.
func (h *SignalsHandler) Message(c echo.Context) error {
	start := time.Now()
	defer func() { sigmetrics.EndpointLatency.WithLabelValues("message").Observe(time.Since(start).Seconds()) }()

	if !h.allow(c, "message") {
		return xhttp.AppErrorResponse(c, tooManyRequests())
	}

	snap := h.pipeline.Latest()
	if err := h.upstreamCondition(snap.Err); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"text": snap.Text, "parse_mode": "HTML"})
}

// History lists recorded signals, newest first, with a short cache in front
// of the ledger.
func (h *SignalsHandler) History(c echo.Context) error {
	start := time.Now()
	defer func() { sigmetrics.EndpointLatency.WithLabelValues("history").Observe(time.Since(start).Seconds()) }()

	if !h.allow(c, "history") {
		return xhttp.AppErrorResponse(c, tooManyRequests())
	}

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("history:%s:%d:%d", req.Asset, req.Limit, req.Offset)
	if h.cache != nil {
		if b, ok, _ := h.cache.GetBytes(key); ok {
			var rows []models.NormalizedSignal
			if err := json.Unmarshal(b, &rows); err == nil {
				return xhttp.ListResponse(c, rows, int64(len(rows)))
			}
		}
	}

	rows, err := h.ledger.History(c.Request().Context(), req.Asset, req.Limit, req.Offset)
	if err != nil {
		sigmetrics.EndpointErrors.WithLabelValues("history").Inc()
		if h.logger != nil {
			h.logger.Error("history read failed", xlogger.Error(err))
		}
		return xhttp.InternalServerErrorResponse(c)
	}
	if h.cache != nil {
		if b, err := json.Marshal(rows); err == nil {
			_ = h.cache.SetBytes(key, b, historyCacheTTL)
		}
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Health reports pipeline freshness and dependency status.
func (h *SignalsHandler) Health(c echo.Context) error {
	snap := h.pipeline.Latest()
	status := map[string]any{
		"status":      "ok",
		"signal_ok":   snap.Err == nil,
		"fetched_at":  snap.FetchedAt,
		"market_open": market.IsOpen(time.Now()),
	}
	if h.stream != nil {
		status["pricefeed_connected"] = h.stream.IsConnected()
	}
	if h.ledger != nil {
		if err := h.ledger.Health(c.Request().Context()); err != nil {
			status["status"] = "degraded"
			status["ledger_error"] = err.Error()
		}
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *SignalsHandler) allow(c echo.Context, endpoint string) bool {
	if h.limiter == nil {
		return true
	}
	if h.limiter.Allow(c.RealIP()+":"+endpoint, 10, 5) {
		return true
	}
	sigmetrics.RateLimited.WithLabelValues(endpoint).Inc()
	return false
}

func (h *SignalsHandler) upstreamCondition(err error) *xhttp.AppError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, upstream.ErrAwaitingExecution):
		return xhttp.NewAppError("AWAITING_EXECUTION", "", "no executed signal yet", 404)
	case errors.Is(err, upstream.ErrMarketClosed):
		return xhttp.NewAppError("MARKET_CLOSED", "", "market is closed", 403)
	default:
		// Fatal normalization errors degrade to the placeholder rendering.
		return nil
	}
}

func tooManyRequests() *xhttp.AppError {
	return xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429)
}
