package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"SignalDesk/internal/domain/models"
	xhttp "SignalDesk/pkg/http"
	applogger "SignalDesk/pkg/logger"
)

// Sentinel conditions surfaced by the upstream engine via HTTP status.
var (
	ErrAwaitingExecution = errors.New("upstream: awaiting execution")
	ErrMarketClosed      = errors.New("upstream: market closed")
	ErrNoSignal          = errors.New("upstream: no signal available")
)

// Client fetches the latest raw signal from the upstream engine. Multiple
// base URLs are tried in order; upstream deployments have moved hosts often
// enough that a fallback list is part of the contract.
type Client struct {
	bases []string
	path  string
	http  *xhttp.Client
	l     *applogger.Logger
}

func New(bases []string, path string, timeout time.Duration, l *applogger.Logger) *Client {
	if path == "" {
		path = "/api/v1/signal/latest"
	}
	return &Client{
		bases: bases,
		path:  path,
		http:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		l:     l,
	}
}

// Latest returns the current raw signal record. The body may be either a bare
// record or the {status, payload} envelope; both are accepted.
func (c *Client) Latest(ctx context.Context) (models.RawSignal, error) {
	var lastErr error = ErrNoSignal
	for _, base := range c.bases {
		raw, err := c.fetch(ctx, strings.TrimRight(base, "/")+c.path)
		if err == nil {
			return raw, nil
		}
		// Definitive upstream answers stop the fallback walk.
		if errors.Is(err, ErrAwaitingExecution) || errors.Is(err, ErrMarketClosed) {
			return nil, err
		}
		if c.l != nil {
			c.l.Warn("upstream fetch failed", applogger.String("base", base), applogger.Error(err))
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetch(ctx context.Context, url string) (models.RawSignal, error) {
	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: url})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, ErrAwaitingExecution
	case http.StatusForbidden:
		return nil, ErrMarketClosed
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, body)
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode signal: %w", err)
	}
	return Unwrap(doc)
}

// Unwrap extracts the raw record from an upstream response document:
// either {status: "ok", payload: {...}} or the bare record itself.
func Unwrap(doc map[string]any) (models.RawSignal, error) {
	if payload, ok := doc["payload"].(map[string]any); ok {
		if st, _ := doc["status"].(string); st != "" && st != "ok" {
			return nil, fmt.Errorf("%w: status %q", ErrNoSignal, st)
		}
		return models.RawSignal(payload), nil
	}
	if st, _ := doc["status"].(string); st == "error" || st == "no_signal" || st == "degraded" {
		return nil, fmt.Errorf("%w: status %q", ErrNoSignal, st)
	}
	return models.RawSignal(doc), nil
}
