package recordlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"SignalDesk/internal/domain/models"
	xhttp "SignalDesk/pkg/http"
	applogger "SignalDesk/pkg/logger"
	"SignalDesk/pkg/util"
)

// RecencyWindow bounds how old an execution record may be and still count
// as the current one. Older entries are history, not state.
const RecencyWindow = 7 * 24 * time.Hour

var ErrNoRecentRecord = errors.New("recordlog: no record within recency window")

// Client reads the engine's execution log, an append-only NDJSON file where
// each line is one raw signal record.
type Client struct {
	url  string
	http *xhttp.Client
	l    *applogger.Logger
}

func New(url string, timeout time.Duration, l *applogger.Logger) *Client {
	return &Client{
		url:  url,
		http: xhttp.NewClient(xhttp.WithTimeout(timeout)),
		l:    l,
	}
}

// Fetch downloads and parses the full log.
func (c *Client) Fetch(ctx context.Context) ([]models.RawSignal, error) {
	var body []byte
	opts := &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: c.url}
	if err := c.http.SendAndParse(ctx, opts, &body); err != nil {
		return nil, err
	}
	records, skipped := Parse(bytes.NewReader(body))
	if skipped > 0 && c.l != nil {
		c.l.Warn("record log contained malformed lines", applogger.Int("skipped", skipped))
	}
	return records, nil
}

// Latest returns the newest record whose timestamp falls inside the recency
// window relative to now.
func (c *Client) Latest(ctx context.Context, now time.Time) (models.RawSignal, error) {
	records, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Newest(records, now)
}

// Source adapts Client to the SignalSource interface using an injected clock.
type Source struct {
	c   *Client
	now func() time.Time
}

func NewSource(c *Client, now func() time.Time) *Source {
	if now == nil {
		now = time.Now
	}
	return &Source{c: c, now: now}
}

func (s *Source) Latest(ctx context.Context) (models.RawSignal, error) {
	return s.c.Latest(ctx, s.now())
}

// Parse reads NDJSON records, skipping blank and malformed lines. It returns
// the parsed records and the count of lines it had to drop.
func Parse(r *bytes.Reader) ([]models.RawSignal, int) {
	var (
		records []models.RawSignal
		skipped int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec models.RawSignal
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

// Newest picks the record with the latest timestamp no older than the
// recency window. Records without a usable timestamp are ignored.
func Newest(records []models.RawSignal, now time.Time) (models.RawSignal, error) {
	var (
		best   models.RawSignal
		bestTS time.Time
	)
	cutoff := now.Add(-RecencyWindow)
	for _, rec := range records {
		ts, ok := recordTime(rec)
		if !ok || ts.Before(cutoff) {
			continue
		}
		if best == nil || ts.After(bestTS) {
			best = rec
			bestTS = ts
		}
	}
	if best == nil {
		return nil, ErrNoRecentRecord
	}
	return best, nil
}

var timeKeys = []string{"generated_at", "generatedAt", "executed_at", "executedAt", "signal_time", "signalTime", "timestamp"}

func recordTime(rec models.RawSignal) (time.Time, bool) {
	for _, key := range timeKeys {
		v, ok := rec[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if parsed, ok := util.ParseTime(t); ok {
				return parsed, true
			}
		case float64:
			// Millisecond epochs dwarf second epochs.
			if t > 1e11 {
				return time.UnixMilli(int64(t)).UTC(), true
			}
			return time.Unix(int64(t), 0).UTC(), true
		}
	}
	return time.Time{}, false
}
