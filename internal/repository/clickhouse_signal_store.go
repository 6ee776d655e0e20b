package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/domain/repository"
)

// ClickHouseSignalStore implements Ledger on ClickHouse. Signals are
// append-only; the newest row per (asset, generated_at) wins on read, which
// gives repeated polls of the same signal upsert semantics without mutation.
type ClickHouseSignalStore struct {
	db    *sql.DB
	table string
}

func NewClickHouseSignalStore(db *sql.DB, table string) *ClickHouseSignalStore {
	return &ClickHouseSignalStore{db: db, table: table}
}

var _ repository.Ledger = (*ClickHouseSignalStore)(nil)

// Schema returns idempotent DDL for the signal ledger table.
func (s *ClickHouseSignalStore) Schema() []string {
	return []string{fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    asset            String,
    direction        String,
    entry_low        Float64,
    entry_high       Float64,
    entry_mid        Float64,
    tp               Float64,
    sl               Float64,
    confidence       UInt8,
    timeframe        String,
    session          String,
    strategy         String,
    generated_at     DateTime,
    validity_minutes Float64,
    state            String,
    risk_reward      String,
    target_pips      Float64,
    stop_pips        Float64,
    observed_at      DateTime
) ENGINE = ReplacingMergeTree(observed_at)
ORDER BY (asset, generated_at)`, s.table)}
}

func (s *ClickHouseSignalStore) Record(ctx context.Context, sig models.NormalizedSignal) error {
	q := fmt.Sprintf(`INSERT INTO %s
(asset, direction, entry_low, entry_high, entry_mid, tp, sl, confidence, timeframe, session, strategy, generated_at, validity_minutes, state, risk_reward, target_pips, stop_pips, observed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		sig.Asset,
		string(sig.Direction),
		sig.EntryLow,
		sig.EntryHigh,
		sig.EntryMid,
		sig.TP,
		sig.SL,
		uint8(sig.Confidence),
		sig.Timeframe,
		sig.Session,
		sig.Strategy,
		sig.GeneratedAt,
		sig.ValidityMinutes,
		string(sig.State),
		sig.RiskReward,
		sig.TargetPips,
		sig.StopPips,
		time.Now().UTC(),
	)
	return err
}

func (s *ClickHouseSignalStore) History(ctx context.Context, asset string, limit, offset int) ([]models.NormalizedSignal, error) {
	if limit <= 0 {
		limit = 50
	}
	q := fmt.Sprintf(`SELECT asset, direction, entry_low, entry_high, entry_mid, tp, sl, confidence, timeframe, session, strategy, generated_at, validity_minutes, state, risk_reward, target_pips, stop_pips
FROM %s FINAL`, s.table)
	args := []interface{}{}
	if asset != "" {
		q += " WHERE asset = ?"
		args = append(args, asset)
	}
	q += " ORDER BY generated_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.NormalizedSignal
	for rows.Next() {
		var (
			sig        models.NormalizedSignal
			direction  string
			state      string
			confidence uint8
		)
		if err := rows.Scan(
			&sig.Asset, &direction,
			&sig.EntryLow, &sig.EntryHigh, &sig.EntryMid, &sig.TP, &sig.SL,
			&confidence, &sig.Timeframe, &sig.Session, &sig.Strategy,
			&sig.GeneratedAt, &sig.ValidityMinutes,
			&state, &sig.RiskReward, &sig.TargetPips, &sig.StopPips,
		); err != nil {
			return nil, err
		}
		sig.Direction = models.Direction(direction)
		sig.State = models.LifecycleState(state)
		sig.Confidence = int(confidence)
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (s *ClickHouseSignalStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSignalStore) Close() error {
	return nil // pool managed by pkg/clickhouse
}
