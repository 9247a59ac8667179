package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/wonny/aegis-ashare/internal/backtest"
	"github.com/wonny/aegis-ashare/internal/contracts"
)

const schema = `
-- 백테스트 실행 1건 = 1행 (sweep 조합도 1행, batch_id로 묶음)
CREATE TABLE IF NOT EXISTS runs (
    id               TEXT PRIMARY KEY,
    kind             TEXT     NOT NULL,
    batch_id         TEXT,
    strategy_id      TEXT,
    config_hash      TEXT,
    start_date       TEXT     NOT NULL,
    end_date         TEXT     NOT NULL,
    take_profit      REAL     NOT NULL,
    stop_loss        REAL     NOT NULL,
    max_hold_days    INTEGER  NOT NULL,
    slope_threshold  REAL     NOT NULL,
    initial_capital  REAL     NOT NULL,
    final_value      REAL     NOT NULL,
    pnl              REAL     NOT NULL,
    return_pct       REAL     NOT NULL,
    trade_count      INTEGER  NOT NULL,
    win_rate_pct     REAL     NOT NULL,
    open_positions   INTEGER  NOT NULL,
    max_drawdown_pct REAL     NOT NULL,
    created_at       TEXT     NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    run_id         TEXT    NOT NULL REFERENCES runs(id),
    seq            INTEGER NOT NULL,
    date           TEXT    NOT NULL,
    ticker         TEXT    NOT NULL,
    action         TEXT    NOT NULL,
    shares         INTEGER NOT NULL,
    price          TEXT    NOT NULL,
    amount         TEXT    NOT NULL,
    pnl_amount     TEXT    NOT NULL,
    pnl_percent    TEXT    NOT NULL,
    reason         TEXT    NOT NULL,
    cash_remaining TEXT    NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS quality_snapshots (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    checked_at TEXT     NOT NULL,
    score      REAL     NOT NULL,
    usable     INTEGER  NOT NULL,
    total      INTEGER  NOT NULL,
    payload    TEXT     NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_batch   ON runs(batch_id);
`

const (
	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00" // 고정 폭: 문자열 정렬 = 시간 정렬
)

// Run kinds
const (
	KindRun   = "run"
	KindSweep = "sweep"
)

// ErrRunNotFound is returned when a run id is unknown
var ErrRunNotFound = errors.New("run not found")

// Run is one persisted engine run
type Run struct {
	ID         string
	Kind       string
	BatchID    string
	StrategyID string
	ConfigHash string
	Summary    contracts.RunSummary
	CreatedAt  time.Time
}

// Store persists backtest runs into SQLite
// ⭐ SSOT: 실행 결과 저장/조회는 여기서만
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the database at path and applies the schema
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit.NewStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite는 단일 writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit.NewStore: apply schema: %w", err)
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a single run with its ledger and returns the run id
func (s *Store) SaveRun(ctx context.Context, strategyID, configHash string, result *backtest.Result) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("audit.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	run := Run{
		ID:         uuid.New().String(),
		Kind:       KindRun,
		StrategyID: strategyID,
		ConfigHash: configHash,
		Summary:    result.Summary,
		CreatedAt:  s.now(),
	}
	if err := insertRun(ctx, tx, run); err != nil {
		return "", fmt.Errorf("audit.SaveRun: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger_entries (
			run_id, seq, date, ticker, action, shares, price, amount,
			pnl_amount, pnl_percent, reason, cash_remaining
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("audit.SaveRun: prepare ledger: %w", err)
	}
	defer stmt.Close()

	for i, e := range result.Ledger {
		if _, err := stmt.ExecContext(ctx,
			run.ID, i, e.Date.Format(dateLayout), e.Ticker, string(e.Action), e.Shares,
			e.Price.String(), e.Amount.String(), e.PnLAmount.String(), e.PnLPercent.String(),
			string(e.Reason), e.CashRemaining.String(),
		); err != nil {
			return "", fmt.Errorf("audit.SaveRun: insert ledger %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("audit.SaveRun: commit: %w", err)
	}
	return run.ID, nil
}

// SaveSweep stores every combination under one batch id and returns it
func (s *Store) SaveSweep(ctx context.Context, strategyID, configHash string, results []backtest.SweepResult) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("audit.SaveSweep: begin tx: %w", err)
	}
	defer tx.Rollback()

	batchID := uuid.New().String()
	createdAt := s.now()
	for _, r := range results {
		run := Run{
			ID:         uuid.New().String(),
			Kind:       KindSweep,
			BatchID:    batchID,
			StrategyID: strategyID,
			ConfigHash: configHash,
			Summary:    r.Summary,
			CreatedAt:  createdAt,
		}
		if err := insertRun(ctx, tx, run); err != nil {
			return "", fmt.Errorf("audit.SaveSweep: combination %d: %w", r.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("audit.SaveSweep: commit: %w", err)
	}
	return batchID, nil
}

func insertRun(ctx context.Context, tx *sql.Tx, run Run) error {
	sm := run.Summary
	p := sm.Params
	_, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, kind, batch_id, strategy_id, config_hash,
			start_date, end_date, take_profit, stop_loss, max_hold_days, slope_threshold,
			initial_capital, final_value, pnl, return_pct, trade_count, win_rate_pct,
			open_positions, max_drawdown_pct, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, nullString(run.BatchID), run.StrategyID, run.ConfigHash,
		p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout),
		p.TakeProfit, p.StopLoss, p.MaxHoldDays, p.SlopeThreshold,
		sm.InitialCapital, sm.FinalValue, sm.PnL, sm.ReturnPct, sm.TradeCount, sm.WinRatePct,
		sm.OpenPositions, sm.MaxDrawdownPct, run.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const runColumns = `
	id, kind, COALESCE(batch_id, ''), strategy_id, config_hash,
	start_date, end_date, take_profit, stop_loss, max_hold_days, slope_threshold,
	initial_capital, final_value, pnl, return_pct, trade_count, win_rate_pct,
	open_positions, max_drawdown_pct, created_at`

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, return_pct DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit.ListRuns: query: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetBatch returns the runs of one sweep, best return first
func (s *Store) GetBatch(ctx context.Context, batchID string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE batch_id = ? ORDER BY return_pct DESC, id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("audit.GetBatch: query: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetRun returns one run
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("audit.GetRun: query: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("audit.GetRun: %s: %w", id, ErrRunNotFound)
	}
	return &runs[0], nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var out []Run
	for rows.Next() {
		var (
			r                   Run
			start, end, created string
		)
		sm := &r.Summary
		if err := rows.Scan(
			&r.ID, &r.Kind, &r.BatchID, &r.StrategyID, &r.ConfigHash,
			&start, &end, &sm.Params.TakeProfit, &sm.Params.StopLoss, &sm.Params.MaxHoldDays, &sm.Params.SlopeThreshold,
			&sm.InitialCapital, &sm.FinalValue, &sm.PnL, &sm.ReturnPct, &sm.TradeCount, &sm.WinRatePct,
			&sm.OpenPositions, &sm.MaxDrawdownPct, &created,
		); err != nil {
			return nil, fmt.Errorf("audit: scan run: %w", err)
		}

		var err error
		if sm.Params.StartDate, err = time.Parse(dateLayout, start); err != nil {
			return nil, fmt.Errorf("audit: run %s start_date: %w", r.ID, err)
		}
		if sm.Params.EndDate, err = time.Parse(dateLayout, end); err != nil {
			return nil, fmt.Errorf("audit: run %s end_date: %w", r.ID, err)
		}
		if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("audit: run %s created_at: %w", r.ID, err)
		}
		sm.StartDate, sm.EndDate = sm.Params.StartDate, sm.Params.EndDate
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetLedger returns the ledger of a run in fill order
func (s *Store) GetLedger(ctx context.Context, runID string) ([]contracts.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, ticker, action, shares, price, amount, pnl_amount, pnl_percent, reason, cash_remaining
		FROM ledger_entries WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("audit.GetLedger: query: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.LedgerEntry, 0)
	for rows.Next() {
		var (
			e                       contracts.LedgerEntry
			date, action, reason    string
			price, amount, pnl, pct string
			cash                    string
		)
		if err := rows.Scan(&date, &e.Ticker, &action, &e.Shares, &price, &amount, &pnl, &pct, &reason, &cash); err != nil {
			return nil, fmt.Errorf("audit.GetLedger: scan: %w", err)
		}
		if e.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("audit.GetLedger: date: %w", err)
		}
		e.Action = contracts.Action(action)
		e.Reason = contracts.Reason(reason)

		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{{&e.Price, price}, {&e.Amount, amount}, {&e.PnLAmount, pnl}, {&e.PnLPercent, pct}, {&e.CashRemaining, cash}} {
			if *f.dst, err = decimal.NewFromString(f.src); err != nil {
				return nil, fmt.Errorf("audit.GetLedger: decimal %q: %w", f.src, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveQuality stores a data quality snapshot
func (s *Store) SaveQuality(ctx context.Context, snap *contracts.DataQualitySnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("audit.SaveQuality: marshal: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO quality_snapshots (checked_at, score, usable, total, payload) VALUES (?, ?, ?, ?, ?)`,
		snap.CheckedAt.UTC().Format(timeLayout), snap.QualityScore, snap.UsableTickers, snap.TotalTickers, string(payload),
	); err != nil {
		return fmt.Errorf("audit.SaveQuality: insert: %w", err)
	}
	return nil
}

// LatestQuality returns the most recent quality snapshot, or nil if none
func (s *Store) LatestQuality(ctx context.Context) (*contracts.DataQualitySnapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM quality_snapshots ORDER BY checked_at DESC, id DESC LIMIT 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("audit.LatestQuality: query: %w", err)
	}

	var snap contracts.DataQualitySnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("audit.LatestQuality: unmarshal: %w", err)
	}
	return &snap, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
