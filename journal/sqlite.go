package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/tradebook/equity"
	"github.com/rustyeddy/tradebook/id"
	"github.com/rustyeddy/tradebook/trade"
)

// ImportRun records one import into the journal.
type ImportRun struct {
	RunID    string
	Created  time.Time
	Source   string
	Fills    int
	Trades   int
	Closed   int
	Warnings int
	Mode     string
	RiskPct  float64
	Equity   float64
}

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const upsertTrade = `
	INSERT INTO trades
	(trade_id, symbol, side, status, entry_time, exit_time, entry_date, exit_date,
	 entry_price, exit_price, quantity, realized_pnl, commission, outcome, legs,
	 initial_stop, inferred_stop, pending_exit, risk_pct_at_entry, equity_at_entry)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(trade_id) DO UPDATE SET
		symbol = excluded.symbol,
		side = excluded.side,
		status = excluded.status,
		entry_time = excluded.entry_time,
		exit_time = excluded.exit_time,
		entry_date = excluded.entry_date,
		exit_date = excluded.exit_date,
		entry_price = excluded.entry_price,
		exit_price = excluded.exit_price,
		quantity = excluded.quantity,
		realized_pnl = excluded.realized_pnl,
		commission = excluded.commission,
		outcome = excluded.outcome,
		legs = excluded.legs,
		initial_stop = excluded.initial_stop,
		inferred_stop = excluded.inferred_stop,
		pending_exit = excluded.pending_exit,
		risk_pct_at_entry = excluded.risk_pct_at_entry,
		equity_at_entry = excluded.equity_at_entry`

const upsertDay = `
	INSERT INTO daily
	(date, pnl, equity, peak, drawdown_pct, trades, wins, losses, breakevens)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(date) DO UPDATE SET
		pnl = excluded.pnl,
		equity = excluded.equity,
		peak = excluded.peak,
		drawdown_pct = excluded.drawdown_pct,
		trades = excluded.trades,
		wins = excluded.wins,
		losses = excluded.losses,
		breakevens = excluded.breakevens`

// legs is the stored shape of a trade's fill legs.
type legs struct {
	Entries []trade.Leg `json:"entries"`
	Exits   []trade.Leg `json:"exits,omitempty"`
}

func recordTrade(ctx context.Context, ex execer, t trade.Trade) error {
	lj, err := json.Marshal(legs{Entries: t.Entries, Exits: t.Exits})
	if err != nil {
		return err
	}

	var exit any
	if t.ExitTime != nil {
		exit = t.ExitTime.UTC()
	}

	_, err = ex.ExecContext(ctx, upsertTrade,
		t.ID, t.Symbol, string(t.Direction), string(t.Status),
		t.EntryTime.UTC(), exit, t.EntryDate, t.ExitDate,
		t.EntryPrice, nullable(t.ExitPrice), t.Quantity, t.RealizedPnL, t.Commission,
		string(t.Outcome), string(lj),
		nullable(t.InitialStop), nullable(t.InferredStop), nullable(t.PendingExit),
		nullable(t.RiskPctAtEntry), nullable(t.EquityAtEntry),
	)
	return err
}

func recordDay(ctx context.Context, ex execer, d equity.DailyRow) error {
	_, err := ex.ExecContext(ctx, upsertDay,
		d.Date, d.PnL, d.Equity, d.Peak, d.DrawdownPct,
		d.Trades, d.Wins, d.Losses, d.Breakevens,
	)
	return err
}

// RecordTrade inserts t or replaces the row with the same id.
func (j *SQLite) RecordTrade(t trade.Trade) error {
	return recordTrade(context.Background(), j.db, t)
}

// RecordDay inserts d or replaces the row for the same date.
func (j *SQLite) RecordDay(d equity.DailyRow) error {
	return recordDay(context.Background(), j.db, d)
}

// Import replaces the journal contents with one recompute in a single
// transaction. Trades and daily rows from earlier imports are dropped, so a
// corrected export never leaves a stale trade behind. The run is logged. A zero RunID or
// Created is filled in; the recorded run is returned.
func (j *SQLite) Import(ctx context.Context, run ImportRun, trades []trade.Trade, days []equity.DailyRow) (ImportRun, error) {
	if run.RunID == "" {
		run.RunID = id.New()
	}
	if run.Created.IsZero() {
		run.Created = time.Now()
	}
	run.Created = run.Created.UTC()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return run, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades`); err != nil {
		return run, fmt.Errorf("clear trades: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM daily`); err != nil {
		return run, fmt.Errorf("clear daily: %w", err)
	}
	for _, t := range trades {
		if err := recordTrade(ctx, tx, t); err != nil {
			return run, fmt.Errorf("record trade %s: %w", t.ID, err)
		}
	}
	for _, d := range days {
		if err := recordDay(ctx, tx, d); err != nil {
			return run, fmt.Errorf("record day %s: %w", d.Date, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO import_runs
		(run_id, created, source, fills, trades, closed, warnings, mode, risk_pct, equity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Created, run.Source, run.Fills, run.Trades, run.Closed,
		run.Warnings, run.Mode, run.RiskPct, run.Equity,
	)
	if err != nil {
		return run, fmt.Errorf("record run: %w", err)
	}

	return run, tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullable(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
