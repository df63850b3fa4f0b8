package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/tradebook/equity"
	"github.com/rustyeddy/tradebook/trade"
)

const tradeColumns = `
	trade_id, symbol, side, status, entry_time, exit_time, entry_date, exit_date,
	entry_price, exit_price, quantity, realized_pnl, commission, outcome, legs,
	initial_stop, inferred_stop, pending_exit, risk_pct_at_entry, equity_at_entry`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (trade.Trade, error) {
	var (
		t                      trade.Trade
		side, status, outcome  string
		lj                     string
		exitTime               sql.NullTime
		exitPrice, initialStop sql.NullFloat64
		inferredStop, pending  sql.NullFloat64
		riskPct, equityAtEntry sql.NullFloat64
	)

	err := s.Scan(
		&t.ID, &t.Symbol, &side, &status, &t.EntryTime, &exitTime, &t.EntryDate, &t.ExitDate,
		&t.EntryPrice, &exitPrice, &t.Quantity, &t.RealizedPnL, &t.Commission, &outcome, &lj,
		&initialStop, &inferredStop, &pending, &riskPct, &equityAtEntry,
	)
	if err != nil {
		return trade.Trade{}, err
	}

	t.Direction = trade.Direction(side)
	t.Status = trade.Status(status)
	t.Outcome = trade.Outcome(outcome)
	t.EntryTime = t.EntryTime.UTC()
	if exitTime.Valid {
		et := exitTime.Time.UTC()
		t.ExitTime = &et
	}
	t.ExitPrice = ptr(exitPrice)
	t.InitialStop = ptr(initialStop)
	t.InferredStop = ptr(inferredStop)
	t.PendingExit = ptr(pending)
	t.RiskPctAtEntry = ptr(riskPct)
	t.EquityAtEntry = ptr(equityAtEntry)

	var l legs
	if err := json.Unmarshal([]byte(lj), &l); err != nil {
		return trade.Trade{}, fmt.Errorf("trade %s legs: %w", t.ID, err)
	}
	t.Entries, t.Exits = l.Entries, l.Exits
	return t, nil
}

func ptr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// GetTrade returns a single trade by id.
func (j *SQLite) GetTrade(tradeID string) (trade.Trade, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)

	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return trade.Trade{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
		}
		return trade.Trade{}, err
	}
	return t, nil
}

func (j *SQLite) listTrades(query string, args ...any) ([]trade.Trade, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trade.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTrades returns every trade, oldest entry first.
func (j *SQLite) ListTrades() ([]trade.Trade, error) {
	return j.listTrades(`SELECT ` + tradeColumns + ` FROM trades ORDER BY entry_time ASC, trade_id ASC`)
}

// ListTradesClosedBetween returns trades whose exit_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]trade.Trade, error) {
	return j.listTrades(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC, trade_id ASC`, start.UTC(), end.UTC())
}

// ListTradesByExitDate returns the trades closed on one market day.
func (j *SQLite) ListTradesByExitDate(day string) ([]trade.Trade, error) {
	return j.listTrades(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE exit_date = ?
		ORDER BY exit_time ASC, trade_id ASC`, day)
}

// ListDaily returns the daily equity series in date order.
func (j *SQLite) ListDaily() ([]equity.DailyRow, error) {
	rows, err := j.db.Query(`
		SELECT date, pnl, equity, peak, drawdown_pct, trades, wins, losses, breakevens
		FROM daily
		ORDER BY date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []equity.DailyRow
	for rows.Next() {
		var d equity.DailyRow
		if err := rows.Scan(
			&d.Date, &d.PnL, &d.Equity, &d.Peak, &d.DrawdownPct,
			&d.Trades, &d.Wins, &d.Losses, &d.Breakevens,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LastRun returns the most recent import.
func (j *SQLite) LastRun() (ImportRun, error) {
	var r ImportRun
	err := j.db.QueryRow(`
		SELECT run_id, created, source, fills, trades, closed, warnings, mode, risk_pct, equity
		FROM import_runs
		ORDER BY created DESC, run_id DESC
		LIMIT 1`).Scan(
		&r.RunID, &r.Created, &r.Source, &r.Fills, &r.Trades, &r.Closed,
		&r.Warnings, &r.Mode, &r.RiskPct, &r.Equity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportRun{}, fmt.Errorf("import run: %w", ErrNotFound)
	}
	return r, err
}
