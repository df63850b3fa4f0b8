package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/tradebook/equity"
	"github.com/rustyeddy/tradebook/trade"
)

type CSVJournal struct {
	trades *csv.Writer
	daily  *csv.Writer
	tf, df *os.File
}

var (
	tradeHeader = []string{"trade_id", "symbol", "side", "status", "entry_time", "exit_time", "entry_date", "exit_date", "entry_price", "exit_price", "quantity", "realized_pnl", "commission", "outcome", "legs", "inferred_stop", "risk_pct_at_entry"}
	dayHeader   = []string{"date", "pnl", "equity", "peak", "drawdown_pct", "trades", "wins", "losses", "breakevens"}
)

// NewCSV truncates (or creates) both files and writes their headers.
func NewCSV(tradesPath, dailyPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	df, err := os.Create(dailyPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	j := &CSVJournal{trades: csv.NewWriter(tf), daily: csv.NewWriter(df), tf: tf, df: df}
	if err := j.write(j.trades, tradeHeader); err != nil {
		j.Close()
		return nil, err
	}
	if err := j.write(j.daily, dayHeader); err != nil {
		j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) write(w *csv.Writer, rec []string) error {
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) RecordTrade(t trade.Trade) error {
	exit := ""
	if t.ExitTime != nil {
		exit = t.ExitTime.UTC().Format(time.RFC3339)
	}
	return j.write(j.trades, []string{
		t.ID,
		t.Symbol,
		string(t.Direction),
		string(t.Status),
		t.EntryTime.UTC().Format(time.RFC3339),
		exit,
		t.EntryDate,
		t.ExitDate,
		f(t.EntryPrice),
		opt(t.ExitPrice),
		f(t.Quantity),
		f(t.RealizedPnL),
		f(t.Commission),
		string(t.Outcome),
		strconv.Itoa(t.Legs()),
		opt(t.InferredStop),
		opt(t.RiskPctAtEntry),
	})
}

func (j *CSVJournal) RecordDay(d equity.DailyRow) error {
	return j.write(j.daily, []string{
		d.Date,
		f(d.PnL),
		f(d.Equity),
		f(d.Peak),
		f(d.DrawdownPct),
		strconv.Itoa(d.Trades),
		strconv.Itoa(d.Wins),
		strconv.Itoa(d.Losses),
		strconv.Itoa(d.Breakevens),
	})
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.daily.Flush()
	if err := j.daily.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.df.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func opt(p *float64) string {
	if p == nil {
		return ""
	}
	return f(*p)
}
