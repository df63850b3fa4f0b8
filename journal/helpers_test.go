package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/tradebook/equity"
	"github.com/rustyeddy/tradebook/trade"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func fp(x float64) *float64 { return &x }

func closedTrade(id string, entry time.Time, pnl float64) trade.Trade {
	exit := entry.Add(90 * time.Minute)
	return trade.Trade{
		ID:          id,
		Symbol:      "AAPL",
		Direction:   trade.Long,
		Status:      trade.Closed,
		EntryTime:   entry,
		ExitTime:    &exit,
		EntryDate:   entry.Format("2006-01-02"),
		ExitDate:    exit.Format("2006-01-02"),
		EntryPrice:  10,
		ExitPrice:   fp(10 + pnl/100),
		Quantity:    100,
		RealizedPnL: pnl,
		Commission:  1,
		Outcome:     trade.Classify(pnl),
		Entries: []trade.Leg{
			{FillID: id + "-in", Quantity: 100, Price: 10, Time: entry, Commission: 0.5},
		},
		Exits: []trade.Leg{
			{FillID: id + "-out", Quantity: 100, Price: 10 + pnl/100, Time: exit, Commission: 0.5},
		},
		InitialStop:    fp(9.5),
		RiskPctAtEntry: fp(0.03),
		EquityAtEntry:  fp(10000),
	}
}

func activeTrade(id string, entry time.Time) trade.Trade {
	return trade.Trade{
		ID:           id,
		Symbol:       "MSFT",
		Direction:    trade.Short,
		Status:       trade.Active,
		EntryTime:    entry,
		EntryDate:    entry.Format("2006-01-02"),
		EntryPrice:   300,
		Quantity:     5,
		Outcome:      trade.Open,
		Entries:      []trade.Leg{{FillID: id + "-in", Quantity: 5, Price: 300, Time: entry}},
		InferredStop: fp(310),
	}
}

func day(date string, pnl, eq float64) equity.DailyRow {
	return equity.DailyRow{Date: date, PnL: pnl, Equity: eq, Peak: eq, Trades: 1, Wins: 1}
}
