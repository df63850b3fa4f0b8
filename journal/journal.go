// Package journal persists reconstructed trades and the daily equity
// series. Trades are keyed by their deterministic id, so recording the same
// import twice leaves one row per trade.
package journal

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/tradebook/equity"
	"github.com/rustyeddy/tradebook/trade"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

type Journal interface {
	RecordTrade(trade.Trade) error
	RecordDay(equity.DailyRow) error
	Close() error
}

// Write records every trade, then every day.
func Write(j Journal, trades []trade.Trade, days []equity.DailyRow) error {
	for _, t := range trades {
		if err := j.RecordTrade(t); err != nil {
			return fmt.Errorf("record trade %s: %w", t.ID, err)
		}
	}
	for _, d := range days {
		if err := j.RecordDay(d); err != nil {
			return fmt.Errorf("record day %s: %w", d.Date, err)
		}
	}
	return nil
}
