// Package equity turns closed trades into a daily equity and drawdown series.
package equity

import (
	"sort"

	"github.com/rustyeddy/tradebook/trade"
	"github.com/shopspring/decimal"
)

// DailyRow is one market day that had at least one closed trade.
type DailyRow struct {
	Date        string  `json:"date"`
	PnL         float64 `json:"pnl"`
	Equity      float64 `json:"equity"`
	Peak        float64 `json:"peak"`
	DrawdownPct float64 `json:"drawdownPct"` // <= 0
	Trades      int     `json:"trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Breakevens  int     `json:"breakevens"`
}

// Aggregate groups closed trades by exit market day and accumulates their
// P&L on top of startingEquity. The peak starts at the first day's equity,
// so the first row and every new high have zero drawdown. Days without a
// closed trade are not synthesized.
func Aggregate(trades []trade.Trade, startingEquity float64) []DailyRow {
	days := make(map[string][]trade.Trade)
	for _, t := range trade.ClosedOnly(trades) {
		days[t.ExitDate] = append(days[t.ExitDate], t)
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]DailyRow, 0, len(keys))
	eq := decimal.NewFromFloat(startingEquity)
	var peak decimal.Decimal

	for i, day := range keys {
		row := DailyRow{Date: day}
		pnl := decimal.Zero
		for _, t := range days[day] {
			pnl = pnl.Add(decimal.NewFromFloat(t.RealizedPnL))
			row.Trades++
			switch t.Outcome {
			case trade.Win:
				row.Wins++
			case trade.Loss:
				row.Losses++
			default:
				row.Breakevens++
			}
		}

		eq = eq.Add(pnl)
		if i == 0 || eq.GreaterThan(peak) {
			peak = eq
		}

		row.PnL = pnl.InexactFloat64()
		row.Equity = eq.InexactFloat64()
		row.Peak = peak.InexactFloat64()
		if peak.IsPositive() {
			row.DrawdownPct = eq.Sub(peak).Div(peak).InexactFloat64()
		}
		rows = append(rows, row)
	}
	return rows
}

// MaxDrawdownPct returns the deepest drawdown in rows (<= 0).
func MaxDrawdownPct(rows []DailyRow) float64 {
	worst := 0.0
	for _, r := range rows {
		if r.DrawdownPct < worst {
			worst = r.DrawdownPct
		}
	}
	return worst
}
