// Package metrics summarizes closed trades.
package metrics

import (
	"sort"
	"time"

	"github.com/rustyeddy/tradebook/trade"
	"github.com/shopspring/decimal"
)

// ProfitFactorCap stands in for an infinite profit factor (wins and no losses).
const ProfitFactorCap = 999.0

// Summary is computed over closed trades only.
type Summary struct {
	Trades     int `json:"trades"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Breakevens int `json:"breakevens"`

	WinRate      float64 `json:"winRate"`
	TotalPnL     float64 `json:"totalPnl"`
	GrossWins    float64 `json:"grossWins"`
	GrossLosses  float64 `json:"grossLosses"` // magnitude, >= 0
	AvgWin       float64 `json:"avgWin"`
	AvgLoss      float64 `json:"avgLoss"` // magnitude, >= 0
	ProfitFactor float64 `json:"profitFactor"`
	Expectancy   float64 `json:"expectancy"`

	CurrentWinStreak  int `json:"currentWinStreak"`
	CurrentLossStreak int `json:"currentLossStreak"`
	MaxWinStreak      int `json:"maxWinStreak"`
	MaxLossStreak     int `json:"maxLossStreak"`
}

// Compute reduces the closed trades in trades, scanned in exit order.
// A breakeven ends both the win and the loss streak.
func Compute(trades []trade.Trade) Summary {
	closed := trade.ClosedOnly(trades)
	sort.SliceStable(closed, func(i, j int) bool {
		return exitOf(closed[i]).Before(exitOf(closed[j]))
	})

	var s Summary
	total := decimal.Zero
	gw := decimal.Zero
	gl := decimal.Zero
	winRun, lossRun := 0, 0

	for _, t := range closed {
		pnl := decimal.NewFromFloat(t.RealizedPnL)
		total = total.Add(pnl)
		s.Trades++

		switch t.Outcome {
		case trade.Win:
			s.Wins++
			gw = gw.Add(pnl)
			winRun++
			lossRun = 0
		case trade.Loss:
			s.Losses++
			gl = gl.Add(pnl.Abs())
			lossRun++
			winRun = 0
		default:
			s.Breakevens++
			winRun, lossRun = 0, 0
		}
		s.MaxWinStreak = max(s.MaxWinStreak, winRun)
		s.MaxLossStreak = max(s.MaxLossStreak, lossRun)
	}
	s.CurrentWinStreak = winRun
	s.CurrentLossStreak = lossRun

	s.TotalPnL = total.InexactFloat64()
	s.GrossWins = gw.InexactFloat64()
	s.GrossLosses = gl.InexactFloat64()

	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades)
		s.Expectancy = total.Div(decimal.NewFromInt(int64(s.Trades))).InexactFloat64()
	}
	if s.Wins > 0 {
		s.AvgWin = gw.Div(decimal.NewFromInt(int64(s.Wins))).InexactFloat64()
	}
	if s.Losses > 0 {
		s.AvgLoss = gl.Div(decimal.NewFromInt(int64(s.Losses))).InexactFloat64()
	}
	s.ProfitFactor = profitFactor(gw, gl)
	return s
}

func profitFactor(gw, gl decimal.Decimal) float64 {
	switch {
	case gl.IsZero() && gw.IsPositive():
		return ProfitFactorCap
	case gl.IsZero():
		return 0
	}
	pf := gw.Div(gl).InexactFloat64()
	if pf > ProfitFactorCap {
		return ProfitFactorCap
	}
	return pf
}

func exitOf(t trade.Trade) time.Time {
	if t.ExitTime != nil {
		return *t.ExitTime
	}
	return t.EntryTime
}
