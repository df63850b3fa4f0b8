// Package pipeline runs fills through every stage: reconstruction, the
// risk throttle, daily equity and metrics.
package pipeline

import (
	"github.com/rustyeddy/tradebook/equity"
	"github.com/rustyeddy/tradebook/metrics"
	"github.com/rustyeddy/tradebook/risk"
	"github.com/rustyeddy/tradebook/trade"
)

// Input is everything one recompute needs. Callers validate it at the
// edge (see fills and config); Run does not.
type Input struct {
	Fills          []trade.Fill
	Orders         []trade.PendingOrder
	StartingEquity float64
	Strategy       risk.StrategyConfig
	Options        trade.Options

	// DailyLock sizes every trade of a market day with the day-start
	// directive instead of the directive after the previous trade.
	DailyLock bool
}

// Report is the output of one recompute.
type Report struct {
	Trades         []trade.Trade     `json:"trades"`
	Warnings       []trade.Warning   `json:"warnings"`
	Risk           risk.RiskState    `json:"risk"`
	Directives     []risk.Directive  `json:"directives"`
	Daily          []equity.DailyRow `json:"daily"`
	MaxDrawdownPct float64           `json:"maxDrawdownPct"`
	Metrics        metrics.Summary   `json:"metrics"`
	Checks         []risk.Decision   `json:"checks,omitempty"`
}

// Run recomputes everything from scratch. The same input always yields
// the same report.
func Run(in Input) Report {
	res := trade.Reconstruct(in.Fills, in.Orders, in.Options)
	trades := risk.Annotate(res.Trades, in.StartingEquity, in.Strategy, in.DailyLock)

	rs := risk.Compute(trades, in.StartingEquity, in.Strategy)
	directives := rs.Directives
	if in.DailyLock {
		directives = risk.Daily(trades, in.StartingEquity, in.Strategy)
	}

	daily := equity.Aggregate(trades, in.StartingEquity)

	return Report{
		Trades:         trades,
		Warnings:       res.Warnings,
		Risk:           rs,
		Directives:     directives,
		Daily:          daily,
		MaxDrawdownPct: equity.MaxDrawdownPct(daily),
		Metrics:        metrics.Compute(trades),
		Checks:         risk.EvaluateOpen(trades, rs),
	}
}

// Closed returns the closed trades of the report.
func (r Report) Closed() []trade.Trade {
	return trade.ClosedOnly(r.Trades)
}

// Active returns the trades still open at the end of input.
func (r Report) Active() []trade.Trade {
	var out []trade.Trade
	for _, t := range r.Trades {
		if !t.IsClosed() {
			out = append(out, t)
		}
	}
	return out
}
