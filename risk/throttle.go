package risk

import (
	"sort"

	"github.com/rustyeddy/tradebook/trade"
	"github.com/shopspring/decimal"
)

// State is everything the throttle carries between trades.
//
// In LOW, Progress counts wins toward WinsToRecover. In HIGH it counts
// consecutive losses toward LossesToDrop, which stays 0 under the default
// of one loss.
type State struct {
	Mode     Mode `json:"mode"`
	Progress int  `json:"progress"`
}

// Initial is the state before any trade has closed.
func Initial() State {
	return State{Mode: High}
}

// Next applies one closed-trade outcome. BREAKEVEN (and anything that is
// not WIN or LOSS) leaves the state untouched.
func Next(s State, o trade.Outcome, cfg StrategyConfig) State {
	switch o {
	case trade.Win:
		if s.Mode == High {
			return State{Mode: High}
		}
		if s.Progress+1 >= cfg.WinsToRecover {
			return State{Mode: High}
		}
		return State{Mode: Low, Progress: s.Progress + 1}

	case trade.Loss:
		if s.Mode == Low {
			return State{Mode: Low}
		}
		if s.Progress+1 >= cfg.lossesToDrop() {
			return State{Mode: Low}
		}
		return State{Mode: High, Progress: s.Progress + 1}
	}
	return s
}

// Scenario is the directive that would follow one hypothetical outcome.
type Scenario struct {
	Mode               Mode    `json:"mode"`
	RiskPct            float64 `json:"riskPct"`
	AllowedRiskDollars float64 `json:"allowedRiskDollars"`
	LowWinsProgress    int     `json:"lowWinsProgress"`
}

// Forecast holds both branches of the next outcome.
type Forecast struct {
	IfWin  Scenario `json:"ifWin"`
	IfLoss Scenario `json:"ifLoss"`
}

// RiskState is the directive in force after every closed trade has been
// applied, plus the trail of per-trade directives that produced it.
type RiskState struct {
	Mode               Mode        `json:"mode"`
	RiskPct            float64     `json:"riskPct"`
	Equity             float64     `json:"equity"`
	AllowedRiskDollars float64     `json:"allowedRiskDollars"`
	LowWinsProgress    int         `json:"lowWinsProgress"`
	LowWinsNeeded      int         `json:"lowWinsNeeded"`
	Forecast           Forecast    `json:"forecast"`
	Directives         []Directive `json:"directives"`
}

// Compute folds the closed trades, in entry order, through the throttle.
// Each trade is sized with the directive in force before it; only its
// outcome moves the next directive.
func Compute(trades []trade.Trade, startingEquity float64, cfg StrategyConfig) RiskState {
	closed := byEntry(trade.ClosedOnly(trades))

	s := Initial()
	eq := decimal.NewFromFloat(startingEquity)
	directives := make([]Directive, 0, len(closed))

	for _, t := range closed {
		before := s
		eqBefore := eq.InexactFloat64()
		s = Next(s, t.Outcome, cfg)
		eq = eq.Add(decimal.NewFromFloat(t.RealizedPnL))

		pct := cfg.RiskPct(before.Mode)
		directives = append(directives, Directive{
			Date:           t.EntryDate,
			TradeIDs:       []string{t.ID},
			ModeBefore:     before.Mode,
			ModeAfter:      s.Mode,
			ProgressBefore: lowProgress(before),
			ProgressAfter:  lowProgress(s),
			EquityBefore:   eqBefore,
			EquityAfter:    eq.InexactFloat64(),
			RiskPct:        pct,
			RiskDollars:    eqBefore * pct,
			PnL:            t.RealizedPnL,
			Wins:           count(t.Outcome, trade.Win),
			Losses:         count(t.Outcome, trade.Loss),
		})
	}

	return stateOf(s, eq.InexactFloat64(), cfg, directives)
}

// ForecastFrom evaluates both branches of the next outcome without
// touching s.
func ForecastFrom(s State, equity float64, cfg StrategyConfig) Forecast {
	return Forecast{
		IfWin:  scenario(Next(s, trade.Win, cfg), equity, cfg),
		IfLoss: scenario(Next(s, trade.Loss, cfg), equity, cfg),
	}
}

func stateOf(s State, equity float64, cfg StrategyConfig, directives []Directive) RiskState {
	pct := cfg.RiskPct(s.Mode)
	return RiskState{
		Mode:               s.Mode,
		RiskPct:            pct,
		Equity:             equity,
		AllowedRiskDollars: equity * pct,
		LowWinsProgress:    lowProgress(s),
		LowWinsNeeded:      cfg.WinsToRecover,
		Forecast:           ForecastFrom(s, equity, cfg),
		Directives:         directives,
	}
}

func scenario(s State, equity float64, cfg StrategyConfig) Scenario {
	pct := cfg.RiskPct(s.Mode)
	return Scenario{
		Mode:               s.Mode,
		RiskPct:            pct,
		AllowedRiskDollars: equity * pct,
		LowWinsProgress:    lowProgress(s),
	}
}

// lowProgress reports win progress, which only exists in LOW.
func lowProgress(s State) int {
	if s.Mode == Low {
		return s.Progress
	}
	return 0
}

func count(o, want trade.Outcome) int {
	if o == want {
		return 1
	}
	return 0
}

// byEntry returns a copy sorted by entry time, then exit time, then id.
func byEntry(trades []trade.Trade) []trade.Trade {
	out := make([]trade.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool { return entryLess(out[i], out[j]) })
	return out
}

// entryOrder returns the indexes of the closed trades in the order byEntry
// folds them.
func entryOrder(trades []trade.Trade) []int {
	idx := make([]int, 0, len(trades))
	for i, t := range trades {
		if t.IsClosed() {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(i, j int) bool { return entryLess(trades[idx[i]], trades[idx[j]]) })
	return idx
}

func entryLess(a, b trade.Trade) bool {
	if !a.EntryTime.Equal(b.EntryTime) {
		return a.EntryTime.Before(b.EntryTime)
	}
	if a.ExitTime != nil && b.ExitTime != nil && !a.ExitTime.Equal(*b.ExitTime) {
		return a.ExitTime.Before(*b.ExitTime)
	}
	return a.ID < b.ID
}
