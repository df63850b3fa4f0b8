package risk

import (
	"sort"

	"github.com/rustyeddy/tradebook/trade"
	"github.com/shopspring/decimal"
)

// Directive records one step of the throttle: the directive a trade (or a
// whole trading day) was sized with and the state its outcomes produced.
type Directive struct {
	Date           string   `json:"date"`
	TradeIDs       []string `json:"tradeIds"`
	ModeBefore     Mode     `json:"modeBefore"`
	ModeAfter      Mode     `json:"modeAfter"`
	ProgressBefore int      `json:"progressBefore"`
	ProgressAfter  int      `json:"progressAfter"`
	EquityBefore   float64  `json:"equityBefore"`
	EquityAfter    float64  `json:"equityAfter"`
	RiskPct        float64  `json:"riskPct"`
	RiskDollars    float64  `json:"riskDollars"`
	PnL            float64  `json:"pnl"`
	Wins           int      `json:"wins"`
	Losses         int      `json:"losses"`
}

// Daily is the daily-lock variant of Compute: every trade entered on the
// same market day uses the directive computed at the start of that day.
// The day's outcomes are then applied in entry order.
func Daily(trades []trade.Trade, startingEquity float64, cfg StrategyConfig) []Directive {
	closed := byEntry(trade.ClosedOnly(trades))

	days := make(map[string][]trade.Trade)
	for _, t := range closed {
		days[t.EntryDate] = append(days[t.EntryDate], t)
	}
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := Initial()
	eq := decimal.NewFromFloat(startingEquity)
	out := make([]Directive, 0, len(keys))

	for _, day := range keys {
		before := s
		eqBefore := eq.InexactFloat64()
		pct := cfg.RiskPct(before.Mode)
		d := Directive{
			Date:           day,
			ModeBefore:     before.Mode,
			ProgressBefore: lowProgress(before),
			EquityBefore:   eqBefore,
			RiskPct:        pct,
			RiskDollars:    eqBefore * pct,
		}

		pnl := decimal.Zero
		for _, t := range days[day] {
			s = Next(s, t.Outcome, cfg)
			pnl = pnl.Add(decimal.NewFromFloat(t.RealizedPnL))
			d.TradeIDs = append(d.TradeIDs, t.ID)
			d.Wins += count(t.Outcome, trade.Win)
			d.Losses += count(t.Outcome, trade.Loss)
		}
		eq = eq.Add(pnl)

		d.ModeAfter = s.Mode
		d.ProgressAfter = lowProgress(s)
		d.EquityAfter = eq.InexactFloat64()
		d.PnL = pnl.InexactFloat64()
		out = append(out, d)
	}
	return out
}

// Annotate returns a copy of trades in which every closed trade carries
// the risk percentage and equity in force at its entry. With dailyLock
// those come from the day-start directive. Active trades are copied as is.
// Snapshots follow each trade's position in the fold, so two trades that
// share an id still get their own.
func Annotate(trades []trade.Trade, startingEquity float64, cfg StrategyConfig, dailyLock bool) []trade.Trade {
	out := make([]trade.Trade, len(trades))
	copy(out, trades)

	order := entryOrder(trades)
	set := func(i int, d Directive) {
		pct, eq := d.RiskPct, d.EquityBefore
		out[i].RiskPctAtEntry = &pct
		out[i].EquityAtEntry = &eq
	}

	if !dailyLock {
		for k, d := range Compute(trades, startingEquity, cfg).Directives {
			set(order[k], d)
		}
		return out
	}

	days := make(map[string][]int)
	for _, i := range order {
		days[trades[i].EntryDate] = append(days[trades[i].EntryDate], i)
	}
	for _, d := range Daily(trades, startingEquity, cfg) {
		for _, i := range days[d.Date] {
			set(i, d)
		}
	}
	return out
}
