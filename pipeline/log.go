package pipeline

import (
	"github.com/rs/zerolog"
	"github.com/rustyeddy/tradebook/trade"
)

// LogWarnings writes one WARN line per reconstruction warning. OPEN_AT_END
// is informational and logged at INFO.
func LogWarnings(log zerolog.Logger, ws []trade.Warning) {
	for _, w := range ws {
		ev := log.Warn()
		if w.Code == trade.WarnOpenAtEnd {
			ev = log.Info()
		}
		ev.Str("code", string(w.Code)).
			Str("symbol", w.Symbol).
			Str("fill_id", w.FillID).
			Msg(w.Message)
	}
}

// LogSummary writes the headline numbers of a report.
func LogSummary(log zerolog.Logger, r Report) {
	log.Info().
		Int("trades", len(r.Trades)).
		Int("closed", r.Metrics.Trades).
		Int("warnings", len(r.Warnings)).
		Str("mode", string(r.Risk.Mode)).
		Float64("risk_pct", r.Risk.RiskPct).
		Float64("equity", r.Risk.Equity).
		Float64("allowed_risk", r.Risk.AllowedRiskDollars).
		Msg("recomputed")

	for _, d := range r.Checks {
		if d.Allowed {
			continue
		}
		for _, v := range d.Violations {
			log.Warn().
				Str("trade_id", d.TradeID).
				Str("symbol", d.Symbol).
				Str("code", v.Code).
				Msg(v.Msg)
		}
	}
}
