package risk

import (
	"fmt"

	"github.com/rustyeddy/tradebook/trade"
)

type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Decision is the result of checking one open trade against the current
// directive.
type Decision struct {
	TradeID    string      `json:"tradeId"`
	Symbol     string      `json:"symbol"`
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations,omitempty"`

	PlannedRisk    float64 `json:"plannedRisk"`
	PlannedRiskPct float64 `json:"plannedRiskPct"`
	AllowedRisk    float64 `json:"allowedRisk"`
	PlannedRR      float64 `json:"plannedRR"`
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// riskTolerance absorbs rounding in broker-reported prices.
const riskTolerance = 0.01

// Evaluate checks an ACTIVE trade's open risk, measured to its inferred
// stop, against the allowed risk dollars of s. Closed trades always pass.
func Evaluate(t trade.Trade, s RiskState) Decision {
	d := Decision{
		TradeID:     t.ID,
		Symbol:      t.Symbol,
		Allowed:     true,
		AllowedRisk: s.AllowedRiskDollars,
	}
	if t.IsClosed() {
		return d
	}

	if t.InferredStop == nil {
		d.add("NO_STOP", fmt.Sprintf("%s %s %g has no protective stop", t.Symbol, t.Direction, t.Quantity))
		return d
	}

	d.PlannedRisk = PlannedRisk(t.Quantity, t.EntryPrice, *t.InferredStop)
	d.PlannedRiskPct = RiskPct(d.PlannedRisk, s.Equity)
	if t.PendingExit != nil {
		d.PlannedRR = RR(t.EntryPrice, *t.InferredStop, *t.PendingExit)
	}

	if d.PlannedRisk > s.AllowedRiskDollars+riskTolerance {
		d.add("RISK_TOO_HIGH",
			fmt.Sprintf("open risk %.2f (%.2f%%) exceeds %s allowance %.2f (%.2f%%)",
				d.PlannedRisk, 100*d.PlannedRiskPct, s.Mode, s.AllowedRiskDollars, 100*s.RiskPct))
	}
	return d
}

// EvaluateOpen checks every ACTIVE trade.
func EvaluateOpen(trades []trade.Trade, s RiskState) []Decision {
	var out []Decision
	for _, t := range trades {
		if t.Status == trade.Active {
			out = append(out, Evaluate(t, s))
		}
	}
	return out
}
