package risk

import "math"

// Inputs describes a position to size against the current directive.
type Inputs struct {
	Equity     float64
	RiskPct    float64 // 0.03 in HIGH, 0.001 in LOW by default
	EntryPrice float64
	StopPrice  float64
}

type Result struct {
	Shares       float64
	RiskPerShare float64
	RiskAmount   float64
}

// Calculate returns the whole number of shares whose loss to the stop stays
// within Equity*RiskPct. A stop at the entry price sizes to zero.
func Calculate(in Inputs) Result {
	perShare := abs(in.EntryPrice - in.StopPrice)
	riskAmt := in.Equity * in.RiskPct

	if perShare == 0 || riskAmt <= 0 {
		return Result{RiskPerShare: perShare, RiskAmount: math.Max(riskAmt, 0)}
	}

	return Result{
		Shares:       math.Floor(riskAmt / perShare),
		RiskPerShare: perShare,
		RiskAmount:   riskAmt,
	}
}

// Size sizes a position against the allowed risk of a RiskState.
func (s RiskState) Size(entry, stop float64) Result {
	return Calculate(Inputs{
		Equity:     s.Equity,
		RiskPct:    s.RiskPct,
		EntryPrice: entry,
		StopPrice:  stop,
	})
}
