package risk

// Mode is the risk regime assigned by the restart throttle.
type Mode string

const (
	High Mode = "HIGH"
	Low  Mode = "LOW"
)

// StrategyConfig holds the throttle constants. It is passed by value into
// every computation so several strategies can be evaluated side by side.
type StrategyConfig struct {
	HighModeRiskPct float64 `json:"highModeRiskPct"` // 0.03
	LowModeRiskPct  float64 `json:"lowModeRiskPct"`  // 0.001

	// WinsToRecover is the number of LOW-mode wins that restore HIGH.
	WinsToRecover int `json:"winsToRecover"`
	// LossesToDrop is the number of consecutive HIGH-mode losses that drop to LOW.
	LossesToDrop int `json:"lossesToDrop"`
}

// DefaultStrategy returns the standard restart throttle: 3% while HIGH,
// 0.1% while LOW, two wins to recover and one loss to drop.
func DefaultStrategy() StrategyConfig {
	return StrategyConfig{
		HighModeRiskPct: 0.03,
		LowModeRiskPct:  0.001,
		WinsToRecover:   2,
		LossesToDrop:    1,
	}
}

// RiskPct returns the fraction of equity allowed in mode m.
func (c StrategyConfig) RiskPct(m Mode) float64 {
	if m == Low {
		return c.LowModeRiskPct
	}
	return c.HighModeRiskPct
}

func (c StrategyConfig) lossesToDrop() int {
	if c.LossesToDrop < 1 {
		return 1
	}
	return c.LossesToDrop
}
