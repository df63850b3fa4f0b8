package risk

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// PlannedRisk is the dollar loss if a position of qty shares entered at
// entry is stopped out at stop.
func PlannedRisk(qty, entry, stop float64) float64 {
	return abs(qty) * abs(entry-stop)
}

// RR is the reward-to-risk multiple of a target against a stop.
func RR(entry, stop, target float64) float64 {
	risk := abs(entry - stop)
	reward := abs(target - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

// RiskPct is planned risk as a fraction of equity; 0 when equity is not positive.
func RiskPct(planned, equity float64) float64 {
	if equity <= 0 {
		return 0
	}
	return planned / equity
}
