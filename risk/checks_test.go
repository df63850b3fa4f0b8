package risk

import (
	"testing"

	"github.com/rustyeddy/tradebook/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(x float64) *float64 { return &x }

func activeTrade(qty, entry float64, stop, target *float64) trade.Trade {
	return trade.Trade{
		ID:           "A1",
		Symbol:       "AAPL",
		Direction:    trade.Long,
		Status:       trade.Active,
		Outcome:      trade.Open,
		EntryTime:    day0,
		EntryPrice:   entry,
		Quantity:     qty,
		InferredStop: stop,
		PendingExit:  target,
	}
}

func TestEvaluateWithinAllowance(t *testing.T) {
	t.Parallel()

	s := Compute(nil, 10000, DefaultStrategy())
	d := Evaluate(activeTrade(100, 10, ptr(9.5), ptr(11)), s)

	assert.True(t, d.Allowed)
	assert.Empty(t, d.Violations)
	assert.InDelta(t, 50, d.PlannedRisk, 1e-9)
	assert.InDelta(t, 0.005, d.PlannedRiskPct, 1e-12)
	assert.InDelta(t, 300, d.AllowedRisk, 1e-9)
	assert.InDelta(t, 2, d.PlannedRR, 1e-9)
}

func TestEvaluateTooMuchRiskInLow(t *testing.T) {
	t.Parallel()

	s := Compute(outcomes(trade.Loss), 10000, DefaultStrategy())
	d := Evaluate(activeTrade(100, 10, ptr(9.5), nil), s)

	assert.False(t, d.Allowed)
	require.Len(t, d.Violations, 1)
	assert.Equal(t, "RISK_TOO_HIGH", d.Violations[0].Code)
	assert.Contains(t, d.Violations[0].Msg, "LOW")
}

func TestEvaluateNoStop(t *testing.T) {
	t.Parallel()

	s := Compute(nil, 10000, DefaultStrategy())
	d := Evaluate(activeTrade(100, 10, nil, nil), s)

	assert.False(t, d.Allowed)
	require.Len(t, d.Violations, 1)
	assert.Equal(t, "NO_STOP", d.Violations[0].Code)
}

func TestEvaluateOpenSkipsClosed(t *testing.T) {
	t.Parallel()

	s := Compute(nil, 10000, DefaultStrategy())
	trades := []trade.Trade{closedAt(0, trade.Win, 10), activeTrade(1, 10, ptr(9), nil)}

	ds := EvaluateOpen(trades, s)
	require.Len(t, ds, 1)
	assert.Equal(t, "A1", ds[0].TradeID)
	assert.True(t, ds[0].Allowed)

	assert.True(t, Evaluate(closedAt(0, trade.Loss, -10), s).Allowed)
}
