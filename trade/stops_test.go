package trade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferStopFromRestingOrder(t *testing.T) {
	t.Parallel()

	fills := []Fill{fill(0, Buy, 10, 10.00, 0)}
	orders := []PendingOrder{
		{Symbol: "AAPL", Side: Sell, StopPrice: ptr(9.50), Quantity: 10, PlacedTime: t0.Add(time.Second), Type: StopOrder},
	}

	res := Reconstruct(fills, orders, Options{})
	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, Active, tr.Status)
	require.NotNil(t, tr.InferredStop)
	assert.Equal(t, 9.50, *tr.InferredStop)
	assert.Nil(t, tr.PendingExit)
	assert.Equal(t, []WarningCode{WarnOpenAtEnd}, warningCodes(res.Warnings))
}

func TestInferNearestStopAndTarget(t *testing.T) {
	t.Parallel()

	fills := []Fill{fill(0, Buy, 10, 10.00, 0)}
	orders := []PendingOrder{
		{Symbol: "AAPL", Side: Sell, StopPrice: ptr(9.00), PlacedTime: t0, Type: StopOrder},
		{Symbol: "AAPL", Side: Sell, StopPrice: ptr(9.60), PlacedTime: t0.Add(time.Minute), Type: StopOrder},
		{Symbol: "AAPL", Side: Sell, LimitPrice: ptr(12.00), PlacedTime: t0.Add(time.Minute), Type: LimitOrder},
		{Symbol: "AAPL", Side: Sell, LimitPrice: ptr(11.00), PlacedTime: t0.Add(time.Minute), Type: LimitOrder},
		// placed before entry
		{Symbol: "AAPL", Side: Sell, StopPrice: ptr(9.90), PlacedTime: t0.Add(-time.Minute), Type: StopOrder},
		// wrong side and wrong symbol
		{Symbol: "AAPL", Side: Buy, StopPrice: ptr(9.95), PlacedTime: t0.Add(time.Minute), Type: StopOrder},
		{Symbol: "MSFT", Side: Sell, StopPrice: ptr(9.95), PlacedTime: t0.Add(time.Minute), Type: StopOrder},
		// no price at all
		{Symbol: "AAPL", Side: Sell, PlacedTime: t0.Add(time.Minute), Type: MarketOrder},
	}

	res := Reconstruct(fills, orders, Options{})
	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	require.NotNil(t, tr.InferredStop)
	require.NotNil(t, tr.PendingExit)
	assert.Equal(t, 9.60, *tr.InferredStop)
	assert.Equal(t, 11.00, *tr.PendingExit)
}

func TestInferStopForShort(t *testing.T) {
	t.Parallel()

	fills := []Fill{fill(0, Sell, 10, 20.00, 0)}
	orders := []PendingOrder{
		{Symbol: "AAPL", Side: Buy, Price: ptr(21.00), PlacedTime: t0, Type: UnknownOrder},
		{Symbol: "AAPL", Side: Buy, Price: ptr(18.00), PlacedTime: t0, Type: UnknownOrder},
	}

	res := Reconstruct(fills, orders, Options{AllowShort: true})
	require.Len(t, res.Trades, 1)
	assert.Equal(t, 21.00, *res.Trades[0].InferredStop)
	assert.Equal(t, 18.00, *res.Trades[0].PendingExit)
}

func TestNoCandidatesLeavesStopsNil(t *testing.T) {
	t.Parallel()

	res := Reconstruct([]Fill{fill(0, Buy, 10, 10.00, 0)}, nil, Options{})
	require.Len(t, res.Trades, 1)
	assert.Nil(t, res.Trades[0].InferredStop)
	assert.Nil(t, res.Trades[0].PendingExit)
}

func TestFillStopIsFallback(t *testing.T) {
	t.Parallel()

	buy := fill(0, Buy, 10, 10.00, 0)
	buy.StopPrice = ptr(9.25)

	res := Reconstruct([]Fill{buy}, nil, Options{})
	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	require.NotNil(t, tr.InferredStop)
	assert.Equal(t, 9.25, *tr.InferredStop)
	require.NotNil(t, tr.InitialStop)
	assert.Equal(t, 9.25, *tr.InitialStop)
}

func TestActiveAfterPartialExit(t *testing.T) {
	t.Parallel()

	fills := []Fill{
		fill(0, Buy, 10, 10.00, 0),
		fill(1, Sell, 4, 11.00, time.Minute),
	}

	res := Reconstruct(fills, nil, Options{})
	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, Active, tr.Status)
	assert.InDelta(t, 6, tr.Quantity, 1e-9)
	assert.InDelta(t, 10, tr.EntryPrice, 1e-9)
	assert.InDelta(t, 4, tr.RealizedPnL, 1e-9)
	assert.Len(t, tr.Exits, 1)
}
