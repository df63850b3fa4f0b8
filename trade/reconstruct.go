package trade

import (
	"fmt"
	"math"
	"sort"

	"github.com/rustyeddy/tradebook/id"
	"github.com/rustyeddy/tradebook/market"
	"github.com/shopspring/decimal"
)

// Options tunes a reconstruction pass.
type Options struct {
	// Calendar derives market-day keys for fills that arrive without one.
	Calendar market.Calendar

	// AllowShort lets a SELL against a flat book open a short position.
	// When false such fills are dropped with a warning.
	AllowShort bool
}

// Result is the output of Reconstruct.
type Result struct {
	Trades   []Trade   `json:"trades"`
	Warnings []Warning `json:"warnings"`
}

// Reconstruct turns fills into trades. Closed trades are emitted in the
// order they return to flat; positions still held at the end follow as
// ACTIVE trades, with stops and targets inferred from orders.
//
// The same fills in the same order always produce identical trades,
// including ids.
func Reconstruct(fills []Fill, orders []PendingOrder, opts Options) Result {
	r := &reconstructor{
		opts:      opts,
		positions: make(map[string]*position),
		trades:    []Trade{},
		warnings:  []Warning{},
	}

	for _, f := range SortFills(fills) {
		r.apply(f)
	}
	r.finish(orders)

	return Result{Trades: r.trades, Warnings: r.warnings}
}

// SortFills returns a copy of fills ordered by execution time, ties broken
// by source row. Symbol and side never take part in the ordering.
func SortFills(fills []Fill) []Fill {
	out := make([]Fill, len(fills))
	copy(out, fills)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].FilledTime.Equal(out[j].FilledTime) {
			return out[i].FilledTime.Before(out[j].FilledTime)
		}
		return out[i].RowIndex < out[j].RowIndex
	})
	return out
}

type reconstructor struct {
	opts      Options
	positions map[string]*position
	trades    []Trade
	warnings  []Warning
}

func (r *reconstructor) warn(code WarningCode, f Fill, format string, args ...any) {
	r.warnings = append(r.warnings, Warning{
		Code:    code,
		FillID:  f.ID,
		Symbol:  f.Symbol,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *reconstructor) apply(f Fill) {
	if msg := invalid(f); msg != "" {
		r.warn(WarnInvalidFill, f, "%s", msg)
		return
	}

	date := f.MarketDate
	if date == "" {
		date = r.opts.Calendar.DayKey(f.FilledTime)
	}
	comm := decimal.NewFromFloat(f.Commission)

	p, held := r.positions[f.Symbol]
	if !held {
		d := Long
		if f.Side == Sell {
			if !r.opts.AllowShort {
				r.warn(WarnSellWithoutPosition, f, "sell without position: %g %s @ %g", f.Quantity, f.Symbol, f.Price)
				return
			}
			d = Short
		}
		r.positions[f.Symbol] = newPosition(f.Symbol, d, date, legOf(f, f.Quantity, comm), comm, f.StopPrice)
		return
	}

	if f.Side == p.direction.entrySide() {
		p.add(legOf(f, f.Quantity, comm), comm, f.StopPrice)
		return
	}

	closing := math.Min(f.Quantity, p.qty)
	flip := f.Quantity - closing
	if flip <= QtyEpsilon {
		closing, flip = f.Quantity, 0
	}

	closeComm := comm
	if flip > 0 {
		closeComm = comm.Mul(decimal.NewFromFloat(closing)).Div(decimal.NewFromFloat(f.Quantity))
	}
	p.reduce(legOf(f, closing, closeComm), closeComm)

	if !p.flat() {
		return
	}
	r.trades = append(r.trades, p.closed(date))
	delete(r.positions, f.Symbol)

	if flip > 0 {
		d := Short
		if p.direction == Short {
			d = Long
		}
		r.warn(WarnPositionFlip, f, "%s %g exceeds held %s %g; opened %s %g (check for missing history)",
			f.Side, f.Quantity, p.direction, closing, d, flip)
		flipComm := comm.Sub(closeComm)
		r.positions[f.Symbol] = newPosition(f.Symbol, d, date, legOf(f, flip, flipComm), flipComm, f.StopPrice)
	}
}

// finish emits ACTIVE trades for positions still held, oldest first.
func (r *reconstructor) finish(orders []PendingOrder) {
	open := make([]*position, 0, len(r.positions))
	for _, p := range r.positions {
		open = append(open, p)
	}
	sort.Slice(open, func(i, j int) bool {
		if !open[i].openedAt.Equal(open[j].openedAt) {
			return open[i].openedAt.Before(open[j].openedAt)
		}
		return open[i].symbol < open[j].symbol
	})

	for _, p := range open {
		t := p.active()
		t.InferredStop, t.PendingExit = inferStops(p, orders)
		r.trades = append(r.trades, t)
		r.warnings = append(r.warnings, Warning{
			Code:    WarnOpenAtEnd,
			Symbol:  p.symbol,
			Message: fmt.Sprintf("%s %s %g still open at end of input", p.symbol, p.direction, p.qty),
		})
	}
}

func legOf(f Fill, qty float64, comm decimal.Decimal) Leg {
	return Leg{
		FillID:     f.ID,
		Quantity:   qty,
		Price:      f.Price,
		Time:       f.FilledTime,
		Commission: comm.InexactFloat64(),
	}
}

// invalid returns why a fill cannot be booked, or "" if it can.
func invalid(f Fill) string {
	switch {
	case f.Symbol == "":
		return "missing symbol"
	case f.Side != Buy && f.Side != Sell:
		return fmt.Sprintf("unknown side %q", f.Side)
	case !(f.Quantity > 0) || math.IsInf(f.Quantity, 0):
		return fmt.Sprintf("quantity %g must be positive", f.Quantity)
	case !(f.Price > 0) || math.IsInf(f.Price, 0):
		return fmt.Sprintf("price %g must be positive", f.Price)
	case f.Commission < 0 || math.IsNaN(f.Commission) || math.IsInf(f.Commission, 0):
		return fmt.Sprintf("commission %g must be finite and not negative", f.Commission)
	}
	return ""
}

func tradeID(t Trade) string {
	k := id.TradeKey{
		Symbol:     t.Symbol,
		EntryTime:  t.EntryTime,
		ExitTime:   t.ExitTime,
		Quantity:   t.Quantity,
		EntryPrice: t.EntryPrice,
		Legs:       t.Legs(),
	}
	if t.ExitPrice != nil {
		k.ExitPrice = *t.ExitPrice
	}
	return id.Trade(k)
}
