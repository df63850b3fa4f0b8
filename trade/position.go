package trade

import (
	"time"

	"github.com/shopspring/decimal"
)

// QtyEpsilon is the quantity below which a position counts as flat.
const QtyEpsilon = 1e-3

// lot is one accumulation event held in an open position. Exits consume
// lots first-in first-out.
type lot struct {
	Quantity float64
	Price    float64
}

// position is the per-symbol accumulator used during one reconstruction
// pass. It never outlives Reconstruct.
type position struct {
	symbol    string
	direction Direction
	qty       float64
	avgEntry  float64
	lots      []lot

	entries []Leg
	exits   []Leg

	openedAt  time.Time
	entryDate string

	gross      decimal.Decimal
	commission decimal.Decimal

	initialStop *float64
	lastStop    *float64
}

func newPosition(symbol string, d Direction, date string, leg Leg, comm decimal.Decimal, stop *float64) *position {
	p := &position{
		symbol:    symbol,
		direction: d,
		openedAt:  leg.Time,
		entryDate: date,
	}
	p.add(leg, comm, stop)
	return p
}

// add books an entry leg and recomputes the weighted-average entry price.
func (p *position) add(leg Leg, comm decimal.Decimal, stop *float64) {
	total := p.qty + leg.Quantity
	p.avgEntry = (p.avgEntry*p.qty + leg.Price*leg.Quantity) / total
	p.qty = total
	p.lots = append(p.lots, lot{Quantity: leg.Quantity, Price: leg.Price})
	p.entries = append(p.entries, leg)
	p.commission = p.commission.Add(comm)

	if stop != nil {
		s := *stop
		if p.initialStop == nil {
			p.initialStop = &s
		}
		p.lastStop = &s
	}
}

// reduce books an exit leg, consuming lots FIFO and accumulating gross
// realized P&L for the closed quantity.
func (p *position) reduce(leg Leg, comm decimal.Decimal) {
	sign := decimal.NewFromFloat(p.direction.sign())
	exit := decimal.NewFromFloat(leg.Price)

	remaining := leg.Quantity
	for remaining > 0 && len(p.lots) > 0 {
		head := &p.lots[0]
		take := head.Quantity
		if remaining < take {
			take = remaining
		}

		pnl := exit.Sub(decimal.NewFromFloat(head.Price)).Mul(decimal.NewFromFloat(take)).Mul(sign)
		p.gross = p.gross.Add(pnl)

		head.Quantity -= take
		remaining -= take
		if head.Quantity <= QtyEpsilon {
			p.lots = p.lots[1:]
		}
	}

	p.qty -= leg.Quantity
	if p.qty < QtyEpsilon {
		p.qty = 0
	}
	p.exits = append(p.exits, leg)
	p.commission = p.commission.Add(comm)
}

func (p *position) flat() bool {
	return p.qty <= QtyEpsilon
}

// closed builds the CLOSED trade for a position that has returned to flat.
func (p *position) closed(exitDate string) Trade {
	exitTime := p.exits[len(p.exits)-1].Time
	exitPx := weightedPrice(p.exits)
	pnl := p.gross.Sub(p.commission).InexactFloat64()

	t := Trade{
		Symbol:      p.symbol,
		Direction:   p.direction,
		Status:      Closed,
		EntryTime:   p.openedAt,
		ExitTime:    &exitTime,
		EntryDate:   p.entryDate,
		ExitDate:    exitDate,
		EntryPrice:  weightedPrice(p.entries),
		ExitPrice:   &exitPx,
		Quantity:    totalQty(p.entries),
		RealizedPnL: pnl,
		Commission:  p.commission.InexactFloat64(),
		Outcome:     Classify(pnl),
		Entries:     p.entries,
		Exits:       p.exits,
		InitialStop: p.initialStop,
	}
	t.ID = tradeID(t)
	return t
}

// active builds the ACTIVE trade for a position still held at end of input.
// RealizedPnL carries only the gross result of partial exits.
func (p *position) active() Trade {
	t := Trade{
		Symbol:      p.symbol,
		Direction:   p.direction,
		Status:      Active,
		EntryTime:   p.openedAt,
		EntryDate:   p.entryDate,
		EntryPrice:  p.avgEntry,
		Quantity:    p.qty,
		RealizedPnL: p.gross.InexactFloat64(),
		Commission:  p.commission.InexactFloat64(),
		Outcome:     Open,
		Entries:     p.entries,
		Exits:       p.exits,
		InitialStop: p.initialStop,
	}
	t.ID = tradeID(t)
	return t
}

func weightedPrice(legs []Leg) float64 {
	notional := decimal.Zero
	qty := decimal.Zero
	for _, l := range legs {
		q := decimal.NewFromFloat(l.Quantity)
		notional = notional.Add(q.Mul(decimal.NewFromFloat(l.Price)))
		qty = qty.Add(q)
	}
	if qty.IsZero() {
		return 0
	}
	return notional.Div(qty).InexactFloat64()
}

func totalQty(legs []Leg) float64 {
	sum := decimal.Zero
	for _, l := range legs {
		sum = sum.Add(decimal.NewFromFloat(l.Quantity))
	}
	return sum.InexactFloat64()
}
