// Package trade reconstructs position sessions (trades) from broker fills.
package trade

import "time"

// Side is the side of an execution or order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Direction is the side of a held position.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// entrySide is the execution side that adds to a position of direction d.
func (d Direction) entrySide() Side {
	if d == Short {
		return Sell
	}
	return Buy
}

// sign is +1 for long, -1 for short.
func (d Direction) sign() float64 {
	if d == Short {
		return -1
	}
	return 1
}

type Status string

const (
	Active Status = "ACTIVE"
	Closed Status = "CLOSED"
)

type Outcome string

const (
	Win       Outcome = "WIN"
	Loss      Outcome = "LOSS"
	Breakeven Outcome = "BREAKEVEN"
	Open      Outcome = "ACTIVE"
)

// BreakevenBand is the absolute P&L inside which a closed trade is a BREAKEVEN.
const BreakevenBand = 0.005

// Classify maps realized P&L onto an outcome.
func Classify(pnl float64) Outcome {
	switch {
	case pnl > BreakevenBand:
		return Win
	case pnl < -BreakevenBand:
		return Loss
	default:
		return Breakeven
	}
}

// Fill is one broker execution, normalized by a fill source.
type Fill struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	FilledTime time.Time `json:"filledTime"`
	OrderID    string    `json:"orderId,omitempty"`
	Commission float64   `json:"commission"`
	MarketDate string    `json:"marketDate"`
	RowIndex   int       `json:"rowIndex"`
	StopPrice  *float64  `json:"stopPrice,omitempty"`
}

type OrderType string

const (
	StopOrder    OrderType = "STOP"
	LimitOrder   OrderType = "LIMIT"
	MarketOrder  OrderType = "MARKET"
	UnknownOrder OrderType = "UNKNOWN"
)

// PendingOrder is a resting (unfilled) order, used to infer stops and
// targets for positions that are still open.
type PendingOrder struct {
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Price      *float64  `json:"price,omitempty"`
	StopPrice  *float64  `json:"stopPrice,omitempty"`
	LimitPrice *float64  `json:"limitPrice,omitempty"`
	Quantity   float64   `json:"quantity"`
	PlacedTime time.Time `json:"placedTime"`
	Type       OrderType `json:"type"`
}

// Leg is the part of a fill attributed to a trade. A flip splits one fill
// into an exit leg of the closed trade and an entry leg of the new one.
type Leg struct {
	FillID     string    `json:"fillId"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Time       time.Time `json:"time"`
	Commission float64   `json:"commission"`
}

// Trade is a position session: everything between a position opening from
// flat (or a flip) and returning to flat. ACTIVE trades have no exit data.
type Trade struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"side"`
	Status    Status    `json:"status"`

	EntryTime  time.Time  `json:"entryTime"`
	ExitTime   *time.Time `json:"exitTime,omitempty"`
	EntryDate  string     `json:"entryDate"`
	ExitDate   string     `json:"exitDate,omitempty"`
	EntryPrice float64    `json:"entryPrice"`
	ExitPrice  *float64   `json:"exitPrice,omitempty"`

	Quantity    float64 `json:"quantity"`
	RealizedPnL float64 `json:"realizedPnl"`
	Commission  float64 `json:"commission"`
	Outcome     Outcome `json:"outcome"`

	Entries []Leg `json:"entries"`
	Exits   []Leg `json:"exits,omitempty"`

	InitialStop  *float64 `json:"initialStop,omitempty"`
	InferredStop *float64 `json:"inferredStop,omitempty"`
	PendingExit  *float64 `json:"pendingExit,omitempty"`

	// Set by risk.Annotate from the directive in force at entry.
	RiskPctAtEntry *float64 `json:"riskPctAtEntry,omitempty"`
	EquityAtEntry  *float64 `json:"equityAtEntry,omitempty"`
}

// Legs is the number of entry and exit legs.
func (t Trade) Legs() int {
	return len(t.Entries) + len(t.Exits)
}

// IsClosed reports whether the trade has returned to flat.
func (t Trade) IsClosed() bool {
	return t.Status == Closed
}

// ClosedOnly returns the closed trades in their original order.
func ClosedOnly(trades []Trade) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsClosed() {
			out = append(out, t)
		}
	}
	return out
}

type WarningCode string

const (
	WarnSellWithoutPosition WarningCode = "SELL_WITHOUT_POSITION"
	WarnPositionFlip        WarningCode = "POSITION_FLIP"
	WarnOpenAtEnd           WarningCode = "OPEN_AT_END"
	WarnInvalidFill         WarningCode = "INVALID_FILL"
)

// Warning is a non-fatal note about input that was skipped or looks
// incomplete. Reconstruction never fails on business input.
type Warning struct {
	Code    WarningCode `json:"code"`
	FillID  string      `json:"fillId,omitempty"`
	Symbol  string      `json:"symbol"`
	Message string      `json:"message"`
}
