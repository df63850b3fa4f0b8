// Package fills loads normalized broker executions and resting orders.
//
// Broker-specific column mapping happens upstream; this package reads the
// normalized CSV layout and rejects rows it cannot parse. Rows that parse
// but make no business sense (zero quantity, unknown side) are passed on,
// and the reconstructor reports them as warnings.
package fills

import (
	"errors"

	"github.com/rustyeddy/tradebook/trade"
)

// ErrInvalidFill is wrapped by every row-level parse error.
var ErrInvalidFill = errors.New("invalid fill")

// ErrInvalidOrder is wrapped by every pending-order parse error.
var ErrInvalidOrder = errors.New("invalid order")

// Batch is one load of a source.
type Batch struct {
	Fills  []trade.Fill
	Orders []trade.PendingOrder

	// Duplicates counts fills dropped because their id was already seen.
	Duplicates int
}

// Source supplies an ordered, deduplicated batch of fills.
type Source interface {
	Load() (Batch, error)
}
