package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradebook/trade"
)

// FormatTradeOrg renders a trade as an Org-mode block for a trading journal.
// Structured facts go in the PROPERTIES drawer; Thesis/Execution/Review are
// left for the trader to fill in.
func FormatTradeOrg(t trade.Trade) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Symbol, t.Direction, shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":SYMBOL: %s\n", t.Symbol)
	fmt.Fprintf(&b, ":SIDE: %s\n", t.Direction)
	fmt.Fprintf(&b, ":STATUS: %s\n", t.Status)
	fmt.Fprintf(&b, ":QUANTITY: %g\n", t.Quantity)
	fmt.Fprintf(&b, ":ENTRY_PRICE: %.4f\n", t.EntryPrice)
	fmt.Fprintf(&b, ":OPEN_TIME: %s\n", t.EntryTime.UTC().Format(time.RFC3339))
	if t.ExitTime != nil && t.ExitPrice != nil {
		fmt.Fprintf(&b, ":EXIT_PRICE: %.4f\n", *t.ExitPrice)
		fmt.Fprintf(&b, ":CLOSE_TIME: %s\n", t.ExitTime.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, ":REALIZED_PL: %.2f\n", t.RealizedPnL)
	fmt.Fprintf(&b, ":COMMISSION: %.2f\n", t.Commission)
	fmt.Fprintf(&b, ":OUTCOME: %s\n", t.Outcome)
	fmt.Fprintf(&b, ":LEGS: %d\n", t.Legs())
	if t.InferredStop != nil {
		fmt.Fprintf(&b, ":STOP: %.4f\n", *t.InferredStop)
	}
	if t.RiskPctAtEntry != nil {
		fmt.Fprintf(&b, ":RISK_PCT: %.2f\n", 100**t.RiskPctAtEntry)
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n")
	for _, l := range t.Entries {
		fmt.Fprintf(&b, "- in  %g @ %.4f %s\n", l.Quantity, l.Price, l.Time.UTC().Format(time.RFC3339))
	}
	for _, l := range t.Exits {
		fmt.Fprintf(&b, "- out %g @ %.4f %s\n", l.Quantity, l.Price, l.Time.UTC().Format(time.RFC3339))
	}
	b.WriteString("\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []trade.Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
