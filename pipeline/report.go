package pipeline

import (
	"fmt"
	"io"

	"github.com/rustyeddy/tradebook/equity"
	"github.com/rustyeddy/tradebook/metrics"
	"github.com/rustyeddy/tradebook/risk"
	"github.com/rustyeddy/tradebook/trade"
)

const rule = "--------------------------------------------------"

// Print renders a plain-text report.
func Print(w io.Writer, r Report) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Trade Book")
	fmt.Fprintln(w, "==================================================")

	PrintRisk(w, r.Risk)

	fmt.Fprintln(w)
	PrintMetrics(w, r.Metrics)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", 100*r.MaxDrawdownPct)

	if active := r.Active(); len(active) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Open Positions")
		fmt.Fprintln(w, rule)
		for _, t := range active {
			fmt.Fprintf(w, "%-8s %-5s %10g @ %-10.4f stop %-10s target %s\n",
				t.Symbol, t.Direction, t.Quantity, t.EntryPrice, price(t.InferredStop), price(t.PendingExit))
		}
		for _, d := range r.Checks {
			for _, v := range d.Violations {
				fmt.Fprintf(w, "! %s %s: %s\n", d.Symbol, v.Code, v.Msg)
			}
		}
	}

	if len(r.Daily) > 0 {
		fmt.Fprintln(w)
		PrintDaily(w, r.Daily)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Warnings")
		fmt.Fprintln(w, rule)
		for _, ws := range r.Warnings {
			fmt.Fprintf(w, "- %s %s: %s\n", ws.Code, ws.Symbol, ws.Message)
		}
	}

	fmt.Fprintln(w)
}

// PrintRisk renders the current directive and both forecast branches.
func PrintRisk(w io.Writer, s risk.RiskState) {
	fmt.Fprintln(w, "Risk Directive")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Mode:          %s\n", s.Mode)
	fmt.Fprintf(w, "Risk:          %.2f%%\n", 100*s.RiskPct)
	fmt.Fprintf(w, "Equity:        %.2f\n", s.Equity)
	fmt.Fprintf(w, "Allowed Risk:  %.2f\n", s.AllowedRiskDollars)
	if s.Mode == risk.Low {
		fmt.Fprintf(w, "Recovery:      %d/%d wins\n", s.LowWinsProgress, s.LowWinsNeeded)
	}
	fmt.Fprintf(w, "If Win:        %s %.2f%% (%.2f)\n",
		s.Forecast.IfWin.Mode, 100*s.Forecast.IfWin.RiskPct, s.Forecast.IfWin.AllowedRiskDollars)
	fmt.Fprintf(w, "If Loss:       %s %.2f%% (%.2f)\n",
		s.Forecast.IfLoss.Mode, 100*s.Forecast.IfLoss.RiskPct, s.Forecast.IfLoss.AllowedRiskDollars)
}

// PrintMetrics renders trade statistics.
func PrintMetrics(w io.Writer, m metrics.Summary) {
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Trades:        %d\n", m.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", m.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", m.Losses)
	fmt.Fprintf(w, "Breakevens:    %d\n", m.Breakevens)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", 100*m.WinRate)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", m.TotalPnL)
	fmt.Fprintf(w, "Avg Win:       %.2f\n", m.AvgWin)
	fmt.Fprintf(w, "Avg Loss:      %.2f\n", m.AvgLoss)
	if m.ProfitFactor >= metrics.ProfitFactorCap {
		fmt.Fprintln(w, "Profit Factor: no losses")
	} else if m.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", m.ProfitFactor)
	}
	fmt.Fprintf(w, "Streaks:       %dW/%dL now, %dW/%dL max\n",
		m.CurrentWinStreak, m.CurrentLossStreak, m.MaxWinStreak, m.MaxLossStreak)
}

// PrintDaily renders the daily equity table.
func PrintDaily(w io.Writer, rows []equity.DailyRow) {
	fmt.Fprintln(w, "Daily Equity")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-10s %10s %12s %8s %6s\n", "Date", "P/L", "Equity", "DD", "W/L/B")
	for _, d := range rows {
		fmt.Fprintf(w, "%-10s %10.2f %12.2f %7.2f%% %d/%d/%d\n",
			d.Date, d.PnL, d.Equity, 100*d.DrawdownPct, d.Wins, d.Losses, d.Breakevens)
	}
}

// PrintDirectives renders the throttle trail.
func PrintDirectives(w io.Writer, ds []risk.Directive) {
	fmt.Fprintln(w, "Directives")
	fmt.Fprintln(w, rule)
	for _, d := range ds {
		fmt.Fprintf(w, "%s %-4s -> %-4s risk %.2f%% (%.2f) pnl %.2f progress %d -> %d\n",
			d.Date, d.ModeBefore, d.ModeAfter, 100*d.RiskPct, d.RiskDollars, d.PnL, d.ProgressBefore, d.ProgressAfter)
	}
}

// PrintTrades renders one line per trade.
func PrintTrades(w io.Writer, trades []trade.Trade) {
	for _, t := range trades {
		fmt.Fprintf(w, "%s %-8s %-5s %-6s %10g %10.4f -> %-10s pnl %10.2f %s\n",
			t.EntryDate, t.Symbol, t.Direction, t.Status, t.Quantity, t.EntryPrice, price(t.ExitPrice), t.RealizedPnL, t.ID)
	}
}

func price(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *p)
}
