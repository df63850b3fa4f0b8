package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/rustyeddy/tradebook/pipeline"
	"github.com/spf13/cobra"
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Show the current risk directive and forecast",
	Long: `Print the current throttle mode, the allowed risk percentage and dollars,
LOW-mode recovery progress and what the next WIN or LOSS would change.

With --entry and --stop, also size a position against the allowance.

Examples:
  tradebook risk
  tradebook risk --json
  tradebook risk --entry 101.50 --stop 99.80`,
	Args: cobra.NoArgs,
	RunE: runRisk,
}

var (
	riskJSON  bool
	riskEntry float64
	riskStop  float64
)

func init() {
	rootCmd.AddCommand(riskCmd)

	riskCmd.Flags().BoolVar(&riskJSON, "json", false, "print the risk state as JSON")
	riskCmd.Flags().Float64Var(&riskEntry, "entry", 0, "planned entry price")
	riskCmd.Flags().Float64Var(&riskStop, "stop", 0, "planned stop price")
}

func runRisk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, _, err := recompute(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if riskJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r.Risk)
	}

	pipeline.PrintRisk(out, r.Risk)
	if riskEntry > 0 && riskStop > 0 {
		sz := r.Risk.Size(riskEntry, riskStop)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Size:          %.0f shares (%.4f/share, %.2f at risk)\n",
			sz.Shares, sz.RiskPerShare, sz.Shares*sz.RiskPerShare)
	}
	return nil
}
