package cmd

import (
	"fmt"

	"github.com/rustyeddy/tradebook/pipeline"
	"github.com/spf13/cobra"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show daily equity, drawdown and the directive trail",
	Args:  cobra.NoArgs,
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, _, err := recompute(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	pipeline.PrintDaily(out, r.Daily)
	fmt.Fprintf(out, "Max Drawdown:  %.2f%%\n", 100*r.MaxDrawdownPct)
	fmt.Fprintln(out)
	pipeline.PrintDirectives(out, r.Directives)
	return nil
}
