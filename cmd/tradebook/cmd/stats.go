package cmd

import (
	"encoding/json"

	"github.com/rustyeddy/tradebook/pipeline"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show win rate, profit factor and streaks",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var statsJSON bool

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print metrics as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, _, err := recompute(cfg)
	if err != nil {
		return err
	}

	if statsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(r.Metrics)
	}
	pipeline.PrintMetrics(cmd.OutOrStdout(), r.Metrics)
	return nil
}
