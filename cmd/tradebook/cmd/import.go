package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/tradebook/pipeline"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Rebuild trades from fills and record them in the journal",
	Long: `Load the normalized fills (and optional pending orders), rebuild every
trade, apply the restart throttle and write trades and daily equity to the
journal. Re-importing the same fills is idempotent.

Examples:
  tradebook import --fills fills.csv --orders orders.csv
  tradebook import -c tradebook.yaml --no-journal`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

var (
	importFills     string
	importOrders    string
	importNoJournal bool
	importQuiet     bool
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFills, "fills", "f", "", "normalized fills CSV (overrides config)")
	importCmd.Flags().StringVarP(&importOrders, "orders", "o", "", "pending orders CSV (overrides config)")
	importCmd.Flags().BoolVar(&importNoJournal, "no-journal", false, "do not write the journal")
	importCmd.Flags().BoolVarP(&importQuiet, "quiet", "q", false, "do not print the report")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if importFills != "" {
		cfg.Input.FillsFile = importFills
	}
	if importOrders != "" {
		cfg.Input.OrdersFile = importOrders
	}

	r, b, err := recompute(cfg)
	if err != nil {
		return err
	}
	pipeline.LogWarnings(log.Logger, r.Warnings)
	pipeline.LogSummary(log.Logger, r)

	if !importNoJournal {
		run, err := persist(cmd.Context(), cfg, r, b)
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		log.Info().
			Str("run_id", run.RunID).
			Str("journal", cfg.Journal.Type).
			Int("trades", run.Trades).
			Msg("journal updated")
	}

	if !importQuiet {
		pipeline.Print(cmd.OutOrStdout(), r)
	}
	return nil
}
