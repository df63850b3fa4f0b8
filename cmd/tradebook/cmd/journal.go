package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/pipeline"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the trade journal",
	Long: `Query and display trade journal records from the SQLite database.

Subcommands:
  trade  - Get details of a specific trade by ID
  today  - List trades closed today (market calendar)
  day    - List trades closed on a specific market day
  range  - List trades closed between two market days, inclusive
  list   - List every trade
  last   - Show the most recent import

Examples:
  tradebook journal trade <trade-id>
  tradebook journal today
  tradebook journal day 2024-01-15
  tradebook journal range 2024-01-01 2024-01-31`,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades closed today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalRangeCmd = &cobra.Command{
	Use:   "range <from> <to>",
	Short: "List trades closed between two market days, inclusive",
	Args:  cobra.ExactArgs(2),
	RunE:  runJournalRange,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every trade, one per line",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the most recent import",
	Args:  cobra.NoArgs,
	RunE:  runJournalLast,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalRangeCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalLastCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default from config)")
}

func openJournal() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return nil, fmt.Errorf("no journal db: set --db or journal.db_path")
	}

	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cal, err := cfg.Calendar.Market()
	if err != nil {
		return err
	}
	return journalDay(cmd, cal.DayKey(time.Now()))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	if _, err := time.Parse("2006-01-02", args[0]); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	return journalDay(cmd, args[0])
}

func journalDay(cmd *cobra.Command, day string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTradesByExitDate(day)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalRange(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cal, err := cfg.Calendar.Market()
	if err != nil {
		return err
	}

	start, _, err := cal.DayBounds(args[0])
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	_, end, err := cal.DayBounds(args[1])
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("range %s..%s is empty", args[0], args[1])
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTradesClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalList(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTrades()
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	pipeline.PrintTrades(cmd.OutOrStdout(), recs)
	return nil
}

func runJournalLast(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	run, err := j.LastRun()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run ID:        %s\n", run.RunID)
	fmt.Fprintf(out, "Created:       %s\n", run.Created.Format(time.RFC3339))
	fmt.Fprintf(out, "Source:        %s\n", run.Source)
	fmt.Fprintf(out, "Fills:         %d\n", run.Fills)
	fmt.Fprintf(out, "Trades:        %d (%d closed)\n", run.Trades, run.Closed)
	fmt.Fprintf(out, "Warnings:      %d\n", run.Warnings)
	fmt.Fprintf(out, "Mode:          %s %.2f%%\n", run.Mode, 100*run.RiskPct)
	fmt.Fprintf(out, "Equity:        %.2f\n", run.Equity)
	return nil
}
