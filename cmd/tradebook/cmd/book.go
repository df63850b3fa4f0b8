package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/tradebook/config"
	"github.com/rustyeddy/tradebook/fills"
	"github.com/rustyeddy/tradebook/id"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/pipeline"
	"github.com/rustyeddy/tradebook/trade"
)

// recompute loads the configured fill files and runs the whole pipeline.
func recompute(cfg *config.Config) (pipeline.Report, fills.Batch, error) {
	cal, err := cfg.Calendar.Market()
	if err != nil {
		return pipeline.Report{}, fills.Batch{}, err
	}

	src := fills.CSVSource{
		FillsPath:  cfg.Input.FillsFile,
		OrdersPath: cfg.Input.OrdersFile,
		Calendar:   cal,
	}
	b, err := src.Load()
	if err != nil {
		return pipeline.Report{}, fills.Batch{}, fmt.Errorf("load fills: %w", err)
	}
	if b.Duplicates > 0 {
		log.Warn().Int("count", b.Duplicates).Str("file", cfg.Input.FillsFile).Msg("dropped duplicate fill ids")
	}
	log.Debug().Int("fills", len(b.Fills)).Int("orders", len(b.Orders)).Msg("loaded")

	r := pipeline.Run(pipeline.Input{
		Fills:          b.Fills,
		Orders:         b.Orders,
		StartingEquity: cfg.Account.StartingEquity,
		Strategy:       cfg.Strategy.Risk(),
		Options: trade.Options{
			Calendar:   cal,
			AllowShort: cfg.Reconstruct.AllowShort,
		},
		DailyLock: cfg.Strategy.DailyLock,
	})
	return r, b, nil
}

// persist writes a report to the configured journal.
func persist(ctx context.Context, cfg *config.Config, r pipeline.Report, b fills.Batch) (journal.ImportRun, error) {
	run := journal.ImportRun{
		Source:   cfg.Input.FillsFile,
		Fills:    len(b.Fills),
		Trades:   len(r.Trades),
		Closed:   r.Metrics.Trades,
		Warnings: len(r.Warnings),
		Mode:     string(r.Risk.Mode),
		RiskPct:  r.Risk.RiskPct,
		Equity:   r.Risk.Equity,
	}

	switch cfg.Journal.Type {
	case "sqlite":
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return run, fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		return j.Import(ctx, run, r.Trades, r.Daily)

	case "csv":
		j, err := journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.DailyFile)
		if err != nil {
			return run, fmt.Errorf("open journal: %w", err)
		}
		if err := journal.Write(j, r.Trades, r.Daily); err != nil {
			j.Close()
			return run, err
		}
		run.RunID = id.New()
		run.Created = time.Now().UTC()
		return run, j.Close()
	}
	return run, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
}
