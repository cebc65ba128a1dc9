package cmd

import (
	"context"
	"fmt"
	"log"

	"marketdata-manager/core/config"
	"marketdata-manager/core/database"
	"marketdata-manager/core/logger"
	"marketdata-manager/core/pipeline"
	"marketdata-manager/core/storage"

	"marketdata-manager/feature/instruments"
	"marketdata-manager/feature/news"
	"marketdata-manager/feature/profiles"
	"marketdata-manager/feature/quotes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	loadSymbols []string
	loadRefresh bool
)

// loadCmd runs one loader batch from the CLI.
var loadCmd = &cobra.Command{
	Use:       "load [quotes|profiles|news]",
	Short:     "Run one loader batch",
	Long:      `Runs a single batch of the given loader for the requested symbols and exits.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"quotes", "profiles", "news"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(loadSymbols) == 0 {
			return fmt.Errorf("at least one symbol is required (--symbols)")
		}

		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		registry := instruments.NewService(db, logg)
		ctx := context.Background()

		var run *pipeline.BatchRun
		var runErr error
		switch args[0] {
		case "quotes":
			run, runErr = quotes.NewFeature(db, logg, registry, cfg).Service().
				Load(ctx, loadSymbols, loadRefresh)
		case "profiles":
			run, runErr = profiles.NewFeature(db, logg, registry, cfg).Service().
				Load(ctx, loadSymbols, loadRefresh)
		case "news":
			var archive storage.Client
			if client, err := storage.NewClient(cfg.Storage); err != nil {
				logg.Warn("Payload archive unavailable", zap.Error(err))
			} else {
				archive = client
			}
			run, runErr = news.NewFeature(db, logg, registry, archive, cfg).Service().
				Load(ctx, loadSymbols, loadRefresh)
		}

		if run == nil {
			return runErr
		}

		logg.Info("Batch run finished",
			zap.String("run_id", run.ID),
			zap.String("state", string(run.State)),
			zap.Int("succeeded", run.Succeeded),
			zap.Int("failed", run.Failed),
			zap.Int("skipped", run.Skipped),
		)
		if run.State == pipeline.RunStateFailed {
			return fmt.Errorf("run %s failed: %w", run.ID, runErr)
		}
		return nil
	},
}

func init() {
	loadCmd.Flags().StringSliceVar(&loadSymbols, "symbols", nil, "Symbols to load (comma separated)")
	loadCmd.Flags().BoolVar(&loadRefresh, "refresh", false, "Bypass the response cache")
	RootCmd.AddCommand(loadCmd)
}
