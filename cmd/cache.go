package cmd

import (
	"context"
	"fmt"
	"log"

	"marketdata-manager/core/apicache"
	"marketdata-manager/core/config"
	"marketdata-manager/core/database"
	"marketdata-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cleanupSource string

// cacheCmd groups cache maintenance commands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Response cache maintenance",
}

// cacheCleanupCmd deletes expired response cache rows.
var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired response cache entries",
	Long:  `Deletes expired rows from the response cache, optionally restricted to one vendor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		store := apicache.NewStore(db, logg, apicache.Options{})
		removed, err := store.CleanupExpired(context.Background(), cleanupSource)
		if err != nil {
			return fmt.Errorf("failed to clean up cache: %w", err)
		}

		logg.Info("Cache cleanup finished",
			zap.Int64("removed", removed),
			zap.String("source", cleanupSource),
		)
		return nil
	},
}

func init() {
	cacheCleanupCmd.Flags().StringVar(&cleanupSource, "source", "", "Restrict cleanup to one vendor tag (default: all vendors)")
	cacheCmd.AddCommand(cacheCleanupCmd)
	RootCmd.AddCommand(cacheCmd)
}
