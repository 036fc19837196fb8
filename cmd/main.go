// tutorhub-marketplace-service
//
// Hiring, commission billing and natural-language search for the TutorHub
// tutoring marketplace. Exposes a REST API used by the Gateway and a gRPC
// service for internal callers:
//   - confirmHiring(jobId, tutorId): fill a job, resolve applications, invoice
//   - createInvoice(jobId, salary): 40% commission, one per job
//   - searchTutors / searchJobs: AI-extracted criteria, ranked results
//
// Publishes EVENT_TUTOR_HIRED, EVENT_APPLICATION_SUBMITTED and
// EVENT_INVOICE_PAID to Redis for Gateway SSE forward.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/config"
	"tutorhub/marketplace-service/internal/db"
	"tutorhub/marketplace-service/internal/logger"
)

const version = "1.0.0"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "marketplace",
	Short: "TutorHub marketplace service",
	Long: `TutorHub marketplace service.

Commands:
  serve           - Run the HTTP API, gRPC service and invoice sweeper
  migrate         - Apply the database schema
  sweep-invoices  - Flag overdue commission invoices once
  extract         - Print the criteria extracted from a search query
  version         - Print the version`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "marketplace-service v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, json or toml); environment variables override it")
	rootCmd.AddCommand(serveCmd, migrateCmd, sweepCmd, extractCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger every long-running
// command shares.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log.Named("marketplace"), nil
}

// dbOptions applies the pool size and startup retry settings.
func dbOptions(cfg *config.Config, log *zap.Logger) []db.Option {
	return []db.Option{
		db.WithMaxConns(cfg.DBMaxConns),
		db.WithRetry(cfg.ConnectAttempts, time.Second),
		db.WithLogger(log),
	}
}
