package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/billing"
	"tutorhub/marketplace-service/internal/db"
	"tutorhub/marketplace-service/internal/extract"
	"tutorhub/marketplace-service/internal/search"
	"tutorhub/marketplace-service/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		pool, err := db.NewPostgresPool(cmd.Context(), cfg.DatabaseURL, dbOptions(cfg, log)...)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		log.Info("schema applied")
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep-invoices",
	Short: "Flag Pending invoices older than INVOICE_OVERDUE_DAYS as Overdue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		pool, err := db.NewPostgresPool(cmd.Context(), cfg.DatabaseURL, dbOptions(cfg, log)...)
		if err != nil {
			return err
		}
		defer pool.Close()

		svc := billing.NewService(store.NewPostgres(pool), log)
		n, err := svc.MarkOverdue(cmd.Context(), time.Duration(cfg.InvoiceOverdueDays)*24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d invoice(s) flagged overdue\n", n)
		return nil
	},
}

var (
	extractJobs  bool
	extractLocal bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <query>",
	Short: "Print the criteria extracted from a search query",
	Long: `Print the structured criteria extracted from a natural-language query.

By default the query is read as a guardian looking for a tutor; --jobs reads
it as a tutor looking for jobs. --local uses only the built-in keyword tables
and needs no configuration.

Examples:
  marketplace extract --local "need a female math tutor for class 8 in mirpur"
  marketplace extract --jobs "english medium tuition in dhaka above 8000 taka"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		var ex search.Extractor = extract.Fallback{}
		if !extractLocal {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			ex = newExtractor(cmd.Context(), cfg, log.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
		}

		var (
			out any
			err error
		)
		if extractJobs {
			out, err = ex.ExtractJobCriteria(cmd.Context(), query)
		} else {
			out, err = ex.ExtractTutorCriteria(cmd.Context(), query)
		}
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractJobs, "jobs", false, "Extract job search criteria instead of tutor criteria")
	extractCmd.Flags().BoolVar(&extractLocal, "local", false, "Use only the built-in keyword tables")
}
