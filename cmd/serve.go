package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"tutorhub/marketplace-service/internal/billing"
	"tutorhub/marketplace-service/internal/config"
	"tutorhub/marketplace-service/internal/db"
	"tutorhub/marketplace-service/internal/extract"
	"tutorhub/marketplace-service/internal/grpcserver"
	"tutorhub/marketplace-service/internal/hiring"
	"tutorhub/marketplace-service/internal/notify"
	"tutorhub/marketplace-service/internal/review"
	"tutorhub/marketplace-service/internal/search"
	"tutorhub/marketplace-service/internal/session"
	"tutorhub/marketplace-service/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, gRPC service and invoice sweeper",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Info("connecting to postgres")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, dbOptions(cfg, log)...)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}
	log.Info("postgres connected")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Info("connecting to redis")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, dbOptions(cfg, log)...)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()
	log.Info("redis connected")

	// ── Services ─────────────────────────────────────────────────────────────
	st := store.NewPostgres(pool)
	events := notify.NewRedisPublisher(rdb)

	var mailer notify.Mailer
	if cfg.SMTPConfigured() {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			User:       cfg.SMTPUser,
			Password:   cfg.SMTPPassword,
			SenderName: cfg.SMTPSenderName,
		})
	} else {
		log.Warn("smtp not configured, emails will be logged and dropped")
	}
	dispatcher := notify.NewDispatcher(mailer, notify.NewLogSMS(log), st, st, cfg.SMTPSenderName, log)

	billingSvc := billing.NewService(st, log, billing.WithNotifier(dispatcher), billing.WithEvents(events))
	hiringSvc := hiring.NewService(st, billingSvc, dispatcher, events, log)
	searchSvc := search.NewService(st, newExtractor(ctx, cfg, log), log)
	reviewSvc := review.NewService(st, dispatcher, log)
	sessions := session.NewStore(rdb, cfg.SessionTTL)

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	hiring.NewHandler(hiringSvc, review.NewHandler(reviewSvc, log), log).RegisterRoutes(mux)
	billing.NewHandler(billingSvc, log).RegisterRoutes(mux)
	search.NewHandler(searchSvc, log).RegisterRoutes(mux)
	notify.NewHandler(dispatcher, log).RegisterRoutes(mux)
	session.NewHandler(sessions, log).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// ── gRPC server ──────────────────────────────────────────────────────────
	gs := grpc.NewServer()
	grpcserver.Register(gs, grpcserver.NewServer(hiringSvc, billingSvc, searchSvc, log))
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	// ── Invoice sweeper ──────────────────────────────────────────────────────
	sweeper := billing.NewSweeper(billingSvc, cfg.InvoiceSweepSpec, cfg.InvoiceOverdueDays, log)
	if err := sweeper.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", zap.String("version", version), zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		if err := gs.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	// ── Graceful shutdown ────────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", zap.Error(err))
		}
		gs.GracefulStop()
		sweeper.Stop()
		return nil
	})

	err = g.Wait()
	log.Info("stopped")
	return err
}

// newExtractor returns the Gemini extractor guarded by the local tables, or
// the local tables alone when no API key is configured.
func newExtractor(ctx context.Context, cfg *config.Config, log *zap.Logger) *extract.Resilient {
	var primary search.Extractor
	if cfg.GeminiAPIKey != "" {
		g, err := extract.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			log.Warn("gemini unavailable, using local extraction", zap.Error(err))
		} else {
			primary = g
		}
	}
	return extract.WithFallback(primary, cfg.ExtractTimeout, cfg.ExtractRPS, log)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "marketplace-service",
		"version": version,
	})
}
