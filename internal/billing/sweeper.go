package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper wraps robfig/cron and periodically flags overdue invoices.
type Sweeper struct {
	cron      *cron.Cron
	svc       *Service
	spec      string // cron spec, e.g. "@every 1h"
	overdueIn time.Duration
	initial   sync.WaitGroup
	log       *zap.Logger
}

// NewSweeper returns a Sweeper that, on every tick of spec, marks Pending
// invoices older than overdueDays as Overdue.
func NewSweeper(svc *Service, spec string, overdueDays int, log *zap.Logger) *Sweeper {
	log = log.Named("sweeper")
	return &Sweeper{
		cron:      cron.New(cron.WithLogger(cron.PrintfLogger(zap.NewStdLog(log)))),
		svc:       svc,
		spec:      spec,
		overdueIn: time.Duration(overdueDays) * 24 * time.Hour,
		log:       log,
	}
}

// Start registers the job and starts the scheduler. One sweep also runs
// immediately so stale invoices are flagged without waiting for the first tick.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.log.Info("cron started", zap.String("spec", s.spec), zap.Duration("overdueAfter", s.overdueIn))

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish,
// including the one started by Start.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.initial.Wait()
	s.log.Info("cron stopped")
}

// RunOnce performs a single sweep and returns the number of invoices flagged.
func (s *Sweeper) RunOnce(ctx context.Context) int64 {
	if ctx.Err() != nil {
		return 0
	}
	n, err := s.svc.MarkOverdue(ctx, s.overdueIn)
	if err != nil {
		s.log.Error("overdue sweep failed", zap.Error(err))
		return 0
	}
	s.log.Debug("overdue sweep complete", zap.Int64("flagged", n))
	return n
}
