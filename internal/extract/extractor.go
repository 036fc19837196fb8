package extract

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tutorhub/marketplace-service/internal/search"
)

// Resilient calls a primary extractor under a timeout and a rate limit and
// answers from Fallback whenever the primary is missing, throttled, slow or
// failing. It never returns an error.
type Resilient struct {
	primary  search.Extractor
	fallback Fallback
	timeout  time.Duration
	limiter  *rate.Limiter
	log      *zap.Logger
}

// WithFallback wraps primary. A nil primary means every call uses the local
// tables. rps <= 0 disables the rate limit; timeout <= 0 disables the deadline.
func WithFallback(primary search.Extractor, timeout time.Duration, rps float64, log *zap.Logger) *Resilient {
	r := &Resilient{primary: primary, timeout: timeout, log: log.Named("extract")}
	if rps > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
	return r
}

// ExtractTutorCriteria implements search.Extractor.
func (r *Resilient) ExtractTutorCriteria(ctx context.Context, text string) (search.TutorCriteria, error) {
	if r.usePrimary("tutor") {
		cctx, cancel := r.withTimeout(ctx)
		defer cancel()
		c, err := r.primary.ExtractTutorCriteria(cctx, text)
		if err == nil {
			return c, nil
		}
		r.log.Warn("tutor criteria extraction failed, using fallback", zap.Error(err))
	}
	return r.fallback.ExtractTutorCriteria(ctx, text)
}

// ExtractJobCriteria implements search.Extractor.
func (r *Resilient) ExtractJobCriteria(ctx context.Context, text string) (search.JobCriteria, error) {
	if r.usePrimary("job") {
		cctx, cancel := r.withTimeout(ctx)
		defer cancel()
		c, err := r.primary.ExtractJobCriteria(cctx, text)
		if err == nil {
			return c, nil
		}
		r.log.Warn("job criteria extraction failed, using fallback", zap.Error(err))
	}
	return r.fallback.ExtractJobCriteria(ctx, text)
}

func (r *Resilient) usePrimary(kind string) bool {
	if r.primary == nil {
		return false
	}
	if r.limiter != nil && !r.limiter.Allow() {
		r.log.Debug("extraction rate limited, using fallback", zap.String("kind", kind))
		return false
	}
	return true
}

func (r *Resilient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
