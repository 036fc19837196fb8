package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/model"
)

// CandidateSource supplies the pools that searches rank.
type CandidateSource interface {
	// SearchableTutors returns verified tutors with complete profiles.
	SearchableTutors(ctx context.Context) ([]model.TutorProfile, error)
	// OpenJobs returns every Open job, newest first.
	OpenJobs(ctx context.Context) ([]model.JobPosting, error)
}

// Extractor turns free text into structured criteria.
type Extractor interface {
	ExtractTutorCriteria(ctx context.Context, text string) (TutorCriteria, error)
	ExtractJobCriteria(ctx context.Context, text string) (JobCriteria, error)
}

// TutorSearch is the outcome of a tutor search. Message is set when nothing
// matched.
type TutorSearch struct {
	Criteria TutorCriteria `json:"criteria"`
	Results  []TutorResult `json:"results"`
	Message  string        `json:"message,omitempty"`
}

// JobSearch is the outcome of a job search.
type JobSearch struct {
	Criteria JobCriteria `json:"criteria"`
	Results  []JobResult `json:"results"`
	Message  string      `json:"message,omitempty"`
}

// Service runs free-text and structured searches over the store.
type Service struct {
	source    CandidateSource
	extractor Extractor
	now       func() time.Time
	log       *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now for job recency.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService returns a configured Service.
func NewService(source CandidateSource, extractor Extractor, log *zap.Logger, opts ...Option) *Service {
	s := &Service{source: source, extractor: extractor, now: time.Now, log: log.Named("search")}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SearchTutors extracts criteria from a guardian's query and ranks tutors.
func (s *Service) SearchTutors(ctx context.Context, query string) (TutorSearch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return TutorSearch{}, apperr.Validation("search query is required")
	}
	c, err := s.extractor.ExtractTutorCriteria(ctx, query)
	if err != nil {
		return TutorSearch{}, apperr.External(err, "criteria extractor")
	}
	c.OriginalQuery = query
	return s.RankTutors(ctx, c)
}

// RankTutors ranks tutors against already structured criteria.
func (s *Service) RankTutors(ctx context.Context, c TutorCriteria) (TutorSearch, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return TutorSearch{}, err
	}
	pool, err := s.source.SearchableTutors(ctx)
	if err != nil {
		return TutorSearch{}, err
	}
	out := TutorSearch{Criteria: c, Results: RankTutors(pool, c)}
	if len(out.Results) == 0 {
		out.Message = apperr.UserMessage(apperr.NoResults())
	}
	s.log.Debug("tutor search",
		zap.String("subject", c.Subject),
		zap.String("class", c.ClassLevel),
		zap.String("location", c.Location),
		zap.Int("pool", len(pool)),
		zap.Int("results", len(out.Results)),
	)
	return out, nil
}

// SearchJobs extracts criteria from a tutor's query and ranks open jobs.
func (s *Service) SearchJobs(ctx context.Context, query string) (JobSearch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return JobSearch{}, apperr.Validation("search query is required")
	}
	c, err := s.extractor.ExtractJobCriteria(ctx, query)
	if err != nil {
		return JobSearch{}, apperr.External(err, "criteria extractor")
	}
	c.OriginalQuery = query
	return s.RankJobs(ctx, c)
}

// RankJobs ranks open jobs against already structured criteria.
func (s *Service) RankJobs(ctx context.Context, c JobCriteria) (JobSearch, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return JobSearch{}, err
	}
	pool, err := s.source.OpenJobs(ctx)
	if err != nil {
		return JobSearch{}, err
	}
	out := JobSearch{Criteria: c, Results: RankJobs(pool, c, s.now())}
	if len(out.Results) == 0 {
		out.Message = apperr.UserMessage(apperr.NoResults())
	}
	s.log.Debug("job search",
		zap.String("subject", c.Subject),
		zap.String("city", c.City),
		zap.Int("minSalary", c.MinSalary),
		zap.Int("pool", len(pool)),
		zap.Int("results", len(out.Results)),
	)
	return out, nil
}
