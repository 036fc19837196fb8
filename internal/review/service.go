// Package review lets a guardian rate the tutor hired for one of their jobs.
// Each review feeds the tutor's average rating, which the search ranking uses.
package review

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/model"
)

const (
	MinRating     = 1
	MaxRating     = 5
	MaxCommentLen = 500
)

// Store is the persistence reviews need. AddReview stores the review and
// returns the tutor's new average rating; a second review of the same job is
// a conflict.
type Store interface {
	GetJob(ctx context.Context, id int64) (model.JobPosting, error)
	GetTutor(ctx context.Context, id int64) (model.TutorProfile, error)
	AddReview(ctx context.Context, r model.Review) (model.Review, float64, error)
}

// Notifier delivers in-app messages.
type Notifier interface {
	SendInApp(ctx context.Context, userID, title, message, link string) error
}

// Outcome is a stored review and the tutor's rating after it.
type Outcome struct {
	Review      model.Review `json:"review"`
	TutorRating float64      `json:"tutorRating"`
}

// Service validates and records reviews.
type Service struct {
	store    Store
	notifier Notifier
	policy   *bluemonday.Policy
	log      *zap.Logger
}

// NewService returns a configured Service. notifier may be nil.
func NewService(store Store, notifier Notifier, log *zap.Logger) *Service {
	return &Service{store: store, notifier: notifier, policy: bluemonday.StrictPolicy(), log: log.Named("review")}
}

// Submit records reviewerID's rating of the tutor hired for jobID.
func (s *Service) Submit(ctx context.Context, reviewerID string, jobID int64, rating int, comment string) (Outcome, error) {
	if rating < MinRating || rating > MaxRating {
		return Outcome{}, apperr.Validation("rating must be between %d and %d, got %d", MinRating, MaxRating, rating)
	}
	comment = strings.TrimSpace(plainText(s.policy, comment))
	if n := utf8.RuneCountInString(comment); n > MaxCommentLen {
		return Outcome{}, apperr.Validation("comment must be at most %d characters, got %d", MaxCommentLen, n)
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return Outcome{}, err
	}
	if job.GuardianID != reviewerID {
		return Outcome{}, apperr.Validation("you are not authorized to review job %d", jobID)
	}
	if job.Status != model.JobFilled {
		return Outcome{}, apperr.InvalidOperation("only a filled job can be reviewed, job %d is %s", jobID, job.Status)
	}
	if job.HiredTutorID == nil {
		return Outcome{}, apperr.InvalidOperation("no tutor has been hired for job %d", jobID)
	}

	r, avg, err := s.store.AddReview(ctx, model.Review{
		JobID:      jobID,
		TutorID:    *job.HiredTutorID,
		ReviewerID: reviewerID,
		Rating:     rating,
		Comment:    comment,
	})
	if err != nil {
		return Outcome{}, err
	}
	s.log.Info("review stored",
		zap.Int64("jobId", jobID),
		zap.Int64("tutorId", r.TutorID),
		zap.Int("rating", rating),
		zap.Float64("average", avg),
	)
	s.notifyTutor(ctx, r, job)
	return Outcome{Review: r, TutorRating: avg}, nil
}

// plainText strips markup from a comment and decodes entities, repeating
// until decoding no longer uncovers new tags. If that does not settle the
// sanitized, still-escaped form is returned.
func plainText(p *bluemonday.Policy, s string) string {
	for range 8 {
		next := html.UnescapeString(p.Sanitize(s))
		if next == s {
			return s
		}
		s = next
	}
	return p.Sanitize(s)
}

func (s *Service) notifyTutor(ctx context.Context, r model.Review, job model.JobPosting) {
	if s.notifier == nil {
		return
	}
	tutor, err := s.store.GetTutor(ctx, r.TutorID)
	if err != nil {
		s.log.Warn("review notification skipped", zap.Int64("tutorId", r.TutorID), zap.Error(err))
		return
	}
	msg := fmt.Sprintf("You received a %d-star review for \"%s\".", r.Rating, job.Title)
	if err := s.notifier.SendInApp(ctx, tutor.UserID, "New Review", msg, fmt.Sprintf("/tutors/%d", tutor.ID)); err != nil {
		s.log.Warn("review notification failed", zap.Int64("tutorId", tutor.ID), zap.Error(err))
	}
}
