package hiring

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/model"
	"tutorhub/marketplace-service/internal/notify"
)

// ─── Collaborators ───────────────────────────────────────────────────────────

// Store is the persistence the hiring workflow needs. HireTutor, CloseOpenJob,
// DeleteOpenJob and TransitionApplication must apply their guard atomically.
type Store interface {
	GetJob(ctx context.Context, id int64) (model.JobPosting, error)
	CreateJob(ctx context.Context, j model.JobPosting) (model.JobPosting, error)
	DeleteOpenJob(ctx context.Context, id int64) error
	CloseOpenJob(ctx context.Context, id int64) (model.JobPosting, error)
	HireTutor(ctx context.Context, jobID, tutorID int64) (model.JobPosting, []model.Application, error)

	GetTutor(ctx context.Context, id int64) (model.TutorProfile, error)
	GetTutorByUser(ctx context.Context, userID string) (model.TutorProfile, error)
	CreateTutor(ctx context.Context, t model.TutorProfile) (model.TutorProfile, error)
	UpdateTutor(ctx context.Context, t model.TutorProfile) (model.TutorProfile, error)
	SetTutorVerified(ctx context.Context, id int64, verified bool) (model.TutorProfile, error)

	CreateApplication(ctx context.Context, a model.Application) (model.Application, error)
	GetApplication(ctx context.Context, id int64) (model.Application, error)
	TransitionApplication(ctx context.Context, id int64, from, to model.ApplicationStatus) (model.Application, error)
	ListApplicants(ctx context.Context, jobID int64) ([]model.ApplicantDetail, error)
}

// Invoicer creates the commission invoice owed for a filled job.
type Invoicer interface {
	CreateInvoice(ctx context.Context, jobID int64, salary int) (model.CommissionInvoice, bool, error)
}

// Notifier tells the people involved what happened.
type Notifier interface {
	TutorHired(ctx context.Context, job model.JobPosting, tutor model.TutorProfile, resolved []model.Application) error
	ApplicationSubmitted(ctx context.Context, job model.JobPosting, app model.Application) error
	ApplicationStatusChanged(ctx context.Context, job model.JobPosting, app model.Application) error
}

// EventPublisher broadcasts domain events.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates the hiring workflow.
// It has no dependency on net/http; handlers and the gRPC server share it.
type Service struct {
	store    Store
	invoices Invoicer
	notifier Notifier
	events   EventPublisher
	log      *zap.Logger
}

// NewService returns a configured Service.
func NewService(store Store, invoices Invoicer, notifier Notifier, events EventPublisher, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		invoices: invoices,
		notifier: notifier,
		events:   events,
		log:      log.Named("hiring"),
	}
}

// HireOutcome is the committed result of ConfirmHiring.
type HireOutcome struct {
	Job      model.JobPosting         `json:"job"`
	Tutor    model.TutorProfile       `json:"tutor"`
	Hired    model.Application        `json:"hired"`
	Rejected []model.Application      `json:"rejected"`
	Invoice  *model.CommissionInvoice `json:"invoice"`
}

// ConfirmHiring fills an Open job with tutorID. On success the tutor's
// application is Hired, every other application of the job is Rejected and a
// commission invoice exists for the job.
//
// The state change is committed before the invoice is created. If invoicing
// fails the outcome is still returned, together with the invoice error.
func (s *Service) ConfirmHiring(ctx context.Context, jobID, tutorID int64) (*HireOutcome, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if tutorID <= 0 {
		return nil, apperr.InvalidTutor(tutorID)
	}
	tutor, err := s.store.GetTutor(ctx, tutorID)
	if apperr.Is(err, apperr.ErrNotFound) {
		return nil, apperr.InvalidTutor(tutorID)
	}
	if err != nil {
		return nil, err
	}
	if !IsJobTransitionAllowed(job.Status, model.JobFilled) {
		return nil, apperr.JobNotOpen(jobID)
	}

	job, resolved, err := s.store.HireTutor(ctx, jobID, tutorID)
	if err != nil {
		return nil, err
	}

	out := &HireOutcome{Job: job, Tutor: tutor, Rejected: make([]model.Application, 0, len(resolved))}
	for _, a := range resolved {
		if IsHired(a.Status) {
			out.Hired = a
		} else {
			out.Rejected = append(out.Rejected, a)
		}
	}
	s.log.Info("tutor hired",
		zap.Int64("jobId", jobID),
		zap.Int64("tutorId", tutorID),
		zap.Int("rejected", len(out.Rejected)),
	)

	var invoiceErr error
	inv, _, err := s.invoices.CreateInvoice(ctx, job.ID, job.Salary)
	if err != nil {
		invoiceErr = errors.Wrapf(err, "invoice for job %d", job.ID)
		s.log.Error("commission invoice failed after hire", zap.Int64("jobId", jobID), zap.Error(err))
	} else {
		out.Invoice = &inv
	}

	if err := s.notifier.TutorHired(ctx, job, tutor, resolved); err != nil {
		s.log.Warn("hire notifications failed", zap.Int64("jobId", jobID), zap.Error(err))
	}
	s.publish(ctx, notify.EventTutorHired, map[string]any{
		"type":    notify.EventTutorHired,
		"jobId":   job.ID,
		"tutorId": tutorID,
	})

	return out, invoiceErr
}

// ApplyRequest is a tutor's application to a job.
type ApplyRequest struct {
	JobID   int64  `json:"jobId"`
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// ApplyResult reports the stored application and the tutor profile it is
// linked to. TutorCreated is true when the profile was created by this call.
type ApplyResult struct {
	Application  model.Application  `json:"application"`
	Tutor        model.TutorProfile `json:"tutor"`
	TutorCreated bool               `json:"tutorCreated"`
}

// Apply submits an application to an Open job. A user without a tutor profile
// gets a placeholder profile that is unverified and incomplete.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.UserID = strings.TrimSpace(req.UserID)
	switch {
	case req.UserID == "":
		return nil, apperr.Validation("user id is required")
	case req.Name == "":
		return nil, apperr.Validation("name is required")
	case req.Email == "":
		return nil, apperr.Validation("email is required")
	}

	job, err := s.store.GetJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobOpen {
		return nil, apperr.JobNotOpen(job.ID)
	}

	res := &ApplyResult{}
	res.Tutor, err = s.store.GetTutorByUser(ctx, req.UserID)
	if apperr.Is(err, apperr.ErrNotFound) {
		res.Tutor, err = s.store.CreateTutor(ctx, model.NewPlaceholderTutor(req.UserID, req.Name, req.Email, req.Phone))
		res.TutorCreated = err == nil
	}
	if err != nil {
		return nil, err
	}

	tutorID := res.Tutor.ID
	res.Application, err = s.store.CreateApplication(ctx, model.Application{
		JobID:          job.ID,
		TutorID:        &tutorID,
		ApplicantName:  req.Name,
		ApplicantEmail: req.Email,
		Message:        strings.TrimSpace(req.Message),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("application submitted",
		zap.Int64("jobId", job.ID),
		zap.Int64("applicationId", res.Application.ID),
		zap.Bool("tutorCreated", res.TutorCreated),
	)
	if err := s.notifier.ApplicationSubmitted(ctx, job, res.Application); err != nil {
		s.log.Warn("application notification failed", zap.Int64("jobId", job.ID), zap.Error(err))
	}
	s.publish(ctx, notify.EventApplicationSubmitted, map[string]any{
		"type":          notify.EventApplicationSubmitted,
		"jobId":         job.ID,
		"applicationId": res.Application.ID,
		"tutorId":       tutorID,
	})
	return res, nil
}

// UpdateApplicationStatus lets the job owner accept or reject an application.
// Hired is reachable only through ConfirmHiring.
func (s *Service) UpdateApplicationStatus(ctx context.Context, guardianID string, applicationID int64, status string) (model.Application, error) {
	to, err := ParseApplicationStatus(status)
	if err != nil {
		return model.Application{}, err
	}
	if IsHired(to) {
		return model.Application{}, apperr.InvalidOperation("applications are marked Hired by confirming the hire")
	}

	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return model.Application{}, err
	}
	job, err := s.ownedJob(ctx, guardianID, app.JobID)
	if err != nil {
		return model.Application{}, err
	}
	if !IsApplicationTransitionAllowed(app.Status, to) {
		return model.Application{}, apperr.Validation("transition %s → %s is not allowed", app.Status, to)
	}

	app, err = s.store.TransitionApplication(ctx, applicationID, app.Status, to)
	if err != nil {
		return model.Application{}, err
	}
	if err := s.notifier.ApplicationStatusChanged(ctx, job, app); err != nil {
		s.log.Warn("status notification failed", zap.Int64("applicationId", app.ID), zap.Error(err))
	}
	return app, nil
}

// ListApplicants returns the applicants of a job to its owner.
func (s *Service) ListApplicants(ctx context.Context, guardianID string, jobID int64) ([]model.ApplicantDetail, error) {
	if _, err := s.ownedJob(ctx, guardianID, jobID); err != nil {
		return nil, err
	}
	applicants, err := s.store.ListApplicants(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if applicants == nil {
		applicants = make([]model.ApplicantDetail, 0)
	}
	return applicants, nil
}

func (s *Service) ownedJob(ctx context.Context, guardianID string, jobID int64) (model.JobPosting, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return model.JobPosting{}, err
	}
	if job.GuardianID != guardianID {
		return model.JobPosting{}, apperr.Validation("job %d does not belong to the caller", jobID)
	}
	return job, nil
}

// Job returns a job posting by ID.
func (s *Service) Job(ctx context.Context, jobID int64) (model.JobPosting, error) {
	return s.store.GetJob(ctx, jobID)
}

// PostJob validates and stores a new Open job posting.
func (s *Service) PostJob(ctx context.Context, job model.JobPosting) (model.JobPosting, error) {
	job.Title = strings.TrimSpace(job.Title)
	if job.Title == "" {
		return model.JobPosting{}, apperr.Validation("title is required")
	}
	if strings.TrimSpace(job.GuardianID) == "" {
		return model.JobPosting{}, apperr.Validation("guardian id is required")
	}
	if job.Salary < model.MinSalary || job.Salary > model.MaxSalary {
		return model.JobPosting{}, apperr.Validation("salary must be between %d and %d", model.MinSalary, model.MaxSalary)
	}
	job.Subject = orDefault(job.Subject, "General")
	job.DaysPerWeek = orDefault(job.DaysPerWeek, "Negotiable")
	job.GenderPreference = orDefault(job.GenderPreference, "Any")

	created, err := s.store.CreateJob(ctx, job)
	if err != nil {
		return model.JobPosting{}, err
	}
	s.log.Info("job posted", zap.Int64("jobId", created.ID), zap.String("guardianId", created.GuardianID))
	return created, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

// DeleteJob removes a job that is still Open. Filled and Closed jobs are kept.
func (s *Service) DeleteJob(ctx context.Context, guardianID string, jobID int64) error {
	if _, err := s.ownedJob(ctx, guardianID, jobID); err != nil {
		return err
	}
	if err := s.store.DeleteOpenJob(ctx, jobID); err != nil {
		return err
	}
	s.log.Info("job deleted", zap.Int64("jobId", jobID))
	return nil
}

// CloseJob withdraws an Open job without hiring anyone.
func (s *Service) CloseJob(ctx context.Context, guardianID string, jobID int64) (model.JobPosting, error) {
	if _, err := s.ownedJob(ctx, guardianID, jobID); err != nil {
		return model.JobPosting{}, err
	}
	job, err := s.store.CloseOpenJob(ctx, jobID)
	if err != nil {
		return model.JobPosting{}, err
	}
	s.log.Info("job closed", zap.Int64("jobId", jobID))
	return job, nil
}

// VerifyTutor marks a tutor as verified by an administrator.
func (s *Service) VerifyTutor(ctx context.Context, tutorID int64) (model.TutorProfile, error) {
	t, err := s.store.SetTutorVerified(ctx, tutorID, true)
	if err != nil {
		return model.TutorProfile{}, err
	}
	s.log.Info("tutor verified", zap.Int64("tutorId", tutorID))
	return t, nil
}

// UpdateTutorProfile stores the editable profile fields of the caller's own
// profile and recomputes completeness. Rating and verification are not
// changed here.
func (s *Service) UpdateTutorProfile(ctx context.Context, userID string, p model.TutorProfile) (model.TutorProfile, error) {
	if p.ID <= 0 {
		return model.TutorProfile{}, apperr.Validation("tutor id is required")
	}
	current, err := s.store.GetTutor(ctx, p.ID)
	if err != nil {
		return model.TutorProfile{}, err
	}
	if current.UserID != userID {
		return model.TutorProfile{}, apperr.Validation("tutor %d does not belong to the caller", p.ID)
	}
	p.FullName = strings.TrimSpace(p.FullName)
	if p.FullName == "" {
		return model.TutorProfile{}, apperr.Validation("full name is required")
	}
	if p.ExperienceYears != nil && *p.ExperienceYears < 0 {
		return model.TutorProfile{}, apperr.Validation("experience cannot be negative")
	}
	p.Education = strings.TrimSpace(p.Education)
	p.Subjects = strings.TrimSpace(p.Subjects)
	p.PreferredClasses = strings.TrimSpace(p.PreferredClasses)
	p.PreferredLocations = strings.TrimSpace(p.PreferredLocations)
	p.Bio = strings.TrimSpace(p.Bio)
	p.ProfileComplete = p.IsComplete()
	return s.store.UpdateTutor(ctx, p)
}

func (s *Service) publish(ctx context.Context, channel string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, channel, payload); err != nil {
		s.log.Warn("publish failed", zap.String("channel", channel), zap.Error(err))
	}
}
