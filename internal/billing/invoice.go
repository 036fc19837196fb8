// Package billing generates and tracks the commission invoices owed by hired
// tutors.
package billing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/model"
	"tutorhub/marketplace-service/internal/notify"
)

// Store is the persistence billing needs. InsertInvoice must be idempotent
// per job: a second insert for the same job returns the first invoice with
// created=false.
type Store interface {
	GetJob(ctx context.Context, id int64) (model.JobPosting, error)
	InsertInvoice(ctx context.Context, inv model.CommissionInvoice) (model.CommissionInvoice, bool, error)
	GetInvoice(ctx context.Context, id int64) (model.CommissionInvoice, error)
	ListInvoicesForTutor(ctx context.Context, tutorID int64) ([]model.CommissionInvoice, error)
	MarkInvoicePaid(ctx context.Context, id int64, at time.Time) (model.CommissionInvoice, error)
	MarkInvoicesOverdue(ctx context.Context, cutoff time.Time) (int64, error)
}

// PaymentGateway is the external checkout provider. Only verification is
// needed here; checkout redirection is handled outside this service.
type PaymentGateway interface {
	// VerifyPayment reports which invoice a completed checkout session paid
	// and whether the payment succeeded.
	VerifyPayment(ctx context.Context, sessionID string) (invoiceID int64, paid bool, err error)
}

// PaymentNotifier is told when an invoice has been paid.
type PaymentNotifier interface {
	InvoicePaid(ctx context.Context, inv model.CommissionInvoice) error
}

// EventPublisher broadcasts domain events.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Service owns the invoice lifecycle: Pending, then Paid or Overdue.
type Service struct {
	store    Store
	gateway  PaymentGateway
	notifier PaymentNotifier
	events   EventPublisher
	now      func() time.Time
	log      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithGateway sets the payment provider used by ConfirmPayment.
func WithGateway(g PaymentGateway) Option { return func(s *Service) { s.gateway = g } }

// WithNotifier sets who is told about payments.
func WithNotifier(n PaymentNotifier) Option { return func(s *Service) { s.notifier = n } }

// WithEvents sets the event publisher.
func WithEvents(p EventPublisher) Option { return func(s *Service) { s.events = p } }

// NewService returns a configured Service.
func NewService(store Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now, log: log.Named("billing")}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateInvoice records the 40% commission owed for a filled job. salary must
// equal the job's posted salary. Calling it again for the same job returns the
// existing invoice with created=false.
func (s *Service) CreateInvoice(ctx context.Context, jobID int64, salary int) (model.CommissionInvoice, bool, error) {
	if salary <= 0 {
		return model.CommissionInvoice{}, false, apperr.Validation("salary must be positive, got %d", salary)
	}
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return model.CommissionInvoice{}, false, err
	}
	if job.HiredTutorID == nil {
		return model.CommissionInvoice{}, false, apperr.InvalidOperation("job %d does not have a hired tutor", jobID)
	}
	if salary != job.Salary {
		return model.CommissionInvoice{}, false, apperr.Validation("salary %d does not match job %d salary %d", salary, jobID, job.Salary)
	}

	inv, created, err := s.store.InsertInvoice(ctx, model.CommissionInvoice{
		TutorID:     *job.HiredTutorID,
		JobID:       jobID,
		Amount:      model.Commission(salary),
		Status:      model.InvoicePending,
		GeneratedAt: s.now(),
	})
	if err != nil {
		return model.CommissionInvoice{}, false, err
	}
	if created {
		s.log.Info("invoice created",
			zap.Int64("invoiceId", inv.ID),
			zap.Int64("jobId", jobID),
			zap.Stringer("amount", inv.Amount),
		)
	} else {
		s.log.Info("invoice already exists", zap.Int64("invoiceId", inv.ID), zap.Int64("jobId", jobID))
	}
	return inv, created, nil
}

// MarkPaid records a successful payment for a Pending or Overdue invoice.
func (s *Service) MarkPaid(ctx context.Context, invoiceID int64) (model.CommissionInvoice, error) {
	inv, err := s.store.MarkInvoicePaid(ctx, invoiceID, s.now())
	if err != nil {
		return model.CommissionInvoice{}, err
	}
	s.log.Info("invoice paid", zap.Int64("invoiceId", inv.ID), zap.Int64("tutorId", inv.TutorID))

	if s.notifier != nil {
		if err := s.notifier.InvoicePaid(ctx, inv); err != nil {
			s.log.Warn("payment notification failed", zap.Int64("invoiceId", inv.ID), zap.Error(err))
		}
	}
	if s.events != nil {
		event := map[string]any{
			"type":      notify.EventInvoicePaid,
			"invoiceId": inv.ID,
			"tutorId":   inv.TutorID,
			"jobId":     inv.JobID,
			"amount":    inv.Amount.String(),
		}
		if err := s.events.Publish(ctx, notify.EventInvoicePaid, event); err != nil {
			s.log.Warn("publish failed", zap.String("channel", notify.EventInvoicePaid), zap.Error(err))
		}
	}
	return inv, nil
}

// ConfirmPayment verifies a checkout session with the gateway and marks the
// invoice it paid.
func (s *Service) ConfirmPayment(ctx context.Context, sessionID string) (model.CommissionInvoice, error) {
	if s.gateway == nil {
		return model.CommissionInvoice{}, apperr.InvalidOperation("no payment gateway configured")
	}
	invoiceID, paid, err := s.gateway.VerifyPayment(ctx, sessionID)
	if err != nil {
		return model.CommissionInvoice{}, apperr.External(err, "payment gateway")
	}
	if !paid {
		return model.CommissionInvoice{}, apperr.InvalidOperation("checkout session %s is not paid", sessionID)
	}
	return s.MarkPaid(ctx, invoiceID)
}

// MarkOverdue flags every Pending invoice generated more than olderThan ago.
func (s *Service) MarkOverdue(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, apperr.Validation("overdue threshold must be positive, got %s", olderThan)
	}
	n, err := s.store.MarkInvoicesOverdue(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", n))
	}
	return n, nil
}

// Invoice returns one invoice.
func (s *Service) Invoice(ctx context.Context, invoiceID int64) (model.CommissionInvoice, error) {
	return s.store.GetInvoice(ctx, invoiceID)
}

// ListForTutor returns a tutor's invoices, newest first.
func (s *Service) ListForTutor(ctx context.Context, tutorID int64) ([]model.CommissionInvoice, error) {
	list, err := s.store.ListInvoicesForTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = make([]model.CommissionInvoice, 0)
	}
	return list, nil
}
