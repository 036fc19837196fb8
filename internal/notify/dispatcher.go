// Package notify delivers marketplace notifications over email, SMS and the
// in-app inbox, and publishes domain events on Redis.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/model"
)

// InboxStore persists in-app notifications.
type InboxStore interface {
	InsertNotification(ctx context.Context, n model.Notification) (model.Notification, error)
	UnreadNotifications(ctx context.Context, userID string) ([]model.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID string, ids []int64) (int64, error)
}

// TutorDirectory resolves tutor profiles for recipients known only by ID.
type TutorDirectory interface {
	GetTutor(ctx context.Context, id int64) (model.TutorProfile, error)
}

// SMSSender delivers a text message.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// LogSMS writes text messages to the log instead of a carrier gateway.
type LogSMS struct {
	log *zap.Logger
}

// NewLogSMS returns an SMS sender that logs every message.
func NewLogSMS(log *zap.Logger) *LogSMS {
	return &LogSMS{log: log.Named("sms")}
}

// Send logs the message.
func (s *LogSMS) Send(_ context.Context, phone, message string) error {
	s.log.Info("sms", zap.String("to", phone), zap.String("message", message))
	return nil
}

// Dispatcher fans marketplace events out to the channels each recipient can
// receive. A nil Mailer disables email: messages are logged and dropped.
type Dispatcher struct {
	mail   Mailer
	sms    SMSSender
	inbox  InboxStore
	tutors TutorDirectory
	sender string
	log    *zap.Logger
}

// NewDispatcher returns a Dispatcher. sender is the brand name used in email
// signatures.
func NewDispatcher(mail Mailer, sms SMSSender, inbox InboxStore, tutors TutorDirectory, sender string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		mail:   mail,
		sms:    sms,
		inbox:  inbox,
		tutors: tutors,
		sender: sender,
		log:    log.Named("notify"),
	}
}

// ─── Channels ────────────────────────────────────────────────────────────────

// SendEmail delivers an HTML email. It is a logged no-op without a Mailer.
func (d *Dispatcher) SendEmail(ctx context.Context, to, subject, html string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	if d.mail == nil {
		d.log.Warn("smtp not configured, email dropped", zap.String("to", to), zap.String("subject", subject))
		return nil
	}
	if err := d.mail.Send(ctx, Email{To: to, Subject: subject, HTML: html}); err != nil {
		return err
	}
	d.log.Info("email sent", zap.String("to", to))
	return nil
}

// SendSMS delivers a text message.
func (d *Dispatcher) SendSMS(ctx context.Context, phone, message string) error {
	if strings.TrimSpace(phone) == "" || d.sms == nil {
		return nil
	}
	return d.sms.Send(ctx, phone, message)
}

// SendInApp stores an unread notification for userID.
func (d *Dispatcher) SendInApp(ctx context.Context, userID, title, message, link string) error {
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	_, err := d.inbox.InsertNotification(ctx, model.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Link:    link,
	})
	if err != nil {
		return fmt.Errorf("in-app notification for %s: %w", userID, err)
	}
	return nil
}

// Unread returns the unread inbox of userID.
func (d *Dispatcher) Unread(ctx context.Context, userID string) ([]model.Notification, error) {
	list, err := d.inbox.UnreadNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = make([]model.Notification, 0)
	}
	return list, nil
}

// MarkRead marks the given notifications read, or all of them when ids is empty.
func (d *Dispatcher) MarkRead(ctx context.Context, userID string, ids []int64) (int64, error) {
	return d.inbox.MarkNotificationsRead(ctx, userID, ids)
}

// ─── Marketplace events ──────────────────────────────────────────────────────

// TutorHired tells the hired tutor (in-app, email, SMS), every other
// applicant (in-app) and the guardian (in-app, email). Every channel is
// attempted; failures are joined into the returned error.
func (d *Dispatcher) TutorHired(ctx context.Context, job model.JobPosting, tutor model.TutorProfile, resolved []model.Application) error {
	var errs []error
	title := plain(job.Title)
	commission := model.Commission(job.Salary).String()
	tutorName := orName(tutor.FullName, "A tutor")
	guardianName := orName(job.GuardianName, "Guardian")

	errs = append(errs, d.SendInApp(ctx, tutor.UserID,
		"Congratulations! You've Been Hired!",
		fmt.Sprintf("You have been hired for the job: \"%s\". Salary: ৳%d. Please pay the commission of ৳%s.", title, job.Salary, commission),
		linkMyInvoices,
	))

	if tutor.Email != "" {
		body, err := render("tutorHired", emailData{
			Sender:       d.sender,
			TutorName:    tutorName,
			GuardianName: guardianName,
			Commission:   commission,
			Rows: []row{
				{"Job Title:", title},
				{"Location:", plain(job.Location) + ", " + plain(job.City)},
				{"Monthly Salary:", fmt.Sprintf("৳%d", job.Salary)},
				{"Commission (40%):", "৳" + commission},
			},
		})
		if err == nil {
			err = d.SendEmail(ctx, tutor.Email, fmt.Sprintf("You've Been Hired for \"%s\" - %s", title, d.sender), body)
		}
		errs = append(errs, err)
	}

	errs = append(errs, d.SendSMS(ctx, tutor.Phone, fmt.Sprintf(
		"%s: Congratulations! You've been hired for \"%s\". Salary: Tk%d. Commission: Tk%s. Login to view details.",
		d.sender, title, job.Salary, commission)))

	for _, a := range resolved {
		if a.TutorID == nil || a.HasTutor(tutor.ID) {
			continue
		}
		other, err := d.tutors.GetTutor(ctx, *a.TutorID)
		if err != nil {
			errs = append(errs, fmt.Errorf("rejected applicant %d: %w", *a.TutorID, err))
			continue
		}
		errs = append(errs, d.SendInApp(ctx, other.UserID,
			"Application Update",
			fmt.Sprintf("The position for \"%s\" has been filled. Keep applying to other jobs!", title),
			linkMyApplications,
		))
	}

	errs = append(errs, d.SendInApp(ctx, job.GuardianID,
		"Tutor Hired Successfully!",
		fmt.Sprintf("You have successfully hired %s for \"%s\". The job is now marked as Filled.", plain(tutorName), title),
		linkMyJobs,
	))

	if job.GuardianEmail != "" {
		body, err := render("guardianHired", emailData{
			Sender:       d.sender,
			GuardianName: guardianName,
			Rows: []row{
				{"Job Title:", title},
				{"Hired Tutor:", tutorName},
				{"Tutor Email:", orNA(tutor.Email)},
				{"Tutor Phone:", orNA(tutor.Phone)},
				{"Monthly Salary:", fmt.Sprintf("৳%d", job.Salary)},
			},
		})
		if err == nil {
			err = d.SendEmail(ctx, job.GuardianEmail, fmt.Sprintf("Tutor Hired for \"%s\" - %s", title, d.sender), body)
		}
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ApplicationSubmitted tells the guardian a tutor applied to their job.
func (d *Dispatcher) ApplicationSubmitted(ctx context.Context, job model.JobPosting, app model.Application) error {
	title := plain(job.Title)
	name := plain(app.ApplicantName)
	errs := []error{d.SendInApp(ctx, job.GuardianID,
		"New Application Received",
		fmt.Sprintf("%s applied to your job \"%s\".", name, title),
		fmt.Sprintf("/jobs/%d/applicants", job.ID),
	)}

	if job.GuardianEmail != "" {
		body, err := render("applicationReceived", emailData{
			Sender:       d.sender,
			GuardianName: orName(job.GuardianName, "Guardian"),
			TutorName:    name,
			Title:        title,
			Message:      template.HTML(messagePolicy.Sanitize(app.Message)),
		})
		if err == nil {
			err = d.SendEmail(ctx, job.GuardianEmail, fmt.Sprintf("New application for \"%s\" - %s", title, d.sender), body)
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ApplicationStatusChanged tells the applicant their application was
// accepted or rejected.
func (d *Dispatcher) ApplicationStatusChanged(ctx context.Context, job model.JobPosting, app model.Application) error {
	if app.TutorID == nil {
		return nil
	}
	t, err := d.tutors.GetTutor(ctx, *app.TutorID)
	if err != nil {
		return fmt.Errorf("applicant %d: %w", *app.TutorID, err)
	}
	var msg string
	switch app.Status {
	case model.ApplicationAccepted:
		msg = fmt.Sprintf("Your application for \"%s\" was shortlisted by the guardian.", plain(job.Title))
	case model.ApplicationRejected:
		msg = fmt.Sprintf("Your application for \"%s\" was not selected. Keep applying to other jobs!", plain(job.Title))
	default:
		return nil
	}
	return d.SendInApp(ctx, t.UserID, "Application Update", msg, linkMyApplications)
}

// InvoicePaid confirms a commission payment to the tutor.
func (d *Dispatcher) InvoicePaid(ctx context.Context, inv model.CommissionInvoice) error {
	t, err := d.tutors.GetTutor(ctx, inv.TutorID)
	if err != nil {
		return fmt.Errorf("invoice tutor %d: %w", inv.TutorID, err)
	}
	return d.SendInApp(ctx, t.UserID,
		"Payment Received",
		fmt.Sprintf("We received your commission payment of ৳%s for invoice #%d. Thank you!", inv.Amount, inv.ID),
		linkMyInvoices,
	)
}
