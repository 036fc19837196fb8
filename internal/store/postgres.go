// Package store implements the marketplace repositories.
//
// Postgres is the production implementation on pgxpool. Memory is an
// in-process implementation with the same semantics, used by tests and by
// the CLI when no database is needed. Every read-modify-write that guards a
// state transition is a single conditional statement (or a transaction made
// of them), so concurrent callers cannot both pass a guard.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/model"
)

// ─── Postgres ────────────────────────────────────────────────────────────────

// Postgres is the pgx-backed store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a store backed by pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const (
	jobColumns = `id, title, description, subject, city, location, medium, student_class,
		days_per_week, gender_preference, salary, status::text, guardian_id, guardian_name,
		guardian_email, hired_tutor_id, created_at`

	tutorColumns = `id, user_id, full_name, email, phone, education, subjects, preferred_classes,
		preferred_locations, bio, experience_years, rating, verified, profile_complete`

	applicationColumns = `id, job_id, tutor_id, applicant_name, applicant_email, message,
		status::text, submitted_at`

	invoiceColumns = `id, tutor_id, job_id, amount_minor, status::text, generated_at, paid_at`
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func scanJob(row pgx.Row) (model.JobPosting, error) {
	var j model.JobPosting
	var status string
	err := row.Scan(
		&j.ID, &j.Title, &j.Description, &j.Subject, &j.City, &j.Location, &j.Medium,
		&j.StudentClass, &j.DaysPerWeek, &j.GenderPreference, &j.Salary, &status,
		&j.GuardianID, &j.GuardianName, &j.GuardianEmail, &j.HiredTutorID, &j.CreatedAt,
	)
	j.Status = model.JobStatus(status)
	return j, err
}

func scanTutor(row pgx.Row) (model.TutorProfile, error) {
	var t model.TutorProfile
	err := row.Scan(
		&t.ID, &t.UserID, &t.FullName, &t.Email, &t.Phone, &t.Education, &t.Subjects,
		&t.PreferredClasses, &t.PreferredLocations, &t.Bio, &t.ExperienceYears,
		&t.Rating, &t.Verified, &t.ProfileComplete,
	)
	return t, err
}

func scanApplication(row pgx.Row) (model.Application, error) {
	var a model.Application
	var status string
	err := row.Scan(
		&a.ID, &a.JobID, &a.TutorID, &a.ApplicantName, &a.ApplicantEmail, &a.Message,
		&status, &a.SubmittedAt,
	)
	a.Status = model.ApplicationStatus(status)
	return a, err
}

func scanInvoice(row pgx.Row) (model.CommissionInvoice, error) {
	var inv model.CommissionInvoice
	var status string
	var amount int64
	err := row.Scan(&inv.ID, &inv.TutorID, &inv.JobID, &amount, &status, &inv.GeneratedAt, &inv.PaidAt)
	inv.Amount = model.Money(amount)
	inv.Status = model.InvoiceStatus(status)
	return inv, err
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (T, error) { return scan(r) })
}

// notFoundOr maps pgx.ErrNoRows to a NotFound error and wraps anything else.
func notFoundOr(err error, what string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("%s %v not found", what, id)
	}
	return fmt.Errorf("%s %v: %w", what, id, err)
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

// GetJob returns a job posting by ID.
func (p *Postgres) GetJob(ctx context.Context, id int64) (model.JobPosting, error) {
	j, err := scanJob(p.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM job_postings WHERE id = $1`, id))
	if err != nil {
		return model.JobPosting{}, notFoundOr(err, "job", id)
	}
	return j, nil
}

// CreateJob inserts an Open job posting.
func (p *Postgres) CreateJob(ctx context.Context, j model.JobPosting) (model.JobPosting, error) {
	created, err := scanJob(p.pool.QueryRow(ctx,
		`INSERT INTO job_postings (title, description, subject, city, location, medium, student_class,
		                           days_per_week, gender_preference, salary, status, guardian_id,
		                           guardian_name, guardian_email)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'Open', $11, $12, $13)
		 RETURNING `+jobColumns,
		j.Title, j.Description, j.Subject, j.City, j.Location, j.Medium, j.StudentClass,
		j.DaysPerWeek, j.GenderPreference, j.Salary, j.GuardianID, j.GuardianName, j.GuardianEmail,
	))
	if err != nil {
		return model.JobPosting{}, fmt.Errorf("createJob: %w", err)
	}
	return created, nil
}

// OpenJobs returns every Open job, newest first.
func (p *Postgres) OpenJobs(ctx context.Context) ([]model.JobPosting, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM job_postings WHERE status = 'Open' ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("openJobs query: %w", err)
	}
	return collect(rows, scanJob)
}

// jobGuardFailure explains why a conditional job update touched no row.
func jobGuardFailure(ctx context.Context, q interface {
	QueryRow(context.Context, string, ...any) pgx.Row
}, id int64) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM job_postings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("job %d exists: %w", id, err)
	}
	if !exists {
		return apperr.NotFound("job %d not found", id)
	}
	return apperr.JobNotOpen(id)
}

// DeleteOpenJob deletes a job only while it is Open.
func (p *Postgres) DeleteOpenJob(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM job_postings WHERE id = $1 AND status = 'Open'`, id)
	if err != nil {
		return fmt.Errorf("deleteJob: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return jobGuardFailure(ctx, p.pool, id)
	}
	return nil
}

// CloseOpenJob moves an Open job to Closed.
func (p *Postgres) CloseOpenJob(ctx context.Context, id int64) (model.JobPosting, error) {
	j, err := scanJob(p.pool.QueryRow(ctx,
		`UPDATE job_postings SET status = 'Closed' WHERE id = $1 AND status = 'Open' RETURNING `+jobColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.JobPosting{}, jobGuardFailure(ctx, p.pool, id)
	}
	if err != nil {
		return model.JobPosting{}, fmt.Errorf("closeJob: %w", err)
	}
	return j, nil
}

// HireTutor atomically fills an Open job with tutorID and resolves every
// application of the job: the tutor's own becomes Hired, all others Rejected.
//
// The conditional UPDATE is the hiring guard: of two concurrent calls on the
// same Open job, the second blocks on the row lock, re-evaluates
// status = 'Open' against the committed row and matches nothing.
func (p *Postgres) HireTutor(ctx context.Context, jobID, tutorID int64) (model.JobPosting, []model.Application, error) {
	var (
		job  model.JobPosting
		apps []model.Application
	)
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		var err error
		job, err = scanJob(tx.QueryRow(ctx,
			`UPDATE job_postings
			 SET status = 'Filled', hired_tutor_id = $2
			 WHERE id = $1 AND status = 'Open'
			 RETURNING `+jobColumns,
			jobID, tutorID,
		))
		if errors.Is(err, pgx.ErrNoRows) {
			return jobGuardFailure(ctx, tx, jobID)
		}
		if err != nil {
			return fmt.Errorf("hire update job: %w", err)
		}

		rows, err := tx.Query(ctx,
			`UPDATE applications
			 SET status = CASE WHEN tutor_id = $2 THEN 'Hired'::application_status
			                   ELSE 'Rejected'::application_status END
			 WHERE job_id = $1
			 RETURNING `+applicationColumns,
			jobID, tutorID,
		)
		if err != nil {
			return fmt.Errorf("hire update applications: %w", err)
		}
		apps, err = collect(rows, scanApplication)
		if err != nil {
			return fmt.Errorf("hire scan applications: %w", err)
		}
		return requireHiredApplication(apps, tutorID)
	})
	if err != nil {
		return model.JobPosting{}, nil, err
	}
	return job, apps, nil
}

// requireHiredApplication rejects a hire of a tutor who never applied, which
// would leave a Filled job with no Hired application.
func requireHiredApplication(apps []model.Application, tutorID int64) error {
	for _, a := range apps {
		if a.HasTutor(tutorID) {
			return nil
		}
	}
	return apperr.InvalidTutor(tutorID)
}

// ─── Tutors ──────────────────────────────────────────────────────────────────

// GetTutor returns a tutor profile by ID.
func (p *Postgres) GetTutor(ctx context.Context, id int64) (model.TutorProfile, error) {
	t, err := scanTutor(p.pool.QueryRow(ctx, `SELECT `+tutorColumns+` FROM tutors WHERE id = $1`, id))
	if err != nil {
		return model.TutorProfile{}, notFoundOr(err, "tutor", id)
	}
	return t, nil
}

// GetTutorByUser returns the tutor profile owned by userID.
func (p *Postgres) GetTutorByUser(ctx context.Context, userID string) (model.TutorProfile, error) {
	t, err := scanTutor(p.pool.QueryRow(ctx, `SELECT `+tutorColumns+` FROM tutors WHERE user_id = $1`, userID))
	if err != nil {
		return model.TutorProfile{}, notFoundOr(err, "tutor for user", userID)
	}
	return t, nil
}

// CreateTutor inserts a tutor profile. If another request created the profile
// for the same user first, that profile is returned.
func (p *Postgres) CreateTutor(ctx context.Context, t model.TutorProfile) (model.TutorProfile, error) {
	created, err := scanTutor(p.pool.QueryRow(ctx,
		`WITH ins AS (
		   INSERT INTO tutors (user_id, full_name, email, phone, education, subjects, preferred_classes,
		                       preferred_locations, bio, experience_years, rating, verified, profile_complete)
		   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		   ON CONFLICT (user_id) DO NOTHING
		   RETURNING `+tutorColumns+`
		 )
		 SELECT `+tutorColumns+` FROM ins
		 UNION ALL
		 SELECT `+tutorColumns+` FROM tutors WHERE user_id = $1 AND NOT EXISTS (SELECT 1 FROM ins)`,
		t.UserID, t.FullName, t.Email, t.Phone, t.Education, t.Subjects, t.PreferredClasses,
		t.PreferredLocations, t.Bio, t.ExperienceYears, t.Rating, t.Verified, t.ProfileComplete,
	))
	if err != nil {
		return model.TutorProfile{}, fmt.Errorf("createTutor: %w", err)
	}
	return created, nil
}

// UpdateTutor overwrites the editable fields of a tutor profile.
func (p *Postgres) UpdateTutor(ctx context.Context, t model.TutorProfile) (model.TutorProfile, error) {
	updated, err := scanTutor(p.pool.QueryRow(ctx,
		`UPDATE tutors
		 SET full_name = $2, email = $3, phone = $4, education = $5, subjects = $6,
		     preferred_classes = $7, preferred_locations = $8, bio = $9,
		     experience_years = $10, profile_complete = $11
		 WHERE id = $1
		 RETURNING `+tutorColumns,
		t.ID, t.FullName, t.Email, t.Phone, t.Education, t.Subjects, t.PreferredClasses,
		t.PreferredLocations, t.Bio, t.ExperienceYears, t.ProfileComplete,
	))
	if err != nil {
		return model.TutorProfile{}, notFoundOr(err, "tutor", t.ID)
	}
	return updated, nil
}

// SetTutorVerified sets the verification flag.
func (p *Postgres) SetTutorVerified(ctx context.Context, id int64, verified bool) (model.TutorProfile, error) {
	t, err := scanTutor(p.pool.QueryRow(ctx,
		`UPDATE tutors SET verified = $2 WHERE id = $1 RETURNING `+tutorColumns, id, verified))
	if err != nil {
		return model.TutorProfile{}, notFoundOr(err, "tutor", id)
	}
	return t, nil
}

// SearchableTutors returns the tutors guardians may browse: verified and
// with a complete profile.
func (p *Postgres) SearchableTutors(ctx context.Context) ([]model.TutorProfile, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+tutorColumns+` FROM tutors WHERE verified AND profile_complete ORDER BY rating DESC`)
	if err != nil {
		return nil, fmt.Errorf("searchableTutors query: %w", err)
	}
	return collect(rows, scanTutor)
}

// ─── Applications ────────────────────────────────────────────────────────────

// CreateApplication inserts a Pending application for an Open job. The job
// row is share-locked for the insert so a concurrent hire either sees this
// application or this insert sees the job as no longer Open.
func (p *Postgres) CreateApplication(ctx context.Context, a model.Application) (model.Application, error) {
	created, err := scanApplication(p.pool.QueryRow(ctx,
		`INSERT INTO applications (job_id, tutor_id, applicant_name, applicant_email, message, status)
		 SELECT j.id, $2::bigint, $3::text, $4::text, $5::text, 'Pending'
		 FROM job_postings j
		 WHERE j.id = $1 AND j.status = 'Open'
		 FOR SHARE
		 RETURNING `+applicationColumns,
		a.JobID, a.TutorID, a.ApplicantName, a.ApplicantEmail, a.Message,
	))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return model.Application{}, jobGuardFailure(ctx, p.pool, a.JobID)
	case isUniqueViolation(err):
		return model.Application{}, apperr.Conflict("tutor already applied to job %d", a.JobID)
	case err != nil:
		return model.Application{}, fmt.Errorf("createApplication: %w", err)
	}
	return created, nil
}

// GetApplication returns an application by ID.
func (p *Postgres) GetApplication(ctx context.Context, id int64) (model.Application, error) {
	a, err := scanApplication(p.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
	if err != nil {
		return model.Application{}, notFoundOr(err, "application", id)
	}
	return a, nil
}

// TransitionApplication moves an application from one status to another only
// if it is still in the expected status.
func (p *Postgres) TransitionApplication(ctx context.Context, id int64, from, to model.ApplicationStatus) (model.Application, error) {
	a, err := scanApplication(p.pool.QueryRow(ctx,
		`UPDATE applications SET status = $3::application_status
		 WHERE id = $1 AND status = $2::application_status
		 RETURNING `+applicationColumns,
		id, string(from), string(to),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := p.GetApplication(ctx, id); getErr != nil {
			return model.Application{}, getErr
		}
		return model.Application{}, apperr.Conflict("application %d is no longer %s", id, from)
	}
	if err != nil {
		return model.Application{}, fmt.Errorf("transitionApplication: %w", err)
	}
	return a, nil
}

// ListApplications returns every application for a job, oldest first.
func (p *Postgres) ListApplications(ctx context.Context, jobID int64) ([]model.Application, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY submitted_at, id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("listApplications query: %w", err)
	}
	return collect(rows, scanApplication)
}

// ListApplicants returns the applications of a job joined with their tutor
// profiles. Applications without a tutor profile are skipped.
func (p *Postgres) ListApplicants(ctx context.Context, jobID int64) ([]model.ApplicantDetail, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT a.id, t.id, COALESCE(NULLIF(t.full_name, ''), a.applicant_name), t.subjects, t.education,
		        t.experience_years, t.verified, a.status::text
		 FROM applications a
		 JOIN tutors t ON t.id = a.tutor_id
		 WHERE a.job_id = $1
		 ORDER BY a.submitted_at, a.id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("listApplicants query: %w", err)
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (model.ApplicantDetail, error) {
		var d model.ApplicantDetail
		var status string
		err := r.Scan(&d.ApplicationID, &d.TutorID, &d.Name, &d.Subjects, &d.Education,
			&d.Experience, &d.Verified, &status)
		d.Status = model.ApplicationStatus(status)
		return d, err
	})
}

// ─── Invoices ────────────────────────────────────────────────────────────────

// InsertInvoice stores an invoice unless the job already has one, in which
// case the existing invoice is returned with created=false.
func (p *Postgres) InsertInvoice(ctx context.Context, inv model.CommissionInvoice) (model.CommissionInvoice, bool, error) {
	created, err := scanInvoice(p.pool.QueryRow(ctx,
		`INSERT INTO commission_invoices (tutor_id, job_id, amount_minor, status, generated_at)
		 VALUES ($1, $2, $3, $4::invoice_status, $5)
		 ON CONFLICT (job_id) DO NOTHING
		 RETURNING `+invoiceColumns,
		inv.TutorID, inv.JobID, int64(inv.Amount), string(inv.Status), inv.GeneratedAt,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.CommissionInvoice{}, false, fmt.Errorf("insertInvoice: %w", err)
	}
	existing, err := scanInvoice(p.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM commission_invoices WHERE job_id = $1`, inv.JobID))
	if err != nil {
		return model.CommissionInvoice{}, false, notFoundOr(err, "invoice for job", inv.JobID)
	}
	return existing, false, nil
}

// GetInvoice returns an invoice by ID.
func (p *Postgres) GetInvoice(ctx context.Context, id int64) (model.CommissionInvoice, error) {
	inv, err := scanInvoice(p.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM commission_invoices WHERE id = $1`, id))
	if err != nil {
		return model.CommissionInvoice{}, notFoundOr(err, "invoice", id)
	}
	return inv, nil
}

// ListInvoicesForTutor returns a tutor's invoices, newest first.
func (p *Postgres) ListInvoicesForTutor(ctx context.Context, tutorID int64) ([]model.CommissionInvoice, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+invoiceColumns+` FROM commission_invoices WHERE tutor_id = $1 ORDER BY generated_at DESC, id DESC`, tutorID)
	if err != nil {
		return nil, fmt.Errorf("listInvoices query: %w", err)
	}
	return collect(rows, scanInvoice)
}

// MarkInvoicePaid moves a Pending or Overdue invoice to Paid.
func (p *Postgres) MarkInvoicePaid(ctx context.Context, id int64, at time.Time) (model.CommissionInvoice, error) {
	inv, err := scanInvoice(p.pool.QueryRow(ctx,
		`UPDATE commission_invoices SET status = 'Paid', paid_at = $2
		 WHERE id = $1 AND status IN ('Pending', 'Overdue')
		 RETURNING `+invoiceColumns, id, at))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := p.GetInvoice(ctx, id); getErr != nil {
			return model.CommissionInvoice{}, getErr
		}
		return model.CommissionInvoice{}, apperr.Conflict("invoice %d is already paid", id)
	}
	if err != nil {
		return model.CommissionInvoice{}, fmt.Errorf("markInvoicePaid: %w", err)
	}
	return inv, nil
}

// MarkInvoicesOverdue flags every Pending invoice generated before cutoff.
func (p *Postgres) MarkInvoicesOverdue(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE commission_invoices SET status = 'Overdue' WHERE status = 'Pending' AND generated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("markInvoicesOverdue: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ─── Reviews ─────────────────────────────────────────────────────────────────

// AddReview stores a review and recomputes the tutor's average rating in the
// same transaction. A second review for the same job is a conflict.
func (p *Postgres) AddReview(ctx context.Context, r model.Review) (model.Review, float64, error) {
	var rating float64
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO reviews (job_id, tutor_id, reviewer_id, rating, comment)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			r.JobID, r.TutorID, r.ReviewerID, r.Rating, r.Comment,
		).Scan(&r.ID, &r.CreatedAt)
		if isUniqueViolation(err) {
			return apperr.Conflict("job %d has already been reviewed", r.JobID)
		}
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
		return tx.QueryRow(ctx,
			`UPDATE tutors SET rating = (SELECT AVG(rating)::float8 FROM reviews WHERE tutor_id = $1)
			 WHERE id = $1
			 RETURNING rating`, r.TutorID,
		).Scan(&rating)
	})
	if err != nil {
		return model.Review{}, 0, err
	}
	return r, rating, nil
}

// ─── Notifications ───────────────────────────────────────────────────────────

// InsertNotification stores an in-app notification.
func (p *Postgres) InsertNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO notifications (user_id, title, message, link) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		n.UserID, n.Title, n.Message, n.Link,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return model.Notification{}, fmt.Errorf("insertNotification: %w", err)
	}
	return n, nil
}

// UnreadNotifications returns a user's unread notifications, newest first.
func (p *Postgres) UnreadNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, title, message, link, is_read, created_at
		 FROM notifications WHERE user_id = $1 AND NOT is_read
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("unreadNotifications query: %w", err)
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (model.Notification, error) {
		var n model.Notification
		err := r.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Link, &n.Read, &n.CreatedAt)
		return n, err
	})
}

// MarkNotificationsRead marks the given notifications of userID as read; an
// empty ids slice marks all of them.
func (p *Postgres) MarkNotificationsRead(ctx context.Context, userID string, ids []int64) (int64, error) {
	var (
		tag pgconn.CommandTag
		err error
	)
	if len(ids) == 0 {
		tag, err = p.pool.Exec(ctx, `UPDATE notifications SET is_read = true WHERE user_id = $1 AND NOT is_read`, userID)
	} else {
		tag, err = p.pool.Exec(ctx,
			`UPDATE notifications SET is_read = true WHERE user_id = $1 AND id = ANY($2) AND NOT is_read`, userID, ids)
	}
	if err != nil {
		return 0, fmt.Errorf("markNotificationsRead: %w", err)
	}
	return tag.RowsAffected(), nil
}
