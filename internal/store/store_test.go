package store_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/db"
	"tutorhub/marketplace-service/internal/model"
	"tutorhub/marketplace-service/internal/store"
)

// backend is the method set both stores implement.
type backend interface {
	GetJob(ctx context.Context, id int64) (model.JobPosting, error)
	CreateJob(ctx context.Context, j model.JobPosting) (model.JobPosting, error)
	OpenJobs(ctx context.Context) ([]model.JobPosting, error)
	DeleteOpenJob(ctx context.Context, id int64) error
	CloseOpenJob(ctx context.Context, id int64) (model.JobPosting, error)
	HireTutor(ctx context.Context, jobID, tutorID int64) (model.JobPosting, []model.Application, error)
	GetTutor(ctx context.Context, id int64) (model.TutorProfile, error)
	GetTutorByUser(ctx context.Context, userID string) (model.TutorProfile, error)
	CreateTutor(ctx context.Context, t model.TutorProfile) (model.TutorProfile, error)
	SetTutorVerified(ctx context.Context, id int64, verified bool) (model.TutorProfile, error)
	CreateApplication(ctx context.Context, a model.Application) (model.Application, error)
	GetApplication(ctx context.Context, id int64) (model.Application, error)
	TransitionApplication(ctx context.Context, id int64, from, to model.ApplicationStatus) (model.Application, error)
	ListApplications(ctx context.Context, jobID int64) ([]model.Application, error)
	InsertInvoice(ctx context.Context, inv model.CommissionInvoice) (model.CommissionInvoice, bool, error)
	MarkInvoicePaid(ctx context.Context, id int64, at time.Time) (model.CommissionInvoice, error)
	MarkInvoicesOverdue(ctx context.Context, cutoff time.Time) (int64, error)
	GetInvoice(ctx context.Context, id int64) (model.CommissionInvoice, error)
	AddReview(ctx context.Context, r model.Review) (model.Review, float64, error)
	InsertNotification(ctx context.Context, n model.Notification) (model.Notification, error)
	UnreadNotifications(ctx context.Context, userID string) ([]model.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID string, ids []int64) (int64, error)
}

var (
	_ backend = (*store.Memory)(nil)
	_ backend = (*store.Postgres)(nil)
)

func TestMemory(t *testing.T) {
	runContract(t, func() backend { return store.NewMemory() })
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.NewPostgresPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool))
	require.NoError(t, db.Migrate(ctx, pool), "migration is idempotent")

	runContract(t, func() backend { return store.NewPostgres(pool) })
}

// ─── Contract ─────────────────────────────────────────────────────────────────

// runContract exercises the guard semantics both stores share. Every case
// uses fresh user ids so it can run against a database that is not empty.
func runContract(t *testing.T, open func() backend) {
	run := fmt.Sprintf("%d", time.Now().UnixNano())
	user := func(name string) string { return name + "-" + run }

	fixture := func(t *testing.T, s backend, applicants int) (model.JobPosting, []model.TutorProfile) {
		t.Helper()
		ctx := context.Background()
		job, err := s.CreateJob(ctx, model.JobPosting{
			Title: "Chemistry", Subject: "Chemistry", Salary: 7000, GuardianID: user("g-" + t.Name()),
			Status: model.JobClosed, DaysPerWeek: "3", GenderPreference: "Any",
		})
		require.NoError(t, err)
		tutors := make([]model.TutorProfile, applicants)
		for i := range tutors {
			tutors[i], err = s.CreateTutor(ctx, model.NewPlaceholderTutor(user(fmt.Sprintf("%s-t%d", t.Name(), i)), "T", "t@example.com", ""))
			require.NoError(t, err)
			_, err = s.CreateApplication(ctx, model.Application{JobID: job.ID, TutorID: &tutors[i].ID, ApplicantName: "T", ApplicantEmail: "t@example.com"})
			require.NoError(t, err)
		}
		return job, tutors
	}

	t.Run("create job forces Open", func(t *testing.T) {
		s := open()
		job, _ := fixture(t, s, 0)
		assert.Equal(t, model.JobOpen, job.Status)
		assert.Nil(t, job.HiredTutorID)

		jobs, err := s.OpenJobs(context.Background())
		require.NoError(t, err)
		ids := make([]int64, 0, len(jobs))
		for _, j := range jobs {
			ids = append(ids, j.ID)
		}
		assert.Contains(t, ids, job.ID)
	})

	t.Run("create tutor is idempotent per user", func(t *testing.T) {
		s := open()
		ctx := context.Background()
		first, err := s.CreateTutor(ctx, model.NewPlaceholderTutor(user("dup"), "First", "", ""))
		require.NoError(t, err)
		second, err := s.CreateTutor(ctx, model.NewPlaceholderTutor(user("dup"), "Second", "", ""))
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "First", second.FullName)

		byUser, err := s.GetTutorByUser(ctx, user("dup"))
		require.NoError(t, err)
		assert.Equal(t, first.ID, byUser.ID)
		assert.Equal(t, model.NotSpecified, byUser.Education)
		assert.False(t, byUser.Verified)
	})

	t.Run("duplicate application conflicts", func(t *testing.T) {
		s := open()
		job, tutors := fixture(t, s, 1)
		_, err := s.CreateApplication(context.Background(), model.Application{JobID: job.ID, TutorID: &tutors[0].ID, ApplicantName: "T", ApplicantEmail: "t@example.com"})
		assert.True(t, apperr.Is(err, apperr.ErrConflict), "got %v", err)
	})

	t.Run("hire resolves every application", func(t *testing.T) {
		s := open()
		ctx := context.Background()
		job, tutors := fixture(t, s, 3)

		filled, resolved, err := s.HireTutor(ctx, job.ID, tutors[1].ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobFilled, filled.Status)
		require.NotNil(t, filled.HiredTutorID)
		assert.Equal(t, tutors[1].ID, *filled.HiredTutorID)
		require.Len(t, resolved, 3)

		apps, err := s.ListApplications(ctx, job.ID)
		require.NoError(t, err)
		for _, a := range apps {
			if a.HasTutor(tutors[1].ID) {
				assert.Equal(t, model.ApplicationHired, a.Status)
			} else {
				assert.Equal(t, model.ApplicationRejected, a.Status)
			}
		}

		_, _, err = s.HireTutor(ctx, job.ID, tutors[0].ID)
		assert.True(t, apperr.Is(err, apperr.ErrConflict), "second hire: %v", err)
		assert.Equal(t, apperr.MsgJobNotOpen, apperr.UserMessage(err))
	})

	t.Run("hire of a tutor without application changes nothing", func(t *testing.T) {
		s := open()
		ctx := context.Background()
		job, _ := fixture(t, s, 1)
		outsider, err := s.CreateTutor(ctx, model.NewPlaceholderTutor(user("outsider"), "O", "", ""))
		require.NoError(t, err)

		_, _, err = s.HireTutor(ctx, job.ID, outsider.ID)
		assert.True(t, apperr.Is(err, apperr.ErrValidation), "got %v", err)

		got, err := s.GetJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobOpen, got.Status)
		apps, err := s.ListApplications(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationPending, apps[0].Status)
	})

	t.Run("concurrent hires have one winner", func(t *testing.T) {
		s := open()
		job, tutors := fixture(t, s, 8)
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for _, tutor := range tutors {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, _, err := s.HireTutor(context.Background(), job.ID, id)
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
					return
				}
				assert.True(t, apperr.Is(err, apperr.ErrConflict), "got %v", err)
			}(tutor.ID)
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("close and delete guard on Open", func(t *testing.T) {
		s := open()
		ctx := context.Background()
		job, _ := fixture(t, s, 1)
		closed, err := s.CloseOpenJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobClosed, closed.Status)

		_, err = s.CloseOpenJob(ctx, job.ID)
		assert.True(t, apperr.Is(err, apperr.ErrConflict))
		assert.True(t, apperr.Is(s.DeleteOpenJob(ctx, job.ID), apperr.ErrConflict))
		assert.True(t, apperr.Is(s.DeleteOpenJob(ctx, 1<<40), apperr.ErrNotFound))

		deletable, _ := fixture(t, s, 1)
		require.NoError(t, s.DeleteOpenJob(ctx, deletable.ID))
		_, err = s.GetJob(ctx, deletable.ID)
		assert.True(t, apperr.Is(err, apperr.ErrNotFound))
	})

	t.Run("transition checks the current status", func(t *testing.T) {
		s := open()
		ctx := context.Background()
		job, _ := fixture(t, s, 1)
		apps, err := s.ListApplications(ctx, job.ID)
		require.NoError(t, err)
		id := apps[0].ID

		a, err := s.TransitionApplication(ctx, id, model.ApplicationPending, model.ApplicationAccepted)
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationAccepted, a.Status)

		_, err = s.TransitionApplication(ctx, id, model.ApplicationPending, model.ApplicationRejected)
		assert.True(t, apperr.Is(err, apperr.ErrConflict), "stale from-status: %v", err)

		got, err := s.GetApplication(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationAccepted, got.Status)
	})

	t.Run("invoice lifecycle", func(t *testing.T) {
		s := open()
		ctx := context.Background()
		job, tutors := fixture(t, s, 1)
		_, _, err := s.HireTutor(ctx, job.ID, tutors[0].ID)
		require.NoError(t, err)

		generated := time.Now().Add(-60 * 24 * time.Hour).UTC().Truncate(time.Second)
		inv, created, err := s.InsertInvoice(ctx, model.CommissionInvoice{
			TutorID: tutors[0].ID, JobID: job.ID, Amount: model.Commission(job.Salary),
			Status: model.InvoicePending, GeneratedAt: generated,
		})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "2800.00", inv.Amount.String())

		again, created, err := s.InsertInvoice(ctx, model.CommissionInvoice{
			TutorID: tutors[0].ID, JobID: job.ID, Amount: model.Taka(1), Status: model.InvoicePending, GeneratedAt: time.Now(),
		})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, inv.ID, again.ID)
		assert.Equal(t, inv.Amount, again.Amount)

		n, err := s.MarkInvoicesOverdue(ctx, time.Now().Add(-30*24*time.Hour))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1))
		overdue, err := s.GetInvoice(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceOverdue, overdue.Status)

		paid, err := s.MarkInvoicePaid(ctx, inv.ID, time.Now())
		require.NoError(t, err)
		assert.Equal(t, model.InvoicePaid, paid.Status)
		assert.NotNil(t, paid.PaidAt)

		_, err = s.MarkInvoicePaid(ctx, inv.ID, time.Now())
		assert.True(t, apperr.Is(err, apperr.ErrConflict))
		_, err = s.MarkInvoicePaid(ctx, 1<<40, time.Now())
		assert.True(t, apperr.Is(err, apperr.ErrNotFound))
	})

	t.Run("reviews average and stay unique per job", func(t *testing.T) {
		s := open()
		ctx := context.Background()
		job1, tutors := fixture(t, s, 1)
		_, _, err := s.HireTutor(ctx, job1.ID, tutors[0].ID)
		require.NoError(t, err)

		_, avg, err := s.AddReview(ctx, model.Review{JobID: job1.ID, TutorID: tutors[0].ID, ReviewerID: job1.GuardianID, Rating: 4})
		require.NoError(t, err)
		assert.InDelta(t, 4.0, avg, 1e-9)

		job2, err := s.CreateJob(ctx, model.JobPosting{Title: "Second", Subject: "Math", Salary: 3000, GuardianID: job1.GuardianID, DaysPerWeek: "2", GenderPreference: "Any"})
		require.NoError(t, err)
		_, avg, err = s.AddReview(ctx, model.Review{JobID: job2.ID, TutorID: tutors[0].ID, ReviewerID: job1.GuardianID, Rating: 1})
		require.NoError(t, err)
		assert.InDelta(t, 2.5, avg, 1e-9)

		_, _, err = s.AddReview(ctx, model.Review{JobID: job1.ID, TutorID: tutors[0].ID, ReviewerID: job1.GuardianID, Rating: 5})
		assert.True(t, apperr.Is(err, apperr.ErrConflict))

		got, err := s.GetTutor(ctx, tutors[0].ID)
		require.NoError(t, err)
		assert.InDelta(t, 2.5, got.Rating, 1e-9)
	})

	t.Run("notifications", func(t *testing.T) {
		s := open()
		ctx := context.Background()
		u := user("inbox")
		var ids []int64
		for i := range 3 {
			n, err := s.InsertNotification(ctx, model.Notification{UserID: u, Title: fmt.Sprintf("n%d", i), Message: "m"})
			require.NoError(t, err)
			ids = append(ids, n.ID)
		}

		marked, err := s.MarkNotificationsRead(ctx, u, ids[:1])
		require.NoError(t, err)
		assert.Equal(t, int64(1), marked)
		marked, err = s.MarkNotificationsRead(ctx, user("someone-else"), ids)
		require.NoError(t, err)
		assert.Zero(t, marked)

		unread, err := s.UnreadNotifications(ctx, u)
		require.NoError(t, err)
		require.Len(t, unread, 2)
		assert.Equal(t, ids[2], unread[0].ID, "newest first")

		marked, err = s.MarkNotificationsRead(ctx, u, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), marked)
	})

	t.Run("verified flag", func(t *testing.T) {
		s := open()
		tutor, err := s.CreateTutor(context.Background(), model.NewPlaceholderTutor(user("verify"), "V", "", ""))
		require.NoError(t, err)
		got, err := s.SetTutorVerified(context.Background(), tutor.ID, true)
		require.NoError(t, err)
		assert.True(t, got.Verified)
		_, err = s.SetTutorVerified(context.Background(), 1<<40, true)
		assert.True(t, apperr.Is(err, apperr.ErrNotFound))
	})
}
