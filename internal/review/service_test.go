package review_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/model"
	"tutorhub/marketplace-service/internal/review"
	"tutorhub/marketplace-service/internal/store"
)

type inbox struct{ users []string }

func (i *inbox) SendInApp(_ context.Context, userID, _, _, _ string) error {
	i.users = append(i.users, userID)
	return nil
}

// hire fills a fresh job owned by guardian with tutor.
func hire(t *testing.T, mem *store.Memory, guardian string, tutor model.TutorProfile) model.JobPosting {
	t.Helper()
	ctx := context.Background()
	job, err := mem.CreateJob(ctx, model.JobPosting{Title: "Biology", Salary: 5000, GuardianID: guardian})
	require.NoError(t, err)
	_, err = mem.CreateApplication(ctx, model.Application{JobID: job.ID, TutorID: &tutor.ID, ApplicantName: tutor.FullName, ApplicantEmail: "x@example.com"})
	require.NoError(t, err)
	job, _, err = mem.HireTutor(ctx, job.ID, tutor.ID)
	require.NoError(t, err)
	return job
}

func newTutor(t *testing.T, mem *store.Memory) model.TutorProfile {
	t.Helper()
	tutor, err := mem.CreateTutor(context.Background(), model.NewPlaceholderTutor("tutor-user", "Rafi", "rafi@example.com", ""))
	require.NoError(t, err)
	return tutor
}

func TestSubmit_AveragesRating(t *testing.T) {
	mem := store.NewMemory()
	notes := &inbox{}
	svc := review.NewService(mem, notes, zap.NewNop())
	tutor := newTutor(t, mem)

	first := hire(t, mem, "g1", tutor)
	out, err := svc.Submit(context.Background(), "g1", first.ID, 5, "  Excellent <b>teacher</b> ")
	require.NoError(t, err)
	assert.Equal(t, "Excellent teacher", out.Review.Comment)
	assert.Equal(t, tutor.ID, out.Review.TutorID)
	assert.InDelta(t, 5.0, out.TutorRating, 1e-9)

	second := hire(t, mem, "g2", tutor)
	out, err = svc.Submit(context.Background(), "g2", second.ID, 2, "")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, out.TutorRating, 1e-9)

	got, err := mem.GetTutor(context.Background(), tutor.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, got.Rating, 1e-9)
	assert.Equal(t, []string{"tutor-user", "tutor-user"}, notes.users)
}

func TestSubmit_CommentIsPlainText(t *testing.T) {
	mem := store.NewMemory()
	svc := review.NewService(mem, nil, zap.NewNop())
	tutor := newTutor(t, mem)

	cases := []struct{ in, want string }{
		{"&lt;b&gt;bold&lt;/b&gt; Tom &amp; Jerry", "bold Tom & Jerry"},
		{"&amp;lt;i&amp;gt;nested", "nested"},
		{"2 < 3 & 4 > 1", "2 < 3 & 4 > 1"},
	}
	for i, c := range cases {
		job := hire(t, mem, "guardian-"+strconv.Itoa(i), tutor)
		out, err := svc.Submit(context.Background(), "guardian-"+strconv.Itoa(i), job.ID, 4, c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, out.Review.Comment, c.in)
	}
}

func TestSubmit_Guards(t *testing.T) {
	mem := store.NewMemory()
	svc := review.NewService(mem, nil, zap.NewNop())
	tutor := newTutor(t, mem)
	filled := hire(t, mem, "g1", tutor)
	open, err := mem.CreateJob(context.Background(), model.JobPosting{Title: "Open", Salary: 3000, GuardianID: "g1"})
	require.NoError(t, err)

	cases := []struct {
		name     string
		reviewer string
		jobID    int64
		rating   int
		comment  string
		mark     error
	}{
		{"rating too low", "g1", filled.ID, 0, "", apperr.ErrValidation},
		{"rating too high", "g1", filled.ID, 6, "", apperr.ErrValidation},
		{"comment too long", "g1", filled.ID, 4, strings.Repeat("a", 501), apperr.ErrValidation},
		{"not the owner", "intruder", filled.ID, 4, "", apperr.ErrValidation},
		{"job not filled", "g1", open.ID, 4, "", apperr.ErrInvalidOperation},
		{"unknown job", "g1", 999, 4, "", apperr.ErrNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), c.reviewer, c.jobID, c.rating, c.comment)
			assert.True(t, apperr.Is(err, c.mark), "got %v", err)
		})
	}

	_, err = svc.Submit(context.Background(), "g1", filled.ID, 4, strings.Repeat("b", 500))
	require.NoError(t, err, "exactly 500 characters is accepted")
	_, err = svc.Submit(context.Background(), "g1", filled.ID, 3, "again")
	assert.True(t, apperr.Is(err, apperr.ErrConflict), "one review per job")
}

func TestHandler_ServeReview(t *testing.T) {
	mem := store.NewMemory()
	h := review.NewHandler(review.NewService(mem, nil, zap.NewNop()), zap.NewNop())
	job := hire(t, mem, "g1", newTutor(t, mem))

	req := httptest.NewRequest(http.MethodPost, "/jobs/x/review", strings.NewReader(`{"rating":4,"comment":"good"}`))
	req.Header.Set("x-user-id", "g1")
	rec := httptest.NewRecorder()
	h.ServeReview(rec, req, job.ID)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tutorRating":4`)

	req = httptest.NewRequest(http.MethodPost, "/jobs/x/review", strings.NewReader(`{"rating":4}`))
	rec = httptest.NewRecorder()
	h.ServeReview(rec, req, job.ID)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
