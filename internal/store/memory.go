package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/model"
)

// Memory is an in-process store with the same guard semantics as Postgres.
// A single mutex serialises every operation, so each method is atomic.
type Memory struct {
	mu  sync.Mutex
	now func() time.Time

	seq           int64
	jobs          map[int64]model.JobPosting
	tutors        map[int64]model.TutorProfile
	applications  map[int64]model.Application
	invoices      map[int64]model.CommissionInvoice
	reviews       map[int64]model.Review
	notifications map[int64]model.Notification
}

// NewMemory returns an empty store that stamps records with time.Now.
func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock returns an empty store stamping records with now.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		now:           now,
		jobs:          make(map[int64]model.JobPosting),
		tutors:        make(map[int64]model.TutorProfile),
		applications:  make(map[int64]model.Application),
		invoices:      make(map[int64]model.CommissionInvoice),
		reviews:       make(map[int64]model.Review),
		notifications: make(map[int64]model.Notification),
	}
}

func (m *Memory) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *Memory) jobGuardFailure(id int64) error {
	if _, ok := m.jobs[id]; !ok {
		return apperr.NotFound("job %d not found", id)
	}
	return apperr.JobNotOpen(id)
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (m *Memory) GetJob(_ context.Context, id int64) (model.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return model.JobPosting{}, apperr.NotFound("job %d not found", id)
	}
	return j, nil
}

func (m *Memory) CreateJob(_ context.Context, j model.JobPosting) (model.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j.ID = m.nextID()
	j.Status = model.JobOpen
	j.HiredTutorID = nil
	if j.CreatedAt.IsZero() {
		j.CreatedAt = m.now()
	}
	m.jobs[j.ID] = j
	return j, nil
}

func (m *Memory) OpenJobs(_ context.Context) ([]model.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.JobPosting
	for _, j := range m.jobs {
		if j.Status == model.JobOpen {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].ID > out[b].ID
	})
	return out, nil
}

func (m *Memory) DeleteOpenJob(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != model.JobOpen {
		return m.jobGuardFailure(id)
	}
	delete(m.jobs, id)
	for appID, a := range m.applications {
		if a.JobID == id {
			delete(m.applications, appID)
		}
	}
	return nil
}

func (m *Memory) CloseOpenJob(_ context.Context, id int64) (model.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != model.JobOpen {
		return model.JobPosting{}, m.jobGuardFailure(id)
	}
	j.Status = model.JobClosed
	m.jobs[id] = j
	return j, nil
}

// HireTutor fills an Open job and resolves its applications in one critical
// section. Nothing is mutated when the tutor has no application for the job.
func (m *Memory) HireTutor(_ context.Context, jobID, tutorID int64) (model.JobPosting, []model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok || j.Status != model.JobOpen {
		return model.JobPosting{}, nil, m.jobGuardFailure(jobID)
	}

	apps := m.applicationsFor(jobID)
	if err := requireHiredApplication(apps, tutorID); err != nil {
		return model.JobPosting{}, nil, err
	}

	hired := tutorID
	j.Status = model.JobFilled
	j.HiredTutorID = &hired
	m.jobs[jobID] = j

	for i := range apps {
		if apps[i].HasTutor(tutorID) {
			apps[i].Status = model.ApplicationHired
		} else {
			apps[i].Status = model.ApplicationRejected
		}
		m.applications[apps[i].ID] = apps[i]
	}
	return j, apps, nil
}

// ─── Tutors ──────────────────────────────────────────────────────────────────

func (m *Memory) GetTutor(_ context.Context, id int64) (model.TutorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tutors[id]
	if !ok {
		return model.TutorProfile{}, apperr.NotFound("tutor %d not found", id)
	}
	return t, nil
}

func (m *Memory) GetTutorByUser(_ context.Context, userID string) (model.TutorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tutors {
		if t.UserID == userID {
			return t, nil
		}
	}
	return model.TutorProfile{}, apperr.NotFound("tutor for user %s not found", userID)
}

func (m *Memory) CreateTutor(_ context.Context, t model.TutorProfile) (model.TutorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tutors {
		if existing.UserID == t.UserID {
			return existing, nil
		}
	}
	t.ID = m.nextID()
	m.tutors[t.ID] = t
	return t, nil
}

func (m *Memory) UpdateTutor(_ context.Context, t model.TutorProfile) (model.TutorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tutors[t.ID]
	if !ok {
		return model.TutorProfile{}, apperr.NotFound("tutor %d not found", t.ID)
	}
	// Identity, rating and verification are not editable through this path.
	t.UserID = cur.UserID
	t.Rating = cur.Rating
	t.Verified = cur.Verified
	m.tutors[t.ID] = t
	return t, nil
}

func (m *Memory) SetTutorVerified(_ context.Context, id int64, verified bool) (model.TutorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tutors[id]
	if !ok {
		return model.TutorProfile{}, apperr.NotFound("tutor %d not found", id)
	}
	t.Verified = verified
	m.tutors[id] = t
	return t, nil
}

func (m *Memory) SearchableTutors(_ context.Context) ([]model.TutorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TutorProfile
	for _, t := range m.tutors {
		if t.Verified && t.ProfileComplete {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Rating != out[b].Rating {
			return out[a].Rating > out[b].Rating
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

// ─── Applications ────────────────────────────────────────────────────────────

func (m *Memory) applicationsFor(jobID int64) []model.Application {
	var out []model.Application
	for _, a := range m.applications {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (m *Memory) CreateApplication(_ context.Context, a model.Application) (model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[a.JobID]
	if !ok || j.Status != model.JobOpen {
		return model.Application{}, m.jobGuardFailure(a.JobID)
	}
	if a.TutorID != nil {
		for _, existing := range m.applicationsFor(a.JobID) {
			if existing.HasTutor(*a.TutorID) {
				return model.Application{}, apperr.Conflict("tutor already applied to job %d", a.JobID)
			}
		}
	}
	a.ID = m.nextID()
	a.Status = model.ApplicationPending
	a.SubmittedAt = m.now()
	m.applications[a.ID] = a
	return a, nil
}

func (m *Memory) GetApplication(_ context.Context, id int64) (model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if !ok {
		return model.Application{}, apperr.NotFound("application %d not found", id)
	}
	return a, nil
}

func (m *Memory) TransitionApplication(_ context.Context, id int64, from, to model.ApplicationStatus) (model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if !ok {
		return model.Application{}, apperr.NotFound("application %d not found", id)
	}
	if a.Status != from {
		return model.Application{}, apperr.Conflict("application %d is no longer %s", id, from)
	}
	a.Status = to
	m.applications[id] = a
	return a, nil
}

func (m *Memory) ListApplications(_ context.Context, jobID int64) ([]model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applicationsFor(jobID), nil
}

func (m *Memory) ListApplicants(_ context.Context, jobID int64) ([]model.ApplicantDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ApplicantDetail
	for _, a := range m.applicationsFor(jobID) {
		if a.TutorID == nil {
			continue
		}
		t, ok := m.tutors[*a.TutorID]
		if !ok {
			continue
		}
		name := t.FullName
		if name == "" {
			name = a.ApplicantName
		}
		out = append(out, model.ApplicantDetail{
			ApplicationID: a.ID,
			TutorID:       t.ID,
			Name:          name,
			Subjects:      t.Subjects,
			Education:     t.Education,
			Experience:    t.ExperienceYears,
			Verified:      t.Verified,
			Status:        a.Status,
		})
	}
	return out, nil
}

// ─── Invoices ────────────────────────────────────────────────────────────────

func (m *Memory) InsertInvoice(_ context.Context, inv model.CommissionInvoice) (model.CommissionInvoice, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.invoices {
		if existing.JobID == inv.JobID {
			return existing, false, nil
		}
	}
	inv.ID = m.nextID()
	m.invoices[inv.ID] = inv
	return inv, true, nil
}

func (m *Memory) GetInvoice(_ context.Context, id int64) (model.CommissionInvoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return model.CommissionInvoice{}, apperr.NotFound("invoice %d not found", id)
	}
	return inv, nil
}

func (m *Memory) ListInvoicesForTutor(_ context.Context, tutorID int64) ([]model.CommissionInvoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CommissionInvoice
	for _, inv := range m.invoices {
		if inv.TutorID == tutorID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].GeneratedAt.Equal(out[b].GeneratedAt) {
			return out[a].GeneratedAt.After(out[b].GeneratedAt)
		}
		return out[a].ID > out[b].ID
	})
	return out, nil
}

func (m *Memory) MarkInvoicePaid(_ context.Context, id int64, at time.Time) (model.CommissionInvoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return model.CommissionInvoice{}, apperr.NotFound("invoice %d not found", id)
	}
	if inv.Status == model.InvoicePaid {
		return model.CommissionInvoice{}, apperr.Conflict("invoice %d is already paid", id)
	}
	inv.Status = model.InvoicePaid
	inv.PaidAt = &at
	m.invoices[id] = inv
	return inv, nil
}

func (m *Memory) MarkInvoicesOverdue(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, inv := range m.invoices {
		if inv.Status == model.InvoicePending && inv.GeneratedAt.Before(cutoff) {
			inv.Status = model.InvoiceOverdue
			m.invoices[id] = inv
			n++
		}
	}
	return n, nil
}

// ─── Reviews ─────────────────────────────────────────────────────────────────

func (m *Memory) AddReview(_ context.Context, r model.Review) (model.Review, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tutors[r.TutorID]
	if !ok {
		return model.Review{}, 0, apperr.NotFound("tutor %d not found", r.TutorID)
	}
	var sum, count int
	for _, existing := range m.reviews {
		if existing.JobID == r.JobID {
			return model.Review{}, 0, apperr.Conflict("job %d has already been reviewed", r.JobID)
		}
		if existing.TutorID == r.TutorID {
			sum += existing.Rating
			count++
		}
	}
	r.ID = m.nextID()
	r.CreatedAt = m.now()
	m.reviews[r.ID] = r

	t.Rating = float64(sum+r.Rating) / float64(count+1)
	m.tutors[t.ID] = t
	return r, t.Rating, nil
}

// ─── Notifications ───────────────────────────────────────────────────────────

func (m *Memory) InsertNotification(_ context.Context, n model.Notification) (model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = m.nextID()
	n.CreatedAt = m.now()
	m.notifications[n.ID] = n
	return n, nil
}

func (m *Memory) UnreadNotifications(_ context.Context, userID string) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID > out[b].ID })
	return out, nil
}

func (m *Memory) MarkNotificationsRead(_ context.Context, userID string, ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for id, note := range m.notifications {
		if note.UserID != userID || note.Read {
			continue
		}
		if len(ids) > 0 && !want[id] {
			continue
		}
		note.Read = true
		m.notifications[id] = note
		n++
	}
	return n, nil
}
