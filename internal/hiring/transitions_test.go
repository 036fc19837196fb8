package hiring_test

import (
	"testing"

	"tutorhub/marketplace-service/internal/hiring"
	"tutorhub/marketplace-service/internal/model"
)

var allApplicationStatuses = []model.ApplicationStatus{
	model.ApplicationPending,
	model.ApplicationAccepted,
	model.ApplicationRejected,
	model.ApplicationHired,
}

var allJobStatuses = []model.JobStatus{model.JobOpen, model.JobFilled, model.JobClosed}

// ── ParseApplicationStatus ─────────────────────────────────────────────────

func TestParseApplicationStatus_ValidValues(t *testing.T) {
	for _, s := range []string{"Pending", "Accepted", "Rejected", "Hired"} {
		got, err := hiring.ParseApplicationStatus(s)
		if err != nil {
			t.Errorf("ParseApplicationStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseApplicationStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseApplicationStatus_InvalidValue(t *testing.T) {
	if _, err := hiring.ParseApplicationStatus("Interview"); err == nil {
		t.Error("ParseApplicationStatus(\"Interview\") expected error, got nil")
	}
}

func TestParseApplicationStatus_EmptyString(t *testing.T) {
	if _, err := hiring.ParseApplicationStatus(""); err == nil {
		t.Error("ParseApplicationStatus(\"\") expected error, got nil")
	}
}

// ── IsHired ────────────────────────────────────────────────────────────────

func TestIsHired(t *testing.T) {
	if !hiring.IsHired(model.ApplicationHired) {
		t.Error("IsHired(Hired) should return true")
	}
	for _, s := range []model.ApplicationStatus{model.ApplicationPending, model.ApplicationAccepted, model.ApplicationRejected} {
		if hiring.IsHired(s) {
			t.Errorf("IsHired(%s) should return false", s)
		}
	}
}

// ── IsApplicationTransitionAllowed ─────────────────────────────────────────

func TestIsApplicationTransitionAllowed_Valid(t *testing.T) {
	cases := []struct {
		from model.ApplicationStatus
		to   model.ApplicationStatus
	}{
		{model.ApplicationPending, model.ApplicationAccepted},
		{model.ApplicationPending, model.ApplicationRejected},
		{model.ApplicationPending, model.ApplicationHired},
		{model.ApplicationAccepted, model.ApplicationRejected},
		{model.ApplicationAccepted, model.ApplicationHired},
	}
	for _, c := range cases {
		if !hiring.IsApplicationTransitionAllowed(c.from, c.to) {
			t.Errorf("IsApplicationTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

func TestIsApplicationTransitionAllowed_FromTerminal(t *testing.T) {
	for _, from := range []model.ApplicationStatus{model.ApplicationHired, model.ApplicationRejected} {
		for _, to := range allApplicationStatuses {
			if hiring.IsApplicationTransitionAllowed(from, to) {
				t.Errorf("IsApplicationTransitionAllowed(%s → %s) should be false (terminal state)", from, to)
			}
		}
	}
}

func TestIsApplicationTransitionAllowed_Backwards(t *testing.T) {
	if hiring.IsApplicationTransitionAllowed(model.ApplicationAccepted, model.ApplicationPending) {
		t.Error("IsApplicationTransitionAllowed(Accepted → Pending) should be false (backwards)")
	}
}

func TestIsApplicationTransitionAllowed_Self(t *testing.T) {
	for _, s := range allApplicationStatuses {
		if hiring.IsApplicationTransitionAllowed(s, s) {
			t.Errorf("IsApplicationTransitionAllowed(%s → %s) should be false (self)", s, s)
		}
	}
}

// ── IsJobTransitionAllowed ─────────────────────────────────────────────────

func TestIsJobTransitionAllowed(t *testing.T) {
	for _, to := range []model.JobStatus{model.JobFilled, model.JobClosed} {
		if !hiring.IsJobTransitionAllowed(model.JobOpen, to) {
			t.Errorf("IsJobTransitionAllowed(Open → %s) should be true", to)
		}
	}
	// Filled and Closed jobs cannot be reopened or moved anywhere else.
	for _, from := range []model.JobStatus{model.JobFilled, model.JobClosed} {
		for _, to := range allJobStatuses {
			if hiring.IsJobTransitionAllowed(from, to) {
				t.Errorf("IsJobTransitionAllowed(%s → %s) should be false (terminal state)", from, to)
			}
		}
	}
}
