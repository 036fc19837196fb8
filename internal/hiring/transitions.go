// Package hiring implements the job and application state machines and the
// operations that drive them: posting and closing jobs, applying, and
// confirming a hire.
//
// Application status graph:
//
//	Pending ──► Accepted ──► Hired
//	   │           │
//	   ├───────────┴──────► Rejected
//	   └──────────────────► Hired
//
// Job status graph:
//
//	Open ──► Filled
//	  └────► Closed
//
// Hired, Rejected, Filled and Closed are terminal states.
package hiring

import (
	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/model"
)

var applicationTransitions = map[model.ApplicationStatus][]model.ApplicationStatus{
	model.ApplicationPending:  {model.ApplicationAccepted, model.ApplicationRejected, model.ApplicationHired},
	model.ApplicationAccepted: {model.ApplicationRejected, model.ApplicationHired},
}

var jobTransitions = map[model.JobStatus][]model.JobStatus{
	model.JobOpen: {model.JobFilled, model.JobClosed},
}

// ParseApplicationStatus converts a raw string to an ApplicationStatus.
func ParseApplicationStatus(s string) (model.ApplicationStatus, error) {
	st := model.ApplicationStatus(s)
	switch st {
	case model.ApplicationPending, model.ApplicationAccepted, model.ApplicationRejected, model.ApplicationHired:
		return st, nil
	}
	return "", apperr.Validation("unknown application status %q", s)
}

// ParseJobStatus converts a raw string to a JobStatus.
func ParseJobStatus(s string) (model.JobStatus, error) {
	st := model.JobStatus(s)
	switch st {
	case model.JobOpen, model.JobFilled, model.JobClosed:
		return st, nil
	}
	return "", apperr.Validation("unknown job status %q", s)
}

// IsApplicationTransitionAllowed reports whether an application may move
// from one status to another.
func IsApplicationTransitionAllowed(from, to model.ApplicationStatus) bool {
	return allowed(applicationTransitions, from, to)
}

// IsJobTransitionAllowed reports whether a job may move from one status to
// another.
func IsJobTransitionAllowed(from, to model.JobStatus) bool {
	return allowed(jobTransitions, from, to)
}

func allowed[S comparable](graph map[S][]S, from, to S) bool {
	next, ok := graph[from]
	if !ok {
		return false // terminal
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// IsHired is true when an application has won its job (and owes an invoice).
func IsHired(s model.ApplicationStatus) bool { return s == model.ApplicationHired }
