// Package apperr defines the error taxonomy shared by every marketplace
// component. Errors are built on github.com/cockroachdb/errors: each failure
// carries a mark (checked with errors.Is) and, where the end user should see
// something specific, a hint.
package apperr

import (
	"github.com/cockroachdb/errors"
)

// Marks for the error taxonomy.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrExternalService  = errors.New("external service failure")
)

// User-facing messages.
const (
	MsgJobNotOpen    = "job no longer open"
	MsgInvalidTutor  = "invalid tutor profile"
	MsgNoResults     = "no results found — try broadening your search"
	MsgGenericFailed = "something went wrong, please try again later"
)

// NotFound returns an error marked ErrNotFound.
func NotFound(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrNotFound)
}

// Validation returns an error marked ErrValidation.
func Validation(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

// Conflict returns an error marked ErrConflict.
func Conflict(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrConflict)
}

// InvalidOperation returns an error marked ErrInvalidOperation.
func InvalidOperation(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidOperation)
}

// External wraps a collaborator failure and marks it ErrExternalService.
func External(err error, collaborator string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, "%s", collaborator), ErrExternalService)
}

// JobNotOpen is the guard failure of every Open-only transition.
func JobNotOpen(jobID int64) error {
	return errors.WithHint(Conflict("job %d no longer open", jobID), MsgJobNotOpen)
}

// InvalidTutor is returned when a hire or review names no usable tutor profile.
func InvalidTutor(tutorID int64) error {
	return errors.WithHint(Validation("no valid tutor profile linked (tutor %d)", tutorID), MsgInvalidTutor)
}

// NoResults carries the hint shown when a search returns nothing. Searches
// never fail on an empty result; transports use this only to render a message.
func NoResults() error {
	return errors.WithHint(errors.New("no results"), MsgNoResults)
}

// Is reports whether err carries the given mark.
func Is(err, mark error) bool { return errors.Is(err, mark) }

// UserMessage returns the message a caller should render for err.
// Validation and not-found errors without a hint surface their own text;
// anything else is presented generically.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	if errors.IsAny(err, ErrValidation, ErrNotFound, ErrConflict, ErrInvalidOperation) {
		return err.Error()
	}
	return MsgGenericFailed
}
