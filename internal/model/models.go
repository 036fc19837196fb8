// Package model defines the records shared by the marketplace service:
// job postings, applications, tutor profiles, invoices and reviews.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// JobStatus values mirror the job_status enum in PostgreSQL.
type JobStatus string

const (
	JobOpen   JobStatus = "Open"
	JobFilled JobStatus = "Filled"
	JobClosed JobStatus = "Closed"
)

// ApplicationStatus values mirror the application_status enum in PostgreSQL.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationAccepted ApplicationStatus = "Accepted"
	ApplicationRejected ApplicationStatus = "Rejected"
	ApplicationHired    ApplicationStatus = "Hired"
)

// InvoiceStatus values mirror the invoice_status enum in PostgreSQL.
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "Pending"
	InvoicePaid    InvoiceStatus = "Paid"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

// Salary bounds accepted when a guardian posts a job.
const (
	MinSalary = 1000
	MaxSalary = 50000
)

// NotSpecified is the placeholder written into lazily created tutor profiles.
const NotSpecified = "Not specified"

// JobPosting is a guardian's advertised tuition job.
type JobPosting struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Subject          string    `json:"subject"`
	City             string    `json:"city"`
	Location         string    `json:"location"`
	Medium           string    `json:"medium"`
	StudentClass     string    `json:"studentClass"`
	DaysPerWeek      string    `json:"daysPerWeek"`
	GenderPreference string    `json:"genderPreference"`
	Salary           int       `json:"salary"`
	Status           JobStatus `json:"status"`
	GuardianID       string    `json:"guardianId"`
	GuardianName     string    `json:"guardianName,omitempty"`
	GuardianEmail    string    `json:"guardianEmail,omitempty"`
	HiredTutorID     *int64    `json:"hiredTutorId"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Application is a tutor's request to fill a JobPosting.
type Application struct {
	ID             int64             `json:"id"`
	JobID          int64             `json:"jobId"`
	TutorID        *int64            `json:"tutorId"`
	ApplicantName  string            `json:"applicantName"`
	ApplicantEmail string            `json:"applicantEmail"`
	Message        string            `json:"message"`
	Status         ApplicationStatus `json:"status"`
	SubmittedAt    time.Time         `json:"submittedAt"`
}

// HasTutor reports whether the application is linked to the given tutor.
func (a Application) HasTutor(tutorID int64) bool {
	return a.TutorID != nil && *a.TutorID == tutorID
}

// TutorProfile is the searchable profile of a tutor.
type TutorProfile struct {
	ID                 int64   `json:"id"`
	UserID             string  `json:"userId"`
	FullName           string  `json:"fullName"`
	Email              string  `json:"email,omitempty"`
	Phone              string  `json:"phone,omitempty"`
	Education          string  `json:"education"`
	Subjects           string  `json:"subjects"`
	PreferredClasses   string  `json:"preferredClasses"`
	PreferredLocations string  `json:"preferredLocations"`
	Bio                string  `json:"bio"`
	ExperienceYears    *int    `json:"experienceYears"`
	Rating             float64 `json:"rating"`
	Verified           bool    `json:"verified"`
	ProfileComplete    bool    `json:"profileComplete"`
}

// IsComplete reports whether every field a guardian relies on when browsing
// has been filled in with something other than the placeholder.
func (t TutorProfile) IsComplete() bool {
	for _, f := range []string{t.Education, t.Subjects, t.PreferredClasses, t.PreferredLocations, t.Bio} {
		f = strings.TrimSpace(f)
		if f == "" || f == NotSpecified {
			return false
		}
	}
	return t.ExperienceYears != nil
}

// NewPlaceholderTutor returns the profile created the first time a user applies
// to a job without having a tutor profile yet.
func NewPlaceholderTutor(userID, fullName, email, phone string) TutorProfile {
	return TutorProfile{
		UserID:    userID,
		FullName:  fullName,
		Email:     email,
		Phone:     phone,
		Education: NotSpecified,
		Subjects:  NotSpecified,
	}
}

// Money is an amount in minor currency units (paisa).
type Money int64

// Taka converts a whole-taka amount to Money.
func Taka(v int) Money { return Money(v) * 100 }

// String renders the amount with two fractional digits, e.g. "4938.00".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalText lets Money appear in JSON as a fixed-point string.
func (m Money) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText parses "4938", "4938.5" or "4938.00".
func (m *Money) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	neg := strings.HasPrefix(s, "-")
	whole, frac, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if len(frac) > 2 {
		return fmt.Errorf("money %q: more than two fractional digits", s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return fmt.Errorf("money %q: %w", s, err)
	}
	var f int64
	if frac != "" {
		if f, err = strconv.ParseInt(frac+strings.Repeat("0", 2-len(frac)), 10, 64); err != nil {
			return fmt.Errorf("money %q: %w", s, err)
		}
	}
	v := w*100 + f
	if neg {
		v = -v
	}
	*m = Money(v)
	return nil
}

// CommissionPercent is the share of the monthly salary charged to the hired tutor.
const CommissionPercent = 40

// Commission returns the fee owed on a monthly salary in whole taka. A salary
// in taka is salary*100 paisa, so 40% of it is exactly salary*40 paisa.
func Commission(salary int) Money {
	return Money(salary) * CommissionPercent
}

// CommissionInvoice is the platform fee owed by the hired tutor.
type CommissionInvoice struct {
	ID          int64         `json:"id"`
	TutorID     int64         `json:"tutorId"`
	JobID       int64         `json:"jobId"`
	Amount      Money         `json:"amount"`
	Status      InvoiceStatus `json:"status"`
	GeneratedAt time.Time     `json:"generatedAt"`
	PaidAt      *time.Time    `json:"paidAt"`
}

// Review is a guardian's rating of the tutor hired for one of their jobs.
type Review struct {
	ID         int64     `json:"id"`
	JobID      int64     `json:"jobId"`
	TutorID    int64     `json:"tutorId"`
	ReviewerID string    `json:"reviewerId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Notification is an in-app message shown in a user's inbox.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ApplicantDetail is the flattened view of an application joined with the
// applicant's tutor profile, as shown to the job owner.
type ApplicantDetail struct {
	ApplicationID int64             `json:"applicationId"`
	TutorID       int64             `json:"tutorId"`
	Name          string            `json:"name"`
	Subjects      string            `json:"subjects"`
	Education     string            `json:"education"`
	Experience    *int              `json:"experience"`
	Verified      bool              `json:"verified"`
	Status        ApplicationStatus `json:"status"`
}
