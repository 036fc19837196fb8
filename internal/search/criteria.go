package search

import (
	"strings"

	"tutorhub/marketplace-service/internal/apperr"
)

// TutorCriteria is what a guardian is looking for in a tutor. Empty fields
// are unset and neither filter nor score.
type TutorCriteria struct {
	Subject          string   `json:"subject,omitempty"`
	ClassLevel       string   `json:"classLevel,omitempty"`
	Location         string   `json:"location,omitempty"`
	GenderPreference string   `json:"genderPreference,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	OriginalQuery    string   `json:"originalQuery,omitempty"`
}

// JobCriteria is what a tutor is looking for in a job. Zero salaries are unset.
type JobCriteria struct {
	Subject       string   `json:"subject,omitempty"`
	ClassLevel    string   `json:"classLevel,omitempty"`
	City          string   `json:"city,omitempty"`
	Location      string   `json:"location,omitempty"`
	Medium        string   `json:"medium,omitempty"`
	MinSalary     int      `json:"minSalary,omitempty"`
	MaxSalary     int      `json:"maxSalary,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	OriginalQuery string   `json:"originalQuery,omitempty"`
}

// Normalize trims every field, clears "null" placeholders and drops empty
// or repeated keywords.
func (c TutorCriteria) Normalize() TutorCriteria {
	c.Subject = clean(c.Subject)
	c.ClassLevel = clean(c.ClassLevel)
	c.Location = clean(c.Location)
	c.GenderPreference = clean(c.GenderPreference)
	c.Keywords = cleanKeywords(c.Keywords)
	c.OriginalQuery = strings.TrimSpace(c.OriginalQuery)
	return c
}

// Validate rejects criteria that cannot come from a sensible query.
func (c TutorCriteria) Validate() error {
	switch strings.ToLower(c.GenderPreference) {
	case "", "male", "female", "any":
		return nil
	default:
		return apperr.Validation("unknown gender preference %q", c.GenderPreference)
	}
}

// Empty reports whether no structured field is set.
func (c TutorCriteria) Empty() bool {
	return c.Subject == "" && c.ClassLevel == "" && c.Location == "" &&
		c.GenderPreference == "" && len(c.Keywords) == 0
}

// Normalize trims every field, clears "null" placeholders and drops empty
// or repeated keywords.
func (c JobCriteria) Normalize() JobCriteria {
	c.Subject = clean(c.Subject)
	c.ClassLevel = clean(c.ClassLevel)
	c.City = clean(c.City)
	c.Location = clean(c.Location)
	c.Medium = clean(c.Medium)
	c.Keywords = cleanKeywords(c.Keywords)
	c.OriginalQuery = strings.TrimSpace(c.OriginalQuery)
	return c
}

// Validate rejects negative or inverted salary bounds.
func (c JobCriteria) Validate() error {
	if c.MinSalary < 0 || c.MaxSalary < 0 {
		return apperr.Validation("salary bounds must not be negative")
	}
	if c.MaxSalary > 0 && c.MinSalary > c.MaxSalary {
		return apperr.Validation("min salary %d exceeds max salary %d", c.MinSalary, c.MaxSalary)
	}
	return nil
}

// Empty reports whether no structured field is set.
func (c JobCriteria) Empty() bool {
	return c.Subject == "" && c.ClassLevel == "" && c.City == "" && c.Location == "" &&
		c.Medium == "" && c.MinSalary == 0 && c.MaxSalary == 0 && len(c.Keywords) == 0
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}

func cleanKeywords(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, k := range in {
		k = clean(k)
		key := strings.ToLower(k)
		if k == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
	}
	return out
}
