// Package extract turns free-text search queries into structured criteria.
//
// Gemini does the extraction when configured. Fallback is a deterministic
// keyword-table lookup used when Gemini is absent, failing or too slow.
package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"tutorhub/marketplace-service/internal/search"
)

// Label pairs a phrase to look for with the value it extracts.
type Label struct {
	Phrase string
	Value  string
}

// Recognized vocabulary. Lists are searched in order and the first phrase
// contained in the lower-cased query wins.
var (
	Subjects = []string{
		"math", "mathematics", "english", "physics", "chemistry", "biology",
		"bangla", "bengali", "ict", "computer", "accounting", "economics",
		"science", "social science", "history", "geography",
	}

	// ClassLevels lists "class 10" before "class 1" so the longer phrase wins.
	ClassLevels = []Label{
		{"nursery", "Nursery"},
		{"kindergarten", "KG"},
		{"kg", "KG"},
		{"class 10", "Class 10"},
		{"class 1", "Class 1"},
		{"class 2", "Class 2"},
		{"class 3", "Class 3"},
		{"class 4", "Class 4"},
		{"class 5", "Class 5"},
		{"class 6", "Class 6"},
		{"class 7", "Class 7"},
		{"class 8", "Class 8"},
		{"class 9", "Class 9"},
		{"hsc", "HSC"},
		{"a-level", "A-Level"},
		{"a level", "A-Level"},
		{"o-level", "O-Level"},
		{"o level", "O-Level"},
	}

	// TutorLocations are the areas a guardian may ask a tutor to cover.
	TutorLocations = []string{
		"dhaka", "mirpur", "uttara", "dhanmondi", "gulshan", "banani",
		"mohammadpur", "motijheel", "chittagong", "sylhet", "khulna",
		"rajshahi", "rangpur", "barisal", "online",
	}

	Cities = []string{
		"dhaka", "chittagong", "sylhet", "khulna", "rajshahi", "rangpur", "barisal", "comilla",
	}

	// JobLocations are the Dhaka areas jobs are posted in.
	JobLocations = []string{
		"mirpur", "uttara", "dhanmondi", "gulshan", "banani", "mohammadpur",
		"motijheel", "bashundhara", "badda", "rampura", "farmgate",
	}

	TutorKeywords = []string{
		"patient", "experienced", "friendly", "strict", "professional", "caring",
		"dedicated", "qualified", "expert", "good", "best",
	}

	JobKeywords = []string{
		"flexible", "nearby", "part-time", "full-time", "weekend", "online", "home",
	}

	Mediums = []Label{
		{"english medium", "English"},
		{"bangla medium", "Bangla"},
		{"bengali medium", "Bangla"},
	}

	Genders = []Label{
		{"female", "Female"},
		{"woman", "Female"},
		{"lady", "Female"},
		{"male", "Male"},
		{"man", "Male"},
		{"sir", "Male"},
	}
)

// salaryPattern captures a four or five digit amount, optionally followed by a currency.
var salaryPattern = regexp.MustCompile(`(\d{4,5})\s*(tk|taka|bdt)?`)

// Fallback extracts criteria by looking phrases up in the tables above.
type Fallback struct{}

// ExtractTutorCriteria never fails.
func (Fallback) ExtractTutorCriteria(_ context.Context, text string) (search.TutorCriteria, error) {
	lower := strings.ToLower(text)
	c := search.TutorCriteria{
		Subject:          title(first(lower, Subjects)),
		ClassLevel:       firstLabel(lower, ClassLevels),
		Location:         title(first(lower, TutorLocations)),
		GenderPreference: firstLabel(lower, Genders),
		Keywords:         all(lower, TutorKeywords),
		OriginalQuery:    strings.TrimSpace(text),
	}
	return c, nil
}

// ExtractJobCriteria never fails.
func (Fallback) ExtractJobCriteria(_ context.Context, text string) (search.JobCriteria, error) {
	lower := strings.ToLower(text)
	c := search.JobCriteria{
		Subject:       title(first(lower, Subjects)),
		ClassLevel:    firstLabel(lower, ClassLevels),
		City:          title(first(lower, Cities)),
		Location:      title(first(lower, JobLocations)),
		Medium:        firstLabel(lower, Mediums),
		MinSalary:     salary(lower),
		Keywords:      all(lower, JobKeywords),
		OriginalQuery: strings.TrimSpace(text),
	}
	return c, nil
}

func first(text string, phrases []string) string {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return p
		}
	}
	return ""
}

func firstLabel(text string, labels []Label) string {
	for _, l := range labels {
		if strings.Contains(text, l.Phrase) {
			return l.Value
		}
	}
	return ""
}

func all(text string, phrases []string) []string {
	var out []string
	for _, p := range phrases {
		if strings.Contains(text, p) {
			out = append(out, p)
		}
	}
	return out
}

func salary(text string) int {
	m := salaryPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return v
}

// title upper-cases the first letter of each word; ICT stays upper-case.
func title(s string) string {
	if s == "" {
		return ""
	}
	if s == "ict" {
		return "ICT"
	}
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
