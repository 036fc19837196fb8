package search

import (
	"cmp"
	"math"
	"slices"
	"time"

	"tutorhub/marketplace-service/internal/model"
)

// Score weights.
const (
	weightSubject     = 30
	weightClass       = 25
	weightLocation    = 20
	weightJobLocation = 15
	weightMedium      = 10
	weightKeyword     = 5
	weightVerified    = 10
	weightBroadWord   = 5

	maxExperienceBonus = 10
	salaryPerPoint     = 500
	recentDays         = 7
	recentBonus        = 10
	olderDays          = 14
	olderBonus         = 5

	// BroadLimit caps the broad pass result list.
	BroadLimit = 20
)

// TutorResult is a tutor with its match score.
type TutorResult struct {
	Tutor model.TutorProfile `json:"tutor"`
	Score int                `json:"matchScore"`
}

// JobResult is a job with its match score.
type JobResult struct {
	Job   model.JobPosting `json:"job"`
	Score int              `json:"matchScore"`
}

// ─── Tutors ───────────────────────────────────────────────────────────────────

// MatchesTutor reports whether t passes every populated tutor filter.
func MatchesTutor(t model.TutorProfile, c TutorCriteria) bool {
	if c.Subject != "" && !contains(t.Subjects, c.Subject) {
		return false
	}
	if c.ClassLevel != "" && !contains(t.PreferredClasses, c.ClassLevel) {
		return false
	}
	if c.Location != "" && !contains(t.PreferredLocations, c.Location) {
		return false
	}
	return true
}

// ScoreTutor returns the weighted match score of t against c.
func ScoreTutor(t model.TutorProfile, c TutorCriteria) int {
	score := 0
	if contains(t.Subjects, c.Subject) {
		score += weightSubject
	}
	if contains(t.PreferredClasses, c.ClassLevel) {
		score += weightClass
	}
	if contains(t.PreferredLocations, c.Location) {
		score += weightLocation
	}
	if t.Bio != "" {
		score += countContained(c.Keywords, t.Bio) * weightKeyword
	}
	if t.Verified {
		score += weightVerified
	}
	score += int(math.Round(t.Rating * 2))
	if t.ExperienceYears != nil {
		score += min(*t.ExperienceYears, maxExperienceBonus)
	}
	return score
}

// RankTutors filters pool by c, scores the survivors and orders them by score
// then rating. When nothing survives and c carries a query, the broad pass
// runs over the whole pool instead. An empty result is not an error.
func RankTutors(pool []model.TutorProfile, c TutorCriteria) []TutorResult {
	results := make([]TutorResult, 0, len(pool))
	for _, t := range pool {
		if MatchesTutor(t, c) {
			results = append(results, TutorResult{Tutor: t, Score: ScoreTutor(t, c)})
		}
	}
	if len(results) == 0 && c.OriginalQuery != "" {
		return BroadTutors(pool, c.OriginalQuery)
	}
	sortTutors(results)
	return results
}

// BroadTutors scores every tutor by the distinct query words found anywhere
// in its searchable text.
func BroadTutors(pool []model.TutorProfile, query string) []TutorResult {
	words := queryWords(query)
	results := make([]TutorResult, 0)
	if len(words) == 0 {
		return results
	}
	for _, t := range pool {
		n := countContained(words, t.Subjects, t.PreferredClasses, t.PreferredLocations, t.Bio, t.Education)
		if n > 0 {
			results = append(results, TutorResult{Tutor: t, Score: n * weightBroadWord})
		}
	}
	sortTutors(results)
	if len(results) > BroadLimit {
		results = results[:BroadLimit]
	}
	return results
}

func sortTutors(rs []TutorResult) {
	slices.SortStableFunc(rs, func(a, b TutorResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.Tutor.Rating, a.Tutor.Rating)
	})
}

// ─── Jobs ─────────────────────────────────────────────────────────────────────

// MatchesJob reports whether j passes every populated job filter. Subject is
// scored but never filtered.
func MatchesJob(j model.JobPosting, c JobCriteria) bool {
	if c.City != "" && !contains(j.City, c.City) {
		return false
	}
	if c.Location != "" && !contains(j.Location, c.Location) {
		return false
	}
	if c.ClassLevel != "" && !contains(j.StudentClass, c.ClassLevel) {
		return false
	}
	if c.Medium != "" && !contains(j.Medium, c.Medium) {
		return false
	}
	if c.MinSalary > 0 && j.Salary < c.MinSalary {
		return false
	}
	return true
}

// ScoreJob returns the weighted match score of j against c, with recency
// measured at now.
func ScoreJob(j model.JobPosting, c JobCriteria, now time.Time) int {
	score := 0
	if c.Subject != "" && countContained([]string{c.Subject}, j.Title, j.Description, j.Subject) > 0 {
		score += weightSubject
	}
	if contains(j.StudentClass, c.ClassLevel) {
		score += weightClass
	}
	if contains(j.City, c.City) {
		score += weightLocation
	}
	if contains(j.Location, c.Location) {
		score += weightJobLocation
	}
	if contains(j.Medium, c.Medium) {
		score += weightMedium
	}
	score += j.Salary / salaryPerPoint

	switch days := int(now.Sub(j.CreatedAt).Hours() / 24); {
	case days <= recentDays:
		score += recentBonus
	case days <= olderDays:
		score += olderBonus
	}

	if j.Description != "" {
		score += countContained(c.Keywords, j.Description) * weightKeyword
	}
	return score
}

// RankJobs filters pool by c, scores the survivors and orders them by score
// then salary, falling back to the broad pass like RankTutors.
func RankJobs(pool []model.JobPosting, c JobCriteria, now time.Time) []JobResult {
	results := make([]JobResult, 0, len(pool))
	for _, j := range pool {
		if MatchesJob(j, c) {
			results = append(results, JobResult{Job: j, Score: ScoreJob(j, c, now)})
		}
	}
	if len(results) == 0 && c.OriginalQuery != "" {
		return BroadJobs(pool, c.OriginalQuery)
	}
	sortJobs(results)
	return results
}

// BroadJobs scores every job by the distinct query words found anywhere in
// its searchable text.
func BroadJobs(pool []model.JobPosting, query string) []JobResult {
	words := queryWords(query)
	results := make([]JobResult, 0)
	if len(words) == 0 {
		return results
	}
	for _, j := range pool {
		n := countContained(words, j.Title, j.Description, j.Subject, j.City, j.Location, j.StudentClass)
		if n > 0 {
			results = append(results, JobResult{Job: j, Score: n * weightBroadWord})
		}
	}
	sortJobs(results)
	if len(results) > BroadLimit {
		results = results[:BroadLimit]
	}
	return results
}

func sortJobs(rs []JobResult) {
	slices.SortStableFunc(rs, func(a, b JobResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.Job.Salary, a.Job.Salary)
	})
}
