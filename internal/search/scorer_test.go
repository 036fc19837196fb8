package search_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorhub/marketplace-service/internal/model"
	"tutorhub/marketplace-service/internal/search"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func TestScoreTutor_BothFieldsOutrankHigherRating(t *testing.T) {
	c := search.TutorCriteria{Subject: "Math", ClassLevel: "Class 10"}
	both := model.TutorProfile{ID: 1, Subjects: "Math, Physics", PreferredClasses: "Class 9, Class 10", Rating: 4.0}
	subjectOnly := model.TutorProfile{ID: 2, Subjects: "math", PreferredClasses: "HSC", Rating: 5.0}

	assert.Equal(t, 63, search.ScoreTutor(both, c))
	assert.Equal(t, 40, search.ScoreTutor(subjectOnly, c))

	ranked := search.RankTutors([]model.TutorProfile{subjectOnly, both}, c)
	require.Len(t, ranked, 1, "class filter drops the subject-only tutor")
	assert.Equal(t, int64(1), ranked[0].Tutor.ID)
}

func TestScoreTutor_Bonuses(t *testing.T) {
	tutor := model.TutorProfile{
		Subjects:           "English",
		PreferredLocations: "Uttara, Banani",
		Bio:                "Patient and experienced teacher",
		Verified:           true,
		Rating:             4.3,
		ExperienceYears:    intPtr(15),
	}
	c := search.TutorCriteria{Location: "banani", Keywords: []string{"patient", "experienced", "strict"}}
	// location 20 + two keywords 10 + verified 10 + round(8.6) 9 + capped experience 10
	assert.Equal(t, 59, search.ScoreTutor(tutor, c))
}

func TestRankTutors_TieBreaksOnRating(t *testing.T) {
	pool := []model.TutorProfile{
		{ID: 1, Subjects: "Physics", Rating: 3.0, ExperienceYears: intPtr(2)},
		{ID: 2, Subjects: "Physics", Rating: 4.0},
	}
	// Both score 30+6+2=38 and 30+8=38.
	ranked := search.RankTutors(pool, search.TutorCriteria{Subject: "physics"})
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, int64(2), ranked[0].Tutor.ID)
}

func TestRankTutors_BroadPassFindsBiographyWord(t *testing.T) {
	pool := []model.TutorProfile{
		{ID: 1, Subjects: "Math", PreferredClasses: "Class 5", PreferredLocations: "Mirpur", Bio: "Patient teacher", Education: "HSC"},
		{ID: 2, Subjects: "Physics", PreferredClasses: "Class 8", PreferredLocations: "Dhanmondi", Bio: "Amateur astronomy club mentor", Education: "BSc"},
	}
	c := search.TutorCriteria{
		Subject:       "Chemistry",
		OriginalQuery: "need chemistry help, loves astronomy",
	}

	ranked := search.RankTutors(pool, c)
	require.Len(t, ranked, 1)
	assert.Equal(t, int64(2), ranked[0].Tutor.ID)
	assert.Equal(t, 5, ranked[0].Score)
}

func TestRankTutors_BroadPassIsCapped(t *testing.T) {
	pool := make([]model.TutorProfile, 0, 25)
	for i := range 25 {
		pool = append(pool, model.TutorProfile{ID: int64(i + 1), Subjects: "Math", Rating: float64(i % 5)})
	}
	c := search.TutorCriteria{ClassLevel: "Class 12", OriginalQuery: "math"}

	ranked := search.RankTutors(pool, c)
	assert.Len(t, ranked, search.BroadLimit)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Tutor.Rating, ranked[i].Tutor.Rating)
	}
}

func TestRankTutors_EmptyWithoutQuery(t *testing.T) {
	pool := []model.TutorProfile{{ID: 1, Subjects: "Math"}}
	ranked := search.RankTutors(pool, search.TutorCriteria{Subject: "Biology"})
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestBroadTutors_ShortWordsIgnored(t *testing.T) {
	pool := []model.TutorProfile{{ID: 1, Bio: "an ok tutor"}}
	assert.Empty(t, search.BroadTutors(pool, "an ok"))

	bengali := []model.TutorProfile{{ID: 2, Bio: "গণিত ও বিজ্ঞান"}}
	assert.Empty(t, search.BroadTutors(bengali, "ও ab"), "length counts characters, not bytes")
	ranked := search.BroadTutors(bengali, "ও গণিত")
	require.Len(t, ranked, 1)
	assert.Equal(t, 5, ranked[0].Score)
}

func TestBroadTutors_DistinctWordsCountOnce(t *testing.T) {
	pool := []model.TutorProfile{{ID: 1, Subjects: "Chemistry", Bio: "Chemistry olympiad coach"}}
	ranked := search.BroadTutors(pool, "chemistry Chemistry olympiad")
	require.Len(t, ranked, 1)
	assert.Equal(t, 10, ranked[0].Score)
}

func TestScoreJob(t *testing.T) {
	job := model.JobPosting{
		Title:        "Need a Physics tutor",
		Description:  "Flexible schedule, nearby students",
		StudentClass: "Class 9",
		City:         "Dhaka",
		Location:     "Mirpur 10",
		Medium:       "English",
		Salary:       10000,
		CreatedAt:    now.Add(-3 * 24 * time.Hour),
	}
	c := search.JobCriteria{
		Subject:    "physics",
		ClassLevel: "class 9",
		City:       "dhaka",
		Location:   "mirpur",
		Medium:     "english",
		Keywords:   []string{"flexible", "weekend"},
	}
	// 30+25+20+15+10 + 10000/500 + 10 recency + 5 keyword
	assert.Equal(t, 135, search.ScoreJob(job, c, now))
}

func TestScoreJob_Recency(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want int
	}{
		{24 * time.Hour, 10},
		{7 * 24 * time.Hour, 10},
		{10 * 24 * time.Hour, 5},
		{14 * 24 * time.Hour, 5},
		{20 * 24 * time.Hour, 0},
	}
	for _, c := range cases {
		job := model.JobPosting{Salary: 499, CreatedAt: now.Add(-c.age)}
		assert.Equal(t, c.want, search.ScoreJob(job, search.JobCriteria{}, now), "age %s", c.age)
	}
}

func TestRankJobs_FiltersAndTieBreaksOnSalary(t *testing.T) {
	old := now.Add(-30 * 24 * time.Hour)
	pool := []model.JobPosting{
		{ID: 1, City: "Dhaka", Salary: 4000, CreatedAt: old},
		{ID: 2, City: "Dhaka", Salary: 8000, CreatedAt: old},
		{ID: 3, City: "Sylhet", Salary: 9000, CreatedAt: old},
		{ID: 4, City: "Dhaka", Salary: 8400, CreatedAt: old},
	}
	ranked := search.RankJobs(pool, search.JobCriteria{City: "dhaka", MinSalary: 5000}, now)
	require.Len(t, ranked, 2)
	// 20+16 and 20+16: equal scores, higher salary first.
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, int64(4), ranked[0].Job.ID)
	assert.Equal(t, int64(2), ranked[1].Job.ID)
}

func TestRankJobs_SubjectNeverFilters(t *testing.T) {
	pool := []model.JobPosting{{ID: 1, Title: "Tutor wanted", CreatedAt: now}}
	ranked := search.RankJobs(pool, search.JobCriteria{Subject: "Biology"}, now)
	require.Len(t, ranked, 1)
	assert.Equal(t, 10, ranked[0].Score)
}

func TestRankJobs_BroadPass(t *testing.T) {
	pool := make([]model.JobPosting, 0, 30)
	for i := range 30 {
		pool = append(pool, model.JobPosting{
			ID:        int64(i + 1),
			Title:     fmt.Sprintf("Job %d", i),
			Subject:   "Accounting",
			City:      "Khulna",
			Salary:    3000 + i*100,
			CreatedAt: now,
		})
	}
	c := search.JobCriteria{City: "Rangpur", OriginalQuery: "accounting khulna"}

	ranked := search.RankJobs(pool, c, now)
	require.Len(t, ranked, search.BroadLimit)
	assert.Equal(t, 10, ranked[0].Score)
	assert.Equal(t, int64(30), ranked[0].Job.ID, "highest salary first among equal scores")
}
