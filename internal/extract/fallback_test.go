package extract_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorhub/marketplace-service/internal/extract"
)

func TestFallback_TutorCriteria(t *testing.T) {
	c, err := extract.Fallback{}.ExtractTutorCriteria(context.Background(),
		"Need a patient and experienced female Physics tutor for Class 10 in Dhanmondi")
	require.NoError(t, err)
	assert.Equal(t, "Physics", c.Subject)
	assert.Equal(t, "Class 10", c.ClassLevel)
	assert.Equal(t, "Dhanmondi", c.Location)
	assert.Equal(t, "Female", c.GenderPreference)
	assert.Equal(t, []string{"patient", "experienced"}, c.Keywords)
	assert.True(t, strings.HasPrefix(c.OriginalQuery, "Need a patient"))
}

func TestFallback_JobCriteria(t *testing.T) {
	c, err := extract.Fallback{}.ExtractJobCriteria(context.Background(),
		"Looking for bangla medium HSC chemistry tuition in Uttara, Dhaka, at least 8000 tk, weekend only")
	require.NoError(t, err)
	assert.Equal(t, "Chemistry", c.Subject)
	assert.Equal(t, "HSC", c.ClassLevel)
	assert.Equal(t, "Dhaka", c.City)
	assert.Equal(t, "Uttara", c.Location)
	assert.Equal(t, "Bangla", c.Medium)
	assert.Equal(t, 8000, c.MinSalary)
	assert.Equal(t, []string{"weekend"}, c.Keywords)
}

func TestFallback_NothingRecognized(t *testing.T) {
	c, err := extract.Fallback{}.ExtractTutorCriteria(context.Background(), "hello there")
	require.NoError(t, err)
	assert.True(t, c.Empty())
	assert.Equal(t, "hello there", c.OriginalQuery)
}

func TestFallback_EveryClassLevelIsRecognized(t *testing.T) {
	for _, l := range extract.ClassLevels {
		c, err := extract.Fallback{}.ExtractTutorCriteria(context.Background(), "tutor for "+l.Phrase+" student")
		require.NoError(t, err)
		assert.Equal(t, l.Value, c.ClassLevel, "phrase %q", l.Phrase)
	}
}

func TestFallback_EverySubjectIsRecognized(t *testing.T) {
	for _, s := range extract.Subjects {
		c, err := extract.Fallback{}.ExtractJobCriteria(context.Background(), s)
		require.NoError(t, err)
		assert.NotEmpty(t, c.Subject, "subject %q", s)
		assert.True(t, strings.EqualFold(c.Subject[:1], s[:1]), "subject %q extracted as %q", s, c.Subject)
	}
}

func TestFallback_Genders(t *testing.T) {
	cases := map[string]string{
		"a lady teacher":     "Female",
		"woman tutor please": "Female",
		"a male tutor":       "Male",
		"sir for my son":     "Male",
		"any tutor is fine":  "",
	}
	for text, want := range cases {
		c, err := extract.Fallback{}.ExtractTutorCriteria(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, want, c.GenderPreference, text)
	}
}

func TestFallback_Salary(t *testing.T) {
	cases := map[string]int{
		"pay 5000":         5000,
		"12000 taka":       12000,
		"15000bdt":         15000,
		"around 500 tk":    0,
		"no salary at all": 0,
	}
	for text, want := range cases {
		c, err := extract.Fallback{}.ExtractJobCriteria(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, want, c.MinSalary, text)
	}
}

func TestFallback_ICTStaysUpperCase(t *testing.T) {
	c, err := extract.Fallback{}.ExtractTutorCriteria(context.Background(), "ict for class 9")
	require.NoError(t, err)
	assert.Equal(t, "ICT", c.Subject)
	assert.Equal(t, "Class 9", c.ClassLevel)
}
