package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "marketplace-service v"+version+"\n", run(t, "version"))
}

func TestExtractLocal(t *testing.T) {
	t.Cleanup(func() { extractJobs, extractLocal = false, false })

	var tutor map[string]any
	require.NoError(t, json.Unmarshal([]byte(run(t, "extract", "--local", "female", "physics", "tutor", "in", "uttara")), &tutor))
	assert.Equal(t, "Physics", tutor["subject"])
	assert.Equal(t, "Female", tutor["genderPreference"])

	var job map[string]any
	require.NoError(t, json.Unmarshal([]byte(run(t, "extract", "--local", "--jobs", "tuition in dhaka 8000 taka")), &job))
	assert.Equal(t, "Dhaka", job["city"])
	assert.EqualValues(t, 8000, job["minSalary"])
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"marketplace-service","version":"`+version+`"}`, rec.Body.String())
}
