package httpx_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/httpx"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.NotFound("job 1 not found"), http.StatusNotFound},
		{apperr.InvalidTutor(0), http.StatusBadRequest},
		{apperr.JobNotOpen(3), http.StatusConflict},
		{apperr.InvalidOperation("no hired tutor"), http.StatusUnprocessableEntity},
		{apperr.External(fmt.Errorf("timeout"), "gemini"), http.StatusBadGateway},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, httpx.Status(c.err), "error %v", c.err)
	}
}

func TestFail_WritesUserMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.Fail(rec, zap.NewNop(), apperr.JobNotOpen(9))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperr.MsgJobNotOpen, body["error"])
}

func TestFail_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.Fail(rec, zap.NewNop(), fmt.Errorf("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestDecode(t *testing.T) {
	var v struct {
		TutorID int64 `json:"tutorId"`
	}
	r := httptest.NewRequest(http.MethodPost, "/jobs/1/hire", strings.NewReader(`{"tutorId": 5}`))
	require.NoError(t, httpx.Decode(httptest.NewRecorder(), r, &v))
	assert.EqualValues(t, 5, v.TutorID)

	r = httptest.NewRequest(http.MethodPost, "/jobs/1/hire", strings.NewReader(`{`))
	err := httpx.Decode(httptest.NewRecorder(), r, &v)
	assert.True(t, apperr.Is(err, apperr.ErrValidation))
}

func TestRequireUser(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := httpx.RequireUser(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(httpx.UserHeader, "guardian-1")
	id, ok := httpx.RequireUser(httptest.NewRecorder(), r)
	assert.True(t, ok)
	assert.Equal(t, "guardian-1", id)
}

func TestParseID(t *testing.T) {
	id, err := httpx.ParseID("42")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := httpx.ParseID(bad)
		assert.Error(t, err, "ParseID(%q)", bad)
	}
}

func TestRequireRole(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/tutors/1/verify", nil)
	r.Header.Set(httpx.UserHeader, "someone")
	rec := httptest.NewRecorder()
	_, ok := httpx.RequireRole(rec, r, httpx.RoleAdmin)
	assert.False(t, ok)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	r.Header.Set(httpx.RoleHeader, "admin")
	id, ok := httpx.RequireRole(httptest.NewRecorder(), r, httpx.RoleAdmin)
	assert.True(t, ok)
	assert.Equal(t, "someone", id)
}
