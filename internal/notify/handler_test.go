package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/store"
)

func TestHandler_Inbox(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	d := NewDispatcher(nil, nil, mem, mem, "TutorHubBD", zap.NewNop())
	require.NoError(t, d.SendInApp(ctx, "u1", "First", "one", ""))
	require.NoError(t, d.SendInApp(ctx, "u1", "Second", "two", "/jobs/2"))
	require.NoError(t, d.SendInApp(ctx, "u2", "Other", "three", ""))

	mux := http.NewServeMux()
	NewHandler(d, zap.NewNop()).RegisterRoutes(mux)
	call := func(method, path, user, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if user != "" {
			req.Header.Set("x-user-id", user)
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	rec := call(http.MethodGet, "/notifications", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"title":"Second"`)
	assert.Contains(t, body, `"title":"First"`)
	assert.NotContains(t, body, "Other")
	assert.Less(t, strings.Index(body, "Second"), strings.Index(body, "First"), "newest first")

	rec = call(http.MethodGet, "/notifications", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(http.MethodPost, "/notifications/read", "u1", `{"ids":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"marked":2}`, rec.Body.String())

	rec = call(http.MethodGet, "/notifications", "u1", "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = call(http.MethodPost, "/notifications/read", "u2", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(http.MethodGet, "/notifications/read", "u2", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
