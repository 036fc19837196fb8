package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/session"
)

// offline returns a client that is never dialed by the tests using it.
func offline() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
}

func TestRegistration_Validate(t *testing.T) {
	ok := session.Registration{Email: "a@example.com", FullName: "Ayesha", Role: session.RoleGuardian}
	assert.NoError(t, ok.Validate())

	cases := map[string]session.Registration{
		"no name":   {Email: "a@example.com", Role: session.RoleTutor},
		"bad email": {Email: "not-an-email", FullName: "A", Role: session.RoleTutor},
		"bad role":  {Email: "a@example.com", FullName: "A", Role: "Admin"},
	}
	for name, r := range cases {
		err := r.Validate()
		assert.True(t, apperr.Is(err, apperr.ErrValidation), name)
	}
}

func TestStore_RejectsBeforeTouchingRedis(t *testing.T) {
	s := session.NewStore(offline(), 0)
	assert.Equal(t, 30*time.Minute, s.TTL())

	_, err := s.Start(context.Background(), session.Registration{Email: "x"})
	assert.True(t, apperr.Is(err, apperr.ErrValidation))

	_, err = s.Get(context.Background(), "../../etc")
	assert.True(t, apperr.Is(err, apperr.ErrValidation))

	_, err = s.Complete(context.Background(), "")
	assert.True(t, apperr.Is(err, apperr.ErrValidation))
}

func TestHandler_UnknownPath(t *testing.T) {
	mux := http.NewServeMux()
	session.NewHandler(session.NewStore(offline(), time.Minute), zap.NewNop()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/registration/a/b/c", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/registration", strings.NewReader(`{"email":"bad"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// liveRedis connects to TEST_REDIS_URL or skips the test.
func liveRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestStore_Lifecycle(t *testing.T) {
	rdb := liveRedis(t)
	ctx := context.Background()
	s := session.NewStore(rdb, time.Minute)

	token, err := s.Start(ctx, session.Registration{Email: " t@example.com ", FullName: "Tanvir", Role: session.RoleTutor})
	require.NoError(t, err)

	ttl, err := rdb.TTL(ctx, "registration:"+token).Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 5)

	got, err := s.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "t@example.com", got.Email)
	assert.Equal(t, session.RoleTutor, got.Role)

	done, err := s.Complete(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Tanvir", done.FullName)

	_, err = s.Complete(ctx, token)
	assert.True(t, apperr.Is(err, apperr.ErrNotFound), "a token completes once")
}
