// Package session keeps short-lived registration drafts in Redis between the
// requests of a multi-step sign-up, keyed by an opaque token.
package session

import (
	"context"
	"encoding/json"
	"net/mail"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tutorhub/marketplace-service/internal/apperr"
)

const (
	defaultPrefix = "registration"
	defaultTTL    = 30 * time.Minute
)

// Role is the account type being registered.
type Role string

const (
	RoleTutor    Role = "Tutor"
	RoleGuardian Role = "Guardian"
)

// Registration is the data carried from the sign-up form to the email
// verification step.
type Registration struct {
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the fields required to finish registration.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return apperr.Validation("full name is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return apperr.Validation("invalid email %q", r.Email)
	}
	switch r.Role {
	case RoleTutor, RoleGuardian:
		return nil
	default:
		return apperr.Validation("role must be %s or %s, got %q", RoleTutor, RoleGuardian, r.Role)
	}
}

// Store saves drafts under "<prefix>:<token>" with a fixed expiry.
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewStore returns a Store. A zero ttl uses 30 minutes.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, prefix: defaultPrefix, ttl: ttl, now: time.Now}
}

// TTL is how long a draft lives.
func (s *Store) TTL() time.Duration { return s.ttl }

func (s *Store) key(token string) string { return s.prefix + ":" + token }

// Start validates r, stores it and returns the token that retrieves it.
func (s *Store) Start(ctx context.Context, r Registration) (string, error) {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = strings.TrimSpace(r.Phone)
	if err := r.Validate(); err != nil {
		return "", err
	}
	r.CreatedAt = s.now().UTC()

	raw, err := json.Marshal(r)
	if err != nil {
		return "", errors.Wrap(err, "marshal registration")
	}
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, s.key(token), raw, s.ttl).Err(); err != nil {
		return "", errors.Wrap(err, "redis set")
	}
	return token, nil
}

// Get returns the draft for token without consuming it.
func (s *Store) Get(ctx context.Context, token string) (Registration, error) {
	if err := checkToken(token); err != nil {
		return Registration{}, err
	}
	raw, err := s.rdb.Get(ctx, s.key(token)).Bytes()
	return decode(token, raw, err)
}

// Complete returns the draft for token and deletes it, so a token can finish
// registration once.
func (s *Store) Complete(ctx context.Context, token string) (Registration, error) {
	if err := checkToken(token); err != nil {
		return Registration{}, err
	}
	raw, err := s.rdb.GetDel(ctx, s.key(token)).Bytes()
	return decode(token, raw, err)
}

func checkToken(token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return apperr.Validation("invalid registration token")
	}
	return nil
}

func decode(token string, raw []byte, err error) (Registration, error) {
	if errors.Is(err, redis.Nil) {
		return Registration{}, apperr.NotFound("registration %s expired or unknown", token)
	}
	if err != nil {
		return Registration{}, errors.Wrap(err, "redis get")
	}
	var r Registration
	if err := json.Unmarshal(raw, &r); err != nil {
		return Registration{}, errors.Wrap(err, "decode registration")
	}
	return r, nil
}
