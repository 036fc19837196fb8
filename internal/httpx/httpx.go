// Package httpx holds the JSON helpers shared by every HTTP handler.
//
// All routes expect an x-user-id header forwarded by the Gateway; the
// marketplace service does not authenticate callers itself.
package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/apperr"
)

// Identity headers set by the Gateway.
const (
	UserHeader = "x-user-id"
	RoleHeader = "x-user-role"
)

// RoleAdmin is the role allowed to verify tutors.
const RoleAdmin = "Admin"

// maxBody caps request bodies.
const maxBody = 1 << 20

// OK writes v as a 200 JSON response.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, msg string, code int) {
	JSON(w, code, map[string]string{"error": msg})
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case apperr.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case apperr.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case apperr.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case apperr.Is(err, apperr.ErrInvalidOperation):
		return http.StatusUnprocessableEntity
	case apperr.Is(err, apperr.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err using its mapped status and user-facing message. Server
// errors are logged with their full chain.
func Fail(w http.ResponseWriter, log *zap.Logger, err error) {
	code := Status(err)
	if code >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}
	Error(w, apperr.UserMessage(err), code)
}

// Decode reads a JSON body into v. Malformed bodies are validation errors.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid JSON body: %v", err)
	}
	return nil
}

// RequireUser returns the caller from the x-user-id header, writing a 401
// and returning false when it is missing.
func RequireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(UserHeader))
	if userID == "" {
		Error(w, "missing x-user-id header", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// RequireRole returns the caller like RequireUser and additionally writes a
// 403 unless the x-user-role header equals role.
func RequireRole(w http.ResponseWriter, r *http.Request, role string) (string, bool) {
	userID, ok := RequireUser(w, r)
	if !ok {
		return "", false
	}
	if !strings.EqualFold(strings.TrimSpace(r.Header.Get(RoleHeader)), role) {
		Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return userID, true
}

// RequireMethod writes a 405 and returns false unless r uses method.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// PathParts splits the URL path into its non-empty segments.
func PathParts(r *http.Request) []string {
	return strings.Split(strings.Trim(r.URL.Path, "/"), "/")
}

// ParseID parses a positive numeric identifier.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id %q", s)
	}
	return id, nil
}
