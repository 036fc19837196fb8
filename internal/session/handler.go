package session

import (
	"net/http"

	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/httpx"
)

// Handler serves the registration draft routes:
//
//	POST /registration                   → {token, expiresIn}
//	GET  /registration/{token}           → the draft
//	POST /registration/{token}/complete  → the draft, consumed
//
// These run before an account exists, so no x-user-id header is required.
type Handler struct {
	store *Store
	log   *zap.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(store *Store, log *zap.Logger) *Handler {
	return &Handler{store: store, log: log.Named("session.http")}
}

// RegisterRoutes mounts the registration routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/registration", h.handleStart)
	mux.HandleFunc("/registration/", h.handleDraft)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body Registration
	if err := httpx.Decode(w, r, &body); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	token, err := h.store.Start(r.Context(), body)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"token":     token,
		"expiresIn": int(h.store.TTL().Seconds()),
	})
}

func (h *Handler) handleDraft(w http.ResponseWriter, r *http.Request) {
	parts := httpx.PathParts(r)
	switch {
	case len(parts) == 2:
		if !httpx.RequireMethod(w, r, http.MethodGet) {
			return
		}
		reg, err := h.store.Get(r.Context(), parts[1])
		if err != nil {
			httpx.Fail(w, h.log, err)
			return
		}
		httpx.OK(w, reg)
	case len(parts) == 3 && parts[2] == "complete":
		if !httpx.RequireMethod(w, r, http.MethodPost) {
			return
		}
		reg, err := h.store.Complete(r.Context(), parts[1])
		if err != nil {
			httpx.Fail(w, h.log, err)
			return
		}
		httpx.OK(w, reg)
	default:
		httpx.Error(w, "invalid path", http.StatusNotFound)
	}
}
