package notify

import (
	"net/http"

	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/httpx"
)

// Handler exposes the caller's in-app inbox.
//
//	GET  /notifications        → unread notifications, newest first
//	POST /notifications/read   → {ids} mark read; an empty list marks all
type Handler struct {
	d   *Dispatcher
	log *zap.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(d *Dispatcher, log *zap.Logger) *Handler {
	return &Handler{d: d, log: log.Named("notify.http")}
}

// RegisterRoutes mounts the inbox routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/notifications", h.handleList)
	mux.HandleFunc("/notifications/read", h.handleRead)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	list, err := h.d.Unread(r.Context(), userID)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.OK(w, list)
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		IDs []int64 `json:"ids"`
	}
	if err := httpx.Decode(w, r, &body); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	n, err := h.d.MarkRead(r.Context(), userID, body.IDs)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.OK(w, map[string]int64{"marked": n})
}
