package search

import (
	"net/http"

	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/httpx"
)

// Handler serves the search routes:
//
//	POST /search/tutors  {query}  → ranked tutors (guardian)
//	POST /search/jobs    {query}  → ranked open jobs (tutor)
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log.Named("search.http")}
}

// RegisterRoutes mounts the search routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/search/tutors", h.handleTutors)
	mux.HandleFunc("/search/jobs", h.handleJobs)
}

type queryBody struct {
	Query string `json:"query"`
}

func (h *Handler) handleTutors(w http.ResponseWriter, r *http.Request) {
	var body queryBody
	if !h.read(w, r, &body) {
		return
	}
	out, err := h.svc.SearchTutors(r.Context(), body.Query)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.OK(w, out)
}

func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	var body queryBody
	if !h.read(w, r, &body) {
		return
	}
	out, err := h.svc.SearchJobs(r.Context(), body.Query)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.OK(w, out)
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request, body *queryBody) bool {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return false
	}
	if _, ok := httpx.RequireUser(w, r); !ok {
		return false
	}
	if err := httpx.Decode(w, r, body); err != nil {
		httpx.Fail(w, h.log, err)
		return false
	}
	return true
}
