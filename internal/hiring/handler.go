package hiring

// HTTP handlers for the hiring workflow.
//
// All routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	POST /jobs                        → post a job (caller is the guardian)
//	GET  /jobs/{id}                   → one job
//	POST /jobs/{id}/apply             → apply (caller is the tutor)
//	POST /jobs/{id}/hire              → {tutorId} confirm hiring (owner)
//	POST /jobs/{id}/close             → close an Open job (owner)
//	POST /jobs/{id}/delete            → delete an Open job (owner)
//	GET  /jobs/{id}/applicants        → applicants with profiles (owner)
//	POST /jobs/{id}/review            → delegated to the review handler
//	POST /applications/{id}/status    → {status} accept or reject (owner)
//	PUT  /tutors/{id}                 → update own tutor profile
//	POST /tutors/{id}/verify          → verify a tutor (x-user-role: Admin)

import (
	"net/http"

	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/httpx"
	"tutorhub/marketplace-service/internal/model"
)

// ReviewHandler serves POST /jobs/{id}/review.
type ReviewHandler interface {
	ServeReview(w http.ResponseWriter, r *http.Request, jobID int64)
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	svc     *Service
	reviews ReviewHandler
	log     *zap.Logger
}

// NewHandler returns a configured Handler. reviews may be nil, in which case
// the review route answers 404.
func NewHandler(svc *Service, reviews ReviewHandler, log *zap.Logger) *Handler {
	return &Handler{svc: svc, reviews: reviews, log: log.Named("hiring.http")}
}

// RegisterRoutes mounts all hiring routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/jobs", h.handleJobs)
	mux.HandleFunc("/jobs/", h.handleJobAction)
	mux.HandleFunc("/applications/", h.handleApplicationAction)
	mux.HandleFunc("/tutors/", h.handleTutorAction)
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

// handleJobs handles POST /jobs
func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	var job model.JobPosting
	if err := httpx.Decode(w, r, &job); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	job.GuardianID = userID
	created, err := h.svc.PostJob(r.Context(), job)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// handleJobAction handles /jobs/{id} and /jobs/{id}/{action}
func (h *Handler) handleJobAction(w http.ResponseWriter, r *http.Request) {
	parts := httpx.PathParts(r)
	if len(parts) < 2 || len(parts) > 3 {
		httpx.Error(w, "invalid path", http.StatusNotFound)
		return
	}
	jobID, err := httpx.ParseID(parts[1])
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}

	if len(parts) == 2 {
		if !httpx.RequireMethod(w, r, http.MethodGet) {
			return
		}
		if _, ok := httpx.RequireUser(w, r); !ok {
			return
		}
		job, err := h.svc.Job(r.Context(), jobID)
		if err != nil {
			httpx.Fail(w, h.log, err)
			return
		}
		httpx.OK(w, job)
		return
	}

	action := parts[2]
	if action == "review" {
		if h.reviews == nil {
			httpx.Error(w, "unknown action review", http.StatusNotFound)
			return
		}
		h.reviews.ServeReview(w, r, jobID)
		return
	}

	method := http.MethodPost
	if action == "applicants" {
		method = http.MethodGet
	}
	if !httpx.RequireMethod(w, r, method) {
		return
	}
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}

	switch action {
	case "apply":
		h.apply(w, r, userID, jobID)
	case "hire":
		h.hire(w, r, userID, jobID)
	case "close":
		job, err := h.svc.CloseJob(r.Context(), userID, jobID)
		if err != nil {
			httpx.Fail(w, h.log, err)
			return
		}
		httpx.OK(w, job)
	case "delete":
		if err := h.svc.DeleteJob(r.Context(), userID, jobID); err != nil {
			httpx.Fail(w, h.log, err)
			return
		}
		httpx.OK(w, map[string]any{"deleted": jobID})
	case "applicants":
		list, err := h.svc.ListApplicants(r.Context(), userID, jobID)
		if err != nil {
			httpx.Fail(w, h.log, err)
			return
		}
		httpx.OK(w, list)
	default:
		httpx.Error(w, "unknown action "+action, http.StatusNotFound)
	}
}

// handleApplicationAction handles POST /applications/{id}/status
func (h *Handler) handleApplicationAction(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}
	parts := httpx.PathParts(r)
	if len(parts) != 3 || parts[2] != "status" {
		httpx.Error(w, "invalid path", http.StatusNotFound)
		return
	}
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	appID, err := httpx.ParseID(parts[1])
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := httpx.Decode(w, r, &body); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	app, err := h.svc.UpdateApplicationStatus(r.Context(), userID, appID, body.Status)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.OK(w, app)
}

// handleTutorAction handles PUT /tutors/{id} and POST /tutors/{id}/verify
func (h *Handler) handleTutorAction(w http.ResponseWriter, r *http.Request) {
	parts := httpx.PathParts(r)
	if len(parts) < 2 || len(parts) > 3 {
		httpx.Error(w, "invalid path", http.StatusNotFound)
		return
	}
	tutorID, err := httpx.ParseID(parts[1])
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}

	switch {
	case len(parts) == 2:
		if !httpx.RequireMethod(w, r, http.MethodPut) {
			return
		}
		userID, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		var p model.TutorProfile
		if err := httpx.Decode(w, r, &p); err != nil {
			httpx.Fail(w, h.log, err)
			return
		}
		p.ID = tutorID
		updated, err := h.svc.UpdateTutorProfile(r.Context(), userID, p)
		if err != nil {
			httpx.Fail(w, h.log, err)
			return
		}
		httpx.OK(w, updated)
	case parts[2] == "verify":
		if !httpx.RequireMethod(w, r, http.MethodPost) {
			return
		}
		if _, ok := httpx.RequireRole(w, r, httpx.RoleAdmin); !ok {
			return
		}
		t, err := h.svc.VerifyTutor(r.Context(), tutorID)
		if err != nil {
			httpx.Fail(w, h.log, err)
			return
		}
		httpx.OK(w, t)
	default:
		httpx.Error(w, "unknown action "+parts[2], http.StatusNotFound)
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, userID string, jobID int64) {
	var req ApplyRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	req.JobID = jobID
	req.UserID = userID
	res, err := h.svc.Apply(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

// hire confirms the hire. When the hire commits but invoicing fails, the
// response carries both the outcome and the error, with the error's status.
func (h *Handler) hire(w http.ResponseWriter, r *http.Request, userID string, jobID int64) {
	var body struct {
		TutorID int64 `json:"tutorId"`
	}
	if err := httpx.Decode(w, r, &body); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	job, err := h.svc.Job(r.Context(), jobID)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	if job.GuardianID != userID {
		httpx.Fail(w, h.log, apperr.Validation("job %d does not belong to the caller", jobID))
		return
	}

	out, err := h.svc.ConfirmHiring(r.Context(), jobID, body.TutorID)
	switch {
	case err == nil:
		httpx.OK(w, out)
	case out != nil:
		h.log.Error("hire committed with errors", zap.Int64("jobId", jobID), zap.Error(err))
		httpx.JSON(w, httpx.Status(err), map[string]any{
			"error": apperr.UserMessage(err),
			"hire":  out,
		})
	default:
		httpx.Fail(w, h.log, err)
	}
}
