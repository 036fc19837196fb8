package review

import (
	"net/http"

	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/httpx"
)

// Handler serves POST /jobs/{id}/review. It is mounted by the hiring handler,
// which owns the /jobs/ prefix.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log.Named("review.http")}
}

// ServeReview handles a review of jobID by the caller.
func (h *Handler) ServeReview(w http.ResponseWriter, r *http.Request, jobID int64) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := httpx.Decode(w, r, &body); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	out, err := h.svc.Submit(r.Context(), userID, jobID, body.Rating, body.Comment)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}
