package billing

import (
	"net/http"

	"go.uber.org/zap"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/httpx"
)

// Handler serves the invoice routes:
//
//	GET  /invoices?tutorId=        → list a tutor's invoices
//	GET  /invoices/{id}            → one invoice
//	POST /invoices/{id}/paid       → mark paid (payment collaborator callback)
//	POST /invoices/confirm         → {sessionId} verify a checkout with the gateway
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log.Named("billing.http")}
}

// RegisterRoutes mounts the invoice routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/invoices", h.handleList)
	mux.HandleFunc("/invoices/", h.handleInvoice)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := httpx.RequireUser(w, r); !ok {
		return
	}
	tutorID, err := httpx.ParseID(r.URL.Query().Get("tutorId"))
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	list, err := h.svc.ListForTutor(r.Context(), tutorID)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.OK(w, list)
}

// handleInvoice handles /invoices/{id}, /invoices/{id}/paid and /invoices/confirm.
func (h *Handler) handleInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := httpx.RequireUser(w, r); !ok {
		return
	}
	parts := httpx.PathParts(r)

	if len(parts) == 2 && parts[1] == "confirm" {
		if !httpx.RequireMethod(w, r, http.MethodPost) {
			return
		}
		h.confirm(w, r)
		return
	}

	if len(parts) < 2 || len(parts) > 3 {
		httpx.Error(w, "invalid path", http.StatusNotFound)
		return
	}
	id, err := httpx.ParseID(parts[1])
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}

	switch {
	case len(parts) == 2:
		if !httpx.RequireMethod(w, r, http.MethodGet) {
			return
		}
		inv, err := h.svc.Invoice(r.Context(), id)
		if err != nil {
			httpx.Fail(w, h.log, err)
			return
		}
		httpx.OK(w, inv)
	case parts[2] == "paid":
		if !httpx.RequireMethod(w, r, http.MethodPost) {
			return
		}
		inv, err := h.svc.MarkPaid(r.Context(), id)
		if err != nil {
			httpx.Fail(w, h.log, err)
			return
		}
		httpx.OK(w, inv)
	default:
		httpx.Error(w, "unknown action "+parts[2], http.StatusNotFound)
	}
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"sessionId"`
	}
	if err := httpx.Decode(w, r, &body); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	if body.SessionID == "" {
		httpx.Fail(w, h.log, apperr.Validation("body must contain sessionId"))
		return
	}
	inv, err := h.svc.ConfirmPayment(r.Context(), body.SessionID)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.OK(w, inv)
}
