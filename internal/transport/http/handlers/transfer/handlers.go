package transferhandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/transfer"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service *transfer.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *transfer.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/transfer", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermTransferAdmin, h.Perms))
		r.Get("/export", h.handleExport)
		r.Post("/import", h.handleImport)
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	filename := fmt.Sprintf("appraisal-export-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := h.Service.WriteJSON(r.Context(), w); err != nil {
		// Headers are already out; all we can do is log.
		slog.Error("snapshot export failed", "requestId", requestID, "err", err)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "transfer.export", "snapshot", "", requestID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit transfer.export failed", "err", err)
	}
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	snap, err := h.Service.Import(r.Context(), r.Body)
	if err != nil {
		if errors.Is(err, transfer.ErrInvalidSnapshot) {
			api.FailWithDetails(w, http.StatusBadRequest, "invalid_snapshot", "snapshot rejected", err.Error(), requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "import_failed", "snapshot import failed", requestID)
		return
	}

	summary := map[string]any{
		"users":          len(snap.Users),
		"appraisals":     len(snap.Appraisals),
		"accessRequests": len(snap.AccessRequests),
		"exportedAt":     snap.ExportedAt,
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "transfer.import", "snapshot", "", requestID, shared.ClientIP(r), nil, summary); err != nil {
		slog.Warn("audit transfer.import failed", "err", err)
	}
	api.Success(w, summary, requestID)
}
