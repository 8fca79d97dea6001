package accesshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/access"
	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/notifications"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service *access.Service
	Perms   middleware.PermissionStore
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *access.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/access-requests", func(r chi.Router) {
		// Submission is anonymous: applicants have no account yet.
		r.Post("/", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermAccessReview, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermAccessReview, h.Perms)).Get("/{requestID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermAccessReview, h.Perms)).Put("/{requestID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermAccessReview, h.Perms)).Post("/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermAccessReview, h.Perms)).Post("/{requestID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.Perms)).Delete("/{requestID}", h.handleDelete)
	})
	r.Route("/division-managers", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermSystemAdmin, h.Perms))
		r.Get("/{division}", h.handleGetDivisionManager)
		r.Put("/{division}", h.handleSetDivisionManager)
	})
}

func failAccess(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, access.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "access request not found", requestID)
	case errors.Is(err, access.ErrNotPending):
		api.Fail(w, http.StatusConflict, "not_pending", "access request has already been reviewed", requestID)
	case errors.Is(err, access.ErrUnknownRole):
		api.Fail(w, http.StatusBadRequest, "unknown_role", "role is not in the catalogue", requestID)
	case errors.Is(err, access.ErrEmailTaken):
		api.Fail(w, http.StatusConflict, "email_taken", "email already registered", requestID)
	case errors.Is(err, access.ErrNoApprover):
		api.Fail(w, http.StatusConflict, "no_approver", "no manager available for the division", requestID)
	case errors.Is(err, access.ErrUnknownManager):
		api.Fail(w, http.StatusBadRequest, "unknown_manager", "manager override does not exist", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "access_error", "access request operation failed", requestID)
	}
}

type submitPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	StaffID  string `json:"staffId"`
	Role     string `json:"role"`
	Division string `json:"division"`
	Notes    string `json:"notes"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("role", payload.Role, "role is required")
	v.Required("division", payload.Division, "division is required")
	if v.Reject(w, requestID) {
		return
	}

	created, err := h.Service.Submit(r.Context(), access.SubmitInput{
		Name:     payload.Name,
		Email:    payload.Email,
		StaffID:  payload.StaffID,
		Role:     payload.Role,
		Division: payload.Division,
		Notes:    payload.Notes,
	})
	if err != nil {
		failAccess(w, err, requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" {
		v := shared.NewValidator()
		v.Enum("status", status, []string{access.StatusPending, access.StatusApproved, access.StatusRejected}, "unknown status")
		if v.Reject(w, middleware.GetRequestID(r.Context())) {
			return
		}
	}
	list, err := h.Service.List(r.Context(), status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "access_list_failed", "failed to list access requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		failAccess(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "requestID"), access.UpdateInput{
		Name:     payload.Name,
		Email:    payload.Email,
		StaffID:  payload.StaffID,
		Role:     payload.Role,
		Division: payload.Division,
		Notes:    payload.Notes,
	})
	if err != nil {
		failAccess(w, err, requestID)
		return
	}
	api.Success(w, updated, requestID)
}

type approvePayload struct {
	ManagerID string `json:"managerId"`
	Password  string `json:"password"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "requestID")

	var payload approvePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("password", payload.Password, "an initial password for the new account is required")
	if v.Reject(w, requestID) {
		return
	}

	req, provisioned, err := h.Service.Approve(r.Context(), id, user.UserID, access.ApproveInput{
		ManagerID: payload.ManagerID,
		Password:  payload.Password,
	})
	if err != nil {
		failAccess(w, err, requestID)
		return
	}

	if _, err := h.Notify.Notify(r.Context(), provisioned.ID, notifications.KindAccessApproved, "Your access request has been approved", req.ID); err != nil {
		slog.Warn("access approval notification failed", "request", req.ID, "err", err)
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "access.approve", "access_request", id, requestID, shared.ClientIP(r), nil, req); err != nil {
		slog.Warn("audit access.approve failed", "err", err)
	}
	api.Success(w, map[string]any{"request": req, "user": provisioned}, requestID)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "requestID")

	req, err := h.Service.Reject(r.Context(), id, user.UserID)
	if err != nil {
		failAccess(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "access.reject", "access_request", id, requestID, shared.ClientIP(r), nil, req); err != nil {
		slog.Warn("audit access.reject failed", "err", err)
	}
	api.Success(w, req, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "requestID")); err != nil {
		failAccess(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"deleted": true}, requestID)
}

func (h *Handler) handleGetDivisionManager(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	division := chi.URLParam(r, "division")
	managerID, err := h.Service.DivisionManager(r.Context(), division)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "division_lookup_failed", "division manager lookup failed", requestID)
		return
	}
	api.Success(w, map[string]string{"division": division, "managerId": managerID}, requestID)
}

type divisionManagerPayload struct {
	ManagerID string `json:"managerId"`
}

func (h *Handler) handleSetDivisionManager(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	division := chi.URLParam(r, "division")

	var payload divisionManagerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("managerId", payload.ManagerID, "managerId is required")
	if v.Reject(w, requestID) {
		return
	}

	if err := h.Service.SetDivisionManager(r.Context(), division, payload.ManagerID); err != nil {
		failAccess(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "access.set-division-manager", "division", division, requestID, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit access.set-division-manager failed", "err", err)
	}
	api.Success(w, map[string]string{"division": division, "managerId": payload.ManagerID}, requestID)
}
