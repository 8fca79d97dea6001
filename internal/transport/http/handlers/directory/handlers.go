package directoryhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/directory"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service *directory.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *directory.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Post("/import", h.handleBulkImport)
		r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/tree", h.handleTree)
		r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/roles", h.handleRoles)
		r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/{userID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/{userID}/reports", h.handleReports)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Put("/{userID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.Perms)).Delete("/{userID}", h.handleDelete)
	})
}

func failDirectory(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
	case errors.Is(err, directory.ErrUnknownRole):
		api.Fail(w, http.StatusBadRequest, "unknown_role", "role is not in the catalogue", requestID)
	case errors.Is(err, directory.ErrManagerNotFound):
		api.Fail(w, http.StatusBadRequest, "unknown_manager", "manager does not exist", requestID)
	case errors.Is(err, directory.ErrManagerCycle):
		api.Fail(w, http.StatusBadRequest, "manager_cycle", "manager assignment would create a reporting cycle", requestID)
	case errors.Is(err, directory.ErrSelfManaged):
		api.Fail(w, http.StatusBadRequest, "self_managed", "a user cannot be their own manager", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "user_error", "user operation failed", requestID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, err := h.Service.Store.List(r.Context(), directory.ListFilter{
		Query:    q.Get("q"),
		Role:     q.Get("role"),
		Division: q.Get("division"),
		Region:   q.Get("region"),
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

type userPayload struct {
	Name      string `json:"name"`
	StaffID   string `json:"staffId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ManagerID string `json:"managerId"`
	Division  string `json:"division"`
	Region    string `json:"region"`
	Password  string `json:"password"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("staffId", payload.StaffID, "staff id is required")
	v.Required("role", payload.Role, "role is required")
	v.Required("password", payload.Password, "password is required")
	if v.Reject(w, requestID) {
		return
	}

	created, err := h.Service.CreateUser(r.Context(), directory.CreateUserInput{
		Name:      payload.Name,
		StaffID:   payload.StaffID,
		Email:     payload.Email,
		Role:      payload.Role,
		ManagerID: payload.ManagerID,
		Division:  payload.Division,
		Region:    payload.Region,
		Password:  payload.Password,
	})
	if err != nil {
		failDirectory(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "users.create", "user", created.ID, requestID, shared.ClientIP(r), nil, created); err != nil {
		slog.Warn("audit users.create failed", "err", err)
	}
	api.Created(w, created, requestID)
}

// handleBulkImport ingests the CSV roster. mode=strict aborts on the
// first bad row; the default skips bad rows and reports them.
func (h *Handler) handleBulkImport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	mode := directory.ImportLenient
	if r.URL.Query().Get("mode") == "strict" {
		mode = directory.ImportStrict
	}

	result, err := h.Service.BulkImport(r.Context(), r.Body, mode)
	if err != nil {
		if errors.Is(err, directory.ErrBadHeader) {
			api.Fail(w, http.StatusBadRequest, "bad_header", "csv header does not match the roster template", requestID)
			return
		}
		api.FailWithDetails(w, http.StatusBadRequest, "import_failed", "bulk import failed", map[string]any{"error": err.Error()}, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "users.import", "roster", "", requestID, shared.ClientIP(r), nil, result); err != nil {
		slog.Warn("audit users.import failed", "err", err)
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.Service.Tree(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "tree_failed", "failed to build organisation tree", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, tree, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	api.Success(w, auth.Roles, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		failDirectory(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, u, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Service.Store.Reports(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reports_failed", "failed to list direct reports", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, reports, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "userID")

	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	before, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		failDirectory(w, err, requestID)
		return
	}

	updated, err := h.Service.UpdateUser(r.Context(), id, directory.UpdateUserInput{
		Name:      payload.Name,
		StaffID:   payload.StaffID,
		Email:     payload.Email,
		Role:      payload.Role,
		ManagerID: payload.ManagerID,
		Division:  payload.Division,
		Region:    payload.Region,
	})
	if err != nil {
		failDirectory(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "users.update", "user", id, requestID, shared.ClientIP(r), before, updated); err != nil {
		slog.Warn("audit users.update failed", "err", err)
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "userID")

	before, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		failDirectory(w, err, requestID)
		return
	}
	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		failDirectory(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "users.delete", "user", id, requestID, shared.ClientIP(r), before, nil); err != nil {
		slog.Warn("audit users.delete failed", "err", err)
	}
	api.Success(w, map[string]any{"deleted": true}, requestID)
}
