package appraisalshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/directory"
	"appraisal/internal/domain/notifications"
	"appraisal/internal/domain/reports"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service   *appraisal.Service
	Directory *directory.Store
	Perms     middleware.PermissionStore
	Notify    *notifications.Service
	Audit     *audit.Service
	Idem      *middleware.IdempotencyStore
}

func NewHandler(service *appraisal.Service, dir *directory.Store, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Directory: dir, Perms: perms, Notify: notify, Audit: auditSvc, Idem: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/appraisals", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAppraisalsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermAppraisalsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermAppraisalsRead, h.Perms)).Get("/{appraisalID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermAppraisalsWrite, h.Perms)).Put("/{appraisalID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermAppraisalsWrite, h.Perms)).Post("/{appraisalID}/transition", h.handleTransition)
		r.With(middleware.RequirePermission(auth.PermAppraisalsAdmin, h.Perms)).Delete("/{appraisalID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermAppraisalsRead, h.Perms)).Get("/{appraisalID}/permissions", h.handlePermissions)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/{appraisalID}/pdf", h.handlePDF)
	})
}

func actorFrom(user auth.UserContext) appraisal.Actor {
	return appraisal.Actor{
		UserID: user.UserID,
		Role:   user.RoleName,
		Admin:  user.RoleName == auth.RoleDirectorGeneral,
	}
}

// failDomain translates domain errors into envelope responses.
func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, appraisal.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "appraisal not found", requestID)
	case errors.Is(err, appraisal.ErrVersionConflict):
		api.Fail(w, http.StatusConflict, "version_conflict", "appraisal was modified concurrently, reload and retry", requestID)
	case errors.Is(err, appraisal.ErrNotParticipant):
		api.Fail(w, http.StatusForbidden, "forbidden", "not a participant in this appraisal", requestID)
	case errors.Is(err, appraisal.ErrClosed):
		api.Fail(w, http.StatusConflict, "appraisal_closed", "closed appraisals are immutable", requestID)
	case errors.Is(err, appraisal.ErrNotEditable):
		api.Fail(w, http.StatusConflict, "not_editable", "appraisal is not editable in its current status", requestID)
	case errors.Is(err, appraisal.ErrIllegalTransition):
		api.Fail(w, http.StatusConflict, "illegal_transition", "status transition not allowed", requestID)
	case errors.Is(err, appraisal.ErrWrongActor):
		api.Fail(w, http.StatusForbidden, "wrong_actor", "this transition belongs to the other participant", requestID)
	case errors.Is(err, appraisal.ErrScopeForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "scope=all requires the administrative role", requestID)
	case errors.Is(err, appraisal.ErrBadPeriod):
		api.Fail(w, http.StatusBadRequest, "invalid_period", "period start must be on or before period end", requestID)
	case errors.Is(err, appraisal.ErrEmployeeNotFound), errors.Is(err, appraisal.ErrAppraiserNotFound):
		api.Fail(w, http.StatusBadRequest, "unknown_participant", err.Error(), requestID)
	case errors.Is(err, appraisal.ErrNotOwnAppraisal), errors.Is(err, appraisal.ErrNotOwnReview):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
	case errors.Is(err, appraisal.ErrUnknownStatus):
		api.Fail(w, http.StatusBadRequest, "unknown_status", "unknown status", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "appraisal_error", "appraisal operation failed", requestID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	q := r.URL.Query()
	v := shared.NewValidator()
	v.Enum("scope", q.Get("scope"), []string{appraisal.ScopeMy, appraisal.ScopeTeam, appraisal.ScopeAll}, "scope must be my, team or all")
	v.Enum("status", q.Get("status"), appraisal.Statuses, "unknown status")
	v.Enum("sort", q.Get("sort"), []string{appraisal.SortUpdated, appraisal.SortPeriod, appraisal.SortStatus}, "sort must be updated, period or status")

	filter := appraisal.Filter{
		Status:   q.Get("status"),
		Division: q.Get("division"),
		Role:     q.Get("role"),
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
	}
	if raw := q.Get("from"); raw != "" {
		if parsed, okDate := v.Date("from", raw); okDate {
			filter.PeriodFrom = parsed
		}
	}
	if raw := q.Get("to"); raw != "" {
		if parsed, okDate := v.Date("to", raw); okDate {
			filter.PeriodTo = parsed
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	scope := q.Get("scope")
	if scope == "" {
		scope = appraisal.ScopeMy
	}

	list, err := h.Service.List(r.Context(), actorFrom(user), scope, filter)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

type createPayload struct {
	EmployeeID  string              `json:"employeeId"`
	AppraiserID string              `json:"appraiserId"`
	PeriodStart string              `json:"periodStart"`
	PeriodEnd   string              `json:"periodEnd"`
	CreatedBy   string              `json:"createdBy"`
	Document    *appraisal.Document `json:"document"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	requestID := middleware.GetRequestID(r.Context())

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("periodStart", payload.PeriodStart, "periodStart is required")
	v.Required("periodEnd", payload.PeriodEnd, "periodEnd is required")
	v.Enum("createdBy", payload.CreatedBy, []string{appraisal.CreatedByAppraisee, appraisal.CreatedByAppraiser}, "createdBy must be appraisee or appraiser")
	start, startOK := v.Date("periodStart", payload.PeriodStart)
	end, endOK := v.Date("periodEnd", payload.PeriodEnd)
	if startOK && endOK {
		v.DateOrder("periodStart", start, "periodEnd", end)
	}
	if v.Reject(w, requestID) {
		return
	}

	idemKey := r.Header.Get("Idempotency-Key")
	var requestHash string
	if idemKey != "" {
		raw, _ := json.Marshal(payload)
		requestHash = middleware.RequestHash(raw)
		stored, hit, err := h.Idem.Check(r.Context(), user.UserID, "appraisals.create", idemKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", requestID)
			return
		}
		if err == nil && hit {
			var data any
			_ = json.Unmarshal(stored, &data)
			api.Success(w, data, requestID)
			return
		}
	}

	created, err := h.Service.Create(r.Context(), actorFrom(user), appraisal.CreateInput{
		EmployeeID:  payload.EmployeeID,
		AppraiserID: payload.AppraiserID,
		PeriodStart: start,
		PeriodEnd:   end,
		CreatedBy:   payload.CreatedBy,
		Document:    payload.Document,
	})
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	if idemKey != "" {
		response, _ := json.Marshal(created)
		if err := h.Idem.Save(r.Context(), user.UserID, "appraisals.create", idemKey, requestHash, response); err != nil {
			slog.Warn("idempotency save failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "appraisals.create", "appraisal", created.ID, requestID, shared.ClientIP(r), nil, created); err != nil {
		slog.Warn("audit appraisals.create failed", "err", err)
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	a, err := h.Service.Get(r.Context(), actorFrom(user), chi.URLParam(r, "appraisalID"))
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

type updatePayload struct {
	Version     int                `json:"version"`
	PeriodStart string             `json:"periodStart"`
	PeriodEnd   string             `json:"periodEnd"`
	Document    appraisal.Document `json:"document"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	requestID := middleware.GetRequestID(r.Context())

	var payload updatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	input := appraisal.UpdateInput{Version: payload.Version, Document: payload.Document}
	v := shared.NewValidator()
	if payload.PeriodStart != "" {
		if parsed, okDate := v.Date("periodStart", payload.PeriodStart); okDate {
			input.PeriodStart = parsed
		}
	}
	if payload.PeriodEnd != "" {
		if parsed, okDate := v.Date("periodEnd", payload.PeriodEnd); okDate {
			input.PeriodEnd = parsed
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	id := chi.URLParam(r, "appraisalID")
	before, err := h.Service.Get(r.Context(), actorFrom(user), id)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	updated, err := h.Service.Update(r.Context(), actorFrom(user), id, input)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "appraisals.update", "appraisal", id, requestID, shared.ClientIP(r), before, updated); err != nil {
		slog.Warn("audit appraisals.update failed", "err", err)
	}
	api.Success(w, updated, requestID)
}

type transitionPayload struct {
	To      string `json:"to"`
	Version int    `json:"version"`
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	requestID := middleware.GetRequestID(r.Context())

	var payload transitionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("to", payload.To, "target status is required")
	v.Enum("to", payload.To, appraisal.Statuses, "unknown status")
	if v.Reject(w, requestID) {
		return
	}

	id := chi.URLParam(r, "appraisalID")
	updated, err := h.Service.Transition(r.Context(), actorFrom(user), id, payload.To, payload.Version)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.notifyTransition(r, user, updated)
	if err := h.Audit.Record(r.Context(), user.UserID, "appraisals.transition", "appraisal", id, requestID, shared.ClientIP(r), nil, map[string]any{"to": payload.To}); err != nil {
		slog.Warn("audit appraisals.transition failed", "err", err)
	}
	api.Success(w, updated, requestID)
}

// notifyTransition tells the counterpart the form moved. The actor who
// triggered the move needs no notification.
func (h *Handler) notifyTransition(r *http.Request, user auth.UserContext, a *appraisal.Appraisal) {
	var target, kind, message string
	switch a.Status {
	case appraisal.StatusPendingReview:
		target = a.AppraiserID
		kind = notifications.KindAppraisalSubmitted
		message = "An appraisal has been submitted for your review"
	case appraisal.StatusSubmitted:
		target = a.EmployeeID
		kind = notifications.KindAppraisalSubmitted
		message = "Your appraisal has been submitted"
	case appraisal.StatusReviewed:
		target = a.EmployeeID
		kind = notifications.KindAppraisalReviewed
		message = "Your appraisal has been reviewed"
	case appraisal.StatusClosed:
		target = a.EmployeeID
		kind = notifications.KindAppraisalClosed
		message = "Your appraisal has been closed"
	default:
		return
	}
	if target == "" || target == user.UserID {
		return
	}
	if _, err := h.Notify.Notify(r.Context(), target, kind, message, a.ID); err != nil {
		slog.Warn("transition notification failed", "appraisal", a.ID, "err", err)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	requestID := middleware.GetRequestID(r.Context())

	id := chi.URLParam(r, "appraisalID")
	before, err := h.Service.Get(r.Context(), actorFrom(user), id)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	if err := h.Service.Delete(r.Context(), actorFrom(user), id); err != nil {
		failDomain(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "appraisals.delete", "appraisal", id, requestID, shared.ClientIP(r), before, nil); err != nil {
		slog.Warn("audit appraisals.delete failed", "err", err)
	}
	api.Success(w, map[string]any{"deleted": true}, requestID)
}

// handlePermissions reports, for the requesting actor, which sections
// are visible and editable right now plus the legal next statuses.
func (h *Handler) handlePermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	actor := actorFrom(user)
	a, err := h.Service.Get(r.Context(), actor, chi.URLParam(r, "appraisalID"))
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	mode := a.ModeFor(actor)
	api.Success(w, map[string]any{
		"mode":         mode,
		"status":       a.Status,
		"sections":     appraisal.SectionRules(mode, a.Status),
		"nextStatuses": a.NextStatuses(actor),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	requestID := middleware.GetRequestID(r.Context())

	a, err := h.Service.Get(r.Context(), actorFrom(user), chi.URLParam(r, "appraisalID"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	employee, err := h.Directory.Get(r.Context(), a.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "employee lookup failed", requestID)
		return
	}
	appraiser, err := h.Directory.Get(r.Context(), a.AppraiserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "appraiser lookup failed", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="appraisal-`+a.ID+`.pdf"`)
	if err := reports.WriteAppraisalPDF(w, a, employee, appraiser); err != nil {
		slog.Warn("appraisal pdf render failed", "appraisal", a.ID, "err", err)
	}
}
