package authhandler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/directory"
	cryptoutil "appraisal/internal/platform/crypto"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Store      *auth.Store
	Directory  *directory.Store
	Audit      *audit.Service
	Secret     string
	SessionTTL time.Duration
	Crypto     *cryptoutil.Service
}

func NewHandler(store *auth.Store, dir *directory.Store, auditSvc *audit.Service, secret string, sessionTTL time.Duration, crypto *cryptoutil.Service) *Handler {
	if sessionTTL <= 0 {
		sessionTTL = 8 * time.Hour
	}
	return &Handler{Store: store, Directory: dir, Audit: auditSvc, Secret: secret, SessionTTL: sessionTTL, Crypto: crypto}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.Post("/logout", h.HandleLogout)
		r.Post("/refresh", h.HandleRefresh)
		r.Get("/me", h.HandleMe)
		r.Post("/request-reset", h.HandleRequestReset)
		r.Post("/reset", h.HandleResetPassword)
		r.Post("/mfa/setup", h.HandleMFASetup)
		r.Post("/mfa/enable", h.HandleMFAEnable)
		r.Post("/mfa/disable", h.HandleMFADisable)
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.Store)).Post("/impersonate", h.HandleImpersonate)
	})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Role       string `json:"role"`
	Password   string `json:"password"`
	MFACode    string `json:"mfaCode"`
}

// HandleLogin checks identifier (email or staff id), password and the
// claimed role together, mirroring the sign-in form.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("identifier", payload.Identifier, "email or staff id is required")
	v.Required("password", payload.Password, "password is required")
	v.Required("role", payload.Role, "role is required")
	if v.Reject(w, requestID) {
		return
	}

	user, err := h.Store.FindUserForLogin(r.Context(), strings.TrimSpace(payload.Identifier), payload.Role)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}

	if user.MFAEnabled {
		if payload.MFACode == "" {
			api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", requestID)
			return
		}
		secret, err := h.mfaSecret(user.MFASecretEnc)
		if err != nil || secret == "" || !totp.Validate(payload.MFACode, secret) {
			api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", requestID)
			return
		}
	}

	token, err := h.issueSession(r, user.ID, user.StaffID, user.RoleName)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}
	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":      user.ID,
			"name":    user.Name,
			"staffId": user.StaffID,
			"role":    user.RoleName,
		},
	}, requestID)
}

func (h *Handler) issueSession(r *http.Request, userID, staffID, roleName string) (string, error) {
	sessionID, err := generateToken()
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(h.SessionTTL)
	if err := h.Store.CreateSession(r.Context(), userID, auth.HashToken(sessionID), expires); err != nil {
		return "", err
	}
	return auth.GenerateToken(h.Secret, auth.Claims{
		UserID:    userID,
		StaffID:   staffID,
		RoleName:  roleName,
		SessionID: sessionID,
	}, h.SessionTTL)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.GetUser(r.Context()); ok && user.SessionID != "" {
		if err := h.Store.RevokeSession(r.Context(), user.UserID, auth.HashToken(user.SessionID)); err != nil {
			slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	claims, err := auth.ParseToken(h.Secret, parts[1])
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	valid, err := h.Store.SessionValid(r.Context(), claims.UserID, auth.HashToken(claims.SessionID))
	if err != nil || !valid {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "session expired", requestID)
		return
	}

	newSessionID, err := generateToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to rotate session", requestID)
		return
	}
	expires := time.Now().Add(h.SessionTTL)
	if err := h.Store.RotateSession(r.Context(), claims.UserID, auth.HashToken(claims.SessionID), auth.HashToken(newSessionID), expires); err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to rotate session", requestID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:    claims.UserID,
		StaffID:   claims.StaffID,
		RoleName:  claims.RoleName,
		SessionID: newSessionID,
	}, h.SessionTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}
	api.Success(w, map[string]any{"token": token}, requestID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	profile, err := h.Directory.Get(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_error", "failed to load profile", requestID)
		return
	}
	api.Success(w, profile, requestID)
}

type resetRequest struct {
	Email string `json:"email"`
}

// HandleRequestReset always reports success so the endpoint cannot be
// used to probe which emails exist.
func (h *Handler) HandleRequestReset(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload resetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	if userID, err := h.Store.UserIDByEmail(r.Context(), payload.Email); err == nil {
		if token, err := generateToken(); err == nil {
			expires := time.Now().Add(2 * time.Hour)
			if err := h.Store.CreatePasswordReset(r.Context(), userID, auth.HashToken(token), expires); err != nil {
				slog.Warn("password reset insert failed", "userId", userID, "err", err)
			}
		}
	}
	api.Success(w, map[string]string{"status": "reset_requested"}, requestID)
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	userID, err := h.Store.PasswordResetUserID(r.Context(), auth.HashToken(payload.Token))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired token", requestID)
		return
	}

	hash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to update password", requestID)
		return
	}
	if err := h.Store.UpdateUserPassword(r.Context(), userID, hash); err != nil {
		api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update password", requestID)
		return
	}
	if err := h.Store.MarkPasswordResetUsed(r.Context(), auth.HashToken(payload.Token)); err != nil {
		slog.Warn("password reset mark used failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "password_reset"}, requestID)
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) HandleMFASetup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	if h.Crypto == nil || !h.Crypto.Configured() {
		api.Fail(w, http.StatusBadRequest, "mfa_unavailable", "mfa requires encryption key", requestID)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "StaffAppraisal",
		AccountName: user.StaffID,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to generate mfa secret", requestID)
		return
	}
	encrypted, err := h.Crypto.EncryptString(key.Secret())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to store mfa secret", requestID)
		return
	}
	if err := h.Store.UpdateMFASecret(r.Context(), user.UserID, encrypted); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to store mfa secret", requestID)
		return
	}
	api.Success(w, map[string]string{"secret": key.Secret(), "otpauthUrl": key.URL()}, requestID)
}

func (h *Handler) HandleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.handleMFAToggle(w, r, true)
}

func (h *Handler) HandleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.handleMFAToggle(w, r, false)
}

func (h *Handler) handleMFAToggle(w http.ResponseWriter, r *http.Request, enable bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	if h.Crypto == nil || !h.Crypto.Configured() {
		api.Fail(w, http.StatusBadRequest, "mfa_unavailable", "mfa requires encryption key", requestID)
		return
	}

	var payload mfaCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	secretEnc, err := h.Store.GetMFASecret(r.Context(), user.UserID)
	if err != nil || len(secretEnc) == 0 {
		api.Fail(w, http.StatusBadRequest, "mfa_missing", "mfa setup required", requestID)
		return
	}
	secret, err := h.Crypto.DecryptString(secretEnc)
	if err != nil || !totp.Validate(payload.Code, secret) {
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa code", requestID)
		return
	}

	if err := h.Store.SetMFAEnabled(r.Context(), user.UserID, enable); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_update_failed", "failed to update mfa", requestID)
		return
	}
	status := "disabled"
	if enable {
		status = "enabled"
	}
	api.Success(w, map[string]string{"status": status}, requestID)
}

type impersonateRequest struct {
	UserID string `json:"userId"`
}

// HandleImpersonate issues a token acting as another user. Admin only,
// always audited.
func (h *Handler) HandleImpersonate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	admin, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload impersonateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.UserID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "userId is required", requestID)
		return
	}

	target, err := h.Directory.Get(r.Context(), payload.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
		return
	}

	token, err := h.issueSession(r, target.ID, target.StaffID, target.Role)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), admin.UserID, "auth.impersonate", "user", target.ID, requestID, shared.ClientIP(r), nil, map[string]string{"target": target.ID}); err != nil {
		slog.Warn("audit auth.impersonate failed", "err", err)
	}
	api.Success(w, map[string]any{
		"token": token,
		"user":  map[string]string{"id": target.ID, "name": target.Name, "role": target.Role},
	}, requestID)
}

func (h *Handler) mfaSecret(secretEnc []byte) (string, error) {
	if h.Crypto != nil && h.Crypto.Configured() {
		return h.Crypto.DecryptString(secretEnc)
	}
	return string(secretEnc), nil
}

func generateToken() (string, error) {
	buff := make([]byte, 32)
	if _, err := rand.Read(buff); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buff), nil
}
