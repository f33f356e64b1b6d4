package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	h "clubevents/internal/delivery/http/helpers"
	"clubevents/internal/delivery/http/middleware"
	"clubevents/internal/domain"
)

// LoginRequest is the request body for POST /api/admin/login
type LoginRequest struct {
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	if l.Password == "" {
		return []string{"password is required"}
	}
	return nil
}

// SessionResponse reports whether the caller holds a valid admin session.
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"exp,omitempty"`
}

type AuthController struct {
	Logger        *slog.Logger
	Service       domain.AuthService
	SessionTTL    time.Duration
	SecureCookies bool
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService, sessionTTL time.Duration, secureCookies bool) *AuthController {
	return &AuthController{
		Logger:        logger,
		Service:       svc,
		SessionTTL:    sessionTTL,
		SecureCookies: secureCookies,
	}
}

// Login godoc
// @Summary Admin login
// @Description Verify the admin password and set the admin_jwt session cookie (HttpOnly, SameSite=Strict).
// @Tags admin
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Admin password"
// @Success 200 {object} helpers.APIResponse "data contains authenticated and exp"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	token, expiresAt, err := c.Service.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.Logger.WarnContext(r.Context(), "admin login rejected", "ip", middleware.RemoteIP(r))
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid credentials")
			return
		}
		writeServiceError(w, r, c.Logger, err)
		return
	}

	middleware.SetSessionCookie(w, token, c.SessionTTL, c.SecureCookies)
	h.WriteJSONSuccess(w, http.StatusOK, SessionResponse{Authenticated: true, ExpiresAt: &expiresAt})
}

// Logout godoc
// @Summary Admin logout
// @Description Clear the admin session cookie.
// @Tags admin
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.authenticated is false"
// @Router /api/admin/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	middleware.ClearSessionCookie(w, c.SecureCookies)
	h.WriteJSONSuccess(w, http.StatusOK, SessionResponse{Authenticated: false})
}

// Session godoc
// @Summary Check the admin session
// @Description Report whether the session cookie is valid and when it expires.
// @Tags admin
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains authenticated and exp"
// @Failure 401 {object} helpers.APIResponse "data.authenticated is false"
// @Router /api/admin/session [get]
func (c *AuthController) Session(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	session, err := c.Service.Session(r.Context(), middleware.SessionToken(r))
	if err != nil {
		h.WriteJSON(w, http.StatusUnauthorized, h.APIResponse{
			Data:  SessionResponse{Authenticated: false},
			Error: &h.APIError{Code: h.ErrCodeUnauthorized, Message: h.MsgLogInAgain},
		})
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, SessionResponse{Authenticated: true, ExpiresAt: &session.ExpiresAt})
}
