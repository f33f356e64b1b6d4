package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	h "clubevents/internal/delivery/http/helpers"
	"clubevents/internal/domain"
)

// SessionCookieName is the HttpOnly cookie carrying the admin session token.
const SessionCookieName = "admin_jwt"

type contextKey string

const (
	sessionKey      contextKey = "adminSession"
	sessionTokenKey contextKey = "adminSessionToken"
)

// SetSession returns a context carrying the verified session and its raw token.
func SetSession(ctx context.Context, session *domain.AdminSession, token string) context.Context {
	ctx = context.WithValue(ctx, sessionKey, session)
	return context.WithValue(ctx, sessionTokenKey, token)
}

// SessionFromContext returns the verified admin session, if present.
func SessionFromContext(ctx context.Context) (*domain.AdminSession, bool) {
	s, ok := ctx.Value(sessionKey).(*domain.AdminSession)
	return s, ok && s != nil
}

// SessionTokenFromContext returns the raw token of the verified session, if present.
func SessionTokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(sessionTokenKey).(string)
	return t, ok && t != ""
}

// SessionToken returns the session cookie value, or "" when absent.
func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetSessionCookie attaches token as an HttpOnly, SameSite=Strict cookie whose Max-Age is the token TTL.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// RequireSession returns a wrapper that verifies the session cookie and stores the session
// in the request context. Without a valid session it responds with 401 and does not call next.
func RequireSession(verifier domain.SessionVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, h.MsgLogInAgain)
				return
			}
			session, ok := verifier.Verify(token)
			if !ok || session.Subject != domain.AdminSubject {
				logger.DebugContext(r.Context(), "rejected admin session", "path", r.URL.Path)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, h.MsgLogInAgain)
				return
			}
			r = r.WithContext(SetSession(r.Context(), session, token))
			next(w, r)
		}
	}
}
