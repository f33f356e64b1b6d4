package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"clubevents/internal/delivery/http/controllers"
	"clubevents/internal/delivery/http/middleware"
	"clubevents/internal/domain"
)

// RouterDeps is what NewRouter needs besides the controllers.
type RouterDeps struct {
	Logger       *slog.Logger
	Sessions     domain.SessionVerifier
	LoginLimiter *middleware.RateLimiter
	Gatherer     prometheus.Gatherer

	// TrustForwardedFor keys the login limit on X-Forwarded-For instead of the peer address.
	TrustForwardedFor bool
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(eventController *controllers.EventController, authController *controllers.AuthController, deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()
	requireSession := middleware.RequireSession(deps.Sessions, deps.Logger)

	// Admin session
	login := authController.Login
	if deps.LoginLimiter != nil {
		login = middleware.RateLimit(deps.LoginLimiter, middleware.ClientIP(deps.TrustForwardedFor))(login)
	}
	mux.HandleFunc("POST /api/admin/login", login)
	mux.HandleFunc("POST /api/admin/logout", authController.Logout)
	mux.HandleFunc("GET /api/admin/session", authController.Session)

	// Events
	mux.HandleFunc("GET /api/events", eventController.ListEvents)
	mux.HandleFunc("GET /api/events/{slug}", eventController.GetEvent)
	mux.HandleFunc("GET /api/check-slug", eventController.CheckSlug)
	mux.HandleFunc("POST /api/events", requireSession(eventController.PublishEvent))
	mux.HandleFunc("PUT /api/events/{slug}", requireSession(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /api/events/{slug}", requireSession(eventController.DeleteEvent))

	// Ops
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
