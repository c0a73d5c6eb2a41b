package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"liveclass-backend/internal/handlers"
	"liveclass-backend/internal/middleware"
	"liveclass-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	liveHandler *handlers.LiveHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Upgrade rate limiter (30 req/min per IP) against connection churn
	wsLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Live Class Routes ────
		r.Route("/live", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/classes", liveHandler.ListClasses)
			r.Get("/classes/{courseID}", liveHandler.GetClass)
		})

		// ──── WebSocket ────
		r.Group(func(r chi.Router) {
			r.Use(wsLimiter.Middleware)
			r.Get("/ws", wsHub.HandleWebSocket)
		})
	})

	return r
}
