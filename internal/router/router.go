package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"webchat-backend/internal/handlers"
	"webchat-backend/internal/middleware"
	"webchat-backend/internal/websocket"
)

type Options struct {
	Logger      zerolog.Logger
	StaticDir   string
	FrontendURL string
	// SaveLimiter throttles POST /save-conversation; nil disables it.
	SaveLimiter *middleware.RateLimiter
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only set it when a reverse proxy overwrites those headers.
	TrustProxy bool
}

func New(
	conversationHandler *handlers.ConversationHandler,
	wsHub *websocket.Hub,
	opts Options,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	if opts.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(middleware.RequestID)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(opts.FrontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// ──── Conversation Routes ────
	r.Get("/list-conversations", conversationHandler.List)
	r.Group(func(r chi.Router) {
		if opts.SaveLimiter != nil {
			r.Use(opts.SaveLimiter.Middleware)
		}
		r.Post("/save-conversation", conversationHandler.Save)
	})

	// ──── WebSocket ────
	r.Get("/ws", wsHub.HandleWebSocket)

	// ──── Chat UI ────
	r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))

	return r
}
