package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/textchan-dev/textchan/backend/internal/setup"
	mw "github.com/textchan-dev/textchan/shared/middleware"
	"github.com/textchan-dev/textchan/shared/middleware/metrics"
	rl "github.com/textchan-dev/textchan/shared/middleware/ratelimiter"
)

// New creates the chi router with all the routes.
// The stream route is kept outside compression and the body limit.
func New(deps *setup.Dependencies) http.Handler {
	cfg := deps.Config.Public
	h := deps.Handler

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(mw.RequestLog)
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CorsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// one bucket per client IP shared by threads and replies
	var postLimiter *rl.KeyedRateLimiter
	if cfg.RateLimit.PostsPerSecond > 0 {
		postLimiter = rl.New(cfg.RateLimit.PostsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.Expiration)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/threads/stream", h.StreamThreads)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Compress(5))
			r.Use(middleware.RequestSize(cfg.MaxRequestBodyBytes))

			r.Get("/status", h.GetStatus)
			r.Get("/threads", h.GetThreads)
			r.Get("/threads/{thread}/replies", h.GetReplies)

			r.With(mw.PostingRateLimit(postLimiter)).Post("/threads", h.CreateThread)
			r.With(mw.PostingRateLimit(postLimiter)).Post("/threads/{thread}/replies", h.CreateReply)
		})
	})

	return r
}
