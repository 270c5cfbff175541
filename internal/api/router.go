package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"furniture-catalog/internal/logger"
)

// Metrics instruments requests and serves the scrape endpoint.
type Metrics interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

// RouterConfig holds the options for NewRouter.
type RouterConfig struct {
	Log            *slog.Logger
	Metrics        Metrics
	AllowedOrigins []string
	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit     int
	IsDevelopment bool
}

// NewRouter wires the middleware stack around h's routes.
// /metrics sits outside the rate limit and CORS.
func NewRouter(h *HTTPHandler, cfg RouterConfig) *chi.Mux {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	sec := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      cfg.IsDevelopment,
	})

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		logger.Recovery(cfg.Log),
		logger.Middleware(cfg.Log),
	)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(sec.Handler)
		r.Use(corsMiddleware(cfg.AllowedOrigins))
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
		}
		r.Use(middleware.Timeout(60 * time.Second))
		h.RegisterRoutes(r)
	})
	return r
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         300,
	})
}
