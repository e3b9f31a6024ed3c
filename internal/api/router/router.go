package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/kleanhub/laundry-orders/internal/http/middleware"
	"github.com/kleanhub/laundry-orders/internal/orders"
	"github.com/kleanhub/laundry-orders/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	OrdersHandler      *orders.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	BodyLimitBytes     int64
	RateLimitPerSec    float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.BodyLimitBytes > 0 {
		r.Use(httpmiddleware.BodyLimit(cfg.BodyLimitBytes))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/orders", func(api chi.Router) {
		if cfg.RateLimitPerSec > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
		}
		// HandleFunc rather than Post so the handler owns the 405 shape
		// for non-POST methods.
		api.HandleFunc("/pickup", cfg.OrdersHandler.CreatePickupOrder)
	})

	return r
}
