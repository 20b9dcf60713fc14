package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/mcoot/crimeguessr/internal/api/apierr"
	"github.com/mcoot/crimeguessr/internal/api/handler"
	"github.com/mcoot/crimeguessr/internal/metrics"
	"github.com/mcoot/crimeguessr/internal/middleware"
	"github.com/mcoot/crimeguessr/internal/services/location"
	"github.com/mcoot/crimeguessr/internal/services/room"
	"github.com/mcoot/crimeguessr/internal/storage"
)

// RouterConfig holds configuration for the HTTP router
type RouterConfig struct {
	Logger          *slog.Logger
	Registry        *room.Registry
	LocationService *location.Service
	Storage         storage.Storage
	Metrics         *metrics.Metrics
	// WebSocket serves game connections at /ws (optional)
	WebSocket http.Handler
	// AllowedOrigins lists CORS origins; empty or "*" allows any
	AllowedOrigins []string
}

// NewRouter creates the HTTP router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.LocationService, cfg.Registry)
	roomHandler := handler.NewRoomHandler(cfg.Registry)
	gameHandler := handler.NewGameHandler(cfg.Storage)
	locationHandler := handler.NewLocationHandler(cfg.LocationService)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(middleware.Recovery(cfg.Logger, apiPanicHandler))
	r.Use(middleware.Logging(cfg.Logger))

	// API subrouter
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/locations/stats", locationHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/locations", locationHandler.Import).Methods(http.MethodPost)

	// Realtime and operational endpoints
	if cfg.WebSocket != nil {
		r.Handle("/ws", cfg.WebSocket).Methods(http.MethodGet)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	// CORS wraps the router so preflight requests are answered before route
	// method matching
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})(r)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
