package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-fuego/fuego"
	"github.com/go-fuego/fuego/option"

	"github.com/zendhq/zend-site/internal/logger"
	"github.com/zendhq/zend-site/internal/viewmodel"
)

// DefaultStatsWait bounds how long /api/v1/stats waits for the upstream.
const DefaultStatsWait = 15 * time.Second

// Server represents the Fuego API server.
type Server struct {
	fuego   *fuego.Server
	deps    *Dependencies
	config  *Config
	log     *logger.Logger
	handler http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// Dependencies contains all service dependencies.
type Dependencies struct {
	Fetcher   StatsFetcher
	Presenter viewmodel.Presenter
	Live      LiveCounter // optional
}

// Config holds API server configuration.
type Config struct {
	Port           int
	Title          string
	Description    string
	Version        string
	AllowedOrigins []string      // CORS; empty allows any origin
	StatsWait      time.Duration // <= 0 means DefaultStatsWait
}

// NewServer creates a new Fuego API server.
func NewServer(cfg *Config, deps *Dependencies, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Get()
	}
	if cfg.StatsWait <= 0 {
		cfg.StatsWait = DefaultStatsWait
	}

	s := fuego.NewServer(
		fuego.WithAddr(fmt.Sprintf(":%d", cfg.Port)),
		fuego.WithEngineOptions(
			fuego.WithOpenAPIConfig(fuego.OpenAPIConfig{
				PrettyFormatJSON: true,
				SwaggerURL:       "/docs",
				SpecURL:          "/openapi.json",
				UIHandler: func(specURL string) http.Handler {
					return ScalarHandler(specURL, cfg.Title, cfg.Description)
				},
			}),
		),
	)

	// Set OpenAPI info
	s.OpenAPI.Description().Info.Title = cfg.Title
	s.OpenAPI.Description().Info.Description = cfg.Description
	s.OpenAPI.Description().Info.Version = cfg.Version

	srv := &Server{
		fuego:  s,
		deps:   deps,
		config: cfg,
		log:    log.Component("api"),
	}

	// Add Chi middleware (Fuego is net/http compatible)
	fuego.Use(s, middleware.RequestID)
	fuego.Use(s, middleware.RealIP)
	fuego.Use(s, logger.RequestLogger(srv.log))
	fuego.Use(s, middleware.Recoverer)

	srv.registerRoutes()

	// CORS wraps the whole mux so preflight requests for any route are
	// answered before routing
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	srv.handler = cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})(s.Mux)

	return srv
}

func (s *Server) registerRoutes() {
	// Health check
	fuego.Get(s.fuego, "/health", s.healthCheck,
		option.Summary("Health Check"),
		option.Description("Returns the health status of the API"),
		option.Tags("System"),
	)

	// Stats API
	statsGroup := fuego.Group(s.fuego, "/api/v1",
		option.Tags("Stats"),
	)

	fuego.Get(statsGroup, "/stats", s.getStats,
		option.Summary("Get Stats Page"),
		option.Description("Fetches one page of platform statistics and returns it presented for display: overview cards, transaction rows, pagination controls and chart data"),
		option.Query("page", "Page number (1-indexed, default: 1)"),
		option.Query("limit", "Transactions per page: 5, 10, 20 or 50 (default: 10)"),
	)

	fuego.Get(statsGroup, "/pagination", s.getPagination,
		option.Summary("Get Page Controls"),
		option.Description("Returns the page buttons and ellipses shown for a page window"),
		option.Query("current", "Current page (required)"),
		option.Query("total", "Total pages (required, >= 1)"),
	)

	// Docs are served by the server itself, Run is never called
	scalar := ScalarHandler("/openapi.json", s.config.Title, s.config.Description)
	s.fuego.Mux.Handle("GET /docs", scalar)
	s.fuego.Mux.HandleFunc("GET /openapi.json", s.serveSpec)
}

// Start starts the API server.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = httpServer
	s.mu.Unlock()

	s.log.Info().Str("addr", listener.Addr().String()).Msg("api server listening")
	return httpServer.Serve(listener)
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()
	if httpServer == nil {
		return nil
	}
	return httpServer.Shutdown(ctx)
}

// Handler returns the API with CORS applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Mux returns the underlying ServeMux for mounting additional routes.
func (s *Server) Mux() *http.ServeMux {
	return s.fuego.Mux
}

// MountDocsOn mounts the OpenAPI documentation routes (/docs, /openapi.json)
// on a Chi router. This allows using Fuego's OpenAPI generation with an
// existing router.
func (s *Server) MountDocsOn(r interface {
	Get(pattern string, handlerFn http.HandlerFunc)
}) {
	scalar := ScalarHandler("/openapi.json", s.config.Title, s.config.Description)
	r.Get("/docs", scalar.ServeHTTP)
	r.Get("/openapi.json", s.serveSpec)
}

func (s *Server) serveSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	spec := s.fuego.OpenAPI.Description()
	if err := json.NewEncoder(w).Encode(spec); err != nil {
		http.Error(w, "Failed to encode OpenAPI spec", http.StatusInternalServerError)
	}
}
