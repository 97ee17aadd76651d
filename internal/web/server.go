package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zendhq/zend-site/internal/logger"
)

// DefaultPageTimeout bounds page requests when Config.PageTimeout is unset.
const DefaultPageTimeout = 30 * time.Second

// Config holds server configuration
type Config struct {
	Port        int
	StaticDir   string // served under /static; empty serves the built-in assets
	Version     string
	PageTimeout time.Duration // must exceed the stats wait of the page handlers
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	pages      chi.Router // routes that get the page timeout and compression
	httpServer *http.Server
	config     *Config
	mu         sync.Mutex
	listener   net.Listener
	hub        *Hub // WebSocket Hub
	log        *logger.Logger
}

// NewServer creates a new HTTP server. hub may be nil when live sessions
// are not served.
func NewServer(cfg *Config, log *logger.Logger, hub *Hub) *Server {
	if log == nil {
		log = logger.Get()
	}

	srv := &Server{
		router: chi.NewRouter(),
		config: cfg,
		hub:    hub,
		log:    log.Component("web"),
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	return srv
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.RequestLogger(s.log))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	// websocket routes stay off s.pages: a request timeout would cut
	// long-lived connections
	timeout := s.config.PageTimeout
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}
	s.pages = s.router.With(middleware.Timeout(timeout), middleware.Compress(5))

	var static http.Handler
	if s.config.StaticDir != "" {
		static = http.FileServer(http.Dir(s.config.StaticDir))
	} else {
		static = http.FileServerFS(StaticFS())
	}
	s.pages.Handle("/static/*", http.StripPrefix("/static/", static))

	// Health endpoint
	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		version := s.config.Version
		if version == "" {
			version = "dev"
		}
		live := 0
		if s.hub != nil {
			live = s.hub.Clients()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"status":        "ok",
			"version":       version,
			"live_sessions": live,
		}); err != nil {
			_ = err // Client disconnected
		}
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = httpServer
	s.mu.Unlock()

	s.log.Info().Str("addr", listener.Addr().String()).Msg("web server listening")
	return httpServer.Serve(listener)
}

// Stop tells live clients the server is going away, disconnects them and
// gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Broadcast(ServerShutdownEvent())
		s.hub.Stop()
	}
	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()
	if httpServer != nil {
		return httpServer.Shutdown(ctx)
	}
	return nil
}

// BaseURL returns the server's base URL
func (s *Server) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Sprintf("http://%s", s.listener.Addr().String())
	}
	return fmt.Sprintf("http://localhost:%d", s.config.Port)
}

// RegisterPagesHandler registers the HTML page handlers
func (s *Server) RegisterPagesHandler(handler interface{}) {
	type pagesHandler interface {
		Home(w http.ResponseWriter, r *http.Request)
		Stats(w http.ResponseWriter, r *http.Request)
		Zendit(w http.ResponseWriter, r *http.Request)
	}

	if h, ok := handler.(pagesHandler); ok {
		s.pages.Get("/", h.Home)
		s.pages.Get("/stats", h.Stats)
		s.pages.Get("/zendit", h.Zendit)
	}
}

// RegisterLiveHandler registers the live stats websocket endpoint
func (s *Server) RegisterLiveHandler(handler http.Handler) {
	s.router.Handle("/ws/stats", handler)
}

// Router returns the underlying Chi router for external route mounting.
func (s *Server) Router() *chi.Mux {
	return s.router
}
