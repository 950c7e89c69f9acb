// Package http serves the presenter console, the stage display sync channel
// and the recording upload endpoint.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// Requests per minute a single client may make
const requestsPerMinute = 600

// Server implements the HTTPServer interface
type Server struct {
	server     *http.Server
	listener   net.Listener
	connMgr    *ConnectionManager
	sync       ports.PresenterSync
	recordings ports.RecordingService
	history    ports.SessionHistory
	metrics    ports.MetricsRecorder
	vaultRoot  string
	config     *entities.ServerConfig
	limiter    *rateLimiter
	logger     *slog.Logger
	cancel     context.CancelFunc
	mu         sync.RWMutex
	running    bool
}

// NewServer creates a new presenter server.
// config must not be nil; use config.GetDefaultConfig().Server if needed.
func NewServer(sync ports.PresenterSync, recordings ports.RecordingService, config *entities.ServerConfig, logger *slog.Logger) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		sync:       sync,
		recordings: recordings,
		connMgr:    NewConnectionManager(),
		config:     config,
		limiter:    newRateLimiter(requestsPerMinute, time.Minute),
		logger:     logger.With("adapter", "http"),
	}
}

// SetSessionHistory enables GET /api/sessions
func (s *Server) SetSessionHistory(history ports.SessionHistory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = history
}

// SetMetrics enables request counting and GET /api/metrics.
// It must be called before Start.
func (s *Server) SetMetrics(metrics ports.MetricsRecorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = metrics
}

// SetVaultRoot enables GET /vault/{path} over the given directory
func (s *Server) SetVaultRoot(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vaultRoot = root
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	go s.connMgr.Run(runCtx)

	s.listener = listener
	s.cancel = cancel
	s.server = &http.Server{
		Handler:      s.handler(),
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	s.running = true

	go func() {
		s.logger.Info("presenter server listening", slog.String("addr", listener.Addr().String()))
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Addr returns the address the server listens on, once started
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	// Close all WebSocket connections
	s.connMgr.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)
	s.cancel()
	s.running = false
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.connMgr.Broadcast(event)
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// handler builds the routed and wrapped handler
func (s *Server) handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/deck", s.handleDeck).Methods(http.MethodGet)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/navigate", s.handleNavigate).Methods(http.MethodPost)
	api.HandleFunc("/timer", s.handleTimer).Methods(http.MethodPost)
	api.HandleFunc("/marker", s.handleMarker).Methods(http.MethodPost)
	api.HandleFunc("/theme", s.handleTheme).Methods(http.MethodPost)
	api.HandleFunc("/recording", s.handleRecording).Methods(http.MethodPost)
	api.HandleFunc("/sessions", s.handleSessions).Methods(http.MethodGet)
	api.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.PathPrefix("/vault/").Handler(http.StripPrefix("/vault/", http.HandlerFunc(s.handleVault))).Methods(http.MethodGet, http.MethodHead)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("no route for %s", r.URL.Path), http.StatusNotFound)
	})
	notAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("%s not allowed on %s", r.Method, r.URL.Path), http.StatusMethodNotAllowed)
	})

	// Subrouters do not inherit these
	router.NotFoundHandler = notFound
	router.MethodNotAllowedHandler = notAllowed
	api.NotFoundHandler = notFound
	api.MethodNotAllowedHandler = notAllowed

	// Apply middleware in order: security -> rate limiting -> logging -> recovery
	var handler http.Handler = securityHeadersMiddleware(router)
	handler = rateLimitMiddleware(handler, s.limiter)
	if s.metrics != nil {
		handler = metricsMiddleware(handler, s.metrics)
	}
	handler = loggingMiddleware(handler, s.logger)
	handler = recoveryMiddleware(handler, s.logger)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept", headerNoteTitle},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler(handler)
}

// handleVault serves files below the vault root, refusing anything outside it
func (s *Server) handleVault(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	root := s.vaultRoot
	s.mu.RUnlock()

	if root == "" {
		s.handleError(w, errors.New("no vault configured"), http.StatusNotFound)
		return
	}

	secureFileServer(root).ServeHTTP(w, r)
}

// secureFileServer creates a file server that prevents path traversal
func secureFileServer(root string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rel := filepath.FromSlash(r.URL.Path)
		if rel == "" || strings.Contains(r.URL.Path, "..") || filepath.IsAbs(rel) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		absRoot, err := filepath.Abs(root)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		absPath := filepath.Join(absRoot, filepath.Clean(rel))
		if absPath != absRoot && !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		// Hidden folders such as .obsidian stay private
		for _, part := range strings.Split(filepath.ToSlash(filepath.Clean(rel)), "/") {
			if strings.HasPrefix(part, ".") {
				http.NotFound(w, r)
				return
			}
		}

		info, err := os.Stat(absPath)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "private, max-age=60")

		http.ServeFile(w, r, absPath)
	})
}

// Ensure Server implements ports.HTTPServer
var _ ports.HTTPServer = (*Server)(nil)
