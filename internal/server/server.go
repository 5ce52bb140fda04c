// ABOUTME: Server orchestrator wiring config, store, sessions, and HTTP routes
// ABOUTME: Manages listener setup, run loop, and graceful shutdown lifecycle

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/MeghaRishabh/expense-tracker/internal/auth"
	"github.com/MeghaRishabh/expense-tracker/internal/catalog"
	"github.com/MeghaRishabh/expense-tracker/internal/config"
	"github.com/MeghaRishabh/expense-tracker/internal/session"
	"github.com/MeghaRishabh/expense-tracker/internal/store"
)

// Server orchestrates the expense tracker components: the SQLite store,
// the session manager, and the HTTP API.
type Server struct {
	config     *config.Config
	store      store.Store
	sessions   *session.Manager
	categories []catalog.Category
	httpServer *http.Server
	logger     *slog.Logger
}

// initStore opens the SQLite store at the configured path.
func initStore(cfg *config.Config) (store.Store, error) {
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// initCatalog loads the category catalog, falling back to the built-in
// list when no file is configured.
func initCatalog(cfg *config.Config, logger *slog.Logger) ([]catalog.Category, error) {
	if cfg.Categories.Path == "" {
		return catalog.Default(), nil
	}
	categories, err := catalog.Load(cfg.Categories.Path)
	if err != nil {
		return nil, fmt.Errorf("loading category catalog: %w", err)
	}
	logger.Info("loaded category catalog", "path", cfg.Categories.Path, "count", len(categories))
	return categories, nil
}

// New creates a new Server instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewService([]byte(cfg.Auth.AccessSecret), []byte(cfg.Auth.RefreshSecret))
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	categories, err := initCatalog(cfg, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	srv := &Server{
		config:     cfg,
		store:      s,
		sessions:   session.NewManager(s, tokens, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL),
		categories: categories,
		logger:     logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	srv.registerRoutes(mux, tokens)

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.buildHandler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

// registerRoutes wires the public endpoints and the guarded /auth/ surface.
func (s *Server) registerRoutes(mux *http.ServeMux, verifier auth.TokenVerifier) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/categories", s.handleCategories)

	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/refresh", s.handleRefresh)
	mux.HandleFunc("/logout", s.handleLogout)

	guard := auth.RequireAuth(verifier, s.logger)
	mux.Handle("/auth/create", guard(http.HandlerFunc(s.handleCreateTransaction)))
	mux.Handle("/auth/transactions", guard(http.HandlerFunc(s.handleListTransactions)))
	mux.Handle("/auth/update/", guard(http.HandlerFunc(s.handleUpdateTransaction)))
	mux.Handle("/auth/delete/", guard(http.HandlerFunc(s.handleDeleteTransaction)))
	mux.Handle("/auth/budgets", guard(http.HandlerFunc(s.handleBudgets)))
	mux.Handle("/auth/budgets/", guard(http.HandlerFunc(s.handleBudgetByCategory)))
	mux.Handle("/auth/export", guard(http.HandlerFunc(s.handleExport)))

	// Everything else is a JSON 404, matching the API's error shape.
	mux.HandleFunc("/", s.handleNotFound)
}

// buildHandler wraps the mux in the middleware chain.
func (s *Server) buildHandler(mux *http.ServeMux) http.Handler {
	return recovery(s.logger)(
		requestLogging(s.logger)(
			requestID(
				cors(s.config.Server.CORSOrigin)(mux),
			),
		),
	)
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting server", "http_addr", s.config.Server.HTTPAddr)

	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := s.startServer(ln)
	serverErr := s.waitForShutdownSignal(ctx, errCh)

	shutdownErr := s.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// startServer starts the HTTP server in a goroutine, returning its error channel.
func (s *Server) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (s *Server) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is
// already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown gracefully stops the HTTP server and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))
	errs = appendCloseError(errs, "store close", s.store.Close())

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleCategories serves the category suggestion list.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.categories)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}
