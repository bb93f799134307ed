// ABOUTME: taskd HTTP server that wires config, store, services, and routes
// ABOUTME: Manages TCP or Tailscale listeners, health endpoints, and graceful shutdown

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/2389/taskd/internal/auth"
	"github.com/2389/taskd/internal/config"
	"github.com/2389/taskd/internal/dedupe"
	"github.com/2389/taskd/internal/store"
	"github.com/2389/taskd/internal/tasks"
)

// Server serves the taskd REST API.
type Server struct {
	config      *config.Config
	store       store.Store
	auth        *auth.Service
	tasks       *tasks.Service
	idempotency *dedupe.Cache
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger
}

// initStore opens the SQLite store named by the config.
func initStore(cfg *config.Config) (store.Store, error) {
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// New creates a Server backed by the SQLite database in cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}
	srv, err := NewWithStore(cfg, s, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return srv, nil
}

// NewWithStore creates a Server on top of an already opened store. The
// server takes ownership of st and closes it on Shutdown.
func NewWithStore(cfg *config.Config, st store.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost, cfg.Auth.HashConcurrency)
	if err != nil {
		return nil, fmt.Errorf("creating password hasher: %w", err)
	}
	tokens, err := auth.NewJWTService([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	idempotency := dedupe.New(cfg.Server.IdempotencyTTL, dedupe.DefaultMaxSize)

	srv := &Server{
		config:      cfg,
		store:       st,
		auth:        auth.NewService(st, hasher, tokens, logger.With("component", "auth")),
		tasks:       tasks.NewService(st, logger.With("component", "tasks")).WithIdempotency(idempotency),
		idempotency: idempotency,
		logger:      logger.With("component", "server"),
	}

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return srv, nil
}

// Handler returns the complete HTTP handler: routes wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/ready", s.handleReady)

	// Auth endpoints
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	// Everything below requires a valid bearer token
	requireUser := auth.RequireUser(s.auth)
	mux.Handle("GET /auth/me", requireUser(http.HandlerFunc(s.handleMe)))
	mux.Handle("POST /tasks", requireUser(http.HandlerFunc(s.handleCreateTask)))
	mux.Handle("GET /tasks", requireUser(http.HandlerFunc(s.handleListTasks)))
	mux.Handle("POST /tasks/delete", requireUser(http.HandlerFunc(s.handleBulkDelete)))
	mux.Handle("GET /tasks/{id}", requireUser(http.HandlerFunc(s.handleGetTask)))
	mux.Handle("PATCH /tasks/{id}", requireUser(http.HandlerFunc(s.handleUpdateTask)))
	mux.Handle("DELETE /tasks/{id}", requireUser(http.HandlerFunc(s.handleDeleteTask)))

	return chain(mux,
		requestID(),
		accessLog(s.logger),
		recoverPanic(s.logger),
		cors(s.config.Server.CORSOrigins),
	)
}

// setupTCPListener creates a standard TCP listener for HTTP.
func (s *Server) setupTCPListener() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// setupListener creates a listener based on configuration (Tailscale or TCP).
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		if s.config.Server.HTTPAddr != "" {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled",
				"http_addr", s.config.Server.HTTPAddr,
			)
		}
		return s.setupTailscaleListener(ctx)
	}
	return s.setupTCPListener()
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown (context canceled), or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		s.idempotency.Close()
		_ = s.store.Close()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout,
// since the caller's context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "taskd", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

// setupTailscaleListener starts a tsnet node and returns its HTTP listener.
func (s *Server) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := s.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	s.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	s.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := s.tsnetServer.Up(ctx)
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	s.logTailscaleStatus(tsCfg.Hostname, status)

	return s.createTailscaleHTTPListener(tsCfg)
}

// logTailscaleStatus logs info about the tailscale node status.
func (s *Server) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		s.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	s.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// createTailscaleHTTPListener creates the appropriate HTTP listener based on config.
func (s *Server) createTailscaleHTTPListener(tsCfg config.TailscaleConfig) (net.Listener, error) {
	switch {
	case tsCfg.Funnel:
		s.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := s.tsnetServer.ListenFunnel("tcp", ":443")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale funnel port: %w", err)
		}
		return ln, nil
	case tsCfg.HTTPS:
		return s.createTailscaleTLSListener()
	default:
		ln, err := s.tsnetServer.Listen("tcp", ":80")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
		}
		return ln, nil
	}
}

// createTailscaleTLSListener creates a TLS listener using Tailscale's auto-provisioned certs.
func (s *Server) createTailscaleTLSListener() (net.Listener, error) {
	s.logger.Info("enabling HTTPS with Tailscale certs on :443")
	ln, err := s.tsnetServer.Listen("tcp", ":443")
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTPS port: %w", err)
	}
	lc, err := s.tsnetServer.LocalClient()
	if err != nil {
		_ = ln.Close()
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("getting tailscale local client: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		GetCertificate: lc.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}), nil
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown gracefully stops the HTTP server and releases resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))
	if s.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", s.tsnetServer.Close())
	}
	s.idempotency.Close()
	errs = appendCloseError(errs, "store close", s.store.Close())

	return errors.Join(errs...)
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK if the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
