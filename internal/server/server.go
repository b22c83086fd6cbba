package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/radwayousryyy/InkCrypt/internal/config"
	"github.com/radwayousryyy/InkCrypt/internal/crypto"
	"github.com/radwayousryyy/InkCrypt/internal/logger"
	"github.com/radwayousryyy/InkCrypt/internal/metrics"
	"github.com/radwayousryyy/InkCrypt/internal/provenance"
	"github.com/radwayousryyy/InkCrypt/internal/server/handlers"
	ikmiddleware "github.com/radwayousryyy/InkCrypt/internal/server/middleware"
	"github.com/radwayousryyy/InkCrypt/internal/version"
)

type Server struct {
	// pool is nil when the memory store is used
	pool     *pgxpool.Pool
	store    provenance.Store
	identity *crypto.SigningIdentity
	config   *config.ServerEnvironment
	logger   *slog.Logger
	router   *chi.Mux
	registry *prometheus.Registry

	documents *handlers.DocumentHandler
}

func NewServer(
	pool *pgxpool.Pool,
	store provenance.Store,
	identity *crypto.SigningIdentity,
	cfg *config.ServerEnvironment,
	logger *slog.Logger,
) (*Server, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	if identity == nil {
		return nil, errors.New("signing identity is required")
	}

	server := &Server{
		pool:     pool,
		store:    provenance.WithTimeout(store, cfg.StoreOperationTimeout),
		identity: identity,
		config:   cfg,
		logger:   logger,
		router:   chi.NewRouter(),
		registry: prometheus.NewRegistry(),
	}

	server.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(server.registry)

	opts := []provenance.Option{
		provenance.WithLogger(logger),
		provenance.WithMetrics(m),
		provenance.WithRequireSignature(cfg.RequireRecordSignature),
	}
	server.documents = handlers.NewDocumentHandler(
		provenance.NewBinder(server.store, identity, opts...),
		provenance.NewVerifier(server.store, identity, opts...),
		provenance.NewRevoker(server.store, opts...),
	)

	server.setupMiddleware()
	server.registerRoutes()

	return server, nil
}

// Router returns the root handler
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(ikmiddleware.CORS(s.config.AllowedOrigins()))
	s.router.Use(ikmiddleware.SecurityHeaders(s.config.Environment))
	s.router.Use(ikmiddleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
}

func (s *Server) registerRoutes() {
	s.router.Get("/", handlers.HandleRoot)
	s.router.Get("/health/live", handlers.HandleHealth)
	s.router.Get("/health/ready", handlers.HandleReadiness(s.store, s.config.DatabasePingTimeout))
	s.router.Get("/version", handlers.HandleVersion(version.Get()))
	s.router.Get("/.well-known/jwks.json", handlers.HandleJWKS(s.identity.JWKSet()))
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	s.router.Group(func(r chi.Router) {
		r.Use(ikmiddleware.UploadLimit(s.config.MaxRequestBodySize))

		r.Post("/sign", s.documents.HandleSign)
		r.Post("/verify", s.documents.HandleVerify)
		r.Post("/revoke", s.documents.HandleRevoke)
	})
}

func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.config.Environment),
			slog.String("address", serverAddr),
			slog.String("store", s.config.Store),
			slog.String("signer", s.identity.SignerIdentity()),
			slog.String("kid", s.identity.KeyID()))

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}

func (s *Server) DatabaseShutdown() {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("database connection closed")
	}
}
