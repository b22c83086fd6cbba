package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/radwayousryyy/InkCrypt/internal/config"
	"github.com/radwayousryyy/InkCrypt/internal/crypto"
	"github.com/radwayousryyy/InkCrypt/internal/database"
	"github.com/radwayousryyy/InkCrypt/internal/logger"
	"github.com/radwayousryyy/InkCrypt/internal/provenance"
	"github.com/radwayousryyy/InkCrypt/internal/server"
	"github.com/radwayousryyy/InkCrypt/internal/version"
)

//	@title			inkcrypt-server
//	@description	inkcrypt-server establishes provenance for PDF documents.
//	@description
//	@description	A document is signed by binding it to a new identifier: the server records a fingerprint of the
//	@description	document's page content and embeds the identifier in the document metadata.
//	@description	Anyone holding a copy can later ask the server whether it is the same document and whether it is still trusted.
//	@description
//	@description	## Common Error Responses
//	@description	All endpoints may return:
//	@description	- `413` Request body exceeds size limit
//	@description	- `429` Rate limit exceeded
//	@description	- `500` Internal server error
//	@description
//	@description	Individual endpoints document their specific errors.
//	@description
//	@description	## Request Limits
//	@description	All endpoints are protected by:
//	@description	- **Rate limiting**: Configurable requests per second (see env vars) - default 100 rps (set to 0 to disable)
//	@description	- **Request size limits**: Configurable (see env vars) - default 20MB
//	@description
//	@description	Check the X-Max-Request-Size response header for the configured limit on uploads.
//	@description
//	@description	## Authentication & Authorization
//	@description
//	@description	The InkCrypt API does not require credentials. In a production deployment the sign and revoke
//	@description	endpoints should be placed behind an authenticating proxy.
//	@description
//	@license.name	MIT

//	@servers.url			http://localhost:8000
//	@servers.description	Development server

//	@accept		json
//	@produce	json

//	@tag.name			Documents
//	@tag.description	Sign, verify and revoke PDF documents

//	@tag.name			Common
//	@tag.description	Server API endpoints (jwks, health, readiness, version, etc.)

func main() {
	cmd := &cobra.Command{
		Use:   "inkcrypt-server",
		Short: "InkCrypt document provenance server",
		Long:  `InkCrypt server signs PDF documents with an embedded identifier and verifies them against the recorded fingerprint`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("STORE", cfg.Store),
		slog.Bool("RUN_MIGRATIONS", cfg.RunMigrations),
		slog.String("KEYS_DIR", cfg.KeysDir),
		slog.String("KEY_TYPE", cfg.KeyType),
		slog.String("SIGNER_COMMON_NAME", cfg.SignerCommonName),
		slog.Bool("REQUIRE_RECORD_SIGNATURE", cfg.RequireRecordSignature),
		slog.Int64("MAX_REQUEST_BODY_SIZE", cfg.MaxRequestBodySize),
	)

	identity, err := crypto.EnsureSigningIdentity(crypto.KeyManagerConfig{
		KeysDir:      cfg.KeysDir,
		KeyType:      crypto.KeyType(cfg.KeyType),
		RSAKeySize:   cfg.RSAKeySize,
		CommonName:   cfg.SignerCommonName,
		Organization: cfg.SignerOrganization,
		Validity:     cfg.CertValidity,
	}, appLogger)
	if err != nil {
		appLogger.Error("Failed to load signing identity", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var (
		pool  *pgxpool.Pool
		store provenance.Store
	)

	switch cfg.Store {
	case config.StorePostgres:
		pool, err = connectDatabase(cfg, appLogger)
		if err != nil {
			appLogger.Error("Database setup failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		// get the sqlc generated database queries
		store = provenance.NewPostgresStore(database.New(pool))
	case config.StoreMemory:
		appLogger.Warn("using in-memory record store: records are lost on restart")
		store = provenance.NewMemoryStore()
	}

	appLogger.Info("Starting server", slog.String("version", version.Get().Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// configure the server
	server, err := server.NewServer(
		pool,
		store,
		identity,
		cfg,
		appLogger,
	)
	if err != nil {
		appLogger.Error("Failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer server.DatabaseShutdown()

	// start the server
	if err := server.Start(ctx); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}

// connectDatabase opens the connection pool and applies pending migrations
func connectDatabase(cfg *config.ServerEnvironment, appLogger *slog.Logger) (*pgxpool.Pool, error) {
	dbCtx, dbCancel := context.WithTimeout(context.Background(), cfg.DatabasePingTimeout)
	defer dbCancel()

	pool, err := database.NewPool(dbCtx, database.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConnections,
		MinConns:        cfg.DBMinConnections,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		ConnectTimeout:  cfg.DBConnectTimeout,
	})
	if err != nil {
		return nil, err
	}

	appLogger.Info("connected to PostgreSQL")

	if cfg.RunMigrations {
		if err := database.Migrate(dbCtx, pool, appLogger); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}
