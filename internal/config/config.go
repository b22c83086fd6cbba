package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

// Environment variables with defaults
type ServerEnvironment struct {

	// http server settings
	Environment           string        `env:"ENVIRONMENT,default=dev"`
	Host                  string        `env:"HOST,default=0.0.0.0"`
	Port                  int           `env:"PORT,default=8000"`
	LogLevel              string        `env:"LOG_LEVEL,default=debug"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	ReadTimeout           time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	RateLimitRPS          int32         `env:"RATE_LIMIT_RPS,default=100"`
	RateLimitBurst        int32         `env:"RATE_LIMIT_BURST,default=200"`
	MaxRequestBodySize    int64         `env:"MAX_REQUEST_BODY_SIZE,default=20971520"`
	CORSAllowedOrigins    string        `env:"CORS_ALLOWED_ORIGINS,default=*"`

	// record store settings
	Store                 string        `env:"STORE,default=postgres"`
	DatabaseURL           string        `env:"DATABASE_URL"`
	RunMigrations         bool          `env:"RUN_MIGRATIONS,default=true"`
	StoreOperationTimeout time.Duration `env:"STORE_OPERATION_TIMEOUT,default=5s"`
	DBMaxConnections      int32         `env:"DB_MAX_CONNECTIONS,default=4"`
	DBMinConnections      int32         `env:"DB_MIN_CONNECTIONS,default=0"`
	DBMaxConnLifetime     time.Duration `env:"DB_MAX_CONN_LIFETIME,default=60m"`
	DBMaxConnIdleTime     time.Duration `env:"DB_MAX_CONN_IDLE_TIME,default=30m"`
	DBConnectTimeout      time.Duration `env:"DB_CONNECT_TIMEOUT,default=5s"`
	DatabasePingTimeout   time.Duration `env:"DATABASE_PING_TIMEOUT,default=10s"`

	// signing identity (key material is created on first start if it does not exist)
	KeysDir                string        `env:"KEYS_DIR,default=./certs"`
	KeyType                string        `env:"KEY_TYPE,default=ed25519"`
	RSAKeySize             int           `env:"RSA_KEY_SIZE,default=2048"`
	SignerCommonName       string        `env:"SIGNER_COMMON_NAME,default=InkCrypt Signer"`
	SignerOrganization     string        `env:"SIGNER_ORGANIZATION,default=InkCrypt"`
	CertValidity           time.Duration `env:"CERT_VALIDITY,default=8760h"`
	RequireRecordSignature bool          `env:"REQUIRE_RECORD_SIGNATURE,default=false"`
}

// AllowedOrigins returns CORS_ALLOWED_ORIGINS split on commas
func (cfg *ServerEnvironment) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(cfg.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// ClientEnvironment is used by the inkcrypt CLI
type ClientEnvironment struct {
	ServerURL string        `env:"INKCRYPT_SERVER_URL,default=http://127.0.0.1:8000"`
	LogLevel  string        `env:"LOG_LEVEL,default=warn"`
	Timeout   time.Duration `env:"CLIENT_TIMEOUT,default=60s"`
}

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

// NewServerConfig loads environment variables and returns a ServerEnvironment struct that contains the values
func NewServerConfig() (*ServerEnvironment, error) {
	var cfg ServerEnvironment

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewClientConfig loads the CLI configuration from the environment
func NewClientConfig() (*ClientEnvironment, error) {
	var cfg ClientEnvironment

	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("INKCRYPT_SERVER_URL must not be empty")
	}
	return &cfg, nil
}

// validateConfig checks for required env variables
func validateConfig(cfg *ServerEnvironment) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}
	if cfg.MaxRequestBodySize < 1 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be at least 1")
	}

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE=%s", StorePostgres)
		}
	case StoreMemory:
		if cfg.Environment == "prod" {
			return fmt.Errorf("STORE=%s is not allowed in prod (records would not be durable)", StoreMemory)
		}
	default:
		return fmt.Errorf("invalid STORE: %s (must be %s or %s)", cfg.Store, StorePostgres, StoreMemory)
	}

	// Validate database pool configuration
	if cfg.DBMaxConnections < 1 {
		return fmt.Errorf("DB_MAX_CONNECTIONS must be at least 1")
	}
	if cfg.DBMinConnections < 0 {
		return fmt.Errorf("DB_MIN_CONNECTIONS must be 0 or greater")
	}
	if cfg.DBMinConnections > cfg.DBMaxConnections {
		return fmt.Errorf("DB_MIN_CONNECTIONS (%d) cannot be greater than DB_MAX_CONNECTIONS (%d)",
			cfg.DBMinConnections, cfg.DBMaxConnections)
	}
	if cfg.StoreOperationTimeout <= 0 {
		return fmt.Errorf("STORE_OPERATION_TIMEOUT must be greater than 0")
	}

	switch cfg.KeyType {
	case "ed25519":
	case "rsa":
		if cfg.RSAKeySize != 2048 && cfg.RSAKeySize != 4096 {
			return fmt.Errorf("RSA_KEY_SIZE must be 2048 or 4096, got %d", cfg.RSAKeySize)
		}
	default:
		return fmt.Errorf("invalid KEY_TYPE: %s (must be ed25519 or rsa)", cfg.KeyType)
	}
	if cfg.KeysDir == "" {
		return fmt.Errorf("KEYS_DIR must not be empty")
	}
	if cfg.SignerCommonName == "" {
		return fmt.Errorf("SIGNER_COMMON_NAME must not be empty")
	}
	if cfg.CertValidity < time.Hour {
		return fmt.Errorf("CERT_VALIDITY must be at least 1h")
	}

	return nil
}
