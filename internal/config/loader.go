package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "glamsite.yaml"

// minSecretLen is the shortest session secret accepted for HS256 signing.
const minSecretLen = 32

// minRevocationCacheBytes is the smallest revocation list the cache can size.
const minRevocationCacheBytes = 1024

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	path := DefaultConfigFile
	if p := os.Getenv("GLAMSITE_CONFIG"); p != "" {
		path = p
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)
	deriveBlobBaseURL(&cfg.Blob)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "GLAMSITE_PORT")
	setString(&cfg.Server.StaticDir, "GLAMSITE_STATIC_DIR")
	setInt64(&cfg.Server.MaxBodyBytes, "GLAMSITE_MAX_BODY_BYTES")
	setBool(&cfg.Server.TrustProxy, "GLAMSITE_TRUST_PROXY")

	// Blob: the bare BLOB_* names are what existing deployments already export.
	setString(&cfg.Blob.Driver, "GLAMSITE_BLOB_DRIVER")
	setString(&cfg.Blob.Bucket, "BLOB_BUCKET")
	setString(&cfg.Blob.Bucket, "GLAMSITE_BLOB_BUCKET")
	setString(&cfg.Blob.BaseURL, "BLOB_BASE_URL")
	setString(&cfg.Blob.BaseURL, "GLAMSITE_BLOB_BASE_URL")
	setString(&cfg.Blob.Token, "BLOB_READ_WRITE_TOKEN")
	setString(&cfg.Blob.Token, "GLAMSITE_BLOB_TOKEN")
	setString(&cfg.Blob.TokenFile, "GLAMSITE_BLOB_TOKEN_FILE")
	setDuration(&cfg.Blob.Timeout, "GLAMSITE_BLOB_TIMEOUT")
	setString(&cfg.Blob.NATSURL, "NATS_URL")
	setString(&cfg.Blob.NATSBucket, "GLAMSITE_NATS_BUCKET")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "GLAMSITE_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "GLAMSITE_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "GLAMSITE_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "GLAMSITE_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "GLAMSITE_PG_HEALTH_CHECK")

	setInt(&cfg.Breaker.MaxFailures, "GLAMSITE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "GLAMSITE_BREAKER_TIMEOUT")

	setFloat64(&cfg.Rate.RequestsPerSecond, "GLAMSITE_RATE_RPS")
	setInt(&cfg.Rate.Burst, "GLAMSITE_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "GLAMSITE_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "GLAMSITE_RATE_MAX_IDLE_TIME")

	setBool(&cfg.Auth.Enabled, "GLAMSITE_AUTH_ENABLED")
	setString(&cfg.Auth.SessionSecret, "GLAMSITE_SESSION_SECRET")
	setString(&cfg.Auth.AdminPasswordHash, "GLAMSITE_ADMIN_PASSWORD_HASH")
	setDuration(&cfg.Auth.SessionTTL, "GLAMSITE_SESSION_TTL")
	setString(&cfg.Auth.CookieName, "GLAMSITE_COOKIE_NAME")
	setBool(&cfg.Auth.SecureCookie, "GLAMSITE_SECURE_COOKIE")
	setInt64(&cfg.Auth.RevocationCacheBytes, "GLAMSITE_REVOCATION_CACHE_BYTES")

	setBool(&cfg.Content.StrictShapes, "GLAMSITE_CONTENT_STRICT_SHAPES")

	setString(&cfg.Logging.Level, "GLAMSITE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "GLAMSITE_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "GLAMSITE_LOG_ASYNC")

	setBool(&cfg.OTEL.Enabled, "GLAMSITE_OTEL_ENABLED")
	setString(&cfg.OTEL.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.OTEL.Insecure, "GLAMSITE_OTEL_INSECURE")
	setString(&cfg.OTEL.Service, "OTEL_SERVICE_NAME")
}

// deriveBlobBaseURL fills in the public store address from the bucket name.
func deriveBlobBaseURL(b *Blob) {
	if b.BaseURL == "" && b.Bucket != "" {
		b.BaseURL = "https://" + b.Bucket + ".public.blob.vercel-storage.com"
	}
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Server.MaxBodyBytes < 1 {
		return errors.New("server.max_body_bytes must be >= 1")
	}

	switch cfg.Blob.Driver {
	case BlobDriverHTTP:
		if cfg.Blob.BaseURL == "" {
			return errors.New("blob.base_url or blob.bucket is required for the http driver")
		}
	case BlobDriverNATS:
		if cfg.Blob.NATSURL == "" {
			return errors.New("blob.nats_url is required for the nats driver")
		}
		if cfg.Blob.NATSBucket == "" {
			return errors.New("blob.nats_bucket is required for the nats driver")
		}
	case BlobDriverPostgres:
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres driver")
		}
		if cfg.Postgres.MaxConns < 1 {
			return errors.New("postgres.max_conns must be >= 1")
		}
	case BlobDriverMemory:
	default:
		return fmt.Errorf("blob.driver %q is not one of http, nats, postgres, memory", cfg.Blob.Driver)
	}

	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.RequestsPerSecond <= 0 {
		return errors.New("rate.requests_per_second must be > 0")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}

	if cfg.Auth.Enabled {
		if len(cfg.Auth.SessionSecret) < minSecretLen {
			return fmt.Errorf("auth.session_secret must be at least %d bytes", minSecretLen)
		}
		if cfg.Auth.SessionTTL <= 0 {
			return errors.New("auth.session_ttl must be > 0")
		}
		if cfg.Auth.RevocationCacheBytes < minRevocationCacheBytes {
			return fmt.Errorf("auth.revocation_cache_bytes must be >= %d", minRevocationCacheBytes)
		}
	}
	if cfg.Auth.CookieName == "" {
		return errors.New("auth.cookie_name is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
