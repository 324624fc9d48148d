// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration shared by both the ingestion daemon (cmd/ingestd)
// and the read API (cmd/apid). Each binary only reads the fields it needs.
type Config struct {
	// Database settings.
	DatabaseURL  string // Postgres URL, possibly behind a transaction-mode pooler.
	DBPassword   string // Merged into DatabaseURL if the URL has no password.
	IngestMinConns int32
	IngestMaxConns int32
	APIMinConns    int32
	APIMaxConns    int32

	// Ingestion settings.
	SourceURLs         []string
	DryRun             bool
	FetchTimeout       time.Duration
	TxTimeout          time.Duration
	IngestInterval     time.Duration // 0 disables the ticker; a single pass runs once.

	// Read API server settings.
	HTTPAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Auth settings.
	JWTSigningKey string
	AuthDisabled  bool
	AdminKeyHash  string // Argon2id hash, see internal/auth/hash.go.
	ReadOnlyHash  string

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// CORS settings.
	CORSAllowedOrigins []string

	// Operational settings.
	LogLevel            string
	LogFormat           string // "json" or "text"
	MaxRequestBodyBytes int64
	StalenessPollInterval time.Duration
	ExportRowLimit      int
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if any environment variable contains an unparseable value
// or if Validate rejects the result. Missing variables use sensible defaults,
// except JWT_SIGNING_KEY, which Validate requires unless AUTH_DISABLED=true.
func Load() (Config, error) {
	var errs []error
	cfg := Config{
		DatabaseURL:   envStr("DATABASE_URL", ""),
		DBPassword:    envStr("DB_PASSWORD", ""),
		SourceURLs:    envStrSlice("INGEST_SOURCE_URLS", nil),
		HTTPAddr:      envStr("HTTP_ADDR", ":8080"),
		JWTSigningKey: envStr("JWT_SIGNING_KEY", ""),
		AdminKeyHash:  envStr("APID_ADMIN_KEY_HASH", ""),
		ReadOnlyHash:  envStr("APID_READONLY_KEY_HASH", ""),
		OTELEndpoint:  envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:   envStr("OTEL_SERVICE_NAME", "meetsum"),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		LogFormat:     envStr("LOG_FORMAT", "json"),
		CORSAllowedOrigins: envStrSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	cfg.DryRun, errs = collectBool(errs, "INGEST_DRY_RUN", false)
	cfg.AuthDisabled, errs = collectBool(errs, "AUTH_DISABLED", false)
	cfg.OTELInsecure, errs = collectBool(errs, "OTEL_EXPORTER_OTLP_INSECURE", false)

	var ingestMin, ingestMax, apiMin, apiMax int
	ingestMin, errs = collectInt(errs, "INGESTD_DB_POOL_MIN_CONNS", 1)
	ingestMax, errs = collectInt(errs, "INGESTD_DB_POOL_MAX_CONNS", 5)
	apiMin, errs = collectInt(errs, "APID_DB_POOL_MIN_CONNS", 5)
	apiMax, errs = collectInt(errs, "APID_DB_POOL_MAX_CONNS", 10)
	cfg.IngestMinConns, cfg.IngestMaxConns = int32(ingestMin), int32(ingestMax)
	cfg.APIMinConns, cfg.APIMaxConns = int32(apiMin), int32(apiMax)

	var maxReqBody, exportLimit int
	maxReqBody, errs = collectInt(errs, "MAX_REQUEST_BODY_BYTES", 1*1024*1024)
	cfg.MaxRequestBodyBytes = int64(maxReqBody)
	exportLimit, errs = collectInt(errs, "EXPORT_ROW_LIMIT", 10_000)
	cfg.ExportRowLimit = exportLimit

	cfg.FetchTimeout, errs = collectSecondsAsDuration(errs, "FETCH_TIMEOUT_SECONDS", 30*time.Second)
	cfg.TxTimeout, errs = collectSecondsAsDuration(errs, "TX_TIMEOUT_SECONDS", 60*time.Second)
	cfg.IngestInterval, errs = collectSecondsAsDuration(errs, "INGEST_INTERVAL_SECONDS", 0)
	cfg.ReadTimeout, errs = collectDuration(errs, "HTTP_READ_TIMEOUT", 30*time.Second)
	cfg.WriteTimeout, errs = collectDuration(errs, "HTTP_WRITE_TIMEOUT", 30*time.Second)
	cfg.StalenessPollInterval, errs = collectSecondsAsDuration(errs, "STALENESS_POLL_SECONDS", 300*time.Second)

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return Config{}, fmt.Errorf("config: invalid environment variables:\n  %s", strings.Join(msgs, "\n  "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// collectInt parses an int env var, appending any error to the accumulator.
func collectInt(errs []error, key string, fallback int) (int, []error) {
	v, err := envInt(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

// collectBool parses a bool env var, appending any error to the accumulator.
func collectBool(errs []error, key string, fallback bool) (bool, []error) {
	v, err := envBool(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

// collectDuration parses a duration env var, appending any error to the accumulator.
func collectDuration(errs []error, key string, fallback time.Duration) (time.Duration, []error) {
	v, err := envDuration(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

// collectSecondsAsDuration parses an integer-seconds env var into a Duration.
func collectSecondsAsDuration(errs []error, key string, fallback time.Duration) (time.Duration, []error) {
	secs, err := envInt(key, int(fallback/time.Second))
	if err != nil {
		errs = append(errs, err)
		return fallback, errs
	}
	return time.Duration(secs) * time.Second, errs
}

// Validate checks that required configuration is present and sane. Because
// the ingestion daemon and the read API share one Config, DatabaseURL being
// empty is not itself an error here: spec.md §6/§7 requires the read API to
// degrade to empty-but-200 responses rather than refuse to start, and the
// ingestion daemon simply has nothing to ingest into. Each cmd/ entrypoint
// decides whether an empty DatabaseURL is fatal for its own purpose.
func (c Config) Validate() error {
	var errs []error

	if c.MaxRequestBodyBytes <= 0 {
		errs = append(errs, errors.New("config: MAX_REQUEST_BODY_BYTES must be positive"))
	}
	if c.ExportRowLimit <= 0 {
		errs = append(errs, errors.New("config: EXPORT_ROW_LIMIT must be positive"))
	}
	if c.ReadTimeout <= 0 {
		errs = append(errs, errors.New("config: HTTP_READ_TIMEOUT must be positive"))
	}
	if c.WriteTimeout <= 0 {
		errs = append(errs, errors.New("config: HTTP_WRITE_TIMEOUT must be positive"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("config: FETCH_TIMEOUT_SECONDS must be positive"))
	}
	if c.TxTimeout <= 0 {
		errs = append(errs, errors.New("config: TX_TIMEOUT_SECONDS must be positive"))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("config: LOG_FORMAT must be 'json' or 'text', got %q", c.LogFormat))
	}
	if !c.AuthDisabled && c.JWTSigningKey == "" {
		errs = append(errs, errors.New("config: JWT_SIGNING_KEY is required unless AUTH_DISABLED=true"))
	}

	return errors.Join(errs...)
}

// ResolvedDatabaseURL merges DBPassword into DatabaseURL when the URL carries
// no password of its own, following the teacher's "merge password separately"
// convention for secrets that should not be hard-coded into a connection string.
func (c Config) ResolvedDatabaseURL() string {
	if c.DatabaseURL == "" || c.DBPassword == "" {
		return c.DatabaseURL
	}
	const prefix = "postgres://"
	if !strings.HasPrefix(c.DatabaseURL, prefix) {
		return c.DatabaseURL
	}
	rest := strings.TrimPrefix(c.DatabaseURL, prefix)
	at := strings.Index(rest, "@")
	if at < 0 {
		return c.DatabaseURL
	}
	userinfo := rest[:at]
	if strings.Contains(userinfo, ":") {
		return c.DatabaseURL
	}
	return prefix + userinfo + ":" + c.DBPassword + "@" + rest[at+1:]
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}

// envStrSlice reads a comma-separated env var into a string slice.
// Returns fallback if the env var is empty or unset.
func envStrSlice(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
