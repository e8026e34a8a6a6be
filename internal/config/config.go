// Package config loads the news API configuration.
//
// Sources are applied in order, later ones winning:
//  1. built-in defaults
//  2. a YAML file named by CONFIG_FILE (optional)
//  3. environment variables, including any loaded from .env (ENV_FILE)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	pkgcfg "news-api/pkg/config"
)

// Supported values for Database.Driver.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Config is the full runtime configuration of the API process.
type Config struct {
	Version   string          `yaml:"version"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
}

// DatabaseConfig describes the connection pool. When URL is empty it is
// composed from Host, Port, User, Password and Name.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	BreakerEnabled  bool          `yaml:"breaker_enabled"`
}

type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"`
	RequestsPerSecond float64       `yaml:"rps"`
	Burst             int           `yaml:"burst"`
	IdleTTL           time.Duration `yaml:"idle_ttl"`
	TrustedProxies    []string      `yaml:"trusted_proxies"`
}

type MetricsConfig struct {
	// RefreshSchedule drives the articles_total gauge refresh. Empty disables it.
	RefreshSchedule string        `yaml:"refresh_schedule"`
	RefreshTimeout  time.Duration `yaml:"refresh_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Version: "dev",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   5 * time.Second,
			MaxBodyBytes:      1 << 20,
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Port:            "5432",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
			BreakerEnabled:  true,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 20,
			Burst:             40,
			IdleTTL:           10 * time.Minute,
		},
		Metrics: MetricsConfig{
			RefreshSchedule: "@every 1m",
			RefreshTimeout:  10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			ServiceName: "news-api",
			SampleRatio: 1,
		},
	}
}

// Load builds and validates the configuration from defaults, the optional
// YAML file and the environment.
func Load() (*Config, error) {
	envFile := pkgcfg.GetEnvString("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	// #nosec G304 -- path comes from the operator's environment
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	slog.Info("configuration file loaded", slog.String("path", path))
	return nil
}

func (c *Config) applyEnv() {
	c.Version = pkgcfg.GetEnvString("VERSION", c.Version)

	h := &c.HTTP
	h.Addr = pkgcfg.GetEnvString("HTTP_ADDR", h.Addr)
	if os.Getenv("HTTP_ADDR") == "" {
		if port := os.Getenv("HOST_PORT"); port != "" {
			h.Addr = ":" + port
		}
	}
	h.ReadHeaderTimeout = pkgcfg.GetEnvDuration("HTTP_READ_HEADER_TIMEOUT", h.ReadHeaderTimeout)
	h.ReadTimeout = pkgcfg.GetEnvDuration("HTTP_READ_TIMEOUT", h.ReadTimeout)
	h.WriteTimeout = pkgcfg.GetEnvDuration("HTTP_WRITE_TIMEOUT", h.WriteTimeout)
	h.IdleTimeout = pkgcfg.GetEnvDuration("HTTP_IDLE_TIMEOUT", h.IdleTimeout)
	h.ShutdownTimeout = pkgcfg.GetEnvDuration("HTTP_SHUTDOWN_TIMEOUT", h.ShutdownTimeout)
	h.MaxBodyBytes = int64(pkgcfg.GetEnvInt("HTTP_MAX_BODY_BYTES", int(h.MaxBodyBytes)))

	d := &c.Database
	d.Driver = pkgcfg.GetEnvString("DB_DRIVER", d.Driver)
	d.URL = pkgcfg.GetEnvString("DATABASE_URL", d.URL)
	// HOST, USERNAME, PASSWORD and DATABASE are the legacy .env keys; the
	// DB_ prefixed names win when both are set.
	d.Host = pkgcfg.GetEnvString("DB_HOST", pkgcfg.GetEnvString("HOST", d.Host))
	d.Port = pkgcfg.GetEnvString("DB_PORT", d.Port)
	d.User = pkgcfg.GetEnvString("DB_USER", pkgcfg.GetEnvString("USERNAME", d.User))
	d.Password = pkgcfg.GetEnvString("DB_PASSWORD", pkgcfg.GetEnvString("PASSWORD", d.Password))
	d.Name = pkgcfg.GetEnvString("DB_NAME", pkgcfg.GetEnvString("DATABASE", d.Name))
	d.SSLMode = pkgcfg.GetEnvString("DB_SSLMODE", d.SSLMode)
	d.MaxOpenConns = pkgcfg.GetEnvInt("DB_MAX_OPEN_CONNS", d.MaxOpenConns)
	d.MaxIdleConns = pkgcfg.GetEnvInt("DB_MAX_IDLE_CONNS", d.MaxIdleConns)
	d.ConnMaxLifetime = pkgcfg.GetEnvDuration("DB_CONN_MAX_LIFETIME", d.ConnMaxLifetime)
	d.ConnMaxIdleTime = pkgcfg.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", d.ConnMaxIdleTime)
	d.BreakerEnabled = pkgcfg.GetEnvBool("DB_BREAKER_ENABLED", d.BreakerEnabled)

	r := &c.RateLimit
	r.Enabled = pkgcfg.GetEnvBool("RATELIMIT_ENABLED", r.Enabled)
	r.RequestsPerSecond = pkgcfg.GetEnvFloat("RATELIMIT_RPS", r.RequestsPerSecond)
	r.Burst = pkgcfg.GetEnvInt("RATELIMIT_BURST", r.Burst)
	r.IdleTTL = pkgcfg.GetEnvDuration("RATELIMIT_IDLE_TTL", r.IdleTTL)
	r.TrustedProxies = pkgcfg.GetEnvStringList("RATELIMIT_TRUSTED_PROXIES", r.TrustedProxies)

	c.Metrics.RefreshSchedule = pkgcfg.GetEnvString("METRICS_REFRESH_SCHEDULE", c.Metrics.RefreshSchedule)
	c.Metrics.RefreshTimeout = pkgcfg.GetEnvDuration("METRICS_REFRESH_TIMEOUT", c.Metrics.RefreshTimeout)

	c.Log.Level = pkgcfg.GetEnvString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = pkgcfg.GetEnvString("LOG_FORMAT", c.Log.Format)

	c.Tracing.ServiceName = pkgcfg.GetEnvString("TRACING_SERVICE_NAME", c.Tracing.ServiceName)
	c.Tracing.SampleRatio = pkgcfg.GetEnvFloat("TRACING_SAMPLE_RATIO", c.Tracing.SampleRatio)
}

// DSN returns the data source name handed to sql.Open.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == DriverSQLite {
		if d.Name == "" {
			return "news.db"
		}
		return d.Name
	}
	if d.Host == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.HTTP.Addr) == "" {
		errs = append(errs, fmt.Errorf("HTTP_ADDR is required"))
	}
	if err := pkgcfg.ValidatePositiveDuration(c.HTTP.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT: %w", err))
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_MAX_BODY_BYTES must be positive"))
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver))
	}
	if c.Database.DSN() == "" {
		errs = append(errs, fmt.Errorf("DATABASE_URL or DB_HOST is required"))
	}
	if c.Database.MaxOpenConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive"))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_IDLE_CONNS must be non-negative"))
	}
	if err := pkgcfg.ValidateNonNegativeDuration(c.Database.ConnMaxLifetime); err != nil {
		errs = append(errs, fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", err))
	}
	if err := pkgcfg.ValidateNonNegativeDuration(c.Database.ConnMaxIdleTime); err != nil {
		errs = append(errs, fmt.Errorf("DB_CONN_MAX_IDLE_TIME: %w", err))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("RATELIMIT_RPS must be positive"))
		}
		if c.RateLimit.Burst <= 0 {
			errs = append(errs, fmt.Errorf("RATELIMIT_BURST must be positive"))
		}
		if err := pkgcfg.ValidatePositiveDuration(c.RateLimit.IdleTTL); err != nil {
			errs = append(errs, fmt.Errorf("RATELIMIT_IDLE_TTL: %w", err))
		}
	}

	if c.Metrics.RefreshSchedule != "" {
		if err := pkgcfg.ValidateCronSchedule(c.Metrics.RefreshSchedule); err != nil {
			errs = append(errs, fmt.Errorf("METRICS_REFRESH_SCHEDULE: %w", err))
		}
		if err := pkgcfg.ValidatePositiveDuration(c.Metrics.RefreshTimeout); err != nil {
			errs = append(errs, fmt.Errorf("METRICS_REFRESH_TIMEOUT: %w", err))
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format))
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("TRACING_SAMPLE_RATIO must be within [0, 1]"))
	}

	return errors.Join(errs...)
}
