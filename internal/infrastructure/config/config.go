// Package config loads storefront settings from config.toml and EMEDICO_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Session   SessionConfig   `mapstructure:"session"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	Printing  PrintingConfig  `mapstructure:"printing"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Profiling ProfilingConfig `mapstructure:"profiling"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

func (a AppConfig) IsProduction() bool { return a.Env == "production" }

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

// DatabaseConfig selects the order and preference store. The memory driver
// keeps everything in process and loses it on restart.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, sqlite, memory
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns a postgres URL with user and password escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig points at the shared cache. An empty Host disables Redis.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Enabled() bool { return r.Host != "" }

func (r RedisConfig) Addr() string { return net.JoinHostPort(r.Host, strconv.Itoa(r.Port)) }

type JWTConfig struct {
	Secret                 string        `mapstructure:"secret"`
	RefreshSecret          string        `mapstructure:"refresh_secret"`
	Issuer                 string        `mapstructure:"issuer"`
	AccessTokenExpiration  time.Duration `mapstructure:"access_token_expiration"`
	RefreshTokenExpiration time.Duration `mapstructure:"refresh_token_expiration"`
}

type HTTPConfig struct {
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
	// MaxBodySize leaves room above the 5MB prescription cap for multipart framing.
	MaxBodySize           int64         `mapstructure:"max_body_size"`
	RateLimitEnabled      bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests     int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow       time.Duration `mapstructure:"rate_limit_window"`
	AuthRateLimitEnabled  bool          `mapstructure:"auth_rate_limit_enabled"`
	AuthRateLimitRequests int           `mapstructure:"auth_rate_limit_requests"`
	AuthRateLimitWindow   time.Duration `mapstructure:"auth_rate_limit_window"`
	// CORSAllowOrigins has no default, so cross-origin calls stay blocked until configured.
	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string `mapstructure:"trusted_proxies"`
}

// StorageConfig locates prescription images. Driver "memory" keeps them in process.
type StorageConfig struct {
	Driver          string        `mapstructure:"driver"` // s3, memory
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	Bucket          string        `mapstructure:"bucket"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UsePathStyle    bool          `mapstructure:"use_path_style"`
	PreviewURLTTL   time.Duration `mapstructure:"preview_url_ttl"`
}

type SessionConfig struct {
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// SweepInterval is how often idle sessions are closed.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// PreferenceStore is memory, redis or database.
	PreferenceStore string `mapstructure:"preference_store"`
}

type ChatConfig struct {
	ReplyDelay time.Duration `mapstructure:"reply_delay"`
}

type CheckoutConfig struct {
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

// PrintingConfig controls PDF receipts rendered through headless Chrome.
type PrintingConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	ChromePath string        `mapstructure:"chrome_path"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig is shared by the trace, metric and log exporters.
type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
}

type ProfilingConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ServerAddress string `mapstructure:"server_address"`
	AuthToken     string `mapstructure:"auth_token"`
}

// defaults registers every key, including empty ones, so that environment
// variables are seen by Unmarshal even when config.toml omits the key.
var defaults = map[string]any{
	"app.name": "emedico-backend",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             "sqlite",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "emedico",
	"database.sslmode":            "disable",
	"database.sqlite_path":        "emedico.db",
	"database.auto_migrate":       false,
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  time.Hour,
	"database.conn_max_idle_time": 30 * time.Minute,

	"redis.host":     "",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                   "",
	"jwt.refresh_secret":           "",
	"jwt.issuer":                   "emedico-backend",
	"jwt.access_token_expiration":  15 * time.Minute,
	"jwt.refresh_token_expiration": 30 * 24 * time.Hour,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":             15 * time.Second,
	"http.write_timeout":            15 * time.Second,
	"http.idle_timeout":             time.Minute,
	"http.max_header_bytes":         1 << 20,
	"http.max_body_size":            int64(6 << 20),
	"http.rate_limit_enabled":       false,
	"http.rate_limit_requests":      100,
	"http.rate_limit_window":        time.Minute,
	"http.auth_rate_limit_enabled":  false,
	"http.auth_rate_limit_requests": 5,
	"http.auth_rate_limit_window":   time.Minute,
	"http.cors_allow_origins":       []string{},
	"http.cors_allow_methods":       []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers":       []string{"Content-Type", "Authorization", "X-Request-ID", "X-Client-ID", "Idempotency-Key"},
	"http.trusted_proxies":          []string{},

	"storage.driver":            "memory",
	"storage.endpoint":          "",
	"storage.region":            "us-east-1",
	"storage.bucket":            "emedico-prescriptions",
	"storage.access_key_id":     "",
	"storage.secret_access_key": "",
	"storage.use_path_style":    false,
	"storage.preview_url_ttl":   15 * time.Minute,

	"session.idle_timeout":     2 * time.Hour,
	"session.sweep_interval":   time.Minute,
	"session.preference_store": "database",

	"chat.reply_delay": time.Second,

	"checkout.idempotency_ttl": 24 * time.Hour,

	"printing.enabled":     false,
	"printing.chrome_path": "",
	"printing.timeout":     30 * time.Second,

	"telemetry.enabled":            false,
	"telemetry.collector_endpoint": "localhost:4317",
	"telemetry.sampling_ratio":     1.0,
	"telemetry.service_name":       "",
	"telemetry.insecure":           false,
	"telemetry.metrics_enabled":    false,
	"telemetry.metrics_interval":   time.Minute,
	"telemetry.logs_enabled":       false,
	"telemetry.db_trace_enabled":   false,
	"telemetry.db_log_full_sql":    false,

	"profiling.enabled":        false,
	"profiling.server_address": "http://localhost:4040",
	"profiling.auth_token":     "",
}

// Load reads config.toml from ".", "./config" or "/etc/emedico". A missing
// file is fine. EMEDICO_* variables win over the file, e.g.
// EMEDICO_DATABASE_PASSWORD sets database.password.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, dir := range []string{".", "./config", "/etc/emedico"} {
		v.AddConfigPath(dir)
	}

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("EMEDICO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func oneOf(key, got string, allowed ...string) error {
	if slices.Contains(allowed, got) {
		return nil
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), got)
}

func (c *Config) validate() error {
	db, store := c.Database, c.Session.PreferenceStore

	checks := []error{
		oneOf("database.driver", db.Driver, "postgres", "sqlite", "memory"),
		oneOf("storage.driver", c.Storage.Driver, "s3", "memory"),
		oneOf("session.preference_store", store, "memory", "redis", "database"),
	}
	switch {
	case db.MaxOpenConns <= 0:
		checks = append(checks, errors.New("database.max_open_conns must be positive"))
	case db.MaxIdleConns < 0 || db.MaxIdleConns > db.MaxOpenConns:
		checks = append(checks, fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d) or be negative",
			db.MaxIdleConns, db.MaxOpenConns))
	}
	if c.Storage.Driver == "s3" && c.Storage.Endpoint == "" {
		checks = append(checks, errors.New("storage.endpoint is required when storage.driver is s3"))
	}
	if store == "redis" && !c.Redis.Enabled() {
		checks = append(checks, errors.New("session.preference_store=redis requires redis.host"))
	}
	if store == "database" && db.Driver == "memory" {
		checks = append(checks, errors.New("session.preference_store=database requires a database driver"))
	}
	if c.Chat.ReplyDelay < 0 {
		checks = append(checks, errors.New("chat.reply_delay cannot be negative"))
	}
	if r := c.Telemetry.SamplingRatio; r < 0 || r > 1 {
		checks = append(checks, fmt.Errorf("telemetry.sampling_ratio must be within [0, 1], got %g", r))
	}
	if c.App.IsProduction() {
		checks = append(checks, c.validateProduction()...)
	}
	return errors.Join(checks...)
}

// validateProduction refuses settings that are only acceptable on a laptop.
func (c *Config) validateProduction() []error {
	var errs []error
	switch {
	case c.JWT.Secret == "":
		errs = append(errs, errors.New("jwt.secret is required in production"))
	case len(c.JWT.Secret) < 32:
		errs = append(errs, errors.New("jwt.secret must be at least 32 characters in production"))
	}
	if c.Database.Driver != "postgres" {
		errs = append(errs, errors.New("database.driver must be postgres in production"))
	}
	if c.Database.Password == "" {
		errs = append(errs, errors.New("database.password is required in production"))
	}
	if c.Database.SSLMode == "disable" {
		errs = append(errs, errors.New("database.sslmode cannot be disable in production"))
	}
	if slices.Contains(c.HTTP.CORSAllowOrigins, "*") {
		errs = append(errs, errors.New("http.cors_allow_origins cannot contain * in production"))
	}
	if c.Telemetry.DBLogFullSQL {
		errs = append(errs, errors.New("telemetry.db_log_full_sql must be false in production"))
	}
	return errs
}
