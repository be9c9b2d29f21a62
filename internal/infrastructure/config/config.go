package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all listener configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Platform  PlatformConfig
	Transform TransformConfig
	Mail      MailConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Event     EventConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds webhook server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxBodySize    int64
	WebhookSecret  string // HMAC secret for verifying delivery tokens
	TrustedProxies []string
}

// PlatformConfig holds settings for the import platform API
type PlatformConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// TransformConfig holds purchase-order transform settings
type TransformConfig struct {
	ReorderTarget   int64  // reorder up to this stock level
	InventorySlug   string // source sheet slug
	OrdersSlug      string // destination sheet slug
	TriggerJobKind  string // job kind whose completion triggers the transform
	MaxRecordErrors int    // cap on reported per-record errors
}

// MailConfig holds egress mail settings. The sender identity and password
// come from platform secrets at event time, never from this config.
type MailConfig struct {
	Host      string
	Port      int
	Recipient string
}

// StorageConfig holds optional S3-compatible archive settings
type StorageConfig struct {
	Enabled      bool
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	KeyPrefix    string
	UseSSL       bool
	UsePathStyle bool
}

// RedisConfig holds Redis connection settings for the idempotency store
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// DatabaseConfig holds delivery-journal database settings
type DatabaseConfig struct {
	Driver string // sqlite or postgres
	DSN    string
}

// EventConfig holds event processing configuration
type EventConfig struct {
	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration
}

// TelemetryConfig holds OpenTelemetry tracing configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with SHEETFLOW_ prefix (e.g. SHEETFLOW_MAIL_RECIPIENT)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults and env vars apply
	}

	v.SetEnvPrefix("SHEETFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			WebhookSecret:  v.GetString("http.webhook_secret"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Platform: PlatformConfig{
			BaseURL:  v.GetString("platform.base_url"),
			APIToken: v.GetString("platform.api_token"),
			Timeout:  v.GetDuration("platform.timeout"),
		},
		Transform: TransformConfig{
			ReorderTarget:   v.GetInt64("transform.reorder_target"),
			InventorySlug:   v.GetString("transform.inventory_slug"),
			OrdersSlug:      v.GetString("transform.orders_slug"),
			TriggerJobKind:  v.GetString("transform.trigger_job_kind"),
			MaxRecordErrors: v.GetInt("transform.max_record_errors"),
		},
		Mail: MailConfig{
			Host:      v.GetString("mail.host"),
			Port:      v.GetInt("mail.port"),
			Recipient: v.GetString("mail.recipient"),
		},
		Storage: StorageConfig{
			Enabled:      v.GetBool("storage.enabled"),
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			Bucket:       v.GetString("storage.bucket"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			KeyPrefix:    v.GetString("storage.key_prefix"),
			UseSSL:       v.GetBool("storage.use_ssl"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
		},
		Event: EventConfig{
			IdempotencyEnabled: v.GetBool("event.idempotency_enabled"),
			IdempotencyTTL:     v.GetDuration("event.idempotency_ttl"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "sheetflow-listener"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB, webhook payloads are small
	}
	if cfg.Platform.Timeout == 0 {
		cfg.Platform.Timeout = 30 * time.Second
	}
	if cfg.Transform.ReorderTarget == 0 {
		cfg.Transform.ReorderTarget = 3
	}
	if cfg.Transform.InventorySlug == "" {
		cfg.Transform.InventorySlug = "inventory"
	}
	if cfg.Transform.OrdersSlug == "" {
		cfg.Transform.OrdersSlug = "orders"
	}
	if cfg.Transform.TriggerJobKind == "" {
		cfg.Transform.TriggerJobKind = "workbook:map"
	}
	if cfg.Transform.MaxRecordErrors == 0 {
		cfg.Transform.MaxRecordErrors = 100
	}
	if cfg.Mail.Host == "" {
		cfg.Mail.Host = "smtp.gmail.com"
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "egress/"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "sheetflow.db"
	}
	if cfg.Event.IdempotencyTTL == 0 {
		cfg.Event.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "sheetflow-listener"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Transform.ReorderTarget < 0 {
		return fmt.Errorf("transform.reorder_target cannot be negative")
	}
	if c.Transform.InventorySlug == c.Transform.OrdersSlug {
		return fmt.Errorf("transform.inventory_slug and transform.orders_slug must differ")
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("database.driver must be 'sqlite' or 'postgres', got %q", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for the postgres driver")
	}
	if c.Storage.Enabled {
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when storage is enabled")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("storage credentials are required when storage is enabled")
		}
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		if c.Platform.BaseURL == "" {
			return fmt.Errorf("platform.base_url is required in production")
		}
		if c.Platform.APIToken == "" {
			return fmt.Errorf("platform.api_token is required in production")
		}
		if c.HTTP.WebhookSecret == "" {
			return fmt.Errorf("http.webhook_secret is required in production")
		}
		if c.Mail.Recipient == "" {
			return fmt.Errorf("mail.recipient is required in production")
		}
	}

	return nil
}

// RedisAddr returns the host:port address for the Redis client
func (r *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
