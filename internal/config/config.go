package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/segyhp/lease-engine/internal/domain"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	TxRetries       int           `mapstructure:"tx_retries"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type SchedulerConfig struct {
	Timezone    string        `mapstructure:"timezone"`
	OverdueSpec string        `mapstructure:"overdue_spec"`
	ExpirySpec  string        `mapstructure:"expiry_spec"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"`
	BatchSize   int           `mapstructure:"batch_size"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BusinessConfig struct {
	DefaultTermMonths int    `mapstructure:"default_term_months"`
	OverpaymentPolicy string `mapstructure:"overpayment_policy"`
	ExpiringSoonDays  int    `mapstructure:"expiring_soon_days"`
}

type StorageConfig struct {
	Root           string `mapstructure:"root"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// envBindings maps config keys to the environment variables that set them
var envBindings = map[string]string{
	"server.port":                  "SERVER_PORT",
	"server.host":                  "SERVER_HOST",
	"server.env":                   "ENV",
	"server.read_timeout":          "SERVER_READ_TIMEOUT",
	"server.write_timeout":         "SERVER_WRITE_TIMEOUT",
	"database.url":                 "DATABASE_URL",
	"database.max_open_conns":      "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns":      "DATABASE_MAX_IDLE_CONNS",
	"database.conn_max_lifetime":   "DATABASE_CONN_MAX_LIFETIME",
	"database.tx_retries":          "DATABASE_TX_RETRIES",
	"redis.host":                   "REDIS_HOST",
	"redis.port":                   "REDIS_PORT",
	"redis.password":               "REDIS_PASSWORD",
	"redis.db":                     "REDIS_DB",
	"redis.cache_ttl":              "REDIS_CACHE_TTL",
	"scheduler.timezone":           "SCHEDULER_TIMEZONE",
	"scheduler.overdue_spec":       "SCHEDULER_OVERDUE_SPEC",
	"scheduler.expiry_spec":        "SCHEDULER_EXPIRY_SPEC",
	"scheduler.lock_ttl":           "SCHEDULER_LOCK_TTL",
	"scheduler.batch_size":         "SCHEDULER_BATCH_SIZE",
	"logging.level":                "LOG_LEVEL",
	"logging.format":               "LOG_FORMAT",
	"business.default_term_months": "DEFAULT_TERM_MONTHS",
	"business.overpayment_policy":  "OVERPAYMENT_POLICY",
	"business.expiring_soon_days":  "EXPIRING_SOON_DAYS",
	"storage.root":                 "STORAGE_ROOT",
	"storage.max_upload_bytes":     "STORAGE_MAX_UPLOAD_BYTES",
	"health.timeout":               "HEALTH_CHECK_TIMEOUT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.tx_retries", 3)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "10m")
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.overdue_spec", "0 5 0 * * *")
	v.SetDefault("scheduler.expiry_spec", "0 10 0 * * *")
	v.SetDefault("scheduler.lock_ttl", "10m")
	v.SetDefault("scheduler.batch_size", 500)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("business.default_term_months", 12)
	v.SetDefault("business.overpayment_policy", string(domain.OverpaymentReject))
	v.SetDefault("business.expiring_soon_days", 30)
	v.SetDefault("storage.root", "./storage/documents")
	v.SetDefault("storage.max_upload_bytes", 20<<20)
	v.SetDefault("health.timeout", "5s")
}

// Load reads configuration from environment variables, an optional .env file
// and an optional config.yaml
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("unable to bind %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./deployments")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Database.TxRetries < 0 {
		return fmt.Errorf("DATABASE_TX_RETRIES cannot be negative")
	}

	if c.Business.DefaultTermMonths <= 0 {
		return fmt.Errorf("DEFAULT_TERM_MONTHS must be greater than 0")
	}

	if c.Business.ExpiringSoonDays <= 0 {
		return fmt.Errorf("EXPIRING_SOON_DAYS must be greater than 0")
	}

	switch domain.OverpaymentPolicy(c.Business.OverpaymentPolicy) {
	case domain.OverpaymentReject, domain.OverpaymentAbsorb:
	default:
		return fmt.Errorf("OVERPAYMENT_POLICY must be %q or %q", domain.OverpaymentReject, domain.OverpaymentAbsorb)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	if c.Scheduler.LockTTL <= 0 {
		return fmt.Errorf("SCHEDULER_LOCK_TTL must be a positive duration")
	}

	if c.Storage.Root == "" {
		return fmt.Errorf("STORAGE_ROOT is required")
	}

	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_BYTES must be greater than 0")
	}

	if c.Health.Timeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a positive duration")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return c.URL
}

// Addr returns the redis host:port address
func (c *RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// GetOverpaymentPolicy returns the configured overpayment policy
func (c *Config) GetOverpaymentPolicy() domain.OverpaymentPolicy {
	return domain.OverpaymentPolicy(c.Business.OverpaymentPolicy)
}

// GetSchedulerLocation returns the scheduler timezone
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
