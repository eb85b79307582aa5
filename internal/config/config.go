package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// storage: "postgres" or "sqlite"
	StoreDriver    string `toml:"store_driver"`
	SQLitePath     string `toml:"sqlite_path"`
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`

	// redis (sessions + rate limiting)
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// auth
	CoachEmail                  string   `toml:"coach_email"`
	SessionTTLHours             int      `toml:"session_ttl_hours"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	AllowedOrigins              []string `toml:"allowed_origins"`

	// ai
	AIEnabled     bool   `toml:"ai_enabled"`
	AIModel       string `toml:"ai_model"`
	AIBaseURL     string `toml:"ai_base_url"`
	AICacheSizeMB int    `toml:"ai_cache_size_mb"`
	AITimeoutSecs int    `toml:"ai_timeout_secs"`
	AIMaxRetries  int    `toml:"ai_max_retries"`

	// backup
	DriveCredentialsPath string `toml:"drive_credentials_path"`
	DriveBackupFolder    string `toml:"drive_backup_folder"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

type Toml struct {
	Development *Config
	Production  *Config
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env, with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid [%s] config: %w", env, err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.StoreDriver == "" {
		c.StoreDriver = "postgres"
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = 24 * 7
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 10
	}
	if c.AIModel == "" {
		c.AIModel = "gpt-4o-mini"
	}
	if c.AICacheSizeMB == 0 {
		c.AICacheSizeMB = 16
	}
	if c.AITimeoutSecs == 0 {
		c.AITimeoutSecs = 30
	}
	if c.DriveBackupFolder == "" {
		c.DriveBackupFolder = "fitcoach-backups"
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres":
		if c.PostgresHost == "" || c.PostgresDBName == "" {
			return errors.New("postgres_host and postgres_db_name are required for the postgres store")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("sqlite_path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store_driver: %s", c.StoreDriver)
	}
	if !strings.Contains(c.CoachEmail, "@") {
		return errors.New("coach_email is required")
	}
	return nil
}
