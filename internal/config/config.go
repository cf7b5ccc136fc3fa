package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
	Mail     MailConfig     `yaml:"mail"`
	Client   ClientConfig   `yaml:"client"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port           int    `yaml:"port"`
	MetricsPort    int    `yaml:"metrics_port"`
	AdminToken     string `yaml:"admin_token"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	StaticDir      string `yaml:"static_dir"`
	RatePerMinute  int    `yaml:"rate_per_minute"`
}

type StorageConfig struct {
	UploadDir   string `yaml:"upload_dir"`
	ResultsDir  string `yaml:"results_dir"`
	PreviewRows int    `yaml:"preview_rows"`
	// RetentionHours of zero keeps files forever.
	RetentionHours       int `yaml:"retention_hours"`
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type MailConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Sender    string `yaml:"sender"`
	Password  string `yaml:"password"`
	PerMinute int    `yaml:"per_minute"`
}

// ClientConfig is read by the submit host; the server ignores it.
type ClientConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutMs      int    `yaml:"timeout_ms"`
	DismissAfterMs int    `yaml:"dismiss_after_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ClientTimeout is zero unless configured, leaving the transport defaults in charge.
func (c *Config) ClientTimeout() time.Duration {
	return time.Duration(c.Client.TimeoutMs) * time.Millisecond
}

func (c *Config) DismissAfter() time.Duration {
	return time.Duration(c.Client.DismissAfterMs) * time.Millisecond
}

func (c *Config) Retention() time.Duration {
	return time.Duration(c.Storage.RetentionHours) * time.Hour
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Storage.SweepIntervalMinutes) * time.Minute
}

func (c *Config) MailConfigured() bool {
	return c.Mail.Sender != "" && c.Mail.Password != ""
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8600,
			MetricsPort:    8601,
			MaxUploadBytes: 16 << 20,
			RatePerMinute:  60,
		},
		Storage: StorageConfig{
			UploadDir:            "uploads",
			ResultsDir:           "results",
			PreviewRows:          5,
			RetentionHours:       168,
			SweepIntervalMinutes: 10,
		},
		Events: EventsConfig{
			URL: "nats://localhost:4222",
		},
		Mail: MailConfig{
			Host:      "smtp.gmail.com",
			Port:      465,
			PerMinute: 30,
		},
		Client: ClientConfig{
			BaseURL:        "http://localhost:8600",
			DismissAfterMs: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment. A .env file in the working directory is loaded first; variables
// already present in the environment win over it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TOPSIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("TOPSIS_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("TOPSIS_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("TOPSIS_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("TOPSIS_STATIC_DIR"); v != "" {
		cfg.Server.StaticDir = v
	}
	if v := os.Getenv("TOPSIS_UPLOAD_DIR"); v != "" {
		cfg.Storage.UploadDir = v
	}
	if v := os.Getenv("TOPSIS_RESULTS_DIR"); v != "" {
		cfg.Storage.ResultsDir = v
	}
	if v := os.Getenv("TOPSIS_RETENTION_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Storage.RetentionHours = n
		}
	}
	if v := os.Getenv("TOPSIS_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("TOPSIS_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("TOPSIS_SMTP_HOST"); v != "" {
		cfg.Mail.Host = v
	}
	if v := os.Getenv("TOPSIS_SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Mail.Port = n
		}
	}
	if v := os.Getenv("SENDER_EMAIL"); v != "" {
		cfg.Mail.Sender = v
	}
	if v := os.Getenv("SENDER_PASSWORD"); v != "" {
		cfg.Mail.Password = v
	}
	if v := os.Getenv("TOPSIS_SERVER_URL"); v != "" {
		cfg.Client.BaseURL = v
	}
	if v := os.Getenv("TOPSIS_CLIENT_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Client.TimeoutMs = n
		}
	}
	if v := os.Getenv("TOPSIS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TOPSIS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
