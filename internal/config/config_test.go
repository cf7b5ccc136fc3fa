package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"TOPSIS_PORT", "TOPSIS_METRICS_PORT", "TOPSIS_ADMIN_TOKEN", "TOPSIS_MAX_UPLOAD_BYTES",
	"TOPSIS_STATIC_DIR", "TOPSIS_UPLOAD_DIR", "TOPSIS_RESULTS_DIR", "TOPSIS_DATABASE_URL",
	"TOPSIS_EVENTS_URL", "TOPSIS_SMTP_HOST", "TOPSIS_SMTP_PORT", "SENDER_EMAIL",
	"SENDER_PASSWORD", "TOPSIS_SERVER_URL", "TOPSIS_CLIENT_TIMEOUT_MS", "TOPSIS_LOG_LEVEL",
	"TOPSIS_LOG_FORMAT", "TOPSIS_RETENTION_HOURS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	// Run from an empty directory so a developer's .env does not leak in.
	t.Chdir(t.TempDir())
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8600 {
		t.Errorf("expected port 8600, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8601 {
		t.Errorf("expected metrics port 8601, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.MaxUploadBytes != 16*1024*1024 {
		t.Errorf("expected 16MiB upload limit, got %d", cfg.Server.MaxUploadBytes)
	}
	if cfg.Storage.UploadDir != "uploads" || cfg.Storage.ResultsDir != "results" {
		t.Errorf("unexpected storage dirs: %+v", cfg.Storage)
	}
	if cfg.Retention() != 168*time.Hour || cfg.SweepInterval() != 10*time.Minute {
		t.Errorf("unexpected retention %v / sweep %v", cfg.Retention(), cfg.SweepInterval())
	}
	if cfg.Storage.PreviewRows != 5 {
		t.Errorf("expected 5 preview rows, got %d", cfg.Storage.PreviewRows)
	}
	if cfg.Mail.Host != "smtp.gmail.com" || cfg.Mail.Port != 465 {
		t.Errorf("unexpected mail server %s:%d", cfg.Mail.Host, cfg.Mail.Port)
	}
	if cfg.MailConfigured() {
		t.Error("expected mail to be unconfigured without credentials")
	}
	if cfg.Events.URL != "nats://localhost:4222" {
		t.Errorf("expected nats URL, got %s", cfg.Events.URL)
	}
	if cfg.Database.URL != "" {
		t.Errorf("expected empty database URL, got %s", cfg.Database.URL)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}

	if cfg.ClientTimeout() != 0 {
		t.Errorf("expected no client timeout, got %v", cfg.ClientTimeout())
	}
	if cfg.DismissAfter() != 5*time.Second {
		t.Errorf("expected DismissAfter 5s, got %v", cfg.DismissAfter())
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOPSIS_PORT", "9000")
	t.Setenv("TOPSIS_METRICS_PORT", "9001")
	t.Setenv("TOPSIS_ADMIN_TOKEN", "secret-token")
	t.Setenv("TOPSIS_DATABASE_URL", "postgres://localhost/topsis_test")
	t.Setenv("TOPSIS_EVENTS_URL", "nats://nats:4222")
	t.Setenv("TOPSIS_RESULTS_DIR", "/var/lib/topsis/results")
	t.Setenv("SENDER_EMAIL", "bot@example.com")
	t.Setenv("SENDER_PASSWORD", "app-password")
	t.Setenv("TOPSIS_CLIENT_TIMEOUT_MS", "2500")
	t.Setenv("TOPSIS_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 9001 {
		t.Errorf("expected metrics port 9001, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.AdminToken != "secret-token" {
		t.Errorf("expected admin token 'secret-token', got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Database.URL != "postgres://localhost/topsis_test" {
		t.Errorf("expected database URL, got '%s'", cfg.Database.URL)
	}
	if cfg.Events.URL != "nats://nats:4222" {
		t.Errorf("expected events URL, got '%s'", cfg.Events.URL)
	}
	if cfg.Storage.ResultsDir != "/var/lib/topsis/results" {
		t.Errorf("expected results dir override, got '%s'", cfg.Storage.ResultsDir)
	}
	if !cfg.MailConfigured() {
		t.Error("expected mail to be configured")
	}
	if cfg.ClientTimeout() != 2500*time.Millisecond {
		t.Errorf("expected 2.5s timeout, got %v", cfg.ClientTimeout())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "topsis.yaml")
	data := []byte("server:\n  port: 7000\nstorage:\n  preview_rows: 10\nmail:\n  host: mail.internal\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Server.Port)
	}
	if cfg.Storage.PreviewRows != 10 {
		t.Errorf("expected 10 preview rows, got %d", cfg.Storage.PreviewRows)
	}
	if cfg.Mail.Host != "mail.internal" {
		t.Errorf("expected mail host override, got %s", cfg.Mail.Host)
	}
	// Unset keys keep their defaults.
	if cfg.Mail.Port != 465 {
		t.Errorf("expected default mail port, got %d", cfg.Mail.Port)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)

	if err := os.WriteFile(".env", []byte("SENDER_EMAIL=dotenv@example.com\nSENDER_PASSWORD=pw\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("SENDER_EMAIL")
		os.Unsetenv("SENDER_PASSWORD")
	})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Mail.Sender != "dotenv@example.com" {
		t.Errorf("expected sender from .env, got %q", cfg.Mail.Sender)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestRetentionDisabledFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOPSIS_RETENTION_HOURS", "0")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Retention() != 0 {
		t.Errorf("expected retention disabled, got %v", cfg.Retention())
	}
}
