package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"JWT_SECRET", "REDIS_SERVICE_HOST", "REDIS_SERVICE_PORT", "REDIS_PASSWORD",
		"S3_ENDPOINT", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LAND_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Fatalf("expected 30s write timeout, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Workflow.OverdueThresholdDays != 2 || cfg.Workflow.QueueLimit != 100 {
		t.Fatalf("unexpected workflow defaults %+v", cfg.Workflow)
	}
	if cfg.JWT.Secret != "test-secret" {
		t.Fatalf("expected secret from env, got %q", cfg.JWT.Secret)
	}
	if cfg.Storage.Enabled() {
		t.Fatal("storage should be disabled without a bucket")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9090
database:
  host: db.internal
  name: land
workflow:
  overdue_threshold_days: 5
  queue_limit: 0
jwt:
  secret: from-file
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LAND_CONFIG", path)
	t.Setenv("DB_HOST", "db.override")
	t.Setenv("REDIS_SERVICE_HOST", "redis.svc")
	t.Setenv("S3_BUCKET", "land-photos")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port from file, got %d", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.override" || cfg.Database.Name != "land" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Redis.Addr != "redis.svc:6379" {
		t.Fatalf("expected redis addr from service env, got %q", cfg.Redis.Addr)
	}
	if cfg.Workflow.OverdueThresholdDays != 5 || cfg.Workflow.QueueLimit != 100 {
		t.Fatalf("unexpected workflow config %+v", cfg.Workflow)
	}
	if !cfg.Storage.Enabled() {
		t.Fatal("expected storage enabled with a bucket")
	}
	if cfg.JWT.Secret != "from-file" {
		t.Fatalf("expected secret from file, got %q", cfg.JWT.Secret)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{}
	cfg.Database.User = "land"
	cfg.Database.Password = "pw"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.Name = "land_db"
	cfg.Database.SSLMode = "disable"

	want := "postgres://land:pw@localhost:5432/land_db?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	l := NewLogger("chatty", "text")
	if l.GetLevel().String() != "info" {
		t.Fatalf("expected info level, got %s", l.GetLevel())
	}
}
