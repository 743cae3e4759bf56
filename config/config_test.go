package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "")

	cfg, err := load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.App.Port)
	}
	if cfg.DB.Driver != DriverPostgres {
		t.Errorf("expected postgres driver, got %s", cfg.DB.Driver)
	}
	if cfg.JWT.AccessExpiry != 15*time.Minute {
		t.Errorf("unexpected access expiry %s", cfg.JWT.AccessExpiry)
	}
	if cfg.Booking.LockTTL != 5*time.Second {
		t.Errorf("unexpected lock ttl %s", cfg.Booking.LockTTL)
	}
	if cfg.Booking.AvailabilityTTL != 5*time.Minute {
		t.Errorf("unexpected availability ttl %s", cfg.Booking.AvailabilityTTL)
	}
	if len(cfg.App.CORSOrigins) != 1 || cfg.App.CORSOrigins[0] != "*" {
		t.Errorf("unexpected cors origins %v", cfg.App.CORSOrigins)
	}
}

func TestLoad_EnvOverridesAndInvalidDurations(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_ACCESS_EXPIRY", "not-a-duration")
	t.Setenv("BOOKING_LOCK_TTL", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DB.Driver != DriverSQLite {
		t.Errorf("expected sqlite driver, got %s", cfg.DB.Driver)
	}
	if cfg.JWT.AccessExpiry != 15*time.Minute {
		t.Errorf("invalid duration should fall back, got %s", cfg.JWT.AccessExpiry)
	}
	if cfg.Booking.LockTTL != 2*time.Second {
		t.Errorf("expected 2s lock ttl, got %s", cfg.Booking.LockTTL)
	}
	if len(cfg.App.CORSOrigins) != 2 || cfg.App.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected cors origins %v", cfg.App.CORSOrigins)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "")
	if _, err := load(""); err == nil {
		t.Error("expected error when JWT_SECRET is missing")
	}

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := load(""); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("APP_PORT=9999\nJWT_SECRET=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides variables that are already set
	t.Setenv("APP_PORT", "")
	os.Unsetenv("APP_PORT")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_DRIVER", "")

	cfg, err := load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Port != "9999" {
		t.Errorf("expected port from .env, got %s", cfg.App.Port)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("expected environment to win over .env, got %s", cfg.JWT.Secret)
	}
}

func TestDBConfig_URLs(t *testing.T) {
	db := DBConfig{Host: "h", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable", TimeZone: "UTC"}
	if got := db.MigrateURL(); got != "pgx5://u:p@h:5432/n?sslmode=disable" {
		t.Errorf("unexpected migrate url %s", got)
	}
	if got := db.DSN(); got != "host=h user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC" {
		t.Errorf("unexpected dsn %s", got)
	}
}
