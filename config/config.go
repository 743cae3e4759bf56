package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	App     AppConfig
	Log     LogConfig
	DB      DBConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Booking BookingConfig
}

type AppConfig struct {
	Port        string
	Env         string
	CORSOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type DBConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	TimeZone   string
	SQLitePath string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type BookingConfig struct {
	LockTTL         time.Duration
	AvailabilityTTL time.Duration
}

// LoadConfig reads an optional .env file into the process environment and then
// resolves every setting from the environment with defaults.
func LoadConfig() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	if envFile != "" {
		// a missing .env is fine, the environment may already be populated
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("SQLITE_PATH", "medibook.db")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "medibook")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	cfg := &Config{
		App: AppConfig{
			Port:        v.GetString("APP_PORT"),
			Env:         v.GetString("APP_ENV"),
			CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		DB: DBConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			Name:       v.GetString("DB_NAME"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			TimeZone:   v.GetString("DB_TIMEZONE"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("MONGO_URI"),
			Database: v.GetString("MONGO_DATABASE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr(v.GetString("JWT_ACCESS_EXPIRY"), 15*time.Minute),
			RefreshExpiry: durationOr(v.GetString("JWT_REFRESH_EXPIRY"), 7*24*time.Hour),
		},
		Booking: BookingConfig{
			LockTTL:         durationOr(v.GetString("BOOKING_LOCK_TTL"), 5*time.Second),
			AvailabilityTTL: durationOr(v.GetString("AVAILABILITY_CACHE_TTL"), 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("DB_DRIVER must be one of %q, %q, %q, got %q", DriverPostgres, DriverSQLite, DriverMongo, c.DB.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.App.Env == "development"
}

// DSN returns the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}

// MigrateURL returns the golang-migrate URL for the pgx v5 driver.
func (c DBConfig) MigrateURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
