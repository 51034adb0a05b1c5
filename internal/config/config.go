package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Log      LogConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User             string
	Password         string
	Name             string
	Host             string
	Port             int
	SSLMode          string
	MaxConns         int
	StatementTimeout time.Duration
	AutoMigrate      bool
}

// DSN renders the connection URL for pgx.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type LogConfig struct {
	Level  slog.Level
	Format string
}

type BookingConfig struct {
	ViewCacheTTL     time.Duration
	CreateRateLimit  int
	CreateRateWindow time.Duration
	IdempotencyTTL   time.Duration
	DefaultLimit     int
	MaxLimit         int
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverPort, err := envInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: envString("SERVER_HOST", "localhost"),
		Port: serverPort,
	}

	postgresPort, err := envInt("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	maxConns, err := envInt("POSTGRES_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	statementTimeout, err := envDuration("POSTGRES_STATEMENT_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	autoMigrate, err := envBool("POSTGRES_AUTO_MIGRATE", true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresCfg := PostgresConfig{
		User:             postgresUser,
		Password:         postgresPassword,
		Name:             postgresDB,
		Host:             envString("POSTGRES_HOST", "localhost"),
		Port:             postgresPort,
		SSLMode:          envString("POSTGRES_SSLMODE", "disable"),
		MaxConns:         maxConns,
		StatementTimeout: statementTimeout,
		AutoMigrate:      autoMigrate,
	}

	redisDB, err := envInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     envString("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(envString("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("%s: invalid LOG_LEVEL: %w", op, err)
	}

	logFormat := strings.ToLower(envString("LOG_FORMAT", "text"))
	if logFormat != "text" && logFormat != "json" {
		return nil, fmt.Errorf("%s: invalid LOG_FORMAT %q", op, logFormat)
	}

	bookingCfg, err := bookingConfig()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Log:      LogConfig{Level: level, Format: logFormat},
		Booking:  bookingCfg,
	}, nil
}

func bookingConfig() (BookingConfig, error) {
	var (
		cfg BookingConfig
		err error
	)

	if cfg.ViewCacheTTL, err = envDuration("BOOKING_VIEW_CACHE_TTL", 30*time.Second); err != nil {
		return cfg, err
	}
	if cfg.CreateRateLimit, err = envInt("BOOKING_CREATE_RATE_LIMIT", 30); err != nil {
		return cfg, err
	}
	if cfg.CreateRateWindow, err = envDuration("BOOKING_CREATE_RATE_WINDOW", time.Minute); err != nil {
		return cfg, err
	}
	if cfg.IdempotencyTTL, err = envDuration("IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.DefaultLimit, err = envInt("PAGE_DEFAULT_LIMIT", 10); err != nil {
		return cfg, err
	}
	if cfg.MaxLimit, err = envInt("PAGE_MAX_LIMIT", 100); err != nil {
		return cfg, err
	}

	if cfg.DefaultLimit > cfg.MaxLimit {
		return cfg, fmt.Errorf("PAGE_DEFAULT_LIMIT %d exceeds PAGE_MAX_LIMIT %d", cfg.DefaultLimit, cfg.MaxLimit)
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
