package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Cache        CacheConfig
	Planner      PlannerConfig
	Confirmation ConfirmationConfig
	RateLimit    RateLimitConfig
	Jobs         JobsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig toggles Redis caching of teacher schedules.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// PlannerConfig governs planning sessions held in memory.
type PlannerConfig struct {
	TimeZone        string
	SessionTTL      time.Duration
	ConfirmTimeout  time.Duration
	JanitorInterval time.Duration
}

// Location resolves the planner time zone, falling back to UTC.
func (p PlannerConfig) Location() *time.Location {
	if p.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ConfirmationConfig points at the external assignment confirmation service.
type ConfirmationConfig struct {
	BaseURL       string
	APIKey        string
	RatePerSecond float64
	Burst         int
	HTTPTimeout   time.Duration
}

// RateLimitConfig bounds API calls per caller.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// JobsConfig sizes the background queue that records confirmed visits.
type JobsConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *fs.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("PLANNER_SCHEDULE_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Planner = PlannerConfig{
		TimeZone:        v.GetString("PLANNER_TIMEZONE"),
		SessionTTL:      parseDuration(v.GetString("PLANNER_SESSION_TTL"), 4*time.Hour),
		ConfirmTimeout:  parseDuration(v.GetString("PLANNER_CONFIRM_TIMEOUT"), 15*time.Second),
		JanitorInterval: parseDuration(v.GetString("PLANNER_JANITOR_INTERVAL"), 5*time.Minute),
	}

	cfg.Confirmation = ConfirmationConfig{
		BaseURL:       strings.TrimRight(v.GetString("CONFIRMATION_BASE_URL"), "/"),
		APIKey:        v.GetString("CONFIRMATION_API_KEY"),
		RatePerSecond: v.GetFloat64("CONFIRMATION_RATE_PER_SECOND"),
		Burst:         v.GetInt("CONFIRMATION_BURST"),
		HTTPTimeout:   parseDuration(v.GetString("CONFIRMATION_HTTP_TIMEOUT"), 10*time.Second),
	}

	cfg.RateLimit = RateLimitConfig{
		PerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		Burst:     v.GetInt("RATE_LIMIT_BURST"),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOB_WORKERS"),
		MaxRetries: v.GetInt("JOB_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOB_RETRY_DELAY"), 2*time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "accompaniment_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("PLANNER_SCHEDULE_CACHE_TTL", "10m")
	v.SetDefault("PLANNER_TIMEZONE", "America/Santiago")
	v.SetDefault("PLANNER_SESSION_TTL", "4h")
	v.SetDefault("PLANNER_CONFIRM_TIMEOUT", "15s")

	v.SetDefault("CONFIRMATION_BASE_URL", "http://localhost:9090")
	v.SetDefault("CONFIRMATION_API_KEY", "")
	v.SetDefault("CONFIRMATION_RATE_PER_SECOND", 5)
	v.SetDefault("CONFIRMATION_BURST", 5)
	v.SetDefault("CONFIRMATION_HTTP_TIMEOUT", "10s")

	v.SetDefault("PLANNER_JANITOR_INTERVAL", "5m")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 120)
	v.SetDefault("RATE_LIMIT_BURST", 30)
	v.SetDefault("JOB_WORKERS", 2)
	v.SetDefault("JOB_MAX_RETRIES", 3)
	v.SetDefault("JOB_RETRY_DELAY", "2s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
