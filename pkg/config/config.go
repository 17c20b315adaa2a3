package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Razorpay gateway modes. Test mode short-circuits verification so the
// enrollment flow can be exercised without live credentials.
const (
	GatewayModeTest       = "test"
	GatewayModeProduction = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Razorpay  RazorpayConfig
	Email     EmailConfig
	Dashboard DashboardConfig
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
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RazorpayConfig holds gateway credentials and verification policy.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	Mode      string
	// LookupErrorAsSuccess keeps the legacy behaviour of treating a failed
	// gateway lookup as a successful payment when running in test mode.
	// It has no effect in production mode.
	LookupErrorAsSuccess bool
}

// Configured reports whether gateway credentials are present.
func (c RazorpayConfig) Configured() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

// TestMode reports whether the gateway runs without live verification.
func (c RazorpayConfig) TestMode() bool {
	return c.Mode != GatewayModeProduction
}

// EmailConfig holds SMTP settings and batch dispatch policy.
type EmailConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	FromAddress  string
	FromName     string
	BatchEnabled bool
	PacingDelay  time.Duration
}

// Configured reports whether SMTP delivery can be attempted.
func (c EmailConfig) Configured() bool {
	return c.Host != "" && c.FromAddress != ""
}

// DashboardConfig governs dashboard caching.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

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
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Razorpay = RazorpayConfig{
		KeyID:                v.GetString("RAZORPAY_KEY_ID"),
		KeySecret:            v.GetString("RAZORPAY_KEY_SECRET"),
		Mode:                 v.GetString("RAZORPAY_MODE"),
		LookupErrorAsSuccess: v.GetBool("RAZORPAY_LOOKUP_ERROR_AS_SUCCESS"),
	}

	batchEnabled := v.GetBool("EMAIL_BATCH_ENABLED")
	if cfg.Env == EnvProduction {
		// Bulk email is restricted to controlled administrative environments.
		batchEnabled = false
	}
	cfg.Email = EmailConfig{
		Host:         v.GetString("EMAIL_HOST"),
		Port:         v.GetInt("EMAIL_PORT"),
		Username:     v.GetString("EMAIL_USER"),
		Password:     v.GetString("EMAIL_PASSWORD"),
		FromAddress:  v.GetString("EMAIL_FROM"),
		FromName:     v.GetString("EMAIL_FROM_NAME"),
		BatchEnabled: batchEnabled,
		PacingDelay:  parseDuration(v.GetString("EMAIL_PACING_DELAY"), 500*time.Millisecond),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled: v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "course_inquiries")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RAZORPAY_KEY_ID", "")
	v.SetDefault("RAZORPAY_KEY_SECRET", "")
	v.SetDefault("RAZORPAY_MODE", GatewayModeTest)
	v.SetDefault("RAZORPAY_LOOKUP_ERROR_AS_SUCCESS", true)

	v.SetDefault("EMAIL_HOST", "")
	v.SetDefault("EMAIL_PORT", 587)
	v.SetDefault("EMAIL_USER", "")
	v.SetDefault("EMAIL_PASSWORD", "")
	v.SetDefault("EMAIL_FROM", "")
	v.SetDefault("EMAIL_FROM_NAME", "ICL Courses")
	v.SetDefault("EMAIL_BATCH_ENABLED", true)
	v.SetDefault("EMAIL_PACING_DELAY", "500ms")

	v.SetDefault("ENABLE_DASHBOARD_CACHE", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
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
