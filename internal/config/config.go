package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable the service reads.
const EnvPrefix = "PAGECRAFTER"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	JWT        JWTConfig
	S3         S3Config
	Log        LogConfig
	Generator  GeneratorConfig
	Extraction ExtractionConfig
	CORS       CORSConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds settings for the export bucket.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GeneratorConfig selects and configures the language model provider.
type GeneratorConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	BaseURL     string `mapstructure:"base_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	MaxTokens   int    `mapstructure:"max_tokens"`
	// ThinkingBudget is passed to providers that support it; -1 lets the model decide.
	ThinkingBudget int `mapstructure:"thinking_budget"`

	// Fallback* name a second provider used while the primary is rate limited.
	FallbackProvider string `mapstructure:"fallback_provider"`
	FallbackAPIKey   string `mapstructure:"fallback_api_key"`
	FallbackModel    string `mapstructure:"fallback_model"`
}

// Secondary returns the fallback provider's config, inheriting timeouts and
// limits from the primary. ok is false when no fallback provider is set.
func (g *GeneratorConfig) Secondary() (cfg GeneratorConfig, ok bool) {
	if g.FallbackProvider == "" || g.FallbackProvider == g.Provider {
		return GeneratorConfig{}, false
	}
	return GeneratorConfig{
		Provider:       g.FallbackProvider,
		APIKey:         g.FallbackAPIKey,
		Model:          g.FallbackModel,
		TimeoutSecs:    g.TimeoutSecs,
		MaxTokens:      g.MaxTokens,
		ThinkingBudget: g.ThinkingBudget,
	}, true
}

// ExtractionConfig holds the sentinel tokens shared by prompts and extraction.
type ExtractionConfig struct {
	SummaryMarker string `mapstructure:"summary_marker"`
	PayloadStart  string `mapstructure:"payload_start"`
	PayloadEnd    string `mapstructure:"payload_end"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig limits generation requests per caller.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// Load reads configuration from environment variables with the PAGECRAFTER_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.shutdown_timeout", "20s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "pagecrafter")
	v.SetDefault("db.password", "pagecrafter_secret")
	v.SetDefault("db.name", "pagecrafter_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "pagecrafter")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "pagecrafter-exports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Generator defaults
	v.SetDefault("generator.provider", "gemini")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.model", "gemini-2.5-flash")
	v.SetDefault("generator.base_url", "")
	v.SetDefault("generator.timeout_secs", 120)
	v.SetDefault("generator.max_tokens", 8192)
	v.SetDefault("generator.thinking_budget", -1)
	v.SetDefault("generator.fallback_provider", "")
	v.SetDefault("generator.fallback_api_key", "")
	v.SetDefault("generator.fallback_model", "")

	// Extraction markers
	v.SetDefault("extraction.summary_marker", "RESPONSE:")
	v.SetDefault("extraction.payload_start", "JSON_START")
	v.SetDefault("extraction.payload_end", "JSON_END")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")
	v.SetDefault("cors.max_age", "12h")

	// Redis and rate limiting
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests", 20)
	v.SetDefault("rate_limit.window", "1m")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string][]string{
		"server.port":                 {"PAGECRAFTER_SERVER_PORT"},
		"server.read_timeout":         {"PAGECRAFTER_SERVER_READ_TIMEOUT"},
		"server.write_timeout":        {"PAGECRAFTER_SERVER_WRITE_TIMEOUT"},
		"server.shutdown_timeout":     {"PAGECRAFTER_SERVER_SHUTDOWN_TIMEOUT"},
		"server.environment":          {"PAGECRAFTER_SERVER_ENVIRONMENT"},
		"db.host":                     {"PAGECRAFTER_DB_HOST"},
		"db.port":                     {"PAGECRAFTER_DB_PORT"},
		"db.user":                     {"PAGECRAFTER_DB_USER"},
		"db.password":                 {"PAGECRAFTER_DB_PASSWORD"},
		"db.name":                     {"PAGECRAFTER_DB_NAME"},
		"db.sslmode":                  {"PAGECRAFTER_DB_SSLMODE"},
		"db.max_open":                 {"PAGECRAFTER_DB_MAX_OPEN"},
		"db.max_idle":                 {"PAGECRAFTER_DB_MAX_IDLE"},
		"jwt.secret":                  {"PAGECRAFTER_JWT_SECRET"},
		"jwt.access_expiry":           {"PAGECRAFTER_JWT_ACCESS_EXPIRY"},
		"jwt.refresh_expiry":          {"PAGECRAFTER_JWT_REFRESH_EXPIRY"},
		"jwt.issuer":                  {"PAGECRAFTER_JWT_ISSUER"},
		"s3.region":                   {"PAGECRAFTER_S3_REGION"},
		"s3.bucket":                   {"PAGECRAFTER_S3_BUCKET"},
		"s3.endpoint":                 {"PAGECRAFTER_S3_ENDPOINT"},
		"s3.access_key":               {"PAGECRAFTER_S3_ACCESS_KEY"},
		"s3.secret_key":               {"PAGECRAFTER_S3_SECRET_KEY"},
		"s3.presign_expiry":           {"PAGECRAFTER_S3_PRESIGN_EXPIRY"},
		"log.level":                   {"PAGECRAFTER_LOG_LEVEL"},
		"log.format":                  {"PAGECRAFTER_LOG_FORMAT"},
		"generator.provider":          {"PAGECRAFTER_GENERATOR_PROVIDER"},
		"generator.api_key":           {"PAGECRAFTER_GENERATOR_API_KEY", "GEMINI_API_KEY"},
		"generator.model":             {"PAGECRAFTER_GENERATOR_MODEL"},
		"generator.base_url":          {"PAGECRAFTER_GENERATOR_BASE_URL"},
		"generator.timeout_secs":      {"PAGECRAFTER_GENERATOR_TIMEOUT_SECS"},
		"generator.max_tokens":        {"PAGECRAFTER_GENERATOR_MAX_TOKENS"},
		"generator.thinking_budget":   {"PAGECRAFTER_GENERATOR_THINKING_BUDGET"},
		"generator.fallback_provider": {"PAGECRAFTER_GENERATOR_FALLBACK_PROVIDER"},
		"generator.fallback_api_key":  {"PAGECRAFTER_GENERATOR_FALLBACK_API_KEY"},
		"generator.fallback_model":    {"PAGECRAFTER_GENERATOR_FALLBACK_MODEL"},
		"extraction.summary_marker":   {"PAGECRAFTER_EXTRACTION_SUMMARY_MARKER"},
		"extraction.payload_start":    {"PAGECRAFTER_EXTRACTION_PAYLOAD_START"},
		"extraction.payload_end":      {"PAGECRAFTER_EXTRACTION_PAYLOAD_END"},
		"cors.allowed_origins":        {"PAGECRAFTER_CORS_ALLOWED_ORIGINS"},
		"cors.max_age":                {"PAGECRAFTER_CORS_MAX_AGE"},
		"redis.addr":                  {"PAGECRAFTER_REDIS_ADDR"},
		"redis.password":              {"PAGECRAFTER_REDIS_PASSWORD"},
		"redis.db":                    {"PAGECRAFTER_REDIS_DB"},
		"rate_limit.enabled":          {"PAGECRAFTER_RATE_LIMIT_ENABLED"},
		"rate_limit.requests":         {"PAGECRAFTER_RATE_LIMIT_REQUESTS"},
		"rate_limit.window":           {"PAGECRAFTER_RATE_LIMIT_WINDOW"},
	}
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it if PAGECRAFTER_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PAGECRAFTER_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Generator = GeneratorConfig{
		Provider:       strings.ToLower(v.GetString("generator.provider")),
		APIKey:         v.GetString("generator.api_key"),
		Model:          v.GetString("generator.model"),
		BaseURL:        v.GetString("generator.base_url"),
		TimeoutSecs:    v.GetInt("generator.timeout_secs"),
		MaxTokens:      v.GetInt("generator.max_tokens"),
		ThinkingBudget: v.GetInt("generator.thinking_budget"),

		FallbackProvider: strings.ToLower(v.GetString("generator.fallback_provider")),
		FallbackAPIKey:   v.GetString("generator.fallback_api_key"),
		FallbackModel:    v.GetString("generator.fallback_model"),
	}
	cfg.Extraction = ExtractionConfig{
		SummaryMarker: v.GetString("extraction.summary_marker"),
		PayloadStart:  v.GetString("extraction.payload_start"),
		PayloadEnd:    v.GetString("extraction.payload_end"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
		MaxAge:         v.GetDuration("cors.max_age"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.RateLimit = RateLimitConfig{
		Enabled:  v.GetBool("rate_limit.enabled"),
		Requests: v.GetInt("rate_limit.requests"),
		Window:   v.GetDuration("rate_limit.window"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Extraction.PayloadStart == c.Extraction.PayloadEnd {
		return fmt.Errorf("config: extraction payload markers must differ, both are %q", c.Extraction.PayloadStart)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("config: rate_limit requires positive requests and window")
	}
	return nil
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
