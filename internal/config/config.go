package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Gateway   GatewayConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GatewayConfig holds settings for the upstream AI completion provider.
type GatewayConfig struct {
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Endpoint    string  `mapstructure:"endpoint"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
}

// Configured reports whether a secret key is available for the provider.
func (g *GatewayConfig) Configured() bool {
	return strings.TrimSpace(g.APIKey) != ""
}

// Timeout returns the HTTP client timeout for upstream calls.
func (g *GatewayConfig) Timeout() time.Duration {
	if g.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(g.TimeoutSecs) * time.Second
}

// RateLimitConfig holds the global admission window settings.
type RateLimitConfig struct {
	Backend       string        `mapstructure:"backend"`
	Limit         int           `mapstructure:"limit"`
	Window        time.Duration `mapstructure:"window"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisKey      string        `mapstructure:"redis_key"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TelemetryConfig holds OpenTelemetry trace export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
	Insecure     bool   `mapstructure:"insecure"`
}

// Load reads configuration from environment variables with the ORTHOCODE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ORTHOCODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Gateway defaults
	v.SetDefault("gateway.provider", "claude")
	v.SetDefault("gateway.api_key", "")
	v.SetDefault("gateway.model", "")
	v.SetDefault("gateway.endpoint", "")
	v.SetDefault("gateway.max_tokens", 2000)
	v.SetDefault("gateway.temperature", 0.1)
	v.SetDefault("gateway.timeout_secs", 120)

	// Rate limit defaults
	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.limit", 10)
	v.SetDefault("rate_limit.window", "60s")
	v.SetDefault("rate_limit.redis_addr", "localhost:6379")
	v.SetDefault("rate_limit.redis_password", "")
	v.SetDefault("rate_limit.redis_db", 0)
	v.SetDefault("rate_limit.redis_key", "orthocode:ratelimit:generate-codes")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", "*")

	// Telemetry defaults
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "orthocode")
	v.SetDefault("telemetry.insecure", false)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "ORTHOCODE_SERVER_PORT",
		"server.read_timeout":       "ORTHOCODE_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "ORTHOCODE_SERVER_WRITE_TIMEOUT",
		"server.environment":        "ORTHOCODE_SERVER_ENVIRONMENT",
		"server.max_body_bytes":     "ORTHOCODE_SERVER_MAX_BODY_BYTES",
		"log.level":                 "ORTHOCODE_LOG_LEVEL",
		"log.format":                "ORTHOCODE_LOG_FORMAT",
		"gateway.provider":          "ORTHOCODE_GATEWAY_PROVIDER",
		"gateway.api_key":           "ORTHOCODE_GATEWAY_API_KEY",
		"gateway.model":             "ORTHOCODE_GATEWAY_MODEL",
		"gateway.endpoint":          "ORTHOCODE_GATEWAY_ENDPOINT",
		"gateway.max_tokens":        "ORTHOCODE_GATEWAY_MAX_TOKENS",
		"gateway.temperature":       "ORTHOCODE_GATEWAY_TEMPERATURE",
		"gateway.timeout_secs":      "ORTHOCODE_GATEWAY_TIMEOUT_SECS",
		"rate_limit.backend":        "ORTHOCODE_RATE_LIMIT_BACKEND",
		"rate_limit.limit":          "ORTHOCODE_RATE_LIMIT_LIMIT",
		"rate_limit.window":         "ORTHOCODE_RATE_LIMIT_WINDOW",
		"rate_limit.redis_addr":     "ORTHOCODE_RATE_LIMIT_REDIS_ADDR",
		"rate_limit.redis_password": "ORTHOCODE_RATE_LIMIT_REDIS_PASSWORD",
		"rate_limit.redis_db":       "ORTHOCODE_RATE_LIMIT_REDIS_DB",
		"rate_limit.redis_key":      "ORTHOCODE_RATE_LIMIT_REDIS_KEY",
		"cors.allowed_origins":      "ORTHOCODE_CORS_ALLOWED_ORIGINS",
		"telemetry.otlp_endpoint":   "ORTHOCODE_TELEMETRY_OTLP_ENDPOINT",
		"telemetry.service_name":    "ORTHOCODE_TELEMETRY_SERVICE_NAME",
		"telemetry.insecure":        "ORTHOCODE_TELEMETRY_INSECURE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if ORTHOCODE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ORTHOCODE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxBodyBytes: v.GetInt64("server.max_body_bytes"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// The edge-function deployment used ANTHROPIC_API_KEY and CLAUDE_MODEL directly.
	// They only apply to the claude provider so the key never reaches another vendor.
	provider := strings.ToLower(strings.TrimSpace(v.GetString("gateway.provider")))
	apiKey := v.GetString("gateway.api_key")
	model := v.GetString("gateway.model")
	if provider == "claude" {
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if model == "" {
			model = os.Getenv("CLAUDE_MODEL")
		}
	}
	cfg.Gateway = GatewayConfig{
		Provider:    provider,
		APIKey:      strings.TrimSpace(apiKey),
		Model:       strings.TrimSpace(model),
		Endpoint:    v.GetString("gateway.endpoint"),
		MaxTokens:   v.GetInt("gateway.max_tokens"),
		Temperature: v.GetFloat64("gateway.temperature"),
		TimeoutSecs: v.GetInt("gateway.timeout_secs"),
	}

	cfg.RateLimit = RateLimitConfig{
		Backend:       strings.ToLower(v.GetString("rate_limit.backend")),
		Limit:         v.GetInt("rate_limit.limit"),
		Window:        v.GetDuration("rate_limit.window"),
		RedisAddr:     v.GetString("rate_limit.redis_addr"),
		RedisPassword: v.GetString("rate_limit.redis_password"),
		RedisDB:       v.GetInt("rate_limit.redis_db"),
		RedisKey:      v.GetString("rate_limit.redis_key"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Telemetry = TelemetryConfig{
		OTLPEndpoint: v.GetString("telemetry.otlp_endpoint"),
		ServiceName:  v.GetString("telemetry.service_name"),
		Insecure:     v.GetBool("telemetry.insecure"),
	}

	return cfg, nil
}
