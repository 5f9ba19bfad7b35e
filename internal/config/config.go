package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment variables
// and an optional config file pointed to by CONFIG_FILE.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	DBDriver    string `mapstructure:"DB_DRIVER"`
	DBDSN       string `mapstructure:"DB_DSN"`
	ResetDB     bool   `mapstructure:"RESET_DB"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`
	RedisDB     int    `mapstructure:"REDIS_DB"`
	RedisPass   string `mapstructure:"REDIS_PASSWORD"`
	SwaggerHost string `mapstructure:"SWAGGER_HOST"`

	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	JWTIssuer       string        `mapstructure:"JWT_ISSUER"`
	AccessTokenTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`
	AuthRateLimit   string        `mapstructure:"AUTH_RATE_LIMIT"`

	// RateLimitIPHeader carries the client address set by the gateway. Clear it
	// when the server is reachable without the gateway in front.
	RateLimitIPHeader string `mapstructure:"RATE_LIMIT_IP_HEADER"`

	ReposRoot      string `mapstructure:"REPOS_ROOT"`
	MaxUploadBytes int64  `mapstructure:"MAX_UPLOAD_BYTES"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	GatewayPort          string   `mapstructure:"GATEWAY_PORT"`
	GatewayAuthUpstreams []string `mapstructure:"GATEWAY_AUTH_UPSTREAMS"`
	GatewayGitUpstreams  []string `mapstructure:"GATEWAY_GIT_UPSTREAMS"`
	CORSAllowedOrigins   []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":            "8080",
	"DB_DRIVER":              "postgres",
	"DB_DSN":                 "host=localhost user=postgres password=postgres dbname=fruitygit port=5432 sslmode=disable",
	"RESET_DB":               false,
	"REDIS_ADDR":             "localhost:6379",
	"REDIS_DB":               0,
	"REDIS_PASSWORD":         "",
	"SWAGGER_HOST":           "",
	"JWT_SECRET":             "change-me",
	"JWT_ISSUER":             "fruitygit",
	"ACCESS_TOKEN_TTL":       "15m",
	"REFRESH_TOKEN_TTL":      "168h",
	"AUTH_RATE_LIMIT":        "20-M",
	"RATE_LIMIT_IP_HEADER":   "X-Real-Ip",
	"REPOS_ROOT":             "./data/repos",
	"MAX_UPLOAD_BYTES":       100 * 1024 * 1024,
	"LOG_LEVEL":              "info",
	"LOG_PRETTY":             false,
	"GATEWAY_PORT":           "8000",
	"GATEWAY_AUTH_UPSTREAMS": "http://localhost:8080",
	"GATEWAY_GIT_UPSTREAMS":  "http://localhost:8080",
	"CORS_ALLOWED_ORIGINS":   "*",
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", p, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.GatewayAuthUpstreams = splitList(cfg.GatewayAuthUpstreams)
	cfg.GatewayGitUpstreams = splitList(cfg.GatewayGitUpstreams)
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or mysql, got %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is a required configuration field")
	}
	if c.ReposRoot == "" {
		return fmt.Errorf("REPOS_ROOT is a required configuration field")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	return nil
}

// splitList accepts either a real list (config file) or a single
// comma separated value (environment variable).
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
