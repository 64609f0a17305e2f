package infra

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string        `validate:"required,oneof=development staging production test"`
	Port              string        `validate:"required,numeric"`
	DatabaseURL       string        `validate:"omitempty,url"`
	StoragePath       string        `validate:"required"`
	GeoIPDBPath       string        `validate:"omitempty,file"`
	ImageProvider     string        `validate:"oneof=gemini qwen synthetic"`
	GeminiAPIKey      string
	GeminiModel       string        `validate:"required"`
	GeminiBaseURL     string        `validate:"required,url"`
	QwenAPIKey        string
	QwenModel         string        `validate:"required"`
	QwenBaseURL       string        `validate:"required,url"`
	GenerationTimeout time.Duration `validate:"gt=0"`
	HTTPReadTimeout   time.Duration `validate:"gt=0"`
	HTTPWriteTimeout  time.Duration `validate:"gt=0"`
	HTTPIdleTimeout   time.Duration `validate:"gt=0"`
	RateLimitPerMin   int           `validate:"gte=0"`
	CORSOrigins       []string
	SessionLifetime   time.Duration `validate:"gt=0"`
	StudioIdleTTL     time.Duration `validate:"gt=0"`
	DefaultLocale     string        `validate:"oneof=en id"`
	LogoMaxBytes      int64         `validate:"gt=0"`
}

// HasDatabase reports whether a Postgres connection string was supplied.
func (c *Config) HasDatabase() bool {
	return c != nil && strings.TrimSpace(c.DatabaseURL) != ""
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator instance used for config and request payloads.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// The .env file, when present, is loaded by the caller before this runs.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("STORAGE_PATH", "./storage")
	v.SetDefault("IMAGE_PROVIDER", "gemini")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash-image")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("QWEN_MODEL", "qwen-image-edit")
	v.SetDefault("QWEN_BASE_URL", "https://dashscope-intl.aliyuncs.com/api/v1")
	v.SetDefault("GENERATION_TIMEOUT_SECONDS", 120)
	v.SetDefault("HTTP_READ_TIMEOUT_SECONDS", 15)
	v.SetDefault("HTTP_WRITE_TIMEOUT_SECONDS", 30)
	v.SetDefault("HTTP_IDLE_TIMEOUT_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("SESSION_LIFETIME", "24h")
	v.SetDefault("STUDIO_IDLE_TTL", "2h")
	v.SetDefault("DEFAULT_LOCALE", "en")
	v.SetDefault("LOGO_MAX_BYTES", 10<<20)

	cfg := &Config{
		AppEnv:            strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		Port:              strings.TrimSpace(v.GetString("PORT")),
		DatabaseURL:       strings.TrimSpace(v.GetString("DATABASE_URL")),
		StoragePath:       v.GetString("STORAGE_PATH"),
		GeoIPDBPath:       strings.TrimSpace(v.GetString("GEOIP_DB_PATH")),
		ImageProvider:     strings.ToLower(strings.TrimSpace(v.GetString("IMAGE_PROVIDER"))),
		GeminiAPIKey:      strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		GeminiModel:       v.GetString("GEMINI_MODEL"),
		GeminiBaseURL:     v.GetString("GEMINI_BASE_URL"),
		QwenAPIKey:        strings.TrimSpace(v.GetString("QWEN_API_KEY")),
		QwenModel:         v.GetString("QWEN_MODEL"),
		QwenBaseURL:       v.GetString("QWEN_BASE_URL"),
		GenerationTimeout: time.Second * time.Duration(v.GetInt("GENERATION_TIMEOUT_SECONDS")),
		HTTPReadTimeout:   time.Second * time.Duration(v.GetInt("HTTP_READ_TIMEOUT_SECONDS")),
		HTTPWriteTimeout:  time.Second * time.Duration(v.GetInt("HTTP_WRITE_TIMEOUT_SECONDS")),
		HTTPIdleTimeout:   time.Second * time.Duration(v.GetInt("HTTP_IDLE_TIMEOUT_SECONDS")),
		RateLimitPerMin:   v.GetInt("RATE_LIMIT_PER_MINUTE"),
		CORSOrigins:       splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		DefaultLocale:     strings.ToLower(strings.TrimSpace(v.GetString("DEFAULT_LOCALE"))),
		LogoMaxBytes:      v.GetInt64("LOGO_MAX_BYTES"),
	}

	var err error
	if cfg.SessionLifetime, err = time.ParseDuration(v.GetString("SESSION_LIFETIME")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME: %w", err)
	}
	if cfg.StudioIdleTTL, err = time.ParseDuration(v.GetString("STUDIO_IDLE_TTL")); err != nil {
		return nil, fmt.Errorf("invalid STUDIO_IDLE_TTL: %w", err)
	}

	if err := Validator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
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
