package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const devSessionKey = "super-secret-default-key"

type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	SessionKey  string
	// Secure cookies only in prod (HTTPS).
	SecureCookies bool

	AdminPhone    string
	AdminUsername string
	AdminPassword string
	DefaultLang   string

	UploadDir     string
	MaxImageWidth int
	MaxUploadMB   int64

	LogLevel  string
	SentryDSN string
	Release   string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// GoogleEnabled reports whether Google sign-in is fully configured.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=eduportal port=5432 sslmode=disable")
	v.SetDefault("SESSION_KEY", "")
	v.SetDefault("ADMIN_PHONE", "+201124592083")
	v.SetDefault("ADMIN_USERNAME", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("DEFAULT_LANG", "ar")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_IMAGE_WIDTH", 1600)
	v.SetDefault("MAX_UPLOAD_MB", 512)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("RELEASE", "dev")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "")
	v.AutomaticEnv()
	return v
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, errors.Wrap(err, "loading .env")
		}
	}
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Env:                strings.ToLower(v.GetString("APP_ENV")),
		Port:               v.GetString("PORT"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		SessionKey:         v.GetString("SESSION_KEY"),
		AdminPhone:         v.GetString("ADMIN_PHONE"),
		AdminUsername:      v.GetString("ADMIN_USERNAME"),
		AdminPassword:      v.GetString("ADMIN_PASSWORD"),
		DefaultLang:        v.GetString("DEFAULT_LANG"),
		UploadDir:          v.GetString("UPLOAD_DIR"),
		MaxImageWidth:      v.GetInt("MAX_IMAGE_WIDTH"),
		MaxUploadMB:        v.GetInt64("MAX_UPLOAD_MB"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		SentryDSN:          v.GetString("SENTRY_DSN"),
		Release:            v.GetString("RELEASE"),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
	}
	cfg.SecureCookies = cfg.Env == "prod"

	if cfg.SessionKey == "" {
		if cfg.Env == "prod" {
			return Config{}, errors.New("SESSION_KEY is required in prod")
		}
		cfg.SessionKey = devSessionKey
	}
	if cfg.MaxImageWidth < 0 {
		return Config{}, errors.Errorf("MAX_IMAGE_WIDTH must not be negative, got %d", cfg.MaxImageWidth)
	}
	return cfg, nil
}
