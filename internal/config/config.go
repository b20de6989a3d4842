package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	AppID       string `mapstructure:"app_id"`
	AppSecret   string `mapstructure:"app_secret"`
	AccessToken string `mapstructure:"access_token"`

	BaseURL             string        `mapstructure:"base_url"`
	HTTPTimeoutSeconds  int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout         time.Duration `mapstructure:"-"`
	HTTPRetryCount      int           `mapstructure:"http_retry_count"`
	TextualContentTypes string        `mapstructure:"textual_content_types"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`

	PublishersFile string `mapstructure:"publishers_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-wxoa")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("app_id", "")
	v.SetDefault("app_secret", "")
	v.SetDefault("access_token", "")
	v.SetDefault("base_url", "https://api.weixin.qq.com/")
	v.SetDefault("http_timeout_seconds", 10)
	v.SetDefault("http_retry_count", 1)
	v.SetDefault("textual_content_types", "")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/wxoa.db")
	v.SetDefault("storage_cleanup_interval_seconds", int64((time.Hour)/time.Second))
	v.SetDefault("publishers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize validates the raw values and derives the duration fields.
func (cfg *Config) normalize() error {
	cfg.AppID = strings.TrimSpace(cfg.AppID)
	cfg.AppSecret = strings.TrimSpace(cfg.AppSecret)
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)

	if cfg.AccessToken == "" && (cfg.AppID == "" || cfg.AppSecret == "") {
		return fmt.Errorf("either access_token or both app_id and app_secret must be set")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("invalid base_url (must not be empty)")
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.HTTPRetryCount < 0 {
		return fmt.Errorf("invalid http_retry_count (must not be negative)")
	}

	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	cfg.PublishersFile = strings.TrimSpace(cfg.PublishersFile)
	return nil
}

// ContentTypePrefixes splits the configured textual content type allow-list.
// An empty result means the SDK defaults apply.
func (cfg *Config) ContentTypePrefixes() []string {
	if cfg == nil || strings.TrimSpace(cfg.TextualContentTypes) == "" {
		return nil
	}
	parts := strings.Split(cfg.TextualContentTypes, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
