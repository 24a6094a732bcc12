package config

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Overseerr OverseerrConfig `mapstructure:"overseerr"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Message   MessageOptions  `mapstructure:"message"`
	Logging   LoggingConfig   `mapstructure:"logging"`

	v       *viper.Viper
	message atomic.Pointer[MessageOptions]
}

type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         int64         `mapstructure:"chat_id"`
	PollingTimeout int           `mapstructure:"polling_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type OverseerrConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WebhookConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	Secret     string `mapstructure:"secret"`
}

type AuthConfig struct {
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	MaxLoginAttempts  int           `mapstructure:"max_login_attempts"`
	LockoutWindow     time.Duration `mapstructure:"lockout_window"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	JSONFormat bool   `mapstructure:"json_format"`
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("telegram.polling_timeout", 60)
	v.SetDefault("telegram.request_timeout", "30s")
	v.SetDefault("overseerr.timeout", "15s")
	v.SetDefault("webhook.listen_addr", ":8080")
	v.SetDefault("auth.max_login_attempts", 5)
	v.SetDefault("auth.lockout_window", "5m")
	v.SetDefault("storage.db_path", "data/allowlist.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json_format", false)
	setMessageDefaults(v)

	// Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/overseerr-approval-bot")

	// Environment variables
	v.SetEnvPrefix("OVERSEERR_BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found is OK, use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	cfg.v = v
	msg := cfg.Message
	cfg.message.Store(&msg)

	return &cfg, nil
}

// placeholderMarkers are substrings that identify example values copied
// straight out of documentation. A setting containing one is treated as
// missing.
var placeholderMarkers = []string{
	"your-", "your_", "changeme", "change-me", "example", "<", "xxx",
}

func isPlaceholder(value string) bool {
	lower := strings.ToLower(value)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func requireSetting(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	if isPlaceholder(value) {
		return fmt.Errorf("%s looks like a placeholder value, set a real one", name)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := requireSetting("telegram.bot_token", c.Telegram.BotToken); err != nil {
		return err
	}
	if c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if err := requireSetting("overseerr.base_url", c.Overseerr.BaseURL); err != nil {
		return err
	}
	if err := requireSetting("overseerr.api_key", c.Overseerr.APIKey); err != nil {
		return err
	}
	if err := requireSetting("webhook.secret", c.Webhook.Secret); err != nil {
		return err
	}
	if err := requireSetting("auth.admin_password_hash", c.Auth.AdminPasswordHash); err != nil {
		return err
	}
	if c.Auth.MaxLoginAttempts < 1 {
		return fmt.Errorf("auth.max_login_attempts must be at least 1")
	}
	if c.Auth.LockoutWindow <= 0 {
		return fmt.Errorf("auth.lockout_window must be positive")
	}
	if c.Message.SynopsisMaxLength < 4 {
		return fmt.Errorf("message.synopsis_max_length must be at least 4")
	}
	if c.Message.CastMaxItems < 1 {
		return fmt.Errorf("message.cast_max_items must be at least 1")
	}
	if c.Message.CrewMaxItems < 1 {
		return fmt.Errorf("message.crew_max_items must be at least 1")
	}
	return nil
}
