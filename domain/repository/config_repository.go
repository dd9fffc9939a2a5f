package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

func NewConfigRepository(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config error: %w", err)
			}
		} else if errors.Is(err, os.ErrNotExist) {
			slog.Debug("config file not found, using defaults and environment", slog.String("path", path))
		} else {
			return nil, fmt.Errorf("stat config error: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config error: %w", err)
	}
	valid := validator.New()
	if err := valid.Struct(c); err != nil {
		return nil, fmt.Errorf("validate config error: %w", err)
	}
	if c.Slack.Enabled && len(c.Slack.AnnouncementChannels) == 0 {
		return nil, errors.New("validate config error: slack.announcement_channels is required when slack is enabled")
	}

	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.retry_count", 3)
	v.SetDefault("api.retry_interval", time.Second)
	v.SetDefault("session.path", DefaultSessionPath())
	v.SetDefault("slack.enabled", false)
	v.SetDefault("slack.announcement_channels", []string{})
}

func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".opsboard", "session.json")
	}
	return filepath.Join(home, ".opsboard", "session.json")
}

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Slack   SlackConfig   `mapstructure:"slack"`
}

type APIConfig struct {
	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RetryCount    uint          `mapstructure:"retry_count" validate:"lte=10"`
	RetryInterval time.Duration `mapstructure:"retry_interval" validate:"gte=0"`
}

type SessionConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type SlackConfig struct {
	Enabled              bool     `mapstructure:"enabled"`
	AnnouncementChannels []string `mapstructure:"announcement_channels" validate:"dive,required"`
}
