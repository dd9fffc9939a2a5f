package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pyama86/opsboard/domain/repository"
	"github.com/slack-go/slack"
)

// App は設定から組み立てた依存をまとめたもの
type App struct {
	Config   *repository.Config
	API      *repository.APIRepository
	Sessions *repository.FileSessionRepository
	Console  *Console
}

func Handle(ctx context.Context, configPath string) (*App, error) {
	cfg, err := repository.NewConfigRepository(configPath)
	if err != nil {
		return nil, err
	}

	api, err := repository.NewAPIRepository(cfg.API)
	if err != nil {
		return nil, err
	}
	sessions := repository.NewFileSessionRepository(cfg.Session.Path)

	var opts []Option
	if cfg.Slack.Enabled {
		notifier, err := newSlackNotifier(ctx, cfg.Slack)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithNotifier(notifier))
	}

	return &App{
		Config:   cfg,
		API:      api,
		Sessions: sessions,
		Console:  NewConsole(api, sessions, opts...),
	}, nil
}

func newSlackNotifier(ctx context.Context, cfg repository.SlackConfig) (*repository.SlackRepository, error) {
	token := os.Getenv("SLACK_BOT_TOKEN")
	if token == "" {
		return nil, errors.New("environment variable SLACK_BOT_TOKEN is required when slack is enabled")
	}
	webApi := slack.New(token)
	authTest, err := webApi.AuthTestContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN is invalid: %w", err)
	}
	slog.Info("Slack notifier enabled", slog.String("bot_id", authTest.UserID), slog.Any("channels", cfg.AnnouncementChannels))
	return repository.NewSlackRepository(webApi, cfg.AnnouncementChannels), nil
}
