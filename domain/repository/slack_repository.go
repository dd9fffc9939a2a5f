package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Songmu/retry"
	ttlcache "github.com/jellydator/ttlcache/v3"
	"github.com/pyama86/opsboard/domain/entity"
	"github.com/pyama86/opsboard/presentation/blocks"
	"github.com/slack-go/slack"
)

var ErrSlackNotFound = fmt.Errorf("not found")

// SlackRepository は作成したインシデントを告知チャンネルへ投稿する
type SlackRepository struct {
	client        *slack.Client
	channels      []string
	channelsCache *ttlcache.Cache[string, []slack.Channel]
	retryCount    uint
	retryInterval time.Duration
}

type SlackOption func(*SlackRepository)

func WithSlackRetry(count uint, interval time.Duration) SlackOption {
	return func(r *SlackRepository) {
		r.retryCount = count
		r.retryInterval = interval
	}
}

func NewSlackRepository(client *slack.Client, announcementChannels []string, opts ...SlackOption) *SlackRepository {
	r := &SlackRepository{
		client:        client,
		channels:      announcementChannels,
		channelsCache: ttlcache.New(ttlcache.WithTTL[string, []slack.Channel](time.Hour)),
		retryCount:    3,
		retryInterval: 3 * time.Second,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (h *SlackRepository) FlushChannelCache() {
	h.channelsCache.DeleteAll()
}

func (h *SlackRepository) NotifyIncidentCreated(ctx context.Context, tab entity.Tab, payload any) error {
	msg := slack.MsgOptionBlocks(blocks.IncidentCreated(tab, payload)...)

	var errs []error
	for _, name := range h.channels {
		channelID, err := h.resolveChannelID(ctx, name)
		if err != nil {
			slog.Error("Failed to resolve announcement channel", slog.String("channel", name), slog.Any("err", err))
			errs = append(errs, fmt.Errorf("resolve %s: %w", name, err))
			continue
		}
		if err := h.postMessage(ctx, channelID, msg); err != nil {
			errs = append(errs, fmt.Errorf("post %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (h *SlackRepository) postMessage(ctx context.Context, channelID string, opts ...slack.MsgOption) error {
	err := retry.Retry(max(h.retryCount, 1), h.retryInterval, func() error {
		_, _, err := h.client.PostMessageContext(ctx, channelID, opts...)
		if err != nil {
			slog.Warn("PostMessage", slog.Any("channelID", channelID), slog.Any("err", err))
		}
		return err
	})
	if err != nil {
		slog.Error("Failed to PostMessage", slog.Any("err", err))
	}
	return err
}

// resolveChannelID は "#name" か "name" をチャンネル ID に変換する。ID はそのまま返す
func (h *SlackRepository) resolveChannelID(ctx context.Context, name string) (string, error) {
	if !strings.HasPrefix(name, "#") && looksLikeChannelID(name) {
		return name, nil
	}
	channel, err := h.GetChannelByName(ctx, name)
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

func looksLikeChannelID(s string) bool {
	if len(s) < 9 || (s[0] != 'C' && s[0] != 'G') {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func (h *SlackRepository) GetChannelByName(ctx context.Context, name string) (*slack.Channel, error) {
	channels, err := h.getChannels(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range channels {
		if c.Name == strings.TrimPrefix(name, "#") {
			return &c, nil
		}
	}
	return nil, ErrSlackNotFound
}

func (h *SlackRepository) getChannels(ctx context.Context) ([]slack.Channel, error) {
	cacheKey := "channels"
	if channels := h.channelsCache.Get(cacheKey); channels != nil {
		return channels.Value(), nil
	}
	nextCursor := ""
	channels := make([]slack.Channel, 0)
	for {
		cs, next, err := h.client.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			Limit:           1000,
			Cursor:          nextCursor,
			ExcludeArchived: true,
		})
		if err != nil {
			return nil, err
		}
		channels = append(channels, cs...)
		if next == "" {
			break
		}
		nextCursor = next
	}

	h.channelsCache.Set(cacheKey, channels, ttlcache.DefaultTTL)
	return channels, nil
}
