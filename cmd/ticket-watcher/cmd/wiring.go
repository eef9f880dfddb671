package cmd

import (
	"fmt"
	"log/slog"

	"github.com/donaldgifford/ticket-watcher/internal/config"
	"github.com/donaldgifford/ticket-watcher/internal/notify"
	"github.com/donaldgifford/ticket-watcher/internal/vue"
	"github.com/donaldgifford/ticket-watcher/internal/watcher"
)

func newCatalog(c *config.CatalogConfig) *vue.Client {
	opts := []vue.Option{
		vue.WithMovieURL(c.MovieURL),
		vue.WithUserAgent(c.UserAgent),
	}
	if c.RateLimit.PerSecond > 0 {
		opts = append(opts, vue.WithRateLimit(c.RateLimit.PerSecond, c.RateLimit.Burst))
	}
	return vue.NewClient(c.Timeout, opts...)
}

func newNotifier(n *config.NotificationsConfig, log *slog.Logger) (notify.Notifier, error) {
	switch n.Backend {
	case config.BackendPushover:
		return notify.NewPushoverNotifier(n.Pushover.User, n.Pushover.Token,
			notify.WithPushoverURL(n.Pushover.APIURL),
			notify.WithHTML(n.HTML),
			notify.WithImageAttachment(n.AttachImage),
			notify.WithPushoverLogger(log),
		), nil
	case config.BackendDiscord:
		return notify.NewDiscordNotifier(n.Discord.WebhookURL), nil
	case config.BackendTelegram:
		t, err := notify.NewTelegramNotifier(n.Telegram.Token, n.Telegram.ChatID,
			notify.WithTelegramServerURL(n.Telegram.ServerURL))
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.BackendNone, "":
		return notify.NewNoOpNotifier(log), nil
	default:
		return nil, fmt.Errorf("unknown notification backend %q", n.Backend)
	}
}

func payloadConfig(cfg *config.Config) watcher.PayloadConfig {
	n := &cfg.Notifications
	return watcher.PayloadConfig{
		TicketURLTemplate: cfg.Catalog.TicketURLTemplate,
		Sound:             n.Sound,
		FailureSound:      n.FailureSound,
		Priority:          n.Priority,
		Expire:            n.Expire,
		Retry:             n.Retry,
		AttachImage:       n.AttachImage,
	}
}
