package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"

	"github.com/donaldgifford/ticket-watcher/internal/metrics"
)

// TelegramNotifier implements Notifier via a Telegram bot chat message.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID int64
}

// TelegramOption configures a TelegramNotifier.
type TelegramOption func(*telegramSettings)

type telegramSettings struct {
	serverURL string
}

// WithTelegramServerURL points the bot at a different Bot API server.
func WithTelegramServerURL(u string) TelegramOption {
	return func(s *telegramSettings) {
		s.serverURL = u
	}
}

// NewTelegramNotifier creates a notifier that posts to chatID with the bot
// identified by token. No request is made until the first Send.
func NewTelegramNotifier(token string, chatID int64, opts ...TelegramOption) (*TelegramNotifier, error) {
	var s telegramSettings
	for _, opt := range opts {
		opt(&s)
	}

	botOpts := []bot.Option{bot.WithSkipGetMe()}
	if s.serverURL != "" {
		botOpts = append(botOpts, bot.WithServerURL(s.serverURL))
	}

	b, err := bot.New(token, botOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	return &TelegramNotifier{bot: b, chatID: chatID}, nil
}

// Send posts the payload as a plain-text message; the Markdown body is not
// parsed by Telegram.
func (t *TelegramNotifier) Send(ctx context.Context, p *Payload) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	if _, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   telegramText(p),
	}); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}

func telegramText(p *Payload) string {
	var sb strings.Builder
	sb.WriteString(p.Title)
	if p.Body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(p.Body)
	}
	if p.URL != "" {
		sb.WriteString("\n\n")
		if p.URLTitle != "" {
			sb.WriteString(p.URLTitle)
			sb.WriteString(": ")
		}
		sb.WriteString(p.URL)
	}
	return sb.String()
}
