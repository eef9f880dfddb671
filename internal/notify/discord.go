package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/donaldgifford/ticket-watcher/internal/metrics"
)

const (
	colorGreen = 0x2ECC71 // tickets available
	colorRed   = 0xE74C3C // run failed
	colorBlue  = 0x3498DB // test message

	// Discord caps embed descriptions at 4096 characters.
	maxDescriptionLen = 4096
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Thumbnail   *discordThumbnail   `json:"thumbnail,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

// Send posts the payload as a single Discord embed. Discord renders the
// Markdown body natively.
func (d *DiscordNotifier) Send(ctx context.Context, p *Payload) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	return d.post(ctx, discordWebhookPayload{Embeds: []discordEmbed{buildEmbed(p)}})
}

func buildEmbed(p *Payload) discordEmbed {
	embed := discordEmbed{
		Title:       p.Title,
		URL:         p.URL,
		Color:       kindColor(p.Kind),
		Description: truncateRunes(p.Body, maxDescriptionLen),
	}

	if p.URL != "" && p.URLTitle != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:  "Link",
			Value: fmt.Sprintf("[%s](%s)", p.URLTitle, p.URL),
		})
	}

	if !p.Timestamp.IsZero() {
		embed.Timestamp = p.Timestamp.UTC().Format(time.RFC3339)
	}

	if p.ImageURL != "" {
		embed.Thumbnail = &discordThumbnail{URL: p.ImageURL}
	}

	return embed
}

func kindColor(k Kind) int {
	switch k {
	case KindSuccess:
		return colorGreen
	case KindFailure:
		return colorRed
	default:
		return colorBlue
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
