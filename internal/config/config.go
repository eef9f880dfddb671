// Package config handles loading and validating the watcher configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/ticket-watcher/pkg/types"
)

// Notification backends.
const (
	BackendNone     = "none"
	BackendPushover = "pushover"
	BackendDiscord  = "discord"
	BackendTelegram = "telegram"
)

// Config is the top-level watcher configuration.
type Config struct {
	Catalog       CatalogConfig       `yaml:"catalog"`
	Watch         WatchConfig         `yaml:"watch"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Status        StatusConfig        `yaml:"status"`
	Tracing       TracingConfig       `yaml:"tracing"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// CatalogConfig defines the Vue Cinemas endpoints and HTTP client settings.
type CatalogConfig struct {
	PerformancesURL   string          `yaml:"performances_url"`
	MovieURL          string          `yaml:"movie_url"`
	TicketURLTemplate string          `yaml:"ticket_url_template"`
	Timeout           time.Duration   `yaml:"timeout"`
	UserAgent         string          `yaml:"user_agent"`
	RateLimit         RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig caps the request rate against the catalog.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// WatchConfig describes the movie being watched and how often to poll.
type WatchConfig struct {
	MovieID           int           `yaml:"movie_id"`
	CinemaIDs         []int         `yaml:"cinema_ids"`
	Filters           string        `yaml:"filters"`
	DateOffset        int           `yaml:"date_offset"` // days from today
	Range             int           `yaml:"range"`       // days
	Interval          time.Duration `yaml:"interval"`
	NotifyOnInvisible bool          `yaml:"notify_on_invisible"`
}

// Target returns the immutable watch target described by w.
func (w *WatchConfig) Target() domain.WatchTarget {
	ids := make([]int, len(w.CinemaIDs))
	copy(ids, w.CinemaIDs)
	return domain.WatchTarget{
		MovieID:    w.MovieID,
		CinemaIDs:  ids,
		Filters:    w.Filters,
		DateOffset: w.DateOffset,
		Range:      w.Range,
	}
}

// NotificationsConfig defines the notification backend and the delivery
// parameters shared by every backend.
type NotificationsConfig struct {
	Backend      string `yaml:"backend"` // pushover, discord, telegram, none
	Sound        string `yaml:"sound"`
	FailureSound string `yaml:"failure_sound"`
	Priority     int    `yaml:"priority"`
	Expire       int    `yaml:"expire"` // seconds
	Retry        int    `yaml:"retry"`  // seconds
	HTML         bool   `yaml:"html"`
	AttachImage  bool   `yaml:"attach_image"`

	Pushover PushoverConfig `yaml:"pushover"`
	Discord  DiscordConfig  `yaml:"discord"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// PushoverConfig defines Pushover API credentials.
type PushoverConfig struct {
	User   string `yaml:"user"`
	Token  string `yaml:"token"`
	APIURL string `yaml:"api_url"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// TelegramConfig defines Telegram bot settings.
type TelegramConfig struct {
	Token     string `yaml:"token"`
	ChatID    int64  `yaml:"chat_id"`
	ServerURL string `yaml:"server_url"`
}

// StatusConfig defines the optional read-only status server.
type StatusConfig struct {
	Addr string `yaml:"addr"` // empty disables the server
}

// TracingConfig defines the optional OTLP trace exporter.
type TracingConfig struct {
	Endpoint string `yaml:"endpoint"` // empty disables tracing
	Insecure bool   `yaml:"insecure"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML config content, performing environment variable
// substitution and validation.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{
		Notifications: NotificationsConfig{HTML: true, AttachImage: true},
		Tracing:       TracingConfig{Insecure: true},
	}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyCatalogDefaults(&cfg.Catalog)
	applyWatchDefaults(&cfg.Watch)
	applyNotificationDefaults(&cfg.Notifications)
	applyLoggingDefaults(&cfg.Logging)
}

func applyCatalogDefaults(c *CatalogConfig) {
	if c.PerformancesURL == "" {
		c.PerformancesURL = "https://www.vuecinemas.nl/performances.json"
	}
	if c.MovieURL == "" {
		c.MovieURL = "https://www.vuecinemas.nl/movies.json"
	}
	if c.TicketURLTemplate == "" {
		c.TicketURLTemplate = "https://www.vuecinemas.nl/kopen/{movie.slug}/{performance.id}"
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "ticket-watcher"
	}
	if c.RateLimit.PerSecond == 0 {
		c.RateLimit.PerSecond = 1
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 2
	}
}

func applyWatchDefaults(w *WatchConfig) {
	if w.Range == 0 {
		w.Range = 365
	}
	if w.Interval == 0 {
		w.Interval = 10 * time.Second
	}
}

func applyNotificationDefaults(n *NotificationsConfig) {
	if n.Backend == "" {
		n.Backend = BackendNone
	}
	if n.Sound == "" {
		n.Sound = "cosmic"
	}
	if n.FailureSound == "" {
		n.FailureSound = "siren"
	}
	if n.Expire == 0 {
		n.Expire = 60
	}
	if n.Retry == 0 {
		n.Retry = 30
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "console"
	}
}

func validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateURL("catalog.performances_url", cfg.Catalog.PerformancesURL))
	errs = append(errs, validateURL("catalog.movie_url", cfg.Catalog.MovieURL))

	if !strings.Contains(cfg.Catalog.TicketURLTemplate, "{") {
		errs = append(errs, fmt.Errorf("catalog.ticket_url_template must contain a placeholder"))
	}
	if cfg.Catalog.Timeout < 0 {
		errs = append(errs, fmt.Errorf("catalog.timeout must not be negative"))
	}
	if cfg.Catalog.RateLimit.PerSecond < 0 {
		errs = append(errs, fmt.Errorf("catalog.rate_limit.per_second must not be negative"))
	}

	if cfg.Watch.MovieID <= 0 {
		errs = append(errs, fmt.Errorf("watch.movie_id is required"))
	}
	if len(cfg.Watch.CinemaIDs) == 0 {
		errs = append(errs, fmt.Errorf("watch.cinema_ids must list at least one cinema"))
	}
	if cfg.Watch.Range < 0 {
		errs = append(errs, fmt.Errorf("watch.range must not be negative"))
	}
	if cfg.Watch.Interval < time.Second {
		errs = append(errs, fmt.Errorf("watch.interval must be at least 1s (got %s)", cfg.Watch.Interval))
	}

	errs = append(errs, validateNotifications(&cfg.Notifications)...)

	return errors.Join(errs...)
}

func validateNotifications(n *NotificationsConfig) []error {
	var errs []error

	switch n.Backend {
	case BackendNone:
	case BackendPushover:
		if n.Pushover.User == "" {
			errs = append(errs, fmt.Errorf("notifications.pushover.user is required when backend is pushover"))
		}
		if n.Pushover.Token == "" {
			errs = append(errs, fmt.Errorf("notifications.pushover.token is required when backend is pushover"))
		}
	case BackendDiscord:
		if n.Discord.WebhookURL == "" {
			errs = append(errs, fmt.Errorf("notifications.discord.webhook_url is required when backend is discord"))
		}
	case BackendTelegram:
		if n.Telegram.Token == "" {
			errs = append(errs, fmt.Errorf("notifications.telegram.token is required when backend is telegram"))
		}
		if n.Telegram.ChatID == 0 {
			errs = append(errs, fmt.Errorf("notifications.telegram.chat_id is required when backend is telegram"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"notifications.backend must be one of: pushover, discord, telegram, none (got %q)",
			n.Backend,
		))
	}

	if n.Priority < -2 || n.Priority > 2 {
		errs = append(errs, fmt.Errorf("notifications.priority must be between -2 and 2 (got %d)", n.Priority))
	}
	if n.Priority == 2 {
		if n.Expire < 30 {
			errs = append(errs, fmt.Errorf("notifications.expire must be at least 30 for emergency priority"))
		}
		if n.Retry < 30 {
			errs = append(errs, fmt.Errorf("notifications.retry must be at least 30 for emergency priority"))
		}
	}

	return errs
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL (got %q)", field, raw)
	}
	return nil
}
