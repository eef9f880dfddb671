package main

import "errors"

// KnownMetrics is the set of metric names exported by ticket-watcher plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// Poll metrics.
	"tw_polls_total":                  true,
	"tw_polls_skipped_total":          true,
	"tw_poll_duration_seconds_bucket": true,
	"tw_run_phase":                    true,

	// Evaluation metrics.
	"tw_performances_seen_total":     true,
	"tw_performance_anomalies_total": true,
	"tw_invisible_rejected_total":    true,

	// Catalog metrics.
	"tw_catalog_request_duration_seconds_bucket": true,
	"tw_catalog_request_duration_seconds_count":  true,

	// Notification metrics.
	"tw_notifications_sent_total":             true,
	"tw_notification_failures_total":          true,
	"tw_notification_duration_seconds_bucket": true,

	// Status server metrics.
	"tw_http_requests_total": true,
	"tw_healthz_up":          true,

	// Recording rules.
	"tw:polls:rate5m":            true,
	"tw:catalog_requests:rate5m": true,
	"tw:catalog_errors:rate5m":   true,
	"tw:http_requests:rate5m":    true,
	"tw:http_errors:rate5m":      true,

	// Standard Prometheus metrics referenced in dashboards.
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
