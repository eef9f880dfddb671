package cmd

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ticket-watcher/internal/config"
	"github.com/donaldgifford/ticket-watcher/internal/notify"
	"github.com/donaldgifford/ticket-watcher/internal/watcher"
	domain "github.com/donaldgifford/ticket-watcher/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantOutput string
	}{
		{name: "success", err: nil, wantCode: 0},
		{name: "usage error from cobra", err: errors.New("unknown flag: --nope"), wantCode: 2, wantOutput: "Error: unknown flag: --nope"},
		{name: "config error", err: usageError(errors.New("watch.movie_id is required")), wantCode: 2, wantOutput: "watch.movie_id is required"},
		{name: "failed run already reported", err: &exitError{code: exitFailed}, wantCode: 1},
		{name: "failed with message", err: failedError(errors.New("fetching movie 1")), wantCode: 1, wantOutput: "fetching movie 1"},
		{name: "interrupted", err: &exitError{code: exitInterrupted}, wantCode: 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			assert.Equal(t, tt.wantCode, exitCode(tt.err, &buf))
			if tt.wantOutput == "" {
				assert.Empty(t, buf.String())
			} else {
				assert.Contains(t, buf.String(), tt.wantOutput)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := failedError(inner)
	require.ErrorIs(t, err, inner)
	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, "exit status 130", (&exitError{code: exitInterrupted}).Error())
}

func TestNewNotifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.NotificationsConfig
		want    any
		wantErr string
	}{
		{
			name: "none",
			cfg:  config.NotificationsConfig{Backend: config.BackendNone},
			want: &notify.NoOpNotifier{},
		},
		{
			name: "pushover",
			cfg: config.NotificationsConfig{
				Backend:  config.BackendPushover,
				Pushover: config.PushoverConfig{User: "u", Token: "t"},
			},
			want: &notify.PushoverNotifier{},
		},
		{
			name: "discord",
			cfg: config.NotificationsConfig{
				Backend: config.BackendDiscord,
				Discord: config.DiscordConfig{WebhookURL: "https://discord.com/api/webhooks/1/x"},
			},
			want: &notify.DiscordNotifier{},
		},
		{
			name: "telegram",
			cfg: config.NotificationsConfig{
				Backend:  config.BackendTelegram,
				Telegram: config.TelegramConfig{Token: "123:abc", ChatID: 42},
			},
			want: &notify.TelegramNotifier{},
		},
		{
			name:    "unknown",
			cfg:     config.NotificationsConfig{Backend: "carrier-pigeon"},
			wantErr: "unknown notification backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n, err := newNotifier(&tt.cfg, quietLogger())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, n)
		})
	}
}

func TestPayloadConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Catalog: config.CatalogConfig{TicketURLTemplate: "https://x/{movie.slug}/{performance.id}"},
		Notifications: config.NotificationsConfig{
			Sound:        "cosmic",
			FailureSound: "siren",
			Priority:     2,
			Expire:       120,
			Retry:        60,
			AttachImage:  true,
		},
	}

	assert.Equal(t, watcher.PayloadConfig{
		TicketURLTemplate: "https://x/{movie.slug}/{performance.id}",
		Sound:             "cosmic",
		FailureSound:      "siren",
		Priority:          2,
		Expire:            120,
		Retry:             60,
		AttachImage:       true,
	}, payloadConfig(cfg))
}

func TestPrintPerformanceTable(t *testing.T) {
	t.Parallel()

	total, occupied := 100, 40
	perfs := []domain.Performance{
		{ID: domain.IntValue(1), Visible: true},
		{ID: domain.IntValue(3), Start: "2024-01-01T09:00", Visible: false},
		{ID: domain.IntValue(2), Start: "2024-01-01T10:00", End: "2024-01-01T12:00", Visible: true,
			TotalSeats: &total, OccupiedSeats: &occupied},
		{ID: domain.IntValue(4), Start: "2024-01-02T10:00", Visible: true},
	}
	out := watcher.Evaluate(perfs, watcher.EvaluateOptions{})

	var buf bytes.Buffer
	require.NoError(t, printPerformanceTable(&buf, perfs, &out))

	want := "" +
		"ID  START             END               VISIBLE  SEATS   VERDICT\n" +
		"1   -                 -                 true     ?       anomaly\n" +
		"3   2024-01-01T09:00  -                 false    ?       hidden\n" +
		"2   2024-01-01T10:00  2024-01-01T12:00  true     60/100  qualified\n" +
		"4   2024-01-02T10:00  -                 true     ?       -\n"
	assert.Equal(t, want, buf.String())
}

func TestVerdicts_RejectedInvisible(t *testing.T) {
	t.Parallel()

	perfs := []domain.Performance{
		{ID: domain.IntValue(1), Start: "2024-01-01T09:00", Visible: false},
		{ID: domain.IntValue(2), Start: "2024-01-01T10:00", Visible: true},
	}
	out := watcher.Evaluate(perfs, watcher.EvaluateOptions{NotifyOnInvisible: true})

	assert.Equal(t, []string{"rejected (invisible)", "-"}, verdicts(perfs, &out))
}

func TestBanner(t *testing.T) {
	t.Parallel()

	b := banner()
	assert.Contains(t, b, "Vue Cinema Ticket Watcher")
	assert.Contains(t, b, "ticket-watcher "+Version)
}

func TestTestPayload(t *testing.T) {
	t.Parallel()

	pc := watcher.PayloadConfig{Sound: "cosmic", Priority: 1, Expire: 60, Retry: 30}
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	p := testPayload(&pc, now)

	assert.Equal(t, notify.KindTest, p.Kind)
	assert.Equal(t, "ticket-watcher test", p.Title)
	assert.Equal(t, "cosmic", p.Sound)
	assert.Equal(t, now, p.Timestamp)
}

// The tests below drive the real command tree and share its global flag
// state, so they do not run in parallel.

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestQueryCommand(t *testing.T) {
	path := writeConfig(t, `
catalog:
  performances_url: https://www.vuecinemas.nl/performances.json
watch:
  movie_id: 44681
  cinema_ids: [13]
  range: 365
`)

	out, err := runRoot(t, "--config", path, "--env-file", "", "query", "--at", "2023-08-30")
	require.NoError(t, err)
	assert.Equal(t,
		"https://www.vuecinemas.nl/performances.json?cinema_ids%5B%5D=13&dateOffset=2023-08-30+00%3A00%3A00&filters=&movie_id=44681&range=365\n",
		out,
	)
}

func TestQueryCommand_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "watch:\n  movie_id: 0\n")

	_, err := runRoot(t, "--config", path, "--env-file", "", "query")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err, io.Discard))
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ticket-watcher "+Version+"\n", out)
}
