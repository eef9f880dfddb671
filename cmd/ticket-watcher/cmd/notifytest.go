package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/ticket-watcher/internal/notify"
	"github.com/donaldgifford/ticket-watcher/internal/watcher"
)

func notifyTestCmd() *cobra.Command {
	var failure bool

	cmd := &cobra.Command{
		Use:   "notify-test",
		Short: "Send a test notification through the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			n, err := newNotifier(&cfg.Notifications, log)
			if err != nil {
				return usageError(err)
			}

			pc := payloadConfig(cfg)
			p := testPayload(&pc, time.Now())
			if failure {
				p = watcher.BuildFailurePayload(&pc, time.Now())
			}

			if err := n.Send(cmd.Context(), &p); err != nil {
				return failedError(fmt.Errorf("sending %s notification: %w", p.Kind, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s notification sent via %s\n", p.Kind, cfg.Notifications.Backend)
			return nil
		},
	}

	cmd.Flags().BoolVar(&failure, "failure", false, "send the failure alert instead of a test message")
	return cmd
}

func testPayload(pc *watcher.PayloadConfig, now time.Time) notify.Payload {
	return notify.Payload{
		Kind:      notify.KindTest,
		Title:     "ticket-watcher test",
		Body:      "Notifications are **working**. You will get one message when tickets are available.",
		Timestamp: now,
		Sound:     pc.Sound,
		Priority:  pc.Priority,
		Expire:    pc.Expire,
		Retry:     pc.Retry,
	}
}
