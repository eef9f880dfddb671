package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/ticket-watcher/internal/api/client"
	"github.com/donaldgifford/ticket-watcher/internal/api/handlers"
)

func statusCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of a running watch through its status server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				if cfg.Status.Addr == "" {
					return usageError(errors.New("status.addr is not configured; pass --addr"))
				}
				addr = cfg.Status.Addr
			}

			body, err := client.New(dialAddr(addr)).Status(cmd.Context())
			if err != nil {
				return failedError(err)
			}
			if err := printStatus(cmd.OutOrStdout(), body); err != nil {
				return failedError(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "status server address (defaults to status.addr)")
	return cmd
}

// dialAddr turns a listen address such as ":9090" into one a client can
// dial.
func dialAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "127.0.0.1" + addr
	}
	return addr
}

func printStatus(w io.Writer, b *handlers.StatusBody) error {
	tw := newTabWriter(w)
	tw.writef("Run:\t%s\n", b.RunID)
	tw.writef("Version:\t%s\n", b.Version)
	tw.writef("Movie:\t%d\n", b.MovieID)
	tw.writef("Cinemas:\t%s\n", joinIDs(b.CinemaIDs))
	tw.writef("Interval:\t%s\n", b.Interval)
	tw.writef("Uptime:\t%s\n", b.Uptime)
	tw.writef("Phase:\t%s\n", b.State.Phase)
	tw.writef("Polling:\t%v\n", b.State.PollInFlight)
	tw.writef("Attempts:\t%d\n", b.State.Attempts)
	if !b.State.LastPollAt.IsZero() {
		tw.writef("Last poll:\t%s\n", b.State.LastPollAt.Local().Format("2006-01-02 15:04:05"))
	}
	return tw.finish()
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}
