package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/ticket-watcher/internal/vue"
)

func queryCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the performances URL the watcher will poll",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				now, err = time.ParseInLocation(time.DateOnly, at, time.Local)
				if err != nil {
					return usageError(fmt.Errorf("parsing --at: %w", err))
				}
			}

			u, err := vue.BuildPerformancesURL(cfg.Catalog.PerformancesURL, cfg.Watch.Target(), now)
			if err != nil {
				return usageError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluation date (YYYY-MM-DD) instead of today")
	return cmd
}
