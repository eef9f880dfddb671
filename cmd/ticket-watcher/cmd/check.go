package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/ticket-watcher/internal/vue"
	"github.com/donaldgifford/ticket-watcher/internal/watcher"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fetch and evaluate the performances once, without notifying",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	catalog := newCatalog(&cfg.Catalog)
	target := cfg.Watch.Target()

	movie, err := catalog.Movie(ctx, target.MovieID)
	if err != nil {
		return failedError(err)
	}

	u, err := vue.BuildPerformancesURL(cfg.Catalog.PerformancesURL, target, time.Now())
	if err != nil {
		return usageError(err)
	}

	perfs, err := catalog.Performances(ctx, u)
	if err != nil {
		return failedError(err)
	}

	out := watcher.Evaluate(perfs, watcher.EvaluateOptions{NotifyOnInvisible: cfg.Watch.NotifyOnInvisible})

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s)\n%d performances\n\n", movie.Title, movie.URL, len(perfs))
	if len(perfs) > 0 {
		if err := printPerformanceTable(w, perfs, &out); err != nil {
			return failedError(err)
		}
		fmt.Fprintln(w)
	}

	if !out.IsQualified() {
		fmt.Fprintln(w, "No qualifying performance.")
		return nil
	}

	fmt.Fprintf(w, "Qualified: %s at %s\n%s\n",
		out.Qualified.ID,
		out.Qualified.Start,
		vue.TicketURL(cfg.Catalog.TicketURLTemplate, movie, out.Qualified),
	)
	fmt.Fprint(w, watcher.PerformanceDetails(out.Qualified))
	return nil
}
