package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/donaldgifford/ticket-watcher/internal/watcher"
	domain "github.com/donaldgifford/ticket-watcher/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// Per-performance verdicts printed by check.
const (
	verdictQualified = "qualified"
	verdictAnomaly   = "anomaly"
	verdictRejected  = "rejected (invisible)"
	verdictHidden    = "hidden"
	verdictSkipped   = "-"
)

func verdicts(perfs []domain.Performance, out *watcher.Outcome) []string {
	invisible := make(map[string]struct{}, len(out.Invisible))
	for _, id := range out.Invisible {
		invisible[id] = struct{}{}
	}

	res := make([]string, len(perfs))
	for i := range perfs {
		p := &perfs[i]
		id := p.ID.String()
		_, isRejected := invisible[id]

		switch {
		case out.Qualified == p:
			res[i] = verdictQualified
		case !p.HasSchedule():
			res[i] = verdictAnomaly
		case isRejected && !p.Visible:
			res[i] = verdictRejected
		case !p.Visible:
			res[i] = verdictHidden
		default:
			res[i] = verdictSkipped
		}
	}
	return res
}

func seats(p *domain.Performance) string {
	n, ok := p.AvailableSeats()
	if !ok {
		return "?"
	}
	return strconv.Itoa(n) + "/" + strconv.Itoa(*p.TotalSeats)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printPerformanceTable(w io.Writer, perfs []domain.Performance, out *watcher.Outcome) error {
	tw := newTabWriter(w)
	tw.writef("ID\tSTART\tEND\tVISIBLE\tSEATS\tVERDICT\n")
	for i, v := range verdicts(perfs, out) {
		p := &perfs[i]
		tw.writef("%s\t%s\t%s\t%v\t%s\t%s\n",
			orDash(p.ID.String()),
			orDash(p.Start),
			orDash(p.End),
			p.Visible,
			seats(p),
			v,
		)
	}
	return tw.finish()
}
