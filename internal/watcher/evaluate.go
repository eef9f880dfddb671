// Package watcher drives a watch run: it polls the catalog on a fixed
// interval, evaluates each performance list, and hands the terminal result
// to a dispatcher that sends exactly one notification.
package watcher

import (
	domain "github.com/donaldgifford/ticket-watcher/pkg/types"
)

// EvaluateOptions configures Evaluate.
type EvaluateOptions struct {
	// NotifyOnInvisible makes an invisible performance reject the whole
	// cycle instead of being ignored.
	NotifyOnInvisible bool
}

// Outcome is the result of evaluating one performance list. A nil
// Qualified means no performance qualified.
type Outcome struct {
	Qualified *domain.Performance

	// Anomalies holds the ids of performances skipped for having neither a
	// start nor an end time.
	Anomalies []string
	// Invisible holds the ids of invisible performances that rejected the
	// cycle. Only populated when NotifyOnInvisible is set.
	Invisible []string
}

// IsQualified reports whether a performance qualified.
func (o *Outcome) IsQualified() bool {
	return o.Qualified != nil
}

// Evaluate scans perfs in source order and returns the first performance
// that has a schedule and is visible.
//
// With NotifyOnInvisible set, an invisible performance marks the cycle as
// rejected: scanning continues so later anomalies are still reported, but
// nothing qualifies for the rest of the list.
func Evaluate(perfs []domain.Performance, opts EvaluateOptions) Outcome {
	var out Outcome
	rejected := false

	for i := range perfs {
		p := &perfs[i]

		if !p.HasSchedule() {
			out.Anomalies = append(out.Anomalies, p.ID.String())
			continue
		}

		if !p.Visible {
			if opts.NotifyOnInvisible {
				out.Invisible = append(out.Invisible, p.ID.String())
				rejected = true
			}
			continue
		}

		if rejected {
			continue
		}

		out.Qualified = p
		return out
	}

	return out
}
