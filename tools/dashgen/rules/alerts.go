package rules

// AlertRules returns a PrometheusRule CR containing alert rules for a
// long-running ticket-watcher.
func AlertRules() PrometheusRule {
	return newPrometheusRule("tw-alerts", RuleGroup{
		Name: "tw-alerts",
		Rules: []Rule{
			alert("TwRunFailed", `tw_run_phase == 3`, "0m", "critical",
				"Ticket watcher run failed",
				"The watcher stopped after a catalog error and will not notify about tickets."),
			alert("TwCatalogErrors", `tw:catalog_errors:rate5m / tw:catalog_requests:rate5m > 0.05`, "5m", "warning",
				"Vue Cinemas catalog is returning errors",
				"More than 5% of catalog requests failed over the last 5 minutes."),
			alert("TwPollsOverlapping", `increase(tw_polls_skipped_total[10m]) > 5`, "10m", "warning",
				"Poll cycles are slower than the interval",
				"Scheduler ticks keep getting skipped because the previous poll is still running."),
			alert("TwNotificationFailures", `increase(tw_notification_failures_total[5m]) > 0`, "0m", "critical",
				"Ticket notification could not be delivered",
				"The run finished but its single notification failed to send."),
		},
	})
}

func alert(name, expr, forDuration, severity, summary, description string) Rule {
	return Rule{
		Alert:  name,
		Expr:   expr,
		For:    forDuration,
		Labels: map[string]string{"severity": severity},
		Annotations: map[string]string{
			"summary":     summary,
			"description": description,
		},
	}
}
