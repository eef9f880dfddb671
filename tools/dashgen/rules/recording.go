package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return newPrometheusRule("tw-recording-rules", RuleGroup{
		Name: "tw-recording",
		Rules: []Rule{
			record("tw:polls:rate5m", `sum by (result) (rate(tw_polls_total[5m]))`),
			record("tw:catalog_requests:rate5m", `sum(rate(tw_catalog_request_duration_seconds_count[5m]))`),
			record("tw:catalog_errors:rate5m", `sum(rate(tw_catalog_request_duration_seconds_count{status!="200"}[5m]))`),
			record("tw:http_requests:rate5m", `sum(rate(tw_http_requests_total[5m]))`),
			record("tw:http_errors:rate5m", `sum(rate(tw_http_requests_total{status=~"5.."}[5m]))`),
		},
	})
}

func record(name, expr string) Rule {
	return Rule{Record: name, Expr: expr}
}
