package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// PollRate returns a timeseries panel showing poll cycles per minute by
// result.
func PollRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Polls / min").
		Description("Completed poll cycles per minute by result").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`tw:polls:rate5m * 60`, "{{result}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PollDuration returns a timeseries panel showing the p95 poll cycle
// duration.
func PollDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Poll Duration (p95)").
		Description("95th percentile fetch and evaluate duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(P95("tw_poll_duration_seconds"), "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SkippedPolls returns a timeseries panel showing ticks dropped because a
// poll was still in flight.
func SkippedPolls() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Skipped Ticks").
		Description("Scheduler ticks skipped while a poll was in flight").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`increase(tw_polls_skipped_total{`+Job+`}[5m])`, "skipped", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PerformancesSeen returns a timeseries panel showing how many performances
// the catalog returns and how many were anomalies or blocking invisible ones.
func PerformancesSeen() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Performances / min").
		Description("Performances evaluated per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`rate(tw_performances_seen_total{`+Job+`}[5m]) * 60`, "seen", "A")).
		WithTarget(PromQuery(`rate(tw_performance_anomalies_total{`+Job+`}[5m]) * 60`, "anomalies", "B")).
		WithTarget(PromQuery(`rate(tw_invisible_rejected_total{`+Job+`}[5m]) * 60`, "invisible", "C")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
