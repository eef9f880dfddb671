package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CatalogLatency returns a timeseries panel showing p95 catalog request
// latency per endpoint.
func CatalogLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Catalog Latency (p95)").
		Description("95th percentile Vue Cinemas request duration by endpoint").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(P95("tw_catalog_request_duration_seconds", "endpoint"), "{{endpoint}}", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenYellowRed(2, 10)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// CatalogErrorRate returns a timeseries panel showing the share of catalog
// requests that did not answer 200.
func CatalogErrorRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Catalog Error Rate %").
		Description("Catalog requests answered with a non-200 status or a transport error").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`tw:catalog_errors:rate5m / tw:catalog_requests:rate5m * 100`,
			"error %", "A",
		)).
		Unit("percent").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}
