// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/ticket-watcher/tools/dashgen/panels"
)

// BuildOverview constructs the ticket-watcher overview dashboard.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Ticket Watcher").
		Uid("tw-overview").
		Tags([]string{"tw", "ticket-watcher"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Run").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.RunPhaseStat()).
		WithPanel(panels.PollsStat()).
		WithPanel(panels.UptimeStat()))

	b.WithRow(dashboard.NewRowBuilder("Polling").
		WithPanel(panels.PollRate()).
		WithPanel(panels.PollDuration()).
		WithPanel(panels.SkippedPolls()).
		WithPanel(panels.PerformancesSeen()))

	b.WithRow(dashboard.NewRowBuilder("Catalog").
		WithPanel(panels.CatalogLatency()).
		WithPanel(panels.CatalogErrorRate()))

	b.WithRow(dashboard.NewRowBuilder("Notifications").
		WithPanel(panels.NotificationsSent()).
		WithPanel(panels.NotificationFailures()).
		WithPanel(panels.NotificationLatency()))

	b.WithRow(dashboard.NewRowBuilder("Status Server").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.ErrorRate()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
