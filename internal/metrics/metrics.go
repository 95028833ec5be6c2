// Package metrics exposes the API's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PlotWrites counts grid document writes by result ("ok" or "error").
	PlotWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "garden_plot_writes_total",
		Help: "Plot grid documents written to the store.",
	}, []string{"result"})

	// PlotWritesSuperseded counts queued grid writes replaced by a newer grid
	// before they started.
	PlotWritesSuperseded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "garden_plot_writes_superseded_total",
		Help: "Queued plot writes dropped in favour of a newer grid.",
	})

	// PlotMounts counts session mounts by outcome ("loaded", "seeded", "reseeded", "error").
	PlotMounts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "garden_plot_mounts_total",
		Help: "Plot sessions mounted from the store.",
	}, []string{"outcome"})

	// WebSocketClients is the number of connected live-update clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "garden_ws_clients",
		Help: "Connected websocket clients.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
