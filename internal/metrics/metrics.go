// Package metrics exposes per-period simulation state as Prometheus
// gauges, grounded on the scionproto/scion pack repo's convention of
// registering a small set of named gauges in an init-time registry and
// updating them from one Observe call per tick.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "optnetsim",
		Name:      "connections_total",
		Help:      "Total number of connections committed so far, as of the most recent period.",
	})
	RequiredTbps = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "optnetsim",
		Name:      "demand_required_tbps",
		Help:      "Total required demand, in Tbps, as of the most recent period.",
	})
	AllocatedTbps = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "optnetsim",
		Name:      "demand_allocated_tbps",
		Help:      "Total allocated demand, in Tbps, as of the most recent period.",
	})
	UtilizationRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "optnetsim",
		Name:      "spectrum_utilization_ratio",
		Help:      "Average used-slot / total-slot ratio across all fibers.",
	})
	UnderProvisioningRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "optnetsim",
		Name:      "demand_underprovisioning_ratio",
		Help:      "Sum(max(required-allocated,0)) / Sum(required) across all demands.",
	})
	Period = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "optnetsim",
		Name:      "period",
		Help:      "Index of the most recently completed period.",
	})
)

// Registry is the collector registry AssignConnections-driven runs publish
// to; a caller exposes it over HTTP via promhttp.HandlerFor(Registry, ...).
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(Connections, RequiredTbps, AllocatedTbps, UtilizationRatio, UnderProvisioningRatio, Period)
}

// ObserveValues updates the gauges directly from plain values, avoiding a
// hard import-cycle dependency on the core package's concrete metrics
// struct.
func ObserveValues(period, connections int, requiredTbps, allocatedTbps, utilization, underProvisioning float64) {
	Period.Set(float64(period))
	Connections.Set(float64(connections))
	RequiredTbps.Set(requiredTbps)
	AllocatedTbps.Set(allocatedTbps)
	UtilizationRatio.Set(utilization)
	UnderProvisioningRatio.Set(underProvisioning)
}
