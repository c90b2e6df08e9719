package watchdog

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics describe the last run, for the node_exporter textfile collector.
type Metrics struct {
	registry *prometheus.Registry

	lastRun         prometheus.Gauge
	uptime          prometheus.Gauge
	connected       prometheus.Gauge
	feedAge         prometheus.Gauge
	rebootScheduled prometheus.Gauge
	runs            *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "host_watchdog_last_run_timestamp_seconds",
			Help: "Unix time of the last completed watchdog run.",
		}),
		uptime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "host_watchdog_uptime_seconds",
			Help: "Host uptime seen by the last run.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "host_watchdog_connected",
			Help: "1 if the last connectivity probe succeeded.",
		}),
		feedAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "host_watchdog_feed_age_seconds",
			Help: "Age of the latest feed sample, -1 if the feed was not checked.",
		}),
		rebootScheduled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "host_watchdog_reboot_scheduled",
			Help: "1 if the last run scheduled a reboot.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "host_watchdog_runs_total",
			Help: "Watchdog runs by result.",
		}, []string{"result"}),
	}

	metrics.registry.MustRegister(
		metrics.lastRun,
		metrics.uptime,
		metrics.connected,
		metrics.feedAge,
		metrics.rebootScheduled,
		metrics.runs,
	)

	return metrics
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}

	return 0
}

// Observe records a run; err is the error returned by Watchdog.Run.
func (metrics *Metrics) Observe(result Result, err error, unixTime float64) {
	metrics.lastRun.Set(unixTime)
	metrics.uptime.Set(result.Uptime.Seconds())
	metrics.connected.Set(boolGauge(result.Connectivity.Connected))
	metrics.rebootScheduled.Set(boolGauge(result.RebootScheduled))

	if result.FeedChecked {
		metrics.feedAge.Set(float64(result.FeedAge))
	} else {
		metrics.feedAge.Set(-1)
	}

	if err != nil {
		if kind := ErrorKind(err); kind != "" {
			metrics.runs.WithLabelValues("error-" + string(kind)).Inc()
		} else {
			metrics.runs.WithLabelValues("error").Inc()
		}
	} else {
		metrics.runs.WithLabelValues(string(result.Reason)).Inc()
	}
}

// Gatherer exposes the private registry, nothing is registered on the default one.
func (metrics *Metrics) Gatherer() prometheus.Gatherer {
	return metrics.registry
}

// WriteTextfile atomically replaces path with the current metrics.
func (metrics *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, metrics.Gatherer())
}
