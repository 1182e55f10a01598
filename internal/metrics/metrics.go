// Package metrics records the outcome of a run as Prometheus gauges. The process is
// short-lived, so metrics are written to a node-exporter textfile instead of served.
package metrics

import (
	"time"

	"progress-pulse/internal/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricsNamespace = "progress_pulse"

type Metrics struct {
	reg *prometheus.Registry

	PercentComplete prometheus.Gauge
	DaysPassed      prometheus.Gauge
	DaysRemaining   prometheus.Gauge
	TextWeight      prometheus.Gauge
	Aside           *prometheus.GaugeVec
	PublishSuccess  *prometheus.GaugeVec
	LastRunTime     prometheus.Gauge
	RunDuration     prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      name,
			Help:      help,
		})
	}

	return &Metrics{
		reg:             reg,
		PercentComplete: gauge("year_percent_complete", "Share of the year that has passed, in percent"),
		DaysPassed:      gauge("year_days_passed", "Days of the year that have passed"),
		DaysRemaining:   gauge("year_days_remaining", "Days of the year that remain"),
		TextWeight:      gauge("post_text_weight", "Budget units used by the post text"),
		LastRunTime:     gauge("last_run_timestamp_seconds", "Unix time of the last run"),
		RunDuration:     gauge("run_duration_seconds", "Duration of the last run"),
		Aside: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "post_aside",
			Help:      "Aside of the last post by kind and source",
		}, []string{"kind", "source"}),
		PublishSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "publish_success",
			Help:      "1 when the last post was published, 0 when it failed",
		}, []string{"platform"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Record sets the gauges from a run. res may be partially filled when the run failed.
func (m *Metrics) Record(res *types.RunResult, platform string, runErr error, now time.Time) {
	m.LastRunTime.Set(float64(now.Unix()))
	if res == nil {
		m.PublishSuccess.WithLabelValues(platform).Set(0)
		return
	}

	m.PercentComplete.Set(res.Record.PercentComplete)
	m.DaysPassed.Set(float64(res.Record.DaysPassed))
	m.DaysRemaining.Set(float64(res.Record.DaysRemaining))
	m.TextWeight.Set(float64(res.Content.TextWeight))
	m.RunDuration.Set(res.Duration.Seconds())

	m.Aside.Reset()
	if res.Content.Aside != types.AsideNone && res.Content.Aside != "" {
		source := "local"
		switch {
		case res.Content.AsideDropped:
			source = "dropped"
		case res.Content.AsideRemote:
			source = "remote"
		}
		m.Aside.WithLabelValues(string(res.Content.Aside), source).Set(1)
	}

	if runErr != nil {
		m.PublishSuccess.WithLabelValues(platform).Set(0)
	} else {
		m.PublishSuccess.WithLabelValues(platform).Set(1)
	}
}

// WriteTextfile atomically writes all metrics in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
