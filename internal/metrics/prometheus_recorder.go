package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	moduleDuration *prom.HistogramVec
	moduleResults  *prom.CounterVec
	buildDuration  prom.Histogram
	buildOutcome   *prom.CounterVec
	lastBuild      prom.Gauge
}

// moduleBuckets cover quick steps (clean) through long page generation runs.
var moduleBuckets = []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1200}

// NewPrometheusRecorder constructs metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.moduleDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "attackbuild",
		Name:      "module_duration_seconds",
		Help:      "Duration of individual build modules",
		Buckets:   moduleBuckets,
	}, []string{"module"})
	pr.moduleResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "attackbuild",
		Name:      "module_results_total",
		Help:      "Module result counts by outcome",
	}, []string{"module", "result"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "attackbuild",
		Name:      "build_duration_seconds",
		Help:      "Total build duration",
		Buckets:   moduleBuckets,
	})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "attackbuild",
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	pr.lastBuild = prom.NewGauge(prom.GaugeOpts{
		Namespace: "attackbuild",
		Name:      "last_build_timestamp_seconds",
		Help:      "Unix time the last build finished",
	})
	reg.MustRegister(pr.moduleDuration, pr.moduleResults, pr.buildDuration, pr.buildOutcome, pr.lastBuild)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveModuleDuration(module string, d time.Duration) {
	if p == nil {
		return
	}
	p.moduleDuration.WithLabelValues(module).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncModuleResult(module string, result ResultLabel) {
	if p == nil {
		return
	}
	p.moduleResults.WithLabelValues(module, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
	p.lastBuild.SetToCurrentTime()
}

// WriteTextfile writes all metrics to path in the text exposition format
// read by node_exporter's textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
