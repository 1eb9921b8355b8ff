package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "hidden_content"

// PrometheusRecorder implements hiddencontent.Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	saves           *prom.CounterVec
	renders         *prom.CounterVec
	hooks           *prom.CounterVec
	requestDuration *prom.HistogramVec
}

// NewPrometheusRecorder constructs and registers the collectors on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		saves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Save requests by outcome (saved, error or the skip reason)",
		}, []string{"outcome"}),
		renders: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Hidden content renders by surface and whether content was injected",
		}, []string{"surface", "injected"}),
		hooks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "hooks_fired_total",
			Help:      "Extension point dispatches",
		}, []string{"point"}),
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route pattern and status",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "status"}),
	}
	reg.MustRegister(pr.saves, pr.renders, pr.hooks, pr.requestDuration)
	return pr
}

func (p *PrometheusRecorder) SaveOutcome(outcome string) {
	p.saves.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) Rendered(surface string, injected bool) {
	p.renders.WithLabelValues(surface, strconv.FormatBool(injected)).Inc()
}

func (p *PrometheusRecorder) HookFired(point string) {
	p.hooks.WithLabelValues(point).Inc()
}

// ObserveRequest records one HTTP request. route is the router pattern, not the raw path.
func (p *PrometheusRecorder) ObserveRequest(route string, status int, d time.Duration) {
	p.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}
