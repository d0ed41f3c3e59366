package backends

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics is a MetricsProvider backed by prometheus client_golang
// vectors, registered lazily per metric name the first time it is observed
// so callers don't have to pre-declare every tag combination up front.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewPrometheusMetrics constructs a PrometheusMetrics registered against
// registry. A nil registry uses prometheus.NewRegistry().
func NewPrometheusMetrics(registry *prometheus.Registry) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &PrometheusMetrics{
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

func tagKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	return keys
}

func metricName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '.' {
			out = append(out, '_')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}

func (p *PrometheusMetrics) Counter(name string, tags map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec, ok := p.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: metricName(name)}, tagKeys(tags))
		p.registry.MustRegister(vec)
		p.counters[name] = vec
	}
	vec.With(tags).Inc()
}

func (p *PrometheusMetrics) Histogram(name string, value float64, tags map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec, ok := p.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: metricName(name)}, tagKeys(tags))
		p.registry.MustRegister(vec)
		p.histograms[name] = vec
	}
	vec.With(tags).Observe(value)
}

func (p *PrometheusMetrics) Gauge(name string, value float64, tags map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec, ok := p.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: metricName(name)}, tagKeys(tags))
		p.registry.MustRegister(vec)
		p.gauges[name] = vec
	}
	vec.With(tags).Set(value)
}
