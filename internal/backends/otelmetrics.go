package backends

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OtelMetrics is a MetricsProvider backed by an OpenTelemetry metric.Meter,
// lazily instantiating one instrument per metric name the first time it is
// observed, same as PrometheusMetrics does for its vectors.
type OtelMetrics struct {
	meter metric.Meter

	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
	gauges     map[string]metric.Float64Gauge
}

// NewOtelMetrics constructs an OtelMetrics from an OpenTelemetry meter.
func NewOtelMetrics(meter metric.Meter) *OtelMetrics {
	return &OtelMetrics{
		meter:      meter,
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

func tagAttributes(tags map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(tags))
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}

func (m *OtelMetrics) Counter(name string, tags map[string]string) {
	if m == nil || m.meter == nil {
		return
	}

	m.mu.Lock()
	inst, ok := m.counters[name]
	if !ok {
		var err error
		inst, err = m.meter.Int64Counter(metricName(name))
		if err != nil {
			m.mu.Unlock()
			return
		}
		m.counters[name] = inst
	}
	m.mu.Unlock()

	inst.Add(context.Background(), 1, metric.WithAttributes(tagAttributes(tags)...))
}

func (m *OtelMetrics) Histogram(name string, value float64, tags map[string]string) {
	if m == nil || m.meter == nil {
		return
	}

	m.mu.Lock()
	inst, ok := m.histograms[name]
	if !ok {
		var err error
		inst, err = m.meter.Float64Histogram(metricName(name))
		if err != nil {
			m.mu.Unlock()
			return
		}
		m.histograms[name] = inst
	}
	m.mu.Unlock()

	inst.Record(context.Background(), value, metric.WithAttributes(tagAttributes(tags)...))
}

func (m *OtelMetrics) Gauge(name string, value float64, tags map[string]string) {
	if m == nil || m.meter == nil {
		return
	}

	m.mu.Lock()
	inst, ok := m.gauges[name]
	if !ok {
		var err error
		inst, err = m.meter.Float64Gauge(metricName(name))
		if err != nil {
			m.mu.Unlock()
			return
		}
		m.gauges[name] = inst
	}
	m.mu.Unlock()

	inst.Record(context.Background(), value, metric.WithAttributes(tagAttributes(tags)...))
}
