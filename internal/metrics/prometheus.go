// Package metrics exposes grading and provider metrics to Prometheus.
//
// Manager implements the counter/histogram/gauge interface the provider
// adapters and the grading service record through. Metric names use dotted
// form ("llm.requests.total") at the call site and are translated to
// Prometheus names ("examgrader_llm_requests_total") here.
package metrics

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names recorded by the HTTP API.
const (
	HTTPRequestsTotal   = "http.requests.total"
	HTTPRequestDuration = "http.request.duration_ms"
)

// DefaultLatencyBuckets covers LLM round trips, which run from a few hundred
// milliseconds to about a minute.
var DefaultLatencyBuckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000, 40000, 60000}

// ratioBuckets is used for score/maxScore.
var ratioBuckets = prometheus.LinearBuckets(0, 0.1, 11)

type kind int

const (
	kindCounter kind = iota
	kindHistogram
	kindGauge
)

// definition pins the label set and help text of a known metric.
type definition struct {
	kind    kind
	help    string
	labels  []string
	buckets []float64
}

// definitions lists the metrics recorded by this module. Names not listed
// here are registered on first use with the sorted tag keys as labels.
var definitions = map[string]definition{
	"llm.requests.total": {
		kind: kindCounter, help: "Provider calls started",
		labels: []string{"provider"},
	},
	"llm.requests.success": {
		kind: kindCounter, help: "Provider calls that returned text",
		labels: []string{"provider"},
	},
	"llm.requests.errors": {
		kind: kindCounter, help: "Provider calls that failed, by error kind",
		labels: []string{"provider", "error_kind"},
	},
	"llm.request.duration_ms": {
		kind: kindHistogram, help: "Provider call latency in milliseconds",
		labels: []string{"provider"},
	},
	"llm.response.length_chars": {
		kind: kindHistogram, help: "Length of provider replies in characters",
		labels:  []string{"provider"},
		buckets: prometheus.ExponentialBuckets(64, 2, 10),
	},
	"grading.attempts.total": {
		kind: kindCounter, help: "Grading attempts by outcome (graded, fallback, error)",
		labels: []string{"provider", "outcome", "error_kind"},
	},
	"grading.score.ratio": {
		kind: kindHistogram, help: "Awarded score as a fraction of the question's points",
		labels:  []string{"provider"},
		buckets: ratioBuckets,
	},
	HTTPRequestsTotal: {
		kind: kindCounter, help: "HTTP requests by route, method and status code",
		labels: []string{"route", "method", "status_code"},
	},
	HTTPRequestDuration: {
		kind: kindHistogram, help: "HTTP request duration in milliseconds",
		labels: []string{"route", "method", "status_code"},
	},
}

// vec is a registered collector together with the tag keys feeding its
// labels, in label order.
type vec struct {
	keys      []string
	counter   *prometheus.CounterVec
	histogram *prometheus.HistogramVec
	gauge     *prometheus.GaugeVec
}

// Manager owns a Prometheus registry and the collectors registered on it.
// It is safe for concurrent use.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    map[string]string
	enabled        bool
	registry       *prometheus.Registry

	mu   sync.Mutex
	vecs map[string]*vec
}

// NewManager creates a metrics manager. Without WithRegistry it uses a fresh
// registry with the Go runtime and process collectors attached.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "examgrader",
		latencyBuckets: DefaultLatencyBuckets,
		constLabels:    map[string]string{},
		enabled:        true,
		vecs:           make(map[string]*vec),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// IncrementCounter adds value to the named counter.
func (m *Manager) IncrementCounter(name string, tags map[string]string, value float64) {
	if !m.enabled || value < 0 {
		return
	}
	v := m.lookup(name, kindCounter, tags)
	if v == nil || v.counter == nil {
		return
	}
	v.counter.WithLabelValues(v.values(tags)...).Add(value)
}

// RecordHistogram observes value on the named histogram.
func (m *Manager) RecordHistogram(name string, tags map[string]string, value float64) {
	if !m.enabled {
		return
	}
	v := m.lookup(name, kindHistogram, tags)
	if v == nil || v.histogram == nil {
		return
	}
	v.histogram.WithLabelValues(v.values(tags)...).Observe(value)
}

// SetGauge sets the named gauge.
func (m *Manager) SetGauge(name string, tags map[string]string, value float64) {
	if !m.enabled {
		return
	}
	v := m.lookup(name, kindGauge, tags)
	if v == nil || v.gauge == nil {
		return
	}
	v.gauge.WithLabelValues(v.values(tags)...).Set(value)
}

// lookup returns the collector for name, registering it on first use. A
// name reused with a different kind returns a vec without that collector.
func (m *Manager) lookup(name string, k kind, tags map[string]string) *vec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.vecs[name]; ok {
		return v
	}

	def, known := definitions[name]
	if !known {
		def = definition{kind: k, help: name, labels: sortedKeys(tags)}
	}
	labelNames := make([]string, len(def.labels))
	for i, l := range def.labels {
		labelNames[i] = PrometheusName(l)
	}
	if def.kind != k {
		return nil
	}

	auto := promauto.With(m.registry)
	fqName := PrometheusName(name)
	v := &vec{keys: def.labels}
	switch def.kind {
	case kindCounter:
		v.counter = auto.NewCounterVec(prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        fqName,
			Help:        def.help,
			ConstLabels: m.constLabels,
		}, labelNames)
	case kindHistogram:
		buckets := def.buckets
		if buckets == nil {
			buckets = m.latencyBuckets
		}
		v.histogram = auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        fqName,
			Help:        def.help,
			ConstLabels: m.constLabels,
			Buckets:     buckets,
		}, labelNames)
	case kindGauge:
		v.gauge = auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        fqName,
			Help:        def.help,
			ConstLabels: m.constLabels,
		}, labelNames)
	}
	m.vecs[name] = v
	return v
}

// values orders tags by the vec's labels. Missing tags become "" and extra
// tags are dropped.
func (v *vec) values(tags map[string]string) []string {
	out := make([]string, len(v.keys))
	for i, k := range v.keys {
		out[i] = tags[k]
	}
	return out
}

// PrometheusName converts a dotted metric name to a valid Prometheus name.
func PrometheusName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func sortedKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
