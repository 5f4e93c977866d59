package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts foreign-boundary traffic. A nil *Metrics records nothing.
type Metrics struct {
	calls       *prometheus.CounterVec
	exceptions  *prometheus.CounterVec
	streamBytes prometheus.Counter
	openStreams prometheus.Gauge
	extractions *prometheus.CounterVec
}

// NewMetrics registers the bridge collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tika_bridge",
			Name:      "foreign_calls_total",
			Help:      "Foreign method invocations by method name.",
		}, []string{"method"}),
		exceptions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tika_bridge",
			Name:      "foreign_exceptions_total",
			Help:      "Foreign exceptions cleared, by the method that raised them.",
		}, []string{"method"}),
		streamBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tika_bridge",
			Name:      "stream_bytes_total",
			Help:      "Bytes delivered by streaming readers.",
		}),
		openStreams: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "tika_bridge",
			Name:      "open_streams",
			Help:      "Streams holding a foreign reader.",
		}),
		extractions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tika_bridge",
			Name:      "extractions_total",
			Help:      "Extractions by operation and outcome.",
		}, []string{"op", "outcome"}),
	}
}

func (m *Metrics) call(method string) {
	if m != nil {
		m.calls.WithLabelValues(method).Inc()
	}
}

func (m *Metrics) exception(method string) {
	if m != nil {
		m.exceptions.WithLabelValues(method).Inc()
	}
}

// StreamOpened records a stream taking ownership of a foreign reader.
func (m *Metrics) StreamOpened() {
	if m != nil {
		m.openStreams.Inc()
	}
}

// StreamClosed records a stream releasing its foreign reader.
func (m *Metrics) StreamClosed() {
	if m != nil {
		m.openStreams.Dec()
	}
}

// StreamRead records n bytes delivered to the host.
func (m *Metrics) StreamRead(n int) {
	if m != nil && n > 0 {
		m.streamBytes.Add(float64(n))
	}
}

// Extraction records one extraction. outcome is "ok" or an error kind.
func (m *Metrics) Extraction(op, outcome string) {
	if m != nil {
		m.extractions.WithLabelValues(op, outcome).Inc()
	}
}
