package metrics

import (
	"net/http"

	"gdl/enums"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "gdl"

// Metrics counts what jobs do. A nil *Metrics records nothing.
type Metrics struct {
	MessagesTotal  *prometheus.CounterVec
	DownloadsTotal *prometheus.CounterVec
	BytesTotal     prometheus.Counter
	JobsTotal      *prometheus.CounterVec
	QueueDepth     prometheus.Gauge
}

// NewMetrics registers all collectors on reg, or on the default
// registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		MessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "messages_total",
				Help:      "Messages received from extractors",
			},
			[]string{"kind", "extractor"},
		),
		DownloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "downloads_total",
				Help:      "Files handled by download jobs",
			},
			[]string{"result"},
		),
		BytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "downloaded_bytes_total",
				Help:      "Bytes written by download jobs",
			},
		),
		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "jobs_total",
				Help:      "Finished jobs by outcome",
			},
			[]string{"status"},
		),
		QueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "queue_depth",
				Help:      "Current nesting depth of queued jobs",
			},
		),
	}
}

func (m *Metrics) Message(kind enums.MessageKind, extractor string) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(string(kind), extractor).Inc()
}

func (m *Metrics) Download(result enums.DownloadResult, size int64) {
	if m == nil {
		return
	}
	m.DownloadsTotal.WithLabelValues(string(result)).Inc()
	if size > 0 {
		m.BytesTotal.Add(float64(size))
	}
}

func (m *Metrics) Job(status enums.OutcomeStatus) {
	if m == nil {
		return
	}
	m.JobsTotal.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) EnterQueue() {
	if m == nil {
		return
	}
	m.QueueDepth.Inc()
}

func (m *Metrics) LeaveQueue() {
	if m == nil {
		return
	}
	m.QueueDepth.Dec()
}

// Handler serves the collectors of the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
