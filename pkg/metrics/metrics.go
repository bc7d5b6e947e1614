package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the ingest pipeline counters behind a private registry so
// tests can run multiple instances without collisions.
type Metrics struct {
	registry *prometheus.Registry

	Received prometheus.Counter
	Recorded prometheus.Counter
	Failed   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "h5p_xapi",
			Name:      "statements_received_total",
			Help:      "Statements accepted by the ingest endpoint before processing.",
		}),
		Recorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "h5p_xapi",
			Name:      "statements_recorded_total",
			Help:      "Statements fully recorded (summary committed).",
		}),
		Failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "h5p_xapi",
			Name:      "statements_failed_total",
			Help:      "Statements rejected or rolled back, by reason.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		m.Received,
		m.Recorded,
		m.Failed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
