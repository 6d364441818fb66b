package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"medapp-cli/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medapp"

// Metrics holds the client's metrics on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	// Visits mirrors the latest counter snapshot per filter (including "all").
	Visits *prometheus.GaugeVec
	// Cancellations counts settled cancellations by outcome (ok, rejected, failed).
	Cancellations *prometheus.CounterVec
	PageLoads     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Visits: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visits",
			Help:      "Visits on the loaded patient page, by status filter",
		}, []string{"status"}),
		Cancellations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellations_total",
			Help:      "Visit cancellations by outcome",
		}, []string{"outcome"}),
		PageLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_loads_total",
			Help:      "Server page loads by page and result",
		}, []string{"page", "result"}),
	}
}

// PublishCounters makes Metrics a counter surface: every recompute overwrites the gauges.
func (m *Metrics) PublishCounters(s model.CounterSnapshot) {
	for _, f := range model.Filters {
		m.Visits.WithLabelValues(string(f)).Set(float64(s.Count(f)))
	}
}

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

func (m *Metrics) ObserveCancellation(outcome string) {
	m.Cancellations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObservePageLoad(page string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.PageLoads.WithLabelValues(page, result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done. It returns once the listener is
// bound so callers can report bind errors synchronously.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	go func() { _ = srv.Serve(ln) }()
	return nil
}
