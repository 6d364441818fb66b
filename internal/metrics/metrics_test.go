package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"

	"medapp-cli/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPublishCounters_OverwritesGauges(t *testing.T) {
	m := New()
	m.PublishCounters(model.CounterSnapshot{Counts: map[model.Filter]int{
		model.FilterAll: 3, model.Filter(model.StatusScheduled): 2, model.Filter(model.StatusCompleted): 1,
	}})
	require.Equal(t, 3.0, testutil.ToFloat64(m.Visits.WithLabelValues("all")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.Visits.WithLabelValues("scheduled")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.Visits.WithLabelValues("cancelled")))

	m.PublishCounters(model.CounterSnapshot{Counts: map[model.Filter]int{
		model.FilterAll: 3, model.Filter(model.StatusScheduled): 1, model.Filter(model.StatusCompleted): 1,
		model.Filter(model.StatusCancelled): 1,
	}})
	require.Equal(t, 1.0, testutil.ToFloat64(m.Visits.WithLabelValues("scheduled")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Visits.WithLabelValues("cancelled")))
}

func TestObservations(t *testing.T) {
	m := New()
	m.ObserveCancellation(OutcomeOK)
	m.ObserveCancellation(OutcomeRejected)
	m.ObserveCancellation(OutcomeRejected)
	m.ObservePageLoad("patient", nil)
	m.ObservePageLoad("patient", errors.New("boom"))

	require.Equal(t, 2.0, testutil.ToFloat64(m.Cancellations.WithLabelValues(OutcomeRejected)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.PageLoads.WithLabelValues("patient", "error")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	require.True(t, strings.Contains(string(body), `medapp_cancellations_total{outcome="ok"} 1`))
}

func TestServe_ReportsBindErrors(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.Error(t, New().Serve(ctx, ln.Addr().String()))
	require.NoError(t, New().Serve(ctx, "127.0.0.1:0"))
}
