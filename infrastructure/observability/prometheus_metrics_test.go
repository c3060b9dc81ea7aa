package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-star/internal/domain"
	"github.com/ahrav/go-star/internal/ports"
)

// newTestMetrics registers on a private registry so tests do not collide on
// metric names.
func newTestMetrics(t *testing.T) (*PrometheusMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewPrometheusMetrics(reg), reg
}

func TestNewPrometheusMetrics(t *testing.T) {
	pm, _ := newTestMetrics(t)

	assert.NotNil(t, pm.elections, "elections should be initialized")
	assert.NotNil(t, pm.seats, "seats should be initialized")
	assert.NotNil(t, pm.tiebreakSteps, "tiebreakSteps should be initialized")
	assert.NotNil(t, pm.tieSize, "tieSize should be initialized")
	assert.NotNil(t, pm.executionLatency, "executionLatency should be initialized")

	var _ ports.MetricsCollector = pm
}

func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	pm, _ := newTestMetrics(t)

	tests := []struct {
		name   string
		metric string
		labels map[string]string
		get    func() float64
	}{
		{
			name:   "elections by status",
			metric: MetricElections,
			labels: map[string]string{"status": "ok"},
			get:    func() float64 { return testutil.ToFloat64(pm.elections.WithLabelValues("ok")) },
		},
		{
			name:   "seats by outcome",
			metric: MetricSeats,
			labels: map[string]string{"outcome": "filled"},
			get:    func() float64 { return testutil.ToFloat64(pm.seats.WithLabelValues("filled")) },
		},
		{
			name:   "tiebreak step without label",
			metric: MetricTiebreakSteps,
			labels: nil,
			get:    func() float64 { return testutil.ToFloat64(pm.tiebreakSteps.WithLabelValues("unknown")) },
		},
		{
			name:   "upsets",
			metric: MetricUpsets,
			get:    func() float64 { return testutil.ToFloat64(pm.upsets) },
		},
		{
			name:   "other metrics count as events",
			metric: "benign_tie",
			get:    func() float64 { return testutil.ToFloat64(pm.eventCounter.WithLabelValues("benign_tie")) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.get()
			pm.RecordCounter(tt.metric, 2, tt.labels)
			assert.Equal(t, before+2, tt.get())
		})
	}
}

func TestPrometheusMetrics_GaugeAndHistograms(t *testing.T) {
	pm, reg := newTestMetrics(t)

	pm.RecordGauge("elections_pending", 3, nil)
	assert.Equal(t, float64(3), testutil.ToFloat64(pm.systemGauges.WithLabelValues("elections_pending")))

	pm.RecordLatency("calculate", 20*time.Millisecond, nil)
	pm.RecordHistogram(MetricTieSize, 3, map[string]string{"kind": "tie_detected"})
	pm.RecordHistogram("load", 0.5, nil)

	assert.Equal(t, 2, testutil.CollectAndCount(pm.executionLatency), "calculate and load series")
	assert.Equal(t, 1, testutil.CollectAndCount(pm.tieSize))

	problems, err := testutil.GatherAndLint(reg)
	require.NoError(t, err)
	assert.Empty(t, problems, "metrics should pass the Prometheus linter")
}

func TestMetricsSink(t *testing.T) {
	pm, _ := newTestMetrics(t)
	sink := NewMetricsSink(pm)

	events := []domain.Event{
		domain.NewEvent(domain.EventSeatStarted, 0, nil, "start"),
		domain.NewEvent(domain.EventTieDetected, 0, []domain.Candidate{"A", "B", "C"}, "tie"),
		domain.NewEvent(domain.EventTiebreakStep, 0, []domain.Candidate{"A"}, "narrow").WithStep(domain.StepMaxScoreVotes),
		domain.NewEvent(domain.EventSeatFilled, 0, []domain.Candidate{"A"}, "A wins"),
		domain.NewEvent(domain.EventSeatUnfillable, 1, nil, "none left"),
		domain.NewEvent(domain.EventInvalidElection, -1, nil, "no ballots"),
	}
	for _, e := range events {
		sink.Emit(e)
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(pm.seats.WithLabelValues("filled")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.seats.WithLabelValues("unfillable")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.tiebreakSteps.WithLabelValues("max_score_votes")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.eventCounter.WithLabelValues("invalid_election")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.eventCounter.WithLabelValues("seat_started")))

	expected := `
# HELP star_tie_size Number of candidates in a detected or unresolved tie.
# TYPE star_tie_size histogram
star_tie_size_bucket{kind="tie_detected",le="2"} 0
star_tie_size_bucket{kind="tie_detected",le="3"} 1
star_tie_size_bucket{kind="tie_detected",le="4"} 1
star_tie_size_bucket{kind="tie_detected",le="5"} 1
star_tie_size_bucket{kind="tie_detected",le="6"} 1
star_tie_size_bucket{kind="tie_detected",le="7"} 1
star_tie_size_bucket{kind="tie_detected",le="8"} 1
star_tie_size_bucket{kind="tie_detected",le="9"} 1
star_tie_size_bucket{kind="tie_detected",le="+Inf"} 1
star_tie_size_sum{kind="tie_detected"} 3
star_tie_size_count{kind="tie_detected"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(pm.tieSize, strings.NewReader(expected)))
}

func TestWriteTextfile(t *testing.T) {
	pm, reg := newTestMetrics(t)
	pm.RecordCounter(MetricElections, 3, map[string]string{"status": "ok"})

	path := filepath.Join(t.TempDir(), "star.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `star_elections_total{status="ok"} 3`)

	err = WriteTextfile(filepath.Join(t.TempDir(), "missing", "star.prom"), reg)
	var merr *ports.MetricsError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "write_textfile", merr.Operation)
}
