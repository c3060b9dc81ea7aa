package observability

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/ahrav/go-star/internal/domain"
	"github.com/ahrav/go-star/internal/ports"
)

var (
	_ ports.EventSink = (*MetricsSink)(nil)
	_ ports.EventSink = (*LogSink)(nil)
	_ ports.EventSink = (*RecordingSink)(nil)
	_ ports.EventSink = MultiSink(nil)
)

// MetricsSink turns detail events into seat, tiebreak and per-kind event
// metrics. Election-level counters are recorded by the batch runner.
type MetricsSink struct {
	metrics ports.MetricsCollector
}

// NewMetricsSink creates a sink that reports to metrics.
func NewMetricsSink(metrics ports.MetricsCollector) *MetricsSink {
	return &MetricsSink{metrics: metrics}
}

// Emit implements ports.EventSink.
func (s *MetricsSink) Emit(e domain.Event) {
	switch e.Kind {
	case domain.EventSeatFilled:
		s.metrics.RecordCounter(MetricSeats, 1, map[string]string{"outcome": "filled"})
	case domain.EventSeatUnfilled:
		s.metrics.RecordCounter(MetricSeats, 1, map[string]string{"outcome": "unresolved"})
	case domain.EventSeatUnfillable:
		s.metrics.RecordCounter(MetricSeats, 1, map[string]string{"outcome": "unfillable"})
	case domain.EventTiebreakStep, domain.EventRandomDraw:
		s.metrics.RecordCounter(MetricTiebreakSteps, 1, map[string]string{"step": string(e.Step)})
	case domain.EventTieDetected, domain.EventTieUnresolved:
		s.metrics.RecordHistogram(MetricTieSize, float64(len(e.Candidates)), map[string]string{"kind": string(e.Kind)})
	}
	s.metrics.RecordCounter(string(e.Kind), 1, nil)
}

// LogSink writes detail events to a structured logger. Cascade internals
// log at Debug, seat outcomes at Info, and invalid elections and unresolved
// seats at Warn.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that logs to logger. A nil logger uses
// slog.Default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Emit implements ports.EventSink.
func (s *LogSink) Emit(e domain.Event) {
	level := eventLevel(e.Kind)
	ctx := context.Background()
	if !s.logger.Enabled(ctx, level) {
		return
	}

	attrs := []slog.Attr{slog.String("kind", string(e.Kind))}
	if e.Seat >= 0 {
		attrs = append(attrs, slog.Int("seat", e.Seat+1))
	}
	if e.Step != "" {
		attrs = append(attrs, slog.String("step", string(e.Step)))
	}
	if len(e.Candidates) > 0 {
		attrs = append(attrs, slog.Any("candidates", e.Candidates))
	}
	s.logger.LogAttrs(ctx, level, e.Message, attrs...)
}

func eventLevel(kind domain.EventKind) slog.Level {
	switch kind {
	case domain.EventInvalidElection, domain.EventSeatUnfilled, domain.EventTieUnresolved:
		return slog.LevelWarn
	case domain.EventSeatFilled, domain.EventSeatUnfillable, domain.EventExceptionFill,
		domain.EventDefactoWinner, domain.EventRunoffResult:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// MultiSink fans each event out to several sinks in order.
type MultiSink []ports.EventSink

// Emit implements ports.EventSink.
func (m MultiSink) Emit(e domain.Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// RecordingSink keeps every event it receives. It is safe for concurrent
// use so one recorder can observe a whole batch.
type RecordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

// NewRecordingSink creates an empty RecordingSink.
func NewRecordingSink() *RecordingSink { return &RecordingSink{} }

// Emit implements ports.EventSink.
func (r *RecordingSink) Emit(e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in arrival order.
func (r *RecordingSink) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Kinds returns the kinds of the recorded events in arrival order.
func (r *RecordingSink) Kinds() []domain.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]domain.EventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// OfKind returns the recorded events of the given kind.
func (r *RecordingSink) OfKind(kind domain.EventKind) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards the recorded events.
func (r *RecordingSink) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
