// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"io"
	"time"

	"github.com/ahrav/go-star/internal/domain"
)

// EventSink receives diagnostic detail events from a calculator.
// Emit is called synchronously, in the order events occur, on the goroutine
// running the calculation. Implementations must not block for long and must
// not call back into the calculator.
type EventSink interface {
	Emit(event domain.Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(event domain.Event)

// Emit calls f(event).
func (f EventSinkFunc) Emit(event domain.Event) { f(event) }

// DiscardSink is an EventSink that drops every event.
var DiscardSink EventSink = EventSinkFunc(func(domain.Event) {})

// RandomSource supplies the randomness for the final tiebreak draw.
// *math/rand/v2.Rand satisfies it. Implementations need not be safe for
// concurrent use; each calculation uses its own source.
type RandomSource interface {
	// IntN returns a uniformly distributed integer in [0, n).
	IntN(n int) int
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus,
// OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like seats filled, ties broken, etc.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like tie sizes.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// ElectionImporter reads the reference data an election batch is built
// from. Source names are only used in error messages.
type ElectionImporter interface {
	// ImportBallots reads ballots from r and adds them to b.
	ImportBallots(source string, r io.Reader, b *domain.ElectionBuilder) error

	// ImportOptions reads a line-oriented option file.
	ImportOptions(source string, r io.Reader) (domain.Options, error)

	// ImportExpected reads expected outcomes, keyed positionally to the
	// elections of a batch.
	ImportExpected(source string, r io.Reader) ([]domain.ExpectedOutcome, error)
}
