package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-star/internal/domain"
	"github.com/ahrav/go-star/internal/ports"
)

const tracerName = "github.com/ahrav/go-star/internal/application"

// DefaultProgressInterval is the minimum time between batch progress lines.
const DefaultProgressInterval = 2 * time.Second

// SinkFactory returns the event sink for one election's calculation. span
// covers that calculation. The returned sink is only used by one goroutine.
type SinkFactory func(election *domain.Election, span trace.Span) ports.EventSink

// Runner tallies the elections of a Batch concurrently and verifies the
// results against the batch's expected outcomes.
type Runner struct {
	sinks            SinkFactory
	metrics          ports.MetricsCollector
	tracer           trace.Tracer
	logger           *slog.Logger
	progressInterval time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSinkFactory sets how per-election event sinks are created.
func WithSinkFactory(f SinkFactory) RunnerOption {
	return func(r *Runner) {
		if f != nil {
			r.sinks = f
		}
	}
}

// WithMetrics records election outcomes and latencies to m.
func WithMetrics(m ports.MetricsCollector) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer sets the tracer used for run and election spans.
func WithTracer(t trace.Tracer) RunnerOption {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithLogger sets the logger for run-level messages.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = ResolveLogger(l) }
}

// WithProgressInterval sets the minimum time between progress lines.
func WithProgressInterval(d time.Duration) RunnerOption {
	return func(r *Runner) { r.progressInterval = d }
}

// NewRunner creates a Runner. By default events are discarded, no metrics
// are recorded, and spans go to the global tracer provider.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		sinks:            func(*domain.Election, trace.Span) ports.EventSink { return ports.DiscardSink },
		tracer:           otel.Tracer(tracerName),
		logger:           slog.Default(),
		progressInterval: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ElectionOutcome is the result of tallying one election of a batch.
type ElectionOutcome struct {
	// Index is the election's position in the batch.
	Index    int
	Election *domain.Election
	Result   domain.ElectionResult
	// Expected is the reference outcome, or nil when the batch is not
	// verified.
	Expected *domain.ExpectedOutcome
	// Mismatch describes how Result differs from Expected; empty when they
	// agree or nothing was expected.
	Mismatch string
	Duration time.Duration
}

// Verified reports whether the outcome was checked against a reference.
func (o ElectionOutcome) Verified() bool { return o.Expected != nil }

// Evaluated reports whether the election was tallied. Outcomes of a run
// interrupted by its context may not be.
func (o ElectionOutcome) Evaluated() bool { return o.Election != nil }

// Passed reports whether the election was tallied and matched its
// reference, or had none.
func (o ElectionOutcome) Passed() bool { return o.Evaluated() && o.Mismatch == "" }

// Report summarizes one run of a batch.
type Report struct {
	// RunID uniquely identifies the run in logs and traces.
	RunID    string
	Name     string
	Seed     uint64
	Options  domain.Options
	Outcomes []ElectionOutcome
	Duration time.Duration
}

// Verified returns how many outcomes were checked against a reference.
func (r *Report) Verified() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Verified() {
			n++
		}
	}
	return n
}

// Failures returns the outcomes that did not match their reference or
// were never tallied.
func (r *Report) Failures() []ElectionOutcome {
	var out []ElectionOutcome
	for _, o := range r.Outcomes {
		if !o.Passed() {
			out = append(out, o)
		}
	}
	return out
}

// Passed reports whether every verified outcome matched.
func (r *Report) Passed() bool { return len(r.Failures()) == 0 }

// Run tallies every election in batch, at most batch.Concurrency at a
// time. Election i uses seed batch.Seed+i, so a report can be reproduced
// from its seed regardless of scheduling. Run only fails when ctx is
// done; elections that could not be tallied are reported as values.
func (r *Runner) Run(ctx context.Context, batch *Batch) (*Report, error) {
	report := &Report{
		RunID:    uuid.NewString(),
		Name:     batch.Name,
		Seed:     batch.Seed,
		Options:  batch.Options,
		Outcomes: make([]ElectionOutcome, len(batch.Elections)),
	}
	logger := r.logger.With(slog.String("run_id", report.RunID), slog.String("batch", batch.Name))

	ctx, span := r.tracer.Start(ctx, "Runner.Run", trace.WithAttributes(
		attribute.String("star.run_id", report.RunID),
		attribute.String("star.batch", batch.Name),
		attribute.Int("star.elections", len(batch.Elections)),
		attribute.String("star.options", batch.Options.String()),
	))
	defer span.End()

	logger.Info("starting run",
		slog.Int("elections", len(batch.Elections)),
		slog.Uint64("seed", batch.Seed),
		slog.String("options", batch.Options.String()),
	)

	start := time.Now()
	progress := &rate.Sometimes{First: 1, Interval: r.progressInterval}
	var done atomic.Int64
	total := len(batch.Elections)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(batch.Concurrency, 1))
	for i, e := range batch.Elections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Outcomes[i] = r.evaluate(gctx, i, e, batch)

			n := done.Add(1)
			progress.Do(func() {
				logger.Info("progress", slog.Int64("done", n), slog.Int("total", total))
			})
			return nil
		})
	}
	err := g.Wait()
	report.Duration = time.Since(start)

	if r.metrics != nil {
		r.metrics.RecordLatency("run", report.Duration, map[string]string{"batch": batch.Name})
		r.metrics.RecordGauge("last_run_elections", float64(done.Load()), nil)
		r.metrics.RecordGauge("last_run_failures", float64(len(report.Failures())), nil)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run interrupted")
		logger.Warn("run interrupted", slog.Int64("done", done.Load()), slog.Any("error", err))
		return report, fmt.Errorf("run %s interrupted: %w", report.RunID, err)
	}

	failures := len(report.Failures())
	span.SetAttributes(attribute.Int("star.failures", failures))
	if failures > 0 {
		span.SetStatus(codes.Error, "verification failed")
	}
	logger.Info("run complete",
		slog.Duration("duration", report.Duration),
		slog.Int("verified", report.Verified()),
		slog.Int("failures", failures),
	)
	return report, nil
}

func (r *Runner) evaluate(ctx context.Context, i int, e *domain.Election, batch *Batch) ElectionOutcome {
	_, span := r.tracer.Start(ctx, "Calculator.CalculateResult", trace.WithAttributes(
		attribute.String("star.election", e.Name()),
		attribute.Int("star.index", i),
		attribute.Int("star.seats", e.SeatCount()),
		attribute.Int("star.ballots", e.BallotCount()),
	))
	defer span.End()

	calc := NewCalculator(e,
		WithOptions(batch.Options),
		WithSeed(batch.Seed+uint64(i)),
		WithEventSink(r.sinks(e, span)),
	)

	start := time.Now()
	result := calc.CalculateResult()
	out := ElectionOutcome{
		Index:    i,
		Election: e,
		Result:   result,
		Duration: time.Since(start),
	}

	if i < len(batch.Expected) {
		want := batch.Expected[i]
		out.Expected = &want
		out.Mismatch = result.Mismatch(want)
	}

	span.SetAttributes(
		attribute.Int("star.filled_seats", result.FilledSeatCount()),
		attribute.Bool("star.null_result", result.IsNull()),
	)
	if out.Mismatch != "" {
		span.SetStatus(codes.Error, out.Mismatch)
	}
	r.recordOutcome(out)
	return out
}

func (r *Runner) recordOutcome(o ElectionOutcome) {
	if r.metrics == nil {
		return
	}

	status := "ok"
	switch {
	case o.Result.IsNull():
		status = "invalid"
	case o.Result.UnfilledSeatCount() > 0:
		status = "incomplete"
	}
	r.metrics.RecordCounter("elections_total", 1, map[string]string{"status": status})
	r.metrics.RecordLatency("calculate", o.Duration, nil)

	for _, s := range o.Result.Seats() {
		if s.IsUpset() {
			r.metrics.RecordCounter("upsets_total", 1, nil)
		}
	}
	if o.Verified() && !o.Passed() {
		r.metrics.RecordCounter("verification_failures_total", 1, nil)
	}
}
