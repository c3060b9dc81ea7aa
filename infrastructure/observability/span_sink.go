package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-star/internal/domain"
	"github.com/ahrav/go-star/internal/ports"
)

var _ ports.EventSink = (*SpanSink)(nil)

// SpanSink records detail events as OpenTelemetry span events on the span
// covering one election's calculation.
type SpanSink struct {
	span trace.Span
}

// NewSpanSink creates a sink that annotates span.
func NewSpanSink(span trace.Span) *SpanSink {
	return &SpanSink{span: span}
}

// Emit implements ports.EventSink.
func (s *SpanSink) Emit(e domain.Event) {
	if !s.span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Int("star.seat", e.Seat+1),
		attribute.String("star.message", e.Message),
	}
	if e.Step != "" {
		attrs = append(attrs, attribute.String("star.tiebreak_step", string(e.Step)))
	}
	if len(e.Candidates) > 0 {
		names := make([]string, len(e.Candidates))
		for i, c := range e.Candidates {
			names[i] = string(c)
		}
		attrs = append(attrs, attribute.StringSlice("star.candidates", names))
	}
	s.span.AddEvent("star."+string(e.Kind), trace.WithAttributes(attrs...))

	switch e.Kind {
	case domain.EventInvalidElection:
		s.span.SetStatus(codes.Error, e.Message)
	case domain.EventSeatUnfilled:
		s.span.SetAttributes(attribute.Bool("star.unresolved", true))
	}
}
