// Command starcalc tallies a batch of STAR elections described by a YAML
// run configuration and reports the winners of every election. When the
// configuration names expected outcomes, starcalc exits non-zero if any
// election disagrees with them.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-star/infrastructure/importer"
	"github.com/ahrav/go-star/infrastructure/observability"
	"github.com/ahrav/go-star/internal/application"
	"github.com/ahrav/go-star/internal/domain"
	"github.com/ahrav/go-star/internal/ports"
)

func main() {
	var (
		configPath  = flag.String("config", "run.yaml", "Path to the run configuration")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn or error")
		logFormat   = flag.String("log-format", "text", "Log format: text or json")
		events      = flag.Bool("events", false, "Log every calculator detail event")
		metricsFile = flag.String("metrics-file", "", "Write Prometheus metrics to this file when done")
	)
	flag.Parse()

	logger, err := newLogger(os.Stderr, *logLevel, *logFormat)
	if err != nil {
		log.Fatalf("Invalid logging flags: %v", err)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loader, err := application.NewLoader(importer.New(), logger)
	if err != nil {
		log.Fatalf("Failed to create loader: %v", err)
	}
	batch, err := loader.LoadFromFile(ctx, *configPath)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *configPath, err)
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewPrometheusMetrics(reg)

	runner := application.NewRunner(
		application.WithLogger(logger),
		application.WithMetrics(metrics),
		application.WithSinkFactory(func(e *domain.Election, span trace.Span) ports.EventSink {
			sinks := observability.MultiSink{
				observability.NewMetricsSink(metrics),
				observability.NewSpanSink(span),
			}
			if *events {
				sinks = append(sinks, observability.NewLogSink(logger.With(slog.String("election", e.Name()))))
			}
			return sinks
		}),
	)

	report, runErr := runner.Run(ctx, batch)
	printReport(os.Stdout, report)

	if *metricsFile != "" {
		if err := observability.WriteTextfile(*metricsFile, reg); err != nil {
			logger.Error("failed to write metrics", slog.Any("error", err))
		}
	}
	if runErr != nil {
		log.Fatalf("Run failed: %v", runErr)
	}
	if !report.Passed() {
		os.Exit(1)
	}
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func printReport(w io.Writer, report *application.Report) {
	fmt.Fprintf(w, "Run %s: %s (seed %d, options %s)\n", report.RunID, report.Name, report.Seed, report.Options)

	for _, o := range report.Outcomes {
		if o.Election == nil {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", o.Election.Name())
		if o.Result.IsNull() {
			fmt.Fprintf(w, "  no result: election is invalid\n")
			continue
		}
		for _, seat := range o.Result.Seats() {
			fmt.Fprintf(w, "  %s\n", describeSeat(seat))
		}
		if ru, ok := o.Result.RunnerUp(); ok {
			fmt.Fprintf(w, "  runner-up: %s\n", ru)
		}
		if o.Verified() {
			status := "ok"
			if !o.Passed() {
				status = "MISMATCH: " + o.Mismatch
			}
			fmt.Fprintf(w, "  expected: %s\n", status)
		}
	}

	if n := report.Verified(); n > 0 {
		fmt.Fprintf(w, "\nVerified %d elections, %d failed, in %s\n", n, len(report.Failures()), report.Duration)
	}
}

func describeSeat(seat domain.Seat) string {
	prefix := fmt.Sprintf("seat %d: ", seat.Index()+1)
	winner, ok := seat.Winner()
	switch {
	case ok && seat.IsExceptionFilled():
		return prefix + winner.String() + " (last candidate standing)"
	case ok && seat.IsUpset():
		return prefix + winner.String() + " (upset)"
	case ok:
		return prefix + winner.String()
	case len(seat.UnresolvedCandidates()) > 0:
		return prefix + fmt.Sprintf("unresolved tie between %v", seat.UnresolvedCandidates())
	default:
		return prefix + "not filled"
	}
}
