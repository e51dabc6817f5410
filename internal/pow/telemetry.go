package pow

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/roach88/nostrpow/internal/pow"

const (
	modeSync  = "sync"
	modeAsync = "async"
)

// telemetry holds the tracer and RED instruments for compute operations.
// Instruments come from the global providers, which are no-ops unless the
// host installs an SDK.
type telemetry struct {
	tracer   trace.Tracer
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

var sharedTelemetry = sync.OnceValue(newTelemetry)

func newTelemetry() *telemetry {
	meter := otel.Meter(instrumentationName)
	t := &telemetry{tracer: otel.Tracer(instrumentationName)}

	var err error
	t.total, err = meter.Int64Counter("nostrpow.compute.total",
		metric.WithDescription("Proof-of-work operations by outcome"),
	)
	if err != nil {
		t.total = noop.Int64Counter{}
	}
	t.duration, err = meter.Float64Histogram("nostrpow.compute.duration_ms",
		metric.WithDescription("Proof-of-work operation duration, including the nonce search"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		t.duration = noop.Float64Histogram{}
	}
	return t
}

func (t *telemetry) start(ctx context.Context, mode string, d Difficulty) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pow.compute", trace.WithAttributes(
		attribute.String("pow.mode", mode),
		attribute.Int("pow.difficulty", int(d)),
	))
}

func (t *telemetry) end(ctx context.Context, span trace.Span, mode string, start time.Time, err error) {
	outcome := outcomeOf(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	)
	t.total.Add(ctx, 1, attrs)
	t.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsInvalidParameter(err):
		return "invalid_parameter"
	case IsDifficultyOutOfRange(err):
		return "difficulty_out_of_range"
	case IsInternalError(err):
		return "internal_error"
	default:
		return "engine_error"
	}
}
