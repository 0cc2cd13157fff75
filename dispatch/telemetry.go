package dispatch

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/s0up4200/lmsctl/dispatch"

type telemetry struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) (*telemetry, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	requests, err := mp.Meter(instrumentationName).Int64Counter(
		"lms.client.requests",
		metric.WithDescription("Requests sent to the training registry"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &telemetry{
		tracer:   tp.Tracer(instrumentationName),
		requests: requests,
	}, nil
}

// SpanName is the span name used for op.
func SpanName(op string) string {
	return "lms." + op
}

func (t *telemetry) start(ctx context.Context, op, method, endpoint string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanName(op),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("lms.op", op),
			attribute.String("http.request.method", method),
			attribute.String("url.path", endpoint),
		),
	)
}

func (t *telemetry) end(ctx context.Context, span trace.Span, op, method string, status int, err error) {
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	kind := Classify(err)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	outcome := "ok"
	if kind != KindNone {
		outcome = kind.String()
	}
	t.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("lms.op", op),
		attribute.String("http.request.method", method),
		attribute.String("outcome", outcome),
	))
}
