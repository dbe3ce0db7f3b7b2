package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const serviceName = "dynamictickets"

// ConfigureTraceProvider exports spans to Jaeger when jaegerEndpoint is set.
// Without an endpoint spans are still created and propagated, just not
// exported.
func ConfigureTraceProvider(jaegerEndpoint string) (*tracesdk.TracerProvider, error) {
	opts := []tracesdk.TracerProviderOption{
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	}

	if jaegerEndpoint != "" {
		exp, err := jaeger.New(
			jaeger.WithCollectorEndpoint(
				jaeger.WithEndpoint(jaegerEndpoint),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("could not create jaeger exporter: %w", err)
		}
		opts = append(opts, tracesdk.WithBatcher(exp))
	}

	tp := tracesdk.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)

	// without it the trace isn't carried over message metadata
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp, nil
}

func Shutdown(ctx context.Context, tp *tracesdk.TracerProvider) error {
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}
