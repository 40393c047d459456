package otel

import (
	"context"
	"strings"
	"sync"
	"time"

	eventbus "github.com/graphmend/graphmend/internal/eventbus"
	events "github.com/graphmend/graphmend/internal/events"
	reqid "github.com/graphmend/graphmend/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("graphmend")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer    trace.Tracer
	httpSpans sync.Map // rid -> trace.Span
	gqlSpans  sync.Map // rid -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "http.request")
		span.SetAttributes(
			semconv.HTTPMethodKey.String(e.Request.Method),
			attribute.String("http.target", e.Request.URL.Path),
		)
		s.httpSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.httpSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLStart) {
		rid, _ := reqid.FromContext(ctx)
		parent := ctx
		if v, ok := s.httpSpans.Load(rid); ok {
			parent = trace.ContextWithSpan(ctx, v.(trace.Span))
		}
		_, span := s.tracer.Start(parent, "graphql.operation")
		span.SetAttributes(
			attribute.String("graphql.operation.name", e.OperationName),
			attribute.String("graphql.operation.type", e.OperationType),
		)
		s.gqlSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.gqlSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
		span.End()
	})

	// Heal runs synchronously before serving, so the span is recorded
	// retroactively from the reported duration.
	eventbus.Subscribe(func(ctx context.Context, e events.SchemaHeal) {
		_, span := s.tracer.Start(ctx, "schema.heal",
			trace.WithTimestamp(time.Now().Add(-e.Duration)))
		span.SetAttributes(
			attribute.Int("schema.heal.removed_count", len(e.Removed)),
			attribute.String("schema.heal.removed", strings.Join(e.Removed, ",")),
			attribute.Int("schema.type_count", e.TypeCount),
		)
		span.End()
	})
}
