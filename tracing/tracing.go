package tracing

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/viant/hamal"

var spanKinds = map[string]trace.SpanKind{
	"SERVER":   trace.SpanKindServer,
	"CLIENT":   trace.SpanKindClient,
	"PRODUCER": trace.SpanKindProducer,
	"CONSUMER": trace.SpanKindConsumer,
}

var (
	providerOnce sync.Once
	providerErr  error
)

// Init installs the stdout exporter writing to outputFile, or os.Stdout when outputFile is empty.
// Only the first initialisation takes effect, later calls leave outputFile untouched.
func Init(serviceName, serviceVersion, outputFile string) error {
	return installProvider(serviceName, serviceVersion, func() (sdktrace.SpanExporter, error) {
		var writer io.Writer = os.Stdout
		if outputFile != "" {
			file, err := os.Create(outputFile)
			if err != nil {
				return nil, err
			}
			writer = file
		}
		return stdouttrace.New(stdouttrace.WithWriter(writer))
	})
}

// InitWithExporter installs the supplied exporter, for example OTLP or an in-memory one in tests.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	return installProvider(serviceName, serviceVersion, func() (sdktrace.SpanExporter, error) {
		return exporter, nil
	})
}

func installProvider(serviceName, serviceVersion string, newExporter func() (sdktrace.SpanExporter, error)) error {
	providerOnce.Do(func() {
		exporter, err := newExporter()
		if err != nil {
			providerErr = err
			return
		}
		res, err := resource.New(context.Background(), resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		))
		if err != nil {
			providerErr = err
			return
		}
		otel.SetTracerProvider(sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		))
	})
	return providerErr
}

// Span wraps an OpenTelemetry span; a nil *Span is a valid no-op span.
type Span struct {
	span trace.Span
}

func attributes(attrs map[string]string) []attribute.KeyValue {
	ret := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		ret = append(ret, attribute.String(k, v))
	}
	return ret
}

// WithAttributes sets string attributes on the span
func (s *Span) WithAttributes(attrs map[string]string) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	s.span.SetAttributes(attributes(attrs)...)
	return s
}

// AddEvent records a named event, e.g. a forwarded phase
func (s *Span) AddEvent(name string, attrs map[string]string) {
	if s == nil {
		return
	}
	s.span.AddEvent(name, trace.WithAttributes(attributes(attrs)...))
}

// SetStatus records err, or an OK status when err is nil
func (s *Span) SetStatus(err error) {
	if s == nil {
		return
	}
	if err == nil {
		s.span.SetStatus(codes.Ok, "")
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// StartSpan starts a child span; kind is one of SERVER, CLIENT, PRODUCER, CONSUMER, anything else is internal
func StartSpan(ctx context.Context, name, kind string) (context.Context, *Span) {
	spanKind, ok := spanKinds[kind]
	if !ok {
		spanKind = trace.SpanKindInternal
	}
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, name, trace.WithSpanKind(spanKind))
	return ctx, &Span{span: span}
}

// StartDispatch starts the span covering a compound dispatch from request to settled promise
func StartDispatch(ctx context.Context, dispatchID, requestType, responseType string) (context.Context, *Span) {
	ctx, span := StartSpan(ctx, "dispatch", "INTERNAL")
	return ctx, span.WithAttributes(map[string]string{
		"dispatch.id":   dispatchID,
		"request.type":  requestType,
		"response.type": responseType,
	})
}

// EndSpan records status for err and ends the span
func EndSpan(span *Span, err error) {
	if span == nil {
		return
	}
	span.SetStatus(err)
	span.span.End()
}

// SpanFromContext returns the span carried by ctx, a task can use it to add its own events
func SpanFromContext(ctx context.Context) (*Span, bool) {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil, false
	}
	return &Span{span: span}, true
}
