/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package tracing

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

var logger = log.New("tracing")

// SpanExporterType specifies the type of span exporter used by tracer provider.
type SpanExporterType = string

const (
	None   SpanExporterType = ""
	Jaeger SpanExporterType = "JAEGER"
	Stdout SpanExporterType = "STDOUT"
)

const (
	JaegerAgentEndpointEnvKey     = "OTEL_EXPORTER_JAEGER_AGENT_HOST"
	JaegerCollectorEndpointEnvKey = "OTEL_EXPORTER_JAEGER_ENDPOINT"
	tracerName                    = "https://github.com/trustbloc/did-ledger"
)

var exporters = map[SpanExporterType]func() (tracesdk.SpanExporter, error){ //nolint:gochecknoglobals
	Jaeger: newJaegerExporter,
	Stdout: func() (tracesdk.SpanExporter, error) { return stdouttrace.New() },
}

// IsExportedSupported reports whether the exporter type is known to Initialize.
func IsExportedSupported(exporter SpanExporterType) bool {
	_, ok := exporters[exporter]

	return ok || exporter == None
}

// Tracing is the tracer of the ledger service and the provider it was created from.
type Tracing struct {
	Tracer trace.Tracer
	// Provider is nil when tracing is disabled, which turns off instrumentation of storage clients.
	Provider trace.TracerProvider

	shutdown func(ctx context.Context) error
}

// Enabled reports whether spans are exported.
func (t *Tracing) Enabled() bool {
	return t.Provider != nil
}

// Shutdown flushes pending spans.
func (t *Tracing) Shutdown() {
	if t.shutdown == nil {
		return
	}

	if err := t.shutdown(context.Background()); err != nil {
		logger.Warn("Error shutting down tracer provider", log.WithError(err))
	}
}

// Initialize registers a global tracer provider that exports the spans of the ledger service with
// the given exporter. Shutdown must be called before the process exits.
func Initialize(exporter SpanExporterType, serviceName, serviceVersion string) (*Tracing, error) {
	if exporter == None {
		return &Tracing{Tracer: trace.NewNoopTracerProvider().Tracer(tracerName)}, nil
	}

	newExporter, ok := exporters[exporter]
	if !ok {
		return nil, fmt.Errorf("unsupported exporter type: %s", exporter)
	}

	spanExporter, err := newExporter()
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", exporter, err)
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(serviceName),
		semconv.ProcessPIDKey.Int(os.Getpid()),
	}

	if serviceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersionKey.String(serviceVersion))
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(spanExporter),
		tracesdk.WithResource(resource.NewWithAttributes(semconv.SchemaURL, attrs...)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	return &Tracing{
		Tracer:   tp.Tracer(tracerName),
		Provider: tp,
		shutdown: tp.Shutdown,
	}, nil
}

func newJaegerExporter() (tracesdk.SpanExporter, error) {
	var endpoint jaeger.EndpointOption

	switch {
	case os.Getenv(JaegerAgentEndpointEnvKey) != "":
		endpoint = jaeger.WithAgentEndpoint()
	case os.Getenv(JaegerCollectorEndpointEnvKey) != "":
		endpoint = jaeger.WithCollectorEndpoint()
	default:
		return nil, errors.New("neither agent nor collector endpoint is provided")
	}

	return jaeger.New(endpoint)
}
