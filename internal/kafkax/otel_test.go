package kafkax

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/md-rashed-zaman/clinicore/internal/otelx"
)

const sampleTraceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func TestTraceHeadersRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	ctx := otelx.ContextWithTraceContext(context.Background(), sampleTraceparent, "")
	headers := InjectTraceHeaders(ctx, nil)
	if HeaderValue(headers, "traceparent") != sampleTraceparent {
		t.Fatalf("traceparent header %q", HeaderValue(headers, "traceparent"))
	}

	got := ExtractTraceContext(context.Background(), kafka.Message{Headers: headers})
	tp, _ := otelx.TraceContextStrings(got)
	if tp != sampleTraceparent {
		t.Fatalf("extracted traceparent %q, want %q", tp, sampleTraceparent)
	}
}

func TestInjectOverwritesExistingHeader(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx := otelx.ContextWithTraceContext(context.Background(), sampleTraceparent, "")
	headers := []kafka.Header{{Key: "traceparent", Value: []byte("stale")}}
	headers = InjectTraceHeaders(ctx, headers)

	seen := 0
	for _, h := range headers {
		if h.Key == "traceparent" {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("traceparent header appears %d times, want 1", seen)
	}
	if HeaderValue(headers, "traceparent") != sampleTraceparent {
		t.Fatal("stale header value must be replaced")
	}
}
