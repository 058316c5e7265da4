package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-rental-go/rental/oteladapters"
)

func givenTracingCollector(t *testing.T) (*oteladapters.TracingCollector, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return oteladapters.NewTracingCollector(provider.Tracer("test")), recorder
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// setup
	collector, recorder := givenTracingCollector(t)

	// act
	ctx, span := collector.StartSpan(context.Background(), "commandhandler.handle", map[string]string{"command_type": "RentBook"})
	span.AddAttribute("book_id", "42")
	collector.FinishSpan(span, "success", map[string]string{"duration_ms": "1.50"})

	// assert
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid(), "context should carry the span")
	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "commandhandler.handle", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.String("command_type", "RentBook"))
	assert.Contains(t, ended[0].Attributes(), attribute.String("book_id", "42"))
	assert.Contains(t, ended[0].Attributes(), attribute.String("duration_ms", "1.50"))
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status string
		code   codes.Code
	}{
		{status: "success", code: codes.Ok},
		{status: "error", code: codes.Error},
		{status: "canceled", code: codes.Error},
		{status: "timeout", code: codes.Error},
		{status: "lock_timeout", code: codes.Error},
		{status: "rejected", code: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// setup
			collector, recorder := givenTracingCollector(t)
			_, span := collector.StartSpan(context.Background(), "rentalstore.transaction", nil)

			// act
			collector.FinishSpan(span, tc.status, nil)

			// assert
			ended := recorder.Ended()
			require.Len(t, ended, 1)
			assert.Equal(t, tc.code, ended[0].Status().Code)
		})
	}
}

type foreignSpan struct{}

func (foreignSpan) SetStatus(string)            {}
func (foreignSpan) AddAttribute(string, string) {}

func Test_TracingCollector_IgnoresForeignSpanContext(t *testing.T) {
	// setup
	collector, recorder := givenTracingCollector(t)

	// act
	collector.FinishSpan(foreignSpan{}, "success", nil)

	// assert
	assert.Empty(t, recorder.Ended())
}
