package observability

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitOTel_Disabled(t *testing.T) {
	providers, err := InitOTel(context.Background(), OTelConfig{Enabled: false}, NewLogger(InfoLevel, &bytes.Buffer{}))

	assert.NoError(t, err)
	assert.Nil(t, providers)
}

func TestShutdownOTel_NilProviders(t *testing.T) {
	assert.NoError(t, ShutdownOTel(context.Background(), nil, NewLogger(InfoLevel, &bytes.Buffer{})))
}

func TestShutdownOTel_TracerOnly(t *testing.T) {
	providers := &OTelProviders{TracerProvider: sdktrace.NewTracerProvider()}
	assert.NoError(t, ShutdownOTel(context.Background(), providers, NewLogger(InfoLevel, &bytes.Buffer{})))
}

func TestUpdateLoggerWithTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	t.Run("no span leaves logger untouched", func(t *testing.T) {
		assert.Same(t, logger, UpdateLoggerWithTraceContext(context.Background(), logger))
	})

	t.Run("recording span adds ids", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		defer tp.Shutdown(context.Background())

		ctx, span := tp.Tracer("test").Start(context.Background(), "op")
		defer span.End()

		buf.Reset()
		UpdateLoggerWithTraceContext(ctx, logger).Info("traced")
		entry := decodeEntry(t, &buf)
		assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
		assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
	})
}

func TestTraceHandler(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	TraceHandler(inner, "ideagrave").ServeHTTP(rec, httptest.NewRequest("GET", "/me", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}
