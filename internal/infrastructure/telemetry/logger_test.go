package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/mrops-br/produtos-api/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLoggerInjectsTraceContextAndRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelInfo, &config.OTLPConfig{ServiceName: "produtos-api", Environment: "test"})

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	ctx = WithHTTPRoute(ctx, "/produtos/{id}")
	logger.InfoContext(ctx, "hello")
	span.End()

	entry := decodeLine(t, &buf)
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "produtos-api", entry["service.name"])
	assert.Equal(t, "test", entry["environment"])
	assert.Equal(t, "/produtos/{id}", entry["http.route"])
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, parseLevel("warn"), &config.OTLPConfig{})

	logger.Info("ignored")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	entry := decodeLine(t, &buf)
	assert.Equal(t, "kept", entry["msg"])
	_, hasTrace := entry["trace_id"]
	assert.False(t, hasTrace)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestHTTPRouteFromContextMissing(t *testing.T) {
	assert.Empty(t, HTTPRouteFromContext(context.Background()))
}

func TestHTTPRouteResolverIsReadLazily(t *testing.T) {
	route := "/produtos"
	ctx := WithHTTPRouteResolver(context.Background(), func() string { return route })

	route = "/produtos/{id}"
	assert.Equal(t, "/produtos/{id}", HTTPRouteFromContext(ctx))
}
