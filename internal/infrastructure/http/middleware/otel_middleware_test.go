package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/produtos-api/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %s not recorded", name)
	return metricdata.Metrics{}
}

func TestActiveRequestsReturnsToZero(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	var inFlight int64
	router := chi.NewRouter()
	router.Use(ActiveRequests(meter))
	router.Get("/produtos/{id}", func(w http.ResponseWriter, r *http.Request) {
		m := findMetric(t, reader, "http.server.active_requests")
		inFlight = m.Data.(metricdata.Sum[int64]).DataPoints[0].Value
		w.WriteHeader(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/produtos/1", nil))
	assert.Equal(t, int64(1), inFlight)

	m := findMetric(t, reader, "http.server.active_requests")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Zero(t, sum.DataPoints[0].Value)

	method, _ := sum.DataPoints[0].Attributes.Value("http.request.method")
	assert.Equal(t, http.MethodGet, method.AsString())
}

func TestRequestDurationRecordsRouteAndStatus(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	router := chi.NewRouter()
	router.Use(RequestDuration(meter))
	router.Get("/produtos", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/produtos", nil))

	m := findMetric(t, reader, "http.server.request.duration.ms")
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)

	status, _ := hist.DataPoints[0].Attributes.Value("http.response.status_code")
	assert.Equal(t, int64(http.StatusTeapot), status.AsInt64())
	route, _ := hist.DataPoints[0].Attributes.Value("http.route")
	assert.Equal(t, "/produtos", route.AsString())
}

func TestRequestLoggerLevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := chi.NewRouter()
	router.Use(RequestLogger(logger))
	router.Get("/produtos/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/produtos/9?x=1", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "HTTP request completed", entry["msg"])
	assert.Equal(t, "/produtos/{id}", entry["http.route"])
	assert.Equal(t, "x=1", entry["url.query"])
	assert.Equal(t, float64(http.StatusNotFound), entry["http.response.status_code"])
	assert.Equal(t, float64(4), entry["http.response.body.size"])
}

func TestRouteContextFallsBackToPath(t *testing.T) {
	var seen string
	handler := RouteContext()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = telemetry.HTTPRouteFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "/health", seen)
}

func TestRouteContextSeesMatchedPattern(t *testing.T) {
	var seen string
	router := chi.NewRouter()
	router.Use(RouteContext())
	router.Route("/produtos", func(r chi.Router) {
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			seen = telemetry.HTTPRouteFromContext(r.Context())
		})
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/produtos/42", nil))
	assert.Equal(t, "/produtos/{id}", seen)
}
