package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mrops-br/produtos-api/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// routePattern returns the chi route pattern, or the raw path when nothing matched (yet)
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// exchange is what a finished request looked like from the server side
type exchange struct {
	route   string
	status  int
	size    int
	elapsed time.Duration
}

// observe runs next and reports the exchange once it returns. The route is read
// after next so chi has matched it by then.
func observe(next http.Handler, report func(r *http.Request, ex exchange)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		report(r, exchange{
			route:   routePattern(r),
			status:  status,
			size:    ww.BytesWritten(),
			elapsed: time.Since(start),
		})
	})
}

func passThrough(next http.Handler) http.Handler { return next }

// ActiveRequests tracks in-flight requests. The route is unknown when a request
// starts, so the gauge is keyed by method and server address only.
func ActiveRequests(meter metric.Meter) func(next http.Handler) http.Handler {
	active, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP server requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return passThrough
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attrs := metric.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("server.address", r.Host),
			)

			active.Add(r.Context(), 1, attrs)
			defer active.Add(r.Context(), -1, attrs)

			next.ServeHTTP(w, r)
		})
	}
}

// RequestDuration records request latency in milliseconds, next to the
// seconds-based histogram otelhttp already emits
func RequestDuration(meter metric.Meter) func(next http.Handler) http.Handler {
	histogram, err := meter.Float64Histogram(
		"http.server.request.duration.ms",
		metric.WithDescription("HTTP server request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return passThrough
	}

	return func(next http.Handler) http.Handler {
		return observe(next, func(r *http.Request, ex exchange) {
			histogram.Record(r.Context(), float64(ex.elapsed.Milliseconds()),
				metric.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("http.route", ex.route),
					attribute.Int("http.response.status_code", ex.status),
					attribute.String("server.address", r.Host),
				),
			)
		})
	}
}

// RouteContext makes the matched route available to every log record written
// while the request is handled
func RouteContext() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := telemetry.WithHTTPRouteResolver(r.Context(), func() string {
				return routePattern(r)
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger writes one JSON record per request: warn for 4xx, error for 5xx
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return observe(next, func(r *http.Request, ex exchange) {
			attrs := []any{
				slog.String("http.request.method", r.Method),
				slog.String("http.route", ex.route),
				slog.String("url.path", r.URL.Path),
				slog.String("url.query", r.URL.RawQuery),
				slog.Int("http.response.status_code", ex.status),
				slog.Int("http.response.body.size", ex.size),
				slog.String("duration", ex.elapsed.String()),
				slog.Float64("duration_ms", float64(ex.elapsed.Milliseconds())),
				slog.String("client.address", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
			}
			if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
				attrs = append(attrs,
					slog.String("trace_id", sc.TraceID().String()),
					slog.String("span_id", sc.SpanID().String()),
				)
			}

			level := slog.LevelInfo
			switch {
			case ex.status >= 500:
				level = slog.LevelError
			case ex.status >= 400:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "HTTP request completed", attrs...)
		})
	}
}
