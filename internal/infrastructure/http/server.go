package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mrops-br/produtos-api/internal/domain"
	"github.com/mrops-br/produtos-api/internal/infrastructure/config"
	"github.com/mrops-br/produtos-api/internal/infrastructure/http/docs"
	"github.com/mrops-br/produtos-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/produtos-api/internal/infrastructure/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Server represents the HTTP server
type Server struct {
	router        *chi.Mux
	config        *config.ServerConfig
	handler       *handler.ProductHandler
	meterProvider metric.MeterProvider
	logger        *slog.Logger
	imagePrefix   string
	imageDir      string
	httpServer    *http.Server
}

// Option customizes a Server
type Option func(*Server)

// WithImageFiles serves stored images from dir under the path of publicURL
func WithImageFiles(publicURL, dir string) Option {
	return func(s *Server) {
		prefix := publicURL
		if u, err := url.Parse(publicURL); err == nil {
			prefix = u.Path
		}
		s.imagePrefix = "/" + strings.Trim(prefix, "/")
		s.imageDir = dir
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.ServerConfig,
	handler *handler.ProductHandler,
	meterProvider metric.MeterProvider,
	logger *slog.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		config:        cfg,
		handler:       handler,
		meterProvider: meterProvider,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware chain
func (s *Server) setupMiddleware() {
	// Outermost, so the record covers recovered panics too
	s.router.Use(middleware.RequestLogger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.RequestID)

	// Log records written by handlers carry the matched route
	s.router.Use(middleware.RouteContext())

	meter := s.meterProvider.Meter("produtos-api")
	s.router.Use(middleware.ActiveRequests(meter))

	if s.config.DurationMillisMetric {
		s.router.Use(middleware.RequestDuration(meter))
	}
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.Route("/produtos", func(r chi.Router) {
		r.Post("/", s.handler.RegisterProduct)
		r.Get("/", s.handler.ListProducts)
		r.Get("/pesquisa", s.handler.SearchProducts)
		r.Get("/{id}", s.handler.GetProduct)
		r.Put("/{id}", s.handler.UpdateProduct)
		r.Delete("/{id}", s.handler.DeleteProduct)
	})

	if s.imageDir != "" {
		s.router.Get(s.imagePrefix+"/*", imageFiles(s.imagePrefix, s.imageDir).ServeHTTP)
	}

	// Interface description of the API
	s.router.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(docs.OpenAPI)
	})

	// Health check endpoint
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint - exposes OpenTelemetry metrics
	s.router.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// imageFiles serves stored images only. Directory listings and files that are
// not a known image type are reported as missing, and the content type comes
// from the extension rather than from sniffing the body.
func imageFiles(prefix, dir string) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType, ok := domain.ImageContentType(r.URL.Path)
		if !ok || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

// Handler returns the router wrapped with otelhttp for automatic HTTP metrics and tracing
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "http-server",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		otelhttp.WithMeterProvider(s.meterProvider),
		otelhttp.WithMetricAttributesFn(func(r *http.Request) []attribute.KeyValue {
			routePattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					routePattern = pattern
				}
			}
			return []attribute.KeyValue{
				attribute.String("http.route", routePattern),
			}
		}),
	)
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)
	s.logger.Info("Starting HTTP server",
		slog.String("address", addr),
	)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
