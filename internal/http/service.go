package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/storelink/products-api/internal/auth"
	"github.com/storelink/products-api/internal/config"
	"github.com/storelink/products-api/internal/http/apierr"
	"github.com/storelink/products-api/internal/http/metric"
	"github.com/storelink/products-api/internal/http/middleware"
	"github.com/storelink/products-api/internal/http/swagger"
	"github.com/storelink/products-api/internal/service"
	"github.com/storelink/products-api/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	verifier   *auth.Verifier
	health     db.HealthChecker
	productSvc service.ProductService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	verifier *auth.Verifier,
	health db.HealthChecker,
	productSvc service.ProductService,
) *Service {
	return &Service{
		cfg:        cfg,
		logger:     log.With(slog.String("service", "http")),
		metrics:    metric.New(),
		verifier:   verifier,
		health:     health,
		productSvc: productSvc,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
		middleware.Auth(s.verifier),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	h := newProductHandler(s.productSvc, s.respondError)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/quote/{productId}", h.quote)
		r.Get("/{productId}", h.get)
		r.Patch("/{productId}", h.patch)
		r.Delete("/{productId}", h.delete)
	})
	r.Get("/locations/{locationId}/products", h.listByLocation)

	r.Get("/health", s.handleHealth)
	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	healthy, err := s.health.IsHealthy(r.Context())
	if err != nil || !healthy {
		s.logger.ErrorContext(r.Context(), "health check failed", slog.Any("error", err))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Service) respondError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}
