package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/Jack4Code/dispatch/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ErrorEncoder writes a response for an error returned by the pipeline.
type ErrorEncoder func(ctx context.Context, err error, w http.ResponseWriter)

// DefaultErrorEncoder answers every error with a plain 500.
func DefaultErrorEncoder(ctx context.Context, err error, w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Server adapts a Handler, usually a Dispatcher, to http.Handler.
// Route variables set by gorilla/mux are copied into request attributes.
type Server struct {
	handler      Handler
	errorEncoder ErrorEncoder
	logger       *zap.Logger
}

// ServerOption sets optional parameters for the server.
type ServerOption func(s *Server)

// WithErrorEncoder sets the error encoder for the server.
func WithErrorEncoder(ee ErrorEncoder) ServerOption {
	return func(s *Server) {
		s.errorEncoder = ee
	}
}

// WithServerLogger sets the logger used to report pipeline and write errors.
func WithServerLogger(logger *zap.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server for h.
func NewServer(h Handler, opts ...ServerOption) *Server {
	s := &Server{
		handler:      h,
		errorEncoder: DefaultErrorEncoder,
		logger:       zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := NewRequest(r)
	for k, v := range mux.Vars(r) {
		req = req.WithAttribute(k, v)
	}

	resp, err := s.handler.Handle(ctx, req)
	if err != nil {
		s.logger.Error("request pipeline failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.errorEncoder(ctx, err, w)
		return
	}

	if err := Send(w, resp); err != nil {
		s.logger.Error("writing response failed", zap.Error(err))
	}
}

// App is an application served by Run.
type App interface {
	OnStart(ctx context.Context) error
	OnStop(ctx context.Context) error
	Routes() []Route
	// Services resolves the service identifiers used by route descriptors.
	Services() Lookup
}

// Route represents an HTTP route. Path matching happens before the pipeline
// is entered; every match runs the route's own Dispatcher.
type Route struct {
	Method     string
	Path       string
	Handler    Descriptor
	Middleware []Descriptor // Optional per-route middleware
}

// RouterConfig holds what NewRouter shares between routes.
type RouterConfig struct {
	Lookup Lookup
	// Middleware runs before each route's own middleware.
	Middleware []Descriptor
	Logger     *zap.Logger
}

// NewRouter registers one Dispatcher per route. Every path also answers
// OPTIONS through the shared middleware and an empty 200 response, so CORS
// preflights succeed.
func NewRouter(cfg RouterConfig, routes []Route) *mux.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := mux.NewRouter()
	preflight := NewServer(
		NewDispatcher(cfg.Lookup, UseHandler(HandlerFunc(emptyOK)), cfg.Middleware, WithLogger(logger)),
		WithServerLogger(logger),
	)

	for _, route := range routes {
		middleware := slices.Concat(cfg.Middleware, route.Middleware)
		d := NewDispatcher(cfg.Lookup, route.Handler, middleware, WithLogger(logger))

		router.Handle(route.Path, NewServer(d, WithServerLogger(logger))).Methods(route.Method)
		if route.Method != http.MethodOptions {
			router.Handle(route.Path, preflight).Methods(http.MethodOptions)
		}
	}
	return router
}

func emptyOK(context.Context, Request) (Response, error) {
	return NewResponse(http.StatusOK), nil
}

// Run serves app with permissive CORS headers on every route.
func Run(app App, cfg config.BaseConfig) error {
	return RunWithMiddleware(app, cfg, UseMiddleware(NewCORS(DefaultCORSConfig())))
}

// RunWithMiddleware serves app, running global ahead of every route's
// middleware. It blocks until SIGINT or SIGTERM, then shuts down gracefully.
func RunWithMiddleware(app App, cfg config.BaseConfig, global ...Descriptor) error {
	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	defer zap.ReplaceGlobals(logger)()

	ctx := context.Background()

	// Health server starts before OnStart so orchestrators see the process alive
	healthStatus := NewHealthStatus()
	healthServer := startHealthServer(":"+strconv.Itoa(cfg.GetHealthPort()), healthStatus, logger)

	if err := app.OnStart(ctx); err != nil {
		return fmt.Errorf("failed to start app: %w", err)
	}
	healthStatus.SetHealthy(true)

	var server *http.Server
	if routes := app.Routes(); len(routes) == 0 {
		logger.Info("no HTTP routes, running in background mode")
	} else {
		router := NewRouter(RouterConfig{
			Lookup:     app.Services(),
			Middleware: global,
			Logger:     logger,
		}, routes)

		server = &http.Server{
			Addr:    ":" + strconv.Itoa(cfg.GetHTTPPort()),
			Handler: router,
		}

		go func() {
			logger.Info("starting server", zap.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server error", zap.Error(err))
			}
		}()
	}
	healthStatus.SetReady(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	healthStatus.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server forced to shutdown", zap.Error(err))
	}

	if err := app.OnStop(ctx); err != nil {
		logger.Error("error during OnStop", zap.Error(err))
	}

	logger.Info("servers stopped")
	return nil
}
