package dispatch

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// HealthStatus tracks application health
type HealthStatus struct {
	mu      sync.RWMutex
	healthy bool
	ready   bool
}

// NewHealthStatus returns a status that is neither healthy nor ready.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{}
}

func (h *HealthStatus) SetHealthy(healthy bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.healthy = healthy
}

func (h *HealthStatus) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

func (h *HealthStatus) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.healthy
}

func (h *HealthStatus) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// HealthHandler answers whether the app is alive.
func (h *HealthStatus) HealthHandler() Handler {
	return HandlerFunc(func(ctx context.Context, r Request) (Response, error) {
		if h.IsHealthy() {
			return JSON(http.StatusOK, map[string]string{"status": "healthy"})
		}
		return JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	})
}

// ReadyHandler answers whether the app is ready to serve traffic.
func (h *HealthStatus) ReadyHandler() Handler {
	return HandlerFunc(func(ctx context.Context, r Request) (Response, error) {
		if h.IsReady() {
			return JSON(http.StatusOK, map[string]string{"status": "ready"})
		}
		return JSON(http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	})
}

// healthRouter serves /health and /ready.
func healthRouter(status *HealthStatus, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/health", NewServer(status.HealthHandler(), WithServerLogger(logger))).Methods(http.MethodGet)
	router.Handle("/ready", NewServer(status.ReadyHandler(), WithServerLogger(logger))).Methods(http.MethodGet)
	return router
}

func startHealthServer(addr string, status *HealthStatus, logger *zap.Logger) *http.Server {
	server := &http.Server{
		Addr:    addr,
		Handler: healthRouter(status, logger),
	}

	go func() {
		logger.Info("starting health server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", zap.Error(err))
		}
	}()

	return server
}
