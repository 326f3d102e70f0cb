package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/ema-cross/internal/logger"
	"go.uber.org/zap"
)

// HealthStatus tracks the outcome of the last cycle for /healthz.
type HealthStatus struct {
	mu sync.RWMutex

	startedAt     time.Time
	lastCycleAt   time.Time
	lastFailures  int
	symbols       int
	cycleInterval time.Duration

	logger *logger.Logger
}

// NewHealthStatus returns a health status expecting a cycle every interval.
func NewHealthStatus(interval time.Duration) *HealthStatus {
	return &HealthStatus{
		startedAt:     time.Now(),
		cycleInterval: interval,
		logger:        logger.NewNopLogger(),
	}
}

// SetLogger sets the logger used to report failed health responses.
func (h *HealthStatus) SetLogger(log *logger.Logger) {
	if log == nil {
		return
	}

	h.mu.Lock()
	h.logger = log
	h.mu.Unlock()
}

// RecordCycle stores the outcome of a finished cycle.
func (h *HealthStatus) RecordCycle(at time.Time, symbols, failures int) {
	h.mu.Lock()
	h.lastCycleAt = at
	h.symbols = symbols
	h.lastFailures = failures
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint. The runner is unhealthy when no
// cycle finished within two intervals, or when every symbol failed.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK

	reference := h.lastCycleAt
	if reference.IsZero() {
		reference = h.startedAt
	}

	if h.cycleInterval > 0 && time.Since(reference) > 2*h.cycleInterval {
		status = "stale"
		code = http.StatusServiceUnavailable
	} else if h.symbols > 0 && h.lastFailures == h.symbols {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	lastCycle := ""
	if !h.lastCycleAt.IsZero() {
		lastCycle = h.lastCycleAt.Format(time.RFC3339)
	}

	body := struct {
		Status       string `json:"status"`
		Uptime       string `json:"uptime"`
		LastCycleAt  string `json:"last_cycle_at"`
		Symbols      int    `json:"symbols"`
		LastFailures int    `json:"last_failures"`
	}{
		Status:       status,
		Uptime:       time.Since(h.startedAt).Round(time.Second).String(),
		LastCycleAt:  lastCycle,
		Symbols:      h.symbols,
		LastFailures: h.lastFailures,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("Failed to write health response", zap.Error(err))
	}
}

// Server exposes /metrics and /healthz.
type Server struct {
	srv      *http.Server
	listener net.Listener
	logger   *logger.Logger
}

// NewRouter builds the router serving the metrics registry and the health status.
func NewRouter(m *Metrics, health *HealthStatus) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.Handle("/healthz", health).Methods(http.MethodGet)

	return router
}

// NewServer creates a metrics and health server.
func NewServer(m *Metrics, health *HealthStatus, log *logger.Logger) *Server {
	health.SetLogger(log)

	return &Server{
		srv: &http.Server{
			Handler:           NewRouter(m, health),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

// Start listens on address and serves in a goroutine.
// If address is empty or ":0", a random available port is used.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	s.listener = listener

	go func() {
		s.logger.Info("Metrics server listening", zap.String("address", listener.Addr().String()))

		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server error", zap.Error(err))
		}
	}()

	return nil
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
