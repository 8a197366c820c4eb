package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OpsServer is the operational HTTP surface of the worker:
//   - GET /metrics: Prometheus exposition
//   - GET /health: liveness probe, always 200
//   - GET /health/ready: readiness probe, 503 until SetReady(true)
//
// It shuts down gracefully when the context is cancelled.
type OpsServer struct {
	addr   string
	logger *slog.Logger
	ready  atomic.Bool
	server *http.Server
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewOpsServer creates the server for the given port. Call Run to
// start serving.
func NewOpsServer(port int, logger *slog.Logger) *OpsServer {
	return &OpsServer{
		addr:   fmt.Sprintf(":%d", port),
		logger: logger,
	}
}

// SetReady flips the readiness probe. Mark ready once the background
// loop has been started.
func (o *OpsServer) SetReady(ready bool) {
	o.ready.Store(ready)
}

// Run serves until the context is cancelled, then shuts down with a
// 5-second grace period. It returns http.ErrServerClosed on a clean
// shutdown.
func (o *OpsServer) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", o.handleLiveness)
	mux.HandleFunc("/health/ready", o.handleReadiness)

	o.server = &http.Server{
		Addr:         o.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		o.logger.Info("ops server starting", slog.String("addr", o.addr))
		errCh <- o.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.server.Shutdown(shutdownCtx); err != nil {
			o.logger.Error("ops server shutdown failed", slog.Any("error", err))
			return err
		}
		o.logger.Info("ops server stopped")
		return http.ErrServerClosed
	case err := <-errCh:
		if err != http.ErrServerClosed {
			o.logger.Error("ops server failed", slog.Any("error", err))
		}
		return err
	}
}

func (o *OpsServer) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, "ok")
}

func (o *OpsServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if o.ready.Load() {
		writeHealth(w, http.StatusOK, "ready")
		return
	}
	writeHealth(w, http.StatusServiceUnavailable, "not ready")
}

func writeHealth(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: status})
}
