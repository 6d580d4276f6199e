// Package healthprobe serves the liveness and readiness endpoints. Both
// probes surface the upstream feed state, so an operator can tell a
// healthy-but-disconnected process (records aging out, reconnect in
// progress) apart from a dead one.
package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HealthChecker provides health and readiness checks.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool
	mu        sync.RWMutex
	feedProbe func() bool
}

// New creates a new HealthChecker.
func New() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
	}
}

// SetReady marks the application as ready to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// SetFeedProbe installs the callback reporting upstream connection
// state. Until one is installed, probe responses report the feed as
// disconnected.
func (h *HealthChecker) SetFeedProbe(probe func() bool) {
	h.mu.Lock()
	h.feedProbe = probe
	h.mu.Unlock()
}

func (h *HealthChecker) feedConnected() bool {
	h.mu.RLock()
	probe := h.feedProbe
	h.mu.RUnlock()

	if probe == nil {
		return false
	}
	return probe()
}

// ProbeResponse is the body of both probe endpoints.
type ProbeResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	FeedConnected bool   `json:"feed_connected"`
	Detail        string `json:"detail,omitempty"`
}

// Health returns an HTTP handler for liveness checks. Always 200 while
// the process runs; a disconnected feed is reported, not fatal, since
// the connection adapter reconnects on its own.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connected := h.feedConnected()

		resp := ProbeResponse{
			Status:        "healthy",
			Uptime:        time.Since(h.startTime).String(),
			FeedConnected: connected,
		}
		if !connected {
			resp.Detail = "feed disconnected; live records are aging out"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK if ready, 503 Service Unavailable if not.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			resp := ProbeResponse{
				Status:        "not_ready",
				FeedConnected: h.feedConnected(),
				Detail:        "application is starting",
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(resp)
			return
		}

		resp := ProbeResponse{
			Status:        "ready",
			Uptime:        time.Since(h.startTime).String(),
			FeedConnected: h.feedConnected(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
