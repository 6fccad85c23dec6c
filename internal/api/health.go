package api

import (
	"net/http"
	"time"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthResponse represents the /health response body
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// handleHealth reports component-level health. The emulator link is judged
// by snapshot freshness: a session can outlive any single failed poll, so a
// stale snapshot is degraded, and none at all is unhealthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]HealthCheck{
		"emulator": s.checkEmulatorHealth(),
		"database": s.checkDatabaseHealth(),
	}

	overall := HealthStatusHealthy
	for _, c := range checks {
		switch c.Status {
		case HealthStatusUnhealthy:
			overall = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if overall == HealthStatusHealthy {
				overall = HealthStatusDegraded
			}
		}
	}

	status := http.StatusOK
	if overall == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, HealthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Uptime:    time.Since(s.startTime).String(),
		Checks:    checks,
	})
}

// handleReadiness reports whether the server can accept votes.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ready := s.engine != nil
	message := "Ready"
	if !ready {
		message = "Vote engine not initialized"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, map[string]any{
		"ready":     ready,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// handleLiveness responds whenever the process is up.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"alive":     true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
		"uptime":    time.Since(s.startTime).String(),
	})
}

func (s *Server) checkEmulatorHealth() HealthCheck {
	if s.snapshots == nil {
		return HealthCheck{Status: HealthStatusDegraded, Message: "Game state polling disabled"}
	}
	snap := s.snapshots.Snapshot()
	if snap == nil {
		return HealthCheck{Status: HealthStatusUnhealthy, Message: "No game state decoded yet"}
	}
	if age := time.Since(snap.FetchedAt); age > time.Minute {
		return HealthCheck{Status: HealthStatusDegraded, Message: "Game state is " + age.Round(time.Second).String() + " old"}
	}
	return HealthCheck{Status: HealthStatusHealthy, Message: "Emulator link healthy"}
}

func (s *Server) checkDatabaseHealth() HealthCheck {
	if s.db == nil {
		return HealthCheck{Status: HealthStatusDegraded, Message: "Execution history disabled"}
	}
	if _, err := s.db.LatestExecution(); err != nil {
		return HealthCheck{Status: HealthStatusUnhealthy, Message: "Database query failed: " + err.Error()}
	}
	return HealthCheck{Status: HealthStatusHealthy, Message: "Database connection healthy"}
}
