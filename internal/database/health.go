package database

import (
	"context"
	"time"
)

// Health check status values
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus reports database health for the /health endpoint
type HealthStatus struct {
	Status          string        `json:"status"`
	Latency         time.Duration `json:"latency_ms"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	Errors          []string      `json:"errors,omitempty"`
}

// Health pings the database and reports pool statistics
func (m *Manager) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{Status: StatusHealthy}

	start := time.Now()
	if err := m.db.PingContext(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, err.Error())
		return status
	}
	status.Latency = time.Since(start)

	stats := m.db.Stats()
	status.OpenConnections = stats.OpenConnections
	status.InUse = stats.InUse
	status.Idle = stats.Idle

	// A saturated pool still serves requests, just slowly
	if m.config.MaxOpenConns > 0 && stats.InUse == m.config.MaxOpenConns {
		status.Status = StatusDegraded
		status.Errors = append(status.Errors, "connection pool saturated")
	}

	return status
}
