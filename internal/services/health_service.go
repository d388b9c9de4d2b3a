package services

import (
	"time"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status      string    `json:"status"`
	Version     string    `json:"version"`
	Uptime      string    `json:"uptime"`
	RecordCount int       `json:"record_count"`
	SnapshotAt  time.Time `json:"snapshot_at,omitempty"`
	CheckedAt   time.Time `json:"checked_at"`
}

// HealthService reports process liveness and snapshot readiness.
type HealthService struct {
	dashboard *DashboardService
	startedAt time.Time
}

// NewHealthService creates a health service bound to the dashboard snapshot.
func NewHealthService(dashboard *DashboardService) *HealthService {
	return &HealthService{
		dashboard: dashboard,
		startedAt: time.Now(),
	}
}

// Check returns the overall health. The service is degraded, not down,
// while the snapshot is still empty.
func (s *HealthService) Check() HealthStatus {
	records, snapshotAt := s.dashboard.Records()

	status := "healthy"
	if len(records) == 0 {
		status = "degraded"
	}

	return HealthStatus{
		Status:      status,
		Version:     Version,
		Uptime:      time.Since(s.startedAt).Round(time.Second).String(),
		RecordCount: len(records),
		SnapshotAt:  snapshotAt,
		CheckedAt:   time.Now(),
	}
}

// Live reports process liveness. Always true once the server answers.
func (s *HealthService) Live() bool { return true }

// Ready reports whether a record snapshot has been loaded.
func (s *HealthService) Ready() bool {
	return s.dashboard.RecordCount() > 0
}
