package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bizpulse/pkg/contracts/domain"
)

func TestHealthService(t *testing.T) {
	dashboard := newTestService()
	health := NewHealthService(dashboard)

	t.Run("degraded before any snapshot", func(t *testing.T) {
		status := health.Check()
		assert.Equal(t, "degraded", status.Status)
		assert.Equal(t, 0, status.RecordCount)
		assert.False(t, health.Ready())
		assert.True(t, health.Live())
	})

	t.Run("healthy once data loads", func(t *testing.T) {
		dashboard.ReplaceRecords([]domain.BalanceRecord{{Date: "01/01/2025"}})

		status := health.Check()
		assert.Equal(t, "healthy", status.Status)
		assert.Equal(t, 1, status.RecordCount)
		assert.False(t, status.SnapshotAt.IsZero())
		assert.True(t, health.Ready())
	})
}
