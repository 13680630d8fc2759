package workflow

import (
	"context"

	"dubline/internal/stage"
	"dubline/internal/store"
)

// Status is a point-in-time snapshot of the pipeline for CLI surfaces.
type Status struct {
	Running   bool
	Lanes     []stage.Health
	Summary   *store.HealthSummary
	LastError string
}

// Status gathers lane health checks and artifact counts.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	summary, err := m.store.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	status := &Status{
		Running: m.Running(),
		Summary: summary,
	}
	for _, handler := range m.handlers {
		status.Lanes = append(status.Lanes, handler.HealthCheck(ctx))
	}
	if lastErr := m.LastError(); lastErr != nil {
		status.LastError = lastErr.Error()
	}
	return status, nil
}

// Healthy reports whether every lane passed its health check.
func (s *Status) Healthy() bool {
	for _, lane := range s.Lanes {
		if !lane.Ready {
			return false
		}
	}
	return true
}
