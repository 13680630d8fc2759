package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dubline/internal/logging"
	"dubline/internal/store"
)

// HeartbeatMonitor keeps claimed rows alive and reclaims rows whose worker
// stopped heartbeating.
type HeartbeatMonitor struct {
	store    *store.Store
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

// NewHeartbeatMonitor creates a monitor with the configured cadence.
func NewHeartbeatMonitor(st *store.Store, logger *slog.Logger, interval, timeout time.Duration) *HeartbeatMonitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &HeartbeatMonitor{
		store:    st,
		logger:   logger.With(logging.String("component", "workflow-heartbeat")),
		interval: interval,
		timeout:  timeout,
	}
}

// ReclaimStale resets running rows whose heartbeat exceeded the timeout.
// Best effort; a failed sweep only delays reclamation to the next one.
func (h *HeartbeatMonitor) ReclaimStale(ctx context.Context, logger *slog.Logger) {
	if h.timeout <= 0 {
		return
	}
	if logger == nil {
		logger = h.logger
	}
	reclaimed, err := h.store.ReclaimStale(ctx, h.timeout)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("reclaim stale rows failed; stuck rows may remain",
				logging.Error(err),
				logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
				logging.String(logging.FieldErrorHint, "check artifact database access"))
		}
		return
	}
	if reclaimed > 0 {
		logger.Info("reclaimed stale rows", logging.Int64("count", reclaimed))
	}
}

// StartLoop refreshes the heartbeat of one claimed row until the context is
// cancelled.
func (h *HeartbeatMonitor) StartLoop(ctx context.Context, wg *sync.WaitGroup, table string, id int64) {
	defer wg.Done()
	if h.interval <= 0 {
		return
	}
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	logger := logging.WithContext(ctx, h.logger)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.store.Heartbeat(ctx, table, id); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logger.Warn("heartbeat update failed", logging.Error(err))
			}
		}
	}
}
