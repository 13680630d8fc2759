package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dubline/internal/logging"
	"dubline/internal/services"
	"dubline/internal/stage"
)

func (m *Manager) runLane(ctx context.Context, handler stage.Handler) {
	defer m.wg.Done()

	laneCtx := services.WithLane(ctx, handler.Name())
	logger := logging.WithContext(laneCtx, m.logger)

	lastReclaim := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if m.heartbeat.timeout > 0 && time.Since(lastReclaim) >= m.heartbeat.timeout {
			m.heartbeat.ReclaimStale(laneCtx, logger)
			lastReclaim = time.Now()
		}

		id, ok, err := handler.ClaimNext(laneCtx)
		if err != nil {
			m.setLastError(err)
			logger.Error("failed to claim next row",
				logging.Error(err),
				logging.String(logging.FieldEventType, "claim_failed"),
				logging.String(logging.FieldErrorHint, "check artifact database access"))
			m.sleep(ctx, m.errorRetry)
			continue
		}
		if !ok {
			m.sleep(ctx, m.pollInterval)
			continue
		}

		if err := m.processJob(laneCtx, handler, id); err != nil && errors.Is(err, context.Canceled) {
			return
		}
	}
}

// processJob runs one claimed row through its handler with a live heartbeat.
// The handler writes its own done state; only the failure path is handled
// here.
func (m *Manager) processJob(ctx context.Context, handler stage.Handler, id int64) error {
	jobCtx := services.WithJobID(services.WithStage(ctx, handler.Name()), id)
	logger := logging.WithContext(jobCtx, m.logger)
	logger.Info("processing row")

	hbCtx, stopHeartbeat := context.WithCancel(jobCtx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, handler.Table(), id)

	err := handler.Execute(jobCtx, id)
	stopHeartbeat()
	hbWG.Wait()

	if err == nil {
		logger.Info("row processed")
		return nil
	}
	if errors.Is(err, context.Canceled) {
		logger.Debug("shutting down, row returns to the queue via stale reclaim")
		return err
	}
	m.handleFailure(jobCtx, logger, handler, id, err)
	return err
}

func (m *Manager) handleFailure(ctx context.Context, logger *slog.Logger, handler stage.Handler, id int64, execErr error) {
	m.setLastError(execErr)

	retry := services.Retryable(execErr)
	if retry {
		attempts, err := m.store.JobAttempts(ctx, handler.Table(), id)
		if err != nil {
			logger.Warn("attempt counter unavailable, parking row in failed", logging.Error(err))
			retry = false
		} else if attempts+1 >= m.cfg.Workflow.MaxJobAttempts {
			retry = false
		}
	}

	message := strings.TrimSpace(execErr.Error())
	logger.Error("lane execution failed",
		logging.Error(execErr),
		logging.Bool("will_retry", retry),
		logging.String(logging.FieldEventType, "stage_failure"))

	if err := m.store.FailJob(ctx, handler.Table(), id, message, retry); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutting down, could not persist failure")
			return
		}
		logger.Error("failed to persist lane failure", logging.Error(err))
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
