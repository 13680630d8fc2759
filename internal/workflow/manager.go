package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dubline/internal/config"
	"dubline/internal/logging"
	"dubline/internal/stage"
	"dubline/internal/store"
)

// Manager coordinates lane processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *store.Store
	logger       *slog.Logger
	pollInterval time.Duration
	errorRetry   time.Duration

	heartbeat *HeartbeatMonitor
	handlers  []stage.Handler

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager over the given lane handlers.
func NewManager(cfg *config.Config, st *store.Store, logger *slog.Logger, handlers ...stage.Handler) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:          cfg,
		store:        st,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		errorRetry:   time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			st,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
		handlers: handlers,
	}
}

// Start begins background processing, one goroutine per lane.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}
	if len(m.handlers) == 0 {
		return errors.New("workflow lanes not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	// One reclaim sweep before the lanes start, so rows orphaned by a
	// previous crash re-enter the queue immediately.
	m.heartbeat.ReclaimStale(runCtx, m.logger)

	m.wg.Add(len(m.handlers))
	for _, handler := range m.handlers {
		go m.runLane(runCtx, handler)
	}
	return nil
}

// Stop terminates background processing and waits for the lanes to drain.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the manager has active lanes.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// LastError returns the most recent lane-level error, for status surfaces.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
