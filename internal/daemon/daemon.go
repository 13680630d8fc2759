package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"dubline/internal/config"
	"dubline/internal/logging"
	"dubline/internal/media"
	"dubline/internal/owners"
	"dubline/internal/store"
	"dubline/internal/workflow"
)

// sourceFileExtensions lists the media containers accepted for enqueueing.
// Audio is extracted with ffmpeg, so anything with an audio stream works.
var sourceFileExtensions = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".m4a":  {},
	".flac": {},
	".mkv":  {},
	".mp4":  {},
	".avi":  {},
	".webm": {},
}

// Daemon coordinates the pipeline lanes and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	workflow *workflow.Manager
	registry *owners.Registry

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status reports daemon runtime information.
type Status struct {
	Running      bool
	Pipeline     *workflow.Status
	DBPath       string
	LockFilePath string
}

// New constructs a daemon over pre-wired dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, mgr *workflow.Manager, registry *owners.Registry) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil || mgr == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}
	if registry == nil {
		registry = owners.DefaultRegistry(st)
	}
	lockPath := filepath.Join(cfg.LogDir, "dublined.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		workflow: mgr,
		registry: registry,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the workflow lanes.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another dubline daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.workflow.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start workflow: %w", err)
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("dubline daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("dubline daemon stopped")
}

// Close releases all daemon resources.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// LockBusy reports whether another process currently holds the daemon lock.
// Used by CLI status when this process is not the daemon.
func (d *Daemon) LockBusy() bool {
	if d.running.Load() {
		return false
	}
	probe := flock.New(d.lockPath)
	ok, err := probe.TryLock()
	if err != nil {
		return false
	}
	if ok {
		_ = probe.Unlock()
		return false
	}
	return true
}

// Registry exposes the owner registry for CLI surfaces.
func (d *Daemon) Registry() *owners.Registry {
	return d.registry
}

// Store exposes the artifact store for CLI read paths.
func (d *Daemon) Store() *store.Store {
	return d.store
}

// Status returns the current daemon status with lane health and artifact
// counts.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	pipeline, err := d.workflow.Status(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Running:      d.running.Load(),
		Pipeline:     pipeline,
		DBPath:       filepath.Join(d.cfg.LogDir, "artifacts.db"),
		LockFilePath: d.lockPath,
	}, nil
}

// AddMedia registers a source media file and enqueues its transcript. The
// transcript row is the enqueue; the transcribe lane picks it up from there.
func (d *Daemon) AddMedia(ctx context.Context, sourcePath, title, speakerGender string) (*store.MediaItem, *store.Transcript, error) {
	trimmed := strings.TrimSpace(sourcePath)
	if trimmed == "" {
		return nil, nil, errors.New("source path is required")
	}
	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve source path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, nil, fmt.Errorf("stat source file: %w", err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("source path %q is a directory", absPath)
	}
	ext := strings.ToLower(filepath.Ext(info.Name()))
	if _, ok := sourceFileExtensions[ext]; !ok {
		return nil, nil, fmt.Errorf("unsupported file extension %q", ext)
	}
	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(info.Name(), ext)
	}

	item, err := d.store.EnsureMediaItem(ctx, title, absPath, speakerGender)
	if err != nil {
		return nil, nil, fmt.Errorf("register media item: %w", err)
	}
	tr, err := d.store.EnsureTranscript(ctx, owners.KindMedia, item.ID, absPath)
	if err != nil {
		return nil, nil, fmt.Errorf("enqueue transcript: %w", err)
	}
	d.logger.Info("media file queued",
		logging.Int64("media_id", item.ID),
		logging.Int64(logging.FieldTranscriptID, tr.ID),
		logging.String("source", absPath))
	return item, tr, nil
}

// RetryFailed resets failed rows in one lane table back to pending. Rows
// already at the attempt budget are reset too; an explicit retry is an
// operator decision.
func (d *Daemon) RetryFailed(ctx context.Context, table string) (int64, error) {
	return d.store.RetryFailed(ctx, table, d.cfg.Workflow.MaxJobAttempts)
}

// DeleteOwner removes every artifact of one owner, including files on disk.
func (d *Daemon) DeleteOwner(ctx context.Context, ref owners.Ref) error {
	paths, err := d.store.DeleteOwner(ctx, ref.Kind, ref.ID)
	if err != nil {
		return err
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			d.logger.Warn("failed to remove artifact file",
				logging.String("path", path),
				logging.Error(err))
		}
	}
	ownerDir := media.OwnerDir(d.cfg.Paths.MediaDir, ref.Kind, ref.ID)
	if err := os.RemoveAll(ownerDir); err != nil {
		d.logger.Warn("failed to remove owner directory",
			logging.String("path", ownerDir),
			logging.Error(err))
	}
	d.logger.Info("owner artifacts deleted",
		logging.String("owner", ref.String()),
		logging.Int("files", len(paths)))
	return nil
}
