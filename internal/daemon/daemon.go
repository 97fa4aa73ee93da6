package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	robfigcron "github.com/robfig/cron/v3"

	"dailyflow/internal/config"
	"dailyflow/internal/executor"
	"dailyflow/internal/history"
	"dailyflow/internal/logging"
	"dailyflow/internal/routine"
)

// Daemon keeps routine schedules firing while the process is resident. It
// enforces single-instance execution through a lock file, so a second daemon
// on the same data directory refuses to start.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *routine.Store
	exec   *executor.Executor
	hist   *history.Store

	lockPath string
	lock     *flock.Flock

	mu        sync.Mutex
	scheduler *robfigcron.Cron
	entries   map[string]robfigcron.EntryID

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. The history store
// may be nil when the run journal is disabled.
func New(cfg *config.Config, store *routine.Store, exec *executor.Executor, hist *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || exec == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, executor, and logger")
	}

	lockPath := cfg.DaemonLockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    store,
		exec:     exec,
		hist:     hist,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		entries:  make(map[string]robfigcron.EntryID),
	}, nil
}

// LockPath returns the file guarding single-instance execution.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Start acquires the daemon lock, registers every scheduled routine, and
// begins firing triggers.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another dailyflow daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	d.mu.Lock()
	d.scheduler = robfigcron.New()
	d.entries = make(map[string]robfigcron.EntryID)
	registered, regErr := d.registerAllLocked()
	d.mu.Unlock()
	if regErr != nil {
		_ = d.lock.Unlock()
		d.cancel()
		return regErr
	}

	d.scheduler.Start()
	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("scheduled", registered),
	)
	return nil
}

// Reload re-reads the routines file and rebuilds the trigger table. A running
// daemon calls this on SIGHUP, so sending the signal after editing schedules
// makes it pick them up without a restart.
func (d *Daemon) Reload() error {
	if !d.running.Load() {
		return errors.New("daemon not running")
	}
	if err := d.store.Reload(); err != nil {
		return fmt.Errorf("reload routines: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.scheduler.Stop()
	d.scheduler = robfigcron.New()
	d.entries = make(map[string]robfigcron.EntryID)
	registered, err := d.registerAllLocked()
	if err != nil {
		return err
	}
	d.scheduler.Start()

	d.logger.Info("schedule reloaded", logging.Int("scheduled", registered))
	return nil
}

// Stop halts trigger firing and releases the daemon lock. In-flight routine
// runs are cancelled cooperatively via the daemon context.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.mu.Lock()
	if d.scheduler != nil {
		stopCtx := d.scheduler.Stop()
		d.mu.Unlock()
		<-stopCtx.Done()
	} else {
		d.mu.Unlock()
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.hist != nil {
		return d.hist.Close()
	}
	return nil
}

// Scheduled returns the routine IDs with an active trigger.
func (d *Daemon) Scheduled() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.entries))
	for id := range d.entries {
		ids = append(ids, id)
	}
	return ids
}

func (d *Daemon) registerAllLocked() (int, error) {
	registered := 0
	for _, r := range d.store.List() {
		if !r.Enabled || !r.Scheduled() {
			continue
		}
		hour, minute, err := routine.ParseScheduledTime(r.ScheduledTime)
		if err != nil {
			d.logger.Warn("skipping routine with invalid schedule",
				logging.String(logging.FieldRoutine, r.Name),
				logging.Error(err),
			)
			continue
		}
		id := r.ID
		spec := fmt.Sprintf("%d %d * * *", minute, hour)
		entryID, err := d.scheduler.AddFunc(spec, func() {
			d.fire(id)
		})
		if err != nil {
			return registered, fmt.Errorf("register routine %q: %w", r.Name, err)
		}
		d.entries[id] = entryID
		registered++
	}
	return registered, nil
}

// fire runs one scheduled routine. The routine is re-fetched at trigger time
// so edits made since registration still apply.
func (d *Daemon) fire(routineID string) {
	ctx := d.ctx
	if ctx == nil {
		return
	}

	r, err := d.store.GetByID(routineID)
	if err != nil {
		d.logger.Warn("scheduled routine vanished",
			logging.String(logging.FieldRoutineID, routineID),
			logging.Error(err),
		)
		return
	}
	if !r.Enabled {
		d.logger.Info("skipping disabled routine",
			logging.String(logging.FieldRoutine, r.Name),
		)
		return
	}

	listener := executor.Listener(executor.NopListener{})
	var recorder *history.Recorder
	if d.hist != nil {
		recorder, err = d.hist.BeginRun(ctx, r, history.TriggerSchedule, d.logger)
		if err != nil {
			d.logger.Warn("begin run record", logging.Error(err))
		} else {
			listener = recorder
		}
	}

	result := d.exec.RunSync(ctx, r, listener)
	if recorder != nil {
		recorder.Finish(result)
	}
}
