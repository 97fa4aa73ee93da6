package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dailyflow/internal/config"
	"dailyflow/internal/desktop"
	"dailyflow/internal/logging"
	"dailyflow/internal/routine"
)

// ActionError reports a single failed step. Failures are isolated: the
// executor reports them and moves on to the next action.
type ActionError struct {
	Index int
	Kind  routine.Kind
	Err   error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Result summarizes one finished routine run.
type Result struct {
	Executed  int
	Failed    int
	Skipped   int
	Cancelled bool
}

// Executor runs a routine's actions strictly in sequence on a worker
// goroutine. All runs serialize through one gate: a routine triggered while
// another is in flight waits its turn.
type Executor struct {
	desktop desktop.Capabilities
	logger  *slog.Logger
	stepGap time.Duration

	runMu sync.Mutex
}

// New constructs an executor using the configured step pacing.
func New(cfg *config.Config, desk desktop.Capabilities, logger *slog.Logger) *Executor {
	var gap time.Duration
	if cfg != nil {
		gap = time.Duration(cfg.Execution.StepGapSeconds * float64(time.Second))
	}
	return &Executor{
		desktop: desk,
		logger:  logging.WithComponent(logger, "executor"),
		stepGap: gap,
	}
}

// Run is a handle to an in-flight routine execution.
type Run struct {
	cancel context.CancelFunc
	done   chan struct{}
	result Result
}

// Wait blocks until the run finishes and returns its result.
func (r *Run) Wait() Result {
	<-r.done
	return r.result
}

// Cancel asks the worker to stop before its next action. The currently
// dispatched action is not killed; cancellation is cooperative and checked
// between steps.
func (r *Run) Cancel() {
	r.cancel()
}

// Run starts executing the routine on a worker goroutine and returns
// immediately. The listener may be nil.
func (e *Executor) Run(ctx context.Context, r routine.Routine, listener Listener) *Run {
	if listener == nil {
		listener = NopListener{}
	}
	runCtx, cancel := context.WithCancel(ctx)
	run := &Run{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(run.done)
		defer cancel()

		e.runMu.Lock()
		defer e.runMu.Unlock()

		run.result = e.execute(runCtx, r, listener)
	}()

	return run
}

// RunSync executes the routine to completion on the calling goroutine,
// still serialized against other runs.
func (e *Executor) RunSync(ctx context.Context, r routine.Routine, listener Listener) Result {
	return e.Run(ctx, r, listener).Wait()
}

func (e *Executor) execute(ctx context.Context, r routine.Routine, listener Listener) Result {
	logger := e.logger.With(
		logging.String(logging.FieldRoutine, r.Name),
		logging.String(logging.FieldRoutineID, r.ID),
	)
	logger.Info("routine started", logging.Int("actions", len(r.Actions)))
	start := time.Now()

	var result Result
	for i, action := range r.Actions {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}
		if !action.Enabled {
			result.Skipped++
			listener.OnStepSkipped(i, action)
			logger.Debug("step skipped", logging.Int(logging.FieldStep, i))
			continue
		}

		listener.OnStepStart(i, action)
		err := e.dispatch(ctx, action)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				result.Cancelled = true
				break
			}
			stepErr := &ActionError{Index: i, Kind: action.Kind, Err: err}
			result.Failed++
			listener.OnStepError(i, action, stepErr)
			logger.Warn("step failed",
				logging.Int(logging.FieldStep, i),
				logging.String(logging.FieldAction, string(action.Kind)),
				logging.Error(stepErr),
			)
		} else {
			result.Executed++
			listener.OnStepDone(i, action)
			logger.Debug("step done",
				logging.Int(logging.FieldStep, i),
				logging.String(logging.FieldAction, string(action.Kind)),
			)
		}

		if e.stepGap > 0 && i < len(r.Actions)-1 {
			if sleepErr := sleepContext(ctx, e.stepGap); sleepErr != nil {
				result.Cancelled = true
				break
			}
		}
	}

	if result.Cancelled {
		logger.Info("routine cancelled",
			logging.Int("executed", result.Executed),
			logging.Duration("elapsed", time.Since(start)),
		)
		return result
	}

	listener.OnRoutineDone(r)
	logger.Info("routine completed",
		logging.Int("executed", result.Executed),
		logging.Int("failed", result.Failed),
		logging.Int("skipped", result.Skipped),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result
}

// dispatch is the single point that maps an action kind onto a desktop
// capability. The switch is exhaustive over routine.Kinds.
func (e *Executor) dispatch(ctx context.Context, action routine.Action) error {
	switch action.Kind {
	case routine.KindOpenApp:
		return e.desktop.LaunchApp(ctx, action.Params.AppPath)
	case routine.KindOpenWebsite:
		return e.desktop.OpenURL(ctx, action.Params.URL)
	case routine.KindShowMessage:
		return e.desktop.ShowMessage(ctx, action.Params.Title, action.Params.Message)
	case routine.KindPlayMusic:
		return e.desktop.PlayMusic(ctx, action.Params.URL, action.Params.Command)
	case routine.KindDelay:
		return sleepContext(ctx, time.Duration(action.Params.Seconds*float64(time.Second)))
	case routine.KindDoNotDisturb:
		return e.desktop.MuteAudio(ctx)
	default:
		return fmt.Errorf("unknown action kind %q", string(action.Kind))
	}
}

// sleepContext suspends only this routine's worker; other work is unaffected.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return context.Canceled
	case <-timer.C:
		return nil
	}
}
