package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dailyflow/internal/executor"
	"dailyflow/internal/logging"
	"dailyflow/internal/routine"
)

// Recorder journals one run's step events. It implements executor.Listener,
// so it can be combined with other listeners for the same run. Journal
// failures are logged and never interrupt the routine.
type Recorder struct {
	store  *Store
	runID  string
	logger *slog.Logger
}

// BeginRun opens a journal entry for a routine about to execute and returns
// the recorder to pass to the executor. Call Finish with the run result once
// the executor returns.
func (s *Store) BeginRun(ctx context.Context, r routine.Routine, trigger string, logger *slog.Logger) (*Recorder, error) {
	run := Run{
		ID:          uuid.NewString(),
		RoutineID:   r.ID,
		RoutineName: r.Name,
		Trigger:     trigger,
		StartedAt:   time.Now(),
	}
	if err := s.insertRun(ctx, run); err != nil {
		return nil, err
	}
	return &Recorder{
		store:  s,
		runID:  run.ID,
		logger: logging.WithComponent(logger, "history"),
	}, nil
}

// RunID returns the journal identifier for this run.
func (r *Recorder) RunID() string {
	return r.runID
}

// Finish closes the journal entry with the run's final counters.
func (r *Recorder) Finish(result executor.Result) {
	err := r.store.finishRun(context.Background(), r.runID,
		result.Executed, result.Failed, result.Skipped, result.Cancelled)
	if err != nil {
		r.logger.Warn("finish run record", logging.Error(err))
	}
}

func (r *Recorder) OnStepStart(int, routine.Action) {}

func (r *Recorder) OnStepDone(index int, action routine.Action) {
	r.record(index, action, StepDone, "")
}

func (r *Recorder) OnStepError(index int, action routine.Action, err error) {
	r.record(index, action, StepFailed, err.Error())
}

func (r *Recorder) OnStepSkipped(index int, action routine.Action) {
	r.record(index, action, StepSkipped, "")
}

func (r *Recorder) OnRoutineDone(routine.Routine) {}

func (r *Recorder) record(index int, action routine.Action, status, detail string) {
	step := Step{
		RunID:      r.runID,
		Index:      index,
		ActionKind: string(action.Kind),
		Status:     status,
		Detail:     detail,
		RecordedAt: time.Now(),
	}
	if err := r.store.insertStep(context.Background(), step); err != nil {
		r.logger.Warn("record run step",
			logging.Int(logging.FieldStep, index),
			logging.Error(err),
		)
	}
}
