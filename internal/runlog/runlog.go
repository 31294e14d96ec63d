// Package runlog records the lifecycle of crawl runs: one row per attempt,
// opened before fetching starts and closed exactly once with an outcome.
package runlog

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"internradar/internal/model"
)

// Recorder opens and closes crawl run records against a RunStore.
type Recorder struct {
	store  model.RunStore
	logger *slog.Logger
	now    func() time.Time
}

func NewRecorder(store model.RunStore, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger, now: time.Now}
}

// Run is a handle to an open crawl run. It closes at most once; later
// Complete or Fail calls return model.ErrRunFinished.
type Run struct {
	rec      *Recorder
	id       int64
	ownerID  int64
	finished atomic.Bool
}

// Start opens a run record for the owner in the started state.
func (r *Recorder) Start(ctx context.Context, ownerID int64) (*Run, error) {
	id, err := r.store.CreateRun(ctx, ownerID, r.now())
	if err != nil {
		return nil, fmt.Errorf("opening crawl run for owner %d: %w", ownerID, err)
	}
	r.logger.Debug("crawl run started", "run_id", id, "owner_id", ownerID)
	return &Run{rec: r, id: id, ownerID: ownerID}, nil
}

// ID returns the run's database identifier.
func (run *Run) ID() int64 { return run.id }

// Complete closes the run as successful with the final counters.
func (run *Run) Complete(ctx context.Context, jobsFound, jobsNew int) error {
	return run.finish(ctx, model.RunCompleted, jobsFound, jobsNew, "")
}

// Fail closes the run as failed, keeping whatever counters were reached
// before the failure.
func (run *Run) Fail(ctx context.Context, jobsFound, jobsNew int, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return run.finish(ctx, model.RunFailed, jobsFound, jobsNew, msg)
}

func (run *Run) finish(ctx context.Context, status model.RunStatus, jobsFound, jobsNew int, errMsg string) error {
	if !run.finished.CompareAndSwap(false, true) {
		return model.ErrRunFinished
	}
	err := run.rec.store.FinishRun(ctx, run.id, status, run.rec.now(), jobsFound, jobsNew, errMsg)
	if err != nil {
		return fmt.Errorf("closing crawl run %d: %w", run.id, err)
	}
	run.rec.logger.Info("crawl run finished",
		"run_id", run.id,
		"owner_id", run.ownerID,
		"status", status,
		"jobs_found", jobsFound,
		"jobs_new", jobsNew,
	)
	return nil
}
