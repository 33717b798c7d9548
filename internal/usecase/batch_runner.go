package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/campnest/backend/internal/domain"
)

// MaxBatchSize caps how many pending places one trigger call may process.
const MaxBatchSize = 100

// BatchRunnerConfig holds configuration for the batch runner.
type BatchRunnerConfig struct {
	// ItemDelay is the pacing between items, trading latency for not
	// overwhelming the backing store. This path is not performance
	// critical.
	ItemDelay time.Duration
}

// BatchRunner drives the pipeline over many raw places strictly
// sequentially. A single in-process guard ensures only one batch runs at a
// time; a second trigger returns ErrSyncAlreadyRunning instead of queueing.
// That guard is process-local: a multi-instance deployment needs a shared
// lease instead.
type BatchRunner struct {
	pipeline *PipelineService
	places   domain.RawPlaceRepository
	runs     domain.SyncRunRepository
	limiter  *rate.Limiter
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	active  *activeRun
}

type activeRun struct {
	id     uuid.UUID
	cancel context.CancelFunc
}

// NewBatchRunner wires the runner.
func NewBatchRunner(
	pipeline *PipelineService,
	places domain.RawPlaceRepository,
	runs domain.SyncRunRepository,
	cfg BatchRunnerConfig,
	logger *zap.Logger,
) *BatchRunner {
	delay := cfg.ItemDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	return &BatchRunner{
		pipeline: pipeline,
		places:   places,
		runs:     runs,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
		logger:   logger,
	}
}

// Trigger starts a batch over the given raw place ids. The run record is
// persisted and its id returned immediately; processing happens on a
// background goroutine. Returns ErrSyncAlreadyRunning while a batch is in
// flight.
func (r *BatchRunner) Trigger(ctx context.Context, ids []int64, runType string) (*domain.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil, domain.ErrSyncAlreadyRunning
	}

	run := &domain.SyncRun{
		ID:     uuid.New(),
		Type:   runType,
		Status: domain.SyncRunStatusPending,
		Total:  len(ids),
	}
	if err := r.runs.Create(ctx, run); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r.running = true
	r.active = &activeRun{id: run.ID, cancel: cancel}

	go r.run(runCtx, *run, ids)

	return run, nil
}

// TriggerPending resolves pending raw place ids (capped at MaxBatchSize) and
// triggers a batch over them.
func (r *BatchRunner) TriggerPending(ctx context.Context, limit int, runType string) (*domain.SyncRun, error) {
	if limit <= 0 || limit > MaxBatchSize {
		limit = MaxBatchSize
	}

	// Checked again under the lock in Trigger; this early return just spares
	// the id query in the common conflict case.
	if r.Running() {
		return nil, domain.ErrSyncAlreadyRunning
	}

	ids, err := r.places.ListPendingIDs(ctx, limit)
	if err != nil {
		return nil, err
	}
	return r.Trigger(ctx, ids, runType)
}

// Cancel asks the run with the given id to stop. The runner only checks the
// signal between items, never mid-item.
func (r *BatchRunner) Cancel(runID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil || r.active.id != runID {
		return domain.ErrSyncNotRunning
	}
	r.active.cancel()
	return nil
}

// Running reports whether a batch is in flight.
func (r *BatchRunner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Status returns the in-flight run's current record, or nil when idle.
func (r *BatchRunner) Status(ctx context.Context) (*domain.SyncRun, error) {
	r.mu.Lock()
	active := r.active
	running := r.running
	r.mu.Unlock()

	if !running || active == nil {
		return nil, nil
	}
	return r.runs.GetByID(ctx, active.id)
}

// run processes the batch. The single-flight flag is cleared in a defer so a
// mid-run panic or failure cannot leave the pipeline locked out.
func (r *BatchRunner) run(ctx context.Context, run domain.SyncRun, ids []int64) {
	defer func() {
		r.mu.Lock()
		r.running = false
		if r.active != nil {
			r.active.cancel()
			r.active = nil
		}
		r.mu.Unlock()
	}()

	now := time.Now()
	run.Status = domain.SyncRunStatusProcessing
	run.StartedAt = &now
	r.persist(&run)

	cancelled := false
	for _, id := range ids {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		if err := r.limiter.Wait(ctx); err != nil {
			cancelled = true
			break
		}

		outcome, err := r.pipeline.ProcessPlace(ctx, id)
		run.Processed++
		if err != nil {
			// Item-level failure: counted, batch continues.
			run.Failed++
			r.logger.Warn("batch item failed", zap.Int64("raw_place_id", id), zap.Error(err))
		} else {
			run.Successful++
			if outcome.Created {
				run.CandidatesCreated++
			}
		}
		r.persist(&run)
	}

	done := time.Now()
	run.CompletedAt = &done
	if cancelled {
		run.Status = domain.SyncRunStatusFailed
		run.Error = "cancelled"
	} else {
		run.Status = domain.SyncRunStatusCompleted
	}
	r.persist(&run)

	r.logger.Info("batch run finished",
		zap.String("run_id", run.ID.String()),
		zap.String("status", string(run.Status)),
		zap.Int("successful", run.Successful),
		zap.Int("failed", run.Failed),
		zap.Int("candidates_created", run.CandidatesCreated),
	)
}

// persist writes run progress with a store-bound context independent of the
// cancellable run context, so a cancelled run can still record its state.
func (r *BatchRunner) persist(run *domain.SyncRun) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.runs.Update(ctx, run); err != nil {
		r.logger.Warn("sync run update failed", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}
