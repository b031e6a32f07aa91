package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/services"
)

var ErrNoPendingJobs = errors.New("no pending jobs found")

// SchedulePendingJobsCommandHandler runs the batch scheduler over all jobs
// awaiting assignment. Runs are serialised: the cron job and the HTTP endpoint
// share one handler, and two overlapping batches would double-book workers.
type SchedulePendingJobsCommandHandler struct {
	uowFactory UoWFactory
	batch      *services.BatchScheduler
	optimizer  services.ScheduleOptimizer
	clock      services.Clock
	observer   SchedulingObserver
	logger     *slog.Logger
	mu         sync.Mutex
}

// NewSchedulePendingJobsCommandHandler wires the handler. A nil optimizer
// means services.NoopOptimizer; observer may be nil.
func NewSchedulePendingJobsCommandHandler(
	uowFactory UoWFactory,
	batch *services.BatchScheduler,
	optimizer services.ScheduleOptimizer,
	clock services.Clock,
	observer SchedulingObserver,
	logger *slog.Logger,
) *SchedulePendingJobsCommandHandler {
	if optimizer == nil {
		optimizer = services.NoopOptimizer{}
	}
	if clock == nil {
		clock = services.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulePendingJobsCommandHandler{
		uowFactory: uowFactory,
		batch:      batch,
		optimizer:  optimizer,
		clock:      clock,
		observer:   observer,
		logger:     logger.With("component", "schedule-pending-handler"),
	}
}

// Handle schedules the pending jobs and returns one result per job in
// processing order. Returns ErrNoPendingJobs when there is nothing to do.
func (h *SchedulePendingJobsCommandHandler) Handle(
	ctx context.Context,
	command SchedulePendingJobsCommand,
) ([]scheduling.Result, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	started := h.clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.JobRepository()
	workerRepo := uow.WorkerRepository()
	resultRepo := uow.ResultRepository()

	pending, err := jobRepo.GetAllPending(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, ErrNoPendingJobs
	}

	workers, err := loadWorkforce(ctx, workerRepo, jobRepo, started)
	if err != nil {
		return nil, err
	}

	byID := make(map[kernel.UUID]*job.Job, len(pending))
	requests := make([]*job.Request, 0, len(pending))
	for _, j := range pending {
		byID[j.ID()] = j
		requests = append(requests, j.Request())
	}

	constraints, objectives := command.Constraints(), command.Objectives()
	results := h.batch.ScheduleMultipleJobs(ctx, requests, workers, constraints, objectives)
	if command.Optimize() {
		results = h.optimizer.Optimize(ctx, results, requests, workers, constraints, objectives)
	}

	for _, result := range results {
		stored, ok := byID[result.JobID()]
		if !ok {
			return nil, fmt.Errorf("batch returned a result for unknown job %s", result.JobID())
		}
		if err = applyResult(stored, result); err != nil {
			return nil, err
		}
		if err = jobRepo.Update(ctx, stored); err != nil {
			return nil, err
		}
		if err = resultRepo.Add(ctx, result, started); err != nil {
			return nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	elapsed := h.clock.Now().Sub(started)
	if h.observer != nil {
		h.observer.ObserveResults(ModePending, results, elapsed)
	}
	h.logger.InfoContext(ctx, "pending jobs scheduled",
		"jobs", len(results),
		"assigned", countAssigned(results),
		"optimized", command.Optimize(),
		"elapsed", elapsed)

	return results, nil
}

func countAssigned(results []scheduling.Result) int {
	n := 0
	for _, r := range results {
		if r.IsFeasible() {
			n++
		}
	}
	return n
}
