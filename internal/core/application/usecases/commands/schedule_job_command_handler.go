package commands

import (
	"context"
	"errors"
	"log/slog"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/services"
)

var ErrJobAlreadyScheduled = errors.New("job is already scheduled")

// ScheduleJobCommandHandler schedules one stored job and records the attempt.
// The job moves to Scheduled or Unschedulable, and the result is appended to
// its history in the same transaction.
//
// Example:
//
//	handler := NewScheduleJobCommandHandler(uowFactory, scheduler, services.SystemClock{}, metrics, logger)
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrObjectNotFound):
//	    log.Println("Unknown job")
//	case errors.Is(err, ErrJobAlreadyScheduled):
//	    log.Println("Nothing to do")
//	case err != nil:
//	    log.Printf("Scheduling failed: %v", err)
//	case !result.IsFeasible():
//	    log.Println(result.Notes())
//	}
type ScheduleJobCommandHandler struct {
	uowFactory UoWFactory
	scheduler  *services.JobScheduler
	clock      services.Clock
	observer   SchedulingObserver
	logger     *slog.Logger
}

// NewScheduleJobCommandHandler wires the handler. observer may be nil.
func NewScheduleJobCommandHandler(
	uowFactory UoWFactory,
	scheduler *services.JobScheduler,
	clock services.Clock,
	observer SchedulingObserver,
	logger *slog.Logger,
) *ScheduleJobCommandHandler {
	if clock == nil {
		clock = services.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleJobCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		clock:      clock,
		observer:   observer,
		logger:     logger.With("component", "schedule-job-handler"),
	}
}

// Handle loads the job and all workers, runs the scheduler and persists the outcome.
// A result that found no worker is returned with a nil error.
func (h *ScheduleJobCommandHandler) Handle(ctx context.Context, command ScheduleJobCommand) (scheduling.Result, error) {
	if err := command.Validate(); err != nil {
		return scheduling.Result{}, err
	}

	started := h.clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return scheduling.Result{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.JobRepository()
	workerRepo := uow.WorkerRepository()
	resultRepo := uow.ResultRepository()

	stored, err := jobRepo.Get(ctx, command.JobID())
	if err != nil {
		return scheduling.Result{}, err
	}
	if stored.Status() == job.Scheduled {
		return scheduling.Result{}, ErrJobAlreadyScheduled
	}

	workers, err := loadWorkforce(ctx, workerRepo, jobRepo, started)
	if err != nil {
		return scheduling.Result{}, err
	}

	result := h.scheduler.ScheduleJob(ctx, stored.Request(), workers, command.Constraints(), command.Objectives())

	if err = applyResult(stored, result); err != nil {
		return scheduling.Result{}, err
	}
	if err = jobRepo.Update(ctx, stored); err != nil {
		return scheduling.Result{}, err
	}
	if err = resultRepo.Add(ctx, result, started); err != nil {
		return scheduling.Result{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return scheduling.Result{}, err
	}

	elapsed := h.clock.Now().Sub(started)
	if h.observer != nil {
		h.observer.ObserveResults(ModeSingle, []scheduling.Result{result}, elapsed)
	}
	h.logger.InfoContext(ctx, "job scheduling attempted",
		"job_id", command.JobID(),
		"feasible", result.IsFeasible(),
		"workers", len(workers),
		"notes", result.Notes())

	return result, nil
}
