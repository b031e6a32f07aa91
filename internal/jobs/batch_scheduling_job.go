package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fieldservice/internal/core/application/usecases/commands"
	"fieldservice/internal/core/domain/model/scheduling"

	"github.com/robfig/cron/v3"
)

// DefaultBatchSchedule runs the pending batch once a minute.
const DefaultBatchSchedule = "@every 1m"

// PendingJobsScheduler is satisfied by commands.SchedulePendingJobsCommandHandler.
type PendingJobsScheduler interface {
	Handle(ctx context.Context, command commands.SchedulePendingJobsCommand) ([]scheduling.Result, error)
}

// BatchSchedulingConfig controls a BatchSchedulingJob. Zero values mean
// DefaultBatchSchedule, no extra constraints, default objectives and no timeout.
type BatchSchedulingConfig struct {
	Schedule    string
	Constraints []scheduling.Constraint
	Objectives  scheduling.Objectives
	Optimize    bool
	Timeout     time.Duration
}

// BatchSchedulingJob periodically schedules every pending or unschedulable
// stored job. A run still in progress when the next one is due is skipped.
type BatchSchedulingJob struct {
	handler PendingJobsScheduler
	config  BatchSchedulingConfig
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewBatchSchedulingJob creates a job that schedules pending jobs every config.Interval.
func NewBatchSchedulingJob(handler PendingJobsScheduler, config BatchSchedulingConfig, logger *slog.Logger) *BatchSchedulingJob {
	if config.Schedule == "" {
		config.Schedule = DefaultBatchSchedule
	}
	logger = logger.With("component", "batch_scheduling_job")
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	return &BatchSchedulingJob{
		handler: handler,
		config:  config,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
		logger:  logger,
	}
}

// Start registers the run with cron and starts it.
func (j *BatchSchedulingJob) Start() error {
	if _, err := j.cron.AddFunc(j.config.Schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Batch scheduling job started",
		"schedule", j.config.Schedule, "optimize", j.config.Optimize)
	return nil
}

// Stop stops the cron and waits for a running batch to finish.
func (j *BatchSchedulingJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Batch scheduling job stopped")
}

// Run executes one batch. Having nothing pending is not an error.
func (j *BatchSchedulingJob) Run(ctx context.Context) {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	cmd, err := commands.NewSchedulePendingJobsCommand(j.config.Constraints, j.config.Objectives, j.config.Optimize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Batch scheduling job misconfigured", "error", err)
		return
	}

	results, err := j.handler.Handle(ctx, cmd)
	if errors.Is(err, commands.ErrNoPendingJobs) {
		j.logger.DebugContext(ctx, "No pending jobs to schedule")
		return
	}
	if err != nil {
		j.logger.ErrorContext(ctx, "Batch scheduling job failed", "error", err)
		return
	}

	assigned := 0
	for _, r := range results {
		if r.IsFeasible() {
			assigned++
		}
	}
	j.logger.InfoContext(ctx, "Batch scheduling job finished", "jobs", len(results), "assigned", assigned)
}
