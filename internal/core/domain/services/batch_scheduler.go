package services

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/model/workforce"
)

// UrgencyHorizonHours is the due-date horizon inside which jobs gain urgency.
const UrgencyHorizonHours = 50.0

// BatchScheduler schedules many jobs greedily in priority order.
//
// Each job sees the workload added by the jobs scheduled before it in the same
// call, so urgent jobs claim the best workers first and later jobs spread onto
// less loaded ones. There is no backtracking.
type BatchScheduler struct {
	scheduler *JobScheduler
	clock     Clock
	logger    *slog.Logger
}

// NewBatchScheduler creates a batch scheduler around a single-job scheduler.
//
// Parameters:
//   - scheduler: runs each job (nil: a scheduler with default collaborators)
//   - clock: "now" for due-date urgency (nil: system clock)
//   - logger: base logger (nil: slog.Default)
//
// Example:
//
//	batch := services.NewBatchScheduler(scheduler, clock, logger)
//	results := batch.ScheduleMultipleJobs(ctx, requests, workers, constraints, objectives)
func NewBatchScheduler(scheduler *JobScheduler, clock Clock, logger *slog.Logger) *BatchScheduler {
	if scheduler == nil {
		scheduler = NewJobScheduler(nil, NewScheduleTimeCalculator(clock), logger)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchScheduler{
		scheduler: scheduler,
		clock:     clock,
		logger:    logger.With("component", "batch-scheduler"),
	}
}

// PriorityScore is the priority weight plus max(0, 50 - hours until due).
// Jobs without a due date get no urgency bonus; overdue jobs get more than 50.
func PriorityScore(request *job.Request, now time.Time) float64 {
	score := request.Priority().Weight()
	if hours, ok := request.HoursUntilDue(now); ok {
		score += max(0, UrgencyHorizonHours-hours)
	}
	return score
}

// OrderByPriority returns the requests sorted by descending PriorityScore.
// Equal scores keep their input order; invalid requests go last.
func OrderByPriority(requests []*job.Request, now time.Time) []*job.Request {
	type scored struct {
		request *job.Request
		score   float64
	}

	items := make([]scored, len(requests))
	for i, r := range requests {
		score := math.Inf(-1)
		if r.Validate() == nil {
			score = PriorityScore(r, now)
		}
		items[i] = scored{request: r, score: score}
	}

	slices.SortStableFunc(items, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})

	ordered := make([]*job.Request, len(items))
	for i, it := range items {
		ordered[i] = it.request
	}
	return ordered
}

// ScheduleMultipleJobs schedules every request and returns one result per
// request in processing order.
func (b *BatchScheduler) ScheduleMultipleJobs(
	ctx context.Context,
	requests []*job.Request,
	workers []*workforce.CapabilityProfile,
	constraints []scheduling.Constraint,
	objectives scheduling.Objectives,
) []scheduling.Result {
	ordered := OrderByPriority(requests, b.clock.Now())
	ledger := make(workloadLedger)
	results := make([]scheduling.Result, 0, len(ordered))

	for _, request := range ordered {
		result := b.scheduler.ScheduleJob(ctx, request, ledger.snapshot(workers), constraints, objectives)
		if worker := result.AssignedWorkerID(); worker != nil {
			ledger.add(*worker, request.EstimatedDurationHours())
		}
		results = append(results, result)
	}

	b.logger.DebugContext(ctx, "batch scheduled",
		"jobs", len(results), "assigned", countFeasible(results))
	return results
}

func countFeasible(results []scheduling.Result) int {
	n := 0
	for _, r := range results {
		if r.IsFeasible() {
			n++
		}
	}
	return n
}
