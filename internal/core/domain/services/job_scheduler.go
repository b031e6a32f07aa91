package services

import (
	"context"
	"fmt"
	"log/slog"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/model/workforce"
)

// JobScheduler picks the best worker for one job.
//
// ScheduleJob never returns an error and never panics: malformed input yields a
// FailureValidation result, everything else that prevents an assignment yields
// a FailureNoSolution result with a note.
//
// Example:
//
//	scheduler := services.NewJobScheduler(generator, services.NewScheduleTimeCalculator(nil), logger)
//	result := scheduler.ScheduleJob(ctx, request, workers, constraints, scheduling.DefaultObjectives())
//	if !result.IsFeasible() {
//	    log.Println(result.Notes(), result.ConstraintsViolated())
//	}
type JobScheduler struct {
	generator  *CandidateGenerator
	filter     ConstraintFilter
	ranker     CandidateRanker
	calculator ScheduleTimeCalculator
	logger     *slog.Logger
}

// NewJobScheduler assembles the single-job pipeline. The filter and the
// calculator share the calculator's clock.
//
// Parameters:
//   - generator: builds candidates (nil: default collaborators)
//   - calculator: derives the service window (zero value: system clock)
//   - logger: base logger (nil: slog.Default)
//
// Returns:
//   - *JobScheduler: ready to use, safe for concurrent calls
func NewJobScheduler(
	generator *CandidateGenerator,
	calculator ScheduleTimeCalculator,
	logger *slog.Logger,
) *JobScheduler {
	if generator == nil {
		generator = NewCandidateGenerator(nil, nil, nil)
	}
	if calculator.clock == nil {
		calculator = NewScheduleTimeCalculator(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobScheduler{
		generator:  generator,
		filter:     NewConstraintFilter(calculator.clock),
		ranker:     NewCandidateRanker(),
		calculator: calculator,
		logger:     logger.With("component", "job-scheduler"),
	}
}

// ScheduleJob runs generate → filter → rank → pick → window for one job.
// Zero objectives mean scheduling.DefaultObjectives.
func (s *JobScheduler) ScheduleJob(
	ctx context.Context,
	request *job.Request,
	workers []*workforce.CapabilityProfile,
	constraints []scheduling.Constraint,
	objectives scheduling.Objectives,
) (result scheduling.Result) {
	jobID := requestID(request)
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "scheduling panicked", "job_id", jobID, "panic", r)
			result = scheduling.NewInfeasibleResult(jobID, scheduling.FailureNoSolution,
				fmt.Sprintf("scheduling failed: %v", r))
		}
	}()

	if err := request.Validate(); err != nil {
		return scheduling.InvalidJobResult(jobID, err)
	}
	if objectives.IsZero() {
		objectives = scheduling.DefaultObjectives()
	}
	if err := objectives.Validate(); err != nil {
		return scheduling.NewInfeasibleResult(jobID, scheduling.FailureValidation, "invalid objectives: "+err.Error())
	}

	candidates := s.generator.Generate(ctx, request, workers)
	if len(candidates) == 0 {
		return scheduling.NewInfeasibleResult(jobID, scheduling.FailureNoSolution, scheduling.NoteNoCandidates)
	}

	filtered := s.filter.Filter(request, candidates, constraints)
	if len(filtered.Feasible) == 0 {
		s.logger.DebugContext(ctx, "all candidates filtered", "job_id", jobID, "violated", filtered.Violated)
		return scheduling.NewInfeasibleResult(jobID, scheduling.FailureNoSolution,
			scheduling.NoteNoFeasibleCandidates, filtered.Violated...)
	}

	ranked := s.ranker.Rank(filtered.Feasible, objectives)
	return s.resultFor(jobID, request, ranked)
}

// resultFor builds a feasible result for ranked[0] with up to two alternatives.
func (s *JobScheduler) resultFor(jobID kernel.UUID, request *job.Request, ranked []scheduling.Candidate) scheduling.Result {
	best := ranked[0]

	window, err := s.calculator.Window(best.TravelMinutes, request)
	if err != nil {
		return scheduling.NewInfeasibleResult(jobID, scheduling.FailureNoSolution, "scheduling failed: "+err.Error())
	}

	alternatives := make([]kernel.UUID, 0, scheduling.MaxAlternatives)
	for _, c := range ranked[1:] {
		if len(alternatives) == scheduling.MaxAlternatives {
			break
		}
		alternatives = append(alternatives, c.WorkerID())
	}

	result, err := scheduling.NewFeasibleResult(jobID, scheduling.Assignment{
		WorkerID:      best.WorkerID(),
		Start:         window.Start(),
		End:           window.End(),
		TravelMinutes: best.TravelMinutes,
		Confidence:    best.Score,
		Alternatives:  alternatives,
	})
	if err != nil {
		return scheduling.NewInfeasibleResult(jobID, scheduling.FailureNoSolution, "scheduling failed: "+err.Error())
	}
	return result
}

func requestID(request *job.Request) kernel.UUID {
	if request.Validate() != nil {
		return kernel.UUID{}
	}
	return request.ID()
}
