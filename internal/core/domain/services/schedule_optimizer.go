package services

import (
	"context"
	"log/slog"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/model/workforce"
)

const (
	// DefaultSwapPasses bounds the full pairwise sweeps of SwapOptimizer.
	DefaultSwapPasses  = 3
	improvementEpsilon = 1e-9
)

// ScheduleOptimizer refines the results of a batch. Implementations must keep
// every assignment inside the same hard constraints the batch used and return
// one result per input result, in the same order.
type ScheduleOptimizer interface {
	Optimize(
		ctx context.Context,
		current []scheduling.Result,
		requests []*job.Request,
		workers []*workforce.CapabilityProfile,
		constraints []scheduling.Constraint,
		objectives scheduling.Objectives,
	) []scheduling.Result
}

// NoopOptimizer returns the batch unchanged.
type NoopOptimizer struct{}

// Optimize returns a copy of current.
func (NoopOptimizer) Optimize(
	_ context.Context,
	current []scheduling.Result,
	_ []*job.Request,
	_ []*workforce.CapabilityProfile,
	_ []scheduling.Constraint,
	_ scheduling.Objectives,
) []scheduling.Result {
	return append([]scheduling.Result(nil), current...)
}

// SwapOptimizer is a pairwise exchange local search. For every two feasible
// assignments with different workers it tries giving each job the other's
// worker, and keeps the exchange when both new assignments pass the hard
// constraints and the summed score strictly improves. Scores are evaluated
// against the final batch workload minus the job being moved. Swapped results
// get a new window, confidence and alternatives.
type SwapOptimizer struct {
	generator  *CandidateGenerator
	filter     ConstraintFilter
	ranker     CandidateRanker
	calculator ScheduleTimeCalculator
	maxPasses  int
	logger     *slog.Logger
}

// NewSwapOptimizer creates a swap optimizer. It must use the same generator and
// calculator as the batch that produced the results, otherwise swapped
// assignments are scored against different travel and availability.
//
// Parameters:
//   - generator: builds candidates (nil: default collaborators)
//   - calculator: derives windows for swapped jobs (zero value: system clock)
//   - maxPasses: full pairwise sweeps; values <= 0 mean DefaultSwapPasses
//   - logger: base logger (nil: slog.Default)
func NewSwapOptimizer(
	generator *CandidateGenerator,
	calculator ScheduleTimeCalculator,
	maxPasses int,
	logger *slog.Logger,
) *SwapOptimizer {
	if generator == nil {
		generator = NewCandidateGenerator(nil, nil, nil)
	}
	if calculator.clock == nil {
		calculator = NewScheduleTimeCalculator(nil)
	}
	if maxPasses <= 0 {
		maxPasses = DefaultSwapPasses
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SwapOptimizer{
		generator:  generator,
		filter:     NewConstraintFilter(calculator.clock),
		ranker:     NewCandidateRanker(),
		calculator: calculator,
		maxPasses:  maxPasses,
		logger:     logger.With("component", "swap-optimizer"),
	}
}

type swapSlot struct {
	index   int
	request *job.Request
	worker  kernel.UUID
}

// Optimize returns one result per entry of current, in the same order.
// Infeasible results and results whose job or worker is not in requests or
// workers are kept as they are. When a swapped job can no longer be rebuilt
// the whole batch is returned unchanged.
func (o *SwapOptimizer) Optimize(
	ctx context.Context,
	current []scheduling.Result,
	requests []*job.Request,
	workers []*workforce.CapabilityProfile,
	constraints []scheduling.Constraint,
	objectives scheduling.Objectives,
) []scheduling.Result {
	out := append([]scheduling.Result(nil), current...)
	if objectives.IsZero() {
		objectives = scheduling.DefaultObjectives()
	}

	byID := make(map[kernel.UUID]*job.Request, len(requests))
	for _, r := range requests {
		if r.Validate() == nil {
			byID[r.ID()] = r
		}
	}
	profiles := make(map[kernel.UUID]*workforce.CapabilityProfile, len(workers))
	for _, w := range workers {
		if w.Validate() == nil {
			profiles[w.WorkerID()] = w
		}
	}

	ledger := make(workloadLedger)
	var slots []*swapSlot
	for i, r := range out {
		worker := r.AssignedWorkerID()
		if worker == nil {
			continue
		}
		request, ok := byID[r.JobID()]
		if !ok {
			continue
		}
		if _, ok := profiles[*worker]; !ok {
			continue
		}
		ledger.add(*worker, request.EstimatedDurationHours())
		slots = append(slots, &swapSlot{index: i, request: request, worker: *worker})
	}

	swaps := 0
	for pass := 0; pass < o.maxPasses; pass++ {
		improved := false
		for i := 0; i < len(slots); i++ {
			for j := i + 1; j < len(slots); j++ {
				if o.trySwap(ctx, slots[i], slots[j], profiles, ledger, constraints, objectives) {
					improved = true
					swaps++
				}
			}
		}
		if !improved {
			break
		}
	}

	if swaps == 0 {
		return out
	}

	rebuilt := make(map[int]scheduling.Result, len(slots))
	for _, s := range slots {
		if worker := out[s.index].AssignedWorkerID(); worker != nil && worker.IsEqual(s.worker) {
			continue
		}
		result, ok := o.rebuild(ctx, s, workers, ledger, constraints, objectives)
		if !ok {
			// Swaps only hold together as a whole; keep the batch as it came in.
			o.logger.WarnContext(ctx, "swapped assignment could not be rebuilt, keeping original batch",
				"jobId", s.request.ID().String(), "swaps", swaps)
			return append([]scheduling.Result(nil), current...)
		}
		rebuilt[s.index] = result
	}
	for i, result := range rebuilt {
		out[i] = result
	}

	o.logger.DebugContext(ctx, "batch optimised", "swaps", swaps)
	return out
}

// trySwap exchanges the workers of a and b when that strictly raises their
// summed score. Both jobs are scored against the ledger without themselves.
func (o *SwapOptimizer) trySwap(
	ctx context.Context,
	a, b *swapSlot,
	profiles map[kernel.UUID]*workforce.CapabilityProfile,
	ledger workloadLedger,
	constraints []scheduling.Constraint,
	objectives scheduling.Objectives,
) bool {
	if a.worker.IsEqual(b.worker) {
		return false
	}

	aHours, bHours := a.request.EstimatedDurationHours(), b.request.EstimatedDurationHours()
	ledger.remove(a.worker, aHours)
	ledger.remove(b.worker, bHours)

	curA, _ := o.evaluate(ctx, a.request, profiles[a.worker], ledger, constraints, objectives)
	curB, _ := o.evaluate(ctx, b.request, profiles[b.worker], ledger, constraints, objectives)
	newA, okA := o.evaluate(ctx, a.request, profiles[b.worker], ledger, constraints, objectives)
	newB, okB := o.evaluate(ctx, b.request, profiles[a.worker], ledger, constraints, objectives)

	swapped := okA && okB && newA.Score+newB.Score > curA.Score+curB.Score+improvementEpsilon
	if swapped {
		a.worker, b.worker = b.worker, a.worker
	}

	ledger.add(a.worker, aHours)
	ledger.add(b.worker, bHours)
	return swapped
}

// evaluate scores request against worker with the ledger load applied. The
// second result is false when the worker fails a hard constraint.
func (o *SwapOptimizer) evaluate(
	ctx context.Context,
	request *job.Request,
	worker *workforce.CapabilityProfile,
	ledger workloadLedger,
	constraints []scheduling.Constraint,
	objectives scheduling.Objectives,
) (scheduling.Candidate, bool) {
	snap := ledger.snapshot([]*workforce.CapabilityProfile{worker})
	candidates := o.generator.Generate(ctx, request, snap)
	if len(candidates) != 1 {
		return scheduling.Candidate{}, false
	}
	if _, ok := o.filter.Check(request, candidates[0], constraints); !ok {
		return scheduling.Candidate{}, false
	}

	c := candidates[0]
	c.Score = o.ranker.Score(c, objectives)
	return c, true
}

// rebuild recomputes the result of a swapped slot: window from the new
// worker's travel, confidence from its score, alternatives from a fresh ranking.
// The second result is false when the new worker no longer passes the hard
// constraints or no window can be derived.
func (o *SwapOptimizer) rebuild(
	ctx context.Context,
	s *swapSlot,
	workers []*workforce.CapabilityProfile,
	ledger workloadLedger,
	constraints []scheduling.Constraint,
	objectives scheduling.Objectives,
) (scheduling.Result, bool) {
	hours := s.request.EstimatedDurationHours()
	ledger.remove(s.worker, hours)
	defer ledger.add(s.worker, hours)

	candidates := o.generator.Generate(ctx, s.request, ledger.snapshot(workers))
	feasible := o.filter.Filter(s.request, candidates, constraints).Feasible
	ranked := o.ranker.Rank(feasible, objectives)

	var chosen *scheduling.Candidate
	alternatives := make([]kernel.UUID, 0, scheduling.MaxAlternatives)
	for i := range ranked {
		c := ranked[i]
		if c.WorkerID().IsEqual(s.worker) {
			chosen = &ranked[i]
			continue
		}
		if len(alternatives) < scheduling.MaxAlternatives {
			alternatives = append(alternatives, c.WorkerID())
		}
	}
	if chosen == nil {
		return scheduling.Result{}, false
	}

	window, err := o.calculator.Window(chosen.TravelMinutes, s.request)
	if err != nil {
		return scheduling.Result{}, false
	}
	result, err := scheduling.NewFeasibleResult(s.request.ID(), scheduling.Assignment{
		WorkerID:      s.worker,
		Start:         window.Start(),
		End:           window.End(),
		TravelMinutes: chosen.TravelMinutes,
		Confidence:    chosen.Score,
		Alternatives:  alternatives,
		Notes:         "reassigned by swap optimisation",
	})
	if err != nil {
		return scheduling.Result{}, false
	}
	return result, true
}
