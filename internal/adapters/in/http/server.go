package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fieldservice/internal/adapters/in/payload"
	"fieldservice/internal/core/application/usecases/commands"
	"fieldservice/internal/core/application/usecases/queries"
	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/model/workforce"
	"fieldservice/internal/core/domain/services"
	"fieldservice/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// Modes reported to the SchedulingObserver by the stateless endpoints.
const (
	ModeAPISingle = "api_single"
	ModeAPIBatch  = "api_batch"
)

// JobScheduler schedules one job against a supplied worker pool (services.JobScheduler).
type JobScheduler interface {
	ScheduleJob(
		ctx context.Context,
		request *job.Request,
		workers []*workforce.CapabilityProfile,
		constraints []scheduling.Constraint,
		objectives scheduling.Objectives,
	) scheduling.Result
}

// BatchScheduler schedules several jobs against one pool in priority order (services.BatchScheduler).
type BatchScheduler interface {
	ScheduleMultipleJobs(
		ctx context.Context,
		requests []*job.Request,
		workers []*workforce.CapabilityProfile,
		constraints []scheduling.Constraint,
		objectives scheduling.Objectives,
	) []scheduling.Result
}

// StoredJobScheduler schedules one persisted job (commands.ScheduleJobCommandHandler).
type StoredJobScheduler interface {
	Handle(ctx context.Context, command commands.ScheduleJobCommand) (scheduling.Result, error)
}

// PendingJobsScheduler schedules every persisted pending job (commands.SchedulePendingJobsCommandHandler).
type PendingJobsScheduler interface {
	Handle(ctx context.Context, command commands.SchedulePendingJobsCommand) ([]scheduling.Result, error)
}

// JobResultsReader reads the attempt history of a job (queries.GetJobResultsQueryHandler).
type JobResultsReader interface {
	Handle(ctx context.Context, query queries.GetJobResultsQuery) ([]queries.GetJobResultsQueryResponse, error)
}

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Attempt is the wire form of one recorded scheduling attempt.
type Attempt struct {
	AttemptedAt         time.Time  `json:"attempted_at"`
	Feasible            bool       `json:"feasible"`
	AssignedWorkerID    *string    `json:"assigned_worker_id,omitempty"`
	ScheduledStart      *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd        *time.Time `json:"scheduled_end,omitempty"`
	TravelMinutes       *float64   `json:"travel_minutes,omitempty"`
	Confidence          *float64   `json:"confidence,omitempty"`
	Alternatives        []string   `json:"alternatives"`
	Notes               string     `json:"notes,omitempty"`
	ConstraintsViolated []string   `json:"constraints_violated"`
	Failure             string     `json:"failure"`
}

// Dependencies wires the use cases behind the API. Optimizer defaults to
// services.NoopOptimizer, Observer and Logger are optional.
type Dependencies struct {
	Scheduler         JobScheduler
	Batch             BatchScheduler
	Optimizer         services.ScheduleOptimizer
	ScheduleJob       StoredJobScheduler
	SchedulePending   PendingJobsScheduler
	JobResults        JobResultsReader
	Observer          commands.SchedulingObserver
	OptimizeByDefault bool
	Logger            *slog.Logger
}

// Server handles the scheduling API. Stateless endpoints take jobs and
// workers in the body, persisted endpoints go through the command and query
// handlers.
type Server struct {
	scheduler JobScheduler
	batch     BatchScheduler
	optimizer services.ScheduleOptimizer

	// Command handlers
	scheduleJobHandler     StoredJobScheduler
	schedulePendingHandler PendingJobsScheduler

	// Query handlers
	jobResultsHandler JobResultsReader

	observer          commands.SchedulingObserver
	optimizeByDefault bool
	logger            *slog.Logger
}

// NewServer creates the API handlers. A nil Optimizer means services.NoopOptimizer
// and a nil Logger means slog.Default.
func NewServer(deps Dependencies) *Server {
	if deps.Optimizer == nil {
		deps.Optimizer = services.NoopOptimizer{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Server{
		scheduler:              deps.Scheduler,
		batch:                  deps.Batch,
		optimizer:              deps.Optimizer,
		scheduleJobHandler:     deps.ScheduleJob,
		schedulePendingHandler: deps.SchedulePending,
		jobResultsHandler:      deps.JobResults,
		observer:               deps.Observer,
		optimizeByDefault:      deps.OptimizeByDefault,
		logger:                 deps.Logger.With("component", "http-server"),
	}
}

// ScheduleJob handles POST /api/v1/scheduling/jobs. An invalid job is a
// validation result, not a request error; invalid workers, constraints or
// objectives are rejected with 400.
func (s *Server) ScheduleJob(ctx echo.Context) error {
	var body payload.ScheduleJobRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	workers, constraints, objectives, err := toSchedulingInput(body.Workers, body.Constraints, body.Objectives)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	started := time.Now()
	var result scheduling.Result
	jobID, request, err := payload.ToRequest(body.Job)
	if err != nil {
		result = scheduling.InvalidJobResult(jobID, err)
	} else {
		result = s.scheduler.ScheduleJob(ctx.Request().Context(), request, workers, constraints, objectives)
	}
	s.observe(ModeAPISingle, []scheduling.Result{result}, time.Since(started))

	return ctx.JSON(http.StatusOK, payload.FromResult(result))
}

// ScheduleBatch handles POST /api/v1/scheduling/batch. Results of invalid
// jobs follow the scheduled ones in input order.
func (s *Server) ScheduleBatch(ctx echo.Context) error {
	var body payload.ScheduleBatchRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	in, err := payload.ToBatchInput(body)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	started := time.Now()
	reqCtx := ctx.Request().Context()
	results := s.batch.ScheduleMultipleJobs(reqCtx, in.Requests, in.Workers, in.Constraints, in.Objectives)
	if body.Optimize {
		results = s.optimizer.Optimize(reqCtx, results, in.Requests, in.Workers, in.Constraints, in.Objectives)
	}
	results = append(results, in.Invalid...)
	s.observe(ModeAPIBatch, results, time.Since(started))

	return ctx.JSON(http.StatusOK, payload.FromResults(results))
}

// ScheduleStoredJob handles POST /api/v1/jobs/{jobId}/schedule. The body is
// optional; an empty one schedules with default objectives.
func (s *Server) ScheduleStoredJob(ctx echo.Context) error {
	jobID, err := bindJobID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid job id: "+err.Error())
	}

	var body payload.ScheduleStoredJobRequest
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	constraints, err := payload.ToConstraints(body.Constraints)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	objectives := scheduling.Objectives{}
	if body.Objectives != nil {
		objectives = *body.Objectives
	}

	cmd, err := commands.NewScheduleJobCommand(jobID, constraints, objectives)
	if err != nil {
		return badRequest(ctx, "Invalid scheduling options: "+err.Error())
	}

	result, err := s.scheduleJobHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err, "Failed to schedule job")
	}

	return ctx.JSON(http.StatusOK, payload.FromResult(result))
}

// SchedulePendingJobs handles POST /api/v1/jobs/schedule-pending. Having
// nothing to schedule is not an error.
func (s *Server) SchedulePendingJobs(ctx echo.Context) error {
	var body payload.SchedulePendingRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	constraints, err := payload.ToConstraints(body.Constraints)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	objectives := scheduling.Objectives{}
	if body.Objectives != nil {
		objectives = *body.Objectives
	}
	optimize := s.optimizeByDefault
	if body.Optimize != nil {
		optimize = *body.Optimize
	}

	cmd, err := commands.NewSchedulePendingJobsCommand(constraints, objectives, optimize)
	if err != nil {
		return badRequest(ctx, "Invalid scheduling options: "+err.Error())
	}

	results, err := s.schedulePendingHandler.Handle(ctx.Request().Context(), cmd)
	if errors.Is(err, commands.ErrNoPendingJobs) {
		return ctx.JSON(http.StatusOK, []payload.Result{})
	}
	if err != nil {
		return s.fail(ctx, err, "Failed to schedule pending jobs")
	}

	return ctx.JSON(http.StatusOK, payload.FromResults(results))
}

// GetJobResults handles GET /api/v1/jobs/{jobId}/results.
func (s *Server) GetJobResults(ctx echo.Context) error {
	jobID, err := bindJobID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid job id: "+err.Error())
	}

	var limit *int
	if err = runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &limit); err != nil {
		return badRequest(ctx, "Invalid limit: "+err.Error())
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	query, err := queries.NewGetJobResultsQuery(jobID, n)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	attempts, err := s.jobResultsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "Failed to retrieve job results")
	}

	response := make([]Attempt, len(attempts))
	for i, a := range attempts {
		response[i] = toAttempt(a)
	}

	return ctx.JSON(http.StatusOK, response)
}

func (s *Server) observe(mode string, results []scheduling.Result, elapsed time.Duration) {
	if s.observer != nil {
		s.observer.ObserveResults(mode, results, elapsed)
	}
}

// fail maps use case errors onto status codes. Unexpected errors are logged
// and answered with a generic message.
func (s *Server) fail(ctx echo.Context, err error, message string) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), message, "error", err)
		return ctx.JSON(status, Error{Code: status, Message: message})
	}
	return ctx.JSON(status, Error{Code: status, Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, commands.ErrJobAlreadyScheduled):
		return http.StatusConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrValueIsRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}

func bindJobID(ctx echo.Context) (kernel.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "jobId", ctx.Param("jobId"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return kernel.UUID{}, err
	}
	return kernel.UUIDFromBytes(id[:])
}

func toSchedulingInput(
	workers []payload.Worker,
	constraints []payload.Constraint,
	objectives *scheduling.Objectives,
) ([]*workforce.CapabilityProfile, []scheduling.Constraint, scheduling.Objectives, error) {
	profiles, err := payload.ToProfiles(workers)
	if err != nil {
		return nil, nil, scheduling.Objectives{}, err
	}
	cons, err := payload.ToConstraints(constraints)
	if err != nil {
		return nil, nil, scheduling.Objectives{}, err
	}
	obj, err := payload.ToObjectives(objectives)
	if err != nil {
		return nil, nil, scheduling.Objectives{}, err
	}
	return profiles, cons, obj, nil
}

func toAttempt(a queries.GetJobResultsQueryResponse) Attempt {
	out := Attempt{
		AttemptedAt:         a.AttemptedAt,
		Feasible:            a.AssignedWorkerID != nil,
		ScheduledStart:      a.ScheduledStart,
		ScheduledEnd:        a.ScheduledEnd,
		TravelMinutes:       a.TravelMinutes,
		Confidence:          a.Confidence,
		Alternatives:        make([]string, 0, len(a.Alternatives)),
		Notes:               a.Notes,
		ConstraintsViolated: append([]string{}, a.ConstraintsViolated...),
		Failure:             a.Failure,
	}
	if a.AssignedWorkerID != nil {
		id := a.AssignedWorkerID.String()
		out.AssignedWorkerID = &id
	}
	for _, alt := range a.Alternatives {
		out.Alternatives = append(out.Alternatives, alt.String())
	}
	return out
}
