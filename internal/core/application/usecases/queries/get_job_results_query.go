package queries

import (
	"errors"
	"time"

	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/pkg/guard"
)

// Limits applied to the size of one results page.
const (
	DefaultResultsLimit = 20
	MaxResultsLimit     = 100
)

var ErrGetJobResultsQueryIsNotConstructed = errors.New(
	"GetJobResultsQuery must be created via NewGetJobResultsQuery constructor",
)

// GetJobResultsQuery reads the scheduling history of one job, newest first.
//
// Example:
//
//	query, err := NewGetJobResultsQuery(jobID, 10)
//	if err != nil {
//	    return err
//	}
//	attempts, err := handler.Handle(ctx, query)
type GetJobResultsQuery struct {
	jobID kernel.UUID
	limit int
	guard guard.ConstructorGuard
}

// NewGetJobResultsQuery validates the job id. A zero limit means DefaultResultsLimit.
func NewGetJobResultsQuery(jobID kernel.UUID, limit int) (GetJobResultsQuery, error) {
	if err := jobID.Validate(); err != nil {
		return GetJobResultsQuery{}, err
	}
	if limit == 0 {
		limit = DefaultResultsLimit
	}
	if limit < 1 || limit > MaxResultsLimit {
		return GetJobResultsQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxResultsLimit)
	}

	return GetJobResultsQuery{jobID: jobID, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

// Validate checks the job ID and the limit.
func (q GetJobResultsQuery) Validate() error {
	return q.guard.Validate(ErrGetJobResultsQueryIsNotConstructed)
}

// JobID returns the job whose history is read.
func (q GetJobResultsQuery) JobID() kernel.UUID {
	return q.jobID
}

// Limit returns the maximum number of results, newest first.
func (q GetJobResultsQuery) Limit() int {
	return q.limit
}

// GetJobResultsQueryResponse is one recorded scheduling attempt.
type GetJobResultsQueryResponse struct {
	AttemptedAt         time.Time
	AssignedWorkerID    *kernel.UUID
	ScheduledStart      *time.Time
	ScheduledEnd        *time.Time
	TravelMinutes       *float64
	Confidence          *float64
	Alternatives        []kernel.UUID
	Notes               string
	ConstraintsViolated []string
	Failure             string
}
