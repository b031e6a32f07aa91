package scheduling

import (
	"errors"
	"fmt"
	"math"
	"time"

	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/pkg/errs"
)

// MaxAlternatives caps the runner-up workers reported with a feasible result.
const MaxAlternatives = 2

// Notes used for no-solution outcomes.
const (
	NoteNoCandidates         = "no candidates available"
	NoteNoFeasibleCandidates = "no feasible candidates after constraints"
	NoteInvalidJobPrefix     = "invalid job request: "
)

// FailureKind tells malformed input apart from a search that found no worker.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureValidation
	FailureNoSolution
)

// String returns the wire name: "none", "validation" or "no_solution".
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureValidation:
		return "validation"
	case FailureNoSolution:
		return "no_solution"
	default:
		return "unknown"
	}
}

// ParseFailureKind is the inverse of FailureKind.String.
func ParseFailureKind(s string) (FailureKind, error) {
	for _, k := range []FailureKind{FailureNone, FailureValidation, FailureNoSolution} {
		if k.String() == s {
			return k, nil
		}
	}
	return FailureNone, errs.NewValueIsInvalidErrorWithCause(
		"failure kind is invalid", fmt.Errorf("%q is not a known failure kind", s))
}

// Result is the outcome of one scheduling attempt for one job.
type Result struct {
	jobID               kernel.UUID
	assignedWorkerID    *kernel.UUID
	scheduledStart      *time.Time
	scheduledEnd        *time.Time
	travelMinutes       *float64
	confidence          *float64
	alternatives        []kernel.UUID
	notes               string
	constraintsViolated []string
	failure             FailureKind
}

// Assignment is the payload of a feasible result.
type Assignment struct {
	WorkerID      kernel.UUID
	Start         time.Time
	End           time.Time
	TravelMinutes float64
	Confidence    float64
	Alternatives  []kernel.UUID
	Notes         string
}

// NewFeasibleResult validates the assignment and returns a feasible result.
// Alternatives beyond MaxAlternatives are dropped.
func NewFeasibleResult(jobID kernel.UUID, a Assignment) (Result, error) {
	var windowErr, confidenceErr, travelErr error
	if !a.End.After(a.Start) {
		windowErr = errs.NewValueIsInvalidErrorWithCause(
			"scheduled window is invalid", fmt.Errorf("end %s is not after start %s",
				a.End.Format(time.RFC3339), a.Start.Format(time.RFC3339)))
	}
	if math.IsNaN(a.Confidence) || a.Confidence < 0 || a.Confidence > 1 {
		confidenceErr = errs.NewValueIsOutOfRangeError("confidence", a.Confidence, 0.0, 1.0)
	}
	if math.IsNaN(a.TravelMinutes) || a.TravelMinutes < 0 {
		travelErr = errs.NewValueIsInvalidErrorWithCause(
			"travel minutes is invalid", fmt.Errorf("%v is negative", a.TravelMinutes))
	}
	if err := errors.Join(jobID.Validate(), a.WorkerID.Validate(), windowErr, confidenceErr, travelErr); err != nil {
		return Result{}, err
	}

	alternatives := a.Alternatives
	if len(alternatives) > MaxAlternatives {
		alternatives = alternatives[:MaxAlternatives]
	}

	workerID, start, end := a.WorkerID, a.Start, a.End
	travel, confidence := a.TravelMinutes, a.Confidence
	return Result{
		jobID:            jobID,
		assignedWorkerID: &workerID,
		scheduledStart:   &start,
		scheduledEnd:     &end,
		travelMinutes:    &travel,
		confidence:       &confidence,
		alternatives:     append([]kernel.UUID(nil), alternatives...),
		notes:            a.Notes,
		failure:          FailureNone,
	}, nil
}

// NewInfeasibleResult builds a result without assignment. jobID may be the zero
// UUID when the request itself could not be read. An empty note with no
// violated constraints is replaced by a generic explanation so every infeasible
// result says why.
func NewInfeasibleResult(jobID kernel.UUID, kind FailureKind, notes string, constraintsViolated ...string) Result {
	if kind == FailureNone {
		kind = FailureNoSolution
	}
	if notes == "" && len(constraintsViolated) == 0 {
		notes = "scheduling failed"
	}
	return Result{
		jobID:               jobID,
		notes:               notes,
		constraintsViolated: append([]string(nil), constraintsViolated...),
		failure:             kind,
	}
}

// InvalidJobResult is the validation failure for a malformed request.
func InvalidJobResult(jobID kernel.UUID, cause error) Result {
	return NewInfeasibleResult(jobID, FailureValidation, NoteInvalidJobPrefix+cause.Error())
}

// JobID returns the job the result is for. It is the zero UUID when the request id could not be read.
func (r Result) JobID() kernel.UUID {
	return r.jobID
}

// AssignedWorkerID is nil exactly when the result is infeasible.
func (r Result) AssignedWorkerID() *kernel.UUID {
	return r.assignedWorkerID
}

// ScheduledStart returns the service start, or nil for an infeasible result.
func (r Result) ScheduledStart() *time.Time {
	return r.scheduledStart
}

// ScheduledEnd returns the service end, or nil for an infeasible result.
func (r Result) ScheduledEnd() *time.Time {
	return r.scheduledEnd
}

// TravelMinutes returns the assigned worker's travel time, or nil for an infeasible result.
func (r Result) TravelMinutes() *float64 {
	return r.travelMinutes
}

// Confidence returns the winning score in [0, 1], or nil for an infeasible result.
func (r Result) Confidence() *float64 {
	return r.confidence
}

// Alternatives returns a copy of the runner-up worker ids, best first, at most MaxAlternatives.
func (r Result) Alternatives() []kernel.UUID {
	return append([]kernel.UUID(nil), r.alternatives...)
}

// Notes returns the human-readable explanation of the outcome.
func (r Result) Notes() string {
	return r.notes
}

// ConstraintsViolated returns a copy of the names of the constraints that
// eliminated every candidate. It is empty for feasible results.
func (r Result) ConstraintsViolated() []string {
	return append([]string(nil), r.constraintsViolated...)
}

// IsFeasible reports whether a worker was assigned.
func (r Result) IsFeasible() bool {
	return r.assignedWorkerID != nil
}

// Failure returns FailureNone for feasible results and the failure class otherwise.
func (r Result) Failure() FailureKind {
	return r.failure
}
