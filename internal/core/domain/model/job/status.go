package job

import (
	"fmt"

	"fieldservice/internal/pkg/errs"
)

// Status represents the scheduling lifecycle of a persisted job.
//
// State transitions:
//
//	Pending ──┬──> Scheduled
//	          │        ^
//	          v        │
//	     Unschedulable ┘
//	   (retry allowed)
//
// Scheduled is final: a job is assigned to a worker at most once.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// Pending is the initial status; the job waits for a scheduling run.
	Pending

	// Scheduled indicates a worker and time window were assigned.
	Scheduled

	// Unschedulable indicates the last scheduling attempt found no feasible worker.
	Unschedulable
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "Unknown",
		Pending:       "Pending",
		Scheduled:     "Scheduled",
		Unschedulable: "Unschedulable",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // StatusUnknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:       "Pending",
		Scheduled:     "Scheduled",
		Unschedulable: "Unschedulable",
	}
}

// Validate checks that the status is one of Pending, Scheduled or Unschedulable.
// Used on values read from the database.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// It is safe to call on any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// ValidateSchedule checks if the status allows a scheduling attempt without
// performing the transition.
func (s Status) ValidateSchedule() error {
	if s != Pending && s != Unschedulable {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to schedule", s.String()),
		)
	}
	return nil
}

// ValidateCanHaveWorker validates the consistency between status and worker assignment:
// Scheduled jobs must have a worker, all other statuses must not.
func (s Status) ValidateCanHaveWorker(worker bool) error {
	if worker && s != Scheduled {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a worker", s.String()),
		)
	}

	if !worker && s == Scheduled {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no worker", s.String()),
		)
	}

	return nil
}

// Schedule transitions Pending or Unschedulable to Scheduled.
func (s Status) Schedule() (Status, error) {
	if err := s.ValidateSchedule(); err != nil {
		return StatusUnknown, err
	}
	return Scheduled, nil
}

// MarkUnschedulable transitions Pending or Unschedulable to Unschedulable.
func (s Status) MarkUnschedulable() (Status, error) {
	if err := s.ValidateSchedule(); err != nil {
		return StatusUnknown, err
	}
	return Unschedulable, nil
}
