package commands

import (
	"errors"

	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/pkg/guard"
)

var ErrSchedulePendingJobsCommandIsNotConstructed = errors.New(
	"SchedulePendingJobsCommand must be created via NewSchedulePendingJobsCommand constructor",
)

// SchedulePendingJobsCommand schedules every Pending or Unschedulable job in
// one batch. Optimize runs the configured ScheduleOptimizer on the batch.
type SchedulePendingJobsCommand struct {
	constraints []scheduling.Constraint
	objectives  scheduling.Objectives
	optimize    bool
	guard       guard.ConstructorGuard
}

// NewSchedulePendingJobsCommand validates the constraints shared by every pending job.
func NewSchedulePendingJobsCommand(
	constraints []scheduling.Constraint,
	objectives scheduling.Objectives,
	optimize bool,
) (SchedulePendingJobsCommand, error) {
	if !objectives.IsZero() {
		if err := objectives.Validate(); err != nil {
			return SchedulePendingJobsCommand{}, err
		}
	}

	return SchedulePendingJobsCommand{
		constraints: append([]scheduling.Constraint(nil), constraints...),
		objectives:  objectives,
		optimize:    optimize,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate checks the constraints.
func (c SchedulePendingJobsCommand) Validate() error {
	return c.guard.Validate(ErrSchedulePendingJobsCommandIsNotConstructed)
}

// Constraints returns a copy of the hard constraints.
func (c SchedulePendingJobsCommand) Constraints() []scheduling.Constraint {
	return append([]scheduling.Constraint(nil), c.constraints...)
}

// Objectives returns the ranking weights.
func (c SchedulePendingJobsCommand) Objectives() scheduling.Objectives {
	return c.objectives
}

// Optimize reports whether the batch is improved by swapping after greedy assignment.
func (c SchedulePendingJobsCommand) Optimize() bool {
	return c.optimize
}
