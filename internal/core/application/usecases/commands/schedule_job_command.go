package commands

import (
	"errors"

	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/pkg/guard"
)

var ErrScheduleJobCommandIsNotConstructed = errors.New(
	"ScheduleJobCommand must be created via NewScheduleJobCommand constructor",
)

// ScheduleJobCommand schedules one stored job against every stored worker.
//
// Example:
//
//	cmd, err := NewScheduleJobCommand(jobID, constraints, scheduling.DefaultObjectives())
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type ScheduleJobCommand struct {
	jobID       kernel.UUID
	constraints []scheduling.Constraint
	objectives  scheduling.Objectives
	guard       guard.ConstructorGuard
}

// NewScheduleJobCommand validates the job id and objectives. Zero objectives
// mean scheduling.DefaultObjectives.
func NewScheduleJobCommand(
	jobID kernel.UUID,
	constraints []scheduling.Constraint,
	objectives scheduling.Objectives,
) (ScheduleJobCommand, error) {
	if err := jobID.Validate(); err != nil {
		return ScheduleJobCommand{}, err
	}
	if !objectives.IsZero() {
		if err := objectives.Validate(); err != nil {
			return ScheduleJobCommand{}, err
		}
	}

	return ScheduleJobCommand{
		jobID:       jobID,
		constraints: append([]scheduling.Constraint(nil), constraints...),
		objectives:  objectives,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ScheduleJobCommand) Validate() error {
	return c.guard.Validate(ErrScheduleJobCommandIsNotConstructed)
}

// JobID returns the persisted job to schedule.
func (c ScheduleJobCommand) JobID() kernel.UUID {
	return c.jobID
}

// Constraints returns a copy of the hard constraints.
func (c ScheduleJobCommand) Constraints() []scheduling.Constraint {
	return append([]scheduling.Constraint(nil), c.constraints...)
}

// Objectives returns the ranking weights.
func (c ScheduleJobCommand) Objectives() scheduling.Objectives {
	return c.objectives
}
