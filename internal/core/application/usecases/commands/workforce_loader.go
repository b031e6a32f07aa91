package commands

import (
	"context"
	"time"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/model/workforce"
	"fieldservice/internal/core/ports"
)

// loadWorkforce returns every worker profile with the jobs already booked for
// the UTC day of now added on top of the profile's own workload.
func loadWorkforce(
	ctx context.Context,
	workers ports.WorkerRepository,
	jobs ports.JobRepository,
	now time.Time,
) ([]*workforce.CapabilityProfile, error) {
	profiles, err := workers.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	utc := now.UTC()
	dayStart := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	loads, err := jobs.GetScheduledLoad(ctx, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	out := make([]*workforce.CapabilityProfile, 0, len(profiles))
	for _, p := range profiles {
		load, ok := loads[p.WorkerID()]
		if !ok {
			out = append(out, p)
			continue
		}
		loaded, err := p.WithWorkload(p.CurrentWorkload()+load.Jobs, p.ScheduledHoursToday()+load.Hours)
		if err != nil {
			return nil, err
		}
		out = append(out, loaded)
	}
	return out, nil
}

// applyResult moves the job to Scheduled or Unschedulable according to result.
func applyResult(j *job.Job, result scheduling.Result) error {
	workerID := result.AssignedWorkerID()
	if workerID == nil {
		return j.MarkUnschedulable()
	}

	window, err := job.NewTimeWindow(*result.ScheduledStart(), *result.ScheduledEnd())
	if err != nil {
		return err
	}
	return j.Schedule(*workerID, window)
}
