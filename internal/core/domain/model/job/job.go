package job

import (
	"errors"
	"time"

	"fieldservice/internal/core/domain/model/kernel"
)

// ErrJobIsNotConstructed is returned when a Job was not created via NewJob or RestoreJob.
var ErrJobIsNotConstructed = errors.New("Job must be created via NewJob constructor")

// Job is the persisted aggregate around a Request. It records the outcome of
// scheduling: the assigned worker and window once Scheduled.
//
// Invariants:
//   - request is a valid Request
//   - assignedWorker is set if and only if status is Scheduled
type Job struct {
	request        *Request
	status         Status
	assignedWorker *kernel.UUID
	scheduledStart *time.Time
	scheduledEnd   *time.Time
	isConstructed  bool
}

// NewJob wraps a validated request into a Pending job.
func NewJob(request *Request) (*Job, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	return &Job{
		request:       request,
		status:        Pending,
		isConstructed: true,
	}, nil
}

// RestoreJob rebuilds a Job from persistence, checking status/worker consistency.
func RestoreJob(
	request *Request,
	status Status,
	assignedWorker *kernel.UUID,
	scheduledStart, scheduledEnd *time.Time,
) (*Job, error) {
	if err := errors.Join(request.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	if err := status.ValidateCanHaveWorker(assignedWorker != nil); err != nil {
		return nil, err
	}

	return &Job{
		request:        request,
		status:         status,
		assignedWorker: assignedWorker,
		scheduledStart: scheduledStart,
		scheduledEnd:   scheduledEnd,
		isConstructed:  true,
	}, nil
}

// Validate ensures the Job was properly constructed.
func (j *Job) Validate() error {
	if j == nil || !j.isConstructed {
		return ErrJobIsNotConstructed
	}
	return nil
}

// ID returns the identifier of the underlying request.
func (j *Job) ID() kernel.UUID {
	return j.request.ID()
}

// Request returns the immutable job request the aggregate was built from.
func (j *Job) Request() *Request {
	return j.request
}

// Status returns the lifecycle status. A new job is Pending.
func (j *Job) Status() Status {
	return j.status
}

// AssignedWorker returns the worker ID, or nil unless the job is Scheduled.
func (j *Job) AssignedWorker() *kernel.UUID {
	return j.assignedWorker
}

// ScheduledStart returns the start of the assigned window, or nil unless the job is Scheduled.
func (j *Job) ScheduledStart() *time.Time {
	return j.scheduledStart
}

// ScheduledEnd returns the end of the assigned window, or nil unless the job is Scheduled.
func (j *Job) ScheduledEnd() *time.Time {
	return j.scheduledEnd
}

// Schedule assigns the job to a worker for the given window.
func (j *Job) Schedule(workerID kernel.UUID, window TimeWindow) error {
	if err := errors.Join(workerID.Validate(), window.Validate()); err != nil {
		return err
	}

	newStatus, err := j.status.Schedule()
	if err != nil {
		return err
	}

	start, end := window.Start(), window.End()
	j.status = newStatus
	j.assignedWorker = &workerID
	j.scheduledStart = &start
	j.scheduledEnd = &end
	return nil
}

// MarkUnschedulable records a failed scheduling attempt.
func (j *Job) MarkUnschedulable() error {
	newStatus, err := j.status.MarkUnschedulable()
	if err != nil {
		return err
	}

	j.status = newStatus
	return nil
}
