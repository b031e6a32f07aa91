package jobs

import (
	"fmt"
)

// Job is a background task with a start/stop lifecycle.
type Job interface {
	Start() error
	Stop()
}

// JobManager starts and stops the background jobs as a group.
type JobManager struct {
	jobs    map[string]Job
	order   []string
	started []string
}

// NewJobManager creates an empty manager.
func NewJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]Job)}
}

// Add registers a job under name. Jobs start in the order they were added.
func (jm *JobManager) Add(name string, job Job) {
	if _, ok := jm.jobs[name]; !ok {
		jm.order = append(jm.order, name)
	}
	jm.jobs[name] = job
}

// StartAll starts every job. When one fails the jobs already started are
// stopped and the error names the failing job.
func (jm *JobManager) StartAll() error {
	for _, name := range jm.order {
		if err := jm.jobs[name].Start(); err != nil {
			jm.StopAll()
			return fmt.Errorf("failed to start %s job: %w", name, err)
		}
		jm.started = append(jm.started, name)
	}
	return nil
}

// StopAll stops the started jobs in reverse start order.
func (jm *JobManager) StopAll() {
	for i := len(jm.started) - 1; i >= 0; i-- {
		jm.jobs[jm.started[i]].Stop()
	}
	jm.started = nil
}
