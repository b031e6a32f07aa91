// Package jobs provides scheduled background tasks for the scheduling service.
//
// Jobs are cron-based and use github.com/robfig/cron/v3 with the seconds field
// enabled, so both "*/30 * * * * *" and descriptors like "@every 1m" work.
//
// # Available Jobs
//
// BatchSchedulingJob runs SchedulePendingJobsCommand on a schedule so that
// stored jobs waiting for a technician, or left unschedulable by an earlier
// run, are retried against the current workforce.
//
// # Usage
//
//	manager := jobs.NewJobManager()
//	manager.Add("batch scheduling", jobs.NewBatchSchedulingJob(handler, jobs.BatchSchedulingConfig{
//		Schedule: "@every 5m",
//		Optimize: true,
//	}, logger))
//
//	if err := manager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer manager.StopAll()
//
// # Error Handling
//
//   - ErrNoPendingJobs is expected and logged at debug level
//   - Other errors are logged and the next run retries
//   - A failed start stops the jobs already running
package jobs
