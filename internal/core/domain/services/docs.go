// Package services implements the job assignment engine.
//
// The pipeline for one job is
//
//	CandidateGenerator → ConstraintFilter → CandidateRanker → ScheduleTimeCalculator
//
// orchestrated by JobScheduler, which never returns an error: every failure is
// reported as an infeasible scheduling.Result. BatchScheduler runs the single job
// path over many jobs in priority order, threading each assignment into the
// workload of later decisions. ScheduleOptimizer implementations refine a batch
// afterwards.
//
// TravelEstimator is the only component that talks to the outside world. It
// calls the routing provider once under a timeout and falls back to a local
// Haversine estimate on any failure.
package services
