// Package job models the service jobs handed to the scheduling engine.
//
// The package includes:
//   - Request: the immutable, constructor validated description of a job
//     (location, required skills, priority, duration, optional due date and
//     preferred window)
//   - Priority: a closed enumeration with scheduling weights
//   - TimeWindow: a half-open interval of wall clock time
//   - Job: the persisted aggregate that tracks a request through its
//     scheduling lifecycle
//   - Status: the state machine behind Job
//
// Key business rules:
//   - A request must carry an identifier, a location and at least one required skill
//   - Estimated duration is strictly positive
//   - A job is scheduled at most once; unschedulable jobs may be retried
package job
