// Package scheduling holds the values exchanged with the assignment engine:
// per-call Candidates, hard Constraints, ranking Objectives and the Result
// returned for every job.
//
// Result construction enforces the feasibility invariant: a result carries an
// assigned worker if and only if it is feasible, and feasible results always
// have a confidence in [0, 1] and an end strictly after the start.
package scheduling
