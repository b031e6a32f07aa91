package scheduling

import (
	"fmt"
	"math"
	"strings"

	"fieldservice/internal/pkg/errs"
)

// ConstraintType names a hard cutoff rule.
//
// MaxTravelTime, MinSkillScore and MaxWorkload are supplied by callers.
// The capacity kinds are derived from each worker's own WorkloadCapacity and
// may also be supplied as pool-wide limits. RequiredCertification comes from
// the job request and cannot be supplied as a threshold.
type ConstraintType int

const (
	ConstraintUnknown ConstraintType = iota
	MaxTravelTime
	MinSkillScore
	MaxWorkload
	MaxConcurrentJobs
	MaxDailyHours
	MaxTravelDistance
	MaxWeeklyHours
	RequiredCertification
)

func getConstraintNames() map[ConstraintType]string {
	//nolint:exhaustive // ConstraintUnknown is intentionally excluded as it's invalid
	return map[ConstraintType]string{
		MaxTravelTime:         "max_travel_time",
		MinSkillScore:         "min_skill_score",
		MaxWorkload:           "max_workload",
		MaxConcurrentJobs:     "max_concurrent_jobs",
		MaxDailyHours:         "max_daily_hours",
		MaxTravelDistance:     "max_travel_distance",
		MaxWeeklyHours:        "max_weekly_hours",
		RequiredCertification: "required_certification",
	}
}

func getConstraintDisplayNames() map[ConstraintType]string {
	//nolint:exhaustive // ConstraintUnknown is intentionally excluded as it's invalid
	return map[ConstraintType]string{
		MaxTravelTime:         "Maximum travel time (minutes)",
		MinSkillScore:         "Minimum skill match",
		MaxWorkload:           "Maximum active jobs",
		MaxConcurrentJobs:     "Worker concurrent job limit",
		MaxDailyHours:         "Worker daily hours limit",
		MaxTravelDistance:     "Worker travel distance limit",
		MaxWeeklyHours:        "Worker weekly hours limit",
		RequiredCertification: "Required certification",
	}
}

// ParseConstraintType accepts the wire names, e.g. "max_travel_time".
func ParseConstraintType(s string) (ConstraintType, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for t, name := range getConstraintNames() {
		if name == needle {
			return t, nil
		}
	}
	return ConstraintUnknown, errs.NewValueIsInvalidErrorWithCause(
		"constraint type is invalid", fmt.Errorf("%q is not a known constraint type", s))
}

// Validate rejects ConstraintUnknown and values outside the enumeration.
func (t ConstraintType) Validate() error {
	if _, ok := getConstraintNames()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"constraint type is invalid", fmt.Errorf("%d is not a valid constraint type", t))
	}
	return nil
}

// String returns the wire name, e.g. "max_travel_time", or "unknown".
func (t ConstraintType) String() string {
	if name, ok := getConstraintNames()[t]; ok {
		return name
	}
	return "unknown"
}

// DisplayName returns a human-readable label, or "Unknown".
func (t ConstraintType) DisplayName() string {
	if name, ok := getConstraintDisplayNames()[t]; ok {
		return name
	}
	return "Unknown"
}

// Constraint is a hard cutoff with a numeric threshold.
type Constraint struct {
	kind  ConstraintType
	value float64
}

// NewConstraint validates the type and requires a finite, non-negative threshold.
func NewConstraint(kind ConstraintType, value float64) (Constraint, error) {
	if err := kind.Validate(); err != nil {
		return Constraint{}, err
	}
	if kind == RequiredCertification {
		return Constraint{}, errs.NewValueIsInvalidErrorWithCause(
			"constraint type is invalid", fmt.Errorf("%s is derived from the job and has no threshold", kind))
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return Constraint{}, errs.NewValueIsOutOfRangeError(kind.String(), value, 0, math.MaxFloat64)
	}
	return Constraint{kind: kind, value: value}, nil
}

// Type returns the rule kind.
func (c Constraint) Type() ConstraintType {
	return c.kind
}

// Value returns the threshold the rule compares against.
func (c Constraint) Value() float64 {
	return c.value
}

// String formats the constraint as "name=value".
func (c Constraint) String() string {
	return fmt.Sprintf("%s=%g", c.kind, c.value)
}
