// Package payload is the wire format shared by the HTTP API and the planner
// CLI. Types carry both json and yaml tags; To* functions turn them into
// constructor-validated domain values.
package payload

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/model/workforce"
	"fieldservice/internal/core/domain/services"
	"fieldservice/internal/pkg/errs"
)

// Location is a WGS84 coordinate pair in degrees.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// TimeWindow is a half-open [start, end) interval in RFC 3339.
type TimeWindow struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// JobRequest is the wire form of a job.Request. Priority takes the wire names, e.g. "urgent".
type JobRequest struct {
	ID                     string      `json:"id" yaml:"id"`
	Location               Location    `json:"location" yaml:"location"`
	RequiredSkills         []string    `json:"required_skills" yaml:"required_skills"`
	Priority               string      `json:"priority" yaml:"priority"`
	DueDate                *time.Time  `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	EstimatedDurationHours float64     `json:"estimated_duration_hours" yaml:"estimated_duration_hours"`
	PreferredWindow        *TimeWindow `json:"preferred_window,omitempty" yaml:"preferred_window,omitempty"`
	RequiredCertifications []string    `json:"required_certifications,omitempty" yaml:"required_certifications,omitempty"`
}

// Skill is the wire form of a workforce.Skill. Level takes the wire names, e.g. "expert".
type Skill struct {
	ID                string   `json:"id" yaml:"id"`
	Category          string   `json:"category" yaml:"category"`
	Level             string   `json:"level" yaml:"level"`
	YearsOfExperience float64  `json:"years_of_experience" yaml:"years_of_experience"`
	ProficiencyScore  *float64 `json:"proficiency_score,omitempty" yaml:"proficiency_score,omitempty"`
}

// Certification is the wire form of a workforce.Certification. ValidUntil may be omitted.
type Certification struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	ValidFrom  time.Time  `json:"valid_from" yaml:"valid_from"`
	ValidUntil *time.Time `json:"valid_until,omitempty" yaml:"valid_until,omitempty"`
}

// AvailabilityWindow uses lower-case weekday names and HH:MM times; "24:00"
// is accepted as an end of day.
type AvailabilityWindow struct {
	Weekday string `json:"weekday" yaml:"weekday"`
	Start   string `json:"start" yaml:"start"`
	End     string `json:"end" yaml:"end"`
	Type    string `json:"type" yaml:"type"`
}

// Capacity limits; zero disables a limit.
type Capacity struct {
	MaxConcurrentJobs   int     `json:"max_concurrent_jobs" yaml:"max_concurrent_jobs"`
	MaxDailyHours       float64 `json:"max_daily_hours" yaml:"max_daily_hours"`
	MaxWeeklyHours      float64 `json:"max_weekly_hours" yaml:"max_weekly_hours"`
	MaxTravelDistanceKm float64 `json:"max_travel_distance_km" yaml:"max_travel_distance_km"`
}

// Worker is the wire form of a workforce.CapabilityProfile.
type Worker struct {
	WorkerID             string               `json:"worker_id" yaml:"worker_id"`
	DisplayName          string               `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	HomeBase             Location             `json:"home_base" yaml:"home_base"`
	Skills               []Skill              `json:"skills" yaml:"skills"`
	Certifications       []Certification      `json:"certifications,omitempty" yaml:"certifications,omitempty"`
	Availability         []AvailabilityWindow `json:"availability,omitempty" yaml:"availability,omitempty"`
	Capacity             *Capacity            `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	CostPerHour          float64              `json:"cost_per_hour,omitempty" yaml:"cost_per_hour,omitempty"`
	EfficiencyMultiplier *float64             `json:"efficiency_multiplier,omitempty" yaml:"efficiency_multiplier,omitempty"`
	CurrentWorkload      int                  `json:"current_workload" yaml:"current_workload"`
	ScheduledHoursToday  float64              `json:"scheduled_hours_today" yaml:"scheduled_hours_today"`
}

// Constraint is a hard cutoff, e.g. {type: max_travel_time, value: 60}.
type Constraint struct {
	Type  string  `json:"type" yaml:"type"`
	Value float64 `json:"value" yaml:"value"`
}

// ScheduleJobRequest is the body of a stateless single-job scheduling call.
type ScheduleJobRequest struct {
	Job         JobRequest             `json:"job" yaml:"job"`
	Workers     []Worker               `json:"workers" yaml:"workers"`
	Constraints []Constraint           `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Objectives  *scheduling.Objectives `json:"objectives,omitempty" yaml:"objectives,omitempty"`
}

// ScheduleBatchRequest is the body of a stateless batch call and the planner input file.
type ScheduleBatchRequest struct {
	Jobs        []JobRequest           `json:"jobs" yaml:"jobs"`
	Workers     []Worker               `json:"workers" yaml:"workers"`
	Constraints []Constraint           `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Objectives  *scheduling.Objectives `json:"objectives,omitempty" yaml:"objectives,omitempty"`
	Optimize    bool                   `json:"optimize,omitempty" yaml:"optimize,omitempty"`
}

// SchedulePendingRequest is the optional body of the persisted batch call.
type SchedulePendingRequest struct {
	Constraints []Constraint           `json:"constraints,omitempty"`
	Objectives  *scheduling.Objectives `json:"objectives,omitempty"`
	Optimize    *bool                  `json:"optimize,omitempty"`
}

// ScheduleStoredJobRequest is the optional body of the persisted single-job call.
type ScheduleStoredJobRequest struct {
	Constraints []Constraint           `json:"constraints,omitempty"`
	Objectives  *scheduling.Objectives `json:"objectives,omitempty"`
}

// Result is the wire form of a scheduling.Result.
type Result struct {
	JobID               string     `json:"job_id"`
	Feasible            bool       `json:"feasible"`
	AssignedWorkerID    *string    `json:"assigned_worker_id,omitempty"`
	ScheduledStart      *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd        *time.Time `json:"scheduled_end,omitempty"`
	TravelMinutes       *float64   `json:"travel_minutes,omitempty"`
	Confidence          *float64   `json:"confidence,omitempty"`
	Alternatives        []string   `json:"alternatives"`
	Notes               string     `json:"notes,omitempty"`
	ConstraintsViolated []string   `json:"constraints_violated"`
	Failure             string     `json:"failure"`
}

// RouteRequest asks for a visiting order of waypoints between start and end.
type RouteRequest struct {
	Start     Location   `json:"start" yaml:"start"`
	End       Location   `json:"end" yaml:"end"`
	Waypoints []Location `json:"waypoints" yaml:"waypoints"`
}

// RouteLeg is one hop of a Route.
type RouteLeg struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// Route is the wire form of a services.RouteEstimate.
type Route struct {
	Ordering             []int      `json:"ordering"`
	Legs                 []RouteLeg `json:"legs"`
	TotalDistanceKm      float64    `json:"total_distance_km"`
	TotalDurationMinutes float64    `json:"total_duration_minutes"`
	Source               string     `json:"source"`
}

// BatchInput is a converted ScheduleBatchRequest. Jobs that failed conversion
// are already turned into validation results.
type BatchInput struct {
	Requests    []*job.Request
	Invalid     []scheduling.Result
	Workers     []*workforce.CapabilityProfile
	Constraints []scheduling.Constraint
	Objectives  scheduling.Objectives
}

// ToBatchInput converts a batch. Invalid workers, constraints or objectives
// fail the whole batch; invalid jobs do not.
func ToBatchInput(req ScheduleBatchRequest) (BatchInput, error) {
	var in BatchInput
	var err error
	if in.Workers, err = ToProfiles(req.Workers); err != nil {
		return BatchInput{}, err
	}
	if in.Constraints, err = ToConstraints(req.Constraints); err != nil {
		return BatchInput{}, err
	}
	if in.Objectives, err = ToObjectives(req.Objectives); err != nil {
		return BatchInput{}, err
	}

	in.Requests = make([]*job.Request, 0, len(req.Jobs))
	for _, j := range req.Jobs {
		id, request, convErr := ToRequest(j)
		if convErr != nil {
			in.Invalid = append(in.Invalid, scheduling.InvalidJobResult(id, convErr))
			continue
		}
		in.Requests = append(in.Requests, request)
	}
	return in, nil
}

// ToLocation validates the coordinate ranges.
func ToLocation(l Location) (kernel.Location, error) {
	return kernel.NewLocation(l.Latitude, l.Longitude)
}

// ToRequest converts a job. The returned id is the parsed job id, or the zero
// UUID when the id itself is malformed, so callers can still report the failure.
func ToRequest(j JobRequest) (kernel.UUID, *job.Request, error) {
	id, err := kernel.UUIDFromString(j.ID)
	if err != nil {
		return kernel.UUID{}, nil, errs.NewValueIsInvalidErrorWithCause("job id", err)
	}
	location, err := ToLocation(j.Location)
	if err != nil {
		return id, nil, err
	}
	priority, err := job.ParsePriority(j.Priority)
	if err != nil {
		return id, nil, err
	}

	var opts []job.RequestOption
	if j.DueDate != nil {
		opts = append(opts, job.WithDueDate(*j.DueDate))
	}
	if j.PreferredWindow != nil {
		window, windowErr := job.NewTimeWindow(j.PreferredWindow.Start, j.PreferredWindow.End)
		if windowErr != nil {
			return id, nil, windowErr
		}
		opts = append(opts, job.WithPreferredWindow(window))
	}
	if len(j.RequiredCertifications) > 0 {
		opts = append(opts, job.WithRequiredCertifications(j.RequiredCertifications...))
	}

	request, err := job.NewRequest(id, location, j.RequiredSkills, priority, j.EstimatedDurationHours, opts...)
	if err != nil {
		return id, nil, err
	}
	return id, request, nil
}

// ToProfile converts a worker, its skills, certifications, availability and
// capacity. Errors name the offending field, e.g. "skills[1]".
func ToProfile(w Worker) (*workforce.CapabilityProfile, error) {
	id, err := kernel.UUIDFromString(w.WorkerID)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("worker id", err)
	}
	home, err := ToLocation(w.HomeBase)
	if err != nil {
		return nil, err
	}

	skills := make([]workforce.Skill, 0, len(w.Skills))
	for i, s := range w.Skills {
		skill, skillErr := toSkill(s)
		if skillErr != nil {
			return nil, fmt.Errorf("skills[%d]: %w", i, skillErr)
		}
		skills = append(skills, skill)
	}

	certs := make([]workforce.Certification, 0, len(w.Certifications))
	for i, c := range w.Certifications {
		cert, certErr := workforce.NewCertification(c.ID, c.Name, c.ValidFrom, c.ValidUntil)
		if certErr != nil {
			return nil, fmt.Errorf("certifications[%d]: %w", i, certErr)
		}
		certs = append(certs, cert)
	}

	windows := make([]workforce.AvailabilityWindow, 0, len(w.Availability))
	for i, a := range w.Availability {
		window, windowErr := toAvailability(a)
		if windowErr != nil {
			return nil, fmt.Errorf("availability[%d]: %w", i, windowErr)
		}
		windows = append(windows, window)
	}

	opts := []workforce.ProfileOption{
		workforce.WithDisplayName(w.DisplayName),
		workforce.WithSkills(skills...),
		workforce.WithCertifications(certs...),
		workforce.WithAvailability(windows...),
		workforce.WithCostPerHour(w.CostPerHour),
		workforce.WithCurrentLoad(w.CurrentWorkload, w.ScheduledHoursToday),
	}
	if w.Capacity != nil {
		capacity, capErr := workforce.NewWorkloadCapacity(
			w.Capacity.MaxConcurrentJobs,
			w.Capacity.MaxDailyHours,
			w.Capacity.MaxWeeklyHours,
			w.Capacity.MaxTravelDistanceKm,
		)
		if capErr != nil {
			return nil, capErr
		}
		opts = append(opts, workforce.WithCapacity(capacity))
	}
	if w.EfficiencyMultiplier != nil {
		opts = append(opts, workforce.WithEfficiency(*w.EfficiencyMultiplier))
	}

	return workforce.NewCapabilityProfile(id, home, opts...)
}

// ToProfiles converts every worker, failing on the first invalid one.
func ToProfiles(workers []Worker) ([]*workforce.CapabilityProfile, error) {
	out := make([]*workforce.CapabilityProfile, 0, len(workers))
	for i, w := range workers {
		p, err := ToProfile(w)
		if err != nil {
			return nil, fmt.Errorf("workers[%d]: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ToConstraints converts constraints in order. Errors name the index, e.g. "constraints[0]".
func ToConstraints(constraints []Constraint) ([]scheduling.Constraint, error) {
	out := make([]scheduling.Constraint, 0, len(constraints))
	for i, c := range constraints {
		kind, err := scheduling.ParseConstraintType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("constraints[%d]: %w", i, err)
		}
		con, err := scheduling.NewConstraint(kind, c.Value)
		if err != nil {
			return nil, fmt.Errorf("constraints[%d]: %w", i, err)
		}
		out = append(out, con)
	}
	return out, nil
}

// ToObjectives treats a missing block as defaults and validates a present one.
func ToObjectives(o *scheduling.Objectives) (scheduling.Objectives, error) {
	if o == nil || o.IsZero() {
		return scheduling.DefaultObjectives(), nil
	}
	if err := o.Validate(); err != nil {
		return scheduling.Objectives{}, err
	}
	return *o, nil
}

// FromResult converts a result to its wire form. Slices are never nil so they encode as [].
func FromResult(r scheduling.Result) Result {
	out := Result{
		JobID:               r.JobID().String(),
		Feasible:            r.IsFeasible(),
		ScheduledStart:      r.ScheduledStart(),
		ScheduledEnd:        r.ScheduledEnd(),
		TravelMinutes:       r.TravelMinutes(),
		Confidence:          r.Confidence(),
		Alternatives:        make([]string, 0, len(r.Alternatives())),
		Notes:               r.Notes(),
		ConstraintsViolated: append([]string{}, r.ConstraintsViolated()...),
		Failure:             r.Failure().String(),
	}
	if id := r.AssignedWorkerID(); id != nil {
		s := id.String()
		out.AssignedWorkerID = &s
	}
	for _, alt := range r.Alternatives() {
		out.Alternatives = append(out.Alternatives, alt.String())
	}
	return out
}

// FromResults converts results, keeping their order.
func FromResults(results []scheduling.Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		out = append(out, FromResult(r))
	}
	return out
}

// ToRoute converts the route endpoints and waypoints.
func ToRoute(r RouteRequest) (kernel.Location, kernel.Location, []kernel.Location, error) {
	start, err := ToLocation(r.Start)
	if err != nil {
		return kernel.Location{}, kernel.Location{}, nil, fmt.Errorf("start: %w", err)
	}
	end, err := ToLocation(r.End)
	if err != nil {
		return kernel.Location{}, kernel.Location{}, nil, fmt.Errorf("end: %w", err)
	}
	waypoints := make([]kernel.Location, 0, len(r.Waypoints))
	for i, w := range r.Waypoints {
		l, wErr := ToLocation(w)
		if wErr != nil {
			return kernel.Location{}, kernel.Location{}, nil, fmt.Errorf("waypoints[%d]: %w", i, wErr)
		}
		waypoints = append(waypoints, l)
	}
	return start, end, waypoints, nil
}

// FromRoute converts a route estimate to its wire form.
func FromRoute(r services.RouteEstimate) Route {
	out := Route{
		Ordering:             append([]int{}, r.Ordering...),
		Legs:                 make([]RouteLeg, 0, len(r.Legs)),
		TotalDistanceKm:      r.TotalDistanceKm,
		TotalDurationMinutes: r.TotalDurationMinutes,
		Source:               string(r.Source),
	}
	for _, leg := range r.Legs {
		out.Legs = append(out.Legs, RouteLeg{DistanceKm: leg.DistanceKm, DurationMinutes: leg.DurationMinutes})
	}
	return out
}

func toSkill(s Skill) (workforce.Skill, error) {
	level, err := workforce.ParseProficiencyLevel(s.Level)
	if err != nil {
		return workforce.Skill{}, err
	}
	skill, err := workforce.NewSkill(s.ID, s.Category, level, s.YearsOfExperience)
	if err != nil {
		return workforce.Skill{}, err
	}
	if s.ProficiencyScore != nil {
		return skill.WithProficiencyScore(*s.ProficiencyScore)
	}
	return skill, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func toAvailability(a AvailabilityWindow) (workforce.AvailabilityWindow, error) {
	weekday, ok := weekdays[strings.ToLower(strings.TrimSpace(a.Weekday))]
	if !ok {
		return workforce.AvailabilityWindow{}, errs.NewValueIsInvalidErrorWithCause(
			"weekday", fmt.Errorf("%q is not a weekday name", a.Weekday))
	}
	start, err := ParseClock(a.Start)
	if err != nil {
		return workforce.AvailabilityWindow{}, err
	}
	end, err := ParseClock(a.End)
	if err != nil {
		return workforce.AvailabilityWindow{}, err
	}
	kind, err := workforce.ParseAvailabilityType(a.Type)
	if err != nil {
		return workforce.AvailabilityWindow{}, err
	}
	return workforce.NewAvailabilityWindow(weekday, start, end, kind)
}

// ParseClock turns "HH:MM" into minutes after midnight. "24:00" is 1440.
func ParseClock(s string) (int, error) {
	invalid := func(cause error) (int, error) {
		return 0, errs.NewValueIsInvalidErrorWithCause("time of day", cause)
	}

	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return invalid(fmt.Errorf("%q is not HH:MM", s))
	}
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return invalid(err)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil {
		return invalid(err)
	}
	if hours < 0 || hours > 24 || minutes < 0 || minutes > 59 || (hours == 24 && minutes != 0) {
		return invalid(fmt.Errorf("%q is out of range", s))
	}
	return hours*60 + minutes, nil
}
