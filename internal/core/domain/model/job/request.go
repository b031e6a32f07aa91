package job

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/pkg/guard"
)

const (
	// MinEstimatedDuration is the shortest job the scheduler can place in a window.
	MinEstimatedDuration = time.Second
	// MaxEstimatedDurationHours caps a single job at one year of work.
	MaxEstimatedDurationHours = 24 * 365.0
)

var (
	// ErrRequestIsNotConstructed is returned when a Request was not created via NewRequest.
	ErrRequestIsNotConstructed = errs.NewValueIsRequiredError("job request must be created via NewRequest constructor")
	// ErrRequiredSkillsAreMissing is returned for a request without required skills.
	ErrRequiredSkillsAreMissing = errs.NewValueIsRequiredError("required skills")
)

// Request is an immutable snapshot of a service job as seen by the scheduler.
//
// Invariants:
//   - id and location are constructed values
//   - requiredSkills is non-empty and holds no blank entries
//   - estimatedDurationHours lies in [MinEstimatedDuration, MaxEstimatedDurationHours]
//   - preferredWindow, when present, is a constructed TimeWindow
//   - requiredCertifications holds no blank entries
//
// Example:
//
//	site, _ := kernel.NewLocation(52.52, 13.405)
//	req, err := job.NewRequest(kernel.NewUUID(), site, []string{"electrical"}, job.High, 2,
//	    job.WithDueDate(time.Now().Add(24*time.Hour)))
type Request struct {
	id                     kernel.UUID
	location               kernel.Location
	requiredSkills         []string
	priority               Priority
	dueDate                *time.Time
	estimatedDurationHours float64
	preferredWindow        *TimeWindow
	requiredCertifications []string
	guard                  guard.ConstructorGuard
}

// RequestOption sets an optional attribute of a Request.
type RequestOption func(*Request)

// WithDueDate sets the date the job should be completed by.
func WithDueDate(due time.Time) RequestOption {
	return func(r *Request) {
		r.dueDate = &due
	}
}

// WithPreferredWindow sets the customer's preferred service window.
func WithPreferredWindow(window TimeWindow) RequestOption {
	return func(r *Request) {
		r.preferredWindow = &window
	}
}

// WithRequiredCertifications lists certifications the assigned worker must
// hold at the service time.
func WithRequiredCertifications(ids ...string) RequestOption {
	return func(r *Request) {
		r.requiredCertifications = append(r.requiredCertifications, ids...)
	}
}

// NewRequest validates all attributes and returns the request.
// Every violation is reported in the joined error.
func NewRequest(
	id kernel.UUID,
	location kernel.Location,
	requiredSkills []string,
	priority Priority,
	estimatedDurationHours float64,
	opts ...RequestOption,
) (*Request, error) {
	r := &Request{
		guard: guard.NewConstructorGuard(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := errors.Join(
		r.setID(id),
		r.setLocation(location),
		r.setRequiredSkills(requiredSkills),
		r.setPriority(priority),
		r.setEstimatedDurationHours(estimatedDurationHours),
		r.validatePreferredWindow(),
		r.cleanRequiredCertifications(),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// Validate reports whether the request is usable. A nil request is invalid.
func (r *Request) Validate() error {
	if r == nil {
		return ErrRequestIsNotConstructed
	}
	return r.guard.Validate(ErrRequestIsNotConstructed)
}

// ID returns the job identifier.
func (r *Request) ID() kernel.UUID {
	return r.id
}

// Location returns the job site.
func (r *Request) Location() kernel.Location {
	return r.location
}

// RequiredSkills returns a copy of the required skill identifiers.
func (r *Request) RequiredSkills() []string {
	out := make([]string, len(r.requiredSkills))
	copy(out, r.requiredSkills)
	return out
}

// RequiredCertifications returns a copy of the required certification identifiers.
func (r *Request) RequiredCertifications() []string {
	return append([]string(nil), r.requiredCertifications...)
}

// Priority returns the urgency class used for batch ordering and the priority bonus.
func (r *Request) Priority() Priority {
	return r.priority
}

// DueDate returns the due date, or nil when the job has none.
func (r *Request) DueDate() *time.Time {
	if r.dueDate == nil {
		return nil
	}
	due := *r.dueDate
	return &due
}

// EstimatedDurationHours returns the expected time on site. It is at least
// MinEstimatedDuration and at most MaxEstimatedDurationHours.
func (r *Request) EstimatedDurationHours() float64 {
	return r.estimatedDurationHours
}

// EstimatedDuration converts EstimatedDurationHours to a time.Duration, rounded
// to the nearest nanosecond.
func (r *Request) EstimatedDuration() time.Duration {
	return hoursToDuration(r.estimatedDurationHours)
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(math.Round(hours * float64(time.Hour)))
}

// PreferredWindow returns the preferred window, or nil when unset.
func (r *Request) PreferredWindow() *TimeWindow {
	if r.preferredWindow == nil {
		return nil
	}
	w := *r.preferredWindow
	return &w
}

// HoursUntilDue returns the hours between now and the due date. The second result
// is false when the job has no due date.
func (r *Request) HoursUntilDue(now time.Time) (float64, bool) {
	if r.dueDate == nil {
		return 0, false
	}
	return r.dueDate.Sub(now).Hours(), true
}

func (r *Request) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Request) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	r.location = location
	return nil
}

func (r *Request) setRequiredSkills(skills []string) error {
	if len(skills) == 0 {
		return ErrRequiredSkillsAreMissing
	}

	cleaned := make([]string, 0, len(skills))
	for i, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			return errs.NewValueIsInvalidErrorWithCause(
				"required skills are invalid", fmt.Errorf("skill at index %d is blank", i))
		}
		cleaned = append(cleaned, s)
	}

	r.requiredSkills = cleaned
	return nil
}

func (r *Request) setPriority(priority Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	r.priority = priority
	return nil
}

func (r *Request) setEstimatedDurationHours(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"estimated duration is invalid", fmt.Errorf("%v is not greater than 0", hours))
	}
	if hours > MaxEstimatedDurationHours {
		return errs.NewValueIsOutOfRangeErrorWithCause(
			"estimated duration hours", hours, 0, MaxEstimatedDurationHours,
			errors.New("estimated duration is invalid"))
	}
	if hoursToDuration(hours) < MinEstimatedDuration {
		return errs.NewValueIsInvalidErrorWithCause(
			"estimated duration is invalid", fmt.Errorf("%v hours is shorter than %s", hours, MinEstimatedDuration))
	}
	r.estimatedDurationHours = hours
	return nil
}

func (r *Request) cleanRequiredCertifications() error {
	if len(r.requiredCertifications) == 0 {
		r.requiredCertifications = nil
		return nil
	}

	cleaned := make([]string, 0, len(r.requiredCertifications))
	for i, c := range r.requiredCertifications {
		c = strings.TrimSpace(c)
		if c == "" {
			return errs.NewValueIsInvalidErrorWithCause(
				"required certifications are invalid", fmt.Errorf("certification at index %d is blank", i))
		}
		cleaned = append(cleaned, c)
	}

	r.requiredCertifications = cleaned
	return nil
}

func (r *Request) validatePreferredWindow() error {
	if r.preferredWindow == nil {
		return nil
	}
	return r.preferredWindow.Validate()
}
