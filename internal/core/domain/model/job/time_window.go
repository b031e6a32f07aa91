package job

import (
	"fmt"
	"time"

	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/pkg/guard"
)

// ErrTimeWindowIsNotConstructed is returned when a zero TimeWindow is used.
var ErrTimeWindowIsNotConstructed = errs.NewValueIsRequiredError(
	"time window must be created via NewTimeWindow constructor")

// TimeWindow is the interval [start, end) with end strictly after start.
type TimeWindow struct { //nolint:recvcheck //using for validation
	start time.Time
	end   time.Time
	guard guard.ConstructorGuard
}

// NewTimeWindow validates that end is strictly after start.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !end.After(start) {
		return TimeWindow{}, errs.NewValueIsInvalidErrorWithCause(
			"time window is invalid",
			fmt.Errorf("end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)),
		)
	}

	return TimeWindow{start: start, end: end, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the window was built through NewTimeWindow.
func (w TimeWindow) Validate() error {
	return w.guard.Validate(ErrTimeWindowIsNotConstructed)
}

// Start returns the inclusive start of the window.
func (w TimeWindow) Start() time.Time {
	return w.start
}

// End returns the exclusive end of the window. It is always after Start.
func (w TimeWindow) End() time.Time {
	return w.end
}

// Duration returns End minus Start.
func (w TimeWindow) Duration() time.Duration {
	return w.end.Sub(w.start)
}

// Overlaps reports whether the two windows share any instant.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.start.Before(other.end) && other.start.Before(w.end)
}
