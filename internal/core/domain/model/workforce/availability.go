package workforce

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/pkg/guard"
)

// MinutesPerDay bounds the minute-of-day values of an AvailabilityWindow.
const MinutesPerDay = 24 * 60

var ErrAvailabilityWindowIsNotConstructed = errs.NewValueIsRequiredError(
	"availability window must be created via NewAvailabilityWindow constructor")

// AvailabilityType classifies a recurring availability window.
type AvailabilityType int

const (
	AvailabilityUnknown AvailabilityType = iota
	Regular
	Overtime
	OnCall
	Unavailable
)

type availabilityInfo struct {
	wire    string
	display string
}

func getAvailabilityInfo() map[AvailabilityType]availabilityInfo {
	//nolint:exhaustive // AvailabilityUnknown is intentionally excluded as it's invalid
	return map[AvailabilityType]availabilityInfo{
		Regular:     {wire: "regular", display: "Regular Hours"},
		Overtime:    {wire: "overtime", display: "Overtime"},
		OnCall:      {wire: "on_call", display: "On Call"},
		Unavailable: {wire: "unavailable", display: "Unavailable"},
	}
}

// ParseAvailabilityType accepts the wire names, e.g. "regular" or "on_call", ignoring case.
func ParseAvailabilityType(s string) (AvailabilityType, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for t, info := range getAvailabilityInfo() {
		if info.wire == needle {
			return t, nil
		}
	}
	return AvailabilityUnknown, errs.NewValueIsInvalidErrorWithCause(
		"availability type is invalid", fmt.Errorf("%q is not a known availability type", s))
}

// Validate rejects values outside the enumeration.
func (t AvailabilityType) Validate() error {
	if _, ok := getAvailabilityInfo()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"availability type is invalid", fmt.Errorf("%d is not a valid availability type", t))
	}
	return nil
}

// String returns the wire name.
func (t AvailabilityType) String() string {
	if info, ok := getAvailabilityInfo()[t]; ok {
		return info.wire
	}
	return "unknown"
}

// DisplayName returns a human-readable label.
func (t AvailabilityType) DisplayName() string {
	if info, ok := getAvailabilityInfo()[t]; ok {
		return info.display
	}
	return "Unknown"
}

// AvailabilityWindow is a weekly recurring range [start, end) of minutes of a day.
type AvailabilityWindow struct {
	weekday     time.Weekday
	startMinute int
	endMinute   int
	kind        AvailabilityType
	guard       guard.ConstructorGuard
}

// NewAvailabilityWindow validates 0 <= startMinute < endMinute <= 1440.
//
//	// Mondays 08:00-17:00
//	w, err := workforce.NewAvailabilityWindow(time.Monday, 8*60, 17*60, workforce.Regular)
func NewAvailabilityWindow(
	weekday time.Weekday,
	startMinute, endMinute int,
	kind AvailabilityType,
) (AvailabilityWindow, error) {
	var weekdayErr, rangeErr error
	if weekday < time.Sunday || weekday > time.Saturday {
		weekdayErr = errs.NewValueIsOutOfRangeError("weekday", int(weekday), int(time.Sunday), int(time.Saturday))
	}
	if startMinute < 0 || endMinute > MinutesPerDay || endMinute <= startMinute {
		rangeErr = errs.NewValueIsInvalidErrorWithCause(
			"availability window is invalid",
			fmt.Errorf("[%d, %d) is not a range within one day", startMinute, endMinute),
		)
	}

	if err := errors.Join(weekdayErr, rangeErr, kind.Validate()); err != nil {
		return AvailabilityWindow{}, err
	}

	return AvailabilityWindow{
		weekday:     weekday,
		startMinute: startMinute,
		endMinute:   endMinute,
		kind:        kind,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the window was built through NewAvailabilityWindow.
func (w AvailabilityWindow) Validate() error {
	return w.guard.Validate(ErrAvailabilityWindowIsNotConstructed)
}

// Weekday returns the day the window recurs on.
func (w AvailabilityWindow) Weekday() time.Weekday {
	return w.weekday
}

// StartMinute returns the inclusive start as minutes after midnight.
func (w AvailabilityWindow) StartMinute() int {
	return w.startMinute
}

// EndMinute returns the exclusive end as minutes after midnight.
func (w AvailabilityWindow) EndMinute() int {
	return w.endMinute
}

// Type returns how the window counts towards availability.
func (w AvailabilityWindow) Type() AvailabilityType {
	return w.kind
}

// OverlapMinutes returns how many minutes of [fromMinute, toMinute) on the same
// weekday fall inside the window.
func (w AvailabilityWindow) OverlapMinutes(fromMinute, toMinute int) int {
	lo := max(fromMinute, w.startMinute)
	hi := min(toMinute, w.endMinute)
	if hi <= lo {
		return 0
	}
	return hi - lo
}
