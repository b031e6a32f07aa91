package services

import (
	"context"
	"sort"
	"time"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/workforce"
)

// UnknownAvailabilityScore is returned for workers without availability windows.
const UnknownAvailabilityScore = 0.5

// AvailabilityScorer rates in [0, 1] how well a worker can serve a job at the
// time it would be performed.
type AvailabilityScorer interface {
	Score(ctx context.Context, request *job.Request, worker *workforce.CapabilityProfile, travelMinutes float64) float64
}

// AvailabilityScorerFunc adapts a function to AvailabilityScorer.
type AvailabilityScorerFunc func(ctx context.Context, request *job.Request, worker *workforce.CapabilityProfile, travelMinutes float64) float64

// Score calls f.
func (f AvailabilityScorerFunc) Score(
	ctx context.Context,
	request *job.Request,
	worker *workforce.CapabilityProfile,
	travelMinutes float64,
) float64 {
	return f(ctx, request, worker, travelMinutes)
}

// ConstantAvailability scores every worker the same.
func ConstantAvailability(score float64) AvailabilityScorer {
	return AvailabilityScorerFunc(func(context.Context, *job.Request, *workforce.CapabilityProfile, float64) float64 {
		return clamp01(score)
	})
}

// WindowAvailabilityScorer checks the service interval against the worker's
// weekly availability windows.
//
// The service interval is the job's preferred window when set, otherwise
// [now + travel + prep, +duration). Each minute of it is credited with the best
// window type covering it: Regular 1.0, Overtime 0.7, OnCall 0.5. Any overlap
// with an Unavailable window scores 0. The coverage ratio is then reduced by
// the share of the worker's daily hours already booked.
type WindowAvailabilityScorer struct {
	clock Clock
}

// NewWindowAvailabilityScorer creates a scorer that derives the service interval
// from clock when the job has no preferred window. A nil clock means the system clock.
func NewWindowAvailabilityScorer(clock Clock) WindowAvailabilityScorer {
	if clock == nil {
		clock = SystemClock{}
	}
	return WindowAvailabilityScorer{clock: clock}
}

func availabilityWeight(kind workforce.AvailabilityType) float64 {
	switch kind {
	case workforce.Regular:
		return 1.0
	case workforce.Overtime:
		return 0.7
	case workforce.OnCall:
		return 0.5
	default:
		return 0
	}
}

// Score returns the weighted coverage of the service interval in [0, 1].
// Profiles without availability windows score 0.5.
func (s WindowAvailabilityScorer) Score(
	_ context.Context,
	request *job.Request,
	worker *workforce.CapabilityProfile,
	travelMinutes float64,
) float64 {
	score := UnknownAvailabilityScore
	if windows := worker.Availability(); len(windows) > 0 {
		start, end := s.serviceInterval(request, travelMinutes)
		score = coverage(windows, start, end)
	}

	if maxDaily := worker.Capacity().MaxDailyHours(); maxDaily > 0 {
		booked := worker.ScheduledHoursToday() / maxDaily
		score *= 1 - clamp01(booked)
	}

	return clamp01(score)
}

func (s WindowAvailabilityScorer) serviceInterval(request *job.Request, travelMinutes float64) (time.Time, time.Time) {
	if w := request.PreferredWindow(); w != nil {
		return w.Start(), w.End()
	}
	start := s.clock.Now().Add(minutes(travelMinutes) + PrepBuffer)
	return start, start.Add(request.EstimatedDuration())
}

// coverage splits [start, end) at midnights and returns the weighted share of
// minutes covered by windows, or 0 when an Unavailable window intersects it.
func coverage(windows []workforce.AvailabilityWindow, start, end time.Time) float64 {
	total := end.Sub(start).Minutes()
	if total <= 0 {
		return 0
	}

	var covered float64
	for dayStart := truncateToDay(start); dayStart.Before(end); dayStart = dayStart.AddDate(0, 0, 1) {
		segFrom := maxTime(start, dayStart).Sub(dayStart).Minutes()
		segTo := minTime(end, dayStart.AddDate(0, 0, 1)).Sub(dayStart).Minutes()
		if segTo <= segFrom {
			continue
		}

		dayCovered, blocked := coverDay(windows, dayStart.Weekday(), int(segFrom), int(segTo))
		if blocked {
			return 0
		}
		covered += dayCovered
	}

	return covered / total
}

// coverDay sweeps the window boundaries inside [from, to) and credits every
// elementary slice with the best weight among the windows covering it.
func coverDay(windows []workforce.AvailabilityWindow, weekday time.Weekday, from, to int) (float64, bool) {
	points := []int{from, to}
	var relevant []workforce.AvailabilityWindow
	for _, w := range windows {
		if w.Weekday() != weekday || w.OverlapMinutes(from, to) == 0 {
			continue
		}
		if w.Type() == workforce.Unavailable {
			return 0, true
		}
		relevant = append(relevant, w)
		points = append(points, max(from, w.StartMinute()), min(to, w.EndMinute()))
	}
	sort.Ints(points)

	var covered float64
	for i := 1; i < len(points); i++ {
		lo, hi := points[i-1], points[i]
		if hi <= lo {
			continue
		}
		best := 0.0
		for _, w := range relevant {
			if w.StartMinute() <= lo && w.EndMinute() >= hi {
				best = max(best, availabilityWeight(w.Type()))
			}
		}
		covered += best * float64(hi-lo)
	}
	return covered, false
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
