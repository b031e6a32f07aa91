package services

import (
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/workforce"
)

type assignedLoad struct {
	jobs  int
	hours float64
}

// workloadLedger tracks assignments made during one scheduling call. It is
// never shared between calls.
type workloadLedger map[kernel.UUID]assignedLoad

func (l workloadLedger) add(workerID kernel.UUID, hours float64) {
	load := l[workerID]
	load.jobs++
	load.hours += hours
	l[workerID] = load
}

func (l workloadLedger) remove(workerID kernel.UUID, hours float64) {
	load, ok := l[workerID]
	if !ok {
		return
	}
	load.jobs--
	load.hours -= hours
	if load.jobs <= 0 {
		delete(l, workerID)
		return
	}
	l[workerID] = load
}

// snapshot returns the workers with ledger load added to their own. Workers
// without ledger entries are returned unchanged; invalid profiles are passed
// through for the generator to skip.
func (l workloadLedger) snapshot(workers []*workforce.CapabilityProfile) []*workforce.CapabilityProfile {
	out := make([]*workforce.CapabilityProfile, 0, len(workers))
	for _, w := range workers {
		if w.Validate() != nil {
			out = append(out, w)
			continue
		}
		load, ok := l[w.WorkerID()]
		if !ok {
			out = append(out, w)
			continue
		}
		updated, err := w.WithWorkload(w.CurrentWorkload()+load.jobs, w.ScheduledHoursToday()+max(0, load.hours))
		if err != nil {
			out = append(out, w)
			continue
		}
		out = append(out, updated)
	}
	return out
}
