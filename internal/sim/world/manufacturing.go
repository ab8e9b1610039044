package world

import (
	"fmt"
	"sort"

	"voidrift.gg/internal/protocol"
)

// Job is one running manufacturing run at the station. Materials are paid
// up front from the pilot's hold; the output lands back in the hold when
// the timer elapses and there is room for it.
type Job struct {
	ID          string `json:"id"`
	BlueprintID string `json:"blueprint_id"`
	StartTick   uint64 `json:"start_tick"`
	DoneTick    uint64 `json:"done_tick"`
}

func (w *World) jobsSorted() []*Job {
	ids := make([]string, 0, len(w.jobs))
	for id := range w.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Job, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.jobs[id])
	}
	return out
}

// ownedBlueprints lists the pilot's blueprint set in id order.
func (w *World) ownedBlueprints() []string {
	ids := make([]string, 0, len(w.blueprints))
	for id := range w.blueprints {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StartJob consumes the blueprint's materials from the pilot's hold and
// queues the run. The pilot must own the blueprint; material checks are
// all-or-nothing: a partial hold pays nothing.
func (w *World) StartJob(s *Ship, blueprintID string) error {
	bp, ok := w.cats.Blueprints.ByID[blueprintID]
	if !ok {
		return ErrNoTarget
	}
	if !w.blueprints[blueprintID] {
		return ErrNoTarget
	}
	if len(w.jobs) >= w.tune.Manufacturing.MaxJobs {
		return ErrCapacityExceeded
	}
	for _, m := range bp.Materials {
		if s.Cargo[m.Item] < m.Count {
			return ErrCapacityExceeded
		}
	}
	for _, m := range bp.Materials {
		s.RemoveCargo(m.Item, m.Count)
	}
	now := w.tick.Load()
	j := &Job{
		ID:          fmt.Sprintf("J%06d", w.nextJobNum.Add(1)),
		BlueprintID: blueprintID,
		StartTick:   now,
		DoneTick:    now + uint64(bp.TimeTicks),
	}
	w.jobs[j.ID] = j
	w.emit(protocol.JobStartedEvent{Tick: now, JobID: j.ID, BlueprintID: blueprintID})
	return nil
}

// CancelJob refunds a fraction of the materials, bounded by hold space.
func (w *World) CancelJob(s *Ship, jobID string) error {
	j, ok := w.jobs[jobID]
	if !ok {
		return ErrNoTarget
	}
	bp, ok := w.cats.Blueprints.ByID[j.BlueprintID]
	if ok {
		frac := w.tune.Manufacturing.CancelRefundFrac
		for _, m := range bp.Materials {
			back := m.Count * frac
			space := s.CargoCapacity - s.CargoUsed()
			if back > space {
				back = space
			}
			if back > 0 {
				s.Cargo[m.Item] += back
			}
		}
	}
	delete(w.jobs, jobID)
	w.emit(protocol.JobCanceledEvent{Tick: w.tick.Load(), JobID: jobID})
	return nil
}

// stepJobs completes due runs. A run whose output does not fit stays
// queued until the pilot makes room; nothing is lost.
func (w *World) stepJobs() {
	now := w.tick.Load()
	p := w.liveShip(w.playerID)
	for _, j := range w.jobsSorted() {
		if now < j.DoneTick {
			continue
		}
		bp, ok := w.cats.Blueprints.ByID[j.BlueprintID]
		if !ok {
			delete(w.jobs, j.ID)
			continue
		}
		if p == nil || p.AddCargo(bp.Output, float64(bp.Count)) != nil {
			continue
		}
		delete(w.jobs, j.ID)
		w.emit(protocol.JobCompletedEvent{Tick: now, JobID: j.ID, Output: bp.Output, Count: bp.Count})
		w.emit(protocol.CargoUpdatedEvent{Tick: now, ShipID: p.ID, Item: bp.Output, Delta: float64(bp.Count), Used: p.CargoUsed()})
	}
}
