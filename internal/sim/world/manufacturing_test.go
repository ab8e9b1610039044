package world

import "testing"

func TestStartJob_MaterialsAllOrNothing(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")

	if err := w.StartJob(p, "no_such_blueprint"); err != ErrNoTarget {
		t.Fatalf("missing blueprint err = %v", err)
	}

	// Hull plates want 40 veldrite; a partial hold pays nothing.
	p.Cargo["ore_veldrite"] = 30
	if err := w.StartJob(p, "bp_hull_plates"); err != ErrCapacityExceeded {
		t.Fatalf("short materials err = %v", err)
	}
	if p.Cargo["ore_veldrite"] != 30 {
		t.Fatalf("failed start consumed materials: %v", p.Cargo["ore_veldrite"])
	}

	p.Cargo["ore_veldrite"] = 40
	if err := w.StartJob(p, "bp_hull_plates"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if p.CargoUsed() != 0 {
		t.Fatalf("materials not consumed: %v", p.CargoUsed())
	}
	if len(w.jobs) != 1 {
		t.Fatalf("jobs = %d", len(w.jobs))
	}
}

func TestStartJob_RequiresOwnedBlueprint(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")

	// The warp core print is not in the starter set; a full hold does not
	// help without it.
	p.Cargo["ore_cryllium"] = 50
	p.Cargo["ore_nullite"] = 20
	if err := w.StartJob(p, "bp_warp_core"); err != ErrNoTarget {
		t.Fatalf("unowned blueprint err = %v", err)
	}
	if p.Cargo["ore_cryllium"] != 50 {
		t.Fatalf("rejected start consumed materials")
	}

	w.blueprints["bp_warp_core"] = true
	if err := w.StartJob(p, "bp_warp_core"); err != nil {
		t.Fatalf("start after acquiring the print: %v", err)
	}
	if len(w.jobs) != 1 {
		t.Fatalf("jobs = %d", len(w.jobs))
	}
}

func TestStartJob_QueueCap(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")
	w.tune.Manufacturing.MaxJobs = 1

	p.Cargo["ore_veldrite"] = 80
	if err := w.StartJob(p, "bp_hull_plates"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.StartJob(p, "bp_hull_plates"); err != ErrCapacityExceeded {
		t.Fatalf("over-cap err = %v", err)
	}
}

func TestCancelJob_RefundsFractionBoundedBySpace(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")

	p.Cargo["ore_veldrite"] = 40
	if err := w.StartJob(p, "bp_hull_plates"); err != nil {
		t.Fatalf("start: %v", err)
	}
	var jobID string
	for id := range w.jobs {
		jobID = id
	}
	if err := w.CancelJob(p, jobID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	// Half of 40 comes back.
	if p.Cargo["ore_veldrite"] != 20 {
		t.Fatalf("refund = %v, want 20", p.Cargo["ore_veldrite"])
	}
	if len(w.jobs) != 0 {
		t.Fatalf("canceled job still queued")
	}
	if err := w.CancelJob(p, jobID); err != ErrNoTarget {
		t.Fatalf("double cancel err = %v", err)
	}
}

func TestStepJobs_CompletionWaitsForHoldSpace(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")

	p.Cargo["ore_veldrite"] = 40
	if err := w.StartJob(p, "bp_hull_plates"); err != nil {
		t.Fatalf("start: %v", err)
	}
	var j *Job
	for _, v := range w.jobs {
		j = v
	}
	w.tick.Store(j.DoneTick)

	// Hold stuffed: the run stays queued, nothing is lost.
	p.Cargo["ore_veldrite"] = p.CargoCapacity
	w.stepJobs()
	if len(w.jobs) != 1 {
		t.Fatalf("blocked completion dropped the job")
	}

	// Space freed: output lands.
	p.Cargo = map[string]float64{}
	w.stepJobs()
	if len(w.jobs) != 0 {
		t.Fatalf("due job did not complete")
	}
	if p.Cargo["item_hull_plates"] != 4 {
		t.Fatalf("output = %v", p.Cargo["item_hull_plates"])
	}
}
