package engine

import (
	"testing"

	"microcity/server/internal/platform/logger"
)

// recordingSystem appends its name to a shared trace on each update.
type recordingSystem struct {
	name   string
	trace  *[]string
	resets int
	panics bool
}

func (r *recordingSystem) Name() string { return r.name }

func (r *recordingSystem) Update(delta float64, clock Clock) {
	if r.panics {
		panic("boom")
	}
	*r.trace = append(*r.trace, r.name)
}

func (r *recordingSystem) Reset() { r.resets++ }

func TestSchedulerRunsInPriorityOrder(t *testing.T) {
	var trace []string
	s := NewScheduler(logger.NewLogger())
	s.Register(&recordingSystem{name: "traffic", trace: &trace}, PriorityTraffic)
	s.Register(&recordingSystem{name: "economy", trace: &trace}, PriorityEconomy)
	s.Register(&recordingSystem{name: "population", trace: &trace}, PriorityPopulation)
	s.Register(&recordingSystem{name: "zoning", trace: &trace}, PriorityZoning)

	s.Update(1, NewClock())

	want := []string{"economy", "zoning", "population", "traffic"}
	if len(trace) != len(want) {
		t.Fatalf("Expected %d updates, got %d", len(want), len(trace))
	}
	for i, name := range want {
		if trace[i] != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, trace[i])
		}
	}
}

func TestSchedulerIsolatesPanickingSystem(t *testing.T) {
	var trace []string
	s := NewScheduler(logger.NewLogger())
	s.Register(&recordingSystem{name: "a", trace: &trace}, 1)
	s.Register(&recordingSystem{name: "b", trace: &trace, panics: true}, 2)
	s.Register(&recordingSystem{name: "c", trace: &trace}, 3)

	s.Update(1, NewClock())

	if len(trace) != 2 || trace[0] != "a" || trace[1] != "c" {
		t.Errorf("Systems around the panic should still run, got %v", trace)
	}
}

func TestSchedulerDisabledSystemSkipped(t *testing.T) {
	var trace []string
	s := NewScheduler(logger.NewLogger())
	s.Register(&recordingSystem{name: "a", trace: &trace}, 1)
	s.Register(&recordingSystem{name: "b", trace: &trace}, 2)

	if !s.SetEnabled("b", false) {
		t.Fatalf("SetEnabled on known system should succeed")
	}
	if s.SetEnabled("ghost", false) {
		t.Errorf("SetEnabled on unknown system should fail")
	}

	s.Update(1, NewClock())
	if len(trace) != 1 || trace[0] != "a" {
		t.Errorf("Disabled system ran, trace %v", trace)
	}

	// Re-enabled systems run again.
	s.SetEnabled("b", true)
	trace = nil
	s.Update(1, NewClock())
	if len(trace) != 2 {
		t.Errorf("Expected both systems after re-enable, got %v", trace)
	}
}

func TestSchedulerResetReachesDisabledSystems(t *testing.T) {
	var trace []string
	a := &recordingSystem{name: "a", trace: &trace}
	b := &recordingSystem{name: "b", trace: &trace}
	s := NewScheduler(logger.NewLogger())
	s.Register(a, 1)
	s.Register(b, 2)
	s.SetEnabled("b", false)

	s.Reset()

	if a.resets != 1 || b.resets != 1 {
		t.Errorf("Reset should reach every system, got a=%d b=%d", a.resets, b.resets)
	}
}
