package engine

import (
	"fmt"
	"sort"

	"microcity/server/internal/platform/logger"
)

// System is a simulation subsystem driven by the scheduler. Update receives
// the elapsed simulated seconds and the current clock; systems that act less
// often than every tick keep their own last-processed markers and Reset
// clears them.
//
// Cross-system read contract: systems run in ascending priority order within
// a tick. The economy (priority 10) reads the employment rate the population
// system wrote on the previous day - a stale read by design. The population
// system (priority 30) reads the tax rates the economy holds this tick - a
// fresh read. Reordering priorities silently changes which is which.
type System interface {
	Name() string
	Update(delta float64, clock Clock)
	Reset()
}

type schedulerEntry struct {
	system   System
	priority int
	enabled  bool
}

// Scheduler maintains the registry of named systems and invokes the enabled
// ones in ascending priority order each fixed timestep. A system that panics
// is logged and skipped for that tick; the remaining systems still run.
type Scheduler struct {
	entries map[string]*schedulerEntry
	logger  *logger.Logger
}

// NewScheduler creates an empty system registry.
func NewScheduler(log *logger.Logger) *Scheduler {
	return &Scheduler{
		entries: make(map[string]*schedulerEntry),
		logger:  log,
	}
}

// Register adds a system at the given priority, enabled. Registering the
// same name again replaces the previous entry.
func (s *Scheduler) Register(sys System, priority int) {
	s.entries[sys.Name()] = &schedulerEntry{system: sys, priority: priority, enabled: true}
}

// SetEnabled toggles a system by name. Returns false for unknown names.
func (s *Scheduler) SetEnabled(name string, enabled bool) bool {
	e, ok := s.entries[name]
	if !ok {
		return false
	}
	e.enabled = enabled
	return true
}

// Systems returns the registered system names in execution order.
func (s *Scheduler) Systems() []string {
	ordered := s.ordered(false)
	names := make([]string, 0, len(ordered))
	for _, e := range ordered {
		names = append(names, e.system.Name())
	}
	return names
}

// Update runs one tick: enabled systems only, ascending priority, each
// isolated behind a recover.
func (s *Scheduler) Update(delta float64, clock Clock) {
	for _, e := range s.ordered(true) {
		s.runIsolated(e.system, delta, clock)
	}
}

func (s *Scheduler) runIsolated(sys System, delta float64, clock Clock) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(fmt.Sprintf("system %s panicked on day %d hour %d: %v; isolating for this tick",
				sys.Name(), clock.Day, clock.Hour, r))
		}
	}()
	sys.Update(delta, clock)
}

// Reset clears every system's throttle markers, enabled or not.
func (s *Scheduler) Reset() {
	for _, e := range s.ordered(false) {
		e.system.Reset()
	}
}

// ordered returns entries sorted by ascending priority, name as tie-break so
// execution order is deterministic.
func (s *Scheduler) ordered(enabledOnly bool) []*schedulerEntry {
	out := make([]*schedulerEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if enabledOnly && !e.enabled {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority < out[j].priority
		}
		return out[i].system.Name() < out[j].system.Name()
	})
	return out
}
