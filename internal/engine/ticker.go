// Package engine contains the simulation loop and the systems it drives.
//
// ARCHITECTURAL RULE: the Ticker does not touch world or system state
// directly. It advances the simulated clock, emits the time event, and hands
// the tick to the scheduler. Systems do the mutating.
package engine

import (
	"context"
	"sync"
	"time"

	"microcity/server/internal/events"
	"microcity/server/internal/platform/logger"
	"microcity/server/internal/platform/metrics"
)

// DefaultTickInterval is the real-time cadence of the fixed timestep.
const DefaultTickInterval = 250 * time.Millisecond

// DefaultMinutesPerTick is how far the simulated clock advances each tick.
// 30 simulated minutes per quarter-second tick runs a day in 12 seconds.
const DefaultMinutesPerTick = 30

// Ticker drives the fixed-timestep loop. Pausing the ticker is the only
// supported cancellation: systems run to completion each tick or not at all.
type Ticker struct {
	sim      *Simulation
	eventLog *events.Log
	logger   *logger.Logger
	metrics  *metrics.Collector

	interval       time.Duration
	minutesPerTick int

	mu       sync.Mutex
	clock    Clock
	paused   bool
	tickNum  int64
	stopChan chan struct{}

	// simMu serializes simulation access between the tick loop and the
	// host's Do calls. Systems themselves never lock; they already run on
	// the single goroutine holding this.
	simMu sync.Mutex
}

// NewTicker creates a ticker over the simulation using the default cadence.
func NewTicker(sim *Simulation, eventLog *events.Log, log *logger.Logger, collector *metrics.Collector) *Ticker {
	return &Ticker{
		sim:            sim,
		eventLog:       eventLog,
		logger:         log,
		metrics:        collector,
		interval:       DefaultTickInterval,
		minutesPerTick: DefaultMinutesPerTick,
		clock:          sim.Clock(),
		stopChan:       make(chan struct{}),
	}
}

// SetCadence overrides the real interval and simulated minutes per tick.
// Call before Start.
func (t *Ticker) SetCadence(interval time.Duration, minutesPerTick int) {
	if interval > 0 {
		t.interval = interval
	}
	if minutesPerTick > 0 {
		t.minutesPerTick = minutesPerTick
	}
}

// Start begins the loop. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	t.logger.Info("Simulation ticker started.")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Simulation ticker stopped by context.")
			return
		case <-t.stopChan:
			t.logger.Info("Simulation ticker stopped manually.")
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}

// Stop halts the loop permanently.
func (t *Ticker) Stop() {
	close(t.stopChan)
}

// Pause suspends tick processing without stopping the loop.
func (t *Ticker) Pause() {
	t.mu.Lock()
	t.paused = true
	t.mu.Unlock()
}

// Resume re-enables tick processing.
func (t *Ticker) Resume() {
	t.mu.Lock()
	t.paused = false
	t.mu.Unlock()
}

// Paused reports whether the loop is currently suspended.
func (t *Ticker) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// SetTime overrides the simulated clock, for bootstrapping and debugging.
func (t *Ticker) SetTime(clock Clock) {
	t.mu.Lock()
	t.clock = clock
	t.mu.Unlock()
}

// Clock returns the current simulated clock.
func (t *Ticker) Clock() Clock {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clock
}

// Tick processes a single fixed timestep: advance the clock, emit the time
// event, run the scheduler. Exported so tests and the load path can step
// deterministically without real time.
func (t *Ticker) Tick() {
	t.mu.Lock()
	if t.paused {
		t.mu.Unlock()
		return
	}
	t.tickNum++
	t.clock = t.clock.Advance(t.minutesPerTick)
	clock := t.clock
	t.mu.Unlock()

	started := time.Now()

	t.eventLog.Append(events.Event{
		Type: events.EventTypeTimeChanged,
		Day:  clock.Day,
		Hour: clock.Hour,
		Payload: events.TimePayload{
			Day:     clock.Day,
			Hour:    clock.Hour,
			Minute:  clock.Minute,
			IsNight: clock.IsNight(),
		},
	})

	delta := float64(t.minutesPerTick) * 60 // simulated seconds
	t.simMu.Lock()
	t.sim.Update(delta, clock)
	t.simMu.Unlock()

	if t.metrics != nil {
		t.metrics.RecordTick(time.Since(started))
		t.simMu.Lock()
		pop := t.sim.Population()
		eco := t.sim.Economy()
		vehicles := len(t.sim.Vehicles())
		t.simMu.Unlock()
		t.metrics.SetGauges(pop.Total, vehicles, eco.Balance)
	}
}

// Do runs fn with exclusive access to the simulation. HTTP handlers use this
// to issue player operations and reads between ticks.
func (t *Ticker) Do(fn func(sim *Simulation)) {
	t.simMu.Lock()
	defer t.simMu.Unlock()
	fn(t.sim)
}
