package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"microcity/server/internal/catalog"
	"microcity/server/internal/events"
	"microcity/server/internal/platform/logger"
	"microcity/server/internal/world"
)

// Simulation is the host-facing aggregate: it owns the world, the shared
// state, and the scheduler, and exposes the mutating operations with their
// funds checks, synchronous coverage recomputation, and event emission.
// Everything here runs on the single simulation goroutine.
type Simulation struct {
	world      *world.World
	defs       *catalog.Resolver
	economy    *EconomyState
	population *PopulationState
	demand     *ZoneDemand
	scheduler  *Scheduler
	traffic    *TrafficSystem
	eventLog   *events.Log
	logger     *logger.Logger
	clock      Clock
}

// Config carries the constructor inputs for a simulation.
type Config struct {
	Width          int
	Depth          int
	InitialBalance float64
	Catalog        *catalog.Resolver
	EventLog       *events.Log
	Logger         *logger.Logger
	Seed           int64
}

// NewSimulation wires the world, the shared state, and the four systems
// into a scheduler. Each simulation is independent; nothing is global.
func NewSimulation(cfg Config) *Simulation {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.NewResolver()
	}
	if cfg.EventLog == nil {
		cfg.EventLog = events.NewLog(0, nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewLogger()
	}

	s := &Simulation{
		world:      world.NewWorld(cfg.Width, cfg.Depth),
		defs:       cfg.Catalog,
		economy:    NewEconomyState(cfg.InitialBalance),
		population: NewPopulationState(),
		demand:     &ZoneDemand{},
		eventLog:   cfg.EventLog,
		logger:     cfg.Logger,
		clock:      NewClock(),
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	s.traffic = NewTrafficSystem(s.world, s.defs, s.eventLog, s.logger, rng)

	s.scheduler = NewScheduler(s.logger)
	s.scheduler.Register(NewEconomySystem(s.world, s.defs, s.economy, s.eventLog, s.logger), PriorityEconomy)
	s.scheduler.Register(NewZoningSystem(s.world, s.defs, s.economy, s.population, s.demand, s.eventLog, s.logger), PriorityZoning)
	s.scheduler.Register(NewPopulationSystem(s.world, s.defs, s.economy, s.demand, s.population, s.eventLog, s.logger), PriorityPopulation)
	s.scheduler.Register(s.traffic, PriorityTraffic)
	return s
}

// Update advances the simulation one fixed timestep. delta is elapsed
// simulated seconds; clock is the calendar position after this step.
func (s *Simulation) Update(delta float64, clock Clock) {
	s.clock = clock
	s.scheduler.Update(delta, clock)
}

// Scheduler exposes the system registry for enable/disable control.
func (s *Simulation) Scheduler() *Scheduler { return s.scheduler }

// Clock returns the last clock the simulation saw.
func (s *Simulation) Clock() Clock { return s.clock }

// World exposes the grid for read access.
func (s *Simulation) World() *world.World { return s.world }

// Economy returns a copy of the treasury state.
func (s *Simulation) Economy() EconomyState { return *s.economy }

// Population returns a copy of the population aggregates.
func (s *Simulation) Population() PopulationState { return *s.population }

// Demand returns a copy of the demand scalars.
func (s *Simulation) Demand() ZoneDemand { return *s.demand }

// Vehicles returns the active vehicles.
func (s *Simulation) Vehicles() []Vehicle { return s.traffic.Vehicles() }

// SetTaxRate adjusts a zone's tax rate, clamped to [0,20].
func (s *Simulation) SetTaxRate(zone catalog.Zone, rate float64) {
	s.economy.SetTaxRate(zone, rate)
}

// recomputeDerived refreshes utility coverage and tile environment after a
// structural mutation. It runs synchronously inside the mutating call so
// observation order stays deterministic; nothing is deferred to a later
// callback.
func (s *Simulation) recomputeDerived() {
	s.world.RecomputeCoverage(s.defs)
	s.world.RecomputeEnvironment(s.defs)
}

// PlaceBuilding validates funds and footprint, claims the tiles, debits the
// treasury, recomputes coverage, and emits the placement event. All failures
// return (nil, false); nothing is partially applied.
func (s *Simulation) PlaceBuilding(definitionID string, x, z, rotation int) (*world.Building, bool) {
	def, ok := s.defs.Get(definitionID)
	if !ok {
		return nil, false
	}
	if def.Cost > s.economy.Balance {
		return nil, false
	}
	b, ok := s.world.PlaceBuilding(def, x, z, rotation, s.clock.Day, s.clock.Hour)
	if !ok {
		return nil, false
	}
	s.economy.Debit(def.Cost)
	s.recomputeDerived()
	s.eventLog.Append(events.Event{
		Type: events.EventTypeBuildingPlaced,
		Day:  s.clock.Day,
		Hour: s.clock.Hour,
		Payload: events.BuildingPayload{
			BuildingID:   b.ID,
			DefinitionID: b.DefinitionID,
			X:            b.X,
			Z:            b.Z,
		},
	})
	return b, true
}

// DemolishBuilding removes a building, credits a partial refund, and
// recomputes coverage.
func (s *Simulation) DemolishBuilding(id string) bool {
	b, ok := s.world.RemoveBuilding(id)
	if !ok {
		return false
	}
	if def, ok := s.defs.Get(b.DefinitionID); ok {
		s.economy.Credit(def.Cost * demolitionRefundFactor)
	}
	s.recomputeDerived()
	s.eventLog.Append(events.Event{
		Type: events.EventTypeBuildingRemoved,
		Day:  s.clock.Day,
		Hour: s.clock.Hour,
		Payload: events.BuildingPayload{
			BuildingID:   b.ID,
			DefinitionID: b.DefinitionID,
			X:            b.X,
			Z:            b.Z,
		},
	})
	return true
}

// PlaceRoad claims a tile for a road, debits the road cost, and emits the
// topology event.
func (s *Simulation) PlaceRoad(x, z int) (*world.Road, bool) {
	if roadCost > s.economy.Balance {
		return nil, false
	}
	r, ok := s.world.PlaceRoad(x, z)
	if !ok {
		return nil, false
	}
	s.economy.Debit(roadCost)
	s.recomputeDerived()
	s.eventLog.Append(events.Event{
		Type:    events.EventTypeRoadPlaced,
		Day:     s.clock.Day,
		Hour:    s.clock.Hour,
		Payload: events.RoadPayload{RoadID: r.ID, X: r.X, Z: r.Z},
	})
	return r, true
}

// RemoveRoad removes a road cell and emits the topology event.
func (s *Simulation) RemoveRoad(id string) bool {
	r, ok := s.world.Road(id)
	if !ok {
		return false
	}
	x, z := r.X, r.Z
	if !s.world.RemoveRoad(id) {
		return false
	}
	s.recomputeDerived()
	s.eventLog.Append(events.Event{
		Type:    events.EventTypeRoadRemoved,
		Day:     s.clock.Day,
		Hour:    s.clock.Hour,
		Payload: events.RoadPayload{RoadID: id, X: x, Z: z},
	})
	return true
}

// SetZone assigns a zone to an unoccupied tile. Fails silently with false on
// occupied tiles, as zoning is a paint operation.
func (s *Simulation) SetZone(x, z int, zone catalog.Zone) bool {
	if zone != catalog.ZoneNone && !zone.Valid() {
		return false
	}
	if !s.world.SetZone(x, z, zone) {
		return false
	}
	s.eventLog.Append(events.Event{
		Type:    events.EventTypeZoneChanged,
		Day:     s.clock.Day,
		Hour:    s.clock.Hour,
		Payload: events.ZonePayload{X: x, Z: z, Zone: string(zone)},
	})
	return true
}

// Snapshot is the aggregate persisted form of a simulation: the grid plus
// every system's state. Vehicles are transient and not included.
type Snapshot struct {
	World      world.Snapshot  `json:"world"`
	Economy    EconomyState    `json:"economy"`
	Population PopulationState `json:"population"`
	Demand     ZoneDemand      `json:"demand"`
	Clock      Clock           `json:"clock"`
}

// Serialize exports the simulation as an opaque JSON snapshot for the
// persistence collaborator.
func (s *Simulation) Serialize() ([]byte, error) {
	snap := Snapshot{
		World:      s.world.Snapshot(),
		Economy:    *s.economy,
		Population: *s.population,
		Demand:     *s.demand,
		Clock:      s.clock,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("serialize simulation: %w", err)
	}
	return data, nil
}

// Deserialize replaces the simulation state with the snapshot. Validation
// fails closed: a corrupt snapshot returns an error and the prior in-memory
// state is retained untouched.
func (s *Simulation) Deserialize(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	// Restore the world into a staging grid first; only on success does any
	// part of the simulation change.
	staging := world.NewWorld(snap.World.Width, snap.World.Depth)
	if err := staging.Restore(snap.World); err != nil {
		return fmt.Errorf("restore world: %w", err)
	}
	if snap.Economy.TaxRates == nil {
		return fmt.Errorf("snapshot missing economy state")
	}

	if err := s.world.Restore(snap.World); err != nil {
		return fmt.Errorf("restore world: %w", err)
	}
	*s.economy = snap.Economy
	if s.economy.Income == nil {
		s.economy.Income = make(map[string]float64)
	}
	if s.economy.Expenses == nil {
		s.economy.Expenses = make(map[string]float64)
	}
	*s.population = snap.Population
	*s.demand = snap.Demand
	s.clock = snap.Clock

	s.scheduler.Reset()
	s.recomputeDerived()
	s.eventLog.Append(events.Event{
		Type:    events.EventTypeSnapshotLoaded,
		Day:     s.clock.Day,
		Hour:    s.clock.Hour,
		Payload: events.TimePayload{Day: s.clock.Day, Hour: s.clock.Hour, Minute: s.clock.Minute, IsNight: s.clock.IsNight()},
	})
	return nil
}
