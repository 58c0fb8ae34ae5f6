package engine

import (
	"fmt"

	"microcity/server/internal/catalog"
	"microcity/server/internal/events"
	"microcity/server/internal/platform/logger"
	"microcity/server/internal/world"
)

// ZoningSystem updates the three demand scalars once per simulated day and
// spawns organic growth on zoned, utility-covered tiles. Spawned buildings
// are private capital: the city balance is not debited, it only gates which
// definitions count as affordable.
type ZoningSystem struct {
	world      *world.World
	defs       *catalog.Resolver
	economy    *EconomyState
	population *PopulationState
	demand     *ZoneDemand
	eventLog   *events.Log
	logger     *logger.Logger

	lastDay int
}

// NewZoningSystem creates the daily zoning and growth system.
func NewZoningSystem(w *world.World, defs *catalog.Resolver, economy *EconomyState, population *PopulationState, demand *ZoneDemand, eventLog *events.Log, log *logger.Logger) *ZoningSystem {
	return &ZoningSystem{
		world:      w,
		defs:       defs,
		economy:    economy,
		population: population,
		demand:     demand,
		eventLog:   eventLog,
		logger:     log,
		lastDay:    -1,
	}
}

// Name implements System.
func (zs *ZoningSystem) Name() string { return "zoning" }

// Reset implements System.
func (zs *ZoningSystem) Reset() { zs.lastDay = -1 }

// Update implements System, throttled to once per simulated day.
func (zs *ZoningSystem) Update(delta float64, clock Clock) {
	if clock.Day == zs.lastDay {
		return
	}
	zs.lastDay = clock.Day

	zs.updateDemand()
	zs.growth(clock)
}

// updateDemand nudges each scalar from its supply/demand ratio, decays it
// toward zero, and clamps to [-100,100].
func (zs *ZoningSystem) updateDemand() {
	var housing, jobs, comCapacity, indJobs float64
	for _, b := range zs.world.Buildings() {
		def, ok := zs.defs.Get(b.DefinitionID)
		if !ok {
			continue
		}
		switch def.Zone {
		case catalog.ZoneResidential:
			housing += float64(def.Capacity)
		case catalog.ZoneCommercial:
			jobs += float64(def.Jobs)
			comCapacity += float64(def.Jobs)
		case catalog.ZoneIndustrial:
			jobs += float64(def.Jobs)
			indJobs += float64(def.Jobs)
		}
	}

	// Residential: people follow jobs. An empty city gets a baseline pull so
	// the first zones can develop at all.
	if housing == 0 && jobs == 0 {
		zs.demand.Residential += demandBaseline
	} else {
		zs.demand.Residential += demandNudgeScale * (jobs - housing) / max1(housing)
	}

	// Commercial: shops follow customers.
	pop := zs.population.Total
	zs.demand.Commercial += demandNudgeScale * (pop/commercialServing - comCapacity) / max1(comCapacity)

	// Industrial: factories follow an under-employed workforce.
	zs.demand.Industrial += demandNudgeScale * (targetEmployment - zs.population.EmploymentRate) * 2
	if indJobs > pop {
		zs.demand.Industrial -= demandNudgeScale * (indJobs - pop) / max1(indJobs)
	}

	zs.demand.Residential = clampDemand(zs.demand.Residential * demandDecay)
	zs.demand.Commercial = clampDemand(zs.demand.Commercial * demandDecay)
	zs.demand.Industrial = clampDemand(zs.demand.Industrial * demandDecay)
}

// growth walks the grid in row order and spawns buildings on empty zoned
// tiles that have both utilities and demand above the threshold, up to the
// per-tick cap. Coverage is checked per tile: power alone is not enough.
func (zs *ZoningSystem) growth(clock Clock) {
	spawned := 0
	for z := 0; z < zs.world.Depth() && spawned < growthSpawnCap; z++ {
		for x := 0; x < zs.world.Width() && spawned < growthSpawnCap; x++ {
			t, _ := zs.world.TileAt(x, z)
			if t.Occupied() || !t.Zone.Valid() {
				continue
			}
			if zs.demand.For(t.Zone) <= growthThreshold {
				continue
			}
			powered, watered := zs.world.CoverageAt(zs.defs, x, z)
			if !powered || !watered {
				continue
			}
			def, ok := zs.pickDefinition(t.Zone, x, z)
			if !ok {
				continue
			}
			b, ok := zs.world.PlaceBuilding(def, x, z, 0, clock.Day, clock.Hour)
			if !ok {
				continue
			}
			zs.world.RecomputeCoverage(zs.defs)
			zs.world.RecomputeEnvironment(zs.defs)
			zs.eventLog.Append(events.Event{
				Type: events.EventTypeBuildingSpawned,
				Day:  clock.Day,
				Hour: clock.Hour,
				Payload: events.BuildingPayload{
					BuildingID:   b.ID,
					DefinitionID: b.DefinitionID,
					X:            b.X,
					Z:            b.Z,
				},
			})
			zs.logger.Event("GROWTH", b.ID, fmt.Sprintf("%s at (%d,%d)", def.ID, x, z))
			spawned++
		}
	}
}

// pickDefinition returns the cheapest definition of the zone that fits at
// (x,z) and is affordable relative to the current balance.
func (zs *ZoningSystem) pickDefinition(zone catalog.Zone, x, z int) (catalog.Definition, bool) {
	for _, def := range zs.defs.ByZone(zone) {
		if def.Cost > zs.economy.Balance {
			continue
		}
		if zs.world.CanPlaceBuilding(def, x, z, 0) {
			return def, true
		}
	}
	return catalog.Definition{}, false
}

func max1(v float64) float64 {
	if v < 1 {
		return 1
	}
	return v
}
