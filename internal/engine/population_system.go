package engine

import (
	"microcity/server/internal/catalog"
	"microcity/server/internal/events"
	"microcity/server/internal/platform/logger"
	"microcity/server/internal/world"
)

// PopulationSystem runs once per simulated day in four fixed stages:
// occupancy, growth, employment, happiness. The order matters: occupancy
// realizes capacity from yesterday's demand and happiness; growth caps
// migration against the capacity realized this tick; employment consumes the
// post-growth population; happiness feeds the next day's occupancy targets.
// Tax rates are read fresh from the economy (which ran earlier this tick).
type PopulationSystem struct {
	world      *world.World
	defs       *catalog.Resolver
	economy    *EconomyState
	demand     *ZoneDemand
	population *PopulationState
	eventLog   *events.Log
	logger     *logger.Logger

	lastDay int
}

// NewPopulationSystem creates the daily population system.
func NewPopulationSystem(w *world.World, defs *catalog.Resolver, economy *EconomyState, demand *ZoneDemand, population *PopulationState, eventLog *events.Log, log *logger.Logger) *PopulationSystem {
	return &PopulationSystem{
		world:      w,
		defs:       defs,
		economy:    economy,
		demand:     demand,
		population: population,
		eventLog:   eventLog,
		logger:     log,
		lastDay:    -1,
	}
}

// Name implements System.
func (ps *PopulationSystem) Name() string { return "population" }

// Reset implements System.
func (ps *PopulationSystem) Reset() { ps.lastDay = -1 }

// Update implements System, throttled to once per simulated day.
func (ps *PopulationSystem) Update(delta float64, clock Clock) {
	if clock.Day == ps.lastDay {
		return
	}
	ps.lastDay = clock.Day

	ps.updateOccupancy()
	ps.updateGrowth()
	ps.updateEmployment()
	ps.updateHappiness()

	ps.eventLog.Append(events.Event{
		Type: events.EventTypePopulationShift,
		Day:  clock.Day,
		Hour: clock.Hour,
		Payload: events.PopulationPayload{
			Total:     ps.population.Total,
			Employed:  ps.population.Employed,
			Happiness: ps.population.Happiness,
		},
	})
}

// updateOccupancy smooths each zoned building's occupancy toward its demand
// target. Unpowered buildings attract half; waterless ones lose a further
// 30%.
func (ps *PopulationSystem) updateOccupancy() {
	happinessFactor := ps.population.Happiness / 100
	for _, b := range ps.world.Buildings() {
		def, ok := ps.defs.Get(b.DefinitionID)
		if !ok || def.Zone == catalog.ZoneNone {
			continue
		}
		target := ps.demand.Factor(def.Zone) * happinessFactor * 100
		if !b.IsPowered {
			target *= unpoweredOccupancy
		}
		if !b.HasWater {
			target *= waterlessOccupancy
		}
		b.Occupancy = clampPercent(b.Occupancy + (target-b.Occupancy)*occupancySmoothing)
	}
}

// residentialCapacity returns (total, realized) residential capacity;
// realized weights each building by its occupancy fraction.
func (ps *PopulationSystem) residentialCapacity() (total, realized float64) {
	for _, b := range ps.world.Buildings() {
		def, ok := ps.defs.Get(b.DefinitionID)
		if !ok || def.Zone != catalog.ZoneResidential {
			continue
		}
		total += float64(def.Capacity)
		realized += float64(def.Capacity) * (b.Occupancy / 100)
	}
	return total, realized
}

// updateGrowth applies births, deaths, and migration, then caps the result
// at realized residential capacity. A city with zero population but spare
// zoned capacity gets a bootstrap migration seed so growth can start.
func (ps *PopulationSystem) updateGrowth() {
	pop := ps.population.Total
	total, realized := ps.residentialCapacity()

	births := pop * birthRate * (ps.population.Happiness / 100)
	deaths := pop * mortalityRate

	free := total - pop
	if free < 0 {
		free = 0
	}
	migration := free * ps.demand.Factor(catalog.ZoneResidential) * migrationRate
	if pop == 0 && total > 0 && ps.demand.Residential > 0 {
		if migration < bootstrapMigrants {
			migration = bootstrapMigrants
		}
	}

	next := pop + births - deaths + migration
	if next > realized {
		next = realized
	}
	if next < 0 {
		next = 0
	}
	ps.population.Total = next
	ps.population.Children = next * childShare
	ps.population.Seniors = next * seniorShare
	ps.population.Adults = next - ps.population.Children - ps.population.Seniors
}

// updateEmployment matches the labor force against realized jobs in
// commercial and industrial buildings.
func (ps *PopulationSystem) updateEmployment() {
	var jobs float64
	for _, b := range ps.world.Buildings() {
		def, ok := ps.defs.Get(b.DefinitionID)
		if !ok {
			continue
		}
		if def.Zone == catalog.ZoneCommercial || def.Zone == catalog.ZoneIndustrial {
			jobs += float64(def.Jobs) * (b.Occupancy / 100)
		}
	}

	labor := ps.population.Total * laborParticipation
	employed := labor
	if jobs < employed {
		employed = jobs
	}
	ps.population.Employed = employed
	ps.population.Unemployed = labor - employed
	if labor > 0 {
		ps.population.EmploymentRate = employed / labor
	} else {
		ps.population.EmploymentRate = 1
	}
}

// updateHappiness recomputes the aggregate mood: employment deviation, tax
// pressure, civic service presence, parks, and pollution.
func (ps *PopulationSystem) updateHappiness() {
	h := happinessBase

	h += (ps.population.EmploymentRate - targetEmployment) * happinessEmployWt

	avgTax := (ps.economy.TaxRate(catalog.ZoneResidential) +
		ps.economy.TaxRate(catalog.ZoneCommercial) +
		ps.economy.TaxRate(catalog.ZoneIndustrial)) / 3
	h -= (avgTax - happinessTaxPivot) * happinessTaxWt

	present := make(map[catalog.ServiceType]bool)
	parks := 0
	for _, b := range ps.world.Buildings() {
		if !b.IsActive {
			continue
		}
		def, ok := ps.defs.Get(b.DefinitionID)
		if !ok {
			continue
		}
		switch def.ServiceType {
		case catalog.ServicePolice, catalog.ServiceFire, catalog.ServiceHealth, catalog.ServiceEducation:
			present[def.ServiceType] = true
		case catalog.ServicePark:
			parks++
		}
	}
	h += float64(len(present)) * happinessServiceWt
	if parks > happinessParkCap {
		parks = happinessParkCap
	}
	h += float64(parks) * happinessParkWt

	h -= ps.world.AveragePollution() * happinessPollutionWt

	ps.population.Happiness = clampPercent(h)
}
