package engine

import (
	"testing"

	"microcity/server/internal/catalog"
	"microcity/server/internal/events"
	"microcity/server/internal/platform/logger"
	"microcity/server/internal/world"
)

type populationFixture struct {
	world      *world.World
	defs       *catalog.Resolver
	economy    *EconomyState
	demand     *ZoneDemand
	population *PopulationState
	system     *PopulationSystem
}

func newPopulationFixture(t *testing.T) *populationFixture {
	t.Helper()
	f := &populationFixture{
		world:      world.NewWorld(40, 40),
		defs:       catalog.NewResolver(),
		economy:    NewEconomyState(10000),
		demand:     &ZoneDemand{},
		population: NewPopulationState(),
	}
	f.system = NewPopulationSystem(f.world, f.defs, f.economy, f.demand, f.population, events.NewLog(0, nil), logger.NewLogger())
	return f
}

// placeCoveredHouse places a residential building and marks it fully covered
// so occupancy targets are not utility-penalized.
func (f *populationFixture) placeCoveredHouse(t *testing.T, x, z int) *world.Building {
	t.Helper()
	house, _ := f.defs.Get("house_small")
	b, ok := f.world.PlaceBuilding(house, x, z, 0, 1, 6)
	if !ok {
		t.Fatalf("House placement failed at (%d,%d)", x, z)
	}
	b.IsPowered = true
	b.HasWater = true
	return b
}

func TestPopulationBootstrapMigration(t *testing.T) {
	f := newPopulationFixture(t)
	f.placeCoveredHouse(t, 5, 5)
	f.demand.Residential = 60

	f.system.Update(1, Clock{Day: 1, Hour: 6})

	// Occupancy runs before growth within the same pass, so the bootstrap
	// migrants have realized capacity to land in.
	if f.population.Total <= 0 {
		t.Errorf("Empty city with capacity and demand should gain migrants, got %v", f.population.Total)
	}
}

func TestPopulationNeverExceedsRealizedCapacity(t *testing.T) {
	f := newPopulationFixture(t)
	b := f.placeCoveredHouse(t, 5, 5)
	f.demand.Residential = 100
	f.population.Total = 50 // stale overshoot

	f.system.Update(1, Clock{Day: 1, Hour: 6})

	house, _ := f.defs.Get("house_small")
	realized := float64(house.Capacity) * (b.Occupancy / 100)
	if f.population.Total > realized+1e-9 {
		t.Errorf("Population %v exceeds realized capacity %v", f.population.Total, realized)
	}
}

func TestPopulationGrowsOverConsecutiveDays(t *testing.T) {
	f := newPopulationFixture(t)
	for i := 0; i < 4; i++ {
		f.placeCoveredHouse(t, 5+i*2, 5)
	}
	// A working economy keeps happiness from collapsing mid-run.
	factory, _ := f.defs.Get("factory")
	fb, _ := f.world.PlaceBuilding(factory, 20, 20, 0, 1, 6)
	fb.IsPowered = true
	fb.HasWater = true
	f.demand.Residential = 80
	f.demand.Industrial = 80

	var previous float64
	for day := 1; day <= 10; day++ {
		f.system.Update(1, Clock{Day: day, Hour: 6})
		if f.population.Total < previous {
			t.Fatalf("Population shrank on day %d with high demand: %v -> %v", day, previous, f.population.Total)
		}
		previous = f.population.Total
	}
	if previous <= bootstrapMigrants {
		t.Errorf("Expected sustained growth past the bootstrap seed, got %v", previous)
	}
}

func TestPopulationUtilityPenaltiesReduceOccupancy(t *testing.T) {
	f := newPopulationFixture(t)
	covered := f.placeCoveredHouse(t, 5, 5)
	dark := f.placeCoveredHouse(t, 8, 5)
	dark.IsPowered = false
	dark.HasWater = false
	f.demand.Residential = 80

	f.system.Update(1, Clock{Day: 1, Hour: 6})

	if dark.Occupancy >= covered.Occupancy {
		t.Errorf("Uncovered building should attract less occupancy: dark=%v covered=%v", dark.Occupancy, covered.Occupancy)
	}
}

func TestPopulationEmploymentMatchesJobs(t *testing.T) {
	f := newPopulationFixture(t)
	f.placeCoveredHouse(t, 5, 5)
	shop, _ := f.defs.Get("corner_shop")
	sb, _ := f.world.PlaceBuilding(shop, 8, 5, 0, 1, 6)
	sb.Occupancy = 100
	f.demand.Residential = 80
	f.population.Total = 4

	f.system.Update(1, Clock{Day: 1, Hour: 6})

	labor := f.population.Total * laborParticipation
	if f.population.Employed > labor+1e-9 {
		t.Errorf("Employed %v exceeds labor force %v", f.population.Employed, labor)
	}
	if f.population.Employed > float64(shop.Jobs)+1e-9 {
		t.Errorf("Employed %v exceeds available jobs %d", f.population.Employed, shop.Jobs)
	}
	if f.population.EmploymentRate < 0 || f.population.EmploymentRate > 1 {
		t.Errorf("Employment rate out of range: %v", f.population.EmploymentRate)
	}
}

func TestPopulationHappinessStaysClamped(t *testing.T) {
	f := newPopulationFixture(t)
	f.placeCoveredHouse(t, 5, 5)
	f.economy.SetTaxRate(catalog.ZoneResidential, 20)
	f.economy.SetTaxRate(catalog.ZoneCommercial, 20)
	f.economy.SetTaxRate(catalog.ZoneIndustrial, 20)

	f.system.Update(1, Clock{Day: 1, Hour: 6})

	if f.population.Happiness < 0 || f.population.Happiness > 100 {
		t.Errorf("Happiness out of range: %v", f.population.Happiness)
	}
}

func TestPopulationCivicServicesLiftHappiness(t *testing.T) {
	plain := newPopulationFixture(t)
	plain.placeCoveredHouse(t, 5, 5)
	plain.demand.Residential = 60
	plain.system.Update(1, Clock{Day: 1, Hour: 6})

	served := newPopulationFixture(t)
	served.placeCoveredHouse(t, 5, 5)
	served.demand.Residential = 60
	police, _ := served.defs.Get("police_station")
	school, _ := served.defs.Get("school")
	park, _ := served.defs.Get("park_small")
	served.world.PlaceBuilding(police, 10, 10, 0, 1, 6)
	served.world.PlaceBuilding(school, 12, 10, 0, 1, 6)
	served.world.PlaceBuilding(park, 15, 10, 0, 1, 6)
	served.system.Update(1, Clock{Day: 1, Hour: 6})

	if served.population.Happiness <= plain.population.Happiness {
		t.Errorf("Civic services should lift happiness: served=%v plain=%v",
			served.population.Happiness, plain.population.Happiness)
	}
}

func TestPopulationThrottledToOnePassPerDay(t *testing.T) {
	f := newPopulationFixture(t)
	f.placeCoveredHouse(t, 5, 5)
	f.demand.Residential = 60

	f.system.Update(1, Clock{Day: 1, Hour: 6})
	after := f.population.Total
	f.system.Update(1, Clock{Day: 1, Hour: 12})

	if f.population.Total != after {
		t.Errorf("Second update on the same day changed the population")
	}
}
