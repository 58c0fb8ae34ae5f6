package world

import (
	"testing"

	"microcity/server/internal/catalog"
)

func powerDef() catalog.Definition {
	return catalog.Definition{
		ID:            "power_plant",
		Category:      catalog.CategoryService,
		Width:         2,
		Depth:         2,
		ServiceType:   catalog.ServicePower,
		ServiceRadius: 12,
	}
}

func waterDef() catalog.Definition {
	return catalog.Definition{
		ID:            "water_tower",
		Category:      catalog.CategoryService,
		Width:         1,
		Depth:         1,
		ServiceType:   catalog.ServiceWater,
		ServiceRadius: 10,
	}
}

func coverageDefs() defsStub {
	return defsStub{
		"house_small": houseDef(),
		"power_plant": powerDef(),
		"water_tower": waterDef(),
	}
}

func TestPowerCoverageRadius(t *testing.T) {
	defs := coverageDefs()
	w := NewWorld(40, 40)

	w.PlaceBuilding(powerDef(), 5, 5, 0, 1, 6)
	inside, _ := w.PlaceBuilding(houseDef(), 5, 17, 0, 1, 6)  // distance 12, on the edge
	outside, _ := w.PlaceBuilding(houseDef(), 5, 18, 0, 1, 6) // distance 13

	w.RecomputeCoverage(defs)

	if !inside.IsPowered {
		t.Errorf("House at radius edge should be powered")
	}
	if outside.IsPowered {
		t.Errorf("House beyond radius should not be powered")
	}
}

func TestWaterRequiresPoweredSource(t *testing.T) {
	defs := coverageDefs()
	w := NewWorld(60, 60)

	// Water tower next to the house but far outside any power radius.
	w.PlaceBuilding(waterDef(), 40, 40, 0, 1, 6)
	house, _ := w.PlaceBuilding(houseDef(), 41, 40, 0, 1, 6)

	w.RecomputeCoverage(defs)
	if house.HasWater {
		t.Errorf("Water from an unpowered tower should not count")
	}

	// Powering the tower makes the same water source effective.
	w.PlaceBuilding(powerDef(), 35, 40, 0, 1, 6)
	w.RecomputeCoverage(defs)
	if !house.HasWater {
		t.Errorf("Water tower became powered; house should have water")
	}
}

func TestCoverageAtMatchesBuildingCoverage(t *testing.T) {
	defs := coverageDefs()
	w := NewWorld(40, 40)

	w.PlaceBuilding(powerDef(), 5, 5, 0, 1, 6)
	w.PlaceBuilding(waterDef(), 7, 5, 0, 1, 6)
	w.RecomputeCoverage(defs)

	powered, watered := w.CoverageAt(defs, 8, 6)
	if !powered || !watered {
		t.Errorf("Tile next to both utilities should be fully covered, got power=%v water=%v", powered, watered)
	}

	powered, watered = w.CoverageAt(defs, 39, 39)
	if powered || watered {
		t.Errorf("Far corner should be uncovered, got power=%v water=%v", powered, watered)
	}
}

func TestRecomputeCoverageIdempotent(t *testing.T) {
	defs := coverageDefs()
	w := NewWorld(40, 40)

	w.PlaceBuilding(powerDef(), 5, 5, 0, 1, 6)
	w.PlaceBuilding(waterDef(), 8, 5, 0, 1, 6)
	house, _ := w.PlaceBuilding(houseDef(), 10, 5, 0, 1, 6)

	w.RecomputeCoverage(defs)
	p1, h1 := house.IsPowered, house.HasWater
	w.RecomputeCoverage(defs)
	if house.IsPowered != p1 || house.HasWater != h1 {
		t.Errorf("Repeated recompute with no mutation changed coverage")
	}
}

func TestEnvironmentPollutionAndFalloff(t *testing.T) {
	defs := defsStub{
		"factory": {
			ID:        "factory",
			Category:  catalog.CategoryZone,
			Zone:      catalog.ZoneIndustrial,
			Width:     2,
			Depth:     2,
			Jobs:      52,
			Pollution: 2.0,
		},
	}
	w := NewWorld(30, 30)
	w.PlaceBuilding(defs["factory"], 10, 10, 0, 1, 6)
	w.RecomputeEnvironment(defs)

	at := func(x, z int) *Tile {
		tile, _ := w.TileAt(x, z)
		return tile
	}

	if at(10, 10).Pollution <= 0 {
		t.Errorf("Source tile should be polluted")
	}
	if at(10, 10).Pollution <= at(14, 10).Pollution {
		t.Errorf("Pollution should fall off with distance")
	}
	if at(20, 10).Pollution != 0 {
		t.Errorf("Tile beyond spread radius should stay clean")
	}
	if at(10, 10).LandValue >= baseLandValue {
		t.Errorf("Pollution should depress land value at the source")
	}
}

func TestEnvironmentRecomputeResetsPreviousSpread(t *testing.T) {
	defs := defsStub{
		"factory": {
			ID: "factory", Zone: catalog.ZoneIndustrial,
			Width: 2, Depth: 2, Pollution: 2.0,
		},
	}
	w := NewWorld(30, 30)
	b, _ := w.PlaceBuilding(defs["factory"], 10, 10, 0, 1, 6)
	w.RecomputeEnvironment(defs)

	w.RemoveBuilding(b.ID)
	w.RecomputeEnvironment(defs)

	tile, _ := w.TileAt(10, 10)
	if tile.Pollution != 0 {
		t.Errorf("Pollution should clear after the source is demolished, got %v", tile.Pollution)
	}
	if tile.LandValue != baseLandValue {
		t.Errorf("Land value should return to base, got %v", tile.LandValue)
	}
}
