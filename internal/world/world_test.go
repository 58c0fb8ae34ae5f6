package world

import (
	"testing"

	"microcity/server/internal/catalog"
)

// defsStub satisfies DefinitionSource for tests without a full resolver.
type defsStub map[string]catalog.Definition

func (d defsStub) Get(id string) (catalog.Definition, bool) {
	def, ok := d[id]
	return def, ok
}

func houseDef() catalog.Definition {
	return catalog.Definition{
		ID:       "house_small",
		Category: catalog.CategoryZone,
		Zone:     catalog.ZoneResidential,
		Width:    1,
		Depth:    1,
		Cost:     100,
		Capacity: 10,
	}
}

func factoryDef() catalog.Definition {
	return catalog.Definition{
		ID:       "factory",
		Category: catalog.CategoryZone,
		Zone:     catalog.ZoneIndustrial,
		Width:    2,
		Depth:    2,
		Cost:     800,
		Jobs:     52,
	}
}

func TestPlaceBuildingClaimsFootprint(t *testing.T) {
	w := NewWorld(10, 10)

	b, ok := w.PlaceBuilding(factoryDef(), 3, 4, 0, 1, 6)
	if !ok {
		t.Fatalf("Expected placement to succeed")
	}

	for dz := 0; dz < 2; dz++ {
		for dx := 0; dx < 2; dx++ {
			tile, _ := w.TileAt(3+dx, 4+dz)
			if tile.BuildingID != b.ID {
				t.Errorf("Tile (%d,%d) not claimed by building", 3+dx, 4+dz)
			}
		}
	}
	if !b.IsActive || b.Condition != 100 {
		t.Errorf("New building should start active at full condition")
	}
}

func TestPlaceBuildingRejectsOutOfBounds(t *testing.T) {
	w := NewWorld(10, 10)

	// Footprint extends one tile past the east edge.
	if _, ok := w.PlaceBuilding(factoryDef(), 9, 4, 0, 1, 6); ok {
		t.Errorf("Expected out-of-bounds placement to fail")
	}

	// A failed placement must leave the grid untouched.
	tile, _ := w.TileAt(9, 4)
	if tile.BuildingID != "" {
		t.Errorf("Failed placement claimed tile (9,4)")
	}
}

func TestPlaceBuildingRejectsOverlap(t *testing.T) {
	w := NewWorld(10, 10)

	if _, ok := w.PlaceBuilding(factoryDef(), 2, 2, 0, 1, 6); !ok {
		t.Fatalf("First placement should succeed")
	}
	// Second footprint overlaps the first at (3,3).
	if _, ok := w.PlaceBuilding(factoryDef(), 3, 3, 0, 1, 6); ok {
		t.Errorf("Expected overlapping placement to fail")
	}
	if len(w.Buildings()) != 1 {
		t.Errorf("Expected exactly one building, got %d", len(w.Buildings()))
	}
}

func TestSingleOccupancyInvariant(t *testing.T) {
	w := NewWorld(10, 10)

	if _, ok := w.PlaceRoad(5, 5); !ok {
		t.Fatalf("Road placement should succeed")
	}
	if _, ok := w.PlaceBuilding(houseDef(), 5, 5, 0, 1, 6); ok {
		t.Errorf("Building placed on road tile")
	}

	b, _ := w.PlaceBuilding(houseDef(), 6, 5, 0, 1, 6)
	if _, ok := w.PlaceRoad(6, 5); ok {
		t.Errorf("Road placed on building tile")
	}
	tile, _ := w.TileAt(6, 5)
	if tile.BuildingID != b.ID || tile.RoadID != "" {
		t.Errorf("Tile holds more than one occupant")
	}
}

func TestFootprintRotation(t *testing.T) {
	def := catalog.Definition{ID: "wide", Width: 3, Depth: 1}

	fw, fd, ok := Footprint(def, 90)
	if !ok || fw != 1 || fd != 3 {
		t.Errorf("Expected 90 degree rotation to swap to 1x3, got %dx%d", fw, fd)
	}
	fw, fd, ok = Footprint(def, 180)
	if !ok || fw != 3 || fd != 1 {
		t.Errorf("Expected 180 degree rotation to keep 3x1, got %dx%d", fw, fd)
	}
	if _, _, ok := Footprint(def, 45); ok {
		t.Errorf("Expected non-cardinal rotation to be rejected")
	}
}

func TestRemoveBuildingReleasesTiles(t *testing.T) {
	w := NewWorld(10, 10)
	b, _ := w.PlaceBuilding(factoryDef(), 3, 3, 0, 1, 6)

	if _, ok := w.RemoveBuilding(b.ID); !ok {
		t.Fatalf("Expected removal to succeed")
	}
	for dz := 0; dz < 2; dz++ {
		for dx := 0; dx < 2; dx++ {
			tile, _ := w.TileAt(3+dx, 3+dz)
			if tile.Occupied() {
				t.Errorf("Tile (%d,%d) still occupied after demolition", 3+dx, 3+dz)
			}
		}
	}
	if _, ok := w.RemoveBuilding(b.ID); ok {
		t.Errorf("Second removal of same id should fail")
	}
}

func TestSetZoneRejectsOccupiedTile(t *testing.T) {
	w := NewWorld(10, 10)
	w.PlaceRoad(2, 2)

	if w.SetZone(2, 2, catalog.ZoneResidential) {
		t.Errorf("Zone change on occupied tile should fail")
	}
	if !w.SetZone(2, 3, catalog.ZoneResidential) {
		t.Errorf("Zone change on empty tile should succeed")
	}
	if w.SetZone(-1, 0, catalog.ZoneResidential) {
		t.Errorf("Zone change out of bounds should fail")
	}
}

func TestMergeTilePartialUpdate(t *testing.T) {
	w := NewWorld(10, 10)
	w.SetZone(1, 1, catalog.ZoneCommercial)

	load := 0.5
	if !w.MergeTile(1, 1, TilePatch{TrafficLoad: &load}) {
		t.Fatalf("Metric patch should succeed")
	}
	tile, _ := w.TileAt(1, 1)
	if tile.TrafficLoad != 0.5 {
		t.Errorf("Expected traffic load 0.5, got %v", tile.TrafficLoad)
	}
	if tile.Zone != catalog.ZoneCommercial {
		t.Errorf("Patch without zone field must not touch the zone")
	}
}

func TestRoadConnectionsSymmetric(t *testing.T) {
	w := NewWorld(10, 10)

	a, _ := w.PlaceRoad(4, 4)
	b, _ := w.PlaceRoad(5, 4)
	c, _ := w.PlaceRoad(5, 5)

	hasConn := func(r *Road, id string) bool {
		for _, conn := range r.Connections {
			if conn == id {
				return true
			}
		}
		return false
	}

	if !hasConn(a, b.ID) || !hasConn(b, a.ID) {
		t.Errorf("Adjacent roads a,b should reference each other")
	}
	if !hasConn(b, c.ID) || !hasConn(c, b.ID) {
		t.Errorf("Adjacent roads b,c should reference each other")
	}
	if hasConn(a, c.ID) {
		t.Errorf("Diagonal roads must not connect")
	}

	// Removing the middle road severs both references.
	w.RemoveRoad(b.ID)
	if hasConn(a, b.ID) || hasConn(c, b.ID) {
		t.Errorf("Connections to removed road should be gone")
	}
}
