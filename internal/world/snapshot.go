package world

import (
	"fmt"

	"microcity/server/internal/catalog"
)

// Snapshot is the value-typed export of the grid. Only tiles carrying state
// (a zone or a non-default metric) are listed; occupant references are
// reconstructed from the building and road lists on restore.
type Snapshot struct {
	Width     int        `json:"width"`
	Depth     int        `json:"depth"`
	Tiles     []Tile     `json:"tiles"`
	Buildings []Building `json:"buildings"`
	Roads     []Road     `json:"roads"`
}

// Snapshot exports the current grid state.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{Width: w.width, Depth: w.depth}
	for z := 0; z < w.depth; z++ {
		for x := 0; x < w.width; x++ {
			t := w.tiles[z][x]
			if t.Zone != catalog.ZoneNone || t.Pollution != 0 || t.TrafficLoad != 0 ||
				t.Crime != baseCrime || t.LandValue != baseLandValue {
				s.Tiles = append(s.Tiles, *t)
			}
		}
	}
	for _, b := range w.Buildings() {
		s.Buildings = append(s.Buildings, *b)
	}
	for _, r := range w.Roads() {
		road := *r
		road.Connections = append([]string(nil), r.Connections...)
		s.Roads = append(s.Roads, road)
	}
	return s
}

// Restore replaces the grid with the snapshot contents. Validation fails
// closed: any structural problem returns an error and leaves the receiver
// untouched. Road connections are recomputed rather than trusted.
func (w *World) Restore(s Snapshot) error {
	if s.Width < 1 || s.Depth < 1 {
		return fmt.Errorf("snapshot has invalid dimensions %dx%d", s.Width, s.Depth)
	}

	next := NewWorld(s.Width, s.Depth)

	for _, src := range s.Tiles {
		t, ok := next.TileAt(src.X, src.Z)
		if !ok {
			return fmt.Errorf("snapshot tile (%d,%d) out of bounds", src.X, src.Z)
		}
		if src.Zone != catalog.ZoneNone && !src.Zone.Valid() {
			return fmt.Errorf("snapshot tile (%d,%d) has unknown zone %q", src.X, src.Z, src.Zone)
		}
		t.Zone = src.Zone
		t.LandValue = src.LandValue
		t.Pollution = src.Pollution
		t.Crime = src.Crime
		t.TrafficLoad = src.TrafficLoad
	}

	for _, src := range s.Buildings {
		if src.ID == "" || src.DefinitionID == "" {
			return fmt.Errorf("snapshot building missing id or definition")
		}
		if src.Width < 1 || src.Depth < 1 {
			return fmt.Errorf("snapshot building %s has invalid footprint", src.ID)
		}
		if _, dup := next.buildings[src.ID]; dup {
			return fmt.Errorf("snapshot building %s duplicated", src.ID)
		}
		b := src
		for dz := 0; dz < b.Depth; dz++ {
			for dx := 0; dx < b.Width; dx++ {
				t, ok := next.TileAt(b.X+dx, b.Z+dz)
				if !ok {
					return fmt.Errorf("snapshot building %s exceeds grid bounds", b.ID)
				}
				if t.Occupied() {
					return fmt.Errorf("snapshot building %s overlaps tile (%d,%d)", b.ID, t.X, t.Z)
				}
				t.BuildingID = b.ID
			}
		}
		next.buildings[b.ID] = &b
	}

	for _, src := range s.Roads {
		if src.ID == "" {
			return fmt.Errorf("snapshot road missing id")
		}
		if _, dup := next.roads[src.ID]; dup {
			return fmt.Errorf("snapshot road %s duplicated", src.ID)
		}
		t, ok := next.TileAt(src.X, src.Z)
		if !ok {
			return fmt.Errorf("snapshot road %s out of bounds", src.ID)
		}
		if t.Occupied() {
			return fmt.Errorf("snapshot road %s overlaps tile (%d,%d)", src.ID, t.X, t.Z)
		}
		r := Road{ID: src.ID, X: src.X, Z: src.Z, TrafficLoad: src.TrafficLoad}
		t.RoadID = r.ID
		next.roads[r.ID] = &r
	}
	for _, r := range next.roads {
		next.refreshConnections(r.X, r.Z)
	}

	// All checks passed; adopt the rebuilt grid.
	w.width = next.width
	w.depth = next.depth
	w.tiles = next.tiles
	w.buildings = next.buildings
	w.roads = next.roads
	return nil
}
