package world

import (
	"sort"

	"github.com/google/uuid"

	"microcity/server/internal/catalog"
)

// World owns the grid and every structure on it. It is mutated only from the
// single simulation goroutine; observers read through the getters.
type World struct {
	width     int
	depth     int
	tiles     [][]*Tile // indexed [z][x]
	buildings map[string]*Building
	roads     map[string]*Road
}

// NewWorld creates an empty grid of width x depth tiles.
func NewWorld(width, depth int) *World {
	if width < 1 {
		width = 1
	}
	if depth < 1 {
		depth = 1
	}
	w := &World{
		width:     width,
		depth:     depth,
		buildings: make(map[string]*Building),
		roads:     make(map[string]*Road),
	}
	w.tiles = newTileGrid(width, depth)
	return w
}

func newTileGrid(width, depth int) [][]*Tile {
	tiles := make([][]*Tile, depth)
	for z := 0; z < depth; z++ {
		row := make([]*Tile, width)
		for x := 0; x < width; x++ {
			row[x] = &Tile{X: x, Z: z, LandValue: baseLandValue, Crime: baseCrime}
		}
		tiles[z] = row
	}
	return tiles
}

// Width returns the grid width in tiles.
func (w *World) Width() int { return w.width }

// Depth returns the grid depth in tiles.
func (w *World) Depth() int { return w.depth }

// InBounds reports whether (x,z) is a valid tile coordinate.
func (w *World) InBounds(x, z int) bool {
	return x >= 0 && z >= 0 && x < w.width && z < w.depth
}

// TileAt returns the tile at (x,z), or false when out of bounds.
func (w *World) TileAt(x, z int) (*Tile, bool) {
	if !w.InBounds(x, z) {
		return nil, false
	}
	return w.tiles[z][x], true
}

// MergeTile applies a partial update to the tile at (x,z). A zone change on
// an occupied tile is rejected and nothing is applied.
func (w *World) MergeTile(x, z int, patch TilePatch) bool {
	t, ok := w.TileAt(x, z)
	if !ok {
		return false
	}
	if patch.Zone != nil && t.Occupied() {
		return false
	}
	if patch.Zone != nil {
		t.Zone = *patch.Zone
	}
	if patch.LandValue != nil {
		t.LandValue = *patch.LandValue
	}
	if patch.Pollution != nil {
		t.Pollution = *patch.Pollution
	}
	if patch.Crime != nil {
		t.Crime = *patch.Crime
	}
	if patch.TrafficLoad != nil {
		t.TrafficLoad = *patch.TrafficLoad
	}
	return true
}

// SetZone assigns a zone to an unoccupied tile. Returns false when the tile
// is out of bounds or occupied.
func (w *World) SetZone(x, z int, zone catalog.Zone) bool {
	return w.MergeTile(x, z, TilePatch{Zone: &zone})
}

// Footprint returns the effective footprint of def under rotation. 90 and
// 270 degree rotations swap width and depth.
func Footprint(def catalog.Definition, rotation int) (int, int, bool) {
	switch rotation {
	case 0, 180:
		return def.Width, def.Depth, true
	case 90, 270:
		return def.Depth, def.Width, true
	default:
		return 0, 0, false
	}
}

// CanPlaceBuilding reports whether def fits at (x,z) with the given rotation:
// every footprint tile in bounds and unoccupied.
func (w *World) CanPlaceBuilding(def catalog.Definition, x, z, rotation int) bool {
	fw, fd, ok := Footprint(def, rotation)
	if !ok {
		return false
	}
	for dz := 0; dz < fd; dz++ {
		for dx := 0; dx < fw; dx++ {
			t, ok := w.TileAt(x+dx, z+dz)
			if !ok || t.Occupied() {
				return false
			}
		}
	}
	return true
}

// PlaceBuilding atomically claims the footprint for a new building. The
// area-empty check happens before any tile is touched, so a failed placement
// leaves the grid unchanged. Returns (nil, false) on failure.
func (w *World) PlaceBuilding(def catalog.Definition, x, z, rotation, day, hour int) (*Building, bool) {
	if !w.CanPlaceBuilding(def, x, z, rotation) {
		return nil, false
	}
	fw, fd, _ := Footprint(def, rotation)
	b := &Building{
		ID:           uuid.NewString(),
		DefinitionID: def.ID,
		X:            x,
		Z:            z,
		Width:        fw,
		Depth:        fd,
		Rotation:     rotation,
		Condition:    100,
		IsActive:     true,
		PlacedDay:    day,
		PlacedHour:   hour,
	}
	for dz := 0; dz < fd; dz++ {
		for dx := 0; dx < fw; dx++ {
			w.tiles[z+dz][x+dx].BuildingID = b.ID
		}
	}
	w.buildings[b.ID] = b
	return b, true
}

// RemoveBuilding demolishes a building and releases its footprint tiles.
func (w *World) RemoveBuilding(id string) (*Building, bool) {
	b, ok := w.buildings[id]
	if !ok {
		return nil, false
	}
	for dz := 0; dz < b.Depth; dz++ {
		for dx := 0; dx < b.Width; dx++ {
			if t, ok := w.TileAt(b.X+dx, b.Z+dz); ok && t.BuildingID == id {
				t.BuildingID = ""
			}
		}
	}
	delete(w.buildings, id)
	return b, true
}

// Building returns the building with the given id.
func (w *World) Building(id string) (*Building, bool) {
	b, ok := w.buildings[id]
	return b, ok
}

// Buildings returns every building in stable id order.
func (w *World) Buildings() []*Building {
	out := make([]*Building, 0, len(w.buildings))
	for _, b := range w.buildings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PlaceRoad places a road cell at (x,z) and refreshes adjacency for it and
// its orthogonal neighbors. Returns (nil, false) when the tile is out of
// bounds or occupied.
func (w *World) PlaceRoad(x, z int) (*Road, bool) {
	t, ok := w.TileAt(x, z)
	if !ok || t.Occupied() {
		return nil, false
	}
	r := &Road{ID: uuid.NewString(), X: x, Z: z}
	t.RoadID = r.ID
	t.Zone = catalog.ZoneNone
	w.roads[r.ID] = r
	w.refreshConnectionsAround(x, z)
	return r, true
}

// RemoveRoad removes a road cell and refreshes its neighbors' adjacency.
func (w *World) RemoveRoad(id string) bool {
	r, ok := w.roads[id]
	if !ok {
		return false
	}
	if t, ok := w.TileAt(r.X, r.Z); ok && t.RoadID == id {
		t.RoadID = ""
	}
	delete(w.roads, id)
	w.refreshConnectionsAround(r.X, r.Z)
	return true
}

// Road returns the road with the given id.
func (w *World) Road(id string) (*Road, bool) {
	r, ok := w.roads[id]
	return r, ok
}

// RoadAt returns the road occupying (x,z).
func (w *World) RoadAt(x, z int) (*Road, bool) {
	t, ok := w.TileAt(x, z)
	if !ok || t.RoadID == "" {
		return nil, false
	}
	r, ok := w.roads[t.RoadID]
	return r, ok
}

// Roads returns every road in stable id order.
func (w *World) Roads() []*Road {
	out := make([]*Road, 0, len(w.roads))
	for _, r := range w.roads {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// orthoOffsets orders neighbor visits north, east, south, west.
var orthoOffsets = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// refreshConnectionsAround recomputes adjacency for (x,z) and its four
// orthogonal neighbors. Called on every road topology change.
func (w *World) refreshConnectionsAround(x, z int) {
	w.refreshConnections(x, z)
	for _, off := range orthoOffsets {
		w.refreshConnections(x+off[0], z+off[1])
	}
}

func (w *World) refreshConnections(x, z int) {
	r, ok := w.RoadAt(x, z)
	if !ok {
		return
	}
	conns := r.Connections[:0]
	for _, off := range orthoOffsets {
		if n, ok := w.RoadAt(x+off[0], z+off[1]); ok {
			conns = append(conns, n.ID)
		}
	}
	r.Connections = conns
}
