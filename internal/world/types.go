// Package world owns the spatial grid: tiles, buildings, and roads, plus the
// structural invariants placement and removal must uphold. Nothing in here
// knows about the scheduler or the systems; they mutate the world through
// the operations on World.
package world

import "microcity/server/internal/catalog"

// Tile is one addressable cell of the grid at integer (x,z). A tile holds at
// most one occupant: a building reference or a road reference, never both.
type Tile struct {
	X           int          `json:"x"`
	Z           int          `json:"z"`
	Zone        catalog.Zone `json:"zone,omitempty"`
	BuildingID  string       `json:"building_id,omitempty"`
	RoadID      string       `json:"road_id,omitempty"`
	LandValue   float64      `json:"land_value,omitempty"`
	Pollution   float64      `json:"pollution,omitempty"`
	Crime       float64      `json:"crime,omitempty"`
	TrafficLoad float64      `json:"traffic_load,omitempty"`
}

// Occupied reports whether the tile holds a building or a road.
func (t *Tile) Occupied() bool {
	return t.BuildingID != "" || t.RoadID != ""
}

// TilePatch is a partial tile update. Nil fields are left untouched.
// Occupant references are not patchable; they change only through the
// placement operations.
type TilePatch struct {
	Zone        *catalog.Zone
	LandValue   *float64
	Pollution   *float64
	Crime       *float64
	TrafficLoad *float64
}

// Building is a placed structure. Tiles reference it by id; the World owns
// the record. Created only by successful placement, destroyed only by
// demolition.
type Building struct {
	ID           string  `json:"id"`
	DefinitionID string  `json:"definition_id"`
	X            int     `json:"x"`
	Z            int     `json:"z"`
	Width        int     `json:"width"`
	Depth        int     `json:"depth"`
	Rotation     int     `json:"rotation"`
	Occupancy    float64 `json:"occupancy"`
	Condition    float64 `json:"condition"`
	IsActive     bool    `json:"is_active"`
	IsPowered    bool    `json:"is_powered"`
	HasWater     bool    `json:"has_water"`
	PlacedDay    int     `json:"placed_day"`
	PlacedHour   int     `json:"placed_hour"`
}

// Road is a single road cell. Connections list the ids of orthogonally
// adjacent roads and are recomputed on every topology change; the relation
// is always symmetric.
type Road struct {
	ID          string   `json:"id"`
	X           int      `json:"x"`
	Z           int      `json:"z"`
	Connections []string `json:"connections,omitempty"`
	TrafficLoad float64  `json:"traffic_load"`
}

// DefinitionSource is the read-only catalog capability the world needs for
// coverage recomputation. Satisfied by *catalog.Resolver.
type DefinitionSource interface {
	Get(id string) (catalog.Definition, bool)
}
