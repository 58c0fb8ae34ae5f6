package engine

import (
	"math/rand"

	"github.com/google/uuid"

	"microcity/server/internal/catalog"
	"microcity/server/internal/events"
	"microcity/server/internal/platform/logger"
	"microcity/server/internal/world"
)

// VehicleState describes where a vehicle is in its lifecycle.
type VehicleState string

const (
	VehicleMoving  VehicleState = "moving"
	VehicleWaiting VehicleState = "waiting"
	VehicleParked  VehicleState = "parked"
)

// Vehicle is a transient commuter. It is never persisted; snapshots drop
// vehicles and traffic re-seeds itself.
type Vehicle struct {
	ID        string       `json:"id"`
	X         float64      `json:"x"`
	Z         float64      `json:"z"`
	Path      []GridPoint  `json:"path"`
	PathIndex int          `json:"path_index"`
	Speed     float64      `json:"speed"` // tiles per simulated minute
	State     VehicleState `json:"state"`

	progress float64 // fraction advanced toward the next waypoint
}

// TrafficSystem is the only per-frame system: it spawns commuters from
// occupied residential buildings toward commercial/industrial destinations,
// moves them along A* paths, and feeds per-road congestion back into the
// world each tick.
type TrafficSystem struct {
	world    *world.World
	defs     *catalog.Resolver
	eventLog *events.Log
	logger   *logger.Logger
	rng      *rand.Rand

	vehicles []*Vehicle
}

// NewTrafficSystem creates the per-tick traffic system. The rng seed is the
// caller's choice; a fixed seed makes runs reproducible.
func NewTrafficSystem(w *world.World, defs *catalog.Resolver, eventLog *events.Log, log *logger.Logger, rng *rand.Rand) *TrafficSystem {
	return &TrafficSystem{
		world:    w,
		defs:     defs,
		eventLog: eventLog,
		logger:   log,
		rng:      rng,
	}
}

// Name implements System.
func (ts *TrafficSystem) Name() string { return "traffic" }

// Reset implements System. Vehicles are transient, so a reset clears them.
func (ts *TrafficSystem) Reset() {
	ts.vehicles = nil
	ts.clearCongestion()
}

// Vehicles returns a copy of the active vehicle list for observers.
func (ts *TrafficSystem) Vehicles() []Vehicle {
	out := make([]Vehicle, 0, len(ts.vehicles))
	for _, v := range ts.vehicles {
		out = append(out, *v)
	}
	return out
}

// Update implements System; traffic runs every tick, unthrottled.
func (ts *TrafficSystem) Update(delta float64, clock Clock) {
	ts.removeParked()
	ts.moveVehicles(delta)
	ts.recomputeCongestion()
	ts.trySpawn()
}

// removeParked drops vehicles that finished their route on the previous
// tick. Arrival and removal are deliberately one tick apart so observers see
// the parked state.
func (ts *TrafficSystem) removeParked() {
	kept := ts.vehicles[:0]
	for _, v := range ts.vehicles {
		if v.State != VehicleParked {
			kept = append(kept, v)
		}
	}
	ts.vehicles = kept
}

// moveVehicles advances each vehicle along its waypoints. A congested next
// waypoint slows the vehicle; a waypoint whose road disappeared strands the
// path and parks the vehicle for cleanup.
func (ts *TrafficSystem) moveVehicles(delta float64) {
	minutes := delta / 60
	for _, v := range ts.vehicles {
		if v.State == VehicleParked || v.PathIndex >= len(v.Path)-1 {
			v.State = VehicleParked
			continue
		}
		next := v.Path[v.PathIndex+1]
		nextRoad, ok := ts.world.RoadAt(next.X, next.Z)
		if !ok {
			// Road was demolished under the path.
			v.State = VehicleParked
			continue
		}

		speed := v.Speed * minutes
		if nextRoad.TrafficLoad > congestionThreshold {
			speed *= congestionSlowdown
			v.State = VehicleWaiting
		} else {
			v.State = VehicleMoving
		}

		v.progress += speed
		for v.progress >= 1 && v.PathIndex < len(v.Path)-1 {
			v.progress -= 1
			v.PathIndex++
		}
		cell := v.Path[v.PathIndex]
		v.X = float64(cell.X)
		v.Z = float64(cell.Z)
		if v.PathIndex >= len(v.Path)-1 {
			v.State = VehicleParked
			v.progress = 0
		}
	}
}

// recomputeCongestion rewrites every road's traffic load from current
// vehicle positions and mirrors it onto the tile metrics.
func (ts *TrafficSystem) recomputeCongestion() {
	counts := make(map[GridPoint]int)
	for _, v := range ts.vehicles {
		if v.PathIndex < len(v.Path) {
			counts[v.Path[v.PathIndex]]++
		}
	}
	for _, r := range ts.world.Roads() {
		load := float64(counts[GridPoint{X: r.X, Z: r.Z}]) / roadVehicleCapacity
		if load > 1 {
			load = 1
		}
		r.TrafficLoad = load
		ts.world.MergeTile(r.X, r.Z, world.TilePatch{TrafficLoad: &load})
	}
}

func (ts *TrafficSystem) clearCongestion() {
	zero := 0.0
	for _, r := range ts.world.Roads() {
		r.TrafficLoad = 0
		ts.world.MergeTile(r.X, r.Z, world.TilePatch{TrafficLoad: &zero})
	}
}

// trySpawn rolls spawn probability from the count of eligible residential
// origins and creates at most one vehicle per tick. A trip with no route is
// rejected outright: no vehicle is created and no retry happens this tick.
func (ts *TrafficSystem) trySpawn() {
	origins := ts.eligibleOrigins()
	if len(origins) == 0 {
		return
	}
	p := float64(len(origins)) * trafficSpawnPerHome
	if p > trafficSpawnCeil {
		p = trafficSpawnCeil
	}
	if ts.rng.Float64() >= p {
		return
	}

	dests := ts.destinations()
	if len(dests) == 0 {
		return
	}
	origin := origins[ts.rng.Intn(len(origins))]
	dest := dests[ts.rng.Intn(len(dests))]

	path, ok := FindPath(ts.world, origin, dest, pathExpansionLimit)
	if !ok {
		return
	}

	ts.vehicles = append(ts.vehicles, &Vehicle{
		ID:    uuid.NewString(),
		X:     float64(origin.X),
		Z:     float64(origin.Z),
		Path:  path,
		Speed: vehicleBaseSpeed,
		State: VehicleMoving,
	})
}

// eligibleOrigins returns road cells adjacent to residential buildings with
// occupancy above the spawn minimum, in stable order.
func (ts *TrafficSystem) eligibleOrigins() []GridPoint {
	var out []GridPoint
	for _, b := range ts.world.Buildings() {
		def, ok := ts.defs.Get(b.DefinitionID)
		if !ok || def.Zone != catalog.ZoneResidential || b.Occupancy < trafficMinOccupancy {
			continue
		}
		if p, ok := ts.adjacentRoad(b); ok {
			out = append(out, p)
		}
	}
	return out
}

// destinations returns road cells adjacent to active commercial or
// industrial buildings.
func (ts *TrafficSystem) destinations() []GridPoint {
	var out []GridPoint
	for _, b := range ts.world.Buildings() {
		def, ok := ts.defs.Get(b.DefinitionID)
		if !ok || !b.IsActive {
			continue
		}
		if def.Zone != catalog.ZoneCommercial && def.Zone != catalog.ZoneIndustrial {
			continue
		}
		if p, ok := ts.adjacentRoad(b); ok {
			out = append(out, p)
		}
	}
	return out
}

// adjacentRoad scans the building's footprint perimeter for the first road
// cell.
func (ts *TrafficSystem) adjacentRoad(b *world.Building) (GridPoint, bool) {
	for dz := -1; dz <= b.Depth; dz++ {
		for dx := -1; dx <= b.Width; dx++ {
			inside := dx >= 0 && dx < b.Width && dz >= 0 && dz < b.Depth
			if inside {
				continue
			}
			if r, ok := ts.world.RoadAt(b.X+dx, b.Z+dz); ok {
				return GridPoint{X: r.X, Z: r.Z}, true
			}
		}
	}
	return GridPoint{}, false
}
