package world

// Utility coverage and the derived tile environment. Both recomputations are
// idempotent: running them twice with no intervening mutation yields the
// same result, which the mutating call paths rely on.

const (
	baseLandValue = 10.0
	baseCrime     = 5.0

	pollutionSpread   = 5  // tiles a polluting building degrades around itself
	policeCrimeEffect = 3.0
)

// chebyshev is the grid distance used for every radius check.
func chebyshev(ax, az, bx, bz int) int {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dz := az - bz
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

// serviceSource pairs an active service building with its resolved radius.
type serviceSource struct {
	b      *Building
	radius int
}

// activeSources collects active service buildings of one type, in stable
// building id order.
func (w *World) activeSources(defs DefinitionSource, serviceType string, poweredOnly bool) []serviceSource {
	var out []serviceSource
	for _, b := range w.Buildings() {
		if !b.IsActive {
			continue
		}
		if poweredOnly && !b.IsPowered {
			continue
		}
		def, ok := defs.Get(b.DefinitionID)
		if !ok || string(def.ServiceType) != serviceType {
			continue
		}
		out = append(out, serviceSource{b: b, radius: def.ServiceRadius})
	}
	return out
}

// covers reports whether any source reaches the footprint anchored at (x,z)
// with the given size.
func covers(sources []serviceSource, x, z, width, depth int) bool {
	for _, s := range sources {
		for dz := 0; dz < depth; dz++ {
			for dx := 0; dx < width; dx++ {
				if chebyshev(s.b.X, s.b.Z, x+dx, z+dz) <= s.radius {
					return true
				}
			}
		}
	}
	return false
}

// RecomputeCoverage rewrites IsPowered/HasWater for every building. The
// dependency is asymmetric: power coverage needs an active power source in
// range; water coverage needs an active water source in range that is itself
// power-covered. Power is therefore resolved first.
func (w *World) RecomputeCoverage(defs DefinitionSource) {
	powerSources := w.activeSources(defs, "power", false)
	for _, b := range w.Buildings() {
		b.IsPowered = covers(powerSources, b.X, b.Z, b.Width, b.Depth)
	}

	waterSources := w.activeSources(defs, "water", true)
	for _, b := range w.Buildings() {
		b.HasWater = covers(waterSources, b.X, b.Z, b.Width, b.Depth)
	}
}

// CoverageAt reports power and water coverage for a single tile, under the
// same asymmetric rule as RecomputeCoverage. Growth uses this to gate spawns
// on empty zoned tiles. Call after RecomputeCoverage so water sources carry
// fresh power state.
func (w *World) CoverageAt(defs DefinitionSource, x, z int) (powered, watered bool) {
	powered = covers(w.activeSources(defs, "power", false), x, z, 1, 1)
	watered = covers(w.activeSources(defs, "water", true), x, z, 1, 1)
	return powered, watered
}

// RecomputeEnvironment rewrites the derived tile metrics: pollution from
// polluting buildings, land value from parks, crime damped near police
// stations. Traffic load is owned by the traffic system and left alone.
func (w *World) RecomputeEnvironment(defs DefinitionSource) {
	for z := 0; z < w.depth; z++ {
		for x := 0; x < w.width; x++ {
			t := w.tiles[z][x]
			t.Pollution = 0
			t.LandValue = baseLandValue
			t.Crime = baseCrime
		}
	}

	for _, b := range w.Buildings() {
		if !b.IsActive {
			continue
		}
		def, ok := defs.Get(b.DefinitionID)
		if !ok {
			continue
		}
		if def.Pollution > 0 {
			w.spreadMetric(b, pollutionSpread, func(t *Tile, falloff float64) {
				t.Pollution += def.Pollution * falloff
				t.LandValue -= def.Pollution * falloff
				if t.LandValue < 0 {
					t.LandValue = 0
				}
			})
		}
		if def.LandValue > 0 && def.ServiceRadius > 0 {
			w.spreadMetric(b, def.ServiceRadius, func(t *Tile, falloff float64) {
				t.LandValue += def.LandValue * falloff
			})
		}
		if def.ServiceType == "police" {
			w.spreadMetric(b, def.ServiceRadius, func(t *Tile, falloff float64) {
				t.Crime -= policeCrimeEffect * falloff
				if t.Crime < 0 {
					t.Crime = 0
				}
			})
		}
	}
}

// spreadMetric applies fn to every tile within radius of b's origin with a
// linear falloff from 1 at the source to 0 at the edge.
func (w *World) spreadMetric(b *Building, radius int, fn func(t *Tile, falloff float64)) {
	if radius < 1 {
		return
	}
	for z := b.Z - radius; z <= b.Z+radius; z++ {
		for x := b.X - radius; x <= b.X+radius; x++ {
			t, ok := w.TileAt(x, z)
			if !ok {
				continue
			}
			d := chebyshev(b.X, b.Z, x, z)
			if d > radius {
				continue
			}
			fn(t, 1-float64(d)/float64(radius+1))
		}
	}
}

// AveragePollution reports the mean tile pollution, used by the happiness
// model.
func (w *World) AveragePollution() float64 {
	total := 0.0
	for z := 0; z < w.depth; z++ {
		for x := 0; x < w.width; x++ {
			total += w.tiles[z][x].Pollution
		}
	}
	return total / float64(w.width*w.depth)
}
