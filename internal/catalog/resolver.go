package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Resolver is the injected lookup table. It is immutable after construction;
// systems hold a reference and never write through it.
type Resolver struct {
	byID []Definition // sorted by id for deterministic iteration
	idx  map[string]int
}

// NewResolver builds a resolver from the built-in defaults.
func NewResolver() *Resolver {
	r, _ := newResolver(nil)
	return r
}

// Load builds a resolver from the defaults merged with the document at path.
// Definitions in the document replace defaults with the same id.
func Load(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog document %s: %w", path, err)
	}
	return newResolver(doc.Definitions)
}

func newResolver(overrides []Definition) (*Resolver, error) {
	merged := make(map[string]Definition)
	for _, def := range defaultDefinitions() {
		merged[def.ID] = def
	}
	for _, def := range overrides {
		if err := validate(def); err != nil {
			return nil, err
		}
		merged[def.ID] = def
	}

	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	r := &Resolver{
		byID: make([]Definition, 0, len(merged)),
		idx:  make(map[string]int, len(merged)),
	}
	for i, id := range ids {
		r.byID = append(r.byID, merged[id])
		r.idx[id] = i
	}
	return r, nil
}

func validate(def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("catalog definition missing id")
	}
	if def.Width < 1 || def.Depth < 1 {
		return fmt.Errorf("catalog definition %q: footprint must be at least 1x1", def.ID)
	}
	if def.Cost < 0 || def.MaintenanceCost < 0 {
		return fmt.Errorf("catalog definition %q: negative cost", def.ID)
	}
	switch def.Category {
	case CategoryZone:
		if !def.Zone.Valid() {
			return fmt.Errorf("catalog definition %q: zone building needs a valid zone", def.ID)
		}
	case CategoryService:
		if def.ServiceType == ServiceNone {
			return fmt.Errorf("catalog definition %q: service building needs a serviceType", def.ID)
		}
		if def.ServiceRadius < 1 {
			return fmt.Errorf("catalog definition %q: service building needs a positive serviceRadius", def.ID)
		}
	default:
		return fmt.Errorf("catalog definition %q: unknown category %q", def.ID, def.Category)
	}
	return nil
}

// Get returns the definition for id.
func (r *Resolver) Get(id string) (Definition, bool) {
	i, ok := r.idx[id]
	if !ok {
		return Definition{}, false
	}
	return r.byID[i], true
}

// All returns every definition in stable id order.
func (r *Resolver) All() []Definition {
	out := make([]Definition, len(r.byID))
	copy(out, r.byID)
	return out
}

// ByZone returns the zone buildings for the given zone, cheapest first.
// Growth picks the first entry that fits and is affordable.
func (r *Resolver) ByZone(zone Zone) []Definition {
	var out []Definition
	for _, def := range r.byID {
		if def.Category == CategoryZone && def.Zone == zone {
			out = append(out, def)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cost < out[j].Cost })
	return out
}

// Services returns every service definition in stable id order.
func (r *Resolver) Services() []Definition {
	var out []Definition
	for _, def := range r.byID {
		if def.Category == CategoryService {
			out = append(out, def)
		}
	}
	return out
}
