// Package catalog provides the read-only building definition lookup shared
// by every simulation system. Content comes from designer-authored JSON
// documents merged over a built-in default set; the simulation never mutates
// it.
package catalog

// Zone is the demand category assignable to an unoccupied tile.
type Zone string

const (
	ZoneNone        Zone = ""
	ZoneResidential Zone = "residential"
	ZoneCommercial  Zone = "commercial"
	ZoneIndustrial  Zone = "industrial"
)

// Valid reports whether z is one of the three buildable zones.
func (z Zone) Valid() bool {
	return z == ZoneResidential || z == ZoneCommercial || z == ZoneIndustrial
}

// Category separates zone-driven buildings from city services.
type Category string

const (
	CategoryZone    Category = "zone"
	CategoryService Category = "service"
)

// ServiceType identifies what a service building provides.
type ServiceType string

const (
	ServiceNone      ServiceType = ""
	ServicePower     ServiceType = "power"
	ServiceWater     ServiceType = "water"
	ServicePolice    ServiceType = "police"
	ServiceFire      ServiceType = "fire"
	ServiceHealth    ServiceType = "health"
	ServiceEducation ServiceType = "education"
	ServicePark      ServiceType = "park"
)

// Definition models the JSON contract for a designer-authored building type.
// It is shared with the schema generator (cmd/catalog-schema) so editors get
// a machine-readable document for validation.
type Definition struct {
	ID              string      `json:"id" jsonschema:"title=Definition id,pattern=^[a-z0-9_]+$,description=Stable identifier referenced by placed buildings"`
	Name            string      `json:"name" jsonschema:"description=Display name"`
	Category        Category    `json:"category" jsonschema:"description=zone or service"`
	Zone            Zone        `json:"zone,omitempty" jsonschema:"description=Demand category for zone buildings; empty for services"`
	Width           int         `json:"width" jsonschema:"minimum=1,description=Footprint width in tiles"`
	Depth           int         `json:"depth" jsonschema:"minimum=1,description=Footprint depth in tiles"`
	Cost            float64     `json:"cost" jsonschema:"minimum=0,description=Placement cost debited from the city balance"`
	MaintenanceCost float64     `json:"maintenanceCost" jsonschema:"minimum=0,description=Monthly upkeep"`
	Capacity        int         `json:"capacity,omitempty" jsonschema:"description=Resident capacity for residential buildings"`
	Jobs            int         `json:"jobs,omitempty" jsonschema:"description=Jobs provided by commercial and industrial buildings"`
	ServiceType     ServiceType `json:"serviceType,omitempty" jsonschema:"description=Utility or civic service provided"`
	ServiceRadius   int         `json:"serviceRadius,omitempty" jsonschema:"description=Coverage radius in tiles for service buildings"`
	Pollution       float64     `json:"pollution,omitempty" jsonschema:"description=Pollution output coefficient"`
	LandValue       float64     `json:"landValue,omitempty" jsonschema:"description=Land value influence coefficient"`
}

// Units reports the per-building unit count the economy taxes: residents for
// residential buildings, jobs for everything else.
func (d Definition) Units() int {
	if d.Zone == ZoneResidential {
		return d.Capacity
	}
	return d.Jobs
}

// Document represents a catalog file on disk.
type Document struct {
	Definitions []Definition `json:"definitions" jsonschema:"description=Building definitions merged over the built-in defaults"`
}
