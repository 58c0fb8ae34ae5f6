package engine

import "microcity/server/internal/catalog"

// Shared aggregate state. Each struct has exactly one writing system (plus
// the direct debits the simulation facade applies on placement); everything
// else reads.

// EconomyState tracks the city treasury and the hourly flow breakdowns.
// Mutated only by the economy system and the facade's direct debits/credits.
type EconomyState struct {
	Balance  float64            `json:"balance"`
	Income   map[string]float64 `json:"income"`   // monthly-scale, keyed by zone
	Expenses map[string]float64 `json:"expenses"` // monthly-scale, keyed by zone or service category
	TaxRates map[catalog.Zone]float64 `json:"tax_rates"`
}

// NewEconomyState creates a treasury with the given starting balance and
// default tax rates.
func NewEconomyState(balance float64) *EconomyState {
	return &EconomyState{
		Balance:  balance,
		Income:   make(map[string]float64),
		Expenses: make(map[string]float64),
		TaxRates: map[catalog.Zone]float64{
			catalog.ZoneResidential: defaultTaxRate,
			catalog.ZoneCommercial:  defaultTaxRate,
			catalog.ZoneIndustrial:  defaultTaxRate,
		},
	}
}

// TaxRate returns the rate for a zone in percent.
func (e *EconomyState) TaxRate(zone catalog.Zone) float64 {
	return e.TaxRates[zone]
}

// SetTaxRate clamps and stores a zone tax rate.
func (e *EconomyState) SetTaxRate(zone catalog.Zone, rate float64) {
	if rate < 0 {
		rate = 0
	}
	if rate > maxTaxRate {
		rate = maxTaxRate
	}
	e.TaxRates[zone] = rate
}

// TotalIncome sums the monthly-scale income breakdown.
func (e *EconomyState) TotalIncome() float64 {
	total := 0.0
	for _, v := range e.Income {
		total += v
	}
	return total
}

// TotalExpenses sums the monthly-scale expense breakdown.
func (e *EconomyState) TotalExpenses() float64 {
	total := 0.0
	for _, v := range e.Expenses {
		total += v
	}
	return total
}

// Debit subtracts a direct cost (building or road placement).
func (e *EconomyState) Debit(amount float64) {
	e.Balance -= amount
}

// Credit adds a direct income (demolition refund).
func (e *EconomyState) Credit(amount float64) {
	e.Balance += amount
}

// PopulationState tracks the aggregate citizenry. Mutated only by the
// population system.
type PopulationState struct {
	Total          float64 `json:"total"`
	Employed       float64 `json:"employed"`
	Unemployed     float64 `json:"unemployed"`
	EmploymentRate float64 `json:"employment_rate"`
	Happiness      float64 `json:"happiness"`
	Children       float64 `json:"children"`
	Adults         float64 `json:"adults"`
	Seniors        float64 `json:"seniors"`
}

// NewPopulationState starts an empty city at neutral happiness.
func NewPopulationState() *PopulationState {
	return &PopulationState{Happiness: happinessBase, EmploymentRate: 1}
}

// ZoneDemand holds the three signed demand scalars in [-100,100].
type ZoneDemand struct {
	Residential float64 `json:"residential"`
	Commercial  float64 `json:"commercial"`
	Industrial  float64 `json:"industrial"`
}

// For returns the scalar for a zone.
func (d *ZoneDemand) For(zone catalog.Zone) float64 {
	switch zone {
	case catalog.ZoneResidential:
		return d.Residential
	case catalog.ZoneCommercial:
		return d.Commercial
	case catalog.ZoneIndustrial:
		return d.Industrial
	}
	return 0
}

// Factor maps a zone's demand from [-100,100] to [0,1].
func (d *ZoneDemand) Factor(zone catalog.Zone) float64 {
	return (d.For(zone) + 100) / 200
}

func clampDemand(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < -100 {
		return -100
	}
	return v
}

func clampPercent(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
