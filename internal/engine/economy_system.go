package engine

import (
	"microcity/server/internal/catalog"
	"microcity/server/internal/events"
	"microcity/server/internal/platform/logger"
	"microcity/server/internal/world"
)

// EconomySystem aggregates tax income and maintenance expenses once per
// simulated hour and drips 1/24 of the monthly-scale net flow into the
// balance. It reads the population system's employment rate from the
// previous day (stale by contract, see System).
type EconomySystem struct {
	world    *world.World
	defs     *catalog.Resolver
	economy  *EconomyState
	eventLog *events.Log
	logger   *logger.Logger

	lastDay  int
	lastHour int
}

// NewEconomySystem creates the hourly economy system.
func NewEconomySystem(w *world.World, defs *catalog.Resolver, economy *EconomyState, eventLog *events.Log, log *logger.Logger) *EconomySystem {
	return &EconomySystem{
		world:    w,
		defs:     defs,
		economy:  economy,
		eventLog: eventLog,
		logger:   log,
		lastDay:  -1,
		lastHour: -1,
	}
}

// Name implements System.
func (es *EconomySystem) Name() string { return "economy" }

// Reset implements System; the next tick recomputes regardless of hour.
func (es *EconomySystem) Reset() {
	es.lastDay = -1
	es.lastHour = -1
}

// Update implements System, throttled to once per simulated hour.
func (es *EconomySystem) Update(delta float64, clock Clock) {
	if clock.Day == es.lastDay && clock.Hour == es.lastHour {
		return
	}
	es.lastDay = clock.Day
	es.lastHour = clock.Hour

	income := make(map[string]float64)
	expenses := make(map[string]float64)

	for _, b := range es.world.Buildings() {
		def, ok := es.defs.Get(b.DefinitionID)
		if !ok {
			continue
		}
		expenseKey := string(def.Zone)
		if def.Category == catalog.CategoryService {
			expenseKey = string(def.ServiceType)
		}
		expenses[expenseKey] += def.MaintenanceCost

		if def.Zone == catalog.ZoneNone || !b.IsActive {
			continue
		}
		rate := perUnitRate(def.Zone)
		contribution := float64(def.Units()) * (b.Occupancy / 100) * rate * (es.economy.TaxRate(def.Zone) / 100)
		income[string(def.Zone)] += contribution
	}

	es.economy.Income = income
	es.economy.Expenses = expenses

	// Income and expenses are monthly-scale; apply one hourly share.
	net := es.economy.TotalIncome() - es.economy.TotalExpenses()
	es.economy.Balance += net / 24

	es.eventLog.Append(events.Event{
		Type: events.EventTypeEconomyUpdated,
		Day:  clock.Day,
		Hour: clock.Hour,
		Payload: events.EconomyPayload{
			Balance:  es.economy.Balance,
			Income:   es.economy.TotalIncome(),
			Expenses: es.economy.TotalExpenses(),
		},
	})
}

func perUnitRate(zone catalog.Zone) float64 {
	switch zone {
	case catalog.ZoneResidential:
		return ratePerResident
	case catalog.ZoneCommercial:
		return ratePerCommercialJob
	case catalog.ZoneIndustrial:
		return ratePerIndustrialJob
	}
	return 0
}
