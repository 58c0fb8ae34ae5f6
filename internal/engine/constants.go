package engine

// Simulation tuning. Values are monthly-scale where the economy is
// concerned; the hourly tick applies 1/24 of the monthly flow.

// System priorities. Lower runs earlier within a tick.
const (
	PriorityEconomy    = 10
	PriorityZoning     = 20
	PriorityPopulation = 30
	PriorityTraffic    = 40
)

// Economy.
const (
	ratePerResident        = 10.0 // monthly income per taxed residential unit
	ratePerCommercialJob   = 12.0
	ratePerIndustrialJob   = 9.0
	defaultTaxRate         = 10.0 // percent, clamped to [0,20]
	maxTaxRate             = 20.0
	demolitionRefundFactor = 0.25
	roadCost               = 10.0
)

// Zoning and growth.
const (
	demandDecay       = 0.96
	demandNudgeScale  = 18.0
	demandBaseline    = 6.0 // pull toward new-city residential demand
	growthThreshold   = 30.0
	growthSpawnCap    = 3
	commercialServing = 4.0 // residents served per commercial capacity unit
	targetEmployment  = 0.9
)

// Population.
const (
	occupancySmoothing   = 0.25
	unpoweredOccupancy   = 0.5
	waterlessOccupancy   = 0.7
	birthRate            = 0.010 // per day at full happiness
	mortalityRate        = 0.004 // per day
	migrationRate        = 0.05  // fraction of free capacity per day at full demand
	bootstrapMigrants    = 5.0
	laborParticipation   = 0.65
	happinessBase        = 50.0
	happinessEmployWt    = 50.0
	happinessTaxPivot    = 8.0
	happinessTaxWt       = 1.5
	happinessServiceWt   = 5.0
	happinessParkWt      = 2.0
	happinessParkCap     = 5
	happinessPollutionWt = 10.0
	childShare           = 0.20
	seniorShare          = 0.15
)

// Traffic.
const (
	trafficSpawnPerHome   = 0.02
	trafficSpawnCeil      = 0.9
	trafficMinOccupancy   = 20.0
	vehicleBaseSpeed      = 0.8 // tiles per simulated minute
	congestionThreshold   = 0.6
	congestionSlowdown    = 0.35
	roadVehicleCapacity   = 4.0
	pathExpansionLimit    = 1000
)
