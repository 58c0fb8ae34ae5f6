package catalog

// defaultDefinitions is the built-in content set. The server is fully
// functional without any config file; designer documents override or extend
// these by id.
func defaultDefinitions() []Definition {
	return []Definition{
		{
			ID: "house_small", Name: "Small House",
			Category: CategoryZone, Zone: ZoneResidential,
			Width: 1, Depth: 1,
			Cost: 100, MaintenanceCost: 2,
			Capacity: 10,
		},
		{
			ID: "apartment_block", Name: "Apartment Block",
			Category: CategoryZone, Zone: ZoneResidential,
			Width: 2, Depth: 2,
			Cost: 450, MaintenanceCost: 10,
			Capacity: 48,
		},
		{
			ID: "corner_shop", Name: "Corner Shop",
			Category: CategoryZone, Zone: ZoneCommercial,
			Width: 1, Depth: 1,
			Cost: 150, MaintenanceCost: 3,
			Jobs: 8,
		},
		{
			ID: "shopping_center", Name: "Shopping Center",
			Category: CategoryZone, Zone: ZoneCommercial,
			Width: 2, Depth: 2,
			Cost: 620, MaintenanceCost: 14,
			Jobs: 36,
		},
		{
			ID: "workshop", Name: "Workshop",
			Category: CategoryZone, Zone: ZoneIndustrial,
			Width: 1, Depth: 1,
			Cost: 200, MaintenanceCost: 4,
			Jobs: 12, Pollution: 0.5,
		},
		{
			ID: "factory", Name: "Factory",
			Category: CategoryZone, Zone: ZoneIndustrial,
			Width: 2, Depth: 2,
			Cost: 800, MaintenanceCost: 22,
			Jobs: 52, Pollution: 2.0,
		},
		{
			ID: "power_plant", Name: "Power Plant",
			Category: CategoryService,
			Width: 2, Depth: 2,
			Cost: 1200, MaintenanceCost: 90,
			ServiceType: ServicePower, ServiceRadius: 12,
			Pollution: 3.0,
		},
		{
			ID: "water_tower", Name: "Water Tower",
			Category: CategoryService,
			Width: 1, Depth: 1,
			Cost: 500, MaintenanceCost: 35,
			ServiceType: ServiceWater, ServiceRadius: 10,
		},
		{
			ID: "police_station", Name: "Police Station",
			Category: CategoryService,
			Width: 1, Depth: 1,
			Cost: 600, MaintenanceCost: 45,
			ServiceType: ServicePolice, ServiceRadius: 14,
		},
		{
			ID: "fire_station", Name: "Fire Station",
			Category: CategoryService,
			Width: 1, Depth: 1,
			Cost: 600, MaintenanceCost: 45,
			ServiceType: ServiceFire, ServiceRadius: 14,
		},
		{
			ID: "clinic", Name: "Clinic",
			Category: CategoryService,
			Width: 1, Depth: 1,
			Cost: 700, MaintenanceCost: 55,
			ServiceType: ServiceHealth, ServiceRadius: 14,
		},
		{
			ID: "school", Name: "School",
			Category: CategoryService,
			Width: 2, Depth: 1,
			Cost: 750, MaintenanceCost: 60,
			ServiceType: ServiceEducation, ServiceRadius: 16,
		},
		{
			ID: "park_small", Name: "Small Park",
			Category: CategoryService,
			Width: 1, Depth: 1,
			Cost: 80, MaintenanceCost: 3,
			ServiceType: ServicePark, ServiceRadius: 6,
			LandValue: 1.5,
		},
	}
}
