// Package main is the entry point for the city simulation server.
// It only handles dependency injection and server initialization.
// NO simulation logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"microcity/server/internal/catalog"
	"microcity/server/internal/engine"
	"microcity/server/internal/events"
	"microcity/server/internal/infra/storage"
	"microcity/server/internal/network"
	"microcity/server/internal/platform/logger"
	"microcity/server/internal/platform/metrics"
)

// sqlitePersister translates simulation events to storage records.
type sqlitePersister struct {
	repo    *storage.SQLiteEventRepository
	cityID  string
	metrics *metrics.Collector
}

func (p *sqlitePersister) Append(event events.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		p.metrics.RecordEventWrite(err)
		return err
	}
	record := storage.EventRecord{
		ID:        event.ID,
		CityID:    p.cityID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		Day:       event.Day,
		Hour:      event.Hour,
		Payload:   string(payload),
	}
	err = p.repo.Append(context.Background(), record)
	p.metrics.RecordEventWrite(err)
	return err
}

// seedStarterCity lays out the minimal bootstrap layout on an empty map:
// a road spine, a strip of each zone along it, and both utilities.
func seedStarterCity(sim *engine.Simulation, appLogger *logger.Logger) {
	appLogger.Info("Empty database. Seeding starter city...")

	for x := 2; x <= 17; x++ {
		sim.PlaceRoad(x, 10)
	}
	for z := 6; z <= 14; z++ {
		sim.PlaceRoad(10, z)
	}

	for x := 3; x <= 8; x++ {
		sim.SetZone(x, 9, catalog.ZoneResidential)
		sim.SetZone(x, 11, catalog.ZoneResidential)
	}
	for x := 11; x <= 14; x++ {
		sim.SetZone(x, 9, catalog.ZoneCommercial)
	}
	for x := 11; x <= 14; x++ {
		sim.SetZone(x, 11, catalog.ZoneIndustrial)
	}

	sim.PlaceBuilding("power_plant", 4, 13, 0)
	sim.PlaceBuilding("water_tower", 8, 13, 0)
}

func main() {
	var (
		addr           = flag.String("addr", ":8080", "HTTP listen address")
		dbPath         = flag.String("db", "city.db", "SQLite database path")
		catalogPath    = flag.String("catalog", "", "optional catalog JSON to merge over built-in definitions")
		cityID         = flag.String("city", "CITY_1", "city identifier for persistence")
		width          = flag.Int("width", 64, "map width in tiles")
		depth          = flag.Int("depth", 64, "map depth in tiles")
		balance        = flag.Float64("balance", 20000, "starting treasury balance")
		seed           = flag.Int64("seed", 1, "deterministic RNG seed")
		tickInterval   = flag.Duration("tick", engine.DefaultTickInterval, "real-time tick interval")
		minutesPerTick = flag.Int("minutes", engine.DefaultMinutesPerTick, "simulated minutes per tick")
	)
	flag.Parse()

	log.Println("[CITY-SERVER] Initializing city simulation server...")

	appLogger := logger.NewLogger()
	collector := metrics.NewCollector()

	appLogger.Infof("Initializing SQLite database %q...", *dbPath)
	db, err := storage.InitSQLite(*dbPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	eventRepo := storage.NewSQLiteEventRepository(db)
	cityRepo := storage.NewSQLiteCityRepository(db)
	persister := &sqlitePersister{repo: eventRepo, cityID: *cityID, metrics: collector}

	appLogger.Info("Bootstrapping event log...")
	eventLog := events.NewLog(0, persister)

	defs := catalog.NewResolver()
	if *catalogPath != "" {
		defs, err = catalog.Load(*catalogPath)
		if err != nil {
			appLogger.Error("Failed to load catalog: " + err.Error())
			os.Exit(1)
		}
		appLogger.Infof("Loaded catalog overrides from %q (%d definitions).", *catalogPath, len(defs.All()))
	}

	appLogger.Info("Bootstrapping simulation...")
	sim := engine.NewSimulation(engine.Config{
		Width:          *width,
		Depth:          *depth,
		InitialBalance: *balance,
		Catalog:        defs,
		EventLog:       eventLog,
		Logger:         appLogger,
		Seed:           *seed,
	})

	ticker := engine.NewTicker(sim, eventLog, appLogger, collector)
	ticker.SetCadence(*tickInterval, *minutesPerTick)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Restore the last saved city, or seed a fresh one. A corrupt snapshot
	// keeps the fresh state; it never half-loads.
	if record, ok, err := cityRepo.Load(ctx, *cityID); err != nil {
		appLogger.Error("Failed to query saved city: " + err.Error())
	} else if ok {
		if err := sim.Deserialize(record.Data); err != nil {
			appLogger.Error("Saved city rejected, starting fresh: " + err.Error())
			seedStarterCity(sim, appLogger)
		} else {
			ticker.SetTime(sim.Clock())
			appLogger.Infof("Restored city from database (day %d, %02d:00).", record.Day, record.Hour)
		}
	} else {
		seedStarterCity(sim, appLogger)
	}

	go ticker.Start(ctx)

	saveCity := func() error {
		var data []byte
		var serr error
		var clock engine.Clock
		ticker.Do(func(s *engine.Simulation) {
			data, serr = s.Serialize()
			clock = s.Clock()
		})
		if serr != nil {
			return serr
		}
		return cityRepo.Save(context.Background(), storage.CityRecord{
			CityID:  *cityID,
			SavedAt: time.Now(),
			Day:     clock.Day,
			Hour:    clock.Hour,
			Data:    data,
		})
	}

	// Automated state backup routine.
	go func() {
		backupTicker := time.NewTicker(30 * time.Second)
		defer backupTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-backupTicker.C:
				if err := saveCity(); err != nil {
					appLogger.Error("Automatic save failed: " + err.Error())
				}
			}
		}
	}()

	appLogger.Info("Bootstrapping WebSocket hub...")
	hub := network.NewHub(appLogger, collector)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}

	requirePost := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return false
		}
		return true
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		network.ServeWS(hub, w, r)
	})

	http.HandleFunc("/metrics", collector.Handler())

	replay := network.NewReplayHandler(eventLog, appLogger)
	http.HandleFunc("/api/replay", replay.Handler())

	http.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		var resp map[string]interface{}
		ticker.Do(func(s *engine.Simulation) {
			clock := s.Clock()
			eco := s.Economy()
			pop := s.Population()
			demand := s.Demand()
			resp = map[string]interface{}{
				"clock":      clock,
				"paused":     ticker.Paused(),
				"balance":    eco.Balance,
				"tax_rates":  eco.TaxRates,
				"population": pop,
				"demand":     demand,
				"buildings":  len(s.World().Buildings()),
				"roads":      len(s.World().Roads()),
				"vehicles":   len(s.Vehicles()),
				"width":      s.World().Width(),
				"depth":      s.World().Depth(),
				"observers":  hub.ClientCount(),
			}
		})
		writeJSON(w, http.StatusOK, resp)
	})

	http.HandleFunc("/api/place-building", func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var req struct {
			DefinitionID string `json:"definition_id"`
			X            int    `json:"x"`
			Z            int    `json:"z"`
			Rotation     int    `json:"rotation"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		var id string
		var ok bool
		ticker.Do(func(s *engine.Simulation) {
			if b, placed := s.PlaceBuilding(req.DefinitionID, req.X, req.Z, req.Rotation); placed {
				id, ok = b.ID, true
			}
		})
		if !ok {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"status": "rejected"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "building_id": id})
	})

	http.HandleFunc("/api/demolish", func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var req struct {
			BuildingID string `json:"building_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		var ok bool
		ticker.Do(func(s *engine.Simulation) { ok = s.DemolishBuilding(req.BuildingID) })
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"status": "not_found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	http.HandleFunc("/api/place-road", func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var req struct {
			X int `json:"x"`
			Z int `json:"z"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		var id string
		var ok bool
		ticker.Do(func(s *engine.Simulation) {
			if road, placed := s.PlaceRoad(req.X, req.Z); placed {
				id, ok = road.ID, true
			}
		})
		if !ok {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"status": "rejected"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "road_id": id})
	})

	http.HandleFunc("/api/remove-road", func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var req struct {
			RoadID string `json:"road_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		var ok bool
		ticker.Do(func(s *engine.Simulation) { ok = s.RemoveRoad(req.RoadID) })
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"status": "not_found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	http.HandleFunc("/api/zone", func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var req struct {
			X    int    `json:"x"`
			Z    int    `json:"z"`
			Zone string `json:"zone"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		var ok bool
		ticker.Do(func(s *engine.Simulation) { ok = s.SetZone(req.X, req.Z, catalog.Zone(req.Zone)) })
		if !ok {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"status": "rejected"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	http.HandleFunc("/api/tax", func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var req struct {
			Zone string  `json:"zone"`
			Rate float64 `json:"rate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		zone := catalog.Zone(req.Zone)
		if !zone.Valid() {
			http.Error(w, "Unknown zone", http.StatusBadRequest)
			return
		}
		ticker.Do(func(s *engine.Simulation) { s.SetTaxRate(zone, req.Rate) })
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	http.HandleFunc("/api/save", func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		if err := saveCity(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	http.HandleFunc("/api/pause", func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		ticker.Pause()
		writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
	})

	http.HandleFunc("/api/resume", func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		ticker.Resume()
		writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
	})

	go func() {
		log.Printf("[CITY-SERVER] HTTP API & WS server listening on %s", *addr)
		if err := http.ListenAndServe(*addr, nil); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[CITY-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown: final save before exit.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[CITY-SERVER] Shutting down...")
	ticker.Stop()
	if err := saveCity(); err != nil {
		appLogger.Error("Final save failed: " + err.Error())
	}
}
