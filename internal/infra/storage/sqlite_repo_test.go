package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) (*SQLiteEventRepository, *SQLiteCityRepository) {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "city.db"))
	if err != nil {
		t.Fatalf("InitSQLite failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteEventRepository(db), NewSQLiteCityRepository(db)
}

func TestEventAppendAndQuery(t *testing.T) {
	events, _ := newTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []EventRecord{
		{ID: "e1", CityID: "CITY_1", Timestamp: base, EventType: "BUILDING_PLACED", Day: 1, Hour: 8, Payload: "{}"},
		{ID: "e2", CityID: "CITY_1", Timestamp: base.Add(time.Minute), EventType: "ROAD_PLACED", Day: 1, Hour: 9, Payload: "{}"},
		{ID: "e3", CityID: "CITY_1", Timestamp: base.Add(2 * time.Minute), EventType: "BUILDING_PLACED", Day: 2, Hour: 8, Payload: "{}"},
		{ID: "e4", CityID: "CITY_2", Timestamp: base, EventType: "BUILDING_PLACED", Day: 1, Hour: 8, Payload: "{}"},
	}
	for _, r := range records {
		if err := events.Append(ctx, r); err != nil {
			t.Fatalf("Append %s failed: %v", r.ID, err)
		}
	}

	day1, err := events.GetByDay(ctx, "CITY_1", 1)
	if err != nil {
		t.Fatalf("GetByDay failed: %v", err)
	}
	if len(day1) != 2 || day1[0].ID != "e1" || day1[1].ID != "e2" {
		t.Errorf("Day query wrong: %+v", day1)
	}

	placed, err := events.GetByType(ctx, "CITY_1", "BUILDING_PLACED")
	if err != nil {
		t.Fatalf("GetByType failed: %v", err)
	}
	if len(placed) != 2 {
		t.Errorf("Type query should scope to the city, got %d records", len(placed))
	}
}

func TestCitySnapshotUpsert(t *testing.T) {
	_, cities := newTestDB(t)
	ctx := context.Background()

	if _, ok, err := cities.Load(ctx, "CITY_1"); err != nil || ok {
		t.Fatalf("Load on empty table should miss cleanly, ok=%v err=%v", ok, err)
	}

	first := CityRecord{CityID: "CITY_1", SavedAt: time.Now().UTC(), Day: 3, Hour: 14, Data: []byte(`{"v":1}`)}
	if err := cities.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := first
	second.Day = 4
	second.Data = []byte(`{"v":2}`)
	if err := cities.Save(ctx, second); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	loaded, ok, err := cities.Load(ctx, "CITY_1")
	if err != nil || !ok {
		t.Fatalf("Load failed: ok=%v err=%v", ok, err)
	}
	if loaded.Day != 4 || string(loaded.Data) != `{"v":2}` {
		t.Errorf("Upsert should keep only the latest snapshot, got day=%d data=%s", loaded.Day, loaded.Data)
	}
}
