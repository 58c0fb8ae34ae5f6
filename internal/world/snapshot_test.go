package world

import (
	"testing"

	"microcity/server/internal/catalog"
)

func buildSampleWorld(t *testing.T) *World {
	t.Helper()
	w := NewWorld(20, 20)
	w.SetZone(2, 2, catalog.ZoneResidential)
	w.SetZone(3, 2, catalog.ZoneCommercial)
	if _, ok := w.PlaceBuilding(factoryDef(), 10, 10, 0, 3, 9); !ok {
		t.Fatalf("Sample building placement failed")
	}
	if _, ok := w.PlaceRoad(5, 5); !ok {
		t.Fatalf("Sample road placement failed")
	}
	w.PlaceRoad(6, 5)
	return w
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := buildSampleWorld(t)
	snap := w.Snapshot()

	restored := NewWorld(1, 1)
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if restored.Width() != 20 || restored.Depth() != 20 {
		t.Errorf("Restored dimensions wrong: %dx%d", restored.Width(), restored.Depth())
	}
	if len(restored.Buildings()) != 1 || len(restored.Roads()) != 2 {
		t.Errorf("Restored %d buildings, %d roads", len(restored.Buildings()), len(restored.Roads()))
	}
	tile, _ := restored.TileAt(2, 2)
	if tile.Zone != catalog.ZoneResidential {
		t.Errorf("Zone not restored at (2,2)")
	}
	tile, _ = restored.TileAt(10, 10)
	if tile.BuildingID == "" {
		t.Errorf("Building footprint not restored")
	}

	// Connections are recomputed on restore, and stay symmetric.
	roads := restored.Roads()
	for _, r := range roads {
		for _, conn := range r.Connections {
			other, ok := restored.Road(conn)
			if !ok {
				t.Fatalf("Connection to unknown road %s", conn)
			}
			found := false
			for _, back := range other.Connections {
				if back == r.ID {
					found = true
				}
			}
			if !found {
				t.Errorf("Connection %s -> %s not symmetric", r.ID, conn)
			}
		}
	}
}

func TestRestoreFailsClosedOnCorruptSnapshot(t *testing.T) {
	w := buildSampleWorld(t)
	before := w.Snapshot()

	cases := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"zero dimensions", func(s *Snapshot) { s.Width = 0 }},
		{"building out of bounds", func(s *Snapshot) { s.Buildings[0].X = 19 }},
		{"building without id", func(s *Snapshot) { s.Buildings[0].ID = "" }},
		{"road on building tile", func(s *Snapshot) {
			s.Roads[0].X = s.Buildings[0].X
			s.Roads[0].Z = s.Buildings[0].Z
		}},
		{"unknown zone", func(s *Snapshot) { s.Tiles[0].Zone = "arcology" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			corrupt := w.Snapshot()
			tc.mutate(&corrupt)
			if err := w.Restore(corrupt); err == nil {
				t.Fatalf("Expected restore to reject corrupt snapshot")
			}

			// Receiver must be untouched after a failed restore.
			after := w.Snapshot()
			if len(after.Buildings) != len(before.Buildings) || len(after.Roads) != len(before.Roads) {
				t.Errorf("Failed restore mutated the world")
			}
		})
	}
}

func TestRestoreRejectsDuplicateIDs(t *testing.T) {
	w := buildSampleWorld(t)
	snap := w.Snapshot()
	snap.Roads = append(snap.Roads, Road{ID: snap.Roads[0].ID, X: 9, Z: 1})

	if err := NewWorld(1, 1).Restore(snap); err == nil {
		t.Errorf("Expected duplicate road id to be rejected")
	}
}
