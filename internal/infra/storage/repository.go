// Package storage provides the persistence layer for the simulation server.
// The simulation core never imports this package; the wiring in cmd adapts
// between the two so the engine stays persistence-agnostic.
package storage

import (
	"context"
	"time"
)

// EventRecord mirrors the event channel's entries for persistence.
type EventRecord struct {
	ID        string    `db:"id" json:"id"`
	CityID    string    `db:"city_id" json:"city_id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	EventType string    `db:"event_type" json:"event_type"`
	Day       int       `db:"day" json:"day"`
	Hour      int       `db:"hour" json:"hour"`
	Payload   string    `db:"payload" json:"payload"`
}

// EventRepository is the append-only ledger of simulation events.
type EventRepository interface {
	// Append adds a new event to the ledger.
	Append(ctx context.Context, record EventRecord) error

	// GetByDay retrieves all events from a simulated day, oldest first.
	GetByDay(ctx context.Context, cityID string, day int) ([]EventRecord, error)

	// GetByType retrieves all events of one type, oldest first.
	GetByType(ctx context.Context, cityID string, eventType string) ([]EventRecord, error)
}

// CityRecord is a persisted simulation snapshot. Data is the opaque JSON
// blob produced by the engine's Serialize; storage never interprets it.
type CityRecord struct {
	CityID  string    `db:"city_id" json:"city_id"`
	SavedAt time.Time `db:"saved_at" json:"saved_at"`
	Day     int       `db:"day" json:"day"`
	Hour    int       `db:"hour" json:"hour"`
	Data    []byte    `db:"data" json:"data"`
}

// CityRepository stores at most one snapshot per city id.
type CityRepository interface {
	// Save upserts the snapshot for a city.
	Save(ctx context.Context, record CityRecord) error

	// Load returns the stored snapshot, or ok=false when none exists.
	Load(ctx context.Context, cityID string) (CityRecord, bool, error)
}
