// Package events provides the one-directional event channel from the
// simulation to its observers (UI, telemetry, persistence). The simulation
// appends; observers replay. Nothing flows back.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a simulation event.
type EventType string

const (
	EventTypeBuildingPlaced  EventType = "BUILDING_PLACED"
	EventTypeBuildingSpawned EventType = "BUILDING_SPAWNED"
	EventTypeBuildingRemoved EventType = "BUILDING_REMOVED"
	EventTypeRoadPlaced      EventType = "ROAD_PLACED"
	EventTypeRoadRemoved     EventType = "ROAD_REMOVED"
	EventTypeZoneChanged     EventType = "ZONE_CHANGED"
	EventTypeEconomyUpdated  EventType = "ECONOMY_UPDATED"
	EventTypePopulationShift EventType = "POPULATION_CHANGED"
	EventTypeTimeChanged     EventType = "TIME_CHANGED"
	EventTypeSnapshotLoaded  EventType = "SNAPSHOT_LOADED"
)

// DefaultHistoryLimit bounds the in-memory ring. Observers that fall further
// behind than this miss events; the persister still sees everything.
const DefaultHistoryLimit = 1024

// Event represents an immutable record of something the simulation did.
type Event struct {
	ID        string      `json:"id"`
	Sequence  uint64      `json:"sequence"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Day       int         `json:"day"`
	Hour      int         `json:"hour"`
	Payload   interface{} `json:"payload"`
}

// BuildingPayload describes building placement, spawn, and removal events.
type BuildingPayload struct {
	BuildingID   string `json:"building_id"`
	DefinitionID string `json:"definition_id"`
	X            int    `json:"x"`
	Z            int    `json:"z"`
}

// RoadPayload describes road topology events.
type RoadPayload struct {
	RoadID string `json:"road_id"`
	X      int    `json:"x"`
	Z      int    `json:"z"`
}

// ZonePayload describes a zone assignment.
type ZonePayload struct {
	X    int    `json:"x"`
	Z    int    `json:"z"`
	Zone string `json:"zone"`
}

// EconomyPayload carries the hourly economy aggregates.
type EconomyPayload struct {
	Balance  float64 `json:"balance"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// PopulationPayload carries the daily population aggregates.
type PopulationPayload struct {
	Total     float64 `json:"total"`
	Employed  float64 `json:"employed"`
	Happiness float64 `json:"happiness"`
}

// TimePayload carries the simulated clock after each tick.
type TimePayload struct {
	Day     int  `json:"day"`
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
	IsNight bool `json:"is_night"`
}

// Persister defines how an event is durably stored.
type Persister interface {
	Append(event Event) error
}

// Log is the bounded, append-only in-memory event channel. Appends come from
// the single simulation goroutine; replays may come from any goroutine.
type Log struct {
	mu        sync.RWMutex
	buf       []Event
	firstSeq  uint64 // sequence of buf[0]
	nextSeq   uint64
	limit     int
	persister Persister
}

// NewLog creates an event log with the given history limit and optional
// persister. A limit <= 0 falls back to DefaultHistoryLimit.
func NewLog(limit int, persister Persister) *Log {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Log{
		buf:       make([]Event, 0, limit),
		limit:     limit,
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
// The sequence number and id are assigned here.
func (l *Log) Append(event Event) Event {
	l.mu.Lock()
	event.ID = uuid.NewString()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Sequence = l.nextSeq
	l.nextSeq++
	l.buf = append(l.buf, event)
	if len(l.buf) > l.limit {
		drop := len(l.buf) - l.limit
		l.buf = append(l.buf[:0], l.buf[drop:]...)
		l.firstSeq += uint64(drop)
	}
	l.mu.Unlock()

	if l.persister != nil {
		// Write-through happens off the tick path.
		go func(e Event) {
			_ = l.persister.Append(e)
		}(event)
	}
	return event
}

// ReplaySince returns all retained events with sequence >= cursor, plus the
// cursor to pass on the next call. Pollers start from cursor 0.
func (l *Log) ReplaySince(cursor uint64) ([]Event, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if cursor < l.firstSeq {
		cursor = l.firstSeq
	}
	if cursor >= l.nextSeq {
		return nil, l.nextSeq
	}
	start := int(cursor - l.firstSeq)
	out := make([]Event, len(l.buf)-start)
	copy(out, l.buf[start:])
	return out, l.nextSeq
}

// Len reports the number of retained events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buf)
}

// NextSequence reports the sequence the next appended event will receive.
func (l *Log) NextSequence() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nextSeq
}
