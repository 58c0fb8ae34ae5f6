package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sqlx.DB
}

// NewSQLiteEventRepository creates the SQLite-backed event ledger.
func NewSQLiteEventRepository(db *sqlx.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

// Append implements EventRepository.
func (r *SQLiteEventRepository) Append(ctx context.Context, record EventRecord) error {
	query := `
		INSERT INTO events (id, city_id, timestamp, event_type, day, hour, payload)
		VALUES (:id, :city_id, :timestamp, :event_type, :day, :hour, :payload)
	`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// GetByDay implements EventRepository.
func (r *SQLiteEventRepository) GetByDay(ctx context.Context, cityID string, day int) ([]EventRecord, error) {
	query := `SELECT id, city_id, timestamp, event_type, day, hour, payload
		FROM events WHERE city_id = ? AND day = ? ORDER BY timestamp ASC`
	var records []EventRecord
	if err := r.db.SelectContext(ctx, &records, query, cityID, day); err != nil {
		return nil, fmt.Errorf("failed to query events by day: %w", err)
	}
	return records, nil
}

// GetByType implements EventRepository.
func (r *SQLiteEventRepository) GetByType(ctx context.Context, cityID string, eventType string) ([]EventRecord, error) {
	query := `SELECT id, city_id, timestamp, event_type, day, hour, payload
		FROM events WHERE city_id = ? AND event_type = ? ORDER BY timestamp ASC`
	var records []EventRecord
	if err := r.db.SelectContext(ctx, &records, query, cityID, eventType); err != nil {
		return nil, fmt.Errorf("failed to query events by type: %w", err)
	}
	return records, nil
}

// SQLiteCityRepository implements CityRepository for SQLite.
type SQLiteCityRepository struct {
	db *sqlx.DB
}

// NewSQLiteCityRepository creates the SQLite-backed snapshot store.
func NewSQLiteCityRepository(db *sqlx.DB) *SQLiteCityRepository {
	return &SQLiteCityRepository{db: db}
}

// Save implements CityRepository.
func (r *SQLiteCityRepository) Save(ctx context.Context, record CityRecord) error {
	query := `
		INSERT INTO city_snapshots (city_id, saved_at, day, hour, data)
		VALUES (:city_id, :saved_at, :day, :hour, :data)
		ON CONFLICT(city_id) DO UPDATE SET
			saved_at=excluded.saved_at,
			day=excluded.day,
			hour=excluded.hour,
			data=excluded.data
	`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load implements CityRepository.
func (r *SQLiteCityRepository) Load(ctx context.Context, cityID string) (CityRecord, bool, error) {
	query := `SELECT city_id, saved_at, day, hour, data FROM city_snapshots WHERE city_id = ?`
	var record CityRecord
	err := r.db.GetContext(ctx, &record, query, cityID)
	if errors.Is(err, sql.ErrNoRows) {
		return CityRecord{}, false, nil
	}
	if err != nil {
		return CityRecord{}, false, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return record, true, nil
}
