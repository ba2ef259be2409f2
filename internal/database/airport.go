package database

import (
	"database/sql"
	"fmt"
	"time"

	"sensors2ff/internal/models"
)

type AirportRepository interface {
	// IsSourceLoaded reports whether source was cached with the given modification time
	IsSourceLoaded(source string, modifiedAt time.Time) (bool, error)
	ReplaceSource(source string, modifiedAt time.Time, airports []models.Airport, batchSize int) error
	List(source string) ([]models.Airport, error)
}

type airportRepository struct {
	db *sql.DB
}

func NewAirportRepository(db *sql.DB) AirportRepository {
	return &airportRepository{db: db}
}

func (r *airportRepository) IsSourceLoaded(source string, modifiedAt time.Time) (bool, error) {
	var cached time.Time
	err := r.db.QueryRow("SELECT modified_at FROM airport_sources WHERE source = ?", source).Scan(&cached)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check airport source: %w", err)
	}
	return cached.Equal(modifiedAt.UTC()), nil
}

// ReplaceSource drops any cached copy of source and stores airports in batches
// of batchSize rows per transaction.
func (r *airportRepository) ReplaceSource(source string, modifiedAt time.Time, airports []models.Airport, batchSize int) error {
	if batchSize <= 0 {
		batchSize = len(airports) + 1
	}

	if _, err := r.db.Exec("DELETE FROM airports WHERE source = ?", source); err != nil {
		return fmt.Errorf("failed to clear airport source: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM airport_sources WHERE source = ?", source); err != nil {
		return fmt.Errorf("failed to clear airport source: %w", err)
	}

	for start := 0; start < len(airports); start += batchSize {
		end := min(start+batchSize, len(airports))
		if err := r.insertBatch(source, airports[start:end]); err != nil {
			return fmt.Errorf("failed to insert batch: %w", err)
		}
	}

	// Mark the source complete only after every batch landed
	if _, err := r.db.Exec(
		"INSERT INTO airport_sources (source, modified_at, record_count) VALUES (?, ?, ?)",
		source, modifiedAt.UTC(), len(airports),
	); err != nil {
		return fmt.Errorf("failed to record airport source: %w", err)
	}

	return nil
}

// insertBatch inserts one or more airports in a single transaction
func (r *airportRepository) insertBatch(source string, airports []models.Airport) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO airports (
		source, ident, type, latitude, longitude
	) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, ap := range airports {
		if _, err := stmt.Exec(source, ap.Ident, ap.Type, ap.Latitude, ap.Longitude); err != nil {
			return fmt.Errorf("failed to insert airport: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// List returns the cached airports of source in their original order
func (r *airportRepository) List(source string) ([]models.Airport, error) {
	rows, err := r.db.Query(
		"SELECT ident, type, latitude, longitude FROM airports WHERE source = ? ORDER BY id", source)
	if err != nil {
		return nil, fmt.Errorf("failed to query airports: %w", err)
	}
	defer rows.Close()

	var out []models.Airport
	for rows.Next() {
		var ap models.Airport
		var typ sql.NullString
		if err := rows.Scan(&ap.Ident, &typ, &ap.Latitude, &ap.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		ap.Type = typ.String
		out = append(out, ap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate airports: %w", err)
	}

	return out, nil
}
