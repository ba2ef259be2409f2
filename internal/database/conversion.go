package database

import (
	"database/sql"
	"fmt"

	"sensors2ff/internal/models"

	"github.com/google/uuid"
)

type ConversionRepository interface {
	Insert(c *models.Conversion) error
	ListByInput(input string) ([]models.Conversion, error)
}

type conversionRepository struct {
	db *sql.DB
}

func NewConversionRepository(db *sql.DB) ConversionRepository {
	return &conversionRepository{db: db}
}

// Insert stores c, assigning a new ID when c.ID is empty
func (r *conversionRepository) Insert(c *models.Conversion) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	_, err := r.db.Exec(`INSERT INTO conversions (
		id, input, output, created_at, sample_count, skipped_rows, start_time, end_time,
		distance_m, speed_unit, derived_origin, derived_destination
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Input, c.Output, c.CreatedAt.UTC(), c.SampleCount, c.SkippedRows,
		c.StartTime.UTC(), c.EndTime.UTC(), c.DistanceMeters, c.SpeedUnit,
		c.DerivedOrigin, c.DerivedDestination,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversion: %w", err)
	}

	return nil
}

// ListByInput returns the recorded runs for input, oldest first
func (r *conversionRepository) ListByInput(input string) ([]models.Conversion, error) {
	rows, err := r.db.Query(`SELECT
		id, input, output, created_at, sample_count, skipped_rows, start_time, end_time,
		distance_m, speed_unit, derived_origin, derived_destination
		FROM conversions WHERE input = ? ORDER BY created_at`, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer rows.Close()

	var out []models.Conversion
	for rows.Next() {
		var c models.Conversion
		if err := rows.Scan(
			&c.ID, &c.Input, &c.Output, &c.CreatedAt, &c.SampleCount, &c.SkippedRows,
			&c.StartTime, &c.EndTime, &c.DistanceMeters, &c.SpeedUnit,
			&c.DerivedOrigin, &c.DerivedDestination,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversions: %w", err)
	}

	return out, nil
}
