package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite cache holding airport directories and conversion history
type DB struct {
	db *sql.DB
}

// New creates and initializes a new database connection
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := optimizeSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize database: %w", err)
	}

	database := &DB{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// optimizeSQLite tunes SQLite for bulk directory loads
func optimizeSQLite(db *sql.DB) error {
	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA temp_store=MEMORY"); err != nil {
		return fmt.Errorf("failed to set temp_store: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// AirportRepository returns the airport directory cache
func (d *DB) AirportRepository() AirportRepository {
	return NewAirportRepository(d.db)
}

// ConversionRepository returns the conversion history store
func (d *DB) ConversionRepository() ConversionRepository {
	return NewConversionRepository(d.db)
}

// initSchema creates the database schema if it doesn't exist
func (d *DB) initSchema() error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS airport_sources (
			source TEXT PRIMARY KEY,
			modified_at TIMESTAMP NOT NULL,
			record_count INTEGER NOT NULL,
			loaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS airports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			ident TEXT NOT NULL,
			type TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS conversions (
			id TEXT PRIMARY KEY,
			input TEXT NOT NULL,
			output TEXT,
			created_at TIMESTAMP NOT NULL,
			sample_count INTEGER NOT NULL,
			skipped_rows INTEGER NOT NULL,
			start_time TIMESTAMP,
			end_time TIMESTAMP,
			distance_m REAL,
			speed_unit TEXT,
			derived_origin TEXT,
			derived_destination TEXT
		);`,
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_airports_source ON airports(source)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_input ON conversions(input)`,
	}

	for _, schema := range schemas {
		if _, err := d.db.Exec(schema); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, idx := range indexes {
		if _, err := d.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
