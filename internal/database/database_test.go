package database

import (
	"os"
	"testing"
	"time"

	"sensors2ff/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	// Create a temporary database file
	tmpFile := "/tmp/test_sensors2ff_" + t.Name() + ".db"
	// Clean up any existing test database
	os.Remove(tmpFile)

	db, err := New(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, db)

	return db
}

func cleanupTestDB(t *testing.T, db *DB) {
	if db != nil {
		err := db.Close()
		assert.NoError(t, err)
	}
	// Clean up test database file
	tmpFile := "/tmp/test_sensors2ff_" + t.Name() + ".db"
	os.Remove(tmpFile)
	os.Remove(tmpFile + "-wal")
	os.Remove(tmpFile + "-shm")
}

func TestNew(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	// Verify database was created
	assert.NotNil(t, db)
}

func TestAirportRepository_ReplaceAndList(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.AirportRepository()
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	loaded, err := repo.IsSourceLoaded("airports.csv", mtime)
	require.NoError(t, err)
	assert.False(t, loaded)

	airports := []models.Airport{
		{Ident: "EDDM", Type: "large_airport", Latitude: 48.353802, Longitude: 11.7861},
		{Ident: "EDDF", Type: "large_airport", Latitude: 50.033333, Longitude: 8.570556},
		{Ident: "EDMO", Type: "medium_airport", Latitude: 48.081402, Longitude: 11.2831},
	}

	// batch size smaller than the directory exercises multiple transactions
	require.NoError(t, repo.ReplaceSource("airports.csv", mtime, airports, 2))

	loaded, err = repo.IsSourceLoaded("airports.csv", mtime)
	require.NoError(t, err)
	assert.True(t, loaded)

	loaded, err = repo.IsSourceLoaded("airports.csv", mtime.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, loaded, "a newer file must be reloaded")

	got, err := repo.List("airports.csv")
	require.NoError(t, err)
	assert.Equal(t, airports, got)
}

func TestAirportRepository_ReplaceOverwrites(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.AirportRepository()
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.ReplaceSource("a.csv", mtime, []models.Airport{{Ident: "OLD1"}}, 100))
	require.NoError(t, repo.ReplaceSource("a.csv", mtime.Add(time.Hour), []models.Airport{{Ident: "NEW1"}}, 100))
	require.NoError(t, repo.ReplaceSource("b.csv", mtime, []models.Airport{{Ident: "BBBB"}}, 0))

	got, err := repo.List("a.csv")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "NEW1", got[0].Ident)

	got, err = repo.List("missing.csv")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConversionRepository_Insert(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.ConversionRepository()

	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	c := &models.Conversion{
		Input:              "sensors.csv",
		Output:             "foreflight.csv",
		CreatedAt:          start.Add(2 * time.Hour),
		SampleCount:        120,
		SkippedRows:        3,
		StartTime:          start,
		EndTime:            start.Add(time.Hour),
		DistanceMeters:     185200,
		SpeedUnit:          "kts",
		DerivedOrigin:      "EDDM",
		DerivedDestination: "",
	}

	require.NoError(t, repo.Insert(c))
	assert.Len(t, c.ID, 36)

	got, err := repo.ListByInput("sensors.csv")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, 120, got[0].SampleCount)
	assert.True(t, start.Equal(got[0].StartTime))
	assert.Equal(t, "EDDM", got[0].DerivedOrigin)

	// duplicate IDs are rejected
	assert.Error(t, repo.Insert(c))
}
