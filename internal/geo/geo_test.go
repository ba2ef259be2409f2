package geo

import (
	"testing"

	"sensors2ff/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	munich := models.Coordinate{Latitude: 48.3538, Longitude: 11.7861}
	frankfurt := models.Coordinate{Latitude: 50.0333, Longitude: 8.5706}

	d := Haversine(munich, frankfurt)
	assert.InDelta(t, 299000, d, 2000)

	// symmetric
	assert.InDelta(t, d, Haversine(frankfurt, munich), 1e-6)

	// zero iff identical
	assert.Equal(t, 0.0, Haversine(munich, munich))
	assert.Greater(t, Haversine(munich, models.Coordinate{Latitude: 48.3538, Longitude: 11.78611}), 0.0)
}

func TestHaversine_OneMinuteOfLatitude(t *testing.T) {
	a := models.Coordinate{Latitude: 0, Longitude: 0}
	b := models.Coordinate{Latitude: 1.0 / 60, Longitude: 0}

	// one arc-minute of latitude on this sphere is ~1.0007 nm
	assert.InDelta(t, 1.0, HaversineNM(a, b), 0.001)
}

func TestHaversine_Antipodal(t *testing.T) {
	a := models.Coordinate{Latitude: 0, Longitude: 0}
	b := models.Coordinate{Latitude: 0, Longitude: 180}

	assert.InDelta(t, 3.14159265*EarthRadiusMeters, Haversine(a, b), 1)
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(90, 180))
	assert.True(t, ValidCoordinate(-90, -180))
	assert.False(t, ValidCoordinate(91, 0))
	assert.False(t, ValidCoordinate(0, -180.0001))
}
