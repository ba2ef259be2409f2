package sensorlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	input := "\ufeffGPSTime,GPSLatitude,GPSLongitude\n1704067200,48.1,11.5\n1704067201,48.2\n"

	l, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"GPSTime", "GPSLatitude", "GPSLongitude"}, l.Header)
	require.Len(t, l.Rows, 2)
	assert.Equal(t, "48.1", l.Rows[0]["GPSLatitude"])
	_, ok := l.Rows[1]["GPSLongitude"]
	assert.False(t, ok)
}

func TestRead_DuplicateHeaderKeepsFirstColumn(t *testing.T) {
	l, err := Read(strings.NewReader("lat,lon,speed,speed\n48.1,11.5,90,999\n"))
	require.NoError(t, err)
	require.Len(t, l.Rows, 1)
	assert.Equal(t, "90", l.Rows[0]["speed"])
}

func TestRead_Empty(t *testing.T) {
	l, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, l.Header)
	assert.Empty(t, l.Rows)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensors.csv")
	require.NoError(t, os.WriteFile(path, []byte("lat,lon,sod\n1,2,3\n"), 0o644))

	mtime := time.Date(2023, 7, 4, 15, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	l, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, l.Rows, 1)

	got, err := l.ModTimeFunc()()
	require.NoError(t, err)
	assert.True(t, mtime.Equal(got))

	_, err = (&Log{}).ModTimeFunc()()
	assert.Error(t, err)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
