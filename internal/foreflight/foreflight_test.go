package foreflight

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"sensors2ff/internal/models"
	"sensors2ff/internal/track"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testMetadata() Metadata {
	return Metadata{
		TailNumber:     "DEABC",
		Start:          models.Coordinate{Latitude: 48.1, Longitude: 11.5},
		End:            models.Coordinate{Latitude: 48.1, Longitude: 11.5},
		StartTime:      start,
		EndTime:        start.Add(time.Second),
		AttitudeSource: "Stratux",
		GPSSource:      "Stratux",
		ImportedFrom:   "Stratux sensors converter",
	}
}

func TestMetadata_Values(t *testing.T) {
	m := testMetadata()
	m.DerivedOrigin = "EDDM"
	m.TotalDistance = 12.345678901234567
	m.HorizontalError = &track.Stats{Max: 5, Min: 3, Mean: 4}

	v := m.Values()
	require.Len(t, v, len(MetaHeader))
	assert.Equal(t, "EDDM", v[2])
	assert.Equal(t, "48.1000000", v[3])
	assert.Equal(t, "1704067200000", v[8])
	assert.Equal(t, "1704067201000", v[9])
	assert.Equal(t, "1.0", v[10])
	assert.Equal(t, "12.34567890123457", v[11])
	assert.Equal(t, []string{"", "", ""}, v[19:22])
	assert.Equal(t, []string{"5.000", "3.000", "4.000000"}, v[22:25])
}

func TestMetadata_ValuesLongSpan(t *testing.T) {
	m := testMetadata()
	m.EndTime = time.Unix(1e12, 0).UTC()

	v := m.Values()
	assert.Equal(t, "1000000000000000", v[9])
	assert.Equal(t, "998295932800.0", v[10])
}

func TestSampleValues(t *testing.T) {
	s := models.Sample{
		Timestamp:       start.Add(3600*time.Second + 250*time.Millisecond),
		Latitude:        48.12345678,
		Longitude:       -11.5,
		Altitude:        models.Float(1500),
		Speed:           models.Float(95.26),
		Bank:            models.Float(-12.3456),
		HorizontalError: models.Float(4.5),
		GLoad:           models.Float(1.0123456789),
	}

	assert.Equal(t, []string{
		"1704070800", "48.1234568", "-11.5000000", "1500.0", "", "95.3",
		"-12.35", "", "4.50", "", "1.012346",
	}, SampleValues(s))
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "1704067200", Timestamp(start))
	assert.Equal(t, "1000000000", Timestamp(time.Unix(1e9, 0)))
	assert.Equal(t, "12.5", Timestamp(time.Unix(12, 500000000)))
}

func TestRender(t *testing.T) {
	samples := []models.Sample{
		{Timestamp: start, Latitude: 48.1, Longitude: 11.5},
		{Timestamp: start.Add(time.Second), Latitude: 48.1, Longitude: 11.5, Altitude: models.Float(1500)},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, testMetadata(), samples))

	lines := strings.Split(buf.String(), "\r\n")
	require.Len(t, lines, 6)

	assert.Equal(t, strings.Join(MetaHeader, ","), lines[0])
	assert.Equal(t,
		`"","DEABC","","48.1000000","11.5000000","","48.1000000","11.5000000",`+
			`"1704067200000","1704067201000","1.0","0.00000000000000","Stratux","","","","","","Stratux",`+
			`"","","","","","","Stratux sensors converter",""`,
		lines[1])
	assert.Equal(t, "Timestamp,Latitude,Longitude,Altitude,Course,Speed,Bank,Pitch,Horizontal Error,Vertical Error,g Load", lines[2])
	assert.Equal(t, "1704067200,48.1000000,11.5000000,,,,,,,,", lines[3])
	assert.Equal(t, "1704067201,48.1000000,11.5000000,1500.0,,,,,,,", lines[4])
	assert.Equal(t, "", lines[5])
}

func TestRender_QuotesEmbeddedQuotes(t *testing.T) {
	m := testMetadata()
	m.TailNumber = `D-"EABC"`

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, m, nil))
	assert.Contains(t, buf.String(), `"D-""EABC"""`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRender_WriteError(t *testing.T) {
	samples := make([]models.Sample, 5000)
	for i := range samples {
		samples[i] = models.Sample{Timestamp: start, Latitude: 1, Longitude: 2}
	}
	assert.Error(t, Render(failingWriter{}, testMetadata(), samples))
}
