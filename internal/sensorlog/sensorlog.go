package sensorlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"sensors2ff/internal/models"
)

const bom = "\ufeff"

// Log is a fully buffered sensor capture
// Rows are kept in file order so every pass over them sees the same sequence.
type Log struct {
	Header  []string
	Rows    []models.RawRow
	ModTime time.Time // zero when unknown
}

// ReadFile loads a sensors CSV from disk
func ReadFile(path string) (*Log, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sensor log %s: %w", path, err)
	}
	defer file.Close()

	l, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read sensor log %s: %w", path, err)
	}

	if info, err := file.Stat(); err == nil {
		l.ModTime = info.ModTime()
	}

	return l, nil
}

// Read parses a sensors CSV; short rows leave their trailing columns absent
func Read(r io.Reader) (*Log, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true    // Handle malformed quotes in device output
	reader.FieldsPerRecord = -1 // Allow variable number of fields per record

	header, err := reader.Read()
	if err == io.EOF {
		return &Log{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}

	l := &Log{Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		row := make(models.RawRow, len(header))
		for i, h := range header {
			if i >= len(record) {
				break
			}
			// First column wins for duplicate names
			if _, dup := row[h]; !dup {
				row[h] = record[i]
			}
		}
		l.Rows = append(l.Rows, row)
	}

	return l, nil
}

// ModTimeFunc returns a lookup for the capture's modification time, for anchoring
// seconds-of-day timestamps.
func (l *Log) ModTimeFunc() func() (time.Time, error) {
	return func() (time.Time, error) {
		if l.ModTime.IsZero() {
			return time.Time{}, fmt.Errorf("modification time unknown")
		}
		return l.ModTime, nil
	}
}
