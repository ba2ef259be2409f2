package schema

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an input whose header lacks required columns
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("required columns not found: %s", strings.Join(e.Missing, ", "))
}

// ResolvedSchema maps canonical fields to the actual input header strings
type ResolvedSchema struct {
	columns map[Field]string
	order   []Field
}

// Resolve maps header columns to canonical fields
// For each field, the first alias in table order that matches any header column
// (case-insensitive, trimmed, in header order) wins.
func Resolve(header []string, table CandidateTable) (*ResolvedSchema, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalize(h)
	}

	rs := &ResolvedSchema{columns: make(map[Field]string)}
	for _, c := range table {
		rs.order = append(rs.order, c.Field)
		if col, ok := firstMatch(header, normalized, c.Aliases); ok {
			rs.columns[c.Field] = col
		}
	}

	var missing []string
	if !rs.Has(Latitude) {
		missing = append(missing, "latitude")
	}
	if !rs.Has(Longitude) {
		missing = append(missing, "longitude")
	}
	if !rs.Has(EpochTime) && !rs.Has(SecondsOfDay) {
		missing = append(missing, "epoch time or seconds-of-day")
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Missing: missing}
	}

	return rs, nil
}

func firstMatch(header, normalized, aliases []string) (string, bool) {
	for _, alias := range aliases {
		for i, h := range normalized {
			if h == alias {
				return header[i], true
			}
		}
	}
	return "", false
}

// Column returns the header string resolved for f
func (rs *ResolvedSchema) Column(f Field) (string, bool) {
	col, ok := rs.columns[f]
	return col, ok
}

// Has reports whether f resolved
func (rs *ResolvedSchema) Has(f Field) bool {
	_, ok := rs.columns[f]
	return ok
}

// Value returns the raw value for f in row, or "" when the field or cell is absent
func (rs *ResolvedSchema) Value(row map[string]string, f Field) string {
	col, ok := rs.columns[f]
	if !ok {
		return ""
	}
	return row[col]
}

// LogAttrs returns field=column pairs in table order, for diagnostics
func (rs *ResolvedSchema) LogAttrs() []any {
	attrs := make([]any, 0, 2*len(rs.order))
	for _, f := range rs.order {
		col, ok := rs.columns[f]
		if !ok {
			col = "<none>"
		}
		attrs = append(attrs, string(f), col)
	}
	return attrs
}
