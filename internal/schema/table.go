package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iancoleman/orderedmap"
)

// Field is a canonical semantic column
type Field string

const (
	Latitude        Field = "latitude"
	Longitude       Field = "longitude"
	Altitude        Field = "altitude"
	GroundSpeed     Field = "groundspeed"
	Track           Field = "track"
	Bank            Field = "bank"
	Pitch           Field = "pitch"
	HorizontalError Field = "horizontal_error"
	VerticalError   Field = "vertical_error"
	GLoad           Field = "g_load"
	EpochTime       Field = "epoch_time"
	SecondsOfDay    Field = "seconds_of_day"
)

//go:embed aliases.json
var defaultAliases []byte

// Candidates is the ordered alias list for one field
type Candidates struct {
	Field   Field
	Aliases []string
}

// CandidateTable holds the alias lists in declaration order
type CandidateTable []Candidates

// DefaultTable returns the built-in alias vocabulary
func DefaultTable() CandidateTable {
	table, err := ParseTable(bytes.NewReader(defaultAliases))
	if err != nil {
		panic(fmt.Sprintf("built-in alias table is invalid: %v", err))
	}
	return table
}

// ParseTable reads a JSON object of field -> alias list, preserving key order
func ParseTable(r io.Reader) (CandidateTable, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias table: %w", err)
	}

	om := orderedmap.New()
	if err := json.Unmarshal(raw, om); err != nil {
		return nil, fmt.Errorf("failed to parse alias table: %w", err)
	}

	table := make(CandidateTable, 0, len(om.Keys()))
	for _, key := range om.Keys() {
		v, _ := om.Get(key)
		list, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("aliases for %q must be a list of strings", key)
		}
		aliases := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("aliases for %q must be a list of strings", key)
			}
			aliases = append(aliases, normalize(s))
		}
		table = append(table, Candidates{Field: Field(normalize(key)), Aliases: aliases})
	}

	return table, nil
}

// Aliases returns the alias list for f, or nil
func (t CandidateTable) Aliases(f Field) []string {
	for _, c := range t {
		if c.Field == f {
			return c.Aliases
		}
	}
	return nil
}

// Merge returns a table where extra's aliases are tried before t's for each field
// Fields only present in extra are appended.
func (t CandidateTable) Merge(extra CandidateTable) CandidateTable {
	out := make(CandidateTable, 0, len(t)+len(extra))
	seen := make(map[Field]bool)
	for _, c := range t {
		aliases := append([]string{}, extra.Aliases(c.Field)...)
		aliases = append(aliases, c.Aliases...)
		out = append(out, Candidates{Field: c.Field, Aliases: aliases})
		seen[c.Field] = true
	}
	for _, c := range extra {
		if !seen[c.Field] {
			out = append(out, c)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
