package timeres

import (
	"fmt"
	"math"
	"strings"
	"time"

	"sensors2ff/internal/schema"
	"sensors2ff/internal/values"
)

// MaxSecondsOfDay bounds seconds-of-day values; it exceeds 86400 to tolerate receivers
// that keep counting past midnight.
const MaxSecondsOfDay = 200000

// AnchorSource records which rule picked the seconds-of-day anchor
type AnchorSource string

const (
	AnchorExplicit     AnchorSource = "explicit"
	AnchorModification AnchorSource = "modification_time"
	AnchorWallClock    AnchorSource = "wall_clock"
)

// Anchor is the UTC midnight that seconds-of-day values are added to
type Anchor struct {
	Midnight time.Time
	Source   AnchorSource
}

// ParseDate parses a YYYY-MM-DD anchor date
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid anchor date %q (want YYYY-MM-DD): %w", s, err)
	}
	return d.UTC(), nil
}

// ResolveAnchor picks the anchor midnight: the explicit date if given, else the
// input's modification time, else today's UTC midnight.
// The wall-clock fallback makes output depend on when the run happens.
func ResolveAnchor(date *time.Time, modTime func() (time.Time, error), now func() time.Time) Anchor {
	if date != nil {
		return Anchor{Midnight: Midnight(*date), Source: AnchorExplicit}
	}
	if modTime != nil {
		if mt, err := modTime(); err == nil && !mt.IsZero() {
			return Anchor{Midnight: Midnight(mt), Source: AnchorModification}
		}
	}
	if now == nil {
		now = time.Now
	}
	return Anchor{Midnight: Midnight(now()), Source: AnchorWallClock}
}

// Midnight truncates t to 00:00 UTC of its UTC calendar day
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Resolver reconstructs absolute UTC instants for rows
type Resolver struct {
	Schema *schema.ResolvedSchema
	Anchor Anchor

	// FallbackOnInvalidEpoch lets a present but unusable epoch value fall through to
	// seconds-of-day. By default only a missing epoch value does.
	FallbackOnInvalidEpoch bool
}

// Resolve returns the instant for row, or false when the row has no usable time
func (r *Resolver) Resolve(row map[string]string) (time.Time, bool) {
	if col, ok := r.Schema.Column(schema.EpochTime); ok {
		raw := strings.TrimSpace(row[col])
		if raw != "" {
			if t, ok := FromEpoch(raw); ok {
				return t, true
			}
			if !r.FallbackOnInvalidEpoch {
				return time.Time{}, false
			}
		}
	}

	if col, ok := r.Schema.Column(schema.SecondsOfDay); ok {
		return FromSecondsOfDay(row[col], r.Anchor.Midnight)
	}

	return time.Time{}, false
}

// FromEpoch interprets raw as UTC seconds since the Unix epoch
func FromEpoch(raw string) (time.Time, bool) {
	v, ok := values.ParseNumber(raw)
	if !ok {
		return time.Time{}, false
	}
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(), true
}

// FromSecondsOfDay adds raw seconds to midnight
func FromSecondsOfDay(raw string, midnight time.Time) (time.Time, bool) {
	v, ok := values.ParseNumber(raw)
	if !ok || v < 0 || v > MaxSecondsOfDay {
		return time.Time{}, false
	}
	return midnight.Add(time.Duration(math.Round(v * float64(time.Second)))), true
}
