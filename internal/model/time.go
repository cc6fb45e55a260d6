package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// WireLayout is how timestamps are sent to the service: UTC with
// millisecond precision and a trailing Z.
const WireLayout = "2006-01-02T15:04:05.000Z07:00"

// The service stores date-times without a zone; those are read as UTC.
var decodeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// Time is a timestamp that tolerates both zoned and zone-less wire
// forms.
type Time struct {
	time.Time
}

// NewTime wraps t, returning nil for the zero time.
func NewTime(t time.Time) *Time {
	if t.IsZero() {
		return nil
	}
	return &Time{Time: t}
}

// ParseTime parses any of the accepted wire layouts.
func ParseTime(s string) (Time, error) {
	for _, layout := range decodeLayouts {
		if layout == time.RFC3339Nano {
			if t, err := time.Parse(layout, s); err == nil {
				return Time{Time: t}, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Time{Time: t}, nil
		}
	}
	return Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Time) String() string {
	return t.UTC().Format(WireLayout)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Time) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}
